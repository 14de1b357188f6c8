// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiserver

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

const (
	// HTTPConfAddress the local address to listen on
	HTTPConfAddress = "address"
	// HTTPConfPort the local port to listen on for HTTP connections
	HTTPConfPort = "port"
	// HTTPConfReadTimeout the read timeout for the HTTP server
	HTTPConfReadTimeout = "readTimeout"
	// HTTPConfWriteTimeout the write timeout for the HTTP server
	HTTPConfWriteTimeout = "writeTimeout"
	// HTTPConfTLSCAFile the TLS certificate authority file for the HTTP server
	HTTPConfTLSCAFile = "tls.caFile"
	// HTTPConfTLSCertFile the TLS certificate file for the HTTP server
	HTTPConfTLSCertFile = "tls.certFile"
	// HTTPConfTLSClientAuth whether the HTTP server requires a mutual TLS connection
	HTTPConfTLSClientAuth = "tls.clientAuth"
	// HTTPConfTLSEnabled whether TLS is enabled for the HTTP server
	HTTPConfTLSEnabled = "tls.enabled"
	// HTTPConfTLSKeyFile the private key file for TLS on the server
	HTTPConfTLSKeyFile = "tls.keyFile"
)

type httpServer struct {
	name        string
	s           *http.Server
	l           net.Listener
	conf        config.Prefix
	onClose     chan error
	tlsEnabled  bool
	tlsCertFile string
	tlsKeyFile  string
}

func initHTTPConfPrefix(prefix config.Prefix, defaultPort int) {
	prefix.AddKnownKey(HTTPConfAddress, "127.0.0.1")
	prefix.AddKnownKey(HTTPConfPort, defaultPort)
	prefix.AddKnownKey(HTTPConfReadTimeout, "15s")
	prefix.AddKnownKey(HTTPConfWriteTimeout, "15s")
	prefix.AddKnownKey(HTTPConfTLSCAFile)
	prefix.AddKnownKey(HTTPConfTLSCertFile)
	prefix.AddKnownKey(HTTPConfTLSClientAuth)
	prefix.AddKnownKey(HTTPConfTLSEnabled, false)
	prefix.AddKnownKey(HTTPConfTLSKeyFile)
}

func newHTTPServer(ctx context.Context, name string, r *mux.Router, onClose chan error, conf config.Prefix) (hs *httpServer, err error) {
	hs = &httpServer{
		name:        name,
		onClose:     onClose,
		conf:        conf,
		tlsEnabled:  conf.GetBool(HTTPConfTLSEnabled),
		tlsCertFile: conf.GetString(HTTPConfTLSCertFile),
		tlsKeyFile:  conf.GetString(HTTPConfTLSKeyFile),
	}
	hs.l, err = hs.createListener(ctx)
	if err == nil {
		hs.s, err = hs.createServer(ctx, r)
	}
	return hs, err
}

func (hs *httpServer) createListener(ctx context.Context) (net.Listener, error) {
	listenAddr := fmt.Sprintf("%s:%d", hs.conf.GetString(HTTPConfAddress), hs.conf.GetUint(HTTPConfPort))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgAPIServerStartFailed, listenAddr, err)
	}
	log.L(ctx).Infof("%s listening on HTTP %s", hs.name, listener.Addr())
	return listener, err
}

func loadClientCAs(ctx context.Context, caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return x509.SystemCertPool()
	}
	caBytes, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidCAFile)
	}
	return pool, nil
}

func (hs *httpServer) tlsConfig(ctx context.Context) (*tls.Config, error) {
	clientCAs, err := loadClientCAs(ctx, hs.conf.GetString(HTTPConfTLSCAFile))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgTLSConfigFailed)
	}
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ClientAuth: tls.NoClientCert,
		ClientCAs:  clientCAs,
	}
	if hs.conf.GetBool(HTTPConfTLSClientAuth) {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.VerifyPeerCertificate = func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
			if len(verifiedChains) > 0 && len(verifiedChains[0]) > 0 {
				cert := verifiedChains[0][0]
				log.L(ctx).Debugf("Client certificate Subject=%s Issuer=%s Expiry=%s", cert.Subject, cert.Issuer, cert.NotAfter)
			}
			return nil
		}
	}
	return tlsConfig, nil
}

func (hs *httpServer) createServer(ctx context.Context, r *mux.Router) (srv *http.Server, err error) {
	srv = &http.Server{
		Handler:      wrapCorsIfEnabled(ctx, r),
		WriteTimeout: hs.conf.GetDuration(HTTPConfWriteTimeout),
		ReadTimeout:  hs.conf.GetDuration(HTTPConfReadTimeout),
		ConnContext: func(newCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("req", core.ShortID())
			l.Debugf("New %s connection: remote=%s", hs.name, c.RemoteAddr())
			return log.WithLogger(newCtx, l)
		},
	}
	if hs.tlsEnabled {
		if srv.TLSConfig, err = hs.tlsConfig(ctx); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

func (hs *httpServer) serveHTTP(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			log.L(ctx).Infof("Shutting down %s server", hs.name)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), hs.conf.GetDuration(HTTPConfWriteTimeout))
			defer cancel()
			_ = hs.s.Shutdown(shutdownCtx)
		case <-stopped:
		}
	}()

	var err error
	if hs.tlsEnabled {
		err = hs.s.ServeTLS(hs.l, hs.tlsCertFile, hs.tlsKeyFile)
	} else {
		err = hs.s.Serve(hs.l)
	}
	close(stopped)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	log.L(ctx).Infof("%s server stopped", hs.name)
	hs.onClose <- err
}
