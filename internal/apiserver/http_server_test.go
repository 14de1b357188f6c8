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
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInvalidListener(t *testing.T) {
	cp := config.NewPluginConfig("ut")
	initHTTPConfPrefix(cp, 0)
	cp.Set(HTTPConfAddress, "...")
	_, err := newHTTPServer(context.Background(), "ut", mux.NewRouter(), make(chan error), cp)
	assert.Regexp(t, "AL10103", err)
}

func TestServeFail(t *testing.T) {
	config.Reset()
	cp := config.NewPluginConfig("ut")
	initHTTPConfPrefix(cp, 0)
	errChan := make(chan error)
	hs, err := newHTTPServer(context.Background(), "ut", mux.NewRouter(), errChan, cp)
	assert.NoError(t, err)
	hs.l.Close() // So server will fail
	go hs.serveHTTP(context.Background())
	err = <-errChan
	assert.Error(t, err)
}

func TestMissingCAFile(t *testing.T) {
	config.Reset()
	cp := config.NewPluginConfig("ut")
	initHTTPConfPrefix(cp, 0)
	cp.Set(HTTPConfTLSEnabled, true)
	cp.Set(HTTPConfTLSCAFile, "badness")
	_, err := newHTTPServer(context.Background(), "ut", mux.NewRouter(), make(chan error), cp)
	assert.Regexp(t, "AL10181", err)
}

func TestBadCAFile(t *testing.T) {
	config.Reset()
	caFile := filepath.Join(t.TempDir(), "ca.pem")
	assert.NoError(t, os.WriteFile(caFile, []byte("not a certificate"), 0600))
	cp := config.NewPluginConfig("ut")
	initHTTPConfPrefix(cp, 0)
	cp.Set(HTTPConfTLSEnabled, true)
	cp.Set(HTTPConfTLSCAFile, caFile)
	_, err := newHTTPServer(context.Background(), "ut", mux.NewRouter(), make(chan error), cp)
	assert.Regexp(t, "AL10180", err)
}

func TestTLSServerSelfSignedWithClientAuth(t *testing.T) {
	config.Reset()
	dir := t.TempDir()

	// Create an X509 certificate pair
	privatekey, _ := rsa.GenerateKey(rand.Reader, 2048)
	publickey := &privatekey.PublicKey
	privateKeyFile := filepath.Join(dir, "key.pem")
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privatekey)})
	assert.NoError(t, os.WriteFile(privateKeyFile, privateKeyPEM, 0600))
	serialNumber, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	x509Template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Unit Tests"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(100 * time.Second),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	derBytes, err := x509.CreateCertificate(rand.Reader, x509Template, x509Template, publickey, privatekey)
	assert.NoError(t, err)
	publicKeyFile := filepath.Join(dir, "cert.pem")
	assert.NoError(t, os.WriteFile(publicKeyFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes}), 0600))

	// Start up a listener configured for TLS Mutual auth
	cp := config.NewPluginConfig("ut")
	initHTTPConfPrefix(cp, 0)
	cp.Set(HTTPConfAddress, "127.0.0.1")
	cp.Set(HTTPConfTLSEnabled, true)
	cp.Set(HTTPConfTLSClientAuth, true)
	cp.Set(HTTPConfTLSKeyFile, privateKeyFile)
	cp.Set(HTTPConfTLSCertFile, publicKeyFile)
	cp.Set(HTTPConfTLSCAFile, publicKeyFile)
	cp.Set(HTTPConfPort, 0)
	ctx, cancelCtx := context.WithCancel(context.Background())
	r := mux.NewRouter()
	r.HandleFunc("/test", func(res http.ResponseWriter, req *http.Request) {
		res.WriteHeader(200)
		_ = json.NewEncoder(res).Encode(map[string]interface{}{"hello": "world"})
	})
	errChan := make(chan error)
	hs, err := newHTTPServer(context.Background(), "ut", r, errChan, cp)
	assert.NoError(t, err)
	go hs.serveHTTP(ctx)

	// Attempt a request, with a client certificate
	rootCAs := x509.NewCertPool()
	caPEM, _ := os.ReadFile(publicKeyFile)
	ok := rootCAs.AppendCertsFromPEM(caPEM)
	assert.True(t, ok)
	c := http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				GetClientCertificate: func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
					clientKeyPair, err := tls.LoadX509KeyPair(publicKeyFile, privateKeyFile)
					return &clientKeyPair, err
				},
				RootCAs: rootCAs,
			},
		},
	}
	httpsAddr := fmt.Sprintf("https://%s/test", hs.l.Addr().String())
	res, err := c.Get(httpsAddr)
	assert.NoError(t, err)
	if res != nil {
		assert.Equal(t, 200, res.StatusCode)
		var resBody map[string]interface{}
		_ = json.NewDecoder(res.Body).Decode(&resBody)
		assert.Equal(t, "world", resBody["hello"])
	}

	// Close down the server and wait for it to complete
	cancelCtx()
	err = <-errChan
	assert.NoError(t, err)
}
