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
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/hashchain"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/verifier"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var alCodeExtractor = regexp.MustCompile(`^(AL\d+):`)

var adminConfigPrefix = config.NewPluginConfig("admin")

const maxLimit = 1000

// Server is the external interface for the admin API server
type Server interface {
	// Serve blocks until the context is cancelled, or the listener fails
	Serve(ctx context.Context) error
}

type apiServer struct {
	database       database.Plugin
	verifier       verifier.Verifier
	tracker        hashchain.Tracker
	defaultLimit   uint64
	metricsEnabled bool
}

type restError struct {
	Error string `json:"error"`
}

type apiRequest struct {
	ctx context.Context
	req *http.Request
	pp  map[string]string
	qp  url.Values
}

type routeParam struct {
	Name        string
	Description i18n.MessageKey
}

type route struct {
	Name            string
	Method          string
	Path            string
	Description     i18n.MessageKey
	PathParams      []*routeParam
	QueryParams     []*routeParam
	JSONOutputValue func() interface{}
	JSONHandler     func(as *apiServer, r *apiRequest) (output interface{}, err error)
}

func InitConfig() {
	initHTTPConfPrefix(adminConfigPrefix, 5100)
}

func NewAPIServer(ctx context.Context, di database.Plugin, vi verifier.Verifier, ht hashchain.Tracker) (Server, error) {
	if di == nil || vi == nil || ht == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "apiserver")
	}
	return &apiServer{
		database:       di,
		verifier:       vi,
		tracker:        ht,
		defaultLimit:   uint64(config.GetUint(config.AdminDefaultLimit)),
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}, nil
}

func (as *apiServer) Serve(ctx context.Context) error {
	if !config.GetBool(config.AdminEnabled) {
		log.L(ctx).Infof("Admin server disabled")
		<-ctx.Done()
		return nil
	}
	errChan := make(chan error)
	hs, err := newHTTPServer(ctx, "admin", as.createMuxRouter(ctx), errChan, adminConfigPrefix)
	if err != nil {
		return err
	}
	go hs.serveHTTP(ctx)
	return <-errChan
}

func (as *apiServer) createMuxRouter(ctx context.Context) *mux.Router {
	r := mux.NewRouter()
	if as.metricsEnabled {
		r.Use(metrics.GetAdminServerInstrumentation().Middleware)
		r.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	}
	for _, route := range routes {
		r.HandleFunc("/api/v1/"+route.Path, as.routeHandler(route)).Methods(route.Method)
	}
	r.HandleFunc("/api/openapi.json", as.openAPIHandler).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		as.writeJSON(req.Context(), res, http.StatusNotFound, &restError{Error: i18n.ExpandWithCode(req.Context(), i18n.Msg404NotFound)})
	})
	return r
}

func (as *apiServer) routeHandler(route *route) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		l := log.L(req.Context()).WithField("route", route.Name)
		ctx := log.WithLogger(req.Context(), l)
		startTime := time.Now()
		l.Infof("--> %s %s", req.Method, req.URL.Path)

		output, err := route.JSONHandler(as, &apiRequest{
			ctx: ctx,
			req: req,
			pp:  mux.Vars(req),
			qp:  req.URL.Query(),
		})
		status := http.StatusOK
		if err != nil {
			status = as.errStatus(err)
			output = &restError{Error: err.Error()}
		}
		as.writeJSON(ctx, res, status, output)
		l.Infof("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, status, float64(time.Since(startTime))/float64(time.Millisecond))
	}
}

func (as *apiServer) errStatus(err error) int {
	if code := alCodeExtractor.FindStringSubmatch(err.Error()); len(code) == 2 {
		if status, ok := i18n.GetStatusHint(code[1]); ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

func (as *apiServer) writeJSON(ctx context.Context, res http.ResponseWriter, status int, output interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(output); err != nil {
		log.L(ctx).Errorf("Failed to write response: %s", err)
	}
}
