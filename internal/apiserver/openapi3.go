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
	"fmt"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/kaleido-io/agentledger/internal/i18n"
)

func openAPIGen(ctx context.Context, serverURL string, routes []*route) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.2",
		Servers: openapi3.Servers{
			{URL: serverURL},
		},
		Info: &openapi3.Info{
			Title:       "Agent Ledger",
			Version:     "1.0",
			Description: "Copyright © 2022 Kaleido, Inc.",
		},
		Paths: openapi3.Paths{},
	}
	for _, route := range routes {
		addRoute(ctx, doc, route)
	}
	return doc
}

func getPathItem(doc *openapi3.T, path string) *openapi3.PathItem {
	path = "/" + path
	pi, ok := doc.Paths[path]
	if ok {
		return pi
	}
	pi = &openapi3.PathItem{}
	doc.Paths[path] = pi
	return pi
}

func addOutput(ctx context.Context, output interface{}, op *openapi3.Operation) {
	schemaRef, _, _ := openapi3gen.NewSchemaRefForValue(output)
	s := i18n.Expand(ctx, i18n.MsgSuccessResponse)
	op.Responses[strconv.Itoa(http.StatusOK)] = &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &s,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: schemaRef,
				},
			},
		},
	}
}

func addParam(ctx context.Context, op *openapi3.Operation, in string, p *routeParam) {
	op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			In:          in,
			Name:        p.Name,
			Required:    in == openapi3.ParameterInPath,
			Description: i18n.Expand(ctx, p.Description),
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: "string",
				},
			},
		},
	})
}

func addRoute(ctx context.Context, doc *openapi3.T, route *route) {
	pi := getPathItem(doc, route.Path)
	op := &openapi3.Operation{
		Description: i18n.Expand(ctx, route.Description),
		OperationID: route.Name,
		Responses:   openapi3.NewResponses(),
	}
	if route.JSONOutputValue != nil {
		addOutput(ctx, route.JSONOutputValue(), op)
	}
	for _, p := range route.PathParams {
		addParam(ctx, op, openapi3.ParameterInPath, p)
	}
	for _, p := range route.QueryParams {
		addParam(ctx, op, openapi3.ParameterInQuery, p)
	}
	switch route.Method {
	case http.MethodGet:
		pi.Get = op
	case http.MethodPost:
		pi.Post = op
	}
}

func (as *apiServer) openAPIHandler(res http.ResponseWriter, req *http.Request) {
	serverURL := fmt.Sprintf("http://%s/api/v1", req.Host)
	as.writeJSON(req.Context(), res, http.StatusOK, openAPIGen(req.Context(), serverURL, routes))
}
