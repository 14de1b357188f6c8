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
	"net/http"
	"strconv"
	"strings"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

var getRecords = &route{
	Name:        "getRecords",
	Method:      http.MethodGet,
	Path:        "records",
	Description: i18n.MsgRouteDescGetRecords,
	QueryParams: []*routeParam{
		{Name: "kind", Description: i18n.MsgParamDescKind},
		{Name: "status", Description: i18n.MsgParamDescStatus},
		{Name: "scope", Description: i18n.MsgParamDescScope},
		{Name: "includeOrphaned", Description: i18n.MsgParamDescIncludeOrphaned},
		{Name: "skip", Description: i18n.MsgParamDescSkip},
		{Name: "limit", Description: i18n.MsgParamDescLimit},
	},
	JSONOutputValue: func() interface{} { return []*core.Record{} },
	JSONHandler: func(as *apiServer, r *apiRequest) (output interface{}, err error) {
		query, err := as.buildRecordQuery(r)
		if err != nil {
			return nil, err
		}
		return as.database.GetRecords(r.ctx, query)
	},
}

func enumParam(ctx context.Context, enumType, name, value string) (core.Enum, error) {
	for _, v := range core.EnumValues(enumType) {
		if strings.EqualFold(v.(string), value) {
			return core.Enum(v.(string)), nil
		}
	}
	return "", i18n.NewError(ctx, i18n.MsgInvalidQueryParam, value, name)
}

func parseScope(ctx context.Context, value string) (*core.ScopeRef, error) {
	kind, key, ok := strings.Cut(value, ":")
	if !ok {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidQueryParam, value, "scope")
	}
	scopeKind, err := enumParam(ctx, "scopekind", "scope", kind)
	if err != nil {
		return nil, err
	}
	return &core.ScopeRef{Kind: scopeKind, Key: key}, nil
}

func (as *apiServer) buildRecordQuery(r *apiRequest) (query *database.RecordQuery, err error) {
	query = &database.RecordQuery{Limit: as.defaultLimit}
	if v := r.qp.Get("kind"); v != "" {
		if query.Kind, err = enumParam(r.ctx, "recordkind", "kind", v); err != nil {
			return nil, err
		}
	}
	if v := r.qp.Get("status"); v != "" {
		if query.Status, err = enumParam(r.ctx, "recordstatus", "status", v); err != nil {
			return nil, err
		}
	}
	if v := r.qp.Get("scope"); v != "" {
		if query.Scope, err = parseScope(r.ctx, v); err != nil {
			return nil, err
		}
	}
	if v := r.qp.Get("includeOrphaned"); v != "" {
		if query.IncludeOrphaned, err = strconv.ParseBool(v); err != nil {
			return nil, i18n.NewError(r.ctx, i18n.MsgInvalidQueryParam, v, "includeOrphaned")
		}
	}
	if v := r.qp.Get("skip"); v != "" {
		if query.Skip, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, i18n.NewError(r.ctx, i18n.MsgInvalidQueryParam, v, "skip")
		}
	}
	if v := r.qp.Get("limit"); v != "" {
		query.Limit, err = strconv.ParseUint(v, 10, 64)
		if err != nil || query.Limit == 0 || query.Limit > maxLimit {
			return nil, i18n.NewError(r.ctx, i18n.MsgInvalidQueryParam, v, "limit")
		}
	}
	return query, nil
}
