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
	"net/http"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/pkg/core"
)

type scopeVerification struct {
	Scope  core.ScopeRef `json:"scope"`
	Intact bool          `json:"intact"`
}

// getScopeVerify re-walks the chain of one scope. A broken chain is reported as a conflict.
var getScopeVerify = &route{
	Name:        "getScopeVerify",
	Method:      http.MethodGet,
	Path:        "scopes/{kind}/{key}/verify",
	Description: i18n.MsgRouteDescGetScopeVerify,
	PathParams: []*routeParam{
		{Name: "kind", Description: i18n.MsgParamDescScopeKind},
		{Name: "key", Description: i18n.MsgParamDescScopeKey},
	},
	JSONOutputValue: func() interface{} { return &scopeVerification{} },
	JSONHandler: func(as *apiServer, r *apiRequest) (output interface{}, err error) {
		kind, err := enumParam(r.ctx, "scopekind", "kind", r.pp["kind"])
		if err != nil {
			return nil, i18n.NewError(r.ctx, i18n.MsgInvalidPathParam, r.pp["kind"], "kind")
		}
		scope := core.ScopeRef{Kind: kind, Key: r.pp["key"]}
		if err := as.tracker.VerifyScope(r.ctx, scope); err != nil {
			return nil, err
		}
		return &scopeVerification{Scope: scope, Intact: true}, nil
	},
}
