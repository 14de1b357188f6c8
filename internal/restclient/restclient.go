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

package restclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

type retryCtxKey struct{}

type retryCtx struct {
	id       string
	start    time.Time
	attempts uint
}

// OnAfterResponse logs the outcome of a request. Callers using SetDoNotParseResponse must invoke it themselves.
func OnAfterResponse(c *resty.Client, resp *resty.Response) {
	if c == nil || resp == nil {
		return
	}
	rctx := resp.Request.Context()
	elapsed := float64(0)
	if rc, ok := rctx.Value(retryCtxKey{}).(*retryCtx); ok {
		elapsed = float64(time.Since(rc.start)) / float64(time.Millisecond)
	}
	log.L(rctx).Infof("<== %s %s [%d] (%.2fms)", resp.Request.Method, resp.Request.URL, resp.StatusCode(), elapsed)
}

// New builds a resty client from a config prefix initialized with InitPrefix
func New(ctx context.Context, prefix config.Prefix) *resty.Client {

	var client *resty.Client

	if httpClient, ok := prefix.Get(HTTPCustomClient).(*http.Client); ok {
		client = resty.NewWithClient(httpClient)
	}
	if client == nil {
		client = resty.New()
	}

	url := strings.TrimSuffix(prefix.GetString(HTTPConfigURL), "/")
	if url != "" {
		client.SetBaseURL(url)
		log.L(ctx).Debugf("Created REST client to %s", url)
	}

	if proxy := prefix.GetString(HTTPConfigProxyURL); proxy != "" {
		client.SetProxy(proxy)
	}

	client.SetTimeout(prefix.GetDuration(HTTPConfigRequestTimeout))

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		rctx := req.Context()
		rc, _ := rctx.Value(retryCtxKey{}).(*retryCtx)
		if rc == nil {
			rc = &retryCtx{
				id:    core.ShortID(),
				start: time.Now(),
			}
			rctx = context.WithValue(rctx, retryCtxKey{}, rc)
			rctx = log.WithLogger(rctx, log.L(rctx).WithField("breq", rc.id))
			req.SetContext(rctx)
		}
		rc.attempts++
		log.L(rctx).Infof("==> %s %s%s", req.Method, url, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, r *resty.Response) error { OnAfterResponse(c, r); return nil })

	for k, v := range prefix.GetObject(HTTPConfigHeaders) {
		if vs, ok := v.(string); ok {
			client.SetHeader(k, vs)
		}
	}
	authUsername := prefix.GetString(HTTPConfigAuthUsername)
	authPassword := prefix.GetString(HTTPConfigAuthPassword)
	if authUsername != "" && authPassword != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Basic %s", base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", authUsername, authPassword)))))
	}

	if prefix.GetBool(HTTPConfigRetryEnabled) {
		client.
			SetRetryCount(prefix.GetInt(HTTPConfigRetryCount)).
			SetRetryWaitTime(prefix.GetDuration(HTTPConfigRetryInitDelay)).
			SetRetryMaxWaitTime(prefix.GetDuration(HTTPConfigRetryMaxDelay)).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if r == nil || r.IsSuccess() {
					return false
				}
				rctx := r.Request.Context()
				if rc, ok := rctx.Value(retryCtxKey{}).(*retryCtx); ok {
					log.L(rctx).Infof("retry %d/%d (min=%dms/max=%dms) status=%d", rc.attempts, client.RetryCount, client.RetryWaitTime.Milliseconds(), client.RetryMaxWaitTime.Milliseconds(), r.StatusCode())
				}
				return true
			})
	}

	return client
}

// WrapRestErr builds an error from a failed request, including a truncated copy of the response body
func WrapRestErr(ctx context.Context, res *resty.Response, err error, key i18n.MessageKey) error {
	var respData string
	if res != nil {
		if res.RawBody() != nil {
			defer func() { _ = res.RawBody().Close() }()
			if r, err := io.ReadAll(res.RawBody()); err == nil {
				respData = string(r)
			}
		}
		if respData == "" {
			respData = res.String()
		}
		if len(respData) > defaultMaxErrorBodySize {
			respData = respData[0:defaultMaxErrorBodySize] + "..."
		}
	}
	if err != nil {
		return i18n.WrapError(ctx, err, key, respData)
	}
	return i18n.NewError(ctx, key, respData)
}
