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

package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
)

func TestEstimateRequestSize(t *testing.T) {
	get := httptest.NewRequest("GET", "http://example.com/foo", nil)
	assert.Equal(t, int64(19), estimateRequestSize(get))

	withHeader := httptest.NewRequest("GET", "http://example.com/foo", nil)
	withHeader.Header.Add("User-Agent", "testing")
	assert.Equal(t, int64(38), estimateRequestSize(withHeader))

	post := httptest.NewRequest("POST", "http://example.com/foo", strings.NewReader("forTesting!"))
	assert.Equal(t, int64(31), estimateRequestSize(post))
}

func TestMiddlewareEndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	inst := NewCustomInstrumentation(true, "test", "case", prometheus.DefBuckets, map[string]string{}, reg)

	r := mux.NewRouter()
	r.Use(inst.Middleware)
	r.Path("/metrics").Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Path("/helloworld/{id}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("hello"))
	})

	s := httptest.NewServer(r)
	defer s.Close()

	for i := 1; i <= 3; i++ {
		res, err := s.Client().Get(fmt.Sprintf("%s/helloworld/%d", s.URL, i))
		assert.NoError(t, err)
		res.Body.Close()
	}

	res, err := s.Client().Get(fmt.Sprintf("%s/metrics", s.URL))
	assert.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	assert.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`test_case_requests_total\{code="202",.*route="/helloworld/\{id\}"\} 3`), string(body))
	assert.Regexp(t, regexp.MustCompile(`test_case_response_size_bytes_sum\{code="202",.*route="/helloworld/\{id\}"\} 15`), string(body))
}

func TestRouteWithoutTemplate(t *testing.T) {
	inst := NewCustomInstrumentation(false, "test", "raw", prometheus.DefBuckets, map[string]string{}, prometheus.NewRegistry())
	req := httptest.NewRequest("GET", "http://example.com/helloworld/1", nil)
	assert.Equal(t, "/helloworld/1", inst.getRoute(req))
}

func TestHijackNotSupported(t *testing.T) {
	sw := &statusResponseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := sw.Hijack()
	assert.Regexp(t, "hijack not supported", err)
}
