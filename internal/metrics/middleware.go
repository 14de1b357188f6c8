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
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelCode   = "code"
	labelMethod = "method"
	labelHost   = "host"
	labelRoute  = "route"
)

// Instrumentation implements the mux middleware and contains configuration options
type Instrumentation struct {
	UseRouteTemplate   bool
	ReqDurationBuckets []float64
	Namespace          string
	Subsystem          string
	Labels             map[string]string
	Registerer         prometheus.Registerer
	reqTotal           *prometheus.CounterVec
	reqSizeBytes       *prometheus.SummaryVec
	reqDurationSecs    *prometheus.HistogramVec
	resSizeBytes       *prometheus.SummaryVec
}

// NewCustomInstrumentation returns an instrumentation with custom options
func NewCustomInstrumentation(useRouteTemplate bool, namespace string, subsystem string, reqDurationBuckets []float64, labels map[string]string, registerer prometheus.Registerer) *Instrumentation {
	i := Instrumentation{
		UseRouteTemplate:   useRouteTemplate,
		Namespace:          namespace,
		Subsystem:          subsystem,
		ReqDurationBuckets: reqDurationBuckets,
		Labels:             labels,
		Registerer:         registerer,
	}

	i.initMetrics()
	return &i
}

// Middleware satisifies the mux middleware interface
func (i *Instrumentation) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		labelVals := []string{fmt.Sprintf("%d", sw.status), r.Method, r.Host, i.getRoute(r)}
		i.reqSizeBytes.WithLabelValues(labelVals...).Observe(float64(estimateRequestSize(r)))
		i.reqTotal.WithLabelValues(labelVals...).Inc()
		i.resSizeBytes.WithLabelValues(labelVals...).Observe(float64(sw.size))
		i.reqDurationSecs.WithLabelValues(labelVals...).Observe(time.Since(startTime).Seconds())
	})
}

func (i *Instrumentation) initMetrics() {
	labels := []string{labelCode, labelMethod, labelHost, labelRoute}
	i.reqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "requests_total",
		Subsystem: i.Subsystem,
		Namespace: i.Namespace,
		Help:      "The total number of requests received",
	}, labels)
	i.reqSizeBytes = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      "request_size_bytes",
		Subsystem: i.Subsystem,
		Namespace: i.Namespace,
		Help:      "Summary of request bytes received",
	}, labels)
	i.reqDurationSecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "request_duration_seconds",
		Subsystem: i.Subsystem,
		Namespace: i.Namespace,
		Help:      "Histogram of the request duration",
		Buckets:   i.ReqDurationBuckets,
	}, labels)
	i.resSizeBytes = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      "response_size_bytes",
		Subsystem: i.Subsystem,
		Namespace: i.Namespace,
		Help:      "Summary of response bytes sent",
	}, labels)

	reg := prometheus.WrapRegistererWith(i.Labels, i.Registerer)
	reg.MustRegister(i.reqTotal, i.reqSizeBytes, i.reqDurationSecs, i.resSizeBytes)
}

// getRoute returns the route either as template or the actual url path based on the instrumentation settings
func (i *Instrumentation) getRoute(r *http.Request) string {
	if i.UseRouteTemplate {
		if route := mux.CurrentRoute(r); route != nil {
			path, _ := route.GetPathTemplate()
			return path
		}
	}
	return r.URL.Path
}

// estimateRequestSize approximates the request line, headers and declared body, without reading the body
func estimateRequestSize(r *http.Request) int64 {
	reqSize := int64(len(r.Method) + len(r.Proto) + 4)
	if r.URL != nil {
		reqSize += int64(len(r.URL.Path))
	}
	for key, vals := range r.Header {
		reqSize += int64(len(key))
		for _, v := range vals {
			reqSize += int64(len(v))
		}
		reqSize += 2
	}
	if r.ContentLength > 0 {
		reqSize += r.ContentLength
	}
	return reqSize
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func (w *statusResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}
