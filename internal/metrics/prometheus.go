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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var registry *prometheus.Registry
var adminInstrumentation *Instrumentation

// Registry returns the process wide Prometheus registry, with the engine collectors registered
func Registry() *prometheus.Registry {
	if registry == nil {
		initMetricsCollectors()
		registry = prometheus.NewRegistry()
		registerMetricsCollectors()
	}

	return registry
}

// GetAdminServerInstrumentation returns the admin server's Prometheus middleware, ensuring its metrics are never
// registered twice
func GetAdminServerInstrumentation() *Instrumentation {
	if adminInstrumentation == nil {
		adminInstrumentation = NewInstrumentation("admin")
	}
	return adminInstrumentation
}

func NewInstrumentation(subsystem string) *Instrumentation {
	return NewCustomInstrumentation(
		true,
		"al_apiserver",
		subsystem,
		prometheus.DefBuckets,
		map[string]string{},
		Registry(),
	)
}

// Clear will reset the Prometheus metrics registry and instrumentations, useful for testing
func Clear() {
	registry = nil
	adminInstrumentation = nil
}

func initMetricsCollectors() {
	InitIngestMetrics()
	InitVerifierMetrics()
	InitEnrichmentMetrics()
}

func registerMetricsCollectors() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	RegisterIngestMetrics()
	RegisterVerifierMetrics()
	RegisterEnrichmentMetrics()
}
