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
)

var (
	EnrichmentTasksCounter *prometheus.CounterVec
	EnrichmentDepthGauge   *prometheus.GaugeVec
)

var (
	MetricsEnrichmentTasks = "al_enrichment_tasks_total"
	MetricsEnrichmentDepth = "al_enrichment_queue_depth"
)

func InitEnrichmentMetrics() {
	EnrichmentTasksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsEnrichmentTasks,
		Help: "Number of enrichment tasks finished, by outcome",
	}, []string{"outcome"})
	EnrichmentDepthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: MetricsEnrichmentDepth,
		Help: "Number of enrichment tasks waiting or running",
	}, []string{"state"})
}

func RegisterEnrichmentMetrics() {
	registry.MustRegister(EnrichmentTasksCounter)
	registry.MustRegister(EnrichmentDepthGauge)
}
