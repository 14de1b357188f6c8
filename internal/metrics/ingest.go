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

var IngestEventsCounter *prometheus.CounterVec

// MetricsIngestEvents is the prometheus metric for ledger events handled, by delivery channel and outcome
var MetricsIngestEvents = "al_ingest_events_total"

func InitIngestMetrics() {
	IngestEventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsIngestEvents,
		Help: "Number of ledger events handled by ingestion",
	}, []string{"channel", "result"})
}

func RegisterIngestMetrics() {
	registry.MustRegister(IngestEventsCounter)
}
