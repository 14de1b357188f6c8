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
	VerifierCyclesCounter     prometheus.Counter
	VerifierFinalizedCounter  *prometheus.CounterVec
	VerifierMismatchCounter   *prometheus.CounterVec
	VerifierOrphanedCounter   *prometheus.CounterVec
	VerifierRecoveredCounter  *prometheus.CounterVec
	VerifierLastVerifiedGauge prometheus.Gauge
	VerifierLivenessGauge     prometheus.Gauge
)

var (
	MetricsVerifierCycles       = "al_verifier_cycles_total"
	MetricsVerifierFinalized    = "al_verifier_finalized_total"
	MetricsVerifierMismatches   = "al_verifier_mismatches_total"
	MetricsVerifierOrphaned     = "al_verifier_orphaned_total"
	MetricsVerifierRecovered    = "al_verifier_recovered_total"
	MetricsVerifierLastVerified = "al_verifier_last_verified_slot"
	MetricsVerifierLiveness     = "al_verifier_last_cycle_timestamp_seconds"
)

func InitVerifierMetrics() {
	VerifierCyclesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricsVerifierCycles,
		Help: "Number of verification cycles completed",
	})
	VerifierFinalizedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsVerifierFinalized,
		Help: "Number of records moved to finalized",
	}, []string{"kind"})
	VerifierMismatchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsVerifierMismatches,
		Help: "Number of records whose on-chain state did not match the local chain",
	}, []string{"kind"})
	VerifierOrphanedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsVerifierOrphaned,
		Help: "Number of records moved to orphaned after exhausting retries",
	}, []string{"kind"})
	VerifierRecoveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricsVerifierRecovered,
		Help: "Number of orphaned records readmitted by the recovery sweep",
	}, []string{"kind"})
	VerifierLastVerifiedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricsVerifierLastVerified,
		Help: "Cutoff slot of the last completed verification cycle",
	})
	VerifierLivenessGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricsVerifierLiveness,
		Help: "Unix time of the last completed verification cycle",
	})
}

func RegisterVerifierMetrics() {
	registry.MustRegister(VerifierCyclesCounter)
	registry.MustRegister(VerifierFinalizedCounter)
	registry.MustRegister(VerifierMismatchCounter)
	registry.MustRegister(VerifierOrphanedCounter)
	registry.MustRegister(VerifierRecoveredCounter)
	registry.MustRegister(VerifierLastVerifiedGauge)
	registry.MustRegister(VerifierLivenessGauge)
}
