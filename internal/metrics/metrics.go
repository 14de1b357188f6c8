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
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/pkg/core"
)

type Manager interface {
	EventIngested(channel core.Channel, result string)
	VerifierCycleCompleted(lastVerifiedSlot uint64)
	VerifierFinalized(kind core.RecordKind)
	VerifierMismatch(kind core.RecordKind)
	VerifierOrphaned(kind core.RecordKind)
	VerifierRecovered(kind core.RecordKind)
	EnrichmentTask(outcome string)
	EnrichmentQueueDepth(queued, deferred, inflight int)
	IsMetricsEnabled() bool
}

type metricsManager struct {
	ctx            context.Context
	metricsEnabled bool
}

func NewMetricsManager(ctx context.Context) Manager {
	mm := &metricsManager{
		ctx:            ctx,
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}
	if mm.metricsEnabled {
		Registry()
	}
	return mm
}

func (mm *metricsManager) EventIngested(channel core.Channel, result string) {
	IngestEventsCounter.WithLabelValues(channel.String(), result).Inc()
}

func (mm *metricsManager) VerifierCycleCompleted(lastVerifiedSlot uint64) {
	VerifierCyclesCounter.Inc()
	VerifierLastVerifiedGauge.Set(float64(lastVerifiedSlot))
	VerifierLivenessGauge.Set(float64(time.Now().Unix()))
}

func (mm *metricsManager) VerifierFinalized(kind core.RecordKind) {
	VerifierFinalizedCounter.WithLabelValues(kind.String()).Inc()
}

func (mm *metricsManager) VerifierMismatch(kind core.RecordKind) {
	VerifierMismatchCounter.WithLabelValues(kind.String()).Inc()
}

func (mm *metricsManager) VerifierOrphaned(kind core.RecordKind) {
	VerifierOrphanedCounter.WithLabelValues(kind.String()).Inc()
}

func (mm *metricsManager) VerifierRecovered(kind core.RecordKind) {
	VerifierRecoveredCounter.WithLabelValues(kind.String()).Inc()
}

func (mm *metricsManager) EnrichmentTask(outcome string) {
	EnrichmentTasksCounter.WithLabelValues(outcome).Inc()
}

func (mm *metricsManager) EnrichmentQueueDepth(queued, deferred, inflight int) {
	EnrichmentDepthGauge.WithLabelValues("queued").Set(float64(queued))
	EnrichmentDepthGauge.WithLabelValues("deferred").Set(float64(deferred))
	EnrichmentDepthGauge.WithLabelValues("inflight").Set(float64(inflight))
}

func (mm *metricsManager) IsMetricsEnabled() bool {
	return mm.metricsEnabled
}
