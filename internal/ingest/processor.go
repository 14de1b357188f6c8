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

package ingest

import (
	"context"

	"github.com/kaleido-io/agentledger/internal/enrichment"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/retry"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

// processor is shared by both delivery channels. Replays through either channel are
// absorbed by the natural key conflict handling of the sequencer.
type processor struct {
	database  database.Plugin
	sequencer sequencer.Sequencer
	enqueuer  enrichment.Enqueuer
	metrics   metrics.Manager
	retry     *retry.Retry
}

// process retries transient failures until it succeeds, or the context is cancelled
func (p *processor) process(ctx context.Context, event *core.LedgerEvent) error {
	var result sequencer.AcceptResult
	err := p.retry.Do(ctx, "accept event", func(attempt int) (bool, error) {
		var err error
		_, result, err = p.sequencer.Accept(ctx, event)
		return err != nil, err
	})
	if err != nil {
		return err
	}
	log.L(ctx).Debugf("Event %s from %s: %s", &event.OrderingKey, event.Channel, result)
	if p.metrics.IsMetricsEnabled() {
		p.metrics.EventIngested(event.Channel, result.String())
	}
	if result != sequencer.AcceptDuplicate {
		p.enrich(ctx, event)
	}
	return nil
}

// enrich is best effort. Subjects missed here are picked up by the recovery sweep of the queue.
func (p *processor) enrich(ctx context.Context, event *core.LedgerEvent) {
	if p.enqueuer == nil {
		return
	}
	subject, reference, ok := event.EnrichmentReference()
	if !ok {
		return
	}
	changed, err := p.database.UpsertEnrichmentInput(ctx, &core.EnrichmentInput{
		Subject:     subject,
		Reference:   reference,
		UpdatedSlot: event.Slot,
	})
	if err != nil {
		log.L(ctx).Warnf("Failed to record enrichment reference of '%s': %s", subject, err)
		return
	}
	if !changed {
		return
	}
	if err := p.enqueuer.Enqueue(ctx, subject, reference); err != nil {
		log.L(ctx).Warnf("Failed to queue enrichment of '%s': %s", subject, err)
	}
}
