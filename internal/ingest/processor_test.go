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
	"fmt"
	"testing"
	"time"

	"github.com/kaleido-io/agentledger/internal/retry"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestProcessor() (*processor, *testMocks) {
	tm := newTestMocks()
	return &processor{
		database:  tm.mdi,
		sequencer: tm.msq,
		enqueuer:  tm.meq,
		metrics:   tm.mmm,
		retry:     &retry.Retry{InitialDelay: time.Microsecond},
	}, tm
}

func agentURIEvent(slot uint64, uri string) *core.LedgerEvent {
	return &core.LedgerEvent{
		OrderingKey: core.OrderingKey{Slot: slot, Signature: "sigU"},
		Channel:     core.ChannelSubscriber,
		Payload:     &core.AgentURIUpdated{Asset: "asset1", URI: uri},
	}
}

func TestProcessRetriesAccept(t *testing.T) {
	p, tm := newTestProcessor()
	ev := feedbackEvent(100, "sig1", 1, "")
	tm.msq.On("Accept", mock.Anything, ev).Return(nil, sequencer.AcceptIgnored, fmt.Errorf("pop")).Once()
	tm.msq.On("Accept", mock.Anything, ev).Return(&core.Record{}, sequencer.AcceptChainConflict, nil).Once()
	tm.mmm.On("EventIngested", core.ChannelPoller, "chainconflict").Return()
	err := p.process(context.Background(), ev)
	assert.NoError(t, err)
	tm.assertExpectations(t)
}

func TestProcessMetricsDisabled(t *testing.T) {
	p, tm := newTestProcessor()
	tm.mmm.ExpectedCalls = nil
	tm.mmm.On("IsMetricsEnabled").Return(false)
	ev := feedbackEvent(100, "sig1", 1, "")
	tm.msq.On("Accept", mock.Anything, ev).Return(&core.Record{}, sequencer.AcceptInserted, nil)
	err := p.process(context.Background(), ev)
	assert.NoError(t, err)
	tm.assertExpectations(t)
}

func TestProcessIgnoredEventStillEnriches(t *testing.T) {
	// URI updates are not projected as records, but they move the enrichment input
	p, tm := newTestProcessor()
	ev := agentURIEvent(300, "https://docs.example/v2.json")
	tm.msq.On("Accept", mock.Anything, ev).Return(nil, sequencer.AcceptIgnored, nil)
	tm.mmm.On("EventIngested", core.ChannelSubscriber, "ignored").Return()
	tm.mdi.On("UpsertEnrichmentInput", mock.Anything, &core.EnrichmentInput{
		Subject:     "agent:asset1",
		Reference:   "https://docs.example/v2.json",
		UpdatedSlot: 300,
	}).Return(true, nil)
	tm.meq.On("Enqueue", mock.Anything, "agent:asset1", "https://docs.example/v2.json").Return(nil)
	err := p.process(context.Background(), ev)
	assert.NoError(t, err)
	tm.assertExpectations(t)
}

func TestProcessDuplicateSkipsEnrichment(t *testing.T) {
	p, tm := newTestProcessor()
	ev := feedbackEvent(100, "sig1", 1, "https://docs.example/fb1.json")
	tm.msq.On("Accept", mock.Anything, ev).Return(&core.Record{}, sequencer.AcceptDuplicate, nil)
	tm.mmm.On("EventIngested", core.ChannelPoller, "duplicate").Return()
	err := p.process(context.Background(), ev)
	assert.NoError(t, err)
	tm.assertExpectations(t)
}

func TestEnrichUnchanged(t *testing.T) {
	p, tm := newTestProcessor()
	tm.mdi.On("UpsertEnrichmentInput", mock.Anything, mock.Anything).Return(false, nil)
	p.enrich(context.Background(), agentURIEvent(300, "https://docs.example/v1.json"))
	tm.assertExpectations(t)
}

func TestEnrichUpsertFails(t *testing.T) {
	p, tm := newTestProcessor()
	tm.mdi.On("UpsertEnrichmentInput", mock.Anything, mock.Anything).Return(false, fmt.Errorf("pop"))
	p.enrich(context.Background(), agentURIEvent(300, "https://docs.example/v1.json"))
	tm.assertExpectations(t)
}

func TestEnrichEnqueueFails(t *testing.T) {
	p, tm := newTestProcessor()
	tm.mdi.On("UpsertEnrichmentInput", mock.Anything, mock.Anything).Return(true, nil)
	tm.meq.On("Enqueue", mock.Anything, "agent:asset1", "https://docs.example/v1.json").Return(fmt.Errorf("pop"))
	p.enrich(context.Background(), agentURIEvent(300, "https://docs.example/v1.json"))
	tm.assertExpectations(t)
}

func TestEnrichDisabled(t *testing.T) {
	p, tm := newTestProcessor()
	p.enqueuer = nil
	p.enrich(context.Background(), agentURIEvent(300, "https://docs.example/v1.json"))
	tm.assertExpectations(t)
}

func TestEnrichEmptyReference(t *testing.T) {
	p, tm := newTestProcessor()
	p.enrich(context.Background(), agentURIEvent(300, ""))
	p.enrich(context.Background(), &core.LedgerEvent{})
	tm.assertExpectations(t)
}
