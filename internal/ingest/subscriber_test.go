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

	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/mocks/ingestmocks"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestSubscriber(t *testing.T) (*subscriber, *testMocks, *ingestmocks.Poller, func()) {
	resetTestConfig()
	tm := newTestMocks()
	mp := &ingestmocks.Poller{}
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewSubscriber(ctx, tm.mdi, tm.mli, tm.msq, tm.meq, tm.mmm, mp)
	assert.NoError(t, err)
	return s.(*subscriber), tm, mp, cancel
}

func liveEvents(events ...*core.LedgerEvent) <-chan *core.LedgerEvent {
	ch := make(chan *core.LedgerEvent, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func TestNewSubscriberMissingDeps(t *testing.T) {
	_, err := NewSubscriber(context.Background(), nil, nil, nil, nil, nil, nil)
	assert.Regexp(t, "AL10114", err)
}

func TestSubscriberDisabled(t *testing.T) {
	s, tm, mp, cancel := newTestSubscriber(t)
	defer cancel()
	s.conf.SubscriberEnabled = false
	err := s.Start()
	assert.NoError(t, err)
	s.WaitStop()
	tm.assertExpectations(t)
	mp.AssertExpectations(t)
}

func TestSubscriberProcessesAndResubscribes(t *testing.T) {
	s, tm, mp, cancel := newTestSubscriber(t)
	defer cancel()

	ev1 := feedbackEvent(200, "sigL", 7, "")
	ev1.Channel = core.ChannelSubscriber
	tm.mli.On("SubscribeLogs", mock.Anything).Return(liveEvents(ev1), nil).Once()
	tm.mli.On("SubscribeLogs", mock.Anything).Run(func(args mock.Arguments) {
		cancel()
	}).Return(nil, fmt.Errorf("pop")).Once()
	tm.msq.On("Accept", mock.Anything, ev1).Return(nil, sequencer.AcceptOrphaned, nil)
	tm.mmm.On("EventIngested", core.ChannelSubscriber, "orphaned").Return()
	mp.On("Tap").Return()

	err := s.Start()
	assert.NoError(t, err)
	s.WaitStop()
	tm.assertExpectations(t)
	mp.AssertExpectations(t)
}

func TestSubscriberExitsOnClosedAfterCancel(t *testing.T) {
	s, tm, mp, cancel := newTestSubscriber(t)
	tm.mli.On("SubscribeLogs", mock.Anything).Run(func(args mock.Arguments) {
		cancel()
	}).Return(liveEvents(), nil).Once()
	s.subscribeLoop()
	tm.assertExpectations(t)
	mp.AssertExpectations(t)
}

func TestSubscriberExitsWhenProcessCancelled(t *testing.T) {
	s, tm, mp, cancel := newTestSubscriber(t)
	ev1 := feedbackEvent(200, "sigL", 7, "")
	tm.mli.On("SubscribeLogs", mock.Anything).Return(liveEvents(ev1), nil).Once()
	tm.msq.On("Accept", mock.Anything, ev1).Run(func(args mock.Arguments) {
		cancel()
	}).Return(nil, sequencer.AcceptIgnored, fmt.Errorf("pop"))
	s.subscribeLoop()
	tm.assertExpectations(t)
	mp.AssertExpectations(t)
}
