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
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/kaleido-io/agentledger/pkg/ledger"
)

// Subscriber projects live events as they are pushed, and wakes the poller so the
// persisted cursor catches up. It never moves the cursor itself.
type Subscriber interface {
	Start() error
	WaitStop()
}

type subscriber struct {
	ctx       context.Context
	ledger    ledger.Plugin
	processor *processor
	poller    Poller
	conf      *Config
	closed    chan struct{}
}

func NewSubscriber(ctx context.Context, di database.Plugin, li ledger.Plugin, sq sequencer.Sequencer, eq enrichment.Enqueuer, mm metrics.Manager, poller Poller) (Subscriber, error) {
	if di == nil || li == nil || sq == nil || mm == nil || poller == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "subscriber")
	}
	conf, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &subscriber{
		ctx:    log.WithLogField(ctx, "role", "subscriber"),
		ledger: li,
		processor: &processor{
			database:  di,
			sequencer: sq,
			enqueuer:  eq,
			metrics:   mm,
			retry:     &conf.Retry,
		},
		poller: poller,
		conf:   conf,
		closed: make(chan struct{}),
	}, nil
}

func (s *subscriber) Start() error {
	if !s.conf.Enabled || !s.conf.SubscriberEnabled {
		log.L(s.ctx).Infof("Live subscription disabled")
		close(s.closed)
		return nil
	}
	go s.subscribeLoop()
	return nil
}

func (s *subscriber) WaitStop() {
	<-s.closed
}

func (s *subscriber) subscribe() (events <-chan *core.LedgerEvent, err error) {
	err = s.conf.Retry.Do(s.ctx, "subscribe", func(attempt int) (retry bool, err error) {
		events, err = s.ledger.SubscribeLogs(s.ctx)
		return err != nil, err
	})
	return events, err
}

func (s *subscriber) subscribeLoop() {
	l := log.L(s.ctx)
	defer close(s.closed)
	for {
		events, err := s.subscribe()
		if err != nil {
			l.Debugf("Exiting: %s", err)
			return
		}
		l.Infof("Subscribed to live events")
		for event := range events {
			if err := s.processor.process(s.ctx, event); err != nil {
				l.Debugf("Exiting: %s", err)
				return
			}
			s.poller.Tap()
		}
		if s.ctx.Err() != nil {
			l.Debugf("Exiting due to cancelled context")
			return
		}
		l.Warnf("Live event subscription closed, resubscribing")
	}
}
