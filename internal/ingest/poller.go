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
	"sync"
	"time"

	"github.com/kaleido-io/agentledger/internal/enrichment"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/kaleido-io/agentledger/pkg/ledger"
)

// Poller pages through the historical log of the registry program from a persisted cursor.
// It is the only writer of the ingestion cursor.
type Poller interface {
	Start() error
	// Tap wakes the poller ahead of its poll interval, without blocking
	Tap()
	// Cursor is the position of the last event handled
	Cursor() *core.OrderingKey
	WaitStop()
}

type poller struct {
	ctx         context.Context
	ledger      ledger.Plugin
	database    database.Plugin
	processor   *processor
	conf        *Config
	shoulderTap chan bool
	closed      chan struct{}
	cursorMux   sync.Mutex
	cursor      *core.OrderingKey
}

func NewPoller(ctx context.Context, di database.Plugin, li ledger.Plugin, sq sequencer.Sequencer, eq enrichment.Enqueuer, mm metrics.Manager) (Poller, error) {
	if di == nil || li == nil || sq == nil || mm == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "poller")
	}
	conf, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &poller{
		ctx:      log.WithLogField(ctx, "role", "poller"),
		ledger:   li,
		database: di,
		processor: &processor{
			database:  di,
			sequencer: sq,
			enqueuer:  eq,
			metrics:   mm,
			retry:     &conf.Retry,
		},
		conf:        conf,
		shoulderTap: make(chan bool, 1),
		closed:      make(chan struct{}),
	}, nil
}

// restoreCursor resumes from the start of the persisted slot. Only the slot and signature are
// stored, so events of that slot are replayed and absorbed as duplicates.
func (p *poller) restoreCursor() error {
	return p.conf.Retry.Do(p.ctx, "restore cursor", func(attempt int) (retry bool, err error) {
		state, err := p.database.GetIndexerState(p.ctx)
		if err != nil {
			return true, err
		}
		if state != nil && (state.CursorSlot > 0 || state.CursorSignature != "") {
			p.setCursor(&core.OrderingKey{Slot: state.CursorSlot})
			log.L(p.ctx).Infof("Ingestion cursor restored to slot %d (%s)", state.CursorSlot, state.CursorSignature)
		} else {
			log.L(p.ctx).Infof("Ingestion starting from the beginning of the program log")
		}
		return false, nil
	})
}

func (p *poller) Start() error {
	if !p.conf.Enabled {
		log.L(p.ctx).Infof("Ingestion disabled")
		close(p.closed)
		return nil
	}
	if err := p.restoreCursor(); err != nil {
		return err
	}
	go p.pollLoop()
	return nil
}

func (p *poller) Tap() {
	select {
	case p.shoulderTap <- true:
	default:
	}
}

// Cursor returns a copy, as the poll loop moves the cursor concurrently
func (p *poller) Cursor() *core.OrderingKey {
	p.cursorMux.Lock()
	defer p.cursorMux.Unlock()
	if p.cursor == nil {
		return nil
	}
	cursor := *p.cursor
	return &cursor
}

// setCursor is only called by the poll loop, which can read p.cursor directly
func (p *poller) setCursor(cursor *core.OrderingKey) {
	p.cursorMux.Lock()
	p.cursor = cursor
	p.cursorMux.Unlock()
}

func (p *poller) WaitStop() {
	<-p.closed
}

func (p *poller) readPage() ([]*core.LedgerEvent, error) {
	var events []*core.LedgerEvent
	err := p.conf.Retry.Do(p.ctx, "fetch events", func(attempt int) (retry bool, err error) {
		events, err = p.ledger.FetchLogsSince(p.ctx, p.cursor, p.conf.BatchSize)
		return err != nil, err // retry indefinitely, until the context is cancelled
	})
	return events, err
}

func (p *poller) processPage(events []*core.LedgerEvent) error {
	for _, event := range events {
		if err := p.processor.process(p.ctx, event); err != nil {
			return err
		}
		// Advance in memory per event, so a retry of the cursor write resumes correctly
		cursor := event.OrderingKey
		p.setCursor(&cursor)
	}
	return p.conf.Retry.Do(p.ctx, "update cursor", func(attempt int) (retry bool, err error) {
		err = p.database.UpdateIndexerCursor(p.ctx, p.cursor.Slot, p.cursor.Signature)
		return err != nil, err
	})
}

func (p *poller) pollLoop() {
	l := log.L(p.ctx)
	l.Debugf("Started poller")
	defer close(p.closed)

	for {
		events, err := p.readPage()
		if err != nil {
			l.Debugf("Exiting: %s", err)
			return
		}
		if len(events) > 0 {
			if err := p.processPage(events); err != nil {
				l.Debugf("Exiting: %s", err)
				return
			}
			l.Infof("Ingested %d events, cursor %s", len(events), p.cursor)
		}
		// A full page means there is probably more to read
		if len(events) < p.conf.BatchSize {
			if ok := p.waitForShoulderTapOrPollTimeout(); !ok {
				return
			}
		}
	}
}

func (p *poller) waitForShoulderTapOrPollTimeout() bool {
	l := log.L(p.ctx)
	timeout := time.NewTimer(p.conf.PollInterval)
	defer timeout.Stop()
	select {
	case <-timeout.C:
		l.Tracef("Woken after poll timeout")
	case <-p.shoulderTap:
		l.Tracef("Woken for live event")
	case <-p.ctx.Done():
		l.Debugf("Exiting due to cancelled context")
		return false
	}
	return true
}
