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

package enrichment

import (
	"context"
	"sync"
	"time"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/pkg/core"
	"golang.org/x/time/rate"
)

const (
	OutcomeExecuted = "executed"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
	OutcomeTimeout  = "timeout"
)

type task struct {
	subject    string
	reference  string
	enqueuedAt time.Time
}

// Stats is a point in time view of a queue
type Stats struct {
	Queued   int   `json:"queued"`
	Deferred int   `json:"deferred"`
	InFlight int   `json:"inFlight"`
	Executed int64 `json:"executed"`
	Failed   int64 `json:"failed"`
	Stale    int64 `json:"stale"`
	Timeouts int64 `json:"timeouts"`
}

// Queue runs the latest task of each subject through a fixed set of workers.
// Queued plus in-flight tasks never exceed the capacity, the excess waits in a deferred set.
type Queue struct {
	ctx     context.Context
	name    string
	conf    *Config
	fetcher Fetcher
	store   Store
	metrics metrics.Manager
	limiter *rate.Limiter
	warner  *rate.Limiter
	slots   chan struct{}
	wake    chan struct{}
	closed  chan struct{}
	swept   chan struct{}

	mux           sync.Mutex
	order         []string
	queued        map[string]*task
	inflight      map[string]bool
	deferredOrder []string
	deferred      map[string]*task
	stats         Stats
}

func NewQueue(ctx context.Context, name string, fetcher Fetcher, store Store, mm metrics.Manager) (*Queue, error) {
	if fetcher == nil || store == nil || mm == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "enrichment")
	}
	conf, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &Queue{
		ctx:      log.WithLogField(ctx, "role", "enrichment-"+name),
		name:     name,
		conf:     conf,
		fetcher:  fetcher,
		store:    store,
		metrics:  mm,
		limiter:  rate.NewLimiter(rate.Every(conf.MinInterval), 1),
		warner:   rate.NewLimiter(rate.Every(conf.CapacityWarnInterval), 1),
		slots:    make(chan struct{}, conf.Workers),
		wake:     make(chan struct{}, 1),
		closed:   make(chan struct{}),
		swept:    make(chan struct{}),
		queued:   make(map[string]*task),
		inflight: make(map[string]bool),
		deferred: make(map[string]*task),
	}, nil
}

func (q *Queue) Start() {
	go q.dispatchLoop()
	go q.recoveryLoop()
}

func (q *Queue) WaitStop() {
	<-q.closed
	<-q.swept
}

func (q *Queue) tap() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Enqueue replaces any queued or deferred task of the subject. Nothing is dropped at capacity.
func (q *Queue) Enqueue(ctx context.Context, subject, reference string) error {
	if q.ctx.Err() != nil {
		return i18n.NewError(ctx, i18n.MsgEnrichmentQueueStopped)
	}
	t := &task{subject: subject, reference: reference, enqueuedAt: time.Now()}
	q.mux.Lock()
	switch {
	case q.queued[subject] != nil:
		q.queued[subject] = t
	case len(q.queued)+len(q.inflight) >= q.conf.Capacity:
		if q.deferred[subject] == nil {
			q.deferredOrder = append(q.deferredOrder, subject)
		}
		q.deferred[subject] = t
		if q.warner.Allow() {
			log.L(ctx).Warnf("Enrichment queue '%s' at capacity %d, %d deferred", q.name, q.conf.Capacity, len(q.deferred))
		}
	default:
		delete(q.deferred, subject)
		q.order = append(q.order, subject)
		q.queued[subject] = t
	}
	q.reportDepth()
	q.mux.Unlock()
	q.tap()
	return nil
}

// Stats returns a snapshot of the depths and outcome counters
func (q *Queue) Stats() *Stats {
	q.mux.Lock()
	defer q.mux.Unlock()
	s := q.stats
	s.Queued = len(q.queued)
	s.Deferred = len(q.deferred)
	s.InFlight = len(q.inflight)
	return &s
}

func (q *Queue) reportDepth() {
	if q.metrics.IsMetricsEnabled() {
		q.metrics.EnrichmentQueueDepth(len(q.queued), len(q.deferred), len(q.inflight))
	}
}

// takeNext pops the oldest queued task whose subject is not already running
func (q *Queue) takeNext() *task {
	for i, subject := range q.order {
		if q.inflight[subject] {
			continue
		}
		t := q.queued[subject]
		q.order = append(q.order[:i:i], q.order[i+1:]...)
		delete(q.queued, subject)
		q.inflight[subject] = true
		q.reportDepth()
		return t
	}
	return nil
}

// promote moves deferred tasks into the queue, oldest first, up to capacity
func (q *Queue) promote() {
	for len(q.deferredOrder) > 0 && len(q.queued)+len(q.inflight) < q.conf.Capacity {
		subject := q.deferredOrder[0]
		q.deferredOrder = q.deferredOrder[1:]
		t := q.deferred[subject]
		if t == nil {
			continue
		}
		delete(q.deferred, subject)
		if q.queued[subject] != nil {
			q.queued[subject] = t
			continue
		}
		q.order = append(q.order, subject)
		q.queued[subject] = t
	}
	if len(q.deferred) == 0 {
		q.deferredOrder = nil
	}
}

func (q *Queue) waitNext() *task {
	for {
		q.mux.Lock()
		t := q.takeNext()
		q.mux.Unlock()
		if t != nil {
			return t
		}
		select {
		case <-q.wake:
		case <-q.ctx.Done():
			return nil
		}
	}
}

func (q *Queue) dispatchLoop() {
	defer close(q.closed)
	l := log.L(q.ctx)
	l.Infof("Enrichment queue started: capacity=%d workers=%d minInterval=%s timeout=%s",
		q.conf.Capacity, q.conf.Workers, q.conf.MinInterval, q.conf.TaskTimeout)
	for {
		select {
		case q.slots <- struct{}{}:
		case <-q.ctx.Done():
			l.Debugf("Exiting due to cancelled context")
			return
		}
		t := q.waitNext()
		if t == nil {
			l.Debugf("Exiting due to cancelled context")
			return
		}
		if err := q.limiter.Wait(q.ctx); err != nil {
			l.Debugf("Exiting due to cancelled context")
			return
		}
		go q.execute(t)
	}
}

func (q *Queue) execute(t *task) {
	outcome := q.run(t)
	if outcome == OutcomeFailed || outcome == OutcomeTimeout {
		if err := q.store.RecordFailure(q.ctx, t.subject); err != nil {
			log.L(q.ctx).Warnf("Failed to record enrichment failure of '%s': %s", t.subject, err)
		}
	}
	<-q.slots
	q.mux.Lock()
	delete(q.inflight, t.subject)
	switch outcome {
	case OutcomeExecuted:
		q.stats.Executed++
	case OutcomeStale:
		q.stats.Stale++
	case OutcomeTimeout:
		q.stats.Timeouts++
		q.stats.Failed++
	default:
		q.stats.Failed++
	}
	q.promote()
	q.reportDepth()
	q.mux.Unlock()
	if q.metrics.IsMetricsEnabled() {
		q.metrics.EnrichmentTask(outcome)
	}
	q.tap()
}

type fetchResult struct {
	output *core.EnrichmentOutput
	err    error
}

func (q *Queue) run(t *task) string {
	ctx, cancel := context.WithTimeout(q.ctx, q.conf.TaskTimeout)
	defer cancel()
	l := log.L(ctx).WithField("subject", t.subject)

	current, err := q.store.CurrentReference(ctx, t.subject)
	if err != nil {
		l.Errorf("Failed to read committed reference: %s", err)
		return OutcomeFailed
	}
	if current != t.reference {
		l.Debugf("Dropping stale task for '%s', committed reference is '%s'", t.reference, current)
		return OutcomeStale
	}

	result := make(chan fetchResult, 1)
	go func() {
		output, err := q.fetcher.Fetch(ctx, t.subject, t.reference)
		result <- fetchResult{output, err}
	}()
	var r fetchResult
	select {
	case r = <-result:
	case <-ctx.Done():
		l.Warnf("Enrichment of '%s' timed out after %s", t.reference, q.conf.TaskTimeout)
		return OutcomeTimeout
	}
	if r.err != nil {
		l.Warnf("Enrichment of '%s' failed: %s", t.reference, r.err)
		return OutcomeFailed
	}
	if err := q.store.StoreOutput(ctx, r.output); err != nil {
		l.Errorf("Failed to store enrichment output: %s", err)
		return OutcomeFailed
	}
	l.Debugf("Enriched '%s' (queued for %s)", t.reference, time.Since(t.enqueuedAt))
	return OutcomeExecuted
}

// Sweep re-enqueues subjects whose output is missing, or stale against the committed input
func (q *Queue) Sweep(ctx context.Context) error {
	inputs, err := q.store.StaleSubjects(ctx, q.conf.RecoveryBatchSize)
	if err != nil {
		return err
	}
	for _, input := range inputs {
		if err := q.Enqueue(ctx, input.Subject, input.Reference); err != nil {
			return err
		}
	}
	if len(inputs) > 0 {
		log.L(ctx).Infof("Recovery sweep re-enqueued %d subjects", len(inputs))
	}
	return nil
}

func (q *Queue) recoveryLoop() {
	defer close(q.swept)
	ticker := time.NewTicker(q.conf.RecoveryInterval)
	defer ticker.Stop()
	for {
		if err := q.Sweep(q.ctx); err != nil {
			log.L(q.ctx).Warnf("Recovery sweep failed: %s", err)
		}
		select {
		case <-ticker.C:
		case <-q.ctx.Done():
			return
		}
	}
}
