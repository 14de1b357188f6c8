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

package verifier

import (
	"context"
	"sync"
	"time"

	"github.com/kaleido-io/agentledger/internal/hashchain"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/metrics"
	"github.com/kaleido-io/agentledger/internal/sequencer"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/kaleido-io/agentledger/pkg/ledger"
)

// Verifier reconciles PENDING records against finalized on-chain state
type Verifier interface {
	// Start launches the cycle loop, unless verification is disabled
	Start() error

	// RunCycle runs one verification cycle: pending records up to the finalized cutoff, then the recovery sweep when due
	RunCycle(ctx context.Context) error

	// Status reports record counts and reconciliation progress
	Status(ctx context.Context) (*core.VerificationStatus, error)

	// WaitStop waits for the cycle loop to exit, after the context passed to the constructor is cancelled
	WaitStop()
}

type existenceOutcome int

const (
	existenceFound existenceOutcome = iota
	existenceRetry
	existenceOrphan
)

// decideExistence returns what to do with a PENDING record after an account lookup, and its new attempt count
func decideExistence(attempts, maxRetries int, found bool) (existenceOutcome, int) {
	if found {
		return existenceFound, attempts
	}
	attempts++
	if attempts >= maxRetries {
		return existenceOrphan, attempts
	}
	return existenceRetry, attempts
}

// recoveryDue is true on every Nth cycle, and never when N is zero
func recoveryDue(cycle, every int64) bool {
	return every > 0 && cycle > 0 && cycle%every == 0
}

type verifier struct {
	ctx       context.Context
	database  database.Plugin
	ledger    ledger.Plugin
	tracker   hashchain.Tracker
	sequencer sequencer.Sequencer
	metrics   metrics.Manager
	conf      *Config
	closed    chan struct{}

	mux        sync.Mutex
	cycles     int64
	mismatches int64
	lastCycle  *core.Timestamp
}

func NewVerifier(ctx context.Context, di database.Plugin, li ledger.Plugin, ht hashchain.Tracker, sq sequencer.Sequencer, mm metrics.Manager) (Verifier, error) {
	if di == nil || li == nil || ht == nil || sq == nil || mm == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "verifier")
	}
	conf, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &verifier{
		ctx:       log.WithLogField(ctx, "role", "verifier"),
		database:  di,
		ledger:    li,
		tracker:   ht,
		sequencer: sq,
		metrics:   mm,
		conf:      conf,
		closed:    make(chan struct{}),
	}, nil
}

func (v *verifier) Start() error {
	if !v.conf.Enabled {
		log.L(v.ctx).Infof("Verification disabled")
		close(v.closed)
		return nil
	}
	go v.cycleLoop()
	return nil
}

func (v *verifier) WaitStop() {
	<-v.closed
}

func (v *verifier) cycleLoop() {
	defer close(v.closed)
	l := log.L(v.ctx)
	l.Infof("Verifier started: interval=%s batchSize=%d margin=%d maxRetries=%d recoveryCycles=%d",
		v.conf.Interval, v.conf.BatchSize, v.conf.SafetyMarginSlots, v.conf.MaxRetries, v.conf.RecoveryCycles)
	ticker := time.NewTicker(v.conf.Interval)
	defer ticker.Stop()
	for {
		if err := v.RunCycle(v.ctx); err != nil {
			l.Warnf("Verification cycle incomplete: %s", err)
		}
		select {
		case <-ticker.C:
		case <-v.ctx.Done():
			l.Debugf("Exiting due to cancelled context")
			return
		}
	}
}

func (v *verifier) RunCycle(ctx context.Context) error {
	l := log.L(ctx)
	rctx, cancel := context.WithTimeout(ctx, v.conf.RPCTimeout)
	finalized, err := v.ledger.CurrentFinalizedSlot(rctx)
	cancel()
	if err != nil {
		l.Warnf("Skipping verification cycle, finalized slot unavailable: %s", err)
		return err
	}
	cutoff := uint64(0)
	if finalized > v.conf.SafetyMarginSlots {
		cutoff = finalized - v.conf.SafetyMarginSlots
	}

	v.mux.Lock()
	v.cycles++
	cycle := v.cycles
	v.mux.Unlock()

	for _, kind := range core.RecordKinds {
		pending, err := v.database.GetPendingRecords(ctx, kind, cutoff, v.conf.BatchSize)
		if err != nil {
			l.Errorf("Failed to query pending %s records: %s", kind, err)
			continue
		}
		for _, r := range pending {
			v.verifyRecord(ctx, r, cutoff)
		}
	}

	if recoveryDue(cycle, v.conf.RecoveryCycles) {
		v.recoverySweep(ctx, cutoff)
	}

	if err := v.database.UpdateLastVerifiedSlot(ctx, cutoff); err != nil {
		return err
	}
	v.mux.Lock()
	v.lastCycle = core.Now()
	v.mux.Unlock()
	if v.metrics.IsMetricsEnabled() {
		v.metrics.VerifierCycleCompleted(cutoff)
	}
	l.Debugf("Verification cycle %d complete at cutoff slot %d (finalized %d)", cycle, cutoff, finalized)
	return nil
}

// readOwnerAccount returns the account attesting the record, nil if it does not exist
func (v *verifier) readOwnerAccount(ctx context.Context, r *core.Record) (data []byte, err error) {
	address, err := v.ledger.DeriveAgentAddress(ctx, r.OwnerAsset())
	if err != nil {
		// No account can exist at an underivable address
		log.L(ctx).Warnf("No address for %s %d owner '%s': %s", r.Kind, r.Sequence, r.OwnerAsset(), err)
		return nil, nil
	}
	rctx, cancel := context.WithTimeout(ctx, v.conf.RPCTimeout)
	defer cancel()
	return v.ledger.ReadAccount(rctx, address)
}

func (v *verifier) verifyRecord(ctx context.Context, r *core.Record, cutoff uint64) {
	l := log.L(ctx).WithField("record", r.Sequence)
	data, err := v.readOwnerAccount(ctx, r)
	if err != nil {
		l.Warnf("Account read for %s %s failed, will retry: %s", r.Kind, r.NaturalKey, err)
		return
	}

	outcome, attempts := decideExistence(r.VerifyAttempts, v.conf.MaxRetries, data != nil)
	switch outcome {
	case existenceRetry:
		_, err = v.database.TransitionRecord(ctx, r.Sequence, core.RecordStatusPending, &database.RecordUpdate{
			VerifyAttempts:  &attempts,
			LastCheckedSlot: &cutoff,
		})
		if err == nil {
			l.Debugf("Account for %s %s not found (attempt %d/%d)", r.Kind, r.NaturalKey, attempts, v.conf.MaxRetries)
		}
	case existenceOrphan:
		err = v.orphan(ctx, r, attempts, cutoff)
	default:
		err = v.reconcile(ctx, r, data, cutoff)
	}
	if err != nil {
		l.Errorf("Verification of %s %s failed: %s", r.Kind, r.NaturalKey, err)
	}
}

// chainMatches compares the on-chain chain state of the record's scope with the local chain at the same position.
// The digest at position n commits to the whole prefix, so records at or before the on-chain count are attested.
func (v *verifier) chainMatches(ctx context.Context, r *core.Record, account *ledger.AgentAccount) (bool, error) {
	onChain, chained := account.Chain(r.Scope.Kind)
	if !chained {
		return true, nil
	}
	position := int64(0)
	if r.ChainCount != nil {
		position = *r.ChainCount
	}
	if position > onChain.Count {
		log.L(ctx).Warnf("Chain position %d in %s is beyond the on-chain count %d", position, r.Scope, onChain.Count)
		return false, nil
	}
	if onChain.Count == 0 {
		return true, nil
	}
	local, err := v.database.GetChainRecordAt(ctx, r.Scope, onChain.Count)
	if err != nil {
		return false, err
	}
	if local == nil || local.RunningDigest == nil {
		log.L(ctx).Warnf("Chain mismatch in %s: local chain is shorter than the on-chain count %d", r.Scope, onChain.Count)
		return false, nil
	}
	if !local.RunningDigest.Equals(&onChain.Digest) {
		log.L(ctx).Warnf("Chain mismatch in %s at position %d: on-chain %s local %s", r.Scope, onChain.Count, &onChain.Digest, local.RunningDigest)
		return false, nil
	}
	return true, nil
}

func (v *verifier) countMismatch(kind core.RecordKind) {
	v.mux.Lock()
	v.mismatches++
	v.mux.Unlock()
	if v.metrics.IsMetricsEnabled() {
		v.metrics.VerifierMismatch(kind)
	}
}

func (v *verifier) reconcile(ctx context.Context, r *core.Record, data []byte, cutoff uint64) error {
	account, err := v.ledger.ParseAgentAccount(ctx, data)
	if err != nil {
		return err
	}
	match, err := v.chainMatches(ctx, r, account)
	if err != nil {
		return err
	}
	// The account exists, so the run of consecutive absent cycles is over
	attempts := 0
	if !match {
		// Fail closed, the record stays PENDING
		v.countMismatch(r.Kind)
		_, err = v.database.TransitionRecord(ctx, r.Sequence, core.RecordStatusPending, &database.RecordUpdate{
			VerifyAttempts:  &attempts,
			LastCheckedSlot: &cutoff,
		})
		return err
	}
	finalized := core.RecordStatusFinalized
	ok, err := v.database.TransitionRecord(ctx, r.Sequence, core.RecordStatusPending, &database.RecordUpdate{
		Status:          &finalized,
		VerifyAttempts:  &attempts,
		LastCheckedSlot: &cutoff,
		VerifiedAt:      core.Now(),
	})
	if err != nil || !ok {
		return err
	}
	log.L(ctx).Infof("Finalized %s %s seq=%v", r.Kind, r.NaturalKey, r.ScopedSequenceID)
	if v.metrics.IsMetricsEnabled() {
		v.metrics.VerifierFinalized(r.Kind)
	}
	return nil
}

func (v *verifier) orphan(ctx context.Context, r *core.Record, attempts int, cutoff uint64) error {
	var refused error
	var orphaned bool
	err := v.database.RunAsGroup(ctx, func(ctx context.Context) error {
		orphaned = false
		if err := v.database.LockScope(ctx, r.Scope); err != nil {
			return err
		}
		status := core.RecordStatusOrphaned
		ok, err := v.database.TransitionRecord(ctx, r.Sequence, core.RecordStatusPending, &database.RecordUpdate{
			Status:          &status,
			ClearChain:      true,
			VerifyAttempts:  &attempts,
			LastCheckedSlot: &cutoff,
		})
		if err != nil || !ok {
			return err
		}
		if refused = v.tracker.Rechain(ctx, r.Scope, r.OrderingKey.Slot); refused != nil {
			return refused
		}
		orphaned = true
		return nil
	})
	if refused != nil {
		if i18n.IsCode(refused, i18n.MsgChainFinalizedConflict) {
			// Removing the record would rewrite a finalized chain, so it stays PENDING
			v.countMismatch(r.Kind)
		} else {
			log.L(ctx).Warnf("Orphaning %s %s failed, will retry: %s", r.Kind, r.NaturalKey, refused)
		}
		return refused
	}
	if err != nil || !orphaned {
		return err
	}
	log.L(ctx).Warnf("Orphaned %s %s after %d attempts", r.Kind, r.NaturalKey, attempts)
	if v.metrics.IsMetricsEnabled() {
		v.metrics.VerifierOrphaned(r.Kind)
	}
	return nil
}

// prerequisitesMet is true when a child's parent is known locally, and the owning account exists
func (v *verifier) prerequisitesMet(ctx context.Context, r *core.Record) (bool, error) {
	if r.ParentKey != "" {
		parent, err := v.database.GetRecordByNaturalKey(ctx, core.RecordKindFeedback, r.ParentKey)
		if err != nil {
			return false, err
		}
		if parent == nil || parent.Status == core.RecordStatusOrphaned {
			return false, nil
		}
	}
	data, err := v.readOwnerAccount(ctx, r)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func (v *verifier) recoverySweep(ctx context.Context, cutoff uint64) {
	l := log.L(ctx)
	orphans, err := v.database.GetOrphanedRecords(ctx, v.conf.RecoveryBatchSize)
	if err != nil {
		l.Errorf("Recovery sweep failed to query orphaned records: %s", err)
		return
	}
	recovered := 0
	for _, r := range orphans {
		ready := false
		if !r.ChainConflict {
			if ready, err = v.prerequisitesMet(ctx, r); err != nil {
				l.Warnf("Recovery check of %s %s failed, will retry: %s", r.Kind, r.NaturalKey, err)
				continue
			}
		}
		if !ready {
			// Rotate to the back of the sweep order
			if _, err := v.database.TransitionRecord(ctx, r.Sequence, core.RecordStatusOrphaned, &database.RecordUpdate{
				LastCheckedSlot: &cutoff,
			}); err != nil {
				l.Errorf("Failed to update orphaned %s %s: %s", r.Kind, r.NaturalKey, err)
			}
			continue
		}
		ok, err := v.sequencer.Readmit(ctx, r)
		if err != nil {
			l.Errorf("Readmit of %s %s failed: %s", r.Kind, r.NaturalKey, err)
			continue
		}
		if ok {
			recovered++
			if v.metrics.IsMetricsEnabled() {
				v.metrics.VerifierRecovered(r.Kind)
			}
		}
	}
	l.Infof("Recovery sweep: %d/%d orphaned records readmitted", recovered, len(orphans))
}

func (v *verifier) Status(ctx context.Context) (*core.VerificationStatus, error) {
	counts, err := v.database.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	parentMismatches, err := v.database.CountParentHashMismatches(ctx)
	if err != nil {
		return nil, err
	}
	state, err := v.database.GetIndexerState(ctx)
	if err != nil {
		return nil, err
	}
	status := &core.VerificationStatus{
		Counts:               counts,
		ParentHashMismatches: parentMismatches,
	}
	if state != nil {
		status.LastVerifiedSlot = state.LastVerifiedSlot
	}
	v.mux.Lock()
	status.Mismatches = v.mismatches
	status.CyclesCompleted = v.cycles
	status.LastCycle = v.lastCycle
	v.mux.Unlock()
	return status, nil
}
