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

package sequencer

import (
	"context"
	"time"

	"github.com/karlseguin/ccache"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/hashchain"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

// AcceptResult is the outcome of projecting one ledger event
type AcceptResult int

const (
	// AcceptInserted - a new PENDING record holding a scoped sequence, folded into its chain
	AcceptInserted AcceptResult = iota
	// AcceptDuplicate - the natural key was already projected, the advanced sequence is burned
	AcceptDuplicate
	// AcceptOrphaned - a child whose parent feedback is unknown, stored ORPHANED without a sequence
	AcceptOrphaned
	// AcceptChainConflict - a late arrival that sorts before a FINALIZED record, stored ORPHANED
	AcceptChainConflict
	// AcceptIgnored - the event does not project a record
	AcceptIgnored
)

func (ar AcceptResult) String() string {
	switch ar {
	case AcceptInserted:
		return "inserted"
	case AcceptDuplicate:
		return "duplicate"
	case AcceptOrphaned:
		return "orphaned"
	case AcceptChainConflict:
		return "chainconflict"
	default:
		return "ignored"
	}
}

// Sequencer assigns scoped sequential identifiers, and keeps each scope's hash chain in ordering key order
type Sequencer interface {
	// Accept projects an event into its scope as one atomic group
	Accept(ctx context.Context, event *core.LedgerEvent) (*core.Record, AcceptResult, error)

	// Readmit returns an ORPHANED record whose prerequisites are now met to PENDING, with a fresh sequence.
	// Returns false if the record was no longer ORPHANED, or it could not be placed in its chain.
	Readmit(ctx context.Context, record *core.Record) (bool, error)

	// Backfill assigns sequences to every non-orphan record of the scope that has none, and re-chains the scope
	Backfill(ctx context.Context, scope core.ScopeRef) (int, error)

	// BackfillAll runs Backfill over every scope holding unsequenced records
	BackfillAll(ctx context.Context) (int, error)
}

type sequencer struct {
	database    database.Plugin
	tracker     hashchain.Tracker
	parentCache *ccache.Cache
	parentTTL   time.Duration
}

func NewSequencer(ctx context.Context, di database.Plugin, tracker hashchain.Tracker) (Sequencer, error) {
	if di == nil || tracker == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "sequencer")
	}
	return &sequencer{
		database: di,
		tracker:  tracker,
		parentCache: ccache.New(
			ccache.Configure().MaxSize(config.GetInt64(config.SequencerParentCacheSize)),
		),
		parentTTL: config.GetDuration(config.SequencerParentCacheTTL),
	}, nil
}

// lookupParent returns the content hash of the parent feedback, or nil if it is not known locally.
// Only FINALIZED parents are cached, as they can no longer be orphaned.
func (s *sequencer) lookupParent(ctx context.Context, parentKey string) (*core.Bytes32, error) {
	if cached := s.parentCache.Get(parentKey); cached != nil {
		cached.Extend(s.parentTTL)
		return cached.Value().(*core.Bytes32), nil
	}
	parent, err := s.database.GetRecordByNaturalKey(ctx, core.RecordKindFeedback, parentKey)
	if err != nil || parent == nil || parent.Status == core.RecordStatusOrphaned {
		return nil, err
	}
	if parent.Status == core.RecordStatusFinalized {
		s.parentCache.Set(parentKey, parent.ContentHash, s.parentTTL)
	}
	return parent.ContentHash, nil
}

func newRecord(kind core.RecordKind, event *core.LedgerEvent) *core.Record {
	return &core.Record{
		ID:          core.NewUUID(),
		Kind:        kind,
		NaturalKey:  event.NaturalKey(),
		Scope:       event.Scope(),
		ParentKey:   event.ParentKey(),
		Status:      core.RecordStatusPending,
		ContentHash: event.ContentHash(),
		OrderingKey: event.OrderingKey,
		Payload:     core.JSONAnyFrom(event.Payload),
	}
}

func (s *sequencer) Accept(ctx context.Context, event *core.LedgerEvent) (record *core.Record, result AcceptResult, err error) {
	kind, ok := event.RecordKind()
	if !ok {
		return nil, AcceptIgnored, nil
	}
	record = newRecord(kind, event)
	ctx = log.WithLogField(ctx, "record", record.NaturalKey)

	err = s.database.RunAsGroup(ctx, func(ctx context.Context) error {
		record.Status = core.RecordStatusPending
		record.ScopedSequenceID = nil
		record.ParentHashMismatch = false

		if record.ParentKey != "" {
			parentHash, err := s.lookupParent(ctx, record.ParentKey)
			if err != nil {
				return err
			}
			if parentHash == nil {
				record.Status = core.RecordStatusOrphaned
				inserted, err := s.database.InsertRecord(ctx, record)
				if err != nil {
					return err
				}
				result = AcceptOrphaned
				if !inserted {
					result = AcceptDuplicate
				}
				return nil
			}
			if claimed := event.ParentContentHash(); claimed != nil && !claimed.Equals(parentHash) {
				log.L(ctx).Warnf("Parent %s content hash mismatch: event=%s local=%s", record.ParentKey, claimed, parentHash)
				record.ParentHashMismatch = true
			}
		}

		if err := s.database.LockScope(ctx, record.Scope); err != nil {
			return err
		}
		// The counter is advanced before the insert, so a conflicting replay burns the value
		n, err := s.database.AdvanceScopeCounter(ctx, record.Scope, 0)
		if err != nil {
			return err
		}
		record.ScopedSequenceID = &n
		inserted, err := s.database.InsertRecord(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			log.L(ctx).Debugf("Duplicate %s %s burned sequence %d in %s", record.Kind, record.NaturalKey, n, record.Scope)
			result = AcceptDuplicate
			return s.database.RecordScopeBurn(ctx, record.Scope)
		}

		result, err = s.place(ctx, record)
		return err
	})
	if err != nil {
		return nil, result, err
	}
	if result == AcceptDuplicate {
		return nil, result, nil
	}
	log.L(ctx).Infof("Accepted %s in %s: %s seq=%v", record.Kind, record.Scope, result, optSeq(record.ScopedSequenceID))
	return record, result, nil
}

func optSeq(seq *int64) interface{} {
	if seq == nil {
		return "-"
	}
	return *seq
}

// place folds a freshly sequenced record into its chain. A record that sorts before already chained
// records is a late arrival: the PENDING records after it are renumbered after it and re-chained,
// unless one of them is FINALIZED, in which case the late record is orphaned as a chain conflict.
func (s *sequencer) place(ctx context.Context, record *core.Record) (AcceptResult, error) {
	chained, err := s.database.GetChainedRecords(ctx, record.Scope, record.OrderingKey.Slot)
	if err != nil {
		return AcceptInserted, err
	}
	suffix := make([]*core.Record, 0, len(chained))
	for _, r := range chained {
		if r.Sequence != record.Sequence && core.CompareRecords(r, record) > 0 {
			suffix = append(suffix, r)
		}
	}
	if len(suffix) == 0 {
		return AcceptInserted, s.tracker.Append(ctx, record)
	}

	for _, r := range suffix {
		if r.Status == core.RecordStatusFinalized {
			log.L(ctx).Errorf("Late %s %s at %s sorts before finalized record %d in %s", record.Kind, record.NaturalKey, &record.OrderingKey, r.Sequence, record.Scope)
			orphaned, conflict := core.RecordStatusOrphaned, true
			if _, err := s.database.TransitionRecord(ctx, record.Sequence, core.RecordStatusPending, &database.RecordUpdate{
				Status:        &orphaned,
				ClearChain:    true,
				ChainConflict: &conflict,
			}); err != nil {
				return AcceptChainConflict, err
			}
			record.Status = core.RecordStatusOrphaned
			record.ScopedSequenceID = nil
			record.ChainConflict = true
			return AcceptChainConflict, s.database.RecordScopeBurn(ctx, record.Scope)
		}
	}

	core.SortRecords(suffix)
	for _, r := range suffix {
		m, err := s.database.AdvanceScopeCounter(ctx, record.Scope, 0)
		if err != nil {
			return AcceptInserted, err
		}
		if err := s.database.SetRecordSequence(ctx, r.Sequence, m); err != nil {
			return AcceptInserted, err
		}
		log.L(ctx).Debugf("Renumbered %s %d from %v to %d after late arrival", r.Kind, r.Sequence, optSeq(r.ScopedSequenceID), m)
		r.ScopedSequenceID = &m
	}
	log.L(ctx).Infof("Late arrival in %s at %s: %d pending records renumbered", record.Scope, &record.OrderingKey, len(suffix))
	return AcceptInserted, s.tracker.Rechain(ctx, record.Scope, record.OrderingKey.Slot)
}

func (s *sequencer) Readmit(ctx context.Context, record *core.Record) (readmitted bool, err error) {
	ctx = log.WithLogField(ctx, "record", record.NaturalKey)
	err = s.database.RunAsGroup(ctx, func(ctx context.Context) error {
		readmitted = false
		if err := s.database.LockScope(ctx, record.Scope); err != nil {
			return err
		}
		pending, zero := core.RecordStatusPending, 0
		ok, err := s.database.TransitionRecord(ctx, record.Sequence, core.RecordStatusOrphaned, &database.RecordUpdate{
			Status:         &pending,
			VerifyAttempts: &zero,
		})
		if err != nil || !ok {
			return err
		}
		n, err := s.database.AdvanceScopeCounter(ctx, record.Scope, 0)
		if err != nil {
			return err
		}
		if err := s.database.SetRecordSequence(ctx, record.Sequence, n); err != nil {
			return err
		}
		record.Status = core.RecordStatusPending
		record.ScopedSequenceID = &n
		record.VerifyAttempts = 0
		result, err := s.place(ctx, record)
		if err != nil {
			return err
		}
		readmitted = result == AcceptInserted
		return nil
	})
	if err == nil && readmitted {
		log.L(ctx).Infof("Readmitted %s %d in %s with seq=%d", record.Kind, record.Sequence, record.Scope, *record.ScopedSequenceID)
	}
	return readmitted, err
}
