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

package hashchain

import (
	"context"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

// Tracker maintains the running digest of every scope, over the records of the scope in ordering key order.
// All operations must be called inside a database group that holds the scope lock.
type Tracker interface {
	// Append folds a sequenced record onto the current tip of its scope
	Append(ctx context.Context, record *core.Record) error

	// Rechain re-folds every chained record of the scope at or after the slot, from the record before it.
	// Changing the digest of a FINALIZED record is refused. A FINALIZED record without a digest is chained.
	Rechain(ctx context.Context, scope core.ScopeRef, fromSlot uint64) error

	// VerifyScope re-computes the whole chain of a scope, and checks it against the persisted tip
	VerifyScope(ctx context.Context, scope core.ScopeRef) error
}

// Fold is the chain step: keccak256(prev || content)
func Fold(prev, content *core.Bytes32) *core.Bytes32 {
	if prev == nil {
		prev = &core.ZeroDigest
	}
	if content == nil {
		content = &core.ZeroDigest
	}
	return core.Keccak256(prev[:], content[:])
}

// Verify checks a consecutive slice of chained records, returning the index of the first record
// whose digest or position does not follow from its predecessor, or -1 if the slice is intact.
// A slice starting at position 1 is checked against the zero seed.
func Verify(records []*core.Record) int {
	for i, r := range records {
		if r.RunningDigest == nil || r.ChainCount == nil {
			return i
		}
		var prev *core.Bytes32
		switch {
		case i > 0:
			p := records[i-1]
			if *r.ChainCount != *p.ChainCount+1 {
				return i
			}
			prev = p.RunningDigest
		case *r.ChainCount == 1:
			prev = &core.ZeroDigest
		default:
			// Nothing to check the first record of a partial slice against
			continue
		}
		if !Fold(prev, r.ContentHash).Equals(r.RunningDigest) {
			return i
		}
	}
	return -1
}

type tracker struct {
	database database.Plugin
}

func NewTracker(ctx context.Context, di database.Plugin) (Tracker, error) {
	if di == nil {
		return nil, i18n.NewError(ctx, i18n.MsgInitFailed, "hashchain")
	}
	return &tracker{database: di}, nil
}

func (t *tracker) Append(ctx context.Context, record *core.Record) error {
	counter, err := t.database.GetScopeCounter(ctx, record.Scope)
	if err != nil {
		return err
	}
	prev := &core.ZeroDigest
	count := int64(0)
	if counter != nil {
		prev = counter.Tip()
		count = counter.ChainCount
	}
	count++
	digest := Fold(prev, record.ContentHash)
	if err := t.database.SetRecordChain(ctx, record.Sequence, *record.ScopedSequenceID, digest, count); err != nil {
		return err
	}
	if err := t.database.UpdateScopeChain(ctx, record.Scope, count, digest); err != nil {
		return err
	}
	record.RunningDigest = digest
	record.ChainCount = &count
	log.L(ctx).Debugf("Chained %s record %d at %s position %d: %s", record.Kind, record.Sequence, record.Scope, count, digest)
	return nil
}

func (t *tracker) Rechain(ctx context.Context, scope core.ScopeRef, fromSlot uint64) error {
	prev := &core.ZeroDigest
	count := int64(0)
	if fromSlot > 0 {
		tail, err := t.database.GetChainTail(ctx, scope, fromSlot)
		if err != nil {
			return err
		}
		if tail != nil {
			prev = tail.RunningDigest
			count = *tail.ChainCount
		}
	}

	sequenced, err := t.database.GetSequencedRecords(ctx, scope)
	if err != nil {
		return err
	}
	records := make([]*core.Record, 0, len(sequenced))
	for _, r := range sequenced {
		if r.OrderingKey.Slot >= fromSlot {
			records = append(records, r)
		}
	}
	core.SortRecords(records)

	rewritten := 0
	for _, r := range records {
		count++
		digest := Fold(prev, r.ContentHash)
		prev = digest
		if digest.Equals(r.RunningDigest) && r.ChainCount != nil && *r.ChainCount == count {
			continue
		}
		if r.Status == core.RecordStatusFinalized && r.RunningDigest != nil {
			return i18n.NewError(ctx, i18n.MsgChainFinalizedConflict, scope, r.Sequence)
		}
		if err := t.database.SetRecordChain(ctx, r.Sequence, *r.ScopedSequenceID, digest, count); err != nil {
			return err
		}
		c := count
		r.RunningDigest = digest
		r.ChainCount = &c
		rewritten++
	}

	log.L(ctx).Infof("Rechained %s from slot %d: %d records refolded, %d rewritten, tip position %d", scope, fromSlot, len(records), rewritten, count)
	return t.database.UpdateScopeChain(ctx, scope, count, prev)
}

func (t *tracker) VerifyScope(ctx context.Context, scope core.ScopeRef) error {
	records, err := t.database.GetChainedRecords(ctx, scope, 0)
	if err != nil {
		return err
	}
	if len(records) > 0 && *records[0].ChainCount != 1 {
		return i18n.NewError(ctx, i18n.MsgChainBroken, scope, 0)
	}
	if broken := Verify(records); broken >= 0 {
		return i18n.NewError(ctx, i18n.MsgChainBroken, scope, broken)
	}
	counter, err := t.database.GetScopeCounter(ctx, scope)
	if err != nil {
		return err
	}
	tipCount := int64(0)
	tip := &core.ZeroDigest
	if counter != nil {
		tipCount = counter.ChainCount
		tip = counter.Tip()
	}
	expected := &core.ZeroDigest
	if len(records) > 0 {
		expected = records[len(records)-1].RunningDigest
	}
	if tipCount != int64(len(records)) || !tip.Equals(expected) {
		return i18n.NewError(ctx, i18n.MsgChainBroken, scope, len(records))
	}
	return nil
}
