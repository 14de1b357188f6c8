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

package sqlcommon

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

const recordsTable = "records"

var (
	recordColumns = []string{
		"id",
		"kind",
		"natural_key",
		"scope_kind",
		"scope_key",
		"parent_key",
		"status",
		"scoped_seq",
		"content_hash",
		"running_digest",
		"chain_count",
		"ledger_slot",
		"tx_signature",
		"tx_index",
		"log_ordinal",
		"payload",
		"parent_hash_mismatch",
		"chain_conflict",
		"verify_attempts",
		"last_checked_slot",
		"verified_at",
		"created",
		"updated",
	}
)

func scopeEq(scope core.ScopeRef) sq.Eq {
	return sq.Eq{"scope_kind": scope.Kind, "scope_key": scope.Key}
}

func notOrphaned() sq.NotEq {
	return sq.NotEq{"status": core.RecordStatusOrphaned}
}

func (s *SQLCommon) InsertRecord(ctx context.Context, record *core.Record) (inserted bool, err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return false, err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	now := core.Now()
	record.Created = now
	record.Updated = now
	sequence, conflict, err := s.insertTxExt(ctx, tx,
		sq.Insert(recordsTable).
			Columns(recordColumns...).
			Values(
				record.ID,
				record.Kind,
				record.NaturalKey,
				record.Scope.Kind,
				record.Scope.Key,
				record.ParentKey,
				record.Status,
				record.ScopedSequenceID,
				record.ContentHash,
				record.RunningDigest,
				record.ChainCount,
				record.OrderingKey.Slot,
				record.OrderingKey.Signature,
				record.OrderingKey.TxIndex,
				record.OrderingKey.LogOrdinal,
				record.Payload,
				record.ParentHashMismatch,
				record.ChainConflict,
				record.VerifyAttempts,
				record.LastCheckedSlot,
				record.VerifiedAt,
				record.Created,
				record.Updated,
			),
		nil,
		true, /* conflict is an expected outcome of a replayed event */
	)
	if err != nil {
		return false, err
	}
	if conflict {
		log.L(ctx).Debugf("Record %s '%s' already exists", record.Kind, record.NaturalKey)
		return false, s.commitTx(ctx, tx, autoCommit)
	}
	record.Sequence = sequence

	return true, s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) recordResult(ctx context.Context, row *sql.Rows) (*core.Record, error) {
	var r core.Record
	var parentKey, payload sql.NullString
	err := row.Scan(
		&r.ID,
		&r.Kind,
		&r.NaturalKey,
		&r.Scope.Kind,
		&r.Scope.Key,
		&parentKey,
		&r.Status,
		&r.ScopedSequenceID,
		&r.ContentHash,
		&r.RunningDigest,
		&r.ChainCount,
		&r.OrderingKey.Slot,
		&r.OrderingKey.Signature,
		&r.OrderingKey.TxIndex,
		&r.OrderingKey.LogOrdinal,
		&payload,
		&r.ParentHashMismatch,
		&r.ChainConflict,
		&r.VerifyAttempts,
		&r.LastCheckedSlot,
		&r.VerifiedAt,
		&r.Created,
		&r.Updated,
		&r.Sequence,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, recordsTable)
	}
	r.ParentKey = parentKey.String
	if payload.Valid {
		r.Payload = core.JSONAny(payload.String)
	}
	return &r, nil
}

func (s *SQLCommon) selectRecords() sq.SelectBuilder {
	cols := append([]string{}, recordColumns...)
	cols = append(cols, sequenceColumn)
	return sq.Select(cols...).From(recordsTable)
}

func (s *SQLCommon) getRecordsQuery(ctx context.Context, q sq.SelectBuilder) ([]*core.Record, error) {
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*core.Record{}
	for rows.Next() {
		r, err := s.recordResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *SQLCommon) getRecordPred(ctx context.Context, desc string, q sq.SelectBuilder) (*core.Record, error) {
	records, err := s.getRecordsQuery(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		log.L(ctx).Debugf("Record '%s' not found", desc)
		return nil, nil
	}
	return records[0], nil
}

func (s *SQLCommon) GetRecordByNaturalKey(ctx context.Context, kind core.RecordKind, naturalKey string) (*core.Record, error) {
	return s.getRecordPred(ctx, naturalKey, s.selectRecords().Where(sq.Eq{
		"kind":        kind,
		"natural_key": naturalKey,
	}))
}

func (s *SQLCommon) GetRecordBySequence(ctx context.Context, seq int64) (*core.Record, error) {
	return s.getRecordPred(ctx, "seq", s.selectRecords().Where(sq.Eq{sequenceColumn: seq}))
}

func (s *SQLCommon) GetChainedRecords(ctx context.Context, scope core.ScopeRef, fromSlot uint64) ([]*core.Record, error) {
	return s.getRecordsQuery(ctx, s.selectRecords().
		Where(scopeEq(scope)).
		Where(notOrphaned()).
		Where(sq.NotEq{"chain_count": nil}).
		Where(sq.GtOrEq{"ledger_slot": fromSlot}).
		OrderBy("chain_count"))
}

func (s *SQLCommon) GetChainTail(ctx context.Context, scope core.ScopeRef, beforeSlot uint64) (*core.Record, error) {
	return s.getRecordPred(ctx, scope.String(), s.selectRecords().
		Where(scopeEq(scope)).
		Where(notOrphaned()).
		Where(sq.NotEq{"chain_count": nil}).
		Where(sq.Lt{"ledger_slot": beforeSlot}).
		OrderBy("chain_count DESC"))
}

func (s *SQLCommon) GetChainRecordAt(ctx context.Context, scope core.ScopeRef, chainCount int64) (*core.Record, error) {
	return s.getRecordPred(ctx, scope.String(), s.selectRecords().
		Where(scopeEq(scope)).
		Where(notOrphaned()).
		Where(sq.Eq{"chain_count": chainCount}))
}

func (s *SQLCommon) GetSequencedRecords(ctx context.Context, scope core.ScopeRef) ([]*core.Record, error) {
	return s.getRecordsQuery(ctx, s.selectRecords().
		Where(scopeEq(scope)).
		Where(notOrphaned()).
		Where(sq.NotEq{"scoped_seq": nil}).
		OrderBy("scoped_seq"))
}

func (s *SQLCommon) GetUnsequencedRecords(ctx context.Context, scope core.ScopeRef) ([]*core.Record, error) {
	return s.getRecordsQuery(ctx, s.selectRecords().
		Where(scopeEq(scope)).
		Where(notOrphaned()).
		Where(sq.Eq{"scoped_seq": nil}).
		OrderBy(sequenceColumn))
}

func (s *SQLCommon) GetPendingRecords(ctx context.Context, kind core.RecordKind, cutoffSlot uint64, limit int) ([]*core.Record, error) {
	return s.getRecordsQuery(ctx, s.selectRecords().
		Where(sq.Eq{"kind": kind, "status": core.RecordStatusPending}).
		Where(sq.LtOrEq{"ledger_slot": cutoffSlot}).
		OrderBy("ledger_slot", sequenceColumn).
		Limit(uint64(limit)))
}

func (s *SQLCommon) GetOrphanedRecords(ctx context.Context, limit int) ([]*core.Record, error) {
	return s.getRecordsQuery(ctx, s.selectRecords().
		Where(sq.Eq{"status": core.RecordStatusOrphaned}).
		OrderBy("updated", sequenceColumn).
		Limit(uint64(limit)))
}

func (s *SQLCommon) GetRecords(ctx context.Context, query *database.RecordQuery) ([]*core.Record, error) {
	q := s.selectRecords()
	if query.Kind != "" {
		q = q.Where(sq.Eq{"kind": query.Kind})
	}
	if query.Scope != nil {
		q = q.Where(scopeEq(*query.Scope))
	}
	if query.Status != "" {
		q = q.Where(sq.Eq{"status": query.Status})
	}
	if !query.IncludeOrphaned && query.Status != core.RecordStatusOrphaned {
		q = q.Where(notOrphaned())
	}
	q = q.OrderBy(sequenceColumn)
	if query.Skip > 0 {
		q = q.Offset(query.Skip)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	return s.getRecordsQuery(ctx, q)
}

func (s *SQLCommon) SetRecordSequence(ctx context.Context, seq int64, scopedSequenceID int64) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	_, err = s.updateTx(ctx, tx, sq.Update(recordsTable).
		Set("scoped_seq", scopedSequenceID).
		Set("updated", core.Now()).
		Where(sq.Eq{sequenceColumn: seq}),
		nil,
	)
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) SetRecordChain(ctx context.Context, seq int64, scopedSequenceID int64, digest *core.Bytes32, chainCount int64) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	_, err = s.updateTx(ctx, tx, sq.Update(recordsTable).
		Set("scoped_seq", scopedSequenceID).
		Set("running_digest", digest).
		Set("chain_count", chainCount).
		Set("updated", core.Now()).
		Where(sq.Eq{sequenceColumn: seq}),
		nil,
	)
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) TransitionRecord(ctx context.Context, seq int64, expected core.RecordStatus, update *database.RecordUpdate) (bool, error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return false, err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	q := sq.Update(recordsTable).Set("updated", core.Now())
	if update.Status != nil {
		q = q.Set("status", *update.Status)
	}
	if update.ClearChain {
		q = q.Set("scoped_seq", nil).
			Set("running_digest", nil).
			Set("chain_count", nil)
	}
	if update.VerifyAttempts != nil {
		q = q.Set("verify_attempts", *update.VerifyAttempts)
	}
	if update.LastCheckedSlot != nil {
		q = q.Set("last_checked_slot", *update.LastCheckedSlot)
	}
	if update.VerifiedAt != nil {
		q = q.Set("verified_at", update.VerifiedAt)
	}
	if update.ChainConflict != nil {
		q = q.Set("chain_conflict", *update.ChainConflict)
	}
	ra, err := s.updateTx(ctx, tx, q.Where(sq.Eq{
		sequenceColumn: seq,
		"status":       expected,
	}), nil)
	if err != nil {
		return false, err
	}

	return ra > 0, s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) GetStatusCounts(ctx context.Context) ([]*core.StatusCount, error) {
	rows, err := s.query(ctx, sq.Select("kind", "status", "COUNT(*)").
		From(recordsTable).
		GroupBy("kind", "status").
		OrderBy("kind", "status"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []*core.StatusCount{}
	for rows.Next() {
		var sc core.StatusCount
		if err := rows.Scan(&sc.Kind, &sc.Status, &sc.Count); err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, recordsTable)
		}
		counts = append(counts, &sc)
	}
	return counts, nil
}

func (s *SQLCommon) CountParentHashMismatches(ctx context.Context) (int64, error) {
	return s.countQuery(ctx, recordsTable, sq.Select("COUNT(*)").
		From(recordsTable).
		Where(sq.Eq{"parent_hash_mismatch": true}))
}
