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
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
	"github.com/stretchr/testify/assert"
)

var testScope = core.ScopeRef{Kind: core.ScopeKindFeedback, Key: "Agent111"}

func newTestRecord(naturalKey string, slot uint64) *core.Record {
	return &core.Record{
		ID:          core.NewUUID(),
		Kind:        core.RecordKindFeedback,
		NaturalKey:  naturalKey,
		Scope:       testScope,
		ParentKey:   "Agent111",
		Status:      core.RecordStatusPending,
		ContentHash: core.NewRandB32(),
		OrderingKey: core.OrderingKey{
			Slot:      slot,
			Signature: fmt.Sprintf("sig%d", slot),
			TxIndex:   core.Int64Ptr(0),
		},
		Payload: core.JSONAny(`{"score":90}`),
	}
}

func TestRecordsE2EWithDB(t *testing.T) {
	log.SetLevel("debug")

	s := newSQLiteTestProvider(t)
	defer s.Close()
	ctx := context.Background()

	// Insert two records
	r1 := newTestRecord("Agent111/Client1/0", 100)
	inserted, err := s.InsertRecord(ctx, r1)
	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.Greater(t, r1.Sequence, int64(0))
	r2 := newTestRecord("Agent111/Client1/1", 200)
	r2.OrderingKey.TxIndex = nil
	inserted, err = s.InsertRecord(ctx, r2)
	assert.NoError(t, err)
	assert.True(t, inserted)

	// A replay of the same natural key is a no-op
	replay := newTestRecord(r1.NaturalKey, 100)
	inserted, err = s.InsertRecord(ctx, replay)
	assert.NoError(t, err)
	assert.False(t, inserted)

	// Check we get the exact same record back
	r1Read, err := s.GetRecordByNaturalKey(ctx, core.RecordKindFeedback, r1.NaturalKey)
	assert.NoError(t, err)
	r1Json, _ := json.Marshal(r1)
	r1ReadJson, _ := json.Marshal(r1Read)
	assert.Equal(t, string(r1Json), string(r1ReadJson))

	r2Read, err := s.GetRecordBySequence(ctx, r2.Sequence)
	assert.NoError(t, err)
	assert.Nil(t, r2Read.OrderingKey.TxIndex)
	assert.Equal(t, r2.ID, r2Read.ID)

	// Both are unsequenced
	unsequenced, err := s.GetUnsequencedRecords(ctx, testScope)
	assert.NoError(t, err)
	assert.Len(t, unsequenced, 2)
	scopes, err := s.GetUnsequencedScopes(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []core.ScopeRef{testScope}, scopes)

	// Sequence then chain them
	err = s.SetRecordSequence(ctx, r1.Sequence, 1)
	assert.NoError(t, err)
	sequenced, err := s.GetSequencedRecords(ctx, testScope)
	assert.NoError(t, err)
	assert.Len(t, sequenced, 1)
	assert.Nil(t, sequenced[0].ChainCount)
	d1 := core.NewRandB32()
	d2 := core.NewRandB32()
	err = s.SetRecordChain(ctx, r1.Sequence, 1, d1, 1)
	assert.NoError(t, err)
	err = s.SetRecordChain(ctx, r2.Sequence, 2, d2, 2)
	assert.NoError(t, err)

	chained, err := s.GetChainedRecords(ctx, testScope, 150)
	assert.NoError(t, err)
	assert.Len(t, chained, 1)
	assert.Equal(t, r2.Sequence, chained[0].Sequence)
	assert.Equal(t, d2, chained[0].RunningDigest)

	atPos, err := s.GetChainRecordAt(ctx, testScope, 1)
	assert.NoError(t, err)
	assert.Equal(t, r1.Sequence, atPos.Sequence)
	assert.Equal(t, d1, atPos.RunningDigest)
	atPos, err = s.GetChainRecordAt(ctx, testScope, 3)
	assert.NoError(t, err)
	assert.Nil(t, atPos)

	tail, err := s.GetChainTail(ctx, testScope, 150)
	assert.NoError(t, err)
	assert.Equal(t, r1.Sequence, tail.Sequence)
	assert.Equal(t, int64(1), *tail.ChainCount)

	tail, err = s.GetChainTail(ctx, testScope, 100)
	assert.NoError(t, err)
	assert.Nil(t, tail)

	sequenced, err = s.GetSequencedRecords(ctx, testScope)
	assert.NoError(t, err)
	assert.Len(t, sequenced, 2)
	assert.Equal(t, int64(2), *sequenced[1].ScopedSequenceID)

	maxSeq, err := s.GetScopeMaxSequence(ctx, testScope)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), maxSeq)

	// Pending records respect the cutoff
	pending, err := s.GetPendingRecords(ctx, core.RecordKindFeedback, 150, 10)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, r1.Sequence, pending[0].Sequence)

	// Finalize the first record, with a guard on the expected status
	finalized := core.RecordStatusFinalized
	attempts := 1
	checked := uint64(500)
	ok, err := s.TransitionRecord(ctx, r1.Sequence, core.RecordStatusPending, &database.RecordUpdate{
		Status:          &finalized,
		VerifyAttempts:  &attempts,
		LastCheckedSlot: &checked,
		VerifiedAt:      core.Now(),
	})
	assert.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.TransitionRecord(ctx, r1.Sequence, core.RecordStatusPending, &database.RecordUpdate{Status: &finalized})
	assert.NoError(t, err)
	assert.False(t, ok)

	// Orphan the second, dropping its chain position
	orphaned := core.RecordStatusOrphaned
	conflict := true
	ok, err = s.TransitionRecord(ctx, r2.Sequence, core.RecordStatusPending, &database.RecordUpdate{
		Status:        &orphaned,
		ClearChain:    true,
		ChainConflict: &conflict,
	})
	assert.NoError(t, err)
	assert.True(t, ok)
	r2Read, err = s.GetRecordBySequence(ctx, r2.Sequence)
	assert.NoError(t, err)
	assert.Nil(t, r2Read.ScopedSequenceID)
	assert.Nil(t, r2Read.RunningDigest)
	assert.Nil(t, r2Read.ChainCount)
	assert.True(t, r2Read.ChainConflict)

	orphans, err := s.GetOrphanedRecords(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, orphans, 1)

	// Query surface hides orphans unless asked
	records, err := s.GetRecords(ctx, &database.RecordQuery{Kind: core.RecordKindFeedback, Scope: &testScope})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	records, err = s.GetRecords(ctx, &database.RecordQuery{IncludeOrphaned: true, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	records, err = s.GetRecords(ctx, &database.RecordQuery{Status: core.RecordStatusOrphaned, Skip: 0, Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, r2.Sequence, records[0].Sequence)

	counts, err := s.GetStatusCounts(ctx)
	assert.NoError(t, err)
	assert.Len(t, counts, 2)

	mismatches, err := s.CountParentHashMismatches(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), mismatches)
}

func TestInsertRecordFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	_, err := s.InsertRecord(context.Background(), newTestRecord("k", 1))
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecordFailInsert(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.InsertRecord(context.Background(), newTestRecord("k", 1))
	assert.Regexp(t, "AL10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRecordFailCommit(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT .*").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(fmt.Errorf("pop"))
	_, err := s.InsertRecord(context.Background(), newTestRecord("k", 1))
	assert.Regexp(t, "AL10126", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByNaturalKeySelectFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetRecordByNaturalKey(context.Background(), core.RecordKindAgent, "Agent111")
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordByNaturalKeyNotFound(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{}))
	r, err := s.GetRecordByNaturalKey(context.Background(), core.RecordKindAgent, "Agent111")
	assert.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecordBySequenceScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only one"))
	_, err := s.GetRecordBySequence(context.Background(), 12345)
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPendingRecordsScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only one"))
	_, err := s.GetPendingRecords(context.Background(), core.RecordKindAgent, 100, 10)
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRecordChainFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.SetRecordChain(context.Background(), 1, 1, core.NewRandB32(), 1)
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRecordChainFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.SetRecordChain(context.Background(), 1, 1, core.NewRandB32(), 1)
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRecordSequenceFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.SetRecordSequence(context.Background(), 1, 1)
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRecordSequenceFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.SetRecordSequence(context.Background(), 1, 1)
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRecordFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	_, err := s.TransitionRecord(context.Background(), 1, core.RecordStatusPending, &database.RecordUpdate{})
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRecordFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.TransitionRecord(context.Background(), 1, core.RecordStatusPending, &database.RecordUpdate{})
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusCountsFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetStatusCounts(context.Background())
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusCountsScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"kind"}).AddRow("agent"))
	_, err := s.GetStatusCounts(context.Background())
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
