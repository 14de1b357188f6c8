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
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestScopeCountersE2EWithDB(t *testing.T) {
	s := newSQLiteTestProvider(t)
	defer s.Close()
	ctx := context.Background()

	sc, err := s.GetScopeCounter(ctx, testScope)
	assert.NoError(t, err)
	assert.Nil(t, sc)

	next, err := s.AdvanceScopeCounter(ctx, testScope, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), next)
	next, err = s.AdvanceScopeCounter(ctx, testScope, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), next)

	// A floor above the counter jumps forwards, and one below is ignored
	next, err = s.AdvanceScopeCounter(ctx, testScope, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), next)
	next, err = s.AdvanceScopeCounter(ctx, testScope, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), next)

	err = s.RecordScopeBurn(ctx, testScope)
	assert.NoError(t, err)

	digest := core.NewRandB32()
	err = s.UpdateScopeChain(ctx, testScope, 3, digest)
	assert.NoError(t, err)

	sc, err = s.GetScopeCounter(ctx, testScope)
	assert.NoError(t, err)
	assert.Equal(t, testScope, sc.Scope)
	assert.Equal(t, int64(12), sc.LastSequence)
	assert.Equal(t, int64(1), sc.Burned)
	assert.Equal(t, int64(3), sc.ChainCount)
	assert.Equal(t, digest, sc.ChainDigest)
	assert.Equal(t, digest, sc.Tip())

	// Other scopes are independent
	other := core.ScopeRef{Kind: core.ScopeKindResponse, Key: testScope.Key}
	next, err = s.AdvanceScopeCounter(ctx, other, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), next)

	maxSeq, err := s.GetScopeMaxSequence(ctx, other)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), maxSeq)
}

func TestGetScopeCounterQueryFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetScopeCounter(context.Background(), testScope)
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScopeCounterScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"scope_kind"}).AddRow("feedback"))
	_, err := s.GetScopeCounter(context.Background(), testScope)
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceScopeCounterFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	_, err := s.AdvanceScopeCounter(context.Background(), testScope, 0)
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceScopeCounterFailSelect(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.AdvanceScopeCounter(context.Background(), testScope, 0)
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceScopeCounterFailInsert(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(scopeCounterColumns))
	mock.ExpectExec("INSERT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.AdvanceScopeCounter(context.Background(), testScope, 0)
	assert.Regexp(t, "AL10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceScopeCounterFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(scopeCounterColumns).
		AddRow("feedback", "Agent111", 5, 5, nil, 0, int64(1000)))
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.AdvanceScopeCounter(context.Background(), testScope, 0)
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordScopeBurnFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.RecordScopeBurn(context.Background(), testScope)
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordScopeBurnFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.RecordScopeBurn(context.Background(), testScope)
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateScopeChainFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.UpdateScopeChain(context.Background(), testScope, 1, core.NewRandB32())
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateScopeChainFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.UpdateScopeChain(context.Background(), testScope, 1, core.NewRandB32())
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnsequencedScopesFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetUnsequencedScopes(context.Background())
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnsequencedScopesScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"scope_kind"}).AddRow("feedback"))
	_, err := s.GetUnsequencedScopes(context.Background())
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
