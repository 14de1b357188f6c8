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

func TestEnrichmentE2EWithDB(t *testing.T) {
	s := newSQLiteTestProvider(t)
	defer s.Close()
	ctx := context.Background()

	input := &core.EnrichmentInput{Subject: core.AgentSubject("Agent111"), Reference: "https://example.com/a.json", UpdatedSlot: 100}
	changed, err := s.UpsertEnrichmentInput(ctx, input)
	assert.NoError(t, err)
	assert.True(t, changed)

	// Same reference is not a change
	changed, err = s.UpsertEnrichmentInput(ctx, &core.EnrichmentInput{Subject: input.Subject, Reference: input.Reference, UpdatedSlot: 120})
	assert.NoError(t, err)
	assert.False(t, changed)

	// An older slot never overrides a newer one
	changed, err = s.UpsertEnrichmentInput(ctx, &core.EnrichmentInput{Subject: input.Subject, Reference: "https://example.com/old.json", UpdatedSlot: 50})
	assert.NoError(t, err)
	assert.False(t, changed)

	read, err := s.GetEnrichmentInput(ctx, input.Subject)
	assert.NoError(t, err)
	assert.Equal(t, input.Reference, read.Reference)
	assert.Equal(t, uint64(120), read.UpdatedSlot)

	stale, err := s.GetStaleEnrichmentInputs(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)

	output := &core.EnrichmentOutput{
		Subject:     input.Subject,
		Reference:   input.Reference,
		ContentHash: core.NewRandB32(),
		Document:    core.JSONAny(`{"name":"agent"}`),
	}
	err = s.UpsertEnrichmentOutput(ctx, output)
	assert.NoError(t, err)
	assert.NotNil(t, output.Fetched)

	stale, err = s.GetStaleEnrichmentInputs(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, stale)

	// A newer reference makes the output stale again
	changed, err = s.UpsertEnrichmentInput(ctx, &core.EnrichmentInput{Subject: input.Subject, Reference: "https://example.com/b.json", UpdatedSlot: 200})
	assert.NoError(t, err)
	assert.True(t, changed)
	stale, err = s.GetStaleEnrichmentInputs(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)

	output.Reference = "https://example.com/b.json"
	output.Fetched = nil
	err = s.UpsertEnrichmentOutput(ctx, output)
	assert.NoError(t, err)

	outRead, err := s.GetEnrichmentOutput(ctx, input.Subject)
	assert.NoError(t, err)
	assert.Equal(t, output.Reference, outRead.Reference)
	assert.Equal(t, output.ContentHash, outRead.ContentHash)
	assert.Equal(t, output.Document, outRead.Document)

	missing, err := s.GetEnrichmentOutput(ctx, "agent:unknown")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStaleEnrichmentInputsRotateAfterFailure(t *testing.T) {
	s := newSQLiteTestProvider(t)
	defer s.Close()
	ctx := context.Background()

	for _, subject := range []string{"agent:dead", "agent:live"} {
		_, err := s.UpsertEnrichmentInput(ctx, &core.EnrichmentInput{Subject: subject, Reference: "https://example.com/" + subject, UpdatedSlot: 100})
		assert.NoError(t, err)
	}

	stale, err := s.GetStaleEnrichmentInputs(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, "agent:dead", stale[0].Subject)

	// A failed attempt moves the subject behind inputs that were never attempted
	err = s.UpdateEnrichmentAttempt(ctx, "agent:dead")
	assert.NoError(t, err)
	stale, err = s.GetStaleEnrichmentInputs(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, stale, 1)
	assert.Equal(t, "agent:live", stale[0].Subject)

	stale, err = s.GetStaleEnrichmentInputs(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, stale, 2)
	assert.Equal(t, "agent:dead", stale[1].Subject)
}

func TestUpdateEnrichmentAttemptFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.UpdateEnrichmentAttempt(context.Background(), "agent:a")
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEnrichmentAttemptFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.UpdateEnrichmentAttempt(context.Background(), "agent:a")
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentInputFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	_, err := s.UpsertEnrichmentInput(context.Background(), &core.EnrichmentInput{Subject: "agent:a"})
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentInputFailSelect(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.UpsertEnrichmentInput(context.Background(), &core.EnrichmentInput{Subject: "agent:a"})
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentInputFailInsert(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(enrichmentInputColumns))
	mock.ExpectExec("INSERT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.UpsertEnrichmentInput(context.Background(), &core.EnrichmentInput{Subject: "agent:a"})
	assert.Regexp(t, "AL10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentInputFailUpdate(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(enrichmentInputColumns).AddRow("agent:a", "ref1", 1, int64(1000)))
	mock.ExpectExec("UPDATE .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	_, err := s.UpsertEnrichmentInput(context.Background(), &core.EnrichmentInput{Subject: "agent:a", Reference: "ref2", UpdatedSlot: 2})
	assert.Regexp(t, "AL10124", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEnrichmentInputScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("agent:a"))
	_, err := s.GetEnrichmentInput(context.Background(), "agent:a")
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentOutputFailBegin(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin().WillReturnError(fmt.Errorf("pop"))
	err := s.UpsertEnrichmentOutput(context.Background(), &core.EnrichmentOutput{Subject: "agent:a"})
	assert.Regexp(t, "AL10121", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentOutputFailSelect(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.UpsertEnrichmentOutput(context.Background(), &core.EnrichmentOutput{Subject: "agent:a"})
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentOutputFailInsert(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(enrichmentOutputColumns))
	mock.ExpectExec("INSERT .*").WillReturnError(fmt.Errorf("pop"))
	mock.ExpectRollback()
	err := s.UpsertEnrichmentOutput(context.Background(), &core.EnrichmentOutput{Subject: "agent:a"})
	assert.Regexp(t, "AL10123", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEnrichmentOutputScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("agent:a"))
	_, err := s.GetEnrichmentOutput(context.Background(), "agent:a")
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStaleEnrichmentInputsFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnError(fmt.Errorf("pop"))
	_, err := s.GetStaleEnrichmentInputs(context.Background(), 10)
	assert.Regexp(t, "AL10122", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStaleEnrichmentInputsScanFail(t *testing.T) {
	s, mock := newMockProvider().init()
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows([]string{"subject"}).AddRow("agent:a"))
	_, err := s.GetStaleEnrichmentInputs(context.Background(), 10)
	assert.Regexp(t, "AL10128", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
