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

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

const (
	indexerStateTable = "indexer_state"
	indexerStateID    = 1
)

var (
	indexerStateColumns = []string{
		"cursor_slot",
		"cursor_signature",
		"last_verified_slot",
		"updated",
	}
)

func (s *SQLCommon) GetIndexerState(ctx context.Context) (*core.IndexerState, error) {
	rows, err := s.query(ctx, sq.Select(indexerStateColumns...).
		From(indexerStateTable).
		Where(sq.Eq{"id": indexerStateID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Indexer state not yet created")
		return nil, nil
	}
	var state core.IndexerState
	err = rows.Scan(
		&state.CursorSlot,
		&state.CursorSignature,
		&state.LastVerifiedSlot,
		&state.Updated,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, indexerStateTable)
	}
	return &state, nil
}

// upsertIndexerState creates the singleton with the first write, and otherwise applies the update
func (s *SQLCommon) upsertIndexerState(ctx context.Context, apply func(state *core.IndexerState), update sq.UpdateBuilder) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	existing, err := s.GetIndexerState(ctx)
	if err != nil {
		return err
	}

	if existing == nil {
		state := &core.IndexerState{Updated: core.Now()}
		apply(state)
		_, err = s.insertTx(ctx, tx, sq.Insert(indexerStateTable).
			Columns("id", "cursor_slot", "cursor_signature", "last_verified_slot", "updated").
			Values(indexerStateID, state.CursorSlot, state.CursorSignature, state.LastVerifiedSlot, state.Updated),
			nil,
		)
	} else {
		_, err = s.updateTx(ctx, tx, update.
			Set("updated", core.Now()).
			Where(sq.Eq{"id": indexerStateID}),
			nil,
		)
	}
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) UpdateIndexerCursor(ctx context.Context, slot uint64, signature string) error {
	return s.upsertIndexerState(ctx, func(state *core.IndexerState) {
		state.CursorSlot = slot
		state.CursorSignature = signature
	}, sq.Update(indexerStateTable).
		Set("cursor_slot", slot).
		Set("cursor_signature", signature))
}

func (s *SQLCommon) UpdateLastVerifiedSlot(ctx context.Context, slot uint64) error {
	return s.upsertIndexerState(ctx, func(state *core.IndexerState) {
		state.LastVerifiedSlot = slot
	}, sq.Update(indexerStateTable).
		Set("last_verified_slot", slot))
}
