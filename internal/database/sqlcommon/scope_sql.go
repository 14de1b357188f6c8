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

const scopeCountersTable = "scope_counters"

var (
	scopeCounterColumns = []string{
		"scope_kind",
		"scope_key",
		"last_seq",
		"chain_count",
		"chain_digest",
		"burned",
		"updated",
	}
)

func (s *SQLCommon) GetScopeCounter(ctx context.Context, scope core.ScopeRef) (*core.ScopeCounter, error) {
	rows, err := s.query(ctx, sq.Select(scopeCounterColumns...).
		From(scopeCountersTable).
		Where(scopeEq(scope)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Scope counter '%s' not found", scope)
		return nil, nil
	}
	var sc core.ScopeCounter
	err = rows.Scan(
		&sc.Scope.Kind,
		&sc.Scope.Key,
		&sc.LastSequence,
		&sc.ChainCount,
		&sc.ChainDigest,
		&sc.Burned,
		&sc.Updated,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, scopeCountersTable)
	}
	return &sc, nil
}

func (s *SQLCommon) AdvanceScopeCounter(ctx context.Context, scope core.ScopeRef, floor int64) (int64, error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return -1, err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	existing, err := s.GetScopeCounter(ctx, scope)
	if err != nil {
		return -1, err
	}

	next := floor + 1
	if existing == nil {
		_, err = s.insertTx(ctx, tx, sq.Insert(scopeCountersTable).
			Columns(scopeCounterColumns...).
			Values(scope.Kind, scope.Key, next, 0, nil, 0, core.Now()),
			nil,
		)
	} else {
		if existing.LastSequence >= next {
			next = existing.LastSequence + 1
		}
		_, err = s.updateTx(ctx, tx, sq.Update(scopeCountersTable).
			Set("last_seq", next).
			Set("updated", core.Now()).
			Where(scopeEq(scope)),
			nil,
		)
	}
	if err != nil {
		return -1, err
	}

	return next, s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) RecordScopeBurn(ctx context.Context, scope core.ScopeRef) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	_, err = s.updateTx(ctx, tx, sq.Update(scopeCountersTable).
		Set("burned", sq.Expr("burned + 1")).
		Set("updated", core.Now()).
		Where(scopeEq(scope)),
		nil,
	)
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) UpdateScopeChain(ctx context.Context, scope core.ScopeRef, count int64, digest *core.Bytes32) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	_, err = s.updateTx(ctx, tx, sq.Update(scopeCountersTable).
		Set("chain_count", count).
		Set("chain_digest", digest).
		Set("updated", core.Now()).
		Where(scopeEq(scope)),
		nil,
	)
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) GetScopeMaxSequence(ctx context.Context, scope core.ScopeRef) (int64, error) {
	return s.countQuery(ctx, recordsTable, sq.Select("MAX(scoped_seq)").
		From(recordsTable).
		Where(scopeEq(scope)))
}

func (s *SQLCommon) GetUnsequencedScopes(ctx context.Context) ([]core.ScopeRef, error) {
	rows, err := s.query(ctx, sq.Select("scope_kind", "scope_key").
		Distinct().
		From(recordsTable).
		Where(sq.Eq{"scoped_seq": nil}).
		Where(notOrphaned()).
		OrderBy("scope_kind", "scope_key"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scopes := []core.ScopeRef{}
	for rows.Next() {
		var scope core.ScopeRef
		if err := rows.Scan(&scope.Kind, &scope.Key); err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, recordsTable)
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}
