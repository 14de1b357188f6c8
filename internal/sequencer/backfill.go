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

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// Backfill numbers rows that were stored without a scoped sequence, for example by an earlier schema.
// Rows are ranked by ordering key (unknown txIndex/logOrdinal last), then natural key, then row identity,
// and numbered after the highest sequence of the scope. Rows that already hold a sequence keep it, so
// backfilled numbers can sort after records that come later in chain order.
func (s *sequencer) Backfill(ctx context.Context, scope core.ScopeRef) (count int, err error) {
	ctx = log.WithLogField(ctx, "scope", scope.String())
	err = s.database.RunAsGroup(ctx, func(ctx context.Context) error {
		count = 0
		if err := s.database.LockScope(ctx, scope); err != nil {
			return err
		}
		unsequenced, err := s.database.GetUnsequencedRecords(ctx, scope)
		if err != nil || len(unsequenced) == 0 {
			return err
		}
		floor, err := s.database.GetScopeMaxSequence(ctx, scope)
		if err != nil {
			return err
		}
		core.SortRecords(unsequenced)
		for _, r := range unsequenced {
			n, err := s.database.AdvanceScopeCounter(ctx, scope, floor)
			if err != nil {
				return err
			}
			if err := s.database.SetRecordSequence(ctx, r.Sequence, n); err != nil {
				return err
			}
			count++
		}
		return s.tracker.Rechain(ctx, scope, 0)
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.L(ctx).Infof("Backfilled %d records in %s", count, scope)
	}
	return count, nil
}

func (s *sequencer) BackfillAll(ctx context.Context) (int, error) {
	scopes, err := s.database.GetUnsequencedScopes(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, scope := range scopes {
		if ctx.Err() != nil {
			return total, i18n.NewError(ctx, i18n.MsgContextCanceled)
		}
		count, err := s.Backfill(ctx, scope)
		if err != nil {
			// The scope stays unsequenced, and is retried on the next run
			log.L(ctx).Errorf("Backfill of %s skipped: %s", scope, err)
			continue
		}
		total += count
	}
	log.L(ctx).Infof("Backfill complete: %d records in %d scopes", total, len(scopes))
	return total, nil
}
