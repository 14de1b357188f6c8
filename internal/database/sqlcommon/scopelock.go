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
	"hash/fnv"
	"sync"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// scopeLocks serializes writers to a scope within this process. Scopes are hashed onto
// a fixed set of shards, so unrelated scopes may share a shard. A transaction only ever
// takes a shard once, and releases everything it holds when it completes.
type scopeLocks struct {
	shards []sync.Mutex
}

func newScopeLocks(count int) *scopeLocks {
	if count <= 0 {
		count = defaultLockShards
	}
	return &scopeLocks{shards: make([]sync.Mutex, count)}
}

// scopeLockKey is the stable 64bit hash of a scope, shared by the shard index and the database advisory lock
func scopeLockKey(scope core.ScopeRef) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope.String()))
	return int64(h.Sum64())
}

func (sl *scopeLocks) shardFor(key int64) int {
	return int(uint64(key) % uint64(len(sl.shards)))
}

func (s *SQLCommon) LockScope(ctx context.Context, scope core.ScopeRef) error {
	tx := getTXFromContext(ctx)
	if tx == nil {
		return i18n.NewError(ctx, i18n.MsgDBNoTransaction, "LockScope")
	}

	key := scopeLockKey(scope)
	shard := s.scopeLocks.shardFor(key)
	if !tx.heldShards[shard] {
		log.L(ctx).Tracef("Waiting for scope lock '%s' shard=%d", scope, shard)
		lock := &s.scopeLocks.shards[shard]
		lock.Lock()
		tx.heldShards[shard] = true
		tx.onComplete = append(tx.onComplete, func() {
			delete(tx.heldShards, shard)
			lock.Unlock()
		})
	}

	if s.features.AdvisoryLockSQL != "" {
		if _, err := tx.sqlTX.ExecContext(ctx, s.features.AdvisoryLockSQL, key); err != nil {
			log.L(ctx).Errorf("Advisory lock failed for scope '%s': %s", scope, err)
			return i18n.WrapError(ctx, err, i18n.MsgDBLockFailed, scope)
		}
	}
	log.L(ctx).Debugf("Locked scope '%s'", scope)
	return nil
}
