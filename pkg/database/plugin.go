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

package database

import (
	"context"

	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// Plugin is the interface implemented by each plugin
type Plugin interface {
	PersistenceInterface // Split out to aid pluggability the next level down (SQL provider etc.)

	// Name is the name of the plugin
	Name() string

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration
	Init(ctx context.Context, prefix config.Prefix) error

	// Capabilities returns capabilities - not called until after Init
	Capabilities() *Capabilities

	// Close releases the connection pool
	Close()
}

// Capabilities the supported featureset of the database interface implemented by the plugin, with the specified config
type Capabilities struct {
	// ClusterLocks is true when LockScope serializes writers across processes, not just within this one
	ClusterLocks bool
}

// RecordUpdate is a guarded change to the reconciliation state of a record.
// Nil fields are left untouched.
type RecordUpdate struct {
	Status          *core.RecordStatus
	ClearChain      bool
	VerifyAttempts  *int
	LastCheckedSlot *uint64
	VerifiedAt      *core.Timestamp
	ChainConflict   *bool
}

// RecordQuery selects committed records for the query-serving surface
type RecordQuery struct {
	Kind            core.RecordKind
	Scope           *core.ScopeRef
	Status          core.RecordStatus
	IncludeOrphaned bool
	Skip            uint64
	Limit           uint64
}

type iScopeCollection interface {
	// LockScope - Acquire the scope-exclusive lock for the remainder of the current group.
	//             Must be called inside RunAsGroup, and released only on commit or rollback.
	LockScope(ctx context.Context, scope core.ScopeRef) error

	// GetScopeCounter - Get the counter of a scope, or nil if no record has been sequenced in it
	GetScopeCounter(ctx context.Context, scope core.ScopeRef) (*core.ScopeCounter, error)

	// AdvanceScopeCounter - Create the counter lazily, advance it by one from the greater of its
	//                       current value and the floor, and return the new value
	AdvanceScopeCounter(ctx context.Context, scope core.ScopeRef, floor int64) (int64, error)

	// RecordScopeBurn - Count a counter value that was advanced without a persisted record
	RecordScopeBurn(ctx context.Context, scope core.ScopeRef) error

	// UpdateScopeChain - Move the tip of the hash chain of a scope
	UpdateScopeChain(ctx context.Context, scope core.ScopeRef, count int64, digest *core.Bytes32) error

	// GetScopeMaxSequence - The highest scoped sequence persisted on a record of the scope, or zero
	GetScopeMaxSequence(ctx context.Context, scope core.ScopeRef) (int64, error)

	// GetUnsequencedScopes - Scopes that hold non-orphan records without a scoped sequence
	GetUnsequencedScopes(ctx context.Context) ([]core.ScopeRef, error)
}

type iRecordCollection interface {
	// InsertRecord - Insert a record, unless one with the same kind and natural key exists.
	//                Returns false with no error on conflict, leaving the existing record untouched.
	InsertRecord(ctx context.Context, record *core.Record) (inserted bool, err error)

	// GetRecordByNaturalKey - Get a record by kind and natural key
	GetRecordByNaturalKey(ctx context.Context, kind core.RecordKind, naturalKey string) (*core.Record, error)

	// GetRecordBySequence - Get a record by row sequence
	GetRecordBySequence(ctx context.Context, seq int64) (*core.Record, error)

	// GetChainedRecords - Chained records of a scope at or after the slot, in chain order
	GetChainedRecords(ctx context.Context, scope core.ScopeRef, fromSlot uint64) ([]*core.Record, error)

	// GetChainTail - The last chained record of a scope strictly before the slot, or nil
	GetChainTail(ctx context.Context, scope core.ScopeRef, beforeSlot uint64) (*core.Record, error)

	// GetChainRecordAt - The non-orphan record at a chain position of a scope, or nil
	GetChainRecordAt(ctx context.Context, scope core.ScopeRef, chainCount int64) (*core.Record, error)

	// GetSequencedRecords - Every non-orphan record of a scope holding a scoped sequence
	GetSequencedRecords(ctx context.Context, scope core.ScopeRef) ([]*core.Record, error)

	// GetUnsequencedRecords - Non-orphan records of a scope without a scoped sequence
	GetUnsequencedRecords(ctx context.Context, scope core.ScopeRef) ([]*core.Record, error)

	// SetRecordSequence - Assign the scoped sequence of a record, leaving its chain position to be refolded
	SetRecordSequence(ctx context.Context, seq int64, scopedSequenceID int64) error

	// SetRecordChain - Set the scoped sequence, running digest and chain position of a record
	SetRecordChain(ctx context.Context, seq int64, scopedSequenceID int64, digest *core.Bytes32, chainCount int64) error

	// TransitionRecord - Compare-and-set update, applied only when the record is in the expected status.
	//                    Returns false when the record was not in that status.
	TransitionRecord(ctx context.Context, seq int64, expected core.RecordStatus, update *RecordUpdate) (bool, error)

	// GetPendingRecords - Oldest PENDING records of a kind, at or below the cutoff slot
	GetPendingRecords(ctx context.Context, kind core.RecordKind, cutoffSlot uint64, limit int) ([]*core.Record, error)

	// GetOrphanedRecords - ORPHANED records, least recently examined first
	GetOrphanedRecords(ctx context.Context, limit int) ([]*core.Record, error)

	// GetRecords - Committed records for the query surface, ORPHANED excluded unless requested
	GetRecords(ctx context.Context, query *RecordQuery) ([]*core.Record, error)

	// GetStatusCounts - Number of records per kind and status
	GetStatusCounts(ctx context.Context) ([]*core.StatusCount, error)

	// CountParentHashMismatches - Number of records flagged with a parent content hash mismatch
	CountParentHashMismatches(ctx context.Context) (int64, error)
}

type iStateCollection interface {
	// GetIndexerState - Get the singleton state, or nil before the first write
	GetIndexerState(ctx context.Context) (*core.IndexerState, error)

	// UpdateIndexerCursor - Persist the ingestion cursor, creating the singleton if required
	UpdateIndexerCursor(ctx context.Context, slot uint64, signature string) error

	// UpdateLastVerifiedSlot - Persist the last cutoff slot the verifier completed, creating the singleton if required
	UpdateLastVerifiedSlot(ctx context.Context, slot uint64) error
}

type iEnrichmentCollection interface {
	// UpsertEnrichmentInput - Record the committed reference of a subject, unless a newer slot already set it.
	//                         Returns true when the committed reference changed.
	UpsertEnrichmentInput(ctx context.Context, input *core.EnrichmentInput) (changed bool, err error)

	// GetEnrichmentInput - Get the committed reference of a subject
	GetEnrichmentInput(ctx context.Context, subject string) (*core.EnrichmentInput, error)

	// UpsertEnrichmentOutput - Store the result of enriching a subject
	UpsertEnrichmentOutput(ctx context.Context, output *core.EnrichmentOutput) error

	// GetEnrichmentOutput - Get the stored result for a subject
	GetEnrichmentOutput(ctx context.Context, subject string) (*core.EnrichmentOutput, error)

	// UpdateEnrichmentAttempt - Record a failed attempt to enrich a subject, moving it behind other stale inputs
	UpdateEnrichmentAttempt(ctx context.Context, subject string) error

	// GetStaleEnrichmentInputs - Inputs whose output is missing, or was produced from another reference.
	//                            Least recently attempted first.
	GetStaleEnrichmentInputs(ctx context.Context, limit int) ([]*core.EnrichmentInput, error)
}

// PersistenceInterface are the operations that must be implemented by a database interface plugin.
type PersistenceInterface interface {
	// RunAsGroup instructs the database plugin that all database operations performed within the context
	// function can be grouped into a single transaction (if supported).
	//
	// Note, the caller is responsible for passing the context back to all database operations performed within the supplied function.
	RunAsGroup(ctx context.Context, fn func(ctx context.Context) error) error

	iScopeCollection
	iRecordCollection
	iStateCollection
	iEnrichmentCollection
}
