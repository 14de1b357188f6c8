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

package core

import (
	"github.com/google/uuid"
)

// ScopeRef identifies one independent sequence and hash chain
type ScopeRef struct {
	Kind ScopeKind `json:"kind"`
	Key  string    `json:"key"`
}

func (s ScopeRef) String() string {
	return s.Kind.String() + ":" + s.Key
}

// Record is the projection of one ledger event into a scope.
//
// An orphaned record never holds a scoped sequence, a running digest or a chain position.
// Every other record holds a scoped sequence unique within its scope, ordered consistently
// with the ordering key of the events in that scope.
type Record struct {
	Sequence           int64        `json:"rowId"`
	ID                 uuid.UUID    `json:"id"`
	Kind               RecordKind   `json:"kind"`
	NaturalKey         string       `json:"naturalKey"`
	Scope              ScopeRef     `json:"scope"`
	ParentKey          string       `json:"parentKey,omitempty"`
	Status             RecordStatus `json:"status"`
	ScopedSequenceID   *int64       `json:"scopedSequenceId,omitempty"`
	ContentHash        *Bytes32     `json:"contentHash"`
	RunningDigest      *Bytes32     `json:"runningDigest,omitempty"`
	ChainCount         *int64       `json:"chainCount,omitempty"`
	OrderingKey        OrderingKey  `json:"orderingKey"`
	Payload            JSONAny      `json:"payload,omitempty"`
	ParentHashMismatch bool         `json:"parentHashMismatch,omitempty"`
	ChainConflict      bool         `json:"chainConflict,omitempty"`
	VerifyAttempts     int          `json:"verifyAttempts"`
	LastCheckedSlot    uint64       `json:"lastCheckedSlot,omitempty"`
	VerifiedAt         *Timestamp   `json:"verifiedAt,omitempty"`
	Created            *Timestamp   `json:"created"`
	Updated            *Timestamp   `json:"updated"`
}

// IsChained is true when the record participates in its scope's hash chain
func (r *Record) IsChained() bool {
	return r.Status != RecordStatusOrphaned && r.ScopedSequenceID != nil
}

// OwnerAsset is the agent asset whose on-chain account attests the record
func (r *Record) OwnerAsset() string {
	if r.Kind == RecordKindAgent {
		return r.NaturalKey
	}
	return r.Scope.Key
}

// ScopeCounter is the sequence counter of a scope, plus the persisted tip of its hash chain.
// LastSequence is never decremented, and may run ahead of the highest persisted sequence.
type ScopeCounter struct {
	Scope        ScopeRef   `json:"scope"`
	LastSequence int64      `json:"lastSequence"`
	ChainCount   int64      `json:"chainCount"`
	ChainDigest  *Bytes32   `json:"chainDigest"`
	Burned       int64      `json:"burned"`
	Updated      *Timestamp `json:"updated,omitempty"`
}

// Tip returns the digest the next record folds onto
func (sc *ScopeCounter) Tip() *Bytes32 {
	if sc.ChainDigest == nil {
		zero := ZeroDigest
		return &zero
	}
	return sc.ChainDigest
}

// IndexerState is the singleton resume point of ingestion and verification
type IndexerState struct {
	CursorSlot       uint64     `json:"cursorSlot"`
	CursorSignature  string     `json:"cursorSignature,omitempty"`
	LastVerifiedSlot uint64     `json:"lastVerifiedSlot"`
	Updated          *Timestamp `json:"updated,omitempty"`
}

// Cursor is the position after which the next historical page is fetched
func (is *IndexerState) Cursor() *OrderingKey {
	return &OrderingKey{Slot: is.CursorSlot, Signature: is.CursorSignature}
}

// StatusCount is the number of records of one kind in one status
type StatusCount struct {
	Kind   RecordKind   `json:"kind"`
	Status RecordStatus `json:"status"`
	Count  int64        `json:"count"`
}

// VerificationStatus is the operational view of reconciliation progress
type VerificationStatus struct {
	Counts               []*StatusCount `json:"counts"`
	LastVerifiedSlot     uint64         `json:"lastVerifiedSlot"`
	Mismatches           int64          `json:"mismatches"`
	ParentHashMismatches int64          `json:"parentHashMismatches"`
	CyclesCompleted      int64          `json:"cyclesCompleted"`
	LastCycle            *Timestamp     `json:"lastCycle,omitempty"`
}

// EnrichmentInput is the committed off-chain reference of a subject
type EnrichmentInput struct {
	Subject     string     `json:"subject"`
	Reference   string     `json:"reference"`
	UpdatedSlot uint64     `json:"updatedSlot"`
	Updated     *Timestamp `json:"updated,omitempty"`
}

// EnrichmentOutput is the digest of the document that a reference resolved to
type EnrichmentOutput struct {
	Subject     string     `json:"subject"`
	Reference   string     `json:"reference"`
	ContentHash *Bytes32   `json:"contentHash"`
	Document    JSONAny    `json:"document,omitempty"`
	Fetched     *Timestamp `json:"fetched,omitempty"`
}
