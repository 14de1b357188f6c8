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

package enrichment

import (
	"context"

	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/kaleido-io/agentledger/pkg/database"
)

// Fetcher resolves a reference to the document it points at, and digests it
type Fetcher interface {
	Fetch(ctx context.Context, subject, reference string) (*core.EnrichmentOutput, error)
}

// Store is the committed input lookup, and the output sink, of a queue
type Store interface {
	// CurrentReference returns the committed reference of a subject, or empty if there is none
	CurrentReference(ctx context.Context, subject string) (string, error)

	// StaleSubjects returns inputs whose output is missing, or was produced from another reference
	StaleSubjects(ctx context.Context, limit int) ([]*core.EnrichmentInput, error)

	StoreOutput(ctx context.Context, output *core.EnrichmentOutput) error

	// RecordFailure moves a subject behind other stale subjects in the next sweeps
	RecordFailure(ctx context.Context, subject string) error
}

// Enqueuer is the producer side of a queue
type Enqueuer interface {
	Enqueue(ctx context.Context, subject, reference string) error
}

type databaseStore struct {
	database database.Plugin
}

// NewDatabaseStore backs a queue with the enrichment tables of the database
func NewDatabaseStore(di database.Plugin) Store {
	return &databaseStore{database: di}
}

func (s *databaseStore) CurrentReference(ctx context.Context, subject string) (string, error) {
	input, err := s.database.GetEnrichmentInput(ctx, subject)
	if err != nil || input == nil {
		return "", err
	}
	return input.Reference, nil
}

func (s *databaseStore) StaleSubjects(ctx context.Context, limit int) ([]*core.EnrichmentInput, error) {
	return s.database.GetStaleEnrichmentInputs(ctx, limit)
}

func (s *databaseStore) StoreOutput(ctx context.Context, output *core.EnrichmentOutput) error {
	return s.database.UpsertEnrichmentOutput(ctx, output)
}

func (s *databaseStore) RecordFailure(ctx context.Context, subject string) error {
	return s.database.UpdateEnrichmentAttempt(ctx, subject)
}
