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
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/pkg/core"
)

const (
	enrichmentInputsTable  = "enrichment_inputs"
	enrichmentOutputsTable = "enrichment_outputs"
)

var (
	enrichmentInputColumns = []string{
		"subject",
		"reference",
		"updated_slot",
		"updated",
	}
	enrichmentOutputColumns = []string{
		"subject",
		"reference",
		"content_hash",
		"document",
		"fetched",
	}
)

func (s *SQLCommon) enrichmentInputResult(ctx context.Context, row *sql.Rows) (*core.EnrichmentInput, error) {
	var input core.EnrichmentInput
	err := row.Scan(
		&input.Subject,
		&input.Reference,
		&input.UpdatedSlot,
		&input.Updated,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, enrichmentInputsTable)
	}
	return &input, nil
}

func (s *SQLCommon) GetEnrichmentInput(ctx context.Context, subject string) (*core.EnrichmentInput, error) {
	rows, err := s.query(ctx, sq.Select(enrichmentInputColumns...).
		From(enrichmentInputsTable).
		Where(sq.Eq{"subject": subject}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Enrichment input '%s' not found", subject)
		return nil, nil
	}
	return s.enrichmentInputResult(ctx, rows)
}

func (s *SQLCommon) UpsertEnrichmentInput(ctx context.Context, input *core.EnrichmentInput) (changed bool, err error) {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return false, err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	existing, err := s.GetEnrichmentInput(ctx, input.Subject)
	if err != nil {
		return false, err
	}

	input.Updated = core.Now()
	switch {
	case existing == nil:
		_, err = s.insertTx(ctx, tx, sq.Insert(enrichmentInputsTable).
			Columns(enrichmentInputColumns...).
			Values(input.Subject, input.Reference, input.UpdatedSlot, input.Updated),
			nil,
		)
		changed = true
	case existing.UpdatedSlot > input.UpdatedSlot:
		log.L(ctx).Debugf("Enrichment input '%s' already set at slot %d (after %d)", input.Subject, existing.UpdatedSlot, input.UpdatedSlot)
	case existing.Reference != input.Reference || existing.UpdatedSlot != input.UpdatedSlot:
		_, err = s.updateTx(ctx, tx, sq.Update(enrichmentInputsTable).
			Set("reference", input.Reference).
			Set("updated_slot", input.UpdatedSlot).
			Set("updated", input.Updated).
			Where(sq.Eq{"subject": input.Subject}),
			nil,
		)
		changed = existing.Reference != input.Reference
	}
	if err != nil {
		return false, err
	}

	return changed, s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) UpsertEnrichmentOutput(ctx context.Context, output *core.EnrichmentOutput) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	existing, err := s.GetEnrichmentOutput(ctx, output.Subject)
	if err != nil {
		return err
	}

	if output.Fetched == nil {
		output.Fetched = core.Now()
	}
	if existing == nil {
		_, err = s.insertTx(ctx, tx, sq.Insert(enrichmentOutputsTable).
			Columns(enrichmentOutputColumns...).
			Values(output.Subject, output.Reference, output.ContentHash, output.Document, output.Fetched),
			nil,
		)
	} else {
		_, err = s.updateTx(ctx, tx, sq.Update(enrichmentOutputsTable).
			Set("reference", output.Reference).
			Set("content_hash", output.ContentHash).
			Set("document", output.Document).
			Set("fetched", output.Fetched).
			Where(sq.Eq{"subject": output.Subject}),
			nil,
		)
	}
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) GetEnrichmentOutput(ctx context.Context, subject string) (*core.EnrichmentOutput, error) {
	rows, err := s.query(ctx, sq.Select(enrichmentOutputColumns...).
		From(enrichmentOutputsTable).
		Where(sq.Eq{"subject": subject}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		log.L(ctx).Debugf("Enrichment output '%s' not found", subject)
		return nil, nil
	}
	var output core.EnrichmentOutput
	var document sql.NullString
	err = rows.Scan(
		&output.Subject,
		&output.Reference,
		&output.ContentHash,
		&document,
		&output.Fetched,
	)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgDBReadErr, enrichmentOutputsTable)
	}
	if document.Valid {
		output.Document = core.JSONAny(document.String)
	}
	return &output, nil
}

func (s *SQLCommon) UpdateEnrichmentAttempt(ctx context.Context, subject string) error {
	ctx, tx, autoCommit, err := s.beginOrUseTx(ctx)
	if err != nil {
		return err
	}
	defer s.rollbackTx(ctx, tx, autoCommit)

	_, err = s.updateTx(ctx, tx, sq.Update(enrichmentInputsTable).
		Set("last_attempt", core.Now()).
		Where(sq.Eq{"subject": subject}),
		nil,
	)
	if err != nil {
		return err
	}

	return s.commitTx(ctx, tx, autoCommit)
}

func (s *SQLCommon) GetStaleEnrichmentInputs(ctx context.Context, limit int) ([]*core.EnrichmentInput, error) {
	rows, err := s.query(ctx, sq.Select("i.subject", "i.reference", "i.updated_slot", "i.updated").
		From(enrichmentInputsTable+" i").
		LeftJoin(enrichmentOutputsTable+" o ON o.subject = i.subject").
		Where("(o.subject IS NULL OR o.reference <> i.reference)").
		OrderBy("i.last_attempt", "i.updated").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inputs := []*core.EnrichmentInput{}
	for rows.Next() {
		input, err := s.enrichmentInputResult(ctx, rows)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
