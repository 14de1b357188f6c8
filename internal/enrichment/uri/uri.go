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

package uri

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-resty/resty/v2"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/restclient"
	"github.com/kaleido-io/agentledger/pkg/core"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xeipuuv/gojsonschema"
)

// Fetcher resolves http(s) references to JSON documents. The digest covers the bytes
// as served, while the stored document has its string values stripped of markup.
type Fetcher struct {
	client  *resty.Client
	maxSize int64
	schema  *gojsonschema.Schema
	policy  *bluemonday.Policy
}

func NewFetcher(ctx context.Context, prefix config.Prefix) (*Fetcher, error) {
	f := &Fetcher{
		client:  restclient.New(ctx, prefix),
		maxSize: prefix.GetByteSize(FetcherConfigMaxDocumentSize),
		policy:  bluemonday.StrictPolicy(),
	}
	if f.maxSize <= 0 {
		return nil, i18n.NewError(ctx, i18n.MsgConfigValueBelowFloor, prefix.Resolve(FetcherConfigMaxDocumentSize), prefix.GetString(FetcherConfigMaxDocumentSize), "1b")
	}
	if schema := strings.TrimSpace(prefix.GetString(FetcherConfigSchema)); schema != "" {
		var loader gojsonschema.JSONLoader
		if strings.HasPrefix(schema, "{") {
			loader = gojsonschema.NewStringLoader(schema)
		} else {
			loader = gojsonschema.NewReferenceLoader(schema)
		}
		s, err := gojsonschema.NewSchema(loader)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, i18n.MsgEnrichmentSchemaLoadFailed)
		}
		f.schema = s
	}
	log.L(ctx).Debugf("Enrichment fetcher maxDocumentSize=%s schema=%t", units.HumanSize(float64(f.maxSize)), f.schema != nil)
	return f, nil
}

func (f *Fetcher) Fetch(ctx context.Context, subject, reference string) (*core.EnrichmentOutput, error) {
	u, err := url.Parse(reference)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.NewError(ctx, i18n.MsgEnrichmentUnsupportedScheme, reference)
	}

	raw, err := f.download(ctx, reference)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgEnrichmentFetchFailed, reference, err)
	}
	if f.schema != nil && strings.HasPrefix(subject, core.AgentSubject("")) {
		if err := f.validate(ctx, reference, raw); err != nil {
			return nil, err
		}
	}

	return &core.EnrichmentOutput{
		Subject:     subject,
		Reference:   reference,
		ContentHash: core.Keccak256(raw),
		Document:    core.JSONAnyFrom(f.sanitize(doc)),
		Fetched:     core.Now(),
	}, nil
}

func (f *Fetcher) download(ctx context.Context, reference string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetDoNotParseResponse(true).
		Get(reference)
	if err != nil || !res.IsSuccess() {
		return nil, restclient.WrapRestErr(ctx, res, err, i18n.MsgEnrichmentFetchFailed)
	}
	restclient.OnAfterResponse(f.client, res)
	body := res.RawBody()
	defer body.Close()

	// Read one byte beyond the limit to detect oversize documents
	raw, err := io.ReadAll(io.LimitReader(body, f.maxSize+1))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgEnrichmentFetchFailed, reference, err)
	}
	if int64(len(raw)) > f.maxSize {
		return nil, i18n.NewError(ctx, i18n.MsgEnrichmentTooLarge, reference, units.HumanSize(float64(f.maxSize)))
	}
	return raw, nil
}

func (f *Fetcher) validate(ctx context.Context, reference string, raw []byte) error {
	res, err := f.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgEnrichmentSchemaInvalid, reference, err)
	}
	if !res.Valid() {
		errStrings := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			errStrings[i] = e.String()
		}
		return i18n.NewError(ctx, i18n.MsgEnrichmentSchemaInvalid, reference, strings.Join(errStrings, ","))
	}
	return nil
}

func (f *Fetcher) sanitize(v interface{}) interface{} {
	switch tv := v.(type) {
	case string:
		return strings.ReplaceAll(f.policy.Sanitize(tv), "&#39;", "'")
	case map[string]interface{}:
		for k, e := range tv {
			tv[k] = f.sanitize(e)
		}
		return tv
	case []interface{}:
		for i, e := range tv {
			tv[i] = f.sanitize(e)
		}
		return tv
	default:
		return v
	}
}
