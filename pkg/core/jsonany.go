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
	"context"
	"encoding/json"

	"github.com/kaleido-io/agentledger/internal/i18n"
)

const nullJSON = "null"

// JSONAny holds a JSON document verbatim, compacted, for storage in a text column
type JSONAny string

func JSONAnyFrom(v interface{}) JSONAny {
	b, err := json.Marshal(v)
	if err != nil {
		return nullJSON
	}
	return JSONAny(b)
}

func (h *JSONAny) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		*h = nullJSON
		return nil
	}
	var flattener json.RawMessage
	if err := json.Unmarshal(b, &flattener); err != nil {
		return err
	}
	standardized, err := json.Marshal(flattener)
	if err == nil {
		*h = JSONAny(standardized)
	}
	return err
}

func (h JSONAny) MarshalJSON() ([]byte, error) {
	if h == "" {
		h = nullJSON
	}
	return []byte(h), nil
}

// Unmarshal decodes the held document into the target
func (h JSONAny) Unmarshal(ctx context.Context, v interface{}) error {
	if err := json.Unmarshal([]byte(h), v); err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgJSONDecodeFailed)
	}
	return nil
}

// Scan implements sql.Scanner
func (h *JSONAny) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*h = nullJSON
		return nil
	case []byte:
		return h.UnmarshalJSON(src)
	case string:
		return h.UnmarshalJSON([]byte(src))
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, h)
	}
}
