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
	"fmt"
	"sort"
	"strings"
)

// OrderingKey totally orders ledger events regardless of the channel that delivered them.
// TxIndex and LogOrdinal are unknown on some delivery paths, and sort after any known value.
type OrderingKey struct {
	Slot       uint64 `json:"slot"`
	Signature  string `json:"signature"`
	TxIndex    *int64 `json:"txIndex,omitempty"`
	LogOrdinal *int64 `json:"logOrdinal,omitempty"`
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOptional(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// Compare returns -1, 0 or 1 ordering by slot, signature, txIndex then logOrdinal
func (ok *OrderingKey) Compare(other *OrderingKey) int {
	if c := compareUint(ok.Slot, other.Slot); c != 0 {
		return c
	}
	if c := strings.Compare(ok.Signature, other.Signature); c != 0 {
		return c
	}
	if c := compareOptional(ok.TxIndex, other.TxIndex); c != 0 {
		return c
	}
	return compareOptional(ok.LogOrdinal, other.LogOrdinal)
}

func (ok *OrderingKey) Less(other *OrderingKey) bool {
	return ok.Compare(other) < 0
}

func optString(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func (ok *OrderingKey) String() string {
	return fmt.Sprintf("%d/%s/%s/%s", ok.Slot, ok.Signature, optString(ok.TxIndex), optString(ok.LogOrdinal))
}

// CompareRecords is the total order used when ranking records of one scope: ordering key,
// then natural key, then row sequence for records that share an identical ordering key.
func CompareRecords(a, b *Record) int {
	if c := a.OrderingKey.Compare(&b.OrderingKey); c != 0 {
		return c
	}
	if c := strings.Compare(a.NaturalKey, b.NaturalKey); c != 0 {
		return c
	}
	switch {
	case a.Sequence < b.Sequence:
		return -1
	case a.Sequence > b.Sequence:
		return 1
	}
	return 0
}

// SortRecords sorts in place into ranking order
func SortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return CompareRecords(records[i], records[j]) < 0
	})
}

func Int64Ptr(v int64) *int64 {
	return &v
}
