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
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"strings"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"golang.org/x/crypto/sha3"
)

// Bytes32 is a holder of a hash, used for content hashes and running digests
type Bytes32 [32]byte

// ZeroDigest is the seed of every hash chain
var ZeroDigest = Bytes32{}

func NewRandB32() *Bytes32 {
	var b Bytes32
	_, _ = rand.Read(b[0:32])
	return &b
}

// Keccak256 hashes the concatenation of the supplied parts
func Keccak256(parts ...[]byte) *Bytes32 {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var b32 Bytes32
	copy(b32[:], h.Sum(make([]byte, 0, 32)))
	return &b32
}

func (b32 Bytes32) MarshalText() ([]byte, error) {
	hexstr := make([]byte, 64)
	hex.Encode(hexstr, b32[0:32])
	return hexstr, nil
}

func (b32 *Bytes32) UnmarshalText(b []byte) error {
	// We don't use the 0x prefix internally, but we will strip it if supplied
	s := strings.TrimPrefix(string(b), "0x")
	if len(s) != 64 {
		return i18n.NewError(context.Background(), i18n.MsgInvalidWrongLenB32)
	}
	_, err := hex.Decode(b32[0:32], []byte(s))
	if err != nil {
		return i18n.WrapError(context.Background(), err, i18n.MsgInvalidHex)
	}
	return nil
}

func ParseBytes32(ctx context.Context, hexStr string) (*Bytes32, error) {
	var b32 Bytes32
	if err := b32.UnmarshalText([]byte(hexStr)); err != nil {
		return nil, err
	}
	return &b32, nil
}

// MustParseBytes32 is for constants and tests
func MustParseBytes32(hexStr string) *Bytes32 {
	b32, err := ParseBytes32(context.Background(), hexStr)
	if err != nil {
		panic(err)
	}
	return b32
}

// Scan implements sql.Scanner
func (b32 *Bytes32) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		return nil

	case string:
		if src == "" {
			return nil
		}
		return b32.UnmarshalText([]byte(src))

	case []byte:
		if len(src) == 0 {
			return nil
		}
		if len(src) != 32 {
			return b32.UnmarshalText(src)
		}
		copy((*b32)[:], src)
		return nil

	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, b32)
	}
}

// Value implements sql.Valuer
func (b32 *Bytes32) Value() (driver.Value, error) {
	if b32 == nil {
		return nil, nil
	}
	return b32.String(), nil
}

func (b32 *Bytes32) String() string {
	if b32 == nil {
		return ""
	}
	return hex.EncodeToString(b32[0:32])
}

func (b32 *Bytes32) IsZero() bool {
	return b32 == nil || *b32 == ZeroDigest
}

func (b32 *Bytes32) Equals(b2 *Bytes32) bool {
	switch {
	case b32 == nil && b2 == nil:
		return true
	case b32 == nil || b2 == nil:
		return false
	default:
		return *b32 == *b2
	}
}
