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

package solana

import (
	"context"
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/akamensky/base58"
	"github.com/kaleido-io/agentledger/internal/i18n"
)

const (
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

func decodeAddress(ctx context.Context, address string) ([]byte, error) {
	b, err := base58.Decode(address)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgInvalidBase58, address)
	}
	if len(b) != 32 {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidAddressLength, address, len(b))
	}
	return b, nil
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// createProgramAddress hashes the seeds with the program ID. The result is only
// a valid program address when it is off the ed25519 curve, so has no private key.
func createProgramAddress(ctx context.Context, seeds [][]byte, programID []byte) ([]byte, bool, error) {
	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, false, i18n.NewError(ctx, i18n.MsgSeedTooLong, i, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID)
	h.Write([]byte(pdaMarker))
	address := h.Sum(nil)
	return address, !isOnCurve(address), nil
}

// findProgramAddress searches bump seeds from 255 down, returning the first viable address
func findProgramAddress(ctx context.Context, seeds [][]byte, programID []byte) (string, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		withBump := append(append([][]byte{}, seeds...), []byte{byte(bump)})
		address, ok, err := createProgramAddress(ctx, withBump, programID)
		if err != nil {
			return "", 0, err
		}
		if ok {
			return base58.Encode(address), uint8(bump), nil
		}
	}
	return "", 0, i18n.NewError(ctx, i18n.MsgNoViableProgramAddress)
}
