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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/akamensky/base58"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/pkg/ledger"
)

const (
	discriminatorLen = 8
	pubkeyLen        = 32
	chainStateLen    = 32 + 8
	agentAccountLen  = discriminatorLen + 2*pubkeyLen + 3*chainStateLen
)

// agentAccountDiscriminator is the anchor account discriminator of AgentAccount
var agentAccountDiscriminator = func() []byte {
	h := sha256.Sum256([]byte("account:AgentAccount"))
	return h[:discriminatorLen]
}()

func parseChainState(data []byte) ledger.ChainState {
	var cs ledger.ChainState
	copy(cs.Digest[:], data[0:32])
	cs.Count = int64(binary.LittleEndian.Uint64(data[32:40]))
	return cs
}

func (s *Solana) ParseAgentAccount(ctx context.Context, data []byte) (*ledger.AgentAccount, error) {
	if len(data) < agentAccountLen {
		return nil, i18n.NewError(ctx, i18n.MsgLedgerAccountTooShort, len(data), agentAccountLen)
	}
	if !bytes.Equal(data[0:discriminatorLen], agentAccountDiscriminator) {
		return nil, i18n.NewError(ctx, i18n.MsgLedgerBadAccountData, "agent", "discriminator mismatch")
	}
	offset := discriminatorLen
	account := &ledger.AgentAccount{
		Asset: base58.Encode(data[offset : offset+pubkeyLen]),
		Owner: base58.Encode(data[offset+pubkeyLen : offset+2*pubkeyLen]),
	}
	offset += 2 * pubkeyLen
	account.Feedback = parseChainState(data[offset : offset+chainStateLen])
	offset += chainStateLen
	account.Response = parseChainState(data[offset : offset+chainStateLen])
	offset += chainStateLen
	account.Revocation = parseChainState(data[offset : offset+chainStateLen])
	if account.Feedback.Count < 0 || account.Response.Count < 0 || account.Revocation.Count < 0 {
		return nil, i18n.NewError(ctx, i18n.MsgLedgerBadAccountData, account.Asset, "chain count overflow")
	}
	return account, nil
}
