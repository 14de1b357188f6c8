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

package ledger

import (
	"context"

	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// Plugin is the interface implemented by each ledger connector
type Plugin interface {
	// Name gets the name of the plugin
	Name() string

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration
	Init(ctx context.Context, prefix config.Prefix) error

	// ProgramID is the address of the registry program whose logs are ingested
	ProgramID() string

	// FetchLogsSince returns up to limit registry events strictly after the cursor, in ordering key order
	FetchLogsSince(ctx context.Context, cursor *core.OrderingKey, limit int) ([]*core.LedgerEvent, error)

	// SubscribeLogs delivers live registry events until the context is cancelled, closing the channel on exit
	SubscribeLogs(ctx context.Context) (<-chan *core.LedgerEvent, error)

	// CurrentFinalizedSlot is the highest slot the ledger reports as finalized
	CurrentFinalizedSlot(ctx context.Context) (uint64, error)

	// DeriveAgentAddress computes the program-derived address of the account of an agent. Pure computation.
	DeriveAgentAddress(ctx context.Context, asset string) (string, error)

	// ReadAccount returns the raw data of an account, or nil with no error if the account does not exist
	ReadAccount(ctx context.Context, address string) ([]byte, error)

	// ParseAgentAccount decodes the raw data of an agent account
	ParseAgentAccount(ctx context.Context, data []byte) (*AgentAccount, error)

	// Close releases connections
	Close()
}

// ChainState is the on-chain tip of one hash chain: the running digest, and how many leaves it folds
type ChainState struct {
	Digest core.Bytes32 `json:"digest"`
	Count  int64        `json:"count"`
}

// AgentAccount is the on-chain state the registry program keeps for an agent
type AgentAccount struct {
	Asset      string     `json:"asset"`
	Owner      string     `json:"owner"`
	Feedback   ChainState `json:"feedback"`
	Response   ChainState `json:"response"`
	Revocation ChainState `json:"revocation"`
}

// Chain returns the chain the account keeps for a scope kind. Agents are not chained on-chain.
func (a *AgentAccount) Chain(kind core.ScopeKind) (*ChainState, bool) {
	switch kind {
	case core.ScopeKindFeedback:
		return &a.Feedback, true
	case core.ScopeKindResponse:
		return &a.Response, true
	case core.ScopeKindRevocation:
		return &a.Revocation, true
	default:
		return nil, false
	}
}
