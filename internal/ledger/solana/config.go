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
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/restclient"
	"github.com/kaleido-io/agentledger/internal/wsclient"
)

const (
	defaultCommitment         = "finalized"
	defaultAgentSeed          = "agent"
	defaultAddressCacheSize   = 1000
	defaultSubscriptionBuffer = 100
	defaultEventsPath         = "/events"
	defaultWSPath             = "/ws"
)

const (
	// SolanaConfigRPC is the sub-prefix holding the JSON-RPC endpoint of a validator
	SolanaConfigRPC = "rpc"
	// SolanaConfigConnector is the sub-prefix holding the event connector, which serves decoded program logs over REST and websocket
	SolanaConfigConnector = "connector"
	// SolanaConfigConnectorEventsPath is the REST path of historical events on the connector
	SolanaConfigConnectorEventsPath = "eventsPath"
	// SolanaConfigProgramID is the base58 address of the registry program
	SolanaConfigProgramID = "programId"
	// SolanaConfigCommitment is the commitment level used for slot and account queries
	SolanaConfigCommitment = "commitment"
	// SolanaConfigAgentSeed is the static seed prefix of agent account addresses
	SolanaConfigAgentSeed = "agentSeed"
	// SolanaConfigAddressCacheSize bounds the derived address cache
	SolanaConfigAddressCacheSize = "addressCacheSize"
	// SolanaConfigSubscriptionBuffer is the channel depth of live subscriptions
	SolanaConfigSubscriptionBuffer = "subscriptionBuffer"
)

func (s *Solana) InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(SolanaConfigProgramID)
	prefix.AddKnownKey(SolanaConfigCommitment, defaultCommitment)
	prefix.AddKnownKey(SolanaConfigAgentSeed, defaultAgentSeed)
	prefix.AddKnownKey(SolanaConfigAddressCacheSize, defaultAddressCacheSize)
	prefix.AddKnownKey(SolanaConfigSubscriptionBuffer, defaultSubscriptionBuffer)
	restclient.InitPrefix(prefix.SubPrefix(SolanaConfigRPC))
	connector := prefix.SubPrefix(SolanaConfigConnector)
	wsclient.InitPrefix(connector)
	connector.AddKnownKey(SolanaConfigConnectorEventsPath, defaultEventsPath)
	connector.AddKnownKey(wsclient.WSConfigKeyPath, defaultWSPath)
}
