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
	"strconv"
	"sync"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/restclient"
	"github.com/kaleido-io/agentledger/internal/wsclient"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// Solana reads the registry program through a validator's JSON-RPC endpoint for
// slots and accounts, and an event connector for decoded program logs.
type Solana struct {
	ctx                context.Context
	rpc                *resty.Client
	connector          *resty.Client
	wsConf             *wsclient.WSConfig
	eventsPath         string
	programID          string
	programKey         []byte
	commitment         string
	agentSeed          []byte
	subscriptionBuffer int
	addresses          *lru.Cache

	subsMux       sync.Mutex
	subscriptions map[*wsclient.WSClient]bool
}

func (s *Solana) Name() string {
	return "solana"
}

func (s *Solana) Init(ctx context.Context, prefix config.Prefix) (err error) {
	s.ctx = log.WithLogField(ctx, "proto", "solana")

	rpcConf := prefix.SubPrefix(SolanaConfigRPC)
	if rpcConf.GetString(restclient.HTTPConfigURL) == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, "url", "ledger.solana.rpc")
	}
	connectorConf := prefix.SubPrefix(SolanaConfigConnector)
	if connectorConf.GetString(restclient.HTTPConfigURL) == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, "url", "ledger.solana.connector")
	}
	s.programID = prefix.GetString(SolanaConfigProgramID)
	if s.programID == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, "programId", "ledger.solana")
	}
	if s.programKey, err = decodeAddress(ctx, s.programID); err != nil {
		return err
	}
	if s.addresses, err = lru.New(prefix.GetInt(SolanaConfigAddressCacheSize)); err != nil {
		return err
	}

	s.commitment = prefix.GetString(SolanaConfigCommitment)
	s.agentSeed = []byte(prefix.GetString(SolanaConfigAgentSeed))
	s.subscriptionBuffer = prefix.GetInt(SolanaConfigSubscriptionBuffer)
	s.eventsPath = connectorConf.GetString(SolanaConfigConnectorEventsPath)
	s.rpc = restclient.New(s.ctx, rpcConf)
	s.connector = restclient.New(s.ctx, connectorConf)
	s.wsConf = wsclient.GenerateConfigFromPrefix(connectorConf)
	s.subscriptions = make(map[*wsclient.WSClient]bool)
	log.L(s.ctx).Infof("Solana registry program %s (commitment=%s)", s.programID, s.commitment)
	return nil
}

func (s *Solana) ProgramID() string {
	return s.programID
}

func (s *Solana) DeriveAgentAddress(ctx context.Context, asset string) (string, error) {
	if cached, ok := s.addresses.Get(asset); ok {
		return cached.(string), nil
	}
	assetKey, err := decodeAddress(ctx, asset)
	if err != nil {
		return "", err
	}
	address, _, err := findProgramAddress(ctx, [][]byte{s.agentSeed, assetKey}, s.programKey)
	if err != nil {
		return "", err
	}
	s.addresses.Add(asset, address)
	return address, nil
}

func (s *Solana) FetchLogsSince(ctx context.Context, cursor *core.OrderingKey, limit int) ([]*core.LedgerEvent, error) {
	req := s.connector.R().
		SetContext(ctx).
		SetQueryParam("programId", s.programID).
		SetQueryParam("limit", strconv.Itoa(limit))
	if cursor != nil {
		req.SetQueryParam("fromSlot", strconv.FormatUint(cursor.Slot, 10))
		if cursor.Signature != "" {
			req.SetQueryParam("afterSignature", cursor.Signature)
		}
	}
	var events []*connectorEvent
	res, err := req.SetResult(&events).Get(s.eventsPath)
	if err != nil || !res.IsSuccess() {
		return nil, restclient.WrapRestErr(ctx, res, err, i18n.MsgLedgerConnectorError)
	}
	ledgerEvents := make([]*core.LedgerEvent, 0, len(events))
	for _, ce := range events {
		e := s.toLedgerEvent(ctx, ce, core.ChannelPoller)
		if cursor != nil && !cursor.Less(&e.OrderingKey) {
			continue
		}
		ledgerEvents = append(ledgerEvents, e)
	}
	return ledgerEvents, nil
}

func (s *Solana) Close() {
	s.subsMux.Lock()
	defer s.subsMux.Unlock()
	for w := range s.subscriptions {
		w.Close()
	}
}
