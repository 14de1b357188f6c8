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
	"encoding/base64"
	"encoding/json"
	"sync/atomic"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/restclient"
)

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type commitmentConfig struct {
	Commitment string `json:"commitment"`
	Encoding   string `json:"encoding,omitempty"`
}

type accountInfo struct {
	Data       []string `json:"data"`
	Owner      string   `json:"owner"`
	Lamports   uint64   `json:"lamports"`
	Executable bool     `json:"executable"`
}

type accountInfoResult struct {
	Value *accountInfo `json:"value"`
}

var rpcID int64

func (s *Solana) invokeRPC(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	req := &rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddInt64(&rpcID, 1),
		Method:  method,
		Params:  params,
	}
	var rpcRes rpcResponse
	res, err := s.rpc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&rpcRes).
		SetError(&rpcRes).
		Post("")
	if err != nil || !res.IsSuccess() {
		return restclient.WrapRestErr(ctx, res, err, i18n.MsgLedgerConnectorError)
	}
	if rpcRes.Error != nil {
		return i18n.NewError(ctx, i18n.MsgLedgerRPCReturnedError, method, rpcRes.Error.Code, rpcRes.Error.Message)
	}
	if err := json.Unmarshal(rpcRes.Result, result); err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgLedgerRPCError, method, err)
	}
	return nil
}

func (s *Solana) CurrentFinalizedSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := s.invokeRPC(ctx, "getSlot", &slot, &commitmentConfig{Commitment: s.commitment})
	return slot, err
}

func (s *Solana) ReadAccount(ctx context.Context, address string) ([]byte, error) {
	var result accountInfoResult
	err := s.invokeRPC(ctx, "getAccountInfo", &result, address, &commitmentConfig{Commitment: s.commitment, Encoding: "base64"})
	if err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}
	if result.Value.Owner != s.programID {
		log.L(ctx).Warnf("Account %s is owned by %s, not the registry program", address, result.Value.Owner)
		return nil, nil
	}
	if len(result.Value.Data) < 1 {
		return nil, i18n.NewError(ctx, i18n.MsgLedgerBadAccountData, address, "no data")
	}
	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgLedgerBadAccountData, address, err)
	}
	return data, nil
}
