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

package wsclient

import (
	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/restclient"
)

const (
	defaultInitialConnectAttempts = 5
	defaultBufferSize             = "16Kb"
	defaultReconnectInitDelay     = "100ms"
	defaultReconnectMaxDelay      = "30s"
)

const (
	WSConfigKeyWriteBufferSize        = "ws.writeBufferSize"
	WSConfigKeyReadBufferSize         = "ws.readBufferSize"
	WSConfigKeyInitialConnectAttempts = "ws.initialConnectAttempts"
	WSConfigKeyPath                   = "ws.path"
	WSConfigKeyReconnectInitDelay     = "ws.reconnect.initDelay"
	WSConfigKeyReconnectMaxDelay      = "ws.reconnect.maxDelay"
)

// InitPrefix ensures the prefix is initialized for HTTP too, as WS and HTTP
// share the same tree of configuration (and all the HTTP options apply to the initial upgrade)
func InitPrefix(prefix config.Prefix) {
	restclient.InitPrefix(prefix)
	prefix.AddKnownKey(WSConfigKeyWriteBufferSize, defaultBufferSize)
	prefix.AddKnownKey(WSConfigKeyReadBufferSize, defaultBufferSize)
	prefix.AddKnownKey(WSConfigKeyInitialConnectAttempts, defaultInitialConnectAttempts)
	prefix.AddKnownKey(WSConfigKeyPath)
	prefix.AddKnownKey(WSConfigKeyReconnectInitDelay, defaultReconnectInitDelay)
	prefix.AddKnownKey(WSConfigKeyReconnectMaxDelay, defaultReconnectMaxDelay)
}

// GenerateConfigFromPrefix builds the websocket config from the HTTP url of the prefix, switching the scheme
func GenerateConfigFromPrefix(prefix config.Prefix) *WSConfig {
	return &WSConfig{
		HTTPURL:                prefix.GetString(restclient.HTTPConfigURL),
		WSKeyPath:              prefix.GetString(WSConfigKeyPath),
		ReadBufferSize:         int(prefix.GetByteSize(WSConfigKeyReadBufferSize)),
		WriteBufferSize:        int(prefix.GetByteSize(WSConfigKeyWriteBufferSize)),
		InitialDelay:           prefix.GetDuration(WSConfigKeyReconnectInitDelay),
		MaximumDelay:           prefix.GetDuration(WSConfigKeyReconnectMaxDelay),
		InitialConnectAttempts: prefix.GetInt(WSConfigKeyInitialConnectAttempts),
		AuthUsername:           prefix.GetString(restclient.HTTPConfigAuthUsername),
		AuthPassword:           prefix.GetString(restclient.HTTPConfigAuthPassword),
		HTTPHeaders:            prefix.GetObject(restclient.HTTPConfigHeaders),
	}
}
