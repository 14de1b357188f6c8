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

package verifier

import (
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/config"
)

const (
	minInterval       = 5 * time.Second
	maxBatchSize      = 1000
	maxSafetyMargin   = 10000
	maxRetriesLimit   = 100
	maxRecoveryCycles = 10000
)

// Config is validated once at startup. Out of range values are an error, never clamped.
type Config struct {
	Enabled           bool
	Interval          time.Duration
	BatchSize         int
	SafetyMarginSlots uint64
	MaxRetries        int
	RecoveryCycles    int64
	RecoveryBatchSize int
	RPCTimeout        time.Duration
}

func LoadConfig(ctx context.Context) (conf *Config, err error) {
	conf = &Config{
		Enabled: config.GetBool(config.VerifyEnabled),
	}
	if conf.Interval, err = config.DurationAtLeast(ctx, config.VerifyInterval, minInterval); err != nil {
		return nil, err
	}
	if conf.BatchSize, err = config.IntInRange(ctx, config.VerifyBatchSize, 1, maxBatchSize); err != nil {
		return nil, err
	}
	margin, err := config.Int64InRange(ctx, config.VerifySafetyMarginSlots, 0, maxSafetyMargin)
	if err != nil {
		return nil, err
	}
	conf.SafetyMarginSlots = uint64(margin)
	if conf.MaxRetries, err = config.IntInRange(ctx, config.VerifyMaxRetries, 1, maxRetriesLimit); err != nil {
		return nil, err
	}
	if conf.RecoveryCycles, err = config.Int64InRange(ctx, config.VerifyRecoveryCycles, 0, maxRecoveryCycles); err != nil {
		return nil, err
	}
	if conf.RecoveryBatchSize, err = config.IntInRange(ctx, config.VerifyRecoveryBatchSize, 1, maxBatchSize); err != nil {
		return nil, err
	}
	if conf.RPCTimeout, err = config.DurationAtLeast(ctx, config.VerifyRPCTimeout, time.Millisecond); err != nil {
		return nil, err
	}
	return conf, nil
}
