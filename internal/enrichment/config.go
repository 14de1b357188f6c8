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

package enrichment

import (
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/config"
)

const (
	maxCapacity          = 100000
	maxWorkers           = 256
	maxRecoveryBatchSize = 1000
)

type Config struct {
	Capacity             int
	Workers              int
	MinInterval          time.Duration
	TaskTimeout          time.Duration
	RecoveryInterval     time.Duration
	RecoveryBatchSize    int
	CapacityWarnInterval time.Duration
}

func LoadConfig(ctx context.Context) (conf *Config, err error) {
	conf = &Config{}
	if conf.Capacity, err = config.IntInRange(ctx, config.EnrichmentCapacity, 1, maxCapacity); err != nil {
		return nil, err
	}
	if conf.Workers, err = config.IntInRange(ctx, config.EnrichmentWorkers, 1, maxWorkers); err != nil {
		return nil, err
	}
	if conf.MinInterval, err = config.DurationAtLeast(ctx, config.EnrichmentMinInterval, 0); err != nil {
		return nil, err
	}
	if conf.TaskTimeout, err = config.DurationAtLeast(ctx, config.EnrichmentTaskTimeout, time.Millisecond); err != nil {
		return nil, err
	}
	if conf.RecoveryInterval, err = config.DurationAtLeast(ctx, config.EnrichmentRecoveryInterval, time.Second); err != nil {
		return nil, err
	}
	if conf.RecoveryBatchSize, err = config.IntInRange(ctx, config.EnrichmentRecoveryBatchSize, 1, maxRecoveryBatchSize); err != nil {
		return nil, err
	}
	if conf.CapacityWarnInterval, err = config.DurationAtLeast(ctx, config.EnrichmentCapacityWarnInterval, 0); err != nil {
		return nil, err
	}
	return conf, nil
}
