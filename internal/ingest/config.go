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

package ingest

import (
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/config"
	"github.com/kaleido-io/agentledger/internal/retry"
)

const (
	minPollInterval = 10 * time.Millisecond
	maxBatchSize    = 10000
)

type Config struct {
	Enabled           bool
	SubscriberEnabled bool
	PollInterval      time.Duration
	BatchSize         int
	Retry             retry.Retry
}

func LoadConfig(ctx context.Context) (conf *Config, err error) {
	conf = &Config{
		Enabled:           config.GetBool(config.IngestEnabled),
		SubscriberEnabled: config.GetBool(config.IngestSubscriberEnabled),
		Retry: retry.Retry{
			InitialDelay: config.GetDuration(config.IngestRetryInitDelay),
			MaximumDelay: config.GetDuration(config.IngestRetryMaxDelay),
			Factor:       config.GetFloat64(config.IngestRetryFactor),
		},
	}
	if conf.PollInterval, err = config.DurationAtLeast(ctx, config.IngestPollInterval, minPollInterval); err != nil {
		return nil, err
	}
	if conf.BatchSize, err = config.IntInRange(ctx, config.IngestBatchSize, 1, maxBatchSize); err != nil {
		return nil, err
	}
	return conf, nil
}
