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

package retry

import (
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
)

const (
	DefaultFactor = 2.0
)

// Retry is a concurrency safe structure that configures a simple backoff retry mechanism
type Retry struct {
	InitialDelay time.Duration
	MaximumDelay time.Duration
	Factor       float64
}

// NextDelay calculates the next delay from the current one, honoring the factor and maximum
func (r *Retry) NextDelay(delay time.Duration) time.Duration {
	factor := r.Factor
	if factor < 1 { // Can't reduce
		factor = DefaultFactor
	}
	delay = time.Duration(float64(delay) * factor)
	if r.MaximumDelay > 0 && delay > r.MaximumDelay {
		delay = r.MaximumDelay
	}
	return delay
}

// Do invokes the function until the function returns false, or the context is cancelled.
// This simple interface doesn't pass through errors or return values, on the basis
// you'll be using a closure for that.
func (r *Retry) Do(ctx context.Context, action string, f func(attempt int) (retry bool, err error)) error {
	attempt := 0
	delay := r.InitialDelay
	for {
		attempt++
		retry, err := f(attempt)
		if !retry {
			return err
		}
		if err != nil {
			log.L(ctx).Errorf("%s attempt %d failed: %s", action, attempt, err)
		}

		// Limit the delay based on the context deadline and maximum delay
		if r.MaximumDelay > 0 && delay > r.MaximumDelay {
			delay = r.MaximumDelay
		}
		if deadline, dok := ctx.Deadline(); dok {
			if timeleft := time.Until(deadline); timeleft < delay {
				delay = timeleft
			}
		}

		select {
		case <-ctx.Done():
			return i18n.NewError(ctx, i18n.MsgContextCanceled)
		case <-time.After(delay):
		}
		delay = r.NextDelay(delay)
	}
}
