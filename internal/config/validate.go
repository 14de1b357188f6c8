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

package config

import (
	"context"
	"time"

	"github.com/kaleido-io/agentledger/internal/i18n"
)

// IntInRange reads an integer key, returning a startup error when it falls outside [min,max]
func IntInRange(ctx context.Context, key RootKey, min, max int) (int, error) {
	v := GetInt(key)
	if v < min || v > max {
		return v, i18n.NewError(ctx, i18n.MsgConfigValueOutOfRange, key, v, min, max)
	}
	return v, nil
}

// Int64InRange is IntInRange for 64bit values such as slot counts
func Int64InRange(ctx context.Context, key RootKey, min, max int64) (int64, error) {
	v := GetInt64(key)
	if v < min || v > max {
		return v, i18n.NewError(ctx, i18n.MsgConfigValueOutOfRange, key, v, min, max)
	}
	return v, nil
}

// DurationAtLeast reads a duration key, returning a startup error when it is below the floor
func DurationAtLeast(ctx context.Context, key RootKey, floor time.Duration) (time.Duration, error) {
	v := GetDuration(key)
	if v < floor {
		return v, i18n.NewError(ctx, i18n.MsgConfigValueBelowFloor, key, v.String(), floor.String())
	}
	return v, nil
}
