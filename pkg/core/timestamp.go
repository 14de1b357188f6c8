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

package core

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"time"

	"github.com/kaleido-io/agentledger/internal/i18n"
)

// Timestamp is serialized to JSON in RFC3339 nanosecond UTC time, and persisted
// as a nanosecond resolution unix timestamp in the database.
type Timestamp time.Time

func Now() *Timestamp {
	t := Timestamp(time.Now().UTC())
	return &t
}

func UnixTime(unixTime int64) *Timestamp {
	if unixTime < 1e10 {
		unixTime *= 1e3 // secs to millis
	}
	if unixTime < 1e15 {
		unixTime *= 1e6 // millis to nanos
	}
	t := Timestamp(time.Unix(0, unixTime).UTC())
	return &t
}

func ParseTimestamp(str string) (*Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		unixTime, perr := strconv.ParseInt(str, 10, 64)
		if perr != nil {
			return nil, i18n.NewError(context.Background(), i18n.MsgTimeParseFail, str)
		}
		return UnixTime(unixTime), nil
	}
	ts := Timestamp(t)
	return &ts, nil
}

func (ts *Timestamp) Time() time.Time {
	if ts == nil {
		return time.Time{}
	}
	return time.Time(*ts)
}

func (ts *Timestamp) UnixNano() int64 {
	if ts == nil {
		return 0
	}
	return time.Time(*ts).UnixNano()
}

func (ts *Timestamp) MarshalJSON() ([]byte, error) {
	if ts == nil || time.Time(*ts).IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalText(b []byte) error {
	t, err := ParseTimestamp(string(b))
	if err != nil {
		return err
	}
	*ts = *t
	return nil
}

// Scan implements sql.Scanner
func (ts *Timestamp) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		*ts = Timestamp{}
		return nil
	case int64:
		if src == 0 {
			*ts = Timestamp{}
			return nil
		}
		*ts = *UnixTime(src)
		return nil
	case string:
		t, err := ParseTimestamp(src)
		if err != nil {
			return err
		}
		*ts = *t
		return nil
	default:
		return i18n.NewError(context.Background(), i18n.MsgScanFailed, src, ts)
	}
}

// Value implements sql.Valuer
func (ts *Timestamp) Value() (driver.Value, error) {
	if ts == nil || time.Time(*ts).IsZero() {
		return nil, nil
	}
	return ts.UnixNano(), nil
}

func (ts *Timestamp) String() string {
	if ts == nil || time.Time(*ts).IsZero() {
		return ""
	}
	return time.Time(*ts).UTC().Format(time.RFC3339Nano)
}
