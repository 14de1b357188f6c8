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
	"database/sql/driver"
	"strings"
)

// Enum is a lower case string value, restricted to a registered set per enum type
type Enum string

var enumValues = map[string][]interface{}{}

func enum(t string, val string) Enum {
	enumValues[t] = append(enumValues[t], val)
	return Enum(val)
}

// EnumValues returns the registered values of an enum type, for validation and docs
func EnumValues(t string) []interface{} {
	return enumValues[t]
}

func (e Enum) String() string {
	return strings.ToLower(string(e))
}

func (e Enum) Equals(e2 Enum) bool {
	return strings.EqualFold(string(e), string(e2))
}

func (e Enum) Value() (driver.Value, error) {
	return e.String(), nil
}

func (e *Enum) UnmarshalText(b []byte) error {
	*e = Enum(strings.ToLower(string(b)))
	return nil
}

// RecordKind is the kind of entity a scoped record projects
type RecordKind = Enum

var (
	RecordKindAgent      = enum("recordkind", "agent")
	RecordKindFeedback   = enum("recordkind", "feedback")
	RecordKindResponse   = enum("recordkind", "response")
	RecordKindRevocation = enum("recordkind", "revocation")
)

// RecordKinds is the verification order used by the verifier
var RecordKinds = []RecordKind{RecordKindAgent, RecordKindFeedback, RecordKindResponse, RecordKindRevocation}

// RecordStatus is the reconciliation lifecycle state of a record
type RecordStatus = Enum

var (
	RecordStatusPending   = enum("recordstatus", "pending")
	RecordStatusFinalized = enum("recordstatus", "finalized")
	RecordStatusOrphaned  = enum("recordstatus", "orphaned")
)

// RecordStatuses lists every status, in lifecycle order
var RecordStatuses = []RecordStatus{RecordStatusPending, RecordStatusFinalized, RecordStatusOrphaned}

// ScopeKind identifies the family of a sequence/hash-chain scope
type ScopeKind = Enum

var (
	ScopeKindAgents     = enum("scopekind", "agents")
	ScopeKindFeedback   = enum("scopekind", "feedback")
	ScopeKindResponse   = enum("scopekind", "response")
	ScopeKindRevocation = enum("scopekind", "revocation")
)

// Channel is the ingestion path that delivered an event
type Channel = Enum

var (
	ChannelPoller     = enum("channel", "poller")
	ChannelSubscriber = enum("channel", "subscriber")
)
