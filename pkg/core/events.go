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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaleido-io/agentledger/internal/i18n"
)

// EventType is the type of a log emitted by the registry program
type EventType = Enum

var (
	EventTypeAgentRegistered  = enum("eventtype", "agentregistered")
	EventTypeAgentURIUpdated  = enum("eventtype", "agenturiupdated")
	EventTypeFeedbackGiven    = enum("eventtype", "feedbackgiven")
	EventTypeResponseAppended = enum("eventtype", "responseappended")
	EventTypeFeedbackRevoked  = enum("eventtype", "feedbackrevoked")
)

// EventPayload is the closed set of decoded registry logs.
// The unexported marker method keeps implementations inside this package.
type EventPayload interface {
	EventType() EventType
	isEventPayload()
}

// AgentRegistered creates an agent identity, owned by an asset account
type AgentRegistered struct {
	Asset       string   `json:"asset"`
	Owner       string   `json:"owner"`
	URI         string   `json:"uri,omitempty"`
	ContentHash *Bytes32 `json:"contentHash,omitempty"`
}

// AgentURIUpdated points an agent at a new registration document
type AgentURIUpdated struct {
	Asset string `json:"asset"`
	URI   string `json:"uri"`
}

// FeedbackGiven is a client's feedback entry against an agent
type FeedbackGiven struct {
	Asset         string   `json:"asset"`
	Client        string   `json:"client"`
	FeedbackIndex uint64   `json:"feedbackIndex"`
	Score         uint8    `json:"score"`
	Tag1          string   `json:"tag1,omitempty"`
	Tag2          string   `json:"tag2,omitempty"`
	FeedbackURI   string   `json:"feedbackUri,omitempty"`
	FeedbackHash  *Bytes32 `json:"feedbackHash,omitempty"`
	ContentHash   *Bytes32 `json:"contentHash,omitempty"`
}

// ResponseAppended attaches a responder's reply to an existing feedback entry
type ResponseAppended struct {
	Asset         string   `json:"asset"`
	Client        string   `json:"client"`
	FeedbackIndex uint64   `json:"feedbackIndex"`
	Responder     string   `json:"responder"`
	ResponseURI   string   `json:"responseUri,omitempty"`
	ResponseHash  *Bytes32 `json:"responseHash,omitempty"`
	ParentHash    *Bytes32 `json:"parentHash,omitempty"`
	ContentHash   *Bytes32 `json:"contentHash,omitempty"`
}

// FeedbackRevoked withdraws an existing feedback entry
type FeedbackRevoked struct {
	Asset         string   `json:"asset"`
	Client        string   `json:"client"`
	FeedbackIndex uint64   `json:"feedbackIndex"`
	ParentHash    *Bytes32 `json:"parentHash,omitempty"`
	ContentHash   *Bytes32 `json:"contentHash,omitempty"`
}

func (*AgentRegistered) EventType() EventType  { return EventTypeAgentRegistered }
func (*AgentURIUpdated) EventType() EventType  { return EventTypeAgentURIUpdated }
func (*FeedbackGiven) EventType() EventType    { return EventTypeFeedbackGiven }
func (*ResponseAppended) EventType() EventType { return EventTypeResponseAppended }
func (*FeedbackRevoked) EventType() EventType  { return EventTypeFeedbackRevoked }

func (*AgentRegistered) isEventPayload()  {}
func (*AgentURIUpdated) isEventPayload()  {}
func (*FeedbackGiven) isEventPayload()    {}
func (*ResponseAppended) isEventPayload() {}
func (*FeedbackRevoked) isEventPayload()  {}

// LedgerEvent is one registry log, at its position on the ledger
type LedgerEvent struct {
	OrderingKey
	ProgramID string       `json:"programId"`
	Channel   Channel      `json:"channel"`
	Payload   EventPayload `json:"-"`
}

// FeedbackKey is the natural key of a feedback entry, and the parent key of its children
func FeedbackKey(asset, client string, index uint64) string {
	return fmt.Sprintf("%s/%s/%d", asset, client, index)
}

// AgentSubject is the enrichment subject of an agent's registration document
func AgentSubject(asset string) string {
	return "agent:" + asset
}

// FeedbackSubject is the enrichment subject of a feedback document
func FeedbackSubject(feedbackKey string) string {
	return "feedback:" + feedbackKey
}

func hashFields(fields ...string) *Bytes32 {
	return Keccak256([]byte(strings.Join(fields, "\x00")))
}

func hashOrEmpty(b32 *Bytes32) string {
	if b32 == nil {
		return ""
	}
	return b32.String()
}

// RecordKind is the kind of record the event projects, if any
func (e *LedgerEvent) RecordKind() (RecordKind, bool) {
	switch e.Payload.(type) {
	case *AgentRegistered:
		return RecordKindAgent, true
	case *FeedbackGiven:
		return RecordKindFeedback, true
	case *ResponseAppended:
		return RecordKindResponse, true
	case *FeedbackRevoked:
		return RecordKindRevocation, true
	default:
		return "", false
	}
}

// NaturalKey uniquely identifies the logical entity within its record kind,
// so the same log delivered twice maps to the same key.
func (e *LedgerEvent) NaturalKey() string {
	switch p := e.Payload.(type) {
	case *AgentRegistered:
		return p.Asset
	case *AgentURIUpdated:
		return p.Asset
	case *FeedbackGiven:
		return FeedbackKey(p.Asset, p.Client, p.FeedbackIndex)
	case *ResponseAppended:
		return fmt.Sprintf("%s/%s/%s", FeedbackKey(p.Asset, p.Client, p.FeedbackIndex), p.Responder, e.Signature)
	case *FeedbackRevoked:
		return FeedbackKey(p.Asset, p.Client, p.FeedbackIndex)
	default:
		return ""
	}
}

// Scope returns the scope holding the sequence and hash chain for the event
func (e *LedgerEvent) Scope() ScopeRef {
	switch p := e.Payload.(type) {
	case *AgentRegistered:
		return ScopeRef{Kind: ScopeKindAgents, Key: e.ProgramID}
	case *FeedbackGiven:
		return ScopeRef{Kind: ScopeKindFeedback, Key: p.Asset}
	case *ResponseAppended:
		return ScopeRef{Kind: ScopeKindResponse, Key: p.Asset}
	case *FeedbackRevoked:
		return ScopeRef{Kind: ScopeKindRevocation, Key: p.Asset}
	default:
		return ScopeRef{}
	}
}

// ParentKey is the natural key of the feedback entry a child event requires
func (e *LedgerEvent) ParentKey() string {
	switch p := e.Payload.(type) {
	case *ResponseAppended:
		return FeedbackKey(p.Asset, p.Client, p.FeedbackIndex)
	case *FeedbackRevoked:
		return FeedbackKey(p.Asset, p.Client, p.FeedbackIndex)
	default:
		return ""
	}
}

// ParentContentHash is the parent content hash a child event claims, if it carries one
func (e *LedgerEvent) ParentContentHash() *Bytes32 {
	switch p := e.Payload.(type) {
	case *ResponseAppended:
		return p.ParentHash
	case *FeedbackRevoked:
		return p.ParentHash
	default:
		return nil
	}
}

// ContentHash is the leaf folded into the hash chain. The program supplied
// leaf is used when the log carries one, otherwise it is derived from the fields.
func (e *LedgerEvent) ContentHash() *Bytes32 {
	switch p := e.Payload.(type) {
	case *AgentRegistered:
		if p.ContentHash != nil {
			return p.ContentHash
		}
		return hashFields(string(EventTypeAgentRegistered), p.Asset, p.Owner, p.URI)
	case *AgentURIUpdated:
		return hashFields(string(EventTypeAgentURIUpdated), p.Asset, p.URI)
	case *FeedbackGiven:
		if p.ContentHash != nil {
			return p.ContentHash
		}
		return hashFields(string(EventTypeFeedbackGiven), FeedbackKey(p.Asset, p.Client, p.FeedbackIndex),
			fmt.Sprintf("%d", p.Score), p.Tag1, p.Tag2, p.FeedbackURI, hashOrEmpty(p.FeedbackHash))
	case *ResponseAppended:
		if p.ContentHash != nil {
			return p.ContentHash
		}
		return hashFields(string(EventTypeResponseAppended), FeedbackKey(p.Asset, p.Client, p.FeedbackIndex),
			p.Responder, p.ResponseURI, hashOrEmpty(p.ResponseHash))
	case *FeedbackRevoked:
		if p.ContentHash != nil {
			return p.ContentHash
		}
		return hashFields(string(EventTypeFeedbackRevoked), FeedbackKey(p.Asset, p.Client, p.FeedbackIndex))
	default:
		return nil
	}
}

// EnrichmentReference returns the off-chain document reference carried by the event
func (e *LedgerEvent) EnrichmentReference() (subject, reference string, ok bool) {
	switch p := e.Payload.(type) {
	case *AgentRegistered:
		return AgentSubject(p.Asset), p.URI, p.URI != ""
	case *AgentURIUpdated:
		return AgentSubject(p.Asset), p.URI, p.URI != ""
	case *FeedbackGiven:
		return FeedbackSubject(FeedbackKey(p.Asset, p.Client, p.FeedbackIndex)), p.FeedbackURI, p.FeedbackURI != ""
	default:
		return "", "", false
	}
}

// ParseEventPayload decodes the data of a registry log of the named type
func ParseEventPayload(ctx context.Context, eventType string, data []byte) (EventPayload, error) {
	var payload EventPayload
	switch strings.ToLower(eventType) {
	case string(EventTypeAgentRegistered):
		payload = &AgentRegistered{}
	case string(EventTypeAgentURIUpdated):
		payload = &AgentURIUpdated{}
	case string(EventTypeFeedbackGiven):
		payload = &FeedbackGiven{}
	case string(EventTypeResponseAppended):
		payload = &ResponseAppended{}
	case string(EventTypeFeedbackRevoked):
		payload = &FeedbackRevoked{}
	default:
		return nil, i18n.NewError(ctx, i18n.MsgUnknownEventKind, eventType)
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgJSONDecodeFailed)
	}
	if err := validatePayload(ctx, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func validatePayload(ctx context.Context, payload EventPayload) error {
	var asset string
	switch p := payload.(type) {
	case *AgentRegistered:
		asset = p.Asset
	case *AgentURIUpdated:
		asset = p.Asset
	case *FeedbackGiven:
		asset = p.Asset
		if p.Client == "" {
			return i18n.NewError(ctx, i18n.MsgEventMissingField, payload.EventType(), "client")
		}
	case *ResponseAppended:
		asset = p.Asset
		if p.Responder == "" {
			return i18n.NewError(ctx, i18n.MsgEventMissingField, payload.EventType(), "responder")
		}
	case *FeedbackRevoked:
		asset = p.Asset
	}
	if asset == "" {
		return i18n.NewError(ctx, i18n.MsgEventMissingField, payload.EventType(), "asset")
	}
	return nil
}
