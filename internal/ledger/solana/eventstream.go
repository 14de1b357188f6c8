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
	"encoding/json"

	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/wsclient"
	"github.com/kaleido-io/agentledger/pkg/core"
)

// connectorEvent is a decoded program log, as served by the event connector
type connectorEvent struct {
	Slot       uint64          `json:"slot"`
	Signature  string          `json:"signature"`
	TxIndex    *int64          `json:"txIndex,omitempty"`
	LogOrdinal *int64          `json:"logOrdinal,omitempty"`
	ProgramID  string          `json:"programId"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
}

type connectorCommand struct {
	Type      string `json:"type"`
	ProgramID string `json:"programId,omitempty"`
}

// toLedgerEvent keeps the position of an event even when its payload cannot be decoded,
// so consumers can move past it. Such events carry a nil payload.
func (s *Solana) toLedgerEvent(ctx context.Context, ce *connectorEvent, channel core.Channel) *core.LedgerEvent {
	e := &core.LedgerEvent{
		OrderingKey: core.OrderingKey{
			Slot:       ce.Slot,
			Signature:  ce.Signature,
			TxIndex:    ce.TxIndex,
			LogOrdinal: ce.LogOrdinal,
		},
		ProgramID: s.programID,
		Channel:   channel,
	}
	if ce.ProgramID != "" && ce.ProgramID != s.programID {
		log.L(ctx).Debugf("Ignoring event from program %s at %s", ce.ProgramID, &e.OrderingKey)
		return e
	}
	payload, err := core.ParseEventPayload(ctx, ce.Type, ce.Data)
	if err != nil {
		log.L(ctx).Warnf("%s", i18n.NewError(ctx, i18n.MsgEventInvalid, ce.Slot, ce.Signature, err))
		return e
	}
	e.Payload = payload
	return e
}

func (s *Solana) SubscribeLogs(ctx context.Context) (<-chan *core.LedgerEvent, error) {
	subscribe, _ := json.Marshal(&connectorCommand{Type: "subscribe", ProgramID: s.programID})
	w, err := wsclient.NewWSClient(ctx, s.wsConf, subscribe)
	if err != nil {
		return nil, err
	}
	s.subsMux.Lock()
	s.subscriptions[w] = true
	s.subsMux.Unlock()

	events := make(chan *core.LedgerEvent, s.subscriptionBuffer)
	go s.eventLoop(ctx, w, events)
	return events, nil
}

// decodeBatch accepts either a single event or an array of events
func decodeBatch(msgBytes []byte) ([]*connectorEvent, error) {
	var batch []*connectorEvent
	if err := json.Unmarshal(msgBytes, &batch); err == nil {
		return batch, nil
	}
	var single connectorEvent
	if err := json.Unmarshal(msgBytes, &single); err != nil {
		return nil, err
	}
	return []*connectorEvent{&single}, nil
}

func (s *Solana) eventLoop(ctx context.Context, w *wsclient.WSClient, events chan<- *core.LedgerEvent) {
	l := log.L(ctx)
	ack, _ := json.Marshal(&connectorCommand{Type: "ack"})
	defer func() {
		w.Close()
		s.subsMux.Lock()
		delete(s.subscriptions, w)
		s.subsMux.Unlock()
		close(events)
	}()
	for {
		select {
		case <-ctx.Done():
			l.Debugf("Event loop exiting (context cancelled)")
			return
		case msgBytes, ok := <-w.Receive():
			if !ok {
				l.Debugf("Event loop exiting (receive channel closed)")
				return
			}
			batch, err := decodeBatch(msgBytes)
			if err != nil {
				l.Errorf("Message cannot be parsed as JSON: %s\n%s", err, string(msgBytes))
				continue
			}
			for _, ce := range batch {
				select {
				case events <- s.toLedgerEvent(ctx, ce, core.ChannelSubscriber):
				case <-ctx.Done():
					return
				}
			}
			if err := w.Send(ctx, ack); err != nil {
				l.Errorf("Event loop exiting (%s)", err)
				return
			}
		}
	}
}
