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
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kaleido-io/agentledger/internal/i18n"
	"github.com/kaleido-io/agentledger/internal/log"
	"github.com/kaleido-io/agentledger/internal/retry"
)

type WSConfig struct {
	HTTPURL                string
	WSKeyPath              string
	ReadBufferSize         int
	WriteBufferSize        int
	InitialDelay           time.Duration
	MaximumDelay           time.Duration
	InitialConnectAttempts int
	AuthUsername           string
	AuthPassword           string
	HTTPHeaders            map[string]interface{}
}

// WSClient is a reconnecting websocket. Messages queued by the caller via Send are retried
// across reconnects, and the sendOnConnect messages are re-sent on every connect.
type WSClient struct {
	ctx                  context.Context
	headers              http.Header
	url                  string
	initialRetryAttempts int
	wsdialer             *websocket.Dialer
	wsconn               *websocket.Conn
	retry                *retry.Retry
	closeMux             sync.Mutex
	closed               bool
	receive              chan []byte
	send                 chan []byte
	sendDone             chan []byte
	closing              chan struct{}
	sendOnConnect        [][]byte
}

func NewWSClient(ctx context.Context, conf *WSConfig, sendOnConnect ...[]byte) (*WSClient, error) {
	wsURL, err := buildWSUrl(ctx, conf)
	if err != nil {
		return nil, err
	}
	w := &WSClient{
		ctx: log.WithLogField(ctx, "wsclient", wsURL),
		url: wsURL,
		wsdialer: &websocket.Dialer{
			ReadBufferSize:  conf.ReadBufferSize,
			WriteBufferSize: conf.WriteBufferSize,
		},
		retry: &retry.Retry{
			InitialDelay: conf.InitialDelay,
			MaximumDelay: conf.MaximumDelay,
		},
		initialRetryAttempts: conf.InitialConnectAttempts,
		headers:              make(http.Header),
		receive:              make(chan []byte),
		send:                 make(chan []byte),
		closing:              make(chan struct{}),
		sendOnConnect:        sendOnConnect,
	}
	for k, v := range conf.HTTPHeaders {
		if vs, ok := v.(string); ok {
			w.headers.Set(k, vs)
		}
	}
	if conf.AuthUsername != "" && conf.AuthPassword != "" {
		w.headers.Set("Authorization", fmt.Sprintf("Basic %s", base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", conf.AuthUsername, conf.AuthPassword)))))
	}

	if err := w.connect(true); err != nil {
		return nil, err
	}

	go w.receiveReconnectLoop()

	return w, nil
}

func buildWSUrl(ctx context.Context, conf *WSConfig) (string, error) {
	u, err := url.Parse(conf.HTTPURL)
	if err != nil {
		return "", i18n.WrapError(ctx, err, i18n.MsgWSConnectFailed)
	}
	if conf.WSKeyPath != "" {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(conf.WSKeyPath, "/")
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}

func (w *WSClient) Close() {
	w.closeMux.Lock()
	defer w.closeMux.Unlock()
	if !w.closed {
		w.closed = true
		close(w.closing)
		c := w.wsconn
		if c != nil {
			_ = c.Close()
		}
	}
}

func (w *WSClient) isClosed() bool {
	w.closeMux.Lock()
	defer w.closeMux.Unlock()
	return w.closed
}

// Receive returns the channel of inbound messages, closed when the client gives up reconnecting
func (w *WSClient) Receive() <-chan []byte {
	return w.receive
}

func (w *WSClient) Send(ctx context.Context, message []byte) error {
	select {
	case w.send <- message:
		return nil
	case <-ctx.Done():
		return i18n.NewError(ctx, i18n.MsgWSSendTimedOut)
	case <-w.closing:
		return i18n.NewError(ctx, i18n.MsgWSClosing)
	}
}

func (w *WSClient) connect(initial bool) error {
	l := log.L(w.ctx)
	return w.retry.Do(w.ctx, "websocket connect", func(attempt int) (retry bool, err error) {
		if w.isClosed() {
			return false, i18n.NewError(w.ctx, i18n.MsgWSClosing)
		}
		var res *http.Response
		w.wsconn, res, err = w.wsdialer.DialContext(w.ctx, w.url, w.headers)
		for i := 0; err == nil && i < len(w.sendOnConnect); i++ {
			err = w.wsconn.WriteMessage(websocket.TextMessage, w.sendOnConnect[i])
		}
		if err != nil {
			var b []byte
			var status = -1
			if res != nil {
				b, _ = io.ReadAll(res.Body)
				res.Body.Close()
				status = res.StatusCode
			}
			l.Warnf("WS %s connect attempt %d failed [%d]: %s", w.url, attempt, status, string(b))
			return !initial || attempt < w.initialRetryAttempts, i18n.WrapError(w.ctx, err, i18n.MsgWSConnectFailed)
		}
		l.Infof("WS %s connected", w.url)
		return false, nil
	})
}

func (w *WSClient) readLoop() []byte {
	l := log.L(w.ctx)
	for {
		mt, message, err := w.wsconn.ReadMessage()

		// Return a message the sender failed to deliver before any read error, so it is re-sent
		select {
		case pendingMsg := <-w.sendDone:
			l.Debugf("WS %s closing reader after send error", w.url)
			return pendingMsg
		default:
		}

		if err != nil {
			l.Errorf("WS %s closed: %s", w.url, err)
			return nil
		}

		l.Tracef("WS %s read (mt=%d): %s", w.url, mt, message)
		select {
		case w.receive <- message:
		case <-w.closing:
			return nil
		}
	}
}

func (w *WSClient) sendLoop(message []byte) {
	l := log.L(w.ctx)
	defer close(w.sendDone)
	for {
		if message != nil {
			if err := w.wsconn.WriteMessage(websocket.TextMessage, message); err != nil {
				l.Errorf("WS %s send failed: %s", w.url, err)
				// Keep the message for when we reconnect
				w.sendDone <- message
				return
			}
		}

		var ok bool
		select {
		case message, ok = <-w.send:
			if !ok {
				l.Debugf("WS %s send loop exiting", w.url)
				return
			}
		case <-w.closing:
			return
		}
	}
}

func (w *WSClient) receiveReconnectLoop() {
	l := log.L(w.ctx)
	defer close(w.receive)
	var pendingSend []byte
	for !w.isClosed() {
		w.sendDone = make(chan []byte, 1)
		go w.sendLoop(pendingSend)

		// The reader runs synchronously, so a read error triggers reconnect immediately
		pendingSend = w.readLoop()

		if err := w.wsconn.Close(); err != nil {
			l.Debugf("WS %s close failed: %s", w.url, err)
		}
		<-w.sendDone
		w.sendDone = nil
		w.wsconn = nil

		if !w.isClosed() {
			if err := w.connect(false); err != nil {
				l.Debugf("WS %s exiting: %s", w.url, err)
				return
			}
		}
	}
}
