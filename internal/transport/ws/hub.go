// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package ws pushes relay session events (abort, round completion) to
// subscribed peer clients over a websocket, so a peer blocked in its
// per-round poll loop (see internal/client.Session) can react to an abort
// immediately instead of waiting out its next retry interval. The
// request/response relay exchange itself still goes over
// internal/transport/http; this is a supplementary notification channel.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/eddsa-relay/relay/internal/logger"
)

// EventType names a pushed notification kind.
type EventType string

const (
	EventAbort         EventType = "abort"
	EventRoundComplete EventType = "round_complete"
	EventSessionGone   EventType = "session_gone"
)

// Event is a single pushed notification, broadcast to every subscriber of
// a session.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Round     int       `json:"round,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out Events to every websocket connection subscribed to a given
// relay session id.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]struct{}
	log  logger.Logger
}

// NewHub creates an empty notification hub.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Hub{subs: make(map[string]map[*websocket.Conn]struct{}), log: log}
}

// ServeHTTP upgrades the request to a websocket and subscribes it to the
// relay session named by the "session_id" query parameter until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	h.subscribe(sessionID, conn)
	defer h.unsubscribe(sessionID, conn)

	// Drain and discard incoming frames; this channel is server-to-client
	// only. Reading is still required so gorilla's connection notices a
	// client-initiated close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) subscribe(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[sessionID][conn] = struct{}{}
}

func (h *Hub) unsubscribe(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[sessionID], conn)
	if len(h.subs[sessionID]) == 0 {
		delete(h.subs, sessionID)
	}
	conn.Close()
}

// Broadcast sends event to every subscriber of event.SessionID, dropping
// connections that fail to write.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal websocket event", logger.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs[event.SessionID]))
	for c := range h.subs[event.SessionID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.unsubscribe(event.SessionID, c)
		}
	}
}

// SubscriberCount returns how many connections are subscribed to sessionID.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}
