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

// Package http exposes a relay.Manager over a single JSON/HTTP endpoint,
// pairing with internal/client.HTTPTransport.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/relay"
	"github.com/eddsa-relay/relay/internal/wire"
)

// Handler serves POST /relay, dispatching each ClientMessage to the
// relay.Manager and translating session-layer errors into wire error
// strings a peer client's retry logic understands.
type Handler struct {
	manager *relay.Manager
	log     logger.Logger
}

// NewHandler creates a relay HTTP handler backed by manager.
func NewHandler(manager *relay.Manager, log logger.Logger) *Handler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Handler{manager: manager, log: log}
}

// Routes registers the handler's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/relay", h.handleRelay)
}

func (h *Handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg wire.ClientMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	resp := h.dispatch(r, msg)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("failed to encode relay response", logger.Error(err))
	}
}

func (h *Handler) dispatch(r *http.Request, msg wire.ClientMessage) wire.ServerMessage {
	ctx := r.Context()

	switch {
	case msg.Register != nil:
		sessionID, peerID, err := h.manager.Register(ctx, msg.Register.SessionID, msg.Register.Protocol, msg.Register.Capacity)
		if err != nil {
			return wire.ServerMessage{Type: wire.ServerMessageError, Error: registerErrorCode(err)}
		}
		return wire.ServerMessage{Type: wire.ServerMessageRegisterResponse, SessionID: sessionID, PeerID: peerID}

	case msg.Abort != nil:
		if msg.SessionID == "" {
			return wire.ServerMessage{Type: wire.ServerMessageError, Error: wire.ErrNotAPeer}
		}
		if err := h.manager.Abort(ctx, msg.SessionID, "peer requested abort"); err != nil {
			return wire.ServerMessage{Type: wire.ServerMessageError, Error: wire.ErrRelayError}
		}
		return wire.ServerMessage{Type: wire.ServerMessageAbort, SessionID: msg.SessionID}

	case msg.RelayMessage != nil:
		if msg.SessionID == "" {
			return wire.ServerMessage{Type: wire.ServerMessageError, Error: wire.ErrNotAPeer}
		}
		messages, complete, err := h.manager.Relay(ctx, msg.SessionID, msg.RelayMessage.FromID, msg.RelayMessage.Payload)
		if err != nil {
			if errors.Is(err, relay.ErrSessionNotFound) {
				return wire.ServerMessage{Type: wire.ServerMessageError, Error: wire.ErrStateNotInitialized}
			}
			return wire.ServerMessage{Type: wire.ServerMessageError, SessionID: msg.SessionID, Error: relayErrorCode(err)}
		}
		if !complete {
			return wire.ServerMessage{Type: wire.ServerMessageNoMessages, SessionID: msg.SessionID}
		}
		return wire.ServerMessage{Type: wire.ServerMessageRelayed, SessionID: msg.SessionID, Messages: messages}

	default:
		return wire.ServerMessage{Type: wire.ServerMessageError, Error: wire.ErrCantRegister}
	}
}

func registerErrorCode(err error) string {
	switch {
	case errors.Is(err, relay.ErrAborted):
		return wire.ErrRelayError
	case errors.Is(err, relay.ErrCapacityMismatch), errors.Is(err, relay.ErrCapacityExceeded),
		errors.Is(err, relay.ErrAlreadyInitialized), errors.Is(err, relay.ErrProtocolMismatch),
		errors.Is(err, relay.ErrInvalidProtocol):
		return wire.ErrCantRegister
	default:
		return wire.ErrCantRegister
	}
}

func relayErrorCode(err error) string {
	switch {
	case errors.Is(err, relay.ErrNotYourTurn):
		return wire.ErrNotYourTurn
	case errors.Is(err, relay.ErrNotInitialized):
		return wire.ErrStateNotInitialized
	case errors.Is(err, relay.ErrNotAPeer):
		return wire.ErrNotAPeer
	case errors.Is(err, relay.ErrAborted):
		return wire.ErrRelayError
	default:
		return wire.ErrRelayError
	}
}
