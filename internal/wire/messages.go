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

// Package wire defines the JSON message schema exchanged between a peer
// client and the relay server, and the server-side per-round message store.
package wire

// PeerID identifies a registered peer within one relay session. Peer ids
// are assigned in FIFO registration order starting at 1.
type PeerID = uint32

// RelayMessage is a single peer's contribution for one round, addressed to
// every other peer in the session.
type RelayMessage struct {
	FromID  PeerID `json:"from_id"`
	Payload string `json:"payload"` // TAG:::BODY, see internal/codec
}

// AbortMessage notifies the relay (or is broadcast by the relay) that a
// peer has abandoned the session.
type AbortMessage struct {
	PeerID PeerID `json:"peer_id,omitempty"`
}

// RegisterMessage requests a peer id for a session of the given capacity.
// SessionID is empty to start a new session (the relay assigns one and
// returns it in the register response) or set to join an
// already-registering session of matching capacity. Protocol names the
// ceremony being run (e.g. "eddsa-keygen", "eddsa-sign"); the relay checks
// it against its protocol registry on the session's first registration and
// holds every later registration on the same session to that same name.
type RegisterMessage struct {
	Capacity  uint32 `json:"capacity"`
	SessionID string `json:"session_id,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
}

// ClientMessage is the envelope a peer client sends to the relay. Exactly
// one of Register, Abort, or RelayMessage is populated per request.
// SessionID addresses which relay session a Relay or Abort request belongs
// to; it is ignored on Register, which carries RegisterMessage.SessionID.
type ClientMessage struct {
	SessionID    string           `json:"session_id,omitempty"`
	Register     *RegisterMessage `json:"register,omitempty"`
	Abort        *AbortMessage    `json:"abort,omitempty"`
	RelayMessage *RelayMessage    `json:"relay_message,omitempty"`
}

// ServerMessageType discriminates the kind of response the server sends.
type ServerMessageType string

const (
	ServerMessageRegisterResponse ServerMessageType = "register_response"
	ServerMessageRelayed          ServerMessageType = "relayed"
	ServerMessageError            ServerMessageType = "error"
	ServerMessageAbort            ServerMessageType = "abort"
	ServerMessageNoMessages       ServerMessageType = "no_messages"
)

// ServerMessage is the envelope the relay sends back to a peer client.
type ServerMessage struct {
	Type      ServerMessageType `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	PeerID    PeerID            `json:"peer_id,omitempty"`
	Messages  []RelayMessage    `json:"messages,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Wire error strings. Clients compare these verbatim against
// ServerMessage.Error.
const (
	ErrStateNotInitialized = "STATE_NOT_INITIALIZED"
	ErrNotYourTurn         = "NOT_YOUR_TURN"
	ErrNotAPeer            = "NOT_A_PEER"
	ErrCantRegister        = "CANT_REGISTER_RESPONSE"
	ErrRelayError          = "RELAY_ERROR_RESPONSE"
)
