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

// Package relay implements the server-side relay session: peer
// registration, turn-gated message relaying, and the
// Empty -> Uninitialized -> Initialized -> Aborted state machine a single
// keygen or signing ceremony drives through.
package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/metrics"
	"github.com/eddsa-relay/relay/internal/protocol"
	"github.com/eddsa-relay/relay/internal/wire"
)

// State is one of the four states a relay session passes through.
type State int

const (
	// Empty: created, no peer has registered yet.
	Empty State = iota
	// Uninitialized: some but not all peers have registered.
	Uninitialized
	// Initialized: every declared peer slot is filled; relaying is live.
	Initialized
	// Aborted: a peer or operator ended the session early. Terminal.
	Aborted
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

var (
	ErrAborted            = errors.New("relay: session aborted")
	ErrNotInitialized     = errors.New("relay: session not initialized")
	ErrNotYourTurn        = errors.New("relay: not this peer's turn")
	ErrNotAPeer           = errors.New("relay: peer id not registered in this session")
	ErrCapacityMismatch   = errors.New("relay: registration capacity does not match the session")
	ErrCapacityExceeded   = errors.New("relay: session capacity exceeds the maximum supported peer count")
	ErrAlreadyInitialized = errors.New("relay: session already has every peer slot filled")
	ErrProtocolMismatch   = errors.New("relay: registration protocol does not match the session")
)

// Session is one relay ceremony: a fixed set of peer slots relaying
// round-tagged payloads to each other in strict turn order. It is
// protocol-agnostic — it does not know whether it is carrying a one-round
// keygen or a four-round signing exchange, it simply starts a fresh
// wire.StoredMessages bucket each time the current one fills.
//
// Relaying is modeled as one message at a time rather than one full round
// at a time: a peer's turn advances after every individual accepted
// message, wrapping via protocol.Descriptor.Advance, and a round is
// "complete" once all Capacity peers have contributed to the current
// bucket. This keeps the turn discipline meaningful even though a peer
// client's Exchange call bundles "submit mine" and "collect everyone
// else's" into a single relay request for HTTP simplicity.
type Session struct {
	mu sync.Mutex

	id       string
	state    State
	capacity uint32
	protocol string
	created  time.Time

	registered map[wire.PeerID]bool
	nextPeerID wire.PeerID

	descriptor *protocol.Descriptor
	rounds     []*wire.StoredMessages

	abortReason string

	log logger.Logger
}

// New creates an empty session awaiting its first registration.
func New(id string, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Session{
		id:         id,
		state:      Empty,
		registered: make(map[wire.PeerID]bool),
		nextPeerID: 1,
		created:    time.Now(),
		log:        log,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Register assigns the next FIFO peer id to a new peer, or rejects the
// request if capacity or protocol is already fixed to something else, or
// the session aborted. The first registration fixes the session's capacity
// and protocol name; every later registration on the same session must
// match both.
func (s *Session) Register(capacity uint32, protocol string) (wire.PeerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Aborted {
		return 0, ErrAborted
	}
	if capacity == 0 || capacity > wire.MaxClients {
		return 0, ErrCapacityExceeded
	}

	switch s.state {
	case Empty:
		s.capacity = capacity
		s.protocol = protocol
		s.state = Uninitialized
	case Uninitialized:
		if capacity != s.capacity {
			return 0, ErrCapacityMismatch
		}
		if protocol != s.protocol {
			return 0, ErrProtocolMismatch
		}
	case Initialized:
		return 0, ErrAlreadyInitialized
	}

	id := s.nextPeerID
	s.nextPeerID++
	s.registered[id] = true

	if uint32(len(s.registered)) == s.capacity {
		s.state = Initialized
		s.descriptor = protocol.New(s.id, s.capacity)
		s.rounds = []*wire.StoredMessages{wire.NewStoredMessages(s.capacity)}
		metrics.SessionsActive.Inc()
		s.log.Info("relay session initialized", logger.String("session_id", s.id), logger.Int("capacity", int(s.capacity)))
	}

	return id, nil
}

// Relay accepts peer's payload for the current round. It returns the
// current round's collected messages and whether the round is now
// complete (every peer has contributed). A non-complete, nil-error return
// means the caller should report wire.ErrNotYourTurn-style backoff only if
// err is set; otherwise it should poll again (ServerMessageNoMessages) —
// see internal/transport/http for how the two are distinguished.
func (s *Session) Relay(peer wire.PeerID, payload string) (messages []wire.RelayMessage, complete bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Aborted {
		return nil, false, ErrAborted
	}
	if s.state != Initialized {
		return nil, false, ErrNotInitialized
	}
	if !s.registered[peer] {
		return nil, false, ErrNotAPeer
	}

	current := s.rounds[len(s.rounds)-1]

	if s.descriptor.IsMyTurn(peer) {
		if current.Update(peer, payload) {
			s.descriptor.Advance()
			metrics.TurnAdvances.Inc()
		}
	} else if !current.Contains(peer) {
		return nil, false, ErrNotYourTurn
	}

	if uint32(current.Count()) < s.capacity {
		return nil, false, nil
	}

	s.rounds = append(s.rounds, wire.NewStoredMessages(s.capacity))
	return current.MessagesVec(), true, nil
}

// Abort marks the session terminally aborted; every subsequent Register or
// Relay call fails with ErrAborted.
func (s *Session) Abort(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Aborted {
		return
	}
	wasInitialized := s.state == Initialized
	s.state = Aborted
	s.abortReason = reason
	metrics.SessionsAborted.WithLabelValues(reason).Inc()
	if wasInitialized {
		metrics.SessionsActive.Dec()
	}
	s.log.Warn("relay session aborted", logger.String("session_id", s.id), logger.String("reason", reason))
}

// AbortReason returns why the session was aborted, or "" if it was not.
func (s *Session) AbortReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abortReason
}

// Capacity returns the session's declared peer count, 0 before the first
// registration fixes it.
func (s *Session) Capacity() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// Protocol returns the protocol name fixed by the session's first
// registration, "" before that.
func (s *Session) Protocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// RoundsCompleted returns how many rounds have collected every peer's
// contribution so far.
func (s *Session) RoundsCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rounds) == 0 {
		return 0
	}
	return len(s.rounds) - 1
}
