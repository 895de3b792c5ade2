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

package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eddsa-relay/relay/internal/audit"
	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/metrics"
	"github.com/eddsa-relay/relay/internal/peer"
	"github.com/eddsa-relay/relay/internal/protocol"
	"github.com/eddsa-relay/relay/internal/transport/ws"
	"github.com/eddsa-relay/relay/internal/wire"
)

// ErrSessionNotFound is returned when a SessionID refers to no live session.
var ErrSessionNotFound = errors.New("relay: unknown session id")

// ErrInvalidProtocol is returned when a first registration names a
// capacity the protocol registry does not admit for the given protocol
// name. No session is created for a rejected first registration.
var ErrInvalidProtocol = errors.New("relay: capacity not valid for protocol")

// Manager hosts every concurrently running relay session a server process
// is coordinating, keyed by session id. A relay server is expected to carry
// many independent keygen/signing ceremonies at once, each isolated by id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	log      logger.Logger
	idle     time.Duration
	audit    audit.Log
	registry *protocol.Registry
	hub      *ws.Hub
}

// NewManager creates an empty session manager. idle bounds how long a
// stalled (not yet Initialized) session is kept around before Sweep evicts
// it; Aborted sessions are evicted on any Sweep. auditLog may be nil to skip audit recording. registry
// may be nil to skip protocol/capacity validation entirely. hub may be nil
// to skip websocket push notifications.
func NewManager(idle time.Duration, log logger.Logger, auditLog audit.Log, registry *protocol.Registry, hub *ws.Hub) *Manager {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		log:      log,
		idle:     idle,
		audit:    auditLog,
		registry: registry,
		hub:      hub,
	}
}

// Register joins sessionID (creating it if empty or unseen) with capacity
// peer slots for the named protocol, returning the assigned peer id and the
// session id the caller should use for every subsequent request. A session
// that does not exist yet is rejected outright, before anything is created,
// if the registry knows protocolName and does not admit capacity for it.
func (m *Manager) Register(ctx context.Context, sessionID, protocolName string, capacity uint32) (string, uint32, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	created := !ok
	if !ok {
		if m.registry != nil && !m.registry.IsValidCapacity(protocolName, capacity) {
			m.mu.Unlock()
			metrics.SessionsCreated.WithLabelValues("failure").Inc()
			return sessionID, 0, ErrInvalidProtocol
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		sess = New(sessionID, m.log)
		m.sessions[sessionID] = sess
		metrics.SessionsCreated.WithLabelValues("success").Inc()
	}
	m.mu.Unlock()

	if created && m.audit != nil {
		m.audit.Record(ctx, audit.Event{SessionID: sessionID, Type: audit.EventSessionCreated})
	}

	peerID, err := sess.Register(capacity, protocolName)
	if err != nil {
		metrics.SessionsCreated.WithLabelValues("failure").Inc()
		return sessionID, 0, err
	}
	if m.audit != nil {
		m.audit.Record(ctx, audit.Event{SessionID: sessionID, Type: audit.EventPeerRegistered, PeerID: peerID})
		if sess.State() == Initialized {
			m.audit.Record(ctx, audit.Event{SessionID: sessionID, Type: audit.EventSessionInitialized})
		}
	}
	return sessionID, peerID, nil
}

// Get returns the live session for id, or ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Abort aborts the named session, if it exists.
func (m *Manager) Abort(ctx context.Context, id, reason string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.Abort(reason)
	if m.audit != nil {
		m.audit.Record(ctx, audit.Event{
			SessionID: id,
			Type:      audit.EventSessionAborted,
			Detail:    map[string]interface{}{"reason": reason},
		})
	}
	if m.hub != nil {
		m.hub.Broadcast(ws.Event{Type: ws.EventAbort, SessionID: id, Reason: reason})
	}
	return nil
}

// Relay forwards peerID's payload to the named session, recording an
// audit trail entry and a websocket push notification whenever a round
// completes. It also detects whether the completed round was the
// ceremony's last one for its protocol, recording EventSessionCompleted
// in that case.
func (m *Manager) Relay(ctx context.Context, sessionID string, peerID wire.PeerID, payload string) ([]wire.RelayMessage, bool, error) {
	sess, err := m.Get(sessionID)
	if err != nil {
		return nil, false, err
	}

	messages, complete, err := sess.Relay(peerID, payload)
	if err != nil {
		return nil, false, err
	}
	if !complete {
		return nil, false, nil
	}

	round := sess.RoundsCompleted() - 1
	if m.audit != nil {
		m.audit.Record(ctx, audit.Event{
			SessionID: sessionID,
			Type:      audit.EventRoundRelayed,
			PeerID:    peerID,
			Detail:    map[string]interface{}{"round": round, "peer_count": len(messages)},
		})
	}
	if m.hub != nil {
		m.hub.Broadcast(ws.Event{Type: ws.EventRoundComplete, SessionID: sessionID, Round: round})
	}

	if total, ok := peer.RoundsForProtocol(sess.Protocol()); ok && round+1 == total {
		if m.audit != nil {
			m.audit.Record(ctx, audit.Event{SessionID: sessionID, Type: audit.EventSessionCompleted})
		}
	}

	return messages, true, nil
}

// Sweep evicts sessions that have been Aborted, or that have sat in Empty
// or Uninitialized longer than the manager's idle timeout, so a relay
// server's memory does not grow unbounded across abandoned ceremonies.
func (m *Manager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		stale := sess.state == Aborted || (sess.state != Initialized && time.Since(sess.created) > m.idle)
		sess.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Count returns how many sessions the manager currently tracks.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
