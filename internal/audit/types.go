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

// Package audit records the lifecycle events of relay sessions — created,
// peer registered, relayed, aborted, completed — to a durable or in-memory
// log, independent of the in-process relay.Session state machine that
// drives the ceremony itself.
package audit

import (
	"context"
	"time"
)

// EventType names a point in a relay session's lifecycle worth recording.
type EventType string

const (
	EventSessionCreated     EventType = "session_created"
	EventPeerRegistered     EventType = "peer_registered"
	EventSessionInitialized EventType = "session_initialized"
	EventRoundRelayed       EventType = "round_relayed"
	EventSessionAborted     EventType = "session_aborted"
	EventSessionCompleted   EventType = "session_completed"
)

// Event is one audit-log entry.
type Event struct {
	ID        int64                  `json:"id"`
	SessionID string                 `json:"session_id"`
	Type      EventType              `json:"type"`
	PeerID    uint32                 `json:"peer_id,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Log persists relay session events and answers lifecycle queries against
// them. Both the Postgres-backed PostgresLog and the in-memory MemoryLog
// implement it; a relay server chooses between them based on config.AuditConfig.DSN.
type Log interface {
	// Record appends an event to the audit log.
	Record(ctx context.Context, event Event) error

	// ListBySession returns every recorded event for a session, oldest first.
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)

	// CountByType returns how many events of a given type have been recorded.
	CountByType(ctx context.Context, eventType EventType) (int64, error)

	// Close releases any underlying connection.
	Close() error

	// Ping checks the log's backing store is reachable.
	Ping(ctx context.Context) error
}
