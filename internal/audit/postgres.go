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

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied by the operator out of band; PostgresLog assumes it exists:
//
//	CREATE TABLE relay_audit_events (
//	    id         BIGSERIAL PRIMARY KEY,
//	    session_id TEXT        NOT NULL,
//	    type       TEXT        NOT NULL,
//	    peer_id    INTEGER,
//	    detail     JSONB,
//	    occurred_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX relay_audit_events_session_id_idx ON relay_audit_events (session_id);

// PostgresLog implements Log against a PostgreSQL relay_audit_events table.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog opens a connection pool against dsn (a libpq connection
// string or URL) and verifies it is reachable.
func NewPostgresLog(ctx context.Context, dsn string) (*PostgresLog, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit: ping database: %w", err)
	}
	return &PostgresLog{pool: pool}, nil
}

func (l *PostgresLog) Record(ctx context.Context, event Event) error {
	detail, err := json.Marshal(event.Detail)
	if err != nil {
		return fmt.Errorf("audit: marshal detail: %w", err)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	const query = `
		INSERT INTO relay_audit_events (session_id, type, peer_id, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = l.pool.Exec(ctx, query, event.SessionID, string(event.Type), nullablePeerID(event.PeerID), detail, event.Timestamp)
	if err != nil {
		return fmt.Errorf("audit: record event: %w", err)
	}
	return nil
}

func (l *PostgresLog) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	const query = `
		SELECT id, session_id, type, peer_id, detail, occurred_at
		FROM relay_audit_events
		WHERE session_id = $1
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := l.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("audit: list session events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var eventType string
		var peerID *uint32
		var detail []byte
		if err := rows.Scan(&e.ID, &e.SessionID, &eventType, &peerID, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		e.Type = EventType(eventType)
		if peerID != nil {
			e.PeerID = *peerID
		}
		if detail != nil {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, fmt.Errorf("audit: unmarshal detail: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterating events: %w", err)
	}
	return events, nil
}

func (l *PostgresLog) CountByType(ctx context.Context, eventType EventType) (int64, error) {
	const query = `SELECT COUNT(*) FROM relay_audit_events WHERE type = $1`
	var count int64
	if err := l.pool.QueryRow(ctx, query, string(eventType)).Scan(&count); err != nil {
		return 0, fmt.Errorf("audit: count events: %w", err)
	}
	return count, nil
}

func (l *PostgresLog) Close() error {
	l.pool.Close()
	return nil
}

func (l *PostgresLog) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx)
}

func nullablePeerID(id uint32) *uint32 {
	if id == 0 {
		return nil
	}
	return &id
}
