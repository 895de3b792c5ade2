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
	"sync"
	"time"
)

// MemoryLog is an in-process Log, used when config.AuditConfig.DSN is
// empty. Events do not survive a process restart.
type MemoryLog struct {
	mu     sync.RWMutex
	events []Event
	nextID int64
}

// NewMemoryLog creates an empty in-memory audit log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextID: 1}
}

func (l *MemoryLog) Record(ctx context.Context, event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.ID = l.nextID
	l.nextID++

	if event.Detail != nil {
		detail := make(map[string]interface{}, len(event.Detail))
		for k, v := range event.Detail {
			detail[k] = v
		}
		event.Detail = detail
	}

	l.events = append(l.events, event)
	return nil
}

func (l *MemoryLog) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, e := range l.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *MemoryLog) CountByType(ctx context.Context, eventType EventType) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var count int64
	for _, e := range l.events {
		if e.Type == eventType {
			count++
		}
	}
	return count, nil
}

func (l *MemoryLog) Close() error { return nil }

func (l *MemoryLog) Ping(ctx context.Context) error { return nil }
