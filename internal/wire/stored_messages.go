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

package wire

import "sync"

// MaxClients bounds how many peer slots a StoredMessages round tracks. A
// relay session larger than this is rejected at registration.
const MaxClients = 12

// StoredMessages holds one round's worth of relayed payloads, keyed by the
// sending peer id. Update always stores the latest payload it is given —
// redelivery of the same payload is idempotent (the map ends up holding the
// same value it already held), and a corrected resend for a round a peer
// already touched replaces the stale value rather than being dropped.
type StoredMessages struct {
	mu       sync.Mutex
	capacity uint32
	messages map[PeerID]string
}

// NewStoredMessages creates an empty round store for a session of the
// given capacity.
func NewStoredMessages(capacity uint32) *StoredMessages {
	return &StoredMessages{
		capacity: capacity,
		messages: make(map[PeerID]string, capacity),
	}
}

// Update records peer's payload for this round, overwriting any value
// already stored for peer. It returns whether this was peer's first
// contribution this round, for caller bookkeeping (e.g. turn advance) —
// that is independent of whether the payload itself changed.
func (s *StoredMessages) Update(peer PeerID, payload string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.messages[peer]
	s.messages[peer] = payload
	return !existed
}

// Contains reports whether peer has already contributed a message this
// round, letting a caller distinguish "stale retry of an already-accepted
// message" from "out-of-turn attempt".
func (s *StoredMessages) Contains(peer PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.messages[peer]
	return ok
}

// Count returns how many peers have contributed a message this round.
func (s *StoredMessages) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Missing returns the peer ids in [1, capacity] that have not yet
// contributed a message this round.
func (s *StoredMessages) Missing() []PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []PeerID
	for id := PeerID(1); id <= s.capacity; id++ {
		if _, ok := s.messages[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// MessagesVec returns every stored message as a RelayMessage slice, sorted
// by sending peer id for deterministic ordering.
func (s *StoredMessages) MessagesVec() []RelayMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RelayMessage, 0, len(s.messages))
	for id := PeerID(1); id <= s.capacity; id++ {
		if payload, ok := s.messages[id]; ok {
			out = append(out, RelayMessage{FromID: id, Payload: payload})
		}
	}
	return out
}

// MessagesMapSubset returns the stored messages whose sender is in ids.
func (s *StoredMessages) MessagesMapSubset(ids []PeerID) []RelayMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RelayMessage, 0, len(ids))
	for _, id := range ids {
		if payload, ok := s.messages[id]; ok {
			out = append(out, RelayMessage{FromID: id, Payload: payload})
		}
	}
	return out
}
