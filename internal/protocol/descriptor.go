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

// Package protocol describes a relay session's shape: how many peers it
// admits and whose turn it currently is.
package protocol

import (
	"encoding/json"
	"fmt"
	"os"
)

// Descriptor identifies a relay session and tracks whose turn it is to
// relay next.
//
// Turn advance is the one place the original proof-of-concept shipped two
// textually distinct but numerically equivalent formulas. We standardize on
// the "mod capacity, then +1" form: turn values are 1-based (peer ids are
// assigned starting at 1), so advancing from `capacity` wraps to `1` rather
// than `0`.
type Descriptor struct {
	ID       string
	Capacity uint32
	Turn     uint32
}

// New creates a descriptor for a session with the given id and capacity,
// turn initialized to 1 (the first peer to register relays first).
func New(id string, capacity uint32) *Descriptor {
	return &Descriptor{ID: id, Capacity: capacity, Turn: 1}
}

// IsMyTurn reports whether peerID may relay the next message.
func (d *Descriptor) IsMyTurn(peerID uint32) bool {
	return d.Turn == peerID
}

// Advance moves the turn to the next peer, wrapping capacity back to 1.
func (d *Descriptor) Advance() {
	d.Turn = (d.Turn % d.Capacity) + 1
}

// Registry is the set of protocol names and their admissible capacities,
// loaded from a JSON file (protocols.json by convention; see
// config.ProtocolConfig.RegistryPath).
type Registry struct {
	Protocols []RegistryEntry `json:"protocols"`
}

// RegistryEntry names a supported protocol and its valid capacities.
type RegistryEntry struct {
	Name       string   `json:"name"`
	Capacities []uint32 `json:"capacities"`
}

// LoadRegistry reads and parses a protocol registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("protocol: read registry %s: %w", path, err)
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("protocol: parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// IsValidCapacity reports whether capacity is one of the admissible sizes
// for name, or true unconditionally if name is unknown to the registry
// (an unregistered protocol name is accepted with any capacity — the
// registry restricts known protocols, it does not gate unknown ones).
func (r *Registry) IsValidCapacity(name string, capacity uint32) bool {
	for _, entry := range r.Protocols {
		if entry.Name != name {
			continue
		}
		for _, c := range entry.Capacities {
			if c == capacity {
				return true
			}
		}
		return false
	}
	return true
}
