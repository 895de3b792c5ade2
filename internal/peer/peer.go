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

// Package peer implements the two peer-side protocol variants that run atop
// a relay session: keygen (a single PUBLIC_KEY round) and signing (the four
// round PUBLIC_KEY / COMMITMENT / R_KEY / SIGNATURE sequence). Both are
// driven by internal/client's round-retry loop; neither variant talks to
// the transport directly.
package peer

import (
	"fmt"

	"filippo.io/edwards25519"

	"github.com/eddsa-relay/relay/internal/codec"
	"github.com/eddsa-relay/relay/internal/eddsa"
	"github.com/eddsa-relay/relay/internal/wire"
)

// Protocol names this module's two peer variants register under — they
// must match the relay's protocol registry (protocols.json) and the
// protocol name carried on wire.RegisterMessage.
const (
	ProtocolKeygen  = "eddsa-keygen"
	ProtocolSigning = "eddsa-sign"
)

// RoundsForProtocol returns how many rounds the named protocol variant
// runs, without needing key material to construct an actual Peer. The
// relay side uses this to recognize a ceremony's last round for lifecycle
// bookkeeping; it never runs the protocol itself. ok is false for any name
// other than the two variants this package implements.
func RoundsForProtocol(protocolName string) (rounds int, ok bool) {
	switch protocolName {
	case ProtocolKeygen:
		return 1, true
	case ProtocolSigning:
		return signingRounds, true
	default:
		return 0, false
	}
}

// Peer advances one protocol variant one round at a time. ProcessRound is
// called once per round with every peer's message for that round (always
// including the caller's own, since the relay echoes every message back)
// and returns the payload to publish for the next round, or done=true once
// the protocol has produced its final artifact.
type Peer interface {
	// Round returns the 0-based round this peer is currently waiting to
	// process.
	Round() int

	// Rounds returns the total number of rounds this protocol variant
	// runs (1 for keygen, 4 for signing).
	Rounds() int

	// ProcessRound consumes every peer's payload for the current round
	// and returns this peer's payload for the next round. It returns
	// done=true after processing the final round, at which point the
	// peer's result (APK or signature) is ready to read from the
	// concrete type and persist via internal/eddsa artifact helpers.
	ProcessRound(messages []wire.RelayMessage) (nextPayload string, done bool, err error)
}

// ProtocolDataManager accumulates per-round messages for a peer-side
// protocol run and reports which peers are still missing, mirroring the
// relay's own wire.StoredMessages bookkeeping but scoped to a single
// client.
type ProtocolDataManager struct {
	capacity uint32
	rounds   []*wire.StoredMessages
}

// NewProtocolDataManager creates a manager for a protocol with the given
// number of rounds and session capacity.
func NewProtocolDataManager(rounds int, capacity uint32) *ProtocolDataManager {
	pdm := &ProtocolDataManager{capacity: capacity, rounds: make([]*wire.StoredMessages, rounds)}
	for i := range pdm.rounds {
		pdm.rounds[i] = wire.NewStoredMessages(capacity)
	}
	return pdm
}

// Update records a peer's message for the given round.
func (p *ProtocolDataManager) Update(round int, peer wire.PeerID, payload string) {
	p.rounds[round].Update(peer, payload)
}

// Complete reports whether every peer has contributed a message for round.
func (p *ProtocolDataManager) Complete(round int) bool {
	return p.rounds[round].Count() == int(p.capacity)
}

// Missing returns the peers still missing from round.
func (p *ProtocolDataManager) Missing(round int) []wire.PeerID {
	return p.rounds[round].Missing()
}

// Messages returns every message collected for round, sorted by peer id.
func (p *ProtocolDataManager) Messages(round int) []wire.RelayMessage {
	return p.rounds[round].MessagesVec()
}

// decodePublicKeyRound decodes a PUBLIC_KEY round into a peer-id-keyed
// point map, clearing the cofactor on every point since it arrived over
// the wire from an untrusted peer.
func decodePublicKeyRound(messages []wire.RelayMessage) (map[uint32]*edwards25519.Point, error) {
	out := make(map[uint32]*edwards25519.Point, len(messages))
	for _, m := range messages {
		raw, err := codec.DecodeBytes(m.Payload, codec.TagPublicKey)
		if err != nil {
			return nil, fmt.Errorf("peer: decoding public key from peer %d: %w", m.FromID, err)
		}
		point, err := eddsa.DecodePoint(raw)
		if err != nil {
			return nil, fmt.Errorf("peer: invalid public key point from peer %d: %w", m.FromID, err)
		}
		out[m.FromID] = eddsa.ClearCofactor(point)
	}
	return out, nil
}
