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

package peer

import (
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/eddsa-relay/relay/internal/codec"
	"github.com/eddsa-relay/relay/internal/eddsa"
	"github.com/eddsa-relay/relay/internal/wire"
)

// Signing round indices, matching the order PUBLIC_KEY, COMMITMENT, R_KEY,
// SIGNATURE in which internal/codec's tags are exchanged.
const (
	RoundPublicKey = iota
	RoundCommitment
	RoundRKey
	RoundSignature
	signingRounds
)

// SigningPeer runs the four-round signing variant over a key set already
// established by a prior keygen run.
type SigningPeer struct {
	keys    *eddsa.Keys
	message []byte

	nonce *eddsa.Nonce

	commitments map[wire.PeerID][32]byte
	revealed    map[wire.PeerID]*edwards25519.Point
	aggregateR  *edwards25519.Point

	round int
	sig   *eddsa.Signature
}

// NewSigningPeer creates a signing peer for message, using keys from a
// completed keygen run (keys.AllPublics and keys.APK must already be set).
func NewSigningPeer(keys *eddsa.Keys, message []byte) (*SigningPeer, error) {
	nonce, err := eddsa.GenerateNonce()
	if err != nil {
		return nil, fmt.Errorf("peer: generating signing nonce: %w", err)
	}
	return &SigningPeer{
		keys:        keys,
		message:     message,
		nonce:       nonce,
		commitments: make(map[wire.PeerID][32]byte),
		revealed:    make(map[wire.PeerID]*edwards25519.Point),
	}, nil
}

func (p *SigningPeer) Round() int    { return p.round }
func (p *SigningPeer) Rounds() int   { return signingRounds }
func (p *SigningPeer) Signature() *eddsa.Signature { return p.sig }

// FirstMessage is the PUBLIC_KEY round payload sent before any round is
// collected, reconfirming the peer's identity to the session.
func (p *SigningPeer) FirstMessage() string {
	return codec.EncodeBytes(codec.TagPublicKey, p.keys.Public.Bytes())
}

func (p *SigningPeer) ProcessRound(messages []wire.RelayMessage) (string, bool, error) {
	switch p.round {
	case RoundPublicKey:
		return p.processPublicKeyRound(messages)
	case RoundCommitment:
		return p.processCommitmentRound(messages)
	case RoundRKey:
		return p.processRKeyRound(messages)
	case RoundSignature:
		return p.processSignatureRound(messages)
	default:
		return "", true, fmt.Errorf("peer: signing already finalized")
	}
}

func (p *SigningPeer) processPublicKeyRound(messages []wire.RelayMessage) (string, bool, error) {
	publics, err := decodePublicKeyRound(messages)
	if err != nil {
		return "", false, err
	}
	if len(publics) != len(p.keys.AllPublics) {
		return "", false, fmt.Errorf("peer: signing session participant count %d does not match keygen set %d", len(publics), len(p.keys.AllPublics))
	}
	for id, pub := range publics {
		known, ok := p.keys.AllPublics[id]
		if !ok || string(known.Bytes()) != string(pub.Bytes()) {
			return "", false, fmt.Errorf("peer: signing peer %d public key does not match keygen record", id)
		}
	}

	p.round = RoundCommitment
	payload := codec.Encode(codec.TagCommitment, hex.EncodeToString(p.nonce.Commit.Hash[:]))
	return payload, false, nil
}

func (p *SigningPeer) processCommitmentRound(messages []wire.RelayMessage) (string, bool, error) {
	for _, m := range messages {
		raw, err := codec.DecodeBytes(m.Payload, codec.TagCommitment)
		if err != nil {
			return "", false, fmt.Errorf("peer: decoding commitment from peer %d: %w", m.FromID, err)
		}
		if len(raw) != 32 {
			return "", false, fmt.Errorf("peer: commitment from peer %d has wrong length %d", m.FromID, len(raw))
		}
		var hash [32]byte
		copy(hash[:], raw)
		p.commitments[m.FromID] = hash
	}

	p.round = RoundRKey
	body := append(append([]byte{}, p.nonce.Point.Bytes()...), p.nonce.Commit.Blinder[:]...)
	return codec.EncodeBytes(codec.TagRKey, body), false, nil
}

func (p *SigningPeer) processRKeyRound(messages []wire.RelayMessage) (string, bool, error) {
	points := make([]*edwards25519.Point, 0, len(messages))
	for _, m := range messages {
		raw, err := codec.DecodeBytes(m.Payload, codec.TagRKey)
		if err != nil {
			return "", false, fmt.Errorf("peer: decoding R_KEY from peer %d: %w", m.FromID, err)
		}
		if len(raw) != 64 {
			return "", false, fmt.Errorf("peer: R_KEY from peer %d has wrong length %d", m.FromID, len(raw))
		}
		point, err := eddsa.DecodePoint(raw[:32])
		if err != nil {
			return "", false, fmt.Errorf("peer: invalid R point from peer %d: %w", m.FromID, err)
		}
		var blinder [32]byte
		copy(blinder[:], raw[32:])

		commitHash, ok := p.commitments[m.FromID]
		if !ok {
			return "", false, fmt.Errorf("peer: no commitment on record for peer %d", m.FromID)
		}
		if !eddsa.VerifyCommitment(commitHash, point, blinder) {
			return "", false, fmt.Errorf("peer: peer %d revealed a nonce that does not match its commitment", m.FromID)
		}

		cleared := eddsa.ClearCofactor(point)
		p.revealed[m.FromID] = cleared
		points = append(points, cleared)
	}

	p.aggregateR = eddsa.AggregateR(points)
	partial := eddsa.PartialSign(p.keys, p.nonce.R, p.aggregateR, p.message)

	p.round = RoundSignature
	return codec.EncodeBytes(codec.TagSignature, partial.Bytes()), false, nil
}

func (p *SigningPeer) processSignatureRound(messages []wire.RelayMessage) (string, bool, error) {
	partials := make([]*edwards25519.Scalar, 0, len(messages))
	for _, m := range messages {
		raw, err := codec.DecodeBytes(m.Payload, codec.TagSignature)
		if err != nil {
			return "", false, fmt.Errorf("peer: decoding partial signature from peer %d: %w", m.FromID, err)
		}
		s, err := eddsa.DecodeScalar(raw)
		if err != nil {
			return "", false, fmt.Errorf("peer: invalid partial signature scalar from peer %d: %w", m.FromID, err)
		}
		partials = append(partials, s)
	}

	sig := eddsa.AggregateSignature(p.aggregateR, partials)
	if err := eddsa.Verify(p.keys.APK, p.message, sig); err != nil {
		return "", false, fmt.Errorf("peer: aggregate signature failed verification: %w", err)
	}

	p.sig = sig
	p.round = signingRounds
	return "", true, nil
}
