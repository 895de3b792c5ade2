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

package eddsa

import (
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"sort"
	"time"

	"filippo.io/edwards25519"

	"github.com/eddsa-relay/relay/internal/metrics"
)

// Keys is one peer's long-term aggregate-signature key material: its own
// secret/public scalar-point pair, plus (once keygen completes) every
// peer's public key and the group's aggregate public key.
type Keys struct {
	Secret *edwards25519.Scalar
	Public *edwards25519.Point

	PeerID     uint32
	AllPublics map[uint32]*edwards25519.Point // by peer id, including self
	APK        *edwards25519.Point
}

// GenerateKeys produces a fresh keygen seed for peerID: an Ed25519-style
// clamped secret scalar and its public point. The round-0 keygen payload
// is Public.Bytes().
func GenerateKeys(peerID uint32) (*Keys, error) {
	start := time.Now()
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		metrics.EddsaErrors.WithLabelValues("keygen", "rand_read").Inc()
		return nil, fmt.Errorf("eddsa: reading random seed: %w", err)
	}
	secret := clampedScalarFromSeed(seed[:])
	public := edwards25519.NewIdentityPoint().ScalarBaseMult(secret)
	metrics.EddsaOperations.WithLabelValues("keygen").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("keygen").Observe(time.Since(start).Seconds())
	return &Keys{
		Secret: secret,
		Public: public,
		PeerID: peerID,
	}, nil
}

// clampedScalarFromSeed applies the standard Ed25519 clamping to an
// expanded SHA-512 digest of a seed, then reduces mod L.
func clampedScalarFromSeed(seed []byte) *edwards25519.Scalar {
	h := sha512.Sum512(seed)
	digest := h[:32]
	digest[0] &= 248
	digest[31] &= 127
	digest[31] |= 64
	// Clamping sets bit 254, so the clamped value always exceeds L;
	// SetUniformBytes reduces it mod L.
	padded := make([]byte, 64)
	copy(padded, digest)
	s, err := edwards25519.NewScalar().SetUniformBytes(padded)
	if err != nil {
		panic(fmt.Sprintf("eddsa: clamping seed: %v", err))
	}
	return s
}

// AggregationCoefficient computes peer id's key-aggregation coefficient
// a_i = H(L || P_i) where L is the concatenation of every peer's public
// key, ordered canonically by ascending peer id.
//
// Peer id order, not public key byte order, is the chosen canonicalization:
// both are equally valid (every peer must agree on *some* fixed order, and
// any permutation yields a sound aggregate key). Ids are assigned at
// registration and never renumbered mid-session, so every peer derives the
// same order. The coefficient hashes the full ordered list, so it can only
// be computed once every peer's key has been collected.
func AggregationCoefficient(ordered []*edwards25519.Point, self *edwards25519.Point) *edwards25519.Scalar {
	concat := make([]byte, 0, 32*len(ordered))
	for _, p := range ordered {
		concat = append(concat, p.Bytes()...)
	}
	return HashToScalar(concat, self.Bytes())
}

// OrderedPublics returns the peers' public points sorted by ascending peer
// id, the canonical order used by AggregationCoefficient and by aggregate
// public key computation.
func OrderedPublics(publics map[uint32]*edwards25519.Point) []*edwards25519.Point {
	ids := make([]uint32, 0, len(publics))
	for id := range publics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*edwards25519.Point, len(ids))
	for i, id := range ids {
		out[i] = publics[id]
	}
	return out
}

// AggregatePublicKey computes APK = sum_i(a_i * P_i) over every peer's
// public key, using the canonical peer-id ordering for coefficients.
func AggregatePublicKey(publics map[uint32]*edwards25519.Point) *edwards25519.Point {
	ordered := OrderedPublics(publics)
	apk := edwards25519.NewIdentityPoint()
	for _, p := range ordered {
		a := AggregationCoefficient(ordered, p)
		apk.Add(apk, edwards25519.NewIdentityPoint().ScalarMult(a, p))
	}
	return apk
}

// Finalize completes keygen once every peer's public key has been
// collected: it stores the set and computes the aggregate public key.
func (k *Keys) Finalize(publics map[uint32]*edwards25519.Point) {
	start := time.Now()
	k.AllPublics = publics
	k.APK = AggregatePublicKey(publics)
	metrics.EddsaOperations.WithLabelValues("aggregate_key").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("aggregate_key").Observe(time.Since(start).Seconds())
}
