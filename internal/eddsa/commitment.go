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
	"fmt"
	"time"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"

	"github.com/eddsa-relay/relay/internal/metrics"
)

// Commitment is a hash-commitment to a nonce point R, opened in the
// following round by revealing R and the blinding factor.
type Commitment struct {
	Hash    [32]byte
	Blinder [32]byte
}

// Nonce is a peer's ephemeral per-signing-session secret/public pair. r
// must never be reused across sessions: reuse of r for two different
// messages leaks the long-term secret scalar.
type Nonce struct {
	R       *edwards25519.Scalar
	Point   *edwards25519.Point
	Commit  Commitment
}

// GenerateNonce creates a fresh ephemeral nonce and its commitment.
func GenerateNonce() (*Nonce, error) {
	start := time.Now()
	var seed [64]byte
	if _, err := rand.Read(seed[:]); err != nil {
		metrics.EddsaErrors.WithLabelValues("nonce", "rand_read").Inc()
		return nil, fmt.Errorf("eddsa: reading nonce seed: %w", err)
	}
	r, err := edwards25519.NewScalar().SetUniformBytes(seed[:])
	if err != nil {
		metrics.EddsaErrors.WithLabelValues("nonce", "scalar_reduce").Inc()
		return nil, fmt.Errorf("eddsa: reducing nonce seed: %w", err)
	}
	R := edwards25519.NewIdentityPoint().ScalarBaseMult(r)

	var blinder [32]byte
	if _, err := rand.Read(blinder[:]); err != nil {
		metrics.EddsaErrors.WithLabelValues("nonce", "rand_read").Inc()
		return nil, fmt.Errorf("eddsa: reading blinder: %w", err)
	}

	metrics.EddsaOperations.WithLabelValues("nonce").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("nonce").Observe(time.Since(start).Seconds())
	return &Nonce{
		R:     r,
		Point: R,
		Commit: Commitment{
			Hash:    commitHash(R, blinder),
			Blinder: blinder,
		},
	}, nil
}

// commitHash computes blake2b-256(R || blinder), the value published in
// the COMMITMENT round. Binding the blinder prevents a peer from searching
// for a second R that hashes to the same commitment.
func commitHash(R *edwards25519.Point, blinder [32]byte) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("eddsa: blake2b-256 init: %v", err))
	}
	h.Write(R.Bytes())
	h.Write(blinder[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// VerifyCommitment checks that R and blinder open commitment hash. Called
// during the R_KEY round once a peer reveals the nonce it committed to in
// the COMMITMENT round.
func VerifyCommitment(commitHashValue [32]byte, R *edwards25519.Point, blinder [32]byte) bool {
	got := commitHash(R, blinder)
	ok := got == commitHashValue
	if !ok {
		metrics.EddsaErrors.WithLabelValues("commitment", "mismatch").Inc()
	}
	return ok
}
