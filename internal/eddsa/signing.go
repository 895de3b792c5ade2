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
	"bytes"
	"crypto/ed25519"
	"fmt"
	"time"

	"filippo.io/edwards25519"

	"github.com/eddsa-relay/relay/internal/metrics"
)

// Signature is a completed aggregate EdDSA signature: identical in shape to
// a plain Ed25519 signature, verifiable with crypto/ed25519.Verify against
// the aggregate public key.
type Signature struct {
	R *edwards25519.Point
	S *edwards25519.Scalar
}

// Bytes returns the standard 64-byte Ed25519 signature encoding (R || S).
func (sig *Signature) Bytes() []byte {
	out := make([]byte, 64)
	copy(out[:32], sig.R.Bytes())
	copy(out[32:], sig.S.Bytes())
	return out
}

// Challenge computes the Fiat-Shamir challenge c = H(R || APK || message)
// used by both partial signing and final verification.
func Challenge(R, apk *edwards25519.Point, message []byte) *edwards25519.Scalar {
	return HashToScalar(R.Bytes(), apk.Bytes(), message)
}

// PartialSign computes peer's contribution to the aggregate signature:
//
//	s_i = r_i + c * a_i * x_i   (mod L)
//
// where r_i is the peer's ephemeral nonce scalar, c is the shared
// challenge over the aggregate nonce point R, a_i is the peer's
// key-aggregation coefficient, and x_i is its long-term secret scalar.
func PartialSign(k *Keys, nonceScalar *edwards25519.Scalar, aggregateR *edwards25519.Point, message []byte) *edwards25519.Scalar {
	start := time.Now()
	ordered := OrderedPublics(k.AllPublics)
	a := AggregationCoefficient(ordered, k.Public)
	c := Challenge(aggregateR, k.APK, message)

	term := edwards25519.NewScalar().Multiply(c, a)
	term.Multiply(term, k.Secret)
	s := edwards25519.NewScalar().Add(nonceScalar, term)

	metrics.EddsaOperations.WithLabelValues("partial_sign").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("partial_sign").Observe(time.Since(start).Seconds())
	return s
}

// AggregateR sums every peer's revealed (cofactor-cleared) nonce point.
func AggregateR(points []*edwards25519.Point) *edwards25519.Point {
	R := edwards25519.NewIdentityPoint()
	for _, p := range points {
		R.Add(R, p)
	}
	return R
}

// AggregateSignature sums every peer's partial scalar into the final
// signature scalar and pairs it with the aggregate nonce point.
func AggregateSignature(aggregateR *edwards25519.Point, partials []*edwards25519.Scalar) *Signature {
	start := time.Now()
	s := edwards25519.NewScalar()
	for _, p := range partials {
		s.Add(s, p)
	}
	metrics.EddsaOperations.WithLabelValues("aggregate_signature").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("aggregate_signature").Observe(time.Since(start).Seconds())
	return &Signature{R: aggregateR, S: s}
}

// Verify checks sig against message under the aggregate public key apk by
// evaluating the Ed25519 verification equation S·B == R + c·APK directly
// on curve points. VerifyStandard performs the same check through
// crypto/ed25519.Verify.
func Verify(apk *edwards25519.Point, message []byte, sig *Signature) error {
	start := time.Now()
	c := Challenge(sig.R, apk, message)

	lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(sig.S)
	rhs := edwards25519.NewIdentityPoint().ScalarMult(c, apk)
	rhs.Add(rhs, sig.R)

	if !bytes.Equal(lhs.Bytes(), rhs.Bytes()) {
		metrics.EddsaErrors.WithLabelValues("verify", "bad_signature").Inc()
		return fmt.Errorf("eddsa: signature verification failed")
	}
	metrics.EddsaOperations.WithLabelValues("verify").Inc()
	metrics.EddsaOperationDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return nil
}

// VerifyStandard re-encodes apk and sig as a standard Ed25519 public key
// and signature and checks them with crypto/ed25519.Verify, confirming the
// aggregate signature is indistinguishable from a single-signer one to any
// ordinary Ed25519 verifier.
func VerifyStandard(apk *edwards25519.Point, message []byte, sig *Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(apk.Bytes()), message, sig.Bytes())
}
