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

// Package eddsa implements the Bellare-Neven style aggregate-signature
// scalar/point arithmetic: cofactor clearing on received curve points,
// key-aggregation coefficients, the commit-reveal nonce scheme, and partial
// signature generation and combination. All arithmetic runs on
// filippo.io/edwards25519; this package never does its own modular
// reduction by hand.
package eddsa

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// eightInverse is the modular inverse of 8 mod the group order L. Clearing
// the cofactor of an untrusted incoming point P is done as
// (P * 8) * eightInverse: multiplying by 8 first kills any component of P
// in the 8-torsion subgroup (the attack this guards against), and the
// second multiplication restores scale for points that were already in the
// prime-order subgroup.
var eightInverse = mustEightInverse()

func mustEightInverse() *edwards25519.Scalar {
	eight := edwards25519.NewScalar()
	buf := make([]byte, 32)
	buf[0] = 8
	if _, err := eight.SetCanonicalBytes(buf); err != nil {
		panic(fmt.Sprintf("eddsa: constructing scalar 8: %v", err))
	}
	inv := edwards25519.NewScalar()
	return inv.Invert(eight)
}

// ClearCofactor returns a point equal to p with any small-subgroup
// component removed. It is applied to every point received from a peer
// over the wire (public keys and revealed nonce points R)
// before it is used in any further arithmetic.
func ClearCofactor(p *edwards25519.Point) *edwards25519.Point {
	scaled := edwards25519.NewIdentityPoint().MultByCofactor(p)
	return edwards25519.NewIdentityPoint().ScalarMult(eightInverse, scaled)
}

// HashToScalar reduces a SHA-512 digest of data into a scalar mod L, the
// same reduction used for both the key-aggregation coefficient and the
// Fiat-Shamir challenge.
func HashToScalar(data ...[]byte) *edwards25519.Scalar {
	h := sha512.New()
	for _, d := range data {
		h.Write(d)
	}
	sum := h.Sum(nil)
	s, err := edwards25519.NewScalar().SetUniformBytes(sum)
	if err != nil {
		// SetUniformBytes only fails on a length mismatch, impossible
		// here since sha512.Size == 64.
		panic(fmt.Sprintf("eddsa: reducing hash to scalar: %v", err))
	}
	return s
}

// DecodePoint parses a 32-byte compressed point, rejecting malformed
// encodings. Callers that received the bytes from the network should then
// apply ClearCofactor.
func DecodePoint(b []byte) (*edwards25519.Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("eddsa: decode point: %w", err)
	}
	return p, nil
}

// DecodeScalar parses a 32-byte little-endian scalar, requiring it to
// already be reduced mod L.
func DecodeScalar(b []byte) (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("eddsa: decode scalar: %w", err)
	}
	return s, nil
}
