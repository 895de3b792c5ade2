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

// Package keys implements relaycrypto.KeyPair for the one key type the
// relay protocol ever uses: Ed25519.
package keys

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	relaycrypto "github.com/eddsa-relay/relay/crypto"
)

// handshakeIdentity is the relaycrypto.KeyPair backing every peer's advisory
// identity: a standalone Ed25519 key a peer CLI generates on each run,
// logged alongside the relay-assigned peer id, and never checked by the
// relay itself. It carries no relationship to the per-session nonce scalars
// or the group's aggregate public key that internal/eddsa computes.
type handshakeIdentity struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	id         string
}

// GenerateEd25519KeyPair generates a fresh advisory identity. The relay
// protocol has no notion of key registration or certificate-backed
// identity; this exists purely so a peer has something stable-looking to
// log and a human operator can eyeball two peers as distinct across runs.
func GenerateEd25519KeyPair() (relaycrypto.KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: generate ed25519 identity: %w", err)
	}

	return &handshakeIdentity{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         fingerprint(publicKey),
	}, nil
}

// fingerprint derives a short, display-friendly label from a public key: a
// truncated SHA-256 digest, hex-encoded, prefixed so it reads unambiguously
// in logs next to a relay-assigned numeric peer id.
func fingerprint(publicKey ed25519.PublicKey) string {
	sum := sha256.Sum256(publicKey)
	return "ed25519:" + hex.EncodeToString(sum[:8])
}

// PublicKey returns the identity's public key.
func (k *handshakeIdentity) PublicKey() crypto.PublicKey {
	return k.publicKey
}

// PrivateKey returns the identity's private key.
func (k *handshakeIdentity) PrivateKey() crypto.PrivateKey {
	return k.privateKey
}

// Type reports this identity as Ed25519, the relay protocol's only
// supported key type.
func (k *handshakeIdentity) Type() relaycrypto.KeyType {
	return relaycrypto.KeyTypeEd25519
}

// Sign signs message with the identity's private key.
func (k *handshakeIdentity) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.privateKey, message), nil
}

// Verify checks signature against message under the identity's public key.
func (k *handshakeIdentity) Verify(message, signature []byte) error {
	if !ed25519.Verify(k.publicKey, message, signature) {
		return relaycrypto.ErrInvalidSignature
	}
	return nil
}

// ID returns the identity's display fingerprint.
func (k *handshakeIdentity) ID() string {
	return k.id
}
