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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"filippo.io/edwards25519"
)

// KeyArtifact is the on-disk shape of a completed keygen run: the peer's
// long-term secret scalar, its own public point, every peer's public key
// (needed to re-verify a signing session's participant set after a
// restart), and the group's aggregate public key. Written to
// keys<peer_id> in the client's configured keys directory.
type KeyArtifact struct {
	PeerID     uint32            `json:"peer_id"`
	Secret     []byte            `json:"secret"`
	Public     []byte            `json:"public"`
	AllPublics map[uint32][]byte `json:"all_publics"`
	APK        []byte            `json:"apk"`
}

// SignatureArtifact is the on-disk shape of a completed signing run.
// Written to signature<peer_id>.
type SignatureArtifact struct {
	PeerID  uint32 `json:"peer_id"`
	Message []byte `json:"message"`
	R       []byte `json:"r"`
	S       []byte `json:"s"`
}

// WriteKeyArtifact persists k to <dir>/keys<peer_id>.
func WriteKeyArtifact(dir string, k *Keys) error {
	allPublics := make(map[uint32][]byte, len(k.AllPublics))
	for id, p := range k.AllPublics {
		allPublics[id] = p.Bytes()
	}
	artifact := KeyArtifact{
		PeerID:     k.PeerID,
		Secret:     k.Secret.Bytes(),
		Public:     k.Public.Bytes(),
		AllPublics: allPublics,
		APK:        k.APK.Bytes(),
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("eddsa: marshal key artifact: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("keys%d", k.PeerID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("eddsa: write key artifact %s: %w", path, err)
	}
	return nil
}

// ReadKeyArtifact loads a previously persisted key artifact for peerID from
// dir, decoding its scalar/point fields.
func ReadKeyArtifact(dir string, peerID uint32) (*Keys, error) {
	path := filepath.Join(dir, fmt.Sprintf("keys%d", peerID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("eddsa: read key artifact %s: %w", path, err)
	}
	var artifact KeyArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("eddsa: parse key artifact %s: %w", path, err)
	}

	secret, err := DecodeScalar(artifact.Secret)
	if err != nil {
		return nil, fmt.Errorf("eddsa: decode secret in %s: %w", path, err)
	}
	public, err := DecodePoint(artifact.Public)
	if err != nil {
		return nil, fmt.Errorf("eddsa: decode public in %s: %w", path, err)
	}
	apk, err := DecodePoint(artifact.APK)
	if err != nil {
		return nil, fmt.Errorf("eddsa: decode apk in %s: %w", path, err)
	}
	allPublics := make(map[uint32]*edwards25519.Point, len(artifact.AllPublics))
	for id, raw := range artifact.AllPublics {
		p, err := DecodePoint(raw)
		if err != nil {
			return nil, fmt.Errorf("eddsa: decode public for peer %d in %s: %w", id, path, err)
		}
		allPublics[id] = p
	}

	return &Keys{
		PeerID:     artifact.PeerID,
		Secret:     secret,
		Public:     public,
		AllPublics: allPublics,
		APK:        apk,
	}, nil
}

// WriteSignatureArtifact persists sig to <dir>/signature<peer_id>.
func WriteSignatureArtifact(dir string, peerID uint32, message []byte, sig *Signature) error {
	artifact := SignatureArtifact{
		PeerID:  peerID,
		Message: message,
		R:       sig.R.Bytes(),
		S:       sig.S.Bytes(),
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("eddsa: marshal signature artifact: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("signature%d", peerID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("eddsa: write signature artifact %s: %w", path, err)
	}
	return nil
}

// ReadSignatureArtifact loads a previously persisted signature artifact.
func ReadSignatureArtifact(dir string, peerID uint32) (*SignatureArtifact, *Signature, error) {
	path := filepath.Join(dir, fmt.Sprintf("signature%d", peerID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("eddsa: read signature artifact %s: %w", path, err)
	}
	var artifact SignatureArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, nil, fmt.Errorf("eddsa: parse signature artifact %s: %w", path, err)
	}

	R, err := DecodePoint(artifact.R)
	if err != nil {
		return nil, nil, fmt.Errorf("eddsa: decode R in %s: %w", path, err)
	}
	s, err := DecodeScalar(artifact.S)
	if err != nil {
		return nil, nil, fmt.Errorf("eddsa: decode S in %s: %w", path, err)
	}

	return &artifact, &Signature{R: R, S: s}, nil
}
