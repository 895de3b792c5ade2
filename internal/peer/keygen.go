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
	"fmt"

	"github.com/eddsa-relay/relay/internal/codec"
	"github.com/eddsa-relay/relay/internal/eddsa"
	"github.com/eddsa-relay/relay/internal/wire"
)

// KeygenPeer runs the single-round keygen variant: every peer publishes
// its public key and, once every peer's key has been collected, computes
// the aggregate public key locally.
type KeygenPeer struct {
	keys *eddsa.Keys
	done bool
}

// NewKeygenPeer wraps a freshly generated key pair in a KeygenPeer ready to
// drive through internal/client's round loop.
func NewKeygenPeer(keys *eddsa.Keys) *KeygenPeer {
	return &KeygenPeer{keys: keys}
}

func (p *KeygenPeer) Round() int {
	if p.done {
		return 1
	}
	return 0
}

func (p *KeygenPeer) Rounds() int { return 1 }

// FirstMessage is the payload a keygen peer sends before any round is
// collected: its own public key.
func (p *KeygenPeer) FirstMessage() string {
	return codec.EncodeBytes(codec.TagPublicKey, p.keys.Public.Bytes())
}

func (p *KeygenPeer) ProcessRound(messages []wire.RelayMessage) (string, bool, error) {
	if p.done {
		return "", true, fmt.Errorf("peer: keygen already finalized")
	}
	publics, err := decodePublicKeyRound(messages)
	if err != nil {
		return "", false, err
	}
	p.keys.Finalize(publics)
	p.done = true
	return "", true, nil
}

// Keys returns the finalized key material, valid only after ProcessRound
// has returned done=true.
func (p *KeygenPeer) Keys() *eddsa.Keys {
	return p.keys
}
