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

// Package crypto declares the long-term peer identity key abstraction used
// by the relay CLIs. The actual implementation lives in the subpackage:
//   - crypto/keys: Ed25519 key pair generation
//
// The aggregate-signature scalar/point arithmetic used by the protocol
// itself lives in internal/eddsa, not here: that math operates on
// per-session ephemeral values, never on the long-term identity key.
package crypto
