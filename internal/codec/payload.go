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

// Package codec implements the TAG:::BODY message payload framing used on
// every relay round. The framing is historical (carried over from the
// proof-of-concept relay this protocol descends from) and is kept
// byte-compatible: a tagged string, not a structured envelope.
package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Tag identifies which round a payload belongs to.
type Tag string

const (
	TagPublicKey  Tag = "PUBLIC_KEY"
	TagCommitment Tag = "COMMITMENT"
	TagRKey       Tag = "R_KEY"
	TagSignature  Tag = "SIGNATURE"
)

// Delimiter separates the tag from the body in an encoded payload.
const Delimiter = ":::"

var validTags = map[Tag]struct{}{
	TagPublicKey:  {},
	TagCommitment: {},
	TagRKey:       {},
	TagSignature:  {},
}

// Valid reports whether t is one of the four recognized round tags.
func (t Tag) Valid() bool {
	_, ok := validTags[t]
	return ok
}

// Payload is a decoded TAG:::BODY message.
type Payload struct {
	Tag  Tag
	Body string
}

// Encode renders a payload back to its wire string.
func Encode(tag Tag, body string) string {
	return string(tag) + Delimiter + body
}

// String implements fmt.Stringer.
func (p Payload) String() string {
	return Encode(p.Tag, p.Body)
}

// Decode splits a raw wire string into its tag and body. It returns an
// error if the delimiter is missing or the tag is not one of the four
// recognized round tags.
func Decode(raw string) (Payload, error) {
	idx := strings.Index(raw, Delimiter)
	if idx < 0 {
		return Payload{}, fmt.Errorf("codec: missing %q delimiter in payload", Delimiter)
	}
	tag := Tag(raw[:idx])
	if !tag.Valid() {
		return Payload{}, fmt.Errorf("codec: unrecognized tag %q", tag)
	}
	return Payload{Tag: tag, Body: raw[idx+len(Delimiter):]}, nil
}

// EncodeBytes hex-encodes binary data and wraps it as a TAG:::BODY
// payload. Every round payload carrying curve points, scalars or hashes
// uses this rather than raw bytes, since the wire schema is JSON and
// payload bodies must be valid strings.
func EncodeBytes(tag Tag, data []byte) string {
	return Encode(tag, hex.EncodeToString(data))
}

// DecodeBytes decodes a payload produced by EncodeBytes, verifying the tag
// matches want.
func DecodeBytes(raw string, want Tag) ([]byte, error) {
	p, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if p.Tag != want {
		return nil, fmt.Errorf("codec: expected tag %s, got %s", want, p.Tag)
	}
	data, err := hex.DecodeString(p.Body)
	if err != nil {
		return nil, fmt.Errorf("codec: invalid hex body for tag %s: %w", want, err)
	}
	return data, nil
}
