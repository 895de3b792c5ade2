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

// Package client implements the peer-side session driver: registration,
// the per-round send/poll/merge loop, and transient-error retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eddsa-relay/relay/internal/wire"
)

// Transport sends a ClientMessage to the relay and returns its
// ServerMessage reply. HTTPTransport below is the concrete implementation.
type Transport interface {
	Exchange(ctx context.Context, msg wire.ClientMessage) (wire.ServerMessage, error)
}

// HTTPTransport implements Transport over a plain HTTP/JSON POST, mirroring
// the request/response shape the relay's transport contract names in the
// specification's external interfaces but does not itself mandate a
// framing — this client speaks JSON over HTTP to a single /relay endpoint.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a client transport pointed at a relay server's
// base URL (e.g. "http://127.0.0.1:8765").
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Exchange(ctx context.Context, msg wire.ClientMessage) (wire.ServerMessage, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return wire.ServerMessage{}, fmt.Errorf("client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/relay", bytes.NewReader(body))
	if err != nil {
		return wire.ServerMessage{}, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return wire.ServerMessage{}, fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wire.ServerMessage{}, fmt.Errorf("client: read response: %w", err)
	}

	var out wire.ServerMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return wire.ServerMessage{}, fmt.Errorf("client: parse response %q: %w", data, err)
	}
	return out, nil
}
