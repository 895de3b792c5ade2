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

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/metrics"
	"github.com/eddsa-relay/relay/internal/peer"
	"github.com/eddsa-relay/relay/internal/wire"
)

// Config bounds the session driver's retry behavior, matching the
// proof-of-concept client's defaults (MAX_RETRY=512, RETRY_TIMEOUT=200ms).
type Config struct {
	MaxRetry uint32
	Retry    time.Duration
}

// DefaultConfig returns the protocol's documented retry defaults.
func DefaultConfig() Config {
	return Config{MaxRetry: 512, Retry: 200 * time.Millisecond}
}

// Session drives a peer.Peer through registration and every protocol round
// against a relay over Transport.
type Session struct {
	transport Transport
	cfg       Config
	log       logger.Logger

	peerID    wire.PeerID
	capacity  uint32
	sessionID string
}

// NewSession creates a session driver bound to transport.
func NewSession(transport Transport, cfg Config, log logger.Logger) *Session {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	return &Session{transport: transport, cfg: cfg, log: log}
}

// Register requests a peer id for a session of the given protocol and
// capacity. sessionID joins an existing registering session; pass "" to
// start a new one, in which case the relay assigns and returns a fresh
// session id. The relay rejects the first registration of a new session
// outright if protocolName is not valid for capacity in its registry.
func (s *Session) Register(ctx context.Context, protocolName string, capacity uint32, sessionID string) (wire.PeerID, string, error) {
	msg := wire.ClientMessage{
		SessionID: sessionID,
		Register:  &wire.RegisterMessage{Capacity: capacity, SessionID: sessionID, Protocol: protocolName},
	}
	resp, err := s.transport.Exchange(ctx, msg)
	if err != nil {
		return 0, "", fmt.Errorf("client: register: %w", err)
	}
	if resp.Type == wire.ServerMessageError {
		return 0, "", fmt.Errorf("client: register rejected: %s", resp.Error)
	}
	if resp.Type != wire.ServerMessageRegisterResponse {
		return 0, "", fmt.Errorf("client: unexpected register response type %s", resp.Type)
	}
	s.peerID = resp.PeerID
	s.capacity = capacity
	s.sessionID = resp.SessionID
	return resp.PeerID, resp.SessionID, nil
}

// Abort notifies the relay this peer has abandoned the session.
func (s *Session) Abort(ctx context.Context) error {
	_, err := s.transport.Exchange(ctx, wire.ClientMessage{
		SessionID: s.sessionID,
		Abort:     &wire.AbortMessage{PeerID: s.peerID},
	})
	return err
}

// Run drives p through every round of its protocol, starting from
// firstPayload (the payload produced before any round has been collected),
// and returns once p reports done.
func (s *Session) Run(ctx context.Context, p peer.Peer, firstPayload string) error {
	payload := firstPayload

	for round := 0; round < p.Rounds(); round++ {
		start := time.Now()
		messages, err := s.sendAndCollect(ctx, payload, round)
		if err != nil {
			return fmt.Errorf("client: round %d: %w", round, err)
		}
		metrics.RoundDuration.WithLabelValues(fmt.Sprintf("%d", round)).Observe(time.Since(start).Seconds())

		next, done, err := p.ProcessRound(messages)
		if err != nil {
			return fmt.Errorf("client: round %d processing: %w", round, err)
		}
		if done {
			return nil
		}
		payload = next
	}
	return nil
}

// sendAndCollect publishes payload for round and polls the relay until
// every peer's message for that round has been observed, retrying on
// transient wire errors by resending the same payload — the relay
// tolerates redelivery of the same (round, peer) payload, per
// wire.StoredMessages.Update's idempotence.
func (s *Session) sendAndCollect(ctx context.Context, payload string, round int) ([]wire.RelayMessage, error) {
	msg := wire.ClientMessage{
		SessionID:    s.sessionID,
		RelayMessage: &wire.RelayMessage{FromID: s.peerID, Payload: payload},
	}

	for attempt := uint32(0); attempt < s.cfg.MaxRetry; attempt++ {
		resp, err := s.transport.Exchange(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("exchange failed: %w", err)
		}

		switch resp.Type {
		case wire.ServerMessageRelayed:
			metrics.MessagesProcessed.WithLabelValues("round", "success").Inc()
			return resp.Messages, nil
		case wire.ServerMessageNoMessages:
			// fall through to retry after backoff
		case wire.ServerMessageAbort:
			return nil, fmt.Errorf("relay aborted the session")
		case wire.ServerMessageError:
			if isTransient(resp.Error) {
				metrics.TransientErrors.WithLabelValues(resp.Error).Inc()
				// resend is implicit: the loop retries with the same msg
			} else {
				metrics.MessagesProcessed.WithLabelValues("round", "failure").Inc()
				return nil, fmt.Errorf("relay error: %s", resp.Error)
			}
		default:
			return nil, fmt.Errorf("unexpected server message type %s", resp.Type)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.Retry):
		}
	}

	metrics.RetriesExhausted.Inc()
	s.log.Error("round retry budget exhausted", logger.Int("round", round), logger.Int("max_retry", int(s.cfg.MaxRetry)))
	return nil, fmt.Errorf("exhausted %d retries waiting for round %d", s.cfg.MaxRetry, round)
}

// isTransient reports whether a wire error string indicates a recoverable
// condition the client should resolve by resending its last message,
// rather than aborting.
func isTransient(errStr string) bool {
	switch errStr {
	case wire.ErrNotYourTurn, wire.ErrStateNotInitialized:
		return true
	default:
		return false
	}
}
