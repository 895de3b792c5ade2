// SPDX-License-Identifier: LGPL-3.0-or-later

package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eddsa-relay/relay/internal/audit"
	"github.com/eddsa-relay/relay/internal/protocol"
	"github.com/eddsa-relay/relay/internal/transport/ws"
	"github.com/eddsa-relay/relay/internal/wire"
)

func TestRegisterFillsCapacityThenInitializes(t *testing.T) {
	s := New("sess-1", nil)
	require.Equal(t, Empty, s.State())

	id1, err := s.Register(3, "test-protocol")
	require.NoError(t, err)
	require.Equal(t, wire.PeerID(1), id1)
	require.Equal(t, Uninitialized, s.State())

	id2, err := s.Register(3, "test-protocol")
	require.NoError(t, err)
	require.Equal(t, wire.PeerID(2), id2)

	id3, err := s.Register(3, "test-protocol")
	require.NoError(t, err)
	require.Equal(t, wire.PeerID(3), id3)
	require.Equal(t, Initialized, s.State())

	_, err = s.Register(3, "test-protocol")
	require.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestRegisterRejectsCapacityMismatch(t *testing.T) {
	s := New("sess-2", nil)
	_, err := s.Register(3, "test-protocol")
	require.NoError(t, err)

	_, err = s.Register(4, "test-protocol")
	require.ErrorIs(t, err, ErrCapacityMismatch)
}

func TestRelayEnforcesTurnOrder(t *testing.T) {
	s := New("sess-3", nil)
	for i := 0; i < 3; i++ {
		_, err := s.Register(3, "test-protocol")
		require.NoError(t, err)
	}

	_, _, err := s.Relay(2, "payload-from-2")
	require.ErrorIs(t, err, ErrNotYourTurn)

	msgs, complete, err := s.Relay(1, "payload-from-1")
	require.NoError(t, err)
	require.False(t, complete)
	require.Nil(t, msgs)

	msgs, complete, err = s.Relay(2, "payload-from-2")
	require.NoError(t, err)
	require.False(t, complete)
	require.Nil(t, msgs)

	msgs, complete, err = s.Relay(3, "payload-from-3")
	require.NoError(t, err)
	require.True(t, complete)
	require.Len(t, msgs, 3)
	require.Equal(t, wire.PeerID(1), msgs[0].FromID)
	require.Equal(t, wire.PeerID(2), msgs[1].FromID)
	require.Equal(t, wire.PeerID(3), msgs[2].FromID)
}

func TestRelayRedeliveryAfterTurnAdvanceIsIdempotent(t *testing.T) {
	s := New("sess-4", nil)
	for i := 0; i < 2; i++ {
		_, err := s.Register(2, "test-protocol")
		require.NoError(t, err)
	}

	_, _, err := s.Relay(1, "payload-from-1")
	require.NoError(t, err)

	// peer 1 resends after turn has already advanced to peer 2; this must
	// not be rejected as out-of-turn since the payload is already on file.
	_, complete, err := s.Relay(1, "payload-from-1")
	require.NoError(t, err)
	require.False(t, complete)
}

func TestRelayBeforeInitializedFails(t *testing.T) {
	s := New("sess-5", nil)
	_, err := s.Register(2, "test-protocol")
	require.NoError(t, err)

	_, _, err = s.Relay(1, "too early")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestAbortRejectsFurtherActivity(t *testing.T) {
	s := New("sess-6", nil)
	_, err := s.Register(2, "test-protocol")
	require.NoError(t, err)

	s.Abort("peer requested abort")
	require.Equal(t, Aborted, s.State())
	require.Equal(t, "peer requested abort", s.AbortReason())

	_, err = s.Register(2, "test-protocol")
	require.ErrorIs(t, err, ErrAborted)
}

func TestManagerRegisterAssignsFreshSessionID(t *testing.T) {
	m := NewManager(0, nil, nil, nil, nil)
	ctx := context.Background()

	sessID, peer1, err := m.Register(ctx, "", "test-protocol", 2)
	require.NoError(t, err)
	require.NotEmpty(t, sessID)
	require.Equal(t, wire.PeerID(1), peer1)

	sessID2, peer2, err := m.Register(ctx, sessID, "test-protocol", 2)
	require.NoError(t, err)
	require.Equal(t, sessID, sessID2)
	require.Equal(t, wire.PeerID(2), peer2)

	sess, err := m.Get(sessID)
	require.NoError(t, err)
	require.Equal(t, Initialized, sess.State())
}

func TestManagerGetUnknownSession(t *testing.T) {
	m := NewManager(0, nil, nil, nil, nil)
	_, err := m.Get("does-not-exist")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerRejectsInvalidCapacityForKnownProtocol(t *testing.T) {
	reg := &protocol.Registry{Protocols: []protocol.RegistryEntry{
		{Name: "eddsa-keygen", Capacities: []uint32{2, 3}},
	}}
	m := NewManager(0, nil, nil, reg, nil)
	ctx := context.Background()

	_, _, err := m.Register(ctx, "", "eddsa-keygen", 5)
	require.ErrorIs(t, err, ErrInvalidProtocol)
	require.Equal(t, 0, m.Count(), "a rejected first registration must not create a session")
}

func TestManagerAcceptsUnknownProtocolNameWithAnyCapacity(t *testing.T) {
	reg := &protocol.Registry{Protocols: []protocol.RegistryEntry{
		{Name: "eddsa-keygen", Capacities: []uint32{2, 3}},
	}}
	m := NewManager(0, nil, nil, reg, nil)
	ctx := context.Background()

	_, peerID, err := m.Register(ctx, "", "some-other-protocol", 9)
	require.NoError(t, err)
	require.Equal(t, wire.PeerID(1), peerID)
}

func TestSessionRegisterRejectsProtocolMismatch(t *testing.T) {
	s := New("sess-7", nil)
	_, err := s.Register(2, "eddsa-keygen")
	require.NoError(t, err)

	_, err = s.Register(2, "eddsa-sign")
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestManagerRelayRecordsRoundRelayedAndSessionCompleted(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	hub := ws.NewHub(nil)
	m := NewManager(0, nil, auditLog, nil, hub)
	ctx := context.Background()

	sessID, _, err := m.Register(ctx, "", "eddsa-keygen", 2)
	require.NoError(t, err)
	_, _, err = m.Register(ctx, sessID, "eddsa-keygen", 2)
	require.NoError(t, err)

	_, complete, err := m.Relay(ctx, sessID, 1, "payload-from-1")
	require.NoError(t, err)
	require.False(t, complete)

	messages, complete, err := m.Relay(ctx, sessID, 2, "payload-from-2")
	require.NoError(t, err)
	require.True(t, complete)
	require.Len(t, messages, 2)

	count, err := auditLog.CountByType(ctx, audit.EventRoundRelayed)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// eddsa-keygen is a single-round protocol, so its one completed round
	// is also the session's last.
	completedCount, err := auditLog.CountByType(ctx, audit.EventSessionCompleted)
	require.NoError(t, err)
	require.Equal(t, int64(1), completedCount)
}

func TestManagerAbortRecordsAbortedEvent(t *testing.T) {
	auditLog := audit.NewMemoryLog()
	hub := ws.NewHub(nil)
	m := NewManager(0, nil, auditLog, nil, hub)
	ctx := context.Background()

	sessID, _, err := m.Register(ctx, "", "eddsa-keygen", 2)
	require.NoError(t, err)

	require.NoError(t, m.Abort(ctx, sessID, "peer requested abort"))

	events, err := auditLog.ListBySession(ctx, sessID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, audit.EventSessionAborted, events[len(events)-1].Type)
}
