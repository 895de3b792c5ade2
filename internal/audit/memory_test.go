// SPDX-License-Identifier: LGPL-3.0-or-later

package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryLogRecordsAndListsBySession(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()

	require.NoError(t, log.Record(ctx, Event{SessionID: "a", Type: EventSessionCreated}))
	require.NoError(t, log.Record(ctx, Event{SessionID: "a", Type: EventPeerRegistered, PeerID: 1}))
	require.NoError(t, log.Record(ctx, Event{SessionID: "b", Type: EventSessionCreated}))

	events, err := log.ListBySession(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, EventSessionCreated, events[0].Type)
	require.Equal(t, EventPeerRegistered, events[1].Type)
	require.Equal(t, uint32(1), events[1].PeerID)

	count, err := log.CountByType(ctx, EventSessionCreated)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestMemoryLogDetailIsCopiedNotAliased(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()

	detail := map[string]interface{}{"reason": "peer disconnected"}
	require.NoError(t, log.Record(ctx, Event{SessionID: "a", Type: EventSessionAborted, Detail: detail}))
	detail["reason"] = "mutated after recording"

	events, err := log.ListBySession(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "peer disconnected", events[0].Detail["reason"])
}
