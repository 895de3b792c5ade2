// SPDX-License-Identifier: LGPL-3.0-or-later

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredMessagesUpdateReportsFirstContributionOnly(t *testing.T) {
	sm := NewStoredMessages(3)
	assert.True(t, sm.Update(1, "PUBLIC_KEY:::aaaa"), "first contribution from this peer")
	assert.False(t, sm.Update(1, "PUBLIC_KEY:::aaaa"), "redelivery of the same payload is not a first contribution")
	assert.Equal(t, 1, sm.Count())
}

func TestStoredMessagesUpdateOverwritesWithLastWrite(t *testing.T) {
	sm := NewStoredMessages(3)
	sm.Update(1, "PUBLIC_KEY:::aaaa")
	sm.Update(1, "PUBLIC_KEY:::bbbb")

	msgs := sm.MessagesVec()
	require.Len(t, msgs, 1)
	assert.Equal(t, "PUBLIC_KEY:::bbbb", msgs[0].Payload, "a corrected resend must overwrite the stale value")
}

func TestStoredMessagesMissing(t *testing.T) {
	sm := NewStoredMessages(3)
	sm.Update(2, "x")
	assert.ElementsMatch(t, []PeerID{1, 3}, sm.Missing())
}

func TestStoredMessagesVecIsSortedByPeer(t *testing.T) {
	sm := NewStoredMessages(3)
	sm.Update(3, "c")
	sm.Update(1, "a")
	sm.Update(2, "b")
	msgs := sm.MessagesVec()
	assert.Equal(t, []PeerID{1, 2, 3}, []PeerID{msgs[0].FromID, msgs[1].FromID, msgs[2].FromID})
}
