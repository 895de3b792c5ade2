// SPDX-License-Identifier: LGPL-3.0-or-later

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceWrapsToOne(t *testing.T) {
	d := New("sess-1", 3)
	assert.Equal(t, uint32(1), d.Turn)

	d.Advance()
	assert.Equal(t, uint32(2), d.Turn)
	d.Advance()
	assert.Equal(t, uint32(3), d.Turn)
	d.Advance()
	assert.Equal(t, uint32(1), d.Turn, "turn must wrap back to 1, never hit 0")
}

func TestIsMyTurn(t *testing.T) {
	d := New("sess-1", 2)
	assert.True(t, d.IsMyTurn(1))
	assert.False(t, d.IsMyTurn(2))
}

func TestRegistryUnknownProtocolAcceptsAnyCapacity(t *testing.T) {
	reg := &Registry{Protocols: []RegistryEntry{{Name: "eddsa-keygen", Capacities: []uint32{3, 5}}}}
	assert.True(t, reg.IsValidCapacity("eddsa-keygen", 3))
	assert.False(t, reg.IsValidCapacity("eddsa-keygen", 4))
	assert.True(t, reg.IsValidCapacity("unregistered-protocol", 99))
}
