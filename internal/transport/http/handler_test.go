// SPDX-License-Identifier: LGPL-3.0-or-later

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eddsa-relay/relay/internal/protocol"
	"github.com/eddsa-relay/relay/internal/relay"
	"github.com/eddsa-relay/relay/internal/wire"
)

func do(t *testing.T, h http.Handler, msg wire.ClientMessage) wire.ServerMessage {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/relay", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp wire.ServerMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerRegisterThenRelayRoundTrip(t *testing.T) {
	mgr := relay.NewManager(0, nil, nil, nil, nil)
	mux := http.NewServeMux()
	NewHandler(mgr, nil).Routes(mux)

	resp1 := do(t, mux, wire.ClientMessage{Register: &wire.RegisterMessage{Capacity: 2}})
	require.Equal(t, wire.ServerMessageRegisterResponse, resp1.Type)
	require.NotEmpty(t, resp1.SessionID)
	require.Equal(t, wire.PeerID(1), resp1.PeerID)

	resp2 := do(t, mux, wire.ClientMessage{SessionID: resp1.SessionID, Register: &wire.RegisterMessage{Capacity: 2, SessionID: resp1.SessionID}})
	require.Equal(t, wire.ServerMessageRegisterResponse, resp2.Type)
	require.Equal(t, wire.PeerID(2), resp2.PeerID)

	// Peer 2 goes out of turn first.
	early := do(t, mux, wire.ClientMessage{
		SessionID:    resp1.SessionID,
		RelayMessage: &wire.RelayMessage{FromID: 2, Payload: "TAG:::body-2"},
	})
	require.Equal(t, wire.ServerMessageError, early.Type)
	require.Equal(t, wire.ErrNotYourTurn, early.Error)

	notComplete := do(t, mux, wire.ClientMessage{
		SessionID:    resp1.SessionID,
		RelayMessage: &wire.RelayMessage{FromID: 1, Payload: "TAG:::body-1"},
	})
	require.Equal(t, wire.ServerMessageNoMessages, notComplete.Type)

	relayed := do(t, mux, wire.ClientMessage{
		SessionID:    resp1.SessionID,
		RelayMessage: &wire.RelayMessage{FromID: 2, Payload: "TAG:::body-2"},
	})
	require.Equal(t, wire.ServerMessageRelayed, relayed.Type)
	require.Len(t, relayed.Messages, 2)
}

func TestHandlerRelayUnknownSession(t *testing.T) {
	mgr := relay.NewManager(0, nil, nil, nil, nil)
	mux := http.NewServeMux()
	NewHandler(mgr, nil).Routes(mux)

	resp := do(t, mux, wire.ClientMessage{
		SessionID:    "does-not-exist",
		RelayMessage: &wire.RelayMessage{FromID: 1, Payload: "TAG:::body"},
	})
	require.Equal(t, wire.ServerMessageError, resp.Type)
	require.Equal(t, wire.ErrStateNotInitialized, resp.Error)
}

func TestHandlerAbort(t *testing.T) {
	mgr := relay.NewManager(0, nil, nil, nil, nil)
	mux := http.NewServeMux()
	NewHandler(mgr, nil).Routes(mux)

	reg := do(t, mux, wire.ClientMessage{Register: &wire.RegisterMessage{Capacity: 1}})
	require.Equal(t, wire.ServerMessageRegisterResponse, reg.Type)

	abort := do(t, mux, wire.ClientMessage{SessionID: reg.SessionID, Abort: &wire.AbortMessage{PeerID: 1}})
	require.Equal(t, wire.ServerMessageAbort, abort.Type)

	sess, err := mgr.Get(reg.SessionID)
	require.NoError(t, err)
	require.Equal(t, relay.Aborted, sess.State())
}

func TestHandlerRejectsUnregisteredProtocolCapacity(t *testing.T) {
	reg := &protocol.Registry{Protocols: []protocol.RegistryEntry{
		{Name: "eddsa-keygen", Capacities: []uint32{2, 3}},
	}}
	mgr := relay.NewManager(0, nil, nil, reg, nil)
	mux := http.NewServeMux()
	NewHandler(mgr, nil).Routes(mux)

	resp := do(t, mux, wire.ClientMessage{
		Register: &wire.RegisterMessage{Capacity: 9, Protocol: "eddsa-keygen"},
	})
	require.Equal(t, wire.ServerMessageError, resp.Type)
	require.Equal(t, wire.ErrCantRegister, resp.Error)
	require.Empty(t, resp.SessionID, "a rejected first registration must not mint a session id")
	require.Equal(t, 0, mgr.Count())
}
