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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddsa-relay/relay/config"
	"github.com/eddsa-relay/relay/crypto/keys"
	"github.com/eddsa-relay/relay/internal/client"
	"github.com/eddsa-relay/relay/internal/eddsa"
	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/peer"
)

// protocolName is this binary's entry in the relay's protocol registry
// (see protocols.json), checked against capacity on a session's first
// registration.
const protocolName = peer.ProtocolKeygen

var (
	configDir string
	relayURL  string
	sessionID string
	capacity  uint32
	keysDir   string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "eddsa-keygen",
	Short: "Run one peer's side of a multi-party EdDSA keygen ceremony",
	Long: `eddsa-keygen registers a peer with the relay, publishes its Ed25519
public key in the single PUBLIC_KEY round, and once every participant's key
has been collected, computes the group's aggregate public key locally and
writes the resulting key artifact to --keys-dir.`,
	RunE: runKeygen,
}

func main() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory containing environment config files")
	rootCmd.Flags().StringVar(&relayURL, "relay", "", "relay server base URL, e.g. http://127.0.0.1:8765 (overrides config)")
	rootCmd.Flags().StringVar(&sessionID, "session", "", "session id to join; empty starts a new session")
	rootCmd.Flags().Uint32Var(&capacity, "capacity", 0, "number of participants in the session (overrides config)")
	rootCmd.Flags().StringVar(&keysDir, "keys-dir", "", "directory to write the key artifact to (overrides config)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request HTTP timeout")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runKeygen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("eddsa-keygen: load config: %w", err)
	}

	url := relayURL
	if url == "" {
		url = cfg.Client.Proxy
	}
	if url == "" {
		return fmt.Errorf("eddsa-keygen: no relay URL: pass --relay or set client.proxy in config")
	}
	cap := capacity
	if cap == 0 {
		cap = cfg.Client.Capacity
	}
	if cap == 0 {
		return fmt.Errorf("eddsa-keygen: no capacity: pass --capacity or set client.capacity in config")
	}
	dir := keysDir
	if dir == "" {
		dir = cfg.Client.KeysDir
	}
	if dir == "" {
		dir = "."
	}

	log := logger.NewDefaultLogger()

	// An advisory identity for this run, logged alongside the relay-assigned
	// peer id. The relay never authenticates against it; the protocol's
	// only real identity is the peer id the relay hands out at registration.
	identity, err := keys.GenerateEd25519KeyPair()
	if err != nil {
		return fmt.Errorf("eddsa-keygen: generate advisory identity: %w", err)
	}
	log.Info("advisory identity", logger.String("address", identity.ID()))

	clientCfg := client.DefaultConfig()
	if cfg.Client.MaxRetry != 0 {
		clientCfg.MaxRetry = cfg.Client.MaxRetry
	}
	if cfg.Client.Retry != 0 {
		clientCfg.Retry = cfg.Client.Retry
	}

	transport := client.NewHTTPTransport(url, timeout)
	session := client.NewSession(transport, clientCfg, log)

	ctx := context.Background()
	peerID, joinedSession, err := session.Register(ctx, protocolName, cap, sessionID)
	if err != nil {
		return fmt.Errorf("eddsa-keygen: register: %w", err)
	}
	log.Info("registered", logger.String("session", joinedSession), logger.Int("peer_id", int(peerID)))

	generated, err := eddsa.GenerateKeys(uint32(peerID))
	if err != nil {
		return fmt.Errorf("eddsa-keygen: generate keys: %w", err)
	}
	kp := peer.NewKeygenPeer(generated)

	if err := session.Run(ctx, kp, kp.FirstMessage()); err != nil {
		return fmt.Errorf("eddsa-keygen: run protocol: %w", err)
	}

	if err := eddsa.WriteKeyArtifact(dir, kp.Keys()); err != nil {
		return fmt.Errorf("eddsa-keygen: write key artifact: %w", err)
	}

	fmt.Printf("Keygen complete for peer %d (session %s)\n", peerID, joinedSession)
	fmt.Printf("  Aggregate public key: %x\n", kp.Keys().APK.Bytes())
	fmt.Printf("  Key artifact written to: %s/keys%d\n", dir, peerID)
	return nil
}
