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
const protocolName = peer.ProtocolSigning

var (
	configDir string
	relayURL  string
	sessionID string
	capacity  uint32
	keysDir   string
	timeout   time.Duration
	peerID    uint32
	message   string
)

var rootCmd = &cobra.Command{
	Use:   "eddsa-sign",
	Short: "Run one peer's side of a multi-party EdDSA signing ceremony",
	Long: `eddsa-sign loads a key artifact produced by a prior eddsa-keygen run,
registers with the relay, and drives the four-round PUBLIC_KEY / COMMITMENT /
R_KEY / SIGNATURE protocol to jointly produce an aggregate signature over
--message, verifying it locally before writing the signature artifact to
--keys-dir.`,
	RunE: runSign,
}

func main() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory containing environment config files")
	rootCmd.Flags().StringVar(&relayURL, "relay", "", "relay server base URL, e.g. http://127.0.0.1:8765 (overrides config)")
	rootCmd.Flags().StringVar(&sessionID, "session", "", "session id to join; empty starts a new session")
	rootCmd.Flags().Uint32Var(&capacity, "capacity", 0, "number of participants in the session (overrides config)")
	rootCmd.Flags().StringVar(&keysDir, "keys-dir", "", "directory holding the key artifact and to write the signature to (overrides config)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request HTTP timeout")
	rootCmd.Flags().Uint32Var(&peerID, "peer-id", 0, "this peer's id, as assigned by the prior keygen run")
	rootCmd.Flags().StringVar(&message, "message", "", "message to sign")
	rootCmd.MarkFlagRequired("peer-id")
	rootCmd.MarkFlagRequired("message")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("eddsa-sign: load config: %w", err)
	}

	url := relayURL
	if url == "" {
		url = cfg.Client.Proxy
	}
	if url == "" {
		return fmt.Errorf("eddsa-sign: no relay URL: pass --relay or set client.proxy in config")
	}
	cap := capacity
	if cap == 0 {
		cap = cfg.Client.Capacity
	}
	if cap == 0 {
		return fmt.Errorf("eddsa-sign: no capacity: pass --capacity or set client.capacity in config")
	}
	dir := keysDir
	if dir == "" {
		dir = cfg.Client.KeysDir
	}
	if dir == "" {
		dir = "."
	}

	log := logger.NewDefaultLogger()

	identity, err := keys.GenerateEd25519KeyPair()
	if err != nil {
		return fmt.Errorf("eddsa-sign: generate advisory identity: %w", err)
	}
	log.Info("advisory identity", logger.String("address", identity.ID()))

	artifactKeys, err := eddsa.ReadKeyArtifact(dir, peerID)
	if err != nil {
		return fmt.Errorf("eddsa-sign: read key artifact: %w", err)
	}

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
	assignedID, joinedSession, err := session.Register(ctx, protocolName, cap, sessionID)
	if err != nil {
		return fmt.Errorf("eddsa-sign: register: %w", err)
	}
	if uint32(assignedID) != peerID {
		return fmt.Errorf("eddsa-sign: relay assigned peer id %d, but key artifact is for peer %d", assignedID, peerID)
	}
	log.Info("registered", logger.String("session", joinedSession), logger.Int("peer_id", int(assignedID)))

	sp, err := peer.NewSigningPeer(artifactKeys, []byte(message))
	if err != nil {
		return fmt.Errorf("eddsa-sign: create signing peer: %w", err)
	}

	if err := session.Run(ctx, sp, sp.FirstMessage()); err != nil {
		return fmt.Errorf("eddsa-sign: run protocol: %w", err)
	}

	if err := eddsa.WriteSignatureArtifact(dir, peerID, []byte(message), sp.Signature()); err != nil {
		return fmt.Errorf("eddsa-sign: write signature artifact: %w", err)
	}

	fmt.Printf("Signing complete for peer %d (session %s)\n", peerID, joinedSession)
	fmt.Printf("  Message: %s\n", message)
	fmt.Printf("  Signature R: %x\n", sp.Signature().R.Bytes())
	fmt.Printf("  Signature S: %x\n", sp.Signature().S.Bytes())
	return nil
}
