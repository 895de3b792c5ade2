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
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddsa-relay/relay/config"
	"github.com/eddsa-relay/relay/internal/audit"
	"github.com/eddsa-relay/relay/internal/logger"
	"github.com/eddsa-relay/relay/internal/metrics"
	"github.com/eddsa-relay/relay/internal/protocol"
	"github.com/eddsa-relay/relay/internal/relay"
	relayhttp "github.com/eddsa-relay/relay/internal/transport/http"
	"github.com/eddsa-relay/relay/internal/transport/ws"
	"github.com/eddsa-relay/relay/pkg/version"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "relay-server",
	Short: "Relay server for multi-party EdDSA keygen and signing ceremonies",
	Long: `relay-server hosts the turn-serialized message relay peer clients use to
run the aggregate-signature keygen and signing protocols. It exposes:

  POST /relay          peer register/relay/abort requests
  GET  /ws             websocket push of abort and round-complete events
  GET  /metrics        Prometheus exposition (if enabled, on metrics.address)`,
	RunE: runServer,
}

func main() {
	rootCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory containing environment config files")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("relay-server: load config: %w", err)
	}

	log := logger.NewDefaultLogger()
	log.Info("starting relay server", logger.String("version", version.Short()), logger.String("environment", cfg.Environment))

	var auditLog audit.Log
	if cfg.Audit.DSN != "" {
		auditLog, err = audit.NewPostgresLog(cmd.Context(), cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("relay-server: connect audit log: %w", err)
		}
		log.Info("audit log backed by postgres")
	} else {
		auditLog = audit.NewMemoryLog()
		log.Info("audit log running in-memory; events will not survive a restart")
	}
	defer auditLog.Close()

	registry, err := protocol.LoadRegistry(cfg.Protocol.RegistryPath)
	if err != nil {
		log.Warn("protocol registry unavailable; accepting any capacity for any protocol name",
			logger.String("path", cfg.Protocol.RegistryPath), logger.Error(err))
		registry = nil
	}

	hub := ws.NewHub(log)
	manager := relay.NewManager(30*time.Minute, log, auditLog, registry, hub)

	mux := http.NewServeMux()
	relayhttp.NewHandler(manager, log).Routes(mux)
	mux.Handle("/ws", hub)

	if cfg.Metrics.Enabled {
		go func() {
			log.Info("starting metrics server", logger.String("address", cfg.Metrics.Address))
			if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
				log.Error("metrics server stopped", logger.Error(err))
			}
		}()
	}

	go sweepLoop(manager, log)

	log.Info("relay server listening", logger.String("address", cfg.Server.Address))
	return http.ListenAndServe(cfg.Server.Address, mux)
}

func sweepLoop(manager *relay.Manager, log logger.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		if evicted := manager.Sweep(); evicted > 0 {
			log.Info("swept stale relay sessions", logger.Int("evicted", evicted))
		}
	}
}
