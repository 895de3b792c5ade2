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

// Package config provides configuration management for the relay server and
// its peer clients.
package config

import "time"

// Config is the top-level configuration structure for every binary in this
// module. Each binary reads only the sections it needs.
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Server      ServerConfig   `yaml:"server" json:"server"`
	Client      ClientConfig   `yaml:"client" json:"client"`
	Protocol    ProtocolConfig `yaml:"protocol" json:"protocol"`
	Audit       AuditConfig    `yaml:"audit" json:"audit"`
	Logging     LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// ServerConfig configures the relay server binary.
type ServerConfig struct {
	// Address is the host:port the relay listens on for peer HTTP requests
	// (POST /relay) and websocket subscriptions (/ws), e.g. "127.0.0.1:8765".
	Address string `yaml:"address" json:"address"`
	// AdminAddress is the host:port for the health/metrics façade.
	AdminAddress string `yaml:"admin_address" json:"admin_address"`
	// Participants is the declared capacity of a relay session.
	Participants uint32 `yaml:"participants" json:"participants"`
}

// ClientConfig configures the keygen and signing peer clients.
type ClientConfig struct {
	Index    uint32        `yaml:"index" json:"index"`
	Capacity uint32        `yaml:"capacity" json:"capacity"`
	Proxy    string        `yaml:"proxy" json:"proxy"`
	KeysDir  string        `yaml:"keys_dir" json:"keys_dir"`
	MaxRetry uint32        `yaml:"max_retry" json:"max_retry"`
	Retry    time.Duration `yaml:"retry_timeout" json:"retry_timeout"`
}

// ProtocolConfig locates the registry of valid protocol descriptors.
type ProtocolConfig struct {
	RegistryPath string `yaml:"registry_path" json:"registry_path"`
}

// AuditConfig configures the optional durable audit trail of relay session
// events. When DSN is empty the in-memory backend is used.
type AuditConfig struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

// LoggingConfig controls the internal/logger output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
	Output string `yaml:"output" json:"output"` // stdout, stderr, file path
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}
