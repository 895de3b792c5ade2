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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file as JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file as YAML: %w", err)
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing the format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills in the operational defaults from §6 of the protocol
// (server address, client retry ceiling, logging).
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = "127.0.0.1:8765"
	}
	if cfg.Server.AdminAddress == "" {
		cfg.Server.AdminAddress = "127.0.0.1:8766"
	}
	if cfg.Server.Participants == 0 {
		cfg.Server.Participants = 3
	}

	if cfg.Client.Proxy == "" {
		cfg.Client.Proxy = cfg.Server.Address
	}
	if cfg.Client.KeysDir == "" {
		cfg.Client.KeysDir = "."
	}
	if cfg.Client.MaxRetry == 0 {
		cfg.Client.MaxRetry = 512
	}
	if cfg.Client.Retry == 0 {
		cfg.Client.Retry = 200 * time.Millisecond
	}

	if cfg.Protocol.RegistryPath == "" {
		cfg.Protocol.RegistryPath = "protocols.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = "127.0.0.1:9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// ValidationError describes a single configuration problem.
type ValidationError struct {
	Field   string
	Message string
	Level   string // "error" or "warning"
}

// ValidateConfiguration checks a loaded Config for obviously broken values.
// Warnings are returned alongside errors so callers can log soft issues
// without failing startup.
func ValidateConfiguration(cfg *Config) []ValidationError {
	var errs []ValidationError

	if cfg.Server.Participants == 0 {
		errs = append(errs, ValidationError{Field: "server.participants", Message: "must be greater than zero", Level: "error"})
	}
	if cfg.Client.Capacity != 0 && cfg.Client.Index > cfg.Client.Capacity {
		errs = append(errs, ValidationError{Field: "client.index", Message: "index exceeds capacity", Level: "error"})
	}
	if cfg.Client.MaxRetry == 0 {
		errs = append(errs, ValidationError{Field: "client.max_retry", Message: "zero retries means the client can never catch up with a round", Level: "warning"})
	}

	return errs
}
