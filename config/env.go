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
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// envVarPattern matches ${VAR} or ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// LoadDotEnv loads a .env file into the process environment, if present. It
// is silent when the file is missing so that deployments that configure the
// environment another way are unaffected.
func LoadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment variable values
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// SubstituteEnvVarsInConfig recursively substitutes environment variables in
// the string-valued fields of cfg.
func SubstituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Server.Address = SubstituteEnvVars(cfg.Server.Address)
	cfg.Server.AdminAddress = SubstituteEnvVars(cfg.Server.AdminAddress)

	cfg.Client.Proxy = SubstituteEnvVars(cfg.Client.Proxy)
	cfg.Client.KeysDir = SubstituteEnvVars(cfg.Client.KeysDir)

	cfg.Protocol.RegistryPath = SubstituteEnvVars(cfg.Protocol.RegistryPath)

	cfg.Audit.DSN = SubstituteEnvVars(cfg.Audit.DSN)

	cfg.Logging.Level = SubstituteEnvVars(cfg.Logging.Level)
	cfg.Logging.Format = SubstituteEnvVars(cfg.Logging.Format)
	cfg.Logging.Output = SubstituteEnvVars(cfg.Logging.Output)

	cfg.Metrics.Address = SubstituteEnvVars(cfg.Metrics.Address)
	cfg.Metrics.Path = SubstituteEnvVars(cfg.Metrics.Path)
}

// GetEnvironment returns the current environment from RELAY_ENV, falling
// back to ENVIRONMENT, then to "development".
func GetEnvironment() string {
	env := os.Getenv("RELAY_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction returns true if running in production environment
func IsProduction() bool {
	return GetEnvironment() == "production"
}

// IsDevelopment returns true if running in development or local environment
func IsDevelopment() bool {
	env := GetEnvironment()
	return env == "development" || env == "local"
}

// applyEnvironmentOverrides overrides config with environment variables;
// these take the highest priority, above file and ${VAR} substitution.
func applyEnvironmentOverrides(cfg *Config) {
	if addr := os.Getenv("RELAY_SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if addr := os.Getenv("RELAY_ADMIN_ADDRESS"); addr != "" {
		cfg.Server.AdminAddress = addr
	}
	if n := os.Getenv("RELAY_PARTICIPANTS"); n != "" {
		if v, err := strconv.ParseUint(n, 10, 32); err == nil {
			cfg.Server.Participants = uint32(v)
		}
	}

	if proxy := os.Getenv("RELAY_PROXY"); proxy != "" {
		cfg.Client.Proxy = proxy
	}
	if dir := os.Getenv("RELAY_KEYS_DIR"); dir != "" {
		cfg.Client.KeysDir = dir
	}

	if reg := os.Getenv("RELAY_PROTOCOL_REGISTRY"); reg != "" {
		cfg.Protocol.RegistryPath = reg
	}

	if dsn := os.Getenv("RELAY_AUDIT_DSN"); dsn != "" {
		cfg.Audit.DSN = dsn
	}

	if lvl := os.Getenv("RELAY_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if format := os.Getenv("RELAY_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if os.Getenv("RELAY_METRICS_ENABLED") == "true" {
		cfg.Metrics.Enabled = true
	}
	if os.Getenv("RELAY_METRICS_ENABLED") == "false" {
		cfg.Metrics.Enabled = false
	}
	if addr := os.Getenv("RELAY_METRICS_ADDRESS"); addr != "" {
		cfg.Metrics.Address = addr
	}
}
