/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the host/simulator-side configuration for pulpcore:
// values that exist only because a workstation build needs somewhere to
// keep them (panel geometry, emulated SD root, log verbosity). The
// on-device settings format (_PULP/SETTINGS.TXT) is a separate, much
// smaller surface implemented in internal/settings.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DeviceConfig models the parameters that are compile-time constants on
// real hardware but need to be configurable on a simulator build.
type DeviceConfig struct {
	Rotation           string `yaml:"rotation"`             // deg0 | deg90 | deg180 | deg270
	GhostClearEvery    int    `yaml:"ghost_clear_every"`     // partial refreshes between full GC refreshes
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`  // 0 = never sleep
	SDRoot             string `yaml:"sd_root"`               // emulated SD card root on host
}

type ReaderConfig struct {
	ChapterCacheRoot string `yaml:"chapter_cache_root"` // overrides the book-relative cache dir, for tests
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int          `yaml:"config_version"`
	Device        DeviceConfig `yaml:"device"`
	Reader        ReaderConfig `yaml:"reader"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the simulator/host application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Device: DeviceConfig{
			Rotation:           "deg270",
			GhostClearEvery:    6,
			IdleTimeoutMinutes: 10,
			SDRoot:             "",
		},
		Reader:  ReaderConfig{},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvRotation        = "PULPCORE_ROTATION"
	EnvGhostClearEvery = "PULPCORE_GHOST_CLEAR_EVERY"
	EnvIdleTimeout     = "PULPCORE_IDLE_TIMEOUT_MINUTES"
	EnvSDRoot          = "PULPCORE_SD_ROOT"
	EnvLogLevel        = "PULPCORE_LOG_LEVEL"
	EnvLogFormat       = "PULPCORE_LOG_FORMAT"
	EnvLogSource       = "PULPCORE_LOG_SOURCE"
	EnvLogFile         = "PULPCORE_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "pulpcore")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "pulpcore")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "pulpcore")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Device.Rotation) != "" {
		dst.Device.Rotation = strings.ToLower(strings.TrimSpace(src.Device.Rotation))
	}
	if src.Device.GhostClearEvery != 0 {
		dst.Device.GhostClearEvery = src.Device.GhostClearEvery
	}
	dst.Device.IdleTimeoutMinutes = src.Device.IdleTimeoutMinutes
	if strings.TrimSpace(src.Device.SDRoot) != "" {
		dst.Device.SDRoot = strings.TrimSpace(src.Device.SDRoot)
	}
	if strings.TrimSpace(src.Reader.ChapterCacheRoot) != "" {
		dst.Reader.ChapterCacheRoot = strings.TrimSpace(src.Reader.ChapterCacheRoot)
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRotation)); v != "" {
		cfg.Device.Rotation = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGhostClearEvery)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Device.GhostClearEvery = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvIdleTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Device.IdleTimeoutMinutes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSDRoot)); v != "" {
		cfg.Device.SDRoot = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	switch key {
	case "device.rotation":
		if os.Getenv(EnvRotation) != "" {
			return EnvRotation, true
		}
	case "device.ghost_clear_every":
		if os.Getenv(EnvGhostClearEvery) != "" {
			return EnvGhostClearEvery, true
		}
	case "device.idle_timeout_minutes":
		if os.Getenv(EnvIdleTimeout) != "" {
			return EnvIdleTimeout, true
		}
	case "device.sd_root":
		if os.Getenv(EnvSDRoot) != "" {
			return EnvSDRoot, true
		}
	case "logging.level":
		if os.Getenv(EnvLogLevel) != "" {
			return EnvLogLevel, true
		}
	case "logging.format":
		if os.Getenv(EnvLogFormat) != "" {
			return EnvLogFormat, true
		}
	case "logging.source":
		if os.Getenv(EnvLogSource) != "" {
			return EnvLogSource, true
		}
	case "logging.file":
		if os.Getenv(EnvLogFile) != "" {
			return EnvLogFile, true
		}
	}
	return "", false
}
