/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"testing"
)

func TestEnvOverridesRotation(t *testing.T) {
	old := os.Getenv(EnvRotation)
	_ = os.Setenv(EnvRotation, "deg90")
	t.Cleanup(func() { _ = os.Setenv(EnvRotation, old) })
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Device.Rotation, "deg90"; got != want {
		t.Fatalf("Device.Rotation = %q, want %q", got, want)
	}
}

func TestEnvOverridesIdleTimeout(t *testing.T) {
	old := os.Getenv(EnvIdleTimeout)
	_ = os.Setenv(EnvIdleTimeout, "0")
	t.Cleanup(func() { _ = os.Setenv(EnvIdleTimeout, old) })
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Device.IdleTimeoutMinutes != 0 {
		t.Fatalf("Device.IdleTimeoutMinutes = %d, want 0", cfg.Device.IdleTimeoutMinutes)
	}
}

func TestMergeIncludesGhostClearEvery(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Device.GhostClearEvery = 12
	mergeInto(&dst, &src)
	if dst.Device.GhostClearEvery != 12 {
		t.Fatalf("GhostClearEvery was not merged from file config")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/pulpcore.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/pulpcore.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "/tmp/pulpcore-error.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/pulpcore-error.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	old := os.Getenv(EnvSDRoot)
	_ = os.Setenv(EnvSDRoot, "/mnt/sd")
	t.Cleanup(func() { _ = os.Setenv(EnvSDRoot, old) })
	name, ok := EnvOverrideFor("device.sd_root")
	if !ok || name != EnvSDRoot {
		t.Fatalf("EnvOverrideFor(device.sd_root) = (%q, %v), want (%q, true)", name, ok, EnvSDRoot)
	}
}
