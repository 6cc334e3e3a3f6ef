/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := Settings{
		Rotation:           "deg90",
		GhostClearEvery:    8,
		IdleTimeoutMinutes: 5,
		FontScale:          125,
		LastFilename:       "BOOK1.EPU",
	}
	require.NoError(t, Save(dir, in))

	out, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, in, out)

	require.FileExists(t, filepath.Join(dir, FileName))
}

func TestParseIgnoresBlankLinesAndComments(t *testing.T) {
	raw := "# a comment\n\nrotation=deg180\n   \nfont_scale=150\n"
	s := parse([]byte(raw))
	require.Equal(t, "deg180", s.Rotation)
	require.Equal(t, 150, s.FontScale)
	// Unset fields keep their Defaults() value.
	require.Equal(t, Defaults().GhostClearEvery, s.GhostClearEvery)
}

func TestParsePreservesUnknownKeysInExtra(t *testing.T) {
	raw := "rotation=deg0\nwifi_ssid=home-network\n"
	s := parse([]byte(raw))
	require.Equal(t, "deg0", s.Rotation)
	require.Equal(t, map[string]string{"wifi_ssid": "home-network"}, s.Extra)
}

func TestSavePreservesExtraKeysSortedAfterKnownKeys(t *testing.T) {
	dir := t.TempDir()
	in := Defaults()
	in.Extra = map[string]string{"zeta": "1", "alpha": "2"}
	require.NoError(t, Save(dir, in))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)

	want := "rotation=deg270\n" +
		"ghost_clear_every=6\n" +
		"idle_timeout_minutes=10\n" +
		"font_scale=100\n" +
		"alpha=2\n" +
		"zeta=1\n"
	require.Equal(t, want, string(data))
}

func TestParseSkipsMalformedNumericValueAndKeepsDefault(t *testing.T) {
	s := parse([]byte("ghost_clear_every=not-a-number\n"))
	require.Equal(t, Defaults().GhostClearEvery, s.GhostClearEvery)
}
