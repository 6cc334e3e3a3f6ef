/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package proof

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pulpcore/internal/htmlstrip"
)

func marker(tag byte) []byte { return []byte{htmlstrip.Marker, tag} }

func TestRenderChapterProducesPDFFile(t *testing.T) {
	var text bytes.Buffer
	text.WriteString("Chapter One\n\n")
	text.Write(marker(htmlstrip.HeadingOn))
	text.WriteString("The Beginning")
	text.Write(marker(htmlstrip.HeadingOff))
	text.WriteString("\n\nIt was a ")
	text.Write(marker(htmlstrip.BoldOn))
	text.WriteString("dark")
	text.Write(marker(htmlstrip.BoldOff))
	text.WriteString(" and stormy night.\n\n")
	text.Write(marker(htmlstrip.Break))
	text.WriteString("\n\nLater.")

	out := filepath.Join(t.TempDir(), "chapter.pdf")
	require.NoError(t, RenderChapter(text.Bytes(), DefaultOptions(), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, len(data) > 0)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output must be a PDF")
}

func TestRenderChapterHandlesImageReference(t *testing.T) {
	var text bytes.Buffer
	text.WriteString("See figure below.\n\n")
	path := "images/fig1.png"
	text.Write([]byte{htmlstrip.Marker, htmlstrip.ImgRef, byte(len(path))})
	text.WriteString(path)
	text.WriteString("\n\nCaption done.")

	out := filepath.Join(t.TempDir(), "with_image.pdf")
	require.NoError(t, RenderChapter(text.Bytes(), DefaultOptions(), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderChapterEmptyTextStillProducesValidFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, RenderChapter(nil, DefaultOptions(), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
