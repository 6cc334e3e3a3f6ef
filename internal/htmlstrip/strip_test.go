/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package htmlstrip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripBoldInsideParagraph(t *testing.T) {
	got := Strip([]byte(`<p>Hello <b>bold</b> world</p>`))
	want := "\n\nHello \x01Bbold\x01b world\n"
	require.Equal(t, want, string(got))
}

func TestStripCollapsesWhitespace(t *testing.T) {
	got := Strip([]byte("<p>one   two\n\tthree</p>"))
	require.Equal(t, "\n\none two three\n", string(got))
}

func TestStripHeading(t *testing.T) {
	got := Strip([]byte(`<h1>Chapter One</h1><p>Body text.</p>`))
	// The heading's close-break (1) and the paragraph's open-break (2)
	// merge into a single deferred break rather than stacking, so only
	// two newlines separate the blocks.
	want := "\n\n\x01HChapter One\x01h\n\nBody text.\n"
	require.Equal(t, want, string(got))
}

func TestStripEntities(t *testing.T) {
	got := Strip([]byte(`<p>Tom &amp; Jerry &lt;tag&gt; &quot;quoted&quot; &#65;</p>`))
	require.Equal(t, "\n\nTom & Jerry <tag> \"quoted\" A\n", string(got))
}

func TestStripEntityASCIIApproximations(t *testing.T) {
	got := Strip([]byte(`<p>A&nbsp;B &mdash; C &#8212; D &ldquo;quote&rdquo; &hellip;</p>`))
	require.Equal(t, "\n\nA B - C - D \"quote\" .\n", string(got))
}

func TestStripNumericEntityOutOfRangeBecomesQuestionMark(t *testing.T) {
	got := Strip([]byte(`<p>&#20013;&#128512;</p>`))
	require.Equal(t, "\n\n??\n", string(got))
}

func TestStripDropsLiteralMarkerByte(t *testing.T) {
	got := Strip([]byte("<p>before" + string([]byte{Marker}) + "after</p>"))
	require.Equal(t, "\n\nbeforeafter\n", string(got))
}

func TestStripSkipsScriptAndStyle(t *testing.T) {
	got := Strip([]byte(`<p>before</p><script>var x = 1 < 2;</script><style>p{color:red}</style><p>after</p>`))
	require.Equal(t, "\n\nbefore\n\nafter\n", string(got))
}

func TestStripImgReference(t *testing.T) {
	got := Strip([]byte(`<p>before</p><img src="images/cover.jpg"/><p>after</p>`))
	path := "images/cover.jpg"
	want := "\n\nbefore\n\n" + string([]byte{Marker, ImgRef, byte(len(path))}) + path + "\n\nafter\n"
	require.Equal(t, want, string(got))
}

func TestStripImgUnquotedAttr(t *testing.T) {
	got := Strip([]byte(`<img src=pic.png>`))
	path := "pic.png"
	want := "\n\n" + string([]byte{Marker, ImgRef, byte(len(path))}) + path + "\n"
	require.Equal(t, want, string(got))
}

func TestStripLineBreak(t *testing.T) {
	got := Strip([]byte(`<p>line one<br/>line two</p>`))
	want := "\n\nline one\nline two\n"
	require.Equal(t, want, string(got))
}

func TestStripSceneBreak(t *testing.T) {
	got := Strip([]byte(`<p>line one</p><hr/><p>line two</p>`))
	want := "\n\nline one\n\x01S\n\nline two\n"
	require.Equal(t, want, string(got))
}

func TestStripBlockquote(t *testing.T) {
	got := Strip([]byte(`<blockquote>quoted text</blockquote>`))
	require.Equal(t, "\n\n\x01Qquoted text\x01q\n", string(got))
}

func TestStripIncrementalMatchesOneShot(t *testing.T) {
	full := `<p>Hello <b>bold</b> world</p>`
	s := New()
	s.Write([]byte(`<p>Hello <b>`))
	s.Write([]byte(`bold</b> world</p>`))
	got := s.Finish()
	require.Equal(t, string(Strip([]byte(full))), string(got))
}

func TestStripCommentsDropped(t *testing.T) {
	got := Strip([]byte(`<p>before<!-- a comment --> after</p>`))
	require.Equal(t, "\n\nbefore after\n", string(got))
}
