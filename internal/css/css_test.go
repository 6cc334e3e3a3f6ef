/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package css

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveTagSelector(t *testing.T) {
	r := Parse(`p { font-weight: bold; text-align: center; }`)
	require.Equal(t, 1, r.Count())
	props := r.Resolve("p", "")
	require.True(t, props.IsBold())
	require.Equal(t, uint8(TextAlignCenter), props.TextAlign)
}

func TestResolveClassSelectorWinsOverTagOnSpecificity(t *testing.T) {
	r := Parse(`
		p { font-weight: normal; }
		.highlight { font-weight: bold; }
	`)
	props := r.Resolve("p", "highlight")
	require.True(t, props.IsBold(), "class selector (specificity 16) should win over tag selector (specificity 1)")
}

func TestLaterRuleWinsOnEqualSpecificity(t *testing.T) {
	r := Parse(`
		p { text-align: left; }
		p { text-align: right; }
	`)
	props := r.Resolve("p", "")
	require.Equal(t, uint8(TextAlignRight), props.TextAlign)
}

func TestDisplayNoneHidden(t *testing.T) {
	r := Parse(`.hidden { display: none; }`)
	props := r.Resolve("span", "hidden")
	require.True(t, props.IsHidden())
}

func TestBareIDSelectorDoesNotMatch(t *testing.T) {
	r := Parse(`#title { font-weight: bold; }`)
	require.Equal(t, 0, r.Count(), "bare #id selectors can't be represented and should be skipped")
}

func TestAtRuleSkipped(t *testing.T) {
	r := Parse(`
		@media print { p { font-weight: bold; } }
		div { text-align: center; }
	`)
	require.Equal(t, 1, r.Count())
	props := r.Resolve("div", "")
	require.Equal(t, uint8(TextAlignCenter), props.TextAlign)
}

func TestMarginShorthandFourValues(t *testing.T) {
	r := Parse(`p { margin: 1em 2em 3em 4em; }`)
	props := r.Resolve("p", "")
	require.Equal(t, int8(4), props.MarginTop)
	require.Equal(t, int8(8), props.MarginRight)
	require.Equal(t, int8(12), props.MarginBottom)
	require.Equal(t, int8(16), props.MarginLeft, "4em is 16 quarter-em")
}

func TestMarginShorthandOneValue(t *testing.T) {
	r := Parse(`p { margin: 1em; }`)
	props := r.Resolve("p", "")
	require.Equal(t, int8(4), props.MarginTop)
	require.Equal(t, int8(4), props.MarginRight)
	require.Equal(t, int8(4), props.MarginBottom)
	require.Equal(t, int8(4), props.MarginLeft)
}

func TestClassHashNeverZero(t *testing.T) {
	// a class name whose FNV-1a hash folds to 0 must remap to 1, since 0
	// means "no class" in Selector.Matches.
	for _, name := range []string{"a", "b", "c", "emphasis", "quote", "x"} {
		require.NotEqual(t, uint16(0), classHash(name), "class %q hashed to 0", name)
	}
}

func TestParseLengthQEMUnits(t *testing.T) {
	v, ok := parseLengthQEM("2em")
	require.True(t, ok)
	require.Equal(t, int8(8), v, "2em is 8 quarter-em")

	v, ok = parseLengthQEM("0")
	require.True(t, ok)
	require.Equal(t, int8(0), v)

	v, ok = parseLengthQEM("auto")
	require.True(t, ok)
	require.Equal(t, int8(0), v)

	_, ok = parseLengthQEM("")
	require.False(t, ok)
}
