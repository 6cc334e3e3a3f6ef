/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package css is a small cascade table for exactly the subset of CSS an
// EPUB stylesheet can affect on an e-paper reader: font weight/style, text
// alignment, indentation, margins, display, and text decoration. It is not
// a general-purpose CSS engine (spec.md §1 explicitly excludes one): no
// box model, no colors, no media queries beyond skipping them.
package css

import "strconv"

// MaxRules bounds the number of parsed rules retained per stylesheet.
const MaxRules = 128

// Property bitflags: which fields of StyleProps a given rule actually set,
// so cascading can tell "set to normal" apart from "not mentioned".
const (
	PropFontWeight = 1 << iota
	PropFontStyle
	PropTextAlign
	PropTextIndent
	PropMarginLeft
	PropMarginRight
	PropMarginTop
	PropMarginBottom
	PropDisplay
	PropTextDecoration
)

// Value constants for StyleProps fields.
const (
	FontWeightNormal = iota
	FontWeightBold
)

const (
	FontStyleNormal = iota
	FontStyleItalic
)

const (
	TextAlignLeft = iota
	TextAlignCenter
	TextAlignRight
	TextAlignJustify
)

const (
	DisplayDefault = iota
	DisplayNone
	DisplayBlock
	DisplayInline
)

const (
	TextDecorationNone = iota
	TextDecorationUnderline
	TextDecorationLineThrough
)

// StyleProps is the resolved (or partially resolved) style for one element.
type StyleProps struct {
	Set             uint16
	FontWeight      uint8
	FontStyle       uint8
	TextAlign       uint8
	TextIndent      int8
	MarginLeft      int8
	MarginRight     int8
	MarginTop       int8
	MarginBottom    int8
	Display         uint8
	TextDecoration  uint8
}

// Empty is the zero value: nothing set.
var Empty = StyleProps{}

// IsBold reports whether the cascade resolved to a bold font weight.
func (p StyleProps) IsBold() bool {
	return p.Set&PropFontWeight != 0 && p.FontWeight == FontWeightBold
}

// IsItalic reports whether the cascade resolved to an italic font style.
func (p StyleProps) IsItalic() bool {
	return p.Set&PropFontStyle != 0 && p.FontStyle == FontStyleItalic
}

// IsHidden reports display:none.
func (p StyleProps) IsHidden() bool {
	return p.Set&PropDisplay != 0 && p.Display == DisplayNone
}

// Apply merges other into p wherever other's specificity for a given
// property is >= the specificity already recorded in best for that
// property's bit position, with ties won by the later rule (the standard
// CSS "last rule wins among equal specificity" behavior). best has one
// slot per property bit (16, one per possible bit position even though
// only 10 are in use).
func (p *StyleProps) Apply(other StyleProps, specificity uint8, best *[16]uint8) {
	merge := func(bit uint16, idx int, do func()) {
		if other.Set&bit == 0 {
			return
		}
		if specificity >= best[idx] {
			best[idx] = specificity
			do()
			p.Set |= bit
		}
	}
	merge(PropFontWeight, 0, func() { p.FontWeight = other.FontWeight })
	merge(PropFontStyle, 1, func() { p.FontStyle = other.FontStyle })
	merge(PropTextAlign, 2, func() { p.TextAlign = other.TextAlign })
	merge(PropTextIndent, 3, func() { p.TextIndent = other.TextIndent })
	merge(PropMarginLeft, 4, func() { p.MarginLeft = other.MarginLeft })
	merge(PropMarginRight, 5, func() { p.MarginRight = other.MarginRight })
	merge(PropMarginTop, 6, func() { p.MarginTop = other.MarginTop })
	merge(PropMarginBottom, 7, func() { p.MarginBottom = other.MarginBottom })
	merge(PropDisplay, 8, func() { p.Display = other.Display })
	merge(PropTextDecoration, 9, func() { p.TextDecoration = other.TextDecoration })
}

// Selector is the rightmost simple selector of a (possibly combinator-
// chained) CSS selector: a tag id, an optional class hash, and a
// specificity score used to break cascade ties.
type Selector struct {
	Tag          uint8
	ClassHash    uint16
	Specificity  uint8
}

// Matches reports whether sel matches an element with the given tag id and
// class hash (0 if the element has no class or the class wasn't found in
// the hash table).
func (sel Selector) Matches(tagID uint8, classHash uint16) bool {
	if sel.Tag != 0 && sel.Tag != tagID {
		return false
	}
	if sel.ClassHash != 0 && sel.ClassHash != classHash {
		return false
	}
	return sel.Tag != 0 || sel.ClassHash != 0
}

// Rule pairs a selector with the properties it sets.
type Rule struct {
	Sel   Selector
	Props StyleProps
}

// Rules is a parsed, bounded stylesheet.
type Rules struct {
	rules [MaxRules]Rule
	count int
}

// Count returns the number of parsed rules.
func (r *Rules) Count() int { return r.count }

// Resolve cascades every matching rule for (tagName, className) in
// declaration order, applying each at its own specificity.
func (r *Rules) Resolve(tagName, className string) StyleProps {
	return r.ResolveByID(tagID(tagName), classHash(className))
}

// ResolveByID is Resolve given pre-computed ids, for hot call sites that
// already have the tag id and class hash on hand (e.g. the stripper's tag
// classifier).
func (r *Rules) ResolveByID(tid uint8, chash uint16) StyleProps {
	var out StyleProps
	var best [16]uint8
	for i := 0; i < r.count; i++ {
		rule := r.rules[i]
		if rule.Sel.Matches(tid, chash) {
			out.Apply(rule.Props, rule.Sel.Specificity, &best)
		}
	}
	return out
}

// knownTags maps the handful of tag names the cascade cares about to small
// dense ids; 0 means "unknown/unmatched by tag".
var knownTags = map[string]uint8{
	"p": 1, "div": 2, "span": 3,
	"h1": 4, "h2": 5, "h3": 6, "h4": 7, "h5": 8, "h6": 9,
	"em": 10, "i": 11, "b": 12, "strong": 13,
	"a": 14, "blockquote": 15, "ul": 16, "ol": 17, "li": 18,
	"pre": 19, "code": 20, "body": 21, "section": 22, "article": 23,
	"figure": 24, "figcaption": 25, "cite": 26, "small": 27,
	"sup": 28, "sub": 29, "table": 30, "tr": 31, "td": 32, "th": 33,
	"header": 34, "footer": 35, "aside": 36, "nav": 37,
	"dl": 38, "dt": 39, "dd": 40, "abbr": 41,
}

func tagID(name string) uint8 {
	if id, ok := knownTags[name]; ok {
		return id
	}
	return 0
}

// classHash folds an FNV-1a 32-bit hash down to 16 bits (xor-fold) and
// remaps the degenerate 0 result to 1, since 0 is reserved to mean "no
// class" in Selector/Matches.
func classHash(class string) uint16 {
	if class == "" {
		return 0
	}
	h := fnv1a32(class)
	folded := uint16(h>>16) ^ uint16(h)
	if folded == 0 {
		return 1
	}
	return folded
}

const (
	fnvOffset32 = 0x811c9dc5
	fnvPrime32  = 0x01000193
)

func fnv1a32(s string) uint32 {
	h := uint32(fnvOffset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime32
	}
	return h
}

// parseLengthQEM converts a CSS length to quarter-em units (em/rem and
// unitless values at 4 per em, px/pt at a nominal 16px em, 0/auto/normal
// as 0) as an int8, clamped to +-126 so it always fits the packed
// StyleProps fields.
func parseLengthQEM(s string) (int8, bool) {
	s = trimSpace(s)
	if s == "" {
		return 0, false
	}
	switch s {
	case "0", "auto", "normal":
		return 0, true
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}
	numEnd := 0
	for numEnd < len(s) && (s[numEnd] == '.' || (s[numEnd] >= '0' && s[numEnd] <= '9')) {
		numEnd++
	}
	if numEnd == 0 {
		return 0, false
	}
	numStr := s[:numEnd]
	unit := s[numEnd:]
	val, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}

	var scaled float64
	switch unit {
	case "em", "rem", "":
		scaled = val * 4
	case "px":
		// 16px per em is 4px per quarter-em, rounded to nearest.
		scaled = (val*100 + 200) / 400
	case "pt":
		px := val * 96 / 72
		scaled = (px*100 + 200) / 400
	default:
		return 0, false
	}
	if neg {
		scaled = -scaled
	}
	clamped := scaled
	if clamped > 126 {
		clamped = 126
	}
	if clamped < -126 {
		clamped = -126
	}
	return int8(clamped), true
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
