/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package css

import "strings"

// Parse reads a CSS stylesheet and returns the rules it could make sense
// of within MaxRules. Anything past the limit, any @-rule, and any
// selector this package can't represent (bare #id, pseudo-elements, etc.)
// is silently skipped — this is a best-effort cascade for EPUB chapter
// styling, not a conformance-tested parser.
func Parse(src string) *Rules {
	r := &Rules{}
	i := 0
	n := len(src)
	for i < n {
		i = skipWhitespaceAndComments(src, i)
		if i >= n {
			break
		}
		if src[i] == '@' {
			i = skipAtRule(src, i)
			continue
		}
		selEnd := strings.IndexByte(src[i:], '{')
		if selEnd < 0 {
			break
		}
		selText := src[i : i+selEnd]
		braceStart := i + selEnd
		braceEnd := matchBrace(src, braceStart)
		if braceEnd < 0 {
			break
		}
		declText := src[braceStart+1 : braceEnd]
		props := parseDeclarations(declText)

		for _, group := range strings.Split(selText, ",") {
			sel, ok := parseSelector(group)
			if ok && r.count < MaxRules {
				r.rules[r.count] = Rule{Sel: sel, Props: props}
				r.count++
			}
		}
		i = braceEnd + 1
	}
	return r
}

func skipWhitespaceAndComments(s string, i int) int {
	for i < len(s) {
		if isSpace(s[i]) {
			i++
			continue
		}
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return len(s)
			}
			i = i + 2 + end + 2
			continue
		}
		break
	}
	return i
}

// skipAtRule skips an @-rule, which is either brace-delimited (e.g.
// @media {...}) or semicolon-terminated (e.g. @import "x.css";).
func skipAtRule(s string, i int) int {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		case ';':
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s)
}

func matchBrace(s string, open int) int {
	depth := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// parseSelector takes the rightmost simple selector of a combinator chain
// (descendant/child/sibling combinators are stripped, since this cascade
// has no notion of ancestry), strips pseudo-classes and any #id (bare-id
// selectors can't be represented by the tag/class model and resolve to
// Empty), and splits "tag.class" into its parts.
func parseSelector(raw string) (Selector, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Selector{}, false
	}
	// rightmost simple selector: split on whitespace/combinators and take last
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '>' || r == '+' || r == '~'
	})
	if len(fields) == 0 {
		return Selector{}, false
	}
	last := fields[len(fields)-1]

	// strip pseudo-classes/elements
	if idx := strings.IndexByte(last, ':'); idx >= 0 {
		last = last[:idx]
	}

	if strings.Contains(last, "#") {
		// bare or tag#id selectors can't be represented; only allow a
		// trailing #id to be stripped when there's also a tag or class
		// to match on, otherwise this selector can't match anything in
		// our model.
		parts := strings.SplitN(last, "#", 2)
		last = parts[0]
		if last == "" {
			return Selector{}, false
		}
	}

	var tagPart, classPart string
	if idx := strings.IndexByte(last, '.'); idx >= 0 {
		tagPart = last[:idx]
		classPart = last[idx+1:]
	} else {
		tagPart = last
	}

	var sel Selector
	specificity := uint8(0)
	if tagPart != "" && tagPart != "*" {
		sel.Tag = tagID(tagPart)
		if sel.Tag != 0 {
			specificity++
		}
	}
	if classPart != "" {
		sel.ClassHash = classHash(classPart)
		specificity += 16
	}
	if sel.Tag == 0 && sel.ClassHash == 0 {
		return Selector{}, false
	}
	sel.Specificity = specificity
	return sel, true
}

func parseDeclarations(body string) StyleProps {
	var props StyleProps
	for _, decl := range strings.Split(body, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		idx := strings.IndexByte(decl, ':')
		if idx < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(decl[:idx]))
		value := strings.ToLower(strings.TrimSpace(decl[idx+1:]))
		parseProperty(&props, name, value)
	}
	return props
}

func parseProperty(p *StyleProps, name, value string) {
	switch name {
	case "font-weight":
		switch value {
		case "bold", "bolder", "600", "700", "800", "900":
			p.FontWeight = FontWeightBold
		default:
			p.FontWeight = FontWeightNormal
		}
		p.Set |= PropFontWeight
	case "font-style":
		if value == "italic" || value == "oblique" {
			p.FontStyle = FontStyleItalic
		} else {
			p.FontStyle = FontStyleNormal
		}
		p.Set |= PropFontStyle
	case "text-align":
		switch value {
		case "center":
			p.TextAlign = TextAlignCenter
		case "right":
			p.TextAlign = TextAlignRight
		case "justify":
			p.TextAlign = TextAlignJustify
		default:
			p.TextAlign = TextAlignLeft
		}
		p.Set |= PropTextAlign
	case "text-indent":
		if v, ok := parseLengthQEM(value); ok {
			p.TextIndent = v
			p.Set |= PropTextIndent
		}
	case "display":
		switch value {
		case "none":
			p.Display = DisplayNone
		case "block", "list-item", "table", "table-row", "table-cell":
			p.Display = DisplayBlock
		case "inline", "inline-block":
			p.Display = DisplayInline
		default:
			return
		}
		p.Set |= PropDisplay
	case "text-decoration", "text-decoration-line":
		switch {
		case strings.Contains(value, "underline"):
			p.TextDecoration = TextDecorationUnderline
		case strings.Contains(value, "line-through"):
			p.TextDecoration = TextDecorationLineThrough
		default:
			p.TextDecoration = TextDecorationNone
		}
		p.Set |= PropTextDecoration
	case "margin":
		parseMarginShorthand(p, value)
	case "margin-left":
		if v, ok := parseLengthQEM(value); ok {
			p.MarginLeft = v
			p.Set |= PropMarginLeft
		}
	case "margin-right":
		if v, ok := parseLengthQEM(value); ok {
			p.MarginRight = v
			p.Set |= PropMarginRight
		}
	case "margin-top":
		if v, ok := parseLengthQEM(value); ok {
			p.MarginTop = v
			p.Set |= PropMarginTop
		}
	case "margin-bottom":
		if v, ok := parseLengthQEM(value); ok {
			p.MarginBottom = v
			p.Set |= PropMarginBottom
		}
	}
}

// parseMarginShorthand applies CSS's 1/2/3/4-value shorthand rotation:
// 1 value -> all sides; 2 -> vertical, horizontal; 3 -> top, horizontal,
// bottom; 4 -> top, right, bottom, left.
func parseMarginShorthand(p *StyleProps, value string) {
	fields := strings.Fields(value)
	vals := make([]int8, 0, len(fields))
	for _, f := range fields {
		v, ok := parseLengthQEM(f)
		if !ok {
			return
		}
		vals = append(vals, v)
	}
	var top, right, bottom, left int8
	switch len(vals) {
	case 1:
		top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
	case 2:
		top, bottom = vals[0], vals[0]
		right, left = vals[1], vals[1]
	case 3:
		top, bottom = vals[0], vals[2]
		right, left = vals[1], vals[1]
	case 4:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
	default:
		return
	}
	p.MarginTop, p.MarginRight, p.MarginBottom, p.MarginLeft = top, right, bottom, left
	p.Set |= PropMarginTop | PropMarginRight | PropMarginBottom | PropMarginLeft
}
