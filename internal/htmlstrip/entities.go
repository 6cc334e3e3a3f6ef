/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package htmlstrip

var namedEntities = map[string]byte{
	"amp":    '&',
	"lt":     '<',
	"gt":     '>',
	"quot":   '"',
	"apos":   '\'',
	"nbsp":   ' ',
	"mdash":  '-',
	"emdash": '-',
	"ndash":  '-',
	"endash": '-',
	"lsquo":  '\'',
	"rsquo":  '\'',
	"sbquo":  '\'',
	"ldquo":  '"',
	"rdquo":  '"',
	"bdquo":  '"',
	"hellip": '.',
	"copy":   'c',
	"reg":    'R',
	"trade":  'T',
	"times":  'x',
	"divide": '/',
	"deg":    '*',
	"plusmn": '+',
	"frac12": '/',
	"frac14": '/',
	"frac34": '/',
}

// codepointToByte mirrors the original's ASCII-approximation table for
// numeric character references: ASCII passes through unchanged, selected
// Latin-1/Unicode punctuation gets a dedicated approximation, and anything
// else becomes '?' rather than being dropped.
func codepointToByte(cp int) (byte, bool) {
	switch {
	case cp == 0:
		return 0, false
	case cp >= 0x0001 && cp <= 0x007F:
		return byte(cp), true
	case cp == 0x00A0: // nbsp
		return ' ', true
	case cp == 0x00AD: // soft hyphen
		return '-', true
	case cp == 0x2013 || cp == 0x2014: // en dash, em dash
		return '-', true
	case cp >= 0x2018 && cp <= 0x201A: // single quotes, low-9 quote
		return '\'', true
	case cp >= 0x201C && cp <= 0x201E: // double quotes, low-9 quote
		return '"', true
	case cp == 0x2022: // bullet
		return '*', true
	case cp == 0x2026: // ellipsis
		return '.', true
	default:
		return '?', true
	}
}

// decodeEntity is called with chunk starting at '&'. It returns the
// decoded byte and how many input bytes the entity consumed, or (0, 0) if
// chunk[0] isn't the start of a recognized entity (in which case the '&'
// itself should be emitted literally).
func decodeEntity(chunk []byte) (byte, int) {
	semi := indexByteFrom(chunk, ';', 1)
	if semi < 0 || semi > 10 {
		return 0, 0
	}
	body := string(chunk[1:semi])
	if len(body) > 1 && body[0] == '#' {
		var code int
		ok := false
		if len(body) > 2 && (body[1] == 'x' || body[1] == 'X') {
			code, ok = parseHex(body[2:])
		} else {
			code, ok = parseDec(body[1:])
		}
		if !ok {
			return 0, 0
		}
		b, decodable := codepointToByte(code)
		if !decodable {
			return 0, 0
		}
		return b, semi + 1
	}
	if b, ok := namedEntities[body]; ok {
		return b, semi + 1
	}
	return 0, 0
}

func parseDec(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func parseHex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return 0, false
		}
		n = n*16 + d
	}
	return n, true
}
