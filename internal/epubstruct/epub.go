/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package epubstruct

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"pulpcore/internal/zipindex"
)

// Field caps matching the on-device fixed-size buffers these values are
// ultimately copied into.
const (
	TitleCap  = 96
	AuthorCap = 64
	MaxSpine  = 256
)

var (
	ErrNoOPFPointer = errors.New("epubstruct: container.xml has no rootfile pointer to an OPF package")
	ErrEmptySpine   = errors.New("epubstruct: OPF spine is empty")
	ErrOPFNotFound  = errors.New("epubstruct: OPF package document not found in archive")
)

// Book is the resolved structure of one EPUB: title/author (truncated to
// their device-side caps), and the ordered list of spine item ZIP entry
// paths ready to hand to the chapter cache.
type Book struct {
	Title  string
	Author string
	Spine  []string // ZIP entry paths, reading order
}

// ResolveContainerOPFPath reads META-INF/container.xml and returns the ZIP
// entry path of the OPF package document it points to.
func ResolveContainerOPFPath(containerXML []byte) (string, error) {
	var opfPath string
	ScanTags(containerXML, func(t Tag) bool {
		if t.Name != "rootfile" {
			return true
		}
		if v, ok := t.Get("full-path"); ok {
			opfPath = v
			return false
		}
		return true
	})
	if opfPath == "" {
		return "", ErrNoOPFPointer
	}
	return opfPath, nil
}

// Resolve builds a Book from an OPF package document's bytes and the ZIP
// path it was found at (needed to resolve every manifest href, which is
// relative to the OPF's own directory).
func Resolve(opfXML []byte, opfZIPPath string) (Book, error) {
	opfDir := path.Dir(opfZIPPath)
	if opfDir == "." {
		opfDir = ""
	}

	var title, author string
	manifest := map[string]string{} // id -> href (resolved ZIP path)
	var spineIDs []string

	ScanTags(opfXML, func(t Tag) bool {
		switch t.Name {
		case "item":
			id, hasID := t.Get("id")
			href, hasHref := t.Get("href")
			if hasID && hasHref {
				manifest[id] = resolvePath(opfDir, href)
			}
		case "itemref":
			if idref, ok := t.Get("idref"); ok {
				if linear, ok := t.Get("linear"); !ok || linear != "no" {
					spineIDs = append(spineIDs, idref)
				}
			}
		}
		return true
	})

	title = firstElementText(opfXML, "title")
	author = firstElementText(opfXML, "creator")

	if len(title) > TitleCap {
		title = title[:TitleCap]
	}
	if len(author) > AuthorCap {
		author = author[:AuthorCap]
	}

	spine := make([]string, 0, len(spineIDs))
	for _, id := range spineIDs {
		if href, ok := manifest[id]; ok {
			spine = append(spine, href)
			if len(spine) >= MaxSpine {
				break
			}
		}
	}
	if len(spine) == 0 {
		return Book{}, ErrEmptySpine
	}

	return Book{Title: title, Author: author, Spine: spine}, nil
}

// firstElementText extracts the text content of the first <name> or
// <ns:name> element, a small special case the start-tag-only scanner
// doesn't otherwise handle; title/creator are the only elements this
// resolution layer needs text content from.
func firstElementText(doc []byte, name string) string {
	lower := strings.ToLower(string(doc))
	target := "<" + name
	idx := -1
	for search := 0; search < len(lower); {
		i := strings.Index(lower[search:], target)
		if i < 0 {
			break
		}
		pos := search + i
		after := pos + len(target)
		if after < len(lower) && (lower[after] == '>' || isXMLSpace(lower[after]) || lower[after] == '/') {
			idx = pos
			break
		}
		search = pos + 1
	}
	if idx < 0 {
		// try a namespaced form like <dc:title>
		target = ":" + name
		i := strings.Index(lower, target)
		if i < 0 {
			return ""
		}
		// back up to the '<'
		lt := strings.LastIndexByte(lower[:i], '<')
		if lt < 0 {
			return ""
		}
		idx = lt
	}
	gt := indexByteFromXML(doc, '>', idx)
	if gt < 0 {
		return ""
	}
	closeTag := "</"
	endIdx := strings.Index(lower[gt:], closeTag)
	if endIdx < 0 {
		return ""
	}
	text := doc[gt+1 : gt+endIdx]
	return strings.TrimSpace(unescapeXML(string(text)))
}

// resolvePath joins an OPF-relative href onto the OPF's own directory,
// handling "../", "./", a leading "/" (archive-absolute), and a trailing
// "#fragment". The href (not opfDir) is percent-decoded before joining. Lookups against the ZIP
// index itself still fall back to a case-insensitive match.
func resolvePath(opfDir, href string) string {
	if h, _, found := strings.Cut(href, "#"); found {
		href = h
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if strings.HasPrefix(href, "/") {
		return path.Clean(href[1:])
	}
	joined := href
	if opfDir != "" {
		joined = opfDir + "/" + href
	}
	return path.Clean(joined)
}

// ResolveFromArchive is the convenience entry point: given an opened ZIP
// index and a reader over the archive, it locates container.xml, follows
// it to the OPF, and resolves the Book.
func ResolveFromArchive(idx *zipindex.Index, read func(entry zipindex.Entry) ([]byte, error)) (Book, error) {
	ce, ok := idx.Lookup("META-INF/container.xml")
	if !ok {
		return Book{}, fmt.Errorf("epubstruct: %w", errors.New("container.xml not found"))
	}
	containerXML, err := read(ce)
	if err != nil {
		return Book{}, fmt.Errorf("epubstruct: read container.xml: %w", err)
	}
	opfPath, err := ResolveContainerOPFPath(containerXML)
	if err != nil {
		return Book{}, err
	}
	oe, ok := idx.Lookup(opfPath)
	if !ok {
		return Book{}, ErrOPFNotFound
	}
	opfXML, err := read(oe)
	if err != nil {
		return Book{}, fmt.Errorf("epubstruct: read OPF: %w", err)
	}
	return Resolve(opfXML, opfPath)
}
