/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package zipindex builds a central-directory index of a ZIP-based EPUB
// container by scanning backwards for the end-of-central-directory record,
// then walking the central directory once, interning entry names into a
// fixed-size table. No whole-archive extraction ever happens: entries are
// located and their compressed-data offsets resolved on demand.
package zipindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxEntries bounds the number of interned central-directory records, the
// same way a constrained device bounds most of its tables.
const MaxEntries = 256

var (
	ErrNoEOCD       = errors.New("zipindex: end of central directory record not found")
	ErrBadSignature = errors.New("zipindex: bad central directory signature")
	ErrTooManyFiles = errors.New("zipindex: archive has more than MaxEntries entries")
	ErrNotFound     = errors.New("zipindex: entry not found")
)

const (
	sigEOCD   = 0x06054b50
	sigCDFile = 0x02014b50
	eocdFixed = 22
	cdFixed   = 46

	maxCommentLen = 0xFFFF
)

// Entry is one interned central-directory record: just enough to locate
// and decompress the member's data.
type Entry struct {
	Name             string
	CompressedSize   uint32
	UncompressedSize uint32
	LocalHeaderOffset uint32
	Method           uint16 // 0 = stored, 8 = deflate
	CRC32            uint32
}

// Index is the interned, queryable set of entries for one archive.
type Index struct {
	entries []Entry
	byName  map[string]int
	byLower map[string]int
}

// Build reads ra backward from its end to find the EOCD record, then walks
// the central directory exactly once.
func Build(ra io.ReaderAt, size int64) (*Index, error) {
	eocdOff, commentLen, err := findEOCD(ra, size)
	if err != nil {
		return nil, err
	}

	eocd := make([]byte, eocdFixed)
	if _, err := ra.ReadAt(eocd, eocdOff); err != nil {
		return nil, fmt.Errorf("zipindex: read eocd: %w", err)
	}
	_ = commentLen

	totalEntries := binary.LittleEndian.Uint16(eocd[10:12])
	cdSize := binary.LittleEndian.Uint32(eocd[12:16])
	cdOffset := binary.LittleEndian.Uint32(eocd[16:20])

	if int(totalEntries) > MaxEntries {
		return nil, ErrTooManyFiles
	}

	buf := make([]byte, cdSize)
	if _, err := ra.ReadAt(buf, int64(cdOffset)); err != nil {
		return nil, fmt.Errorf("zipindex: read central directory: %w", err)
	}

	idx := &Index{
		entries: make([]Entry, 0, totalEntries),
		byName:  make(map[string]int, totalEntries),
		byLower: make(map[string]int, totalEntries),
	}

	pos := 0
	for i := 0; i < int(totalEntries); i++ {
		if pos+cdFixed > len(buf) {
			return nil, fmt.Errorf("zipindex: truncated central directory record %d", i)
		}
		rec := buf[pos:]
		if binary.LittleEndian.Uint32(rec[0:4]) != sigCDFile {
			return nil, ErrBadSignature
		}
		method := binary.LittleEndian.Uint16(rec[10:12])
		crc := binary.LittleEndian.Uint32(rec[16:20])
		compSize := binary.LittleEndian.Uint32(rec[20:24])
		uncompSize := binary.LittleEndian.Uint32(rec[24:28])
		nameLen := int(binary.LittleEndian.Uint16(rec[28:30]))
		extraLen := int(binary.LittleEndian.Uint16(rec[30:32]))
		commentFieldLen := int(binary.LittleEndian.Uint16(rec[32:34]))
		localOffset := binary.LittleEndian.Uint32(rec[42:46])

		nameStart := cdFixed
		if nameStart+nameLen > len(rec) {
			return nil, fmt.Errorf("zipindex: truncated file name in record %d", i)
		}
		name := string(rec[nameStart : nameStart+nameLen])

		if len(idx.entries) >= MaxEntries {
			return nil, ErrTooManyFiles
		}
		idx.entries = append(idx.entries, Entry{
			Name:              name,
			CompressedSize:    compSize,
			UncompressedSize:  uncompSize,
			LocalHeaderOffset: localOffset,
			Method:            method,
			CRC32:             crc,
		})
		eidx := len(idx.entries) - 1
		if _, exists := idx.byName[name]; !exists {
			idx.byName[name] = eidx
		}
		lower := strings.ToLower(name)
		if _, exists := idx.byLower[lower]; !exists {
			idx.byLower[lower] = eidx
		}

		pos += cdFixed + nameLen + extraLen + commentFieldLen
	}

	return idx, nil
}

// findEOCD scans backward from the end of the archive for the EOCD
// signature. The ZIP comment field is at most 64 KiB, so the search window
// is bounded.
func findEOCD(ra io.ReaderAt, size int64) (offset int64, commentLen uint16, err error) {
	window := int64(eocdFixed + maxCommentLen)
	if window > size {
		window = size
	}
	start := size - window
	buf := make([]byte, window)
	if _, err := ra.ReadAt(buf, start); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("zipindex: read tail: %w", err)
	}

	for i := len(buf) - eocdFixed; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) == sigEOCD {
			cLen := binary.LittleEndian.Uint16(buf[i+20 : i+22])
			if i+eocdFixed+int(cLen) <= len(buf) {
				return start + int64(i), cLen, nil
			}
		}
	}
	return 0, 0, ErrNoEOCD
}

// Lookup resolves name to its entry, trying an exact match first and
// falling back to a case-insensitive match (EPUB readers in the wild are
// lenient about href casing against the ZIP entry name).
func (idx *Index) Lookup(name string) (Entry, bool) {
	if i, ok := idx.byName[name]; ok {
		return idx.entries[i], true
	}
	if i, ok := idx.byLower[strings.ToLower(name)]; ok {
		return idx.entries[i], true
	}
	return Entry{}, false
}

// Len returns the number of interned entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns the interned entries in central-directory order. The
// caller must not mutate the returned slice's backing array.
func (idx *Index) Entries() []Entry { return idx.entries }

// DataOffset returns the file offset at which e's compressed data begins,
// reading e's local file header out of ra to account for its own
// (possibly different) extra-field length.
func DataOffset(ra io.ReaderAt, e Entry) (int64, error) {
	lh := make([]byte, 30)
	if _, err := ra.ReadAt(lh, int64(e.LocalHeaderOffset)); err != nil {
		return 0, fmt.Errorf("zipindex: read local header: %w", err)
	}
	if binary.LittleEndian.Uint32(lh[0:4]) != 0x04034b50 {
		return 0, errors.New("zipindex: bad local file header signature")
	}
	nameLen := binary.LittleEndian.Uint16(lh[26:28])
	extraLen := binary.LittleEndian.Uint16(lh[28:30])
	return int64(e.LocalHeaderOffset) + 30 + int64(nameLen) + int64(extraLen), nil
}
