/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package chaptercache manages the on-disk, per-book cache of already
// stripped chapter text: a META.BIN header plus one CHnnn.TXT file per
// spine item, keyed by an FNV-1a hash of the book's identity so re-opening
// the same book skips re-parsing its ZIP and re-stripping its HTML.
package chaptercache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pulpcore/internal/htmlstrip"
	"pulpcore/internal/zipindex"
)

const (
	Magic   uint32 = 0x504C5043 // "PLPC" as a u32; stored little-endian, so the file starts with the bytes "CPLP"
	Version uint32 = 1

	// MetaHeaderSize is the fixed prefix of META.BIN: magic, version,
	// spine count, and reserved padding to a round 16 bytes.
	MetaHeaderSize = 16

	MaxChapters = 256
)

var (
	ErrBadMagic      = errors.New("chaptercache: bad META.BIN magic")
	ErrBadVersion    = errors.New("chaptercache: unsupported META.BIN version")
	ErrTooManyChapters = errors.New("chaptercache: spine has more than MaxChapters entries")
	ErrHashMismatch  = errors.New("chaptercache: cache directory hash does not match book identity")
)

// DirName returns the cache directory name for a book identified by its
// ZIP archive size and its first spine entry's CRC32: an FNV-1a hash over
// the little-endian bytes of both values, formatted as 8 lowercase hex
// digits. The book's filename is not part of the hash, so the name differs
// from the filename-keyed FNV-1a identity the bookmark table uses.
func DirName(archiveSize int64, firstSpineCRC uint32) string {
	h := fnv1a32Seed(uint32(archiveSize))
	h = fnv1a32Mix(h, firstSpineCRC)
	return fmt.Sprintf("%08x", h)
}

func fnv1a32Seed(v uint32) uint32 {
	h := uint32(0x811c9dc5)
	for i := 0; i < 4; i++ {
		h ^= byte32(v, i)
		h *= 0x01000193
	}
	return h
}

func fnv1a32Mix(h, v uint32) uint32 {
	for i := 0; i < 4; i++ {
		h ^= uint32(byte32(v, i))
		h *= 0x01000193
	}
	return h
}

func byte32(v uint32, i int) uint32 { return (v >> (8 * uint(i))) & 0xFF }

// Meta is the decoded contents of META.BIN.
type Meta struct {
	SpineCount int
}

// Cache manages one book's on-disk cache directory.
type Cache struct {
	dir string
}

// Open returns a Cache rooted at root/dirName, creating the directory if
// it doesn't exist yet.
func Open(root, dirName string) (*Cache, error) {
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chaptercache: create dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// ReadMeta reads and validates META.BIN, returning (Meta{}, false, nil) if
// the file doesn't exist yet (a cold cache, not an error).
func (c *Cache) ReadMeta() (Meta, bool, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, "META.BIN"))
	if errors.Is(err, os.ErrNotExist) {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("chaptercache: read META.BIN: %w", err)
	}
	if len(data) < MetaHeaderSize {
		return Meta{}, false, fmt.Errorf("chaptercache: META.BIN truncated")
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != Magic {
		return Meta{}, false, ErrBadMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return Meta{}, false, ErrBadVersion
	}
	spineCount := binary.LittleEndian.Uint32(data[8:12])
	if spineCount > MaxChapters {
		return Meta{}, false, ErrTooManyChapters
	}
	return Meta{SpineCount: int(spineCount)}, true, nil
}

// WriteMeta writes META.BIN for a book with the given spine length.
func (c *Cache) WriteMeta(spineCount int) error {
	if spineCount > MaxChapters {
		return ErrTooManyChapters
	}
	buf := make([]byte, MetaHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(spineCount))
	return os.WriteFile(filepath.Join(c.dir, "META.BIN"), buf, 0o644)
}

func chapterFileName(index int) string {
	return fmt.Sprintf("CH%03d.TXT", index)
}

// HasChapter reports whether chapter index's stripped text is already
// cached on disk.
func (c *Cache) HasChapter(index int) bool {
	_, err := os.Stat(filepath.Join(c.dir, chapterFileName(index)))
	return err == nil
}

// ReadChapter returns the cached stripped text for chapter index.
func (c *Cache) ReadChapter(index int) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, chapterFileName(index)))
	if err != nil {
		return nil, fmt.Errorf("chaptercache: read chapter %d: %w", index, err)
	}
	return data, nil
}

// WriteChapter stores already-stripped text for chapter index.
func (c *Cache) WriteChapter(index int, strippedText []byte) error {
	return os.WriteFile(filepath.Join(c.dir, chapterFileName(index)), strippedText, 0o644)
}

// StripAndCacheChapter decompresses entry's data out of the archive
// opened via ra, using the wrapping-window streaming inflate, feeds the
// decompressed chunks to an htmlstrip.Stripper, and stores the result as
// chapter index. The Stripper buffers all of its input until Finish, so the
// chapter's full decompressed HTML is held in memory at once.
func (c *Cache) StripAndCacheChapter(ra io.ReaderAt, entry zipindex.Entry, index int) ([]byte, error) {
	off, err := zipindex.DataOffset(ra, entry)
	if err != nil {
		return nil, err
	}
	sr := io.NewSectionReader(ra, off, int64(entry.CompressedSize))

	s := htmlstrip.New()
	feed := func(chunk []byte) error {
		s.Write(chunk)
		return nil
	}

	if entry.Method == 0 {
		buf := make([]byte, 4096)
		for {
			n, rerr := sr.Read(buf)
			if n > 0 {
				if ferr := feed(buf[:n]); ferr != nil {
					return nil, ferr
				}
			}
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				return nil, fmt.Errorf("chaptercache: read stored entry: %w", rerr)
			}
		}
	} else {
		var win zipindex.Window
		if err := zipindex.DecompressWrapping(sr, &win, feed); err != nil {
			return nil, fmt.Errorf("chaptercache: inflate chapter: %w", err)
		}
	}

	stripped := s.Finish()
	if err := c.WriteChapter(index, stripped); err != nil {
		return nil, err
	}
	return stripped, nil
}

// Dir returns the cache directory path, for diagnostics/tests.
func (c *Cache) Dir() string { return c.dir }
