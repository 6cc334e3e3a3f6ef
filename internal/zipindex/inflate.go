/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package zipindex

import (
	"compress/flate"
	"errors"
	"fmt"
	"io"
)

// WindowSize is the circular retained-output window used by wrapping-mode
// streaming decompression: large enough to cover DEFLATE's own 32 KiB back
// references, small enough to keep per-chapter memory flat regardless of
// how long the chapter's decompressed HTML actually is.
const WindowSize = 32 * 1024

// Window is a fixed-capacity ring buffer holding only the most recently
// produced bytes of a decompression stream. It never grows past
// WindowSize: once full, each write evicts the oldest bytes it overwrites.
type Window struct {
	buf    [WindowSize]byte
	filled int
	pos    int // next write position
	total  int64
}

// Write implements io.Writer, feeding produced bytes into the ring.
func (w *Window) Write(p []byte) (int, error) {
	for _, b := range p {
		w.buf[w.pos] = b
		w.pos = (w.pos + 1) % WindowSize
		if w.filled < WindowSize {
			w.filled++
		}
	}
	w.total += int64(len(p))
	return len(p), nil
}

// Len returns how many bytes are currently retained (<= WindowSize).
func (w *Window) Len() int { return w.filled }

// Total returns the total number of bytes ever written, including ones
// since evicted from the window.
func (w *Window) Total() int64 { return w.total }

// Tail copies the n most recently written bytes (n <= Len()) into dst,
// oldest first, and returns the number of bytes copied.
func (w *Window) Tail(dst []byte, n int) int {
	if n > w.filled {
		n = w.filled
	}
	if n > len(dst) {
		n = len(dst)
	}
	start := (w.pos - n + WindowSize) % WindowSize
	for i := 0; i < n; i++ {
		dst[i] = w.buf[(start+i)%WindowSize]
	}
	return n
}

// ErrShortCapture reports decompressed output that exceeded a capture
// limit. DecompressOneShot applies no such limit and does not return it.
var ErrShortCapture = errors.New("zipindex: decompressed output exceeded capture limit")

// DecompressOneShot inflates r fully into a freshly-allocated buffer sized
// from uncompressedSize (an untrusted value taken from the central
// directory record, so it is only ever used to presize, never trusted as
// an exact bound: the reader still stops at flate's own end-of-stream).
// Used for small members (container.xml, the OPF, CSS) where holding the
// whole decompressed form in memory is cheap and simpler than streaming.
func DecompressOneShot(r io.Reader, uncompressedSize uint32) ([]byte, error) {
	const presizeCap = 4 << 20 // refuse to trust a claimed size past 4 MiB
	presize := int(uncompressedSize)
	if presize < 0 || presize > presizeCap {
		presize = 64 * 1024
	}
	fr := flate.NewReader(r)
	defer fr.Close()
	out := make([]byte, 0, presize)
	buf := make([]byte, 4096)
	for {
		n, err := fr.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("zipindex: inflate: %w", err)
		}
	}
	return out, nil
}

// StreamFunc receives each chunk of decompressed output as it is produced,
// in order. Returning a non-nil error aborts decompression.
type StreamFunc func(chunk []byte) error

// DecompressWrapping inflates r chunk by chunk, handing each chunk to fn as
// soon as it is produced and retaining only the last WindowSize bytes in
// win for any caller that needs trailing context. Unlike DecompressOneShot, the full
// decompressed stream is never held in memory at once: this is the mode
// chaptercache uses for chapter bodies, which can be large.
func DecompressWrapping(r io.Reader, win *Window, fn StreamFunc) error {
	fr := flate.NewReader(r)
	defer fr.Close()
	buf := make([]byte, 4096)
	for {
		n, err := fr.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if win != nil {
				_, _ = win.Write(chunk)
			}
			if ferr := fn(chunk); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("zipindex: inflate: %w", err)
		}
	}
}
