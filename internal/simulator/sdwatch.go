/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package simulator

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SDWatcher fires an event whenever the emulated SD root's marker path is
// created or removed, standing in for the real device's "SD presence
// changed" signal (spec.md §4.8's housekeeping poll) with an event-driven
// host-side equivalent instead of a 30-second timer, so interactive
// testing doesn't have to wait on it.
type SDWatcher struct {
	w      *fsnotify.Watcher
	path   string
	events chan bool
}

// WatchSDPresence watches path (typically the emulated SD root directory
// itself) for creation/removal and reports the new presence state on the
// returned channel. The initial state is sent immediately.
func WatchSDPresence(path string) (*SDWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	sw := &SDWatcher{w: w, path: filepath.Clean(path), events: make(chan bool, 8)}
	go sw.loop()

	_, statErr := os.Stat(path)
	sw.events <- statErr == nil
	return sw, nil
}

func (s *SDWatcher) loop() {
	for {
		select {
		case ev, ok := <-s.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				s.events <- true
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				s.events <- false
			}
		case _, ok := <-s.w.Errors:
			if !ok {
				return
			}
		}
	}
}

// Events returns the channel of presence-changed notifications.
func (s *SDWatcher) Events() <-chan bool { return s.events }

// Close stops the watcher.
func (s *SDWatcher) Close() error { return s.w.Close() }
