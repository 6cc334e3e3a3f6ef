/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command pulpsim hosts the reader on a desktop window: a virtual panel
// fed by internal/simulator.CaptureFullFrame, and virtual buttons driven
// by keyboard input through the real internal/input debounce/long-press/
// repeat state machine. It draws a minimal counter screen rather than the
// full app shell, just enough to prove the harness moves pixels and
// events end to end.
package main

import (
	"flag"
	"fmt"
	"time"

	"pulpcore/internal/input"
	"pulpcore/internal/log"
	"pulpcore/internal/simulator"
	"pulpcore/internal/strip"
	"pulpcore/internal/version"
)

const pollInterval = 15 * time.Millisecond

func main() {
	sdRoot := flag.String("sd", "", "path to an emulated SD root directory to watch for presence")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.Init(log.FromEnv())
	l := log.WithComponent("pulpsim")

	sim := simulator.New("pulpcore simulator")

	var watcher *simulator.SDWatcher
	if *sdRoot != "" {
		w, err := simulator.WatchSDPresence(*sdRoot)
		if err != nil {
			l.Error("watch sd presence failed", "err", err)
		} else {
			watcher = w
			go func() {
				for present := range watcher.Events() {
					l.Info("sd presence changed", "present", present)
				}
			}()
		}
	}

	state := newCounterState()
	driver := input.New(sim.Keyboard())

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for range ticker.C {
			for {
				ev, ok, err := driver.Poll()
				if err != nil {
					l.Error("input poll failed", "err", err)
					break
				}
				if !ok {
					break
				}
				state.handle(ev)
			}
			sim.ShowFrame(simulator.CaptureFullFrame(state.draw))
		}
	}()

	sim.Run()

	if watcher != nil {
		_ = watcher.Close()
	}
}

// counterState is the demo's entire "app": VolUp/VolDown adjust a count,
// Confirm resets it, and the panel shows it as a tally of filled squares,
// one strip.FillRect call per square.
type counterState struct {
	count int
}

func newCounterState() *counterState { return &counterState{} }

func (s *counterState) handle(ev input.Event) {
	if ev.Kind != input.Press && ev.Kind != input.Repeat {
		return
	}
	switch ev.Button {
	case input.VolUp:
		if s.count < 20 {
			s.count++
		}
	case input.VolDown:
		if s.count > 0 {
			s.count--
		}
	case input.Confirm:
		s.count = 0
	}
}

func (s *counterState) draw(win *strip.Buffer) {
	const (
		boxSize = 24
		gap     = 8
		marginX = 16
		marginY = 16
		perRow  = 20
	)
	for i := 0; i < s.count; i++ {
		col := i % perRow
		row := i / perRow
		x0 := marginX + col*(boxSize+gap)
		y0 := marginY + row*(boxSize+gap)
		win.FillRect(x0, y0, x0+boxSize, y0+boxSize, true)
	}
}
