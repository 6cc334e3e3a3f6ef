/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package kernel

import (
	"context"
	"time"

	"pulpcore/internal/input"
)

// InputEventChanCap matches the original firmware's input event channel
// depth: enough to absorb a short burst before the main loop drains it.
const InputEventChanCap = 8

// batteryIntervalTicks is how many 10ms input-task ticks make up one
// battery sample: 3000 x 10ms = 30s.
const batteryIntervalTicks = 3000

// BatteryReader reads the raw battery ADC channel, in millivolts.
type BatteryReader interface {
	ReadBatteryMV() (uint16, error)
}

// TrySendEvent is a non-blocking send: it drops ev if events is full,
// mirroring the original firmware's try_send (the main loop is expected
// to drain faster than events arrive, so a drop here means something
// else already went badly wrong upstream).
func TrySendEvent(events chan<- input.Event, ev input.Event) bool {
	select {
	case events <- ev:
		return true
	default:
		return false
	}
}

// InputTask polls driver every BaseTickMS, forwarding debounced events to
// events and signalling idleReset on any activity. Every 30s it also
// samples the battery and publishes the percentage-ready millivolt value
// to batteryMV. It runs until ctx is cancelled.
func InputTask(ctx context.Context, driver *input.Driver, battery BatteryReader, events chan<- input.Event, batteryMV *Signal[uint16], idleReset *Signal[struct{}]) {
	ticker := time.NewTicker(BaseTickMS * time.Millisecond)
	defer ticker.Stop()

	var batteryCounter uint32

	if raw, err := battery.ReadBatteryMV(); err == nil {
		batteryMV.Set(input.ADCToBatteryMV(raw))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ev, ok, err := driver.Poll(); err == nil && ok {
				TrySendEvent(events, ev)
				idleReset.Set(struct{}{})
			}

			batteryCounter++
			if batteryCounter >= batteryIntervalTicks {
				batteryCounter = 0
				if raw, err := battery.ReadBatteryMV(); err == nil {
					batteryMV.Set(input.ADCToBatteryMV(raw))
				}
			}
		}
	}
}

// HousekeepingSignals bundles the periodic due-flags the housekeeping
// task raises.
type HousekeepingSignals struct {
	StatusDue         *Signal[struct{}]
	SDCheckDue        *Signal[struct{}]
	BookmarkFlushDue  *Signal[struct{}]
}

// HousekeepingTask raises StatusDue every 5s and SDCheckDue/
// BookmarkFlushDue every 30s (staggered 2s apart so they don't both hit
// the SD card in the same tick), until ctx is cancelled.
func HousekeepingTask(ctx context.Context, sig HousekeepingSignals) {
	statusTicker := time.NewTicker(5 * time.Second)
	defer statusTicker.Stop()

	sdTicker := time.NewTicker(30 * time.Second)
	defer sdTicker.Stop()

	bmTimer := time.NewTimer(2 * time.Second)
	defer bmTimer.Stop()
	var bmTicker *time.Ticker
	defer func() {
		if bmTicker != nil {
			bmTicker.Stop()
		}
	}()

	var bmC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-statusTicker.C:
			sig.StatusDue.Set(struct{}{})
		case <-sdTicker.C:
			sig.SDCheckDue.Set(struct{}{})
		case <-bmTimer.C:
			bmTicker = time.NewTicker(30 * time.Second)
			bmC = bmTicker.C
		case <-bmC:
			sig.BookmarkFlushDue.Set(struct{}{})
		}
	}
}

// IdleTimeoutTask raises idleSleepDue once the idle timer (configured via
// idleTimeoutMins, 0 meaning disabled) expires with no activity on
// idleReset. Any activity or a new configured timeout restarts the
// countdown. Runs until ctx is cancelled.
func IdleTimeoutTask(ctx context.Context, idleTimeoutMins *Signal[uint16], idleReset *Signal[struct{}], idleSleepDue *Signal[struct{}]) {
	timeoutMins, err := idleTimeoutMins.Wait(ctx)
	if err != nil {
		return
	}

	for {
		if timeoutMins == 0 {
			timeoutMins, err = idleTimeoutMins.Wait(ctx)
			if err != nil {
				return
			}
			continue
		}

		duration := time.Duration(timeoutMins) * time.Minute
		idleReset.TryTake()
		if newMins, ok := idleTimeoutMins.TryTake(); ok {
			timeoutMins = newMins
			continue
		}

		restart := false
		for !restart {
			timer := time.NewTimer(duration)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-idleReset.ch:
				timer.Stop()
				continue
			case newMins := <-idleTimeoutMins.ch:
				timer.Stop()
				timeoutMins = newMins
				restart = true
			case <-timer.C:
				idleSleepDue.Set(struct{}{})

				select {
				case <-ctx.Done():
					return
				case <-idleReset.ch:
				case newMins := <-idleTimeoutMins.ch:
					timeoutMins = newMins
					restart = true
				}
			}
		}
	}
}
