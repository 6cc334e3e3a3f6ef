/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package kernel

import "context"

// Signal is a single-slot mailbox: the latest value overwrites whatever
// was pending, and a waiter only ever sees the most recent one. This is
// the channel-based stand-in for the original firmware's Embassy Signal,
// used between the task goroutines below and the main render loop.
type Signal[T any] struct {
	ch chan T
}

// NewSignal returns a ready-to-use Signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{ch: make(chan T, 1)}
}

// Set stores v, discarding any value that hasn't been consumed yet.
func (s *Signal[T]) Set(v T) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

// Wait blocks until a value is available or ctx is done.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	select {
	case v := <-s.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryTake returns the pending value without blocking, if any.
func (s *Signal[T]) TryTake() (T, bool) {
	select {
	case v := <-s.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
