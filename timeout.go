// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weave

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Timeouts accepted by the blocking operations in this package. Any
// positive duration bounds the wait; the two sentinels below select the
// try-once and block-indefinitely behaviors.
const (
	// NoWait makes the operation try exactly once and fail immediately if
	// it cannot proceed.
	NoWait time.Duration = 0

	// Forever makes the operation block until it can proceed.
	Forever time.Duration = -1
)

// How many rounds to spin before falling back to adaptive backoff while
// waiting on a queue. Spinning is cheap relative to the typical drain
// latency of a busy worker; anything longer-lived should yield.
const spinRounds = 64

// A waiter repeatedly retries a non-blocking attempt until it succeeds or
// the timeout elapses. It spins briefly, then backs off.
type waiter struct {
	deadline time.Time
	forever  bool
	round    int
	sw       spin.Wait
	backoff  iox.Backoff
}

func newWaiter(timeout time.Duration) waiter {
	if timeout < 0 {
		return waiter{forever: true}
	}

	return waiter{deadline: time.Now().Add(timeout)}
}

// Pause waits a little while, returning false when the deadline has
// passed and the caller should give up.
func (w *waiter) pause() bool {
	if !w.forever && !time.Now().Before(w.deadline) {
		return false
	}

	if w.round < spinRounds {
		w.round++
		w.sw.Once()
		return true
	}

	w.backoff.Wait()
	return true
}
