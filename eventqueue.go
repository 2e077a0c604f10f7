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
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// A pending delivery: the target sink, the payload, and the policy whose
// reference the record owns.
type event struct {
	sink    *Sink
	payload *Payload
	ops     *Policy
}

// An EventQueue is a bounded FIFO of pending deliveries, shared by the
// queued sinks that point at it. One or more workers drain it by calling
// ProcessEvents.
type EventQueue struct {
	ring *lfq.MPMC[event]

	// The ring rounds its capacity up to a power of two; the logical
	// capacity is enforced with an occupancy count instead. size is
	// incremented before a record is enqueued and decremented after one is
	// dequeued, so it never under-counts the ring's contents.
	size     atomix.Int64
	capacity int64
}

// NewEventQueue returns an event queue holding at most capacity pending
// deliveries. Panics if capacity is not positive.
func NewEventQueue(capacity int) *EventQueue {
	if capacity < 1 {
		panic(fmt.Sprintf("NewEventQueue: invalid capacity %d", capacity))
	}

	ringCap := capacity
	if ringCap < 2 {
		ringCap = 2
	}

	return &EventQueue{
		ring:     lfq.NewMPMC[event](ringCap),
		capacity: int64(capacity),
	}
}

// Cap returns the queue's capacity.
func (q *EventQueue) Cap() int {
	return int(q.capacity)
}

// Len returns the number of pending deliveries at some instant.
func (q *EventQueue) Len() int {
	return int(q.size.LoadAcquire())
}

// Reserve a slot, without enqueueing anything yet. Returns false when the
// queue is at capacity.
func (q *EventQueue) reserve() bool {
	if q.size.AddAcqRel(1) > q.capacity {
		q.size.AddAcqRel(-1)
		return false
	}

	return true
}

// put appends ev, blocking up to timeout for space. It returns ENOSPC
// when the queue is full and the caller asked not to wait, or ETIMEDOUT
// when the timeout elapsed.
//
// On success the record owns one reference to ev.payload.
func (q *EventQueue) put(ev event, timeout time.Duration) error {
	w := newWaiter(timeout)
	for !q.reserve() {
		if timeout == NoWait {
			return ENOSPC
		}

		if !w.pause() {
			return ETIMEDOUT
		}
	}

	// A reservation guarantees ring space: occupants never exceed the
	// logical capacity, which never exceeds the ring's.
	if err := q.ring.Enqueue(&ev); err != nil {
		panic(fmt.Sprintf("EventQueue.put: ring rejected a reserved record: %v", err))
	}

	return nil
}

// get removes the oldest record, blocking up to timeout for one to
// arrive. Returns EAGAIN when the timeout elapses with the queue empty.
func (q *EventQueue) get(timeout time.Duration) (event, error) {
	w := newWaiter(timeout)
	for {
		ev, err := q.ring.Dequeue()
		if err == nil {
			q.size.AddAcqRel(-1)
			return ev, nil
		}

		if !lfq.IsWouldBlock(err) {
			return event{}, fmt.Errorf("EventQueue.get: %w", err)
		}

		if timeout == NoWait || !w.pause() {
			return event{}, EAGAIN
		}
	}
}

// ProcessEvents waits up to timeout for a pending delivery, invokes its
// sink's handler, and releases the record's payload reference. It returns
// nil after processing one record and EAGAIN when the timeout elapsed
// with nothing to do; any other error is a hard one the caller should log
// and retry.
//
// The worker loop is the caller's responsibility, so the loop policy
// (forever, once, with cancellation) stays caller-chosen.
func (q *EventQueue) ProcessEvents(timeout time.Duration) error {
	if q == nil {
		return EINVAL
	}

	ev, err := q.get(timeout)
	if err != nil {
		return err
	}

	// The reference is dropped however the handler returns.
	defer ev.ops.Unref(ev.payload)
	ev.sink.Handler(ev.sink, ev.payload)

	return nil
}
