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
	"sync"
	"time"
)

// A Source is a named fan-out point. Emitting a payload on a source
// delivers it to every currently connected sink.
//
// The zero value with a name filled in is ready to use; sources carry no
// state beyond their wiring and stamp nothing onto payloads.
type Source struct {
	// A name used in log output.
	Name string

	// Ops, when non-nil, overrides the policy of every payload emitted on
	// this source, even for payloads that carry none of their own. This is
	// how a slab-backed source arranges "free back to the slab on the last
	// unref" without each payload knowing about the slab.
	Ops *Policy

	// Guards the edge list. Held only for list mutation and snapshots;
	// never across a delivery.
	mu sync.Mutex

	// Outgoing edges, in connection order.
	//
	// GUARDED_BY(mu)
	edges []*Connection
}

// NewSource returns a source with the supplied name and no connections.
func NewSource(name string) *Source {
	return &Source{Name: name}
}

// NumConnections returns the number of sinks currently connected.
func (s *Source) NumConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.edges)
}

// Link c into the edge list. Rejects with EBUSY if c is already listed,
// and with EEXIST if a different edge targets the same sink. A
// transfer-only source accepts a single consumer, also reported as EBUSY.
//
// LOCKS_EXCLUDED(s.mu)
func (s *Source) attach(c *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.attached {
		return EBUSY
	}

	for _, e := range s.edges {
		if e.Sink == c.Sink {
			return EEXIST
		}
	}

	if s.Ops != nil && s.Ops.Ref == nil && len(s.edges) > 0 {
		return EBUSY
	}

	c.attached = true
	s.edges = append(s.edges, c)

	return nil
}

// Unlink c from the edge list, preserving the order of the remaining
// edges.
//
// LOCKS_EXCLUDED(s.mu)
func (s *Source) detach(c *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.edges {
		if e == c {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			c.attached = false
			return nil
		}
	}

	return ENOENT
}

// Snapshot the currently connected sinks into buf, which is typically
// stack-backed. Deliveries happen against the snapshot, after the lock is
// released: handlers may be long-running in immediate mode and must never
// run with the edge list locked.
//
// LOCKS_EXCLUDED(s.mu)
func (s *Source) snapshot(buf []*Sink) []*Sink {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.edges {
		buf = append(buf, e.Sink)
	}

	return buf
}

// The policy governing p when emitted on s.
func (s *Source) policyFor(p *Payload) *Policy {
	if s.Ops != nil {
		return s.Ops
	}

	return p.ops
}

// Emit delivers p to every connected sink, in connection order, and
// returns the number of sinks that accepted it.
//
// For each edge the fabric acquires an additional payload reference,
// which is released when the consuming handler returns (immediate mode)
// or when the queued record is processed. Per-edge failures are logged
// and do not abort fan-out; they simply do not count. Emit returns an
// error only when the caller asked to wait and no sink accepted the
// payload. Zero successes with zero connected sinks is not an error.
//
// Under a transfer-only policy there is no reference to acquire: with one
// connected sink, ownership of p moves to it on success and stays with
// the caller on failure; with none, Emit returns 0 and the caller keeps
// ownership; with more than one, Emit returns EINVAL, delivers nothing,
// and the caller keeps ownership.
func (s *Source) Emit(p *Payload, timeout time.Duration) (int, error) {
	if s == nil || p == nil {
		return 0, EINVAL
	}

	ops := s.policyFor(p)
	if ops == nil || ops.Unref == nil {
		return 0, EINVAL
	}

	var stack [8]*Sink
	sinks := s.snapshot(stack[:0])

	// Transfer mode.
	if ops.Ref == nil {
		if len(sinks) == 0 {
			return 0, nil
		}

		// Connect-time checks keep a transfer source single-consumer when
		// the override is on the source; a payload-level transfer policy on
		// a fanned-out source can only be caught here.
		if len(sinks) > 1 {
			return 0, EINVAL
		}

		err := s.deliverOne(sinks[0], p, ops, timeout)
		if err != nil {
			warnf("%s: delivery to %s failed: %v", s.Name, sinks[0].Name, err)
			if err == errDropped || timeout == NoWait {
				return 0, nil
			}
			return 0, err
		}

		return 1, nil
	}

	// Shared mode: one extra reference per edge.
	var n int
	var lastErr error
	for _, snk := range sinks {
		ops.Ref(p)
		if err := s.deliverOne(snk, p, ops, timeout); err != nil {
			ops.Unref(p)
			warnf("%s: delivery to %s failed: %v", s.Name, snk.Name, err)
			if err != errDropped {
				lastErr = err
			}
			continue
		}

		n++
	}

	if n == 0 && len(sinks) > 0 && timeout != NoWait && lastErr != nil {
		return 0, lastErr
	}

	return n, nil
}

// EmitConsume is an Emit variant that always releases one payload
// reference on return, simplifying callers that are done with the
// payload either way: under a shared policy the caller's own reference is
// dropped; under a transfer-only one the payload is released unless a
// sink took ownership.
func (s *Source) EmitConsume(p *Payload, timeout time.Duration) (int, error) {
	if s == nil || p == nil {
		return 0, EINVAL
	}

	ops := s.policyFor(p)
	if ops == nil || ops.Unref == nil {
		return 0, EINVAL
	}

	n, err := s.Emit(p, timeout)
	if ops.Ref != nil || n == 0 {
		ops.Unref(p)
	}

	return n, err
}

// A sentinel for deliveries discarded by a drop-on-full sink. The drop is
// deliberate, so it never surfaces as an emit error.
var errDropped = dropError{}

type dropError struct{}

func (dropError) Error() string {
	return "delivery dropped: queue full"
}

// Hand one reference to snk. On success the reference is consumed by the
// sink: dropped after the handler returns for immediate sinks,
// transferred into the queue record for queued ones. On failure the
// reference disposition is the caller's.
func (s *Source) deliverOne(
	snk *Sink,
	p *Payload,
	ops *Policy,
	timeout time.Duration) error {
	if snk.Queue == nil {
		snk.Handler(snk, p)
		ops.Unref(p)
		return nil
	}

	if snk.DropOnFull {
		timeout = NoWait
	}

	if err := snk.Queue.put(event{snk, p, ops}, timeout); err != nil {
		if snk.DropOnFull {
			return errDropped
		}
		return err
	}

	return nil
}
