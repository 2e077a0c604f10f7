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
	"flag"
	"sync"

	"github.com/jacobsa/syncutil"
)

var fPoolSize = flag.Int(
	"weave.connection_pool_size",
	16,
	"Capacity of the pool backing runtime-created connections.")

// A Connection is a directed source -> sink edge. Wire one with
// ConnectStatic for edges whose storage the caller owns, or let a
// Registry pool one for you with Connect.
//
// A connection object handed to ConnectStatic must outlive its
// membership on the source's edge list.
type Connection struct {
	Source *Source
	Sink   *Sink

	// Whether this pool slot is taken.
	//
	// GUARDED_BY(the owning registry's mu)
	inUse bool

	// Whether the edge is on its source's list. The same object is never
	// listed twice.
	//
	// GUARDED_BY(Source.mu)
	attached bool
}

// ConnectStatic links a caller-allocated edge into its source's edge
// list. It returns EINVAL if any pointer is nil, EBUSY if the same edge
// object is already listed, and EEXIST if a different edge with the same
// (source, sink) pair exists.
func ConnectStatic(c *Connection) error {
	if c == nil || c.Source == nil || c.Sink == nil {
		return EINVAL
	}

	return c.Source.attach(c)
}

// DisconnectStatic removes an edge previously wired with ConnectStatic.
// It returns ENOENT if the edge is not listed.
func DisconnectStatic(c *Connection) error {
	if c == nil || c.Source == nil || c.Sink == nil {
		return EINVAL
	}

	return c.Source.detach(c)
}

// A Registry owns a fixed-capacity pool of runtime-created connections.
// The pool mutex is sleepable and distinguishes the pool's long-lived
// membership concern from the source's high-frequency emit concern; emit
// paths never touch it.
//
// Lock ordering: registry mutex, then source mutex.
type Registry struct {
	// INVARIANT: every in-use slot has non-nil endpoints, and every free
	// slot has nil ones.
	mu syncutil.InvariantMutex

	// The pool. Slots are reused in place; the slice never grows.
	//
	// GUARDED_BY(mu)
	conns []Connection
}

// NewRegistry returns a registry whose pool holds capacity connections.
func NewRegistry(capacity int) *Registry {
	r := &Registry{
		conns: make([]Connection, capacity),
	}

	r.mu = syncutil.NewInvariantMutex(r.checkInvariants)
	return r
}

func (r *Registry) checkInvariants() {
	for i := range r.conns {
		c := &r.conns[i]
		if c.inUse != (c.Source != nil && c.Sink != nil) {
			panic("Registry: slot use flag out of sync with its endpoints")
		}
	}
}

// Connect wires src to snk through a pooled connection. It returns
// EALREADY if the pair is already wired (whether through this pool or a
// static edge) and ENOMEM if the pool is exhausted.
//
// LOCKS_EXCLUDED(r.mu)
func (r *Registry) Connect(src *Source, snk *Sink) error {
	if src == nil || snk == nil {
		return EINVAL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Is the pair already wired through this pool?
	var free *Connection
	for i := range r.conns {
		c := &r.conns[i]
		if c.inUse && c.Source == src && c.Sink == snk {
			return EALREADY
		}

		if !c.inUse && free == nil {
			free = c
		}
	}

	if free == nil {
		return ENOMEM
	}

	free.inUse = true
	free.Source = src
	free.Sink = snk

	// The source list is authoritative: it may hold static edges the pool
	// scan cannot see. Revert the slot if it rejects the pair.
	if err := src.attach(free); err != nil {
		free.inUse = false
		free.Source = nil
		free.Sink = nil

		if err == EEXIST {
			return EALREADY
		}
		return err
	}

	debugf("connect: %s -> %s", src.Name, snk.Name)
	return nil
}

// Disconnect tears down the pooled edge from src to snk. It returns
// ENOENT if this registry holds no such edge.
//
// LOCKS_EXCLUDED(r.mu)
func (r *Registry) Disconnect(src *Source, snk *Sink) error {
	if src == nil || snk == nil {
		return EINVAL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.conns {
		c := &r.conns[i]
		if !c.inUse || c.Source != src || c.Sink != snk {
			continue
		}

		if err := src.detach(c); err != nil {
			return err
		}

		c.inUse = false
		c.Source = nil
		c.Sink = nil

		debugf("disconnect: %s -> %s", src.Name, snk.Name)
		return nil
	}

	return ENOENT
}

// NumInUse returns the number of pool slots currently taken.
func (r *Registry) NumInUse() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for i := range r.conns {
		if r.conns[i].inUse {
			n++
		}
	}

	return n
}

var gRegistry *Registry
var gRegistryOnce sync.Once

func defaultRegistry() *Registry {
	gRegistryOnce.Do(func() {
		if !flag.Parsed() {
			panic("defaultRegistry called before flags available.")
		}

		gRegistry = NewRegistry(*fPoolSize)
	})

	return gRegistry
}

// Connect wires src to snk through the process-wide connection pool,
// whose capacity is set by --weave.connection_pool_size.
func Connect(src *Source, snk *Sink) error {
	return defaultRegistry().Connect(src, snk)
}

// Disconnect tears down an edge wired with Connect.
func Disconnect(src *Source, snk *Sink) error {
	return defaultRegistry().Disconnect(src, snk)
}
