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

// Package weavetesting contains helpers for writing tests against the
// weave fabric.
package weavetesting

import (
	"sync"

	"github.com/jacobsa/weave"
)

// A DeliveryRecorder builds sinks that record every payload delivered to
// them. Safe for concurrent use.
type DeliveryRecorder struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	payloads []*weave.Payload
}

// Sink returns an immediate-mode sink recording into r.
func (r *DeliveryRecorder) Sink(name string) *weave.Sink {
	return weave.NewSink(name, r.record)
}

// QueuedSink returns a queued-mode sink recording into r.
func (r *DeliveryRecorder) QueuedSink(
	name string,
	q *weave.EventQueue,
	dropOnFull bool) *weave.Sink {
	return weave.NewQueuedSink(name, q, dropOnFull, r.record)
}

func (r *DeliveryRecorder) record(s *weave.Sink, p *weave.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payloads = append(r.payloads, p)
}

// Count returns the number of deliveries recorded so far.
func (r *DeliveryRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.payloads)
}

// Payloads returns a copy of the recorded payloads, in delivery order.
func (r *DeliveryRecorder) Payloads() []*weave.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*weave.Payload(nil), r.payloads...)
}

// Values returns the recorded payloads' values, in delivery order.
func (r *DeliveryRecorder) Values() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make([]interface{}, len(r.payloads))
	for i, p := range r.payloads {
		vals[i] = p.Value
	}

	return vals
}
