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

// A Sink is a named endpoint that consumes payloads emitted on the
// sources it is connected to. A sink must outlive every connection that
// references it.
type Sink struct {
	// A name used in log output.
	Name string

	// Handler is invoked once per delivery. It must not release the
	// payload; the fabric drops the delivery's reference when the handler
	// returns. It may re-emit the payload on another source.
	//
	// For immediate sinks the handler runs in the emitter's goroutine,
	// before Emit returns for this edge, and must be safe to call from
	// whatever context the emitter uses. For queued sinks it runs in
	// whichever goroutine drains the queue.
	Handler func(s *Sink, p *Payload)

	// Queue selects the delivery mode: nil for immediate delivery, or the
	// event queue deliveries are posted to.
	Queue *EventQueue

	// DropOnFull makes deliveries to a full queue silently discarded
	// instead of blocking the emitter. Ignored for immediate sinks.
	DropOnFull bool
}

// NewSink returns an immediate-mode sink with the supplied handler.
func NewSink(name string, handler func(s *Sink, p *Payload)) *Sink {
	return &Sink{
		Name:    name,
		Handler: handler,
	}
}

// NewQueuedSink returns a queued-mode sink whose deliveries are posted to
// q and executed by whoever drains it.
func NewQueuedSink(
	name string,
	q *EventQueue,
	dropOnFull bool,
	handler func(s *Sink, p *Payload)) *Sink {
	return &Sink{
		Name:       name,
		Handler:    handler,
		Queue:      q,
		DropOnFull: dropOnFull,
	}
}
