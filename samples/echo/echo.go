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

// Package echo implements a trivial stage that republishes whatever it
// receives: payloads emitted on In come back out on Out once the stage's
// queue is drained. Useful for exercising handler re-emission.
package echo

import (
	"log"

	"github.com/jacobsa/weave"
)

type Echo struct {
	// Clients emit here.
	In *weave.Source

	// Echoed payloads come back out here.
	Out *weave.Source

	queue *weave.EventQueue
	sink  *weave.Sink
	conn  weave.Connection
}

// New returns an echo stage whose queue holds up to depth pending
// payloads.
func New(depth int) *Echo {
	e := &Echo{
		In:    weave.NewSource("echo.in"),
		Out:   weave.NewSource("echo.out"),
		queue: weave.NewEventQueue(depth),
	}

	e.sink = weave.NewQueuedSink("echo", e.queue, false, e.handle)
	e.conn = weave.Connection{Source: e.In, Sink: e.sink}
	if err := weave.ConnectStatic(&e.conn); err != nil {
		panic(err)
	}

	return e
}

// Queue returns the stage's queue, which the caller drains.
func (e *Echo) Queue() *weave.EventQueue {
	return e.queue
}

// Republish the payload. The delivery's reference keeps it alive for the
// duration of the call, and Out's emit acquires its own.
func (e *Echo) handle(_ *weave.Sink, p *weave.Payload) {
	if _, err := e.Out.Emit(p, weave.NoWait); err != nil {
		log.Printf("echo: re-emit: %v", err)
	}
}
