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

// Package weaveutil provides typed helpers layered on the weave
// substrate: watcher sinks for observables, typed method wrappers,
// worker loops, payload buffer pools, and register views.
package weaveutil

import (
	"github.com/jacobsa/weave"
)

// NewWatcherSink returns an immediate-mode sink that invokes f with the
// payload's value. Deliveries whose value is not a T are dropped; that is
// a wiring bug, not a runtime condition.
//
// Connect the result to an observable's source to watch its updates.
func NewWatcherSink[T any](name string, f func(v T)) *weave.Sink {
	return weave.NewSink(name, watchHandler(f))
}

// NewQueuedWatcherSink is like NewWatcherSink, but deliveries are posted
// to q and f runs in whichever goroutine drains it.
func NewQueuedWatcherSink[T any](
	name string,
	q *weave.EventQueue,
	dropOnFull bool,
	f func(v T)) *weave.Sink {
	return weave.NewQueuedSink(name, q, dropOnFull, watchHandler(f))
}

func watchHandler[T any](f func(v T)) func(s *weave.Sink, p *weave.Payload) {
	return func(s *weave.Sink, p *weave.Payload) {
		v, ok := p.Value.(T)
		if !ok {
			return
		}

		f(v)
	}
}
