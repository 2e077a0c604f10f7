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
)

// Optional behavior for an observable.
type ObservableConfig[T any] struct {
	// Validate, when non-nil, is called with each proposed value before it
	// is stored. A non-nil return rejects the update with that error, and
	// no subscriber sees it.
	Validate func(v T) error

	// OnChange, when non-nil, is the owner's change sink. It is dispatched
	// on every accepted update, before the subscribers, in the mode the
	// sink declares.
	OnChange *Sink
}

// An Observable is a cell holding a value of type T, with
// change-notification to subscribers. Subscribers are ordinary sinks
// connected to the observable's Source; on every accepted update they
// receive a payload whose Value holds a copy of the new value.
//
// Change dispatch never blocks: a queued subscriber whose queue is full
// misses the notification. Observers that care poll with Get.
type Observable[T any] struct {
	name     string
	validate func(v T) error
	onChange *Sink

	// Serializes Set end to end: validate, store, dispatch. Two concurrent
	// Sets serialize, and the later one's dispatch follows the earlier
	// one's. Immediate subscriber handlers run with this held, so they
	// must not call Set on the same observable.
	setMu sync.Mutex

	// Guards the value bytes, so Get never observes a torn state. Held
	// only for the copy.
	mu sync.Mutex

	// GUARDED_BY(mu)
	value T

	// Carries the subscriber list.
	src *Source
}

// NewObservable returns an observable holding initial. cfg may be nil.
func NewObservable[T any](
	name string,
	initial T,
	cfg *ObservableConfig[T]) *Observable[T] {
	o := &Observable[T]{
		name:  name,
		value: initial,
		src:   NewSource(name),
	}

	if cfg != nil {
		o.validate = cfg.Validate
		o.onChange = cfg.OnChange
	}

	return o
}

// Source returns the source carrying the observable's subscriber list.
// Connect sinks to it, statically or through a registry, to be notified
// of accepted updates. Subscribers are dispatched in connection order.
func (o *Observable[T]) Source() *Source {
	return o.src
}

// Get returns a copy of the current value.
func (o *Observable[T]) Get() (T, error) {
	if o == nil {
		var zero T
		return zero, EINVAL
	}

	return o.Load(), nil
}

// Load is a Get variant without the nil check, for handlers holding a
// known-valid observable.
func (o *Observable[T]) Load() T {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.value
}

// Set validates v, stores it, and dispatches to the owner's change sink
// and then to every subscriber in connection order. The stored value
// changes only under the observable's lock, so a concurrent Get sees
// either the previous or the new value, never a torn one. Subscribers
// only ever see values that validated.
func (o *Observable[T]) Set(v T) error {
	if o == nil {
		return EINVAL
	}

	o.setMu.Lock()
	defer o.setMu.Unlock()

	if o.validate != nil {
		if err := o.validate(v); err != nil {
			return err
		}
	}

	o.mu.Lock()
	o.value = v
	o.mu.Unlock()

	p := &Payload{Value: v, ops: ManagedPolicy}

	if o.onChange != nil {
		if err := o.src.deliverOne(o.onChange, p, ManagedPolicy, NoWait); err != nil {
			warnf("%s: change notification to %s missed: %v", o.name, o.onChange.Name, err)
		}
	}

	// NoWait keeps dispatch non-blocking; a full subscriber queue drops.
	o.src.Emit(p, NoWait)

	return nil
}
