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

package weavetesting

import (
	"sync"

	"github.com/jacobsa/weave"
)

// A PayloadTracker builds payloads whose reference traffic it counts, for
// asserting on the fabric's ref/unref discipline. Safe for concurrent
// use.
type PayloadTracker struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	refs   int
	unrefs int
}

// NewPayload returns a payload with a counting shared policy.
func (t *PayloadTracker) NewPayload(value interface{}) *weave.Payload {
	ops := &weave.Policy{
		Ref:   func(p *weave.Payload) { t.bump(&t.refs) },
		Unref: func(p *weave.Payload) { t.bump(&t.unrefs) },
	}

	return weave.NewPayload(value, nil, ops)
}

// NewTransferPayload returns a payload with a counting transfer-only
// policy.
func (t *PayloadTracker) NewTransferPayload(value interface{}) *weave.Payload {
	ops := &weave.Policy{
		Unref: func(p *weave.Payload) { t.bump(&t.unrefs) },
	}

	return weave.NewPayload(value, nil, ops)
}

func (t *PayloadTracker) bump(counter *int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	*counter++
}

// Refs returns how many references have been acquired.
func (t *PayloadTracker) Refs() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.refs
}

// Unrefs returns how many references have been released.
func (t *PayloadTracker) Unrefs() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.unrefs
}

// Net returns acquired minus released references. A completed emit whose
// deliveries have all been processed nets to zero.
func (t *PayloadTracker) Net() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.refs - t.unrefs
}
