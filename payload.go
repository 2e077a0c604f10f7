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
	"code.hybscloud.com/atomix"
)

// A Policy governs the lifetime of payloads flowing through a source.
//
// Ref acquires an additional reference before a delivery; Unref releases
// one after the consuming handler has returned. Unref is required. Ref
// may be nil, which declares the payload family transfer-only: there is
// exactly one reference, ownership of which moves to the consuming sink
// on successful delivery. A source carrying a transfer-only policy
// accepts at most one connected sink.
type Policy struct {
	Ref   func(p *Payload)
	Unref func(p *Payload)
}

// ManagedPolicy is the policy for payloads whose storage is owned by the
// garbage collector. Both operations are no-ops.
var ManagedPolicy = &Policy{
	Ref:   func(p *Payload) {},
	Unref: func(p *Payload) {},
}

// A Payload is an opaque value flowing through the fabric.
//
// Producers that move in-process values set Value; producers that move
// packet buffers set Data, chaining further fragments through Next. The
// fabric never inspects either.
type Payload struct {
	// An arbitrary in-process value.
	Value interface{}

	// A byte-buffer view of the payload, possibly the first fragment of a
	// chain.
	Data []byte

	// The next fragment in the chain, or nil for the last one.
	Next *Payload

	// The policy governing this payload's references. A source may
	// override it; see Source.Ops.
	ops *Policy

	// Reference count, maintained only for payloads built with
	// NewCountedPayload.
	refs atomix.Int64

	// Invoked when the count above reaches zero.
	final func(p *Payload)
}

// NewPayload returns a payload carrying the supplied value and bytes,
// governed by the supplied policy. The policy may be nil if every source
// the payload is emitted on carries its own override.
func NewPayload(value interface{}, data []byte, ops *Policy) *Payload {
	return &Payload{
		Value: value,
		Data:  data,
		ops:   ops,
	}
}

// The shared policy for counted payloads. The count lives in the payload
// itself; the final release hook is per-payload.
var countedPolicy = &Policy{
	Ref: func(p *Payload) {
		p.refs.AddAcqRel(1)
	},
	Unref: func(p *Payload) {
		if p.refs.AddAcqRel(-1) == 0 && p.final != nil {
			p.final(p)
		}
	},
}

// NewCountedPayload returns a payload with a reference count of one. Each
// delivery acquires a further reference; when the count reaches zero,
// final is invoked with the payload (e.g. to return its buffer to a
// pool). final may be nil.
func NewCountedPayload(
	value interface{},
	data []byte,
	final func(p *Payload)) *Payload {
	p := &Payload{
		Value: value,
		Data:  data,
		ops:   countedPolicy,
		final: final,
	}

	p.refs.StoreRelaxed(1)
	return p
}

// Ops returns the payload's own policy, which may be nil.
func (p *Payload) Ops() *Policy {
	return p.ops
}

// TotalLen returns the number of payload bytes summed over the fragment
// chain.
func (p *Payload) TotalLen() int {
	var n int
	for f := p; f != nil; f = f.Next {
		n += len(f.Data)
	}

	return n
}
