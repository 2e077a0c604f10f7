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

package weaveutil

import (
	"sync"

	"github.com/jacobsa/weave"
	"github.com/jacobsa/weave/internal/buffer"
	"github.com/jacobsa/weave/internal/freelist"
)

// A BufferPool hands out payloads backed by recycled fixed-size buffers.
// A payload's buffer returns to the pool when its last reference is
// released, so producers need not know when consumers are done with it.
type BufferPool struct {
	bufSize int

	mu sync.Mutex

	// GUARDED_BY(mu)
	fl freelist.Freelist
}

// NewBufferPool returns a pool of buffers of bufSize bytes each. The pool
// grows on demand and never shrinks.
func NewBufferPool(bufSize int) *BufferPool {
	return &BufferPool{
		bufSize: bufSize,
	}
}

// BufSize returns the size of the buffers handed out.
func (bp *BufferPool) BufSize() int {
	return bp.bufSize
}

func (bp *BufferPool) getBuffer() *buffer.Buffer {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	return bp.fl.Get(func() interface{} {
		return buffer.New(bp.bufSize)
	}).(*buffer.Buffer)
}

func (bp *BufferPool) putBuffer(b *buffer.Buffer) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.fl.Put(b)
}

// Get returns a counted payload whose Data is a pooled buffer of BufSize
// bytes with unspecified contents. Producers fill it and may shrink it
// in place (p.Data = p.Data[:n]). The buffer returns to the pool when the
// last reference is released.
func (bp *BufferPool) Get() *weave.Payload {
	b := bp.getBuffer()
	b.Reset()

	return weave.NewCountedPayload(nil, b.GrowNoZero(bp.bufSize),
		func(p *weave.Payload) {
			bp.putBuffer(b)
		})
}

// GetTransfer is like Get, but the payload is transfer-only: there is a
// single reference, whose ownership moves to the consuming sink on
// successful emit. The buffer returns to the pool on the final unref.
func (bp *BufferPool) GetTransfer() *weave.Payload {
	b := bp.getBuffer()
	b.Reset()

	ops := &weave.Policy{
		Unref: func(p *weave.Payload) {
			bp.putBuffer(b)
		},
	}

	return weave.NewPayload(nil, b.GrowNoZero(bp.bufSize), ops)
}
