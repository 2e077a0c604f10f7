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

// Package buffer provides the fixed-capacity byte buffers backing packet
// payloads.
package buffer

import (
	"fmt"
)

// A Buffer is a mechanism for constructing a payload body from multiple
// segments within storage of fixed capacity. The zero value is not
// usable; obtain one with New, and bring a used one back with Reset.
type Buffer struct {
	offset  int
	storage []byte
}

// New returns an empty buffer of the given capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		panic(fmt.Sprintf("buffer.New: invalid capacity %d", capacity))
	}

	return &Buffer{
		storage: make([]byte, capacity),
	}
}

// Reset resets b so that it's ready to be used again.
func (b *Buffer) Reset() {
	b.offset = 0
}

// Cap returns the fixed capacity chosen at creation.
func (b *Buffer) Cap() int {
	return len(b.storage)
}

// Grow grows b by the given number of bytes, returning the new segment,
// which is guaranteed to be zeroed. If there is insufficient space, it
// returns nil.
func (b *Buffer) Grow(n int) []byte {
	p := b.GrowNoZero(n)
	if p == nil {
		return nil
	}

	for i := range p {
		p[i] = 0
	}

	return p
}

// GrowNoZero is equivalent to Grow, except the new segment may contain
// stale contents. Use with caution!
func (b *Buffer) GrowNoZero(n int) []byte {
	if n < 0 || b.offset+n > len(b.storage) {
		return nil
	}

	p := b.storage[b.offset : b.offset+n]
	b.offset += n

	return p
}

// ShrinkTo shrinks b to the given size. It panics if the size is greater
// than Len() or negative.
func (b *Buffer) ShrinkTo(n int) {
	if n < 0 || n > b.offset {
		panic(fmt.Sprintf("ShrinkTo(%d) out of range for buffer of length %d", n, b.offset))
	}

	b.offset = n
}

// Append is equivalent to growing by len(src), then copying src over the
// new segment. It panics if there is not enough room available.
func (b *Buffer) Append(src []byte) {
	p := b.GrowNoZero(len(src))
	if p == nil {
		panic(fmt.Sprintf("Can't grow %d bytes", len(src)))
	}

	copy(p, src)
}

// AppendString is like Append, but accepts string input.
func (b *Buffer) AppendString(src string) {
	p := b.GrowNoZero(len(src))
	if p == nil {
		panic(fmt.Sprintf("Can't grow %d bytes", len(src)))
	}

	copy(p, src)
}

// Len returns the current size of the buffer.
func (b *Buffer) Len() int {
	return b.offset
}

// Bytes returns a reference to the current contents of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.storage[:b.offset]
}
