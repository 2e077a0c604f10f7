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
	"bytes"
	"encoding/binary"
	"syscall"

	"github.com/jacobsa/weave"
)

// A Register names a little-endian field window within an observable's
// stored bytes.
type Register struct {
	Name string

	// Byte offset and width within the marshaled value. Width must be 1,
	// 2, 4, or 8.
	Offset int
	Size   int

	// Whether writes are accepted.
	Writable bool
}

// A RegisterView exposes an observable's storage as a register table, the
// shape a memory-mapped settings block presents to a host. Reads decode
// the current value; writes patch the marshaled bytes and go through the
// observable's Set, so validators run and subscribers fire.
//
// T must be fixed-size in the encoding/binary sense. A read-modify-write
// racing a concurrent Set is last-writer-wins, as it would be in a real
// register file.
type RegisterView[T any] struct {
	obs  *weave.Observable[T]
	size int
	regs map[string]Register
}

// NewRegisterView returns a register view over obs. Registers must name
// disjoint-or-not windows that lie within the marshaled size of T; a
// malformed table yields EINVAL.
func NewRegisterView[T any](
	obs *weave.Observable[T],
	regs []Register) (*RegisterView[T], error) {
	if obs == nil {
		return nil, weave.EINVAL
	}

	var zero T
	size := binary.Size(zero)
	if size < 0 {
		return nil, weave.EINVAL
	}

	v := &RegisterView[T]{
		obs:  obs,
		size: size,
		regs: make(map[string]Register, len(regs)),
	}

	for _, r := range regs {
		switch r.Size {
		case 1, 2, 4, 8:
		default:
			return nil, weave.EINVAL
		}

		if r.Offset < 0 || r.Offset+r.Size > size {
			return nil, weave.EINVAL
		}

		if _, ok := v.regs[r.Name]; ok {
			return nil, weave.EINVAL
		}

		v.regs[r.Name] = r
	}

	return v, nil
}

// Read returns the named register's current contents, zero-extended.
// Unknown names yield ENOENT.
func (v *RegisterView[T]) Read(name string) (uint64, error) {
	r, ok := v.regs[name]
	if !ok {
		return 0, weave.ENOENT
	}

	b, err := v.marshal()
	if err != nil {
		return 0, err
	}

	return decodeWindow(b[r.Offset : r.Offset+r.Size]), nil
}

// Write stores val into the named register and applies the patched value
// through the observable's Set. Read-only registers yield EACCES; values
// that do not fit the register width yield EINVAL; a rejecting validator
// propagates its own error.
func (v *RegisterView[T]) Write(name string, val uint64) error {
	r, ok := v.regs[name]
	if !ok {
		return weave.ENOENT
	}

	if !r.Writable {
		return syscall.EACCES
	}

	if r.Size < 8 && val >= 1<<(8*uint(r.Size)) {
		return weave.EINVAL
	}

	b, err := v.marshal()
	if err != nil {
		return err
	}

	encodeWindow(b[r.Offset:r.Offset+r.Size], val)

	var next T
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &next); err != nil {
		return err
	}

	return v.obs.Set(next)
}

func (v *RegisterView[T]) marshal() ([]byte, error) {
	cur := v.obs.Load()

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &cur); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeWindow(b []byte) uint64 {
	var val uint64
	for i := len(b) - 1; i >= 0; i-- {
		val = val<<8 | uint64(b[i])
	}

	return val
}

func encodeWindow(b []byte, val uint64) {
	for i := range b {
		b[i] = byte(val)
		val >>= 8
	}
}
