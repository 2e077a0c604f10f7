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
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/jacobsa/weave"
)

// A TypedMethod wraps a weave.MethodPort with fixed-size request and
// reply structs, marshaled little-endian with encoding/binary. The port's
// declared sizes are derived from the types, so a size mismatch is
// impossible at the call site; use struct{} for a void side.
type TypedMethod[Req any, Rep any] struct {
	port             *weave.MethodPort
	reqSize, repSize int
}

// NewTypedMethod returns a typed method port routing calls to handler
// through q. Req and Rep must be fixed-size in the encoding/binary sense;
// otherwise EINVAL is returned.
func NewTypedMethod[Req any, Rep any](
	name string,
	q *weave.EventQueue,
	handler func(req *Req, rep *Rep) error) (*TypedMethod[Req, Rep], error) {
	var zreq Req
	var zrep Rep

	reqSize := binary.Size(zreq)
	repSize := binary.Size(zrep)
	if reqSize < 0 || repSize < 0 || handler == nil {
		return nil, weave.EINVAL
	}

	serve := func(reqB []byte, repB []byte) error {
		var req Req
		if reqSize > 0 {
			if err := binary.Read(bytes.NewReader(reqB), binary.LittleEndian, &req); err != nil {
				return fmt.Errorf("decoding request: %w", err)
			}
		}

		var rep Rep
		if err := handler(&req, &rep); err != nil {
			return err
		}

		if repSize > 0 {
			var buf bytes.Buffer
			if err := binary.Write(&buf, binary.LittleEndian, &rep); err != nil {
				return fmt.Errorf("encoding reply: %w", err)
			}

			copy(repB, buf.Bytes())
		}

		return nil
	}

	port, err := weave.NewMethodPort(name, q, reqSize, repSize, serve)
	if err != nil {
		return nil, err
	}

	return &TypedMethod[Req, Rep]{
		port:    port,
		reqSize: reqSize,
		repSize: repSize,
	}, nil
}

// Port returns the underlying untyped port.
func (m *TypedMethod[Req, Rep]) Port() *weave.MethodPort {
	return m.port
}

// Call invokes the method with req, blocking up to timeout, and fills
// *rep from the reply on success. The handler's error is returned
// verbatim.
func (m *TypedMethod[Req, Rep]) Call(
	ctx context.Context,
	req *Req,
	rep *Rep,
	timeout time.Duration) error {
	if m == nil || req == nil || rep == nil {
		return weave.EINVAL
	}

	var reqBuf bytes.Buffer
	if m.reqSize > 0 {
		if err := binary.Write(&reqBuf, binary.LittleEndian, req); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	repB := make([]byte, m.repSize)
	if err := m.port.Call(ctx, reqBuf.Bytes(), repB, timeout); err != nil {
		return err
	}

	if m.repSize > 0 {
		if err := binary.Read(bytes.NewReader(repB), binary.LittleEndian, rep); err != nil {
			return fmt.Errorf("decoding reply: %w", err)
		}
	}

	return nil
}
