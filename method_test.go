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

package weave_test

import (
	"context"
	"encoding/binary"
	"syscall"
	"testing"
	"time"

	"github.com/jacobsa/weave"

	. "github.com/jacobsa/ogletest"
)

func TestMethod(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type MethodTest struct {
	queue *weave.EventQueue

	// Number of handler invocations, maintained by the handlers below.
	// Handlers run on the goroutine draining t.queue.
	calls int
}

func init() { RegisterTestSuite(&MethodTest{}) }

func (t *MethodTest) SetUp(ti *TestInfo) {
	t.queue = weave.NewEventQueue(4)
}

// A port whose handler scales the one-byte request by ten into a
// four-byte little-endian reply.
func (t *MethodTest) newScalePort() *weave.MethodPort {
	port, err := weave.NewMethodPort("scale", t.queue, 1, 4,
		func(req []byte, reply []byte) error {
			t.calls++
			binary.LittleEndian.PutUint32(reply, uint32(req[0])*10)
			return nil
		})

	AssertEq(nil, err)
	return port
}

// Run fn while this goroutine drains n records from t.queue.
func (t *MethodTest) callWithWorker(n int, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	for i := 0; i < n; i++ {
		AssertEq(nil, t.queue.ProcessEvents(time.Second))
	}

	return <-done
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *MethodTest) RoundTrip() {
	port := t.newScalePort()

	reply := make([]byte, 4)
	err := t.callWithWorker(1, func() error {
		return port.Call(context.Background(), []byte{4}, reply, time.Second)
	})

	AssertEq(nil, err)
	ExpectEq(uint32(40), binary.LittleEndian.Uint32(reply))
	ExpectEq(1, t.calls)
}

func (t *MethodTest) SizeMismatch() {
	port := t.newScalePort()

	// Wrong request size.
	err := port.Call(context.Background(), []byte{1, 2}, make([]byte, 4), weave.NoWait)
	ExpectEq(weave.EINVAL, err)

	// Wrong reply size.
	err = port.Call(context.Background(), []byte{1}, make([]byte, 3), weave.NoWait)
	ExpectEq(weave.EINVAL, err)

	// The handler never ran, and nothing was enqueued.
	ExpectEq(0, t.calls)
	ExpectEq(0, t.queue.Len())
}

func (t *MethodTest) NilPort() {
	var port *weave.MethodPort
	ExpectEq(weave.EINVAL, port.Call(context.Background(), nil, nil, weave.NoWait))
}

func (t *MethodTest) ConstructorValidation() {
	handler := func(req []byte, reply []byte) error { return nil }

	_, err := weave.NewMethodPort("p", nil, 0, 0, handler)
	ExpectEq(weave.EINVAL, err)

	_, err = weave.NewMethodPort("p", t.queue, -1, 0, handler)
	ExpectEq(weave.EINVAL, err)

	_, err = weave.NewMethodPort("p", t.queue, 0, -1, handler)
	ExpectEq(weave.EINVAL, err)

	_, err = weave.NewMethodPort("p", t.queue, 0, 0, nil)
	ExpectEq(weave.EINVAL, err)
}

func (t *MethodTest) HandlerErrorPropagatedVerbatim() {
	port, err := weave.NewMethodPort("failing", t.queue, 0, 0,
		func(req []byte, reply []byte) error {
			return syscall.EIO
		})
	AssertEq(nil, err)

	err = t.callWithWorker(1, func() error {
		return port.Call(context.Background(), nil, nil, time.Second)
	})

	ExpectEq(syscall.EIO, err)
}

func (t *MethodTest) VoidRequestAndReply() {
	port, err := weave.NewMethodPort("void", t.queue, 0, 0,
		func(req []byte, reply []byte) error {
			t.calls++
			return nil
		})
	AssertEq(nil, err)

	err = t.callWithWorker(1, func() error {
		return port.Call(context.Background(), nil, nil, time.Second)
	})

	AssertEq(nil, err)
	ExpectEq(1, t.calls)
}

func (t *MethodTest) QueueFull() {
	q := weave.NewEventQueue(1)
	port, err := weave.NewMethodPort("slow", q, 0, 0,
		func(req []byte, reply []byte) error { return nil })
	AssertEq(nil, err)

	// Park one call in the queue without draining it.
	first := make(chan error, 1)
	go func() {
		first <- port.Call(context.Background(), nil, nil, weave.Forever)
	}()

	// Wait for the first call's record to land.
	for q.Len() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A second call finds the queue full.
	ExpectEq(weave.ENOSPC, port.Call(context.Background(), nil, nil, weave.NoWait))

	// Draining lets the first finish normally.
	AssertEq(nil, q.ProcessEvents(time.Second))
	ExpectEq(nil, <-first)
}

func (t *MethodTest) CallTimesOutWithoutWorker() {
	port := t.newScalePort()

	// Nobody is draining the queue.
	before := time.Now()
	err := port.Call(context.Background(), []byte{1}, make([]byte, 4), 20*time.Millisecond)

	ExpectEq(weave.ETIMEDOUT, err)
	ExpectLe(15*time.Millisecond, time.Since(before))
	ExpectEq(0, t.calls)
}

func (t *MethodTest) SequentialCallsSerialize() {
	port := t.newScalePort()

	for i := byte(1); i <= 2; i++ {
		reply := make([]byte, 4)
		err := t.callWithWorker(1, func() error {
			return port.Call(context.Background(), []byte{i}, reply, time.Second)
		})

		AssertEq(nil, err)
		ExpectEq(uint32(i)*10, binary.LittleEndian.Uint32(reply))
	}

	ExpectEq(2, t.calls)
}
