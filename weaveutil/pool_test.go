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

package weaveutil_test

import (
	"testing"

	"github.com/jacobsa/weave"
	"github.com/jacobsa/weave/weavetesting"
	"github.com/jacobsa/weave/weaveutil"

	. "github.com/jacobsa/ogletest"
)

func TestBufferPool(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type BufferPoolTest struct {
	pool     *weaveutil.BufferPool
	source   *weave.Source
	recorder weavetesting.DeliveryRecorder
}

func init() { RegisterTestSuite(&BufferPoolTest{}) }

func (t *BufferPoolTest) SetUp(ti *TestInfo) {
	t.pool = weaveutil.NewBufferPool(64)
	t.source = weave.NewSource("packets")
}

func (t *BufferPoolTest) connect(snk *weave.Sink) {
	c := &weave.Connection{Source: t.source, Sink: snk}
	AssertEq(nil, weave.ConnectStatic(c))
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *BufferPoolTest) PayloadShape() {
	p := t.pool.Get()

	AssertNe(nil, p)
	ExpectEq(64, len(p.Data))
	ExpectEq(64, t.pool.BufSize())
}

func (t *BufferPoolTest) BufferRecycledAfterLastUnref() {
	p0 := t.pool.Get()
	backing := &p0.Data[0]

	// Nobody is connected, so consuming the payload is its last release.
	n, err := t.source.EmitConsume(p0, weave.NoWait)
	AssertEq(nil, err)
	AssertEq(0, n)

	// The next payload reuses the same storage.
	p1 := t.pool.Get()
	ExpectEq(backing, &p1.Data[0])
}

func (t *BufferPoolTest) BufferHeldWhileReferencesRemain() {
	q := weave.NewEventQueue(4)
	t.connect(t.recorder.QueuedSink("a", q, false))

	p0 := t.pool.Get()
	backing := &p0.Data[0]
	copy(p0.Data, "taco")
	p0.Data = p0.Data[:4]

	n, err := t.source.EmitConsume(p0, weave.NoWait)
	AssertEq(nil, err)
	AssertEq(1, n)

	// The queued record still holds a reference, so a fresh payload must
	// not reuse the same storage.
	p1 := t.pool.Get()
	ExpectNe(backing, &p1.Data[0])

	// Draining releases the record's reference, freeing the buffer.
	AssertEq(1, weavetesting.Drain(q))
	payloads := t.recorder.Payloads()
	AssertEq(1, len(payloads))
	ExpectEq("taco", string(payloads[0].Data))

	p2 := t.pool.Get()
	ExpectEq(backing, &p2.Data[0])
}

func (t *BufferPoolTest) TransferPayloadReturnsOnFinalUnref() {
	t.connect(t.recorder.Sink("a"))

	p := t.pool.GetTransfer()
	backing := &p.Data[0]

	n, err := t.source.Emit(p, weave.NoWait)
	AssertEq(nil, err)
	AssertEq(1, n)

	// The sink consumed ownership; the buffer is back in the pool.
	p1 := t.pool.Get()
	ExpectEq(backing, &p1.Data[0])
}
