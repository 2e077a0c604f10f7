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
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jacobsa/weave"
	"github.com/jacobsa/weave/weaveutil"

	. "github.com/jacobsa/ogletest"
)

func TestProcessLoop(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ProcessLoopTest struct {
	queue  *weave.EventQueue
	source *weave.Source
}

func init() { RegisterTestSuite(&ProcessLoopTest{}) }

func (t *ProcessLoopTest) SetUp(ti *TestInfo) {
	t.queue = weave.NewEventQueue(8)
	t.source = weave.NewSource("source")
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *ProcessLoopTest) InvalidArguments() {
	ctx := context.Background()

	ExpectEq(weave.EINVAL, weaveutil.ProcessLoop(ctx, nil, time.Millisecond))
	ExpectEq(weave.EINVAL, weaveutil.ProcessLoop(ctx, t.queue, 0))
}

func (t *ProcessLoopTest) WorkersDrainUntilCancelled() {
	const deliveries = 100

	var processed int64
	snk := weave.NewQueuedSink("counter", t.queue, false,
		func(s *weave.Sink, p *weave.Payload) {
			atomic.AddInt64(&processed, 1)
		})

	c := &weave.Connection{Source: t.source, Sink: snk}
	AssertEq(nil, weave.ConnectStatic(c))

	ctx, cancel := context.WithCancel(context.Background())
	b := weaveutil.StartWorkers(ctx, t.queue, 2, time.Millisecond)

	for i := 0; i < deliveries; i++ {
		p := weave.NewPayload(i, nil, weave.ManagedPolicy)
		n, err := t.source.Emit(p, weave.Forever)
		AssertEq(nil, err)
		AssertEq(1, n)
	}

	// Wait for the workers to catch up, then wind them down.
	for atomic.LoadInt64(&processed) < deliveries {
		time.Sleep(time.Millisecond)
	}

	cancel()
	AssertEq(nil, b.Join())
	ExpectEq(deliveries, atomic.LoadInt64(&processed))
	ExpectEq(0, t.queue.Len())
}
