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

func TestWatcherSink(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type WatcherSinkTest struct {
	obs *weave.Observable[int]
}

func init() { RegisterTestSuite(&WatcherSinkTest{}) }

func (t *WatcherSinkTest) SetUp(ti *TestInfo) {
	t.obs = weave.NewObservable[int]("counter", 0, nil)
}

func (t *WatcherSinkTest) watch(snk *weave.Sink) {
	c := &weave.Connection{Source: t.obs.Source(), Sink: snk}
	AssertEq(nil, weave.ConnectStatic(c))
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *WatcherSinkTest) ImmediateWatcher() {
	var seen []int
	t.watch(weaveutil.NewWatcherSink("w", func(v int) {
		seen = append(seen, v)
	}))

	AssertEq(nil, t.obs.Set(1))
	AssertEq(nil, t.obs.Set(2))

	AssertEq(2, len(seen))
	ExpectEq(1, seen[0])
	ExpectEq(2, seen[1])
}

func (t *WatcherSinkTest) QueuedWatcher() {
	q := weave.NewEventQueue(4)

	var seen []int
	t.watch(weaveutil.NewQueuedWatcherSink("w", q, false, func(v int) {
		seen = append(seen, v)
	}))

	AssertEq(nil, t.obs.Set(7))
	AssertEq(0, len(seen))

	AssertEq(1, weavetesting.Drain(q))
	AssertEq(1, len(seen))
	ExpectEq(7, seen[0])
}

func (t *WatcherSinkTest) MismatchedValueDropped() {
	var seen []string
	snk := weaveutil.NewWatcherSink("w", func(v string) {
		seen = append(seen, v)
	})

	// Wire the string watcher to an int observable; its deliveries don't
	// type-check and are dropped.
	t.watch(snk)

	AssertEq(nil, t.obs.Set(1))
	ExpectEq(0, len(seen))
}
