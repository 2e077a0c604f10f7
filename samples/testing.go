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

// Package samples contains sample pipelines built on the weave fabric,
// exercised by the tests in the sub-directories.
package samples

import (
	"context"
	"time"

	"github.com/jacobsa/ogletest"
	"github.com/jacobsa/timeutil"
	"github.com/jacobsa/weave"
)

// A struct that implements common behavior needed by tests in the
// samples/ directory. Use it as an embedded field in your test fixture.
type SampleTest struct {
	// A context object that can be used for long-running operations.
	Ctx context.Context

	// A clock with a fixed initial time. The test's set up method may use
	// this to wire the sample with a clock, if desired.
	Clock timeutil.SimulatedClock

	// A private connection registry, so tests don't contend on the
	// process-wide pool.
	Registry *weave.Registry
}

// Initialize the exported fields of the struct.
func (t *SampleTest) SetUp(ti *ogletest.TestInfo) {
	t.Ctx = context.Background()
	t.Clock.SetTime(time.Date(2012, 8, 15, 22, 56, 0, 0, time.Local))
	t.Registry = weave.NewRegistry(16)
}
