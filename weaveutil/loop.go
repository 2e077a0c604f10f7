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
	"context"
	"log"
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/weave"
)

// ProcessLoop drains q until ctx is done, waiting at most poll per
// ProcessEvents call so that cancellation is noticed promptly. Hard
// processing errors are logged and retried. The common worker body for
// queued sinks.
func ProcessLoop(
	ctx context.Context,
	q *weave.EventQueue,
	poll time.Duration) error {
	if q == nil || poll <= 0 {
		return weave.EINVAL
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch err := q.ProcessEvents(poll); err {
		case nil, weave.EAGAIN:

		default:
			log.Printf("ProcessEvents: %v", err)
		}
	}
}

// StartWorkers starts n goroutines running ProcessLoop over q, collected
// in a bundle. Cancel the context, then Join the bundle to wait for them
// to wind down.
func StartWorkers(
	ctx context.Context,
	q *weave.EventQueue,
	n int,
	poll time.Duration) *syncutil.Bundle {
	b := syncutil.NewBundle(ctx)
	for i := 0; i < n; i++ {
		b.Add(func(ctx context.Context) error {
			return ProcessLoop(ctx, q, poll)
		})
	}

	return b
}
