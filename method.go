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

package weave

import (
	"context"
	"time"

	"github.com/jacobsa/reqtrace"
)

// A MethodPort is a typed request/reply endpoint. Calls are enqueued on
// the handler's event queue and executed by whichever goroutine drains
// it; the reply travels back through a per-call completion.
//
// Request and reply sizes are declared up front and validated on every
// call. Either side may be void, with size zero.
type MethodPort struct {
	name             string
	reqSize, repSize int

	// Invoked on the handler goroutine with the request bytes and a
	// zeroed reply buffer of the declared size. Its return value is
	// propagated verbatim to the caller.
	handler func(req []byte, reply []byte) error

	// The internal sink through which calls travel.
	sink Sink
}

// One in-flight call. The completion owns the reply buffer so that a
// caller that gave up waiting leaves nothing for the handler to
// scribble on.
type completion struct {
	req    []byte
	reply  []byte
	status error
	done   chan struct{}
}

// NewMethodPort returns a method port routing calls to handler through q.
// Sizes must be non-negative; a zero size declares that side void.
func NewMethodPort(
	name string,
	q *EventQueue,
	reqSize int,
	repSize int,
	handler func(req []byte, reply []byte) error) (*MethodPort, error) {
	if q == nil || handler == nil || reqSize < 0 || repSize < 0 {
		return nil, EINVAL
	}

	p := &MethodPort{
		name:    name,
		reqSize: reqSize,
		repSize: repSize,
		handler: handler,
	}

	p.sink = Sink{
		Name:    name,
		Queue:   q,
		Handler: p.serve,
	}

	return p, nil
}

// The port's half of a call, run by whoever drains the queue.
func (p *MethodPort) serve(_ *Sink, pl *Payload) {
	c := pl.Value.(*completion)
	c.status = p.handler(c.req, c.reply)
	close(c.done)
}

// Call invokes the port's handler with req, blocking up to timeout first
// for queue space and then for the handler's reply, which is copied into
// reply on success. Sizes must match the port's declared ones exactly.
//
// The returned error is EINVAL for a nil or size-mismatched call (the
// handler is not invoked), ENOSPC or ETIMEDOUT when the queue stayed
// full, ETIMEDOUT when the handler did not complete in time, ctx.Err()
// when ctx is done before the handler completes, or whatever the handler
// returned, verbatim.
func (p *MethodPort) Call(
	ctx context.Context,
	req []byte,
	reply []byte,
	timeout time.Duration) (err error) {
	if p == nil || p.handler == nil {
		return EINVAL
	}

	if len(req) != p.reqSize || len(reply) != p.repSize {
		return EINVAL
	}

	if reqtrace.Enabled() {
		var report reqtrace.ReportFunc
		ctx, report = reqtrace.StartSpan(ctx, p.name)
		defer func() { report(err) }()
	}

	// The handler may run after a timed-out caller has returned, so it
	// must not share buffers with the caller.
	c := &completion{
		req:   append([]byte(nil), req...),
		reply: make([]byte, p.repSize),
		done:  make(chan struct{}),
	}

	pl := &Payload{Value: c, ops: ManagedPolicy}
	if err = p.sink.Queue.put(event{&p.sink, pl, ManagedPolicy}, timeout); err != nil {
		return err
	}

	if err = p.wait(ctx, c, timeout); err != nil {
		return err
	}

	copy(reply, c.reply)
	return c.status
}

func (p *MethodPort) wait(
	ctx context.Context,
	c *completion,
	timeout time.Duration) error {
	switch {
	case timeout == NoWait:
		select {
		case <-c.done:
			return nil
		default:
			return ETIMEDOUT
		}

	case timeout < 0:
		select {
		case <-c.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

	default:
		t := time.NewTimer(timeout)
		defer t.Stop()

		select {
		case <-c.done:
			return nil
		case <-t.C:
			return ETIMEDOUT
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
