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

// Package sensorhub simulates a small sensor board: a settings cell with
// a register view, a read method served off a handler queue, and a
// source for readings.
package sensorhub

import (
	"github.com/jacobsa/timeutil"
	"github.com/jacobsa/weave"
	"github.com/jacobsa/weave/weaveutil"
)

// Board settings. Fixed-size so that the register view can expose it.
type Config struct {
	// Sampling rate. Zero is rejected.
	RateHz uint32

	// Channel gain in quarter-dB steps.
	Gain uint16

	// Hardware revision, read-only to hosts.
	Revision uint16
}

// A request to read one channel.
type ReadRequest struct {
	Channel uint8
}

// The reply: the channel's value and the read's timestamp.
type ReadReply struct {
	Value int32
	Ts    uint32
}

type Hub struct {
	// The settings cell. Subscribe to its source for change notification.
	Settings *weave.Observable[Config]

	// The settings cell exposed as a register table.
	Regs *weaveutil.RegisterView[Config]

	// On-demand channel reads.
	Read *weaveutil.TypedMethod[ReadRequest, ReadReply]

	// A source for readings. Nothing in the hub emits on it.
	Readings *weave.Source

	clock timeutil.Clock
}

// New returns a hub whose read method is served through q. The caller
// drains q.
func New(clock timeutil.Clock, q *weave.EventQueue) (*Hub, error) {
	h := &Hub{
		clock:    clock,
		Readings: weave.NewSource("sensorhub.readings"),
	}

	h.Settings = weave.NewObservable("sensorhub.settings",
		Config{RateHz: 10, Gain: 4, Revision: 2},
		&weave.ObservableConfig[Config]{
			Validate: func(c Config) error {
				if c.RateHz == 0 {
					return weave.EINVAL
				}
				return nil
			},
		})

	var err error
	h.Regs, err = weaveutil.NewRegisterView(h.Settings, []weaveutil.Register{
		{Name: "rate", Offset: 0, Size: 4, Writable: true},
		{Name: "gain", Offset: 4, Size: 2, Writable: true},
		{Name: "rev", Offset: 6, Size: 2, Writable: false},
	})
	if err != nil {
		return nil, err
	}

	h.Read, err = weaveutil.NewTypedMethod("sensorhub.read", q, h.read)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// The read handler: a simulated conversion, stamped with the current
// time.
func (h *Hub) read(req *ReadRequest, rep *ReadReply) error {
	rep.Value = int32(req.Channel) * 10
	rep.Ts = uint32(h.clock.Now().Unix())
	return nil
}
