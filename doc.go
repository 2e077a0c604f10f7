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

// Package weave implements an in-process dataflow messaging fabric.
// Independently built components publish payloads to named sources and
// consume them through named sinks; the fabric owns wiring, delivery,
// queueing, fan-out, and ownership transfer.
//
// The primary elements of interest are:
//
//   - Source, a fan-out emit point, and Sink, a named consumer with either
//     immediate (synchronous, in the emitter's goroutine) or queued
//     delivery.
//
//   - Connection, a directed source -> sink edge. Edges are wired either
//     with ConnectStatic, for edges whose storage the caller owns, or with
//     Connect, which draws from a fixed-capacity runtime pool.
//
//   - EventQueue, a bounded queue backing queued sinks. A worker drains it
//     one record at a time with ProcessEvents; the loop policy is the
//     caller's to choose (see weaveutil.ProcessLoop for the common one).
//
//   - Policy, the pluggable reference-counting strategy governing a
//     payload's lifetime. A policy without Ref expresses transfer-only
//     ownership and constrains its source to a single consumer.
//
// Layered on the substrate:
//
//   - Observable, a value cell that notifies subscribers on change.
//
//   - MethodPort, a request/reply channel routed to a handler goroutine.
//
// Blocking operations accept a timeout: NoWait to try once, Forever to
// block indefinitely, or any positive duration. Errors are reported as
// errno values; see errors.go.
package weave
