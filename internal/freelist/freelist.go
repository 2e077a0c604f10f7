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

package freelist

// A Freelist is a simple last-in first-out free list. It is not safe for
// concurrent access; guard it with the owner's lock.
type Freelist struct {
	list []interface{}
}

// Get an element from the list, allocating a fresh one with the supplied
// function if the list is empty.
func (fl *Freelist) Get(allocate func() interface{}) interface{} {
	l := len(fl.list)
	if l == 0 {
		return allocate()
	}

	x := fl.list[l-1]
	fl.list[l-1] = nil
	fl.list = fl.list[:l-1]

	return x
}

// Put an element back on the list for later reuse.
func (fl *Freelist) Put(x interface{}) {
	fl.list = append(fl.list, x)
}
