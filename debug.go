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
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"runtime"
	"sync"
)

var fEnableDebug = flag.Bool(
	"weave.debug",
	false,
	"Write weave debugging messages to stderr.")

var gDebugLogger *log.Logger
var gDebugLoggerOnce sync.Once

func initDebugLogger() {
	if !flag.Parsed() {
		panic("initDebugLogger called before flags available.")
	}

	var writer io.Writer = io.Discard
	if *fEnableDebug {
		writer = os.Stderr
	}

	const flags = log.Ldate | log.Ltime | log.Lmicroseconds
	gDebugLogger = log.New(writer, "weave: ", flags)
}

func getDebugLogger() *log.Logger {
	gDebugLoggerOnce.Do(initDebugLogger)
	return gDebugLogger
}

// The warning logger is always on; it carries the per-edge delivery
// failures that emit deliberately does not surface through its return
// value.
var gWarnLogger = log.New(os.Stderr, "weave: ", log.Ldate|log.Ltime)

// SetWarnLogger replaces the logger used for delivery warnings. The
// logger may be nil to suppress them.
func SetWarnLogger(l *log.Logger) {
	gWarnLogger = l
}

// Log a warning, prefixed with the caller's file:line.
func warnf(format string, v ...interface{}) {
	l := gWarnLogger
	if l == nil {
		return
	}

	// Get file:line info.
	var file string
	var line int
	var ok bool

	_, file, line, ok = runtime.Caller(1)
	if !ok {
		file = "???"
	}

	fileLine := fmt.Sprintf("%v:%v", path.Base(file), line)
	l.Printf("%s] %s", fileLine, fmt.Sprintf(format, v...))
}

func debugf(format string, v ...interface{}) {
	getDebugLogger().Printf(format, v...)
}
