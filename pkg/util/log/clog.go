// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package log implements leveled, context-tagged logging for the optimizer
// and the command-line tools. Log tags attached to a context with
// logtags.AddTag are printed as a bracketed prefix on every message.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Severity identifies the level of a log entry.
type Severity int32

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "I"
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	}
	return "?"
}

type loggingT struct {
	mu struct {
		sync.Mutex
		w io.Writer
	}
	verbosity   atomic.Int32
	minSeverity atomic.Int32
	// nowFn is overridden in tests to make output deterministic.
	nowFn func() time.Time
}

var logging = func() *loggingT {
	l := &loggingT{nowFn: time.Now}
	l.mu.w = os.Stderr
	return l
}()

// SetOutput redirects log output to w and returns a function that restores
// the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.mu.w
	logging.mu.w = w
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.w = prev
	}
}

// SetVerbosity sets the global verbosity level consulted by V and VEventf.
func SetVerbosity(level int32) {
	logging.verbosity.Store(level)
}

// SetMinSeverity suppresses entries below the given severity.
func SetMinSeverity(s Severity) {
	logging.minSeverity.Store(int32(s))
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return logging.verbosity.Load() >= level
}

func (l *loggingT) outputLogEntry(s Severity, file string, line int, msg string) {
	if int32(s) < l.minSeverity.Load() {
		return
	}
	now := l.nowFn().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.mu.w, "%s%s %s:%d  %s\n",
		s, now.Format("060102 15:04:05.000000"), file, line, msg)
}
