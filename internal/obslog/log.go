// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package obslog provides the codec's diagnostic side channel, spec.md §7:
// "No structured error kind is exposed to the caller — diagnostic detail is
// only logged to a side channel." Parser and Writer instances log rejected
// tokens, overflow, and structural violations here through Reject, at Debug
// level, while their public API keeps returning a plain error.
//
// Structured logging via logrus matches the teacher repo's go.mod
// (github.com/sirupsen/logrus); each instance is tagged with a
// google/uuid-generated instance ID so concurrent Parser/Writer instances —
// spec.md §5 allows one per goroutine — are distinguishable in a shared log
// stream.
package obslog

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger is a per-instance diagnostic logger.
type Logger struct {
	entry *logrus.Entry
	id    string
}

// New creates a Logger tagged with component (e.g. "parser", "writer") and
// a fresh instance ID.
func New(component string) *Logger {
	id := uuid.NewString()
	return &Logger{
		id: id,
		entry: logrus.WithFields(logrus.Fields{
			"component": component,
			"instance":  id,
		}),
	}
}

// InstanceID returns this Logger's correlation ID.
func (l *Logger) InstanceID() string { return l.id }

// Reject logs a tokenizer/parser rejection at Debug level: this is the
// normal, expected outcome of malformed input and not worth Warn-level
// noise in a caller's logs.
func (l *Logger) Reject(reason string, fields logrus.Fields) {
	l.entry.WithFields(fields).Debug(reason)
}

// Overflow logs a resource-exhaustion condition (arena budget, output
// buffer, stack depth) at Warn level: these usually indicate the caller
// under-sized the codec instance for its workload.
func (l *Logger) Overflow(reason string, fields logrus.Fields) {
	l.entry.WithFields(fields).Warn(reason)
}
