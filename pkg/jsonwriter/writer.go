// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package jsonwriter implements the streaming JSON writer, spec.md §4.6: a
// context-stack-driven emitter over one fixed, reused output buffer, with a
// sticky error flag in place of per-call error returns.
package jsonwriter

import (
	"errors"
	"strconv"

	"github.com/arenajson/arenajson/internal/metrics"
	"github.com/arenajson/arenajson/internal/obslog"
	"github.com/sirupsen/logrus"
)

// ErrWrite is returned by Get whenever the writer's sticky error flag is
// set, or the document was left unbalanced. Per spec.md §7, the detail
// behind it — overflow, structural misuse, which call first tripped it — is
// only available on the diagnostic side channel.
var ErrWrite = errors.New("arenajson: write failed")

const (
	// DefaultBufBytes is writer_create's 0-input default, spec.md §6.
	DefaultBufBytes = 16 * 1024
	// DefaultStackDepth is writer_create's 0-input default, spec.md §6.
	DefaultStackDepth = 16
	minBufBytes       = 16 * 1024
	minStackDepth     = 16
)

type options struct {
	bufBytes   int
	stackDepth int
}

// Option configures a Writer at construction.
type Option func(*options)

// WithBufBytes sets the output buffer size. Values below the 16 KiB floor
// are raised to it; 0 selects the default.
func WithBufBytes(n int) Option { return func(o *options) { o.bufBytes = n } }

// WithStackDepth sets the maximum container nesting depth. Values below the
// 16-frame floor are raised to it; 0 selects the default.
func WithStackDepth(n int) Option { return func(o *options) { o.stackDepth = n } }

type ctx uint8

const (
	ctxTop ctx = iota
	ctxArray
	ctxObject
)

type frame struct {
	ctx   ctx
	first bool // true until this container's first element has been emitted
}

// Writer is a streaming JSON emitter over one fixed buffer. It is not safe
// for concurrent use, spec.md §5, matching Parser.
type Writer struct {
	buf      []byte
	pos      int
	stack    []frame
	errFlag  bool
	maxDepth int

	log *obslog.Logger
}

// New constructs a Writer, applying the floors from spec.md §6's
// writer_create, and calls Begin so the returned Writer is immediately
// usable.
func New(opts ...Option) (*Writer, error) {
	o := options{bufBytes: DefaultBufBytes, stackDepth: DefaultStackDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bufBytes < minBufBytes {
		o.bufBytes = minBufBytes
	}
	if o.stackDepth < minStackDepth {
		o.stackDepth = minStackDepth
	}

	w := &Writer{
		buf:      make([]byte, o.bufBytes),
		maxDepth: o.stackDepth,
		stack:    make([]frame, 1, o.stackDepth),
		log:      obslog.New("writer"),
	}
	w.Begin()
	return w, nil
}

// Begin resets position, the sticky error flag, and the context stack,
// spec.md §4.6, so one Writer can be reused across many documents without
// reallocating its buffer.
func (w *Writer) Begin() {
	w.pos = 0
	w.errFlag = false
	w.stack = w.stack[:1]
	w.stack[0] = frame{ctx: ctxTop, first: true}
}

func (w *Writer) top() *frame { return &w.stack[len(w.stack)-1] }

func (w *Writer) writeByte(b byte) bool {
	if w.pos >= len(w.buf) {
		return false
	}
	w.buf[w.pos] = b
	w.pos++
	return true
}

func (w *Writer) writeBytes(b []byte) bool {
	if w.pos+len(b) > len(w.buf) {
		return false
	}
	copy(w.buf[w.pos:], b)
	w.pos += len(b)
	return true
}

// writeEscaped writes s into the buffer with spec.md §4.6's escaping
// applied, byte by byte so every write can be bounds-checked against the
// fixed buffer. internal/jsonesc only exports the unescape half of this
// table, because an append-based escaper would grow its destination slice —
// fine for the parser's scratch decode buffer, wrong here where the writer
// must never allocate past its one fixed buffer.
func (w *Writer) writeEscaped(s []byte) bool {
	for _, c := range s {
		var esc byte
		switch c {
		case '"':
			esc = '"'
		case '\\':
			esc = '\\'
		case '/':
			esc = '/'
		case '\b':
			esc = 'b'
		case '\f':
			esc = 'f'
		case '\n':
			esc = 'n'
		case '\r':
			esc = 'r'
		case '\t':
			esc = 't'
		default:
			if !w.writeByte(c) {
				return false
			}
			continue
		}
		if !w.writeByte('\\') || !w.writeByte(esc) {
			return false
		}
	}
	return true
}

func (w *Writer) fail(reason string) {
	w.errFlag = true
	w.log.Reject(reason, logrus.Fields{"pos": w.pos, "depth": len(w.stack)})
}

// prep implements spec.md §4.6's pre-value step: context/name validation,
// leading comma, and (inside an object) the `"<name>":` prefix.
func (w *Writer) prep(name string) bool {
	cur := w.top()
	named := name != ""
	switch cur.ctx {
	case ctxTop:
		if named {
			w.fail("name not allowed at top level")
			return false
		}
	case ctxArray:
		if named {
			w.fail("name not allowed inside array")
			return false
		}
	case ctxObject:
		if !named {
			w.fail("name required inside object")
			return false
		}
	}

	if !cur.first {
		if !w.writeByte(',') {
			w.fail("buffer overflow")
			return false
		}
	}
	cur.first = false

	if cur.ctx == ctxObject {
		if !w.writeByte('"') || !w.writeEscaped([]byte(name)) || !w.writeByte('"') || !w.writeByte(':') {
			w.fail("buffer overflow")
			return false
		}
	}
	return true
}

// value runs the common prep/write/failure sequence for every scalar
// method.
func (w *Writer) value(name string, write func() bool) {
	if w.errFlag {
		return
	}
	if !w.prep(name) {
		return
	}
	if !write() {
		w.fail("buffer overflow")
	}
}

// Null emits a null value.
func (w *Writer) Null(name string) {
	w.value(name, func() bool { return w.writeBytes([]byte("null")) })
}

// Bool emits a boolean value.
func (w *Writer) Bool(val bool, name string) {
	w.value(name, func() bool {
		if val {
			return w.writeBytes([]byte("true"))
		}
		return w.writeBytes([]byte("false"))
	})
}

// Int emits a signed 32-bit integer in decimal.
func (w *Writer) Int(val int32, name string) {
	w.value(name, func() bool {
		var scratch [16]byte
		return w.writeBytes(strconv.AppendInt(scratch[:0], int64(val), 10))
	})
}

// Double emits val in the writer's default fixed-point format: the
// shortest decimal representation that round-trips exactly, spec.md §4.6.
func (w *Writer) Double(val float64, name string) {
	w.value(name, func() bool {
		var scratch [32]byte
		return w.writeBytes(strconv.AppendFloat(scratch[:0], val, 'f', -1, 64))
	})
}

// DoubleWithPrecision emits val in fixed-point with exactly p fractional
// digits, spec.md §4.6.
func (w *Writer) DoubleWithPrecision(val float64, p int, name string) {
	w.value(name, func() bool {
		var scratch [64]byte
		return w.writeBytes(strconv.AppendFloat(scratch[:0], val, 'f', p, 64))
	})
}

// String emits a quoted, escaped string value.
func (w *Writer) String(val string, name string) {
	w.value(name, func() bool {
		return w.writeByte('"') && w.writeEscaped([]byte(val)) && w.writeByte('"')
	})
}

func (w *Writer) beginContainer(name string, nc ctx, open byte) {
	if w.errFlag {
		return
	}
	if !w.prep(name) {
		return
	}
	if !w.writeByte(open) {
		w.fail("buffer overflow")
		return
	}
	if len(w.stack) >= w.maxDepth {
		w.fail("maximum nesting depth exceeded")
		return
	}
	w.stack = append(w.stack, frame{ctx: nc, first: true})
}

func (w *Writer) endContainer(want ctx, closeByte byte) {
	if w.errFlag {
		if len(w.stack) > 1 {
			w.stack = w.stack[:len(w.stack)-1]
		}
		return
	}
	cur := w.top()
	if cur.ctx != want {
		w.fail("unbalanced container end")
		return
	}
	if !w.writeByte(closeByte) {
		w.fail("buffer overflow")
		return
	}
	w.stack = w.stack[:len(w.stack)-1]
}

// ArrayBegin opens an array value and pushes a new frame.
func (w *Writer) ArrayBegin(name string) { w.beginContainer(name, ctxArray, '[') }

// ArrayEnd closes the innermost array and pops its frame.
func (w *Writer) ArrayEnd() { w.endContainer(ctxArray, ']') }

// ObjectBegin opens an object value and pushes a new frame.
func (w *Writer) ObjectBegin(name string) { w.beginContainer(name, ctxObject, '{') }

// ObjectEnd closes the innermost object and pops its frame.
func (w *Writer) ObjectEnd() { w.endContainer(ctxObject, '}') }

// Get returns the document emitted since the last Begin. It requires the
// writer to be back at the top-level frame; spec.md §4.6's C pointer/size
// pair and NUL terminator become a plain Go string here — the Go-native
// rendering of the same "hand back what was written" contract.
func (w *Writer) Get() (string, error) {
	if len(w.stack) != 1 {
		w.fail("get called with an unbalanced container")
	}
	if w.errFlag {
		metrics.WriterStickyErrors.Inc()
		w.log.Reject("get observed sticky error", logrus.Fields{"pos": w.pos})
		return "", ErrWrite
	}
	return string(w.buf[:w.pos]), nil
}
