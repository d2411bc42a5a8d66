// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package jsonparser implements the parser driver, spec.md §4.4: a stack
// machine over the tokenizer's output that performs structural validation,
// node construction, and tree wiring into an arena-backed jsonvalue.Value
// tree.
package jsonparser

import (
	"errors"
	"strconv"

	"github.com/arenajson/arenajson/internal/arena"
	"github.com/arenajson/arenajson/internal/intern"
	"github.com/arenajson/arenajson/internal/jsonesc"
	"github.com/arenajson/arenajson/internal/metrics"
	"github.com/arenajson/arenajson/internal/obslog"
	"github.com/arenajson/arenajson/internal/token"
	"github.com/arenajson/arenajson/pkg/jsonvalue"
	"github.com/sirupsen/logrus"
)

// ErrParse is returned by Parse for every malformed input: malformed
// number, unterminated string, invalid byte, oversized attribute name,
// stack depth exceeded, or arena exhaustion. Per spec.md §7, no structured
// error kind is exposed here — the rejection detail is only available on
// the diagnostic side channel (internal/obslog).
var ErrParse = errors.New("arenajson: parse failed")

const (
	// DefaultMemBytes is parser_create's 0-input default, spec.md §6.
	DefaultMemBytes = 16 * 1024
	// DefaultStackDepth is parser_create's 0-input default, spec.md §6.
	DefaultStackDepth = 16
	// minMemBytes is the floor inputs below it are raised to.
	minMemBytes = 16 * 1024
	// minStackDepth is the floor inputs below it are raised to.
	minStackDepth = 16
)

type options struct {
	memBytes   int
	stackDepth int
}

// Option configures a Parser at construction.
type Option func(*options)

// WithMemBytes sets the arena budget. Values below the 16 KiB floor are
// raised to it; 0 selects the default.
func WithMemBytes(n int) Option { return func(o *options) { o.memBytes = n } }

// WithStackDepth sets the maximum nesting depth. Values below the 16-frame
// floor are raised to it; 0 selects the default.
func WithStackDepth(n int) Option { return func(o *options) { o.stackDepth = n } }

type ctx uint8

const (
	ctxTop ctx = iota
	ctxArray
	ctxObject
)

type frame struct {
	prevKind token.Kind
	ctx      ctx
	node     *jsonvalue.Value
}

// Parser is a stack-machine JSON parser backed by a fixed-budget arena.
// A Parser is not safe for concurrent use, spec.md §5; each goroutine
// needing one should construct its own.
type Parser struct {
	a        *arena.Arena
	tbl      *intern.Table
	pool     *jsonvalue.Pool
	maxDepth int

	stack []frame
	root  *jsonvalue.Value

	log *obslog.Logger
}

// New constructs a Parser, applying the floors from spec.md §6's
// parser_create.
func New(opts ...Option) (*Parser, error) {
	o := options{memBytes: DefaultMemBytes, stackDepth: DefaultStackDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.memBytes < minMemBytes {
		o.memBytes = minMemBytes
	}
	if o.stackDepth < minStackDepth {
		o.stackDepth = minStackDepth
	}

	a := arena.New(o.memBytes)
	tbl := intern.New(a, 16)
	p := &Parser{
		a:        a,
		tbl:      tbl,
		pool:     jsonvalue.NewPool(a, tbl),
		maxDepth: o.stackDepth,
		stack:    make([]frame, 1, o.stackDepth),
		log:      obslog.New("parser"),
	}
	return p, nil
}

// Parse ingests buf and materialises a jsonvalue.Value tree. Parse resets
// the Parser's arena at entry, spec.md §5: every Value previously returned
// by this Parser is invalidated the moment Parse is called again.
func (p *Parser) Parse(buf []byte) (*jsonvalue.Value, error) {
	p.a.Reset()
	p.tbl.Reset()
	p.pool.Reset()
	p.stack = p.stack[:1]
	p.stack[0] = frame{prevKind: token.InputStart, ctx: ctxTop}
	p.root = nil

	metrics.ArenaBytesUsed.Set(float64(p.a.Used()))

	sc := token.New(buf)
	for {
		tok := sc.Next()
		if tok.Kind == token.Error {
			return p.fail("invalid token", tok)
		}

		var (
			val *jsonvalue.Value
			ok  bool
		)

		switch tok.Kind {
		case token.InputEnd:
			cur := p.top()
			if len(p.stack) == 1 && cur.ctx == ctxTop && cur.prevKind != token.InputStart {
				metrics.ArenaBytesUsed.Set(float64(p.a.Used()))
				return p.root, nil
			}
			return p.fail("unexpected end of input", tok)

		case token.ArrayStart:
			if err := p.dispatchValue(jsonvalue.TypeArray, tok); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.ObjectStart:
			if err := p.dispatchValue(jsonvalue.TypeObject, tok); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.ArrayEnd:
			if err := p.closeArray(); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.ObjectEnd:
			if err := p.closeObject(); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.Comma:
			if err := p.dispatchComma(); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.Name:
			if err := p.dispatchName(sc, tok); err != nil {
				return p.fail(err.Error(), tok)
			}
			continue

		case token.Null:
			val = p.pool.NewNull()
		case token.Bool:
			val = p.pool.NewBool(tok.Bool)
		case token.Int:
			n, perr := strconv.ParseInt(string(sc.Bytes()[tok.Pos:tok.Pos+tok.Len]), 10, 64)
			if perr != nil {
				return p.fail("malformed integer", tok)
			}
			val = p.pool.NewInt(int32(n))
		case token.Double:
			f, perr := strconv.ParseFloat(string(sc.Bytes()[tok.Pos:tok.Pos+tok.Len]), 64)
			if perr != nil {
				return p.fail("malformed double", tok)
			}
			val = p.pool.NewDouble(f)
		case token.String:
			val, ok = p.newString(sc, tok)
			if !ok {
				return p.fail("arena exhausted materialising string", tok)
			}
		default:
			return p.fail("unexpected token", tok)
		}

		if err := p.wire(val, tok.Kind); err != nil {
			return p.fail(err.Error(), tok)
		}
	}
}

func (p *Parser) newString(sc *token.Scanner, tok token.Token) (*jsonvalue.Value, bool) {
	raw := sc.Bytes()[tok.Pos : tok.Pos+tok.Len]
	if !jsonesc.NeedsUnescape(raw) {
		return p.pool.NewString(raw)
	}
	dst := make([]byte, tok.Len)
	n := jsonesc.Unescape(raw, dst)
	return p.pool.NewString(dst[:n])
}

func (p *Parser) top() *frame { return &p.stack[len(p.stack)-1] }

var errBadWiring = errors.New("structurally invalid token sequence")
var errTrailingComma = errors.New("trailing comma")
var errDanglingAttr = errors.New("dangling attribute at object close")
var errDepthExceeded = errors.New("maximum nesting depth exceeded")

// wire implements spec.md §4.4's "Wiring a new node" for scalar values.
func (p *Parser) wire(v *jsonvalue.Value, kind token.Kind) error {
	cur := p.top()
	switch cur.ctx {
	case ctxTop:
		if cur.prevKind != token.InputStart {
			return errBadWiring
		}
		p.root = v
	case ctxArray:
		if cur.prevKind != token.ArrayStart && cur.prevKind != token.Comma {
			return errBadWiring
		}
		cur.node.AppendElement(v)
	case ctxObject:
		if cur.prevKind != token.Name {
			return errBadWiring
		}
		cur.node.FillLastAttr(v)
	}
	cur.prevKind = kind
	return nil
}

// dispatchValue wires an Array/Object-start node into the current frame per
// wire, then pushes a new frame for its contents.
func (p *Parser) dispatchValue(typ jsonvalue.Type, tok token.Token) error {
	var node *jsonvalue.Value
	if typ == jsonvalue.TypeArray {
		node = p.pool.NewArray()
	} else {
		node = p.pool.NewObject()
	}
	if err := p.wire(node, tok.Kind); err != nil {
		return err
	}
	if len(p.stack) >= p.maxDepth {
		return errDepthExceeded
	}
	nc := ctxArray
	if typ == jsonvalue.TypeObject {
		nc = ctxObject
	}
	p.stack = append(p.stack, frame{prevKind: tok.Kind, ctx: nc, node: node})
	return nil
}

func (p *Parser) closeArray() error {
	cur := p.top()
	if cur.ctx != ctxArray {
		return errBadWiring
	}
	if cur.prevKind == token.Comma {
		return errTrailingComma
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.top().prevKind = token.ArrayEnd
	return nil
}

func (p *Parser) closeObject() error {
	cur := p.top()
	if cur.ctx != ctxObject {
		return errBadWiring
	}
	if cur.prevKind == token.Comma || cur.prevKind == token.Name {
		return errDanglingAttr
	}
	cur.node.Finalize()
	p.stack = p.stack[:len(p.stack)-1]
	p.top().prevKind = token.ObjectEnd
	return nil
}

func (p *Parser) dispatchComma() error {
	cur := p.top()
	switch cur.ctx {
	case ctxTop:
		return errBadWiring
	case ctxArray:
		if cur.prevKind == token.ArrayStart {
			return errBadWiring
		}
	case ctxObject:
		if cur.prevKind == token.ObjectStart || cur.prevKind == token.Name {
			return errBadWiring
		}
	}
	cur.prevKind = token.Comma
	return nil
}

func (p *Parser) dispatchName(sc *token.Scanner, tok token.Token) error {
	cur := p.top()
	if cur.ctx != ctxObject {
		return errBadWiring
	}
	if cur.prevKind != token.ObjectStart && cur.prevKind != token.Comma {
		return errBadWiring
	}
	idx, err := p.tbl.Add(sc.Bytes()[tok.Pos : tok.Pos+tok.Len])
	if err != nil {
		return err
	}
	cur.node.AppendAttr(idx)
	cur.prevKind = token.Name
	return nil
}

func (p *Parser) fail(reason string, tok token.Token) (*jsonvalue.Value, error) {
	metrics.ParseFailures.Inc()
	p.log.Reject(reason, logrus.Fields{
		"token_kind": tok.Kind.String(),
		"pos":        tok.Pos,
		"len":        tok.Len,
	})
	return jsonvalue.Absent(), ErrParse
}
