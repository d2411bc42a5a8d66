// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package jsonvalue

import (
	"github.com/arenajson/arenajson/internal/arena"
	"github.com/arenajson/arenajson/internal/intern"
)

// segmentSize mirrors OPA's v1/storage/arena.SegmentSize: a fixed number of
// records per segment, so segment growth is an append rather than a copy of
// already-issued pointers.
const segmentSize = 512

// Pool is the bump allocator for Value records. It owns the Go-heap-backed
// segment chain (Value contains GC-visible slices, so it cannot live in the
// raw byte Arena), while delegating string and hash-table storage for its
// Values to the byte Arena and name Table passed to New.
type Pool struct {
	a   *arena.Arena
	tbl *intern.Table

	segments [][]Value
	count    int // next unused record index, reset to 0 by Reset
}

// NewPool creates a Pool whose Values borrow string bytes from a and
// resolve attribute names through tbl.
func NewPool(a *arena.Arena, tbl *intern.Table) *Pool {
	return &Pool{a: a, tbl: tbl}
}

// Reset rewinds the Pool so the next alloc reuses the first segment,
// mirroring Arena.Reset: every *Value handed out before a Reset is
// invalidated by the codec's ownership contract (spec.md §5), even though
// nothing stops a misbehaving caller from still dereferencing it.
func (p *Pool) Reset() {
	p.count = 0
}

func (p *Pool) alloc() *Value {
	seg := p.count / segmentSize
	idx := p.count % segmentSize
	for seg >= len(p.segments) {
		p.segments = append(p.segments, make([]Value, segmentSize))
	}
	p.count++
	v := &p.segments[seg][idx]
	*v = Value{a: p.a, tbl: p.tbl}
	return v
}

// NewNull allocates a Null-typed Value.
func (p *Pool) NewNull() *Value {
	v := p.alloc()
	v.typ = TypeNull
	return v
}

// NewBool allocates a Bool-typed Value.
func (p *Pool) NewBool(b bool) *Value {
	v := p.alloc()
	v.typ = TypeBool
	if b {
		v.i32 = 1
	}
	return v
}

// NewInt allocates an Int-typed Value.
func (p *Pool) NewInt(i int32) *Value {
	v := p.alloc()
	v.typ = TypeInt
	v.i32 = i
	return v
}

// NewDouble allocates a Double-typed Value.
func (p *Pool) NewDouble(f float64) *Value {
	v := p.alloc()
	v.typ = TypeDouble
	v.f64 = f
	return v
}

// NewString allocates a String-typed Value, copying s into the byte Arena
// with a NUL terminator, spec.md §3.
func (p *Pool) NewString(s []byte) (*Value, bool) {
	h := p.a.Alloc(len(s) + 1)
	if !h.Valid() {
		return nil, false
	}
	buf := p.a.Bytes(h, len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0

	v := p.alloc()
	v.typ = TypeString
	v.strH = h
	v.strLen = len(s)
	return v, true
}

// NewArray allocates an empty Array-typed Value.
func (p *Pool) NewArray() *Value {
	v := p.alloc()
	v.typ = TypeArray
	return v
}

// NewObject allocates an empty Object-typed Value (its scratch attribute
// arrays grow via AppendAttr as Name/value pairs are parsed).
func (p *Pool) NewObject() *Value {
	v := p.alloc()
	v.typ = TypeObject
	return v
}

// AppendElement appends child to an Array-typed Value's slot vector.
func (v *Value) AppendElement(child *Value) {
	v.children = append(v.children, child)
}

// AppendAttr appends a new, as-yet-unfilled attribute slot with the given
// interned name, spec.md §4.4's "Name" dispatch. The paired value is filled
// in later by FillLastAttr once the attribute's value token is parsed.
func (v *Value) AppendAttr(name intern.Index) {
	v.attrNames = append(v.attrNames, name)
	v.attrVals = append(v.attrVals, nil)
}

// FillLastAttr fills the most recently appended attribute's value slot,
// spec.md §4.4's InObject wiring rule.
func (v *Value) FillLastAttr(val *Value) {
	v.attrVals[len(v.attrVals)-1] = val
}

// Finalize builds the per-object name index once an object literal closes,
// spec.md §4.5.
func (v *Value) Finalize() {
	v.attrIdx = buildObjIndex(v.a, v.attrNames)
}
