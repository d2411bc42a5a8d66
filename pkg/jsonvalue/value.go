// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package jsonvalue implements the codec's value-node tree, spec.md §3: a
// tagged record type with payload invariants per tag, plus the per-object
// name index of spec.md §4.5.
//
// Value records are bump-allocated from a Pool — a chain of fixed-size
// segments of Value structs — the same "segment chain + bump cursor +
// generational reset" shape as OPA's v1/storage/arena.Arena node storage
// (segments []*[SegmentSize]Node), adapted from that package's int32
// indices to ordinary Go pointers: since a Value may hold []*Value children
// slices, which the garbage collector must be able to trace, those slices
// live on the regular Go heap rather than in the raw byte Arena — only
// pointer-free payloads (interned name/string bytes, the per-object hash
// table) are stored there. See DESIGN.md for the open-question writeup.
package jsonvalue

import (
	"strconv"

	"github.com/arenajson/arenajson/internal/arena"
	"github.com/arenajson/arenajson/internal/intern"
)

// Type identifies the kind of value a Value node holds.
type Type uint8

const (
	// TypeAbsent marks the shared sentinel returned by every lookup-miss
	// path, spec.md §3.
	TypeAbsent Type = iota
	TypeNull
	TypeBool
	TypeInt
	TypeDouble
	TypeString
	TypeArray
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeAbsent:
		return "absent"
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a single node in a parsed JSON tree.
type Value struct {
	typ Type

	i32 int32
	f64 float64

	strH   arena.Handle
	strLen int

	children []*Value

	attrNames []intern.Index
	attrVals  []*Value
	attrIdx   *objIndex

	a   *arena.Arena
	tbl *intern.Table
}

// absent is the single shared Absent sentinel, spec.md §3 and §9: "Returning
// a pointer to a shared immutable node from miss paths lets callers chain
// lookups without null checks." Callers must compare Type() == TypeAbsent
// rather than pointer-compare against this value, per spec.md §6.
var absent = &Value{typ: TypeAbsent}

// Absent returns the shared Absent sentinel.
func Absent() *Value { return absent }

// Type returns the node's type tag.
func (v *Value) Type() Type { return v.typ }

// AsBool returns the node's boolean payload. Only meaningful when
// Type() == TypeBool.
func (v *Value) AsBool() bool { return v.i32 != 0 }

// AsInt returns the node's signed 32-bit integer payload. Only meaningful
// when Type() == TypeInt.
func (v *Value) AsInt() int32 { return v.i32 }

// AsDouble returns the node's float64 payload. Only meaningful when
// Type() == TypeDouble.
func (v *Value) AsDouble() float64 { return v.f64 }

// AsString returns the node's string payload. Only meaningful when
// Type() == TypeString.
func (v *Value) AsString() string {
	if v.strLen == 0 {
		return ""
	}
	return string(v.a.Bytes(v.strH, v.strLen))
}

// Len returns the number of elements in an Array, or attributes in an
// Object. It returns 0 for every other type.
func (v *Value) Len() int {
	switch v.typ {
	case TypeArray:
		return len(v.children)
	case TypeObject:
		return len(v.attrVals)
	default:
		return 0
	}
}

// Element returns the i-th array child, or Absent on type mismatch or
// out-of-range index, spec.md §6.
func (v *Value) Element(i int) *Value {
	if v.typ != TypeArray || i < 0 || i >= len(v.children) {
		return absent
	}
	return v.children[i]
}

// Attribute returns the named attribute's value, or Absent on type
// mismatch or miss, spec.md §6 and §4.5's O(1)-expected lookup.
func (v *Value) Attribute(name string) *Value {
	if v.typ != TypeObject || v.tbl == nil {
		return absent
	}
	idx := v.tbl.Lookup([]byte(name))
	if idx == 0 {
		return absent
	}
	slot, ok := v.attrIdx.lookup(idx)
	if !ok {
		return absent
	}
	return v.attrVals[slot]
}

// AttributeName returns the name of the i-th attribute in source order, or
// "" if i is out of range.
func (v *Value) AttributeName(i int) string {
	if v.typ != TypeObject || i < 0 || i >= len(v.attrNames) {
		return ""
	}
	return string(v.tbl.Name(v.attrNames[i]))
}

// AttributeAt returns the i-th attribute's value in source order, or
// Absent if i is out of range.
func (v *Value) AttributeAt(i int) *Value {
	if v.typ != TypeObject || i < 0 || i >= len(v.attrVals) {
		return absent
	}
	return v.attrVals[i]
}

// String renders v as a compact human-readable form, for logging and
// debugging; it is not the writer's JSON output (see pkg/jsonwriter).
func (v *Value) String() string {
	switch v.typ {
	case TypeAbsent:
		return "<absent>"
	case TypeNull:
		return "null"
	case TypeBool:
		return strconv.FormatBool(v.AsBool())
	case TypeInt:
		return strconv.FormatInt(int64(v.i32), 10)
	case TypeDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeArray:
		return "[array len=" + strconv.Itoa(len(v.children)) + "]"
	case TypeObject:
		return "{object len=" + strconv.Itoa(len(v.attrVals)) + "}"
	default:
		return "<unknown>"
	}
}
