// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package intern implements the attribute-name interning table, spec.md
// §4.2: an arena-backed, open-addressed string table that maps attribute
// name bytes to stable 16-bit indices shared across one parse.
//
// The table is grounded on the same idea as OPA's
// v1/storage/arena.InternString (github.com/open-policy-agent/opa's
// interning.go), but that code hands the job to the standard library's
// unique.Handle, which gives no control over the hash function, the index
// numbering, or the name-length ceiling spec.md §4.2 requires. Here the
// table is hand-rolled against the Arena instead, the way spec.md's
// multiplicative-hash open-addressing design calls for.
package intern

import (
	"encoding/binary"

	"github.com/arenajson/arenajson/internal/arena"
)

// MaxNameLen is the attribute-name length ceiling, spec.md §4.2: "length <
// 64; longer names are a parse error".
const MaxNameLen = 63

// Index is a 1-based interned-name index. 0 is reserved as the "empty slot"
// sentinel for the hash index and is never a valid Index.
type Index uint16

// Table interns attribute-name byte strings into a single arena-owned array,
// with an open-addressed hash index for O(1) expected lookup.
type Table struct {
	a *arena.Arena

	names []arena.Handle // index i-1 holds the Handle to interned name i
	lens  []int

	slotsH   arena.Handle // returnable block of 2-byte little-endian Index slots
	slotsLen int          // number of slots (4x cap(names))
	cap      int          // current capacity of names/lens (power-of-two growth)

	initialCap int // cap to rebuild at on Reset
}

// New creates a Table backed by a. initialCap is the starting number of
// names the table can hold before its first growth; 0 selects a sane
// default.
func New(a *arena.Arena, initialCap int) *Table {
	if initialCap <= 0 {
		initialCap = 16
	}
	t := &Table{a: a, cap: initialCap, initialCap: initialCap}
	t.names = make([]arena.Handle, 0, initialCap)
	t.lens = make([]int, 0, initialCap)
	t.slotsLen = initialCap * 4
	t.slotsH = a.AllocReturnable(t.slotsLen * 2)
	return t
}

// Reset discards every interned name and rebuilds an empty hash index at the
// Table's original capacity. Reset must only be called immediately after the
// backing Arena itself has been reset (arena.Arena.Reset): the bytes
// t.slotsH pointed at are no longer valid, so Reset re-allocates the index
// and zeroes it, since a reset Arena hands back its old, uncleared bytes.
func (t *Table) Reset() {
	t.names = t.names[:0]
	t.lens = t.lens[:0]
	t.cap = t.initialCap
	t.slotsLen = t.cap * 4
	t.slotsH = t.a.AllocReturnable(t.slotsLen * 2)
	clear(t.a.Bytes(t.slotsH, t.slotsLen*2))
}

func (t *Table) getSlot(i int) Index {
	b := t.a.Bytes(t.slotsH, t.slotsLen*2)
	return Index(binary.LittleEndian.Uint16(b[i*2 : i*2+2]))
}

func (t *Table) setSlot(i int, v Index) {
	b := t.a.Bytes(t.slotsH, t.slotsLen*2)
	binary.LittleEndian.PutUint16(b[i*2:i*2+2], uint16(v))
}

// hash is spec.md §4.2's multiplicative hash: h = h*7879 + (h>>16) + byte.
func hash(name []byte) uint32 {
	var h uint32
	for _, b := range name {
		h = h*7879 + (h >> 16) + uint32(b)
	}
	return h
}

func (t *Table) probe(name []byte, h uint32) (slot int, existing Index) {
	n := t.slotsLen
	start := int(h) % n
	for i := 0; i < n; i++ {
		slot = (start + i) % n
		idx := t.getSlot(slot)
		if idx == 0 {
			return slot, 0
		}
		if t.equal(idx, name) {
			return slot, idx
		}
	}
	// Unreachable at the load factors this table maintains (<=25%, spec.md
	// §9), but guard against an infinite loop in a pathological growth bug.
	return -1, 0
}

func (t *Table) equal(idx Index, name []byte) bool {
	i := int(idx) - 1
	if t.lens[i] != len(name) {
		return false
	}
	stored := t.a.Bytes(t.names[i], len(name))
	for j := range name {
		if stored[j] != name[j] {
			return false
		}
	}
	return true
}

// Lookup returns the interned index for name, or 0 if name was never
// interned in this table.
func (t *Table) Lookup(name []byte) Index {
	if t.slotsLen == 0 {
		return 0
	}
	_, idx := t.probe(name, hash(name))
	return idx
}

// Add interns name, returning its existing index if already present or a
// freshly assigned one otherwise. Names longer than MaxNameLen are an error.
func (t *Table) Add(name []byte) (Index, error) {
	if len(name) > MaxNameLen {
		return 0, ErrNameTooLong
	}

	h := hash(name)
	slot, existing := t.probe(name, h)
	if existing != 0 {
		return existing, nil
	}
	if slot < 0 {
		return 0, ErrTableFull
	}

	if len(t.names) == t.cap {
		t.grow()
		slot, existing = t.probe(name, h)
		if existing != 0 {
			return existing, nil
		}
	}

	nameHandle := t.a.Alloc(len(name) + 1) // +1 for the NUL terminator
	if !nameHandle.Valid() {
		return 0, ErrOutOfMemory
	}
	buf := t.a.Bytes(nameHandle, len(name)+1)
	copy(buf, name)
	buf[len(name)] = 0

	idx := Index(len(t.names) + 1)
	t.names = append(t.names, nameHandle)
	t.lens = append(t.lens, len(name))
	t.setSlot(slot, idx)
	return idx, nil
}

// Name returns the interned bytes (without the NUL terminator) for idx.
func (t *Table) Name(idx Index) []byte {
	if idx == 0 || int(idx) > len(t.names) {
		return nil
	}
	i := int(idx) - 1
	return t.a.Bytes(t.names[i], t.lens[i])
}

// grow doubles the name-array capacity and rebuilds the hash index at 4x
// the new capacity, rehashing every live entry, spec.md §4.2. The arena
// storage backing the old hash index is returned to the freelist.
func (t *Table) grow() {
	oldH := t.slotsH

	t.cap *= 2
	t.slotsLen = t.cap * 4
	t.slotsH = t.a.AllocReturnable(t.slotsLen * 2)
	clear(t.a.Bytes(t.slotsH, t.slotsLen*2))

	for i := range t.names {
		idx := Index(i + 1)
		name := t.a.Bytes(t.names[i], t.lens[i])
		h := hash(name)
		slot, _ := t.probe(name, h)
		t.setSlot(slot, idx)
	}

	t.a.FreeReturnable(oldH)
}

// Count reports the number of interned names.
func (t *Table) Count() int { return len(t.names) }
