// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package jsonvalue

import (
	"encoding/binary"

	"github.com/arenajson/arenajson/internal/arena"
	"github.com/arenajson/arenajson/internal/intern"
)

// objIndex is the per-object name→slot index built when an object literal
// closes, spec.md §4.5: an open-addressed table sized 4x the attribute
// count, keyed by the 16-bit interned-name index, mapping to the slot
// position within the object's attribute arrays. Value cells are one byte
// wide when the object has fewer than 256 attributes, two bytes otherwise —
// the size optimisation spec.md calls out for typical small objects.
//
// It is grounded on the same linear-probing, arena-backed-table shape as
// internal/intern.Table, scaled down to one object's lifetime.
type objIndex struct {
	a        *arena.Arena
	h        arena.Handle
	n        int // slot count (4x attribute count)
	wide     bool
	keyW     int // bytes per key cell, always 2
	cellSize int // keyW + valueW
}

const objIndexKeyWidth = 2

// buildObjIndex constructs the finalised index for an object with the given
// interned-name keys, where keys[i] is the attribute name at slot i.
// Duplicate keys follow "last wins": spec.md §9 records that the original's
// find-or-insert loop exits on the first match, so a later duplicate
// attribute overwrites the earlier one's recorded slot — see DESIGN.md.
func buildObjIndex(a *arena.Arena, keys []intern.Index) *objIndex {
	n := len(keys) * 4
	if n == 0 {
		n = 4
	}
	wide := len(keys) >= 256
	valueW := 1
	if wide {
		valueW = 2
	}
	cellSize := objIndexKeyWidth + valueW

	h := a.Alloc(n * cellSize)
	// Key 0 marks an empty cell, and Arena memory is not zeroed on reuse.
	clear(a.Bytes(h, n*cellSize))
	oi := &objIndex{a: a, h: h, n: n, wide: wide, keyW: objIndexKeyWidth, cellSize: cellSize}

	for slot, key := range keys {
		oi.insert(key, slot)
	}
	return oi
}

func (oi *objIndex) cell(i int) []byte {
	return oi.a.Bytes(oi.h, oi.n*oi.cellSize)[i*oi.cellSize : (i+1)*oi.cellSize]
}

func (oi *objIndex) key(c []byte) intern.Index {
	return intern.Index(binary.LittleEndian.Uint16(c[0:2]))
}

func (oi *objIndex) value(c []byte) int {
	if oi.wide {
		return int(binary.LittleEndian.Uint16(c[2:4]))
	}
	return int(c[2])
}

func (oi *objIndex) setCell(c []byte, key intern.Index, value int) {
	binary.LittleEndian.PutUint16(c[0:2], uint16(key))
	if oi.wide {
		binary.LittleEndian.PutUint16(c[2:4], uint16(value))
	} else {
		c[2] = byte(value)
	}
}

// insert writes key -> value, overwriting any prior value for the same key
// (last-wins, see buildObjIndex's doc comment).
func (oi *objIndex) insert(key intern.Index, value int) {
	start := int(key) % oi.n
	for i := 0; i < oi.n; i++ {
		slot := (start + i) % oi.n
		c := oi.cell(slot)
		k := oi.key(c)
		if k == 0 || k == key {
			oi.setCell(c, key, value)
			return
		}
	}
}

// lookup returns the slot position for key, or (-1, false) on a miss.
func (oi *objIndex) lookup(key intern.Index) (int, bool) {
	if oi == nil {
		return -1, false
	}
	start := int(key) % oi.n
	for i := 0; i < oi.n; i++ {
		slot := (start + i) % oi.n
		c := oi.cell(slot)
		k := oi.key(c)
		if k == 0 {
			return -1, false
		}
		if k == key {
			return oi.value(c), true
		}
	}
	return -1, false
}
