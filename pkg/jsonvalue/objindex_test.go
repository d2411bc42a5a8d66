// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package jsonvalue

import (
	"testing"

	"github.com/arenajson/arenajson/internal/arena"
	"github.com/arenajson/arenajson/internal/intern"
)

func TestBuildObjIndexLastWinsOnDuplicateKeys(t *testing.T) {
	a := arena.New(0)
	idx, err := intern.New(a, 4).Add([]byte("dup"))
	if err != nil {
		t.Fatal(err)
	}

	oi := buildObjIndex(a, []intern.Index{idx, idx, idx})

	slot, ok := oi.lookup(idx)
	if !ok {
		t.Fatal("lookup of an interned duplicate key missed")
	}
	if slot != 2 {
		t.Fatalf("slot = %d, want 2 (the last occurrence wins)", slot)
	}
}

func TestObjIndexWideCellsAboveThreshold(t *testing.T) {
	a := arena.New(0)
	tbl := intern.New(a, 300)

	keys := make([]intern.Index, 300)
	for i := range keys {
		idx, err := tbl.Add([]byte{byte('a' + i%26), byte('0' + i/26)})
		if err != nil {
			t.Fatalf("Add failed at %d: %v", i, err)
		}
		keys[i] = idx
	}

	oi := buildObjIndex(a, keys)
	if !oi.wide {
		t.Fatal("expected wide (2-byte) value cells for 300 attributes")
	}

	for i, key := range keys {
		slot, ok := oi.lookup(key)
		if !ok || slot != i {
			t.Fatalf("lookup(%v) = (%d, %v), want (%d, true)", key, slot, ok, i)
		}
	}
}

func TestObjIndexLookupMiss(t *testing.T) {
	a := arena.New(0)
	tbl := intern.New(a, 4)
	present, err := tbl.Add([]byte("present"))
	if err != nil {
		t.Fatal(err)
	}
	absent, err := tbl.Add([]byte("absent"))
	if err != nil {
		t.Fatal(err)
	}

	oi := buildObjIndex(a, []intern.Index{present})
	if _, ok := oi.lookup(absent); ok {
		t.Fatal("lookup of a key never inserted into this object's index should miss")
	}
}

func TestObjIndexNilLookupIsSafe(t *testing.T) {
	var oi *objIndex
	if _, ok := oi.lookup(1); ok {
		t.Fatal("lookup on a nil index (an object with no attributes) should miss, not panic")
	}
}
