// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package intern

import (
	"fmt"
	"testing"

	"github.com/arenajson/arenajson/internal/arena"
)

func TestAddThenLookup(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 4)

	idx, err := tbl.Add([]byte("name"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if idx == 0 {
		t.Fatal("Add returned the reserved zero index")
	}

	got := tbl.Lookup([]byte("name"))
	if got != idx {
		t.Fatalf("Lookup = %d, want %d", got, idx)
	}
	if string(tbl.Name(idx)) != "name" {
		t.Fatalf("Name(%d) = %q, want %q", idx, tbl.Name(idx), "name")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 4)

	first, err := tbl.Add([]byte("age"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := tbl.Add([]byte("age"))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("interning the same name twice gave different indices: %d, %d", first, second)
	}
	if tbl.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", tbl.Count())
	}
}

func TestLookupMiss(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 4)
	if idx := tbl.Lookup([]byte("never-added")); idx != 0 {
		t.Fatalf("Lookup of an absent name = %d, want 0", idx)
	}
}

func TestAddRejectsOversizedName(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 4)

	name := make([]byte, MaxNameLen+1)
	for i := range name {
		name[i] = 'a'
	}
	if _, err := tbl.Add(name); err != ErrNameTooLong {
		t.Fatalf("Add(%d-byte name) error = %v, want ErrNameTooLong", len(name), err)
	}
}

func TestGrowPreservesExistingEntries(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 2) // small initial capacity forces growth quickly

	names := make([]string, 0, 20)
	indices := make(map[string]Index, 20)
	for i := 0; i < 20; i++ {
		n := fmt.Sprintf("attr_%02d", i)
		idx, err := tbl.Add([]byte(n))
		if err != nil {
			t.Fatalf("Add(%q) failed: %v", n, err)
		}
		names = append(names, n)
		indices[n] = idx
	}

	for _, n := range names {
		got := tbl.Lookup([]byte(n))
		if got != indices[n] {
			t.Fatalf("after growth, Lookup(%q) = %d, want %d", n, got, indices[n])
		}
		if string(tbl.Name(got)) != n {
			t.Fatalf("after growth, Name(%d) = %q, want %q", got, tbl.Name(got), n)
		}
	}
}

func TestResetClearsInternedNames(t *testing.T) {
	a := arena.New(0)
	tbl := New(a, 4)

	idx, err := tbl.Add([]byte("stale"))
	if err != nil {
		t.Fatal(err)
	}
	if idx == 0 {
		t.Fatal("Add returned the reserved zero index")
	}

	a.Reset()
	tbl.Reset()

	if tbl.Count() != 0 {
		t.Fatalf("Count() after Reset = %d, want 0", tbl.Count())
	}
	if got := tbl.Lookup([]byte("stale")); got != 0 {
		t.Fatalf("Lookup after Reset = %d, want 0 (miss)", got)
	}

	idx2, err := tbl.Add([]byte("stale"))
	if err != nil {
		t.Fatal(err)
	}
	if idx2 != 1 {
		t.Fatalf("first Add after Reset = %d, want 1", idx2)
	}
}
