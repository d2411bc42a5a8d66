// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package arena

import "testing"

func TestNewAppliesFloor(t *testing.T) {
	a := New(1)
	if a.budget != MinChunkBytes {
		t.Fatalf("budget = %d, want floor %d", a.budget, MinChunkBytes)
	}
}

func TestAllocWritesAndReads(t *testing.T) {
	a := New(0)
	h := a.Alloc(5)
	if !h.Valid() {
		t.Fatal("Alloc returned an invalid handle")
	}
	buf := a.Bytes(h, 5)
	copy(buf, []byte("hello"))

	got := a.Bytes(h, 5)
	if string(got) != "hello" {
		t.Fatalf("Bytes = %q, want %q", got, "hello")
	}
}

func TestAllocIsAligned(t *testing.T) {
	a := New(0)
	a.Alloc(1) // odd size, forces the next allocation to prove alignment
	h2 := a.Alloc(8)
	_, off := h2.split()
	if off%Align != 0 {
		t.Fatalf("second allocation offset %d is not %d-aligned", off, Align)
	}
}

func TestAllocAcrossChunkBoundary(t *testing.T) {
	a := New(MinChunkBytes * 2)
	a.Alloc(MinChunkBytes - 8) // leave only a sliver in the first chunk
	h := a.Alloc(64)
	if !h.Valid() {
		t.Fatal("allocation spanning into a new chunk failed")
	}
	ci, _ := h.split()
	if ci != 1 {
		t.Fatalf("expected the spilled allocation in chunk 1, got chunk %d", ci)
	}
}

func TestAllocOutOfMemory(t *testing.T) {
	a := New(MinChunkBytes) // exactly one chunk, no room to grow
	a.Alloc(MinChunkBytes - 8)
	h := a.Alloc(MinChunkBytes) // does not fit in the remainder or a new chunk
	if h.Valid() {
		t.Fatal("expected Alloc to fail when the budget is exhausted")
	}
}

func TestResetInvalidatesCursorNotChunks(t *testing.T) {
	a := New(0)
	h1 := a.Alloc(16)
	copy(a.Bytes(h1, 16), []byte("before the reset"))

	a.Reset()

	h2 := a.Alloc(16)
	if h1 != h2 {
		t.Fatalf("after Reset, Alloc should reuse the first offset: got %v, want %v", h2, h1)
	}
	// The chunk's bytes are not zeroed, only the cursor moves; a caller that
	// overwrites through h2 observes fresh content at the same offset.
	copy(a.Bytes(h2, 5), []byte("after"))
	if got := string(a.Bytes(h2, 5)); got != "after" {
		t.Fatalf("Bytes after Reset+Alloc = %q, want %q", got, "after")
	}
}

func TestUsedTracksCommittedChunks(t *testing.T) {
	a := New(2 * MinChunkBytes)
	if a.Used() != MinChunkBytes {
		t.Fatalf("Used() after New = %d, want %d", a.Used(), MinChunkBytes)
	}
	a.Alloc(8)
	a.Alloc(MinChunkBytes) // no longer fits in the first chunk, forces a second
	if a.Used() != 2*MinChunkBytes {
		t.Fatalf("Used() after spilling to a second chunk = %d, want %d", a.Used(), 2*MinChunkBytes)
	}
}
