// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package arena

import "encoding/binary"

// Returnable blocks layer a classic first-fit freelist on top of the
// permanent bump allocator, spec.md §4.1 and §9 ("Returnable arena
// blocks"): growable vectors (attribute arrays, the interning table, a
// per-object scratch index) need to resize without permanently leaking the
// old allocation's space for the rest of one parse.
//
// Each block is a header immediately followed by its payload:
//
//	[ next Handle (8B) | size uint32 (4B) | magic uint32 (4B) | payload... ]
//
// The header carries no pointers, so it is encoded by hand with
// encoding/binary rather than reached for via unsafe.

const (
	headerSize = 16
	magicWord  = 0x5a52424c // "ZRBL", arbitrary but stable
)

func putHeader(b []byte, next Handle, size uint32, magic uint32) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(next))
	binary.LittleEndian.PutUint32(b[8:12], size)
	binary.LittleEndian.PutUint32(b[12:16], magic)
}

func getHeader(b []byte) (next Handle, size uint32, magic uint32) {
	next = Handle(binary.LittleEndian.Uint64(b[0:8]))
	size = binary.LittleEndian.Uint32(b[8:12])
	magic = binary.LittleEndian.Uint32(b[12:16])
	return
}

// headerHandle returns the Handle to the header preceding the payload at p.
func headerHandle(p Handle) Handle {
	return p.offsetBy(-headerSize)
}

func payloadHandle(h Handle) Handle {
	return h.offsetBy(headerSize)
}

// AllocReturnable allocates an individually freeable/resizable block of n
// bytes. Returns the zero Handle on out-of-memory.
func (a *Arena) AllocReturnable(n int) Handle {
	n = align(n)

	var prev Handle
	cur := a.freeHead
	for cur.Valid() {
		hdr := a.Bytes(cur, headerSize)
		next, size, _ := getHeader(hdr)

		if int(size) >= n {
			if int(size) >= 2*n {
				return a.splitBlock(prev, cur, next, int(size), n)
			}
			// Whole block satisfies the request without a useful remainder:
			// unlink it entirely, per spec.md's first-fit-with-split rule.
			a.unlink(prev, cur, next)
			putHeader(hdr, 0, size, magicWord)
			return payloadHandle(cur)
		}

		prev = cur
		cur = next
	}

	// Miss: bump-allocate a fresh header+payload block.
	total := headerSize + n
	h := a.Alloc(total)
	if !h.Valid() {
		return 0
	}
	putHeader(a.Bytes(h, headerSize), 0, uint32(n), magicWord)
	return payloadHandle(h)
}

// splitBlock carves an n-byte block off the tail of the block at cur
// (current size must already be >= 2n), leaving a shrunk block of the same
// identity in place on the freelist.
func (a *Arena) splitBlock(prev, cur, next Handle, size, n int) Handle {
	remaining := size - n - headerSize
	if remaining < 0 {
		// Not enough room to also carve a header for the remainder; fall
		// back to handing over the whole block, same as the non-split path.
		a.unlink(prev, cur, next)
		putHeader(a.Bytes(cur, headerSize), 0, uint32(size), magicWord)
		return payloadHandle(cur)
	}

	// The shrunk block keeps its position in the list.
	putHeader(a.Bytes(cur, headerSize), next, uint32(remaining), magicWord)

	tail := cur.offsetBy(headerSize + remaining)
	putHeader(a.Bytes(tail, headerSize), 0, uint32(n), magicWord)
	return payloadHandle(tail)
}

func (a *Arena) unlink(prev, cur, next Handle) {
	if !prev.Valid() {
		a.freeHead = next
		return
	}
	prevHdr := a.Bytes(prev, headerSize)
	_, size, magic := getHeader(prevHdr)
	putHeader(prevHdr, next, size, magic)
}

// FreeReturnable pushes the block at payload handle p back onto the
// freelist. Calling it on a Handle that is not a live returnable block
// (wrong magic) is a silent no-op, spec.md's "magic guard" robustness aid.
func (a *Arena) FreeReturnable(p Handle) {
	if !p.Valid() {
		return
	}
	hh := headerHandle(p)
	hdr := a.Bytes(hh, headerSize)
	if hdr == nil {
		return
	}
	_, size, magic := getHeader(hdr)
	if magic != magicWord {
		return
	}
	putHeader(hdr, a.freeHead, size, magicWord)
	a.freeHead = hh
}

// ReallocReturnable grows or shrinks the block at p to newSize bytes,
// spec.md §4.1's Realloc. If the existing block's size (header included)
// already satisfies the request it returns the same Handle; otherwise it
// allocates a new block, copies the valid payload prefix, and frees the old
// block.
func (a *Arena) ReallocReturnable(p Handle, newSize int) Handle {
	if !p.Valid() {
		return a.AllocReturnable(newSize)
	}

	hh := headerHandle(p)
	hdr := a.Bytes(hh, headerSize)
	if hdr == nil {
		return 0
	}
	_, size, magic := getHeader(hdr)
	if magic != magicWord {
		// Not a block this allocator produced; magic guard.
		return 0
	}

	if headerSize+int(size) >= newSize {
		return p
	}

	q := a.AllocReturnable(newSize)
	if !q.Valid() {
		return 0
	}

	n := int(size)
	if newSize < n {
		n = newSize
	}
	if n > 0 {
		copy(a.Bytes(q, n), a.Bytes(p, n))
	}
	a.FreeReturnable(p)
	return q
}
