// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package jsonesc implements the unescape table the parser uses to
// materialise String tokens, spec.md §4.6. The writer's escaping half of
// the same table is not exported from here: pkg/jsonwriter hand-duplicates
// it against its fixed output buffer instead of calling an append-based
// helper, see DESIGN.md.
package jsonesc

// Unescape decodes backslash sequences recognised by spec.md §4.6 ("Paired
// with the writer") into dst, a caller-provided buffer sized len(src) (the
// decoded form is never longer than the source). It returns the decoded
// length. Unknown escapes are preserved verbatim as their two literal
// bytes, a deliberately lossy round-trip spec.md §9 calls out.
func Unescape(src []byte, dst []byte) int {
	n := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '\\' || i+1 >= len(src) {
			dst[n] = c
			n++
			continue
		}
		next := src[i+1]
		switch next {
		case '"':
			dst[n] = '"'
		case '\\':
			dst[n] = '\\'
		case '/':
			dst[n] = '/'
		case 'b':
			dst[n] = '\b'
		case 'f':
			dst[n] = '\f'
		case 'n':
			dst[n] = '\n'
		case 'r':
			dst[n] = '\r'
		case 't':
			dst[n] = '\t'
		default:
			dst[n] = c
			n++
			dst[n] = next
			i++
			n++
			continue
		}
		n++
		i++
	}
	return n
}

// NeedsUnescape reports whether src contains a backslash, so callers can
// skip the copy-and-decode path for the common case of a plain string.
func NeedsUnescape(src []byte) bool {
	for _, c := range src {
		if c == '\\' {
			return true
		}
	}
	return false
}

