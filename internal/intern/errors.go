// Copyright 2026 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package intern

import "errors"

var (
	// ErrNameTooLong is returned by Add when name exceeds MaxNameLen bytes.
	ErrNameTooLong = errors.New("intern: attribute name exceeds 63 bytes")
	// ErrTableFull is returned by Add in the unreachable case that the hash
	// index cannot find an empty slot even after growth.
	ErrTableFull = errors.New("intern: name table full")
	// ErrOutOfMemory is returned by Add when the backing arena cannot
	// satisfy the allocation for the interned name bytes.
	ErrOutOfMemory = errors.New("intern: arena exhausted")
)
