//
// Copyright 2018-2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import "strconv"

// Length is the content length declared by the server, which may be unknown.
type Length struct {
	n     int64
	known bool
}

// UnknownLength is the Length of a response without a declared size.
var UnknownLength = Length{}

// KnownLength returns a declared Length of n bytes. Negative values are
// treated as unknown.
func KnownLength(n int64) Length {
	if n < 0 {
		return UnknownLength
	}
	return Length{n: n, known: true}
}

// Get returns the declared size and whether it is known.
func (l Length) Get() (int64, bool) {
	return l.n, l.known
}

// IsKnown reports whether the server declared the size.
func (l Length) IsKnown() bool {
	return l.known
}

// Int64 returns the declared size, or -1 if unknown.
func (l Length) Int64() int64 {
	if !l.known {
		return -1
	}
	return l.n
}

func (l Length) String() string {
	if !l.known {
		return "unknown"
	}
	return strconv.FormatInt(l.n, 10)
}
