// Copyright 2018 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package subtle wraps the one crypto/subtle primitive this module
// needs: comparing a candidate keystream against the target one
// without leaking timing information about where they first differ.
package subtle

import "crypto/subtle"

// ConstantTimeCompare reports whether x and y hold the same bytes,
// taking time independent of where they first differ.
func ConstantTimeCompare(x, y []byte) int {
	return subtle.ConstantTimeCompare(x, y)
}
