// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tests implements structures and functions to test sessions and reliability analyses
package tests

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

// Verbose turns on the messages of io and chk
func Verbose() {
	io.Verbose = true
	chk.Verbose = true
}
