// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"testing"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// CheckTangent compares the tangent stiffness of a model with the finite differences of its
// internal forces @ u
func CheckTangent(tst *testing.T, label string, m fem.Model, u []float64, step, tol float64, verbose bool) {
	n := m.Ndof()
	if len(u) != n {
		tst.Errorf("CheckTangent: u has wrong size: %d != %d", len(u), n)
		return
	}
	if step < 1e-14 {
		step = 1e-6
	}
	K := utl.Alloc(n, n)
	err := m.Tangent(K, u)
	if err != nil {
		tst.Errorf("CheckTangent: Tangent failed:\n%v", err)
		return
	}
	chk.DerivVecVec(tst, label, tol, K, u, step, verbose, func(f, x []float64) {
		err := m.Internal(f, x)
		if err != nil {
			chk.Panic("CheckTangent: Internal failed:\n%v", err)
		}
	})
}
