// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/io"

// NormTest checks one norm of the iterations against a tolerance
//  Key selects the norm:
//   "unbalance" -- ‖R‖
//   "dispincr"  -- ‖Δx‖
//   "energy"    -- ½|Δx·R|
type NormTest struct {
	Key    string  // norm key
	Tol    float64 // tolerance
	NmaxIt int     // max number of iterations
	ShowR  bool    // show norms
	norms  []float64
}

// NewNormUnbalance returns a test on the norm of the unbalance
func NewNormUnbalance(tol float64, nmaxit int) *NormTest {
	return &NormTest{Key: "unbalance", Tol: tol, NmaxIt: nmaxit}
}

// NewNormDispIncr returns a test on the norm of the displacement increment
func NewNormDispIncr(tol float64, nmaxit int) *NormTest {
	return &NormTest{Key: "dispincr", Tol: tol, NmaxIt: nmaxit}
}

// NewEnergyIncr returns a test on the energy increment
func NewEnergyIncr(tol float64, nmaxit int) *NormTest {
	return &NormTest{Key: "energy", Tol: tol, NmaxIt: nmaxit}
}

// Start implements ConvergenceTest
func (o *NormTest) Start() {
	o.norms = o.norms[:0]
}

// Test implements ConvergenceTest
func (o *NormTest) Test(st IterState) TestStatus {
	var nrm float64
	switch o.Key {
	case "unbalance":
		nrm = st.NormR
	case "dispincr":
		nrm = st.NormDx
	case "energy":
		nrm = 0.5 * st.Energy
	default:
		return Failed
	}
	o.norms = append(o.norms, nrm)
	if o.ShowR {
		io.Pf("%8d%23.10e%23.10e\n", st.It, nrm, o.Tol)
	}
	if nrm <= o.Tol {
		return Converged
	}
	if st.It >= o.NmaxIt {
		return Failed
	}
	return Continue
}

// Norms implements ConvergenceTest
func (o *NormTest) Norms() []float64 {
	return o.norms
}

// FixedNumIter performs exactly Nit iterations and always converges
type FixedNumIter struct {
	Nit   int // number of iterations
	norms []float64
}

// Start implements ConvergenceTest
func (o *FixedNumIter) Start() {
	o.norms = o.norms[:0]
}

// Test implements ConvergenceTest
func (o *FixedNumIter) Test(st IterState) TestStatus {
	o.norms = append(o.norms, st.NormR)
	if st.It >= o.Nit {
		return Converged
	}
	return Continue
}

// Norms implements ConvergenceTest
func (o *FixedNumIter) Norms() []float64 {
	return o.norms
}
