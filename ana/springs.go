// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// SeriesSprings computes the static response of linear springs in series, fixed at node 0 and
// loaded by P at the last node, and the natural frequency of mass M on the first spring
//
//  uᵢ = P⋅Σ_{j≤i} 1/kⱼ      ω² = k1/M
type SeriesSprings struct {
	K []float64 // [nsprings] stiffnesses
	P float64   // tip load
	M float64   // [optional] mass of node 1 for the single-spring oscillator
}

// Displ returns the displacements of all nodes
func (o SeriesSprings) Displ() (u []float64) {
	u = make([]float64, len(o.K)+1)
	for i, k := range o.K {
		u[i+1] = u[i] + o.P/k
	}
	return
}

// TipDispl returns the displacement of the last node
func (o SeriesSprings) TipDispl() float64 {
	u := o.Displ()
	return u[len(u)-1]
}

// Omega2 returns the squared natural frequency of the one-mass-one-spring oscillator
func (o SeriesSprings) Omega2() float64 {
	return o.K[0] / o.M
}

// Period returns the natural period of the one-mass-one-spring oscillator
func (o SeriesSprings) Period() float64 {
	return 2 * math.Pi / math.Sqrt(o.Omega2())
}

// CheckDispl checks displacements
func (o SeriesSprings) CheckDispl(tst *testing.T, u []float64, tol float64) {
	ucor := o.Displ()
	if chk.Verbose {
		io.Pforan("u    = %v\n", u)
		io.Pforan("ucor = %v\n", ucor)
	}
	chk.Array(tst, "u", tol, u, ucor)
}
