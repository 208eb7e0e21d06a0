// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/utl"
)

// Newmark implements Newmark's method written with star variables:
//
//  a = α1⋅u - ζ*    ζ* = α1⋅uₙ + α2⋅vₙ + α3⋅aₙ
//  v = α4⋅u - χ*    χ* = α4⋅uₙ + α5⋅vₙ + α6⋅aₙ
//
// with θ1 = γ and θ2 = 2β. Damping is of Rayleigh type: C = αM⋅M + βK⋅K
type Newmark struct {
	assembler

	// input
	Theta1 float64 // θ1 = γ
	Theta2 float64 // θ2 = 2β
	AlphaM float64 // Rayleigh mass coefficient
	BetaK  float64 // Rayleigh stiffness coefficient
	Series dbf.T   // [optional] load multiplier as function of time; nil means 1

	// coefficients and star variables
	α1, α2, α3, α4, α5, α6 float64
	ζs, χs                 []float64
	c                      [][]float64 // effective matrix workspace
}

// Setup implements Integrator
func (o *Newmark) Setup(m Model, d *DofMap, sol *Solution) (err error) {
	if o.Theta1 < 0.0001 || o.Theta1 > 1.0 {
		return chk.Err("θ1 must be in [0.0001, 1.0]. θ1=%g is invalid", o.Theta1)
	}
	if o.Theta2 < 0.0001 || o.Theta2 > 1.0 {
		return chk.Err("θ2 must be in [0.0001, 1.0]. θ2=%g is invalid", o.Theta2)
	}
	err = o.setup(m, d, sol, true)
	if err != nil {
		return
	}
	n := m.Ndof()
	o.ζs = make([]float64, n)
	o.χs = make([]float64, n)
	o.c = utl.Alloc(n, n)
	return
}

// NewStep implements TransientIntegrator
func (o *Newmark) NewStep(dt float64) (err error) {
	if o.sol == nil {
		return chk.Err("Newmark integrator has not been set up")
	}
	if dt <= 0 {
		return chk.Err("time step must be positive. Δt=%g is invalid", dt)
	}
	o.bkp.save(o.sol)
	θ1, θ2 := o.Theta1, o.Theta2
	o.α1 = 2.0 / (θ2 * dt * dt)
	o.α2 = 2.0 / (θ2 * dt)
	o.α3 = 1.0/θ2 - 1.0
	o.α4 = 2.0 * θ1 / (θ2 * dt)
	o.α5 = 2.0*θ1/θ2 - 1.0
	o.α6 = (θ1/θ2 - 1.0) * dt
	sol := o.sol
	for i := range sol.U {
		o.ζs[i] = o.α1*sol.U[i] + o.α2*sol.V[i] + o.α3*sol.A[i]
		o.χs[i] = o.α4*sol.U[i] + o.α5*sol.V[i] + o.α6*sol.A[i]
		sol.Du[i] = 0
	}
	sol.Dt = dt
	sol.T += dt
	o.kinematics()
	return
}

// FormTangent implements Integrator: K* = K + α1⋅M + α4⋅C
func (o *Newmark) FormTangent(sys EquationSystem) (err error) {
	err = o.tangent()
	if err != nil {
		return
	}
	for i := range o.K {
		for j := range o.K[i] {
			cij := o.AlphaM*o.M[i][j] + o.BetaK*o.K[i][j]
			o.c[i][j] = o.K[i][j] + o.α1*o.M[i][j] + o.α4*cij
		}
	}
	o.scatterA(sys, o.c)
	return
}

// FormUnbalance implements Integrator: R = s(t)⋅Pref - fint(u) - M⋅a - C⋅v
func (o *Newmark) FormUnbalance(sys EquationSystem) (err error) {
	err = o.mdl.Internal(o.fint, o.sol.U)
	if err != nil {
		return
	}
	if o.BetaK != 0 {
		err = o.tangent()
		if err != nil {
			return
		}
	}
	mult := 1.0
	if o.Series != nil {
		mult = o.Series.F(o.sol.T, nil)
	}
	o.sol.Lambda = mult
	sol := o.sol
	for i := range o.r {
		o.r[i] = mult*o.pref[i] - o.fint[i]
		for j := range o.M[i] {
			cij := o.AlphaM * o.M[i][j]
			if o.BetaK != 0 {
				cij += o.BetaK * o.K[i][j]
			}
			o.r[i] -= o.M[i][j]*sol.A[j] + cij*sol.V[j]
		}
	}
	o.scatterB(sys, o.r)
	return
}

// Update implements Integrator
func (o *Newmark) Update(dx []float64) (err error) {
	err = o.increment(dx)
	if err != nil {
		return
	}
	o.kinematics()
	return
}

// Commit implements Integrator
func (o *Newmark) Commit() (err error) {
	return
}

// Revert implements Integrator
func (o *Newmark) Revert() {
	o.bkp.restore(o.sol)
}

// kinematics updates velocities and accelerations from the current displacements
func (o *Newmark) kinematics() {
	sol := o.sol
	for i := range sol.U {
		sol.A[i] = o.α1*sol.U[i] - o.ζs[i]
		sol.V[i] = o.α4*sol.U[i] - o.χs[i]
	}
}
