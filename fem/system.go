// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// DenseSystem is a dense equation system solved by LAPACK (linear) and Jacobi rotations (eigen)
//  Note: generalized eigenproblems require a diagonal (lumped) mass matrix
type DenseSystem struct {
	Neq     int        // number of equations
	A       *la.Matrix // [neq][neq] system matrix; stiffness for eigen problems
	M       *la.Matrix // [neq][neq] mass matrix (eigen problems only)
	B       la.Vector  // [neq] right-hand side
	X       la.Vector  // [neq] solution
	NumFact int        // number of factorisations performed
	SymTol  float64    // tolerance to check symmetry in eigen problems
}

// Setup implements EquationSystem and EigenSystem
func (o *DenseSystem) Setup(neq int) (err error) {
	if neq < 0 {
		return chk.Err("number of equations must be non-negative. neq=%d is invalid", neq)
	}
	o.Neq = neq
	o.A = la.NewMatrix(neq, neq)
	o.M = la.NewMatrix(neq, neq)
	o.B = la.NewVector(neq)
	o.X = la.NewVector(neq)
	if o.SymTol <= 0 {
		o.SymTol = 1e-10
	}
	return
}

// Zero implements EigenSystem
func (o *DenseSystem) Zero() {
	if o.A == nil {
		return
	}
	o.A.Fill(0)
	o.M.Fill(0)
	o.B.Fill(0)
}

// ZeroA implements EquationSystem
func (o *DenseSystem) ZeroA() {
	if o.A != nil {
		o.A.Fill(0)
	}
}

// ZeroB implements EquationSystem
func (o *DenseSystem) ZeroB() {
	if o.B != nil {
		o.B.Fill(0)
	}
}

// AddA implements EquationSystem and EigenSystem
func (o *DenseSystem) AddA(i, j int, v float64) { o.A.Add(i, j, v) }

// AddB implements EquationSystem
func (o *DenseSystem) AddB(i int, v float64) { o.B[i] += v }

// AddM implements EigenSystem
func (o *DenseSystem) AddM(i, j int, v float64) { o.M.Add(i, j, v) }

// RHS implements EquationSystem
func (o *DenseSystem) RHS() []float64 { return o.B }

// Solve implements EquationSystem
func (o *DenseSystem) Solve() (x []float64, err error) {
	if o.A == nil {
		return nil, solverErr("solve", nil, "system has not been set up")
	}
	if o.Neq == 0 {
		return o.X, nil
	}
	err = o.guard("solve", func() {
		o.NumFact++
		la.DenSolve(o.X, o.A, o.B, true)
	})
	if err != nil {
		return
	}
	for i, v := range o.X {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, solverErr("solve", nil, "system is singular: x[%d]=%v", i, v)
		}
	}
	return o.X, nil
}

// SolveEigen implements EigenSystem
//  The k returned pairs are ordered by |λ-shift|: ascending if smallest, descending otherwise.
//  Generalized eigenvectors are mass-normalised (φᵀ M φ = 1)
func (o *DenseSystem) SolveEigen(k int, shift float64, generalized, smallest bool) (pairs []Eigenpair, err error) {

	// check
	if o.A == nil {
		return nil, solverErr("eigen", nil, "system has not been set up")
	}
	n := o.Neq
	if k < 1 || k > n {
		return nil, solverErr("eigen", nil, "number of eigenpairs must be in [1, %d]. k=%d is invalid", n, k)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(o.A.Get(i, j)-o.A.Get(j, i)) > o.SymTol*(1+math.Abs(o.A.Get(i, j))) {
				return nil, solverErr("eigen", nil, "stiffness matrix is not symmetric: K[%d][%d] != K[%d][%d]", i, j, j, i)
			}
		}
	}

	// scaling: S = M^(-1/2) for generalized problems
	s := la.NewVector(n)
	s.Fill(1)
	if generalized {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j && o.M.Get(i, j) != 0 {
					return nil, solverErr("eigen", nil, "mass matrix must be diagonal (lumped): M[%d][%d]=%g", i, j, o.M.Get(i, j))
				}
			}
			mii := o.M.Get(i, i)
			if mii <= 0 {
				return nil, solverErr("eigen", nil, "mass matrix is not positive definite: M[%d][%d]=%g", i, i, mii)
			}
			s[i] = 1.0 / math.Sqrt(mii)
		}
	}

	// standard symmetric problem
	a := la.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, s[i]*o.A.Get(i, j)*s[j])
		}
	}
	q := la.NewMatrix(n, n)
	λ := la.NewVector(n)
	err = o.guard("eigen", func() {
		o.NumFact++
		la.Jacobi(q, λ, a)
	})
	if err != nil {
		return
	}

	// select
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = i
	}
	sort.SliceStable(idx, func(p, r int) bool {
		dp, dr := math.Abs(λ[idx[p]]-shift), math.Abs(λ[idx[r]]-shift)
		if smallest {
			return dp < dr
		}
		return dp > dr
	})
	pairs = make([]Eigenpair, k)
	for p := 0; p < k; p++ {
		j := idx[p]
		pairs[p].Value = λ[j]
		pairs[p].Vector = make([]float64, n)
		for i := 0; i < n; i++ {
			pairs[p].Vector[i] = s[i] * q.Get(i, j)
		}
	}
	return
}

// Free implements Freer
func (o *DenseSystem) Free() {
	o.Neq = 0
	o.A, o.M, o.B, o.X = nil, nil, nil, nil
}

// guard converts panics raised by the kernels into solver errors
func (o *DenseSystem) guard(op string, fcn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = solverErr(op, nil, "kernel failed: %v", r)
		}
	}()
	fcn()
	return
}
