// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/chk"

// DofMap holds the equation numbers of all DOFs of a model
//  Note: Eq[dof] == -1 means that dof is eliminated (not in the system)
type DofMap struct {
	Ndof      int    // number of DOFs of the model
	Neq       int    // number of equations
	Fixed     []bool // [ndof] DOF has an essential condition
	Penalised []bool // [ndof] fixed DOF kept in the system and enforced by penalty
	Eq        []int  // [ndof] DOF => equation number
	Dof       []int  // [neq] equation number => DOF
}

// NewDofMap returns a DofMap with all DOFs free and not numbered yet
func NewDofMap(ndof int) (o *DofMap) {
	o = new(DofMap)
	o.Ndof = ndof
	o.Fixed = make([]bool, ndof)
	o.Penalised = make([]bool, ndof)
	o.Eq = make([]int, ndof)
	for i := 0; i < ndof; i++ {
		o.Eq[i] = -1
	}
	return
}

// InSystem tells whether dof goes to the system of equations
func (o *DofMap) InSystem(dof int) bool {
	return !o.Fixed[dof] || o.Penalised[dof]
}

// condensed returns a copy of the map without the penalised DOFs. Their equations are removed and
// the remaining equations keep their relative order
func (o *DofMap) condensed() (c *DofMap) {
	c = NewDofMap(o.Ndof)
	copy(c.Fixed, o.Fixed)
	order := make([]int, o.Neq)
	for i := range order {
		order[i] = -1
	}
	for dof, eq := range o.Eq {
		if eq >= 0 && eq < o.Neq {
			order[eq] = dof
		}
	}
	for _, dof := range order {
		if dof < 0 || o.Penalised[dof] {
			continue
		}
		c.Eq[dof] = c.Neq
		c.Dof = append(c.Dof, dof)
		c.Neq++
	}
	return
}

// check checks that every DOF in the system was given a unique equation number
func (o *DofMap) check() (err error) {
	o.Dof = make([]int, o.Neq)
	seen := make([]bool, o.Neq)
	for dof, eq := range o.Eq {
		if !o.InSystem(dof) {
			if eq >= 0 {
				return chk.Err("eliminated DOF %d cannot have equation number %d", dof, eq)
			}
			continue
		}
		if eq < 0 || eq >= o.Neq {
			return chk.Err("DOF %d has invalid equation number %d (neq=%d)", dof, eq, o.Neq)
		}
		if seen[eq] {
			return chk.Err("equation number %d was given to more than one DOF", eq)
		}
		seen[eq] = true
		o.Dof[eq] = dof
	}
	return
}

// Solution holds the solution state in DOF space
type Solution struct {

	// current state
	T      float64   // current time
	Dt     float64   // current time increment
	Lambda float64   // load factor
	U      []float64 // [ndof] displacements
	V      []float64 // [ndof] velocities
	A      []float64 // [ndof] accelerations

	// auxiliary
	Du []float64 // [ndof] total increment within the current step
}

// NewSolution allocates a zeroed solution
func NewSolution(ndof int) (o *Solution) {
	o = new(Solution)
	o.U = make([]float64, ndof)
	o.V = make([]float64, ndof)
	o.A = make([]float64, ndof)
	o.Du = make([]float64, ndof)
	return
}

// Reset clears values
func (o *Solution) Reset() {
	o.T, o.Dt, o.Lambda = 0, 0, 0
	for i := 0; i < len(o.U); i++ {
		o.U[i] = 0
		o.V[i] = 0
		o.A[i] = 0
		o.Du[i] = 0
	}
}

// backup holds a copy of the committed state used when a step is reverted
type backup struct {
	t, lam  float64
	u, v, a []float64
}

func (o *backup) save(sol *Solution) {
	if len(o.u) != len(sol.U) {
		o.u = make([]float64, len(sol.U))
		o.v = make([]float64, len(sol.U))
		o.a = make([]float64, len(sol.U))
	}
	o.t, o.lam = sol.T, sol.Lambda
	copy(o.u, sol.U)
	copy(o.v, sol.V)
	copy(o.a, sol.A)
}

func (o *backup) restore(sol *Solution) {
	if len(o.u) != len(sol.U) {
		return
	}
	sol.T, sol.Lambda = o.t, o.lam
	copy(sol.U, o.u)
	copy(sol.V, o.v)
	copy(sol.A, o.a)
	for i := 0; i < len(sol.Du); i++ {
		sol.Du[i] = 0
	}
}
