// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// assembler holds the data shared by all integrators
type assembler struct {
	mdl  Model       // structural model
	dofs *DofMap     // equation numbers
	sol  *Solution   // solution state
	K    [][]float64 // [ndof][ndof] tangent stiffness (workspace)
	M    [][]float64 // [ndof][ndof] mass matrix
	fint []float64   // [ndof] internal forces (workspace)
	pref []float64   // [ndof] reference loads
	r    []float64   // [ndof] unbalance (workspace)
	bkp  backup      // committed state of the previous step
}

// setup allocates workspace
func (o *assembler) setup(m Model, d *DofMap, sol *Solution, withMass bool) (err error) {
	if m == nil || d == nil || sol == nil {
		return chk.Err("integrator needs model, DOF map and solution")
	}
	n := m.Ndof()
	if d.Ndof != n || len(sol.U) != n {
		return chk.Err("integrator: inconsistent sizes: model ndof=%d, map ndof=%d, solution ndof=%d", n, d.Ndof, len(sol.U))
	}
	o.mdl, o.dofs, o.sol = m, d, sol
	o.K = utl.Alloc(n, n)
	o.fint = make([]float64, n)
	o.pref = make([]float64, n)
	o.r = make([]float64, n)
	m.Reference(o.pref)
	o.M = nil
	if withMass {
		o.M = utl.Alloc(n, n)
		m.Mass(o.M)
	}
	o.bkp.save(sol)
	return
}

// tangent computes the tangent stiffness @ current displacements into o.K
func (o *assembler) tangent() (err error) {
	for i := range o.K {
		for j := range o.K[i] {
			o.K[i][j] = 0
		}
	}
	return o.mdl.Tangent(o.K, o.sol.U)
}

// scatterA adds the DOF-space matrix a to the system
func (o *assembler) scatterA(sys EquationSystem, a [][]float64) {
	for i, eqi := range o.dofs.Eq {
		if eqi < 0 {
			continue
		}
		for j, eqj := range o.dofs.Eq {
			if eqj < 0 || a[i][j] == 0 {
				continue
			}
			sys.AddA(eqi, eqj, a[i][j])
		}
	}
}

// scatterB adds the DOF-space vector r to the system
func (o *assembler) scatterB(sys EquationSystem, r []float64) {
	for i, eq := range o.dofs.Eq {
		if eq >= 0 {
			sys.AddB(eq, r[i])
		}
	}
}

// increment adds dx (equation space) to the displacements and to the step increment
func (o *assembler) increment(dx []float64) (err error) {
	if len(dx) != o.dofs.Neq {
		return chk.Err("increment has wrong size: %d != %d", len(dx), o.dofs.Neq)
	}
	for dof, eq := range o.dofs.Eq {
		if eq >= 0 {
			o.sol.U[dof] += dx[eq]
			o.sol.Du[dof] += dx[eq]
		}
	}
	return
}

// LoadControl is a static integrator with constant load factor increments
type LoadControl struct {
	assembler
	DLambda float64 // load factor increment
}

// Setup implements Integrator
func (o *LoadControl) Setup(m Model, d *DofMap, sol *Solution) (err error) {
	return o.setup(m, d, sol, false)
}

// NewStep implements StaticIntegrator
func (o *LoadControl) NewStep() (err error) {
	if o.sol == nil {
		return chk.Err("LoadControl integrator has not been set up")
	}
	o.bkp.save(o.sol)
	o.sol.Lambda += o.DLambda
	for i := range o.sol.Du {
		o.sol.Du[i] = 0
	}
	return
}

// FormTangent implements Integrator
func (o *LoadControl) FormTangent(sys EquationSystem) (err error) {
	err = o.tangent()
	if err != nil {
		return
	}
	o.scatterA(sys, o.K)
	return
}

// FormUnbalance implements Integrator: R = λ·Pref - fint(u)
func (o *LoadControl) FormUnbalance(sys EquationSystem) (err error) {
	err = o.mdl.Internal(o.fint, o.sol.U)
	if err != nil {
		return
	}
	for i := range o.r {
		o.r[i] = o.sol.Lambda*o.pref[i] - o.fint[i]
	}
	o.scatterB(sys, o.r)
	return
}

// Update implements Integrator
func (o *LoadControl) Update(dx []float64) (err error) {
	return o.increment(dx)
}

// Commit implements Integrator. The pseudo time of static analyses is the load factor
func (o *LoadControl) Commit() (err error) {
	o.sol.T = o.sol.Lambda
	return
}

// Revert implements Integrator
func (o *LoadControl) Revert() {
	o.bkp.restore(o.sol)
}
