// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/chk"

// markFixed sets d.Fixed from the model's essential conditions
func markFixed(m Model, d *DofMap) (err error) {
	for i := 0; i < d.Ndof; i++ {
		d.Fixed[i] = false
		d.Penalised[i] = false
	}
	for _, dof := range m.Fixed() {
		if dof < 0 || dof >= d.Ndof {
			return chk.Err("fixed DOF %d is out of range [0, %d)", dof, d.Ndof)
		}
		d.Fixed[dof] = true
	}
	return
}

// PlainHandler eliminates the DOFs with homogeneous essential conditions
type PlainHandler struct{}

// Handle implements Handler
func (o *PlainHandler) Handle(m Model, d *DofMap) (err error) {
	return markFixed(m, d)
}

// EnforceTangent implements Handler. Nothing to do since fixed DOFs are not in the system
func (o *PlainHandler) EnforceTangent(a MatrixAssembler, d *DofMap) {}

// EnforceUnbalance implements Handler
func (o *PlainHandler) EnforceUnbalance(sys EquationSystem, d *DofMap, u []float64) {}

// PenaltyHandler keeps fixed DOFs in the system and adds α to their diagonal
type PenaltyHandler struct {
	Alpha float64 // penalty number
}

// Handle implements Handler
func (o *PenaltyHandler) Handle(m Model, d *DofMap) (err error) {
	if o.Alpha <= 0 {
		return chk.Err("penalty number must be positive. α=%g is invalid", o.Alpha)
	}
	err = markFixed(m, d)
	if err != nil {
		return
	}
	for dof := 0; dof < d.Ndof; dof++ {
		d.Penalised[dof] = d.Fixed[dof]
	}
	return
}

// EnforceTangent implements Handler
func (o *PenaltyHandler) EnforceTangent(a MatrixAssembler, d *DofMap) {
	for dof := 0; dof < d.Ndof; dof++ {
		if d.Penalised[dof] {
			a.AddA(d.Eq[dof], d.Eq[dof], o.Alpha)
		}
	}
}

// EnforceUnbalance implements Handler. The penalty force is -α·u on each fixed DOF
func (o *PenaltyHandler) EnforceUnbalance(sys EquationSystem, d *DofMap, u []float64) {
	for dof := 0; dof < d.Ndof; dof++ {
		if d.Penalised[dof] {
			sys.AddB(d.Eq[dof], -o.Alpha*u[dof])
		}
	}
}
