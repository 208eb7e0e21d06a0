// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

// PlainNumberer numbers DOFs in increasing order
type PlainNumberer struct{}

// Number implements Numberer
func (o *PlainNumberer) Number(m Model, d *DofMap) (err error) {
	eq := 0
	for dof := 0; dof < d.Ndof; dof++ {
		d.Eq[dof] = -1
		if d.InSystem(dof) {
			d.Eq[dof] = eq
			eq++
		}
	}
	d.Neq = eq
	return d.check()
}

// ReverseNumberer numbers DOFs in decreasing order; i.e. the last DOF gets equation 0
type ReverseNumberer struct{}

// Number implements Numberer
func (o *ReverseNumberer) Number(m Model, d *DofMap) (err error) {
	eq := 0
	for dof := d.Ndof - 1; dof >= 0; dof-- {
		d.Eq[dof] = -1
		if d.InSystem(dof) {
			d.Eq[dof] = eq
			eq++
		}
	}
	d.Neq = eq
	return d.check()
}
