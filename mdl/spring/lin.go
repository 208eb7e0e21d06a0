// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spring

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Lin implements a linear elastic spring: f = k⋅d
type Lin struct {
	K float64 // stiffness
}

// add law to factory
func init() {
	allocators["lin"] = func() Law { return new(Lin) }
}

// Init initialises law
func (o *Lin) Init(prms dbf.Params) (err error) {
	err = connect(prms, &o.K, "k", "lin spring")
	if err != nil {
		return
	}
	if o.K <= 0 {
		return chk.Err("lin spring: stiffness must be positive. k=%g is invalid", o.K)
	}
	return
}

// GetPrms gets (an example) of parameters
func (o Lin) GetPrms() dbf.Params {
	return []*dbf.P{
		&dbf.P{N: "k", V: 1000},
	}
}

// Force returns the force and the tangent stiffness
func (o Lin) Force(d float64) (f, kt float64) {
	return o.K * d, o.K
}

// Set sets parameter
func (o *Lin) Set(name string, v float64) (err error) {
	if name != "k" {
		return chk.Err("lin spring: parameter %q is not available", name)
	}
	o.K = v
	return
}

// Get gets parameter
func (o Lin) Get(name string) (v float64, err error) {
	if name != "k" {
		return 0, chk.Err("lin spring: parameter %q is not available", name)
	}
	return o.K, nil
}
