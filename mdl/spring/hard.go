// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spring

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Hard implements a bilinear elastic spring
//
//  f = k⋅d                          if |d| ≤ dy
//  f = sgn(d)⋅(k⋅dy + h⋅k⋅(|d|-dy))  otherwise
//
//  The law is path independent; h < 1 softens and h > 1 stiffens the spring
type Hard struct {
	K  float64 // initial stiffness
	Dy float64 // yield elongation
	H  float64 // ratio between the slope after yield and k
}

// add law to factory
func init() {
	allocators["hard"] = func() Law { return new(Hard) }
}

// Init initialises law
func (o *Hard) Init(prms dbf.Params) (err error) {
	for _, c := range []struct {
		v    *float64
		name string
	}{{&o.K, "k"}, {&o.Dy, "dy"}, {&o.H, "h"}} {
		err = connect(prms, c.v, c.name, "hard spring")
		if err != nil {
			return
		}
	}
	return o.check()
}

// GetPrms gets (an example) of parameters
func (o Hard) GetPrms() dbf.Params {
	return []*dbf.P{
		&dbf.P{N: "k", V: 1000},
		&dbf.P{N: "dy", V: 0.01},
		&dbf.P{N: "h", V: 0.1},
	}
}

// Force returns the force and the tangent stiffness
func (o Hard) Force(d float64) (f, kt float64) {
	ad := math.Abs(d)
	if ad <= o.Dy {
		return o.K * d, o.K
	}
	s := 1.0
	if d < 0 {
		s = -1.0
	}
	kt = o.H * o.K
	f = s * (o.K*o.Dy + kt*(ad-o.Dy))
	return
}

// Set sets parameter
func (o *Hard) Set(name string, v float64) (err error) {
	switch name {
	case "k":
		o.K = v
	case "dy":
		o.Dy = v
	case "h":
		o.H = v
	default:
		return chk.Err("hard spring: parameter %q is not available", name)
	}
	return
}

// Get gets parameter
func (o Hard) Get(name string) (v float64, err error) {
	switch name {
	case "k":
		return o.K, nil
	case "dy":
		return o.Dy, nil
	case "h":
		return o.H, nil
	}
	return 0, chk.Err("hard spring: parameter %q is not available", name)
}

func (o Hard) check() (err error) {
	if o.K <= 0 {
		return chk.Err("hard spring: stiffness must be positive. k=%g is invalid", o.K)
	}
	if o.Dy <= 0 {
		return chk.Err("hard spring: yield elongation must be positive. dy=%g is invalid", o.Dy)
	}
	if o.H <= 0 {
		return chk.Err("hard spring: hardening ratio must be positive. h=%g is invalid", o.H)
	}
	return
}
