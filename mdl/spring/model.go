// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package spring implements force-elongation laws of springs and a chain of springs in series
package spring

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Law defines the interface for force-elongation laws
type Law interface {
	Init(prms dbf.Params) error             // initialises law
	GetPrms() dbf.Params                    // gets (an example) of parameters
	Force(d float64) (f, kt float64)        // returns the force and the tangent stiffness @ elongation d
	Set(name string, v float64) (err error) // sets the value of parameter name
	Get(name string) (v float64, err error) // gets the value of parameter name
}

// New returns new law
func New(name string) (law Law, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("law %q is not available in 'spring' database", name)
	}
	return allocator(), nil
}

// allocators holds all available laws; lawname => allocator
var allocators = map[string]func() Law{}

// connect sets *v from the required parameter name
func connect(prms dbf.Params, v *float64, name, caller string) (err error) {
	if msg := prms.Connect(v, name, caller); msg != "" {
		return chk.Err("%s", strings.TrimSpace(msg))
	}
	return
}
