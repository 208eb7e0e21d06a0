// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// AllocatorType defines the function that allocates a role object from parameters
type AllocatorType func(prms dbf.Params) (obj any, err error)

// allocators holds all role object allocators
var allocators [nroles]map[string]AllocatorType

// SetAllocator sets a new callback function to allocate an object of role
func SetAllocator(role Role, name string, fcn AllocatorType) {
	if role < 0 || role >= nroles {
		chk.Panic("cannot set allocator %q for invalid role %d", name, int(role))
	}
	if allocators[role] == nil {
		allocators[role] = make(map[string]AllocatorType)
	}
	if _, ok := allocators[role][name]; ok {
		chk.Panic("cannot set allocator function for %v %q because name exists already", role, name)
	}
	allocators[role][name] = fcn
}

// New allocates an object of role by name
func New(role Role, name string, prms dbf.Params) (obj any, err error) {
	if role < 0 || role >= nroles {
		return nil, chk.Err("invalid role %d", int(role))
	}
	fcn, ok := allocators[role][name]
	if !ok {
		return nil, chk.Err("cannot find %v named %q. available: %v", role, name, Names(role))
	}
	obj, err = fcn(prms)
	if err != nil {
		return nil, chk.Err("cannot allocate %v %q:\n%v", role, name, err)
	}
	return
}

// Names returns the sorted names of the allocators of role
func Names(role Role) (names []string) {
	if role < 0 || role >= nroles {
		return
	}
	for name := range allocators[role] {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// register allocators
func init() {

	// systems
	dense := func(prms dbf.Params) (any, error) {
		return &DenseSystem{SymTol: prms.GetValueOrDefault("symtol", 1e-10)}, nil
	}
	SetAllocator(RoleSystem, "dense", dense)
	SetAllocator(RoleEigenSystem, "dense", dense)

	// numberers
	SetAllocator(RoleNumberer, "plain", func(prms dbf.Params) (any, error) { return new(PlainNumberer), nil })
	SetAllocator(RoleNumberer, "reverse", func(prms dbf.Params) (any, error) { return new(ReverseNumberer), nil })

	// handlers
	SetAllocator(RoleHandler, "plain", func(prms dbf.Params) (any, error) { return new(PlainHandler), nil })
	SetAllocator(RoleHandler, "penalty", func(prms dbf.Params) (any, error) {
		return &PenaltyHandler{Alpha: prms.GetValueOrDefault("alpha", 1e12)}, nil
	})

	// convergence tests
	SetAllocator(RoleTest, "normunbalance", func(prms dbf.Params) (any, error) {
		return NewNormUnbalance(prms.GetValueOrDefault("tol", 1e-8), prms.GetIntOrDefault("nmaxit", 20)), nil
	})
	SetAllocator(RoleTest, "normdispincr", func(prms dbf.Params) (any, error) {
		return NewNormDispIncr(prms.GetValueOrDefault("tol", 1e-10), prms.GetIntOrDefault("nmaxit", 20)), nil
	})
	SetAllocator(RoleTest, "energyincr", func(prms dbf.Params) (any, error) {
		return NewEnergyIncr(prms.GetValueOrDefault("tol", 1e-14), prms.GetIntOrDefault("nmaxit", 20)), nil
	})
	SetAllocator(RoleTest, "fixednumiter", func(prms dbf.Params) (any, error) {
		return &FixedNumIter{Nit: prms.GetIntOrDefault("nit", 1)}, nil
	})

	// algorithms
	SetAllocator(RoleAlgorithm, "linear", func(prms dbf.Params) (any, error) { return new(Linear), nil })
	SetAllocator(RoleAlgorithm, "newton", func(prms dbf.Params) (any, error) { return new(Newton), nil })
	SetAllocator(RoleAlgorithm, "modnewton", func(prms dbf.Params) (any, error) { return &Newton{ModNewton: true}, nil })

	// integrators
	SetAllocator(RoleIntegrator, "loadcontrol", func(prms dbf.Params) (any, error) {
		return &LoadControl{DLambda: prms.GetValueOrDefault("dlambda", 1)}, nil
	})
	SetAllocator(RoleIntegrator, "newmark", func(prms dbf.Params) (any, error) {
		return &Newmark{
			Theta1: prms.GetValueOrDefault("theta1", 0.5),
			Theta2: prms.GetValueOrDefault("theta2", 0.5),
			AlphaM: prms.GetValueOrDefault("alpham", 0),
			BetaK:  prms.GetValueOrDefault("betak", 0),
		}, nil
	})
}
