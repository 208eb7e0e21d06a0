// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spring

import (
	"sort"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// binding connects a named parameter to one value of the chain
type binding struct {
	set func(v float64) error
	get func() (float64, error)
}

// Chain implements a chain of springs in series with one DOF per node
//
//  node:    0      1      2           n
//           o-/\/\-o-/\/\-o-- ... --/\/\-o
//  spring:     1      2                n
//
//  Spring i connects nodes i-1 and i. DOF i is the displacement of node i
type Chain struct {
	Laws   []Law     // [nsprings] force-elongation laws
	Masses []float64 // [nnodes] lumped masses
	Loads  []float64 // [nnodes] reference loads
	Fix    []int     // fixed nodes
	prms   map[string][]binding
}

// NewChain returns a new chain from input data
func NewChain(md *inp.ModelData) (o *Chain, err error) {

	// springs
	n := len(md.Springs)
	if n < 1 {
		return nil, chk.Err("chain needs at least one spring")
	}
	springs := make([]*inp.SpringData, n)
	copy(springs, md.Springs)
	sort.Slice(springs, func(i, j int) bool { return springs[i].Tag < springs[j].Tag })
	o = new(Chain)
	o.prms = make(map[string][]binding)
	o.Laws = make([]Law, n)
	for i, sd := range springs {
		if sd.Tag != i+1 {
			return nil, chk.Err("spring tags must be 1, 2, ..., %d. tag %d is invalid", n, sd.Tag)
		}
		name := sd.Law
		if name == "" {
			name = "lin"
		}
		o.Laws[i], err = New(name)
		if err != nil {
			return nil, err
		}
		err = o.Laws[i].Init(dbf.Params{
			&dbf.P{N: "k", V: sd.K},
			&dbf.P{N: "dy", V: sd.Dy},
			&dbf.P{N: "h", V: sd.H},
		})
		if err != nil {
			return nil, chk.Err("cannot initialise spring %d:\n%v", sd.Tag, err)
		}
		if sd.Prm != "" {
			o.bindLaw(sd.Prm, o.Laws[i], "k")
		}
		if sd.PrmH != "" {
			o.bindLaw(sd.PrmH, o.Laws[i], "h")
		}
	}

	// nodes
	o.Masses = make([]float64, n+1)
	o.Loads = make([]float64, n+1)
	seen := make(map[int]bool)
	for _, nd := range md.Nodes {
		if nd.Tag < 0 || nd.Tag > n {
			return nil, chk.Err("node tag %d is out of range [0, %d]", nd.Tag, n)
		}
		if seen[nd.Tag] {
			return nil, chk.Err("node tag %d is repeated", nd.Tag)
		}
		seen[nd.Tag] = true
		if nd.Mass < 0 {
			return nil, chk.Err("mass of node %d must be non-negative. m=%g is invalid", nd.Tag, nd.Mass)
		}
		o.Masses[nd.Tag] = nd.Mass
		o.Loads[nd.Tag] = nd.Load
		if nd.Fixed {
			o.Fix = append(o.Fix, nd.Tag)
		}
		if nd.LoadPrm != "" {
			o.bindValue(nd.LoadPrm, &o.Loads[nd.Tag])
		}
		if nd.MassPrm != "" {
			o.bindValue(nd.MassPrm, &o.Masses[nd.Tag])
		}
	}
	sort.Ints(o.Fix)
	return
}

// Ndof implements fem.Model
func (o *Chain) Ndof() int { return len(o.Laws) + 1 }

// Fixed implements fem.Model
func (o *Chain) Fixed() []int { return o.Fix }

// Tangent implements fem.Model
func (o *Chain) Tangent(K [][]float64, u []float64) (err error) {
	for i, law := range o.Laws {
		a, b := i, i+1
		_, kt := law.Force(u[b] - u[a])
		K[a][a] += kt
		K[b][b] += kt
		K[a][b] -= kt
		K[b][a] -= kt
	}
	return
}

// Internal implements fem.Model
func (o *Chain) Internal(f []float64, u []float64) (err error) {
	for i := range f {
		f[i] = 0
	}
	for i, law := range o.Laws {
		a, b := i, i+1
		fs, _ := law.Force(u[b] - u[a])
		f[a] -= fs
		f[b] += fs
	}
	return
}

// Reference implements fem.Model
func (o *Chain) Reference(f []float64) {
	copy(f, o.Loads)
}

// Mass implements fem.Model
func (o *Chain) Mass(M [][]float64) {
	for i, m := range o.Masses {
		M[i][i] += m
	}
}

// SetParameter sets the value of a named parameter
func (o *Chain) SetParameter(name string, v float64) (err error) {
	bs, ok := o.prms[name]
	if !ok {
		return chk.Err("chain has no parameter named %q", name)
	}
	for _, b := range bs {
		err = b.set(v)
		if err != nil {
			return
		}
	}
	return
}

// GetParameter returns the value of a named parameter
func (o *Chain) GetParameter(name string) (v float64, err error) {
	bs, ok := o.prms[name]
	if !ok {
		return 0, chk.Err("chain has no parameter named %q", name)
	}
	return bs[0].get()
}

// Parameters returns the sorted names of all parameters
func (o *Chain) Parameters() (names []string) {
	for name := range o.prms {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func (o *Chain) bindLaw(name string, law Law, key string) {
	o.prms[name] = append(o.prms[name], binding{
		set: func(v float64) error { return law.Set(key, v) },
		get: func() (float64, error) { return law.Get(key) },
	})
}

func (o *Chain) bindValue(name string, p *float64) {
	o.prms[name] = append(o.prms[name], binding{
		set: func(v float64) error { *p = v; return nil },
		get: func() (float64, error) { return *p, nil },
	})
}

// models ///////////////////////////////////////////////////////////////////////////////////////////

// NewModel returns a new model from input data
func NewModel(md *inp.ModelData) (m fem.Model, err error) {
	allocator, ok := models[md.Type]
	if !ok {
		return nil, chk.Err("model %q is not available in 'spring' database", md.Type)
	}
	return allocator(md)
}

// models holds all available models; modeltype => allocator
var models = map[string]func(md *inp.ModelData) (fem.Model, error){
	"chain": func(md *inp.ModelData) (fem.Model, error) {
		c, err := NewChain(md)
		if err != nil {
			return nil, err
		}
		return c, nil
	},
}
