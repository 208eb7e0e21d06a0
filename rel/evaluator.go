// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gosl/chk"
)

// GFunEvaluator evaluates limit-state functions at a point of the random variables space
type GFunEvaluator interface {
	RunAnalysis(x []float64) error                                        // computes the response @ x
	Evaluate(x []float64, lsf *LimitStateFunction) (g float64, err error) // evaluates lsf with the last response
}

// GradGEvaluator computes gradients of all limit-state functions
type GradGEvaluator interface {
	ComputeAllGradients(x, g []float64) (grad [][]float64, err error) // [nrv][nlsf] gradients @ x; g holds the values @ x
}

// Parameterized is implemented by models whose parameters can be driven by random variables
type Parameterized interface {
	SetParameter(name string, v float64) error
}

// ExprGFun evaluates limit-state functions that depend on the random variables only
type ExprGFun struct {
	Domain *Domain
	x      []float64
}

// RunAnalysis implements GFunEvaluator
func (o *ExprGFun) RunAnalysis(x []float64) (err error) {
	if len(x) != o.Domain.Nrv() {
		return chk.Err("point has wrong size: %d != %d", len(x), o.Domain.Nrv())
	}
	o.x = append(o.x[:0], x...)
	return
}

// Evaluate implements GFunEvaluator
func (o *ExprGFun) Evaluate(x []float64, lsf *LimitStateFunction) (g float64, err error) {
	if lsf.Fcn.NeedsResponse() {
		return 0, chk.Err("limit-state function %d needs the response of a structural analysis", lsf.Tag)
	}
	return lsf.Fcn.Eval(pointValues(o.Domain, x, nil))
}

// SessionGFun evaluates limit-state functions with the response of an analysis session
//  The random variables with Prm set drive the parameters of the session's model
type SessionGFun struct {
	Session *fem.Session // session with model and selected mode
	Domain  *Domain      // reliability domain
	Nsteps  int          // number of steps of each analysis
	Dt      float64      // time step of transient analyses
}

// RunAnalysis implements GFunEvaluator
func (o *SessionGFun) RunAnalysis(x []float64) (err error) {
	if len(x) != o.Domain.Nrv() {
		return chk.Err("point has wrong size: %d != %d", len(x), o.Domain.Nrv())
	}
	m := o.Session.Model()
	if m == nil {
		return chk.Err("session has no model")
	}
	for _, rv := range o.Domain.RandomVariables() {
		if rv.Prm == "" {
			continue
		}
		p, ok := m.(Parameterized)
		if !ok {
			return chk.Err("model %T has no parameters; random variable %d cannot drive %q", m, rv.Tag, rv.Prm)
		}
		err = p.SetParameter(rv.Prm, x[rv.Index])
		if err != nil {
			return chk.Err("random variable %d cannot drive %q:\n%v", rv.Tag, rv.Prm, err)
		}
	}
	err = o.Session.InitializeAnalysis()
	if err != nil {
		return
	}
	return o.Session.Analyze(o.Nsteps, o.Dt)
}

// Evaluate implements GFunEvaluator
func (o *SessionGFun) Evaluate(x []float64, lsf *LimitStateFunction) (g float64, err error) {
	sol := o.Session.Solution()
	if sol == nil {
		return 0, chk.Err("session has no solution")
	}
	return lsf.Fcn.Eval(pointValues(o.Domain, x, sol))
}

// FiniteDifferenceGradG computes gradients by forward finite differences
//  h = stdv / PerturbationFactor; one analysis per random variable plus a last one @ x so that
//  the evaluator is left with the response @ x
type FiniteDifferenceGradG struct {
	GFun               GFunEvaluator // evaluator of limit-state functions
	Domain             *Domain       // reliability domain
	PerturbationFactor float64       // perturbation factor; 0 means 1000
}

// ComputeAllGradients implements GradGEvaluator
func (o *FiniteDifferenceGradG) ComputeAllGradients(x, g []float64) (grad [][]float64, err error) {
	rvs := o.Domain.RandomVariables()
	lsfs := o.Domain.LimitStateFunctions()
	if len(x) != len(rvs) || len(g) != len(lsfs) {
		return nil, chk.Err("gradients: wrong sizes: len(x)=%d, nrv=%d, len(g)=%d, nlsf=%d", len(x), len(rvs), len(g), len(lsfs))
	}
	factor := o.PerturbationFactor
	if factor <= 0 {
		factor = 1000
	}
	grad = make([][]float64, len(rvs))
	xp := make([]float64, len(x))
	for _, rv := range rvs {
		i := rv.Index
		h := rv.Stdv / factor
		copy(xp, x)
		xp[i] += h
		err = o.GFun.RunAnalysis(xp)
		if err != nil {
			return nil, chk.Err("analysis with perturbed random variable %d failed:\n%v", rv.Tag, err)
		}
		grad[i] = make([]float64, len(lsfs))
		for _, lsf := range lsfs {
			gp, e := o.GFun.Evaluate(xp, lsf)
			if e != nil {
				return nil, chk.Err("limit-state function %d with perturbed random variable %d failed:\n%v", lsf.Tag, rv.Tag, e)
			}
			grad[i][lsf.Index] = (gp - g[lsf.Index]) / h
		}
	}
	err = o.GFun.RunAnalysis(x)
	if err != nil {
		return nil, chk.Err("analysis @ the unperturbed point failed:\n%v", err)
	}
	return
}

// pointValues returns the variables of limit-state expressions @ x and, if not nil, sol
func pointValues(d *Domain, x []float64, sol *fem.Solution) (vals map[string]float64) {
	vals = make(map[string]float64)
	for _, rv := range d.RandomVariables() {
		if rv.Index < len(x) {
			vals[VarName("x", rv.Tag)] = x[rv.Index]
		}
	}
	if sol != nil {
		for dof, u := range sol.U {
			vals[VarName("u", dof)] = u
		}
		vals[NameLambda] = sol.Lambda
		vals[NameTime] = sol.T
	}
	return
}
