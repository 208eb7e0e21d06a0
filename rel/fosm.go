// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// FOSM implements the first-order second-moment method
//
//  Around the mean point μ, each limit-state function is approximated by
//
//   g(x) ≈ g(μ) + ∇g(μ)ᵀ (x - μ)   ⇒   E[g] ≈ g(μ)   Var[g] ≈ ∇gᵀ C ∇g
//
//  where C is the covariance matrix of the random variables
type FOSM struct {
	Domain  *Domain        // reliability domain (never modified)
	GFun    GFunEvaluator  // evaluator of limit-state functions
	GradG   GradGEvaluator // evaluator of gradients
	Verbose bool           // show messages
}

// FosmResults holds the results of a FOSM analysis
//  Vectors and matrices are ordered by the dense indices of the domain
type FosmResults struct {
	RvTags     []int                         // [nrv] tags of random variables
	LsfTags    []int                         // [nlsf] tags of limit-state functions
	Means      []float64                     // [nlsf] estimated means of the limit-state functions
	Stdvs      []float64                     // [nlsf] estimated standard deviations; NaN if unavailable
	StdvOK     []bool                        // [nlsf] standard deviation is available
	Gradients  [][]float64                   // [nrv][nlsf] gradients @ the mean point
	Importance [][]float64                   // [nlsf][nrv] normalised importance measures (dgdx⋅stdv)
	Cov        [][]float64                   // [nrv][nrv] covariance of random variables
	RespCov    [][]float64                   // [nlsf][nlsf] covariance of responses
	Corr       [][]float64                   // [nlsf][nlsf] correlation of responses; NaN if unavailable
	Warnings   []*NonPositiveVarianceWarning // non-fatal warnings
}

// Analyze runs the FOSM analysis. Any failure of the evaluators aborts the run without results
func (o *FOSM) Analyze() (res *FosmResults, err error) {

	// check
	if o.Domain == nil || o.GFun == nil || o.GradG == nil {
		return nil, chk.Err("FOSM needs domain, g-function evaluator and gradient evaluator")
	}
	rvs := o.Domain.RandomVariables()
	lsfs := o.Domain.LimitStateFunctions()
	nrv, nlsf := len(rvs), len(lsfs)
	if nrv == 0 {
		return nil, domainErr("FOSM needs at least one random variable")
	}
	if nlsf == 0 {
		return nil, domainErr("FOSM needs at least one limit-state function")
	}
	if o.Verbose {
		io.Pf("FOSM Analysis is running ...\n")
	}

	// mean point and standard deviations
	r := new(FosmResults)
	mean := la.NewVector(nrv)
	stdv := la.NewVector(nrv)
	r.RvTags = make([]int, nrv)
	for _, rv := range rvs {
		mean[rv.Index] = rv.Mean
		stdv[rv.Index] = rv.Stdv
		r.RvTags[rv.Index] = rv.Tag
	}

	// evaluate limit-state functions @ mean point
	err = o.GFun.RunAnalysis(mean)
	if err != nil {
		return nil, &EvaluationError{Stage: StageAnalysis, Err: err}
	}
	r.Means = make([]float64, nlsf)
	r.LsfTags = make([]int, nlsf)
	for _, lsf := range lsfs {
		g, e := o.GFun.Evaluate(mean, lsf)
		if e != nil {
			return nil, &EvaluationError{Stage: StageLsf, Lsf: lsf.Tag, Err: e}
		}
		r.Means[lsf.Index] = g
		r.LsfTags[lsf.Index] = lsf.Tag
	}

	// gradients @ mean point
	grad, err := o.GradG.ComputeAllGradients(mean, r.Means)
	if err != nil {
		return nil, &GradientError{Err: err}
	}
	if len(grad) != nrv {
		return nil, &GradientError{Err: chk.Err("gradient matrix has %d rows; %d expected", len(grad), nrv)}
	}
	for i := range grad {
		if len(grad[i]) != nlsf {
			return nil, &GradientError{Err: chk.Err("gradient matrix row %d has %d columns; %d expected", i, len(grad[i]), nlsf)}
		}
	}
	r.Gradients = grad

	// covariance matrix
	cov := la.NewMatrix(nrv, nrv)
	for i := 0; i < nrv; i++ {
		cov.Set(i, i, stdv[i]*stdv[i])
	}
	for _, cc := range o.Domain.Correlations() {
		i1 := o.Domain.RandomVariable(cc.Rv1).Index
		i2 := o.Domain.RandomVariable(cc.Rv2).Index
		c := cc.Rho * stdv[i1] * stdv[i2]
		cov.Set(i1, i2, c)
		cov.Set(i2, i1, c)
	}
	r.Cov = utl.Alloc(nrv, nrv)
	for i := 0; i < nrv; i++ {
		for j := 0; j < nrv; j++ {
			r.Cov[i][j] = cov.Get(i, j)
		}
	}

	// gradient vectors of each limit-state function and C⋅∇g
	gv := make([]la.Vector, nlsf)
	cg := make([]la.Vector, nlsf)
	for j := 0; j < nlsf; j++ {
		gv[j] = la.NewVector(nrv)
		for i := 0; i < nrv; i++ {
			gv[j][i] = grad[i][j]
		}
		cg[j] = la.NewVector(nrv)
		la.MatVecMul(cg[j], 1, cov, gv[j])
	}

	// standard deviations and importance measures
	r.Stdvs = make([]float64, nlsf)
	r.StdvOK = make([]bool, nlsf)
	r.Importance = make([][]float64, nlsf)
	for _, lsf := range lsfs {
		j := lsf.Index
		variance := la.VecDot(gv[j], cg[j])
		if variance > 0 {
			r.Stdvs[j] = math.Sqrt(variance)
			r.StdvOK[j] = true
		} else {
			r.Stdvs[j] = math.NaN()
			w := &NonPositiveVarianceWarning{Lsf: lsf.Tag, Variance: variance}
			r.Warnings = append(r.Warnings, w)
			if o.Verbose {
				io.PfRed("%v\n", w)
			}
		}
		imp := la.NewVector(nrv)
		for i := 0; i < nrv; i++ {
			imp[i] = gv[j][i] * stdv[i]
		}
		nrm := imp.Norm()
		if nrm == 0 || math.IsNaN(nrm) || math.IsInf(nrm, 0) {
			return nil, &DegenerateGradientError{Lsf: lsf.Tag}
		}
		for i := 0; i < nrv; i++ {
			imp[i] /= nrm
		}
		r.Importance[j] = imp
	}

	// response covariance and correlation
	r.RespCov = utl.Alloc(nlsf, nlsf)
	r.Corr = utl.Alloc(nlsf, nlsf)
	for i := 0; i < nlsf; i++ {
		for j := i; j < nlsf; j++ {
			r.RespCov[i][j] = la.VecDot(gv[i], cg[j])
			r.RespCov[j][i] = r.RespCov[i][j]
			c := math.NaN()
			if r.StdvOK[i] && r.StdvOK[j] {
				c = clampRoundoff(r.RespCov[i][j] / (r.Stdvs[i] * r.Stdvs[j]))
			}
			r.Corr[i][j] = c
			r.Corr[j][i] = c
		}
	}
	if o.Verbose {
		io.Pf("FOSMAnalysis completed.\n")
	}
	return r, nil
}

// Ranking returns the indices of the random variables ordered by decreasing |importance| of the
// limit-state function with index j
func (o *FosmResults) Ranking(j int) (idx []int) {
	imp := o.Importance[j]
	idx = utl.IntRange(len(imp))
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(imp[idx[a]]) > math.Abs(imp[idx[b]])
	})
	return
}

// clampRoundoff clamps correlations that exceed [-1, 1] by roundoff only
func clampRoundoff(c float64) float64 {
	const tol = 1e-10
	if c > 1 && c < 1+tol {
		return 1
	}
	if c < -1 && c > -1-tol {
		return -1
	}
	return c
}
