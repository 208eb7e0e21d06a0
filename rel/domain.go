// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package rel implements the reliability domain and the first-order second-moment (FOSM) method
package rel

import (
	"math"

	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gosl/chk"
)

// RandomVariable holds the first two moments of one random variable
type RandomVariable struct {
	Tag   int     // tag
	Index int     // dense index in [0, nrv); set by the domain
	Mean  float64 // mean
	Stdv  float64 // standard deviation
	Dist  string  // [optional] distribution name; only the moments are used
	Prm   string  // [optional] name of the model parameter driven by this variable
}

// CorrelationCoefficient holds the correlation between two random variables
type CorrelationCoefficient struct {
	Tag int     // tag
	Rv1 int     // tag of first random variable
	Rv2 int     // tag of second random variable
	Rho float64 // correlation coefficient in [-1, 1]
}

// LimitStateFunction holds one limit-state function
type LimitStateFunction struct {
	Tag   int         // tag
	Index int         // dense index in [0, nlsf); set by the domain
	Expr  string      // expression
	Fcn   *Expression // parsed expression; set by the domain
}

// Domain holds the random variables, correlations and limit-state functions in declaration order
type Domain struct {
	rvs    []*RandomVariable
	cors   []*CorrelationCoefficient
	lsfs   []*LimitStateFunction
	rvmap  map[int]*RandomVariable
	lsfmap map[int]*LimitStateFunction
	cormap map[[2]int]*CorrelationCoefficient
}

// NewDomain returns a new empty domain
func NewDomain() (o *Domain) {
	o = new(Domain)
	o.rvmap = make(map[int]*RandomVariable)
	o.lsfmap = make(map[int]*LimitStateFunction)
	o.cormap = make(map[[2]int]*CorrelationCoefficient)
	return
}

// AddRandomVariable adds rv and sets its index
func (o *Domain) AddRandomVariable(rv *RandomVariable) (err error) {
	if rv == nil {
		return domainErr("random variable is nil")
	}
	if _, ok := o.rvmap[rv.Tag]; ok {
		return domainErr("random variable with tag %d exists already", rv.Tag)
	}
	if !(rv.Stdv > 0) || math.IsInf(rv.Stdv, 0) {
		return domainErr("standard deviation of random variable %d must be positive. σ=%g is invalid", rv.Tag, rv.Stdv)
	}
	if math.IsInf(rv.Mean, 0) || math.IsNaN(rv.Mean) {
		return domainErr("mean of random variable %d must be finite. μ=%g is invalid", rv.Tag, rv.Mean)
	}
	rv.Index = len(o.rvs)
	o.rvs = append(o.rvs, rv)
	o.rvmap[rv.Tag] = rv
	return
}

// AddCorrelation adds a correlation coefficient between two existing random variables
func (o *Domain) AddCorrelation(cc *CorrelationCoefficient) (err error) {
	if cc == nil {
		return domainErr("correlation coefficient is nil")
	}
	if _, ok := o.rvmap[cc.Rv1]; !ok {
		return domainErr("correlation %d: random variable %d does not exist", cc.Tag, cc.Rv1)
	}
	if _, ok := o.rvmap[cc.Rv2]; !ok {
		return domainErr("correlation %d: random variable %d does not exist", cc.Tag, cc.Rv2)
	}
	if cc.Rv1 == cc.Rv2 {
		return domainErr("correlation %d: random variables must be distinct", cc.Tag)
	}
	if !(cc.Rho >= -1 && cc.Rho <= 1) {
		return domainErr("correlation %d: coefficient must be in [-1, 1]. ρ=%g is invalid", cc.Tag, cc.Rho)
	}
	key := pairKey(cc.Rv1, cc.Rv2)
	if _, ok := o.cormap[key]; ok {
		return domainErr("correlation %d: pair (%d, %d) is listed already", cc.Tag, cc.Rv1, cc.Rv2)
	}
	o.cors = append(o.cors, cc)
	o.cormap[key] = cc
	return
}

// AddLimitStateFunction parses the expression of lsf, checks its variables and sets its index
func (o *Domain) AddLimitStateFunction(lsf *LimitStateFunction) (err error) {
	if lsf == nil {
		return domainErr("limit-state function is nil")
	}
	if _, ok := o.lsfmap[lsf.Tag]; ok {
		return domainErr("limit-state function with tag %d exists already", lsf.Tag)
	}
	fcn, err := ParseExpression(lsf.Expr)
	if err != nil {
		return domainErr("limit-state function %d: %v", lsf.Tag, err)
	}
	for _, name := range fcn.Vars {
		kind, id, _ := splitVar(name)
		if kind == "x" {
			if _, ok := o.rvmap[id]; !ok {
				return domainErr("limit-state function %d: random variable %d does not exist", lsf.Tag, id)
			}
		}
	}
	lsf.Fcn = fcn
	lsf.Index = len(o.lsfs)
	o.lsfs = append(o.lsfs, lsf)
	o.lsfmap[lsf.Tag] = lsf
	return
}

// RandomVariable returns the random variable with tag or nil
func (o *Domain) RandomVariable(tag int) *RandomVariable { return o.rvmap[tag] }

// LimitStateFunction returns the limit-state function with tag or nil
func (o *Domain) LimitStateFunction(tag int) *LimitStateFunction { return o.lsfmap[tag] }

// Correlation returns the correlation between rv1 and rv2 (in any order) or nil
func (o *Domain) Correlation(rv1, rv2 int) *CorrelationCoefficient {
	return o.cormap[pairKey(rv1, rv2)]
}

// RandomVariables returns the random variables in index order
func (o *Domain) RandomVariables() []*RandomVariable { return o.rvs }

// Correlations returns the correlation coefficients in declaration order
func (o *Domain) Correlations() []*CorrelationCoefficient { return o.cors }

// LimitStateFunctions returns the limit-state functions in index order
func (o *Domain) LimitStateFunctions() []*LimitStateFunction { return o.lsfs }

// Nrv returns the number of random variables
func (o *Domain) Nrv() int { return len(o.rvs) }

// Nlsf returns the number of limit-state functions
func (o *Domain) Nlsf() int { return len(o.lsfs) }

// NewDomainFromInput returns a new domain from input data
func NewDomainFromInput(in *inp.Input) (o *Domain, err error) {
	if in.Reliability == nil {
		return nil, chk.Err("input has no reliability data")
	}
	rd := in.Reliability
	o = NewDomain()
	for _, d := range rd.Variables {
		err = o.AddRandomVariable(&RandomVariable{Tag: d.Tag, Mean: d.Mean, Stdv: d.Stdv, Dist: d.Dist, Prm: d.Prm})
		if err != nil {
			return nil, err
		}
	}
	for _, d := range rd.Correlations {
		err = o.AddCorrelation(&CorrelationCoefficient{Tag: d.Tag, Rv1: d.Rv1, Rv2: d.Rv2, Rho: d.Rho})
		if err != nil {
			return nil, err
		}
	}
	for _, d := range rd.Lsfs {
		err = o.AddLimitStateFunction(&LimitStateFunction{Tag: d.Tag, Expr: d.Expr})
		if err != nil {
			return nil, err
		}
	}
	return
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
