// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements closed-form solutions used to verify numerical results
package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// LinearFosm computes the exact second-moment results of a linear limit-state function
//
//  g(x) = a0 + Σ aᵢ⋅xᵢ
//
//  E[g]   = a0 + Σ aᵢ⋅μᵢ
//  Var[g] = Σ Σ aᵢ⋅aⱼ⋅ρᵢⱼ⋅σᵢ⋅σⱼ
//  αᵢ     = aᵢ⋅σᵢ / ‖a⋅σ‖
type LinearFosm struct {
	A0  float64     // constant term
	A   []float64   // [nrv] coefficients
	Mu  []float64   // [nrv] means
	Sig []float64   // [nrv] standard deviations
	Rho [][]float64 // [nrv][nrv] correlation coefficients; nil means independent
	cov [][]float64 // [nrv][nrv] covariance
}

// Init initialises this structure
func (o *LinearFosm) Init(a0 float64, a, mu, sig []float64, rho [][]float64) {
	if len(a) != len(mu) || len(a) != len(sig) {
		chk.Panic("LinearFosm: sizes of a, μ and σ must be equal: %d, %d, %d", len(a), len(mu), len(sig))
	}
	n := len(a)
	o.A0, o.A, o.Mu, o.Sig, o.Rho = a0, a, mu, sig, rho
	o.cov = utl.Alloc(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ρ := 0.0
			if i == j {
				ρ = 1
			} else if rho != nil {
				ρ = rho[i][j]
			}
			o.cov[i][j] = ρ * sig[i] * sig[j]
		}
	}
}

// Mean returns the mean of g
func (o LinearFosm) Mean() (res float64) {
	res = o.A0
	for i, a := range o.A {
		res += a * o.Mu[i]
	}
	return
}

// Covariance returns the covariance between g and the linear function b (with the same variables)
func (o LinearFosm) Covariance(b *LinearFosm) (res float64) {
	for i := range o.A {
		for j := range b.A {
			res += o.A[i] * o.cov[i][j] * b.A[j]
		}
	}
	return
}

// Variance returns the variance of g
func (o LinearFosm) Variance() float64 {
	return o.Covariance(&o)
}

// Stdv returns the standard deviation of g
func (o LinearFosm) Stdv() float64 {
	return math.Sqrt(o.Variance())
}

// Correlation returns the correlation between g and b
func (o LinearFosm) Correlation(b *LinearFosm) float64 {
	return o.Covariance(b) / (o.Stdv() * b.Stdv())
}

// Importance returns the normalised importance measures
func (o LinearFosm) Importance() (α []float64) {
	α = make([]float64, len(o.A))
	nrm := 0.0
	for i, a := range o.A {
		α[i] = a * o.Sig[i]
		nrm += α[i] * α[i]
	}
	nrm = math.Sqrt(nrm)
	for i := range α {
		α[i] /= nrm
	}
	return
}

// CheckMoments checks the mean, standard deviation and importance measures
func (o LinearFosm) CheckMoments(tst *testing.T, mean, stdv float64, importance []float64, tol float64) {
	if chk.Verbose {
		io.Pforan("E[g] = %v  (exact = %v)\n", mean, o.Mean())
		io.Pforan("σ[g] = %v  (exact = %v)\n", stdv, o.Stdv())
	}
	chk.Float64(tst, "E[g]", tol, mean, o.Mean())
	chk.Float64(tst, "σ[g]", tol, stdv, o.Stdv())
	chk.Array(tst, "α", tol, importance, o.Importance())
}
