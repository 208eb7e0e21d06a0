// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// Kind is the stable kind of a reliability failure
type Kind string

// error kinds
const (
	KindDomain     Kind = "domain"     // invalid reliability domain
	KindEvaluation Kind = "evaluation" // limit-state value unobtainable
	KindGradient   Kind = "gradient"   // limit-state gradient unobtainable
	KindVariance   Kind = "variance"   // non-positive response variance (warning)
	KindDegenerate Kind = "degenerate" // zero-norm importance vector
)

var (
	// ErrDomain is matched by errors.Is for every DomainError
	ErrDomain = errors.New("reliability domain error")
)

// DomainError reports an invalid entity added to the reliability domain
type DomainError struct {
	Msg string
}

func (o *DomainError) Error() string { return "reliability domain error: " + o.Msg }

// Kind returns KindDomain
func (o *DomainError) Kind() Kind { return KindDomain }

// Is makes errors.Is(err, ErrDomain) true
func (o *DomainError) Is(target error) bool { return target == ErrDomain }

func domainErr(msg string, prm ...interface{}) error {
	return &DomainError{Msg: io.Sf(msg, prm...)}
}

// evaluation stages
const (
	StageAnalysis = "analysis" // response @ the mean point
	StageLsf      = "lsf"      // one limit-state function with the response @ the mean point
)

// EvaluationError reports a limit-state function that could not be evaluated at the mean point
type EvaluationError struct {
	Stage string // StageAnalysis or StageLsf
	Lsf   int    // tag of limit-state function; only meaningful with StageLsf
	Err   error  // underlying error
}

func (o *EvaluationError) Error() string {
	if o.Stage == StageAnalysis {
		return io.Sf("evaluation error: could not run analysis to evaluate limit-state functions:\n%v", o.Err)
	}
	return io.Sf("evaluation error: could not evaluate limit-state function %d:\n%v", o.Lsf, o.Err)
}

// Kind returns KindEvaluation
func (o *EvaluationError) Kind() Kind { return KindEvaluation }

// Unwrap returns the underlying error
func (o *EvaluationError) Unwrap() error { return o.Err }

// GradientError reports gradients that could not be computed at the mean point
type GradientError struct {
	Err error // underlying error
}

func (o *GradientError) Error() string {
	return io.Sf("gradient error: could not compute gradients of the limit-state functions:\n%v", o.Err)
}

// Kind returns KindGradient
func (o *GradientError) Kind() Kind { return KindGradient }

// Unwrap returns the underlying error
func (o *GradientError) Unwrap() error { return o.Err }

// NonPositiveVarianceWarning reports a limit-state function whose response variance is not positive.
// It does not abort the analysis; the standard deviation of that function is unavailable
type NonPositiveVarianceWarning struct {
	Lsf      int     // tag of limit-state function
	Variance float64 // computed variance
}

func (o *NonPositiveVarianceWarning) Error() string {
	return io.Sf("warning: response variance of limit-state function %d is not positive (%g)", o.Lsf, o.Variance)
}

// Kind returns KindVariance
func (o *NonPositiveVarianceWarning) Kind() Kind { return KindVariance }

// DegenerateGradientError reports a limit-state function whose importance vector has zero norm
type DegenerateGradientError struct {
	Lsf int // tag of limit-state function
}

func (o *DegenerateGradientError) Error() string {
	return io.Sf("degenerate gradient: importance vector of limit-state function %d has zero norm", o.Lsf)
}

// Kind returns KindDegenerate
func (o *DegenerateGradientError) Kind() Kind { return KindDegenerate }
