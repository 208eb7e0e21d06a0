// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

// Linear performs one iteration with the tangent of the beginning of the step
type Linear struct{}

// SolveStep implements Algorithm. test may be nil
func (o *Linear) SolveStep(s Stepper, test ConvergenceTest) (last IterState, err error) {
	err = s.FormTangent()
	if err != nil {
		return
	}
	_, err = s.FormUnbalance()
	if err != nil {
		return
	}
	last, err = s.SolveIncrement()
	if err != nil {
		return
	}
	last.It = 1
	last.NormR, err = s.FormUnbalance()
	return
}

// Newton implements the Newton-Raphson method
//  ModNewton -- form the tangent at the first iteration only (modified Newton)
type Newton struct {
	ModNewton bool
}

// SolveStep implements Algorithm
func (o *Newton) SolveStep(s Stepper, test ConvergenceTest) (last IterState, err error) {
	if test == nil {
		err = solverErr("newton", nil, "Newton iterations require a convergence test")
		return
	}
	_, err = s.FormUnbalance()
	if err != nil {
		return
	}
	test.Start()
	for it := 1; ; it++ {
		if it == 1 || !o.ModNewton {
			err = s.FormTangent()
			if err != nil {
				return
			}
		}
		last, err = s.SolveIncrement()
		if err != nil {
			return
		}
		last.It = it
		last.NormR, err = s.FormUnbalance()
		if err != nil {
			return
		}
		switch test.Test(last) {
		case Converged:
			return
		case Failed:
			err = solverErr("newton", nil, "iterations did not converge after %d iterations (‖R‖=%g, ‖Δx‖=%g)", it, last.NormR, last.NormDx)
			return
		}
	}
}
