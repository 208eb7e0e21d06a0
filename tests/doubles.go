// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"errors"
	"strings"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gosl/io"
)

// Tracker records the lifecycle events of role objects. ex: "free:sys1", "link:num1:static"
type Tracker struct {
	Events []string
}

// Add records one event
func (o *Tracker) Add(event, name string, a fem.Analysis) {
	if a == nil {
		o.Events = append(o.Events, io.Sf("%s:%s", event, name))
		return
	}
	o.Events = append(o.Events, io.Sf("%s:%s:%v", event, name, a.Mode()))
}

// Count returns the number of events with the given prefix
func (o *Tracker) Count(prefix string) (n int) {
	for _, e := range o.Events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return
}

// Reset clears the events
func (o *Tracker) Reset() {
	o.Events = o.Events[:0]
}

// tracked implements fem.Freer and fem.Linker
type tracked struct {
	Name    string   // name used in events
	T       *Tracker // tracker; may be nil
	Links   int      // number of analyses currently linked
	Freed   int      // number of calls to Free
	Unlinks int      // number of calls to Unlink
}

// Free implements fem.Freer
func (o *tracked) Free() {
	o.Freed++
	if o.T != nil {
		o.T.Add("free", o.Name, nil)
	}
}

// Link implements fem.Linker
func (o *tracked) Link(a fem.Analysis) {
	o.Links++
	if o.T != nil {
		o.T.Add("link", o.Name, a)
	}
}

// Unlink implements fem.Linker
func (o *tracked) Unlink(a fem.Analysis) {
	o.Links--
	o.Unlinks++
	if o.T != nil {
		o.T.Add("unlink", o.Name, a)
	}
}

// TrackedSystem is a dense system recording its lifecycle
type TrackedSystem struct {
	fem.DenseSystem
	tracked
}

// NewTrackedSystem returns a new tracked dense system
func NewTrackedSystem(name string, t *Tracker) *TrackedSystem {
	return &TrackedSystem{tracked: tracked{Name: name, T: t}}
}

// Free implements fem.Freer
func (o *TrackedSystem) Free() {
	o.tracked.Free()
	o.DenseSystem.Free()
}

// TrackedNumberer is a plain numberer recording its lifecycle
type TrackedNumberer struct {
	fem.PlainNumberer
	tracked
	Calls int // number of calls to Number
}

// NewTrackedNumberer returns a new tracked numberer
func NewTrackedNumberer(name string, t *Tracker) *TrackedNumberer {
	return &TrackedNumberer{tracked: tracked{Name: name, T: t}}
}

// Number implements fem.Numberer
func (o *TrackedNumberer) Number(m fem.Model, d *fem.DofMap) error {
	o.Calls++
	return o.PlainNumberer.Number(m, d)
}

// TrackedHandler is a plain handler recording its lifecycle
type TrackedHandler struct {
	fem.PlainHandler
	tracked
}

// NewTrackedHandler returns a new tracked handler
func NewTrackedHandler(name string, t *Tracker) *TrackedHandler {
	return &TrackedHandler{tracked: tracked{Name: name, T: t}}
}

// TrackedTest is a norm test recording its lifecycle. It fails every iteration whose solution
// time step exceeds MaxDt (if positive)
type TrackedTest struct {
	fem.NormTest
	tracked
	Sol   *fem.Solution // [optional] solution used to check the time step
	MaxDt float64       // [optional] maximum time step accepted
}

// NewTrackedTest returns a new tracked norm test on the unbalance
func NewTrackedTest(name string, t *Tracker, tol float64, nmaxit int) *TrackedTest {
	o := &TrackedTest{tracked: tracked{Name: name, T: t}}
	o.NormTest = *fem.NewNormUnbalance(tol, nmaxit)
	return o
}

// Test implements fem.ConvergenceTest
func (o *TrackedTest) Test(st fem.IterState) fem.TestStatus {
	if o.MaxDt > 0 && o.Sol != nil && o.Sol.Dt > o.MaxDt {
		return fem.Failed
	}
	return o.NormTest.Test(st)
}

// TrackedAlgorithm is a Newton algorithm recording its lifecycle
type TrackedAlgorithm struct {
	fem.Newton
	tracked
	Steps []float64 // time increment of each attempted step
	sol   *fem.Solution
}

// NewTrackedAlgorithm returns a new tracked Newton algorithm. sol is optional
func NewTrackedAlgorithm(name string, t *Tracker, sol *fem.Solution) *TrackedAlgorithm {
	return &TrackedAlgorithm{tracked: tracked{Name: name, T: t}, sol: sol}
}

// SolveStep implements fem.Algorithm
func (o *TrackedAlgorithm) SolveStep(s fem.Stepper, test fem.ConvergenceTest) (fem.IterState, error) {
	if o.sol != nil {
		o.Steps = append(o.Steps, o.sol.Dt)
	}
	return o.Newton.SolveStep(s, test)
}

// TrackedLoadControl is a load control integrator recording its lifecycle
type TrackedLoadControl struct {
	fem.LoadControl
	tracked
}

// NewTrackedLoadControl returns a new tracked load control integrator
func NewTrackedLoadControl(name string, t *Tracker, dλ float64) *TrackedLoadControl {
	o := &TrackedLoadControl{tracked: tracked{Name: name, T: t}}
	o.DLambda = dλ
	return o
}

// TrackedNewmark is a Newmark integrator recording its lifecycle
type TrackedNewmark struct {
	fem.Newmark
	tracked
}

// NewTrackedNewmark returns a new tracked Newmark integrator (average acceleration)
func NewTrackedNewmark(name string, t *Tracker) *TrackedNewmark {
	o := &TrackedNewmark{tracked: tracked{Name: name, T: t}}
	o.Theta1, o.Theta2 = 0.5, 0.5
	return o
}

// ErrSolveFailed is returned by FailingSystem
var ErrSolveFailed = errors.New("factorisation failed")

// FailingSystem is a dense system whose Solve fails after OkSolves successful solves
type FailingSystem struct {
	fem.DenseSystem
	OkSolves int // number of successful solves before failing; negative means never fail
	Solves   int // number of calls to Solve
}

// Solve implements fem.EquationSystem
func (o *FailingSystem) Solve() ([]float64, error) {
	o.Solves++
	if o.OkSolves >= 0 && o.Solves > o.OkSolves {
		return nil, ErrSolveFailed
	}
	return o.DenseSystem.Solve()
}
