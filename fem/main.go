// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the analysis session composing exchangeable numerical strategies
package fem

import (
	"reflect"
	"time"

	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// Info holds metadata of an analysis
type Info struct {
	Title string            // title
	Desc  string            // description
	Extra map[string]string // extra key/value pairs
}

// Stats holds counters of a session
type Stats struct {
	NumSteps  int           // number of converged steps
	NumIter   int           // total number of iterations
	NumFact   int           // number of tangent formations (factorisations)
	SolveTime time.Duration // time spent solving linear systems
	WallTime  time.Duration // time measured between StartTimer and StopTimer
}

// slot holds the exclusive occupant of one role
type slot struct {
	obj  any    // occupant; nil if empty
	gen  int    // generation; incremented every time the occupant is released
	name string // [optional] factory name of the occupant
}

// Session is the composition root of an analysis. It exclusively owns one object per role and at
// most one derived analysis whose dynamic type is the active mode
type Session struct {

	// options and data
	ShowMsg bool        // show messages
	VarStep VarStepData // parameters of variable transient analyses
	Info    Info        // metadata
	Stats   Stats       // counters
	NDM     int         // number of space dimensions of the model
	NDF     int         // number of DOFs per node of the model

	// internal
	model    Model        // structural model
	sol      *Solution    // solution state
	slots    [nroles]slot // role occupants
	analysis Analysis     // derived analysis; nil if mode is none
	pairs    []Eigenpair  // eigenpairs of the last Eigen call
	running  bool         // Analyze is running
	tstart   time.Time    // timer start
}

// NewSession returns a new empty session
func NewSession() (o *Session) {
	o = new(Session)
	o.Info.Extra = make(map[string]string)
	return
}

// Handle refers to the occupant of a role slot and goes stale when that occupant is released
type Handle struct {
	s    *Session
	role Role
	gen  int
}

// Handle returns a handle to the current occupant of role
func (o *Session) Handle(role Role) Handle {
	if role < 0 || role >= nroles {
		return Handle{s: o, role: role, gen: -1}
	}
	return Handle{s: o, role: role, gen: o.slots[role].gen}
}

// Get returns the occupant or ErrStaleHandle if it was released (or the slot was empty)
func (o Handle) Get() (obj any, err error) {
	if o.s == nil || o.role < 0 || o.role >= nroles {
		return nil, ErrStaleHandle
	}
	sl := &o.s.slots[o.role]
	if sl.gen != o.gen || sl.obj == nil {
		return nil, ErrStaleHandle
	}
	return sl.obj, nil
}

// Role returns the role of the handle
func (o Handle) Role() Role { return o.role }

// Configure installs obj in role transferring its ownership to the session
//  The previous occupant is released (Free is called if implemented). If a derived analysis is
//  active, the previous occupant is unlinked from it and obj is linked
func (o *Session) Configure(role Role, obj any) (err error) {
	mode := o.Mode()
	if o.running {
		return &ConfigurationError{Role: role, Mode: mode, Msg: "cannot configure while analysis is running"}
	}
	if role < 0 || role >= nroles {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: io.Sf("invalid role %d", int(role))}
	}
	if obj == nil {
		return &ConfigurationError{Role: role, Mode: mode, Msg: "object is nil"}
	}
	err = o.compatible(role, obj, mode)
	if err != nil {
		return
	}
	sl := &o.slots[role]
	if sameObject(sl.obj, obj) {
		return
	}
	for _, other := range AllRoles {
		if other != role && sameObject(o.slots[other].obj, obj) {
			return &ConfigurationError{Role: role, Mode: mode, Msg: io.Sf("object is already owned by the %v slot", other)}
		}
	}
	if o.analysis != nil {
		o.analysis.base().relink(o.analysis, role, obj)
	}
	o.release(role)
	sl.obj = obj
	if o.ShowMsg {
		io.Pf("> %v configured (%T)\n", role, obj)
	}
	return
}

// ConfigureByName allocates a role object from the factory and installs it
func (o *Session) ConfigureByName(role Role, name string, prms dbf.Params) (err error) {
	obj, err := New(role, name, prms)
	if err != nil {
		return &ConfigurationError{Role: role, Mode: o.Mode(), Msg: err.Error()}
	}
	err = o.Configure(role, obj)
	if err != nil {
		if f, ok := obj.(Freer); ok {
			f.Free()
		}
		return
	}
	o.slots[role].name = name
	return
}

// Occupant returns the object in role or nil
func (o *Session) Occupant(role Role) any {
	if role < 0 || role >= nroles {
		return nil
	}
	return o.slots[role].obj
}

// SetModel sets the model to be analysed and allocates a zeroed solution
func (o *Session) SetModel(m Model) {
	o.model = m
	o.sol = nil
	o.pairs = nil
	if m != nil {
		o.sol = NewSolution(m.Ndof())
	}
	if o.analysis != nil {
		o.analysis.base().ready = false
	}
}

// Model returns the model
func (o *Session) Model() Model { return o.model }

// Solution returns the solution state
func (o *Session) Solution() *Solution { return o.sol }

// Mode returns the active mode
func (o *Session) Mode() Mode {
	if o.analysis == nil {
		return ModeNone
	}
	return o.analysis.Mode()
}

// Analysis returns the derived analysis or nil
func (o *Session) Analysis() Analysis { return o.analysis }

// SelectStaticMode builds a static analysis
func (o *Session) SelectStaticMode() error { return o.selectMode(ModeStatic, 0) }

// SelectTransientMode builds a transient analysis with fixed time step
func (o *Session) SelectTransientMode() error { return o.selectMode(ModeTransient, 0) }

// SelectVariableTransientMode builds a transient analysis with variable time step
func (o *Session) SelectVariableTransientMode() error {
	return o.selectMode(ModeVariableTransient, 0)
}

// SelectEigenMode builds an eigen analysis extracting k eigenpairs
func (o *Session) SelectEigenMode(k int) error { return o.selectMode(ModeEigen, k) }

// SelectParticleMode builds a particle (remeshing) transient analysis
func (o *Session) SelectParticleMode() error { return o.selectMode(ModeParticle, 0) }

// Analyze runs nsteps steps. dt is ignored by static analyses
func (o *Session) Analyze(nsteps int, dt float64) (err error) {
	mode := o.Mode()
	if o.running {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: "analysis is already running"}
	}
	if o.analysis == nil {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: "no analysis mode has been selected"}
	}
	if nsteps < 0 {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: io.Sf("number of steps must be non-negative. nsteps=%d is invalid", nsteps)}
	}
	if o.model == nil {
		return errNoModel(mode)
	}
	if mode.dynamic() && dt <= 0 {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: io.Sf("time step must be positive. Δt=%g is invalid", dt)}
	}
	o.running = true
	defer func() { o.running = false }()
	if o.ShowMsg {
		io.Pf("> running %v analysis: %d steps\n", mode, nsteps)
	}
	return o.analysis.analyze(nsteps, dt)
}

// InitializeAnalysis zeroes the solution and re-runs numbering and setup of the derived analysis
func (o *Session) InitializeAnalysis() (err error) {
	if o.analysis == nil {
		return &ConfigurationError{Role: RoleNone, Mode: ModeNone, Msg: "no analysis mode has been selected"}
	}
	if o.running {
		return &ConfigurationError{Role: RoleNone, Mode: o.Mode(), Msg: "analysis is running"}
	}
	if o.model == nil {
		return errNoModel(o.Mode())
	}
	if o.sol == nil || len(o.sol.U) != o.model.Ndof() {
		o.sol = NewSolution(o.model.Ndof())
	}
	o.sol.Reset()
	o.pairs = nil
	a := o.analysis.base()
	a.ready = false
	if a.mode == ModeEigen {
		return
	}
	return a.setup()
}

// Eigen extracts the eigenpairs of the model. Eigen mode must be active
//  solverType -- if not empty, an eigen system of this factory type is installed in RoleEigenSystem;
//                otherwise, RoleEigenSystem or an eigen-capable RoleSystem is used
func (o *Session) Eigen(solverType string, shift float64, generalized, findSmallest bool) (pairs []Eigenpair, err error) {
	ea, ok := o.analysis.(*EigenAnalysis)
	if !ok {
		return nil, &ConfigurationError{Role: RoleNone, Mode: o.Mode(), Msg: "eigen requires eigen mode"}
	}
	if o.running {
		return nil, &ConfigurationError{Role: RoleNone, Mode: ModeEigen, Msg: "analysis is running"}
	}
	if o.model == nil {
		return nil, errNoModel(ModeEigen)
	}
	if solverType != "" && !(o.slots[RoleEigenSystem].obj != nil && o.slots[RoleEigenSystem].name == solverType) {
		err = o.ConfigureByName(RoleEigenSystem, solverType, nil)
		if err != nil {
			return
		}
	}
	eig, ok := o.slots[RoleEigenSystem].obj.(EigenSystem)
	if !ok {
		eig, ok = o.slots[RoleSystem].obj.(EigenSystem)
	}
	if !ok {
		return nil, &MissingRoleError{Role: RoleEigenSystem, Mode: ModeEigen}
	}
	o.running = true
	defer func() { o.running = false }()
	pairs, err = ea.eigen(eig, shift, generalized, findSmallest)
	if err != nil {
		return
	}
	o.pairs = pairs
	if o.ShowMsg {
		for i, p := range pairs {
			io.Pf("> λ%d = %g\n", i, p.Value)
		}
	}
	return
}

// Eigenpairs returns the eigenpairs of the last Eigen call
func (o *Session) Eigenpairs() []Eigenpair { return o.pairs }

// TestNorms returns the norms recorded by the convergence test
func (o *Session) TestNorms() []float64 {
	if t, ok := o.slots[RoleTest].obj.(ConvergenceTest); ok {
		return t.Norms()
	}
	return nil
}

// WipeAnalysis releases the derived analysis and every role object. The model is kept
func (o *Session) WipeAnalysis() {
	if o.analysis != nil {
		o.analysis.base().release(o.analysis)
		o.analysis = nil
	}
	for _, role := range AllRoles {
		o.release(role)
	}
	o.pairs = nil
}

// Wipe releases everything and discards model, solution, timer, metadata and counters
func (o *Session) Wipe() {
	o.WipeAnalysis()
	o.model = nil
	o.sol = nil
	o.Info = Info{Extra: make(map[string]string)}
	o.Stats = Stats{}
	o.tstart = time.Time{}
	o.NDM, o.NDF = 0, 0
}

// StartTimer starts the wall timer
func (o *Session) StartTimer() {
	o.tstart = time.Now()
}

// StopTimer stops the wall timer and returns the elapsed time
func (o *Session) StopTimer() time.Duration {
	if o.tstart.IsZero() {
		return 0
	}
	o.Stats.WallTime = time.Since(o.tstart)
	o.tstart = time.Time{}
	return o.Stats.WallTime
}

// selection ///////////////////////////////////////////////////////////////////////////////////////

// required roles of each mode
var (
	rolesStepping = []Role{RoleSystem, RoleNumberer, RoleHandler, RoleTest, RoleAlgorithm, RoleIntegrator}
	rolesEigen    = []Role{RoleNumberer, RoleHandler}
)

// selectMode releases the previous analysis and builds a new one. On error, nothing changes
func (o *Session) selectMode(mode Mode, k int) (err error) {
	if o.running {
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: "cannot select mode while analysis is running"}
	}
	if o.model == nil {
		return errNoModel(mode)
	}

	// check roles
	required := rolesStepping
	if mode == ModeEigen {
		required = rolesEigen
	}
	for _, role := range required {
		if o.slots[role].obj == nil {
			return &MissingRoleError{Role: role, Mode: mode}
		}
	}
	switch {
	case mode == ModeStatic:
		if _, ok := o.slots[RoleIntegrator].obj.(StaticIntegrator); !ok {
			return &ConfigurationError{Role: RoleIntegrator, Mode: mode, Msg: io.Sf("%T is not a static integrator", o.slots[RoleIntegrator].obj)}
		}
	case mode.dynamic():
		if _, ok := o.slots[RoleIntegrator].obj.(TransientIntegrator); !ok {
			return &ConfigurationError{Role: RoleIntegrator, Mode: mode, Msg: io.Sf("%T is not a transient integrator", o.slots[RoleIntegrator].obj)}
		}
	}
	if mode == ModeParticle {
		if _, ok := o.model.(Remesher); !ok {
			return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: io.Sf("model %T cannot be remeshed", o.model)}
		}
	}

	// new analysis
	var a Analysis
	switch mode {
	case ModeStatic:
		a = &StaticAnalysis{analysisBase{roles: rolesStepping}}
	case ModeTransient:
		a = &TransientAnalysis{analysisBase{roles: rolesStepping}}
	case ModeVariableTransient:
		a = &VariableTransientAnalysis{analysisBase{roles: rolesStepping}}
	case ModeParticle:
		a = &ParticleAnalysis{analysisBase{roles: rolesStepping}}
	case ModeEigen:
		if k < 1 {
			return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: io.Sf("number of eigenpairs must be positive. k=%d is invalid", k)}
		}
		a = &EigenAnalysis{analysisBase{roles: []Role{RoleNumberer, RoleHandler, RoleSystem, RoleEigenSystem}}, k}
	default:
		return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: "invalid mode"}
	}
	b := a.base()
	b.s, b.mode = o, mode

	// replace
	if o.analysis != nil {
		o.analysis.base().release(o.analysis)
	}
	o.analysis = a
	o.pairs = nil
	b.link(a)
	if o.ShowMsg {
		io.Pforan("> %v analysis selected\n", mode)
	}
	return
}

// compatible checks obj against the role interface and the active mode
func (o *Session) compatible(role Role, obj any, mode Mode) (err error) {
	bad := func(msg string, prm ...interface{}) error {
		return &ConfigurationError{Role: role, Mode: mode, Msg: io.Sf(msg, prm...)}
	}
	switch role {
	case RoleSystem:
		if _, ok := obj.(EquationSystem); !ok {
			return bad("%T is not an equation system", obj)
		}
	case RoleNumberer:
		if _, ok := obj.(Numberer); !ok {
			return bad("%T is not a numberer", obj)
		}
	case RoleHandler:
		if _, ok := obj.(Handler); !ok {
			return bad("%T is not a constraint handler", obj)
		}
	case RoleTest:
		if _, ok := obj.(ConvergenceTest); !ok {
			return bad("%T is not a convergence test", obj)
		}
	case RoleAlgorithm:
		if _, ok := obj.(Algorithm); !ok {
			return bad("%T is not an algorithm", obj)
		}
	case RoleIntegrator:
		if _, ok := obj.(Integrator); !ok {
			return bad("%T is not an integrator", obj)
		}
		if mode == ModeStatic {
			if _, ok := obj.(StaticIntegrator); !ok {
				return bad("%T cannot be used in static mode", obj)
			}
		}
		if mode.dynamic() {
			if _, ok := obj.(TransientIntegrator); !ok {
				return bad("%T cannot be used in %v mode", obj, mode)
			}
		}
	case RoleEigenSystem:
		if _, ok := obj.(EigenSystem); !ok {
			return bad("%T is not an eigen system", obj)
		}
	}
	return
}

// release releases the occupant of role
func (o *Session) release(role Role) {
	sl := &o.slots[role]
	if sl.obj == nil {
		return
	}
	if f, ok := sl.obj.(Freer); ok {
		f.Free()
	}
	sl.obj = nil
	sl.name = ""
	sl.gen++
}

// getters used by derived analyses
func (o *Session) system() EquationSystem { return o.slots[RoleSystem].obj.(EquationSystem) }
func (o *Session) numberer() Numberer { return o.slots[RoleNumberer].obj.(Numberer) }
func (o *Session) handler() Handler { return o.slots[RoleHandler].obj.(Handler) }
func (o *Session) test() ConvergenceTest { return o.slots[RoleTest].obj.(ConvergenceTest) }
func (o *Session) algorithm() Algorithm { return o.slots[RoleAlgorithm].obj.(Algorithm) }
func (o *Session) integrator() Integrator { return o.slots[RoleIntegrator].obj.(Integrator) }

// errNoModel reports a session without model
func errNoModel(mode Mode) error {
	return &ConfigurationError{Role: RoleNone, Mode: mode, Msg: "a model must be set before analysing"}
}

// sameObject tells whether a and b are the same object
func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
