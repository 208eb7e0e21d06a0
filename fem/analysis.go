// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// Analysis is the derived analysis object of a session. Its dynamic type is the mode tag:
// *StaticAnalysis, *TransientAnalysis, *VariableTransientAnalysis, *EigenAnalysis or *ParticleAnalysis
type Analysis interface {
	Mode() Mode
	base() *analysisBase
	analyze(nsteps int, dt float64) error
}

// analysisBase holds data shared by all derived analyses
type analysisBase struct {
	s        *Session        // owner
	mode     Mode            // mode tag
	roles    []Role          // roles used by this analysis
	linked   map[Role]Linker // role objects linked to this analysis
	dofs     *DofMap         // equation numbers
	ready    bool            // setup has been performed
	released bool            // analysis has been released
}

// uses tells whether the analysis uses role
func (o *analysisBase) uses(role Role) bool {
	for _, r := range o.roles {
		if r == role {
			return true
		}
	}
	return false
}

// link links the role objects implementing Linker
func (o *analysisBase) link(self Analysis) {
	o.linked = make(map[Role]Linker)
	for _, role := range o.roles {
		if lk, ok := o.s.slots[role].obj.(Linker); ok {
			lk.Link(self)
			o.linked[role] = lk
		}
	}
}

// relink moves the link of role from the previous occupant to obj
func (o *analysisBase) relink(self Analysis, role Role, obj any) {
	if !o.uses(role) {
		return
	}
	if lk, ok := o.linked[role]; ok {
		lk.Unlink(self)
		delete(o.linked, role)
	}
	if lk, ok := obj.(Linker); ok {
		lk.Link(self)
		o.linked[role] = lk
	}
	o.ready = false
}

// release unlinks all role objects; calling it more than once has no effect
func (o *analysisBase) release(self Analysis) {
	if o.released {
		return
	}
	for _, role := range o.roles {
		if lk, ok := o.linked[role]; ok {
			lk.Unlink(self)
		}
	}
	o.linked = nil
	o.dofs = nil
	o.released = true
}

// number handles constraints and numbers equations
func (o *analysisBase) number() (err error) {
	s := o.s
	o.dofs = NewDofMap(s.model.Ndof())
	err = s.handler().Handle(s.model, o.dofs)
	if err != nil {
		return &ConfigurationError{Role: RoleHandler, Mode: o.mode, Msg: err.Error()}
	}
	err = s.numberer().Number(s.model, o.dofs)
	if err != nil {
		return &ConfigurationError{Role: RoleNumberer, Mode: o.mode, Msg: err.Error()}
	}
	return
}

// setup numbers equations and allocates the linear system and the integrator
func (o *analysisBase) setup() (err error) {
	s := o.s
	if len(s.sol.U) != s.model.Ndof() {
		s.sol = resizeSolution(s.sol, s.model.Ndof())
	}
	err = o.number()
	if err != nil {
		return
	}
	err = s.system().Setup(o.dofs.Neq)
	if err != nil {
		return &ConfigurationError{Role: RoleSystem, Mode: o.mode, Msg: err.Error()}
	}
	err = s.integrator().Setup(s.model, o.dofs, s.sol)
	if err != nil {
		return &ConfigurationError{Role: RoleIntegrator, Mode: o.mode, Msg: err.Error()}
	}
	o.ready = true
	return
}

// step solves one step that has already been started by the integrator
func (o *analysisBase) step(label string) (last IterState, err error) {
	s := o.s
	stp := &stepper{a: o, sys: s.system(), integ: s.integrator(), hdl: s.handler()}
	last, err = s.algorithm().SolveStep(stp, s.test())
	s.Stats.NumIter += last.It
	s.Stats.NumFact += stp.nfact
	if err != nil {
		s.integrator().Revert()
		return last, solverErr(label, err, "%v analysis failed", o.mode)
	}
	err = s.integrator().Commit()
	if err != nil {
		s.integrator().Revert()
		return last, solverErr(label, err, "cannot commit state")
	}
	s.Stats.NumSteps++
	return
}

// StaticAnalysis advances the load factor with a static integrator
type StaticAnalysis struct {
	analysisBase
}

// Mode implements Analysis
func (o *StaticAnalysis) Mode() Mode { return ModeStatic }

func (o *StaticAnalysis) base() *analysisBase { return &o.analysisBase }

func (o *StaticAnalysis) analyze(nsteps int, dt float64) (err error) {
	if !o.ready {
		err = o.setup()
		if err != nil {
			return
		}
	}
	integ := o.s.integrator().(StaticIntegrator)
	for i := 0; i < nsteps; i++ {
		err = integ.NewStep()
		if err != nil {
			return solverErr(stepLabel(i), err, "cannot start step")
		}
		_, err = o.step(stepLabel(i))
		if err != nil {
			return
		}
	}
	return
}

// TransientAnalysis advances time with a transient integrator and a fixed time step
type TransientAnalysis struct {
	analysisBase
}

// Mode implements Analysis
func (o *TransientAnalysis) Mode() Mode { return ModeTransient }

func (o *TransientAnalysis) base() *analysisBase { return &o.analysisBase }

func (o *TransientAnalysis) analyze(nsteps int, dt float64) (err error) {
	if !o.ready {
		err = o.setup()
		if err != nil {
			return
		}
	}
	for i := 0; i < nsteps; i++ {
		_, err = o.transientStep(i, dt)
		if err != nil {
			return
		}
	}
	return
}

// transientStep starts and solves one time step
func (o *analysisBase) transientStep(i int, dt float64) (last IterState, err error) {
	integ := o.s.integrator().(TransientIntegrator)
	err = integ.NewStep(dt)
	if err != nil {
		return last, solverErr(stepLabel(i), err, "cannot start step")
	}
	return o.step(stepLabel(i))
}

// VarStepData holds the parameters of variable time step analyses
type VarStepData struct {
	DtMin float64 // minimum time step
	DtMax float64 // maximum time step
	Jd    int     // desired number of iterations per step
}

// VariableTransientAnalysis advances time adapting the time step to the number of iterations
//  After a failed step, the step is reverted and Δt is halved until DtMin.
//  After a converged step, Δt ← Δt⋅Jd/nit clamped to [DtMin, DtMax]
type VariableTransientAnalysis struct {
	analysisBase
}

// Mode implements Analysis
func (o *VariableTransientAnalysis) Mode() Mode { return ModeVariableTransient }

func (o *VariableTransientAnalysis) base() *analysisBase { return &o.analysisBase }

func (o *VariableTransientAnalysis) analyze(nsteps int, dt float64) (err error) {
	if !o.ready {
		err = o.setup()
		if err != nil {
			return
		}
	}
	prm := o.s.VarStep
	dtmin, dtmax := prm.DtMin, prm.DtMax
	if dtmin <= 0 {
		dtmin = dt * 1e-6
	}
	if dtmax <= 0 {
		dtmax = dt
	}
	if prm.Jd < 1 {
		prm.Jd = 1
	}
	tf := o.s.sol.T + float64(nsteps)*dt
	ttol := 1e-12 * utl.Max(1, math.Abs(tf))
	h := dt
	for i := 0; tf-o.s.sol.T > ttol; i++ {
		hh := h
		if o.s.sol.T+hh > tf {
			hh = tf - o.s.sol.T
		}
		last, e := o.transientStep(i, hh)
		if e != nil {
			h /= 2
			if h < dtmin {
				return solverErr(stepLabel(i), e, "time step became smaller than Δtmin=%g", dtmin)
			}
			if o.s.ShowMsg {
				io.Pf("> step %d failed; reducing Δt to %g\n", i, h)
			}
			continue
		}
		if last.It > 0 {
			h = h * float64(prm.Jd) / float64(last.It)
		}
		h = utl.Min(utl.Max(h, dtmin), dtmax)
	}
	return
}

// ParticleAnalysis rebuilds the model discretisation before each transient step
type ParticleAnalysis struct {
	analysisBase
}

// Mode implements Analysis
func (o *ParticleAnalysis) Mode() Mode { return ModeParticle }

func (o *ParticleAnalysis) base() *analysisBase { return &o.analysisBase }

func (o *ParticleAnalysis) analyze(nsteps int, dt float64) (err error) {
	remesher := o.s.model.(Remesher)
	for i := 0; i < nsteps; i++ {
		ndof := o.s.model.Ndof()
		err = remesher.Remesh(o.s.sol)
		if err != nil {
			return solverErr(stepLabel(i), err, "remeshing failed")
		}
		if !o.ready || o.s.model.Ndof() != ndof {
			err = o.setup()
			if err != nil {
				return
			}
		}
		_, err = o.transientStep(i, dt)
		if err != nil {
			return
		}
	}
	return
}

// EigenAnalysis extracts eigenpairs of the model @ the current solution
type EigenAnalysis struct {
	analysisBase
	Neig int // number of eigenpairs
}

// Mode implements Analysis
func (o *EigenAnalysis) Mode() Mode { return ModeEigen }

func (o *EigenAnalysis) base() *analysisBase { return &o.analysisBase }

func (o *EigenAnalysis) analyze(nsteps int, dt float64) (err error) {
	return &ConfigurationError{Role: RoleNone, Mode: ModeEigen, Msg: "eigen mode is driven by Eigen, not Analyze"}
}

// eigen assembles K and M into eig and extracts the eigenpairs (in DOF space)
func (o *EigenAnalysis) eigen(eig EigenSystem, shift float64, generalized, smallest bool) (pairs []Eigenpair, err error) {
	s := o.s
	if len(s.sol.U) != s.model.Ndof() {
		s.sol = resizeSolution(s.sol, s.model.Ndof())
	}
	err = o.number()
	if err != nil {
		return
	}
	d := o.dofs.condensed()
	if o.Neig > d.Neq {
		return nil, &ConfigurationError{Role: RoleNone, Mode: ModeEigen, Msg: io.Sf("cannot extract %d eigenpairs from %d equations", o.Neig, d.Neq)}
	}
	err = eig.Setup(d.Neq)
	if err != nil {
		return nil, &ConfigurationError{Role: RoleEigenSystem, Mode: ModeEigen, Msg: err.Error()}
	}
	eig.Zero()
	n := d.Ndof
	K := utl.Alloc(n, n)
	M := utl.Alloc(n, n)
	err = s.model.Tangent(K, s.sol.U)
	if err != nil {
		return nil, solverErr("eigen", err, "cannot compute stiffness")
	}
	s.model.Mass(M)
	for i, eqi := range d.Eq {
		if eqi < 0 {
			continue
		}
		for j, eqj := range d.Eq {
			if eqj < 0 {
				continue
			}
			if K[i][j] != 0 {
				eig.AddA(eqi, eqj, K[i][j])
			}
			if M[i][j] != 0 {
				eig.AddM(eqi, eqj, M[i][j])
			}
		}
	}
	s.handler().EnforceTangent(eig, d)
	s.Stats.NumFact++
	res, err := eig.SolveEigen(o.Neig, shift, generalized, smallest)
	if err != nil {
		return nil, solverErr("eigen", err, "cannot extract %d eigenpairs", o.Neig)
	}
	pairs = make([]Eigenpair, len(res))
	for p, r := range res {
		pairs[p].Value = r.Value
		pairs[p].Vector = make([]float64, n)
		for dof, eq := range d.Eq {
			if eq >= 0 && eq < len(r.Vector) {
				pairs[p].Vector[dof] = r.Vector[eq]
			}
		}
	}
	return
}

// stepper implements Stepper for the algorithms
type stepper struct {
	a     *analysisBase
	sys   EquationSystem
	integ Integrator
	hdl   Handler
	nfact int
}

func (o *stepper) FormTangent() (err error) {
	o.sys.ZeroA()
	err = o.integ.FormTangent(o.sys)
	if err != nil {
		return
	}
	o.hdl.EnforceTangent(o.sys, o.a.dofs)
	o.nfact++
	return
}

func (o *stepper) FormUnbalance() (normR float64, err error) {
	o.sys.ZeroB()
	err = o.integ.FormUnbalance(o.sys)
	if err != nil {
		return
	}
	o.hdl.EnforceUnbalance(o.sys, o.a.dofs, o.a.s.sol.U)
	return la.Vector(o.sys.RHS()).Norm(), nil
}

func (o *stepper) SolveIncrement() (st IterState, err error) {
	b := o.sys.RHS()
	start := time.Now()
	x, err := o.sys.Solve()
	o.a.s.Stats.SolveTime += time.Since(start)
	if err != nil {
		return
	}
	st.NormDx = la.Vector(x).Norm()
	st.Energy = math.Abs(la.VecDot(x, b))
	err = o.integ.Update(x)
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// resizeSolution returns a solution of size ndof keeping the values of common DOFs
func resizeSolution(old *Solution, ndof int) (sol *Solution) {
	sol = NewSolution(ndof)
	if old == nil {
		return
	}
	sol.T, sol.Dt, sol.Lambda = old.T, old.Dt, old.Lambda
	copy(sol.U, old.U)
	copy(sol.V, old.V)
	copy(sol.A, old.A)
	return
}

func stepLabel(i int) string {
	return io.Sf("step %d", i)
}
