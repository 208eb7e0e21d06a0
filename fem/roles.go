// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/io"

// Role identifies one strategy slot of the session
type Role int

// roles
const (
	RoleNone        Role = iota - 1 // not a role
	RoleSystem                      // linear equation system
	RoleNumberer                    // DOF numberer
	RoleHandler                     // constraint handler
	RoleTest                        // convergence test
	RoleAlgorithm                   // solution algorithm
	RoleIntegrator                  // static or transient integrator
	RoleEigenSystem                 // eigen-capable equation system
	nroles
)

// AllRoles lists the roles in release order
var AllRoles = []Role{RoleSystem, RoleNumberer, RoleHandler, RoleTest, RoleAlgorithm, RoleIntegrator, RoleEigenSystem}

var roleNames = []string{"equation system", "numberer", "constraint handler", "convergence test", "algorithm", "integrator", "eigen system"}

func (o Role) String() string {
	if o < 0 || o >= nroles {
		return io.Sf("role(%d)", int(o))
	}
	return roleNames[o]
}

// Mode is the tag of the derived analysis held by a session
type Mode int

// analysis modes
const (
	ModeNone Mode = iota
	ModeStatic
	ModeTransient
	ModeVariableTransient
	ModeEigen
	ModeParticle
)

var modeNames = []string{"none", "static", "transient", "variable-transient", "eigen", "particle"}

func (o Mode) String() string {
	if o < 0 || int(o) >= len(modeNames) {
		return io.Sf("mode(%d)", int(o))
	}
	return modeNames[o]
}

// dynamic tells whether the mode advances time with a transient integrator
func (o Mode) dynamic() bool {
	return o == ModeTransient || o == ModeVariableTransient || o == ModeParticle
}

// Model is the structural model driven by a session. All vectors are in DOF space (size Ndof)
type Model interface {
	Ndof() int                                // number of degrees of freedom
	Fixed() []int                             // DOFs with homogeneous essential conditions
	Tangent(K [][]float64, u []float64) error // adds the tangent stiffness @ u to K
	Internal(f []float64, u []float64) error  // sets internal forces @ u into f
	Reference(f []float64)                    // sets the reference load pattern into f
	Mass(M [][]float64)                       // adds the (lumped or consistent) mass matrix to M
}

// Remesher is implemented by models that rebuild their discretisation between particle steps
type Remesher interface {
	Remesh(sol *Solution) error
}

// Eigenpair holds one eigenvalue and its eigenvector in DOF space
type Eigenpair struct {
	Value  float64
	Vector []float64
}

// EquationSystem assembles and solves the linearised system A x = b
type EquationSystem interface {
	Setup(neq int) error             // allocates for neq equations
	ZeroA()                          // clears A
	ZeroB()                          // clears b
	AddA(i, j int, v float64)        // A[i][j] += v
	AddB(i int, v float64)           // b[i] += v
	RHS() []float64                  // returns b
	Solve() (x []float64, err error) // solves; x is owned by the system
}

// EigenSystem assembles K and M and extracts eigenpairs of K φ = λ M φ (or K φ = λ φ)
type EigenSystem interface {
	Setup(neq int) error
	Zero()
	AddA(i, j int, v float64) // K[i][j] += v
	AddM(i, j int, v float64) // M[i][j] += v
	SolveEigen(k int, shift float64, generalized, smallest bool) (pairs []Eigenpair, err error)
}

// Numberer assigns equation numbers to the free DOFs
type Numberer interface {
	Number(m Model, d *DofMap) error
}

// MatrixAssembler is the part of EquationSystem and EigenSystem receiving matrix terms
type MatrixAssembler interface {
	AddA(i, j int, v float64)
}

// Handler decides which DOFs are eliminated and enforces the constraints on the system
type Handler interface {
	Handle(m Model, d *DofMap) error
	EnforceTangent(a MatrixAssembler, d *DofMap)
	EnforceUnbalance(sys EquationSystem, d *DofMap, u []float64)
}

// TestStatus is the outcome of one convergence check
type TestStatus int

// test outcomes
const (
	Continue TestStatus = iota
	Converged
	Failed
)

// IterState holds the norms of one iteration
type IterState struct {
	It     int     // iteration number (1-based)
	NormR  float64 // norm of unbalance (residual)
	NormDx float64 // norm of increment
	Energy float64 // |dx·R|
}

// ConvergenceTest decides whether iterations continue, converged or failed
type ConvergenceTest interface {
	Start()
	Test(st IterState) TestStatus
	Norms() []float64
}

// Stepper is the view of an analysis an algorithm iterates on
type Stepper interface {
	FormTangent() error                        // assembles the effective tangent
	FormUnbalance() (normR float64, err error) // assembles the unbalance; returns its norm
	SolveIncrement() (st IterState, err error) // solves for dx and updates the trial state
}

// Algorithm drives Newton-type iterations of one step
type Algorithm interface {
	SolveStep(s Stepper, test ConvergenceTest) (last IterState, err error)
}

// Integrator forms the system of equations of one step and updates the solution
type Integrator interface {
	Setup(m Model, d *DofMap, sol *Solution) error
	FormTangent(sys EquationSystem) error
	FormUnbalance(sys EquationSystem) error
	Update(dx []float64) error
	Commit() error
	Revert()
}

// StaticIntegrator advances the load factor
type StaticIntegrator interface {
	Integrator
	NewStep() error
}

// TransientIntegrator advances time
type TransientIntegrator interface {
	Integrator
	NewStep(dt float64) error
}

// Freer is implemented by role objects holding resources to be released by the session
type Freer interface {
	Free()
}

// Linker is implemented by role objects tracking the derived analyses using them
type Linker interface {
	Link(a Analysis)
	Unlink(a Analysis)
}
