// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// Kind is the stable kind of a session failure
type Kind string

// error kinds
const (
	KindConfiguration Kind = "configuration" // missing or incompatible role
	KindSolver        Kind = "solver"        // factorisation or iteration failure
)

var (
	// ErrConfiguration is matched by errors.Is for every ConfigurationError and MissingRoleError
	ErrConfiguration = errors.New("configuration error")

	// ErrSolver is matched by errors.Is for every SolverError
	ErrSolver = errors.New("solver error")

	// ErrStaleHandle is returned by Handle.Get after the role occupant has been released
	ErrStaleHandle = errors.New("stale role handle")
)

// ConfigurationError reports a role object that is incompatible with the session
type ConfigurationError struct {
	Role Role   // role being configured; RoleNone if not related to a single role
	Mode Mode   // mode active when the error happened
	Msg  string // message
}

func (o *ConfigurationError) Error() string {
	if o.Role == RoleNone {
		return io.Sf("configuration error [mode=%v]: %s", o.Mode, o.Msg)
	}
	return io.Sf("configuration error [role=%v, mode=%v]: %s", o.Role, o.Mode, o.Msg)
}

// Kind returns KindConfiguration
func (o *ConfigurationError) Kind() Kind { return KindConfiguration }

// Is makes errors.Is(err, ErrConfiguration) true
func (o *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingRoleError reports a role that must be configured before selecting a mode
type MissingRoleError struct {
	Role Role // missing role
	Mode Mode // mode being selected
}

func (o *MissingRoleError) Error() string {
	return io.Sf("configuration error: %v mode requires a %v", o.Mode, o.Role)
}

// Kind returns KindConfiguration
func (o *MissingRoleError) Kind() Kind { return KindConfiguration }

// Is makes errors.Is(err, ErrConfiguration) true
func (o *MissingRoleError) Is(target error) bool { return target == ErrConfiguration }

// SolverError reports a failure of the equation system or of the iterations
type SolverError struct {
	Op  string // operation; e.g. "solve", "eigen", "step 3"
	Msg string // message
	Err error  // [optional] underlying error
}

func (o *SolverError) Error() string {
	if o.Err != nil {
		return io.Sf("solver error [%s]: %s:\n%v", o.Op, o.Msg, o.Err)
	}
	return io.Sf("solver error [%s]: %s", o.Op, o.Msg)
}

// Kind returns KindSolver
func (o *SolverError) Kind() Kind { return KindSolver }

// Unwrap returns the underlying error
func (o *SolverError) Unwrap() error { return o.Err }

// Is makes errors.Is(err, ErrSolver) true
func (o *SolverError) Is(target error) bool { return target == ErrSolver }

// solverErr returns a new SolverError
func solverErr(op string, err error, msg string, prm ...interface{}) error {
	return &SolverError{Op: op, Msg: io.Sf(msg, prm...), Err: err}
}
