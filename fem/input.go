// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// NewSessionFromInput returns a new session with model m, the roles given in input data and the
// selected mode
func NewSessionFromInput(in *inp.Input, m Model) (o *Session, err error) {

	// new session
	o = NewSession()
	o.ShowMsg = in.Verbose
	o.Info.Title = in.Data.Title
	o.Info.Desc = in.Data.Desc
	o.Info.Extra["key"] = in.Key
	o.NDM, o.NDF = in.Data.NDM, in.Data.NDF
	dat := in.Analysis
	o.VarStep = VarStepData{DtMin: dat.DtMin, DtMax: dat.DtMax, Jd: dat.Jd}
	o.SetModel(m)

	// roles
	roles := []struct {
		role Role
		st   inp.StrategyData
	}{
		{RoleSystem, dat.System},
		{RoleNumberer, dat.Numberer},
		{RoleHandler, dat.Handler},
		{RoleTest, dat.Test},
		{RoleAlgorithm, dat.Algorithm},
		{RoleIntegrator, dat.Integrator},
		{RoleEigenSystem, dat.EigenSystem},
	}
	for _, r := range roles {
		if r.st.Type == "" {
			continue
		}
		if r.role == RoleIntegrator && dat.Mode == "eigen" {
			continue
		}
		err = o.ConfigureByName(r.role, r.st.Type, r.st.Prms)
		if err != nil {
			return nil, chk.Err("cannot configure %v:\n%v", r.role, err)
		}
	}
	if nt, ok := o.slots[RoleTest].obj.(*NormTest); ok {
		nt.ShowR = dat.ShowR
	}

	// load function of transient integrators
	if dat.Fcn != "" {
		fcn, e := in.Functions.Get(dat.Fcn)
		if e != nil {
			return nil, e
		}
		if nm, ok := o.slots[RoleIntegrator].obj.(*Newmark); ok {
			nm.Series = fcn
		}
	}

	// mode
	switch dat.Mode {
	case "static":
		err = o.SelectStaticMode()
	case "transient":
		err = o.SelectTransientMode()
	case "vartransient":
		err = o.SelectVariableTransientMode()
	case "particle":
		err = o.SelectParticleMode()
	case "eigen":
		err = o.SelectEigenMode(dat.Neigen)
	default:
		err = chk.Err("analysis mode %q is invalid", dat.Mode)
	}
	if err != nil {
		return nil, err
	}
	if o.ShowMsg {
		io.Pf("> session %q ready\n", in.Key)
	}
	return
}
