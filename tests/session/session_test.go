// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gorel/mdl/spring"
	"github.com/cpmech/gorel/tests"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// twoSprings returns two linear springs in series (k1=2000, k2=1000) with a tip load of 10
func twoSprings(tst *testing.T) *spring.Chain {
	c, err := spring.NewChain(&inp.ModelData{
		Springs: []*inp.SpringData{{Tag: 1, K: 2000}, {Tag: 2, K: 1000}},
		Nodes:   []*inp.NodeData{{Tag: 0, Fixed: true}, {Tag: 1, Mass: 1}, {Tag: 2, Mass: 1, Load: 10}},
	})
	if err != nil {
		tst.Fatalf("cannot allocate chain:\n%v", err)
	}
	return c
}

// roles holds one tracked object per role
type roles struct {
	sys *tests.TrackedSystem
	num *tests.TrackedNumberer
	hdl *tests.TrackedHandler
	tst *tests.TrackedTest
	alg *tests.TrackedAlgorithm
	lc  *tests.TrackedLoadControl
}

// configureStatic configures tracked objects for a static analysis
func configureStatic(tst *testing.T, s *fem.Session, tr *tests.Tracker) (r roles) {
	r.sys = tests.NewTrackedSystem("sys", tr)
	r.num = tests.NewTrackedNumberer("num", tr)
	r.hdl = tests.NewTrackedHandler("hdl", tr)
	r.tst = tests.NewTrackedTest("tst", tr, 1e-10, 10)
	r.alg = tests.NewTrackedAlgorithm("alg", tr, nil)
	r.lc = tests.NewTrackedLoadControl("lc", tr, 0.5)
	for _, c := range []struct {
		role fem.Role
		obj  any
	}{
		{fem.RoleSystem, r.sys},
		{fem.RoleNumberer, r.num},
		{fem.RoleHandler, r.hdl},
		{fem.RoleTest, r.tst},
		{fem.RoleAlgorithm, r.alg},
		{fem.RoleIntegrator, r.lc},
	} {
		err := s.Configure(c.role, c.obj)
		if err != nil {
			tst.Fatalf("cannot configure %v:\n%v", c.role, err)
		}
	}
	return
}

func Test_configure01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("configure01. ownership, release and handles")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	sys1 := tests.NewTrackedSystem("sys1", tr)
	err := s.Configure(fem.RoleSystem, sys1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	h := s.Handle(fem.RoleSystem)
	obj, err := h.Get()
	if err != nil || obj != sys1 {
		tst.Errorf("handle should return sys1. err=%v", err)
		return
	}

	// same object again: no-op
	err = s.Configure(fem.RoleSystem, sys1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "sys1: freed", sys1.Freed, 0)

	// the same object cannot occupy two slots
	err = s.Configure(fem.RoleEigenSystem, sys1)
	if !errors.Is(err, fem.ErrConfiguration) {
		tst.Errorf("configuration error expected; got %v", err)
	}

	// overwrite releases the previous occupant once and invalidates handles
	sys2 := tests.NewTrackedSystem("sys2", tr)
	err = s.Configure(fem.RoleSystem, sys2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "sys1: freed", sys1.Freed, 1)
	chk.Int(tst, "sys2: freed", sys2.Freed, 0)
	_, err = h.Get()
	if !errors.Is(err, fem.ErrStaleHandle) {
		tst.Errorf("stale handle expected; got %v", err)
	}
	if s.Occupant(fem.RoleSystem) != sys2 {
		tst.Errorf("sys2 should occupy the system slot")
	}

	// incompatible objects
	err = s.Configure(fem.RoleSystem, tests.NewTrackedNumberer("num", tr))
	var ce *fem.ConfigurationError
	if !errors.As(err, &ce) {
		tst.Errorf("configuration error expected; got %v", err)
		return
	}
	if ce.Role != fem.RoleSystem {
		tst.Errorf("error should name the system role; got %v", ce.Role)
	}
	if s.Configure(fem.RoleNumberer, nil) == nil {
		tst.Errorf("nil object should have been rejected")
	}
	if s.Configure(fem.RoleNone, tests.NewTrackedNumberer("num", tr)) == nil {
		tst.Errorf("invalid role should have been rejected")
	}
	if s.Occupant(fem.RoleSystem) != sys2 {
		tst.Errorf("failed configurations should not change the slot")
	}

	// factory
	if s.ConfigureByName(fem.RoleTest, "unknown", nil) == nil {
		tst.Errorf("unknown factory name should have been rejected")
	}
	chk.Strings(tst, "tests", fem.Names(fem.RoleTest), []string{"energyincr", "fixednumiter", "normdispincr", "normunbalance"})
	err = s.ConfigureByName(fem.RoleTest, "normdispincr", nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if nt, ok := s.Occupant(fem.RoleTest).(*fem.NormTest); !ok || nt.Key != "dispincr" {
		tst.Errorf("norm test on displacement increments expected; got %T", s.Occupant(fem.RoleTest))
	}

	// wipe analysis releases every role once; repeated wipes do nothing
	ht := s.Handle(fem.RoleTest)
	s.WipeAnalysis()
	s.WipeAnalysis()
	chk.Int(tst, "sys2: freed", sys2.Freed, 1)
	chk.Int(tst, "sys1: freed", sys1.Freed, 1)
	if _, err = ht.Get(); !errors.Is(err, fem.ErrStaleHandle) {
		tst.Errorf("stale handle expected; got %v", err)
	}
	for _, role := range fem.AllRoles {
		if s.Occupant(role) != nil {
			tst.Errorf("%v slot should be empty", role)
		}
	}
}

func Test_select01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("select01. required roles and mode switching")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	if !errors.Is(s.SelectStaticMode(), fem.ErrConfiguration) {
		tst.Errorf("a session without model cannot select a mode")
	}
	s.SetModel(twoSprings(tst))

	// missing roles
	var me *fem.MissingRoleError
	if err := s.SelectStaticMode(); !errors.As(err, &me) || me.Role != fem.RoleSystem {
		tst.Errorf("missing system expected; got %v", err)
	}
	r := configureStatic(tst, s, tr)

	// static
	err := s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if s.Mode() != fem.ModeStatic {
		tst.Errorf("static mode expected; got %v", s.Mode())
	}
	chk.Int(tst, "links", tr.Count("link:"), 6)
	chk.Int(tst, "links(static)", tr.Count("link:sys:static"), 1)

	// re-selecting releases the previous analysis exactly once
	tr.Reset()
	err = s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "unlinks", tr.Count("unlink:"), 6)
	chk.Int(tst, "links", tr.Count("link:"), 6)
	chk.Int(tst, "frees", tr.Count("free:"), 0)
	chk.Int(tst, "sys: links", r.sys.Links, 1)

	// transient integrator in static mode
	err = s.Configure(fem.RoleIntegrator, tests.NewTrackedNewmark("nm", tr))
	var ce *fem.ConfigurationError
	if !errors.As(err, &ce) || ce.Role != fem.RoleIntegrator || ce.Mode != fem.ModeStatic {
		tst.Errorf("integrator incompatibility expected; got %v", err)
	}

	// failed selections keep the active analysis
	a := s.Analysis()
	tr.Reset()
	if s.SelectTransientMode() == nil {
		tst.Errorf("transient mode with a static integrator should have been rejected")
	}
	if s.SelectParticleMode() == nil {
		tst.Errorf("particle mode without remesher should have been rejected")
	}
	if s.SelectEigenMode(0) == nil {
		tst.Errorf("eigen mode with k=0 should have been rejected")
	}
	if s.Analysis() != a || s.Mode() != fem.ModeStatic {
		tst.Errorf("failed selections should not change the analysis")
	}
	chk.Int(tst, "events", len(tr.Events), 0)

	// eigen links numberer, handler and system only
	err = s.SelectEigenMode(1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "unlinks", tr.Count("unlink:"), 6)
	chk.Int(tst, "links", tr.Count("link:"), 3)
	chk.Int(tst, "links(eigen)", tr.Count("link:num:eigen")+tr.Count("link:hdl:eigen")+tr.Count("link:sys:eigen"), 3)
	if !errors.Is(s.Analyze(1, 0), fem.ErrConfiguration) {
		tst.Errorf("eigen mode cannot be analysed")
	}

	// wipe analysis, reconfigure and select transient
	s.WipeAnalysis()
	chk.Int(tst, "frees", tr.Count("free:"), 6)
	chk.Int(tst, "sys: links", r.sys.Links, 0)
	if s.Mode() != fem.ModeNone {
		tst.Errorf("mode should be none after wipe analysis")
	}
	r = configureStatic(tst, s, tr)
	err = s.Configure(fem.RoleIntegrator, tests.NewTrackedNewmark("nm", tr))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "lc: freed", r.lc.Freed, 1)
	err = s.SelectTransientMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if !errors.Is(s.Analyze(1, 0), fem.ErrConfiguration) {
		tst.Errorf("transient analysis needs a positive time step")
	}
	if !errors.Is(s.Analyze(-1, 0.1), fem.ErrConfiguration) {
		tst.Errorf("negative number of steps should have been rejected")
	}
}

func Test_swap01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("swap01. replacing a role while an analysis is active")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	s.SetModel(twoSprings(tst))
	r := configureStatic(tst, s, tr)
	err := s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = s.Analyze(1, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "num: calls", r.num.Calls, 1)

	tr.Reset()
	num2 := tests.NewTrackedNumberer("num2", tr)
	err = s.Configure(fem.RoleNumberer, num2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Strings(tst, "events", tr.Events, []string{"unlink:num:static", "link:num2:static", "free:num"})

	// the analysis re-runs its setup with the new numberer
	err = s.Analyze(1, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "num: calls", r.num.Calls, 1)
	chk.Int(tst, "num2: calls", num2.Calls, 1)
	chk.Array(tst, "u", 1e-15, s.Solution().U, []float64{0, 0.005, 0.015})
}

func Test_static01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("static01. strategies give the same solution")

	for _, c := range []struct {
		numberer, handler, algorithm, test string
		tol                                float64
	}{
		{"plain", "plain", "newton", "normunbalance", 1e-15},
		{"reverse", "plain", "newton", "normdispincr", 1e-15},
		{"plain", "penalty", "newton", "normunbalance", 1e-10},
		{"reverse", "penalty", "modnewton", "energyincr", 1e-10},
		{"plain", "plain", "linear", "fixednumiter", 1e-15},
	} {
		s := fem.NewSession()
		s.ShowMsg = chk.Verbose
		s.SetModel(twoSprings(tst))
		for _, rc := range []struct {
			role fem.Role
			name string
		}{
			{fem.RoleSystem, "dense"},
			{fem.RoleNumberer, c.numberer},
			{fem.RoleHandler, c.handler},
			{fem.RoleTest, c.test},
			{fem.RoleAlgorithm, c.algorithm},
			{fem.RoleIntegrator, "loadcontrol"},
		} {
			err := s.ConfigureByName(rc.role, rc.name, nil)
			if err != nil {
				tst.Errorf("test failed:\n%v", err)
				return
			}
		}
		err := s.SelectStaticMode()
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		s.StartTimer()
		err = s.Analyze(1, 0)
		if err != nil {
			tst.Errorf("%s/%s/%s failed:\n%v", c.numberer, c.handler, c.algorithm, err)
			return
		}
		if s.StopTimer() < 0 {
			tst.Errorf("wall time cannot be negative")
		}
		sol := s.Solution()
		chk.Float64(tst, "λ", 1e-15, sol.Lambda, 1)
		chk.Array(tst, c.numberer+"/"+c.handler+"/"+c.algorithm+": u", c.tol, sol.U, []float64{0, 0.005, 0.015})
		chk.Int(tst, "steps", s.Stats.NumSteps, 1)
		if c.algorithm != "linear" && len(s.TestNorms()) == 0 {
			tst.Errorf("convergence test should have recorded norms")
		}

		// initialize and run again
		err = s.InitializeAnalysis()
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Array(tst, "u (zeroed)", 1e-17, s.Solution().U, []float64{0, 0, 0})
		err = s.Analyze(1, 0)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Array(tst, "u (again)", c.tol, s.Solution().U, []float64{0, 0.005, 0.015})
	}
}

func Test_failing01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("failing01. solver failures revert the step")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	s.SetModel(twoSprings(tst))
	configureStatic(tst, s, tr)
	bad := &tests.FailingSystem{OkSolves: 1}
	err := s.Configure(fem.RoleSystem, bad)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// first step succeeds (linear model converges after one solve); second fails
	err = s.Analyze(2, 0)
	if !errors.Is(err, fem.ErrSolver) || !errors.Is(err, tests.ErrSolveFailed) {
		tst.Errorf("solver error expected; got %v", err)
		return
	}
	var se *fem.SolverError
	if errors.As(err, &se) {
		chk.String(tst, se.Op, "step 1")
	}
	sol := s.Solution()
	chk.Float64(tst, "λ (reverted)", 1e-15, sol.Lambda, 0.5)
	chk.Array(tst, "u (reverted)", 1e-15, sol.U, []float64{0, 0.0025, 0.0075})
	chk.Int(tst, "steps", s.Stats.NumSteps, 1)
}

func Test_wipe01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("wipe01. wipe discards everything")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	s.Info.Title = "two springs"
	s.Info.Extra["key"] = "chain"
	s.NDM, s.NDF = 1, 1
	s.SetModel(twoSprings(tst))
	r := configureStatic(tst, s, tr)
	err := s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	s.StartTimer()
	err = s.Analyze(2, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	s.StopTimer()
	h := s.Handle(fem.RoleHandler)

	s.Wipe()
	s.Wipe()
	if s.Model() != nil || s.Solution() != nil || s.Analysis() != nil {
		tst.Errorf("model, solution and analysis should be discarded")
	}
	chk.String(tst, s.Info.Title, "")
	chk.Int(tst, "extra", len(s.Info.Extra), 0)
	chk.Int(tst, "steps", s.Stats.NumSteps, 0)
	chk.Int(tst, "ndm", s.NDM, 0)
	if s.Stats.WallTime != 0 {
		tst.Errorf("wall time should be zero")
	}
	chk.Int(tst, "frees", tr.Count("free:"), 6)
	chk.Int(tst, "hdl: freed", r.hdl.Freed, 1)
	chk.Int(tst, "hdl: unlinks", r.hdl.Unlinks, 1)
	if _, err = h.Get(); !errors.Is(err, fem.ErrStaleHandle) {
		tst.Errorf("stale handle expected; got %v", err)
	}
	if !errors.Is(s.Analyze(1, 0), fem.ErrConfiguration) {
		tst.Errorf("wiped session cannot be analysed")
	}

	// the session can be reused
	s.SetModel(twoSprings(tst))
	configureStatic(tst, s, tr)
	err = s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = s.Analyze(2, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "u", 1e-15, s.Solution().U, []float64{0, 0.005, 0.015})
}

func Test_nomodel01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("nomodel01. session whose model was removed")

	tr := new(tests.Tracker)
	s := fem.NewSession()
	s.SetModel(twoSprings(tst))
	configureStatic(tst, s, tr)
	err := s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// the analysis stays selected but has nothing to analyse
	s.SetModel(nil)
	if !errors.Is(s.Analyze(1, 0), fem.ErrConfiguration) {
		tst.Errorf("Analyze without model should give a configuration error")
	}
	if !errors.Is(s.InitializeAnalysis(), fem.ErrConfiguration) {
		tst.Errorf("InitializeAnalysis without model should give a configuration error")
	}
	if !errors.Is(s.SelectStaticMode(), fem.ErrConfiguration) {
		tst.Errorf("SelectStaticMode without model should give a configuration error")
	}
	if s.Mode() != fem.ModeStatic {
		tst.Errorf("failed selection should keep the static analysis; got %v", s.Mode())
	}

	// eigen needs a model too
	s.SetModel(twoSprings(tst))
	err = s.SelectEigenMode(1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	s.SetModel(nil)
	if _, err = s.Eigen("dense", 0, true, true); !errors.Is(err, fem.ErrConfiguration) {
		tst.Errorf("Eigen without model should give a configuration error; got %v", err)
	}

	// a new model makes the session usable again
	s.SetModel(twoSprings(tst))
	pairs, err := s.Eigen("dense", 0, true, true)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "λ0", 1e-8, pairs[0].Value, 2000-math.Sqrt(2e6))
}

func Test_byname01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("byname01. factory parameters and rejected objects")

	// parameters of the factory with defaults
	obj, err := fem.New(fem.RoleTest, "normunbalance", dbf.Params{{N: "tol", V: 1e-3}})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	nt, ok := obj.(*fem.NormTest)
	if !ok {
		tst.Errorf("norm test expected; got %T", obj)
		return
	}
	chk.Float64(tst, "tol", 1e-17, nt.Tol, 1e-3)
	chk.Int(tst, "nmaxit", nt.NmaxIt, 20)
	obj, err = fem.New(fem.RoleHandler, "penalty", nil)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "alpha", 1e-17, obj.(*fem.PenaltyHandler).Alpha, 1e12)

	// a transient integrator is rejected in static mode and freed
	var tr tests.Tracker
	name := "tracked-newmark"
	if !contains(fem.Names(fem.RoleIntegrator), name) {
		fem.SetAllocator(fem.RoleIntegrator, name, func(prms dbf.Params) (any, error) {
			return tests.NewTrackedNewmark("newmark", &tr), nil
		})
	}
	s := fem.NewSession()
	s.SetModel(twoSprings(tst))
	r := configureStatic(tst, s, new(tests.Tracker))
	err = s.SelectStaticMode()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = s.ConfigureByName(fem.RoleIntegrator, name, nil)
	if !errors.Is(err, fem.ErrConfiguration) {
		tst.Errorf("configuration error expected; got %v", err)
		return
	}
	chk.Int(tst, "freed", tr.Count("free:newmark"), 1)
	if s.Occupant(fem.RoleIntegrator) != r.lc {
		tst.Errorf("load control should stay in the integrator slot; got %T", s.Occupant(fem.RoleIntegrator))
	}
}

// contains tells whether names has name
func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
