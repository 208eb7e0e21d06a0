// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"testing"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gorel/mdl/spring"
	"github.com/cpmech/gorel/tests"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// newSession reads an input file and returns a session ready to run
func newSession(tst *testing.T, fn string) (*inp.Input, *fem.Session) {
	in, err := inp.ReadInput(fn, false)
	if err != nil {
		tst.Fatalf("cannot read input file:\n%v", err)
	}
	m, err := spring.NewModel(&in.Model)
	if err != nil {
		tst.Fatalf("cannot allocate model:\n%v", err)
	}
	s, err := fem.NewSessionFromInput(in, m)
	if err != nil {
		tst.Fatalf("cannot allocate session:\n%v", err)
	}
	return in, s
}

func Test_chain01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("chain01. two linear springs in series")

	_, s := newSession(tst, "../../inp/data/chain.rel")
	tests.CompareResults(tst, s, "cmp/chain.cmp", 0, 1e-15, chk.Verbose)

	// the same results in millimetres
	err := s.InitializeAnalysis()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	tests.CompareResults(tst, s, "cmp/chain-mm.cmp", 0, 1e-15, chk.Verbose)
	chk.Int(tst, "steps", s.Stats.NumSteps, 4)
}

func Test_hardchain01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hardchain01. hard spring past yield")

	_, s := newSession(tst, "data/hardchain.rel")
	tests.CompareResults(tst, s, "cmp/hardchain.cmp", 0, 1e-12, chk.Verbose)

	// linear steps converge in one iteration; the yield steps need more
	if s.Stats.NumIter <= s.Stats.NumSteps {
		tst.Errorf("hardening steps should need more than one iteration. nit=%d", s.Stats.NumIter)
	}
	if chk.Verbose {
		io.Pforan("steps = %d  iterations = %d\n", s.Stats.NumSteps, s.Stats.NumIter)
	}
}

func Test_hardchain02(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hardchain02. tangent stiffness")

	in, err := inp.ReadInput("data/hardchain.rel", false)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	m, err := spring.NewModel(&in.Model)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	for _, u := range [][]float64{
		{0, 0.005, 0.0075},  // elastic
		{0, 0.060, 0.0675},  // hardened
		{0, -0.050, -0.060}, // hardened in compression
		{0.02, 0.025, 0.03}, // rigid shift
	} {
		tests.CheckTangent(tst, io.Sf("K @ %v", u), m, u, 1e-6, 1e-6, chk.Verbose)
	}
}

func Test_hardening01(tst *testing.T) {

	//tests.Verbose()
	chk.PrintTitle("hardening01. suddenly loaded hard spring with mass damping")

	in, s := newSession(tst, "../../inp/data/hardening.rel")
	if s.Mode() != fem.ModeVariableTransient {
		tst.Errorf("variable transient mode expected; got %v", s.Mode())
		return
	}
	// consistent initial acceleration a0 = P/m
	s.Solution().A[1] = 2
	err := s.Analyze(in.Analysis.Nsteps, in.Analysis.Dt)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	sol := s.Solution()
	tf := float64(in.Analysis.Nsteps) * in.Analysis.Dt
	chk.Float64(tst, "tf", 1e-12, sol.T, tf)
	chk.Float64(tst, "u0", 1e-17, sol.U[0], 0)

	// undamped peak from P⋅u = k⋅dy²/2 + k⋅dy⋅x + h⋅k⋅x²/2 with x = u - dy
	upeak := 0.01 + (1+math.Sqrt(1.3))/10
	if chk.Verbose {
		io.Pforan("u(tf) = %v  upeak = %v\n", sol.U[1], upeak)
	}
	if math.IsNaN(sol.U[1]) || sol.U[1] <= 0 || sol.U[1] > upeak {
		tst.Errorf("displacement %v is out of range (0, %v]", sol.U[1], upeak)
	}
	if s.Stats.NumSteps < in.Analysis.Nsteps {
		tst.Errorf("at least %d steps expected; got %d", in.Analysis.Nsteps, s.Stats.NumSteps)
	}
}
