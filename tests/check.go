// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Results holds numerical results of one step
type Results struct {
	Status     string    // status message
	LoadFactor float64   // load factor
	Time       float64   // time
	Disp       []float64 // [ndof] displacements
	DispMult   float64   // displacements multiplier
	Note       string    // note about the reference solution
}

// ResultsSet is a set of comparison results
type ResultsSet []*Results

// CompareResults runs one step of the session per entry of the comparison file and checks the
// load factor, time and displacements
func CompareResults(tst *testing.T, sess *fem.Session, cmpfname string, dt, tolu float64, verbose bool) {

	// read file with comparison results
	defer func() {
		if r := recover(); r != nil {
			tst.Errorf("CompareResults: ReadFile failed:%v\n", r)
		}
	}()
	buf := io.ReadFile(cmpfname)

	// unmarshal json
	var cmpSet ResultsSet
	err := json.Unmarshal(buf, &cmpSet)
	if err != nil {
		tst.Errorf("CompareResults: Unmarshal failed:\n%v", err)
		return
	}

	// run comparisons
	dmult := 1.0
	for idx, cmp := range cmpSet {

		// displacements multiplier
		if idx == 0 && math.Abs(cmp.DispMult) > 1e-10 {
			dmult = cmp.DispMult
		}

		// run step
		if verbose {
			io.PfYel("\n\nstep = %d . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . .\n", idx)
		}
		err = sess.Analyze(1, dt)
		if err != nil {
			tst.Errorf("CompareResults: step %d failed:\n%v", idx, err)
			return
		}
		sol := sess.Solution()
		if verbose {
			io.Pfyel("time = %v  λ = %v\n", sol.T, sol.Lambda)
		}

		// check load factor and time
		if cmp.LoadFactor != 0 {
			chk.AnaNum(tst, "λ", 1e-14, sol.Lambda, cmp.LoadFactor, verbose)
		}
		if cmp.Time != 0 {
			chk.AnaNum(tst, "t", 1e-14, sol.T, cmp.Time, verbose)
		}

		// check displacements
		if verbose {
			io.Pfgreen(". . . checking displacements . . .\n")
		}
		if len(cmp.Disp) != len(sol.U) {
			tst.Errorf("CompareResults: step %d: reference has %d displacements; solution has %d", idx, len(cmp.Disp), len(sol.U))
			return
		}
		for dof, ucmp := range cmp.Disp {
			chk.AnaNum(tst, io.Sf("u%d", dof), tolu, sol.U[dof], ucmp*dmult, verbose)
		}
	}
}
