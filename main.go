// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"

	"github.com/cpmech/gorel/fem"
	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gorel/mdl/spring"
	"github.com/cpmech/gorel/rel"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

var (
	verbose   bool   // show messages
	dirout    string // overrides the output directory of input files
	erasePrev bool   // erase previous results
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("\nERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	rootCmd := &cobra.Command{
		Use:           "gorel",
		Short:         "structural analysis sessions and first-order reliability",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show messages")
	rootCmd.PersistentFlags().StringVar(&dirout, "dirout", "", "output directory")
	rootCmd.PersistentFlags().BoolVar(&erasePrev, "erase", true, "erase previous results")

	runCmd := &cobra.Command{
		Use:   "run [file.rel]",
		Short: "run the analysis of an input file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalysis,
	}

	eigenCmd := &cobra.Command{
		Use:   "eigen [file.rel]",
		Short: "extract eigenpairs of the model of an input file",
		Args:  cobra.ExactArgs(1),
		RunE:  runEigen,
	}

	fosmCmd := &cobra.Command{
		Use:   "fosm [file.rel]",
		Short: "run the first-order second-moment analysis of an input file",
		Args:  cobra.ExactArgs(1),
		RunE:  runFosm,
	}

	rootCmd.AddCommand(runCmd, eigenCmd, fosmCmd)
	if err := rootCmd.Execute(); err != nil {
		io.PfRed("\nERROR: %v\n", err)
		os.Exit(1)
	}
}

// load reads an input file and builds the model and the session
func load(fn string) (in *inp.Input, s *fem.Session, err error) {
	in, err = inp.ReadInput(fn, erasePrev)
	if err != nil {
		return
	}
	if dirout != "" {
		in.DirOut = dirout
	}
	if verbose {
		in.Verbose = true
		io.Pf("%v", in.GetInfo())
	}
	m, err := spring.NewModel(&in.Model)
	if err != nil {
		return
	}
	s, err = fem.NewSessionFromInput(in, m)
	return
}

func runAnalysis(cmd *cobra.Command, args []string) (err error) {
	in, s, err := load(args[0])
	if err != nil {
		return
	}
	if s.Mode() == fem.ModeEigen {
		return chk.Err("input file %q selects eigen mode; use the eigen command", args[0])
	}
	s.StartTimer()
	err = s.Analyze(in.Analysis.Nsteps, in.Analysis.Dt)
	elapsed := s.StopTimer()
	if err != nil {
		return
	}
	sol := s.Solution()
	var buf bytes.Buffer
	io.Ff(&buf, "%23s %23s\n", "t", "λ")
	io.Ff(&buf, "%23g %23g\n", sol.T, sol.Lambda)
	io.Ff(&buf, "%6s %23s\n", "dof", "u")
	for i, u := range sol.U {
		io.Ff(&buf, "%6d %23.15e\n", i, u)
	}
	io.WriteFileD(in.DirOut, in.Key+".res", &buf)
	io.Pf("%s", buf.String())
	io.Pfgreen("steps = %d  iterations = %d  elapsed = %v\n", s.Stats.NumSteps, s.Stats.NumIter, elapsed)
	return
}

func runEigen(cmd *cobra.Command, args []string) (err error) {
	in, s, err := load(args[0])
	if err != nil {
		return
	}
	if s.Mode() != fem.ModeEigen {
		err = s.SelectEigenMode(in.Analysis.Neigen)
		if err != nil {
			return
		}
	}
	a := in.Analysis
	pairs, err := s.Eigen(a.EigenSystem.Type, a.Shift, a.Generalized, a.Smallest)
	if err != nil {
		return
	}
	var buf bytes.Buffer
	for k, p := range pairs {
		io.Ff(&buf, "λ%d = %23.15e  φ%d = %v\n", k, p.Value, k, p.Vector)
	}
	io.WriteFileD(in.DirOut, in.Key+".eig", &buf)
	io.Pf("%s", buf.String())
	return
}

func runFosm(cmd *cobra.Command, args []string) (err error) {
	in, s, err := load(args[0])
	if err != nil {
		return
	}
	d, err := rel.NewDomainFromInput(in)
	if err != nil {
		return
	}
	var gfun rel.GFunEvaluator
	if in.Reliability.Analysis {
		gfun = &rel.SessionGFun{Session: s, Domain: d, Nsteps: in.Analysis.Nsteps, Dt: in.Analysis.Dt}
	} else {
		gfun = &rel.ExprGFun{Domain: d}
	}
	fosm := &rel.FOSM{
		Domain:  d,
		GFun:    gfun,
		GradG:   &rel.FiniteDifferenceGradG{GFun: gfun, Domain: d, PerturbationFactor: in.Reliability.PerturbationFactor},
		Verbose: in.Verbose,
	}
	s.StartTimer()
	res, err := fosm.Analyze()
	elapsed := s.StopTimer()
	if err != nil {
		return
	}
	for _, w := range res.Warnings {
		io.PfYel("%v\n", w)
	}
	var buf bytes.Buffer
	res.Report(&buf)
	io.WriteFileD(in.DirOut, in.Key+".fosm", &buf)
	io.Pf("%s", buf.String())
	if verbose {
		io.Pfgreen("file <%s/%s.fosm> written (%v)\n", in.DirOut, in.Key, elapsed)
	}
	return
}
