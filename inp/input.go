// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.rel) JSON or YAML file
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"gopkg.in/yaml.v3"
)

// Data holds global data for analyses
type Data struct {
	Title  string `json:"title"  yaml:"title"`  // title of analysis
	Desc   string `json:"desc"   yaml:"desc"`   // description of analysis
	DirOut string `json:"dirout" yaml:"dirout"` // directory for output; e.g. /tmp/gorel
	NDM    int    `json:"ndm"    yaml:"ndm"`    // number of space dimensions
	NDF    int    `json:"ndf"    yaml:"ndf"`    // number of DOFs per node
}

// StrategyData selects one role object by name
type StrategyData struct {
	Type string     `json:"type" yaml:"type"` // name in the factory. ex: dense, plain, newton
	Prms dbf.Params `json:"prms" yaml:"prms"` // parameters. ex: [{"n":"tol", "v":1e-8}]
}

// AnalysisData holds the strategies and the stepping of the analysis
type AnalysisData struct {

	// mode
	Mode string `json:"mode" yaml:"mode"` // static, transient, vartransient, eigen, particle

	// strategies
	System      StrategyData `json:"system"      yaml:"system"`      // equation system
	Numberer    StrategyData `json:"numberer"    yaml:"numberer"`    // DOF numberer
	Handler     StrategyData `json:"handler"     yaml:"handler"`     // constraint handler
	Test        StrategyData `json:"test"        yaml:"test"`        // convergence test
	Algorithm   StrategyData `json:"algorithm"   yaml:"algorithm"`   // solution algorithm
	Integrator  StrategyData `json:"integrator"  yaml:"integrator"`  // static or transient integrator
	EigenSystem StrategyData `json:"eigensystem" yaml:"eigensystem"` // [optional] eigen system

	// stepping
	Nsteps int     `json:"nsteps" yaml:"nsteps"` // number of steps
	Dt     float64 `json:"dt"     yaml:"dt"`     // time step (transient modes)
	Fcn    string  `json:"fcn"    yaml:"fcn"`    // [optional] load multiplier function of transient modes
	DtMin  float64 `json:"dtmin"  yaml:"dtmin"`  // minimum time step (variable transient)
	DtMax  float64 `json:"dtmax"  yaml:"dtmax"`  // maximum time step (variable transient)
	Jd     int     `json:"jd"     yaml:"jd"`     // desired number of iterations (variable transient)
	ShowR  bool    `json:"showr"  yaml:"showr"`  // show residuals

	// eigen
	Neigen      int     `json:"neigen"      yaml:"neigen"`      // number of eigenpairs
	Shift       float64 `json:"shift"       yaml:"shift"`       // shift
	Generalized bool    `json:"generalized" yaml:"generalized"` // solve K φ = λ M φ
	Smallest    bool    `json:"smallest"    yaml:"smallest"`    // find smallest |λ - shift|
}

// SpringData holds one spring connecting node Tag-1 to node Tag
type SpringData struct {
	Tag  int     `json:"tag"  yaml:"tag"`  // tag of spring: 1..n
	Law  string  `json:"law"  yaml:"law"`  // lin or hard
	K    float64 `json:"k"    yaml:"k"`    // initial stiffness
	Dy   float64 `json:"dy"   yaml:"dy"`   // yield elongation (hard)
	H    float64 `json:"h"    yaml:"h"`    // hardening ratio: slope after yield = h⋅k (hard)
	Prm  string  `json:"prm"  yaml:"prm"`  // [optional] name of parameter driving k
	PrmH string  `json:"prmh" yaml:"prmh"` // [optional] name of parameter driving h
}

// NodeData holds one node of the chain
type NodeData struct {
	Tag     int     `json:"tag"     yaml:"tag"`     // tag of node: 0..n
	Mass    float64 `json:"mass"    yaml:"mass"`    // lumped mass
	Load    float64 `json:"load"    yaml:"load"`    // reference load
	Fixed   bool    `json:"fixed"   yaml:"fixed"`   // fixed node
	LoadPrm string  `json:"loadprm" yaml:"loadprm"` // [optional] name of parameter driving load
	MassPrm string  `json:"massprm" yaml:"massprm"` // [optional] name of parameter driving mass
}

// ModelData holds the model definition
type ModelData struct {
	Type    string        `json:"type"    yaml:"type"`    // name of model. ex: chain
	Springs []*SpringData `json:"springs" yaml:"springs"` // springs
	Nodes   []*NodeData   `json:"nodes"   yaml:"nodes"`   // nodes; those not given have zero mass and load
}

// RandomVariableData holds one random variable
type RandomVariableData struct {
	Tag  int     `json:"tag"  yaml:"tag"`  // tag
	Dist string  `json:"dist" yaml:"dist"` // distribution name (informative; only moments are used)
	Mean float64 `json:"mean" yaml:"mean"` // mean
	Stdv float64 `json:"stdv" yaml:"stdv"` // standard deviation
	Prm  string  `json:"prm"  yaml:"prm"`  // [optional] model parameter driven by this variable
}

// CorrelationData holds one correlation coefficient
type CorrelationData struct {
	Tag int     `json:"tag" yaml:"tag"` // tag; 0 => assigned sequentially
	Rv1 int     `json:"rv1" yaml:"rv1"` // tag of first random variable
	Rv2 int     `json:"rv2" yaml:"rv2"` // tag of second random variable
	Rho float64 `json:"rho" yaml:"rho"` // correlation coefficient
}

// LsfData holds one limit-state function
type LsfData struct {
	Tag  int    `json:"tag"  yaml:"tag"`  // tag
	Expr string `json:"expr" yaml:"expr"` // expression. ex: "0.01 - u_2"
}

// ReliabilityData holds the reliability domain
type ReliabilityData struct {
	Variables          []*RandomVariableData `json:"variables"    yaml:"variables"`    // random variables
	Correlations       []*CorrelationData    `json:"correlations" yaml:"correlations"` // correlations
	Lsfs               []*LsfData            `json:"lsfs"         yaml:"lsfs"`         // limit-state functions
	PerturbationFactor float64               `json:"perturbation" yaml:"perturbation"` // h = stdv / factor
	Analysis           bool                  `json:"analysis"     yaml:"analysis"`     // evaluate with the structural analysis
}

// Input holds all input data
type Input struct {

	// input
	Data        Data             `json:"data"        yaml:"data"`        // global data
	Functions   FuncsData        `json:"functions"   yaml:"functions"`   // time functions
	Model       ModelData        `json:"model"       yaml:"model"`       // model
	Analysis    AnalysisData     `json:"analysis"    yaml:"analysis"`    // analysis
	Reliability *ReliabilityData `json:"reliability" yaml:"reliability"` // [optional] reliability domain

	// derived
	DirOut  string // directory to save results
	Key     string // input key; e.g. mychain.rel => mychain
	Verbose bool   // show messages
}

// SetDefault sets default values
func (o *AnalysisData) SetDefault() {
	o.Mode = "static"
	o.System.Type = "dense"
	o.Numberer.Type = "plain"
	o.Handler.Type = "plain"
	o.Test.Type = "normunbalance"
	o.Algorithm.Type = "newton"
	o.Integrator.Type = "loadcontrol"
	o.Nsteps = 1
	o.Jd = 4
	o.Neigen = 1
	o.Smallest = true
}

// PostProcess checks and fixes values after decoding
func (o *AnalysisData) PostProcess() (err error) {
	switch o.Mode {
	case "static", "eigen":
	case "transient", "vartransient", "particle":
		if o.Integrator.Type == "loadcontrol" {
			o.Integrator.Type = "newmark"
		}
		if o.Dt < 1e-14 {
			return chk.Err("time step must be positive in %s mode. dt=%g is invalid", o.Mode, o.Dt)
		}
		if o.DtMax < 1e-14 {
			o.DtMax = o.Dt
		}
		if o.DtMin < 1e-14 {
			o.DtMin = o.Dt / 1024
		}
	default:
		return chk.Err("analysis mode %q is invalid", o.Mode)
	}
	if o.Nsteps < 0 {
		return chk.Err("number of steps must be non-negative. nsteps=%d is invalid", o.Nsteps)
	}
	if o.Neigen < 1 {
		o.Neigen = 1
	}
	return
}

// SetDefault sets default values
func (o *ReliabilityData) SetDefault() {
	o.PerturbationFactor = 1000
	o.Analysis = true
}

// PostProcess checks and fixes values after decoding
func (o *ReliabilityData) PostProcess() (err error) {
	if o.PerturbationFactor <= 0 {
		o.PerturbationFactor = 1000
	}
	for i, cc := range o.Correlations {
		if cc.Tag == 0 {
			cc.Tag = i + 1
		}
	}
	return
}

// ReadInput reads all input data from a .rel (JSON), .json, .yaml or .yml file
func ReadInput(path string, erasePrev bool) (o *Input, err error) {

	// read file
	b, err := readFile(path)
	if err != nil {
		return nil, chk.Err("ReadInput: cannot read input file %q:\n%v", path, err)
	}

	// decode
	o, err = Decode(b, filepath.Ext(path))
	if err != nil {
		return nil, chk.Err("ReadInput: cannot decode input file %q:\n%v", path, err)
	}

	// filename key and output directory
	fnkey := io.FnKey(filepath.Base(path))
	o.Key = fnkey
	o.DirOut = os.ExpandEnv(o.Data.DirOut)
	if o.DirOut == "" {
		o.DirOut = "/tmp/gorel/" + fnkey
	}

	// environment
	env, err := LoadEnv()
	if err != nil {
		return nil, chk.Err("ReadInput: cannot load environment:\n%v", err)
	}
	env.Apply(o)

	// erase previous results
	if erasePrev {
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, fnkey))
	}
	return
}

// readFile reads a file; io.ReadFile panics on failure
func readFile(path string) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, chk.Err("%v", r)
		}
	}()
	b = io.ReadFile(path)
	return
}

// Decode decodes input data. ext selects the format: .yaml or .yml => YAML; otherwise JSON
func Decode(b []byte, ext string) (o *Input, err error) {

	// set default values
	o = new(Input)
	o.Analysis.SetDefault()

	// decode
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, err
	}

	// a reliability section given without perturbation or analysis flags gets defaults too
	if o.Reliability != nil {
		rd := new(ReliabilityData)
		rd.SetDefault()
		if err = reDecode(b, ext, rd); err != nil {
			return nil, err
		}
		o.Reliability = rd
		err = o.Reliability.PostProcess()
		if err != nil {
			return nil, err
		}
	}

	// check
	err = o.Analysis.PostProcess()
	if err != nil {
		return nil, err
	}
	if o.Model.Type == "" {
		o.Model.Type = "chain"
	}
	for _, f := range o.Functions {
		if f.Name == "" {
			return nil, chk.Err("functions must have a name")
		}
	}
	if o.Analysis.Fcn != "" {
		if _, err = o.Functions.Get(o.Analysis.Fcn); err != nil {
			return nil, err
		}
	}
	return
}

// reDecode decodes the reliability section alone into rd
func reDecode(b []byte, ext string, rd *ReliabilityData) (err error) {
	var aux struct {
		Reliability *ReliabilityData `json:"reliability" yaml:"reliability"`
	}
	aux.Reliability = rd
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, &aux)
	}
	return json.Unmarshal(b, &aux)
}

// GetInfo returns a summary of the input data
func (o *Input) GetInfo() string {
	l := io.Sf("title    = %q\n", o.Data.Title)
	l += io.Sf("key      = %q\n", o.Key)
	l += io.Sf("dirout   = %q\n", o.DirOut)
	l += io.Sf("model    = %s (%d springs)\n", o.Model.Type, len(o.Model.Springs))
	l += io.Sf("mode     = %s\n", o.Analysis.Mode)
	if len(o.Functions) > 0 {
		l += io.Sf("%v\n", o.Functions)
	}
	if o.Reliability != nil {
		l += io.Sf("nrv      = %d\n", len(o.Reliability.Variables))
		l += io.Sf("nlsf     = %d\n", len(o.Reliability.Lsfs))
	}
	return l
}
