// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import "github.com/caarlos0/env/v11"

// Env holds environment overrides of input data
type Env struct {
	DirOut  string `env:"GOREL_DIROUT"`  // overrides data.dirout
	Verbose bool   `env:"GOREL_VERBOSE"` // show messages
}

// LoadEnv parses the environment
func LoadEnv() (o Env, err error) {
	err = env.Parse(&o)
	return
}

// Apply applies the overrides to the input data
func (o Env) Apply(in *Input) {
	if o.DirOut != "" {
		in.DirOut = o.DirOut
	}
	if o.Verbose {
		in.Verbose = true
	}
}
