// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spring

import (
	"strings"
	"testing"

	"github.com/cpmech/gorel/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/utl"
)

func twoSprings() *inp.ModelData {
	return &inp.ModelData{
		Type: "chain",
		Springs: []*inp.SpringData{
			{Tag: 2, Law: "lin", K: 1000, Prm: "k2"},
			{Tag: 1, Law: "hard", K: 2000, Dy: 0.01, H: 0.5, Prm: "k1", PrmH: "h1"},
		},
		Nodes: []*inp.NodeData{
			{Tag: 0, Fixed: true},
			{Tag: 1, Mass: 1},
			{Tag: 2, Mass: 2, Load: 10, LoadPrm: "P"},
		},
	}
}

func Test_law01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("law01. linear and hardening laws")

	lin, err := New("lin")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = lin.Init(lin.GetPrms())
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	f, kt := lin.Force(0.002)
	chk.Float64(tst, "lin: f", 1e-15, f, 2)
	chk.Float64(tst, "lin: kt", 1e-15, kt, 1000)

	hard, err := New("hard")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = hard.Init(hard.GetPrms())
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	f, kt = hard.Force(0.005)
	chk.Float64(tst, "hard: f (elastic)", 1e-15, f, 5)
	chk.Float64(tst, "hard: kt (elastic)", 1e-15, kt, 1000)
	f, kt = hard.Force(0.03)
	chk.Float64(tst, "hard: f (yielded)", 1e-13, f, 10+100*0.02)
	chk.Float64(tst, "hard: kt (yielded)", 1e-13, kt, 100)
	f, _ = hard.Force(-0.03)
	chk.Float64(tst, "hard: f (yielded, negative)", 1e-13, f, -12)

	// tangent is consistent with the force
	h := 1e-7
	for _, d := range []float64{-0.02, -0.004, 0.003, 0.05} {
		fp, _ := hard.Force(d + h)
		fm, _ := hard.Force(d - h)
		_, kt = hard.Force(d)
		chk.Float64(tst, "hard: dfdd", 1e-6, (fp-fm)/(2*h), kt)
	}

	_, err = New("plastic")
	if err == nil {
		tst.Errorf("unknown law should have been rejected")
	}
	err = hard.Init(nil)
	if err == nil {
		tst.Errorf("missing parameters should have been rejected")
	}
	err = hard.Init([]*dbf.P{{N: "k", V: 1000}, {N: "h", V: 0.1}})
	if err == nil || !strings.Contains(err.Error(), `"dy"`) {
		tst.Errorf("missing dy should have been rejected; got %v", err)
	}
	err = lin.Set("dy", 1)
	if err == nil {
		tst.Errorf("unknown parameter should have been rejected")
	}
}

func Test_chain01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("chain01. assembly")

	c, err := NewChain(twoSprings())
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "ndof", c.Ndof(), 3)
	chk.Ints(tst, "fixed", c.Fixed(), []int{0})

	K := utl.Alloc(3, 3)
	u := []float64{0, 0.001, 0.003}
	err = c.Tangent(K, u)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Deep2(tst, "K", 1e-15, K, [][]float64{
		{2000, -2000, 0},
		{-2000, 3000, -1000},
		{0, -1000, 1000},
	})

	f := make([]float64, 3)
	err = c.Internal(f, u)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "fint", 1e-14, f, []float64{-2, 2 - 2, 2})

	M := utl.Alloc(3, 3)
	c.Mass(M)
	chk.Deep2(tst, "M", 1e-15, M, [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 2}})

	p := make([]float64, 3)
	c.Reference(p)
	chk.Array(tst, "pref", 1e-15, p, []float64{0, 0, 10})
}

func Test_chain02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("chain02. parameters")

	c, err := NewChain(twoSprings())
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Strings(tst, "names", c.Parameters(), []string{"P", "h1", "k1", "k2"})

	for _, name := range []string{"k1", "k2", "P", "h1"} {
		err = c.SetParameter(name, 7)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		v, err := c.GetParameter(name)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Float64(tst, name, 1e-15, v, 7)
	}
	chk.Float64(tst, "load", 1e-15, c.Loads[2], 7)

	err = c.SetParameter("E", 1)
	if err == nil {
		tst.Errorf("unknown parameter should have been rejected")
	}
	_, err = c.GetParameter("E")
	if err == nil {
		tst.Errorf("unknown parameter should have been rejected")
	}
}

func Test_chain03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("chain03. input errors")

	md := twoSprings()
	md.Springs[0].Tag = 3
	_, err := NewChain(md)
	if err == nil {
		tst.Errorf("non-contiguous spring tags should have been rejected")
	}

	md = twoSprings()
	md.Nodes = append(md.Nodes, &inp.NodeData{Tag: 1})
	_, err = NewChain(md)
	if err == nil {
		tst.Errorf("repeated node should have been rejected")
	}

	md = twoSprings()
	md.Nodes[1].Tag = 5
	_, err = NewChain(md)
	if err == nil {
		tst.Errorf("node out of range should have been rejected")
	}

	_, err = NewChain(&inp.ModelData{})
	if err == nil {
		tst.Errorf("empty chain should have been rejected")
	}

	md = twoSprings()
	md.Type = "truss"
	_, err = NewModel(md)
	if err == nil {
		tst.Errorf("unknown model should have been rejected")
	}

	md = twoSprings()
	m, err := NewModel(md)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Int(tst, "ndof", m.Ndof(), 3)
}
