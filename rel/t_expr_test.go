// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_expr01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("expr01. evaluation")

	vals := map[string]float64{"x_1": 2, "x_2": -3, "u_0": 0.5, "lambda": 0.25, "time": 4}
	for _, c := range []struct {
		src string
		res float64
	}{
		{"x_1 * x_2 + 1", -5},
		{"abs(x_2) - x_1", 1},
		{"pow(x_1, 3) - max(x_1, u_0, 7)", 1},
		{"min(x_1, x_2) / 2", -1.5},
		{"log(time, 2)", 2},
		{"floor(u_0) + ceil(lambda)", 1},
		{"x_1 > 1 ? lambda : time", 0.25},
		{"-(x_1 - 10)", 8},
	} {
		e, err := ParseExpression(c.src)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		res, err := e.Eval(vals)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Float64(tst, c.src, 1e-15, res, c.res)
	}
}

func Test_expr02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("expr02. variables and errors")

	e, err := ParseExpression("0.05 - u_12 + x_3*lambda + x_3")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Strings(tst, "vars", e.Vars, []string{"lambda", "u_12", "x_3"})
	if !e.Uses("u_12") || e.Uses("u_1") {
		tst.Errorf("Uses is incorrect")
	}
	if !e.NeedsResponse() {
		tst.Errorf("expression needs the response")
	}

	_, err = e.Eval(map[string]float64{"x_3": 1, "lambda": 1})
	if err == nil {
		tst.Errorf("missing variable should have been reported")
	}
	_, err = e.Eval(map[string]float64{"x_3": math.NaN(), "lambda": 1, "u_12": 0})
	if err == nil {
		tst.Errorf("NaN variable should have been reported")
	}

	for _, src := range []string{"x_a", "z_1", "x_-1", "x.y", "upper(x_1)", "x_1 +* 2", "u_007", "x_01", "u_0 + x_00"} {
		_, err = ParseExpression(src)
		if err == nil {
			tst.Errorf("%q should have been rejected", src)
		}
	}

	e, err = ParseExpression(`x_1 > 0 ? "a" : "b"`)
	if err == nil {
		_, err = e.Eval(map[string]float64{"x_1": 1})
		if err == nil {
			tst.Errorf("non-numeric result should have been rejected")
		}
	}

	e, err = ParseExpression("x_1 + 2")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if e.NeedsResponse() {
		tst.Errorf("expression does not need the response")
	}
	chk.String(tst, VarName("x", 1), "x_1")
}
