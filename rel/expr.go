// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rel

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// names of response quantities available to limit-state expressions
const (
	NameLambda = "lambda" // load factor
	NameTime   = "time"   // pseudo time
)

// lsfFunctions holds the functions available to limit-state expressions
var lsfFunctions = map[string]function.Function{
	"abs":   stdlib.AbsoluteFunc,
	"min":   stdlib.MinFunc,
	"max":   stdlib.MaxFunc,
	"pow":   stdlib.PowFunc,
	"log":   stdlib.LogFunc,
	"floor": stdlib.FloorFunc,
	"ceil":  stdlib.CeilFunc,
}

// Expression is a parsed limit-state expression. ex: "0.05 - u_2", "x_1*x_2 - pow(x_3, 2)"
//  Variables: x_<rvtag> (random variables), u_<dof> (displacements), lambda, time
type Expression struct {
	Src  string         // source
	Vars []string       // sorted names of variables
	expr hcl.Expression // syntax tree
}

// ParseExpression parses and checks a limit-state expression
func ParseExpression(src string) (o *Expression, err error) {
	if strings.TrimSpace(src) == "" {
		return nil, chk.Err("limit-state expression is empty")
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "lsf", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, chk.Err("cannot parse limit-state expression %q:\n%v", src, diags.Error())
	}
	o = &Expression{Src: src, expr: expr}

	// variables
	seen := make(map[string]bool)
	for _, t := range expr.Variables() {
		if len(t) != 1 {
			return nil, chk.Err("limit-state expression %q: traversal of %q is not allowed", src, t.RootName())
		}
		name := t.RootName()
		if _, _, e := splitVar(name); e != nil {
			return nil, chk.Err("limit-state expression %q: %v", src, e)
		}
		if !seen[name] {
			seen[name] = true
			o.Vars = append(o.Vars, name)
		}
	}
	sort.Strings(o.Vars)

	// functions
	fcns := make(map[string]bool)
	walkForFunctions(expr, fcns)
	for name := range fcns {
		if _, ok := lsfFunctions[name]; !ok {
			return nil, chk.Err("limit-state expression %q: function %q is not available", src, name)
		}
	}
	return
}

// Eval evaluates the expression. vals must hold every variable in Vars
func (o *Expression) Eval(vals map[string]float64) (res float64, err error) {
	vars := make(map[string]cty.Value, len(o.Vars))
	for _, name := range o.Vars {
		v, ok := vals[name]
		if !ok {
			return 0, chk.Err("limit-state expression %q: variable %q has no value", o.Src, name)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, chk.Err("limit-state expression %q: variable %q is not finite (%v)", o.Src, name, v)
		}
		vars[name] = cty.NumberFloatVal(v)
	}
	ctx := &hcl.EvalContext{Variables: vars, Functions: lsfFunctions}
	val, diags := o.expr.Value(ctx)
	if diags.HasErrors() {
		return 0, chk.Err("cannot evaluate limit-state expression %q:\n%v", o.Src, diags.Error())
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return 0, chk.Err("limit-state expression %q does not evaluate to a number", o.Src)
	}
	res, _ = val.AsBigFloat().Float64()
	if math.IsInf(res, 0) || math.IsNaN(res) {
		return 0, chk.Err("limit-state expression %q evaluates to %v", o.Src, res)
	}
	return
}

// Uses tells whether the expression references name
func (o *Expression) Uses(name string) bool {
	i := sort.SearchStrings(o.Vars, name)
	return i < len(o.Vars) && o.Vars[i] == name
}

// NeedsResponse tells whether the expression references response quantities
func (o *Expression) NeedsResponse() bool {
	for _, name := range o.Vars {
		if kind, _, _ := splitVar(name); kind != "x" {
			return true
		}
	}
	return false
}

// VarName returns the variable name of a random variable (x) or displacement (u). ex: x_3
func VarName(kind string, id int) string {
	return kind + "_" + strconv.Itoa(id)
}

// splitVar splits a variable name into kind and id
//  x_<tag> => "x", tag    u_<dof> => "u", dof    lambda, time => name, -1
func splitVar(name string) (kind string, id int, err error) {
	if name == NameLambda || name == NameTime {
		return name, -1, nil
	}
	i := strings.IndexByte(name, '_')
	if i < 0 {
		return "", 0, chk.Err("variable %q is not available; use x_<tag>, u_<dof>, lambda or time", name)
	}
	kind = name[:i]
	if kind != "x" && kind != "u" {
		return "", 0, chk.Err("variable %q is not available; use x_<tag>, u_<dof>, lambda or time", name)
	}
	id, e := strconv.Atoi(name[i+1:])
	if e != nil || id < 0 || strconv.Itoa(id) != name[i+1:] {
		return "", 0, chk.Err("variable %q has an invalid number", name)
	}
	return
}

// walkForFunctions collects the names of the functions called in expr
func walkForFunctions(expr hclsyntax.Expression, fcns map[string]bool) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		fcns[e.Name] = true
		for _, arg := range e.Args {
			walkForFunctions(arg, fcns)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, fcns)
		walkForFunctions(e.RHS, fcns)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, fcns)
		walkForFunctions(e.TrueResult, fcns)
		walkForFunctions(e.FalseResult, fcns)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, fcns)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, fcns)
	}
}
