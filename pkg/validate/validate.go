// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validate holds the value checks applied to element values: prefix
// matching against enumerations, predicate validators and failure message
// templates.
package validate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"tailscale.com/util/must"
)

// Candidate is a value being validated.
type Candidate struct {
	// Name is the element name, with a leading "-" for switches.
	Name string
	// Arg is the value under test.
	Arg string
	// Opt is the element's attribute record, keyed by attribute name
	// without the leading dash.
	Opt map[string]any
}

// A Validator decides whether a candidate value is acceptable. A false
// result or a non-nil error both reject the value.
type Validator interface {
	Validate(Candidate) (bool, error)
}

// Func adapts a function to the Validator interface.
type Func func(Candidate) (bool, error)

func (f Func) Validate(c Candidate) (bool, error) { return f(c) }

// Named gives v the identity id. Validators that are equal in behaviour
// should share an id; callers caching compiled definitions rely on it.
func Named(id string, v Validator) Validator {
	return named{id: id, Validator: v}
}

type named struct {
	id string
	Validator
}

func (n named) String() string { return n.id }

// Expr is a Validator compiled from a boolean expression. The expression
// sees three variables: arg (string), name (string) and opt (map).
//
//	int(arg) >= 0 && int(arg) < 65536
//	arg matches "^[a-z]+$"
//	arg in ["udp", "tcp"] || opt.default == arg
type Expr struct {
	src  string
	prog *vm.Program
}

// ErrEmptyExpr is returned by Compile for an empty expression.
var ErrEmptyExpr = errors.New("empty validation expression")

func exprEnv(c Candidate) map[string]any {
	opt := c.Opt
	if opt == nil {
		opt = map[string]any{}
	}
	return map[string]any{
		"arg":  c.Arg,
		"name": c.Name,
		"opt":  opt,
	}
}

// Compile compiles src into an Expr.
func Compile(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyExpr
	}
	prog, err := expr.Compile(src, expr.Env(exprEnv(Candidate{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &Expr{src: src, prog: prog}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	return must.Get(Compile(src))
}

// String returns the expression source.
func (e *Expr) String() string { return e.src }

func (e *Expr) Validate(c Candidate) (bool, error) {
	out, err := expr.Run(e.prog, exprEnv(c))
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Expand substitutes $name, $arg and ${opt.<attr>} in a failure message
// template. Unknown variables expand to "".
func Expand(tmpl string, c Candidate) string {
	return os.Expand(tmpl, func(v string) string {
		switch v {
		case "name":
			return c.Name
		case "arg":
			return c.Arg
		case "$":
			return "$"
		}
		if attr, ok := strings.CutPrefix(v, "opt."); ok {
			if x, ok := c.Opt[attr]; ok && x != nil {
				return fmt.Sprint(x)
			}
		}
		return ""
	})
}

// Run applies v to c and turns a rejection into an error. msg is the
// element's message template, or "" for the default message
// `<name> value "<arg>" fails <what>`.
func Run(v Validator, c Candidate, msg, what string) error {
	ok, err := v.Validate(c)
	if ok && err == nil {
		return nil
	}
	if msg != "" {
		return &Failure{Candidate: c, Msg: Expand(msg, c), Err: err}
	}
	if what == "" {
		what = "validation"
	}
	return &Failure{
		Candidate: c,
		Msg:       fmt.Sprintf("%s value \"%s\" fails %s", c.Name, c.Arg, what),
		Err:       err,
	}
}

// Failure is a rejected value.
type Failure struct {
	Candidate Candidate
	Msg       string
	Err       error // evaluation error, if any
}

func (f *Failure) Error() string { return f.Msg }

func (f *Failure) Unwrap() error { return f.Err }
