// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"slices"

	"github.com/yeetrun/argparse/pkg/validate"
)

// checkOne runs a value through the element's enumeration or validator and
// type check, and returns the value to store. Enumerations replace a
// prefix with the full entry.
func (p *parser) checkOne(name string, e *Element, v string) (string, error) {
	switch {
	case e.set.has(attrEnum):
		full, err := validate.Prefix(name+" value", v, e.Enum, p.c.opts.Exact)
		if err != nil {
			ee := wrapErr(EnumMismatch, err)
			var perr *validate.PrefixError
			if errors.As(err, &perr) {
				ee.Suggestion = perr.Suggestion()
			}
			return "", ee
		}
		v = full
	case e.Validator != nil:
		cand := validate.Candidate{Name: name, Arg: v, Opt: e.record()}
		if err := validate.Run(e.Validator, cand, e.ErrorMsg, e.ValidateMsg); err != nil {
			return "", wrapErr(ValidationFailed, err)
		}
	}
	if e.set.has(attrType) && !e.Type.Check(v) {
		return "", errorf(TypeMismatch, `%s value "%s" is not of the type %s`, name, v, e.Type)
	}
	return v, nil
}

// checkList is checkOne over every item of a list.
func (p *parser) checkList(name string, e *Element, vals []string) ([]string, error) {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		s, err := p.checkOne(name, e, v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// checkConstraints enforces -require, -forbid and -allow among the
// elements that are present.
func (p *parser) checkConstraints() error {
	c := p.c
	var present []string
	for _, name := range c.order {
		if p.present.Contains(name) {
			present = append(present, name)
		}
	}
	for _, name := range present {
		e := c.elems[name]
		for _, other := range e.Require {
			if !p.present.Contains(other) {
				return errorf(RequirementNotMet, "%s requires %s", e.displayName(), c.elems[other].displayName())
			}
		}
		for _, other := range e.Forbid {
			if p.present.Contains(other) {
				return errorf(ForbiddenCombination, "%s conflicts with %s", e.displayName(), c.elems[other].displayName())
			}
		}
	}
	for _, name := range present {
		e := c.elems[name]
		if !e.set.has(attrAllow) {
			continue
		}
		for _, other := range present {
			if other == name || other == "" || slices.Contains(e.Allow, other) {
				continue
			}
			return errorf(NotAllowedTogether, "%s doesn't allow %s", name, other)
		}
	}
	return nil
}
