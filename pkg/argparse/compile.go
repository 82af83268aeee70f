// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/yeetrun/argparse/pkg/argtype"
	"github.com/yeetrun/argparse/pkg/shorthand"
	"github.com/yeetrun/argparse/pkg/tcllist"
	"github.com/yeetrun/argparse/pkg/validate"
	"tailscale.com/types/ptr"
	"tailscale.com/util/mak"
	"tailscale.com/util/must"
)

// Compiled is a definition compiled under a set of Options. It is
// immutable once built; a parse works on a Clone of it.
type Compiled struct {
	opts     Options
	order    []string            // element names in definition order
	elems    map[string]*Element // by name
	aliases  map[string]string   // alias -> element name
	switches []string            // display forms, "-name" or "-a|b|name"
	params   []string            // parameter names in allocation order
	catchall string              // catchall parameter, if any
	upvars   map[string]string   // key -> -upvar element name
}

// Options returns the options c was compiled under.
func (c *Compiled) Options() Options { return c.opts }

// Elements returns the elements in definition order.
func (c *Compiled) Elements() []*Element {
	out := make([]*Element, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.elems[name].Clone())
	}
	return out
}

// Element returns the element called name.
func (c *Compiled) Element(name string) (*Element, bool) {
	e, ok := c.elems[name]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Aliases returns the switch alias table, alias to element name.
func (c *Compiled) Aliases() map[string]string {
	if c.aliases == nil {
		return map[string]string{}
	}
	return maps.Clone(c.aliases)
}

// Switches returns the display forms of the switches in definition order.
func (c *Compiled) Switches() []string { return slices.Clone(c.switches) }

// Params returns the parameter names in allocation order.
func (c *Compiled) Params() []string { return slices.Clone(c.params) }

// Catchall returns the catchall parameter name, or "".
func (c *Compiled) Catchall() string { return c.catchall }

// Compile checks def and builds its element table.
func Compile(def Definition, opts Options) (*Compiled, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	decls, err := def.strip()
	if err != nil {
		return nil, err
	}
	c := &Compiled{
		opts:  opts,
		elems: make(map[string]*Element, len(decls)),
	}
	for _, d := range decls {
		if err := c.add(d); err != nil {
			return nil, err
		}
	}
	if err := c.link(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(def Definition, opts Options) *Compiled {
	return must.Get(Compile(def, opts))
}

// requiredPairs lists attributes that need another attribute.
var requiredPairs = [][2]attr{
	{attrReciprocal, attrRequire},
	{attrLevel, attrUpvar},
	{attrErrorMsg, attrValidate},
}

// conflicts lists attribute pairs that cannot be combined.
var conflicts = [][2]attr{
	{attrParameter, attrAlias},
	{attrParameter, attrBoolean},
	{attrParameter, attrValue},
	{attrParameter, attrArgument},
	{attrParameter, attrImply},
	{attrIgnore, attrKey},
	{attrIgnore, attrPass},
	{attrRequired, attrBoolean},
	{attrRequired, attrDefault},
	{attrArgument, attrBoolean},
	{attrArgument, attrValue},
	{attrUpvar, attrBoolean},
	{attrUpvar, attrCatchall},
	{attrBoolean, attrDefault},
	{attrBoolean, attrValue},
	{attrEnum, attrValidate},
	{attrType, attrUpvar},
	{attrType, attrBoolean},
	{attrType, attrEnum},
	{attrAllow, attrForbid},
}

// disallowed lists attribute triples that cannot be combined.
var disallowed = [][3]attr{
	{attrSwitch, attrOptional, attrCatchall},
	{attrSwitch, attrOptional, attrUpvar},
	{attrSwitch, attrOptional, attrDefault},
	{attrSwitch, attrOptional, attrBoolean},
	{attrSwitch, attrOptional, attrType},
	{attrParameter, attrOptional, attrRequired},
}

var aliasRE = regexp.MustCompile(`^\w[\w-]*( \w[\w-]*)*$`)

// add compiles one declaration.
func (c *Compiled) add(d Decl) error {
	var s attrSet
	raw := make(map[attr]string)
	for i := 1; i < len(d); i++ {
		w, err := validate.Prefix("option", d[i], attrWords, true)
		if err != nil {
			e := wrapErr(BadElementAttribute, err)
			var perr *validate.PrefixError
			if errors.As(err, &perr) {
				e.Suggestion = perr.Suggestion()
			}
			return e
		}
		a, _ := lookupAttr(w)
		if a.takesArg() {
			if i+1 >= len(d) {
				return errorf(MissingAttributeArgument, "%s requires an argument", w)
			}
			i++
			raw[a] = d[i]
		}
		s.add(a)
	}

	if s.has(attrSwitch) && s.has(attrParameter) {
		return errorf(ConflictingAttributes, "-switch and -parameter conflict")
	}
	if c.opts.Inline && s.has(attrKeep) {
		return errorf(ConflictingAttributes, "-inline and -keep conflict")
	}

	var name string
	if !s.has(attrSwitch) && !s.has(attrParameter) {
		tok, err := shorthand.Parse(d[0])
		if err != nil {
			return wrapErr(BadShorthand, err)
		}
		name = tok.Name
		if tok.Switch {
			s.add(attrSwitch)
		} else {
			s.add(attrParameter)
		}
		if len(tok.Aliases) > 0 {
			s.add(attrAlias)
			raw[attrAlias] = tcllist.Join(tok.Aliases)
		}
		for _, f := range []struct {
			on bool
			a  attr
		}{
			{tok.Argument, attrArgument},
			{tok.Optional, attrOptional},
			{tok.Required, attrRequired},
			{tok.Catchall, attrCatchall},
			{tok.Upvar, attrUpvar},
		} {
			if f.on {
				s.add(f.a)
			}
		}
	} else {
		n, err := shorthand.ParseName(d[0])
		if err != nil {
			return wrapErr(BadElementName, err)
		}
		name = n
	}
	if _, ok := c.elems[name]; ok {
		return errorf(ElementNameCollision, "element name collision: %s", name)
	}

	if s.has(attrSwitch) {
		if s.has(attrOptional) || s.has(attrRequired) || s.has(attrCatchall) ||
			s.has(attrUpvar) || s.has(attrType) {
			s.add(attrArgument)
		}
	} else if (s.has(attrCatchall) || s.has(attrOptional)) && !s.has(attrRequired) {
		s.add(attrOptional)
	} else {
		s.add(attrRequired)
	}

	for _, p := range requiredPairs {
		if s.has(p[0]) && !s.has(p[1]) {
			return errorf(RequiredPairMissing, "-%s requires -%s", p[0], p[1])
		}
	}
	for _, p := range conflicts {
		if s.has(p[0]) && s.has(p[1]) {
			return errorf(ConflictingAttributes, "-%s and -%s conflict", p[0], p[1])
		}
	}
	if c.opts.Inline && s.has(attrUpvar) {
		return errorf(ConflictingAttributes, "-upvar and -inline conflict")
	}
	for _, t := range disallowed {
		if s.hasAll(t[0], t[1], t[2]) {
			return errorf(DisallowedCombination, "-%s -%s -%s is a disallowed combination", t[0], t[1], t[2])
		}
	}

	if s.has(attrBoolean) || (c.opts.Boolean && s.has(attrSwitch) &&
		!s.has(attrArgument) && !s.has(attrUpvar) && !s.has(attrDefault) &&
		!s.has(attrValue) && !s.has(attrRequired)) {
		s.add(attrBoolean)
		s.add(attrDefault)
		s.add(attrValue)
		raw[attrDefault] = "0"
		raw[attrValue] = "1"
	}
	if s.has(attrUpvar) && !s.has(attrLevel) {
		s.add(attrLevel)
		raw[attrLevel] = c.opts.Level
		if raw[attrLevel] == "" {
			raw[attrLevel] = "1"
		}
	}
	if !s.has(attrIgnore) && !s.has(attrKey) && !s.has(attrPass) {
		s.add(attrKey)
		raw[attrKey] = name
		if c.opts.Template != "" {
			raw[attrKey] = expandTemplate(c.opts.Template, name)
		}
	}

	e := &Element{
		Name:     name,
		Key:      raw[attrKey],
		Pass:     raw[attrPass],
		Help:     raw[attrHelp],
		ErrorMsg: raw[attrErrorMsg],
		set:      s,
	}
	if s.has(attrSwitch) {
		e.Kind = Switch
	} else {
		e.Kind = Parameter
	}
	if s.has(attrDefault) {
		e.Default = ptr.To(raw[attrDefault])
	}
	if s.has(attrValue) {
		e.Value = ptr.To(raw[attrValue])
	}
	if s.has(attrLevel) {
		l, err := ParseLevel(raw[attrLevel])
		if err != nil {
			return err
		}
		e.Level = l
	}
	for _, l := range []struct {
		a   attr
		dst *[]string
	}{
		{attrRequire, &e.Require},
		{attrForbid, &e.Forbid},
		{attrAllow, &e.Allow},
		{attrImply, &e.Imply},
	} {
		if !s.has(l.a) {
			continue
		}
		items, err := tcllist.Split(raw[l.a])
		if err != nil {
			return wrapErr(BadList, err)
		}
		*l.dst = items
	}

	if e.IsParameter() {
		c.params = append(c.params, name)
		if e.Catchall() {
			if c.catchall != "" {
				return errorf(MultipleCatchallParameters, "multiple catchall parameters: %s and %s", c.catchall, name)
			}
			c.catchall = name
		}
	}
	if e.IsSwitch() && !s.has(attrAlias) {
		c.switches = append(c.switches, "-"+name)
	}
	if s.has(attrAlias) {
		a := raw[attrAlias]
		if !aliasRE.MatchString(a) {
			return errorf(BadAlias, "bad alias: %s", a)
		}
		aliases, err := tcllist.Split(a)
		if err != nil {
			return wrapErr(BadList, err)
		}
		for _, x := range aliases {
			if _, ok := c.aliases[x]; ok {
				return errorf(AliasCollision, "element alias collision: %s", a)
			}
			if _, ok := c.elems[x]; ok || x == name {
				return errorf(AliasNameClash, "collision of switch -%s alias with the -%s switch", name, x)
			}
		}
		for _, x := range aliases {
			mak.Set(&c.aliases, x, name)
		}
		e.Aliases = aliases
		c.switches = append(c.switches, e.aliasJoin())
	}
	if target, ok := c.aliases[name]; ok && target != name {
		return errorf(AliasNameClash, "collision of switch -%s alias with the -%s switch", target, name)
	}
	if e.Upvar() && e.HasKey() {
		if prev, ok := c.upvars[e.Key]; ok {
			return errorf(MultipleUpvars, "multiple upvars to the same variable: %s %s", prev, name)
		}
		mak.Set(&c.upvars, e.Key, name)
	}

	if s.has(attrEnum) {
		ref := raw[attrEnum]
		if l, ok := c.opts.Enum[ref]; ok {
			e.Enum = slices.Clone(l)
		} else {
			l, err := tcllist.Split(ref)
			if err != nil {
				return wrapErr(BadList, err)
			}
			e.Enum = l
		}
	}
	if s.has(attrValidate) {
		ref := raw[attrValidate]
		e.ValidateSrc = ref
		if v, ok := c.opts.Validators[ref]; ok {
			e.Validator = v
			e.ValidateMsg = ref + " validation"
		} else {
			x, err := validate.Compile(ref)
			if err != nil {
				return &Error{Kind: BadValidator, Msg: "bad validator for " + e.displayName() + ": " + err.Error(), Err: err}
			}
			e.Validator = x
			e.ValidateMsg = "validation: " + ref
		}
	}
	if s.has(attrType) {
		t, ok := argtype.Lookup(raw[attrType])
		if !ok {
			return errorf(UnknownType, "-type %s is not in the list of allowed types, must be %s", raw[attrType], argtype.Allowed())
		}
		e.Type = t
	}

	c.order = append(c.order, name)
	c.elems[name] = e
	return nil
}

// expandTemplate substitutes name into a key template.
func expandTemplate(tpl, name string) string {
	return strings.NewReplacer(`\\`, `\`, `\%`, `%`, `%`, name).Replace(tpl)
}

// link resolves cross-element references once every element is known:
// constraint targets, -reciprocal requirements and shared keys.
func (c *Compiled) link() error {
	for _, name := range c.order {
		e := c.elems[name]
		for _, ref := range []struct {
			a       attr
			targets []string
		}{
			{attrRequire, e.Require},
			{attrForbid, e.Forbid},
			{attrAllow, e.Allow},
		} {
			for _, t := range ref.targets {
				if _, ok := c.elems[t]; !ok {
					return errorf(UndefinedConstraintTarget, "%s -%s references undefined element: %s", name, ref.a, t)
				}
			}
		}
		if (c.opts.Reciprocal || e.Reciprocal()) && e.set.has(attrRequire) {
			for _, t := range slices.Clone(e.Require) {
				o := c.elems[t]
				o.Require = append(o.Require, name)
				o.set.add(attrRequire)
			}
		}
		if !e.HasKey() {
			continue
		}
		for _, oname := range c.order {
			o := c.elems[oname]
			if oname == name || !o.HasKey() || o.Key != e.Key {
				continue
			}
			switch {
			case e.IsParameter():
				return errorf(SharedKeyConflict, "%s cannot be a parameter because it shares a key with %s", name, oname)
			case e.Argument():
				return errorf(SharedKeyConflict, "%s cannot use -argument because it shares a key with %s", name, oname)
			case e.Catchall():
				return errorf(SharedKeyConflict, "%s cannot use -catchall because it shares a key with %s", name, oname)
			case e.Default != nil && o.Default != nil:
				return errorf(SharedKeyConflict, "%s and %s cannot both use -default because they share a key", name, oname)
			}
			if !slices.Contains(o.Forbid, name) {
				o.Forbid = append(o.Forbid, name)
				o.set.add(attrForbid)
			}
			if e.Value == nil {
				e.Value = ptr.To(name)
				e.set.add(attrValue)
			}
		}
	}
	return nil
}
