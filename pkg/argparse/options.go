// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yeetrun/argparse/pkg/tcllist"
	"github.com/yeetrun/argparse/pkg/validate"
)

// Options are the parser-wide settings of one call. They take part in the
// definition cache key, so two calls with different Options never share a
// compiled definition.
type Options struct {
	// Boolean turns every plain switch (no argument, upvar, default, value
	// or required) into a boolean one: "0" when absent, "1" when present.
	Boolean bool
	// Enum holds named enumerations that elements reference with -enum.
	Enum map[string][]string
	// EqualArg lets a switch take its argument inline as -name=value.
	EqualArg bool
	// Exact disables unique-prefix matching of switch names and enum values.
	Exact bool
	// Inline returns the result instead of binding it.
	Inline bool
	// Keep leaves the bindings of omitted elements alone.
	Keep bool
	// Level is the default scope level of -upvar elements ("1" if empty).
	Level string
	// Long accepts --name as a spelling of -name.
	Long bool
	// Mixed allows switches after parameters.
	Mixed bool
	// Normalize makes pass-through keys collect canonical switch spellings
	// and the defaults of omitted elements.
	Normalize bool
	// Pass names an overflow pass-through key collecting unknown switches
	// and excess parameters.
	Pass string
	// Reciprocal makes every -require constraint mutual.
	Reciprocal bool
	// Template computes default keys: "%" is replaced by the element name,
	// "\%" stands for a literal "%" and "\\" for a backslash.
	Template string
	// Validators holds named validators that elements reference with
	// -validate.
	Validators map[string]validate.Validator
	// PFirst expects required parameters before switches.
	PFirst bool
	// Help is a description of the whole command, kept for help
	// collaborators.
	Help string
}

// globalWords lists the option words ParseOptions accepts, in bit order.
var globalWords = []string{
	"-boolean", "-enum", "-equalarg", "-exact", "-inline", "-keep", "-level", "-long",
	"-mixed", "-normalize", "-pass", "-reciprocal", "-template", "-validate", "-help", "-pfirst",
}

var globalTakesArg = map[string]bool{
	"-enum": true, "-level": true, "-pass": true, "-template": true, "-validate": true, "-help": true,
}

// ParseOptions reads leading option words such as
//
//	-inline -enum {color {red green blue}} -validate {port {int(arg) > 0}}
//
// and returns the options and the words that follow them. Unique prefixes
// are accepted. Reading stops at the first word that is not an option; a
// "--" there is consumed.
func ParseOptions(words []string) (Options, []string, error) {
	var o Options
	i := 0
	for ; i < len(words); i++ {
		w, err := validate.Prefix("option", words[i], globalWords, false)
		if err != nil {
			break
		}
		var arg string
		if globalTakesArg[w] {
			if i+1 >= len(words) {
				return Options{}, nil, errorf(BadGlobalOption, "Missing argument for %s", w)
			}
			i++
			arg = words[i]
		}
		if err := o.set(w, arg); err != nil {
			return Options{}, nil, err
		}
	}
	if i < len(words) && words[i] == "--" {
		i++
	}
	return o, words[i:], nil
}

func (o *Options) set(word, arg string) error {
	switch word {
	case "-boolean":
		o.Boolean = true
	case "-enum":
		d, err := splitDict(word, arg)
		if err != nil {
			return err
		}
		o.Enum = make(map[string][]string, len(d))
		for k, v := range d {
			l, err := tcllist.Split(v)
			if err != nil {
				return wrapErr(BadList, err)
			}
			o.Enum[k] = l
		}
	case "-equalarg":
		o.EqualArg = true
	case "-exact":
		o.Exact = true
	case "-inline":
		o.Inline = true
	case "-keep":
		o.Keep = true
	case "-level":
		o.Level = arg
	case "-long":
		o.Long = true
	case "-mixed":
		o.Mixed = true
	case "-normalize":
		o.Normalize = true
	case "-pass":
		o.Pass = arg
	case "-reciprocal":
		o.Reciprocal = true
	case "-template":
		o.Template = arg
	case "-validate":
		d, err := splitDict(word, arg)
		if err != nil {
			return err
		}
		o.Validators = make(map[string]validate.Validator, len(d))
		for k, v := range d {
			x, err := validate.Compile(v)
			if err != nil {
				return &Error{Kind: BadValidator, Msg: fmt.Sprintf("bad validator %q: %v", k, err), Err: err}
			}
			o.Validators[k] = x
		}
	case "-help":
		o.Help = arg
	case "-pfirst":
		o.PFirst = true
	}
	return nil
}

func splitDict(word, s string) (map[string]string, error) {
	l, err := tcllist.Split(s)
	if err != nil {
		return nil, wrapErr(BadList, err)
	}
	if len(l)%2 != 0 {
		return nil, errorf(BadGlobalOption, "%s value must be a dictionary: %s", word, s)
	}
	d := make(map[string]string, len(l)/2)
	for i := 0; i < len(l); i += 2 {
		d[l[i]] = l[i+1]
	}
	return d, nil
}

// check reports global options that cannot be combined.
func (o *Options) check() error {
	if o.Inline && o.Keep {
		return errorf(ConflictingGlobalOptions, "-inline and -keep conflict")
	}
	if o.Mixed && o.PFirst {
		return errorf(ConflictingGlobalOptions, "-mixed and -pfirst conflict")
	}
	return nil
}

func (o *Options) bits() int {
	flags := []bool{
		o.Boolean, o.Enum != nil, o.EqualArg, o.Exact, o.Inline, o.Keep, o.Level != "", o.Long,
		o.Mixed, o.Normalize, o.Pass != "", o.Reciprocal, o.Template != "", o.Validators != nil,
		o.Help != "", o.PFirst,
	}
	b := 0
	for i, f := range flags {
		if f {
			b |= 1 << i
		}
	}
	return b
}

// Fingerprint returns a canonical serialization of o, used as part of the
// definition cache key: the bitmask of set options followed by
// "name=value;" for each set option that carries a value.
func (o *Options) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(o.bits()))
	sb.WriteByte(':')
	if o.Enum != nil {
		var d []string
		for _, k := range sortedKeys(o.Enum) {
			d = append(d, k, tcllist.Join(o.Enum[k]))
		}
		fmt.Fprintf(&sb, "enum=%s;", tcllist.Join(d))
	}
	if o.Level != "" {
		fmt.Fprintf(&sb, "level=%s;", o.Level)
	}
	if o.Pass != "" {
		fmt.Fprintf(&sb, "pass=%s;", o.Pass)
	}
	if o.Template != "" {
		fmt.Fprintf(&sb, "template=%s;", o.Template)
	}
	if o.Validators != nil {
		var d []string
		for _, k := range sortedKeys(o.Validators) {
			id, ok := validatorID(o.Validators[k])
			if !ok {
				id = fmt.Sprintf("%T", o.Validators[k])
			}
			d = append(d, k, id)
		}
		fmt.Fprintf(&sb, "validate=%s;", tcllist.Join(d))
	}
	if o.Help != "" {
		fmt.Fprintf(&sb, "help=%s;", o.Help)
	}
	return sb.String()
}

// validatorID identifies a validator for the cache key. Only validators
// that describe themselves through String, such as expressions or
// validate.Named, have an identity.
func validatorID(v validate.Validator) (string, bool) {
	s, ok := v.(fmt.Stringer)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%T:%s", v, s.String()), true
}

// cacheable reports whether o has a Fingerprint that fully identifies it.
// A closure validator does not: two closures from the same function
// literal capture different values.
func (o *Options) cacheable() bool {
	for _, v := range o.Validators {
		if _, ok := validatorID(v); !ok {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Words renders o back into option words, the inverse of ParseOptions for
// options that have a textual form.
func (o *Options) Words() []string {
	var w []string
	flag := func(on bool, word string) {
		if on {
			w = append(w, word)
		}
	}
	flag(o.Boolean, "-boolean")
	if o.Enum != nil {
		var d []string
		for _, k := range sortedKeys(o.Enum) {
			d = append(d, k, tcllist.Join(o.Enum[k]))
		}
		w = append(w, "-enum", tcllist.Join(d))
	}
	flag(o.EqualArg, "-equalarg")
	flag(o.Exact, "-exact")
	flag(o.Inline, "-inline")
	flag(o.Keep, "-keep")
	if o.Level != "" {
		w = append(w, "-level", o.Level)
	}
	flag(o.Long, "-long")
	flag(o.Mixed, "-mixed")
	flag(o.Normalize, "-normalize")
	if o.Pass != "" {
		w = append(w, "-pass", o.Pass)
	}
	flag(o.Reciprocal, "-reciprocal")
	if o.Template != "" {
		w = append(w, "-template", o.Template)
	}
	if o.Validators != nil {
		var d []string
		for _, k := range sortedKeys(o.Validators) {
			if x, ok := o.Validators[k].(*validate.Expr); ok {
				d = append(d, k, x.String())
			}
		}
		w = append(w, "-validate", tcllist.Join(d))
	}
	if o.Help != "" {
		w = append(w, "-help", o.Help)
	}
	flag(o.PFirst, "-pfirst")
	return w
}
