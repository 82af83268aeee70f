// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argparse/pkg/argtype"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		opts Options
		kind ErrorKind
		msg  string // exact message, or a prefix ending in "..."
	}{
		{"empty element", `-a {}`, Options{}, EmptyElement, "element definition cannot be empty"},
		{"bad attribute", `{-a -bogus}`, Options{}, BadElementAttribute, `bad option "-bogus": must be -alias, -argument, ...`},
		{"attribute prefix", `{-a -def 1}`, Options{}, BadElementAttribute, `bad option "-def": must be ...`},
		{"missing attribute argument", `{-a -default}`, Options{}, MissingAttributeArgument, "-default requires an argument"},
		{"bad shorthand", `9bad!@`, Options{}, BadShorthand, "bad element shorthand: 9bad!@"},
		{"bad name", `{-x -switch}`, Options{}, BadElementName, "bad element name: -x"},
		{"switch and parameter", `{a -switch -parameter}`, Options{}, ConflictingAttributes, "-switch and -parameter conflict"},
		{"inline keep", `{-a -keep}`, Options{Inline: true}, ConflictingAttributes, "-inline and -keep conflict"},
		{"name collision", `-a -a=`, Options{}, ElementNameCollision, "element name collision: a"},
		{"required pair", `{-a -reciprocal}`, Options{}, RequiredPairMissing, "-reciprocal requires -require"},
		{"level needs upvar", `{-a= -level 1}`, Options{}, RequiredPairMissing, "-level requires -upvar"},
		{"errormsg needs validate", `{-a= -errormsg oops}`, Options{}, RequiredPairMissing, "-errormsg requires -validate"},
		{"parameter alias", `{a -alias x}`, Options{}, ConflictingAttributes, "-parameter and -alias conflict"},
		{"required default", `{-a! -default 1}`, Options{}, ConflictingAttributes, "-required and -default conflict"},
		{"enum validate", `{-a= -enum {x y} -validate {true}}`, Options{}, ConflictingAttributes, "-enum and -validate conflict"},
		{"upvar inline", `-a^`, Options{Inline: true}, ConflictingAttributes, "-upvar and -inline conflict"},
		{"optional default", `{-a? -default 1}`, Options{}, DisallowedCombination, "-switch -optional -default is a disallowed combination"},
		{"optional catchall", `{-a? -catchall}`, Options{}, DisallowedCombination, "-switch -optional -catchall is a disallowed combination"},
		{"optional required parameter", `{a -optional -required}`, Options{}, DisallowedCombination, "-parameter -optional -required is a disallowed combination"},
		{"two catchalls", `a* b*`, Options{}, MultipleCatchallParameters, "multiple catchall parameters: a and b"},
		{"bad alias", `{-a -alias {x!}}`, Options{}, BadAlias, "bad alias: x!"},
		{"alias collision", `-a|x -b|x`, Options{}, AliasCollision, "element alias collision: x"},
		{"alias then name", `-a|b -b`, Options{}, AliasNameClash, "collision of switch -a alias with the -b switch"},
		{"name then alias", `-b -a|b`, Options{}, AliasNameClash, "collision of switch -a alias with the -b switch"},
		{"multiple upvars", `{-a^ -key v} {-b^ -key v}`, Options{}, MultipleUpvars, "multiple upvars to the same variable: a b"},
		{"unknown type", `{-a= -type float}`, Options{}, UnknownType, "-type float is not in the list of allowed types, must be alnum, alpha, ..."},
		{"bad level", `{-a^ -level x}`, Options{}, BadLevel, `bad level "x"`},
		{"bad global level", `-a^`, Options{Level: "up"}, BadLevel, `bad level "up"`},
		{"bad validator", `{-a= -validate {arg >}}`, Options{}, BadValidator, "bad validator for -a: ..."},
		{"undefined require", `{-a -require b}`, Options{}, UndefinedConstraintTarget, "a -require references undefined element: b"},
		{"undefined allow", `{-a -allow {b c}} -b`, Options{}, UndefinedConstraintTarget, "a -allow references undefined element: c"},
		{"shared key parameter", `{a -key k} {-b -key k}`, Options{}, SharedKeyConflict, "a cannot be a parameter because it shares a key with b"},
		{"shared key argument", `-a= {-b -key a}`, Options{}, SharedKeyConflict, "a cannot use -argument because it shares a key with b"},
		{"shared key defaults", `{-a -default 1 -key k} {-b -default 2 -key k}`, Options{}, SharedKeyConflict, "a and b cannot both use -default because they share a key"},
		{"mixed pfirst", `-a`, Options{Mixed: true, PFirst: true}, ConflictingGlobalOptions, "-mixed and -pfirst conflict"},
		{"bad list", `{-a -default {x}`, Options{}, BadList, "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ParseDefinition(tt.def)
			if err == nil {
				_, err = Compile(def, tt.opts)
			}
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.def)
			}
			if got := KindOf(err); got != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", got, tt.kind, err)
			}
			if prefix, ok := strings.CutSuffix(tt.msg, "..."); ok {
				if !strings.HasPrefix(err.Error(), prefix) {
					t.Errorf("error = %q, want prefix %q", err, prefix)
				}
			} else if err.Error() != tt.msg {
				t.Errorf("error = %q, want %q", err, tt.msg)
			}
		})
	}
}

func TestCompileElements(t *testing.T) {
	def := MustParseDefinition(`
		{-level= -default 1 -type integer -help {verbosity}}
		-q|quiet
		{-out^ -key result}
		{-a -require b -reciprocal} -b
		file
		rest*
	`)
	c, err := Compile(def, Options{Boolean: true})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"-level", "-q|quiet", "-out", "-a", "-b"}, c.Switches()); diff != "" {
		t.Errorf("Switches() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"file", "rest"}, c.Params()); diff != "" {
		t.Errorf("Params() mismatch (-want +got):\n%s", diff)
	}
	if got := c.Catchall(); got != "rest" {
		t.Errorf("Catchall() = %q, want rest", got)
	}
	if diff := cmp.Diff(map[string]string{"q": "quiet"}, c.Aliases()); diff != "" {
		t.Errorf("Aliases() mismatch (-want +got):\n%s", diff)
	}

	level, _ := c.Element("level")
	if level.Type != argtype.Integer || level.Help != "verbosity" || *level.Default != "1" {
		t.Errorf("level = %+v", level)
	}
	if diff := cmp.Diff([]string{"argument", "default", "key", "switch", "type", "help"}, level.Attributes()); diff != "" {
		t.Errorf("level attributes mismatch (-want +got):\n%s", diff)
	}

	quiet, _ := c.Element("quiet")
	if !quiet.Has("boolean") || *quiet.Default != "0" || *quiet.Value != "1" {
		t.Errorf("quiet not expanded to boolean: %v", quiet.Attributes())
	}

	out, _ := c.Element("out")
	if out.Level != (Level{N: 1}) || out.Key != "result" || !out.Upvar() {
		t.Errorf("out = %+v", out)
	}

	b, _ := c.Element("b")
	if diff := cmp.Diff([]string{"a"}, b.Require); diff != "" {
		t.Errorf("b.Require mismatch (-want +got):\n%s", diff)
	}

	file, _ := c.Element("file")
	if !file.Required() || file.Optional() {
		t.Errorf("file should be required: %v", file.Attributes())
	}
	rest, _ := c.Element("rest")
	if !rest.Optional() || !rest.Catchall() {
		t.Errorf("rest should be an optional catchall: %v", rest.Attributes())
	}
}

func TestCompileSharedKey(t *testing.T) {
	c := MustCompile(MustParseDefinition(`{-fast -key speed} {-slow -key speed} {-turbo -key speed -value 11}`), Options{})
	fast, _ := c.Element("fast")
	slow, _ := c.Element("slow")
	turbo, _ := c.Element("turbo")
	if diff := cmp.Diff([]string{"slow", "turbo"}, fast.Forbid); diff != "" {
		t.Errorf("fast.Forbid mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fast", "turbo"}, slow.Forbid); diff != "" {
		t.Errorf("slow.Forbid mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fast", "slow"}, turbo.Forbid); diff != "" {
		t.Errorf("turbo.Forbid mismatch (-want +got):\n%s", diff)
	}
	if fast.Value == nil || *fast.Value != "fast" {
		t.Errorf("fast.Value = %v, want fast", fast.Value)
	}
	if *turbo.Value != "11" {
		t.Errorf("turbo.Value = %q, want 11", *turbo.Value)
	}
}

func TestElementsAreCopies(t *testing.T) {
	c := MustCompile(MustParseDefinition(`{-a -require b} -b`), Options{})
	a, _ := c.Element("a")
	a.Require[0] = "changed"
	a2, _ := c.Element("a")
	if a2.Require[0] != "b" {
		t.Errorf("Element returned shared state: %v", a2.Require)
	}
}

func TestCompileTemplate(t *testing.T) {
	c := MustCompile(MustParseDefinition(`-x {-y -key explicit} {-z -ignore}`), Options{Template: "opt(%)"})
	for name, want := range map[string]string{"x": "opt(x)", "y": "explicit"} {
		e, _ := c.Element(name)
		if e.Key != want {
			t.Errorf("%s key = %q, want %q", name, e.Key, want)
		}
	}
	z, _ := c.Element("z")
	if z.HasKey() {
		t.Errorf("ignored element has key %q", z.Key)
	}
}

func TestStandaloneDoesNotLeak(t *testing.T) {
	def := MustParseDefinition(`{-help -standalone} {-a -require b} -b`)
	e := NewEngine()
	opts := Options{Mixed: true}
	if _, err := e.Parse(def, opts, []string{"-help", "-a"}); err != nil {
		t.Fatalf("standalone parse: %v", err)
	}
	_, err := e.Parse(def, opts, []string{"-a"})
	if !errors.Is(err, &Error{Kind: RequirementNotMet}) {
		t.Fatalf("second parse error = %v, want RequirementNotMet", err)
	}
}
