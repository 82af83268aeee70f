// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argparse/pkg/validate"
)

func mustParse(t *testing.T, def string, opts Options, args ...string) *Result {
	t.Helper()
	res, err := NewEngine().Parse(MustParseDefinition(def), opts, args)
	if err != nil {
		t.Fatalf("Parse(%q, %q) error = %v", def, args, err)
	}
	return res
}

func parseErr(t *testing.T, def string, opts Options, args ...string) *Error {
	t.Helper()
	_, err := NewEngine().Parse(MustParseDefinition(def), opts, args)
	if err == nil {
		t.Fatalf("Parse(%q, %q) succeeded, want error", def, args)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Parse(%q, %q) error = %T %v, want *Error", def, args, err, err)
	}
	return e
}

func TestParse(t *testing.T) {
	digits := validate.Func(func(c validate.Candidate) (bool, error) {
		return strings.Trim(c.Arg, "0123456789") == "", nil
	})

	tests := []struct {
		name string
		def  string
		opts Options
		args []string
		want map[string]string
	}{
		{
			name: "defaults and required parameter",
			def:  `{-salutation= -default hello} -modifier= -title {subject -required}`,
			args: []string{"world"},
			want: map[string]string{"subject": "world", "salutation": "hello"},
		},
		{
			name: "enum and catchall switch",
			def:  `{-op= -enum {+ *}} {-elements= -catchall}`,
			args: []string{"-op", "*", "-elements", "1", "2", "3"},
			want: map[string]string{"op": "*", "elements": "1 2 3"},
		},
		{
			name: "enum prefix resolves",
			def:  `{-op= -enum {add mul}}`,
			args: []string{"-op", "a"},
			want: map[string]string{"op": "add"},
		},
		{
			name: "named enum",
			def:  `{-c= -enum color}`,
			opts: Options{Enum: map[string][]string{"color": {"red", "green", "blue"}}},
			args: []string{"-c", "g"},
			want: map[string]string{"c": "green"},
		},
		{
			name: "optional switch with value",
			def:  `-v?`,
			args: []string{"-v", "x"},
			want: map[string]string{"v": "{} x"},
		},
		{
			name: "optional switch without value",
			def:  `-v?`,
			args: []string{"-v"},
			want: map[string]string{"v": ""},
		},
		{
			name: "plain switch",
			def:  `-x -y`,
			args: []string{"-y"},
			want: map[string]string{"y": ""},
		},
		{
			name: "switch value",
			def:  `{-x -value on}`,
			args: []string{"-x"},
			want: map[string]string{"x": "on"},
		},
		{
			name: "global boolean present",
			def:  `-x -y=`,
			opts: Options{Boolean: true},
			args: []string{"-x"},
			want: map[string]string{"x": "1"},
		},
		{
			name: "global boolean absent",
			def:  `-x -y=`,
			opts: Options{Boolean: true},
			want: map[string]string{"x": "0"},
		},
		{
			name: "element boolean",
			def:  `{-q -boolean}`,
			want: map[string]string{"q": "0"},
		},
		{
			name: "shared key takes switch name",
			def:  `{-fast -key speed} {-slow -key speed}`,
			args: []string{"-slow"},
			want: map[string]string{"speed": "slow"},
		},
		{
			name: "unique prefix",
			def:  `-verbose -version`,
			args: []string{"-verb"},
			want: map[string]string{"verbose": ""},
		},
		{
			name: "alias",
			def:  `-v|verbose`,
			opts: Options{Boolean: true},
			args: []string{"-v"},
			want: map[string]string{"verbose": "1"},
		},
		{
			name: "imply",
			def:  `{-debug -imply {-level 3}} -level=`,
			args: []string{"-debug"},
			want: map[string]string{"debug": "", "level": "3"},
		},
		{
			name: "standalone relaxes requirements",
			def:  `{-help -standalone} {file -required}`,
			opts: Options{Mixed: true},
			args: []string{"-help"},
			want: map[string]string{"help": ""},
		},
		{
			name: "catchall parameter",
			def:  `a {rest -catchall}`,
			args: []string{"1", "2", "3"},
			want: map[string]string{"a": "1", "rest": "2 3"},
		},
		{
			name: "empty catchall parameter",
			def:  `a rest*`,
			args: []string{"1"},
			want: map[string]string{"a": "1", "rest": ""},
		},
		{
			name: "optional parameter skipped",
			def:  `a? b`,
			args: []string{"x"},
			want: map[string]string{"b": "x"},
		},
		{
			name: "optional parameter filled",
			def:  `a? b`,
			args: []string{"x", "y"},
			want: map[string]string{"a": "x", "b": "y"},
		},
		{
			name: "double dash ends switches",
			def:  `-x a?`,
			args: []string{"--", "-x"},
			want: map[string]string{"a": "-x"},
		},
		{
			name: "trailing required parameters bypass switch scanning",
			def:  `-x a`,
			args: []string{"-x"},
			want: map[string]string{"a": "-x"},
		},
		{
			name: "pass-through keys",
			def:  `{-x= -pass p} {-y -pass p}`,
			args: []string{"-y", "-x", "1"},
			want: map[string]string{"p": "-y -x 1"},
		},
		{
			name: "pass-through of unused keys is empty",
			def:  `{-x= -pass p}`,
			want: map[string]string{"p": ""},
		},
		{
			name: "parameter pass-through marks values that look like switches",
			def:  `{a -pass p}`,
			args: []string{"-1"},
			want: map[string]string{"p": "-- -1"},
		},
		{
			name: "global pass collects unknown switches and excess",
			def:  `-a`,
			opts: Options{Pass: "rest"},
			args: []string{"-a", "-b", "c"},
			want: map[string]string{"a": "", "rest": "-b c"},
		},
		{
			name: "normalize spells switches canonically",
			def:  `{-verbose -pass p} {-x= -default 5 -pass p}`,
			opts: Options{Normalize: true},
			args: []string{"-verb"},
			want: map[string]string{"p": "-verbose -x 5"},
		},
		{
			name: "template",
			def:  `-x`,
			opts: Options{Template: `opt_%`},
			args: []string{"-x"},
			want: map[string]string{"opt_x": ""},
		},
		{
			name: "template escapes",
			def:  `-x`,
			opts: Options{Template: `\%%\\`},
			args: []string{"-x"},
			want: map[string]string{`%x\`: ""},
		},
		{
			name: "equalarg",
			def:  `-x=`,
			opts: Options{EqualArg: true},
			args: []string{"-x=5"},
			want: map[string]string{"x": "5"},
		},
		{
			name: "equalarg empty value",
			def:  `-x=`,
			opts: Options{EqualArg: true},
			args: []string{"-x="},
			want: map[string]string{"x": ""},
		},
		{
			name: "long",
			def:  `-x=`,
			opts: Options{Long: true},
			args: []string{"--x", "5"},
			want: map[string]string{"x": "5"},
		},
		{
			name: "pfirst",
			def:  `-v a`,
			opts: Options{PFirst: true},
			args: []string{"x", "-v"},
			want: map[string]string{"a": "x", "v": ""},
		},
		{
			name: "mixed",
			def:  `-v a b`,
			opts: Options{Mixed: true},
			args: []string{"x", "-v", "y"},
			want: map[string]string{"a": "x", "b": "y", "v": ""},
		},
		{
			name: "allow",
			def:  `{-a -allow b} -b -c`,
			args: []string{"-a", "-b"},
			want: map[string]string{"a": "", "b": ""},
		},
		{
			name: "named validator",
			def:  `{-n= -validate digits}`,
			opts: Options{Validators: map[string]validate.Validator{"digits": digits}},
			args: []string{"-n", "42"},
			want: map[string]string{"n": "42"},
		},
		{
			name: "expression validator",
			def:  `{-port= -validate {int(arg) > 0 && int(arg) < 65536}}`,
			args: []string{"-port", "8080"},
			want: map[string]string{"port": "8080"},
		},
		{
			name: "type",
			def:  `{-n= -type integer} {-f -type boolean}`,
			args: []string{"-n", "0x10", "-f", "yes"},
			want: map[string]string{"n": "0x10", "f": "yes"},
		},
		{
			name: "ignore",
			def:  `{-x= -ignore}`,
			args: []string{"-x", "1"},
			want: map[string]string{},
		},
		{
			name: "comments",
			def:  `{# leading comment} -a {#} -b -c`,
			args: []string{"-a", "-c"},
			want: map[string]string{"a": "", "c": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.def, tt.opts, tt.args...).Map()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q, %q) mismatch (-want +got):\n%s", tt.def, tt.args, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		def  string
		opts Options
		args []string
		kind ErrorKind
		msg  string
	}{
		{
			name: "type mismatch",
			def:  `{-b! -type double} {-n! -type double}`,
			args: []string{"-b", "a", "-n", "4"},
			kind: TypeMismatch,
			msg:  `-b value "a" is not of the type double`,
		},
		{
			name: "forbid",
			def:  `{-allday -forbid duration} {-duration= -forbid allday}`,
			args: []string{"-allday", "-duration", "01:30"},
			kind: ForbiddenCombination,
			msg:  "-allday conflicts with -duration",
		},
		{
			name: "require",
			def:  `{-a= -require c} -c=`,
			args: []string{"-a", "1"},
			kind: RequirementNotMet,
			msg:  "-a requires -c",
		},
		{
			name: "missing required parameter",
			def:  `a b`,
			args: []string{"x"},
			kind: MissingRequiredParameters,
			msg:  "missing required parameter: b",
		},
		{
			name: "missing required parameters",
			def:  `a b c`,
			kind: MissingRequiredParameters,
			msg:  "missing required parameters: a, b, and c",
		},
		{
			name: "missing required switches",
			def:  `-b! -a! -c=`,
			kind: MissingRequiredSwitches,
			msg:  "missing required switches: -a and -b",
		},
		{
			name: "missing required switch with alias",
			def:  `-v|verbose!`,
			kind: MissingRequiredSwitches,
			msg:  "missing required switch: -v|verbose",
		},
		{
			name: "missing switch argument",
			def:  `-a=`,
			args: []string{"-a"},
			kind: MissingSwitchArgument,
			msg:  "-a requires an argument",
		},
		{
			name: "unexpected inline argument",
			def:  `-y`,
			opts: Options{EqualArg: true},
			args: []string{"-y=1"},
			kind: UnexpectedInlineArgument,
			msg:  "-y doesn't allow an argument",
		},
		{
			name: "unknown switch",
			def:  `-b -a|c`,
			args: []string{"-z"},
			kind: UnknownSwitch,
			msg:  `bad switch "-z": must be -a|c or -b`,
		},
		{
			name: "ambiguous switch",
			def:  `-verbose -version`,
			args: []string{"-ver"},
			kind: AmbiguousOrUnknownSwitch,
			msg:  `bad switch "-ver": must be -verbose or -version`,
		},
		{
			name: "exact rejects prefixes",
			def:  `-verbose -version`,
			opts: Options{Exact: true},
			args: []string{"-verb"},
			kind: UnknownSwitch,
			msg:  `bad switch "-verb": must be -verbose or -version`,
		},
		{
			name: "too many arguments",
			def:  `a`,
			args: []string{"x", "y"},
			kind: TooManyArguments,
			msg:  "too many arguments",
		},
		{
			name: "enum mismatch",
			def:  `{-op= -enum {+ *}}`,
			args: []string{"-op", "-"},
			kind: EnumMismatch,
			msg:  `bad -op value "-": must be + or *`,
		},
		{
			name: "ambiguous enum",
			def:  `{-mode= -enum {read write rw}}`,
			args: []string{"-mode", "r"},
			kind: EnumMismatch,
			msg:  `ambiguous -mode value "r": must be read, write, or rw`,
		},
		{
			name: "expression validation",
			def:  `{-port= -validate {int(arg) > 0 && int(arg) < 65536}}`,
			args: []string{"-port", "0"},
			kind: ValidationFailed,
			msg:  `-port value "0" fails validation: int(arg) > 0 && int(arg) < 65536`,
		},
		{
			name: "validation message template",
			def:  `{-n= -validate {arg matches "^[0-9]+$"} -errormsg {$name wants digits, not $arg}}`,
			args: []string{"-n", "x"},
			kind: ValidationFailed,
			msg:  "-n wants digits, not x",
		},
		{
			name: "parameter validation",
			def:  `{count -type integer}`,
			args: []string{"many"},
			kind: TypeMismatch,
			msg:  `count value "many" is not of the type integer`,
		},
		{
			name: "catchall item validation",
			def:  `{-n= -catchall -type digit}`,
			args: []string{"-n", "1", "x"},
			kind: TypeMismatch,
			msg:  `-n value "x" is not of the type digit`,
		},
		{
			name: "not allowed",
			def:  `{-a -allow b} -b -c`,
			args: []string{"-a", "-c"},
			kind: NotAllowedTogether,
			msg:  "a doesn't allow c",
		},
		{
			name: "shared key exclusivity",
			def:  `{-fast -key speed} {-slow -key speed}`,
			args: []string{"-slow", "-fast"},
			kind: ForbiddenCombination,
			msg:  "-fast conflicts with -slow",
		},
		{
			name: "reciprocal requirement",
			def:  `{-a -require b -reciprocal} -b`,
			args: []string{"-b"},
			kind: RequirementNotMet,
			msg:  "-b requires -a",
		},
		{
			name: "global reciprocal",
			def:  `{-a -require b} -b`,
			opts: Options{Reciprocal: true},
			args: []string{"-b"},
			kind: RequirementNotMet,
			msg:  "-b requires -a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseErr(t, tt.def, tt.opts, tt.args...)
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
			if e.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", e.Msg, tt.msg)
			}
		})
	}
}

func TestParseResultShape(t *testing.T) {
	res := mustParse(t, `{-salutation= -default hello} -modifier= -title {subject -required}`, Options{}, "world")
	if diff := cmp.Diff([]string{"subject", "salutation"}, res.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"subject"}, res.Present()); diff != "" {
		t.Errorf("Present() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"salutation", "modifier", "title"}, res.Omitted()); diff != "" {
		t.Errorf("Omitted() mismatch (-want +got):\n%s", diff)
	}

	res = mustParse(t, `-v? {rest -catchall}`, Options{}, "-v", "x", "a", "b")
	v, _ := res.Get("v")
	if diff := cmp.Diff(List("", "x"), v); diff != "" {
		t.Errorf("v mismatch (-want +got):\n%s", diff)
	}
	rest, _ := res.Get("rest")
	if !rest.IsList() {
		t.Errorf("rest is not a list")
	}
	if diff := cmp.Diff([]string{"a", "b"}, rest.Items()); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorKindNames(t *testing.T) {
	for k := BadList; k <= BindFailed; k++ {
		if strings.HasPrefix(k.String(), "ErrorKind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
	if got, want := AmbiguousOrUnknownSwitch.String(), "AmbiguousOrUnknownSwitch"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseErrorSuggestion(t *testing.T) {
	e := parseErr(t, `-verbose -quiet`, Options{}, "-verbse")
	if e.Suggestion != "-verbose" {
		t.Errorf("Suggestion = %q, want %q", e.Suggestion, "-verbose")
	}
	if !errors.Is(e, &Error{Kind: UnknownSwitch}) {
		t.Errorf("errors.Is(%v, UnknownSwitch) = false", e)
	}
	if KindOf(e) != UnknownSwitch {
		t.Errorf("KindOf = %v", KindOf(e))
	}
}

// Required parameters get tokens before optional ones, and optional ones
// before the catchall.
func TestAllocationOrder(t *testing.T) {
	const def = `o1? r1 o2? {r2 -required} rest*`
	tests := []struct {
		args []string
		want map[string]string
	}{
		{
			args: []string{"a", "b"},
			want: map[string]string{"r1": "a", "r2": "b", "rest": ""},
		},
		{
			args: []string{"a", "b", "c"},
			want: map[string]string{"o1": "a", "r1": "b", "r2": "c", "rest": ""},
		},
		{
			args: []string{"a", "b", "c", "d"},
			want: map[string]string{"o1": "a", "r1": "b", "o2": "c", "r2": "d", "rest": ""},
		},
		{
			args: []string{"a", "b", "c", "d", "e", "f"},
			want: map[string]string{"o1": "a", "r1": "b", "o2": "c", "r2": "d", "rest": "e f"},
		},
	}
	for _, tt := range tests {
		got := mustParse(t, def, Options{}, tt.args...).Map()
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.args, diff)
		}
	}
}

// Normalized pass-through output parses back to the same values.
func TestNormalizeRoundTrip(t *testing.T) {
	const def = `{-level= -key level -pass p -enum {debug info warn}} {-v|verbose -key verbose -pass p} {file -key file -pass p}`
	opts := Options{Normalize: true}
	res := mustParse(t, def, opts, "-v", "-level", "w", "-out.txt")
	p, _ := res.Get("p")
	want := []string{"-verbose", "-level", "warn", "-out.txt"}
	if diff := cmp.Diff(want, p.Items()); diff != "" {
		t.Fatalf("pass mismatch (-want +got):\n%s", diff)
	}
	again := mustParse(t, def, opts, p.Items()...)
	if diff := cmp.Diff(res.Map(), again.Map()); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

// Without -mixed, the arguments owed to required parameters are set aside
// before switch matching, so they may look like switches. They are taken
// from the end, or from the front under -pfirst.
func TestPartition(t *testing.T) {
	const def = `{-x -key x} -y= r1 r2`
	for n := range 4 {
		var lead []string
		for range n {
			lead = append(lead, "-x")
		}
		args := append(slices.Clone(lead), "-p1", "-p2")
		got := mustParse(t, def, Options{}, args...)
		if got.Lookup("r1") != "-p1" || got.Lookup("r2") != "-p2" {
			t.Errorf("Parse(%q) = %v", args, got.Map())
		}
		if want := n > 0; got.Has("x") != want {
			t.Errorf("Parse(%q) has x = %v, want %v", args, got.Has("x"), want)
		}

		args = append([]string{"-p1", "-p2"}, lead...)
		got = mustParse(t, def, Options{PFirst: true}, args...)
		if got.Lookup("r1") != "-p1" || got.Lookup("r2") != "-p2" {
			t.Errorf("Parse(%q) with -pfirst = %v", args, got.Map())
		}
	}

	got := mustParse(t, `-x r1 rest*`, Options{}, "-x", "a", "b", "-c")
	want := map[string]string{"x": "", "r1": "a", "rest": "b -c"}
	if diff := cmp.Diff(want, got.Map()); diff != "" {
		t.Errorf("catchall partition mismatch (-want +got):\n%s", diff)
	}

	if _, err := Parse(MustParseDefinition(`-x r1`), Options{Mixed: true}, []string{"-p1"}); KindOf(err) != UnknownSwitch {
		t.Errorf("-mixed err = %v, want UnknownSwitch", err)
	}
}
