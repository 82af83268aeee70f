// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shorthand parses the compact name syntax of an element
// declaration, such as "-v|verbose", "-level=", "name?" or "-out^".
//
// A token is an optional leading "-" (the element is a switch), an optional
// run of aliases terminated by "|", the element name, and zero or more flag
// characters:
//
//	=  the switch takes an argument
//	?  optional
//	!  required
//	*  catchall
//	^  bind by reference (upvar)
package shorthand

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadShorthand is returned by Parse for tokens that do not follow the
// shorthand grammar.
var ErrBadShorthand = errors.New("bad element shorthand")

// ErrBadName is returned by ParseName for names that are not valid element
// names.
var ErrBadName = errors.New("bad element name")

var (
	tokenRE = regexp.MustCompile(`^(?:(-)(?:(.*)\|)?)?(\w[\w-]*)([=?!*^]*)$`)
	nameRE  = regexp.MustCompile(`^\w[\w-]*$`)
)

// Flags are the attributes that shorthand flag characters turn on.
type Flags struct {
	Argument bool // =
	Optional bool // ?
	Required bool // !
	Catchall bool // *
	Upvar    bool // ^
}

// Any reports whether any flag is set.
func (f Flags) Any() bool {
	return f.Argument || f.Optional || f.Required || f.Catchall || f.Upvar
}

// String returns the flags in shorthand form.
func (f Flags) String() string {
	var sb strings.Builder
	if f.Argument {
		sb.WriteByte('=')
	}
	if f.Optional {
		sb.WriteByte('?')
	}
	if f.Required {
		sb.WriteByte('!')
	}
	if f.Catchall {
		sb.WriteByte('*')
	}
	if f.Upvar {
		sb.WriteByte('^')
	}
	return sb.String()
}

// Token is a parsed shorthand token.
type Token struct {
	Switch bool
	// Aliases holds the "|"-separated names in front of Name, in order.
	// Entries are not validated here; an empty entry comes from "a||b".
	Aliases []string
	Name    string
	Flags
}

// String renders t back into shorthand form.
func (t Token) String() string {
	var sb strings.Builder
	if t.Switch {
		sb.WriteByte('-')
		for _, a := range t.Aliases {
			sb.WriteString(a)
			sb.WriteByte('|')
		}
	}
	sb.WriteString(t.Name)
	sb.WriteString(t.Flags.String())
	return sb.String()
}

// Parse parses a shorthand token.
func Parse(tok string) (Token, error) {
	m := tokenRE.FindStringSubmatch(tok)
	if m == nil {
		return Token{}, fmt.Errorf("%w: %s", ErrBadShorthand, tok)
	}
	t := Token{
		Switch: m[1] == "-",
		Name:   m[3],
	}
	if m[2] != "" {
		t.Aliases = strings.Split(m[2], "|")
	}
	for _, c := range m[4] {
		switch c {
		case '=':
			t.Argument = true
		case '?':
			t.Optional = true
		case '!':
			t.Required = true
		case '*':
			t.Catchall = true
		case '^':
			t.Upvar = true
		}
	}
	return t, nil
}

// ParseName checks a name given together with an explicit -switch or
// -parameter attribute. Such declarations spell out every attribute, so
// shorthand flag characters and aliases are rejected.
func ParseName(name string) (string, error) {
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("%w: %s", ErrBadName, name)
	}
	return name, nil
}

// ValidName reports whether s is a valid element or alias name.
func ValidName(s string) bool {
	return nameRE.MatchString(s)
}
