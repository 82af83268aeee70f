// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argtype implements the primitive value types an element can be
// restricted to with -type.
//
// All checks are strict: the empty string is never a member of any type.
package argtype

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/yeetrun/argparse/pkg/tcllist"
	"tailscale.com/types/lazy"
)

type Type int

const (
	Unknown Type = iota
	Alnum
	Alpha
	ASCII
	Boolean
	Control
	Dict
	Digit
	Double
	Graph
	Integer
	List
	Lower
	Print
	Punct
	Space
	Upper
	WideInteger
	WordChar
	XDigit
)

// names is sorted; Names and the allow-list message depend on it.
var names = [...]string{
	Alnum:       "alnum",
	Alpha:       "alpha",
	ASCII:       "ascii",
	Boolean:     "boolean",
	Control:     "control",
	Dict:        "dict",
	Digit:       "digit",
	Double:      "double",
	Graph:       "graph",
	Integer:     "integer",
	List:        "list",
	Lower:       "lower",
	Print:       "print",
	Punct:       "punct",
	Space:       "space",
	Upper:       "upper",
	WideInteger: "wideinteger",
	WordChar:    "wordchar",
	XDigit:      "xdigit",
}

func (t Type) String() string {
	if t <= Unknown || int(t) >= len(names) {
		return "unknown"
	}
	return names[t]
}

// Lookup returns the type with the given name.
func Lookup(name string) (Type, bool) {
	for t := Alnum; int(t) < len(names); t++ {
		if names[t] == name {
			return t, true
		}
	}
	return Unknown, false
}

// Names returns the names of all types in sorted order.
func Names() []string {
	return append([]string(nil), names[Alnum:]...)
}

var allowed lazy.SyncValue[string]

// Allowed returns the type names formatted for an error message, as in
// "alnum, alpha, ..., wordchar or xdigit".
func Allowed() string {
	return allowed.Get(func() string {
		n := Names()
		return strings.Join(n[:len(n)-1], ", ") + " or " + n[len(n)-1]
	})
}

// Check reports whether s is a member of t.
func (t Type) Check(s string) bool {
	if s == "" {
		return false
	}
	switch t {
	case Alnum:
		return every(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	case Alpha:
		return every(s, unicode.IsLetter)
	case ASCII:
		return every(s, func(r rune) bool { return r <= unicode.MaxASCII })
	case Boolean:
		return IsBoolean(s)
	case Control:
		return every(s, unicode.IsControl)
	case Dict:
		return tcllist.IsDict(s)
	case Digit:
		return every(s, unicode.IsDigit)
	case Double:
		return IsDouble(s)
	case Graph:
		return every(s, func(r rune) bool { return unicode.IsGraphic(r) && !unicode.IsSpace(r) })
	case Integer:
		return IsInteger(s)
	case List:
		return tcllist.IsList(s)
	case Lower:
		return every(s, unicode.IsLower)
	case Print:
		return every(s, unicode.IsGraphic)
	case Punct:
		return every(s, unicode.IsPunct)
	case Space:
		return every(s, unicode.IsSpace)
	case Upper:
		return every(s, unicode.IsUpper)
	case WideInteger:
		return IsWideInteger(s)
	case WordChar:
		return every(s, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Pc, r)
		})
	case XDigit:
		return every(s, func(r rune) bool {
			return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
		})
	}
	return false
}

func every(s string, f func(rune) bool) bool {
	for _, r := range s {
		if !f(r) {
			return false
		}
	}
	return true
}

// parseInt parses an integer in any of the accepted spellings: optional
// surrounding whitespace, an optional sign, and a decimal, 0x, 0o, 0b or
// leading-zero octal body.
func parseInt(s string) (neg bool, mag uint64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "_") {
		return false, 0, false
	}
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || s[0] == '-' || s[0] == '+' {
		return false, 0, false
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return false, 0, false
	}
	return neg, v, true
}

// IsInteger reports whether s is an integer that fits in 32 bits, signed or
// unsigned.
func IsInteger(s string) bool {
	neg, v, ok := parseInt(s)
	if !ok {
		return false
	}
	if neg {
		return v <= -math.MinInt32
	}
	return v <= math.MaxUint32
}

// IsWideInteger reports whether s is an integer that fits in 64 bits.
func IsWideInteger(s string) bool {
	neg, v, ok := parseInt(s)
	if !ok {
		return false
	}
	if neg {
		return v <= 1<<63
	}
	return true
}

// IsDouble reports whether s is a number. Integers in any accepted spelling
// count, as do infinities; NaN does not.
func IsDouble(s string) bool {
	if _, _, ok := parseInt(s); ok {
		return true
	}
	t := strings.TrimSpace(s)
	if t == "" || strings.Contains(t, "_") {
		return false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f)
}

var boolWords = []string{"false", "no", "off", "on", "true", "yes"}

// IsBoolean reports whether s is a number or a unique, case-insensitive
// prefix of true, false, yes, no, on or off.
func IsBoolean(s string) bool {
	if IsDouble(s) {
		return true
	}
	_, ok := BoolValue(s)
	return ok
}

// BoolValue returns the truth value of a boolean word. Numbers are true when
// non-zero.
func BoolValue(s string) (value, ok bool) {
	if IsDouble(s) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// Integer spellings ParseFloat does not take, e.g. 0x10 or 0b101.
			_, v, _ := parseInt(s)
			return v != 0, true
		}
		return f != 0, true
	}
	l := strings.ToLower(s)
	match := ""
	for _, w := range boolWords {
		if strings.HasPrefix(w, l) {
			if match != "" {
				return false, false
			}
			match = w
		}
	}
	switch match {
	case "true", "yes", "on":
		return true, true
	case "false", "no", "off":
		return false, true
	}
	return false, false
}
