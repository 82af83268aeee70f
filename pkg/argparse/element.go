// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yeetrun/argparse/pkg/argtype"
	"github.com/yeetrun/argparse/pkg/validate"
)

// Kind says whether an element is a switch or a parameter.
type Kind int

const (
	Switch Kind = iota + 1
	Parameter
)

func (k Kind) String() string {
	switch k {
	case Switch:
		return "switch"
	case Parameter:
		return "parameter"
	}
	return "unknown"
}

// Level is the scope depth of a by-reference binding: N frames up from the
// caller when Absolute is false, or frame N counted from the outermost
// (global) frame when Absolute is true.
type Level struct {
	N        int
	Absolute bool
}

// ParseLevel parses "N" or "#N".
func ParseLevel(s string) (Level, error) {
	abs := strings.HasPrefix(s, "#")
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n < 0 {
		return Level{}, errorf(BadLevel, "bad level %q", s)
	}
	return Level{N: n, Absolute: abs}, nil
}

func (l Level) String() string {
	if l.Absolute {
		return "#" + strconv.Itoa(l.N)
	}
	return strconv.Itoa(l.N)
}

// attr is an element attribute word.
type attr int

const (
	attrAlias attr = iota
	attrArgument
	attrBoolean
	attrCatchall
	attrDefault
	attrEnum
	attrForbid
	attrIgnore
	attrImply
	attrKeep
	attrKey
	attrLevel
	attrOptional
	attrParameter
	attrPass
	attrReciprocal
	attrRequire
	attrRequired
	attrStandalone
	attrSwitch
	attrUpvar
	attrValidate
	attrValue
	attrType
	attrAllow
	attrHelp
	attrErrorMsg
	attrHSuppress
	numAttrs
)

var attrNames = [numAttrs]string{
	"alias", "argument", "boolean", "catchall", "default", "enum", "forbid",
	"ignore", "imply", "keep", "key", "level", "optional", "parameter",
	"pass", "reciprocal", "require", "required", "standalone", "switch", "upvar",
	"validate", "value", "type", "allow", "help", "errormsg", "hsuppress",
}

func (a attr) String() string { return attrNames[a] }

// attrWords are the attribute words as written in a declaration, in the
// order error messages list them.
var attrWords = func() []string {
	w := make([]string, numAttrs)
	for i, n := range attrNames {
		w[i] = "-" + n
	}
	return w
}()

func lookupAttr(word string) (attr, bool) {
	for i, w := range attrWords {
		if w == word {
			return attr(i), true
		}
	}
	return 0, false
}

// takesArg reports whether the attribute word is followed by a value.
func (a attr) takesArg() bool {
	switch a {
	case attrAlias, attrDefault, attrEnum, attrForbid, attrImply, attrKey, attrLevel,
		attrPass, attrRequire, attrValidate, attrValue, attrType, attrAllow, attrHelp, attrErrorMsg:
		return true
	}
	return false
}

type attrSet uint32

func (s attrSet) has(a attr) bool { return s&(1<<a) != 0 }
func (s *attrSet) add(a attr)     { *s |= 1 << a }
func (s *attrSet) del(a attr)     { *s &^= 1 << a }

func (s attrSet) hasAll(as ...attr) bool {
	for _, a := range as {
		if !s.has(a) {
			return false
		}
	}
	return true
}

// Element is one compiled switch or parameter.
type Element struct {
	Name string
	Kind Kind

	// Key is the result key. HasKey reports whether it is set; elements
	// with -ignore or -pass and no explicit -key produce no result value.
	Key string
	// Aliases are alternative switch names.
	Aliases []string
	// Pass is the pass-through key collecting the raw tokens of this
	// element, if HasPass.
	Pass string
	// Default is the value bound when the element is omitted.
	Default *string
	// Value is the value bound when a switch without argument is present.
	Value *string
	// Enum lists the accepted values; unique prefixes are accepted unless
	// Options.Exact is set.
	Enum []string
	// Validator checks each value. ValidateSrc is the -validate word as
	// written, ValidateMsg the text used in failure messages and ErrorMsg
	// an optional failure message template.
	Validator   validate.Validator
	ValidateSrc string
	ValidateMsg string
	ErrorMsg    string
	// Type restricts values to a primitive type.
	Type argtype.Type
	// Require, Forbid and Allow name other elements this element requires,
	// excludes, or exclusively tolerates.
	Require []string
	Forbid  []string
	Allow   []string
	// Imply lists arguments inserted after this switch when it is present.
	Imply []string
	// Level is the scope level of an -upvar binding.
	Level Level
	// Help is the element description, for help collaborators.
	Help string

	set attrSet
}

// Has reports whether the attribute word (without the leading dash) is set
// on e, as given or as derived by the compiler.
func (e *Element) Has(word string) bool {
	for i, n := range attrNames {
		if n == word {
			return e.set.has(attr(i))
		}
	}
	return false
}

func (e *Element) IsSwitch() bool    { return e.Kind == Switch }
func (e *Element) IsParameter() bool { return e.Kind == Parameter }
func (e *Element) Argument() bool    { return e.set.has(attrArgument) }
func (e *Element) Optional() bool    { return e.set.has(attrOptional) }
func (e *Element) Required() bool    { return e.set.has(attrRequired) }
func (e *Element) Catchall() bool    { return e.set.has(attrCatchall) }
func (e *Element) Upvar() bool       { return e.set.has(attrUpvar) }
func (e *Element) Standalone() bool  { return e.set.has(attrStandalone) }
func (e *Element) Ignore() bool      { return e.set.has(attrIgnore) }
func (e *Element) Keep() bool        { return e.set.has(attrKeep) }
func (e *Element) Reciprocal() bool  { return e.set.has(attrReciprocal) }
func (e *Element) HSuppress() bool   { return e.set.has(attrHSuppress) }
func (e *Element) HasKey() bool      { return e.set.has(attrKey) }
func (e *Element) HasPass() bool     { return e.set.has(attrPass) }

// Attributes returns the set attribute words, without dashes, in canonical
// order.
func (e *Element) Attributes() []string {
	var out []string
	for i, n := range attrNames {
		if e.set.has(attr(i)) {
			out = append(out, n)
		}
	}
	return out
}

// displayName is the name used in messages: "-name" for switches.
func (e *Element) displayName() string {
	if e.Kind == Switch {
		return "-" + e.Name
	}
	return e.Name
}

// aliasJoin renders "-a1|a2|name".
func (e *Element) aliasJoin() string {
	var sb strings.Builder
	sb.WriteByte('-')
	for _, a := range e.Aliases {
		sb.WriteString(a)
		sb.WriteByte('|')
	}
	sb.WriteString(e.Name)
	return sb.String()
}

// record returns the attribute record that validators see as "opt".
func (e *Element) record() map[string]any {
	m := make(map[string]any)
	for i, n := range attrNames {
		a := attr(i)
		if !e.set.has(a) {
			continue
		}
		switch a {
		case attrAlias:
			m[n] = e.Aliases
		case attrDefault:
			if e.Default != nil {
				m[n] = *e.Default
			}
		case attrValue:
			if e.Value != nil {
				m[n] = *e.Value
			}
		case attrEnum:
			m[n] = e.Enum
		case attrForbid:
			m[n] = e.Forbid
		case attrRequire:
			m[n] = e.Require
		case attrAllow:
			m[n] = e.Allow
		case attrImply:
			m[n] = e.Imply
		case attrKey:
			m[n] = e.Key
		case attrPass:
			m[n] = e.Pass
		case attrLevel:
			m[n] = e.Level.String()
		case attrValidate:
			m[n] = e.ValidateSrc
		case attrType:
			m[n] = e.Type.String()
		case attrHelp:
			m[n] = e.Help
		case attrErrorMsg:
			m[n] = e.ErrorMsg
		default:
			m[n] = true
		}
	}
	return m
}

func (e *Element) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Name)
}
