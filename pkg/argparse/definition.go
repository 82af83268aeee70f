// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"strings"

	"github.com/yeetrun/argparse/pkg/tcllist"
	"tailscale.com/util/must"
)

// Decl is one element declaration: the name or shorthand token followed by
// attribute words, e.g. {"-level=", "-default", "1", "-type", "integer"}.
type Decl []string

func (d Decl) String() string { return tcllist.Join(d) }

// Definition is an ordered list of element declarations.
type Definition []Decl

// ParseDefinition parses definition text such as
//
//	{-salutation= -default hello} -modifier= -title {subject -required}
//
// into declarations.
func ParseDefinition(src string) (Definition, error) {
	elems, err := tcllist.Split(src)
	if err != nil {
		return nil, wrapErr(BadList, err)
	}
	def := make(Definition, 0, len(elems))
	for _, e := range elems {
		words, err := tcllist.Split(e)
		if err != nil {
			return nil, wrapErr(BadList, err)
		}
		def = append(def, Decl(words))
	}
	return def, nil
}

// MustParseDefinition is like ParseDefinition but panics on error.
func MustParseDefinition(src string) Definition {
	return must.Get(ParseDefinition(src))
}

func (d Definition) String() string {
	elems := make([]string, len(d))
	for i, decl := range d {
		elems[i] = decl.String()
	}
	return tcllist.Join(elems)
}

// strip drops comments and rejects empty declarations. A declaration
// whose first word is "#" is a comment; a lone {#} also comments out the
// declaration that follows it.
func (d Definition) strip() (Definition, error) {
	out := make(Definition, 0, len(d))
	skipNext := false
	for _, decl := range d {
		if len(decl) == 0 {
			return nil, errorf(EmptyElement, "element definition cannot be empty")
		}
		switch {
		case decl[0] == "#":
			if len(decl) == 1 {
				skipNext = true
			}
		case skipNext:
			skipNext = false
		default:
			out = append(out, decl)
		}
	}
	return out, nil
}

// cacheKey is the definition cache key for d compiled under opts.
func cacheKey(d Definition, opts *Options) string {
	var sb strings.Builder
	sb.WriteString(d.String())
	sb.WriteByte(' ')
	sb.WriteString(opts.Fingerprint())
	return sb.String()
}
