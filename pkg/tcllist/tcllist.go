// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tcllist reads and writes the brace-quoted list syntax used for
// argument definitions, e.g. `{-a= -default 1} -b {name -required}`.
package tcllist

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"tailscale.com/util/must"
)

// SyntaxError is returned when a string is not a well-formed list.
type SyntaxError struct {
	Msg string
	Pos int
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

// Split parses s as a list and returns its elements.
func Split(s string) ([]string, error) {
	var out []string
	i := 0
	for {
		i = skipSpace(s, i)
		if i >= len(s) {
			return out, nil
		}
		var (
			elem string
			err  error
		)
		switch s[i] {
		case '{':
			elem, i, err = readBraced(s, i)
		case '"':
			elem, i, err = readQuoted(s, i)
		default:
			elem, i = readBare(s, i)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
}

// MustSplit is like Split but panics on malformed input. It is meant for
// literals in tests and package-level tables.
func MustSplit(s string) []string {
	return must.Get(Split(s))
}

// IsList reports whether s parses as a list.
func IsList(s string) bool {
	_, err := Split(s)
	return err == nil
}

// IsDict reports whether s parses as a list with an even number of elements.
func IsDict(s string) bool {
	l, err := Split(s)
	return err == nil && len(l)%2 == 0
}

// Join renders elems as a list, quoting elements as needed so that Split
// returns them unchanged.
func Join(elems []string) string {
	var sb strings.Builder
	for i, e := range elems {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(quote(e, i == 0))
	}
	return sb.String()
}

// Quote renders a single element.
func Quote(s string) string {
	return quote(s, true)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func readBraced(s string, start int) (string, int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end := i + 1
				if end < len(s) && !isSpace(s[end]) {
					return "", 0, &SyntaxError{
						Msg: fmt.Sprintf("list element in braces followed by %q instead of space", nextWord(s, end)),
						Pos: end,
					}
				}
				return s[start+1 : i], end, nil
			}
		}
	}
	return "", 0, &SyntaxError{Msg: "unmatched open brace in list", Pos: start}
}

func readQuoted(s string, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(s); {
		switch s[i] {
		case '"':
			end := i + 1
			if end < len(s) && !isSpace(s[end]) {
				return "", 0, &SyntaxError{
					Msg: fmt.Sprintf("list element in quotes followed by %q instead of space", nextWord(s, end)),
					Pos: end,
				}
			}
			return sb.String(), end, nil
		case '\\':
			r, n := unescape(s[i:])
			sb.WriteString(r)
			i += n
		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return "", 0, &SyntaxError{Msg: "unmatched open quote in list", Pos: start}
}

func readBare(s string, start int) (string, int) {
	var sb strings.Builder
	i := start
	for i < len(s) && !isSpace(s[i]) {
		if s[i] == '\\' {
			r, n := unescape(s[i:])
			sb.WriteString(r)
			i += n
			continue
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String(), i
}

func nextWord(s string, i int) string {
	j := i
	for j < len(s) && !isSpace(s[j]) {
		j++
	}
	return s[i:j]
}

// unescape decodes the backslash sequence at the start of s and returns the
// decoded text and the number of bytes consumed.
func unescape(s string) (string, int) {
	if len(s) < 2 {
		return "\\", 1
	}
	switch c := s[1]; c {
	case 'a':
		return "\a", 2
	case 'b':
		return "\b", 2
	case 'f':
		return "\f", 2
	case 'n':
		return "\n", 2
	case 'r':
		return "\r", 2
	case 't':
		return "\t", 2
	case 'v':
		return "\v", 2
	case '\n':
		// Backslash-newline and the following whitespace collapse to a space.
		n := 2
		for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
			n++
		}
		return " ", n
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		n := 2
		for n < len(s) && n-2 < width && isHex(s[n]) {
			n++
		}
		if n == 2 {
			return string(c), 2
		}
		v, err := strconv.ParseUint(s[2:n], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return string(c), 2
		}
		return string(rune(v)), n
	default:
		_, size := utf8.DecodeRuneInString(s[1:])
		return s[1 : 1+size], 1 + size
	}
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func quote(s string, first bool) string {
	if s == "" {
		return "{}"
	}
	if !needsQuoting(s, first) {
		return s
	}
	if canBrace(s) {
		return "{" + s + "}"
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			sb.WriteString(`\n`)
			continue
		case '\t':
			sb.WriteString(`\t`)
			continue
		case '\r':
			sb.WriteString(`\r`)
			continue
		case '\v':
			sb.WriteString(`\v`)
			continue
		case '\f':
			sb.WriteString(`\f`)
			continue
		case ' ', '{', '}', '"', '\\', '[', ']', '$', ';':
			sb.WriteByte('\\')
		case '#':
			if i == 0 && first {
				sb.WriteByte('\\')
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func needsQuoting(s string, first bool) bool {
	if first && s[0] == '#' {
		return true
	}
	if s[0] == '{' || s[0] == '"' {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\v', '\f', '{', '}', '\\', '[', ']', '$', ';', '"':
			return true
		}
	}
	return false
}

// canBrace reports whether s survives a round trip inside braces: its braces
// must balance and it must not end in an unpaired backslash.
func canBrace(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i == len(s)-1 {
				return false
			}
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
