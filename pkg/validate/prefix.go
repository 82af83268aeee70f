// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// PrefixError is returned by Prefix when a word matches no entry of the
// table, or is an ambiguous abbreviation of several.
type PrefixError struct {
	What      string   // e.g. "option" or "-op value"
	Word      string   // the word that was looked up
	Ambiguous bool     // the word abbreviates more than one entry
	Choices   []string // the table, in its original order
}

func (e *PrefixError) Error() string {
	adj := "bad"
	if e.Ambiguous {
		adj = "ambiguous"
	}
	return fmt.Sprintf("%s %s \"%s\": must be %s", adj, e.What, e.Word, JoinOr(e.Choices))
}

// Suggestion returns the table entry closest to the word, or "".
func (e *PrefixError) Suggestion() string {
	return Suggest(e.Word, e.Choices)
}

// Prefix looks word up in table. An exact match always wins. Unless exact is
// set, a prefix of exactly one entry also matches. The empty word only
// matches an empty entry.
func Prefix(what, word string, table []string, exact bool) (string, error) {
	for _, t := range table {
		if t == word {
			return t, nil
		}
	}
	perr := &PrefixError{What: what, Word: word, Choices: table}
	if exact || word == "" {
		return "", perr
	}
	match := ""
	n := 0
	for _, t := range table {
		if strings.HasPrefix(t, word) {
			match = t
			n++
		}
	}
	switch n {
	case 0:
		return "", perr
	case 1:
		return match, nil
	}
	perr.Ambiguous = true
	return "", perr
}

// JoinOr formats a list of choices: "a", "a or b", "a, b, or c".
func JoinOr(choices []string) string {
	switch len(choices) {
	case 0:
		return ""
	case 1:
		return choices[0]
	case 2:
		return choices[0] + " or " + choices[1]
	}
	return strings.Join(choices[:len(choices)-1], ", ") + ", or " + choices[len(choices)-1]
}

// Suggest returns the candidate that most closely contains word as a fuzzy
// match, or "" if none does.
func Suggest(word string, candidates []string) string {
	if word == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(word, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
