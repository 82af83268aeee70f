// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies an Error.
type ErrorKind int

const (
	_ ErrorKind = iota

	// Definition syntax.
	BadList
	EmptyElement
	BadShorthand
	BadElementName
	BadAlias
	BadElementAttribute
	MissingAttributeArgument
	BadValidator
	BadLevel

	// Global options.
	BadGlobalOption
	ConflictingGlobalOptions

	// Definition compiler.
	ConflictingAttributes
	DisallowedCombination
	RequiredPairMissing
	ElementNameCollision
	AliasCollision
	AliasNameClash
	MultipleCatchallParameters
	MultipleUpvars
	UnknownType
	UndefinedConstraintTarget
	SharedKeyConflict

	// Matching engine.
	UnknownSwitch
	AmbiguousOrUnknownSwitch
	UnexpectedInlineArgument
	MissingSwitchArgument
	MissingRequiredSwitches

	// Parameter allocator.
	MissingRequiredParameters
	TooManyArguments

	// Validation pipeline.
	EnumMismatch
	ValidationFailed
	TypeMismatch

	// Result assembler.
	RequirementNotMet
	ForbiddenCombination
	NotAllowedTogether
	BindFailed
)

var kindNames = map[ErrorKind]string{
	BadList:                    "BadList",
	EmptyElement:               "EmptyElement",
	BadShorthand:               "BadShorthand",
	BadElementName:             "BadElementName",
	BadAlias:                   "BadAlias",
	BadElementAttribute:        "BadElementAttribute",
	MissingAttributeArgument:   "MissingAttributeArgument",
	BadValidator:               "BadValidator",
	BadLevel:                   "BadLevel",
	BadGlobalOption:            "BadGlobalOption",
	ConflictingGlobalOptions:   "ConflictingGlobalOptions",
	ConflictingAttributes:      "ConflictingAttributes",
	DisallowedCombination:      "DisallowedCombination",
	RequiredPairMissing:        "RequiredPairMissing",
	ElementNameCollision:       "ElementNameCollision",
	AliasCollision:             "AliasCollision",
	AliasNameClash:             "AliasNameClash",
	MultipleCatchallParameters: "MultipleCatchallParameters",
	MultipleUpvars:             "MultipleUpvars",
	UnknownType:                "UnknownType",
	UndefinedConstraintTarget:  "UndefinedConstraintTarget",
	SharedKeyConflict:          "SharedKeyConflict",
	UnknownSwitch:              "UnknownSwitch",
	AmbiguousOrUnknownSwitch:   "AmbiguousOrUnknownSwitch",
	UnexpectedInlineArgument:   "UnexpectedInlineArgument",
	MissingSwitchArgument:      "MissingSwitchArgument",
	MissingRequiredSwitches:    "MissingRequiredSwitches",
	MissingRequiredParameters:  "MissingRequiredParameters",
	TooManyArguments:           "TooManyArguments",
	EnumMismatch:               "EnumMismatch",
	ValidationFailed:           "ValidationFailed",
	TypeMismatch:               "TypeMismatch",
	RequirementNotMet:          "RequirementNotMet",
	ForbiddenCombination:       "ForbiddenCombination",
	NotAllowedTogether:         "NotAllowedTogether",
	BindFailed:                 "BindFailed",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error reports why a definition could not be compiled or why arguments
// could not be parsed against it.
type Error struct {
	Kind ErrorKind
	Msg  string
	// Suggestion is a close valid spelling for the offending word, if any.
	Suggestion string
	Err        error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so that
//
//	errors.Is(err, &argparse.Error{Kind: argparse.TooManyArguments})
//
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

// joinAnd formats "a", "a and b", "a, b, and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func plural(n int, word, suffix string) string {
	if n > 1 {
		return word + suffix
	}
	return word
}
