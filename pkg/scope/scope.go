// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scope implements a stack of variable frames that can receive the
// bindings of an argparse call, including by-reference aliases into outer
// frames.
package scope

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yeetrun/argparse/pkg/argparse"
	"tailscale.com/util/mak"
)

// cell is the storage behind a variable. Aliased names share a cell.
type cell struct {
	v   argparse.Value
	set bool
}

type frame map[string]*cell

// Stack is a call stack of variable frames. Frame #0 is the global frame and
// always exists. The top frame is the one bindings are written to.
//
// A Stack is not safe for concurrent use.
type Stack struct {
	frames []frame
}

var _ interface {
	argparse.Binder
	argparse.Checker
} = (*Stack)(nil)

// New returns a Stack holding only the global frame.
func New() *Stack {
	return &Stack{frames: []frame{nil}}
}

// Push enters a new frame.
func (s *Stack) Push() {
	s.frames = append(s.frames, nil)
}

// Pop leaves the top frame. The global frame is never popped.
func (s *Stack) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth reports the index of the top frame; the global frame is #0.
func (s *Stack) Depth() int { return len(s.frames) - 1 }

func (s *Stack) top() *frame { return &s.frames[len(s.frames)-1] }

// resolve returns the index of the frame a level refers to: relative levels
// count up from the top frame, absolute ones from the global frame.
func (s *Stack) resolve(l argparse.Level) (int, error) {
	i := l.N
	if !l.Absolute {
		i = s.Depth() - l.N
	}
	if i < 0 || i > s.Depth() {
		return 0, fmt.Errorf("bad level %q", l)
	}
	return i, nil
}

// Set assigns v to name in the top frame, writing through an alias.
func (s *Stack) Set(name string, v argparse.Value) {
	f := s.top()
	if c, ok := (*f)[name]; ok {
		c.v, c.set = v, true
		return
	}
	mak.Set(f, name, &cell{v: v, set: true})
}

// Get returns the value of name in the top frame.
func (s *Stack) Get(name string) (argparse.Value, bool) {
	c, ok := (*s.top())[name]
	if !ok || !c.set {
		return argparse.Value{}, false
	}
	return c.v, true
}

// Unset removes name from the top frame. Unsetting an alias also unsets the
// variable it refers to.
func (s *Stack) Unset(name string) {
	f := s.top()
	if c, ok := (*f)[name]; ok {
		c.v, c.set = argparse.Value{}, false
		delete(*f, name)
	}
}

// Vars returns the names set in the top frame, sorted.
func (s *Stack) Vars() []string {
	var names []string
	for _, k := range slices.Sorted(maps.Keys(*s.top())) {
		if (*s.top())[k].set {
			names = append(names, k)
		}
	}
	return names
}

// Link makes name in the top frame refer to target in the frame at level.
// The target need not exist yet; setting either name sets both.
func (s *Stack) Link(name, target string, level argparse.Level) error {
	if err := s.CheckAlias(name, target, level); err != nil {
		return err
	}
	i, _ := s.resolve(level)
	tf := &s.frames[i]
	c, ok := (*tf)[target]
	if !ok {
		c = &cell{}
		mak.Set(tf, target, c)
	}
	mak.Set(s.top(), name, c)
	return nil
}

// CheckKey implements argparse.Checker. Any name can be set.
func (s *Stack) CheckKey(string) error { return nil }

// CheckAlias reports whether Link(key, target, level) would succeed without
// changing anything.
func (s *Stack) CheckAlias(key, target string, level argparse.Level) error {
	i, err := s.resolve(level)
	if err != nil {
		return err
	}
	if i == s.Depth() && key == target {
		return fmt.Errorf("can't alias %q to itself", key)
	}
	return nil
}

// BindValue implements argparse.Binder.
func (s *Stack) BindValue(key string, v argparse.Value) error {
	s.Set(key, v)
	return nil
}

// BindAlias implements argparse.Binder.
func (s *Stack) BindAlias(key, target string, level argparse.Level) error {
	return s.Link(key, target, level)
}

// Unbind implements argparse.Binder.
func (s *Stack) Unbind(key string) error {
	s.Unset(key)
	return nil
}
