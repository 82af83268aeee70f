// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"github.com/yeetrun/argparse/pkg/defcache"
	"tailscale.com/types/lazy"
	"tailscale.com/types/logger"
)

// Version is the version of the definition language implemented by this
// package. Definition files can require a range of it.
const Version = "1.2.0"

// Engine compiles definitions through a shared cache and parses arguments
// against them. It is safe for concurrent use.
type Engine struct {
	logf  logger.Logf
	cache *defcache.Cache[*Compiled]
}

// An EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogf sets the engine's debug logger.
func WithLogf(logf logger.Logf) EngineOption {
	return func(e *Engine) { e.logf = logf }
}

// NewEngine returns an Engine with an empty cache.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logf: logger.Discard}
	for _, o := range opts {
		o(e)
	}
	e.cache = defcache.New[*Compiled](e.logf)
	return e
}

// Compile returns def compiled under opts. The result is a private copy;
// compiling the same definition and options again hits the cache. Options
// carrying a validator without an identity (see validate.Named) are
// compiled every time.
func (e *Engine) Compile(def Definition, opts Options) (*Compiled, error) {
	if !opts.cacheable() {
		e.logf("argparse: not caching definition with anonymous validators")
		return Compile(def, opts)
	}
	return e.cache.Get(cacheKey(def, &opts), func() (*Compiled, error) {
		return Compile(def, opts)
	})
}

// Parse parses args against def and returns the result without binding
// anything. opts.Inline is implied.
func (e *Engine) Parse(def Definition, opts Options, args []string) (*Result, error) {
	opts.Inline = true
	opts.Keep = false
	return e.Run(def, opts, args, nil)
}

// Run parses args against def. Unless opts.Inline is set, the result is
// also handed to b.
func (e *Engine) Run(def Definition, opts Options, args []string, b Binder) (*Result, error) {
	c, err := e.Compile(def, opts)
	if err != nil {
		e.logf("argparse: compile: %v", err)
		return nil, err
	}
	return c.run(args, b)
}

// Stats returns the definition cache counters.
func (e *Engine) Stats() defcache.Stats { return e.cache.Stats() }

// Run parses args against c, binding the result to b unless c was
// compiled with Inline. c itself is not modified.
func (c *Compiled) Run(args []string, b Binder) (*Result, error) {
	return c.Clone().run(args, b)
}

// run parses on c directly; c must be a private copy.
func (c *Compiled) run(args []string, b Binder) (*Result, error) {
	p := newParser(c)
	res, err := p.run(args)
	if err != nil {
		return nil, err
	}
	if c.opts.Inline {
		return res, nil
	}
	if err := c.bind(res, res.Omitted(), b); err != nil {
		return nil, err
	}
	return res, nil
}

var std lazy.SyncValue[*Engine]

// Default returns the shared engine used by the package-level functions.
func Default() *Engine {
	return std.Get(func() *Engine { return NewEngine() })
}

// Parse is Default().Parse.
func Parse(def Definition, opts Options, args []string) (*Result, error) {
	return Default().Parse(def, opts, args)
}

// Run is Default().Run.
func Run(def Definition, opts Options, args []string, b Binder) (*Result, error) {
	return Default().Run(def, opts, args, b)
}
