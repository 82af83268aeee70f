// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package defload loads argparse definitions from TOML, YAML, KDL and JSON
// files.
package defload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/argparse/pkg/argparse"
	"github.com/yeetrun/argparse/pkg/tcllist"
	"gopkg.in/yaml.v3"
)

// Format is a definition file format.
type Format int

const (
	TOML Format = iota + 1
	YAML
	KDL
	JSON
)

func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	case KDL:
		return "kdl"
	case JSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for files whose extension names no format.
var ErrUnknownFormat = errors.New("unknown definition file format")

// FormatOf returns the format of path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".kdl":
		return KDL, nil
	case ".json":
		return JSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// File is the content of a definition file.
type File struct {
	// Requires is a semver constraint on Version, such as ">= 1.0".
	Requires string    `toml:"requires,omitempty" yaml:"requires,omitempty" json:"requires,omitempty"`
	Commands []Command `toml:"commands" yaml:"commands" json:"commands"`
}

// Command is one named definition.
type Command struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	// Definition is the definition in list syntax.
	Definition string `toml:"definition,omitempty" yaml:"definition,omitempty" json:"definition,omitempty"`
	// Elements are declarations appended after Definition, one word list
	// each.
	Elements [][]string `toml:"elements,omitempty" yaml:"elements,omitempty" json:"elements,omitempty"`
	// Options are global option words, such as "-mixed -long".
	Options string `toml:"options,omitempty" yaml:"options,omitempty" json:"options,omitempty"`
	Help    string `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
}

// Decls returns the declarations of c.
func (c *Command) Decls() (argparse.Definition, error) {
	def, err := argparse.ParseDefinition(c.Definition)
	if err != nil {
		return nil, err
	}
	for _, words := range c.Elements {
		def = append(def, argparse.Decl(words))
	}
	return def, nil
}

// Opts returns the global options of c.
func (c *Command) Opts() (argparse.Options, error) {
	words, err := tcllist.Split(c.Options)
	if err != nil {
		return argparse.Options{}, err
	}
	opts, rest, err := argparse.ParseOptions(words)
	if err != nil {
		return argparse.Options{}, err
	}
	if len(rest) > 0 {
		return argparse.Options{}, fmt.Errorf("unexpected option words: %s", tcllist.Join(rest))
	}
	if c.Help != "" && opts.Help == "" {
		opts.Help = c.Help
	}
	return opts, nil
}

// Compile compiles c with e.
func (c *Command) Compile(e *argparse.Engine) (*argparse.Compiled, error) {
	def, err := c.Decls()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	opts, err := c.Opts()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	compiled, err := e.Compile(def, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	return compiled, nil
}

// Command returns the command with the given name.
func (f *File) Command(name string) (*Command, bool) {
	for i := range f.Commands {
		if f.Commands[i].Name == name {
			return &f.Commands[i], true
		}
	}
	return nil, false
}

// Names returns the command names in file order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Commands))
	for _, c := range f.Commands {
		names = append(names, c.Name)
	}
	return names
}

func (f *File) check() error {
	if err := checkRequires(f.Requires); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, c := range f.Commands {
		if c.Name == "" {
			return errors.New("command without a name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// checkRequires reports whether Version satisfies the constraint s.
func checkRequires(s string) error {
	if s == "" {
		return nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return fmt.Errorf("bad requires %q: %w", s, err)
	}
	v, err := semver.NewVersion(argparse.Version)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("requires argparse %s, have %s", s, v)
	}
	return nil
}

// Decode reads a definition file in format f from r.
func Decode(r io.Reader, f Format) (*File, error) {
	var file File
	switch f {
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&file)
		if err != nil {
			return nil, err
		}
		if und := md.Undecoded(); len(und) > 0 {
			return nil, fmt.Errorf("unknown key %q", und[0].String())
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, err
		}
	case KDL:
		kf, err := decodeKDL(r)
		if err != nil {
			return nil, err
		}
		file = *kf
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err := file.check(); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadFile reads the definition file at path, choosing the format from its
// extension.
func LoadFile(path string) (*File, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, err := Decode(bytes.NewReader(b), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Encode writes file to w in format f. KDL output is not supported.
func Encode(w io.Writer, file *File, f Format) error {
	switch f {
	case TOML:
		return toml.NewEncoder(w).Encode(file)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	}
	return fmt.Errorf("cannot encode %v", f)
}
