// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shellenv renders argparse bindings as POSIX shell assignments so
// that a shell script can eval them.
package shellenv

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/yeetrun/argparse/pkg/argparse"
)

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var safeRE = regexp.MustCompile(`^[A-Za-z0-9_./:@%+,=-]+$`)

// Quote returns s quoted for a POSIX shell.
func Quote(s string) string {
	if safeRE.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func checkName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("%q is not a valid shell variable name", name)
	}
	return nil
}

// Binder writes one shell statement per binding to an io.Writer. Aliases
// become bash namerefs; shells have no frame levels, so only the default
// level (1) and the global frame (#0) are accepted.
type Binder struct {
	w io.Writer
}

var _ interface {
	argparse.Binder
	argparse.Checker
} = (*Binder)(nil)

// NewBinder returns a Binder writing to w.
func NewBinder(w io.Writer) *Binder {
	return &Binder{w: w}
}

// CheckKey implements argparse.Checker.
func (b *Binder) CheckKey(key string) error {
	return checkName(key)
}

// CheckAlias implements argparse.Checker.
func (b *Binder) CheckAlias(key, target string, level argparse.Level) error {
	if err := checkName(key); err != nil {
		return err
	}
	if level != (argparse.Level{N: 1}) && level != (argparse.Level{N: 0, Absolute: true}) {
		return fmt.Errorf("level %s cannot be expressed in a shell", level)
	}
	return checkName(target)
}

// BindValue implements argparse.Binder.
func (b *Binder) BindValue(key string, v argparse.Value) error {
	if err := checkName(key); err != nil {
		return err
	}
	_, err := fmt.Fprintf(b.w, "%s=%s\n", key, Quote(v.String()))
	return err
}

// BindAlias implements argparse.Binder.
func (b *Binder) BindAlias(key, target string, level argparse.Level) error {
	if err := b.CheckAlias(key, target, level); err != nil {
		return err
	}
	opt := "-n"
	if level.Absolute {
		opt = "-gn"
	}
	_, err := fmt.Fprintf(b.w, "declare %s %s=%s\n", opt, key, target)
	return err
}

// Unbind implements argparse.Binder.
func (b *Binder) Unbind(key string) error {
	if err := checkName(key); err != nil {
		return err
	}
	_, err := fmt.Fprintf(b.w, "unset %s\n", key)
	return err
}

// Write writes the keys of res to an environment file with the given name,
// one KEY=value line per key.
func Write(name string, res *argparse.Result) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := marshalEnv(f, res); err != nil {
		return fmt.Errorf("failed to marshal env: %v", err)
	}
	return f.Close()
}

func marshalEnv(o io.Writer, res *argparse.Result) error {
	for _, k := range res.Keys() {
		if err := checkName(k); err != nil {
			return err
		}
		v, _ := res.Get(k)
		if _, err := fmt.Fprintf(o, "%s=%s\n", k, Quote(v.String())); err != nil {
			return err
		}
	}
	return nil
}
