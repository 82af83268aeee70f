// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shayne/yargs"
	"github.com/yeetrun/argparse/pkg/argparse"
	"github.com/yeetrun/argparse/pkg/defload"
	"github.com/yeetrun/argparse/pkg/shellenv"
	"github.com/yeetrun/argparse/pkg/tcllist"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatShell = "shell"
)

// cli holds the state shared by the subcommand handlers.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	engine *argparse.Engine
	// format is the output format used when --format is not given.
	format string
	// tty reports whether stdout is a terminal; JSON is indented if so.
	tty bool
	// projectDir is where run starts looking for argparse.toml. Empty
	// means the working directory.
	projectDir string
}

type parseFlagsParsed struct {
	Format  string `flag:"format" help:"Output format: json, yaml or shell (ARGPARSE_FORMAT)"`
	Opts    string `flag:"opts" help:"Global options, such as -mixed -long"`
	EnvFile string `flag:"env-file" help:"Also write the result to this environment file"`
}

type outputFlags struct {
	format  string
	envFile string
}

func (c *cli) outputFlags(f parseFlagsParsed) (outputFlags, error) {
	out := outputFlags{format: f.Format, envFile: f.EnvFile}
	if out.format == "" {
		out.format = c.format
	}
	if out.format == "" {
		out.format = formatJSON
	}
	switch out.format {
	case formatJSON, formatYAML, formatShell:
		return out, nil
	}
	return out, fmt.Errorf("unknown format %q, must be json, yaml or shell", out.format)
}

// handleParse implements "argparse parse". The definition is the single
// positional argument, or the first word after "--" when there is none.
func (c *cli) handleParse(_ context.Context, args []string) error {
	if len(args) > 0 && args[0] == "parse" {
		args = args[1:]
	}
	result, err := yargs.ParseFlags[parseFlagsParsed](args)
	if err != nil {
		return err
	}
	rest := result.RemainingArgs
	var src string
	switch {
	case len(result.Args) == 1:
		src = result.Args[0]
	case len(result.Args) == 0 && len(rest) > 0:
		src, rest = rest[0], rest[1:]
	case len(result.Args) == 0:
		return errors.New("missing definition argument")
	default:
		return fmt.Errorf("unexpected arguments before --: %s", strings.Join(result.Args[1:], " "))
	}
	out, err := c.outputFlags(result.Flags)
	if err != nil {
		return err
	}
	def, err := argparse.ParseDefinition(src)
	if err != nil {
		return err
	}
	opts, err := parseOptionWords(result.Flags.Opts)
	if err != nil {
		return err
	}
	return c.parseAndPrint(def, opts, rest, out)
}

func parseOptionWords(s string) (argparse.Options, error) {
	words, err := tcllist.Split(s)
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
	return opts, nil
}

// parseAndPrint parses args and writes the result in the requested format.
// The shell format binds instead, so that aliases and omitted elements
// turn into namerefs and unsets. Nothing is written unless the whole
// command succeeds, so a failed parse never feeds a partial result to eval.
func (c *cli) parseAndPrint(def argparse.Definition, opts argparse.Options, args []string, out outputFlags) error {
	var res *argparse.Result
	var err error
	var shell bytes.Buffer
	if out.format == formatShell {
		opts.Inline = false
		res, err = c.engine.Run(def, opts, args, shellenv.NewBinder(&shell))
	} else {
		res, err = c.engine.Parse(def, opts, args)
	}
	if err != nil {
		return err
	}
	if out.envFile != "" {
		if err := shellenv.Write(out.envFile, res); err != nil {
			return fmt.Errorf("%s: %w", out.envFile, err)
		}
	}
	if out.format == formatShell {
		_, err := c.stdout.Write(shell.Bytes())
		return err
	}
	return writeResult(c.stdout, res, out.format, c.tty)
}

func writeResult(w io.Writer, res *argparse.Result, format string, indent bool) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		var b []byte
		var err error
		if indent {
			b, err = json.MarshalIndent(res, "", "  ")
		} else {
			b, err = json.Marshal(res)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
}

// handleCheck implements "argparse check": every file is loaded and all of
// its commands compiled concurrently; the report is printed in argument
// order.
func (c *cli) handleCheck(_ context.Context, args []string) error {
	if len(args) > 0 && args[0] == "check" {
		args = args[1:]
	}
	if len(args) == 0 {
		return errors.New("missing file argument")
	}
	reports := make([]string, len(args))
	var g errgroup.Group
	for i, path := range args {
		g.Go(func() error {
			f, err := defload.LoadFile(path)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for _, cmd := range f.Commands {
				compiled, err := cmd.Compile(c.engine)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(&sb, "%s: %s\n", path, cmd.Name)
				describe(&sb, compiled)
			}
			reports[i] = sb.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, r := range reports {
		if _, err := io.WriteString(c.stdout, r); err != nil {
			return err
		}
	}
	return nil
}

// describe writes the element table of a compiled definition.
func describe(w io.Writer, c *argparse.Compiled) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ELEMENT\tKIND\tKEY\tATTRIBUTES")
	for _, e := range c.Elements() {
		key := e.Key
		if !e.HasKey() {
			key = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, key, strings.Join(e.Attributes(), " "))
	}
	tw.Flush()
	fmt.Fprintf(w, "switches: %s\n", strings.Join(c.Switches(), " "))
	fmt.Fprintf(w, "parameters: %s\n", strings.Join(c.Params(), " "))
	if aliases := c.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(w, "aliases: %d\n", len(aliases))
	}
}

// handleRun implements "argparse run NAME -- ARG...".
func (c *cli) handleRun(_ context.Context, args []string) error {
	if len(args) > 0 && args[0] == "run" {
		args = args[1:]
	}
	result, err := yargs.ParseFlags[parseFlagsParsed](args)
	if err != nil {
		return err
	}
	if len(result.Args) != 1 {
		return errors.New("run takes exactly one command name")
	}
	if result.Flags.Opts != "" {
		return errors.New("--opts is not supported by run; set options in argparse.toml")
	}
	out, err := c.outputFlags(result.Flags)
	if err != nil {
		return err
	}
	var p *defload.Project
	if c.projectDir != "" {
		p, err = defload.FindProject(c.projectDir)
	} else {
		p, err = defload.FindProjectFromCwd()
	}
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no %s found", defload.ProjectFileName)
	}
	name := result.Args[0]
	cmd, ok := p.File.Command(name)
	if !ok {
		return fmt.Errorf("%s: no command %q, have %s", p.Path, name, strings.Join(p.File.Names(), ", "))
	}
	def, err := cmd.Decls()
	if err != nil {
		return fmt.Errorf("%s: %s: %w", p.Path, name, err)
	}
	opts, err := cmd.Opts()
	if err != nil {
		return fmt.Errorf("%s: %s: %w", p.Path, name, err)
	}
	return c.parseAndPrint(def, opts, result.RemainingArgs, out)
}

func (c *cli) handleVersion(context.Context, []string) error {
	_, err := fmt.Fprintln(c.stdout, versionString())
	return err
}

// printCLIError writes err as "error: <message>", followed by a suggestion
// line when the error carries one.
func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
	var perr *argparse.Error
	if errors.As(err, &perr) && perr.Suggestion != "" {
		fmt.Fprintf(w, "did you mean %s?\n", perr.Suggestion)
	}
}
