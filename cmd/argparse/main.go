// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The argparse command parses argument lists against declarative
// definitions and prints or binds the result.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/shayne/yargs"
	"github.com/yeetrun/argparse/pkg/argparse"
	"golang.org/x/term"
)

// envFormat names the default output format of parse and run.
const envFormat = "ARGPARSE_FORMAT"

type globalFlagsParsed struct {
	Verbose bool `flag:"verbose" help:"Log definition compiles and cache activity"`
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

func main() {
	log.SetFlags(0)
	globalFlags, remaining, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		printCLIError(os.Stderr, err)
		os.Exit(2)
	}

	var engineOpts []argparse.EngineOption
	if globalFlags.Verbose {
		engineOpts = append(engineOpts, argparse.WithLogf(log.Printf))
	}
	c := &cli{
		stdout: os.Stdout,
		stderr: os.Stderr,
		engine: argparse.NewEngine(engineOpts...),
		format: os.Getenv(envFormat),
		tty:    term.IsTerminal(int(os.Stdout.Fd())),
	}

	helpConfig := buildHelpConfig()
	args := yargs.ApplyAliases(remaining, helpConfig)
	handlers := map[string]yargs.SubcommandHandler{
		"parse":   c.handleParse,
		"check":   c.handleCheck,
		"run":     c.handleRun,
		"version": c.handleVersion,
	}
	if err := yargs.RunSubcommands(context.Background(), args, helpConfig, globalFlagsParsed{}, handlers); err != nil {
		printCLIError(c.stderr, err)
		os.Exit(1)
	}
}

func buildHelpConfig() yargs.HelpConfig {
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "argparse",
			Description: "Parse argument lists against declarative element definitions.",
			Examples: []string{
				`argparse parse '{-level= -default 1} -quiet file' -- -quiet notes.txt`,
				`argparse parse --format=shell --opts=-mixed -- '-v= files*' a b -v 2`,
				"argparse check defs/*.toml",
				"argparse run deploy -- --env prod",
			},
		},
		SubCommands: map[string]yargs.SubCommandInfo{
			"parse": {
				Name:        "parse",
				Description: "Parse ARGS against DEFINITION and print the result",
				Usage:       "[--format=json|yaml|shell] [--opts=OPTIONS] [--env-file=PATH] DEFINITION -- ARG...",
				Examples: []string{
					`argparse parse '{-n= -type integer} name' -- -n 3 bob`,
					`eval "$(argparse parse --format=shell -- '-force name' "$@")"`,
				},
			},
			"check": {
				Name:        "check",
				Description: "Load and compile definition files and print their elements",
				Usage:       "FILE...",
			},
			"run": {
				Name:        "run",
				Description: "Parse ARGS with a command from argparse.toml",
				Usage:       "NAME -- ARG...",
			},
			"version": {
				Name:        "version",
				Description: "Print the argparse version",
			},
		},
	}
}

func versionString() string {
	return fmt.Sprintf("argparse %s", argparse.Version)
}
