// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defload

import (
	"fmt"
	"io"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// decodeKDL reads the KDL form of a definition file:
//
//	requires ">= 1.0"
//	command "greet" help="Say hello" {
//	    definition "{-salutation= -default hello}"
//	    options "-mixed"
//	    element "-count=" "-default" 1 "-type" "integer"
//	    element "subject"
//	}
func decodeKDL(r io.Reader) (*File, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return nil, err
	}
	var f File
	for _, node := range doc.Nodes {
		switch name := node.Name.ValueString(); name {
		case "requires":
			if f.Requires, err = kdlString(node); err != nil {
				return nil, err
			}
		case "command":
			c, err := kdlCommand(node)
			if err != nil {
				return nil, err
			}
			f.Commands = append(f.Commands, c)
		default:
			return nil, fmt.Errorf("unknown node %q", name)
		}
	}
	return &f, nil
}

func kdlCommand(node *document.Node) (Command, error) {
	var c Command
	var err error
	if c.Name, err = kdlString(node); err != nil {
		return c, err
	}
	for key, v := range node.Properties {
		if key != "help" {
			return c, fmt.Errorf("command %s: unknown property %q", c.Name, key)
		}
		c.Help = fmt.Sprint(v.ResolvedValue())
	}
	for _, child := range node.Children {
		switch name := child.Name.ValueString(); name {
		case "definition":
			c.Definition, err = kdlString(child)
		case "options":
			c.Options, err = kdlString(child)
		case "help":
			c.Help, err = kdlString(child)
		case "element":
			if len(child.Arguments) == 0 {
				return c, fmt.Errorf("command %s: element needs at least a name", c.Name)
			}
			c.Elements = append(c.Elements, kdlWords(child))
		default:
			return c, fmt.Errorf("command %s: unknown node %q", c.Name, name)
		}
		if err != nil {
			return c, fmt.Errorf("command %s: %w", c.Name, err)
		}
	}
	return c, nil
}

// kdlString returns the single argument of node.
func kdlString(node *document.Node) (string, error) {
	if len(node.Arguments) != 1 {
		return "", fmt.Errorf("%s takes one argument, got %d", node.Name.ValueString(), len(node.Arguments))
	}
	s, ok := node.Arguments[0].ResolvedValue().(string)
	if !ok {
		return "", fmt.Errorf("%s argument is not a string", node.Name.ValueString())
	}
	return s, nil
}

// kdlWords renders every argument of node as a word. Numbers and booleans
// are accepted so that -default 1 needs no quotes.
func kdlWords(node *document.Node) []string {
	words := make([]string, len(node.Arguments))
	for i, a := range node.Arguments {
		words[i] = fmt.Sprint(a.ResolvedValue())
	}
	return words
}
