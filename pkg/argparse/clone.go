// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"maps"
	"slices"

	"tailscale.com/types/ptr"
)

// Clone returns a deep copy of e. The Validator is shared; validators are
// immutable.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	dst := *e
	dst.Aliases = slices.Clone(e.Aliases)
	dst.Enum = slices.Clone(e.Enum)
	dst.Require = slices.Clone(e.Require)
	dst.Forbid = slices.Clone(e.Forbid)
	dst.Allow = slices.Clone(e.Allow)
	dst.Imply = slices.Clone(e.Imply)
	if e.Default != nil {
		dst.Default = ptr.To(*e.Default)
	}
	if e.Value != nil {
		dst.Value = ptr.To(*e.Value)
	}
	return &dst
}

// Clone returns a deep copy of c. Parses mutate their copy (standalone
// switches relax constraints, -imply is consumed), never the cached one.
func (c *Compiled) Clone() *Compiled {
	if c == nil {
		return nil
	}
	dst := *c
	dst.order = slices.Clone(c.order)
	dst.elems = make(map[string]*Element, len(c.elems))
	for k, e := range c.elems {
		dst.elems[k] = e.Clone()
	}
	dst.aliases = maps.Clone(c.aliases)
	dst.switches = slices.Clone(c.switches)
	dst.params = slices.Clone(c.params)
	dst.upvars = maps.Clone(c.upvars)
	return &dst
}
