// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import "strings"

// allocate decides how many of the n parameter arguments each parameter
// receives: one for every required parameter, then one for each optional
// one in order, and the rest to the catchall (or the pass-through
// element).
func (p *parser) allocate(n int) (map[string]int, error) {
	c := p.c
	alloc := make(map[string]int)
	var missing []string
	for _, name := range c.params {
		if !c.elems[name].Required() {
			continue
		}
		if n == 0 {
			missing = append(missing, name)
			continue
		}
		alloc[name] = 1
		p.present.Add(name)
		n--
	}
	if len(missing) > 0 {
		return nil, errorf(MissingRequiredParameters, "missing required %s: %s",
			plural(len(missing), "parameter", "s"), joinAnd(missing))
	}
	for _, name := range c.params {
		if n == 0 {
			break
		}
		e := c.elems[name]
		if e.Required() || e.Catchall() {
			continue
		}
		alloc[name] = 1
		p.present.Add(name)
		n--
	}
	if n == 0 {
		return alloc, nil
	}
	switch {
	case c.catchall != "":
		alloc[c.catchall] += n
		p.present.Add(c.catchall)
	case c.elems[""] != nil:
		c.params = append(c.params, "")
		alloc[""] = n
		p.present.Add("")
	default:
		return nil, errorf(TooManyArguments, "too many arguments")
	}
	return alloc, nil
}

// store writes the allocated parameter arguments to the result.
func (p *parser) store(params []string, alloc map[string]int) error {
	c := p.c
	i := 0
	for _, name := range c.params {
		e := c.elems[name]
		n, ok := alloc[name]
		if !ok {
			if c.opts.Normalize && e.Default != nil && e.HasPass() {
				p.passParam(e.Pass, *e.Default)
			}
			continue
		}
		var v Value
		if name != "" && !e.Catchall() {
			s, err := p.checkOne(name, e, params[i])
			if err != nil {
				return err
			}
			if e.HasPass() {
				p.passParam(e.Pass, s)
			}
			v = String(s)
		} else {
			vals := params[i : i+n]
			if name != "" {
				var err error
				if vals, err = p.checkList(name, e, vals); err != nil {
					return err
				}
			}
			if e.HasPass() {
				p.passParam(e.Pass, vals...)
			}
			v = List(vals...)
		}
		i += n
		if e.HasKey() {
			p.res.set(e.Key, v)
		}
	}
	return nil
}

// passParam appends parameter values to a pass-through key, inserting "--"
// first when the key is new and the first value looks like a switch.
func (p *parser) passParam(key string, vals ...string) {
	if len(vals) == 0 {
		return
	}
	if strings.HasPrefix(vals[0], "-") && !p.res.Has(key) {
		p.res.lappend(key, "--")
	}
	p.res.lappend(key, vals...)
}

// passOmittedDefaults records the defaults of omitted switches in their
// pass-through keys, so the pass-through list is complete on its own.
func (p *parser) passOmittedDefaults() {
	for _, name := range p.c.order {
		e := p.c.elems[name]
		if !e.IsSwitch() || !e.HasPass() || !e.Argument() || e.Default == nil || p.present.Contains(name) {
			continue
		}
		p.res.lappend(e.Pass, "-"+name, *e.Default)
	}
}

// fillDefaults writes the default of every key that nothing wrote.
func (p *parser) fillDefaults() {
	for _, name := range p.c.order {
		e := p.c.elems[name]
		if e.HasKey() && !p.res.Has(e.Key) {
			switch {
			case e.Default != nil:
				p.res.set(e.Key, String(*e.Default))
			case e.Catchall():
				p.res.set(e.Key, List())
			}
		}
		if e.HasPass() && !p.res.Has(e.Pass) {
			p.res.set(e.Pass, List())
		}
	}
}
