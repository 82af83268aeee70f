// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"regexp"
	"slices"
	"strings"

	"github.com/yeetrun/argparse/pkg/validate"
	"tailscale.com/types/lazy"
	"tailscale.com/util/set"
)

// switchREs caches the switch token pattern for each combination of -long
// (bit 0) and -equalarg (bit 1).
var switchREs [4]lazy.SyncValue[*regexp.Regexp]

func switchRE(long, equalArg bool) *regexp.Regexp {
	i := 0
	if long {
		i |= 1
	}
	if equalArg {
		i |= 2
	}
	return switchREs[i].Get(func() *regexp.Regexp {
		var sb strings.Builder
		sb.WriteString(`^-`)
		if long {
			sb.WriteString(`-?`)
		}
		sb.WriteString(`(\w[\w-]*)`)
		if equalArg {
			sb.WriteString(`(?:(=)(.*))?`)
		} else {
			sb.WriteString(`()()`)
		}
		sb.WriteString(`$`)
		return regexp.MustCompile(sb.String())
	})
}

// parser is the state of one parse. It owns a private clone of the
// compiled definition, which it is free to modify.
type parser struct {
	c       *Compiled
	res     *Result
	present set.Set[string]
}

func newParser(c *Compiled) *parser {
	return &parser{
		c:       c,
		res:     newResult(),
		present: make(set.Set[string]),
	}
}

func (p *parser) run(args []string) (*Result, error) {
	c := p.c
	if c.opts.Pass != "" {
		p.addPassThrough()
	}
	if c.opts.PFirst {
		p.requiredFirst()
	}
	force, argv := p.partition(args)

	params := argv
	if len(c.switches) > 0 {
		var err error
		if params, err = p.scan(argv); err != nil {
			return nil, err
		}
	}
	if err := p.checkRequiredSwitches(); err != nil {
		return nil, err
	}
	if c.opts.PFirst {
		params = append(force, params...)
	} else {
		params = append(params, force...)
	}

	alloc, err := p.allocate(len(params))
	if err != nil {
		return nil, err
	}
	if err := p.checkConstraints(); err != nil {
		return nil, err
	}
	if c.opts.Normalize {
		p.passOmittedDefaults()
	}
	if err := p.store(params, alloc); err != nil {
		return nil, err
	}
	p.fillDefaults()
	p.res.setPresence(c.order, p.present)
	return p.res, nil
}

// addPassThrough adds the unnamed element that collects unknown switches
// and excess parameters under the global -pass key.
func (p *parser) addPassThrough() {
	e := &Element{Pass: p.c.opts.Pass}
	e.set.add(attrPass)
	p.c.elems[""] = e
	p.c.order = append(p.c.order, "")
}

// requiredFirst moves required parameters to the front of the parameter
// order, keeping relative order otherwise.
func (p *parser) requiredFirst() {
	var req, rest []string
	for _, name := range p.c.params {
		if p.c.elems[name].Required() {
			req = append(req, name)
		} else {
			rest = append(rest, name)
		}
	}
	p.c.params = append(req, rest...)
}

// partition sets aside the arguments that must go to required parameters
// no matter what they look like: the first ones under -pfirst, the last
// ones otherwise. -mixed turns this off.
func (p *parser) partition(args []string) (force, argv []string) {
	if p.c.opts.Mixed {
		return nil, args
	}
	n := 0
	for _, name := range p.c.params {
		if p.c.elems[name].Required() {
			n++
		}
	}
	n = min(n, len(args))
	if p.c.opts.PFirst {
		return args[:n], args[n:]
	}
	return args[len(args)-n:], args[:len(args)-n]
}

// switchNames returns the names of the switch elements in definition
// order.
func (c *Compiled) switchNames() []string {
	var out []string
	for _, name := range c.order {
		if c.elems[name].IsSwitch() {
			out = append(out, name)
		}
	}
	return out
}

// resolve maps a switch word (without its leading dashes, aliases already
// applied) to an element name.
func (p *parser) resolve(arg, name string) (string, error) {
	c := p.c
	if e, ok := c.elems[name]; ok && e.IsSwitch() {
		return name, nil
	}
	match, err := validate.Prefix("switch", name, c.switchNames(), false)
	if err == nil && !c.opts.Exact {
		return match, nil
	}
	if _, ok := c.elems[""]; ok {
		return "", nil
	}
	kind := UnknownSwitch
	if perr, ok := err.(*validate.PrefixError); ok && perr.Ambiguous && !c.opts.Exact {
		kind = AmbiguousOrUnknownSwitch
	}
	display := slices.Clone(c.switches)
	slices.Sort(display)
	var spellings []string
	for _, s := range c.switchNames() {
		spellings = append(spellings, "-"+s)
	}
	for a := range c.aliases {
		spellings = append(spellings, "-"+a)
	}
	slices.Sort(spellings)
	return "", &Error{
		Kind:       kind,
		Msg:        `bad switch "` + arg + `": must be ` + validate.JoinOr(display),
		Suggestion: validate.Suggest(arg, spellings),
	}
}

// scan walks the arguments, consuming switches and their values, and
// returns the arguments left for the parameters.
func (p *parser) scan(argv []string) ([]string, error) {
	c := p.c
	re := switchRE(c.opts.Long, c.opts.EqualArg)
	var params []string
	for len(argv) > 0 {
		arg := argv[0]
		argv = argv[1:]
		m := re.FindStringSubmatch(arg)
		if m == nil {
			if arg == "--" {
				return append(params, argv...), nil
			}
			params = append(params, arg)
			if c.opts.Mixed || c.opts.PFirst {
				continue
			}
			return append(params, argv...), nil
		}
		name, equal, inline := m[1], m[2] == "=", m[3]
		if target, ok := c.aliases[name]; ok {
			name = target
		}
		name, err := p.resolve(arg, name)
		if err != nil {
			return nil, err
		}
		normal := "-" + name
		e := c.elems[name]

		if e.Standalone() {
			p.relax()
		}
		p.present.Add(name)
		if name == "" {
			// Unknown switches pass through as written.
			p.res.lappend(e.Pass, arg)
			continue
		}
		if equal {
			argv = append([]string{inline}, argv...)
		}

		switch {
		case e.Catchall():
			vals, err := p.checkList(normal, e, argv)
			if err != nil {
				return nil, err
			}
			if e.HasKey() {
				p.res.set(e.Key, List(vals...))
			}
			if e.HasPass() {
				p.res.lappend(e.Pass, p.passWord(arg, normal))
				p.res.lappend(e.Pass, vals...)
			}
			return params, nil
		case !e.Argument():
			if equal {
				return nil, errorf(UnexpectedInlineArgument, "%s doesn't allow an argument", normal)
			}
			if e.HasKey() {
				v := ""
				if e.Value != nil {
					v = *e.Value
				}
				p.res.set(e.Key, String(v))
			}
			if e.HasPass() {
				p.res.lappend(e.Pass, p.passWord(arg, normal))
			}
		case len(argv) > 0:
			v, err := p.checkOne(normal, e, argv[0])
			if err != nil {
				return nil, err
			}
			if e.HasKey() {
				if e.Optional() {
					p.res.set(e.Key, List("", v))
				} else {
					p.res.set(e.Key, String(v))
				}
			}
			if e.HasPass() {
				switch {
				case c.opts.Normalize:
					p.res.lappend(e.Pass, normal, v)
				case equal:
					p.res.lappend(e.Pass, arg)
				default:
					p.res.lappend(e.Pass, arg, v)
				}
			}
			argv = argv[1:]
		case !e.Optional():
			return nil, errorf(MissingSwitchArgument, "%s requires an argument", normal)
		default:
			if e.HasKey() {
				p.res.set(e.Key, String(""))
			}
			if e.HasPass() {
				p.res.lappend(e.Pass, p.passWord(arg, normal))
			}
		}

		if e.set.has(attrImply) {
			argv = append(slices.Clone(e.Imply), argv...)
			e.Imply = nil
			e.set.del(attrImply)
		}
	}
	return params, nil
}

// passWord is the spelling of a switch recorded in a pass-through key.
func (p *parser) passWord(arg, normal string) string {
	if p.c.opts.Normalize {
		return normal
	}
	return arg
}

// relax drops all requirements and constraints; a -standalone switch
// turns every element optional.
func (p *parser) relax() {
	for _, e := range p.c.elems {
		e.set.del(attrRequired)
		e.set.del(attrRequire)
		e.set.del(attrForbid)
		e.set.del(attrAllow)
		e.Require, e.Forbid, e.Allow = nil, nil, nil
		if e.IsParameter() {
			e.set.add(attrOptional)
		}
	}
}

func (p *parser) checkRequiredSwitches() error {
	var missing []string
	for _, name := range p.c.order {
		e := p.c.elems[name]
		if !e.IsSwitch() || !e.Required() || p.present.Contains(name) {
			continue
		}
		if len(e.Aliases) > 0 {
			missing = append(missing, e.aliasJoin())
		} else {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return errorf(MissingRequiredSwitches, "missing required %s: %s",
		plural(len(missing), "switch", "es"), joinAnd(missing))
}
