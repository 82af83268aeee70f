// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

// A Binder receives the result of a parse in bind mode. Keys of -upvar
// elements are bound by reference with BindAlias, where target is the name
// the user passed; every other key is bound by value.
type Binder interface {
	BindValue(key string, v Value) error
	BindAlias(key, target string, level Level) error
	Unbind(key string) error
}

// A Checker is a Binder that can vet every binding before anything is
// bound. When the Binder implements it, all keys and aliases of a parse are
// checked first so that a failed bind leaves the scope untouched.
type Checker interface {
	CheckKey(key string) error
	CheckAlias(key, target string, level Level) error
}

// bind hands res to b: it unbinds the keys of omitted elements (unless
// Keep), then binds every written key in result order.
func (c *Compiled) bind(res *Result, omitted []string, b Binder) error {
	if b == nil {
		return errorf(BindFailed, "no binder for bind mode")
	}
	var unbind []string
	if !c.opts.Keep {
		for _, name := range omitted {
			e := c.elems[name]
			if e == nil || !e.HasKey() || e.Keep() || res.Has(e.Key) {
				continue
			}
			unbind = append(unbind, e.Key)
		}
	}
	if ck, ok := b.(Checker); ok {
		for _, k := range unbind {
			if err := ck.CheckKey(k); err != nil {
				return wrapErr(BindFailed, err)
			}
		}
		for _, k := range res.keys {
			var err error
			if e := c.upvarOf(k); e != nil {
				err = ck.CheckAlias(k, res.vals[k].String(), e.Level)
			} else {
				err = ck.CheckKey(k)
			}
			if err != nil {
				return wrapErr(BindFailed, err)
			}
		}
	}
	for _, k := range unbind {
		if err := b.Unbind(k); err != nil {
			return wrapErr(BindFailed, err)
		}
	}
	for _, k := range res.keys {
		v := res.vals[k]
		var err error
		if e := c.upvarOf(k); e != nil {
			err = b.BindAlias(k, v.String(), e.Level)
		} else {
			err = b.BindValue(k, v)
		}
		if err != nil {
			return wrapErr(BindFailed, err)
		}
	}
	return nil
}

func (c *Compiled) upvarOf(key string) *Element {
	name, ok := c.upvars[key]
	if !ok {
		return nil
	}
	return c.elems[name]
}
