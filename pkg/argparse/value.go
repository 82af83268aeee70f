// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argparse

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/yeetrun/argparse/pkg/tcllist"
	"gopkg.in/yaml.v3"
	"tailscale.com/util/set"
)

// Value is a result value: either a scalar string or a list of strings.
// Catchall elements, pass-through keys and present optional switches
// (the pair ["", v]) produce lists; everything else is a scalar.
type Value struct {
	s      string
	items  []string
	isList bool
}

// String returns a scalar Value.
func String(s string) Value { return Value{s: s} }

// List returns a list Value.
func List(items ...string) Value {
	return Value{items: slices.Clone(items), isList: true}
}

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.isList }

// Items returns the items of a list, or the scalar split as a list. A
// scalar that is not well-formed list text is returned as one item.
func (v Value) Items() []string {
	if v.isList {
		return slices.Clone(v.items)
	}
	l, err := tcllist.Split(v.s)
	if err != nil {
		return []string{v.s}
	}
	return l
}

// String renders v as text; lists use list syntax.
func (v Value) String() string {
	if v.isList {
		return tcllist.Join(v.items)
	}
	return v.s
}

func (v Value) Equal(o Value) bool {
	return v.isList == o.isList && v.s == o.s && slices.Equal(v.items, o.items)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	}
	return json.Marshal(v.s)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*v = List(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = String(s)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	if v.isList {
		if v.items == nil {
			return []string{}, nil
		}
		return v.items, nil
	}
	return v.s, nil
}

// Result is the outcome of a parse: an insertion-ordered mapping from key
// to Value. Element keys and pass-through keys share the one namespace.
type Result struct {
	keys    []string
	vals    map[string]Value
	present []string
	omitted []string
}

func newResult() *Result {
	return &Result{vals: make(map[string]Value)}
}

// Get returns the value stored under key.
func (r *Result) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Lookup returns the text of the value stored under key, or "".
func (r *Result) Lookup(key string) string {
	return r.vals[key].String()
}

// Has reports whether key was written.
func (r *Result) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Keys returns the written keys in insertion order.
func (r *Result) Keys() []string { return slices.Clone(r.keys) }

// Len returns the number of keys.
func (r *Result) Len() int { return len(r.keys) }

// Present returns the names of the elements that appeared in the
// arguments, in definition order.
func (r *Result) Present() []string { return slices.Clone(r.present) }

// Omitted returns the names of the elements that did not appear, in
// definition order.
func (r *Result) Omitted() []string { return slices.Clone(r.omitted) }

// Map returns the result as a plain map of rendered values.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.vals[k].String()
	}
	return m
}

// set stores v under key. Overwriting keeps the key's original position.
func (r *Result) set(key string, v Value) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// lappend appends items to the list under key, turning a scalar into a
// one-item list first.
func (r *Result) lappend(key string, items ...string) {
	v, ok := r.vals[key]
	if !ok {
		r.set(key, List(items...))
		return
	}
	l := v.Items()
	r.vals[key] = List(append(l, items...)...)
}

// MarshalJSON renders the result as a JSON object in key order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the result as a YAML mapping in key order.
func (r *Result) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		var vn yaml.Node
		if err := vn.Encode(r.vals[k]); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, &vn)
	}
	return n, nil
}

// setPresence records which elements appeared. order is the definition
// order; the unnamed pass-through element is left out.
func (r *Result) setPresence(order []string, present set.Set[string]) {
	r.present, r.omitted = nil, nil
	for _, name := range order {
		switch {
		case name == "":
		case present.Contains(name):
			r.present = append(r.present, name)
		default:
			r.omitted = append(r.omitted, name)
		}
	}
}
