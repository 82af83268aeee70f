// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package defcache is a process-wide cache of compiled definitions, keyed
// by their text and options. Concurrent misses on the same key compile
// once. Callers get their own copy of the cached value so they can modify
// it freely.
package defcache

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"tailscale.com/syncs"
	"tailscale.com/types/logger"
)

// Cloner is a value that can deep-copy itself.
type Cloner[V any] interface {
	Clone() V
}

// Cache maps keys to built values. The zero value is not usable; use New.
type Cache[V Cloner[V]] struct {
	logf    logger.Logf
	entries syncs.Map[string, V]
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	fails  atomic.Int64
}

// Stats are cache counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
	// Fails counts builds that returned an error. Failed builds are not
	// cached.
	Fails int64
}

// New returns an empty cache. logf may be nil.
func New[V Cloner[V]](logf logger.Logf) *Cache[V] {
	if logf == nil {
		logf = logger.Discard
	}
	return &Cache[V]{logf: logf}
}

// Get returns a copy of the value cached under key, calling build to
// create it on a miss. A failed build is returned to every caller waiting
// on it and nothing is cached.
func (c *Cache[V]) Get(key string, build func() (V, error)) (V, error) {
	if v, ok := c.entries.Load(key); ok {
		c.hits.Add(1)
		return v.Clone(), nil
	}
	c.misses.Add(1)
	x, err, shared := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			c.fails.Add(1)
			return nil, err
		}
		c.entries.Store(key, v)
		c.logf("defcache: stored %q (%d entries)", truncate(key, 60), c.entries.Len())
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	if shared {
		c.logf("defcache: shared build of %q", truncate(key, 60))
	}
	return x.(V).Clone(), nil
}

// Peek reports whether key is cached, without building or counting.
func (c *Cache[V]) Peek(key string) bool {
	_, ok := c.entries.Load(key)
	return ok
}

// Len returns the number of cached values.
func (c *Cache[V]) Len() int { return c.entries.Len() }

// Clear drops every cached value.
func (c *Cache[V]) Clear() {
	c.entries.Clear()
}

func (c *Cache[V]) Stats() Stats {
	return Stats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Fails:   c.fails.Load(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
