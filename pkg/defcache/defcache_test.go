// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package defcache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	vals []string
}

func (b *box) Clone() *box {
	return &box{vals: append([]string(nil), b.vals...)}
}

func TestGetBuildsOnce(t *testing.T) {
	c := New[*box](t.Logf)
	builds := 0
	build := func() (*box, error) {
		builds++
		return &box{vals: []string{"a"}}, nil
	}

	_, err := c.Get("k", build)
	require.NoError(t, err)
	v2, err := c.Get("k", build)
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	assert.Equal(t, []string{"a"}, v2.vals)

	st := c.Stats()
	assert.Equal(t, Stats{Entries: 1, Hits: 1, Misses: 1}, st)
}

func TestGetReturnsCopies(t *testing.T) {
	c := New[*box](nil)
	build := func() (*box, error) { return &box{vals: []string{"a", "b"}}, nil }

	v1, err := c.Get("k", build)
	require.NoError(t, err)
	v1.vals[0] = "changed"
	v1.vals = append(v1.vals, "extra")

	v2, err := c.Get("k", build)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v2.vals)
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	c := New[*box](nil)
	errBoom := errors.New("boom")
	calls := 0
	build := func() (*box, error) {
		calls++
		if calls == 1 {
			return nil, errBoom
		}
		return &box{}, nil
	}

	_, err := c.Get("k", build)
	require.ErrorIs(t, err, errBoom)
	assert.False(t, c.Peek("k"))

	_, err = c.Get("k", build)
	require.NoError(t, err)
	assert.True(t, c.Peek("k"))
	assert.Equal(t, 2, calls)
	assert.EqualValues(t, 1, c.Stats().Fails)
}

func TestGetConcurrent(t *testing.T) {
	c := New[*box](nil)
	var builds atomic.Int32
	release := make(chan struct{})
	build := func() (*box, error) {
		builds.Add(1)
		<-release
		return &box{vals: []string{"x"}}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*box, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("k", build)
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, builds.Load(), int32(n))
	for i, v := range results {
		require.NotNil(t, v, "result %d", i)
		assert.Equal(t, []string{"x"}, v.vals)
	}
	for i := 1; i < n; i++ {
		assert.NotSame(t, results[0], results[i])
	}
}

func TestClear(t *testing.T) {
	c := New[*box](nil)
	_, err := c.Get("a", func() (*box, error) { return &box{}, nil })
	require.NoError(t, err)
	_, err = c.Get("b", func() (*box, error) { return &box{}, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Peek("a"))
}
