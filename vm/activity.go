// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"sync"

	"github.com/dothype/hypevm/chain"
)

// activityCache keeps the most recent committed activity in a fixed ring.
type activityCache struct {
	mu    sync.RWMutex
	items []*chain.Activity
	next  int
	full  bool
}

func newActivityCache(size int) *activityCache {
	if size <= 0 {
		size = 1
	}
	return &activityCache{items: make([]*chain.Activity, size)}
}

func (c *activityCache) Add(as ...*chain.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range as {
		c.items[c.next] = a
		c.next++
		if c.next == len(c.items) {
			c.next = 0
			c.full = true
		}
	}
}

// Recent returns the cached activity, newest first.
func (c *activityCache) Recent() []*chain.Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	size := c.next
	if c.full {
		size = len(c.items)
	}
	out := make([]*chain.Activity, 0, size)
	for i := 1; i <= size; i++ {
		out = append(out, c.items[(c.next-i+len(c.items))%len(c.items)])
	}
	return out
}
