package directory

import (
	"fmt"
	"sync"
)

// collection is an insertion ordered, id keyed set of records.
type collection[T any] struct {
	mu    sync.RWMutex
	items []T
	index map[string]int
	key   func(T) string
}

func newCollection[T any](key func(T) string, seed []T) *collection[T] {
	c := &collection[T]{index: make(map[string]int), key: key}
	for _, item := range seed {
		c.index[key(item)] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[pos], true
}

func (c *collection[T]) add(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.key(item)
	if _, exists := c.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

func (c *collection[T]) update(id string, fn func(T) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items[pos] = fn(c.items[pos])
	return c.items[pos], nil
}

func (c *collection[T]) remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.items); i++ {
		c.index[c.key(c.items[i])] = i
	}
	return nil
}

func (c *collection[T]) filter(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if match == nil || match(item) {
			out = append(out, item)
		}
	}
	return out
}
