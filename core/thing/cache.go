// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

import (
	"bytes"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// Cache maps keys to materialized objects. Each session owns one cache;
// it is safe for concurrent use, but callers must not interleave
// mutations with in-flight reads against the same session.
type Cache struct {
	mu      sync.RWMutex
	objects map[Key]*Object
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{objects: make(map[Key]*Object)}
}

// Put adds or replaces obj, marking it as a cache member.
func (c *Cache) Put(objs ...*Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, obj := range objs {
		if old, ok := c.objects[obj.Key()]; ok && old != obj {
			old.cached = false
		}
		obj.cached = true
		c.objects[obj.Key()] = obj
	}
}

// Get returns the object stored under key.
func (c *Cache) Get(key Key) (*Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.objects[key]
	return obj, ok
}

// Contains reports whether key is cached.
func (c *Cache) Contains(key Key) bool {
	_, ok := c.Get(key)
	return ok
}

// Lookup returns an object with the given identity regardless of its
// iteration context, preferring the one outside any iteration.
func (c *Cache) Lookup(id uuid.UUID) (*Object, bool) {
	if obj, ok := c.Get(Key{ID: id}); ok {
		return obj, true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var found *Object
	for key, obj := range c.objects {
		if key.ID != id {
			continue
		}
		if found == nil || bytes.Compare(key.Iteration[:], found.Iteration[:]) < 0 {
			found = obj
		}
	}
	return found, found != nil
}

// Container returns the cached container of obj.
func (c *Cache) Container(obj *Object) (*Object, error) {
	if obj.Container == uuid.Nil {
		return nil, errors.NotFoundf("container of top-level %s", obj)
	}
	if parent, ok := c.Get(Key{ID: obj.Container, Iteration: obj.Iteration}); ok {
		return parent, nil
	}
	if parent, ok := c.Get(Key{ID: obj.Container}); ok {
		return parent, nil
	}
	return nil, errors.NotFoundf("container %s of %s", obj.Container, obj)
}

// Remove drops key from the cache and clears the object's membership
// flag. It does not touch the container or children.
func (c *Cache) Remove(key Key) (*Object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[key]
	if !ok {
		return nil, false
	}
	obj.cached = false
	delete(c.objects, key)
	return obj, true
}

// Detach unlinks the object at key from its container and removes it,
// together with its containment subtree, from the cache. It returns the
// number of objects removed.
func (c *Cache) Detach(key Key) (int, error) {
	obj, ok := c.Get(key)
	if !ok {
		return 0, errors.NotFoundf("object %s", key)
	}
	if parent, err := c.Container(obj); err == nil {
		c.mu.Lock()
		parent.RemoveChild(obj.ID)
		c.mu.Unlock()
	}
	removed := 0
	for _, member := range Subtree(c, obj) {
		if _, ok := c.Remove(member.Key()); ok {
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of cached objects.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

// Objects returns every cached object ordered by kind, then identity,
// then iteration context.
func (c *Cache) Objects() []*Object {
	c.mu.RLock()
	objs := make([]*Object, 0, len(c.objects))
	for _, obj := range c.objects {
		objs = append(objs, obj)
	}
	c.mu.RUnlock()
	sort.Slice(objs, func(i, j int) bool {
		a, b := objs[i], objs[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if cmp := bytes.Compare(a.ID[:], b.ID[:]); cmp != 0 {
			return cmp < 0
		}
		return bytes.Compare(a.Iteration[:], b.Iteration[:]) < 0
	})
	return objs
}

// OfKind returns the cached objects of the given kind in cache order.
func (c *Cache) OfKind(kind Kind) []*Object {
	var objs []*Object
	for _, obj := range c.Objects() {
		if obj.Kind == kind {
			objs = append(objs, obj)
		}
	}
	return objs
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, obj := range c.objects {
		obj.cached = false
	}
	c.objects = make(map[Key]*Object)
}
