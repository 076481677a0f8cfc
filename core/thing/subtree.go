// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// Subtree returns root and every cached object reachable from it over
// containment edges, parents before children. Reference edges are never
// followed, and children missing from the cache are skipped.
func Subtree(cache *Cache, root *Object) []*Object {
	var (
		result []*Object
		seen   = make(map[Key]bool)
	)
	var walk func(obj *Object)
	walk = func(obj *Object) {
		if seen[obj.Key()] {
			return
		}
		seen[obj.Key()] = true
		result = append(result, obj)
		for _, key := range obj.ChildKeys() {
			if child, ok := cache.Get(key); ok {
				walk(child)
			}
		}
	}
	walk(root)
	return result
}

// Route renders the containment path from the top-level container down
// to obj, for example /SiteDirectory/<id>/domain/<id>. It fails when a
// container edge cannot be resolved.
func Route(cache *Cache, obj *Object) (string, error) {
	var segments []string
	current := obj
	for depth := 0; current.Container != uuid.Nil; depth++ {
		if depth > 64 {
			return "", errors.Errorf("containment cycle at %s", current)
		}
		parent, err := cache.Container(current)
		if err != nil {
			return "", errors.Annotatef(err, "resolving route of %s", obj)
		}
		field, ok := ContainmentField(parent.Kind, current.Kind)
		if !ok || !parent.HasChild(current.ID) {
			return "", errors.NotFoundf("%s in %s", current, parent)
		}
		segments = append(segments, fmt.Sprintf("%s/%s", field, current.ID))
		current = parent
	}
	segments = append(segments, fmt.Sprintf("%s/%s", current.Kind, current.ID))
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/"), nil
}
