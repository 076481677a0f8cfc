// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

import (
	"fmt"

	"github.com/google/uuid"
)

// Failure is a single broken rule reported by Check.
type Failure struct {
	Rule    Rule
	Message string
}

// Check evaluates every rule declared by o's kind. References with
// Resolve set are looked up in cache; a nil cache skips that lookup.
func (o *Object) Check(cache *Cache) []Failure {
	var failures []Failure
	for _, rule := range o.Kind.Schema().Rules {
		if msg, ok := o.checkRule(cache, rule); !ok {
			failures = append(failures, Failure{Rule: rule, Message: msg})
		}
	}
	return failures
}

func (o *Object) checkRule(cache *Cache, rule Rule) (string, bool) {
	switch rule.Kind {
	case RequiredField:
		if o.Fields[rule.Field] == "" {
			return fmt.Sprintf("field %s is null or empty", rule.Field), false
		}
	case RequiredReference:
		ref := o.Refs[rule.Field]
		if ref == uuid.Nil {
			return fmt.Sprintf("field %s is a null reference", rule.Field), false
		}
		if rule.Resolve && cache != nil {
			if _, ok := cache.Lookup(ref); !ok {
				return fmt.Sprintf("field %s references %s which is not in the cache", rule.Field, ref), false
			}
		}
	case MinElements:
		if n := len(o.Values[rule.Field]); n < rule.Min {
			return fmt.Sprintf("field %s has %d elements, needs at least %d", rule.Field, n, rule.Min), false
		}
	}
	return "", true
}
