// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
)

// NewID returns a new random identity.
func NewID() uuid.UUID {
	return uuid.New()
}

// Key addresses an object in a cache. Iteration is uuid.Nil for objects
// that do not live inside an iteration.
type Key struct {
	ID        uuid.UUID
	Iteration uuid.UUID
}

func (k Key) String() string {
	if k.Iteration == uuid.Nil {
		return k.ID.String()
	}
	return fmt.Sprintf("%s@%s", k.ID, k.Iteration)
}

// Object is a node of the remote object graph.
type Object struct {
	ID        uuid.UUID
	Kind      Kind
	Iteration uuid.UUID
	Container uuid.UUID
	Revision  int
	Deleted   bool

	// Fields holds scalar attributes.
	Fields map[string]string
	// Values holds multi-valued attributes.
	Values map[string][]string
	// Children holds the containment collections, in order.
	Children map[string][]uuid.UUID
	// Refs and RefLists hold non-owning references.
	Refs     map[string]uuid.UUID
	RefLists map[string][]uuid.UUID

	cached bool
}

// New returns an empty object of the given kind with a fresh identity.
func New(kind Kind) *Object {
	return &Object{
		ID:   NewID(),
		Kind: kind,
	}
}

// Key returns the cache key of the object.
func (o *Object) Key() Key {
	return Key{ID: o.ID, Iteration: o.Iteration}
}

// IsCached reports whether the object is currently a member of a cache.
func (o *Object) IsCached() bool {
	return o.cached
}

func (o *Object) String() string {
	return fmt.Sprintf("%s %s", o.Kind, o.ID)
}

// Field returns the scalar attribute name.
func (o *Object) Field(name string) string {
	return o.Fields[name]
}

// SetField sets the scalar attribute name.
func (o *Object) SetField(name, value string) *Object {
	if o.Fields == nil {
		o.Fields = make(map[string]string)
	}
	o.Fields[name] = value
	return o
}

// SetValues sets the multi-valued attribute name.
func (o *Object) SetValues(name string, values ...string) *Object {
	if o.Values == nil {
		o.Values = make(map[string][]string)
	}
	o.Values[name] = values
	return o
}

// Ref returns the reference held in field name.
func (o *Object) Ref(name string) uuid.UUID {
	return o.Refs[name]
}

// SetRef sets the reference field name.
func (o *Object) SetRef(name string, id uuid.UUID) *Object {
	if o.Refs == nil {
		o.Refs = make(map[string]uuid.UUID)
	}
	o.Refs[name] = id
	return o
}

// AddRefs appends ids to the reference list name.
func (o *Object) AddRefs(name string, ids ...uuid.UUID) *Object {
	if o.RefLists == nil {
		o.RefLists = make(map[string][]uuid.UUID)
	}
	o.RefLists[name] = append(o.RefLists[name], ids...)
	return o
}

// AddChild appends child to the containment field that holds its kind
// and points child at o. It returns an error if o's kind cannot contain
// child's kind.
func (o *Object) AddChild(child *Object) error {
	if err := o.LinkChild(child); err != nil {
		return err
	}
	child.Container = o.ID
	child.Iteration = o.ChildIteration()
	return nil
}

// LinkChild records child in the containment field that holds its kind
// without touching child itself.
func (o *Object) LinkChild(child *Object) error {
	field, ok := ContainmentField(o.Kind, child.Kind)
	if !ok {
		return fmt.Errorf("%s cannot contain %s", o.Kind, child.Kind)
	}
	o.appendChild(field, child.ID)
	return nil
}

func (o *Object) appendChild(field string, id uuid.UUID) {
	if o.Children == nil {
		o.Children = make(map[string][]uuid.UUID)
	}
	for _, existing := range o.Children[field] {
		if existing == id {
			return
		}
	}
	o.Children[field] = append(o.Children[field], id)
}

// RemoveChild removes id from every containment field of o. It reports
// whether anything was removed.
func (o *Object) RemoveChild(id uuid.UUID) bool {
	removed := false
	for field, ids := range o.Children {
		kept := ids[:0:0]
		for _, existing := range ids {
			if existing == id {
				removed = true
				continue
			}
			kept = append(kept, existing)
		}
		o.Children[field] = kept
	}
	return removed
}

// HasChild reports whether id is held in any containment field of o.
func (o *Object) HasChild(id uuid.UUID) bool {
	for _, ids := range o.Children {
		for _, existing := range ids {
			if existing == id {
				return true
			}
		}
	}
	return false
}

// ChildIteration returns the iteration context of objects contained
// directly by o.
func (o *Object) ChildIteration() uuid.UUID {
	if o.Kind == Iteration {
		return o.ID
	}
	return o.Iteration
}

// ChildKeys returns the keys of o's children in schema order.
func (o *Object) ChildKeys() []Key {
	var keys []Key
	ctx := o.ChildIteration()
	for _, c := range o.Kind.Schema().Containment {
		for _, id := range o.Children[c.Field] {
			keys = append(keys, Key{ID: id, Iteration: ctx})
		}
	}
	return keys
}

// Clone returns a deep copy of o. The copy is never a cache member, so
// it can be edited freely without corrupting the read cache.
func (o *Object) Clone() *Object {
	clone := deepcopy.Copy(o).(*Object)
	clone.cached = false
	return clone
}
