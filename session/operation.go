// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package session

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

// OperationKind says what a batch operation does to its subject.
type OperationKind int

const (
	Create OperationKind = iota + 1
	Update
	Delete
)

func (k OperationKind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("OperationKind(%d)", int(k))
}

// Operation is one entry of a write batch. Original is the state before
// the write, or nil for a Create. For an Update, Modified carries only the
// attributes that changed. Snapshot holds further objects written
// together with Modified in a Create, typically its containment subtree.
type Operation struct {
	Kind     OperationKind
	Original *thing.Object
	Modified *thing.Object
	Snapshot []*thing.Object
}

// Subject returns the object the operation is addressed to.
func (op Operation) Subject() *thing.Object {
	if op.Modified != nil {
		return op.Modified
	}
	return op.Original
}

// Objects returns Modified followed by the snapshot, skipping repeats.
func (op Operation) Objects() []*thing.Object {
	var (
		objs []*thing.Object
		seen = make(map[thing.Key]bool)
	)
	for _, obj := range append([]*thing.Object{op.Modified}, op.Snapshot...) {
		if obj == nil || seen[obj.Key()] {
			continue
		}
		seen[obj.Key()] = true
		objs = append(objs, obj)
	}
	return objs
}

// Context names the top-level container a batch applies under: either a
// site directory or an iteration of an engineering model.
type Context struct {
	SiteDirectory uuid.UUID
	Model         uuid.UUID
	Iteration     uuid.UUID
}

// SiteDirectoryContext returns the context of the site directory id.
func SiteDirectoryContext(id uuid.UUID) Context {
	return Context{SiteDirectory: id}
}

// IterationContext returns the context of an iteration of model.
func IterationContext(model, iteration uuid.UUID) Context {
	return Context{Model: model, Iteration: iteration}
}

// IsIteration reports whether the context is an iteration.
func (c Context) IsIteration() bool {
	return c.Iteration != uuid.Nil
}

// Path renders the context relative to a server's base URI.
func (c Context) Path() string {
	if c.IsIteration() {
		return fmt.Sprintf("EngineeringModel/%s/iteration/%s", c.Model, c.Iteration)
	}
	return fmt.Sprintf("SiteDirectory/%s", c.SiteDirectory)
}

func (c Context) String() string {
	return c.Path()
}

// Batch is the unit of write submitted to a session.
type Batch struct {
	Context    Context
	Operations []Operation
}

// NewBatch returns an empty batch under ctx.
func NewBatch(ctx Context) *Batch {
	return &Batch{Context: ctx}
}

// Create appends a Create of modified and the snapshot objects.
func (b *Batch) Create(modified *thing.Object, snapshot ...*thing.Object) *Batch {
	b.Operations = append(b.Operations, Operation{
		Kind:     Create,
		Modified: modified,
		Snapshot: snapshot,
	})
	return b
}

// Delete appends a Delete of obj.
func (b *Batch) Delete(obj *thing.Object) *Batch {
	b.Operations = append(b.Operations, Operation{
		Kind:     Delete,
		Original: obj,
	})
	return b
}

// Update appends an Update built from original and working. It reports
// whether working differed from original.
func (b *Batch) Update(original, working *thing.Object) bool {
	op, ok := NewUpdate(original, working)
	if ok {
		b.Operations = append(b.Operations, op)
	}
	return ok
}

// Count returns the number of operations of the given kind.
func (b *Batch) Count(kind OperationKind) int {
	n := 0
	for _, op := range b.Operations {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of operations in the batch.
func (b *Batch) Len() int {
	return len(b.Operations)
}

// NewUpdate compares working against original and returns an Update
// whose Modified carries only the attributes that differ. The second
// result is false when nothing changed. Attributes removed from working
// are carried as empty values.
func NewUpdate(original, working *thing.Object) (Operation, bool) {
	delta := &thing.Object{
		ID:        original.ID,
		Kind:      original.Kind,
		Iteration: original.Iteration,
		Container: original.Container,
		Revision:  original.Revision,
	}
	changed := false
	for name := range unionKeys(original.Fields, working.Fields) {
		if original.Fields[name] != working.Fields[name] {
			delta.SetField(name, working.Fields[name])
			changed = true
		}
	}
	for name := range unionKeys(original.Values, working.Values) {
		if !reflect.DeepEqual(original.Values[name], working.Values[name]) {
			delta.SetValues(name, working.Values[name]...)
			changed = true
		}
	}
	for name := range unionKeys(original.Refs, working.Refs) {
		if original.Refs[name] != working.Refs[name] {
			delta.SetRef(name, working.Refs[name])
			changed = true
		}
	}
	for name := range unionKeys(original.RefLists, working.RefLists) {
		if !reflect.DeepEqual(original.RefLists[name], working.RefLists[name]) {
			if delta.RefLists == nil {
				delta.RefLists = make(map[string][]uuid.UUID)
			}
			delta.RefLists[name] = append([]uuid.UUID{}, working.RefLists[name]...)
			changed = true
		}
	}
	for name := range unionKeys(original.Children, working.Children) {
		if !reflect.DeepEqual(original.Children[name], working.Children[name]) {
			if delta.Children == nil {
				delta.Children = make(map[string][]uuid.UUID)
			}
			delta.Children[name] = append([]uuid.UUID{}, working.Children[name]...)
			changed = true
		}
	}
	if original.Deleted != working.Deleted {
		delta.Deleted = working.Deleted
		changed = true
	}
	if !changed {
		return Operation{}, false
	}
	return Operation{
		Kind:     Update,
		Original: original,
		Modified: delta,
	}, true
}

// ApplyDelta copies every attribute carried by delta onto obj.
func ApplyDelta(obj, delta *thing.Object) {
	for name, value := range delta.Fields {
		obj.SetField(name, value)
	}
	for name, values := range delta.Values {
		obj.SetValues(name, append([]string{}, values...)...)
	}
	for name, id := range delta.Refs {
		obj.SetRef(name, id)
	}
	for name, ids := range delta.RefLists {
		if obj.RefLists == nil {
			obj.RefLists = make(map[string][]uuid.UUID)
		}
		obj.RefLists[name] = append([]uuid.UUID{}, ids...)
	}
	for name, ids := range delta.Children {
		if obj.Children == nil {
			obj.Children = make(map[string][]uuid.UUID)
		}
		obj.Children[name] = append([]uuid.UUID{}, ids...)
	}
	obj.Deleted = delta.Deleted
}

// Apply mirrors batch in cache. Creates store clones of the written
// objects and link them into their cached containers, Updates apply the
// delta and bump the revision, and Deletes detach the subject together
// with its containment subtree. The batch is checked in full before
// anything is changed.
func Apply(cache *thing.Cache, batch Batch) error {
	for _, op := range batch.Operations {
		if err := check(cache, op); err != nil {
			return errors.Trace(err)
		}
	}
	for _, op := range batch.Operations {
		switch op.Kind {
		case Create:
			objs := op.Objects()
			clones := make([]*thing.Object, len(objs))
			for i, obj := range objs {
				clones[i] = obj.Clone()
				clones[i].Revision++
			}
			cache.Put(clones...)
			for _, clone := range clones {
				if parent, err := cache.Container(clone); err == nil {
					if err := parent.LinkChild(clone); err != nil {
						return errors.Trace(err)
					}
				}
			}
		case Update:
			obj, _ := cache.Get(op.Modified.Key())
			ApplyDelta(obj, op.Modified)
			obj.Revision++
		case Delete:
			if _, err := cache.Detach(op.Subject().Key()); err != nil {
				return errors.Trace(err)
			}
		}
	}
	return nil
}

func check(cache *thing.Cache, op Operation) error {
	subject := op.Subject()
	if subject == nil {
		return errors.NotValidf("%s without subject", op.Kind)
	}
	switch op.Kind {
	case Create:
		for _, obj := range op.Objects() {
			if cache.Contains(obj.Key()) {
				return errors.AlreadyExistsf("%s", obj)
			}
		}
	case Update:
		if op.Modified == nil {
			return errors.NotValidf("update of %s without delta", subject)
		}
		if !cache.Contains(op.Modified.Key()) {
			return errors.NotFoundf("%s", subject)
		}
	case Delete:
		if !cache.Contains(subject.Key()) {
			return errors.NotFoundf("%s", subject)
		}
	default:
		return errors.NotValidf("operation kind %d", int(op.Kind))
	}
	return nil
}

func unionKeys[V any](a, b map[string]V) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
