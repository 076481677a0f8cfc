// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

import (
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// DTO is the wire form of an object: a flat JSON document keyed by
// camelCase attribute names, with references rendered as identity
// strings.
type DTO map[string]interface{}

const (
	keyClassKind = "classKind"
	keyIid       = "iid"
	keyRevision  = "revisionNumber"
	keyContainer = "container"
	keyDeleted   = "isDeleted"
)

// MarshalDTO renders o in wire form.
func MarshalDTO(o *Object) DTO {
	d := DTO{
		keyClassKind: string(o.Kind),
		keyIid:       o.ID.String(),
		keyRevision:  o.Revision,
	}
	if o.Container != uuid.Nil {
		d[keyContainer] = o.Container.String()
	}
	if o.Deleted {
		d[keyDeleted] = true
	}
	for name, value := range o.Fields {
		d[lowerFirst(name)] = value
	}
	for name, values := range o.Values {
		d[lowerFirst(name)] = append([]string{}, values...)
	}
	for field, ids := range o.Children {
		d[field] = idStrings(ids)
	}
	for name, id := range o.Refs {
		if id != uuid.Nil {
			d[lowerFirst(name)] = id.String()
		}
	}
	for name, ids := range o.RefLists {
		d[lowerFirst(name)] = idStrings(ids)
	}
	return d
}

// UnmarshalDTO rebuilds an object from its wire form. The iteration
// context is not part of the wire form and is left unset.
func UnmarshalDTO(d DTO) (*Object, error) {
	kindName, _ := d[keyClassKind].(string)
	kind := Kind(kindName)
	if !kind.Known() {
		return nil, errors.NotSupportedf("class kind %q", kindName)
	}
	id, err := parseID(d[keyIid])
	if err != nil {
		return nil, errors.Annotatef(err, "%s iid", kind)
	}
	obj := &Object{ID: id, Kind: kind}
	if rev, ok := d[keyRevision].(float64); ok {
		obj.Revision = int(rev)
	} else if rev, ok := d[keyRevision].(int); ok {
		obj.Revision = rev
	}
	if deleted, ok := d[keyDeleted].(bool); ok {
		obj.Deleted = deleted
	}
	if raw, ok := d[keyContainer]; ok {
		if obj.Container, err = parseID(raw); err != nil {
			return nil, errors.Annotatef(err, "%s container", kind)
		}
	}

	schema := kind.Schema()
	containment := make(map[string]bool)
	for _, c := range schema.Containment {
		containment[c.Field] = true
	}
	references := stringSet(schema.References)
	refLists := stringSet(schema.RefLists)

	for key, raw := range d {
		switch key {
		case keyClassKind, keyIid, keyRevision, keyContainer, keyDeleted:
			continue
		}
		name := upperFirst(key)
		switch value := raw.(type) {
		case string:
			if references[name] {
				ref, err := parseID(value)
				if err != nil {
					return nil, errors.Annotatef(err, "%s %s", kind, name)
				}
				obj.SetRef(name, ref)
				continue
			}
			obj.SetField(name, value)
		case []interface{}:
			strs := make([]string, 0, len(value))
			for _, v := range value {
				s, ok := v.(string)
				if !ok {
					return nil, errors.NotValidf("%s %s element %v", kind, name, v)
				}
				strs = append(strs, s)
			}
			if err := assignList(obj, key, name, strs, containment, refLists); err != nil {
				return nil, errors.Trace(err)
			}
		case []string:
			if err := assignList(obj, key, name, value, containment, refLists); err != nil {
				return nil, errors.Trace(err)
			}
		case nil:
		default:
			return nil, errors.NotValidf("%s %s value %v", kind, name, raw)
		}
	}
	return obj, nil
}

func assignList(obj *Object, key, name string, values []string, containment, refLists map[string]bool) error {
	switch {
	case containment[key]:
		ids, err := parseIDs(values)
		if err != nil {
			return errors.Annotatef(err, "%s %s", obj.Kind, key)
		}
		if obj.Children == nil {
			obj.Children = make(map[string][]uuid.UUID)
		}
		obj.Children[key] = ids
	case refLists[name]:
		ids, err := parseIDs(values)
		if err != nil {
			return errors.Annotatef(err, "%s %s", obj.Kind, name)
		}
		obj.AddRefs(name, ids...)
	default:
		obj.SetValues(name, values...)
	}
	return nil
}

// EncodeJSON renders objs as a JSON array of DTOs.
func EncodeJSON(objs []*Object) ([]byte, error) {
	dtos := make([]DTO, len(objs))
	for i, obj := range objs {
		dtos[i] = MarshalDTO(obj)
	}
	data, err := json.Marshal(dtos)
	return data, errors.Trace(err)
}

// DecodeJSON parses a JSON array of DTOs.
func DecodeJSON(data []byte) ([]*Object, error) {
	var dtos []DTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, errors.Annotate(err, "decoding objects")
	}
	objs := make([]*Object, 0, len(dtos))
	for _, d := range dtos {
		obj, err := UnmarshalDTO(d)
		if err != nil {
			return nil, errors.Trace(err)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

func parseID(raw interface{}) (uuid.UUID, error) {
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, errors.NotValidf("identity %v", raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.NewNotValid(err, "identity "+s)
	}
	return id, nil
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseID(v)
		if err != nil {
			return nil, errors.Trace(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func idStrings(ids []uuid.UUID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return strs
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[n:]
}
