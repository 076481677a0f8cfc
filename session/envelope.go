// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package session

import (
	"encoding/json"

	"github.com/juju/errors"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

// Envelope is the wire form of a batch.
type Envelope struct {
	Delete []thing.DTO `json:"_delete"`
	Create []thing.DTO `json:"_create"`
	Update []thing.DTO `json:"_update"`
}

// NewEnvelope converts batch to its wire form. Deletes carry only the
// kind and identity of their subject.
func NewEnvelope(batch Batch) Envelope {
	env := Envelope{
		Delete: []thing.DTO{},
		Create: []thing.DTO{},
		Update: []thing.DTO{},
	}
	for _, op := range batch.Operations {
		switch op.Kind {
		case Create:
			for _, obj := range op.Objects() {
				env.Create = append(env.Create, thing.MarshalDTO(obj))
			}
		case Update:
			env.Update = append(env.Update, thing.MarshalDTO(op.Modified))
		case Delete:
			subject := op.Subject()
			env.Delete = append(env.Delete, thing.DTO{
				"classKind": string(subject.Kind),
				"iid":       subject.ID.String(),
			})
		}
	}
	return env
}

// Marshal encodes the envelope as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	return data, errors.Trace(err)
}

// UnmarshalEnvelope decodes a JSON envelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Annotate(err, "decoding batch")
	}
	return env, nil
}

// Created decodes the objects of the envelope's creates.
func (e Envelope) Created() ([]*thing.Object, error) {
	objs := make([]*thing.Object, 0, len(e.Create))
	for _, d := range e.Create {
		obj, err := thing.UnmarshalDTO(d)
		if err != nil {
			return nil, errors.Trace(err)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
