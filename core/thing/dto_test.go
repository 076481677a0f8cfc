// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing_test

import (
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
)

type dtoSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&dtoSuite{})

func (s *dtoSuite) TestMarshalDTOKeys(c *gc.C) {
	setup := thing.New(thing.IterationSetup).
		SetField(thing.AttrDescription, "first").
		SetField(thing.AttrIterationNumber, "1")
	iterationID := uuid.New()
	setup.SetRef(thing.RefIteration, iterationID)
	setup.Container = uuid.New()
	setup.Revision = 4

	d := thing.MarshalDTO(setup)
	c.Check(d["classKind"], gc.Equals, "IterationSetup")
	c.Check(d["iid"], gc.Equals, setup.ID.String())
	c.Check(d["revisionNumber"], gc.Equals, 4)
	c.Check(d["description"], gc.Equals, "first")
	c.Check(d["iterationNumber"], gc.Equals, "1")
	c.Check(d["iteration"], gc.Equals, iterationID.String())
	c.Check(d["container"], gc.Equals, setup.Container.String())
}

func (s *dtoSuite) TestJSONPreservesShape(c *gc.C) {
	model := thing.New(thing.EngineeringModelSetup).
		SetField(thing.AttrName, "Satellite").
		SetField(thing.AttrShortName, "SAT")
	setup := thing.New(thing.IterationSetup).SetField(thing.AttrDescription, "it")
	participant := thing.New(thing.Participant).SetRef(thing.RefPerson, uuid.New())
	participant.AddRefs(thing.RefDomain, uuid.New(), uuid.New())
	c.Assert(model.AddChild(setup), jc.ErrorIsNil)
	c.Assert(model.AddChild(participant), jc.ErrorIsNil)
	valueSet := thing.New(thing.ParameterValueSet).SetValues(thing.AttrManual, "1", "2")
	valueSet.Deleted = true

	data, err := thing.EncodeJSON([]*thing.Object{model, participant, valueSet})
	c.Assert(err, jc.ErrorIsNil)
	objs, err := thing.DecodeJSON(data)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(objs, gc.HasLen, 3)

	c.Check(objs[0].Fields, jc.DeepEquals, model.Fields)
	c.Check(objs[0].Children[thing.FieldIterationSetup], jc.DeepEquals, []uuid.UUID{setup.ID})
	c.Check(objs[0].Children[thing.FieldParticipant], jc.DeepEquals, []uuid.UUID{participant.ID})
	c.Check(objs[1].Ref(thing.RefPerson), gc.Equals, participant.Ref(thing.RefPerson))
	c.Check(objs[1].RefLists[thing.RefDomain], jc.DeepEquals, participant.RefLists[thing.RefDomain])
	c.Check(objs[1].Container, gc.Equals, model.ID)
	c.Check(objs[2].Values[thing.AttrManual], jc.DeepEquals, []string{"1", "2"})
	c.Check(objs[2].Deleted, jc.IsTrue)
}

func (s *dtoSuite) TestUnmarshalUnknownKind(c *gc.C) {
	_, err := thing.UnmarshalDTO(thing.DTO{"classKind": "Spaceship", "iid": uuid.New().String()})
	c.Check(err, jc.Satisfies, errors.IsNotSupported)
}

func (s *dtoSuite) TestUnmarshalBadIdentity(c *gc.C) {
	_, err := thing.UnmarshalDTO(thing.DTO{"classKind": "Person", "iid": "nope"})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}
