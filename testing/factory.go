// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package testing

import (
	"fmt"
	"strconv"

	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/core/thing"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session"
	"github.com/RHEAGROUP/COMET-Server-Administration-Tool-sub000/session/memory"
)

const (
	// Username and Password are the credentials of the person created
	// by NewGraph.
	Username = "admin"
	Password = "pass"
)

// Graph is a small but well-formed object graph: a site directory with
// one person, one domain of expertise, one reference data library and
// any number of engineering models.
type Graph struct {
	Site          *thing.Object
	Person        *thing.Object
	Domain        *thing.Object
	Library       *thing.Object
	ParameterType *thing.Object
	Models        []*Model

	objects []*thing.Object
}

// Model holds the objects making up one engineering model.
type Model struct {
	Setup           *thing.Object
	Participant     *thing.Object
	Model           *thing.Object
	IterationSetups []*thing.Object
	Iterations      []*thing.Object
}

// NewGraph returns a graph without models.
func NewGraph() *Graph {
	g := &Graph{}
	g.Site = g.add(nil, thing.New(thing.SiteDirectory).
		SetField(thing.AttrName, "Test Site").
		SetField(thing.AttrShortName, "TestSite"))
	g.Domain = g.add(g.Site, thing.New(thing.DomainOfExpertise).
		SetField(thing.AttrName, "System Engineering").
		SetField(thing.AttrShortName, "SYS"))
	g.Person = g.add(g.Site, thing.New(thing.Person).
		SetField(thing.AttrShortName, Username).
		SetField(thing.AttrGivenName, "Ada").
		SetField(thing.AttrSurname, "Admin").
		SetRef(thing.RefDefaultDomain, g.Domain.ID))
	g.Library = g.add(g.Site, thing.New(thing.SiteReferenceDataLibrary).
		SetField(thing.AttrName, "Generic RDL").
		SetField(thing.AttrShortName, "GenericRDL"))
	g.ParameterType = g.add(g.Library, thing.New(thing.ParameterType).
		SetField(thing.AttrName, "mass").
		SetField(thing.AttrShortName, "m").
		SetField(thing.AttrSymbol, "m"))
	return g
}

// AddModel adds an engineering model named name with the given number
// of iterations, each holding one element definition with a parameter.
func (g *Graph) AddModel(name string, iterations int) *Model {
	m := &Model{}
	m.Setup = g.add(g.Site, thing.New(thing.EngineeringModelSetup).
		SetField(thing.AttrName, name).
		SetField(thing.AttrShortName, name))
	m.Participant = g.add(m.Setup, thing.New(thing.Participant).
		SetRef(thing.RefPerson, g.Person.ID).
		AddRefs(thing.RefDomain, g.Domain.ID))
	m.Model = g.add(nil, thing.New(thing.EngineeringModel).
		SetRef(thing.RefEngineeringModelSetup, m.Setup.ID))
	m.Setup.SetRef(thing.RefEngineeringModel, m.Model.ID)

	for i := 1; i <= iterations; i++ {
		setup := g.add(m.Setup, thing.New(thing.IterationSetup).
			SetField(thing.AttrIterationNumber, strconv.Itoa(i)).
			SetField(thing.AttrDescription, fmt.Sprintf("%s iteration %d", name, i)))
		iteration := g.add(m.Model, thing.New(thing.Iteration).
			SetRef(thing.RefIterationSetup, setup.ID))
		setup.SetRef(thing.RefIteration, iteration.ID)

		element := g.add(iteration, thing.New(thing.ElementDefinition).
			SetField(thing.AttrName, "Satellite").
			SetField(thing.AttrShortName, "SAT").
			SetRef(thing.RefOwner, g.Domain.ID))
		parameter := g.add(element, thing.New(thing.Parameter).
			SetRef(thing.RefParameterType, g.ParameterType.ID).
			SetRef(thing.RefOwner, g.Domain.ID))
		g.add(parameter, FullValueSet())

		m.IterationSetups = append(m.IterationSetups, setup)
		m.Iterations = append(m.Iterations, iteration)
	}
	g.Models = append(g.Models, m)
	return m
}

// Add links obj under parent and records it as part of the graph.
func (g *Graph) Add(parent, obj *thing.Object) *thing.Object {
	return g.add(parent, obj)
}

func (g *Graph) add(parent, obj *thing.Object) *thing.Object {
	if parent != nil {
		if err := parent.AddChild(obj); err != nil {
			panic(err)
		}
	}
	g.objects = append(g.objects, obj)
	return obj
}

// Objects returns every object of the graph in creation order.
func (g *Graph) Objects() []*thing.Object {
	return append([]*thing.Object(nil), g.objects...)
}

// Install stores the graph on server and registers the graph's person.
func (g *Graph) Install(server *memory.Server) {
	server.Add(g.objects...)
	server.AddUser(Username, Password)
}

// Credentials returns credentials for the graph's person on uri.
func Credentials(uri string) session.Credentials {
	return session.Credentials{URI: uri, Username: Username, Password: Password}
}

// NewServer returns a memory server holding g, and an open-able session
// for its person.
func NewServer(g *Graph) (*memory.Server, *memory.Session) {
	server := memory.NewServer()
	g.Install(server)
	return server, server.NewSession(Credentials("memory://test/"))
}

// FullValueSet returns a value set with every multi-valued field filled.
func FullValueSet() *thing.Object {
	return thing.New(thing.ParameterValueSet).
		SetValues(thing.AttrManual, "-").
		SetValues(thing.AttrComputed, "-").
		SetValues(thing.AttrReference, "-").
		SetValues(thing.AttrFormula, "-").
		SetValues(thing.AttrPublished, "-")
}
