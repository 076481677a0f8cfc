// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package thing

// Kind identifies the type of a domain object.
type Kind string

const (
	SiteDirectory            Kind = "SiteDirectory"
	Person                   Kind = "Person"
	DomainOfExpertise        Kind = "DomainOfExpertise"
	Definition               Kind = "Definition"
	Citation                 Kind = "Citation"
	Alias                    Kind = "Alias"
	HyperLink                Kind = "HyperLink"
	SiteReferenceDataLibrary Kind = "SiteReferenceDataLibrary"
	FileType                 Kind = "FileType"
	ReferenceSource          Kind = "ReferenceSource"
	ParameterType            Kind = "ParameterType"
	MeasurementScale         Kind = "MeasurementScale"
	ScaleValueDefinition     Kind = "ScaleValueDefinition"
	EngineeringModelSetup    Kind = "EngineeringModelSetup"
	IterationSetup           Kind = "IterationSetup"
	Participant              Kind = "Participant"
	EngineeringModel         Kind = "EngineeringModel"
	Iteration                Kind = "Iteration"
	ElementDefinition        Kind = "ElementDefinition"
	Parameter                Kind = "Parameter"
	ParameterValueSet        Kind = "ParameterValueSet"
)

// Containment fields.
const (
	FieldModel                    = "model"
	FieldPerson                   = "person"
	FieldDomain                   = "domain"
	FieldSiteReferenceDataLibrary = "siteReferenceDataLibrary"
	FieldDefinition               = "definition"
	FieldCitation                 = "citation"
	FieldAlias                    = "alias"
	FieldHyperLink                = "hyperLink"
	FieldFileType                 = "fileType"
	FieldReferenceSource          = "referenceSource"
	FieldParameterType            = "parameterType"
	FieldScale                    = "scale"
	FieldValueDefinition          = "valueDefinition"
	FieldIterationSetup           = "iterationSetup"
	FieldParticipant              = "participant"
	FieldIteration                = "iteration"
	FieldElement                  = "element"
	FieldParameter                = "parameter"
	FieldValueSet                 = "valueSet"
)

// Scalar, multi-valued and reference attribute names.
const (
	AttrName            = "Name"
	AttrShortName       = "ShortName"
	AttrGivenName       = "GivenName"
	AttrSurname         = "Surname"
	AttrContent         = "Content"
	AttrLanguageCode    = "LanguageCode"
	AttrUri             = "Uri"
	AttrExtension       = "Extension"
	AttrSymbol          = "Symbol"
	AttrValue           = "Value"
	AttrDescription     = "Description"
	AttrIterationNumber = "IterationNumber"

	AttrManual    = "Manual"
	AttrComputed  = "Computed"
	AttrReference = "Reference"
	AttrFormula   = "Formula"
	AttrPublished = "Published"

	RefSource                = "Source"
	RefPerson                = "Person"
	RefDomain                = "Domain"
	RefDefaultDomain         = "DefaultDomain"
	RefRequiredRdl           = "RequiredRdl"
	RefDefaultScale          = "DefaultScale"
	RefEngineeringModel      = "EngineeringModel"
	RefEngineeringModelSetup = "EngineeringModelSetup"
	RefIteration             = "Iteration"
	RefIterationSetup        = "IterationSetup"
	RefOwner                 = "Owner"
	RefParameterType         = "ParameterType"
)

// RuleKind enumerates the structural rules a kind can declare.
type RuleKind int

const (
	// RequiredField fails when a scalar field is empty.
	RequiredField RuleKind = iota + 1
	// RequiredReference fails when a reference is unset, or when
	// Resolve is set and the referenced object is not cached.
	RequiredReference
	// MinElements fails when a multi-valued field has fewer than Min
	// elements.
	MinElements
)

func (k RuleKind) String() string {
	switch k {
	case RequiredField:
		return "required-field"
	case RequiredReference:
		return "required-reference"
	case MinElements:
		return "min-elements"
	}
	return "unknown"
}

// Rule is a single structural rule declared by a kind.
type Rule struct {
	Kind    RuleKind
	Field   string
	Min     int
	Resolve bool
}

// Containment declares a child collection of a kind.
type Containment struct {
	Field string
	Child Kind
}

// Schema describes the shape of a kind.
type Schema struct {
	Containment []Containment
	References  []string
	RefLists    []string
	Rules       []Rule
}

func required(fields ...string) []Rule {
	rules := make([]Rule, len(fields))
	for i, f := range fields {
		rules[i] = Rule{Kind: RequiredField, Field: f}
	}
	return rules
}

func minElements(min int, fields ...string) []Rule {
	rules := make([]Rule, len(fields))
	for i, f := range fields {
		rules[i] = Rule{Kind: MinElements, Field: f, Min: min}
	}
	return rules
}

var schemas = map[Kind]Schema{
	SiteDirectory: {
		Containment: []Containment{
			{FieldModel, EngineeringModelSetup},
			{FieldPerson, Person},
			{FieldDomain, DomainOfExpertise},
			{FieldSiteReferenceDataLibrary, SiteReferenceDataLibrary},
		},
		Rules: required(AttrName, AttrShortName),
	},
	Person: {
		References: []string{RefDefaultDomain},
		Rules:      required(AttrShortName, AttrGivenName, AttrSurname),
	},
	DomainOfExpertise: {
		Containment: []Containment{
			{FieldDefinition, Definition},
			{FieldAlias, Alias},
			{FieldHyperLink, HyperLink},
		},
		Rules: required(AttrName, AttrShortName),
	},
	Definition: {
		Containment: []Containment{{FieldCitation, Citation}},
		Rules:       required(AttrContent, AttrLanguageCode),
	},
	Citation: {
		References: []string{RefSource},
		Rules: append(required(AttrShortName),
			Rule{Kind: RequiredReference, Field: RefSource}),
	},
	Alias: {
		Rules: required(AttrContent, AttrLanguageCode),
	},
	HyperLink: {
		Rules: required(AttrContent, AttrUri),
	},
	SiteReferenceDataLibrary: {
		Containment: []Containment{
			{FieldFileType, FileType},
			{FieldReferenceSource, ReferenceSource},
			{FieldParameterType, ParameterType},
			{FieldScale, MeasurementScale},
			{FieldDefinition, Definition},
		},
		References: []string{RefRequiredRdl},
		Rules:      required(AttrName, AttrShortName),
	},
	FileType: {
		Rules: required(AttrName, AttrShortName, AttrExtension),
	},
	ReferenceSource: {
		Rules: required(AttrName, AttrShortName),
	},
	ParameterType: {
		References: []string{RefDefaultScale},
		Rules:      required(AttrName, AttrShortName, AttrSymbol),
	},
	MeasurementScale: {
		Containment: []Containment{{FieldValueDefinition, ScaleValueDefinition}},
		Rules:       required(AttrName, AttrShortName),
	},
	ScaleValueDefinition: {
		Rules: required(AttrName, AttrShortName, AttrValue),
	},
	EngineeringModelSetup: {
		Containment: []Containment{
			{FieldIterationSetup, IterationSetup},
			{FieldParticipant, Participant},
		},
		References: []string{RefEngineeringModel},
		Rules:      required(AttrName, AttrShortName),
	},
	IterationSetup: {
		References: []string{RefIteration},
		Rules:      required(AttrDescription),
	},
	Participant: {
		References: []string{RefPerson},
		RefLists:   []string{RefDomain},
		Rules:      []Rule{{Kind: RequiredReference, Field: RefPerson, Resolve: true}},
	},
	EngineeringModel: {
		Containment: []Containment{{FieldIteration, Iteration}},
		References:  []string{RefEngineeringModelSetup},
	},
	Iteration: {
		Containment: []Containment{{FieldElement, ElementDefinition}},
		References:  []string{RefIterationSetup},
	},
	ElementDefinition: {
		Containment: []Containment{{FieldParameter, Parameter}},
		References:  []string{RefOwner},
		Rules: append(required(AttrName, AttrShortName),
			Rule{Kind: RequiredReference, Field: RefOwner}),
	},
	Parameter: {
		Containment: []Containment{{FieldValueSet, ParameterValueSet}},
		References:  []string{RefParameterType, RefOwner},
		Rules: []Rule{
			{Kind: RequiredReference, Field: RefParameterType},
			{Kind: RequiredReference, Field: RefOwner},
		},
	},
	ParameterValueSet: {
		Rules: minElements(1, AttrManual, AttrComputed, AttrReference, AttrFormula, AttrPublished),
	},
}

// Schema returns the schema declared for k. Unknown kinds have an empty
// schema.
func (k Kind) Schema() Schema {
	return schemas[k]
}

// Known reports whether k is a kind this package describes.
func (k Kind) Known() bool {
	_, ok := schemas[k]
	return ok
}

// Kinds returns all known kinds.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(schemas))
	for k := range schemas {
		kinds = append(kinds, k)
	}
	return kinds
}

// ContainmentField returns the field of parent that holds children of
// the given kind.
func ContainmentField(parent, child Kind) (string, bool) {
	for _, c := range parent.Schema().Containment {
		if c.Child == child {
			return c.Field, true
		}
	}
	return "", false
}
