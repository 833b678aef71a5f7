package domain

import (
	"fmt"
	"strings"
)

// AnnotationKind tags the variant carried by an Annotation.
type AnnotationKind string

// Annotation kinds.
const (
	KindCreateAttribute    AnnotationKind = "CREATE_ATTRIBUTE"
	KindCreateDimensionKey AnnotationKind = "CREATE_DIMENSION_KEY"
	KindCreateMeasure      AnnotationKind = "CREATE_MEASURE"
	KindLinkDimension      AnnotationKind = "LINK_DIMENSION"
)

// GeoType tags an attribute with a geographic role.
type GeoType string

// Geo types.
const (
	GeoContinent  GeoType = "Continent"
	GeoCountry    GeoType = "Country"
	GeoTerritory  GeoType = "Territory"
	GeoState      GeoType = "State"
	GeoCounty     GeoType = "County"
	GeoCity       GeoType = "City"
	GeoPostalCode GeoType = "Postal_Code"
)

var geoTypes = []GeoType{GeoContinent, GeoCountry, GeoTerritory, GeoState, GeoCounty, GeoCity, GeoPostalCode}

// RoleName is the geo role name a GeoType resolves to.
func (g GeoType) RoleName() string { return strings.ToLower(string(g)) }

// ParseGeoType resolves a geo type name case-insensitively.
func ParseGeoType(s string) (GeoType, error) {
	for _, g := range geoTypes {
		if strings.EqualFold(string(g), s) {
			return g, nil
		}
	}
	return "", ErrValidation("unknown geo type %q", s)
}

// TimeType tags an attribute as a level of a time dimension.
type TimeType string

// Time types.
const (
	TimeYears    TimeType = "TimeYears"
	TimeHalfYear TimeType = "TimeHalfYears"
	TimeQuarters TimeType = "TimeQuarters"
	TimeMonths   TimeType = "TimeMonths"
	TimeWeeks    TimeType = "TimeWeeks"
	TimeDays     TimeType = "TimeDays"
	TimeHours    TimeType = "TimeHours"
	TimeMinutes  TimeType = "TimeMinutes"
	TimeSeconds  TimeType = "TimeSeconds"
)

// ParseTimeType resolves a time type name case-insensitively.
func ParseTimeType(s string) (TimeType, error) {
	for _, t := range []TimeType{
		TimeYears, TimeHalfYear, TimeQuarters, TimeMonths, TimeWeeks,
		TimeDays, TimeHours, TimeMinutes, TimeSeconds,
	} {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", ErrValidation("unknown time type %q", s)
}

// CreateAttribute places a field as a level of a dimension hierarchy.
type CreateAttribute struct {
	Name            string   `json:"name"`
	Field           string   `json:"field"`
	Dimension       string   `json:"dimension"`
	Hierarchy       string   `json:"hierarchy,omitempty"`
	ParentAttribute string   `json:"parent_attribute,omitempty"`
	GeoType         GeoType  `json:"geo_type,omitempty"`
	TimeType        TimeType `json:"time_type,omitempty"`
	TimeFormat      string   `json:"time_format,omitempty"`
}

// HierarchyName defaults the hierarchy to the dimension name.
func (c *CreateAttribute) HierarchyName() string {
	if c.Hierarchy != "" {
		return c.Hierarchy
	}
	return c.Dimension
}

// CreateDimensionKey marks a field as the key of a dimension.
type CreateDimensionKey struct {
	Dimension string `json:"dimension"`
	Field     string `json:"field"`
}

// CreateMeasure defines a measure over a field.
type CreateMeasure struct {
	Name         string          `json:"name"`
	Field        string          `json:"field"`
	Aggregation  AggregationType `json:"aggregation,omitempty"`
	FormatString string          `json:"format_string,omitempty"`
}

// AggregationType defaults the aggregation to SUM.
func (c *CreateMeasure) AggregationType() AggregationType {
	if c.Aggregation == "" {
		return AggregationSum
	}
	return c.Aggregation
}

// LinkDimension joins a shared dimension into the cube through Field.
type LinkDimension struct {
	Name            string `json:"name"`
	Field           string `json:"field"`
	SharedDimension string `json:"shared_dimension"`
}

// Annotation is a closed tagged variant: Kind names which one of the payload
// pointers is set. An annotation with no kind and no payload is a null
// annotation and is skipped by synthesis.
type Annotation struct {
	Kind         AnnotationKind      `json:"kind"`
	Attribute    *CreateAttribute    `json:"attribute,omitempty"`
	DimensionKey *CreateDimensionKey `json:"dimension_key,omitempty"`
	Measure      *CreateMeasure      `json:"measure,omitempty"`
	Link         *LinkDimension      `json:"link,omitempty"`
}

// NewCreateAttribute wraps a CreateAttribute payload.
func NewCreateAttribute(c CreateAttribute) *Annotation {
	return &Annotation{Kind: KindCreateAttribute, Attribute: &c}
}

// NewCreateDimensionKey wraps a CreateDimensionKey payload.
func NewCreateDimensionKey(c CreateDimensionKey) *Annotation {
	return &Annotation{Kind: KindCreateDimensionKey, DimensionKey: &c}
}

// NewCreateMeasure wraps a CreateMeasure payload.
func NewCreateMeasure(c CreateMeasure) *Annotation {
	return &Annotation{Kind: KindCreateMeasure, Measure: &c}
}

// NewLinkDimension wraps a LinkDimension payload.
func NewLinkDimension(c LinkDimension) *Annotation {
	return &Annotation{Kind: KindLinkDimension, Link: &c}
}

// IsNull reports whether a carries nothing to apply.
func (a *Annotation) IsNull() bool {
	return a == nil || (a.Kind == "" && a.Attribute == nil && a.DimensionKey == nil && a.Measure == nil && a.Link == nil)
}

// Summary is the human-readable description used in progress logs.
func (a *Annotation) Summary() string {
	switch {
	case a.IsNull():
		return "null annotation"
	case a.Kind == KindCreateAttribute && a.Attribute != nil:
		c := a.Attribute
		s := fmt.Sprintf("%s participates in hierarchy %s of dimension %s", c.Name, c.HierarchyName(), c.Dimension)
		if c.ParentAttribute != "" {
			s += " with parent " + c.ParentAttribute
		}
		if c.GeoType != "" {
			s += " as geo role " + c.GeoType.RoleName()
		}
		return s
	case a.Kind == KindCreateDimensionKey && a.DimensionKey != nil:
		return fmt.Sprintf("%s is the key for dimension %s", a.DimensionKey.Field, a.DimensionKey.Dimension)
	case a.Kind == KindCreateMeasure && a.Measure != nil:
		return fmt.Sprintf("Measure %s is %s of %s", a.Measure.Name, a.Measure.AggregationType(), a.Measure.Field)
	case a.Kind == KindLinkDimension && a.Link != nil:
		return fmt.Sprintf("Dimension %s is linked to shared dimension %s on %s", a.Link.Name, a.Link.SharedDimension, a.Link.Field)
	}
	return fmt.Sprintf("%s annotation", a.Kind)
}

// Validate rejects malformed annotations: a kind whose payload is missing,
// extra payloads, or payloads without their required fields.
func (a *Annotation) Validate() error {
	if a.IsNull() {
		return nil
	}
	set := 0
	for _, p := range []bool{a.Attribute != nil, a.DimensionKey != nil, a.Measure != nil, a.Link != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return ErrValidation("annotation %s must carry exactly one payload, has %d", a.Kind, set)
	}
	switch a.Kind {
	case KindCreateAttribute:
		if a.Attribute == nil {
			return ErrValidation("annotation %s has no attribute payload", a.Kind)
		}
		return a.Attribute.validate()
	case KindCreateDimensionKey:
		if a.DimensionKey == nil {
			return ErrValidation("annotation %s has no dimension key payload", a.Kind)
		}
		return a.DimensionKey.validate()
	case KindCreateMeasure:
		if a.Measure == nil {
			return ErrValidation("annotation %s has no measure payload", a.Kind)
		}
		return a.Measure.validate()
	case KindLinkDimension:
		if a.Link == nil {
			return ErrValidation("annotation %s has no link payload", a.Kind)
		}
		return a.Link.validate()
	default:
		return ErrValidation("unknown annotation kind %q", a.Kind)
	}
}

func (c *CreateAttribute) validate() error {
	if c.Name == "" {
		return ErrValidation("attribute name is required")
	}
	if c.Field == "" {
		return ErrValidation("attribute %q: field is required", c.Name)
	}
	if c.Dimension == "" {
		return ErrValidation("attribute %q: dimension is required", c.Name)
	}
	if c.ParentAttribute == c.Name {
		return ErrValidation("attribute %q cannot be its own parent", c.Name)
	}
	if c.GeoType != "" && c.TimeType != "" {
		return ErrValidation("attribute %q cannot be both geographic and temporal", c.Name)
	}
	return nil
}

func (c *CreateDimensionKey) validate() error {
	if c.Dimension == "" {
		return ErrValidation("dimension key: dimension is required")
	}
	if c.Field == "" {
		return ErrValidation("dimension key for %q: field is required", c.Dimension)
	}
	return nil
}

func (c *CreateMeasure) validate() error {
	if c.Name == "" {
		return ErrValidation("measure name is required")
	}
	if c.Field == "" {
		return ErrValidation("measure %q: field is required", c.Name)
	}
	if !c.AggregationType().Valid() {
		return ErrValidation("measure %q: aggregation must be one of SUM, COUNT, COUNT_DISTINCT, AVG, MIN, MAX", c.Name)
	}
	return nil
}

func (c *LinkDimension) validate() error {
	if c.Name == "" {
		return ErrValidation("linked dimension name is required")
	}
	if c.Field == "" {
		return ErrValidation("linked dimension %q: field is required", c.Name)
	}
	if c.SharedDimension == "" {
		return ErrValidation("linked dimension %q: shared dimension is required", c.Name)
	}
	return nil
}

// AnnotationGroup is an ordered annotation sequence. A non-empty Name marks
// the group as a shared dimension definition.
type AnnotationGroup struct {
	Name        string        `json:"name,omitempty"`
	Annotations []*Annotation `json:"annotations"`
}

// NewAnnotationGroup builds an unnamed group in the given order.
func NewAnnotationGroup(annotations ...*Annotation) *AnnotationGroup {
	return &AnnotationGroup{Annotations: annotations}
}

// NewSharedDimensionGroup builds a named group with every dimension key
// ahead of the attributes.
func NewSharedDimensionGroup(name string, keys []CreateDimensionKey, attributes []CreateAttribute) *AnnotationGroup {
	g := &AnnotationGroup{Name: name}
	for _, k := range keys {
		g.Annotations = append(g.Annotations, NewCreateDimensionKey(k))
	}
	for _, a := range attributes {
		g.Annotations = append(g.Annotations, NewCreateAttribute(a))
	}
	return g
}

// Len returns the number of annotations, null ones included.
func (g *AnnotationGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Annotations)
}

// DimensionKey returns the first dimension key of the group, if any.
func (g *AnnotationGroup) DimensionKey() *CreateDimensionKey {
	if g == nil {
		return nil
	}
	for _, a := range g.Annotations {
		if !a.IsNull() && a.Kind == KindCreateDimensionKey {
			return a.DimensionKey
		}
	}
	return nil
}

// IsSharedDimension reports whether the group defines a shared dimension.
func (g *AnnotationGroup) IsSharedDimension() bool {
	return g != nil && g.Name != "" && g.DimensionKey() != nil
}
