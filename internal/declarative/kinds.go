package declarative

import (
	"strings"

	"refinery-modeler/internal/domain"
)

// Annotation keys as written in job files.
const (
	KeyCreateAttribute    = "createAttribute"
	KeyCreateDimensionKey = "createDimensionKey"
	KeyCreateMeasure      = "createMeasure"
	KeyLinkDimension      = "linkDimension"
)

// keys lists the annotation keys set on a.
func (a AnnotationSpec) keys() []string {
	var out []string
	if a.CreateAttribute != nil {
		out = append(out, KeyCreateAttribute)
	}
	if a.CreateDimensionKey != nil {
		out = append(out, KeyCreateDimensionKey)
	}
	if a.CreateMeasure != nil {
		out = append(out, KeyCreateMeasure)
	}
	if a.LinkDimension != nil {
		out = append(out, KeyLinkDimension)
	}
	return out
}

// ToDomain converts the spec into an annotation. Enumerated values are
// matched case-insensitively.
func (a AnnotationSpec) ToDomain() (*domain.Annotation, error) {
	keys := a.keys()
	if len(keys) != 1 {
		return nil, domain.ErrValidation("annotation must set exactly one of %s, %s, %s, %s (has %d)",
			KeyCreateAttribute, KeyCreateDimensionKey, KeyCreateMeasure, KeyLinkDimension, len(keys))
	}

	var out *domain.Annotation
	switch {
	case a.CreateAttribute != nil:
		c := a.CreateAttribute
		attr := domain.CreateAttribute{
			Name:            c.Name,
			Field:           c.Field,
			Dimension:       c.Dimension,
			Hierarchy:       c.Hierarchy,
			ParentAttribute: c.ParentAttribute,
			TimeFormat:      c.TimeFormat,
		}
		if c.GeoType != "" {
			g, err := domain.ParseGeoType(c.GeoType)
			if err != nil {
				return nil, err
			}
			attr.GeoType = g
		}
		if c.TimeType != "" {
			tt, err := domain.ParseTimeType(c.TimeType)
			if err != nil {
				return nil, err
			}
			attr.TimeType = tt
		}
		out = domain.NewCreateAttribute(attr)
	case a.CreateDimensionKey != nil:
		out = domain.NewCreateDimensionKey(domain.CreateDimensionKey{
			Dimension: a.CreateDimensionKey.Dimension,
			Field:     a.CreateDimensionKey.Field,
		})
	case a.CreateMeasure != nil:
		c := a.CreateMeasure
		out = domain.NewCreateMeasure(domain.CreateMeasure{
			Name:         c.Name,
			Field:        c.Field,
			Aggregation:  domain.AggregationType(strings.ToUpper(strings.TrimSpace(c.Aggregation))),
			FormatString: c.FormatString,
		})
	default:
		out = domain.NewLinkDimension(domain.LinkDimension{
			Name:            a.LinkDimension.Name,
			Field:           a.LinkDimension.Field,
			SharedDimension: a.LinkDimension.SharedDimension,
		})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
