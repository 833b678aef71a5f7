package modeler

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"refinery-modeler/internal/domain"
)

// Applicator applies one annotation to a working model. It returns false when
// the annotation is not applicable yet (a precondition such as a parent
// level is missing) and an error when the annotation is malformed. A
// *domain.RoleNotConfiguredError also means "not applicable".
type Applicator interface {
	Apply(ctx context.Context, a *domain.Annotation, model *domain.Domain, store domain.SharedDimensionRepository) (bool, error)
}

// ApplicatorFunc adapts a function to Applicator.
type ApplicatorFunc func(ctx context.Context, a *domain.Annotation, model *domain.Domain, store domain.SharedDimensionRepository) (bool, error)

// Apply implements Applicator.
func (f ApplicatorFunc) Apply(ctx context.Context, a *domain.Annotation, model *domain.Domain, store domain.SharedDimensionRepository) (bool, error) {
	return f(ctx, a, model, store)
}

// AnnotationApplicator is the default Applicator. Geo attributes carry geo
// metadata only when it was built with a GeoResolver.
type AnnotationApplicator struct {
	geo    *GeoResolver
	logger *slog.Logger
}

// NewAnnotationApplicator creates an AnnotationApplicator. geo may be nil.
func NewAnnotationApplicator(geo *GeoResolver) *AnnotationApplicator {
	return &AnnotationApplicator{geo: geo, logger: slog.New(slog.DiscardHandler)}
}

// WithLogger sets the logger for not-applicable details and returns ap.
func (ap *AnnotationApplicator) WithLogger(logger *slog.Logger) *AnnotationApplicator {
	if logger != nil {
		ap.logger = logger
	}
	return ap
}

// Apply implements Applicator.
func (ap *AnnotationApplicator) Apply(ctx context.Context, a *domain.Annotation, model *domain.Domain, store domain.SharedDimensionRepository) (bool, error) {
	if a.IsNull() {
		return false, nil
	}
	if err := a.Validate(); err != nil {
		return false, err
	}
	switch a.Kind {
	case domain.KindCreateAttribute:
		return ap.createAttribute(a.Attribute, model)
	case domain.KindCreateDimensionKey:
		return ap.createDimensionKey(a.DimensionKey, model)
	case domain.KindCreateMeasure:
		return ap.createMeasure(a.Measure, model)
	case domain.KindLinkDimension:
		return ap.linkDimension(ctx, a.Link, model, store)
	}
	return false, domain.ErrValidation("unknown annotation kind %q", a.Kind)
}

func (ap *AnnotationApplicator) createAttribute(c *domain.CreateAttribute, model *domain.Domain) (bool, error) {
	col := findColumn(model, c.Field)
	if col == nil {
		return false, nil
	}

	var role *RoleDescriptor
	if c.GeoType != "" && ap.geo != nil {
		desc, err := ap.geo.ResolveRole(c.GeoType.RoleName())
		if err != nil {
			return false, err
		}
		role = &desc
	}

	analysis := model.Analysis
	dim := analysis.Dimension(c.Dimension)
	if dim != nil && dim.SharedDimension != "" {
		return false, domain.ErrValidation("attribute %q targets linked dimension %q", c.Name, c.Dimension)
	}
	var hier *domain.OlapHierarchy
	if dim != nil {
		hier = dim.Hierarchy(c.HierarchyName())
	}

	parentIdx := -1
	if c.ParentAttribute != "" {
		if hier == nil {
			return false, nil
		}
		if parentIdx, _ = hier.Level(c.ParentAttribute); parentIdx < 0 {
			return false, nil
		}
	}

	dropAutoColumn(analysis, col.Name, c.Dimension)
	if dim != nil {
		hier = dim.Hierarchy(c.HierarchyName())
	}
	if hier != nil && c.ParentAttribute != "" {
		parentIdx, _ = hier.Level(c.ParentAttribute)
	}

	if dim == nil {
		dim = &domain.OlapDimension{Name: c.Dimension, Type: domain.DimensionStandard}
		if err := analysis.AddDimension(dim, ""); err != nil {
			return false, err
		}
	}
	dim.Auto = false
	if hier == nil {
		hier = &domain.OlapHierarchy{Name: c.HierarchyName()}
		dim.Hierarchies = append(dim.Hierarchies, hier)
	}

	_, level := hier.Level(c.Name)
	if level == nil {
		level = &domain.OlapHierarchyLevel{Name: c.Name}
		if parentIdx >= 0 {
			hier.Levels = slices.Insert(hier.Levels, parentIdx+1, level)
		} else {
			hier.Levels = append(hier.Levels, level)
		}
	}
	level.Column = col.Name
	level.Auto = false
	if c.TimeType != "" {
		level.LevelType = string(c.TimeType)
		level.FormatString = c.TimeFormat
		dim.Type = domain.DimensionTime
	}
	if role != nil {
		level.SetGeoRole(role.Role, role.RequiredParents)
	}

	if ap.geo != nil && hasGeoLevel(hier) {
		ordered, err := ap.geo.OrderHierarchyLevels(hier.Levels)
		if err != nil {
			return false, err
		}
		hier.Levels = ordered
	}
	return true, nil
}

func (ap *AnnotationApplicator) createDimensionKey(c *domain.CreateDimensionKey, model *domain.Domain) (bool, error) {
	col := findColumn(model, c.Field)
	if col == nil {
		return false, nil
	}
	analysis := model.Analysis
	dim := analysis.Dimension(c.Dimension)
	if dim == nil {
		dim = &domain.OlapDimension{Name: c.Dimension, Type: domain.DimensionStandard}
		if err := analysis.AddDimension(dim, ""); err != nil {
			return false, err
		}
	}
	dim.Auto = false
	dim.KeyColumn = col.Name
	return true, nil
}

func (ap *AnnotationApplicator) createMeasure(c *domain.CreateMeasure, model *domain.Domain) (bool, error) {
	col := findColumn(model, c.Field)
	if col == nil {
		return false, nil
	}
	agg := c.AggregationType()
	if !col.DataType.IsNumeric() && agg != domain.AggregationCount && agg != domain.AggregationCountDistinct {
		return false, domain.ErrValidation("measure %q: %s is not allowed on %s field %q", c.Name, agg, col.DataType, c.Field)
	}

	cube := model.Analysis.Cube
	existing := cube.Measure(c.Name)
	cube.Measures = slices.DeleteFunc(cube.Measures, func(ms *domain.OlapMeasure) bool {
		return ms.Auto && ms != existing && strings.EqualFold(ms.Column, col.Name)
	})
	if existing == nil {
		existing = &domain.OlapMeasure{Name: c.Name}
		cube.Measures = append(cube.Measures, existing)
	}
	existing.Column = col.Name
	existing.Aggregation = agg
	existing.FormatString = c.FormatString
	existing.Auto = false
	return true, nil
}

func (ap *AnnotationApplicator) linkDimension(ctx context.Context, c *domain.LinkDimension, model *domain.Domain, store domain.SharedDimensionRepository) (bool, error) {
	if store == nil {
		ap.logger.Debug("no shared dimension store configured", "dimension", c.Name, "shared_dimension", c.SharedDimension)
		return false, nil
	}
	col := findColumn(model, c.Field)
	if col == nil {
		return false, nil
	}
	group, err := store.Get(ctx, c.SharedDimension)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	key := group.DimensionKey()
	if key == nil {
		return false, domain.ErrValidation("shared dimension %q has no dimension key", c.SharedDimension)
	}

	analysis := model.Analysis
	existing := analysis.Dimension(c.Name)
	if existing != nil && existing.SharedDimension == group.Name {
		return true, nil
	}
	if existing != nil && !existing.Auto {
		return false, domain.ErrValidation("dimension %q already exists and is not linked to %q", c.Name, c.SharedDimension)
	}

	dim, err := ap.sharedDimension(c.Name, group, key)
	if err != nil {
		return false, err
	}
	if existing != nil {
		analysis.RemoveDimension(existing.Name)
	}
	dropAutoColumn(analysis, col.Name, "")
	if err := analysis.AddDimension(dim, col.Name); err != nil {
		return false, err
	}
	return true, nil
}

// sharedDimension rebuilds a dimension from the attributes of a shared
// dimension group.
func (ap *AnnotationApplicator) sharedDimension(name string, group *domain.AnnotationGroup, key *domain.CreateDimensionKey) (*domain.OlapDimension, error) {
	dim := &domain.OlapDimension{
		Name:            name,
		Type:            domain.DimensionStandard,
		KeyColumn:       key.Field,
		SharedDimension: group.Name,
	}
	for _, a := range group.Annotations {
		if a.IsNull() || a.Kind != domain.KindCreateAttribute || a.Attribute == nil {
			continue
		}
		attr := a.Attribute
		hier := dim.Hierarchy(attr.HierarchyName())
		if hier == nil {
			hier = &domain.OlapHierarchy{Name: attr.HierarchyName()}
			dim.Hierarchies = append(dim.Hierarchies, hier)
		}
		level := &domain.OlapHierarchyLevel{Name: attr.Name, Column: attr.Field}
		if attr.TimeType != "" {
			level.LevelType = string(attr.TimeType)
			level.FormatString = attr.TimeFormat
			dim.Type = domain.DimensionTime
		}
		if attr.GeoType != "" && ap.geo != nil {
			if err := ap.geo.Annotate(level, attr.GeoType.RoleName()); err != nil {
				return nil, err
			}
		}
		if idx, _ := hier.Level(attr.ParentAttribute); attr.ParentAttribute != "" && idx >= 0 {
			hier.Levels = slices.Insert(hier.Levels, idx+1, level)
		} else {
			hier.Levels = append(hier.Levels, level)
		}
	}
	if ap.geo != nil {
		for _, h := range dim.Hierarchies {
			if !hasGeoLevel(h) {
				continue
			}
			ordered, err := ap.geo.OrderHierarchyLevels(h.Levels)
			if err != nil {
				return nil, err
			}
			h.Levels = ordered
		}
	}
	return dim, nil
}

// findColumn resolves an annotation field against the physical model, by
// stream (logical) name first, then by column name.
func findColumn(model *domain.Domain, field string) *domain.PhysicalColumn {
	cols := model.Physical.Table.Columns
	for i := range cols {
		if cols[i].LogicalName == field {
			return &cols[i]
		}
	}
	return model.Physical.Column(field)
}

// dropAutoColumn removes the generated levels that use column and the
// hierarchies left empty, then drops the auto dimensions left without
// hierarchies. The dimension named keep is never dropped.
func dropAutoColumn(analysis *domain.AnalysisModel, column, keep string) {
	var empty []string
	for _, dim := range analysis.Dimensions {
		dropped := false
		for _, h := range dim.Hierarchies {
			n := len(h.Levels)
			h.Levels = slices.DeleteFunc(h.Levels, func(l *domain.OlapHierarchyLevel) bool {
				return l.Auto && strings.EqualFold(l.Column, column)
			})
			dropped = dropped || len(h.Levels) < n
		}
		if !dropped {
			continue
		}
		dim.Hierarchies = slices.DeleteFunc(dim.Hierarchies, func(h *domain.OlapHierarchy) bool {
			return len(h.Levels) == 0
		})
		if dim.Auto && dim.Name != keep && len(dim.Hierarchies) == 0 {
			empty = append(empty, dim.Name)
		}
	}
	for _, name := range empty {
		analysis.RemoveDimension(name)
	}
}

func hasGeoLevel(h *domain.OlapHierarchy) bool {
	for _, l := range h.Levels {
		if _, ok := l.GeoRole(); ok {
			return true
		}
	}
	return false
}
