package domain

import (
	"fmt"
	"slices"
	"strings"
)

// DataSourceType selects how the published model reaches its database.
type DataSourceType string

// Data source access types.
const (
	DataSourceNative DataSourceType = "NATIVE"
	DataSourceJNDI   DataSourceType = "JNDI"
)

// DimensionType distinguishes time dimensions from standard ones.
type DimensionType string

// Dimension types.
const (
	DimensionStandard DimensionType = "StandardDimension"
	DimensionTime     DimensionType = "TimeDimension"
)

// AggregationType is the aggregation applied by a measure.
type AggregationType string

// Aggregation types.
const (
	AggregationSum           AggregationType = "SUM"
	AggregationCount         AggregationType = "COUNT"
	AggregationCountDistinct AggregationType = "COUNT_DISTINCT"
	AggregationAverage       AggregationType = "AVG"
	AggregationMin           AggregationType = "MIN"
	AggregationMax           AggregationType = "MAX"
)

// Valid reports whether a is a known aggregation.
func (a AggregationType) Valid() bool {
	switch a {
	case AggregationSum, AggregationCount, AggregationCountDistinct,
		AggregationAverage, AggregationMin, AggregationMax:
		return true
	}
	return false
}

// Domain is the root artifact of synthesis. It owns the physical model, the
// relational (reporting) model and the analysis (OLAP) model.
type Domain struct {
	ID         string
	Name       string
	Physical   *PhysicalModel
	Relational *RelationalModel
	Analysis   *AnalysisModel
}

// DataSource describes how the physical model connects to its database.
type DataSource struct {
	Type         DataSourceType
	DatabaseName string
}

// PhysicalModel describes the single table the domain is built on.
type PhysicalModel struct {
	ID         string
	DataSource DataSource
	Table      PhysicalTable
}

// PhysicalTable is a database table with its remembered columns.
type PhysicalTable struct {
	Name       string
	SchemaName string
	Columns    []PhysicalColumn
}

// PhysicalColumn is one remembered column. LogicalName is the stream field
// name the column was imported under.
type PhysicalColumn struct {
	ID          string
	Name        string
	LogicalName string
	DataType    DataType
}

// RelationalModel is the reporting model.
type RelationalModel struct {
	ID         string
	Name       string
	Categories []*Category
}

// Category groups logical fields.
type Category struct {
	ID     string
	Name   string
	Fields []CategoryField
}

// CategoryField refers to a physical column by ID; it does not own it.
type CategoryField struct {
	ID       string
	Name     string
	ColumnID string
}

// AnalysisModel is the OLAP model.
type AnalysisModel struct {
	ID         string
	Name       string
	CatalogRef string
	Dimensions []*OlapDimension
	Cube       *OlapCube
}

// OlapDimension is a named set of hierarchies.
type OlapDimension struct {
	Name            string
	Type            DimensionType
	KeyColumn       string
	SharedDimension string // name of the shared dimension this was linked from
	Auto            bool   // generated by the skeleton, replaceable by annotations
	Hierarchies     []*OlapHierarchy
}

// OlapHierarchy is an ordered drill path.
type OlapHierarchy struct {
	Name   string
	Levels []*OlapHierarchyLevel
}

// OlapHierarchyLevel is one rung of a hierarchy.
type OlapHierarchyLevel struct {
	Name         string
	Column       string
	LevelType    string
	FormatString string
	Annotations  []OlapAnnotation
	Auto         bool // generated by the skeleton, dropped when an annotation claims its column
}

// OlapAnnotation is a name/value metadata entry on a level.
type OlapAnnotation struct {
	Name  string
	Value string
}

// OlapMeasure aggregates a numeric column.
type OlapMeasure struct {
	Name         string
	Column       string
	Aggregation  AggregationType
	FormatString string
	Auto         bool
}

// OlapDimensionUsage links a dimension, by name, into the cube.
type OlapDimensionUsage struct {
	Name       string
	Dimension  string
	ForeignKey string // physical column joining a linked shared dimension
}

// OlapCube is the single cube of an analysis model.
type OlapCube struct {
	Name     string
	Measures []*OlapMeasure
	Usages   []*OlapDimensionUsage
}

// Level metadata names and values attached to geographic levels.
const (
	AnnotationDataRole        = "Data.Role"
	AnnotationGeoRole         = "Geo.Role"
	AnnotationRequiredParents = "Geo.RequiredParents"
	DataRoleGeography         = "Geography"
)

// Annotation returns the value of the named metadata entry.
func (l *OlapHierarchyLevel) Annotation(name string) (string, bool) {
	for _, a := range l.Annotations {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// GeoRole returns the level's resolved geo role, if any.
func (l *OlapHierarchyLevel) GeoRole() (string, bool) {
	return l.Annotation(AnnotationGeoRole)
}

// SetGeoRole replaces the level metadata with the three geo entries in fixed
// order: data role tag, geo role, comma-joined required parents.
func (l *OlapHierarchyLevel) SetGeoRole(role string, requiredParents []string) {
	l.Annotations = []OlapAnnotation{
		{Name: AnnotationDataRole, Value: DataRoleGeography},
		{Name: AnnotationGeoRole, Value: role},
		{Name: AnnotationRequiredParents, Value: strings.Join(requiredParents, ",")},
	}
}

// Level finds a level by name.
func (h *OlapHierarchy) Level(name string) (int, *OlapHierarchyLevel) {
	for i, l := range h.Levels {
		if l.Name == name {
			return i, l
		}
	}
	return -1, nil
}

// Hierarchy finds a hierarchy by name.
func (d *OlapDimension) Hierarchy(name string) *OlapHierarchy {
	for _, h := range d.Hierarchies {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// Dimension finds a dimension by name.
func (m *AnalysisModel) Dimension(name string) *OlapDimension {
	for _, d := range m.Dimensions {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// AddDimension appends a dimension and links it into the cube.
func (m *AnalysisModel) AddDimension(d *OlapDimension, foreignKey string) error {
	if m.Dimension(d.Name) != nil {
		return ErrConflict("dimension %q already exists", d.Name)
	}
	m.Dimensions = append(m.Dimensions, d)
	m.Cube.Usages = append(m.Cube.Usages, &OlapDimensionUsage{Name: d.Name, Dimension: d.Name, ForeignKey: foreignKey})
	return nil
}

// RemoveDimension drops a dimension and every cube usage of it.
func (m *AnalysisModel) RemoveDimension(name string) {
	m.Dimensions = slices.DeleteFunc(m.Dimensions, func(d *OlapDimension) bool { return d.Name == name })
	m.Cube.Usages = slices.DeleteFunc(m.Cube.Usages, func(u *OlapDimensionUsage) bool { return u.Dimension == name })
}

// UsageDimension resolves the dimension a usage points at.
func (m *AnalysisModel) UsageDimension(u *OlapDimensionUsage) *OlapDimension {
	return m.Dimension(u.Dimension)
}

// Measure finds a measure by name.
func (c *OlapCube) Measure(name string) *OlapMeasure {
	for _, ms := range c.Measures {
		if ms.Name == name {
			return ms
		}
	}
	return nil
}

// Column finds a remembered column by physical name (case-insensitive).
func (p *PhysicalModel) Column(name string) *PhysicalColumn {
	for i := range p.Table.Columns {
		if strings.EqualFold(p.Table.Columns[i].Name, name) {
			return &p.Table.Columns[i]
		}
	}
	return nil
}

// Schema reconstructs the TableSchema the physical model remembers.
func (p *PhysicalModel) Schema() (*TableSchema, error) {
	fields := make([]SchemaField, 0, len(p.Table.Columns))
	for _, c := range p.Table.Columns {
		fields = append(fields, SchemaField{LogicalName: c.LogicalName, PhysicalName: c.Name, Type: c.DataType})
	}
	return NewTableSchema(fields...)
}

// LogicalModelNames returns the names of the relational and analysis models.
func (d *Domain) LogicalModelNames() []string {
	var names []string
	if d.Relational != nil {
		names = append(names, d.Relational.Name)
	}
	if d.Analysis != nil {
		names = append(names, d.Analysis.Name)
	}
	return names
}

// Validate checks the structural invariants of a finished domain against the
// schema it was built from: every measure and dimension usage references a
// schema column, geo levels follow their in-hierarchy required parents, and
// logical model names are unique.
func (d *Domain) Validate(schema *TableSchema) error {
	names := d.LogicalModelNames()
	for i, n := range names {
		if slices.Contains(names[i+1:], n) {
			return ErrValidation("domain %q contains two logical models named %q", d.Name, n)
		}
	}
	if d.Analysis == nil || d.Analysis.Cube == nil {
		return ErrValidation("domain %q has no cube", d.Name)
	}
	cube := d.Analysis.Cube
	for _, ms := range cube.Measures {
		if _, ok := schema.Column(ms.Column); !ok {
			return ErrValidation("measure %q references unknown column %q", ms.Name, ms.Column)
		}
	}
	for _, u := range cube.Usages {
		dim := d.Analysis.UsageDimension(u)
		if dim == nil {
			return ErrValidation("dimension usage %q references unknown dimension %q", u.Name, u.Dimension)
		}
		if err := validateUsage(u, dim, schema); err != nil {
			return err
		}
	}
	return nil
}

func validateUsage(u *OlapDimensionUsage, dim *OlapDimension, schema *TableSchema) error {
	if dim.SharedDimension != "" {
		if _, ok := schema.Column(u.ForeignKey); !ok {
			return ErrValidation("dimension usage %q references unknown column %q", u.Name, u.ForeignKey)
		}
		return nil
	}
	for _, h := range dim.Hierarchies {
		if len(h.Levels) == 0 {
			return ErrValidation("hierarchy %q of dimension %q has no levels", h.Name, dim.Name)
		}
		for i, l := range h.Levels {
			if _, ok := schema.Column(l.Column); !ok {
				return ErrValidation("level %q of dimension %q references unknown column %q", l.Name, dim.Name, l.Column)
			}
			if err := validateGeoParents(h, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateGeoParents ensures required parents present in the hierarchy sit
// at shallower levels than level i. Parents absent from the hierarchy impose
// nothing.
func validateGeoParents(h *OlapHierarchy, i int) error {
	level := h.Levels[i]
	if _, ok := level.GeoRole(); !ok {
		return nil
	}
	parents, _ := level.Annotation(AnnotationRequiredParents)
	if parents == "" {
		return nil
	}
	for _, parent := range strings.Split(parents, ",") {
		for j, other := range h.Levels {
			if role, ok := other.GeoRole(); ok && role == parent && j > i {
				return ErrValidation("geo level %q precedes its required parent %q in hierarchy %q", level.Name, parent, h.Name)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the domain.
func (d *Domain) Clone() *Domain {
	out := &Domain{ID: d.ID, Name: d.Name}
	if d.Physical != nil {
		p := *d.Physical
		p.Table.Columns = slices.Clone(d.Physical.Table.Columns)
		out.Physical = &p
	}
	if d.Relational != nil {
		r := &RelationalModel{ID: d.Relational.ID, Name: d.Relational.Name}
		for _, c := range d.Relational.Categories {
			r.Categories = append(r.Categories, &Category{ID: c.ID, Name: c.Name, Fields: slices.Clone(c.Fields)})
		}
		out.Relational = r
	}
	if d.Analysis != nil {
		out.Analysis = d.Analysis.clone()
	}
	return out
}

func (m *AnalysisModel) clone() *AnalysisModel {
	out := &AnalysisModel{ID: m.ID, Name: m.Name, CatalogRef: m.CatalogRef}
	for _, dim := range m.Dimensions {
		nd := *dim
		nd.Hierarchies = nil
		for _, h := range dim.Hierarchies {
			nh := &OlapHierarchy{Name: h.Name}
			for _, l := range h.Levels {
				nl := *l
				nl.Annotations = slices.Clone(l.Annotations)
				nh.Levels = append(nh.Levels, &nl)
			}
			nd.Hierarchies = append(nd.Hierarchies, nh)
		}
		out.Dimensions = append(out.Dimensions, &nd)
	}
	if m.Cube != nil {
		c := &OlapCube{Name: m.Cube.Name}
		for _, ms := range m.Cube.Measures {
			nm := *ms
			c.Measures = append(c.Measures, &nm)
		}
		for _, u := range m.Cube.Usages {
			nu := *u
			c.Usages = append(c.Usages, &nu)
		}
		out.Cube = c
	}
	return out
}

// NewPhysicalModel builds the physical model for a table from its schema.
func NewPhysicalModel(tableSchema, table string, schema *TableSchema, ds DataSource) *PhysicalModel {
	p := &PhysicalModel{
		ID:         NewID(),
		DataSource: ds,
		Table:      PhysicalTable{Name: table, SchemaName: tableSchema},
	}
	for _, f := range schema.Fields() {
		p.Table.Columns = append(p.Table.Columns, PhysicalColumn{
			ID:          columnID(table, f.PhysicalName),
			Name:        f.PhysicalName,
			LogicalName: f.LogicalName,
			DataType:    f.Type,
		})
	}
	return p
}

// NewCategory builds a category holding one field per physical column.
func NewCategory(name string, p *PhysicalModel) *Category {
	c := &Category{ID: "CAT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_")), Name: name}
	for _, col := range p.Table.Columns {
		c.Fields = append(c.Fields, CategoryField{
			ID:       fieldID(p.Table.Name, col.Name),
			Name:     col.LogicalName,
			ColumnID: col.ID,
		})
	}
	return c
}

// String renders a short description used in logs.
func (d *Domain) String() string {
	if d.Analysis == nil || d.Analysis.Cube == nil {
		return fmt.Sprintf("domain %q", d.Name)
	}
	return fmt.Sprintf("domain %q (%d measures, %d dimension usages)",
		d.Name, len(d.Analysis.Cube.Measures), len(d.Analysis.Cube.Usages))
}
