package declarative

// SupportedAPIVersion is the only apiVersion accepted in job files.
const SupportedAPIVersion = "refinery/v1"

// KindModelingJob is the kind of a modeling job document.
const KindModelingJob = "ModelingJob"

// Document is the generic envelope parsed first to determine Kind.
type Document struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

// ObjectMeta holds common metadata for named resources.
type ObjectMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ModelingJobDoc declares one model synthesis: where the schema comes from,
// which table the model is published against, and the annotations to apply.
type ModelingJobDoc struct {
	APIVersion string          `yaml:"apiVersion"`
	Kind       string          `yaml:"kind"`
	Metadata   ObjectMeta      `yaml:"metadata"`
	Spec       ModelingJobSpec `yaml:"spec"`
}

// ModelingJobSpec is the body of a modeling job.
type ModelingJobSpec struct {
	Connection      ConnectionSpec   `yaml:"connection"`
	Source          SourceSpec       `yaml:"source"`
	SharedDimension string           `yaml:"sharedDimension,omitempty"` // saves the annotations under this name
	Annotations     []AnnotationSpec `yaml:"annotations,omitempty"`
}

// ConnectionSpec names the database table the model describes.
type ConnectionSpec struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema,omitempty"`
	Table  string `yaml:"table,omitempty"`
}

// SourceSpec is exactly one of an inline table-output layout or a live
// database table.
type SourceSpec struct {
	Fields   []FieldSpec   `yaml:"fields,omitempty"`
	Mapping  []MappingSpec `yaml:"mapping,omitempty"`
	Database *DatabaseSpec `yaml:"database,omitempty"`
}

// FieldSpec is one row field written by a table output.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // Integer, Number, String, Date, Boolean, Binary
}

// MappingSpec pairs a stream field with the column it is written to.
type MappingSpec struct {
	Stream string `yaml:"stream"`
	Column string `yaml:"column"`
}

// DatabaseSpec points at a table to introspect.
type DatabaseSpec struct {
	Driver       string            `yaml:"driver"` // sqlite3 or duckdb
	DSN          string            `yaml:"dsn,omitempty"`
	Schema       string            `yaml:"schema,omitempty"`
	Table        string            `yaml:"table"`
	LogicalNames map[string]string `yaml:"logicalNames,omitempty"` // column -> logical name
}

// AnnotationSpec holds exactly one annotation.
type AnnotationSpec struct {
	CreateAttribute    *CreateAttributeSpec    `yaml:"createAttribute,omitempty"`
	CreateDimensionKey *CreateDimensionKeySpec `yaml:"createDimensionKey,omitempty"`
	CreateMeasure      *CreateMeasureSpec      `yaml:"createMeasure,omitempty"`
	LinkDimension      *LinkDimensionSpec      `yaml:"linkDimension,omitempty"`
}

// CreateAttributeSpec places a field in a dimension hierarchy.
type CreateAttributeSpec struct {
	Name            string `yaml:"name"`
	Field           string `yaml:"field"`
	Dimension       string `yaml:"dimension"`
	Hierarchy       string `yaml:"hierarchy,omitempty"`
	ParentAttribute string `yaml:"parentAttribute,omitempty"`
	GeoType         string `yaml:"geoType,omitempty"`
	TimeType        string `yaml:"timeType,omitempty"`
	TimeFormat      string `yaml:"timeFormat,omitempty"`
}

// CreateDimensionKeySpec marks the key field of a dimension.
type CreateDimensionKeySpec struct {
	Dimension string `yaml:"dimension"`
	Field     string `yaml:"field"`
}

// CreateMeasureSpec defines a measure.
type CreateMeasureSpec struct {
	Name         string `yaml:"name"`
	Field        string `yaml:"field"`
	Aggregation  string `yaml:"aggregation,omitempty"` // default SUM
	FormatString string `yaml:"formatString,omitempty"`
}

// LinkDimensionSpec joins a stored shared dimension into the cube.
type LinkDimensionSpec struct {
	Name            string `yaml:"name"`
	Field           string `yaml:"field"`
	SharedDimension string `yaml:"sharedDimension"`
}
