package declarative

import (
	"database/sql"
	"strings"

	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/schemasource"
	"refinery-modeler/internal/service/modeler"
)

// Job is a compiled modeling job.
type Job struct {
	Request modeler.CreateModelRequest
	db      *sql.DB
}

// Close releases the database opened for the job's schema source, if any.
func (j *Job) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Compile validates doc and builds its synthesis request. A database source
// is opened here and stays open until Close.
func Compile(doc *ModelingJobDoc) (*Job, error) {
	if errs := Validate(doc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, domain.ErrValidation("invalid modeling job: %s", strings.Join(msgs, "; "))
	}

	spec := doc.Spec
	job := &Job{}
	job.Request = modeler.CreateModelRequest{
		ModelName:   doc.Metadata.Name,
		Connection:  domain.Connection{Name: spec.Connection.Name, Schema: spec.Connection.Schema, Table: spec.Connection.Table},
		Annotations: Annotations(spec),
	}

	if db := spec.Source.Database; db != nil {
		dialect, _ := schemasource.ParseDialect(db.Driver)
		conn, err := schemasource.Open(dialect, db.DSN)
		if err != nil {
			return nil, err
		}
		job.db = conn
		job.Request.Source = schemasource.NewSQLSource(conn, dialect, db.Schema, db.Table,
			schemasource.WithLogicalNames(db.LogicalNames))
		if job.Request.Connection.Table == "" {
			job.Request.Connection.Schema = db.Schema
			job.Request.Connection.Table = db.Table
		}
		return job, nil
	}

	fields := make([]schemasource.RowField, len(spec.Source.Fields))
	for i, f := range spec.Source.Fields {
		t, _ := domain.ParseDataType(f.Type)
		fields[i] = schemasource.RowField{Name: f.Name, Type: t}
	}
	mapping := make([]schemasource.FieldMapping, len(spec.Source.Mapping))
	for i, m := range spec.Source.Mapping {
		mapping[i] = schemasource.FieldMapping{Stream: m.Stream, Column: m.Column}
	}
	job.Request.Source = schemasource.NewStreamSource(fields, mapping)
	return job, nil
}

// Annotations converts the job's annotations, in order, into a group named
// after its shared dimension. Invalid annotations are skipped; Validate
// reports them.
func Annotations(spec ModelingJobSpec) *domain.AnnotationGroup {
	group := &domain.AnnotationGroup{Name: spec.SharedDimension}
	for _, a := range spec.Annotations {
		if ann, err := a.ToDomain(); err == nil {
			group.Annotations = append(group.Annotations, ann)
		}
	}
	return group
}
