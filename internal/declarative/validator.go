package declarative

import (
	"fmt"
	"strings"

	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/schemasource"
)

// ValidationError represents a single validation problem.
type ValidationError struct {
	Path    string // e.g. "spec.annotations[2]"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Validate checks a modeling job and returns every problem found.
func Validate(doc *ModelingJobDoc) []ValidationError {
	var errs []ValidationError

	if err := validateDocument(doc.APIVersion, doc.Kind, KindModelingJob); err != nil {
		addErr(&errs, "", "%v", err)
	}
	if strings.TrimSpace(doc.Metadata.Name) == "" {
		addErr(&errs, "metadata.name", "model name is required")
	}
	if doc.Spec.Connection.Name == "" {
		addErr(&errs, "spec.connection.name", "connection name is required")
	}

	validateSource(doc.Spec.Source, &errs)
	validateAnnotations(doc.Spec, &errs)

	return errs
}

func addErr(errs *[]ValidationError, path, msg string, args ...any) {
	*errs = append(*errs, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(msg, args...),
	})
}

func validateSource(src SourceSpec, errs *[]ValidationError) {
	inline := len(src.Fields) > 0 || len(src.Mapping) > 0
	switch {
	case inline && src.Database != nil:
		addErr(errs, "spec.source", "set either fields or database, not both")
		return
	case !inline && src.Database == nil:
		addErr(errs, "spec.source", "one of fields or database is required")
		return
	}

	if db := src.Database; db != nil {
		if _, err := schemasource.ParseDialect(db.Driver); err != nil {
			addErr(errs, "spec.source.database.driver", "%v", err)
		}
		if db.Table == "" {
			addErr(errs, "spec.source.database.table", "table is required")
		}
		return
	}

	if len(src.Fields) == 0 {
		addErr(errs, "spec.source.fields", "mapping requires row fields")
	}
	seen := make(map[string]bool, len(src.Fields))
	for i, f := range src.Fields {
		path := fmt.Sprintf("spec.source.fields[%d]", i)
		if f.Name == "" {
			addErr(errs, path, "name is required")
		} else {
			key := strings.ToLower(f.Name)
			if seen[key] {
				addErr(errs, path, "duplicate field %q", f.Name)
			}
			seen[key] = true
		}
		if _, err := domain.ParseDataType(f.Type); err != nil {
			addErr(errs, path, "%v", err)
		}
	}
	for i, m := range src.Mapping {
		if m.Column == "" {
			addErr(errs, fmt.Sprintf("spec.source.mapping[%d]", i), "column is required")
		}
	}
}

func validateAnnotations(spec ModelingJobSpec, errs *[]ValidationError) {
	hasKey := false
	for i, a := range spec.Annotations {
		path := fmt.Sprintf("spec.annotations[%d]", i)
		if keys := a.keys(); len(keys) == 1 {
			path += "." + keys[0]
		}
		if _, err := a.ToDomain(); err != nil {
			addErr(errs, path, "%v", err)
		}
		if a.CreateDimensionKey != nil {
			hasKey = true
		}
	}
	if spec.SharedDimension != "" && !hasKey {
		addErr(errs, "spec.sharedDimension", "a shared dimension needs a %s annotation", KeyCreateDimensionKey)
	}
}
