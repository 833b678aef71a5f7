// Package modeler synthesizes relational and OLAP models from a tabular
// schema and an ordered set of modeling annotations.
package modeler

import (
	"context"
	"fmt"
	"log/slog"

	"refinery-modeler/internal/domain"
)

// State is a step of one synthesis run.
type State string

// Synthesis states. FAILED is reachable from every other state.
const (
	StateImportingSchema     State = "IMPORTING_SCHEMA"
	StateReconciling         State = "RECONCILING"
	StateBuildingSkeleton    State = "BUILDING_SKELETON"
	StateApplyingAnnotations State = "APPLYING_ANNOTATIONS"
	StateDone                State = "DONE"
	StateFailed              State = "FAILED"
)

// Service synthesizes models. It holds no per-run state: every call builds
// and owns its own working model, so one Service may serve concurrent calls.
type Service struct {
	geo              *GeoResolver
	store            domain.SharedDimensionRepository
	applicator       Applicator
	nativeDataSource bool
	batchLimit       int
	logger           *slog.Logger
}

// ServiceDeps holds dependencies for Service.
type ServiceDeps struct {
	// Geo is the geo role vocabulary. Nil disables geo metadata.
	Geo *domain.GeoContext
	// SharedDimensions is the meta store for shared dimensions. May be nil.
	SharedDimensions domain.SharedDimensionRepository
	// Applicator overrides the default AnnotationApplicator.
	Applicator       Applicator
	NativeDataSource bool
	BatchLimit       int
	Logger           *slog.Logger
}

// NewService creates a new Service.
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	geo := NewGeoResolver(deps.Geo)
	applicator := deps.Applicator
	if applicator == nil {
		applicator = NewAnnotationApplicator(geo).WithLogger(logger)
	}
	limit := deps.BatchLimit
	if limit <= 0 {
		limit = 4
	}
	return &Service{
		geo:              geo,
		store:            deps.SharedDimensions,
		applicator:       applicator,
		nativeDataSource: deps.NativeDataSource,
		batchLimit:       limit,
		logger:           logger,
	}
}

// CreateModelRequest asks for a model built from scratch.
type CreateModelRequest struct {
	ModelName   string
	Source      domain.SchemaSource
	Connection  domain.Connection
	Annotations *domain.AnnotationGroup
}

// Validate checks required fields.
func (r CreateModelRequest) Validate() error {
	if r.ModelName == "" {
		return domain.ErrValidation("model name is required")
	}
	if r.Source == nil {
		return domain.ErrValidation("schema source is required")
	}
	return nil
}

// UpdateModelRequest asks for an existing model to be rebuilt against a
// fresh schema under a (possibly new) name.
type UpdateModelRequest struct {
	ModelName   string
	Existing    *domain.Domain
	Source      domain.SchemaSource
	Connection  domain.Connection
	Annotations *domain.AnnotationGroup
}

// Validate checks required fields.
func (r UpdateModelRequest) Validate() error {
	if r.ModelName == "" {
		return domain.ErrValidation("model name is required")
	}
	if r.Source == nil {
		return domain.ErrValidation("schema source is required")
	}
	if r.Existing == nil || r.Existing.Physical == nil || r.Existing.Analysis == nil || r.Existing.Analysis.Cube == nil {
		return domain.ErrValidation("existing model is required")
	}
	return nil
}

// Result is a finished synthesis.
type Result struct {
	Domain *domain.Domain
	// Schema is the schema the model was validated against.
	Schema *domain.TableSchema
	// Applied and Unapplied partition the non-null annotations.
	Applied   []*domain.Annotation
	Unapplied []*domain.Annotation
	Sweeps    int
}

// run tracks the state of one synthesis call.
type run struct {
	model  string
	state  State
	logger *slog.Logger
}

func (r *run) enter(next State) {
	r.logger.Debug("synthesis state", "model", r.model, "from", r.state, "to", next)
	r.state = next
}

func (r *run) fail(err error) error {
	r.enter(StateFailed)
	return err
}

// CreateModel builds a new Domain from the schema of req.Source and applies
// req.Annotations to it. An empty schema fails with *domain.NoDataError.
func (s *Service) CreateModel(ctx context.Context, req CreateModelRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := &run{model: req.ModelName, logger: s.logger}

	r.enter(StateImportingSchema)
	schema, err := s.importSchema(ctx, req.Source)
	if err != nil {
		return nil, r.fail(err)
	}

	// Nothing to reconcile for a model built from scratch.
	r.enter(StateReconciling)

	r.enter(StateBuildingSkeleton)
	model, err := s.buildSkeleton(req.ModelName, schema, req.Connection)
	if err != nil {
		return nil, r.fail(fmt.Errorf("build model skeleton: %w", err))
	}

	return s.finish(ctx, r, model, schema, req.Annotations)
}

// UpdateModel rebuilds req.Existing against the schema of req.Source. The
// candidate schema must still provide every column the existing model
// remembers, with unchanged types. req.Existing is never modified.
func (s *Service) UpdateModel(ctx context.Context, req UpdateModelRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := &run{model: req.ModelName, logger: s.logger}

	r.enter(StateImportingSchema)
	candidate, err := s.importSchema(ctx, req.Source)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateReconciling)
	remembered, err := req.Existing.Physical.Schema()
	if err != nil {
		return nil, r.fail(fmt.Errorf("read existing schema: %w", err))
	}
	schema, err := Reconcile(remembered, candidate)
	if err != nil {
		return nil, r.fail(fmt.Errorf("reconcile schema of %q: %w", req.Existing.Name, err))
	}
	if schema.IsEmpty() {
		return nil, r.fail(&domain.NoDataError{})
	}

	r.enter(StateBuildingSkeleton)
	model := req.Existing.Clone()
	renameModel(model, req.Existing.Name, req.ModelName)
	retarget(model, schema, req.Connection)

	return s.finish(ctx, r, model, schema, req.Annotations)
}

func (s *Service) importSchema(ctx context.Context, src domain.SchemaSource) (*domain.TableSchema, error) {
	schema, err := src.FetchSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	if schema.IsEmpty() {
		return nil, &domain.NoDataError{}
	}
	return schema, nil
}

// finish runs the annotation phase, validates the model and records the
// shared dimension the annotations define, if any.
func (s *Service) finish(ctx context.Context, r *run, model *domain.Domain, schema *domain.TableSchema, group *domain.AnnotationGroup) (*Result, error) {
	r.enter(StateApplyingAnnotations)
	var annotations []*domain.Annotation
	if group != nil {
		annotations = group.Annotations
	}
	conv, err := s.converge(ctx, model, annotations)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := model.Validate(schema); err != nil {
		return nil, r.fail(err)
	}

	if group.IsSharedDimension() {
		if s.store == nil {
			s.logger.Warn("no shared dimension store configured, not saving", "shared_dimension", group.Name)
		} else if err := s.store.Save(ctx, group); err != nil {
			return nil, r.fail(fmt.Errorf("save shared dimension %q: %w", group.Name, err))
		}
	}

	r.enter(StateDone)
	s.logger.Info("model synthesized", "model", model.Name,
		"measures", len(model.Analysis.Cube.Measures),
		"dimension_usages", len(model.Analysis.Cube.Usages),
		"unapplied", len(conv.unapplied))
	return &Result{
		Domain:    model,
		Schema:    schema,
		Applied:   conv.applied,
		Unapplied: conv.unapplied,
		Sweeps:    conv.sweeps,
	}, nil
}

// renameModel carries a copied model over to a new name. Names derived from
// the old name follow it; names chosen independently are kept.
func renameModel(model *domain.Domain, from, to string) {
	model.Name = to
	if rel := model.Relational; rel != nil {
		if rel.Name == from {
			rel.Name = to
		}
		for _, c := range rel.Categories {
			if c.Name == from {
				c.Name = to
			}
		}
	}
	if an := model.Analysis; an != nil {
		if an.Name == analysisName(from) || an.Name == from {
			an.Name = analysisName(to)
		}
		if an.CatalogRef == from {
			an.CatalogRef = to
		}
		if an.Cube.Name == from {
			an.Cube.Name = to
		}
	}
}

// retarget points a copied model at the connection it is republished on:
// physical columns follow the reconciled schema and the data source becomes
// a JNDI reference named after the connection.
func retarget(model *domain.Domain, schema *domain.TableSchema, conn domain.Connection) {
	p := model.Physical
	var cols []domain.PhysicalColumn
	for _, f := range schema.Fields() {
		if c := p.Column(f.PhysicalName); c != nil {
			cols = append(cols, *c)
		}
	}
	p.Table.Columns = cols
	if conn.Table != "" {
		p.Table.Name = conn.Table
	}
	if conn.Schema != "" {
		p.Table.SchemaName = conn.Schema
	}
	name := conn.Name
	if name == "" {
		name = p.DataSource.DatabaseName
	}
	p.DataSource = domain.DataSource{Type: domain.DataSourceJNDI, DatabaseName: name}
}
