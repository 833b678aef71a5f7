package modeler

import (
	"context"
	"log/slog"
	"testing"

	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/schemasource"
	"refinery-modeler/internal/testutil"

	"github.com/stretchr/testify/require"
)

// orderfactSource is the five-field table output where unknownfield has no
// stream pairing.
func orderfactSource() domain.SchemaSource {
	return schemasource.NewStreamSource(
		[]schemasource.RowField{
			{Name: "QuantityOrdered", Type: domain.DataTypeInteger},
			{Name: "TotalPrice", Type: domain.DataTypeNumber},
			{Name: "ProductCode", Type: domain.DataTypeString},
			{Name: "Status", Type: domain.DataTypeString},
			{Name: "unknownfield", Type: domain.DataTypeString},
		},
		[]schemasource.FieldMapping{
			{Stream: "Quantity Ordered", Column: "QuantityOrdered"},
			{Stream: "Total Price", Column: "TotalPrice"},
			{Stream: "Product Code", Column: "ProductCode"},
			{Stream: "Status", Column: "Status"},
		},
	)
}

// geodataSource is a table whose column names mostly match geo roles.
func geodataSource() domain.SchemaSource {
	return schemasource.NewStreamSource(
		[]schemasource.RowField{
			{Name: "state_fips", Type: domain.DataTypeInteger},
			{Name: "state", Type: domain.DataTypeString},
			{Name: "state_abbr", Type: domain.DataTypeString},
			{Name: "zipcode", Type: domain.DataTypeString},
			{Name: "county", Type: domain.DataTypeString},
			{Name: "city", Type: domain.DataTypeString},
		},
		nil,
	)
}

func testGeoContext(t *testing.T) *domain.GeoContext {
	t.Helper()
	gc, err := domain.NewGeoContext("", []domain.GeoRole{
		{Name: "continent", Aliases: []string{"continent"}},
		{Name: "country", Aliases: []string{"ctry", "nation"}},
		{Name: "state", Aliases: []string{"province", "st"}, RequiredParents: []string{"country"}},
		{Name: "county", Aliases: []string{"parish"}, RequiredParents: []string{"country", "state"}},
		{Name: "city", Aliases: []string{"town"}, RequiredParents: []string{"country", "state"}},
		{Name: "postal_code", Aliases: []string{"zip", "zipcode", "postcode"}, RequiredParents: []string{"country"}},
	})
	require.NoError(t, err)
	return gc
}

// scriptedApplicator answers Apply from a per-summary script of results; the
// last entry repeats once the script runs out.
type scriptedApplicator struct {
	script map[string][]bool
	calls  map[string]int
}

func newScriptedApplicator(script map[string][]bool) *scriptedApplicator {
	return &scriptedApplicator{script: script, calls: make(map[string]int)}
}

func (s *scriptedApplicator) Apply(_ context.Context, a *domain.Annotation, _ *domain.Domain, _ domain.SharedDimensionRepository) (bool, error) {
	key := a.Summary()
	results := s.script[key]
	n := s.calls[key]
	s.calls[key]++
	if len(results) == 0 {
		return false, nil
	}
	if n >= len(results) {
		return results[len(results)-1], nil
	}
	return results[n], nil
}

// measure builds an annotation whose summary is "Measure <name> is SUM of <field>".
func measure(name, field string) *domain.Annotation {
	return domain.NewCreateMeasure(domain.CreateMeasure{Name: name, Field: field})
}

func recordingService(t *testing.T, deps ServiceDeps) (*Service, *testutil.RecordingHandler) {
	t.Helper()
	logger, rec := testutil.NewRecordingLogger(slog.LevelDebug)
	deps.Logger = logger
	return NewService(deps), rec
}

func usageNames(d *domain.Domain) []string {
	var names []string
	for _, u := range d.Analysis.Cube.Usages {
		names = append(names, u.Dimension)
	}
	return names
}

func measureNames(d *domain.Domain) []string {
	var names []string
	for _, m := range d.Analysis.Cube.Measures {
		names = append(names, m.Name)
	}
	return names
}

func levelNames(h *domain.OlapHierarchy) []string {
	var names []string
	for _, l := range h.Levels {
		names = append(names, l.Name)
	}
	return names
}

var orderfactConn = domain.Connection{Name: "SampleData", Table: "orderfact"}
