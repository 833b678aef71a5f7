package modeler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"refinery-modeler/internal/domain"
	"refinery-modeler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateModel_AnnotationsApplyFirstTry(t *testing.T) {
	a1 := measure("One", "QuantityOrdered")
	a2 := measure("Two", "TotalPrice")
	applicator := newScriptedApplicator(map[string][]bool{
		a1.Summary(): {true},
		a2.Summary(): {true},
	})
	svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

	res, err := svc.CreateModel(context.Background(), CreateModelRequest{
		ModelName:   "FromScratch",
		Source:      orderfactSource(),
		Connection:  orderfactConn,
		Annotations: domain.NewAnnotationGroup(a1, a2),
	})
	require.NoError(t, err)

	d := res.Domain
	assert.Equal(t, []string{"Quantity Ordered", "Total Price"}, measureNames(d))
	assert.Len(t, d.Analysis.Cube.Usages, 4)
	require.Len(t, d.Relational.Categories, 1)
	assert.Equal(t, "FromScratch", d.Relational.Categories[0].Name)
	assert.Len(t, d.Relational.Categories[0].Fields, 4)

	assert.Equal(t, 1, applicator.calls[a1.Summary()])
	assert.Equal(t, 1, applicator.calls[a2.Summary()])
	assert.Equal(t, 1, rec.Count("Successfully applied annotation: "+a1.Summary()))
	assert.Equal(t, 1, rec.Count("Successfully applied annotation: "+a2.Summary()))
	assert.Equal(t, 1, res.Sweeps)
	assert.Empty(t, res.Unapplied)
}

func TestCreateModel_ConvergesAcrossSweeps(t *testing.T) {
	late := measure("Late", "QuantityOrdered")
	never := measure("Never", "TotalPrice")
	second := measure("Second", "ProductCode")
	first := measure("First", "Status")
	applicator := newScriptedApplicator(map[string][]bool{
		late.Summary():   {false, false, true},
		never.Summary():  {false},
		second.Summary(): {false, true},
		first.Summary():  {true},
	})
	svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

	res, err := svc.CreateModel(context.Background(), CreateModelRequest{
		ModelName:   "FromScratch",
		Source:      orderfactSource(),
		Connection:  orderfactConn,
		Annotations: domain.NewAnnotationGroup(late, never, second, first),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Quantity Ordered", "Total Price"}, measureNames(res.Domain))
	assert.Len(t, res.Domain.Analysis.Cube.Usages, 4)
	assert.Equal(t, 4, res.Sweeps)

	assert.Equal(t, map[string]int{
		late.Summary():   3,
		never.Summary():  4,
		second.Summary(): 2,
		first.Summary():  1,
	}, applicator.calls)

	assert.Equal(t, 1, rec.Count("Successfully applied annotation: "+late.Summary()))
	assert.Zero(t, rec.Count("Unable to apply annotation: "+late.Summary()))
	assert.Equal(t, 1, rec.Count("Unable to apply annotation: "+never.Summary()))
	assert.Zero(t, rec.Count("Successfully applied annotation: "+never.Summary()))
	assert.Equal(t, []*domain.Annotation{never}, res.Unapplied)
	assert.Equal(t, []*domain.Annotation{first, second, late}, res.Applied)
}

func TestCreateModel_UnapplicableAnnotationsFailOnce(t *testing.T) {
	a1 := measure("A1", "QuantityOrdered")
	a2 := measure("A2", "TotalPrice")
	a3 := measure("A3", "Status")
	applicator := newScriptedApplicator(map[string][]bool{
		a1.Summary(): {false, false},
		a2.Summary(): {false, false},
		a3.Summary(): {true},
	})
	svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

	_, err := svc.CreateModel(context.Background(), CreateModelRequest{
		ModelName:   "FromScratch",
		Source:      orderfactSource(),
		Annotations: domain.NewAnnotationGroup(a1, a2, a3),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, applicator.calls[a1.Summary()])
	assert.Equal(t, 2, applicator.calls[a2.Summary()])
	assert.Equal(t, 1, applicator.calls[a3.Summary()])
	assert.Equal(t, []string{
		"Successfully applied annotation: " + a3.Summary(),
		"Unable to apply annotation: " + a1.Summary(),
		"Unable to apply annotation: " + a2.Summary(),
	}, progressMessages(rec))
}

func TestConverge_Termination(t *testing.T) {
	tests := []struct {
		name        string
		deps        map[int]int // annotation index -> index it waits for
		n           int
		wantSweeps  int
		wantApplied int
	}{
		{name: "independent", n: 4, deps: map[int]int{}, wantSweeps: 1, wantApplied: 4},
		{name: "chain declared in order", n: 4, deps: map[int]int{1: 0, 2: 1, 3: 2}, wantSweeps: 1, wantApplied: 4},
		{name: "chain declared in reverse", n: 4, deps: map[int]int{0: 1, 1: 2, 2: 3}, wantSweeps: 4, wantApplied: 4},
		{name: "two-cycle", n: 2, deps: map[int]int{0: 1, 1: 0}, wantSweeps: 1, wantApplied: 0},
		{name: "cycle behind a free annotation", n: 3, deps: map[int]int{1: 2, 2: 1}, wantSweeps: 2, wantApplied: 1},
		{name: "self dependency", n: 1, deps: map[int]int{0: 0}, wantSweeps: 1, wantApplied: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := make([]*domain.Annotation, tt.n)
			index := make(map[*domain.Annotation]int)
			for i := range annotations {
				annotations[i] = measure(string(rune('A'+i)), "QuantityOrdered")
				index[annotations[i]] = i
			}
			applied := make(map[int]bool)
			calls := make(map[int]int)
			applicator := ApplicatorFunc(func(_ context.Context, a *domain.Annotation, _ *domain.Domain, _ domain.SharedDimensionRepository) (bool, error) {
				i := index[a]
				calls[i]++
				if dep, ok := tt.deps[i]; ok && !applied[dep] {
					return false, nil
				}
				applied[i] = true
				return true, nil
			})
			svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

			res, err := svc.CreateModel(context.Background(), CreateModelRequest{
				ModelName:   "Loop",
				Source:      orderfactSource(),
				Annotations: domain.NewAnnotationGroup(annotations...),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSweeps, res.Sweeps)
			assert.LessOrEqual(t, res.Sweeps, tt.n)
			assert.Len(t, res.Applied, tt.wantApplied)
			assert.Len(t, res.Applied, len(applied))
			assert.Equal(t, tt.n, len(res.Applied)+len(res.Unapplied))
			for _, a := range annotations {
				ok := rec.Count("Successfully applied annotation: " + a.Summary())
				unable := rec.Count("Unable to apply annotation: " + a.Summary())
				assert.Equal(t, 1, ok+unable, "annotation %s must end in exactly one state", a.Summary())
			}
			for i, c := range calls {
				assert.LessOrEqual(t, c, res.Sweeps, "annotation %d applied more often than there were sweeps", i)
			}
		})
	}
}

func TestConverge_NullAnnotationsAreSkipped(t *testing.T) {
	a1 := measure("A1", "QuantityOrdered")
	applicator := newScriptedApplicator(map[string][]bool{a1.Summary(): {true}})
	svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

	res, err := svc.CreateModel(context.Background(), CreateModelRequest{
		ModelName:   "FromScratch",
		Source:      orderfactSource(),
		Annotations: domain.NewAnnotationGroup(nil, a1, &domain.Annotation{}),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Count("Ignoring a null annotation"))
	for _, r := range rec.Records() {
		if r.Message == "Ignoring a null annotation" {
			assert.Equal(t, slog.LevelDebug, r.Level)
		}
	}
	assert.Len(t, applicator.calls, 1)
	assert.Len(t, res.Applied, 1)
	assert.Empty(t, res.Unapplied)
}

func TestConverge_ProgressLoggedAtInfoOnly(t *testing.T) {
	a1 := measure("A1", "QuantityOrdered")
	a2 := measure("A2", "TotalPrice")
	applicator := newScriptedApplicator(map[string][]bool{a1.Summary(): {true}, a2.Summary(): {false}})

	logger, rec := testutil.NewRecordingLogger(slog.LevelWarn)
	svc := NewService(ServiceDeps{Applicator: applicator, Logger: logger})

	_, err := svc.CreateModel(context.Background(), CreateModelRequest{
		ModelName:   "Quiet",
		Source:      orderfactSource(),
		Annotations: domain.NewAnnotationGroup(a1, a2),
	})
	require.NoError(t, err)
	assert.Empty(t, rec.Records())
}

func TestConverge_Errors(t *testing.T) {
	roleErr := &domain.RoleNotConfiguredError{Role: "planet"}
	tests := []struct {
		name       string
		annotation *domain.Annotation
		applyErr   error
		wantErr    bool
		wantUnable int
	}{
		{
			name:       "malformed annotation aborts",
			annotation: &domain.Annotation{Kind: domain.KindCreateMeasure, Attribute: &domain.CreateAttribute{Name: "x"}},
			wantErr:    true,
		},
		{
			name:       "unknown kind aborts",
			annotation: &domain.Annotation{Kind: "DROP_TABLE", Measure: &domain.CreateMeasure{Name: "m", Field: "f"}},
			wantErr:    true,
		},
		{
			name:       "applicator validation error aborts",
			annotation: measure("Bad", "Status"),
			applyErr:   domain.ErrValidation("bad measure"),
			wantErr:    true,
		},
		{
			name:       "unconfigured role leaves the annotation pending",
			annotation: measure("Geo", "Status"),
			applyErr:   roleErr,
			wantUnable: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicator := ApplicatorFunc(func(context.Context, *domain.Annotation, *domain.Domain, domain.SharedDimensionRepository) (bool, error) {
				return false, tt.applyErr
			})
			svc, rec := recordingService(t, ServiceDeps{Applicator: applicator})

			res, err := svc.CreateModel(context.Background(), CreateModelRequest{
				ModelName:   "Errors",
				Source:      orderfactSource(),
				Annotations: domain.NewAnnotationGroup(tt.annotation),
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, res)
				var ve *domain.ValidationError
				assert.True(t, errors.As(err, &ve), "want ValidationError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUnable, rec.Count("Unable to apply annotation: "+tt.annotation.Summary()))
		})
	}
}

func progressMessages(rec *testutil.RecordingHandler) []string {
	var out []string
	for _, m := range rec.Messages(slog.LevelInfo) {
		if strings.HasPrefix(m, msgApplied) || strings.HasPrefix(m, msgUnable) {
			out = append(out, m)
		}
	}
	return out
}
