// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"log/slog"
	"sync"

	"refinery-modeler/internal/domain"
)

// === Shared Dimension Repository Mock ===

// MockSharedDimensionRepo implements domain.SharedDimensionRepository for testing.
type MockSharedDimensionRepo struct {
	SaveFn   func(ctx context.Context, group *domain.AnnotationGroup) error
	GetFn    func(ctx context.Context, name string) (*domain.AnnotationGroup, error)
	ListFn   func(ctx context.Context) ([]string, error)
	DeleteFn func(ctx context.Context, name string) error
	Saved    []*domain.AnnotationGroup // collected groups for assertions
}

// Save implements the interface method for testing.
func (m *MockSharedDimensionRepo) Save(ctx context.Context, group *domain.AnnotationGroup) error {
	if m.SaveFn != nil {
		if err := m.SaveFn(ctx, group); err != nil {
			return err
		}
	}
	m.Saved = append(m.Saved, group)
	return nil
}

// Get implements the interface method for testing.
func (m *MockSharedDimensionRepo) Get(ctx context.Context, name string) (*domain.AnnotationGroup, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, name)
	}
	panic("unexpected call to MockSharedDimensionRepo.Get")
}

// List implements the interface method for testing.
func (m *MockSharedDimensionRepo) List(ctx context.Context) ([]string, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	panic("unexpected call to MockSharedDimensionRepo.List")
}

// Delete implements the interface method for testing.
func (m *MockSharedDimensionRepo) Delete(ctx context.Context, name string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, name)
	}
	panic("unexpected call to MockSharedDimensionRepo.Delete")
}

var _ domain.SharedDimensionRepository = (*MockSharedDimensionRepo)(nil)

// === Schema Source Mock ===

// MockSchemaSource implements domain.SchemaSource for testing.
type MockSchemaSource struct {
	FetchSchemaFn func(ctx context.Context) (*domain.TableSchema, error)
	Calls         int
}

// FetchSchema implements the interface method for testing.
func (m *MockSchemaSource) FetchSchema(ctx context.Context) (*domain.TableSchema, error) {
	m.Calls++
	if m.FetchSchemaFn != nil {
		return m.FetchSchemaFn(ctx)
	}
	panic("unexpected call to MockSchemaSource.FetchSchema")
}

var _ domain.SchemaSource = (*MockSchemaSource)(nil)

// StaticSchema returns a MockSchemaSource that always yields schema.
func StaticSchema(schema *domain.TableSchema) *MockSchemaSource {
	return &MockSchemaSource{FetchSchemaFn: func(context.Context) (*domain.TableSchema, error) {
		return schema, nil
	}}
}

// === Recording Log Handler ===

// LogRecord is a captured slog record.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// RecordingHandler is a slog.Handler that keeps every record it is handed.
// Records below Level are dropped as a real handler would drop them.
type RecordingHandler struct {
	Level slog.Level

	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
}

// NewRecordingHandler returns a handler enabled from level upwards.
func NewRecordingHandler(level slog.Level) *RecordingHandler {
	return &RecordingHandler{Level: level, mu: &sync.Mutex{}, records: &[]LogRecord{}}
}

// NewRecordingLogger returns a logger backed by a new RecordingHandler.
func NewRecordingLogger(level slog.Level) (*slog.Logger, *RecordingHandler) {
	h := NewRecordingHandler(level)
	return slog.New(h), h
}

// Enabled implements slog.Handler.
func (h *RecordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.Level
}

// Handle implements slog.Handler.
func (h *RecordingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{Level: r.Level, Message: r.Message, Attrs: make(map[string]any)}
	for _, a := range h.attrs {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, rec)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RecordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *RecordingHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of every captured record.
func (h *RecordingHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogRecord(nil), *h.records...)
}

// Messages returns the messages of the records at level, in order.
func (h *RecordingHandler) Messages(level slog.Level) []string {
	var out []string
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

// Count returns how many records carry exactly msg.
func (h *RecordingHandler) Count(msg string) int {
	n := 0
	for _, r := range h.Records() {
		if r.Message == msg {
			n++
		}
	}
	return n
}

var _ slog.Handler = (*RecordingHandler)(nil)
