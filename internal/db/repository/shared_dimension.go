package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"refinery-modeler/internal/db/mapper"
	"refinery-modeler/internal/domain"
)

var _ domain.SharedDimensionRepository = (*SharedDimensionRepo)(nil)

// SharedDimensionRepo implements domain.SharedDimensionRepository on the
// SQLite metastore. Groups are stored as JSON, one row per name. Writes go
// through writeDB and lookups through readDB; both may be the same pool.
type SharedDimensionRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewSharedDimensionRepo creates a new SharedDimensionRepo.
func NewSharedDimensionRepo(writeDB, readDB *sql.DB) *SharedDimensionRepo {
	if readDB == nil {
		readDB = writeDB
	}
	return &SharedDimensionRepo{writeDB: writeDB, readDB: readDB}
}

// Save inserts or replaces the group stored under its name.
func (r *SharedDimensionRepo) Save(ctx context.Context, group *domain.AnnotationGroup) error {
	if err := validateGroup(group); err != nil {
		return err
	}
	row, err := mapper.SharedDimensionToDB(group)
	if err != nil {
		return err
	}
	_, err = r.writeDB.ExecContext(ctx, `
		INSERT INTO shared_dimensions (name, annotations) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET annotations = excluded.annotations, updated_at = datetime('now')`,
		row.Name, row.Annotations)
	if err != nil {
		return fmt.Errorf("save shared dimension %q: %w", group.Name, mapDBError(err))
	}
	return nil
}

// Get returns the group stored under name.
func (r *SharedDimensionRepo) Get(ctx context.Context, name string) (*domain.AnnotationGroup, error) {
	var row mapper.SharedDimensionRow
	err := r.readDB.QueryRowContext(ctx,
		`SELECT name, annotations, created_at, updated_at FROM shared_dimensions WHERE name = ?`, name).
		Scan(&row.Name, &row.Annotations, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if err = mapDBError(err); isNotFound(err) {
			return nil, domain.ErrNotFound("shared dimension %q not found", name)
		}
		return nil, err
	}
	return mapper.SharedDimensionFromDB(row)
}

// List returns the stored group names in ascending order.
func (r *SharedDimensionRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.readDB.QueryContext(ctx, `SELECT name FROM shared_dimensions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the group stored under name.
func (r *SharedDimensionRepo) Delete(ctx context.Context, name string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM shared_dimensions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("shared dimension %q not found", name)
	}
	return nil
}

// UpdatedAt returns when the group stored under name was last saved.
func (r *SharedDimensionRepo) UpdatedAt(ctx context.Context, name string) (time.Time, error) {
	var ts string
	err := r.readDB.QueryRowContext(ctx, `SELECT updated_at FROM shared_dimensions WHERE name = ?`, name).Scan(&ts)
	if err != nil {
		if err = mapDBError(err); isNotFound(err) {
			return time.Time{}, domain.ErrNotFound("shared dimension %q not found", name)
		}
		return time.Time{}, err
	}
	return mapper.ParseTime(ts), nil
}
