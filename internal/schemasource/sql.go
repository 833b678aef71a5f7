package schemasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	_ "github.com/mattn/go-sqlite3"    // register sqlite3 driver

	"refinery-modeler/internal/domain"
)

// Dialect is a supported database driver.
type Dialect string

// Supported dialects. The values are database/sql driver names.
const (
	DialectSQLite Dialect = "sqlite3"
	DialectDuckDB Dialect = "duckdb"
)

// ParseDialect validates a driver name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectSQLite, DialectDuckDB:
		return d, nil
	case "sqlite":
		return DialectSQLite, nil
	}
	return "", domain.ErrValidation("unsupported database driver %q (must be 'sqlite3' or 'duckdb')", s)
}

// Open opens a database for introspection.
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	return db, nil
}

// SQLSource reads the schema of a physical table.
type SQLSource struct {
	db      *sql.DB
	dialect Dialect
	schema  string
	table   string
	logical map[string]string
}

// SQLOption configures an SQLSource.
type SQLOption func(*SQLSource)

// WithLogicalNames overrides the logical name of columns, keyed by column
// name (case-insensitive).
func WithLogicalNames(names map[string]string) SQLOption {
	return func(s *SQLSource) {
		for col, name := range names {
			s.logical[strings.ToLower(col)] = name
		}
	}
}

// NewSQLSource creates an SQLSource for schema.table. An empty schema means
// the database default ("main" for both dialects).
func NewSQLSource(db *sql.DB, dialect Dialect, schema, table string, opts ...SQLOption) *SQLSource {
	s := &SQLSource{db: db, dialect: dialect, schema: schema, table: table, logical: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchSchema implements domain.SchemaSource. A table that does not exist
// yields an empty schema.
func (s *SQLSource) FetchSchema(ctx context.Context) (*domain.TableSchema, error) {
	query, args, err := s.columnsQuery()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", s.qualifiedName(), err)
	}
	defer func() { _ = rows.Close() }()

	var fields []domain.SchemaField
	for rows.Next() {
		var name, sqlType string
		if err := rows.Scan(&name, &sqlType); err != nil {
			return nil, fmt.Errorf("scan column info: %w", err)
		}
		logical := s.logical[strings.ToLower(name)]
		fields = append(fields, domain.SchemaField{LogicalName: logical, PhysicalName: name, Type: MapSQLType(sqlType)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return domain.NewTableSchema(fields...)
}

func (s *SQLSource) columnsQuery() (string, []any, error) {
	switch s.dialect {
	case DialectSQLite:
		if s.schema == "" {
			return "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", []any{s.table}, nil
		}
		return "SELECT name, type FROM pragma_table_info(?, ?) ORDER BY cid", []any{s.table, s.schema}, nil
	case DialectDuckDB:
		schema := s.schema
		if schema == "" {
			schema = "main"
		}
		return "SELECT column_name, data_type FROM information_schema.columns " +
			"WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position", []any{schema, s.table}, nil
	}
	return "", nil, domain.ErrValidation("unsupported database driver %q", s.dialect)
}

func (s *SQLSource) qualifiedName() string {
	if s.schema == "" {
		return s.table
	}
	return s.schema + "." + s.table
}

var sqlTypes = map[string]domain.DataType{
	"BOOLEAN": domain.DataTypeBoolean, "BOOL": domain.DataTypeBoolean, "LOGICAL": domain.DataTypeBoolean,

	"TINYINT": domain.DataTypeInteger, "SMALLINT": domain.DataTypeInteger, "INTEGER": domain.DataTypeInteger,
	"INT": domain.DataTypeInteger, "BIGINT": domain.DataTypeInteger, "HUGEINT": domain.DataTypeInteger,
	"UTINYINT": domain.DataTypeInteger, "USMALLINT": domain.DataTypeInteger, "UINTEGER": domain.DataTypeInteger,
	"UBIGINT": domain.DataTypeInteger, "UHUGEINT": domain.DataTypeInteger,
	"INT1": domain.DataTypeInteger, "INT2": domain.DataTypeInteger, "INT4": domain.DataTypeInteger, "INT8": domain.DataTypeInteger,

	"DECIMAL": domain.DataTypeNumber, "NUMERIC": domain.DataTypeNumber, "DOUBLE": domain.DataTypeNumber,
	"FLOAT": domain.DataTypeNumber, "REAL": domain.DataTypeNumber, "FLOAT4": domain.DataTypeNumber, "FLOAT8": domain.DataTypeNumber,

	"DATE": domain.DataTypeDate, "TIME": domain.DataTypeDate, "DATETIME": domain.DataTypeDate,
	"TIMESTAMP": domain.DataTypeDate, "TIMESTAMPTZ": domain.DataTypeDate,
	"TIMESTAMP_S": domain.DataTypeDate, "TIMESTAMP_MS": domain.DataTypeDate, "TIMESTAMP_NS": domain.DataTypeDate,

	"BLOB": domain.DataTypeBinary, "BYTEA": domain.DataTypeBinary, "BINARY": domain.DataTypeBinary,
	"VARBINARY": domain.DataTypeBinary,
}

// MapSQLType maps a declared SQL column type onto a data type. Names not
// known outright fall back to SQLite's type affinity rules; anything else is
// a String.
func MapSQLType(sqlType string) domain.DataType {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	base := t
	if i := strings.IndexByte(t, ' '); i >= 0 {
		base = t[:i]
	}
	if dt, ok := sqlTypes[base]; ok {
		return dt
	}
	switch {
	case strings.Contains(t, "INT") && !strings.Contains(t, "INTERVAL") && !strings.Contains(t, "POINT"):
		return domain.DataTypeInteger
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return domain.DataTypeString
	case strings.Contains(t, "BLOB"):
		return domain.DataTypeBinary
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return domain.DataTypeNumber
	}
	return domain.DataTypeString
}

var _ domain.SchemaSource = (*SQLSource)(nil)
