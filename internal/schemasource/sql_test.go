package schemasource

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"refinery-modeler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderfactDDL = `CREATE TABLE orderfact (
	QuantityOrdered INTEGER,
	TotalPrice DECIMAL(10,2),
	ProductCode VARCHAR(32),
	Status TEXT,
	OrderDate DATE
)`

func openTestDB(t *testing.T, dialect Dialect) *sql.DB {
	t.Helper()
	dsn := ""
	if dialect == DialectSQLite {
		dsn = filepath.Join(t.TempDir(), "source.db")
	}
	db, err := Open(dialect, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(orderfactDDL)
	require.NoError(t, err)
	return db
}

func TestSQLSource_FetchSchema(t *testing.T) {
	want := []domain.SchemaField{
		{LogicalName: "QuantityOrdered", PhysicalName: "QuantityOrdered", Type: domain.DataTypeInteger},
		{LogicalName: "TotalPrice", PhysicalName: "TotalPrice", Type: domain.DataTypeNumber},
		{LogicalName: "ProductCode", PhysicalName: "ProductCode", Type: domain.DataTypeString},
		{LogicalName: "Status", PhysicalName: "Status", Type: domain.DataTypeString},
		{LogicalName: "OrderDate", PhysicalName: "OrderDate", Type: domain.DataTypeDate},
	}

	for _, dialect := range []Dialect{DialectSQLite, DialectDuckDB} {
		t.Run(string(dialect), func(t *testing.T) {
			db := openTestDB(t, dialect)
			ctx := context.Background()

			schema, err := NewSQLSource(db, dialect, "", "orderfact").FetchSchema(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, schema.Fields())

			schema, err = NewSQLSource(db, dialect, "main", "orderfact").FetchSchema(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, schema.Fields())

			missing, err := NewSQLSource(db, dialect, "", "nosuchtable").FetchSchema(ctx)
			require.NoError(t, err)
			assert.True(t, missing.IsEmpty())
		})
	}
}

func TestSQLSource_LogicalNames(t *testing.T) {
	db := openTestDB(t, DialectSQLite)
	src := NewSQLSource(db, DialectSQLite, "", "orderfact", WithLogicalNames(map[string]string{
		"quantityordered": "Quantity Ordered",
		"TotalPrice":      "Total Price",
	}))

	schema, err := src.FetchSchema(context.Background())
	require.NoError(t, err)

	f, ok := schema.Column("QuantityOrdered")
	require.True(t, ok)
	assert.Equal(t, "Quantity Ordered", f.LogicalName)
	f, ok = schema.Logical("Total Price")
	require.True(t, ok)
	assert.Equal(t, "TotalPrice", f.PhysicalName)
	f, _ = schema.Column("Status")
	assert.Equal(t, "Status", f.LogicalName)
}

func TestSQLSource_UnsupportedDialect(t *testing.T) {
	_, err := NewSQLSource(nil, Dialect("oracle"), "", "t").FetchSchema(context.Background())
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestMapSQLType(t *testing.T) {
	tests := []struct {
		in   string
		want domain.DataType
	}{
		{"INTEGER", domain.DataTypeInteger},
		{"bigint", domain.DataTypeInteger},
		{"UBIGINT", domain.DataTypeInteger},
		{"MEDIUMINT", domain.DataTypeInteger},
		{"UNSIGNED BIG INT", domain.DataTypeInteger},
		{"DECIMAL(18,3)", domain.DataTypeNumber},
		{"DOUBLE PRECISION", domain.DataTypeNumber},
		{"float", domain.DataTypeNumber},
		{"VARCHAR", domain.DataTypeString},
		{"NVARCHAR(255)", domain.DataTypeString},
		{"TEXT", domain.DataTypeString},
		{"UUID", domain.DataTypeString},
		{"", domain.DataTypeString},
		{"DATE", domain.DataTypeDate},
		{"TIMESTAMP WITH TIME ZONE", domain.DataTypeDate},
		{"BOOLEAN", domain.DataTypeBoolean},
		{"BLOB", domain.DataTypeBinary},
		{"INTERVAL", domain.DataTypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapSQLType(tt.in))
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "sqlite3", want: DialectSQLite},
		{in: "SQLite", want: DialectSQLite},
		{in: " duckdb ", want: DialectDuckDB},
		{in: "postgres", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
