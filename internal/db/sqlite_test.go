package db

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		mode       Mode
		wantTxLock bool
	}{
		{ModeWrite, true},
		{ModeRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			dsn := buildDSN("/tmp/meta.sqlite", tt.mode)
			assert.True(t, strings.HasPrefix(dsn, "/tmp/meta.sqlite?"))
			assert.Contains(t, dsn, "_journal_mode=WAL")
			assert.Contains(t, dsn, "_busy_timeout=5000")
			assert.Contains(t, dsn, "_synchronous=NORMAL")
			assert.Equal(t, tt.wantTxLock, strings.Contains(dsn, "_txlock=immediate"))
		})
	}
}

func TestOpenSQLite_InvalidMode(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), "invalid", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")
}

func TestOpenSQLite_PoolSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	w, err := OpenSQLite(path, ModeWrite, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, 1, w.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, w.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	r, err := OpenSQLite(path, ModeRead, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	assert.Equal(t, 4, r.Stats().MaxOpenConnections)
}

func TestOpenSQLite_InvalidPath(t *testing.T) {
	_, err := OpenSQLite("/nonexistent/dir/test.db", ModeWrite, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite")
}

func TestOpenMetastore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metastore.sqlite")

	m, err := OpenMetastore(path)
	require.NoError(t, err)

	var n int
	require.NoError(t, m.Read.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'shared_dimensions'").Scan(&n))
	assert.Equal(t, 1, n)

	v, err := SchemaVersion(m.Write)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NoError(t, m.Close())

	// Reopening an up-to-date metastore is a no-op.
	m, err = OpenMetastore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	v, err = SchemaVersion(m.Write)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMetastore_RejectsInvalidJSON(t *testing.T) {
	m := OpenTestMetastore(t)
	_, err := m.Write.Exec("INSERT INTO shared_dimensions (name, annotations) VALUES ('x', '{')")
	require.Error(t, err)
}

func TestMetastore_ConcurrentReadsDuringWrites(t *testing.T) {
	m := OpenTestMetastore(t)

	var wg sync.WaitGroup
	writeErrs := make([]error, 20)
	readErrs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			_, writeErrs[idx] = m.Write.Exec(
				"INSERT INTO shared_dimensions (name, annotations) VALUES (?, '{\"annotations\":[]}')",
				"dim"+strings.Repeat("x", idx))
		}(i)
		go func(idx int) {
			defer wg.Done()
			var n int
			readErrs[idx] = m.Read.QueryRow("SELECT count(*) FROM shared_dimensions").Scan(&n)
		}(i)
	}
	wg.Wait()

	for i, e := range writeErrs {
		assert.NoError(t, e, "writer %d failed", i)
	}
	for i, e := range readErrs {
		assert.NoError(t, e, "reader %d failed", i)
	}

	var n int
	require.NoError(t, m.Read.QueryRow("SELECT count(*) FROM shared_dimensions").Scan(&n))
	assert.Equal(t, 20, n)
}
