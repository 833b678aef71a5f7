package db

import (
	"path/filepath"
	"testing"
)

// OpenTestMetastore opens a migrated metastore in t.TempDir() and registers
// cleanup.
func OpenTestMetastore(t *testing.T) *Metastore {
	t.Helper()

	m, err := OpenMetastore(filepath.Join(t.TempDir(), "metastore.sqlite"))
	if err != nil {
		t.Fatalf("open test metastore: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}
