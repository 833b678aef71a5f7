// Package db opens the SQLite metastore that holds shared dimensions and
// applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// SQLite DSN parameters for the metastore.
const (
	defaultBusyTimeout = "5000" // 5 seconds
	defaultSynchronous = "NORMAL"
	defaultJournalMode = "WAL"
)

// Mode selects how a pool is sized and locked.
type Mode string

// Pool modes.
const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// OpenSQLite opens a *sql.DB pool for the given SQLite file path.
//
// ModeWrite pins the pool to one connection and takes the write lock at the
// start of each transaction. ModeRead allows maxOpen connections (0 means 4).
// Both set WAL journaling and a 5s busy timeout.
func OpenSQLite(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be \"read\" or \"write\"", mode)
	}

	db, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if mode == ModeWrite {
		maxOpen = 1
	} else if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}

	return db, nil
}

// Metastore is a migrated SQLite file opened as a single-writer pool and a
// reader pool.
type Metastore struct {
	Write *sql.DB
	Read  *sql.DB
}

// OpenMetastore opens (creating if needed) the metastore at path and brings
// its schema up to date.
func OpenMetastore(path string) (*Metastore, error) {
	writeDB, err := OpenSQLite(path, ModeWrite, 0)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(writeDB); err != nil {
		_ = writeDB.Close()
		return nil, err
	}
	readDB, err := OpenSQLite(path, ModeRead, 0)
	if err != nil {
		_ = writeDB.Close()
		return nil, err
	}
	return &Metastore{Write: writeDB, Read: readDB}, nil
}

// Close closes both pools.
func (m *Metastore) Close() error {
	rerr := m.Read.Close()
	if err := m.Write.Close(); err != nil {
		return err
	}
	return rerr
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_synchronous", defaultSynchronous)

	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}

	return path + "?" + params.Encode()
}
