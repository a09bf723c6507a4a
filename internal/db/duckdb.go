// Package db provides the optional DuckDB analytics sidecar. Loaded
// point features are mirrored into a table so they can be explored with
// ad-hoc SQL; the map works fully without it.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/harmap/harmap/internal/geodata"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		_, initErr = instance.Exec(`
			CREATE TABLE IF NOT EXISTS points (
				generation VARCHAR,
				ip         VARCHAR,
				url        VARCHAR,
				lon        DOUBLE,
				lat        DOUBLE
			)`)
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}

// ImportCollection replaces the points table contents with one loaded
// collection generation.
func ImportCollection(db *sql.DB, coll *geodata.Collection) error {
	if db == nil || coll == nil {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM points"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO points (generation, ip, url, lon, lat) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range coll.Features {
		if _, err := stmt.Exec(coll.Generation, f.IP, f.URL, f.Lon, f.Lat); err != nil {
			return err
		}
	}

	return tx.Commit()
}
