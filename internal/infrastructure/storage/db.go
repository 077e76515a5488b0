package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of the backing database.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Open connects to the configured database. In-memory SQLite is pinned to a single
// connection so every query sees the same database.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	dialect := Dialect(driver)
	switch dialect {
	case Postgres, SQLite:
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	return db, dialect, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS clusters (
		cluster_no  TEXT NOT NULL,
		treatmentid INTEGER NOT NULL,
		year        INTEGER NOT NULL,
		landing_lat DOUBLE PRECISION NOT NULL,
		landing_lng DOUBLE PRECISION NOT NULL,
		center_lat  DOUBLE PRECISION NOT NULL,
		center_lng  DOUBLE PRECISION NOT NULL,
		area        DOUBLE PRECISION NOT NULL,
		land_use    TEXT,
		forest_type TEXT,
		haz_class   INTEGER NOT NULL DEFAULT 0,
		site_class  INTEGER NOT NULL DEFAULT 0,
		county_name TEXT,
		PRIMARY KEY (cluster_no, treatmentid, year)
	)`,
	`CREATE INDEX IF NOT EXISTS clusters_scope_center
		ON clusters (treatmentid, year, center_lat, center_lng)`,
	`CREATE TABLE IF NOT EXISTS sourcing_selections (
		plan_id    TEXT NOT NULL,
		cluster_no TEXT NOT NULL,
		year       INTEGER NOT NULL,
		status     TEXT NOT NULL,
		reason     TEXT,
		feedstock  DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (plan_id, cluster_no)
	)`,
}

// EnsureSchema creates the tables used by the repository and the selection store.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
