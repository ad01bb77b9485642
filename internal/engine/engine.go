// Package engine exposes the current catalog snapshot as a DuckDB table for
// ad-hoc read-only SQL.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver

	"exodash/internal/domain"
	"exodash/internal/rv"
)

// TableName is the table holding the loaded snapshot.
const TableName = "planets"

// QueryResult holds the structured output of a SQL query.
type QueryResult struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// SnapshotEngine wraps an in-memory DuckDB database holding one snapshot.
type SnapshotEngine struct {
	db       *sql.DB
	mu       sync.RWMutex
	loadedID string
	logger   *slog.Logger
}

// Open creates an in-memory DuckDB database with external file and network
// access disabled and the configuration locked.
func Open(ctx context.Context, logger *slog.Logger) (*SnapshotEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// One connection serializes access to the in-memory database.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"SET enable_external_access = false",
		"SET lock_configuration = true",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure duckdb (%s): %w", stmt, err)
		}
	}
	e := &SnapshotEngine{db: db, logger: logger}
	if err := e.createTable(ctx, nil); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the database.
func (e *SnapshotEngine) Close() error {
	return e.db.Close()
}

// LoadedID returns the ID of the loaded snapshot, or "" when none is loaded.
func (e *SnapshotEngine) LoadedID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadedID
}

// Load replaces the planets table with snap. Loading the snapshot that is
// already loaded is a no-op.
func (e *SnapshotEngine) Load(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domain.ErrValidation("snapshot is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(ctx, snap)
}

func (e *SnapshotEngine) loadLocked(ctx context.Context, snap *domain.Snapshot) error {
	if snap.ID != "" && snap.ID == e.loadedID {
		return nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := e.createTable(ctx, tx); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO planets VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range snap.Records {
		var k sql.NullFloat64
		if v, err := rv.Amplitude(r.MassEarth, r.StarMassSolar, r.PeriodDays, r.Eccentricity); err == nil {
			k = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.Name, r.HostName, r.MassEarth, r.PeriodDays,
			r.SemiMajorAxisAU, r.Eccentricity, r.StarMassSolar, k); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	e.loadedID = snap.ID
	e.logger.Debug("snapshot loaded into duckdb", "snapshot", snap.ID, "rows", len(snap.Records))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (e *SnapshotEngine) createTable(ctx context.Context, x execer) error {
	if x == nil {
		x = e.db
	}
	_, err := x.ExecContext(ctx, `CREATE OR REPLACE TABLE planets (
		pl_name VARCHAR,
		hostname VARCHAR,
		pl_bmasse DOUBLE,
		pl_orbper DOUBLE,
		pl_orbsmax DOUBLE,
		pl_orbeccen DOUBLE,
		st_mass DOUBLE,
		rv_amplitude_ms DOUBLE
	)`)
	if err != nil {
		return fmt.Errorf("create planets table: %w", err)
	}
	return nil
}

// Query runs one read-only statement against the loaded snapshot. At most
// maxRows rows are returned when maxRows > 0.
func (e *SnapshotEngine) Query(ctx context.Context, sqlText string, maxRows int) (*QueryResult, error) {
	sqlText = strings.TrimSpace(sqlText)

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queryLocked(ctx, sqlText, maxRows)
}

// QuerySnapshot loads snap if needed and queries it without letting another
// load interleave.
func (e *SnapshotEngine) QuerySnapshot(ctx context.Context, snap *domain.Snapshot, sqlText string, maxRows int) (*QueryResult, error) {
	if snap == nil {
		return nil, domain.ErrValidation("snapshot is required")
	}
	sqlText = strings.TrimSpace(sqlText)
	if sqlText == "" {
		return nil, domain.ErrValidation("sql query is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.loadLocked(ctx, snap); err != nil {
		return nil, err
	}
	return e.queryLocked(ctx, sqlText, maxRows)
}

// queryLocked runs sqlText inside a transaction that is always rolled back,
// after DuckDB classified it as a single SELECT.
func (e *SnapshotEngine) queryLocked(ctx context.Context, sqlText string, maxRows int) (*QueryResult, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire duckdb connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck

	if err := classifyReadOnly(conn, sqlText); err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin query: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, domain.ErrValidation("query failed: %v", err)
	}
	defer rows.Close() //nolint:errcheck

	return scanRows(rows, maxRows)
}

func scanRows(rows *sql.Rows, maxRows int) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := [][]interface{}{}
	for rows.Next() {
		if maxRows > 0 && len(resultRows) >= maxRows {
			break
		}
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]interface{}, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
