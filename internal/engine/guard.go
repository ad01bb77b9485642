package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/duckdb/duckdb-go/v2"

	"exodash/internal/domain"
)

// classifyReadOnly asks DuckDB's parser to classify sqlText on conn and
// accepts exactly one SELECT statement. Nothing is executed.
func classifyReadOnly(conn *sql.Conn, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return domain.ErrValidation("sql query is required")
	}
	var stmtType duckdb.StmtType
	err := conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		// Prepare without a context refuses multi-statement text instead of
		// running all but the last statement.
		ds, err := dc.Prepare(sqlText)
		if err != nil {
			return rejectPrepare(err)
		}
		defer ds.Close() //nolint:errcheck

		stmt, ok := ds.(*duckdb.Stmt)
		if !ok {
			return fmt.Errorf("unexpected driver statement %T", ds)
		}
		stmtType, err = stmt.StatementType()
		return err
	})
	if err != nil {
		return err
	}
	if stmtType != duckdb.STATEMENT_TYPE_SELECT {
		return domain.ErrValidation("only read-only SELECT statements are allowed")
	}
	return nil
}

func rejectPrepare(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "multi-statement"):
		return domain.ErrValidation("only one statement may be executed at a time")
	case strings.Contains(msg, "empty query"):
		return domain.ErrValidation("sql query is required")
	default:
		return domain.ErrValidation("query failed: %v", err)
	}
}
