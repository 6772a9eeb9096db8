package query

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opencode-ai/opencode/internal/dataset"
)

const (
	// DefaultLimit caps rows returned when the caller doesn't specify one.
	DefaultLimit = 100
	// MaxLimit is the hard ceiling regardless of what the caller requests.
	MaxLimit = 1000
	// ToolResultLimit is the row cap applied to sql_query tool calls.
	ToolResultLimit = 50
	// PlotSourceLimit is the row cap applied when a query's result feeds a
	// create_plot call.
	PlotSourceLimit = 100

	defaultQueryTimeout = 10 * time.Second
)

// Engine executes validated, read-only queries against one session's
// dataset, loaded once into a private in-memory SQLite table named "data".
type Engine struct {
	db *sql.DB
}

// New loads t into a fresh in-memory SQLite database as a single table
// literally named "data" (the only table name Validate permits).
func New(t *dataset.Table) (*Engine, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", randomDBName()))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // single shared in-memory connection; avoids losing the schema between queries

	if err := createTable(db, t); err != nil {
		db.Close()
		return nil, err
	}
	if err := insertRows(db, t); err != nil {
		db.Close()
		return nil, err
	}

	return &Engine{db: db}, nil
}

// Close releases the in-memory database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Result is the shape returned to the sql_query tool.
type Result struct {
	Columns   []string
	Rows      []map[string]any
	Truncated bool
}

// Execute validates and runs sql, bounded by timeout and by the row limit
// (a limit <= 0 means DefaultLimit; a limit above MaxLimit is lowered to
// MaxLimit). If the underlying result has more rows than
// limit, Result.Truncated is set and only the first limit rows are returned;
// truncation is not an error.
func (e *Engine) Execute(ctx context.Context, query string, limit int, timeout time.Duration) (*Result, error) {
	if err := Validate(query); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Fetch one extra row to detect truncation without a second COUNT(*) query.
	rows, err := e.db.QueryContext(ctx, wrapWithLimit(query, limit+1))
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: cols}
	values := make([]any, len(cols))
	scanDest := make([]any, len(cols))
	for i := range values {
		scanDest[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= limit {
			result.Truncated = true
			break
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalizeCell(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// wrapWithLimit appends a LIMIT clause by wrapping the validated statement
// in a subquery, so the row cap applies regardless of whether the caller
// already wrote one (when both are present, the smaller of the two limits
// takes effect).
func wrapWithLimit(query string, limit int) string {
	return fmt.Sprintf("SELECT * FROM (%s) AS bounded LIMIT %d", strings.TrimRight(strings.TrimSpace(query), ";"), limit)
}

func randomDBName() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "opencode_query_" + hex.EncodeToString(b)
}

func createTable(db *sql.DB, t *dataset.Table) error {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%q", c))
	}
	stmt := fmt.Sprintf("CREATE TABLE data (%s)", strings.Join(cols, ", "))
	_, err := db.Exec(stmt)
	return err
}

func insertRows(db *sql.DB, t *dataset.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(t.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%q", c)
	}
	stmt, err := db.Prepare(fmt.Sprintf("INSERT INTO data (%s) VALUES (%s)", strings.Join(cols, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			args[i] = toDriverValue(row[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return nil
}

func toDriverValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return x
	}
}

// normalizeCell converts a driver value into the five-kind union the spec
// requires: integer, float (NaN -> null), string, boolean, ISO-8601
// timestamp string, or null.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case int64:
		return x
	case []byte:
		return string(x)
	case string:
		return x
	case bool:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
