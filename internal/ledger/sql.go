package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const table = "step_timings"

const schema = `CREATE TABLE IF NOT EXISTS step_timings (
	run_id      TEXT NOT NULL,
	label       TEXT NOT NULL,
	day         TEXT,
	lang        TEXT,
	started_at  TIMESTAMP NOT NULL,
	duration_ms BIGINT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	tokens      INTEGER NOT NULL DEFAULT 0
)`

var columns = []string{"run_id", "label", "day", "lang", "started_at", "duration_ms", "status", "error", "tokens"}

// SQLRecorder writes entries to SQLite or Postgres.
type SQLRecorder struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// ParseDSN maps sqlite://path and postgres:// URLs to a driver name and
// data source.
func ParseDSN(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported ledger DSN %q (want sqlite:// or postgres://)", dsn)
	}
}

// OpenSQL connects and creates the table if needed.
func OpenSQL(ctx context.Context, dsn string) (*SQLRecorder, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == "pgx" {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLRecorder{db: db, sb: sb}, nil
}

// Record implements Recorder.
func (r *SQLRecorder) Record(ctx context.Context, e Entry) error {
	query, args, err := r.sb.Insert(table).
		Columns(columns...).
		Values(e.RunID.String(), e.Label, e.Day, e.Lang, e.StartedAt.UTC(), e.DurationMs, e.Status, e.Error, e.Tokens).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert step timing: %w", err)
	}
	return nil
}

// List returns the entries for day in start order; an empty day lists all.
func (r *SQLRecorder) List(ctx context.Context, day string) ([]Entry, error) {
	q := r.sb.Select(columns...).From(table).OrderBy("started_at", "label")
	if day != "" {
		q = q.Where(sq.Eq{"day": day})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list step timings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			runID   string
			dayCol  sql.NullString
			langCol sql.NullString
			errCol  sql.NullString
			started time.Time
		)
		if err := rows.Scan(&runID, &e.Label, &dayCol, &langCol, &started, &e.DurationMs, &e.Status, &errCol, &e.Tokens); err != nil {
			return nil, err
		}
		e.RunID, _ = uuid.Parse(runID)
		e.Day, e.Lang, e.Error = dayCol.String, langCol.String, errCol.String
		e.StartedAt = started.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close implements Recorder.
func (r *SQLRecorder) Close() error {
	return r.db.Close()
}
