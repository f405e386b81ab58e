package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/patent-scout/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("not found")

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	sources    TEXT NOT NULL DEFAULT '[]',
	stats      TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS opportunities (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	rank       INTEGER NOT NULL,
	industry   TEXT NOT NULL,
	priority   REAL NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS patent_cache (
	source     TEXT NOT NULL,
	query      TEXT NOT NULL,
	patents    TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	PRIMARY KEY (source, query)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_opportunities_run_id ON opportunities(run_id);
CREATE INDEX IF NOT EXISTS idx_opportunities_industry ON opportunities(industry);
CREATE INDEX IF NOT EXISTS idx_patent_cache_expires_at ON patent_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sources []string) (*model.Run, error) {
	id := uuid.New().String()
	now := s.now()
	if sources == nil {
		sources = []string{}
	}

	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal sources")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, sources, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(model.RunStatusRunning), string(sourcesJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusRunning,
		Sources:   sources,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, stats model.RunStats) error {
	return s.finishRun(ctx, runID, model.RunStatusComplete, stats, "")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, stats model.RunStats, reason string) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, stats, reason)
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats, reason string) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stats = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), string(statsJSON), reason, s.now(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, sources, stats, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, sources, stats, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// SaveOpportunities stores opps in the given order as ranks 1..n, replacing
// any opportunities already saved for the run.
func (s *SQLiteStore) SaveOpportunities(ctx context.Context, runID string, opps []model.Opportunity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save opportunities")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM opportunities WHERE run_id = ?`, runID); err != nil {
		return eris.Wrapf(err, "sqlite: clear opportunities for run %s", runID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO opportunities (id, run_id, rank, industry, priority, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert opportunity")
	}
	defer stmt.Close() //nolint:errcheck

	now := s.now()
	for i, o := range opps {
		data, err := json.Marshal(o)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal opportunity")
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, i+1, o.Bottleneck.Industry, o.Priority, string(data), now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert opportunity for run %s", runID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit opportunities")
}

func (s *SQLiteStore) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]StoredOpportunity, error) {
	query := `SELECT run_id, rank, data, created_at FROM opportunities WHERE priority >= ?`
	args := []any{filter.MinPriority}

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Industry != "" {
		query += ` AND industry = ?`
		args = append(args, filter.Industry)
	}
	query += ` ORDER BY created_at DESC, rank ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list opportunities")
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredOpportunity
	for rows.Next() {
		var so StoredOpportunity
		var data string
		if err := rows.Scan(&so.RunID, &so.Rank, &data, &so.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan opportunity")
		}
		if err := json.Unmarshal([]byte(data), &so.Opportunity); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal opportunity")
		}
		out = append(out, so)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list opportunities iterate")
}

// GetCachedPatents returns the unexpired result of a previous search.
func (s *SQLiteStore) GetCachedPatents(ctx context.Context, source, query string) ([]model.Patent, bool, error) {
	var patentsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT patents FROM patent_cache WHERE source = ? AND query = ? AND expires_at > ?`,
		source, query, s.now(),
	).Scan(&patentsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get cached patents")
	}

	var patents []model.Patent
	if err := json.Unmarshal([]byte(patentsJSON), &patents); err != nil {
		return nil, false, eris.Wrap(err, "sqlite: unmarshal cached patents")
	}
	return patents, true, nil
}

// SetCachedPatents stores a search result, replacing any earlier entry for
// the same source and query.
func (s *SQLiteStore) SetCachedPatents(ctx context.Context, source, query string, patents []model.Patent, ttl time.Duration) error {
	if patents == nil {
		patents = []model.Patent{}
	}
	patentsJSON, err := json.Marshal(patents)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal patents")
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patent_cache (source, query, patents, fetched_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source, query) DO UPDATE SET patents = excluded.patents,
		   fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		source, query, string(patentsJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached patents")
}

func (s *SQLiteStore) DeleteExpiredPatents(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM patent_cache WHERE expires_at <= ?`, s.now(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired patents")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var sourcesJSON string
	var statsJSON sql.NullString
	err := row.Scan(&r.ID, &r.Status, &sourcesJSON, &statsJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "run")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &r.Sources); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal sources")
	}
	if statsJSON.Valid {
		if err := json.Unmarshal([]byte(statsJSON.String), &r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	return &r, nil
}
