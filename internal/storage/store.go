// Package storage persists analysis runs to a local SQLite database so past
// results can be listed and exported without re-running detection.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"debtguardian/internal/coordinator"
	"debtguardian/internal/detector"
	"debtguardian/internal/errors"
	"debtguardian/internal/findings"
	"debtguardian/internal/logging"
	"debtguardian/internal/slice"
)

// Store represents the run database.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the SQLite database at the given path.
func Open(dbPath string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{conn: conn, logger: logger, dbPath: dbPath}

	if !dbExists {
		logger.Info("Creating new run database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := s.initializeSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		config      TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path        TEXT NOT NULL,
		language    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT '',
		slices      INTEGER NOT NULL DEFAULT 0,
		skip_reason TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, path)
	);

	CREATE TABLE IF NOT EXISTS run_findings (
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		slice_id       TEXT NOT NULL,
		detector       TEXT NOT NULL DEFAULT '',
		smell_type     TEXT NOT NULL DEFAULT '',
		confidence     REAL NOT NULL DEFAULT 0,
		status         TEXT NOT NULL,
		failure_code   TEXT NOT NULL DEFAULT '',
		path           TEXT NOT NULL DEFAULT '',
		start_line     INTEGER NOT NULL DEFAULT 0,
		end_line       INTEGER NOT NULL DEFAULT 0,
		kind           TEXT NOT NULL DEFAULT '',
		qualified_name TEXT NOT NULL DEFAULT '',
		partial        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, slice_id, smell_type)
	);

	CREATE INDEX IF NOT EXISTS idx_run_findings_status
		ON run_findings(run_id, status);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun persists a completed run with its per-file reports and all
// terminal findings.
func (s *Store) SaveRun(run *coordinator.Run) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cfgJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config snapshot: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, config) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), string(cfgJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range run.Files {
		_, err = tx.Exec(
			`INSERT INTO run_files (run_id, path, language, status, slices, skip_reason)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, f.Path, f.Language, string(f.Status), f.Slices, f.SkipReason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file report: %w", err)
		}
	}

	all := append(append([]findings.Finding{}, run.Result.Findings...), run.Result.Coverage.Entries...)
	for _, f := range all {
		_, err = tx.Exec(
			`INSERT INTO run_findings
			 (run_id, slice_id, detector, smell_type, confidence, status, failure_code,
			  path, start_line, end_line, kind, qualified_name, partial)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, f.SliceID, f.Detector, string(f.SmellType), f.Confidence,
			string(f.Status), string(f.FailureCode),
			f.Path, f.StartLine, f.EndLine, string(f.Kind), f.QualifiedName, boolToInt(f.Partial),
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("Run persisted", map[string]interface{}{
		"runId":    run.ID,
		"findings": len(all),
	})
	return nil
}

// LoadRun reconstructs a run record. The result set is rebuilt through the
// aggregator, so ordering and summary statistics match a fresh run exactly.
func (s *Store) LoadRun(id string) (*coordinator.Run, error) {
	run := &coordinator.Run{ID: id}

	var started, finished int64
	var cfgJSON string
	err := s.conn.QueryRow(
		`SELECT started_at, finished_at, config FROM runs WHERE id = ?`, id,
	).Scan(&started, &finished, &cfgJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	run.FinishedAt = time.UnixMilli(finished).UTC()
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config snapshot: %w", err)
	}

	rows, err := s.conn.Query(
		`SELECT path, language, status, slices, skip_reason
		 FROM run_files WHERE run_id = ? ORDER BY path`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load file reports: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f coordinator.FileReport
		var status string
		if err := rows.Scan(&f.Path, &f.Language, &status, &f.Slices, &f.SkipReason); err != nil {
			return nil, err
		}
		f.Status = slice.ParseStatus(status)
		run.Files = append(run.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	all, err := s.loadFindings(id)
	if err != nil {
		return nil, err
	}
	run.Result = findings.Aggregate(all)

	return run, nil
}

func (s *Store) loadFindings(runID string) ([]findings.Finding, error) {
	rows, err := s.conn.Query(
		`SELECT slice_id, detector, smell_type, confidence, status, failure_code,
		        path, start_line, end_line, kind, qualified_name, partial
		 FROM run_findings WHERE run_id = ?`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}
	defer rows.Close()

	var all []findings.Finding
	for rows.Next() {
		var f findings.Finding
		var smell, status, code, kind string
		var partial int
		err := rows.Scan(&f.SliceID, &f.Detector, &smell, &f.Confidence, &status, &code,
			&f.Path, &f.StartLine, &f.EndLine, &kind, &f.QualifiedName, &partial)
		if err != nil {
			return nil, err
		}
		f.SmellType = detector.SmellType(smell)
		f.Status = findings.Status(status)
		f.FailureCode = errors.ErrorCode(code)
		f.Kind = slice.Kind(kind)
		f.Partial = partial != 0
		all = append(all, f)
	}
	return all, rows.Err()
}

// RunInfo is a listing entry for stored runs.
type RunInfo struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Findings   int       `json:"findings"`
}

// ListRuns returns stored runs, most recent first.
func (s *Store) ListRuns(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(
		`SELECT r.id, r.started_at, r.finished_at,
		        (SELECT COUNT(*) FROM run_findings f
		         WHERE f.run_id = r.id AND f.status = 'detected')
		 FROM runs r ORDER BY r.started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var started, finished int64
		if err := rows.Scan(&info.ID, &started, &finished, &info.Findings); err != nil {
			return nil, err
		}
		info.StartedAt = time.UnixMilli(started).UTC()
		info.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// LatestRunID returns the id of the most recent run.
func (s *Store) LatestRunID() (string, error) {
	var id string
	err := s.conn.QueryRow(
		`SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no runs stored")
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
