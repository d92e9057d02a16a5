package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS session_versions (
	version_id          TEXT PRIMARY KEY,
	parent_id           TEXT,
	session_id          TEXT NOT NULL,
	vector_json         TEXT NOT NULL,
	classification_json TEXT,
	created_at          TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES session_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_session_versions_session
	ON session_versions(session_id, created_at);

CREATE TABLE IF NOT EXISTS active_session (
	session_id    TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES session_versions(version_id)
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id       TEXT NOT NULL,
	session_id    TEXT,
	version_id    TEXT,
	record_json   TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

const selectColumns = `version_id, parent_id, session_id, vector_json, classification_json, created_at`

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #endregion schema

// #region store-struct
// Store persists smoothed archetype vectors per session in SQLite.
// Every commit is a new version; active_session points at the current one.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. the turn journal).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region new-record
// NewRecord builds an uncommitted version for sessionID.
func NewRecord(sessionID, parentID string, v archetype.Vector, c *archetype.Classification) Record {
	return Record{
		VersionID:      uuid.New().String(),
		ParentID:       parentID,
		SessionID:      sessionID,
		Vector:         v,
		Classification: c,
		CreatedAt:      time.Now().UTC(),
	}
}

// #endregion new-record

// #region start
// Start commits a neutral initial version for sessionID and makes it active.
func (s *Store) Start(ctx context.Context, sessionID string) (Record, error) {
	rec := NewRecord(sessionID, "", archetype.NeutralVector(), nil)
	if err := s.Commit(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// #endregion start

// #region current
// Current reads the active version of sessionID. Unknown sessions return
// an error wrapping ErrNotFound.
func (s *Store) Current(ctx context.Context, sessionID string) (Record, error) {
	var versionID string
	err := s.db.QueryRowContext(ctx,
		`SELECT version_id FROM active_session WHERE session_id = ?`, sessionID,
	).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(ctx, versionID)
}

// GetVersion retrieves a version by ID.
func (s *Store) GetVersion(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM session_versions WHERE version_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion current

// #region commit
// Commit inserts rec and moves the session's active pointer to it atomically.
func (s *Store) Commit(ctx context.Context, rec Record) error {
	vecJSON, err := json.Marshal(rec.Vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	var clsJSON string
	if rec.Classification != nil {
		b, err := json.Marshal(rec.Classification)
		if err != nil {
			return fmt.Errorf("marshal classification: %w", err)
		}
		clsJSON = string(b)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO session_versions (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), rec.SessionID, string(vecJSON),
		nullIfEmpty(clsJSON), rec.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO active_session (session_id, version_id) VALUES (?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET version_id = excluded.version_id`,
		rec.SessionID, rec.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion commit

// #region rollback
// Rollback points sessionID back at one of its earlier versions.
func (s *Store) Rollback(ctx context.Context, sessionID, targetVersionID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_versions WHERE version_id = ? AND session_id = ?`,
		targetVersionID, sessionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s in session %s: %w", targetVersionID, sessionID, ErrNotFound)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE active_session SET version_id = ? WHERE session_id = ?`, targetVersionID, sessionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region history
// History returns the most recent versions of sessionID, newest first.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM session_versions
		 WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Sessions summarizes every session with an active version, most recently
// updated first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.session_id, a.version_id, v.created_at,
		        (SELECT COUNT(*) FROM session_versions c WHERE c.session_id = a.session_id)
		 FROM active_session a JOIN session_versions v ON v.version_id = a.version_id
		 ORDER BY v.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var createdStr string
		if err := rows.Scan(&sum.SessionID, &sum.VersionID, &createdStr, &sum.Versions); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(timeFormat, createdStr)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// #endregion history

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var parentID, clsJSON sql.NullString
	var vecJSON, createdStr string

	if err := sc.Scan(&rec.VersionID, &parentID, &rec.SessionID, &vecJSON, &clsJSON, &createdStr); err != nil {
		return Record{}, err
	}
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if err := json.Unmarshal([]byte(vecJSON), &rec.Vector); err != nil {
		return Record{}, fmt.Errorf("unmarshal vector: %w", err)
	}
	if clsJSON.Valid {
		var c archetype.Classification
		if err := json.Unmarshal([]byte(clsJSON.String), &c); err != nil {
			return Record{}, fmt.Errorf("unmarshal classification: %w", err)
		}
		rec.Classification = &c
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
