package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region journal
// Journal appends TurnRecords to the turn_log table created by the session
// store's schema.
type Journal struct {
	db *sql.DB
}

// NewJournal wraps db.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// RecordTurn writes rec. A zero CreatedAt is stamped with the current time.
func (j *Journal) RecordTurn(ctx context.Context, rec TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO turn_log (turn_id, session_id, version_id, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.TurnID,
		nullIfEmpty(rec.SessionID),
		nullIfEmpty(rec.VersionID),
		string(body),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Turns returns the latest records for sessionID, newest first.
func (j *Journal) Turns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT record_json FROM turn_log WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		var rec TurnRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion journal

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
