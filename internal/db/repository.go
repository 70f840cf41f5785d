package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	StatusFulfilled = "fulfilled"
	StatusFailed    = "failed"
)

// Submission is one audited detection request and its outcome.
type Submission struct {
	ID              string    `json:"id"`
	Media           string    `json:"media"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	Label           string    `json:"label"`
	Confidence      *float64  `json:"confidence,omitempty"`
	AIProbability   float64   `json:"aiProbability"`
	IndicatorSource string    `json:"indicatorSource"`
	Indicators      []string  `json:"indicators,omitempty"`
	Error           string    `json:"error,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
	CompletedAt     time.Time `json:"completedAt"`
}

// History appends submissions to a sqlite file.
type History struct {
	mu   sync.Mutex
	conn *sql.DB
}

func OpenHistory(path string) (*History, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &History{conn: conn}, nil
}

func (h *History) Close() error {
	if h == nil || h.conn == nil {
		return nil
	}
	return h.conn.Close()
}

func (h *History) Record(ctx context.Context, s Submission) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("record submission: missing id")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var confidence any
	if s.Confidence != nil {
		confidence = *s.Confidence
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions(id, media, source, status, label, confidence, ai_probability, indicator_source, error, started_at, completed_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID,
		s.Media,
		s.Source,
		s.Status,
		s.Label,
		confidence,
		s.AIProbability,
		s.IndicatorSource,
		s.Error,
		formatTime(s.StartedAt),
		formatTime(s.CompletedAt),
	); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	for i, text := range s.Indicators {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO indicators(submission_id, position, text) VALUES(?,?,?)`,
			s.ID, i, text,
		); err != nil {
			return fmt.Errorf("insert indicator: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Recent returns up to limit submissions, newest first, with their indicators.
func (h *History) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.conn.QueryContext(ctx,
		`SELECT id, media, source, status, label, confidence, ai_probability, indicator_source, error, started_at, completed_at
		 FROM submissions ORDER BY completed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	var out []Submission
	for rows.Next() {
		var (
			s                      Submission
			source, label          sql.NullString
			indicatorSource, errS  sql.NullString
			confidence             sql.NullFloat64
			startedAt, completedAt sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Media, &source, &s.Status, &label, &confidence, &s.AIProbability, &indicatorSource, &errS, &startedAt, &completedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		s.Source = source.String
		s.Label = label.String
		s.IndicatorSource = indicatorSource.String
		s.Error = errS.String
		if confidence.Valid {
			c := confidence.Float64
			s.Confidence = &c
		}
		s.StartedAt = parseTime(startedAt.String)
		s.CompletedAt = parseTime(completedAt.String)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	rows.Close()

	for i := range out {
		inds, err := h.indicatorsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Indicators = inds
	}
	return out, nil
}

func (h *History) indicatorsFor(ctx context.Context, id string) ([]string, error) {
	rows, err := h.conn.QueryContext(ctx, `SELECT text FROM indicators WHERE submission_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query indicators: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
