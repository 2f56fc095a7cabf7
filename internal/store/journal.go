package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-dashboard/internal/notify"
)

// journalTimeLayout is fixed width so that created_at sorts lexically.
const journalTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Journal records every dispatched notification in SQLite.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			icon TEXT,
			duration TEXT,
			sound INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init journal schema: %w", err)
		}
	}

	return &Journal{db: db}, nil
}

// Append stores n. Re-appending the same ID replaces the row.
func (j *Journal) Append(ctx context.Context, n notify.Notification) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO notifications(id, kind, title, body, icon, duration, sound, created_at) VALUES(?,?,?,?,?,?,?,?)`,
		n.ID, string(n.Kind), n.Title, n.Body, n.Icon, string(n.Duration), n.Sound, n.CreatedAt.UTC().Format(journalTimeLayout))
	return err
}

// List returns up to limit notifications, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]notify.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, title, body, icon, duration, sound, created_at FROM notifications ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notify.Notification, 0)
	for rows.Next() {
		var (
			n                  notify.Notification
			kind, duration, ts string
			icon               sql.NullString
		)
		if err := rows.Scan(&n.ID, &kind, &n.Title, &n.Body, &icon, &duration, &n.Sound, &ts); err != nil {
			return nil, err
		}
		n.Kind = notify.Kind(kind)
		n.Duration = notify.Duration(duration)
		n.Icon = icon.String
		if t, err := time.Parse(journalTimeLayout, ts); err == nil {
			n.CreatedAt = t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Name implements notify.Sink.
func (j *Journal) Name() string {
	return "journal"
}

// Send implements notify.Sink.
func (j *Journal) Send(ctx context.Context, n notify.Notification) error {
	return j.Append(ctx, n)
}

func (j *Journal) Close() error {
	return j.db.Close()
}
