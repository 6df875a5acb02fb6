// Package journal keeps a local record of submitted mutations and the last
// TUI screen in a SQLite file under the config directory.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clubhub-cli/internal/mutate"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const FileName = "journal.sqlite"

type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// Entry is one submitted mutation.
type Entry struct {
	ID      string    `json:"id" yaml:"id"`
	At      time.Time `json:"at" yaml:"at"`
	Action  string    `json:"action" yaml:"action"`
	Target  string    `json:"target" yaml:"target"`
	Payload string    `json:"payload" yaml:"payload"`
	Outcome Outcome   `json:"outcome" yaml:"outcome"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal in dir.
func Open(ctx context.Context, dir string) (*Journal, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("journal: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mutations (
			id TEXT PRIMARY KEY,
			at_unixms INTEGER NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			outcome TEXT NOT NULL,
			message TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mutations_at ON mutations(at_unixms);`,
		`CREATE TABLE IF NOT EXISTS ui_state (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores the outcome of one action.
func (j *Journal) Record(ctx context.Context, a mutate.Action, cause error) (Entry, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal %s payload: %w", a.Name(), err)
	}
	e := Entry{
		ID:      uuid.NewString(),
		At:      j.now().UTC(),
		Action:  a.Name(),
		Target:  a.Target(),
		Payload: string(payload),
		Outcome: OutcomeOK,
	}
	if cause != nil {
		e.Outcome = OutcomeError
		e.Message = cause.Error()
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO mutations(id, at_unixms, action, target, payload_json, outcome, message)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.At.UnixMilli(), e.Action, e.Target, e.Payload, string(e.Outcome), nullable(e.Message))
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, at_unixms, action, target, payload_json, outcome, message
		FROM mutations
		ORDER BY at_unixms DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e   Entry
			at  int64
			msg sql.NullString
			oc  string
		)
		if err := rows.Scan(&e.ID, &at, &e.Action, &e.Target, &e.Payload, &oc, &msg); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(at).UTC()
		e.Outcome = Outcome(oc)
		e.Message = msg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Observer returns a mutate.Observer that records every action. Write
// failures are logged and otherwise ignored.
func (j *Journal) Observer(log *slog.Logger) mutate.Observer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(a mutate.Action, err error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, rerr := j.Record(ctx, a, err); rerr != nil {
			log.Warn("journal_record_failed", "action", a.Name(), "error", rerr)
		}
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
