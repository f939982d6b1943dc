// Package history keeps an append-only journal of record mutations in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute

	defaultListLimit = 50
	maxListLimit     = 500
)

// EventType names a journaled mutation.
type EventType string

const (
	EventSubmitted   EventType = "submitted"
	EventGRNUploaded EventType = "grn_uploaded"
	EventDeduped     EventType = "deduped"
)

// Event is one journal entry.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	PONumber  string    `json:"po_number,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows List results.
type Filter struct {
	PONumber string
	Limit    int
}

// Journal wraps the SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// timestampLayout is fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens the SQLite database and bootstraps the schema.
func Open(path string) (*Journal, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends an event, assigning its ID and timestamp when unset.
func (j *Journal) Record(ctx context.Context, ev Event) (Event, error) {
	if strings.TrimSpace(string(ev.Type)) == "" {
		return Event{}, fmt.Errorf("event type is required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = j.now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO events (id, type, po_number, detail, actor, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		ev.ID, string(ev.Type), ev.PONumber, ev.Detail, ev.Actor, ev.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return Event{}, fmt.Errorf("record %s event: %w", ev.Type, err)
	}
	return ev, nil
}

// List returns the newest events first.
func (j *Journal) List(ctx context.Context, filter Filter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := "SELECT id, type, po_number, detail, actor, created_at FROM events"
	args := []any{}
	if po := strings.TrimSpace(filter.PONumber); po != "" {
		query += " WHERE po_number = ?"
		args = append(args, po)
	}
	query += " ORDER BY created_at DESC, seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			ev                      Event
			evType, createdAt       string
			poNumber, detail, actor sql.NullString
		)
		if err := rows.Scan(&ev.ID, &evType, &poNumber, &detail, &actor, &createdAt); err != nil {
			return nil, err
		}
		ev.Type = EventType(evType)
		ev.PONumber = poNumber.String
		ev.Detail = detail.String
		ev.Actor = actor.String
		ev.CreatedAt, err = time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// SchemaStatus reports applied and available migration versions.
func (j *Journal) SchemaStatus() (*MigrationStatus, error) {
	return MigrationPlan(j.db)
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("history path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
