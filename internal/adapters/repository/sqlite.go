package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database. It is selected
// when the service is configured with a db_path, giving the catalog
// durability across restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// initSchema creates catalog tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			interests TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			featured INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			starts_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tickets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			bought_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_status_starts_at ON events(status, starts_at);
		CREATE INDEX IF NOT EXISTS idx_tickets_user_id ON tickets(user_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// UpsertUser inserts or replaces a user profile.
func (s *SQLiteStore) UpsertUser(ctx context.Context, u model.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, name, interests, city, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Interests, u.City, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// UpsertEvent inserts or replaces an event.
func (s *SQLiteStore) UpsertEvent(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO events (id, title, category, tags, city, featured, status, starts_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Category, e.Tags, e.City, e.Featured, e.Status, e.StartsAt,
	)
	if err != nil {
		return fmt.Errorf("upserting event: %w", err)
	}
	return nil
}

// UpsertTicket inserts or replaces a ticket.
func (s *SQLiteStore) UpsertTicket(ctx context.Context, t model.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tickets (id, user_id, event_id, quantity, bought_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.EventID, t.Quantity, t.BoughtAt,
	)
	if err != nil {
		return fmt.Errorf("upserting ticket: %w", err)
	}
	return nil
}

// GetUser returns the profile for id, or ErrNotFound.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (model.UserProfile, error) {
	var u model.UserProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, interests, city, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Interests, &u.City, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// PurchasedCategories joins the user's tickets to event categories.
func (s *SQLiteStore) PurchasedCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT e.category
		 FROM tickets t JOIN events e ON e.id = t.event_id
		 WHERE t.user_id = ? AND e.category != ''`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying purchased categories: %w", err)
	}
	defer rows.Close()

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// UpcomingPublishedEvents returns published future events ordered by
// start date ascending, capped at max.
func (s *SQLiteStore) UpcomingPublishedEvents(ctx context.Context, now time.Time, max int) ([]model.Event, error) {
	if max < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, tags, city, featured, status, starts_at
		 FROM events
		 WHERE status = ? AND starts_at >= ?
		 ORDER BY starts_at ASC, id ASC
		 LIMIT ?`, model.StatusPublished, now, max,
	)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Tags, &e.City, &e.Featured, &e.Status, &e.StartsAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Counts reports catalog sizes.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&c.Users); err != nil {
		return Counts{}, fmt.Errorf("counting users: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&c.Events); err != nil {
		return Counts{}, fmt.Errorf("counting events: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&c.Tickets); err != nil {
		return Counts{}, fmt.Errorf("counting tickets: %w", err)
	}
	return c, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
