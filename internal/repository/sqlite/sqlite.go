// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. The database/sql pool is shared by three stores:
//
//	db.Users()   → *UserStore   (repository.UserRepository)
//	db.Cards()   → *CardStore   (repository.CardRepository)
//	db.Follows() → *FollowStore (repository.FollowRepository)
//
// Every store method takes the request context and runs a single statement,
// so each API request maps to one atomic write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/cards/internal/repository"
)

// Page size limits applied to every list query.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// DB wraps a sql.DB connection pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/cards.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and PRAGMAs are per connection.
	// A single pooled connection keeps foreign_keys on for every query and
	// keeps ":memory:" databases from splitting across connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Cards and follows reference
	// users and must be removed with them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserStore { return &UserStore{conn: db.conn} }

// Cards returns the card store backed by this database.
func (db *DB) Cards() *CardStore { return &CardStore{conn: db.conn} }

// Follows returns the follow store backed by this database.
func (db *DB) Follows() *FollowStore { return &FollowStore{conn: db.conn} }

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id              TEXT PRIMARY KEY,
			content         TEXT NOT NULL,
			sent_by_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sent_to_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_cards_sent_by ON cards(sent_by_user_id);
		CREATE INDEX IF NOT EXISTS idx_cards_sent_to ON cards(sent_to_user_id);
		CREATE INDEX IF NOT EXISTS idx_cards_created_at ON cards(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating cards table: %w", err)
	}

	// One edge per (follower, followee) pair.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS follows (
			id                             TEXT PRIMARY KEY,
			this_user_id                   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_this_user_is_following_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at                     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (this_user_id, user_this_user_is_following_id)
		);
		CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(user_this_user_is_following_id);
	`)
	if err != nil {
		return fmt.Errorf("creating follows table: %w", err)
	}

	return nil
}

// pageBounds applies the default and maximum page size.
func pageBounds(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// constraintCode returns the extended SQLite result code of err when it is a
// constraint violation, or 0 otherwise.
func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	switch code := sqliteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return code
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary result code only: fall back to the message text.
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return sqlite3.SQLITE_CONSTRAINT_UNIQUE
		case strings.Contains(msg, "FOREIGN KEY"):
			return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
		}
	}
	return 0
}

func isUniqueViolation(err error) bool {
	code := constraintCode(err)
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

// rowsAffected turns a zero-row UPDATE or DELETE into a NotFound error.
func rowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
