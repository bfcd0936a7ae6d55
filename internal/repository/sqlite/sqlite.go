// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go translation of the SQLite engine — no CGo,
// so the binary cross-compiles anywhere Go does. For tests, ":memory:" gives a
// throwaway database.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, configures it for web-server
// use, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — several
	// requests can render pages while a refresh inserts cache rows.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the wishlist rows reference users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Migrate creates all tables. Every statement is idempotent, so this is safe
// to run repeatedly — the /initdb route calls it on an already-open database.
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS wishlist_items (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			offer_id TEXT NOT NULL,
			name     TEXT NOT NULL DEFAULT 'Unknown Item',
			price    INTEGER NOT NULL DEFAULT 0,
			rarity   TEXT NOT NULL DEFAULT '',
			image    TEXT NOT NULL DEFAULT '',
			added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, offer_id)
		);
		CREATE INDEX IF NOT EXISTS idx_wishlist_items_user_id ON wishlist_items(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating wishlist_items table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS shop_cache (
			id         TEXT PRIMARY KEY,
			fetched_at DATETIME NOT NULL,
			raw_json   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_shop_cache_fetched_at ON shop_cache(fetched_at);
	`)
	if err != nil {
		return fmt.Errorf("creating shop_cache table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS shop_items (
			id          TEXT PRIMARY KEY,
			shop_date   TEXT NOT NULL,
			offer_id    TEXT NOT NULL,
			section     TEXT NOT NULL DEFAULT 'Shop',
			name        TEXT NOT NULL DEFAULT 'Unknown Item',
			price       INTEGER NOT NULL DEFAULT 0,
			rarity      TEXT NOT NULL DEFAULT '',
			type        TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			UNIQUE (shop_date, offer_id)
		);
		CREATE INDEX IF NOT EXISTS idx_shop_items_shop_date ON shop_items(shop_date);
	`)
	if err != nil {
		return fmt.Errorf("creating shop_items table: %w", err)
	}

	return nil
}
