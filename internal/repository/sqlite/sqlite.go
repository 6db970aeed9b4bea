// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite — no CGo, no C
// compiler, works everywhere Go works. The database is a single file (or
// ":memory:" for tests).
//
// Two pragmas matter for a web server: WAL mode lets concurrent reads
// proceed while a write is happening, and foreign_keys=ON enables the
// ON DELETE CASCADE declarations the schema relies on (deleting a recipe
// drops its ingredient lines, tag links and marks; deleting a user drops
// their recipes and subscriptions).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// The import registers the driver with database/sql under the name
	// "sqlite". We also reference the package directly for its Error type,
	// which carries the extended result code used to detect unique
	// constraint violations.
	sqlite3 "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// A single *DB value implements every repository interface; the server
// wires it into each service as the narrow interface that service needs.
type DB struct {
	conn *sql.DB
}

// New opens (creating if necessary) the SQLite database at dbPath and runs
// migrations. Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, always. SQLite serializes writers anyway, and a pool
	// of size one means the pragmas below apply to every query and
	// ":memory:" databases aren't silently duplicated per connection.
	conn.SetMaxOpenConns(1)

	// sql.Open only creates the pool; Ping forces a real connection so a
	// bad path surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

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

// Close closes the database connection pool. Always defer Close() after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Composite primary keys on the join tables double as the uniqueness
// constraints the services rely on: a second favorite mark or subscription
// for the same pair fails the INSERT itself, which is the concurrency guard
// against double-submission.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tags (
			id    TEXT PRIMARY KEY,
			name  TEXT NOT NULL UNIQUE,
			color TEXT NOT NULL UNIQUE,
			slug  TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS ingredients (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			measurement_unit TEXT NOT NULL,
			UNIQUE (name, measurement_unit)
		);
		CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name);

		CREATE TABLE IF NOT EXISTS recipes (
			id           TEXT PRIMARY KEY,
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			image        TEXT NOT NULL DEFAULT '',
			text         TEXT NOT NULL,
			cooking_time INTEGER NOT NULL,
			created_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);
		CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes(author_id);

		CREATE TABLE IF NOT EXISTS recipe_ingredients (
			recipe_id     TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			ingredient_id TEXT NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
			amount        INTEGER NOT NULL,
			PRIMARY KEY (recipe_id, ingredient_id)
		);

		CREATE TABLE IF NOT EXISTS recipe_tags (
			recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			tag_id    TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (recipe_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			subscriber_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			author_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at    DATETIME NOT NULL,
			PRIMARY KEY (subscriber_id, author_id)
		);

		CREATE TABLE IF NOT EXISTS favorites (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, recipe_id)
		);

		CREATE TABLE IF NOT EXISTS shopping_cart (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, recipe_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure. The services translate these into apperror.Conflict —
// the constraint itself is the correctness guard, never check-then-insert.
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error. Recipe composition uses this so a recipe row never becomes visible
// without its ingredient lines and tag links.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ?" with n question marks, for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, 3*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, '?')
	}
	return string(out)
}
