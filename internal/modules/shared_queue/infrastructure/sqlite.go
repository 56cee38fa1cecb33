package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS queues (
	id         TEXT PRIMARY KEY,
	creator_id TEXT NOT NULL UNIQUE,
	version    INTEGER NOT NULL,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS friends (
	user_id   TEXT NOT NULL,
	friend_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	position  INTEGER NOT NULL,
	PRIMARY KEY (user_id, friend_id)
);

CREATE INDEX IF NOT EXISTS friends_by_position ON friends (user_id, position);
`

// OpenSQLite opens the database at path, creating the schema if needed.
// The returned pool is meant to live for the whole process.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?" + url.Values{
		"_pragma": {"busy_timeout(5000)", "journal_mode(WAL)", "foreign_keys(ON)"},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	slog.Info("opened queue database", "path", path)
	return db, nil
}
