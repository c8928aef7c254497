package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// schema is applied on every open. CREATE TABLE IF NOT EXISTS keeps it
// idempotent, so no external migration tool is needed for the file store.
const schema = `
CREATE TABLE IF NOT EXISTS url_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	target_url TEXT NOT NULL UNIQUE,
	visits INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// isUniqueViolationError reports whether err is a unique constraint
// violation on the given column. The driver doesn't expose structured
// error codes for this, so detection is by message.
func isUniqueViolationError(err error, column string) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, "url_mappings."+column)
}

// New opens (or creates) the SQLite database at path and applies the schema.
// The pragmas go through the DSN so they apply to every pooled connection.
func New(path string) (*sqlx.DB, error) {
	const op = "database.sqlite.New"

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to apply schema: %w", op, err)
	}

	return db, nil
}
