package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database tables.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    user_key TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    op TEXT NOT NULL,
    group_key TEXT NOT NULL,
    actor TEXT NOT NULL,
    payee TEXT NOT NULL,
    amount INTEGER NOT NULL,
    cost INTEGER NOT NULL,
    certificate_number INTEGER NOT NULL DEFAULT -1,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_group_key ON transactions(group_key, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_actor ON transactions(actor, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_payee ON transactions(payee, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
