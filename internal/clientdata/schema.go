package clientdata

import "database/sql"

// Schema defines the cache tables in client_data.db. Every table shares
// the same shape: a cache key, a msgpack blob and a unix expiry.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolio_history (
    cache_key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS allocation_history (
    cache_key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_series (
    cache_key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    cache_key TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);
`

// InitSchema ensures all cache tables exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
