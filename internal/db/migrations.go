package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
//
// Owner, agent, bidder and property columns are plain ids with no REFERENCES
// clause: deleting a user or property leaves the rows that point at it intact.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		email      TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		role       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		description   TEXT,
		type          TEXT NOT NULL,
		property_type TEXT NOT NULL,
		price         REAL NOT NULL,
		bedrooms      INTEGER,
		bathrooms     REAL,
		area          REAL NOT NULL,
		street        TEXT,
		city          TEXT NOT NULL,
		state         TEXT NOT NULL,
		zip_code      TEXT,
		features      TEXT,
		images        TEXT,
		owner_id      TEXT NOT NULL,
		status        TEXT NOT NULL,
		listed_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bids (
		id          TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		amount      REAL NOT NULL,
		message     TEXT,
		status      TEXT NOT NULL,
		timestamp   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id          TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		owner_id    TEXT NOT NULL,
		agent_id    TEXT NOT NULL,
		commission  REAL NOT NULL,
		status      TEXT NOT NULL,
		start_date  DATETIME,
		end_date    DATETIME,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bids_property ON bids(property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bids_user ON bids(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_owner ON contracts(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_agent ON contracts(agent_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
