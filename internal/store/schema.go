package store

import "database/sql"

// Rooms are stored as one schema-less document row each: the structural
// columns plus the full widget tree as a JSON blob. People and teachers back
// the member-info lookup and are maintained out of band by directory sync.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT NOT NULL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		author      TEXT NOT NULL,
		layout      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		login TEXT NOT NULL PRIMARY KEY,
		name  TEXT NOT NULL,
		uco   INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		login TEXT NOT NULL PRIMARY KEY
	)`,
}

func createTables(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
