// Copyright 2017-2018 Gridpub, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	migrate "github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal serving flow, at startup or
// from an external tool.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-stac-tables",
			Up: []string{
				`CREATE TABLE stac_collection (
					id TEXT PRIMARY KEY,
					doc JSONB NOT NULL
				)`,
				`CREATE TABLE stac_item (
					id TEXT PRIMARY KEY,
					collection TEXT NOT NULL DEFAULT '',
					west DOUBLE PRECISION,
					south DOUBLE PRECISION,
					east DOUBLE PRECISION,
					north DOUBLE PRECISION,
					start_time TIMESTAMPTZ,
					end_time TIMESTAMPTZ,
					doc JSONB NOT NULL
				)`,
				`CREATE INDEX stac_item_collection
					ON stac_item(collection)`,
				`CREATE INDEX stac_item_times
					ON stac_item(start_time, end_time)`,
			},
			Down: []string{
				`DROP TABLE stac_item`,
				`DROP TABLE stac_collection`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
