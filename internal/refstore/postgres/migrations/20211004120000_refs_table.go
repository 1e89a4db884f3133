package migrations

import migrate "github.com/rubenv/sql-migrate"

func init() {
	m := &migrate.Migration{
		Id: "20211004120000_refs_table",
		Up: []string{`CREATE TABLE refs (
			repository TEXT NOT NULL,
			name TEXT NOT NULL,
			oid TEXT,
			symref TEXT,
			PRIMARY KEY (repository, name),
			CHECK ((oid IS NULL) <> (symref IS NULL))
		)`},
		Down: []string{"DROP TABLE refs"},
	}

	allMigrations = append(allMigrations, m)
}
