// Package postgres implements a reference store keeping the references of
// many repositories in a Postgres table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Blank import to enable integration of github.com/lib/pq into database/sql
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/refstore/postgres/migrations"
)

const sqlMigrateDialect = "postgres"

// OpenDB returns connection pool to the database.
func OpenDB(ctx context.Context, conf config.DB) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(conf))
	if err != nil {
		return nil, err
	}

	errChan := make(chan error, 1)
	go func() {
		if err := db.PingContext(ctx); err != nil {
			errChan <- fmt.Errorf("send ping: %w", err)
		} else {
			errChan <- nil
		}
	}()

	select {
	// lib/pq does not abort a pending connection attempt when the context
	// is cancelled.
	case <-ctx.Done():
		db.Close()
		return nil, ctx.Err()
	case err := <-errChan:
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// DSN compiles configuration into data source name with lib/pq specifics.
func DSN(db config.DB) string {
	var fields []string
	if db.Port > 0 {
		fields = append(fields, fmt.Sprintf("port=%d", db.Port))
	}

	for _, kv := range []struct{ key, value string }{
		{"host", db.Host},
		{"user", db.User},
		{"password", db.Password},
		{"dbname", db.DBName},
		{"sslmode", db.SSLMode},
		{"sslcert", db.SSLCert},
		{"sslkey", db.SSLKey},
		{"sslrootcert", db.SSLRootCert},
		{"binary_parameters", "yes"},
	} {
		if len(kv.value) == 0 {
			continue
		}

		kv.value = strings.ReplaceAll(kv.value, "'", `\'`)
		kv.value = strings.ReplaceAll(kv.value, " ", `\ `)

		fields = append(fields, kv.key+"="+kv.value)
	}

	return strings.Join(fields, " ")
}

func migrationSet(ignoreUnknown bool) migrate.MigrationSet {
	return migrate.MigrationSet{
		IgnoreUnknown: ignoreUnknown,
		TableName:     migrations.MigrationTableName,
	}
}

func migrationSource() *migrate.MemoryMigrationSource {
	return &migrate.MemoryMigrationSource{
		Migrations: migrations.All(),
	}
}

// Migrate will apply all pending SQL migrations.
func Migrate(db *sql.DB, ignoreUnknown bool) (int, error) {
	return migrationSet(ignoreUnknown).Exec(db, sqlMigrateDialect, migrationSource(), migrate.Up)
}

// PendingMigrations returns the IDs of all migrations which have not been
// applied yet, in the order they would be applied.
func PendingMigrations(db *sql.DB, ignoreUnknown bool) ([]string, error) {
	planned, _, err := migrationSet(ignoreUnknown).PlanMigration(db, sqlMigrateDialect, migrationSource(), migrate.Up, 0)
	if err != nil {
		return nil, fmt.Errorf("plan migrations: %w", err)
	}

	ids := make([]string, len(planned))
	for i, m := range planned {
		ids[i] = m.Id
	}

	return ids, nil
}
