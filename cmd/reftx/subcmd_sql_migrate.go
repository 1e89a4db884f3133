package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/refstore/postgres"
)

const (
	sqlMigrateCmdName = "sql-migrate"
	timeFmt           = "2006-01-02T15:04:05"
)

type sqlMigrateSubcommand struct {
	w             io.Writer
	ignoreUnknown bool
}

func newSQLMigrateSubcommand(writer io.Writer) *sqlMigrateSubcommand {
	return &sqlMigrateSubcommand{w: writer}
}

func (cmd *sqlMigrateSubcommand) FlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet(sqlMigrateCmdName, flag.ExitOnError)
	flags.BoolVar(&cmd.ignoreUnknown, "ignore-unknown", true, "ignore unknown migrations (default is true)")
	return flags
}

func (cmd *sqlMigrateSubcommand) Exec(ctx context.Context, _ *flag.FlagSet, conf config.Config) error {
	const subCmd = progname + " " + sqlMigrateCmdName

	db, clean, err := openDB(ctx, conf.DB)
	if err != nil {
		return err
	}
	defer clean()

	pending, err := postgres.PendingMigrations(db, cmd.ignoreUnknown)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintf(cmd.w, "%s: all migrations are up\n", subCmd)
		return nil
	}

	fmt.Fprintf(cmd.w, "%s: migrations to apply: %d\n\n", subCmd, len(pending))
	for _, id := range pending {
		fmt.Fprintf(cmd.w, "=  %v: pending\n", id)
	}

	start := time.Now()
	applied, err := postgres.Migrate(db, cmd.ignoreUnknown)
	if err != nil {
		return fmt.Errorf("%s: fail: %w", time.Now().Format(timeFmt), err)
	}

	fmt.Fprintf(cmd.w, "\n%s: OK (applied %d migrations in %s)\n", subCmd, applied, time.Since(start))
	return nil
}
