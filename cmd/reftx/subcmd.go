package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/refstore"
	"gitlab.com/gitlab-org/reftx/internal/refstore/postgres"
)

type subcmd interface {
	FlagSet() *flag.FlagSet
	Exec(ctx context.Context, flags *flag.FlagSet, conf config.Config) error
}

const defaultOpenDBTimeout = 30 * time.Second

var subcommands = map[string]subcmd{
	checkCmdName:      newCheckSubcommand(os.Stdin, os.Stdout),
	prepareCmdName:    newPrepareSubcommand(os.Stdin, os.Stdout, openStore),
	sqlMigrateCmdName: newSQLMigrateSubcommand(os.Stdout),
}

// subCommand returns an exit code, to be fed into os.Exit. An interrupt
// cancels the context passed to the subcommand.
func subCommand(conf config.Config, arg0 string, argRest []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	subcmd, ok := subcommands[arg0]
	if !ok {
		printfErr("%s: unknown subcommand: %q\n", progname, arg0)
		return 1
	}

	flags := subcmd.FlagSet()

	if err := flags.Parse(argRest); err != nil {
		printfErr("%s\n", err)
		return 1
	}

	if err := subcmd.Exec(ctx, flags, conf); err != nil {
		if ctx.Err() != nil {
			printfErr("%s: interrupted\n", progname)
			return 130 // indicates program was interrupted
		}

		logger.WithError(err).WithField("subcommand", arg0).Error("subcommand failed")
		printfErr("%s\n", err)
		return 1
	}

	return 0
}

// storeOpener opens the configured reference store. The returned function
// releases it.
type storeOpener func(ctx context.Context, conf config.Config) (reftx.RefStore, func(), error)

func openStore(ctx context.Context, conf config.Config) (reftx.RefStore, func(), error) {
	switch conf.Store.Backend {
	case config.BackendMemory:
		store, err := openMemory(conf.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendGit:
		store, err := refstore.OpenGoGit(conf.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.BackendLibgit2:
		store, err := refstore.OpenLibgit2(conf.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Error("closing libgit2 repository")
			}
		}, nil
	case config.BackendPostgres:
		db, clean, err := openDB(ctx, conf.DB)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(db, conf.Store.Repository), clean, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", conf.Store.Backend)
	}
}

// openMemory reads the references of the memory backend from path. Without a
// path the store is empty and every reference is treated as missing.
func openMemory(path string) (*refstore.Memory, error) {
	if path == "" {
		logger.Warn("memory store has no store.path configured, every reference will be treated as missing")
		return refstore.NewMemory(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	store, err := refstore.ReadMemory(f)
	if err != nil {
		return nil, fmt.Errorf("read references from %q: %w", path, err)
	}

	refs := store.References()
	var symbolic int
	for _, ref := range refs {
		if ref.IsSymbolic() {
			symbolic++
		}
	}
	logger.WithFields(logrus.Fields{
		"path":                path,
		"references":          len(refs),
		"symbolic_references": symbolic,
	}).Info("loaded references")

	return store, nil
}

func openDB(ctx context.Context, conf config.DB) (*sql.DB, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpenDBTimeout)
	defer cancel()

	db, err := postgres.OpenDB(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("sql open: %w", err)
	}

	clean := func() {
		if err := db.Close(); err != nil {
			printfErr("sql close: %v\n", err)
		}
	}

	return db, clean, nil
}

func printfErr(format string, a ...interface{}) (int, error) {
	return fmt.Fprintf(os.Stderr, format, a...)
}
