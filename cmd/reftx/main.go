// Command reftx prepares reference transactions.
//
// Batches of reference edits are read from standard input as JSON, one batch
// per line:
//
//     {"edits":[{"name":"HEAD","change":{"type":"update","new":"<oid>","deref":true}}]}
//
// Check
//
// The subcommand "check" verifies that no batch edits a reference more than
// once, without looking at any references:
//
//     reftx [-config PATH_TO_CONFIG] check
//
// Prepare
//
// The subcommand "prepare" additionally resolves edits through symbolic
// references against the configured store and prints the prepared batches:
//
//     reftx [-config PATH_TO_CONFIG] prepare [-format=json|table|update-ref] [-jobs N]
//
// SQL Migrate
//
// The subcommand "sql-migrate" applies outstanding migrations to the
// database of the postgres store:
//
//     reftx -config PATH_TO_CONFIG sql-migrate [-ignore-unknown=true|false]
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/log"
)

const progname = "reftx"

var (
	flagConfig = flag.String("config", "", "Location for the config.toml")
	logger     = log.Default()
)

func main() {
	flag.Usage = func() {
		cmds := make([]string, 0, len(subcommands))
		for k := range subcommands {
			cmds = append(cmds, k)
		}
		sort.Strings(cmds)

		printfErr("Usage of %s:\n", progname)
		flag.PrintDefaults()
		printfErr("  subcommand\n")
		printfErr("\tOne of %s\n", strings.Join(cmds, ", "))
	}
	flag.Parse()

	conf, err := initConfig(*flagConfig)
	if err != nil {
		printfErr("%s: configuration error: %v\n", progname, err)
		os.Exit(1)
	}

	if err := log.ConfigureFromConfig(conf.Logging); err != nil {
		printfErr("%s: configure logging: %v\n", progname, err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	closer := config.ConfigureTracing(logger)
	code := subCommand(conf, args[0], args[1:])
	if closer != nil {
		if err := closer.Close(); err != nil {
			logger.WithError(err).Error("closing tracer")
		}
	}

	os.Exit(code)
}

// initConfig loads the configuration from path. Without a path, only the
// environment and defaults are used.
func initConfig(path string) (config.Config, error) {
	var conf config.Config
	var err error

	if path == "" {
		conf, err = config.Load(strings.NewReader(""))
	} else {
		conf, err = config.FromFile(path)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("error reading config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return config.Config{}, err
	}

	return conf, nil
}
