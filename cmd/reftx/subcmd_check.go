package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"gitlab.com/gitlab-org/reftx/internal/config"
)

const checkCmdName = "check"

var errChecksFailed = errors.New("checks failed")

type checkSubcommand struct {
	r io.Reader
	w io.Writer
}

func newCheckSubcommand(reader io.Reader, writer io.Writer) *checkSubcommand {
	return &checkSubcommand{r: reader, w: writer}
}

func (cmd *checkSubcommand) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(checkCmdName, flag.ExitOnError)
	fs.Usage = func() {
		_, _ = printfErr("Description:\n" +
			"	This command verifies that no batch read from standard input edits a reference twice.\n")
		fs.PrintDefaults()
	}

	return fs
}

func (cmd *checkSubcommand) Exec(_ context.Context, _ *flag.FlagSet, _ config.Config) error {
	batches, err := decodeBatches(cmd.r)
	if err != nil {
		return err
	}

	var failed int
	for i, edits := range batches {
		fmt.Fprintf(cmd.w, "Checking batch %d...", i+1)
		if err := edits.AssureOneNameHasOneEdit(); err != nil {
			failed++
			fmt.Fprintf(cmd.w, "Failed: %s\n", err)
			continue
		}
		fmt.Fprintf(cmd.w, "Passed\n")
	}

	fmt.Fprintf(cmd.w, "\n")

	if failed > 0 {
		fmt.Fprintf(cmd.w, "%d of %d batch(es) failed.\n", failed, len(batches))
		return errChecksFailed
	}

	fmt.Fprintf(cmd.w, "All batches passed.\n")
	return nil
}
