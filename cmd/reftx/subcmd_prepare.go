package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus/ctxlogrus"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/git/updateref"
	"gitlab.com/gitlab-org/reftx/internal/refstore"
	"gitlab.com/gitlab-org/reftx/internal/transaction/voting"
	"golang.org/x/sync/errgroup"
)

const (
	prepareCmdName = "prepare"

	formatJSON      = "json"
	formatTable     = "table"
	formatUpdateRef = "update-ref"
)

type prepareSubcommand struct {
	r         io.Reader
	w         io.Writer
	openStore storeOpener

	format      string
	jobs        int
	metricsFile string
}

func newPrepareSubcommand(reader io.Reader, writer io.Writer, openStore storeOpener) *prepareSubcommand {
	return &prepareSubcommand{r: reader, w: writer, openStore: openStore}
}

func (cmd *prepareSubcommand) FlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(prepareCmdName, flag.ExitOnError)
	fs.StringVar(&cmd.format, "format", formatJSON, "output format, one of json, table or update-ref")
	fs.IntVar(&cmd.jobs, "jobs", 1, "number of batches prepared in parallel")
	fs.StringVar(&cmd.metricsFile, "metrics-file", "", "write reference store metrics to this file in the Prometheus text format")
	fs.Usage = func() {
		_, _ = printfErr("Description:\n" +
			"	This command resolves the batches read from standard input through symbolic references\n" +
			"	and prints the prepared batches.\n")
		fs.PrintDefaults()
	}

	return fs
}

// preparedBatch is the result of preparing a single batch. Exactly one of
// edits and err is set.
type preparedBatch struct {
	edits reftx.RefEdits
	vote  voting.Vote
	err   error
}

func (cmd *prepareSubcommand) Exec(ctx context.Context, _ *flag.FlagSet, conf config.Config) error {
	switch cmd.format {
	case formatJSON, formatTable, formatUpdateRef:
	default:
		return fmt.Errorf("unsupported format %q", cmd.format)
	}

	if cmd.jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", cmd.jobs)
	}

	batches, err := decodeBatches(cmd.r)
	if err != nil {
		return err
	}

	backend, clean, err := cmd.openStore(ctx, conf)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer clean()

	registry := prometheus.NewRegistry()

	instrumented := refstore.NewInstrumented(backend)
	registry.MustRegister(instrumented)

	var store reftx.RefStore = instrumented
	if conf.Store.CacheSize > 0 {
		caching, err := refstore.NewCaching(instrumented, conf.Store.CacheSize)
		if err != nil {
			return err
		}
		registry.MustRegister(caching)
		store = caching
	}

	preparer := reftx.NewPreparer(store, reftx.WithMaxSymrefDepth(conf.Refs.MaxSymrefDepth))

	results := make([]preparedBatch, len(batches))
	sem := make(chan struct{}, cmd.jobs)

	group, groupCtx := errgroup.WithContext(ctx)
	for i, edits := range batches {
		i, edits := i, edits

		select {
		case sem <- struct{}{}:
		case <-groupCtx.Done():
		}
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			defer func() { <-sem }()
			results[i] = prepareBatch(groupCtx, preparer, i, edits)
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cmd.metricsFile != "" {
		if err := prometheus.WriteToTextfile(cmd.metricsFile, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if err := cmd.writeResults(results); err != nil {
		return err
	}

	var failed int
	for _, result := range results {
		if result.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("prepare: %d failures encountered", failed)
	}

	return nil
}

func prepareBatch(ctx context.Context, preparer *reftx.Preparer, index int, edits reftx.RefEdits) preparedBatch {
	correlationID := correlation.SafeRandomID()
	ctx = correlation.ContextWithCorrelation(ctx, correlationID)

	batchLog := logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"batch":          index + 1,
	})
	ctx = ctxlogrus.ToContext(ctx, batchLog)

	prepared, err := preparer.Prepare(ctx, edits, originalLogMessage)
	if err != nil {
		batchLog.WithError(err).Error("preparing batch failed")
		return preparedBatch{err: err}
	}

	vote, err := voting.VoteFromEdits(prepared)
	if err != nil {
		batchLog.WithError(err).Error("encoding batch failed")
		return preparedBatch{err: err}
	}

	batchLog.WithFields(logrus.Fields{
		"phase": voting.Prepared.String(),
		"vote":  vote.String(),
	}).Info("prepared batch")

	return preparedBatch{edits: prepared, vote: vote}
}

// originalLogMessage records the message of the edit that was split on each
// referent it reaches.
func originalLogMessage(edit reftx.RefEdit) string {
	if update, ok := edit.Change.(reftx.Update); ok {
		return update.Log.Message
	}
	return ""
}

func (cmd *prepareSubcommand) writeResults(results []preparedBatch) error {
	switch cmd.format {
	case formatJSON:
		return writeJSON(cmd.w, results)
	case formatTable:
		writeTable(cmd.w, results)
		return nil
	case formatUpdateRef:
		return writeUpdateRef(cmd.w, results)
	default:
		return fmt.Errorf("unsupported format %q", cmd.format)
	}
}

type jsonResult struct {
	batch
	Vote  string `json:"vote,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, results []preparedBatch) error {
	encoder := json.NewEncoder(w)
	for _, result := range results {
		var out jsonResult
		if result.err != nil {
			out.Error = result.err.Error()
		} else {
			out.batch = newBatch(result.edits)
			out.Vote = result.vote.String()
		}

		if err := encoder.Encode(out); err != nil {
			return err
		}
	}

	return nil
}

func writeTable(w io.Writer, results []preparedBatch) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Batch", "Name", "Change", "Target", "Deref", "Mode", "Message"})
	table.SetAutoWrapText(false)

	for i, result := range results {
		batchNumber := strconv.Itoa(i + 1)
		if result.err != nil {
			table.Append([]string{batchNumber, "", "error", result.err.Error(), "", "", ""})
			continue
		}

		for _, edit := range result.edits {
			row := []string{batchNumber, edit.Name.String()}
			switch c := edit.Change.(type) {
			case reftx.Update:
				row = append(row, "update", formatTarget(c.New), strconv.FormatBool(c.Deref), c.Log.Mode.String(), c.Log.Message)
			case reftx.Delete:
				row = append(row, "delete", formatTarget(c.Previous), strconv.FormatBool(c.Deref), c.Mode.String(), "")
			default:
				panic(fmt.Sprintf("unknown change %T", edit.Change))
			}
			table.Append(row)
		}
	}

	table.Render()
}

func writeUpdateRef(w io.Writer, results []preparedBatch) error {
	for _, result := range results {
		if result.err != nil {
			continue
		}

		updater, err := updateref.New(w)
		if err != nil {
			return err
		}
		if err := updater.Write(result.edits); err != nil {
			return err
		}
		if err := updater.Commit(); err != nil {
			return err
		}
	}

	return nil
}
