package testhelper

import (
	"fmt"

	"go.uber.org/goleak"
)

// findLeakedGoroutines reports Goroutines which are still running after all tests have finished.
func findLeakedGoroutines() error {
	if err := goleak.Find(
		// The opencensus worker is started by an init function of a transitive
		// dependency and never terminates.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		// database/sql keeps a connection opener around for every open pool.
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
		// Receiving signals keeps a Goroutine alive once signal.Notify has
		// been called.
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
	); err != nil {
		return fmt.Errorf("goroutines leaked: %w", err)
	}

	return nil
}
