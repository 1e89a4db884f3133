package reftx

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus/ctxlogrus"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Preparer turns a batch of requested edits into the batch a backend can
// commit.
type Preparer struct {
	store     RefStore
	splitOpts []SplitOption
}

// NewPreparer returns a Preparer which resolves symbolic references via store.
func NewPreparer(store RefStore, opts ...SplitOption) *Preparer {
	return &Preparer{store: store, splitOpts: opts}
}

// Prepare verifies that every reference is edited at most once, splits edits
// through symbolic references and verifies the expanded batch again, as a
// referent may already be edited directly. The given edits are not modified.
func (p *Preparer) Prepare(ctx context.Context, edits RefEdits, makeLogMessage LogMessageFunc) (RefEdits, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "reftx.Prepare")
	defer span.Finish()
	span.SetTag("edits", len(edits))

	logger := ctxlogrus.Extract(ctx)

	if err := edits.AssureOneNameHasOneEdit(); err != nil {
		return nil, err
	}

	prepared := make(RefEdits, len(edits), 2*len(edits))
	copy(prepared, edits)

	if err := prepared.ExtendWithSplitsOfSymbolicRefs(ctx, p.store, makeLogMessage, p.splitOpts...); err != nil {
		span.SetTag("error", true)
		logger.WithError(err).Warn("splitting symbolic references failed")
		return nil, err
	}

	if err := prepared.AssureOneNameHasOneEdit(); err != nil {
		return nil, err
	}

	span.SetTag("prepared_edits", len(prepared))
	logger.WithFields(logrus.Fields{
		"edits":          len(edits),
		"prepared_edits": len(prepared),
	}).Debug("prepared reference transaction")

	return prepared, nil
}
