package refstore

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
)

// Instrumented is a RefStore recording Prometheus metrics about the lookups
// performed against the wrapped store.
type Instrumented struct {
	store reftx.RefStore

	lookupsTotal  *prometheus.CounterVec
	lookupLatency prometheus.Histogram
}

// NewInstrumented wraps the given store.
func NewInstrumented(store reftx.RefStore) *Instrumented {
	return &Instrumented{
		store: store,
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reftx_refstore_lookups_total",
				Help: "Total number of reference lookups by result",
			},
			[]string{"result"},
		),
		lookupLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "reftx_refstore_lookup_latency_seconds",
				Help: "Latency of reference lookups",
			},
		),
	}
}

// FindOneExisting looks up the reference in the wrapped store.
func (i *Instrumented) FindOneExisting(ctx context.Context, name git.ReferenceName) (git.Target, error) {
	start := time.Now()
	target, err := i.store.FindOneExisting(ctx, name)
	i.lookupLatency.Observe(time.Since(start).Seconds())

	i.lookupsTotal.WithLabelValues(lookupResult(target, err)).Inc()

	return target, err
}

func lookupResult(target git.Target, err error) string {
	if err != nil {
		if errors.Is(err, git.ErrReferenceNotFound) {
			return "not_found"
		}
		return "error"
	}

	switch target.(type) {
	case git.PeeledTarget:
		return "peeled"
	case git.SymbolicTarget:
		return "symbolic"
	default:
		return "error"
	}
}

// Describe is used to describe Prometheus metrics.
func (i *Instrumented) Describe(descs chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(i, descs)
}

// Collect is used to collect Prometheus metrics.
func (i *Instrumented) Collect(metrics chan<- prometheus.Metric) {
	i.lookupsTotal.Collect(metrics)
	i.lookupLatency.Collect(metrics)
}
