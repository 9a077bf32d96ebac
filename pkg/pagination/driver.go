package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ram-tools/ram-client/pkg/client"
	"github.com/ram-tools/ram-client/pkg/model"
	"github.com/ram-tools/ram-client/pkg/retry"
)

// Prometheus metrics for pagination and retry behavior.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ram_pages_fetched_total",
		Help: "Total pages fetched successfully by resource",
	}, []string{"resource"})

	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ram_records_total",
		Help: "Total records normalized by kind",
	}, []string{"kind"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ram_retries_total",
		Help: "Total retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ram_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	fetchAbortsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ram_fetch_aborts_total",
		Help: "Total aborted fetch runs by error class",
	}, []string{"error_class"})
)

// Status is the terminal status of a fetch run.
type Status string

const (
	// StatusSuccess means the collection was enumerated to exhaustion.
	StatusSuccess Status = "success"

	// StatusAborted means the fetch stopped on a permanent failure or after
	// the retry attempt cap was exhausted.
	StatusAborted Status = "aborted"
)

// Result summarizes a finished fetch run: the records yielded so far, the
// pages actually retrieved, and the retry attempts consumed. On abort, Err
// carries the last classified failure and FailedCursor the cursor at which it
// occurred, enabling a future resumed run.
type Result struct {
	Records      []model.Record
	PagesFetched int
	Retries      int
	Status       Status
	Err          error
	FailedCursor int
}

// driver states.
type state int

const (
	stateFetching state = iota
	stateRetrying
	stateDone
)

// Driver walks a Source across all pages of its collection, consulting the
// retry policy on failure. One page fetch is in flight at a time; the backoff
// sleep in the retrying state is the only blocking point. A driver is
// single-use: once done it cannot be restarted.
type Driver struct {
	source Source
	policy retry.Policy
	logger zerolog.Logger

	// sleep is injectable for tests; the default honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error

	state     state
	cursor    int
	attempt   int
	result    Result
	closeOnce sync.Once
}

// NewDriver creates a driver for one fetch run over the given source.
func NewDriver(source Source, policy retry.Policy) *Driver {
	return &Driver{
		source: source,
		policy: policy,
		logger: log.With().
			Str("component", "pagination-driver").
			Str("resource", source.Resource()).
			Logger(),
		sleep:  sleepCtx,
		cursor: 1,
	}
}

// Run drives the source to exhaustion and returns the summary. The source is
// closed before Run returns, on every exit path.
func (d *Driver) Run(ctx context.Context) *Result {
	start := time.Now()
	for {
		if _, ok := d.Next(ctx); !ok {
			break
		}
	}

	res := d.Result()
	d.logger.Info().
		Str("status", string(res.Status)).
		Int("pages", res.PagesFetched).
		Int("records", len(res.Records)).
		Int("retries", res.Retries).
		Dur("duration", time.Since(start)).
		Msg("Fetch run finished")

	return res
}

// Next advances the driver by one successfully fetched page, returning its
// records. It returns (nil, false) once the driver is done; Result then
// reports the terminal status. Failed attempts are absorbed here: Next only
// returns after a success, an abort, or context cancellation.
func (d *Driver) Next(ctx context.Context) ([]model.Record, bool) {
	if d.state == stateDone {
		return nil, false
	}

	for {
		d.state = stateFetching
		d.attempt++

		page, err := d.source.FetchPage(ctx, d.cursor)
		if err == nil {
			return d.acceptPage(page), true
		}

		d.state = stateRetrying
		fe := client.AsFetchError(err)
		decision := d.policy.Decide(fe.Class, d.attempt, fe.WaitHint)

		if !decision.Retry {
			d.abort(fe)
			return nil, false
		}

		d.result.Retries++
		retriesTotal.WithLabelValues(string(fe.Class)).Inc()
		retryBackoffSeconds.WithLabelValues(string(fe.Class)).Observe(decision.Delay.Seconds())

		d.logger.Warn().
			Str("error_class", string(fe.Class)).
			Int("cursor", d.cursor).
			Int("attempt", d.attempt).
			Dur("backoff", decision.Delay).
			Msg("Page fetch failed, retrying after backoff")

		if err := d.sleep(ctx, decision.Delay); err != nil {
			d.result.FailedCursor = d.cursor
			fetchAbortsTotal.WithLabelValues(string(fe.Class)).Inc()
			d.logger.Warn().
				Int("cursor", d.cursor).
				Msg("Context cancelled during retry backoff")
			d.finish(StatusAborted, fmt.Errorf("%w: %v", client.ErrContextCancelled, err))
			return nil, false
		}
		// Same cursor: a retried page is never skipped or duplicated.
	}
}

// Result returns the run summary. Before the driver is done it reflects
// progress so far with an empty status.
func (d *Driver) Result() *Result {
	res := d.result
	return &res
}

// acceptPage records a successful page and advances the cursor, finishing
// the run when the page reports no next cursor.
func (d *Driver) acceptPage(page *Page) []model.Record {
	d.attempt = 0
	d.result.PagesFetched++
	d.result.Records = append(d.result.Records, page.Records...)
	pagesFetchedTotal.WithLabelValues(d.source.Resource()).Inc()
	for _, rec := range page.Records {
		recordsTotal.WithLabelValues(string(rec.Kind())).Inc()
	}

	d.logger.Debug().
		Int("cursor", d.cursor).
		Int("page_records", len(page.Records)).
		Int("total_pages", page.Info.Pages).
		Msg("Page fetched")

	if page.Info.Next == nil {
		d.finish(StatusSuccess, nil)
	} else {
		d.cursor = *page.Info.Next
	}

	return page.Records
}

// abort finishes the run carrying the last classified failure.
func (d *Driver) abort(fe *client.FetchError) {
	d.result.FailedCursor = d.cursor
	fetchAbortsTotal.WithLabelValues(string(fe.Class)).Inc()

	var err error = fe
	if fe.Class.Retryable() {
		err = fmt.Errorf("%w after %d attempts at cursor %d: %v",
			client.ErrRetryExhausted, d.attempt, d.cursor, fe)
	}

	d.logger.Error().
		Str("error_class", string(fe.Class)).
		Int("cursor", d.cursor).
		Int("attempts", d.attempt).
		Msg("Fetch aborted")

	d.finish(StatusAborted, err)
}

// finish transitions to the terminal state and releases the source. Release
// is guaranteed exactly once on every exit path.
func (d *Driver) finish(status Status, err error) {
	d.state = stateDone
	d.result.Status = status
	d.result.Err = err

	d.closeOnce.Do(func() {
		if cerr := d.source.Close(); cerr != nil {
			d.logger.Warn().Err(cerr).Msg("Source close failed")
		}
	})
}

// sleepCtx blocks for the given duration or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
