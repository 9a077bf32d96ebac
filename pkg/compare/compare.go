// Package compare runs the same collection fetch through multiple transports
// and reports call counts, record counts and elapsed time side by side.
//
// A lower round-trip count does not imply lower wall-clock work: combined
// queries reshape the work into larger responses. The report states measured
// numbers and leaves the conclusion to the reader.
package compare

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ram-tools/ram-client/pkg/pagination"
	"github.com/ram-tools/ram-client/pkg/retry"
)

// RunStats captures one transport's fetch run.
type RunStats struct {
	Transport   string
	Resource    string
	Records     int
	PageFetches int
	Retries     int
	Elapsed     time.Duration
	Status      pagination.Status
	Err         error
}

// Report is the outcome of comparing several runs.
type Report struct {
	Runs []RunStats
}

// Run drives one source to exhaustion under the given label and records its
// stats.
func Run(ctx context.Context, label string, source pagination.Source, policy retry.Policy) RunStats {
	log.Info().Str("transport", label).Str("resource", source.Resource()).Msg("Starting comparison run")

	resource := source.Resource()
	start := time.Now()
	res := pagination.NewDriver(source, policy).Run(ctx)

	return RunStats{
		Transport:   label,
		Resource:    resource,
		Records:     len(res.Records),
		PageFetches: res.PagesFetched,
		Retries:     res.Retries,
		Elapsed:     time.Since(start),
		Status:      res.Status,
		Err:         res.Err,
	}
}

// FewestCalls returns the successful run with the fewest page fetches, or
// nil when no run succeeded.
func (r *Report) FewestCalls() *RunStats {
	return r.pick(func(a, b *RunStats) bool {
		return a.PageFetches < b.PageFetches
	})
}

// Fastest returns the successful run with the lowest elapsed time, or nil
// when no run succeeded.
func (r *Report) Fastest() *RunStats {
	return r.pick(func(a, b *RunStats) bool {
		return a.Elapsed < b.Elapsed
	})
}

func (r *Report) pick(less func(a, b *RunStats) bool) *RunStats {
	var best *RunStats
	for i := range r.Runs {
		run := &r.Runs[i]
		if run.Status != pagination.StatusSuccess {
			continue
		}
		if best == nil || less(run, best) {
			best = run
		}
	}
	return best
}

// Render writes a plain-text comparison table.
func (r *Report) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-22s %-22s %8s %8s %8s %12s %s\n",
		"TRANSPORT", "RESOURCE", "RECORDS", "PAGES", "RETRIES", "ELAPSED", "STATUS"); err != nil {
		return err
	}

	for _, run := range r.Runs {
		status := string(run.Status)
		if run.Err != nil {
			status = fmt.Sprintf("%s (%v)", run.Status, run.Err)
		}
		if _, err := fmt.Fprintf(w, "%-22s %-22s %8d %8d %8d %12s %s\n",
			run.Transport, run.Resource, run.Records, run.PageFetches,
			run.Retries, run.Elapsed.Round(time.Millisecond), status); err != nil {
			return err
		}
	}

	if best := r.FewestCalls(); best != nil {
		if _, err := fmt.Fprintf(w, "\nFewest round trips: %s (%d pages)\n", best.Transport, best.PageFetches); err != nil {
			return err
		}
	}
	if best := r.Fastest(); best != nil {
		if _, err := fmt.Fprintf(w, "Fastest: %s (%s)\n", best.Transport, best.Elapsed.Round(time.Millisecond)); err != nil {
			return err
		}
	}

	return nil
}
