package season

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultDelay is the inter-call delay between two years of one worker.
const DefaultDelay = ratelimit.DefaultInterval

// ErrPanic wraps a panic recovered from a YearFetcher.
var ErrPanic = errors.New("year fetch panicked")

var yearsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "f1_years_processed_total",
	Help: "Total number of seasons processed by resource and outcome",
}, []string{"resource", "outcome"})

// YearFetcher fetches every record of one season.
type YearFetcher[T any] interface {
	FetchYear(ctx context.Context, year int) ([]T, error)
}

// YearFunc adapts a function to YearFetcher.
type YearFunc[T any] func(ctx context.Context, year int) ([]T, error)

// FetchYear implements YearFetcher.
func (f YearFunc[T]) FetchYear(ctx context.Context, year int) ([]T, error) {
	return f(ctx, year)
}

// YearFailure records a skipped season.
type YearFailure struct {
	Year int
	Err  error
}

func (f YearFailure) Error() string {
	return fmt.Sprintf("season %d: %v", f.Year, f.Err)
}

// Result holds the merged records of a range.
type Result[T any] struct {
	Records   []T
	Succeeded []int
	Failures  []YearFailure
	Cancelled bool
}

// Empty reports whether the run produced no records at all.
func (r Result[T]) Empty() bool {
	return len(r.Records) == 0
}

// FailedYears lists the skipped seasons in increasing order.
func (r Result[T]) FailedYears() []int {
	years := make([]int, len(r.Failures))
	for i, f := range r.Failures {
		years[i] = f.Year
	}
	return years
}

// Orchestrator drives a YearFetcher across a YearRange.
type Orchestrator struct {
	delay       time.Duration
	factory     ratelimit.Factory
	concurrency int
	resource    string
	logger      zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDelay sets the inter-call delay. Ignored when WithLimiterFactory is also given.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithLimiterFactory replaces the interval limiter, e.g. with ratelimit.UnlimitedFactory in tests.
func WithLimiterFactory(f ratelimit.Factory) Option {
	return func(o *Orchestrator) { o.factory = f }
}

// WithConcurrency sets the number of workers. Values below 2 run sequentially.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithResource labels logs and metrics.
func WithResource(name string) Option {
	return func(o *Orchestrator) { o.resource = name }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator. Without options it runs sequentially with DefaultDelay.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		delay:       DefaultDelay,
		concurrency: 1,
		resource:    "unknown",
		logger:      logging.NewLogger("season"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.factory == nil {
		o.factory = ratelimit.IntervalFactory(o.delay)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	o.logger = logging.ForResource(o.logger, o.resource)
	return o
}

// yearOutcome is the result of one season.
type yearOutcome[T any] struct {
	year    int
	records []T
	err     error
	done    bool
}

// Collect runs f once per season of rng and merges the records in year order.
// The returned error is non-nil only for an invalid range; per-year failures
// and cancellation are reported in the Result.
func Collect[T any](ctx context.Context, o *Orchestrator, rng YearRange, f YearFetcher[T]) (Result[T], error) {
	if err := rng.Validate(); err != nil {
		return Result[T]{}, err
	}

	start := time.Now()
	years := rng.Years()

	var outcomes []yearOutcome[T]
	if o.concurrency > 1 && len(years) > 1 {
		outcomes = collectPool(ctx, o, years, f)
	} else {
		outcomes = collectSequential(ctx, o, years, f)
	}

	var res Result[T]
	for _, out := range outcomes {
		switch {
		case !out.done:
			res.Cancelled = true
		case out.err != nil:
			res.Failures = append(res.Failures, YearFailure{Year: out.year, Err: out.err})
		default:
			res.Succeeded = append(res.Succeeded, out.year)
			res.Records = append(res.Records, out.records...)
		}
	}
	if ctx.Err() != nil && len(res.Succeeded)+len(res.Failures) < len(years) {
		res.Cancelled = true
	}

	o.logger.Info().
		Str("range", rng.String()).
		Int("records", len(res.Records)).
		Int("succeeded", len(res.Succeeded)).
		Ints("failed_years", res.FailedYears()).
		Bool("cancelled", res.Cancelled).
		Dur("duration", time.Since(start)).
		Msg("Season range collected")

	return res, nil
}

func collectSequential[T any](ctx context.Context, o *Orchestrator, years []int, f YearFetcher[T]) []yearOutcome[T] {
	limiter := o.factory()
	outcomes := make([]yearOutcome[T], len(years))
	for i, year := range years {
		outcomes[i].year = year
	}

	for i, year := range years {
		out, ok := runYear(ctx, o, limiter, year, f)
		if !ok {
			break
		}
		outcomes[i] = out
	}
	return outcomes
}

func collectPool[T any](ctx context.Context, o *Orchestrator, years []int, f YearFetcher[T]) []yearOutcome[T] {
	outcomes := make([]yearOutcome[T], len(years))
	for i, year := range years {
		outcomes[i].year = year
	}

	queue := make(chan int, len(years))
	for i := range years {
		queue <- i
	}
	close(queue)

	workers := o.concurrency
	if workers > len(years) {
		workers = len(years)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			limiter := o.factory()
			processed := 0
			for idx := range queue {
				out, ok := runYear(ctx, o, limiter, years[idx], f)
				if !ok {
					o.logger.Debug().
						Int("worker_id", workerID).
						Int("years_processed", processed).
						Msg("Worker stopping (context cancelled)")
					return
				}
				// each worker writes only the slots it dequeued
				outcomes[idx] = out
				processed++
			}
			o.logger.Debug().
				Int("worker_id", workerID).
				Int("years_processed", processed).
				Msg("Worker completed")
		}(w)
	}
	wg.Wait()

	return outcomes
}

// runYear waits for the limiter and fetches one season. The limiter rides on
// the fetch context so every further request of the season waits on it too.
// ok is false when the context ended before or during the fetch; the season
// then counts as not run.
func runYear[T any](ctx context.Context, o *Orchestrator, limiter ratelimit.Limiter, year int, f YearFetcher[T]) (yearOutcome[T], bool) {
	if ctx.Err() != nil {
		return yearOutcome[T]{year: year}, false
	}
	if err := limiter.Wait(ctx); err != nil {
		return yearOutcome[T]{year: year}, false
	}

	records, err := safeFetch(ratelimit.NewContext(ctx, ratelimit.Primed(limiter)), f, year)
	if err != nil && ctx.Err() != nil {
		yearsProcessedTotal.WithLabelValues(o.resource, "cancelled").Inc()
		return yearOutcome[T]{year: year}, false
	}

	out := yearOutcome[T]{year: year, records: records, err: err, done: true}
	if err != nil {
		yearsProcessedTotal.WithLabelValues(o.resource, "failed").Inc()
		l := logging.ForRace(o.logger, year, 0)
		l.Warn().Err(err).Msg("Season skipped")
		return out, true
	}

	outcome := "ok"
	if len(records) == 0 {
		outcome = "empty"
	}
	yearsProcessedTotal.WithLabelValues(o.resource, outcome).Inc()
	o.logger.Debug().Int("year", year).Int("records", len(records)).Msg("Season fetched")
	return out, true
}

func safeFetch[T any](ctx context.Context, f YearFetcher[T], year int) (records []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return f.FetchYear(ctx, year)
}
