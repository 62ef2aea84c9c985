// Package ingest collects the tables of one ingestion run.
//
// A Run owns its tables. Collect drives one season.Orchestrator per
// resource, each with a strategy that fetches and normalizes one season,
// and merges every completed resource into Run.Tables. Nothing outside the
// Run writes to the tables; once Collect returns they are read-only.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
	"github.com/Sternrassler/f1-results-pipeline/pkg/normalize"
	"github.com/Sternrassler/f1-results-pipeline/pkg/pagination"
	"github.com/Sternrassler/f1-results-pipeline/pkg/season"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoData is returned when a run or an on-demand fetch produced no rows.
var ErrNoData = errors.New("no data")

// ResourceReport summarises the collection of one resource.
type ResourceReport struct {
	Resource     Resource      `json:"resource"`
	Rows         int           `json:"rows"`
	Skipped      int           `json:"skipped_records"`
	FailedYears  []int         `json:"failed_years"`
	PartialYears []int         `json:"partial_years"`
	Partial      bool          `json:"partial"`
	Cancelled    bool          `json:"cancelled"`
	Duration     time.Duration `json:"duration"`
}

// Report summarises a run.
type Report struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Resources  []ResourceReport `json:"resources"`
}

// Cancelled reports whether any resource stopped early on cancellation.
func (r Report) Cancelled() bool {
	for _, rr := range r.Resources {
		if rr.Cancelled {
			return true
		}
	}
	return false
}

// Resource returns the report of one resource.
func (r Report) Resource(res Resource) (ResourceReport, bool) {
	for _, rr := range r.Resources {
		if rr.Resource == res {
			return rr, true
		}
	}
	return ResourceReport{}, false
}

// Run is one ingestion over a year range.
type Run struct {
	ID     uuid.UUID
	Range  season.YearRange
	Tables model.Tables
	Report Report

	src        *ergast.Source
	pageSize   int
	seasonOpts []season.Option
	logger     zerolog.Logger
}

// RunOption configures a Run.
type RunOption func(*Run)

// WithPageSize sets the page size of paginated resources.
func WithPageSize(n int) RunOption {
	return func(r *Run) { r.pageSize = n }
}

// WithSeasonOptions passes options to every orchestrator of the run.
func WithSeasonOptions(opts ...season.Option) RunOption {
	return func(r *Run) { r.seasonOpts = append(r.seasonOpts, opts...) }
}

// WithLogger sets the run logger.
func WithLogger(l zerolog.Logger) RunOption {
	return func(r *Run) { r.logger = l }
}

// NewRun validates rng and prepares a run over src.
func NewRun(src *ergast.Source, rng season.YearRange, opts ...RunOption) (*Run, error) {
	if src == nil {
		return nil, fmt.Errorf("source is required")
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	r := &Run{
		ID:       uuid.New(),
		Range:    rng,
		src:      src,
		pageSize: pagination.DefaultLimit,
		logger:   logging.NewLogger("ingest"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.ForRun(r.logger, r.ID.String())
	return r, nil
}

// Collect fetches resources (DefaultResources when none are given) and
// merges them into Tables. Failed seasons and cancellation are recorded in
// Report; ErrNoData is returned when every table is still empty afterwards.
func (r *Run) Collect(ctx context.Context, resources ...Resource) error {
	if len(resources) == 0 {
		resources = DefaultResources()
	}

	r.Report.StartedAt = time.Now()
	r.logger.Info().
		Str("range", r.Range.String()).
		Interface("resources", resources).
		Msg("Run started")

	for _, res := range resources {
		if ctx.Err() != nil {
			r.Report.Resources = append(r.Report.Resources, ResourceReport{Resource: res, Cancelled: true})
			continue
		}
		rr, err := r.collect(ctx, res)
		if err != nil {
			return err
		}
		r.Report.Resources = append(r.Report.Resources, rr)

		r.logger.Info().
			Str("resource", string(res)).
			Int("rows", rr.Rows).
			Int("skipped_records", rr.Skipped).
			Ints("failed_years", rr.FailedYears).
			Ints("partial_years", rr.PartialYears).
			Bool("cancelled", rr.Cancelled).
			Dur("duration", rr.Duration).
			Msg("Resource collected")
	}

	r.Report.FinishedAt = time.Now()

	if r.Tables.Empty() {
		r.logger.Error().Msg("Run produced no data")
		return ErrNoData
	}
	r.logger.Info().
		Int("rows", r.Tables.Rows()).
		Dur("duration", r.Report.FinishedAt.Sub(r.Report.StartedAt)).
		Bool("cancelled", r.Report.Cancelled()).
		Msg("Run finished")
	return nil
}

func (r *Run) orchestrator(res Resource) *season.Orchestrator {
	opts := append([]season.Option{season.WithLogger(r.logger)}, r.seasonOpts...)
	opts = append(opts, season.WithResource(string(res)))
	return season.New(opts...)
}

func (r *Run) collect(ctx context.Context, res Resource) (ResourceReport, error) {
	start := time.Now()
	t := newTally()
	o := r.orchestrator(res)
	rr := ResourceReport{Resource: res}

	var err error
	switch res {
	case ResourceChampion:
		r.Tables.Champions, err = gather(ctx, o, r.Range, ChampionStrategy{src: r.src, tally: t}, &rr)
	case ResourceConstructor:
		r.Tables.Constructors, err = gather(ctx, o, r.Range, ConstructorStrategy{src: r.src, tally: t}, &rr)
	case ResourceRaceResults:
		r.Tables.Winners, err = gather(ctx, o, r.Range, RaceResultStrategy{src: r.src, pageSize: r.pageSize, tally: t}, &rr)
	case ResourceStandings:
		r.Tables.Standings, err = gather(ctx, o, r.Range, StandingsStrategy{src: r.src, tally: t}, &rr)
	case ResourceQualifying:
		r.Tables.QualRace, err = gather(ctx, o, r.Range, QualifyingStrategy{src: r.src, pageSize: r.pageSize, tally: t}, &rr)
	case ResourceLaps:
		r.Tables.Laps, err = gather(ctx, o, r.Range, LapStrategy{src: r.src, pageSize: r.pageSize, tally: t, logger: r.logger}, &rr)
	case ResourceCircuits:
		r.Tables.Circuits = r.collectCircuits(ctx, t, &rr)
	default:
		return rr, fmt.Errorf("unknown resource %q", res)
	}
	if err != nil {
		return rr, err
	}

	rr.Skipped = int(t.skipped.Load())
	rr.PartialYears = t.partialYears()
	rr.Partial = rr.Partial || len(rr.PartialYears) > 0
	rr.Duration = time.Since(start)
	return rr, nil
}

func gather[T any](ctx context.Context, o *season.Orchestrator, rng season.YearRange, f season.YearFetcher[T], rr *ResourceReport) ([]T, error) {
	res, err := season.Collect(ctx, o, rng, f)
	if err != nil {
		return nil, err
	}
	rr.Rows = len(res.Records)
	rr.FailedYears = res.FailedYears()
	rr.Cancelled = res.Cancelled
	if res.Records == nil {
		return []T{}, nil
	}
	return res.Records, nil
}

// collectCircuits fetches the catalogue once; it does not depend on the range.
func (r *Run) collectCircuits(ctx context.Context, t *tally, rr *ResourceReport) []model.Circuit {
	res := r.src.Circuits(ctx, r.pageSize)
	if res.Partial() {
		rr.Partial = true
		rr.Cancelled = ctx.Err() != nil
		if !rr.Cancelled {
			r.logger.Warn().Err(res.Err).Int("pages", res.Pages).Msg("Circuit catalogue incomplete")
		}
	}
	rows, skipped := normalize.All(res.Items, normalize.Circuit)
	t.skip(skipped)
	rr.Rows = len(rows)
	return rows
}
