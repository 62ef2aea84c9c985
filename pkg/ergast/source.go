package ergast

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sternrassler/f1-results-pipeline/pkg/client"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/pagination"
	"github.com/rs/zerolog"
)

// bulkLimit is the page size for endpoints fetched in a single request.
const bulkLimit = 1000

// Fetcher is the transport a Source needs. *client.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

var _ Fetcher = (*client.Client)(nil)

// DefaultMaxPages caps one paginated walk so a service that never reports a
// total nor returns an empty page cannot keep a season busy forever.
const DefaultMaxPages = 1000

// Source issues the endpoint calls of the statistics service.
type Source struct {
	fetcher  Fetcher
	maxPages int
	logger   zerolog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithMaxPages sets the page cap of every paginated walk; 0 disables it.
func WithMaxPages(n int) SourceOption {
	return func(s *Source) { s.maxPages = n }
}

// NewSource creates a Source over f.
func NewSource(f Fetcher, opts ...SourceOption) *Source {
	s := &Source{
		fetcher:  f,
		maxPages: DefaultMaxPages,
		logger:   logging.NewLogger("ergast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) get(ctx context.Context, path string, offset, limit int) (MRData, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var resp Response
	if err := s.fetcher.GetJSON(ctx, path, q, &resp); err != nil {
		return MRData{}, fmt.Errorf("get %s: %w", path, err)
	}
	return resp.MRData, nil
}

func standingsPath(year int, kind string, position int) string {
	if position > 0 {
		return fmt.Sprintf("/%d/%s/%d.json", year, kind, position)
	}
	return fmt.Sprintf("/%d/%s.json", year, kind)
}

func resultsPath(year, position int) string {
	if position > 0 {
		return fmt.Sprintf("/%d/results/%d.json", year, position)
	}
	return fmt.Sprintf("/%d/results.json", year)
}

// DriverStandings returns the final driver standings of year. Position 0
// returns every classified driver, any other value only that position.
func (s *Source) DriverStandings(ctx context.Context, year, position int) ([]StandingsList, error) {
	data, err := s.get(ctx, standingsPath(year, "driverStandings", position), 0, bulkLimit)
	if err != nil {
		return nil, err
	}
	if data.StandingsTable == nil {
		return nil, nil
	}
	return data.StandingsTable.StandingsLists, nil
}

// ConstructorStandings returns the final constructor standings of year.
func (s *Source) ConstructorStandings(ctx context.Context, year, position int) ([]StandingsList, error) {
	data, err := s.get(ctx, standingsPath(year, "constructorStandings", position), 0, bulkLimit)
	if err != nil {
		return nil, err
	}
	if data.StandingsTable == nil {
		return nil, nil
	}
	return data.StandingsTable.StandingsLists, nil
}

// Schedule returns the races of year without results.
func (s *Source) Schedule(ctx context.Context, year int) ([]Race, error) {
	data, err := s.get(ctx, fmt.Sprintf("/%d.json", year), 0, bulkLimit)
	if err != nil {
		return nil, err
	}
	if data.RaceTable == nil {
		return nil, nil
	}
	return data.RaceTable.Races, nil
}

// ResultsPage fetches one page of race results.
func (s *Source) ResultsPage(ctx context.Context, year, position, offset, limit int) (pagination.Page[RaceEntry], error) {
	data, err := s.get(ctx, resultsPath(year, position), offset, limit)
	if err != nil {
		return pagination.Page[RaceEntry]{}, err
	}
	page := newPage[RaceEntry](data)
	if data.RaceTable == nil {
		return page, nil
	}
	for _, race := range data.RaceTable.Races {
		results := race.Results
		race.Results = nil
		for _, r := range results {
			page.Items = append(page.Items, RaceEntry{Race: race, Result: r})
		}
	}
	return page, nil
}

// Results walks every page of race results of year. Position 0 returns
// all finishers, 1 only the winners.
func (s *Source) Results(ctx context.Context, year, position, pageSize int) pagination.Result[RaceEntry] {
	return walk(ctx, s, "results", pageSize,
		func(ctx context.Context, offset, limit int) (pagination.Page[RaceEntry], error) {
			return s.ResultsPage(ctx, year, position, offset, limit)
		})
}

// LapsPage fetches one page of lap timings of a race.
func (s *Source) LapsPage(ctx context.Context, year, round, offset, limit int) (pagination.Page[LapTiming], error) {
	data, err := s.get(ctx, fmt.Sprintf("/%d/%d/laps.json", year, round), offset, limit)
	if err != nil {
		return pagination.Page[LapTiming]{}, err
	}
	page := newPage[LapTiming](data)
	if data.RaceTable == nil || len(data.RaceTable.Races) == 0 {
		return page, nil
	}
	race := data.RaceTable.Races[0]
	laps := race.Laps
	race.Laps = nil
	for _, lap := range laps {
		for _, t := range lap.Timings {
			page.Items = append(page.Items, LapTiming{Race: race, LapNumber: lap.Number, Timing: t})
		}
	}
	return page, nil
}

// Laps walks every page of lap timings of one race.
func (s *Source) Laps(ctx context.Context, year, round, pageSize int) pagination.Result[LapTiming] {
	return walk(ctx, s, "laps", pageSize,
		func(ctx context.Context, offset, limit int) (pagination.Page[LapTiming], error) {
			return s.LapsPage(ctx, year, round, offset, limit)
		})
}

// CircuitsPage fetches one page of the circuit catalogue.
func (s *Source) CircuitsPage(ctx context.Context, offset, limit int) (pagination.Page[Circuit], error) {
	data, err := s.get(ctx, "/circuits.json", offset, limit)
	if err != nil {
		return pagination.Page[Circuit]{}, err
	}
	page := newPage[Circuit](data)
	if data.CircuitTable != nil {
		page.Items = data.CircuitTable.Circuits
	}
	return page, nil
}

// Circuits walks the circuit catalogue.
func (s *Source) Circuits(ctx context.Context, pageSize int) pagination.Result[Circuit] {
	return walk(ctx, s, "circuits", pageSize, s.CircuitsPage)
}

func walk[T any](ctx context.Context, s *Source, resource string, pageSize int, fn pagination.PageFunc[T]) pagination.Result[T] {
	res := pagination.FetchAll(ctx, pagination.Options{
		Limit:    pageSize,
		Resource: resource,
		MaxPages: s.maxPages,
	}, fn)
	if errors.Is(res.Err, pagination.ErrMaxPages) {
		s.logger.Warn().
			Str("resource", resource).
			Int("max_pages", s.maxPages).
			Int("page_size", pageSize).
			Msg("Page cap reached; raise max_pages or page_size")
	}
	return res
}

func newPage[T any](data MRData) pagination.Page[T] {
	total, ok := data.TotalCount()
	return pagination.Page[T]{Total: total, TotalKnown: ok}
}
