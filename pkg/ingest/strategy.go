package ingest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
	"github.com/Sternrassler/f1-results-pipeline/pkg/normalize"
	"github.com/Sternrassler/f1-results-pipeline/pkg/season"
	"github.com/rs/zerolog"
)

// tally is shared by the workers of one resource. It records records that
// did not normalize and seasons whose paginated fetch ended early.
type tally struct {
	skipped atomic.Int64

	mu      sync.Mutex
	partial map[int]struct{}
}

func newTally() *tally {
	return &tally{partial: make(map[int]struct{})}
}

func (t *tally) skip(n int) {
	t.skipped.Add(int64(n))
}

func (t *tally) markPartial(year int) {
	t.mu.Lock()
	t.partial[year] = struct{}{}
	t.mu.Unlock()
}

func (t *tally) partialYears() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	years := make([]int, 0, len(t.partial))
	for y := range t.partial {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ChampionStrategy fetches the drivers' champion of a season.
type ChampionStrategy struct {
	src   *ergast.Source
	tally *tally
}

// FetchYear implements season.YearFetcher.
func (s ChampionStrategy) FetchYear(ctx context.Context, year int) ([]model.SeasonChampion, error) {
	lists, err := s.src.DriverStandings(ctx, year, 1)
	if err != nil {
		return nil, err
	}
	row, ok := normalize.Champion(year, lists)
	if !ok {
		if len(lists) > 0 {
			s.tally.skip(1)
		}
		return nil, nil
	}
	return []model.SeasonChampion{row}, nil
}

// ConstructorStrategy fetches the constructors' champion of a season.
type ConstructorStrategy struct {
	src   *ergast.Source
	tally *tally
}

// FetchYear implements season.YearFetcher.
func (s ConstructorStrategy) FetchYear(ctx context.Context, year int) ([]model.ConstructorTitle, error) {
	lists, err := s.src.ConstructorStandings(ctx, year, 1)
	if err != nil {
		return nil, err
	}
	row, ok := normalize.ConstructorTitle(year, lists)
	if !ok {
		if len(lists) > 0 {
			s.tally.skip(1)
		}
		return nil, nil
	}
	return []model.ConstructorTitle{row}, nil
}

// RaceResultStrategy fetches the winner of every race of a season.
type RaceResultStrategy struct {
	src      *ergast.Source
	pageSize int
	tally    *tally
}

// FetchYear implements season.YearFetcher.
func (s RaceResultStrategy) FetchYear(ctx context.Context, year int) ([]model.RaceResult, error) {
	res := s.src.Results(ctx, year, 1, s.pageSize)
	if err := firstPageError(res.Pages, res.Err); err != nil {
		return nil, err
	}
	if res.Partial() {
		s.tally.markPartial(year)
	}
	rows, skipped := normalize.All(res.Items, normalize.RaceResult)
	s.tally.skip(skipped)
	return rows, nil
}

// StandingsStrategy fetches the final points of every driver of a season.
type StandingsStrategy struct {
	src   *ergast.Source
	tally *tally
}

// FetchYear implements season.YearFetcher.
func (s StandingsStrategy) FetchYear(ctx context.Context, year int) ([]model.DriverStanding, error) {
	lists, err := s.src.DriverStandings(ctx, year, 0)
	if err != nil {
		return nil, err
	}
	var rows []model.DriverStanding
	for _, list := range lists {
		if list.Season == "" {
			list.Season = strconv.Itoa(year)
		}
		for _, st := range list.DriverStandings {
			row, ok := normalize.Standing(list, st)
			if !ok {
				s.tally.skip(1)
				continue
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// QualifyingStrategy fetches grid and finishing position of every result
// of a season.
type QualifyingStrategy struct {
	src      *ergast.Source
	pageSize int
	tally    *tally
}

// FetchYear implements season.YearFetcher.
func (s QualifyingStrategy) FetchYear(ctx context.Context, year int) ([]model.QualRaceRow, error) {
	res := s.src.Results(ctx, year, 0, s.pageSize)
	if err := firstPageError(res.Pages, res.Err); err != nil {
		return nil, err
	}
	if res.Partial() {
		s.tally.markPartial(year)
	}
	rows, skipped := normalize.All(res.Items, normalize.QualRace)
	s.tally.skip(skipped)
	return rows, nil
}

// LapStrategy fetches the schedule of a season and then every lap timing
// of every race.
type LapStrategy struct {
	src      *ergast.Source
	pageSize int
	tally    *tally
	logger   zerolog.Logger
}

// FetchYear implements season.YearFetcher.
func (s LapStrategy) FetchYear(ctx context.Context, year int) ([]model.LapRecord, error) {
	races, err := s.src.Schedule(ctx, year)
	if err != nil {
		return nil, err
	}

	var rows []model.LapRecord
	for _, race := range races {
		if ctx.Err() != nil {
			s.tally.markPartial(year)
			break
		}
		round, err := strconv.Atoi(race.Round)
		if err != nil {
			s.tally.skip(1)
			continue
		}
		res := s.src.Laps(ctx, year, round, s.pageSize)
		if res.Partial() {
			s.tally.markPartial(year)
			l := logging.ForRace(s.logger, year, round)
			l.Warn().Err(res.Err).Msg("Lap data incomplete")
		}
		laps, skipped := normalize.All(res.Items, normalize.Lap)
		s.tally.skip(skipped)
		rows = append(rows, laps...)
	}
	return rows, nil
}

// firstPageError turns a fetch that failed before any page into a season
// failure. Later page failures keep the accumulated records.
func firstPageError(pages int, err error) error {
	if pages == 0 && err != nil {
		return err
	}
	return nil
}

var (
	_ season.YearFetcher[model.SeasonChampion]   = ChampionStrategy{}
	_ season.YearFetcher[model.ConstructorTitle] = ConstructorStrategy{}
	_ season.YearFetcher[model.RaceResult]       = RaceResultStrategy{}
	_ season.YearFetcher[model.DriverStanding]   = StandingsStrategy{}
	_ season.YearFetcher[model.QualRaceRow]      = QualifyingStrategy{}
	_ season.YearFetcher[model.LapRecord]        = LapStrategy{}
)
