package ingest

import (
	"context"

	"github.com/Sternrassler/f1-results-pipeline/pkg/analytics"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
	"github.com/Sternrassler/f1-results-pipeline/pkg/normalize"
)

// DefaultRankSize is the length of the youngest and oldest champion lists.
const DefaultRankSize = 10

// Views are the derived tables the presentation layer renders.
type Views struct {
	Youngest     []model.SeasonChampion     `json:"youngest"`
	Oldest       []model.SeasonChampion     `json:"oldest"`
	Nationality  []analytics.NationalityRow `json:"nationality"`
	Constructors []analytics.TitleRow       `json:"constructors"`
	Drivers      []analytics.TitleRow       `json:"drivers"`
	Winners      []analytics.RaceWinner     `json:"winners"`
}

// Views derives the precomputed views from the run tables.
func (r *Run) Views() Views {
	youngest, oldest := analytics.YoungestOldest(r.Tables.Champions, DefaultRankSize)
	return Views{
		Youngest:     youngest,
		Oldest:       oldest,
		Nationality:  analytics.NationalityRollup(r.Tables.Champions),
		Constructors: analytics.ConstructorRollup(r.Tables.Constructors),
		Drivers:      analytics.DriverRollup(r.Tables.Champions),
		Winners:      analytics.RaceWinners(r.Tables.Winners),
	}
}

// LapSeries is the lap-by-lap timing of one race.
type LapSeries struct {
	Year     int                         `json:"year"`
	Round    int                         `json:"round"`
	Race     string                      `json:"race"`
	Laps     []model.LapRecord           `json:"laps"`
	Fastest  *analytics.FastestLapResult `json:"fastest,omitempty"`
	Complete bool                        `json:"complete"`
	Skipped  int                         `json:"skipped_records"`
}

// LapsForRace fetches every lap timing of one race on demand. A race with
// no usable timing returns ErrNoData; a fetch that ended early returns the
// laps it got with Complete == false.
func LapsForRace(ctx context.Context, src *ergast.Source, year, round, pageSize int) (LapSeries, error) {
	res := src.Laps(ctx, year, round, pageSize)
	if res.Pages == 0 && res.Err != nil {
		return LapSeries{}, res.Err
	}

	laps, skipped := normalize.All(res.Items, normalize.Lap)
	if len(laps) == 0 {
		return LapSeries{}, ErrNoData
	}

	series := LapSeries{
		Year:     year,
		Round:    round,
		Race:     laps[0].Race,
		Laps:     laps,
		Complete: res.Complete,
		Skipped:  skipped,
	}
	if best, ok := analytics.FastestLap(laps); ok {
		series.Fastest = &best
	}
	return series, nil
}
