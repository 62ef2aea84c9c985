package analytics

import (
	"sort"

	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
	"github.com/Sternrassler/f1-results-pipeline/pkg/normalize"
)

// Point is a driver's points total in one season.
type Point struct {
	Year   int     `json:"year"`
	Points float64 `json:"points"`
}

// Series is the year-ordered points progression of one driver.
type Series struct {
	Driver string  `json:"driver"`
	Points []Point `json:"points"`
}

// StandingsProgression builds one series per selected driver, ordered by
// driver name. An empty selection includes every driver.
func StandingsProgression(standings []model.DriverStanding, drivers model.DriverSet) []Series {
	byDriver := make(map[string][]Point)
	for _, s := range model.StandingsForDrivers(standings, drivers) {
		byDriver[s.Driver] = append(byDriver[s.Driver], Point{Year: s.Year, Points: s.Points})
	}

	out := make([]Series, 0, len(byDriver))
	for d, pts := range byDriver {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })
		out = append(out, Series{Driver: d, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Driver < out[j].Driver })
	return out
}

// FastestLapResult is the quickest lap of a set.
type FastestLapResult struct {
	Lap     model.LapRecord `json:"lap"`
	Display string          `json:"display"`
}

// FastestLap returns the lap with the lowest time. ok is false for an
// empty input. Ties keep the earliest lap in input order.
func FastestLap(laps []model.LapRecord) (FastestLapResult, bool) {
	if len(laps) == 0 {
		return FastestLapResult{}, false
	}
	best := laps[0]
	for _, l := range laps[1:] {
		if l.Millis < best.Millis {
			best = l
		}
	}
	return FastestLapResult{Lap: best, Display: normalize.FormatMillis(best.Millis)}, true
}
