// Package rounds aligns a driver's per-round rows to the full season.
//
// A driver who missed a race has no row for that round. Complete fills the
// gaps so that every driver of a season has exactly one row per round,
// from 1 up to the highest round any driver reached.
package rounds

import "github.com/Sternrassler/f1-results-pipeline/pkg/model"

// MaxRound is the highest round observed in year across all drivers.
func MaxRound(rows []model.QualRaceRow, year int) int {
	last := 0
	for _, r := range rows {
		if r.Year == year && r.Round > last {
			last = r.Round
		}
	}
	return last
}

// Complete returns driver's rows of year for rounds 1..MaxRound in
// ascending order. Rounds without a row get nil positions; their race name
// is taken from any other driver's row of that round.
func Complete(rows []model.QualRaceRow, year int, driver string) []model.QualRaceRow {
	last := MaxRound(rows, year)
	if last == 0 {
		return []model.QualRaceRow{}
	}

	races := make(map[int]string, last)
	own := make(map[int]model.QualRaceRow)
	for _, r := range rows {
		if r.Year != year || r.Round < 1 {
			continue
		}
		if _, ok := races[r.Round]; !ok && r.Race != "" {
			races[r.Round] = r.Race
		}
		if r.Driver == driver {
			if _, dup := own[r.Round]; !dup {
				own[r.Round] = r
			}
		}
	}

	out := make([]model.QualRaceRow, 0, last)
	for round := 1; round <= last; round++ {
		if r, ok := own[round]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, model.QualRaceRow{
			Year:   year,
			Round:  round,
			Race:   races[round],
			Driver: driver,
		})
	}
	return out
}

// CompleteAll completes every driver in drivers. An empty drivers list
// means every driver of year, in order of first appearance.
func CompleteAll(rows []model.QualRaceRow, year int, drivers []string) []model.QualRaceRow {
	if len(drivers) == 0 {
		drivers = DriversOf(rows, year)
	}
	var out []model.QualRaceRow
	for _, d := range drivers {
		out = append(out, Complete(rows, year, d)...)
	}
	return out
}

// DriversOf lists the drivers of year in order of first appearance.
func DriversOf(rows []model.QualRaceRow, year int) []string {
	seen := make(map[string]struct{})
	var drivers []string
	for _, r := range model.QualRaceForYear(rows, year, nil) {
		if _, ok := seen[r.Driver]; ok {
			continue
		}
		seen[r.Driver] = struct{}{}
		drivers = append(drivers, r.Driver)
	}
	return drivers
}
