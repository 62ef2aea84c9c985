package model

import (
	"sort"
	"strings"
)

// Filter selects rows.
type Filter[T any] func(T) bool

// Where returns the rows matching every filter, in input order.
func Where[T any](rows []T, filters ...Filter[T]) []T {
	out := make([]T, 0, len(rows))
next:
	for _, r := range rows {
		for _, f := range filters {
			if f != nil && !f(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// DriverSet is a selection of driver names. An empty set selects everyone.
type DriverSet map[string]struct{}

// NewDriverSet builds a set, ignoring blank names.
func NewDriverSet(names ...string) DriverSet {
	s := make(DriverSet, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Empty reports whether no driver is selected.
func (s DriverSet) Empty() bool {
	return len(s) == 0
}

// Has reports whether name is selected. An empty set selects every name.
func (s DriverSet) Has(name string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[name]
	return ok
}

// Names lists the selected drivers sorted.
func (s DriverSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ChampionFilter narrows the champions table. Zero fields do not filter.
type ChampionFilter struct {
	Drivers     DriverSet
	Nationality string
	Year        int
}

// ChampionsWhere applies f to rows.
func ChampionsWhere(rows []SeasonChampion, f ChampionFilter) []SeasonChampion {
	return Where(rows,
		func(c SeasonChampion) bool { return f.Drivers.Has(c.Driver) },
		func(c SeasonChampion) bool {
			return f.Nationality == "" || strings.EqualFold(c.Nationality, f.Nationality)
		},
		func(c SeasonChampion) bool { return f.Year == 0 || c.Year == f.Year },
	)
}

// StandingsForDrivers keeps the standings of the selected drivers.
func StandingsForDrivers(rows []DriverStanding, drivers DriverSet) []DriverStanding {
	return Where(rows, func(s DriverStanding) bool { return drivers.Has(s.Driver) })
}

// ResultsForDrivers keeps the results of the selected drivers.
func ResultsForDrivers(rows []RaceResult, drivers DriverSet) []RaceResult {
	return Where(rows, func(r RaceResult) bool { return drivers.Has(r.Driver) })
}

// QualRaceForYear keeps one season's rows of the selected drivers.
func QualRaceForYear(rows []QualRaceRow, year int, drivers DriverSet) []QualRaceRow {
	return Where(rows, func(r QualRaceRow) bool { return r.Year == year && drivers.Has(r.Driver) })
}

// LapsForRace keeps the laps of one race.
func LapsForRace(rows []LapRecord, year, round int) []LapRecord {
	return Where(rows, func(l LapRecord) bool { return l.Year == year && l.Round == round })
}

// Years lists the distinct years of rows in increasing order.
func Years[T any](rows []T, year func(T) int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range rows {
		y := year(r)
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Drivers lists the distinct driver names of rows sorted alphabetically.
func Drivers[T any](rows []T, driver func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		d := driver(r)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
