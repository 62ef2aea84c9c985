// Package normalize turns nested service records into flat rows.
//
// Every function is pure and returns (row, ok). A record that is missing a
// required field or carries an unparsable value yields ok == false and is
// skipped by the caller; nothing here returns an error or panics.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
)

// UnknownCode replaces a missing driver code.
const UnknownCode = "Unknown"

const dateLayout = "2006-01-02"

// DriverName joins given and family name with one space.
func DriverName(d ergast.Driver) (string, bool) {
	given := strings.TrimSpace(d.GivenName)
	family := strings.TrimSpace(d.FamilyName)
	switch {
	case given == "" && family == "":
		return "", false
	case given == "":
		return family, true
	case family == "":
		return given, true
	}
	return given + " " + family, true
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeAtSeasonEnd is year minus birth year, less one when the birth date
// falls after December 31 of year.
func AgeAtSeasonEnd(year int, dob time.Time) int {
	seasonEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	birth := time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	age := year - birth.Year()
	if birth.After(seasonEnd) {
		age--
	}
	return age
}

// ParseLapTime converts "m:ss.sss" (or "ss.sss") to milliseconds.
func ParseLapTime(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	minutes := 0.0
	secPart := s
	if m, sec, found := strings.Cut(s, ":"); found {
		v, err := strconv.Atoi(m)
		if err != nil || v < 0 {
			return 0, false
		}
		minutes = float64(v)
		secPart = sec
	}

	seconds, err := strconv.ParseFloat(secPart, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	return int64(math.Round((minutes*60 + seconds) * 1000)), true
}

// FormatMillis renders milliseconds as "m:ss.sss".
func FormatMillis(ms int64) string {
	m := ms / 60000
	rest := ms % 60000
	return strconv.FormatInt(m, 10) + ":" + pad(rest/1000, 2) + "." + pad(rest%1000, 3)
}

func pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Champion reads the first driver of the first standings list.
func Champion(year int, lists []ergast.StandingsList) (model.SeasonChampion, bool) {
	if len(lists) == 0 || len(lists[0].DriverStandings) == 0 {
		return model.SeasonChampion{}, false
	}
	d := lists[0].DriverStandings[0].Driver

	name, ok := DriverName(d)
	if !ok {
		return model.SeasonChampion{}, false
	}
	dob, ok := ParseDate(d.DateOfBirth)
	if !ok {
		return model.SeasonChampion{}, false
	}
	code := strings.TrimSpace(d.Code)
	if code == "" {
		code = UnknownCode
	}

	return model.SeasonChampion{
		Year:        year,
		Driver:      name,
		Code:        code,
		Nationality: d.Nationality,
		DateOfBirth: dob,
		Age:         AgeAtSeasonEnd(year, dob),
	}, true
}

// ConstructorTitle reads the first constructor of the first standings list.
func ConstructorTitle(year int, lists []ergast.StandingsList) (model.ConstructorTitle, bool) {
	if len(lists) == 0 || len(lists[0].ConstructorStandings) == 0 {
		return model.ConstructorTitle{}, false
	}
	name := strings.TrimSpace(lists[0].ConstructorStandings[0].Constructor.Name)
	if name == "" {
		return model.ConstructorTitle{}, false
	}
	return model.ConstructorTitle{Year: year, Constructor: name}, true
}

// RaceResult flattens one classified result.
func RaceResult(e ergast.RaceEntry) (model.RaceResult, bool) {
	year, ok := atoi(e.Race.Season)
	if !ok {
		return model.RaceResult{}, false
	}
	round, ok := atoi(e.Race.Round)
	if !ok {
		return model.RaceResult{}, false
	}
	position, ok := atoi(e.Result.Position)
	if !ok {
		return model.RaceResult{}, false
	}
	name, ok := DriverName(e.Result.Driver)
	if !ok {
		return model.RaceResult{}, false
	}

	return model.RaceResult{
		Year:        year,
		Round:       round,
		RaceName:    e.Race.RaceName,
		CircuitID:   e.Race.Circuit.CircuitID,
		CircuitName: e.Race.Circuit.CircuitName,
		Driver:      name,
		Constructor: e.Result.Constructor.Name,
		Position:    position,
	}, true
}

// Standing flattens one driver standing of the season carried by list.
func Standing(list ergast.StandingsList, s ergast.DriverStanding) (model.DriverStanding, bool) {
	year, ok := atoi(list.Season)
	if !ok {
		return model.DriverStanding{}, false
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(s.Points), 64)
	if err != nil {
		return model.DriverStanding{}, false
	}
	name, ok := DriverName(s.Driver)
	if !ok {
		return model.DriverStanding{}, false
	}
	// position is informative only; unclassified drivers have none
	position, _ := atoi(s.Position)

	return model.DriverStanding{
		Year:     year,
		Driver:   name,
		Position: position,
		Points:   points,
	}, true
}

// QualRace pairs grid and finishing position of one result.
func QualRace(e ergast.RaceEntry) (model.QualRaceRow, bool) {
	year, ok := atoi(e.Race.Season)
	if !ok {
		return model.QualRaceRow{}, false
	}
	round, ok := atoi(e.Race.Round)
	if !ok {
		return model.QualRaceRow{}, false
	}
	grid, ok := atoi(e.Result.Grid)
	if !ok {
		return model.QualRaceRow{}, false
	}
	finish, ok := atoi(e.Result.Position)
	if !ok {
		return model.QualRaceRow{}, false
	}
	name, ok := DriverName(e.Result.Driver)
	if !ok {
		return model.QualRaceRow{}, false
	}

	return model.QualRaceRow{
		Year:       year,
		Round:      round,
		Race:       e.Race.RaceName,
		Driver:     name,
		Qualifying: model.IntPtr(grid),
		Finish:     model.IntPtr(finish),
	}, true
}

// Lap flattens one lap timing.
func Lap(t ergast.LapTiming) (model.LapRecord, bool) {
	year, ok := atoi(t.Race.Season)
	if !ok {
		return model.LapRecord{}, false
	}
	round, ok := atoi(t.Race.Round)
	if !ok {
		return model.LapRecord{}, false
	}
	lap, ok := atoi(t.LapNumber)
	if !ok {
		return model.LapRecord{}, false
	}
	ms, ok := ParseLapTime(t.Timing.Time)
	if !ok {
		return model.LapRecord{}, false
	}
	if strings.TrimSpace(t.Timing.DriverID) == "" {
		return model.LapRecord{}, false
	}

	return model.LapRecord{
		Year:     year,
		Round:    round,
		Race:     t.Race.RaceName,
		DriverID: t.Timing.DriverID,
		Lap:      lap,
		Millis:   ms,
		Display:  strings.TrimSpace(t.Timing.Time),
	}, true
}

// Circuit flattens one catalogue entry.
func Circuit(c ergast.Circuit) (model.Circuit, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Location.Lat), 64)
	if err != nil {
		return model.Circuit{}, false
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(c.Location.Long), 64)
	if err != nil {
		return model.Circuit{}, false
	}
	if strings.TrimSpace(c.CircuitName) == "" {
		return model.Circuit{}, false
	}

	return model.Circuit{
		ID:        c.CircuitID,
		Name:      c.CircuitName,
		Latitude:  lat,
		Longitude: long,
		Locality:  c.Location.Locality,
		Country:   c.Location.Country,
	}, true
}

// All applies fn to every record and keeps the rows that normalized.
// skipped counts the records that did not.
func All[S, R any](records []S, fn func(S) (R, bool)) (rows []R, skipped int) {
	rows = make([]R, 0, len(records))
	for _, rec := range records {
		row, ok := fn(rec)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}
