// Package ergast holds the wire types of the Ergast-compatible statistics
// service and the endpoint calls that fetch them.
//
// The service delivers every numeric field as a JSON string, so the types
// keep them as strings; conversion happens in package normalize where a
// malformed value skips the record instead of failing the decode.
package ergast

import "strconv"

// Response is the top-level envelope.
type Response struct {
	MRData MRData `json:"MRData"`
}

// MRData carries pagination counters and exactly one table.
type MRData struct {
	Series string `json:"series,omitempty"`
	URL    string `json:"url,omitempty"`
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
	Total  string `json:"total"`

	StandingsTable *StandingsTable `json:"StandingsTable,omitempty"`
	RaceTable      *RaceTable      `json:"RaceTable,omitempty"`
	CircuitTable   *CircuitTable   `json:"CircuitTable,omitempty"`
}

// TotalCount parses the server-reported total. ok is false when the total
// is absent or not a non-negative integer.
func (m MRData) TotalCount() (int, bool) {
	n, err := strconv.Atoi(m.Total)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type StandingsTable struct {
	Season         string          `json:"season,omitempty"`
	Round          string          `json:"round,omitempty"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText,omitempty"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors,omitempty"`
}

type ConstructorStanding struct {
	Position     string      `json:"position"`
	PositionText string      `json:"positionText,omitempty"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}

type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber,omitempty"`
	Code            string `json:"code,omitempty"`
	URL             string `json:"url,omitempty"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

type Constructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url,omitempty"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality,omitempty"`
}

type RaceTable struct {
	Season string `json:"season,omitempty"`
	Round  string `json:"round,omitempty"`
	Races  []Race `json:"Races"`
}

// Race is one grand prix. Depending on the endpoint it carries Results or
// Laps; the schedule endpoint carries neither.
type Race struct {
	Season   string   `json:"season"`
	Round    string   `json:"round"`
	URL      string   `json:"url,omitempty"`
	RaceName string   `json:"raceName"`
	Circuit  Circuit  `json:"Circuit"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time,omitempty"`
	Results  []Result `json:"Results,omitempty"`
	Laps     []Lap    `json:"Laps,omitempty"`
}

type Result struct {
	Number       string      `json:"number,omitempty"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText,omitempty"`
	Points       string      `json:"points,omitempty"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid"`
	LapsDone     string      `json:"laps,omitempty"`
	Status       string      `json:"status,omitempty"`
	Time         *RaceTime   `json:"Time,omitempty"`
	FastestLap   *FastestLap `json:"FastestLap,omitempty"`
}

type RaceTime struct {
	Millis string `json:"millis,omitempty"`
	Time   string `json:"time"`
}

type FastestLap struct {
	Rank string    `json:"rank,omitempty"`
	Lap  string    `json:"lap"`
	Time *RaceTime `json:"Time,omitempty"`
}

type Lap struct {
	Number  string   `json:"number"`
	Timings []Timing `json:"Timings"`
}

type Timing struct {
	DriverID string `json:"driverId"`
	Position string `json:"position,omitempty"`
	Time     string `json:"time"`
}

type CircuitTable struct {
	Circuits []Circuit `json:"Circuits"`
}

type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	URL         string   `json:"url,omitempty"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// RaceEntry is one result together with the race it belongs to. Results
// pages may split a race across two pages, so paginated results are
// flattened to entries. Race.Results is always empty.
type RaceEntry struct {
	Race   Race
	Result Result
}

// LapTiming is one driver's time on one lap. Lap pages count timings, not
// laps, so paginated laps are flattened to timings.
type LapTiming struct {
	Race      Race
	LapNumber string
	Timing    Timing
}
