// Package model defines the flat tables produced by an ingestion run.
//
// Rows are plain values. Once a run has produced them nothing mutates them;
// filters always return new slices.
package model

import "time"

// SeasonChampion is the drivers' champion of one season.
type SeasonChampion struct {
	Year        int       `json:"year"`
	Driver      string    `json:"driver"`
	Code        string    `json:"code"`
	Nationality string    `json:"nationality"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Age         int       `json:"age"`
}

// ConstructorTitle is the constructors' champion of one season.
type ConstructorTitle struct {
	Year        int    `json:"year"`
	Constructor string `json:"constructor"`
}

// RaceResult is one classified finish.
type RaceResult struct {
	Year        int    `json:"year"`
	Round       int    `json:"round"`
	RaceName    string `json:"race_name"`
	CircuitID   string `json:"circuit_id"`
	CircuitName string `json:"circuit_name,omitempty"`
	Driver      string `json:"driver"`
	Constructor string `json:"constructor,omitempty"`
	Position    int    `json:"position"`
}

// DriverStanding is a driver's final points total of one season.
type DriverStanding struct {
	Year     int     `json:"year"`
	Driver   string  `json:"driver"`
	Position int     `json:"position"`
	Points   float64 `json:"points"`
}

// LapRecord is one driver's time on one lap.
type LapRecord struct {
	Year     int    `json:"year"`
	Round    int    `json:"round"`
	Race     string `json:"race"`
	DriverID string `json:"driver_id"`
	Lap      int    `json:"lap"`
	Millis   int64  `json:"millis"`
	Display  string `json:"time"`
}

// Circuit is one venue of the catalogue.
type Circuit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Locality  string  `json:"locality"`
	Country   string  `json:"country"`
}

// QualRaceRow pairs grid and finishing position of a driver in one round.
// Nil positions mean the driver has no row for that round.
type QualRaceRow struct {
	Year       int    `json:"year"`
	Round      int    `json:"round"`
	Race       string `json:"race"`
	Driver     string `json:"driver"`
	Qualifying *int   `json:"qualifying_position"`
	Finish     *int   `json:"race_position"`
}

// PositionsGained is grid minus finish. ok is false when either is missing.
func (r QualRaceRow) PositionsGained() (int, bool) {
	if r.Qualifying == nil || r.Finish == nil {
		return 0, false
	}
	return *r.Qualifying - *r.Finish, true
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// Tables holds every table of one run.
type Tables struct {
	Champions    []SeasonChampion   `json:"champions"`
	Constructors []ConstructorTitle `json:"constructors"`
	Winners      []RaceResult       `json:"winners"`
	Standings    []DriverStanding   `json:"standings"`
	QualRace     []QualRaceRow      `json:"qualifying"`
	Laps         []LapRecord        `json:"laps"`
	Circuits     []Circuit          `json:"circuits"`
}

// Empty reports whether every table is empty.
func (t Tables) Empty() bool {
	return t.Rows() == 0
}

// Rows is the total row count across tables.
func (t Tables) Rows() int {
	return len(t.Champions) + len(t.Constructors) + len(t.Winners) +
		len(t.Standings) + len(t.QualRace) + len(t.Laps) + len(t.Circuits)
}
