// Package testutil provides a mock of the statistics service for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockErgast is a configurable mock statistics service. Paths are matched
// exactly as the client requests them, e.g. "/2021/driverStandings/1.json".
type MockErgast struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount  int
	PathCounts    map[string]int
	LastUserAgent string
}

// NewMockErgast creates a new mock server. Unregistered paths answer with
// an empty envelope whose total is 0.
func NewMockErgast() *MockErgast {
	mock := &MockErgast{
		handlers:   make(map[string]http.HandlerFunc),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastUserAgent = r.Header.Get("User-Agent")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		WriteEnvelope(w, ergast.MRData{Total: "0"})
	}))

	return mock
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockErgast) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockErgast) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockErgast) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockErgast) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockErgast) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetEnvelope serves data for path on every request.
func (m *MockErgast) SetEnvelope(path string, data ergast.MRData) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		WriteEnvelope(w, data)
	})
}

// SetPaged serves path through page, passing the requested offset and limit.
func (m *MockErgast) SetPaged(path string, page func(offset, limit int) ergast.MRData) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 30
		}
		WriteEnvelope(w, page(offset, limit))
	})
}

// FailPath makes path answer with status on every request.
func (m *MockErgast) FailPath(path string, status int) {
	m.SetResponse(path, MockResponse{
		StatusCode: status,
		Body:       `{"error": "` + http.StatusText(status) + `"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockErgast) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to path.
func (m *MockErgast) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// WriteEnvelope writes data wrapped in the MRData envelope.
func WriteEnvelope(w http.ResponseWriter, data ergast.MRData) {
	if data.Limit == "" {
		data.Limit = "30"
	}
	if data.Offset == "" {
		data.Offset = "0"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ergast.Response{MRData: data})
}

// NewRateLimitResponse creates a 429 response asking for an immediate retry.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Retry-After":  "0",
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// Driver builds a driver record. name is "Given Family".
func Driver(name, dob, nationality, code string) ergast.Driver {
	given, family, _ := strings.Cut(name, " ")
	return ergast.Driver{
		DriverID:    strings.ToLower(family),
		Code:        code,
		GivenName:   given,
		FamilyName:  family,
		DateOfBirth: dob,
		Nationality: nationality,
	}
}

// DriverStandings builds a standings envelope for one season.
func DriverStandings(year int, standings ...ergast.DriverStanding) ergast.MRData {
	season := strconv.Itoa(year)
	return ergast.MRData{
		Total: strconv.Itoa(len(standings)),
		StandingsTable: &ergast.StandingsTable{
			Season: season,
			StandingsLists: []ergast.StandingsList{{
				Season:          season,
				Round:           "22",
				DriverStandings: standings,
			}},
		},
	}
}

// Standing builds one driver standing.
func Standing(position int, points string, d ergast.Driver) ergast.DriverStanding {
	return ergast.DriverStanding{
		Position: strconv.Itoa(position),
		Points:   points,
		Wins:     "0",
		Driver:   d,
	}
}

// ConstructorChampion builds a constructorStandings/1 envelope.
func ConstructorChampion(year int, name string) ergast.MRData {
	season := strconv.Itoa(year)
	return ergast.MRData{
		Total: "1",
		StandingsTable: &ergast.StandingsTable{
			Season: season,
			StandingsLists: []ergast.StandingsList{{
				Season: season,
				Round:  "22",
				ConstructorStandings: []ergast.ConstructorStanding{{
					Position:    "1",
					Points:      "600",
					Wins:        "10",
					Constructor: ergast.Constructor{ConstructorID: strings.ToLower(name), Name: name},
				}},
			}},
		},
	}
}

// RaceResult describes one result row for Races.
type RaceResult struct {
	Round    int
	RaceName string
	Circuit  string
	Driver   ergast.Driver
	Grid     int
	Position int
}

// Races builds a results envelope from rows, grouping consecutive rows of
// the same round into one race. offset and limit slice the rows the way
// the service slices results.
func Races(year int, rows []RaceResult, offset, limit int) ergast.MRData {
	data := ergast.MRData{
		Total:     strconv.Itoa(len(rows)),
		Offset:    strconv.Itoa(offset),
		Limit:     strconv.Itoa(limit),
		RaceTable: &ergast.RaceTable{Season: strconv.Itoa(year), Races: []ergast.Race{}},
	}
	if offset >= len(rows) {
		return data
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	races := data.RaceTable.Races
	for _, row := range rows[offset:end] {
		if n := len(races); n == 0 || races[n-1].Round != strconv.Itoa(row.Round) {
			races = append(races, ergast.Race{
				Season:   strconv.Itoa(year),
				Round:    strconv.Itoa(row.Round),
				RaceName: row.RaceName,
				Circuit:  ergast.Circuit{CircuitID: row.Circuit, CircuitName: row.Circuit},
			})
		}
		races[len(races)-1].Results = append(races[len(races)-1].Results, ergast.Result{
			Position: strconv.Itoa(row.Position),
			Grid:     strconv.Itoa(row.Grid),
			Driver:   row.Driver,
		})
	}
	data.RaceTable.Races = races
	return data
}

// Schedule builds a season schedule envelope.
func Schedule(year int, names ...string) ergast.MRData {
	races := make([]ergast.Race, len(names))
	for i, name := range names {
		races[i] = ergast.Race{Season: strconv.Itoa(year), Round: strconv.Itoa(i + 1), RaceName: name}
	}
	return ergast.MRData{
		Total:     strconv.Itoa(len(races)),
		RaceTable: &ergast.RaceTable{Season: strconv.Itoa(year), Races: races},
	}
}

// LapTime describes one timing for Laps.
type LapTime struct {
	Lap      int
	DriverID string
	Time     string
}

// Laps builds a laps envelope for one race, sliced by offset and limit
// over timings the way the service slices them.
func Laps(year, round int, raceName string, timings []LapTime, offset, limit int) ergast.MRData {
	data := ergast.MRData{
		Total:     strconv.Itoa(len(timings)),
		Offset:    strconv.Itoa(offset),
		Limit:     strconv.Itoa(limit),
		RaceTable: &ergast.RaceTable{Season: strconv.Itoa(year), Round: strconv.Itoa(round), Races: []ergast.Race{}},
	}
	if offset >= len(timings) {
		return data
	}
	end := offset + limit
	if end > len(timings) {
		end = len(timings)
	}

	race := ergast.Race{Season: strconv.Itoa(year), Round: strconv.Itoa(round), RaceName: raceName}
	for _, lt := range timings[offset:end] {
		number := strconv.Itoa(lt.Lap)
		if n := len(race.Laps); n == 0 || race.Laps[n-1].Number != number {
			race.Laps = append(race.Laps, ergast.Lap{Number: number})
		}
		last := &race.Laps[len(race.Laps)-1]
		last.Timings = append(last.Timings, ergast.Timing{DriverID: lt.DriverID, Time: lt.Time})
	}
	data.RaceTable.Races = []ergast.Race{race}
	return data
}

// Circuits builds a circuits envelope sliced by offset and limit.
func Circuits(circuits []ergast.Circuit, offset, limit int) ergast.MRData {
	data := ergast.MRData{
		Total:        strconv.Itoa(len(circuits)),
		Offset:       strconv.Itoa(offset),
		Limit:        strconv.Itoa(limit),
		CircuitTable: &ergast.CircuitTable{Circuits: []ergast.Circuit{}},
	}
	if offset >= len(circuits) {
		return data
	}
	end := offset + limit
	if end > len(circuits) {
		end = len(circuits)
	}
	data.CircuitTable.Circuits = circuits[offset:end]
	return data
}
