package analytics

import (
	"sort"

	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
)

// HeatCell is the number of wins of one driver in one year.
type HeatCell struct {
	Year   int    `json:"year"`
	Driver string `json:"driver"`
	Wins   int    `json:"wins"`
}

// Heatmap is a year by driver matrix of race wins.
type Heatmap struct {
	Years   []int      `json:"years"`
	Drivers []string   `json:"drivers"`
	Cells   []HeatCell `json:"cells"`
}

// Empty reports whether no win matched the selection.
func (h Heatmap) Empty() bool {
	return len(h.Cells) == 0
}

// Wins returns the count for one cell, zero when absent.
func (h Heatmap) Wins(year int, driver string) int {
	for _, c := range h.Cells {
		if c.Year == year && c.Driver == driver {
			return c.Wins
		}
	}
	return 0
}

// WinsHeatmap counts first places per (year, driver) for the selected
// drivers. An empty selection counts every driver.
func WinsHeatmap(results []model.RaceResult, drivers model.DriverSet) Heatmap {
	type key struct {
		year   int
		driver string
	}
	counts := make(map[key]int)
	for _, r := range model.ResultsForDrivers(results, drivers) {
		if r.Position != 1 {
			continue
		}
		counts[key{r.Year, r.Driver}]++
	}

	h := Heatmap{Years: []int{}, Drivers: []string{}, Cells: make([]HeatCell, 0, len(counts))}
	years := make(map[int]struct{})
	names := make(map[string]struct{})
	for k, n := range counts {
		h.Cells = append(h.Cells, HeatCell{Year: k.year, Driver: k.driver, Wins: n})
		years[k.year] = struct{}{}
		names[k.driver] = struct{}{}
	}
	for y := range years {
		h.Years = append(h.Years, y)
	}
	for d := range names {
		h.Drivers = append(h.Drivers, d)
	}
	sort.Ints(h.Years)
	sort.Strings(h.Drivers)
	sort.Slice(h.Cells, func(i, j int) bool {
		if h.Cells[i].Year != h.Cells[j].Year {
			return h.Cells[i].Year < h.Cells[j].Year
		}
		return h.Cells[i].Driver < h.Cells[j].Driver
	})
	return h
}

// RaceWinner is the winner of one grand prix.
type RaceWinner struct {
	Year    int    `json:"year"`
	Round   int    `json:"round"`
	Race    string `json:"race"`
	Circuit string `json:"circuit"`
	Winner  string `json:"winner"`
}

// RaceWinners lists the first place of every race ordered by year and round.
func RaceWinners(results []model.RaceResult) []RaceWinner {
	out := make([]RaceWinner, 0)
	for _, r := range results {
		if r.Position != 1 {
			continue
		}
		circuit := r.CircuitName
		if circuit == "" {
			circuit = r.CircuitID
		}
		out = append(out, RaceWinner{Year: r.Year, Round: r.Round, Race: r.RaceName, Circuit: circuit, Winner: r.Driver})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Round < out[j].Round
	})
	return out
}
