package model

import (
	"reflect"
	"testing"
)

func champions() []SeasonChampion {
	return []SeasonChampion{
		{Year: 2008, Driver: "Lewis Hamilton", Nationality: "British"},
		{Year: 2009, Driver: "Jenson Button", Nationality: "British"},
		{Year: 2010, Driver: "Sebastian Vettel", Nationality: "German"},
		{Year: 2014, Driver: "Lewis Hamilton", Nationality: "British"},
	}
}

func TestChampionsWhere(t *testing.T) {
	tests := []struct {
		name   string
		filter ChampionFilter
		want   []int
	}{
		{name: "no filter", filter: ChampionFilter{}, want: []int{2008, 2009, 2010, 2014}},
		{name: "nationality", filter: ChampionFilter{Nationality: "british"}, want: []int{2008, 2009, 2014}},
		{name: "driver", filter: ChampionFilter{Drivers: NewDriverSet("Lewis Hamilton")}, want: []int{2008, 2014}},
		{name: "year", filter: ChampionFilter{Year: 2010}, want: []int{2010}},
		{name: "no match", filter: ChampionFilter{Nationality: "Finnish"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Years(ChampionsWhere(champions(), tt.filter), func(c SeasonChampion) int { return c.Year })
			if got == nil {
				got = []int{}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("years = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhere_DoesNotMutateInput(t *testing.T) {
	rows := champions()
	before := append([]SeasonChampion(nil), rows...)

	_ = Where(rows, func(c SeasonChampion) bool { return c.Year > 2009 })

	if !reflect.DeepEqual(rows, before) {
		t.Error("Where modified its input")
	}
}

func TestDriverSet(t *testing.T) {
	empty := NewDriverSet(" ", "")
	if !empty.Empty() || !empty.Has("anyone") {
		t.Error("an empty set should select everyone")
	}

	s := NewDriverSet("Max Verstappen", "Lewis Hamilton")
	if !s.Has("Max Verstappen") || s.Has("Charles Leclerc") {
		t.Error("Has() mismatch")
	}
	if got := s.Names(); !reflect.DeepEqual(got, []string{"Lewis Hamilton", "Max Verstappen"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestQualRaceForYear(t *testing.T) {
	rows := []QualRaceRow{
		{Year: 2021, Round: 1, Driver: "Max Verstappen"},
		{Year: 2021, Round: 1, Driver: "Lewis Hamilton"},
		{Year: 2020, Round: 1, Driver: "Max Verstappen"},
	}

	got := QualRaceForYear(rows, 2021, NewDriverSet("Max Verstappen"))
	if len(got) != 1 || got[0].Year != 2021 {
		t.Errorf("got %+v", got)
	}
}

func TestLapsForRace(t *testing.T) {
	rows := []LapRecord{
		{Year: 2021, Round: 5, Lap: 1},
		{Year: 2021, Round: 6, Lap: 1},
		{Year: 2020, Round: 5, Lap: 1},
	}
	if got := LapsForRace(rows, 2021, 5); len(got) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestDrivers_DistinctSorted(t *testing.T) {
	got := Drivers(champions(), func(c SeasonChampion) string { return c.Driver })
	want := []string{"Jenson Button", "Lewis Hamilton", "Sebastian Vettel"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Drivers() = %v, want %v", got, want)
	}
}

func TestPositionsGained(t *testing.T) {
	tests := []struct {
		row    QualRaceRow
		want   int
		wantOK bool
	}{
		{QualRaceRow{Qualifying: IntPtr(10), Finish: IntPtr(3)}, 7, true},
		{QualRaceRow{Qualifying: IntPtr(1), Finish: IntPtr(4)}, -3, true},
		{QualRaceRow{Qualifying: IntPtr(1)}, 0, false},
		{QualRaceRow{}, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.row.PositionsGained()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PositionsGained() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTables_Empty(t *testing.T) {
	var tables Tables
	if !tables.Empty() {
		t.Error("zero Tables should be empty")
	}
	tables.Circuits = []Circuit{{ID: "monza"}}
	if tables.Empty() || tables.Rows() != 1 {
		t.Errorf("Empty() = %v, Rows() = %d", tables.Empty(), tables.Rows())
	}
}
