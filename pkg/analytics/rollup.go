package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
)

// NationalityRow summarises the drivers' titles of one nationality.
type NationalityRow struct {
	Nationality string   `json:"nationality"`
	Titles      int      `json:"titles"`
	Drivers     int      `json:"drivers"`
	Years       string   `json:"years"`
	DriverList  []string `json:"driver_list"`
}

// TitleRow counts the titles of one driver or constructor.
type TitleRow struct {
	Name   string `json:"name"`
	Titles int    `json:"titles"`
	Years  string `json:"years"`
}

// JoinYears renders years sorted, de-duplicated and comma-separated.
func JoinYears(years []int) string {
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for i, y := range sorted {
		if i > 0 && y == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.Itoa(y))
	}
	return strings.Join(parts, ", ")
}

// NationalityRollup groups champions by nationality. Rows are ordered by
// nationality; the driver list keeps order of first title.
func NationalityRollup(champions []model.SeasonChampion) []NationalityRow {
	type acc struct {
		years   []int
		drivers []string
		seen    map[string]struct{}
	}
	groups := make(map[string]*acc)
	for _, c := range byYear(champions) {
		a, ok := groups[c.Nationality]
		if !ok {
			a = &acc{seen: make(map[string]struct{})}
			groups[c.Nationality] = a
		}
		a.years = append(a.years, c.Year)
		if _, dup := a.seen[c.Driver]; !dup {
			a.seen[c.Driver] = struct{}{}
			a.drivers = append(a.drivers, c.Driver)
		}
	}

	rows := make([]NationalityRow, 0, len(groups))
	for nat, a := range groups {
		rows = append(rows, NationalityRow{
			Nationality: nat,
			Titles:      len(a.years),
			Drivers:     len(a.drivers),
			Years:       JoinYears(a.years),
			DriverList:  a.drivers,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Nationality < rows[j].Nationality })
	return rows
}

// DriverRollup counts titles per driver, ordered by name.
func DriverRollup(champions []model.SeasonChampion) []TitleRow {
	return titleRows(len(champions), func(i int) (string, int) {
		return champions[i].Driver, champions[i].Year
	})
}

// ConstructorRollup counts titles per constructor, ordered by name.
func ConstructorRollup(titles []model.ConstructorTitle) []TitleRow {
	return titleRows(len(titles), func(i int) (string, int) {
		return titles[i].Constructor, titles[i].Year
	})
}

func titleRows(n int, at func(int) (string, int)) []TitleRow {
	years := make(map[string][]int)
	for i := 0; i < n; i++ {
		name, year := at(i)
		years[name] = append(years[name], year)
	}

	rows := make([]TitleRow, 0, len(years))
	for name, ys := range years {
		rows = append(rows, TitleRow{Name: name, Titles: len(ys), Years: JoinYears(ys)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// byYear returns a copy of champions stably sorted by year.
func byYear(champions []model.SeasonChampion) []model.SeasonChampion {
	out := append([]model.SeasonChampion(nil), champions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
