package analytics

import (
	"sort"

	"github.com/Sternrassler/f1-results-pipeline/pkg/model"
)

// FirstTitles keeps the earliest title of every driver, ordered by year.
func FirstTitles(champions []model.SeasonChampion) []model.SeasonChampion {
	seen := make(map[string]struct{})
	var out []model.SeasonChampion
	for _, c := range byYear(champions) {
		if _, ok := seen[c.Driver]; ok {
			continue
		}
		seen[c.Driver] = struct{}{}
		out = append(out, c)
	}
	return out
}

// YoungestOldest ranks first titles by age. youngest holds the n lowest
// ages ascending, oldest the n highest, also ascending. Ties keep year
// order. Fewer than n first titles yields shorter lists.
func YoungestOldest(champions []model.SeasonChampion, n int) (youngest, oldest []model.SeasonChampion) {
	if n <= 0 {
		return []model.SeasonChampion{}, []model.SeasonChampion{}
	}

	ranked := FirstTitles(champions)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Age < ranked[j].Age })

	k := n
	if k > len(ranked) {
		k = len(ranked)
	}
	youngest = append([]model.SeasonChampion{}, ranked[:k]...)
	oldest = append([]model.SeasonChampion{}, ranked[len(ranked)-k:]...)
	return youngest, oldest
}
