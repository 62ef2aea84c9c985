package ingest

import (
	"fmt"
	"strings"
)

// Resource names one table a run can collect.
type Resource string

const (
	ResourceChampion    Resource = "champion"
	ResourceConstructor Resource = "constructor"
	ResourceRaceResults Resource = "race-results"
	ResourceStandings   Resource = "standings"
	ResourceLaps        Resource = "laps"
	ResourceQualifying  Resource = "qualifying"
	ResourceCircuits    Resource = "circuits"
)

// AllResources lists every resource in collection order.
func AllResources() []Resource {
	return []Resource{
		ResourceChampion,
		ResourceConstructor,
		ResourceRaceResults,
		ResourceStandings,
		ResourceQualifying,
		ResourceLaps,
		ResourceCircuits,
	}
}

// DefaultResources is every resource except laps, which costs one request
// per race and is usually fetched on demand.
func DefaultResources() []Resource {
	return []Resource{
		ResourceChampion,
		ResourceConstructor,
		ResourceRaceResults,
		ResourceStandings,
		ResourceQualifying,
		ResourceCircuits,
	}
}

// ParseResource validates a resource name.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllResources() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// ParseResources validates a list of resource names, dropping duplicates.
func ParseResources(names []string) ([]Resource, error) {
	seen := make(map[Resource]struct{}, len(names))
	out := make([]Resource, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		r, err := ParseResource(n)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}
