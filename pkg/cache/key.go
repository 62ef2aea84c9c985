package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Key identifies a cached response.
type Key struct {
	// Path is the resource path relative to the service root
	// (e.g., "/2021/5/laps.json")
	Path string

	// Query holds the query parameters (e.g., limit/offset)
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: f1:path:query1=val1:query2=val2
//
// Example:
//
//	f1:2021/5/laps.json:limit=100:offset=200
func (k Key) String() string {
	parts := []string{"f1"}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		keys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			values := append([]string(nil), k.Query[key]...)
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}

// Season returns the season a path belongs to, taken from a leading
// four-digit segment ("/2021/5/laps.json" -> 2021). Paths such as
// "/circuits.json" or "/current/results.json" have none.
func (k Key) Season() (int, bool) {
	first, _, _ := strings.Cut(strings.TrimLeft(k.Path, "/"), "/")
	first = strings.TrimSuffix(first, ".json")
	if len(first) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(first)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
