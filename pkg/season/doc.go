// Package season runs a per-year fetch across a closed range of seasons.
//
// The Orchestrator calls a YearFetcher once per year in increasing order,
// spacing the calls through a ratelimit.Limiter. A year that fails, whether
// by error or by panic, is recorded and skipped; the remaining years still
// run. Records are concatenated in year order.
//
// The limiter also rides on the context handed to the fetcher
// (ratelimit.NewContext), so every request a season issues waits on the same
// delay; the first one reuses the wait taken for the year.
//
// Sequential execution is the default. WithConcurrency opts into a bounded
// worker pool in which every worker owns its own limiter, so the configured
// delay holds per worker. Year order of the merged records is preserved in
// both modes.
package season
