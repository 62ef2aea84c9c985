// Package analytics derives the read-only views of a run.
//
// Every function is a pure reduction over model rows: it never mutates its
// input and returns the same output for the same input.
package analytics
