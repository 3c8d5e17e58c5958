// Package task holds the static catalog of challenge tasks.
//
// The catalog is reference data: six definitions keyed by id 1..6, built
// once at startup and never mutated. Hints for the Basic Auth tasks embed
// the configured challenge credentials so the dashboard can show them.
package task
