// Package audit keeps an append-only record of tracker events in SQLite.
//
// Entries are written by the broadcast sink after each accepted mutation
// and read back only through the admin audit endpoint. The tracker never
// restores state from them.
package audit
