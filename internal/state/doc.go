// Package state persists metadata overrides and scan history in SQLite.
//
// Artifacts and ledgers stay on disk next to each unit; the database only
// holds operator input and run records, so losing it never forces a rebuild.
package state
