// Package ledger persists per-unit source fingerprints and decides whether a
// unit's sources changed since its artifacts were produced.
//
// Fingerprints are size plus modification time, never content hashes, so a
// change check costs one stat per file. A touch that preserves both values is
// invisible; that trade-off is accepted. Ledgers are advisory: a missing,
// unreadable, or mismatched record always reads as "changed".
package ledger
