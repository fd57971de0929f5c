// Package pipeline decides what to do with one unit and builds its missing
// artifacts.
//
// Each unit is classified once into a State from its artifact set and ledger:
//
//   - incomplete: a required artifact is missing; rebuild what is missing
//   - legacy: complete but no ledger; write the ledger and skip
//   - unchanged: complete and the ledger matches; skip
//   - stale: complete but a source changed; invalidate the torrent, the
//     technical note and the release note, then rebuild
//
// Builds run in a fixed order (source descriptor, technical note, torrent,
// identifier note, release note) and each step is skipped when its output
// already exists. A unit is aborted, with no ledger refresh, when the archiver
// fails, the output directory cannot be created, or a technical, identifier or
// release note cannot be written. A failed source descriptor copy is only
// logged and retried next run. Lookups degrade to negative placeholders and
// probe failures to an empty technical body.
package pipeline
