// Package artifacts answers existence questions about a unit's derived output
// files and removes them when a rebuild or an operator asks for it.
//
// Checks are existence-only; content is never inspected. The pipeline only
// ever invalidates the rebuildable artifacts. Full deletion, ledger
// included, is reserved for explicit operator commands.
package artifacts
