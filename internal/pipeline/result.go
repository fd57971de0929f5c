package pipeline

import (
	"time"

	"mediatorr/internal/metadata"
	"mediatorr/internal/unit"
)

// State is the classification of a unit before any work.
type State int

const (
	StateIncomplete State = iota + 1
	StateLegacy
	StateUnchanged
	StateStale
)

func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "incomplete"
	case StateLegacy:
		return "legacy"
	case StateUnchanged:
		return "unchanged"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Outcome is what happened to a unit during a run.
type Outcome int

const (
	OutcomeProcessed Outcome = iota + 1
	OutcomeReprocessed
	OutcomeSkipped
	OutcomeDeferred
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeReprocessed:
		return "reprocessed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDeferred:
		return "deferred"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lookup records whether the identifier step queried a provider.
type Lookup int

const (
	LookupNone Lookup = iota
	LookupFound
	LookupMissing
)

// Result is the per-unit value aggregated by the scan.
type Result struct {
	Library  unit.Library
	Key      string
	State    State
	Outcome  Outcome
	Provider metadata.Provider
	Lookup   Lookup
	Built    []unit.Artifact
	Err      error
	Elapsed  time.Duration
}

// Failed builds the result of a unit that never produced its own result.
func Failed(u unit.Unit, err error) Result {
	return Result{
		Library:  u.Library,
		Key:      u.Key,
		Outcome:  OutcomeFailed,
		Provider: metadata.ProviderFor(u.Library),
		Err:      err,
	}
}
