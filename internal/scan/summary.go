package scan

import (
	"time"

	"mediatorr/internal/metadata"
	"mediatorr/internal/pipeline"
	"mediatorr/internal/trackers"
	"mediatorr/internal/unit"
)

// Counts tallies unit outcomes.
type Counts struct {
	Units       int `json:"units"`
	Processed   int `json:"processed"`
	Reprocessed int `json:"reprocessed"`
	Skipped     int `json:"skipped"`
	Deferred    int `json:"deferred"`
	Failed      int `json:"failed"`
}

func (c *Counts) add(o pipeline.Outcome) {
	c.Units++
	switch o {
	case pipeline.OutcomeProcessed:
		c.Processed++
	case pipeline.OutcomeReprocessed:
		c.Reprocessed++
	case pipeline.OutcomeSkipped:
		c.Skipped++
	case pipeline.OutcomeDeferred:
		c.Deferred++
	default:
		c.Failed++
	}
}

// LookupCounts tallies identifier lookups for one provider.
type LookupCounts struct {
	Found   int `json:"found"`
	Missing int `json:"missing"`
}

// TrackerSweep is the summary view of the announce rewrite.
type TrackerSweep struct {
	Changed   bool `json:"changed"`
	Scanned   int  `json:"scanned"`
	Rewritten int  `json:"rewritten"`
	Failed    int  `json:"failed"`
}

// Failure names a failed unit.
type Failure struct {
	Library unit.Library `json:"library"`
	Key     string       `json:"key"`
	Error   string       `json:"error"`
}

// Summary aggregates the per-unit results of one scan.
type Summary struct {
	RunID      string                              `json:"run_id"`
	StartedAt  time.Time                           `json:"started_at"`
	FinishedAt time.Time                           `json:"finished_at"`
	ElapsedMs  int64                               `json:"elapsed_ms"`
	Tracker    TrackerSweep                        `json:"tracker"`
	Totals     Counts                              `json:"totals"`
	Libraries  map[unit.Library]*Counts            `json:"libraries"`
	Lookups    map[metadata.Provider]*LookupCounts `json:"lookups"`
	Failures   []Failure                           `json:"failures,omitempty"`
}

func newSummary(runID string, started time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: started,
		Libraries: make(map[unit.Library]*Counts),
		Lookups:   make(map[metadata.Provider]*LookupCounts),
	}
}

// Add folds one unit result into the summary.
func (s *Summary) Add(r pipeline.Result) {
	s.Totals.add(r.Outcome)
	lib := s.Libraries[r.Library]
	if lib == nil {
		lib = &Counts{}
		s.Libraries[r.Library] = lib
	}
	lib.add(r.Outcome)

	if r.Lookup != pipeline.LookupNone {
		lookups := s.Lookups[r.Provider]
		if lookups == nil {
			lookups = &LookupCounts{}
			s.Lookups[r.Provider] = lookups
		}
		if r.Lookup == pipeline.LookupFound {
			lookups.Found++
		} else {
			lookups.Missing++
		}
	}
	if r.Outcome == pipeline.OutcomeFailed {
		failure := Failure{Library: r.Library, Key: r.Key}
		if r.Err != nil {
			failure.Error = r.Err.Error()
		}
		s.Failures = append(s.Failures, failure)
	}
}

func (s *Summary) setSweep(sweep trackers.Sweep) {
	s.Tracker = TrackerSweep{
		Changed:   sweep.Changed,
		Scanned:   sweep.Scanned,
		Rewritten: sweep.Rewritten,
		Failed:    sweep.Failed,
	}
}

func (s *Summary) finish(at time.Time) {
	s.FinishedAt = at
	s.ElapsedMs = at.Sub(s.StartedAt).Milliseconds()
}

// Lookup returns the counts for provider, zero when none ran.
func (s *Summary) Lookup(provider metadata.Provider) LookupCounts {
	if c := s.Lookups[provider]; c != nil {
		return *c
	}
	return LookupCounts{}
}
