package scan

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mediatorr/internal/metadata"
	"mediatorr/internal/pipeline"
	"mediatorr/internal/trackers"
	"mediatorr/internal/unit"
)

func TestSummaryAdd(t *testing.T) {
	s := newSummary("run-1", time.Unix(100, 0))
	s.Add(pipeline.Result{Library: unit.LibraryMusic, Key: "Album", Outcome: pipeline.OutcomeProcessed, Provider: metadata.ProviderITunes, Lookup: pipeline.LookupFound})
	s.Add(pipeline.Result{Library: unit.LibraryMusic, Key: "Other", Outcome: pipeline.OutcomeReprocessed, Provider: metadata.ProviderITunes, Lookup: pipeline.LookupMissing})
	s.Add(pipeline.Result{Library: unit.LibraryMusic, Key: "Partial", Outcome: pipeline.OutcomeDeferred, Provider: metadata.ProviderITunes})
	s.Add(pipeline.Failed(unit.Unit{Library: unit.LibraryMovies, Key: "Broken"}, errors.New("boom")))
	s.setSweep(trackers.Sweep{Changed: true, Scanned: 3, Rewritten: 2, Failed: 1})
	s.finish(time.Unix(102, 0))

	if s.Totals.Units != 4 || s.Totals.Processed != 1 || s.Totals.Reprocessed != 1 || s.Totals.Deferred != 1 || s.Totals.Failed != 1 {
		t.Fatalf("totals = %+v", s.Totals)
	}
	if got := s.Lookup(metadata.ProviderITunes); got != (LookupCounts{Found: 1, Missing: 1}) {
		t.Fatalf("itunes lookups = %+v", got)
	}
	if got := s.Lookup(metadata.ProviderTMDB); got != (LookupCounts{}) {
		t.Fatalf("tmdb lookups = %+v, want none", got)
	}
	if music := s.Libraries[unit.LibraryMusic]; music.Units != 3 {
		t.Fatalf("music units = %d", music.Units)
	}
	if len(s.Failures) != 1 || s.Failures[0].Error != "boom" {
		t.Fatalf("failures = %+v", s.Failures)
	}
	if s.ElapsedMs != 2000 {
		t.Fatalf("elapsed = %d", s.ElapsedMs)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Tracker.Rewritten != 2 || decoded.Libraries[unit.LibraryMovies].Failed != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
}
