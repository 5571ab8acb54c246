package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/arin/roomchat/internal/ai"
)

func setupTestDir(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestSaveAndLoadAll(t *testing.T) {
	setupTestDir(t)

	err := Save(Record{Subcommand: "chat", Outcome: OutcomeDone, FirstDeltaMs: 120, TotalMs: 900, Deltas: 14, Chars: 310})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Deltas != 14 || records[0].Outcome != OutcomeDone {
		t.Errorf("unexpected record: %+v", records[0])
	}
	if records[0].Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestSave_CapsRecords(t *testing.T) {
	setupTestDir(t)

	for i := 0; i < maxRecords+3; i++ {
		Save(Record{Outcome: OutcomeDone, Deltas: i})
	}

	records, _ := LoadAll()
	if len(records) != maxRecords {
		t.Fatalf("expected %d records, got %d", maxRecords, len(records))
	}
	if records[0].Deltas != 3 {
		t.Errorf("expected oldest records dropped, first has Deltas=%d", records[0].Deltas)
	}
}

func TestSummarize_Empty(t *testing.T) {
	setupTestDir(t)

	s, err := Summarize()
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TotalStreams != 0 {
		t.Errorf("expected 0 streams, got %d", s.TotalStreams)
	}
	if s.OutcomeBreakdown == nil {
		t.Error("expected non-nil breakdown map")
	}
}

func TestSummarize_WithData(t *testing.T) {
	setupTestDir(t)

	Save(Record{Subcommand: "chat", Outcome: OutcomeDone, FirstDeltaMs: 100, TotalMs: 1000, Deltas: 10})
	Save(Record{Subcommand: "chat", Outcome: OutcomeDone, FirstDeltaMs: 300, TotalMs: 2000, Deltas: 20})
	Save(Record{Subcommand: "ask", Outcome: "rate_limited", TotalMs: 30})

	s, err := Summarize()
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TotalStreams != 3 {
		t.Errorf("expected 3 streams, got %d", s.TotalStreams)
	}
	if math.Abs(s.SuccessRate-66.66) > 0.1 {
		t.Errorf("expected ~66.7%% success rate, got %.2f", s.SuccessRate)
	}
	if s.AvgFirstDeltaMs != 200 {
		t.Errorf("expected avg first delta 200ms, got %d", s.AvgFirstDeltaMs)
	}
	if s.AvgTotalMs != 1010 {
		t.Errorf("expected avg total 1010ms, got %d", s.AvgTotalMs)
	}
	if s.AvgDeltas != 10 {
		t.Errorf("expected avg deltas 10, got %.1f", s.AvgDeltas)
	}
	if s.OutcomeBreakdown[OutcomeDone] != 2 || s.OutcomeBreakdown["rate_limited"] != 1 {
		t.Errorf("unexpected outcome breakdown: %v", s.OutcomeBreakdown)
	}
	if s.SubcmdBreakdown["chat"] != 2 || s.SubcmdBreakdown["ask"] != 1 {
		t.Errorf("unexpected subcommand breakdown: %v", s.SubcmdBreakdown)
	}
	if s.TodayCount != 3 || s.ThisWeekCount != 3 {
		t.Errorf("expected all records in today/this week, got %d/%d", s.TodayCount, s.ThisWeekCount)
	}
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, OutcomeDone},
		{fmt.Errorf("%w: %w", ai.ErrCancelled, context.Canceled), OutcomeCancelled},
		{&ai.RequestError{Kind: ai.KindRateLimited, Status: 429}, "rate_limited"},
		{&ai.RequestError{Kind: ai.KindCreditsExhausted, Status: 402}, "credits_exhausted"},
		{&ai.RequestError{Kind: ai.KindServiceError, Status: 500}, "service_error"},
		{ai.ErrNoStreamBody, "service_error"},
		{errors.New("connection reset"), OutcomeStreamFailed},
	}
	for _, c := range cases {
		if got := Outcome(c.err); got != c.want {
			t.Errorf("Outcome(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestFromReport(t *testing.T) {
	r := FromReport("ask", ai.Report{
		FirstDelta: 250 * time.Millisecond,
		Total:      2 * time.Second,
		Deltas:     7,
		Chars:      120,
	})
	if r.Subcommand != "ask" || r.Outcome != OutcomeDone {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.FirstDeltaMs != 250 || r.TotalMs != 2000 {
		t.Errorf("unexpected latencies: first=%d total=%d", r.FirstDeltaMs, r.TotalMs)
	}

	// No first-delta latency without deltas.
	r = FromReport("chat", ai.Report{Err: ai.ErrNoStreamBody, Total: time.Second})
	if r.FirstDeltaMs != 0 || r.Outcome != "service_error" {
		t.Errorf("unexpected record: %+v", r)
	}
}
