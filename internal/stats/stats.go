// Package stats records the outcome of every streamed reply (latency to
// the first fragment, total time, fragment count) and persists the
// records to ~/.roomchat/stats.json.
package stats

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/config"
)

const (
	fileName   = "stats.json"
	maxRecords = 1000
)

// Outcomes of a stream.
const (
	OutcomeDone         = "done"
	OutcomeCancelled    = "cancelled"
	OutcomeStreamFailed = "stream_failed"
)

// Record is a single instrumented StreamChat call.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Subcommand   string    `json:"subcommand,omitempty"` // "chat" or "ask"
	Outcome      string    `json:"outcome"`
	FirstDeltaMs int64     `json:"first_delta_ms,omitempty"`
	TotalMs      int64     `json:"total_ms"`
	Deltas       int       `json:"deltas"`
	Chars        int       `json:"chars"`
}

// Summary is the aggregated stats dashboard.
type Summary struct {
	TotalStreams     int            `json:"total_streams"`
	SuccessRate      float64        `json:"success_rate"`
	AvgFirstDeltaMs  int64          `json:"avg_first_delta_ms"`
	AvgTotalMs       int64          `json:"avg_total_ms"`
	AvgDeltas        float64        `json:"avg_deltas"`
	OutcomeBreakdown map[string]int `json:"outcome_breakdown"`
	SubcmdBreakdown  map[string]int `json:"subcmd_breakdown"`
	TodayCount       int            `json:"today_count"`
	ThisWeekCount    int            `json:"this_week_count"`
}

var fileMu sync.Mutex

func statsPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Outcome names how a call ended, given its Report error.
func Outcome(err error) string {
	var reqErr *ai.RequestError
	switch {
	case err == nil:
		return OutcomeDone
	case errors.Is(err, ai.ErrCancelled):
		return OutcomeCancelled
	case errors.As(err, &reqErr):
		return reqErr.Kind.String()
	case errors.Is(err, ai.ErrNoStreamBody):
		return ai.KindServiceError.String()
	default:
		return OutcomeStreamFailed
	}
}

// FromReport converts a client report into a Record.
func FromReport(subcommand string, rep ai.Report) Record {
	r := Record{
		Subcommand: subcommand,
		Outcome:    Outcome(rep.Err),
		TotalMs:    rep.Total.Milliseconds(),
		Deltas:     rep.Deltas,
		Chars:      rep.Chars,
	}
	if rep.Deltas > 0 {
		r.FirstDeltaMs = rep.FirstDelta.Milliseconds()
	}
	return r
}

// Save appends a new record to the stats file.
func Save(r Record) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	r.Timestamp = time.Now()

	records, _ := loadAll()
	records = append(records, r)

	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statsPath(), data, 0o600)
}

// LoadAll returns all stored records.
func LoadAll() ([]Record, error) {
	fileMu.Lock()
	defer fileMu.Unlock()
	return loadAll()
}

func loadAll() ([]Record, error) {
	data, err := os.ReadFile(statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize computes aggregated stats from all records.
func Summarize() (*Summary, error) {
	records, err := LoadAll()
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalStreams:     len(records),
		OutcomeBreakdown: map[string]int{},
		SubcmdBreakdown:  map[string]int{},
	}
	if len(records) == 0 {
		return s, nil
	}

	var totalFirst, totalMs int64
	var firstCount, successCount, deltas int
	now := time.Now()
	today := now.Truncate(24 * time.Hour)
	weekAgo := now.AddDate(0, 0, -7)

	for _, r := range records {
		if r.Outcome == OutcomeDone {
			successCount++
		}
		if r.Deltas > 0 {
			totalFirst += r.FirstDeltaMs
			firstCount++
		}
		totalMs += r.TotalMs
		deltas += r.Deltas
		s.OutcomeBreakdown[r.Outcome]++
		if r.Subcommand != "" {
			s.SubcmdBreakdown[r.Subcommand]++
		}
		if r.Timestamp.After(today) {
			s.TodayCount++
		}
		if r.Timestamp.After(weekAgo) {
			s.ThisWeekCount++
		}
	}

	s.SuccessRate = float64(successCount) / float64(len(records)) * 100
	s.AvgTotalMs = totalMs / int64(len(records))
	s.AvgDeltas = float64(deltas) / float64(len(records))
	if firstCount > 0 {
		s.AvgFirstDeltaMs = totalFirst / int64(firstCount)
	}

	return s, nil
}
