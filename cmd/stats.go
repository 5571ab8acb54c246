package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arin/roomchat/internal/stats"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streaming statistics",
	Long: `Display a dashboard of your roomchat streams: how many replies
completed, time to first fragment, total reply time and how failed
streams ended.

Data is collected automatically and stored locally in ~/.roomchat/stats.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := stats.Summarize()
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)

		cyan.Fprintf(os.Stderr, "\n  📊 roomchat stats\n\n")

		if summary.TotalStreams == 0 {
			dim.Fprintln(os.Stderr, "  No data yet. Chat for a while and come back.")
			fmt.Fprintln(os.Stderr)
			return nil
		}

		// Overview
		green.Fprintf(os.Stderr, "  Replies:     ")
		fmt.Fprintf(os.Stderr, "%d total", summary.TotalStreams)
		dim.Fprintf(os.Stderr, "  (%d today, %d this week)\n", summary.TodayCount, summary.ThisWeekCount)

		green.Fprintf(os.Stderr, "  Completed:   ")
		if summary.SuccessRate >= 90 {
			fmt.Fprintf(os.Stderr, "%.0f%%\n", summary.SuccessRate)
		} else {
			yellow.Fprintf(os.Stderr, "%.0f%%\n", summary.SuccessRate)
		}

		// Latency
		green.Fprintf(os.Stderr, "  First text:  ")
		fmt.Fprintf(os.Stderr, "%dms avg\n", summary.AvgFirstDeltaMs)
		green.Fprintf(os.Stderr, "  Full reply:  ")
		fmt.Fprintf(os.Stderr, "%dms avg", summary.AvgTotalMs)
		dim.Fprintf(os.Stderr, "  (%.1f fragments avg)\n", summary.AvgDeltas)

		// Outcome breakdown
		fmt.Fprintln(os.Stderr)
		cyan.Fprintln(os.Stderr, "  Outcomes")
		for _, outcome := range sortedKeys(summary.OutcomeBreakdown) {
			count := summary.OutcomeBreakdown[outcome]
			pct := float64(count) / float64(summary.TotalStreams) * 100
			bar := strings.Repeat("█", int(pct/5))
			dim.Fprintf(os.Stderr, "  %-18s ", outcome)
			fmt.Fprintf(os.Stderr, "%s %d (%.0f%%)\n", bar, count, pct)
		}

		// Subcommand breakdown
		if len(summary.SubcmdBreakdown) > 0 {
			fmt.Fprintln(os.Stderr)
			cyan.Fprintln(os.Stderr, "  Subcommands")
			for _, sub := range sortedKeys(summary.SubcmdBreakdown) {
				dim.Fprintf(os.Stderr, "  %-14s ", sub)
				fmt.Fprintf(os.Stderr, "%d\n", summary.SubcmdBreakdown[sub])
			}
		}

		fmt.Fprintln(os.Stderr)
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
