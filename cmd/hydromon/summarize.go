package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hydromon/internal/scratch"
	"github.com/jgoulah/hydromon/internal/usage"
	"github.com/jgoulah/hydromon/pkg/models"
)

var (
	summarizeStart string
	summarizeEnd   string
	summarizeList  bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [csv-file]",
	Short: "Summarize a usage export already on disk",
	Long: `Parses a London Hydro green button CSV export and prints the usage report.
No network access. By default the whole export is summarized; --start and --end
restrict it to a window (both YYYY-MM-DD or relative like 7d, local midnight).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeStart, "start", "", "Window start (YYYY-MM-DD or Nd for N days ago)")
	summarizeCmd.Flags().StringVar(&summarizeEnd, "end", "", "Window end (YYYY-MM-DD or Nd for N days ago)")
	summarizeCmd.Flags().BoolVar(&summarizeList, "list", false, "Print every interval in the window before the report")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	path := scratch.DefaultPath
	if len(args) == 1 {
		path = args[0]
	} else if cfg, err := loadConfig(); err == nil {
		path = cfg.GetScratchFile()
	}

	f, err := scratch.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	series, err := usage.ParseExport(f, time.Local)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	window := series.Span()
	if summarizeStart != "" {
		if window.Start, err = parseDate(summarizeStart, time.Now()); err != nil {
			return fmt.Errorf("parsing --start date: %w", err)
		}
	}
	if summarizeEnd != "" {
		if window.End, err = parseDate(summarizeEnd, time.Now()); err != nil {
			return fmt.Errorf("parsing --end date: %w", err)
		}
	}

	trimmed := usage.Trim(series, window)
	logger.Debugw("export loaded", "path", path, "intervals", len(series), "in_window", len(trimmed))

	stats, err := usage.Aggregate(trimmed)
	if err != nil {
		return fmt.Errorf("aggregating usage: %w", err)
	}

	out := cmd.OutOrStdout()
	if summarizeList {
		printIntervals(out, trimmed)
	}
	fmt.Fprintln(out, usage.FormatReport(stats))
	return nil
}

func printIntervals(w io.Writer, series models.Series) {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%-16s  %-16s  %8s\n", "Start", "End", "kWh")
	fmt.Fprintln(w, "----------------------------------------")
	for _, iv := range series {
		fmt.Fprintf(w, "%-16s  %-16s  %8.2f\n", iv.Start.Format("2006-01-02 15:04"), iv.End.Format("2006-01-02 15:04"), iv.KWh)
	}
	fmt.Fprintln(w, "----------------------------------------")
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d").
// Relative dates resolve to local midnight N days before now.
func parseDate(dateStr string, now time.Time) (time.Time, error) {
	// Try absolute date format first
	t, err := time.ParseInLocation("2006-01-02", dateStr, now.Location())
	if err == nil {
		return t, nil
	}

	// Try relative format (e.g., "7d" for 7 days ago)
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		daysStr := dateStr[:len(dateStr)-1]
		var days int
		if _, err := fmt.Sscanf(daysStr, "%d", &days); err == nil {
			y, m, d := now.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}
