package supervisor

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/audiolibrelab/aircheck/internal/capture"
)

// tailLineCount is how many capture log lines are surfaced per problem
// station.
const tailLineCount = 10

// urlPattern matches embedded stream addresses; they often carry credentials
// in the userinfo or query, so diagnostics never print them verbatim.
var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// Reporter renders a run summary and surfaces redacted diagnostics for every
// station that did not succeed.
type Reporter struct {
	Out     io.Writer
	LogPath func(outcome capture.StationOutcome) string
	TailLen int
}

// NewReporter writes the summary table to out and tails capture logs via
// logPath.
func NewReporter(out io.Writer, logPath func(capture.StationOutcome) string) *Reporter {
	return &Reporter{Out: out, LogPath: logPath, TailLen: tailLineCount}
}

// Report prints the summary table and logs the redacted tail of every
// non-succeeded station's capture log.
func (r *Reporter) Report(summary Summary) {
	r.renderTable(summary)

	for _, outcome := range summary.Outcomes {
		if outcome.Status == capture.StatusSucceeded {
			continue
		}
		r.reportStation(outcome)
	}
}

func (r *Reporter) renderTable(summary Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	t.SetTitle("Run %s", summary.RunID)
	t.AppendHeader(table.Row{"Station", "Status", "Attempts", "Size", "Detail"})

	for _, outcome := range summary.Outcomes {
		detail := outcome.SkipReason
		if outcome.Status == capture.StatusSucceeded {
			detail = outcome.ArtifactPath
		}
		t.AppendRow(table.Row{
			outcome.Station.Name,
			string(outcome.Status),
			outcome.AttemptsMade(),
			formatBytes(outcome.Bytes()),
			detail,
		})
	}

	t.AppendFooter(table.Row{
		"", "",
		fmt.Sprintf("ok %d", summary.SucceededCount()),
		fmt.Sprintf("failed %d", summary.FailureCount()),
		fmt.Sprintf("skipped %d", summary.SkippedCount()),
	})
	t.Render()
}

func (r *Reporter) reportStation(outcome capture.StationOutcome) {
	logger := slog.With("station", outcome.Station.Name, "status", string(outcome.Status))

	if outcome.Status == capture.StatusSkipped {
		logger.Warn("Station was skipped", "reason", outcome.SkipReason)
	} else {
		logger.Warn("Station failed", "attempts", outcome.AttemptsMade())
	}

	if r.LogPath == nil {
		return
	}
	lines, err := tailLines(r.LogPath(outcome), r.TailLen)
	if err != nil {
		logger.Debug("Could not read capture log", "error", err)
		return
	}
	for _, line := range lines {
		logger.Warn("Capture log", "line", RedactURLs(line))
	}
}

// RedactURLs substitutes every embedded URL with a marker.
func RedactURLs(line string) string {
	return urlPattern.ReplaceAllString(line, "[url-redacted]")
}

// tailLines returns up to limit trailing lines of the file. A missing log is
// not an error; it just has no lines.
func tailLines(path string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open capture log: %w", err)
	}
	defer file.Close()

	ring := make([]string, limit)
	count := 0
	idx := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture log: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func formatBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%d KiB", n/1024)
	}
	return fmt.Sprintf("%.1f MiB", float64(n)/(1024*1024))
}
