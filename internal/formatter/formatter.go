// package formatter renders sync history to various formats (plain text, Markdown, CSV, JSON)
package formatter

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

// Format names an output format for report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name case-insensitively; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

var header = table.Row{"#", "Run", "Playlist", "Status", "Missing", "Found", "Added", "Unresolved", "Gaps", "When"}

func newTable(reports []*models.SyncReport, when func(time.Time) string) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(header)

	for _, r := range reports {
		tw.AppendRow(table.Row{
			r.Sequence(),
			shortRun(r.RunID),
			r.Playlist,
			string(r.Status),
			r.Missing,
			r.Found,
			r.Added,
			r.Unresolved,
			r.Gaps,
			when(r.CreatedAt()),
		})
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		if i == 0 || (i >= 4 && i <= 8) {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw
}

// shortRun trims run ids to the first uuid group for display.
func shortRun(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 && len(id) > 8 {
		return id[:i]
	}
	return id
}

// ReportsToText renders reports as a rounded table with relative timestamps.
func ReportsToText(reports []*models.SyncReport) string {
	if len(reports) == 0 {
		return "No sync history.\n"
	}

	tw := newTable(reports, func(t time.Time) string { return humanize.Time(t) })
	tw.SetStyle(table.StyleRounded)
	return tw.Render() + "\n"
}

// ReportsToMarkdown renders reports as a Markdown document with a summary line and table.
func ReportsToMarkdown(reports []*models.SyncReport) string {
	var b strings.Builder

	b.WriteString("# Sync History\n\n")
	if len(reports) == 0 {
		b.WriteString("_No sync history._\n")
		return b.String()
	}

	totals := Totals(reports)
	fmt.Fprintf(&b, "**Runs**: %d | **Playlists**: %d | **Added**: %d | **Unresolved**: %d\n\n",
		totals.Runs, len(reports), totals.Added, totals.Unresolved)

	tw := newTable(reports, func(t time.Time) string { return t.UTC().Format(time.RFC3339) })
	b.WriteString(tw.RenderMarkdown())
	b.WriteString("\n")
	return b.String()
}

// ReportsToCSV renders reports as CSV with absolute timestamps and full run ids.
func ReportsToCSV(reports []*models.SyncReport) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"sequence", "run_id", "playlist", "target_id", "status", "missing", "found", "added", "unresolved", "gaps", "created_at"})

	for _, r := range reports {
		tw.AppendRow(table.Row{
			strconv.Itoa(r.Sequence()),
			r.RunID,
			r.Playlist,
			r.TargetID,
			string(r.Status),
			r.Missing,
			r.Found,
			r.Added,
			r.Unresolved,
			r.Gaps,
			r.CreatedAt().UTC().Format(time.RFC3339),
		})
	}
	return tw.RenderCSV() + "\n"
}

type reportJSON struct {
	ID         string `json:"id"`
	Sequence   int    `json:"sequence"`
	RunID      string `json:"run_id"`
	Playlist   string `json:"playlist"`
	TargetID   string `json:"target_id,omitempty"`
	Status     string `json:"status"`
	Missing    int    `json:"missing"`
	Found      int    `json:"found"`
	Added      int    `json:"added"`
	Unresolved int    `json:"unresolved"`
	Gaps       int    `json:"gaps"`
	CreatedAt  string `json:"created_at"`
}

// ReportsToJSON renders reports as a JSON array, indented when pretty is set.
func ReportsToJSON(reports []*models.SyncReport, pretty bool) ([]byte, error) {
	out := make([]reportJSON, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportJSON{
			ID:         r.ID(),
			Sequence:   r.Sequence(),
			RunID:      r.RunID,
			Playlist:   r.Playlist,
			TargetID:   r.TargetID,
			Status:     string(r.Status),
			Missing:    r.Missing,
			Found:      r.Found,
			Added:      r.Added,
			Unresolved: r.Unresolved,
			Gaps:       r.Gaps,
			CreatedAt:  r.CreatedAt().UTC().Format(time.RFC3339),
		})
	}

	if pretty {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// Render dispatches to the renderer for format.
func Render(reports []*models.SyncReport, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(ReportsToText(reports)), nil
	case FormatMarkdown:
		return []byte(ReportsToMarkdown(reports)), nil
	case FormatCSV:
		return []byte(ReportsToCSV(reports)), nil
	case FormatJSON:
		data, err := ReportsToJSON(reports, true)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reports: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ReportTotals aggregates counts across reports.
type ReportTotals struct {
	Runs       int
	Missing    int
	Found      int
	Added      int
	Unresolved int
	Gaps       int
}

// Totals sums the counts of reports and counts distinct runs.
func Totals(reports []*models.SyncReport) ReportTotals {
	runs := map[string]bool{}
	var t ReportTotals
	for _, r := range reports {
		runs[r.RunID] = true
		t.Missing += r.Missing
		t.Found += r.Found
		t.Added += r.Added
		t.Unresolved += r.Unresolved
		t.Gaps += r.Gaps
	}
	t.Runs = len(runs)
	return t
}

// WriteExport writes rendered output to path.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
