package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/playsync/internal/shared"
	th "github.com/desertthunder/playsync/internal/testing"
)

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "TEXT", want: FormatText},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: "csv", want: FormatCSV},
		{in: " json ", want: FormatJSON},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestRenderers(t *testing.T) {
	reports := th.SampleReports()

	t.Run("ReportsToText", func(t *testing.T) {
		out := ReportsToText(reports)

		for _, want := range []string{"Road Trip", "Focus, Vol. 2", "synced", "skipped", "preview"} {
			if !strings.Contains(out, want) {
				t.Errorf("text output missing %q:\n%s", want, out)
			}
		}
		if strings.Count(out, "run-1") != 2 {
			t.Errorf("expected run-1 twice, got:\n%s", out)
		}
	})

	t.Run("ReportsToText empty", func(t *testing.T) {
		if got := ReportsToText(nil); got != "No sync history.\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("ReportsToMarkdown", func(t *testing.T) {
		out := ReportsToMarkdown(reports)

		if !strings.HasPrefix(out, "# Sync History\n") {
			t.Errorf("missing heading:\n%s", out)
		}
		if !strings.Contains(out, "**Runs**: 2 | **Playlists**: 3 | **Added**: 2 | **Unresolved**: 1") {
			t.Errorf("missing totals line:\n%s", out)
		}
		if !strings.Contains(out, "| Road Trip |") {
			t.Errorf("missing table row:\n%s", out)
		}
		if !strings.Contains(out, "2024-05-01T12:00:00Z") {
			t.Errorf("expected absolute timestamps:\n%s", out)
		}
	})

	t.Run("ReportsToCSV", func(t *testing.T) {
		out := ReportsToCSV(reports)
		lines := strings.Split(strings.TrimSpace(out), "\n")

		if len(lines) != 4 {
			t.Fatalf("expected header plus 3 rows, got %d:\n%s", len(lines), out)
		}
		if !strings.EqualFold(lines[0], "sequence,run_id,playlist,target_id,status,missing,found,added,unresolved,gaps,created_at") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(out, `"Focus, Vol. 2"`) {
			t.Errorf("comma in playlist name should be quoted:\n%s", out)
		}
		if !strings.HasPrefix(lines[1], "1,run-1,Road Trip,p1,synced,3,2,2,1,1,") {
			t.Errorf("unexpected first row %q", lines[1])
		}
	})

	t.Run("ReportsToJSON", func(t *testing.T) {
		data, err := ReportsToJSON(reports, false)
		if err != nil {
			t.Fatalf("ReportsToJSON() error = %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(decoded))
		}
		if decoded[0]["status"] != "synced" || decoded[0]["added"] != float64(2) {
			t.Errorf("unexpected first entry %v", decoded[0])
		}
		if _, ok := decoded[1]["target_id"]; ok {
			t.Error("empty target_id should be omitted")
		}
	})

	t.Run("Render", func(t *testing.T) {
		for _, f := range []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON} {
			data, err := Render(reports, f)
			if err != nil || len(data) == 0 {
				t.Errorf("Render(%s) = %d bytes, %v", f, len(data), err)
			}
		}
		if _, err := Render(reports, "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestTotals(t *testing.T) {
	got := Totals(th.SampleReports())
	want := ReportTotals{Runs: 2, Missing: 4, Found: 3, Added: 2, Unresolved: 1, Gaps: 1}
	if got != want {
		t.Errorf("Totals() = %+v, want %+v", got, want)
	}

	if got := Totals(nil); got != (ReportTotals{}) {
		t.Errorf("Totals(nil) = %+v", got)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.md")
		data := []byte(ReportsToMarkdown(th.SampleReports()))

		if err := WriteExport(path, data); err != nil {
			t.Fatalf("WriteExport() error = %v", err)
		}

		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != string(data) {
			t.Error("written content differs")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if err := WriteExport("", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "history.csv")
		if err := WriteExport(path, []byte("x")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestShortRun(t *testing.T) {
	tc := []struct{ in, want string }{
		{in: "3f2a9c1e-1111-2222-3333-444455556666", want: "3f2a9c1e"},
		{in: "run-1", want: "run-1"},
		{in: "", want: ""},
	}
	for _, tt := range tc {
		if got := shortRun(tt.in); got != tt.want {
			t.Errorf("shortRun(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
