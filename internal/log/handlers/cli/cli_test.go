package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/fatih/color"
)

func newTestLogger(w *bytes.Buffer) *log.Logger {
	return &log.Logger{Handler: New(w), Level: log.DebugLevel}
}

func withPlainColors(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = previous
	})
}

// visibleWidth returns the rune count of every nonempty output line.
func visibleWidths(out string) []int {
	var widths []int
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		widths = append(widths, len([]rune(line)))
	}
	return widths
}

func TestDefaultLog(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	logger.WithFields(log.Fields{
		"address": "8.8.8.8",
		"source":  "hidden",
	}).Info("Google Primary")

	out := buffer.String()
	if !strings.Contains(out, "• Google Primary") {
		t.Fatalf("missing level tag or message: %q", out)
	}
	if !strings.Contains(out, "address=8.8.8.8") {
		t.Fatalf("missing field: %q", out)
	}
	if strings.Contains(out, "source=") {
		t.Fatalf("the source field should be hidden: %q", out)
	}
}

func TestSectionTitle(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	logger.WithFields(log.Fields{
		"type":  "section_title",
		"title": "DNS Arena",
	}).Info("")

	out := buffer.String()
	if !strings.HasPrefix(out, "┏") {
		t.Fatalf("missing top border: %q", out)
	}
	if !strings.Contains(out, "┃ DNS Arena") {
		t.Fatalf("missing title row: %q", out)
	}
	if !strings.Contains(out, "┗") {
		t.Fatalf("missing bottom border: %q", out)
	}
}

func TestTable(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	logger.WithFields(log.Fields{
		"type":       "table",
		"ping_count": "10",
		"timeout_ms": "1000",
	}).Info("")

	out := buffer.String()
	if !strings.Contains(out, "ping_count: 10") {
		t.Fatalf("missing table row: %q", out)
	}
	if !strings.Contains(out, "timeout_ms: 1000") {
		t.Fatalf("missing table row: %q", out)
	}
	if strings.Contains(out, "type:") {
		t.Fatalf("the type field should not render: %q", out)
	}
	count := strings.Index(out, "ping_count")
	if timeout := strings.Index(out, "timeout_ms"); timeout < count {
		t.Fatalf("rows should be sorted by name: %q", out)
	}
}

func TestProgress(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	logger.WithFields(log.Fields{
		"type":       "progress",
		"percentage": 0.5,
	}).Info("tested Google Primary")

	if out := buffer.String(); out != "[ 50.0%] tested Google Primary\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestScoreboard(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	logger.WithFields(log.Fields{"type": "servers_header"}).Info("")
	rows := []struct {
		rank  string
		name  string
		score string
	}{
		{"1", "Cloudflare Primary", "8.2"},
		{"2", "Google Primary", "9.1"},
		{"3", "Norton ConnectSafe", "∞"},
	}
	for index, row := range rows {
		logger.WithFields(log.Fields{
			"type":        "server_item",
			"rank":        row.rank,
			"name":        row.name,
			"address":     "10.0.0.1",
			"score":       row.score,
			"min":         "11.8ms",
			"jitter":      "1.3ms",
			"loss":        "0%",
			"dns":         "24.1ms",
			"index":       index,
			"total_count": len(rows),
		}).Info("")
	}

	out := buffer.String()
	if !strings.Contains(out, "Server") || !strings.Contains(out, "Jitter") {
		t.Fatalf("missing header row: %q", out)
	}
	if !strings.Contains(out, "Cloudflare Primary") {
		t.Fatalf("missing server row: %q", out)
	}
	if !strings.Contains(out, "∞") {
		t.Fatalf("missing unusable score: %q", out)
	}
	if !strings.Contains(out, "└") {
		t.Fatalf("missing bottom border: %q", out)
	}
	widths := visibleWidths(out)
	if len(widths) != 7 {
		t.Fatalf("expected 7 lines, got %d: %q", len(widths), out)
	}
	for _, width := range widths {
		if width != widths[0] {
			t.Fatalf("the table is not aligned: %q", out)
		}
	}
}

func TestFailedItems(t *testing.T) {
	withPlainColors(t)
	var buffer bytes.Buffer
	logger := newTestLogger(&buffer)

	failures := []string{"tcp_unreachable", "ping_no_samples"}
	for index, failure := range failures {
		logger.WithFields(log.Fields{
			"type":        "failed_item",
			"name":        "Quad9 Primary",
			"address":     "9.9.9.9",
			"failure":     failure,
			"index":       index,
			"total_count": len(failures),
		}).Info("")
	}

	out := buffer.String()
	if !strings.HasPrefix(out, "┏") {
		t.Fatalf("missing top border: %q", out)
	}
	if !strings.Contains(out, "tcp_unreachable") || !strings.Contains(out, "ping_no_samples") {
		t.Fatalf("missing failure rows: %q", out)
	}
	if !strings.Contains(out, "┗") {
		t.Fatalf("missing bottom border: %q", out)
	}
	widths := visibleWidths(out)
	for _, width := range widths {
		if width != widths[0] {
			t.Fatalf("the table is not aligned: %q", out)
		}
	}
}

func TestRecommendation(t *testing.T) {
	withPlainColors(t)

	t.Run("with a secondary server", func(t *testing.T) {
		var buffer bytes.Buffer
		logger := newTestLogger(&buffer)
		logger.WithFields(log.Fields{
			"type":              "recommendation",
			"primary":           "Cloudflare Primary",
			"primary_address":   "1.1.1.1",
			"primary_score":     "8.2",
			"secondary":         "Quad9 Primary",
			"secondary_address": "9.9.9.9",
			"secondary_score":   "9.1",
		}).Info("Use the primary for every lookup and keep the secondary " +
			"configured as a fallback so that resolution still works when " +
			"the primary is down.")

		out := buffer.String()
		if !strings.Contains(out, "Primary:") {
			t.Fatalf("missing primary row: %q", out)
		}
		if !strings.Contains(out, "Cloudflare Primary (1.1.1.1), score 8.2") {
			t.Fatalf("unexpected primary row: %q", out)
		}
		if !strings.Contains(out, "Quad9 Primary (9.9.9.9), score 9.1") {
			t.Fatalf("unexpected secondary row: %q", out)
		}
		var wrapped int
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "  ") {
				wrapped++
			}
		}
		if wrapped < 2 {
			t.Fatalf("expected a wrapped advice paragraph: %q", out)
		}
	})

	t.Run("without a secondary server", func(t *testing.T) {
		var buffer bytes.Buffer
		logger := newTestLogger(&buffer)
		logger.WithFields(log.Fields{
			"type":            "recommendation",
			"primary":         "Cloudflare Primary",
			"primary_address": "1.1.1.1",
			"primary_score":   "8.2",
		}).Info("No other server was usable.")

		out := buffer.String()
		if strings.Contains(out, "Secondary:") {
			t.Fatalf("unexpected secondary row: %q", out)
		}
	})
}

func TestRunSummary(t *testing.T) {
	withPlainColors(t)

	t.Run("complete run", func(t *testing.T) {
		var buffer bytes.Buffer
		logger := newTestLogger(&buffer)
		logger.WithFields(log.Fields{
			"type":    "run_summary",
			"tested":  15,
			"usable":  12,
			"failed":  3,
			"runtime": "34.2s",
		}).Info("")

		out := buffer.String()
		if !strings.Contains(out, "15 tested   12 usable   3 failed   in 34.2s") {
			t.Fatalf("unexpected summary: %q", out)
		}
		if strings.Contains(out, "(interrupted)") {
			t.Fatalf("unexpected interruption note: %q", out)
		}
		widths := visibleWidths(out)
		if len(widths) != 3 {
			t.Fatalf("expected a three line box: %q", out)
		}
		for _, width := range widths {
			if width != widths[0] {
				t.Fatalf("the box is not aligned: %q", out)
			}
		}
	})

	t.Run("interrupted run", func(t *testing.T) {
		var buffer bytes.Buffer
		logger := newTestLogger(&buffer)
		logger.WithFields(log.Fields{
			"type":        "run_summary",
			"tested":      3,
			"usable":      2,
			"failed":      1,
			"runtime":     "4.2s",
			"interrupted": true,
		}).Info("")

		if out := buffer.String(); !strings.Contains(out, "(interrupted)") {
			t.Fatalf("missing interruption note: %q", out)
		}
	})

	t.Run("empty run", func(t *testing.T) {
		var buffer bytes.Buffer
		logger := newTestLogger(&buffer)
		logger.WithFields(log.Fields{
			"type":   "run_summary",
			"tested": 0,
		}).Info("")

		out := buffer.String()
		if !strings.Contains(out, "No servers tested") {
			t.Fatalf("missing empty note: %q", out)
		}
		if !strings.Contains(out, "dnsarena run") {
			t.Fatalf("missing suggestion: %q", out)
		}
	})
}
