package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/util"
	"github.com/mitchellh/go-wordwrap"
)

// Scoreboard column widths. Pre-formatted values wider than their
// column push the row border out instead of being truncated.
const (
	rankWidth    = 3
	nameWidth    = 22
	addressWidth = 16
	scoreWidth   = 7
	metricWidth  = 7
	lossWidth    = 6
	dnsWidth     = 8
)

// scoreboardWidth is the inner width of the scoreboard table: the
// eight columns plus the seven separating spaces.
const scoreboardWidth = rankWidth + nameWidth + addressWidth + scoreWidth +
	2*metricWidth + lossWidth + dnsWidth + 7

func serverRow(rank, name, address, score, min, jitter, loss, dns string) string {
	return strings.Join([]string{
		util.RightPad(rank, rankWidth),
		util.RightPad(name, nameWidth),
		util.RightPad(address, addressWidth),
		util.RightPad(score, scoreWidth),
		util.RightPad(min, metricWidth),
		util.RightPad(jitter, metricWidth),
		util.RightPad(loss, lossWidth),
		util.RightPad(dns, dnsWidth),
	}, " ")
}

func logServersHeader(w io.Writer, f log.Fields) error {
	header := serverRow("#", "Server", "Address", "Score", "Min", "Jitter", "Loss", "DNS")
	fmt.Fprintf(w, "┏"+strings.Repeat("━", scoreboardWidth+2)+"┓\n")
	fmt.Fprintf(w, "┃ %s ┃\n", bold.Sprint(header))
	fmt.Fprintf(w, "┡"+strings.Repeat("━", scoreboardWidth+2)+"┩\n")
	return nil
}

func logServerItem(w io.Writer, f log.Fields) error {
	row := serverRow(
		f.Get("rank").(string),
		f.Get("name").(string),
		f.Get("address").(string),
		f.Get("score").(string),
		f.Get("min").(string),
		f.Get("jitter").(string),
		f.Get("loss").(string),
		f.Get("dns").(string),
	)
	fmt.Fprintf(w, "│ %s │\n", util.RightPad(row, scoreboardWidth))

	index := f.Get("index").(int)
	totalCount := f.Get("total_count").(int)
	if index == totalCount-1 {
		fmt.Fprintf(w, "└"+strings.Repeat("─", scoreboardWidth+2)+"┘\n")
	}
	return nil
}

const failureWidth = 24

// failedWidth is the inner width of the failed servers table.
const failedWidth = nameWidth + addressWidth + failureWidth + 2

func logFailedItem(w io.Writer, f log.Fields) error {
	index := f.Get("index").(int)
	totalCount := f.Get("total_count").(int)
	if index == 0 {
		fmt.Fprintf(w, "┏"+strings.Repeat("━", failedWidth+2)+"┓\n")
	}
	row := strings.Join([]string{
		util.RightPad(f.Get("name").(string), nameWidth),
		util.RightPad(f.Get("address").(string), addressWidth),
		util.RightPad(f.Get("failure").(string), failureWidth),
	}, " ")
	fmt.Fprintf(w, "┃ %s ┃\n", row)
	if index == totalCount-1 {
		fmt.Fprintf(w, "┗"+strings.Repeat("━", failedWidth+2)+"┛\n")
	}
	return nil
}

func logRecommendation(w io.Writer, e *log.Entry) error {
	f := e.Fields
	fmt.Fprintf(w, "%s %s (%s), score %s\n",
		bold.Sprintf("%-10s", "Primary:"),
		f.Get("primary").(string),
		f.Get("primary_address").(string),
		f.Get("primary_score").(string))
	if secondary, ok := f["secondary"].(string); ok {
		fmt.Fprintf(w, "%s %s (%s), score %s\n",
			bold.Sprintf("%-10s", "Secondary:"),
			secondary,
			f.Get("secondary_address").(string),
			f.Get("secondary_score").(string))
	}
	for _, line := range strings.Split(wordwrap.WrapString(e.Message, 58), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

func logRunSummary(w io.Writer, f log.Fields) error {
	tested := f.Get("tested").(int)
	if tested <= 0 {
		fmt.Fprintf(w, "No servers tested\n")
		fmt.Fprintf(w, "Try running:\n")
		fmt.Fprintf(w, "  dnsarena run\n")
		return nil
	}

	line := fmt.Sprintf("%d tested   %d usable   %d failed   in %s",
		tested,
		f.Get("usable").(int),
		f.Get("failed").(int),
		f.Get("runtime").(string))
	if interrupted, ok := f["interrupted"].(bool); ok && interrupted {
		line += "   (interrupted)"
	}

	width := util.EscapeAwareRuneCountInString(line)
	fmt.Fprintf(w, "┌"+strings.Repeat("─", width+2)+"┐\n")
	fmt.Fprintf(w, "│ %s │\n", line)
	fmt.Fprintf(w, "└"+strings.Repeat("─", width+2)+"┘\n")
	return nil
}
