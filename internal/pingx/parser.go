package pingx

//
// Output parsing
//

import (
	"strconv"
	"strings"
)

// Transcript contains what we could extract from the output of a
// single ping run.
type Transcript struct {
	// Samples contains the round trip times in milliseconds, in the
	// order in which the tool printed them.
	Samples []float64

	// ReportedLoss is the loss fraction printed by the tool itself,
	// or a negative value when we did not recognize a loss line. We
	// only use this field for debug logging: the loss we account
	// for is always computed from the sample count.
	ReportedLoss float64
}

// Parser extracts a [Transcript] from the raw output of a ping tool.
//
// Implementations are line oriented and tolerant to noise: a line
// that does not contain a recognizable sample is skipped. Parsing
// never fails; an output without samples yields an empty transcript.
type Parser interface {
	Parse(output string) *Transcript
}

// NewParser returns the [Parser] for the given platform tag, which
// should be a GOOS value. Windows has its own output dialect; every
// other platform uses the unix dialect.
func NewParser(platform string) Parser {
	if platform == "windows" {
		return &windowsParser{}
	}
	return &unixParser{}
}

// unixParser handles the iputils and BSD ping dialect, where each
// reply line carries a "time=12.3 ms" token and the final summary
// carries a "N% packet loss" token.
type unixParser struct{}

var _ Parser = &unixParser{}

func (*unixParser) Parse(output string) *Transcript {
	tx := &Transcript{ReportedLoss: -1}
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "time=") {
			if value, good := sampleAfter(line, "time="); good {
				tx.Samples = append(tx.Samples, value)
			}
			continue
		}
		// "4 packets transmitted, 3 received, 25% packet loss, time 3004ms"
		if index := strings.Index(line, "% packet loss"); index >= 0 {
			fields := strings.Fields(line[:index])
			if len(fields) < 1 {
				continue
			}
			if value, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
				tx.ReportedLoss = value / 100
			}
		}
	}
	return tx
}

// windowsParser handles the Windows ping dialect, where reply lines
// carry a "time=12ms" token, replies below the clock resolution are
// printed as "time<1ms", and the summary carries a "(N% loss)" token.
type windowsParser struct{}

var _ Parser = &windowsParser{}

func (*windowsParser) Parse(output string) *Transcript {
	tx := &Transcript{ReportedLoss: -1}
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "time=") {
			if value, good := sampleAfter(line, "time="); good {
				tx.Samples = append(tx.Samples, value)
			}
			continue
		}
		// A reply faster than the clock resolution still is a
		// reply: account for it as a 1ms sample.
		if strings.Contains(line, "time<") {
			tx.Samples = append(tx.Samples, 1.0)
			continue
		}
		// "    Packets: Sent = 4, Received = 3, Lost = 1 (25% loss),"
		if index := strings.Index(line, "% loss"); index >= 0 {
			start := strings.LastIndex(line[:index], "(")
			if start < 0 {
				continue
			}
			if value, err := strconv.ParseFloat(line[start+1:index], 64); err == nil {
				tx.ReportedLoss = value / 100
			}
		}
	}
	return tx
}

// sampleAfter extracts the millisecond value following the given
// marker in line. The value may be glued to the "ms" unit, as in
// "time=31ms", or separated from it, as in "time=31.4 ms".
func sampleAfter(line, marker string) (float64, bool) {
	_, rest, found := strings.Cut(line, marker)
	if !found {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) < 1 {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "ms"), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
