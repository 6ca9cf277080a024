// Package pingx measures round trip latency by invoking the platform
// ping tool and parsing its textual output.
//
// We shell out instead of crafting ICMP packets ourselves because raw
// sockets require elevated privileges on most platforms, while the
// system ping tool ships with whatever privilege it needs.
package pingx

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"time"

	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/dnsarena/probe-cli/internal/runtimex"
	"github.com/dnsarena/probe-cli/internal/shellx"
	"github.com/dnsarena/probe-cli/internal/statsx"
)

// ErrUnreachable indicates that the target did not accept a TCP
// connection on port 53, so we did not even attempt to ping it.
var ErrUnreachable = errors.New("pingx: target unreachable")

// ErrNoSamples indicates that we could not obtain any round trip
// sample: the tool exited nonzero, was killed by the deadline, or
// emitted output without a single parseable sample.
var ErrNoSamples = errors.New("pingx: no samples obtained")

// ReachabilityProber is the gate we consult before spending the much
// larger ping budget on a target. [reach.Prober] implements it.
type ReachabilityProber interface {
	Reachable(ctx context.Context, address string) bool
}

// Prober measures ICMP round trip latency for a single target.
//
// The zero value is invalid: use NewProber or fill all fields.
type Prober struct {
	// Config is the MANDATORY run configuration.
	Config *model.RunConfiguration

	// Logger is the MANDATORY logger to use.
	Logger model.Logger

	// Platform is the OPTIONAL platform tag selecting the argv
	// dialect and the output parser. Empty means runtime.GOOS.
	Platform string

	// Reach is the MANDATORY reachability gate.
	Reach ReachabilityProber
}

// NewProber creates a [Prober] with the given configuration, logger,
// and reachability gate, using the current platform's dialect.
func NewProber(config *model.RunConfiguration, logger model.Logger, reach ReachabilityProber) *Prober {
	return &Prober{
		Config:   config,
		Logger:   model.ValidLoggerOrDefault(logger),
		Platform: "",
		Reach:    reach,
	}
}

// Measure pings the given address and summarizes the observed round
// trip times. It returns [ErrUnreachable] when the reachability gate
// reports the target down, in which case no subprocess runs at all,
// and [ErrNoSamples] when the tool fails, exceeds its deadline, or
// yields no samples. Callers must treat both errors as "summary
// absent" rather than as fatal conditions.
func (p *Prober) Measure(ctx context.Context, address string) (*model.PingSummary, error) {
	if !p.Reach.Reachable(ctx, address) {
		return nil, ErrUnreachable
	}
	argv, err := p.newArgv(address)
	if err != nil {
		p.Logger.Warnf("pingx: cannot construct the ping command: %s", err.Error())
		return nil, ErrNoSamples
	}
	// Give the tool 1.5x the expected worst case runtime, then kill
	// it: a hung subprocess must not block a worker forever.
	budget := time.Duration(p.Config.PingCount) * p.Config.Timeout
	budget += budget / 2
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	envp := &shellx.Envp{}
	envp.Append("LANG", "C") // the parsers match English tokens
	output, err := shellx.OutputEx(ctx, &shellx.Config{Logger: p.Logger}, argv, envp)
	if err != nil {
		p.Logger.Debugf("pingx: %s: %s", address, err.Error())
		return nil, ErrNoSamples
	}
	tx := p.parser().Parse(string(output))
	if len(tx.Samples) < 1 {
		return nil, ErrNoSamples
	}
	if tx.ReportedLoss >= 0 {
		p.Logger.Debugf("pingx: %s: tool reported %.1f%% packet loss", address, tx.ReportedLoss*100)
	}
	summary, err := statsx.Summarize(tx.Samples)
	runtimex.PanicOnError(err, "statsx.Summarize failed with nonempty input")
	summary.PacketLoss = packetLoss(len(tx.Samples), p.Config.PingCount)
	return summary, nil
}

// newArgv constructs the ping invocation for the given address.
func (p *Prober) newArgv(address string) (*shellx.Argv, error) {
	argv, err := p.baseArgv()
	if err != nil {
		return nil, err
	}
	count := strconv.Itoa(p.Config.PingCount)
	switch p.platform() {
	case "windows":
		argv.Append("-n", count)
		argv.Append("-w", strconv.FormatInt(p.Config.Timeout.Milliseconds(), 10))
	default:
		argv.Append("-c", count)
		argv.Append("-W", strconv.Itoa(waitSeconds(p.Config.Timeout)))
	}
	argv.Append(address)
	return argv, nil
}

// baseArgv returns the argv of the tool itself: the user configured
// override when there is one, otherwise the platform default.
func (p *Prober) baseArgv() (*shellx.Argv, error) {
	if p.Config.PingTool != "" {
		return shellx.ParseCommandLine(p.Config.PingTool)
	}
	return shellx.NewArgv("ping")
}

func (p *Prober) platform() string {
	if p.Platform != "" {
		return p.Platform
	}
	return runtime.GOOS
}

func (p *Prober) parser() Parser {
	return NewParser(p.platform())
}

// waitSeconds converts the per packet wait budget to the whole
// seconds unit used by the unix -W flag. We round up so that a sub
// second budget never becomes zero, which ping would interpret as
// an unlimited wait.
func waitSeconds(timeout time.Duration) int {
	const second = int64(time.Second)
	return int((int64(timeout) + second - 1) / second)
}

// packetLoss computes the loss fraction given how many samples we
// parsed and how many echo requests we asked for.
func packetLoss(obtained, requested int) float64 {
	if obtained >= requested {
		return 0
	}
	return 1 - float64(obtained)/float64(requested)
}
