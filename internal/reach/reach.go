// Package reach checks whether a resolver is reachable at all.
//
// The check dials a TCP connection to port 53 under a short timeout.
// Public resolvers generally accept TCP on port 53, so a failed
// connect is a strong signal that the host is down or filtered, and
// it lets the engine skip the much more expensive latency probe.
package reach

import (
	"context"
	"net"
	"time"

	"github.com/dnsarena/probe-cli/internal/model"
)

// Port is the TCP port we attempt to connect to.
const Port = "53"

// Prober checks TCP reachability.
//
// The zero value is invalid: use NewProber or fill all fields.
type Prober struct {
	// Dialer is the MANDATORY dialer to use.
	Dialer model.Dialer

	// Logger is the MANDATORY logger to use.
	Logger model.Logger

	// Timeout is the MANDATORY connect timeout.
	Timeout time.Duration
}

// NewProber creates a Prober using the stdlib dialer, the given
// logger, and the given connect timeout.
func NewProber(logger model.Logger, timeout time.Duration) *Prober {
	return &Prober{
		Dialer:  &net.Dialer{},
		Logger:  model.ValidLoggerOrDefault(logger),
		Timeout: timeout,
	}
}

// Reachable dials address:53 over TCP. It returns true when the
// connect succeeds and false otherwise. A false return is not an
// error condition for the caller: the underlying reason is only
// logged at debug level. The connection, when established, is closed
// before returning.
func (p *Prober) Reachable(ctx context.Context, address string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	conn, err := p.Dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, Port))
	if err != nil {
		p.Logger.Debugf("reach: %s: %s", address, err.Error())
		return false
	}
	conn.Close()
	return true
}
