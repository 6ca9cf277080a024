// Package dnsrtt measures how quickly a resolver answers over UDP.
//
// For each domain in a small fixed list we send a minimal A query to
// port 53 and time how long the first datagram back takes. We never
// parse or validate the response: any bytes received prove that the
// resolver is alive and timestamp its latency. This is a raw UDP
// round trip measurement, not a DNS correctness check.
package dnsrtt

import (
	"context"
	"net"
	"time"

	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/dnsarena/probe-cli/internal/runtimex"
	"github.com/miekg/dns"
	"github.com/montanaflynn/stats"
)

// Port is the UDP port we query.
const Port = "53"

// queryDomains contains the domains we resolve, in the order in
// which we resolve them.
var queryDomains = []string{
	"google.com",
	"youtube.com",
	"facebook.com",
	"amazon.com",
	"netflix.com",
}

// Prober measures DNS roundtrip latency for a single resolver.
//
// The zero value is invalid: use NewProber or fill all fields.
type Prober struct {
	// Dialer is the MANDATORY dialer to use.
	Dialer model.Dialer

	// Domains OPTIONALLY overrides the domains to query. Leave it
	// empty to query the default list.
	Domains []string

	// Logger is the MANDATORY logger to use.
	Logger model.Logger

	// Timeout is the MANDATORY per query read deadline.
	Timeout time.Duration
}

// NewProber creates a [Prober] using the stdlib dialer, the default
// domains list, the given logger, and the given per query timeout.
func NewProber(logger model.Logger, timeout time.Duration) *Prober {
	return &Prober{
		Dialer:  &net.Dialer{},
		Domains: nil,
		Logger:  model.ValidLoggerOrDefault(logger),
		Timeout: timeout,
	}
}

// Measure queries the resolver at the given address once per domain
// and returns the average latency over the queries that succeeded
// along with the fraction of queries that succeeded. Per domain
// failures are logged and counted, never fatal. When every query
// fails the result is {0, 0}: a zero success rate means "no usable
// measurement", never "instant response".
func (p *Prober) Measure(ctx context.Context, address string) *model.DNSProbeResult {
	domains := p.domains()
	endpoint := net.JoinHostPort(address, Port)
	var times []float64
	for _, domain := range domains {
		elapsed, err := p.roundtrip(ctx, endpoint, domain)
		if err != nil {
			p.Logger.Debugf("dnsrtt: %s: %s: %s", address, domain, err.Error())
			continue
		}
		times = append(times, elapsed)
	}
	result := &model.DNSProbeResult{}
	if len(times) > 0 {
		avg, err := stats.Mean(times)
		runtimex.PanicOnError(err, "stats.Mean failed with nonempty input")
		result.AvgResponseMs = avg
		result.SuccessRate = float64(len(times)) / float64(len(domains))
	}
	return result
}

// roundtrip sends a single query for domain to endpoint and waits
// for any response, returning the elapsed milliseconds. The socket
// is closed on every exit path.
func (p *Prober) roundtrip(ctx context.Context, endpoint, domain string) (float64, error) {
	rawQuery, err := newRawQuery(domain)
	if err != nil {
		return 0, err
	}
	conn, err := p.Dialer.DialContext(ctx, "udp", endpoint)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	start := time.Now()
	if err := conn.SetDeadline(start.Add(p.Timeout)); err != nil {
		return 0, err
	}
	if _, err := conn.Write(rawQuery); err != nil {
		return 0, err
	}
	buffer := make([]byte, 512)
	if _, err := conn.Read(buffer); err != nil {
		return 0, err
	}
	return float64(time.Since(start)) / float64(time.Millisecond), nil
}

func (p *Prober) domains() []string {
	if len(p.Domains) > 0 {
		return p.Domains
	}
	return queryDomains
}

// newRawQuery encodes a minimal query for the A record of the given
// domain: standard header, one question, no EDNS.
func newRawQuery(domain string) ([]byte, error) {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = true
	query.Question = []dns.Question{{
		Name:   dns.Fqdn(domain),
		Qtype:  dns.TypeA,
		Qclass: dns.ClassINET,
	}}
	return query.Pack()
}
