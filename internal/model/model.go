// Package model contains the shared data model used by the probing
// engine and by the packages that present its results.
//
// The types in this package are deliberately dumb: probers fill them,
// the scorer attaches scores, renderers read them. No method in here
// performs any network operation.
package model

import "time"

// Target is a single DNS resolver endpoint under test.
type Target struct {
	// Name is the human readable name (e.g. "Google Primary"). The
	// first whitespace separated token doubles as the provider family.
	Name string `json:"name"`

	// Address is the resolver's IPv4 address or hostname.
	Address string `json:"address"`
}

// PingSummary is the aggregate over the round trip time samples
// obtained for one target. All latency fields are in milliseconds.
//
// A nil *PingSummary means "no samples were obtained", which is not
// the same as a summary whose fields are all zero.
type PingSummary struct {
	// Min is the minimum observed round trip time.
	Min float64 `json:"min"`

	// Max is the maximum observed round trip time.
	Max float64 `json:"max"`

	// Avg is the arithmetic mean of the observed round trip times.
	Avg float64 `json:"avg"`

	// Median is the median of the observed round trip times.
	Median float64 `json:"median"`

	// Stdev is the sample standard deviation, zero when fewer than
	// two samples exist.
	Stdev float64 `json:"stdev"`

	// Jitter is Max minus Min, zero when fewer than two samples exist.
	Jitter float64 `json:"jitter"`

	// PacketLoss is the fraction of unanswered echo requests in [0, 1].
	PacketLoss float64 `json:"packet_loss"`

	// SampleCount is the number of samples behind this summary.
	SampleCount int64 `json:"samples"`
}

// DNSProbeResult summarizes the UDP roundtrip probe for one target.
//
// When SuccessRate is zero the probe obtained no usable measurement
// and AvgResponseMs is zero as well. A zero success rate never means
// "instant response".
type DNSProbeResult struct {
	// AvgResponseMs is the mean wall clock milliseconds over the
	// queries that received a response.
	AvgResponseMs float64 `json:"avg_response_ms"`

	// SuccessRate is the fraction of queries answered in [0, 1].
	SuccessRate float64 `json:"success_rate"`
}

// Failures attached to a TestResult when a probing stage fails. These
// strings are stable: the batch output includes them verbatim.
const (
	// FailureTCPUnreachable means the TCP reachability gate failed, so
	// neither the latency probe nor the DNS probe ran for the target.
	FailureTCPUnreachable = "tcp_unreachable"

	// FailurePingNoSamples means the ping tool failed, timed out, or
	// produced no parseable samples.
	FailurePingNoSamples = "ping_no_samples"

	// FailureUnexpected means probing this target panicked and the
	// panic was contained at the per-target boundary.
	FailureUnexpected = "unexpected_failure"
)

// NewFailure returns the pointer form of a failure string.
func NewFailure(s string) *string {
	return &s
}

// TestResult is the outcome of probing a single target. The engine
// creates one per target, the scorer attaches GamingScore afterwards,
// and nothing mutates a TestResult after that.
type TestResult struct {
	// Target is the probed resolver.
	Target Target `json:"target"`

	// Ping is the OPTIONAL latency summary: nil when no samples were
	// obtained.
	Ping *PingSummary `json:"ping"`

	// DNS is the OPTIONAL roundtrip result: nil when the probe was
	// skipped because the target failed the reachability gate.
	DNS *DNSProbeResult `json:"dns"`

	// GamingScore is the composite score attached by scoring.Rank. It
	// is +Inf for unusable targets, hence excluded from JSON.
	GamingScore float64 `json:"-"`

	// Failure is nil on success, else one of the Failure constants.
	Failure *string `json:"failure"`
}

// Recommendation is the primary/secondary pair produced by the
// ranker. Secondary is nil when just one usable target exists. A nil
// *Recommendation means no target was usable at all.
type Recommendation struct {
	// Primary is the best scoring target.
	Primary *TestResult `json:"primary"`

	// Secondary is the best scoring target from a provider family
	// other than the primary's, else the overall runner up.
	Secondary *TestResult `json:"secondary"`
}

// RunResult is what the engine returns to its caller.
type RunResult struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// StartTime is when the run started.
	StartTime time.Time `json:"start_time"`

	// Runtime is the wall clock duration of the run in seconds.
	Runtime float64 `json:"runtime"`

	// Results contains one entry per tested target. Only an
	// interrupted run contains fewer entries than targets.
	Results []*TestResult `json:"results"`

	// Interrupted indicates that the user cancelled the run.
	Interrupted bool `json:"interrupted"`
}
