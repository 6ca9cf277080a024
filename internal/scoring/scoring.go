// Package scoring turns probe results into a gaming score, a total
// order, and a primary/secondary recommendation.
//
// The score is a weighted sum rewarding low and stable latency above
// everything else: minimum latency weighs 0.4, jitter (scaled by 3)
// weighs 0.3, packet loss percentage (scaled by 2) weighs 0.2, and
// DNS roundtrip latency weighs 0.1. Lower is better. Targets without
// a latency summary, and targets losing too many packets, score
// positive infinity and never appear in recommendations.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/dnsarena/probe-cli/internal/model"
)

// MaxAcceptableLoss is the packet loss fraction at or above which a
// target is unusable for gaming regardless of its latency.
const MaxAcceptableLoss = 0.05

const (
	weightMinLatency = 0.4
	weightJitter     = 0.3
	weightLoss       = 0.2
	weightDNS        = 0.1

	jitterFactor = 3
	lossFactor   = 2

	// dnsUnusablePenalty is the flat DNS term used when the probe
	// obtained no usable measurement.
	dnsUnusablePenalty = 10
)

// Compute returns the gaming score of a single result: +Inf when the
// latency summary is absent or the packet loss reaches
// [MaxAcceptableLoss], the weighted sum otherwise.
func Compute(result *model.TestResult) float64 {
	ping := result.Ping
	if ping == nil || ping.PacketLoss >= MaxAcceptableLoss {
		return math.Inf(1)
	}
	score := weightMinLatency * ping.Min
	score += weightJitter * (jitterFactor * ping.Jitter)
	score += weightLoss * (lossFactor * ping.PacketLoss * 100)
	score += dnsTerm(result.DNS)
	return score
}

// dnsTerm returns the DNS contribution to the score.
func dnsTerm(dns *model.DNSProbeResult) float64 {
	if dns == nil || dns.SuccessRate <= 0 || dns.AvgResponseMs <= 0 {
		return dnsUnusablePenalty
	}
	return weightDNS * dns.AvgResponseMs
}

// Rank attaches a gaming score to every result and returns a new
// slice sorted by ascending score. Ties break by ascending jitter,
// so equally scored but more stable targets rank first. The input
// slice is not reordered; the pointed-to results receive their
// score in place.
func Rank(results []*model.TestResult) []*model.TestResult {
	ranked := append([]*model.TestResult{}, results...)
	for _, result := range ranked {
		result.GamingScore = Compute(result)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	return ranked
}

// less returns whether left ranks before right.
func less(left, right *model.TestResult) bool {
	if left.GamingScore != right.GamingScore {
		return left.GamingScore < right.GamingScore
	}
	return sortJitter(left) < sortJitter(right)
}

// sortJitter returns the jitter used for breaking score ties. A
// result without a summary has no jitter and sorts last among the
// equally scored.
func sortJitter(result *model.TestResult) float64 {
	if result.Ping == nil {
		return math.Inf(1)
	}
	return result.Ping.Jitter
}

// Recommend picks the primary and secondary recommendation from a
// ranked result list. The primary is the best usable result. The
// secondary is the best usable result operated by a different
// provider family, falling back to the overall runner up when every
// other usable result belongs to the primary's family. Returns nil
// when no result has a finite score.
func Recommend(ranked []*model.TestResult) *model.Recommendation {
	usable := []*model.TestResult{}
	for _, result := range ranked {
		if !math.IsInf(result.GamingScore, 1) {
			usable = append(usable, result)
		}
	}
	if len(usable) < 1 {
		return nil
	}
	primary := usable[0]
	recommendation := &model.Recommendation{Primary: primary}
	family := ProviderFamily(primary.Target.Name)
	for _, candidate := range usable[1:] {
		if ProviderFamily(candidate.Target.Name) != family {
			recommendation.Secondary = candidate
			return recommendation
		}
	}
	if len(usable) >= 2 {
		recommendation.Secondary = usable[1]
	}
	return recommendation
}

// ProviderFamily extracts the provider family from a display name:
// its first whitespace separated token. "Google Primary" and "Google
// Secondary" belong to the same family.
func ProviderFamily(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 1 {
		return ""
	}
	return fields[0]
}
