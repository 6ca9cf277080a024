// Package statsx reduces latency samples into summary statistics.
//
// The summary includes minimum, maximum, mean, median, the sample
// standard deviation, and the jitter, which we define as the spread
// between the maximum and the minimum sample.
package statsx

import (
	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/montanaflynn/stats"
)

// Summarize reduces the given round trip time samples, expressed in
// milliseconds, to a model.PingSummary. It fails with the stats
// library's empty-input error when samples is empty: the caller must
// represent that case as an absent summary, never as an all-zero one.
//
// Summarize does not fill PacketLoss: only the prober knows how many
// echo requests were actually sent.
func Summarize(samples []float64) (*model.PingSummary, error) {
	min, err := stats.Min(samples)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(samples)
	if err != nil {
		return nil, err
	}
	avg, err := stats.Mean(samples)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(samples)
	if err != nil {
		return nil, err
	}
	summary := &model.PingSummary{
		Min:         min,
		Max:         max,
		Avg:         avg,
		Median:      median,
		SampleCount: int64(len(samples)),
	}
	// Stdev and jitter both measure spread, so neither is meaningful
	// with fewer than two samples.
	if len(samples) > 1 {
		stdev, err := stats.StandardDeviationSample(samples)
		if err != nil {
			return nil, err
		}
		summary.Stdev = stdev
		summary.Jitter = max - min
	}
	return summary, nil
}
