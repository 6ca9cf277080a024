// Package run implements the run command.
package run

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/cli/root"
	"github.com/dnsarena/probe-cli/internal/config"
	"github.com/dnsarena/probe-cli/internal/engine"
	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/dnsarena/probe-cli/internal/scoring"
	"github.com/schollz/progressbar/v3"
)

func init() {
	cmd := root.Command("run", "Probe every server and rank the usable ones")
	count := cmd.Flag("count", "Echo requests per server for this run").Int64()
	timeout := cmd.Flag("timeout", "Per operation timeout in milliseconds for this run").Int64()
	workers := cmd.Flag("workers", "Concurrent probes for this run").Int64()
	all := cmd.Flag("all", "Show unreachable servers in the table").Bool()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}

		// Flag overrides apply to this run only and are never
		// persisted back to the settings file.
		if *count > 0 {
			settings.PingCount = *count
		}
		if *timeout > 0 {
			settings.TimeoutMs = *timeout
		}
		if *workers > 0 {
			settings.MaxWorkers = *workers
		}
		if *all {
			settings.ShowAll = true
		}
		if err := settings.Validate(); err != nil {
			return err
		}
		return doRun(settings)
	})
}

func doRun(settings *config.Settings) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		log.Info("caught a stop signal, shutting down cleanly")
		cancel()
	}()

	targets := settings.AllTargets()
	log.WithFields(log.Fields{
		"type":  "section_title",
		"title": "dnsarena",
	}).Info("")
	log.Infof("probing %d servers, this takes a minute", len(targets))

	runner := engine.NewRunner(settings.RunConfiguration(), log.Log, newCallbacks(len(targets)))
	result := runner.Run(ctx, targets)
	log.Debugf("run %s finished in %.1fs", result.ID, result.Runtime)

	render(settings, result)
	maybeWarnAboutPrivileges(result)
	return nil
}

func newCallbacks(total int) model.Callbacks {
	if *root.Batch {
		return typedLogCallbacks{}
	}
	bar := progressbar.NewOptions64(
		int64(total),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stdout, "\n")
		}),
		progressbar.OptionSetWriter(os.Stdout),
	)
	return &barCallbacks{bar: bar}
}

// barCallbacks drives the interactive progress bar.
type barCallbacks struct {
	bar *progressbar.ProgressBar
}

var _ model.Callbacks = &barCallbacks{}

func (c *barCallbacks) OnProgress(percentage float64, message string) {
	c.bar.Describe(message)
	c.bar.Add(1)
}

// typedLogCallbacks emits typed progress entries for batch runs.
type typedLogCallbacks struct{}

var _ model.Callbacks = typedLogCallbacks{}

func (typedLogCallbacks) OnProgress(percentage float64, message string) {
	log.WithFields(log.Fields{
		"type":       "progress",
		"percentage": percentage,
	}).Info(message)
}

func render(settings *config.Settings, result *model.RunResult) {
	ranked := scoring.Rank(result.Results)

	rows := ranked
	if !settings.ShowAll {
		rows = usableOnly(ranked)
	}
	log.WithFields(log.Fields{
		"type":  "section_title",
		"title": "Ranked servers",
	}).Info("")
	if len(rows) > 0 {
		log.WithFields(log.Fields{"type": "servers_header"}).Info("")
	}
	for index, item := range rows {
		fields := log.Fields{
			"type":        "server_item",
			"rank":        fmt.Sprintf("%d", index+1),
			"name":        item.Target.Name,
			"address":     item.Target.Address,
			"score":       formatScore(item.GamingScore),
			"min":         "-",
			"jitter":      "-",
			"loss":        "-",
			"dns":         formatDNS(item.DNS),
			"index":       index,
			"total_count": len(rows),
		}
		if item.Ping != nil {
			fields["min"] = formatMillis(item.Ping.Min)
			fields["jitter"] = formatMillis(item.Ping.Jitter)
			fields["loss"] = fmt.Sprintf("%.1f%%", item.Ping.PacketLoss*100)
		}
		log.WithFields(fields).Info("")
	}

	failed := failedOnly(ranked)
	if len(failed) > 0 {
		log.WithFields(log.Fields{
			"type":  "section_title",
			"title": "Failed servers",
		}).Info("")
		for index, item := range failed {
			log.WithFields(log.Fields{
				"type":        "failed_item",
				"name":        item.Target.Name,
				"address":     item.Target.Address,
				"failure":     *item.Failure,
				"index":       index,
				"total_count": len(failed),
			}).Info("")
		}
	}

	recommendation := scoring.Recommend(ranked)
	if recommendation != nil {
		log.WithFields(log.Fields{
			"type":  "section_title",
			"title": "Recommendation",
		}).Info("")
		fields := log.Fields{
			"type":            "recommendation",
			"primary":         recommendation.Primary.Target.Name,
			"primary_address": recommendation.Primary.Target.Address,
			"primary_score":   formatScore(recommendation.Primary.GamingScore),
		}
		message := fmt.Sprintf("Use %s as your DNS server.",
			recommendation.Primary.Target.Name)
		if recommendation.Secondary != nil {
			fields["secondary"] = recommendation.Secondary.Target.Name
			fields["secondary_address"] = recommendation.Secondary.Target.Address
			fields["secondary_score"] = formatScore(recommendation.Secondary.GamingScore)
			message = fmt.Sprintf("Use %s as your primary DNS server and %s as "+
				"your secondary, so that lookups keep working when the primary "+
				"is unreachable.",
				recommendation.Primary.Target.Name,
				recommendation.Secondary.Target.Name)
		}
		log.WithFields(fields).Info(message)
	} else if len(result.Results) > 0 {
		log.Warn("no usable server found, check your connection and firewall")
	}

	usable := len(usableOnly(ranked))
	log.WithFields(log.Fields{
		"type":        "run_summary",
		"tested":      len(result.Results),
		"usable":      usable,
		"failed":      len(result.Results) - usable,
		"runtime":     fmt.Sprintf("%.1fs", result.Runtime),
		"interrupted": result.Interrupted,
	}).Info("")
}

func usableOnly(ranked []*model.TestResult) []*model.TestResult {
	var usable []*model.TestResult
	for _, item := range ranked {
		if !math.IsInf(item.GamingScore, 1) {
			usable = append(usable, item)
		}
	}
	return usable
}

func failedOnly(ranked []*model.TestResult) []*model.TestResult {
	var failed []*model.TestResult
	for _, item := range ranked {
		if item.Failure != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

func formatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.1f", score)
}

func formatMillis(value float64) string {
	return fmt.Sprintf("%.1fms", value)
}

func formatDNS(dns *model.DNSProbeResult) string {
	if dns == nil || dns.SuccessRate <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1fms", dns.AvgResponseMs)
}

// maybeWarnAboutPrivileges hints at missing ICMP privileges when not a
// single target produced ping samples. Some systems expose the missing
// privilege as a ping tool that fails for every destination.
func maybeWarnAboutPrivileges(result *model.RunResult) {
	if runtime.GOOS == "windows" {
		return
	}
	if os.Geteuid() == 0 {
		return
	}
	if len(result.Results) < 1 {
		return
	}
	for _, item := range result.Results {
		if item.Ping != nil {
			return
		}
	}
	log.Warn("every ping produced no samples, the ping tool may need elevated privileges (try sudo)")
}
