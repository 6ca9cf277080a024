// Package list implements the list command.
package list

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/cli/root"
	"github.com/dnsarena/probe-cli/internal/scoring"
)

func init() {
	cmd := root.Command("list", "List the known DNS servers")
	cmd.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}

		log.WithFields(log.Fields{
			"type":  "section_title",
			"title": "DNS servers",
		}).Info("")

		targets := settings.AllTargets()
		for _, target := range targets {
			origin := "builtin"
			if _, ok := settings.DNSServers[target.Name]; ok {
				origin = "custom"
			}
			log.WithFields(log.Fields{
				"address":  target.Address,
				"provider": scoring.ProviderFamily(target.Name),
				"origin":   origin,
			}).Info(target.Name)
		}
		log.Infof("%d servers", len(targets))
		return nil
	})
}
