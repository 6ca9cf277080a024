// Package settings implements the settings command.
package settings

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/cli/root"
	"github.com/dnsarena/probe-cli/internal/config"
	"github.com/pkg/errors"
)

func init() {
	cmd := root.Command("settings", "Show and edit the settings")

	show := cmd.Command("show", "Show the settings").Default()
	show.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}
		return doShow(settings)
	})

	edit := cmd.Command("edit", "Edit the settings interactively")
	edit.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}
		return doEdit(settings)
	})
}

func doShow(settings *config.Settings) error {
	pingTool := settings.PingTool
	if pingTool == "" {
		pingTool = "(platform default)"
	}
	log.WithFields(log.Fields{
		"type":        "table",
		"ping_count":  fmt.Sprintf("%d", settings.PingCount),
		"timeout_ms":  fmt.Sprintf("%d", settings.TimeoutMs),
		"max_workers": fmt.Sprintf("%d", settings.MaxWorkers),
		"show_all":    fmt.Sprintf("%v", settings.ShowAll),
		"ping_tool":   pingTool,
		"dns_servers": fmt.Sprintf("%d custom", len(settings.DNSServers)),
	}).Info("")
	if settings.Path() != "" {
		log.Infof("settings file: %s", settings.Path())
	}
	return nil
}

func askInt64(message string, current int64) (int64, error) {
	var value string
	prompt := &survey.Input{
		Message: message,
		Default: strconv.FormatInt(current, 10),
	}
	if err := survey.AskOne(prompt, &value); err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %q", value)
	}
	return parsed, nil
}

func doEdit(settings *config.Settings) error {
	if *root.Batch {
		return errors.New("refusing to prompt in batch mode")
	}

	pingCount, err := askInt64("Echo requests per server:", settings.PingCount)
	if err != nil {
		return err
	}
	timeoutMs, err := askInt64("Timeout in milliseconds:", settings.TimeoutMs)
	if err != nil {
		return err
	}
	maxWorkers, err := askInt64("Concurrent probes:", settings.MaxWorkers)
	if err != nil {
		return err
	}
	showAll := settings.ShowAll
	confirm := &survey.Confirm{
		Message: "Show unreachable servers in the results?",
		Default: settings.ShowAll,
	}
	if err := survey.AskOne(confirm, &showAll); err != nil {
		return err
	}

	settings.Lock()
	settings.PingCount = pingCount
	settings.TimeoutMs = timeoutMs
	settings.MaxWorkers = maxWorkers
	settings.ShowAll = showAll
	settings.Unlock()

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := settings.Write(); err != nil {
		return err
	}
	log.Info("settings saved")
	return doShow(settings)
}
