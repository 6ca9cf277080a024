// Package server implements the server command.
package server

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/catalog"
	"github.com/dnsarena/probe-cli/internal/cli/root"
	"github.com/dnsarena/probe-cli/internal/config"
	"github.com/pkg/errors"
)

func init() {
	cmd := root.Command("server", "Manage custom DNS servers")

	add := cmd.Command("add", "Add a custom DNS server")
	addName := add.Flag("name", "Name of the server").String()
	addAddress := add.Flag("address", "IP address or hostname of the server").String()
	add.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}
		return doAdd(settings, *addName, *addAddress)
	})

	remove := cmd.Command("remove", "Remove a custom DNS server")
	removeName := remove.Flag("name", "Name of the server").String()
	remove.Action(func(_ *kingpin.ParseContext) error {
		settings, err := root.Init()
		if err != nil {
			log.Errorf("%s", err)
			return err
		}
		return doRemove(settings, *removeName)
	})
}

// askOne prompts for a missing value, unless --batch forbids prompts.
func askOne(message string) (string, error) {
	if *root.Batch {
		return "", errors.New("refusing to prompt in batch mode")
	}
	var value string
	prompt := &survey.Input{Message: message}
	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}
	return value, nil
}

func doAdd(settings *config.Settings, name, address string) error {
	var err error
	if name == "" {
		if name, err = askOne("Name of the server:"); err != nil {
			return err
		}
	}
	if name == "" {
		return errors.New("the server name cannot be empty")
	}
	if address == "" {
		if address, err = askOne("IP address or hostname:"); err != nil {
			return err
		}
	}
	if !config.ValidAddress(address) {
		return errors.Errorf("%q does not look like an IP address or hostname", address)
	}

	if catalog.IsBuiltin(name) {
		log.Warnf("overriding the built-in address of %s", name)
	}
	settings.Lock()
	settings.DNSServers[name] = address
	settings.Unlock()
	if err := settings.Write(); err != nil {
		return err
	}
	log.Infof("added %s (%s)", name, address)
	return nil
}

func doRemove(settings *config.Settings, name string) error {
	var err error
	if name == "" {
		if name, err = askOne("Name of the server to remove:"); err != nil {
			return err
		}
	}

	if _, ok := settings.DNSServers[name]; !ok {
		if catalog.IsBuiltin(name) {
			return errors.Errorf("%s is built in and cannot be removed", name)
		}
		return errors.Errorf("no custom server named %q", name)
	}
	settings.Lock()
	delete(settings.DNSServers, name)
	settings.Unlock()
	if err := settings.Write(); err != nil {
		return err
	}
	if catalog.IsBuiltin(name) {
		log.Infof("restored the built-in address of %s", name)
		return nil
	}
	log.Infof("removed %s", name)
	return nil
}
