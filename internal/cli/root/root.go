// Package root contains the root command and the global flags.
package root

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/logfmt"
	"github.com/dnsarena/probe-cli/internal/config"
	"github.com/dnsarena/probe-cli/internal/log/handlers/cli"
	"github.com/dnsarena/probe-cli/internal/util"
	"github.com/dnsarena/probe-cli/internal/version"
)

// Cmd is the root command
var Cmd = kingpin.New("dnsarena", "Find the fastest DNS servers for your connection")

// Command is syntax sugar for defining sub-commands
var Command = Cmd.Command

// Batch is true when --batch disabled prompts and interactive output.
var Batch *bool

// Init should be called by every subcommand that needs the settings
var Init func() (*config.Settings, error)

func init() {
	homePath := Cmd.Flag("home", "Set a custom state directory").String()
	configPath := Cmd.Flag("config", "Set a custom settings file path").Short('c').String()
	verbose := Cmd.Flag("verbose", "Enable verbose log output.").Short('v').Bool()
	Batch = Cmd.Flag("batch", "Never prompt and emit machine parseable output.").Bool()

	Cmd.PreAction(func(ctx *kingpin.ParseContext) error {
		log.SetHandler(cli.Default)
		if *Batch {
			log.SetHandler(logfmt.Default)
		}
		if *verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("dnsarena version %s", version.Version)
		}

		Init = func() (*config.Settings, error) {
			home := *homePath
			if home == "" {
				var err error
				home, err = util.DefaultHomePath()
				if err != nil {
					return nil, err
				}
			}
			if err := config.MaybeInitializeHome(home); err != nil {
				return nil, err
			}

			if *configPath != "" {
				log.Debugf("reading settings from %s", *configPath)
				return config.ReadConfig(*configPath)
			}
			log.Debug("reading default settings file")
			return config.InitDefaultSettings(home)
		}

		return nil
	})
}
