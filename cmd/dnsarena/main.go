package main

import (
	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/cli/app"
	_ "github.com/dnsarena/probe-cli/internal/cli/list"
	_ "github.com/dnsarena/probe-cli/internal/cli/run"
	_ "github.com/dnsarena/probe-cli/internal/cli/server"
	_ "github.com/dnsarena/probe-cli/internal/cli/settings"
	_ "github.com/dnsarena/probe-cli/internal/cli/version"
)

func main() {
	if err := app.Run(); err != nil {
		log.WithError(err).Fatal("dnsarena failed")
	}
}
