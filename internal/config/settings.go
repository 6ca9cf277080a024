// Package config handles the dnsarena settings file.
//
// Settings live in a single JSON file inside the dnsarena home
// directory. ReadConfig loads and validates them, Write persists
// them under a mutex, and InitDefaultSettings creates the file with
// default values on first run.
package config

import (
	_ "embed"
	"encoding/json"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/dnsarena/probe-cli/internal/catalog"
	"github.com/dnsarena/probe-cli/internal/model"
	"github.com/dnsarena/probe-cli/internal/util"
	"github.com/pkg/errors"
)

// ReadConfig reads the settings from the path. When the file does not
// exist the raw os.ReadFile error is returned, so that callers can
// test it with os.IsNotExist.
func ReadConfig(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := ParseConfig(b)
	if err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}
	s.path = path
	return s, nil
}

// ParseConfig returns settings from JSON bytes. Fields missing from
// the JSON keep their default value, so files written by older
// versions and files containing unknown future fields still parse.
func ParseConfig(b []byte) (*Settings, error) {
	s := NewDefaults()

	if err := json.Unmarshal(b, s); err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating")
	}

	return s, nil
}

// Settings for the dnsarena installation.
type Settings struct {
	// Private settings
	Comment string `json:"_"`
	Version int64  `json:"_version"`

	// PingCount is the number of echo requests sent to each server.
	PingCount int64 `json:"ping_count"`

	// TimeoutMs is the wait budget in milliseconds for a single
	// network operation (one echo reply, one TCP connect, one DNS
	// roundtrip).
	TimeoutMs int64 `json:"timeout_ms"`

	// MaxWorkers bounds how many servers are probed concurrently.
	MaxWorkers int64 `json:"max_workers"`

	// ShowAll includes unreachable servers in the results table.
	ShowAll bool `json:"show_all"`

	// PingTool optionally overrides the ping command line.
	PingTool string `json:"ping_tool,omitempty"`

	// DNSServers maps custom server names to addresses. Names that
	// match a built-in server override its address.
	DNSServers map[string]string `json:"dns_servers"`

	mutex sync.Mutex
	path  string
}

// NewDefaults returns settings with every field set to its default.
func NewDefaults() *Settings {
	return &Settings{
		Comment:    "This is your dnsarena settings file. See https://github.com/dnsarena/probe-cli for help",
		Version:    1,
		PingCount:  10,
		TimeoutMs:  1000,
		MaxWorkers: 10,
		ShowAll:    true,
		DNSServers: map[string]string{},
	}
}

// Write the settings file in json to the path.
func (s *Settings) Write() error {
	s.Lock()
	defer s.Unlock()
	if s.path == "" {
		return errors.New("settings file path is empty")
	}
	settingsJSON, _ := json.MarshalIndent(s, "", "  ")
	if err := os.WriteFile(s.path, settingsJSON, 0644); err != nil {
		return errors.Wrap(err, "writing settings JSON")
	}
	return nil
}

// Lock acquires the write mutex.
func (s *Settings) Lock() {
	s.mutex.Lock()
}

// Unlock releases the write mutex.
func (s *Settings) Unlock() {
	s.mutex.Unlock()
}

// Path returns the file the settings were read from. The empty
// string means the settings were not read from a file.
func (s *Settings) Path() string {
	return s.path
}

// Validate the settings file.
func (s *Settings) Validate() error {
	if s.PingCount < 1 {
		return errors.Errorf("ping_count must be at least 1, got %d", s.PingCount)
	}
	if s.TimeoutMs < 1 {
		return errors.Errorf("timeout_ms must be at least 1, got %d", s.TimeoutMs)
	}
	if s.MaxWorkers < 1 {
		return errors.Errorf("max_workers must be at least 1, got %d", s.MaxWorkers)
	}
	for name, address := range s.DNSServers {
		if !ValidAddress(address) {
			return errors.Errorf("dns_servers: %q: invalid address %q", name, address)
		}
	}
	return nil
}

// ValidAddress tells whether address is an IP address or a plausible
// hostname. The probers dial hostnames too, so we only reject values
// that cannot possibly resolve.
func ValidAddress(address string) bool {
	if address == "" {
		return false
	}
	if net.ParseIP(address) != nil {
		return true
	}
	return !strings.ContainsAny(address, " :/")
}

// RunConfiguration derives the engine tunables from the settings.
func (s *Settings) RunConfiguration() *model.RunConfiguration {
	return &model.RunConfiguration{
		PingCount:  int(s.PingCount),
		Timeout:    time.Duration(s.TimeoutMs) * time.Millisecond,
		MaxWorkers: int(s.MaxWorkers),
		PingTool:   s.PingTool,
	}
}

// AllTargets returns the built-in catalog merged with the custom
// servers from the settings.
func (s *Settings) AllTargets() []model.Target {
	return catalog.Merge(s.DNSServers)
}

// MaybeInitializeHome creates the dnsarena home when missing.
func MaybeInitializeHome(home string) error {
	if _, err := os.Stat(home); err != nil {
		if err := os.MkdirAll(home, 0700); err != nil {
			return err
		}
	}
	return nil
}

//go:embed default-settings.json
var defaultSettings []byte

// InitDefaultSettings reads the settings file inside home, creating
// it with default values when missing.
func InitDefaultSettings(home string) (*Settings, error) {
	settingsPath := util.SettingsPath(home)

	s, err := ReadConfig(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("writing default settings to %s", settingsPath)
			if err = os.WriteFile(settingsPath, defaultSettings, 0644); err != nil {
				return nil, err
			}
			return InitDefaultSettings(home)
		}
		return nil, err
	}
	return s, nil
}
