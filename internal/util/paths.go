package util

import (
	"os"
	"path/filepath"
)

// DefaultHomePath returns the path of the dnsarena state directory.
func DefaultHomePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dnsarena"), nil
}

// SettingsPath returns the path of the settings file inside the
// given state directory.
func SettingsPath(home string) string {
	return filepath.Join(home, "settings.json")
}
