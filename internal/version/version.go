// Package version contains version information.
package version

// Version is the dnsarena version.
const Version = "0.1.0"
