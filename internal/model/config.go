package model

import "time"

//
// Run configuration
//

// RunConfiguration contains the tunables of a single run. The zero
// value is not usable: fill every field or derive an instance from
// the settings file using config.Settings.RunConfiguration.
type RunConfiguration struct {
	// PingCount is the number of echo requests per target.
	PingCount int

	// Timeout is the wait budget for a single network operation: one
	// echo reply, one TCP connect, one UDP read.
	Timeout time.Duration

	// MaxWorkers bounds how many targets are probed concurrently.
	MaxWorkers int

	// PingTool optionally overrides the ping command, e.g. "ping -4".
	// Empty means the platform default.
	PingTool string
}
