package model

import "time"

// Shared defaults used by the scheduler and the CLI binary.
const (
	// DefaultSleepSeconds is the sleep quantum when no block has a
	// usable interval.
	DefaultSleepSeconds = 5

	// DefaultCommandTimeout bounds a single block command execution.
	DefaultCommandTimeout = 30 * time.Second

	// ClickFieldCap is the maximum byte length kept for each click
	// field. Longer values are truncated, never rejected.
	ClickFieldCap = 15
)

// ClampField bounds a click field to ClickFieldCap bytes.
func ClampField(s string) string {
	if len(s) > ClickFieldCap {
		return s[:ClickFieldCap]
	}
	return s
}
