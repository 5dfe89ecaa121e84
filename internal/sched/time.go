package sched

import "time"

// now is the strategy used to get the current time.
// By default, time.Now is used.
type now func() time.Time

// newTimer is a factory closure for a timer channel and the associated
// stop function. Tests replace it to control the sleep step.
type newTimer func(time.Duration) (<-chan time.Time, func() bool)

func defaultNewTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}
