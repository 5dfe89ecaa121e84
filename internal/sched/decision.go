package sched

import (
	"log"

	"github.com/tinybar/tinybar/internal/model"
)

// needsUpdate decides whether a block must be refreshed this cycle.
// Four independent conditions are evaluated, all of them, so the
// verbose trace always shows the complete picture:
//
//   - first_time: the block has never run
//   - outdated:   its interval has elapsed
//   - signaled:   the delivered signal matches its configured one
//   - clicked:    a click payload is attached
//
// now is the current unix second and reason the wake-reason snapshot
// for this cycle (0 = none).
func needsUpdate(b *model.Block, now, reason int64, verbose bool) bool {
	firstTime := b.LastUpdate == 0

	outdated := false
	if b.Interval != 0 {
		// Signed difference so the comparison survives counter
		// wraparound.
		outdated = now-(b.LastUpdate+b.Interval) >= 0
	}

	signaled := reason != 0 && b.Signal != 0 && reason == b.Signal

	clicked := b.Click.Pending()

	if verbose {
		log.Printf("block %s[%s] check: first_time=%t outdated=%t signaled=%t clicked=%t",
			b.Name, b.Instance, firstTime, outdated, signaled, clicked)
	}

	return firstTime || outdated || signaled || clicked
}
