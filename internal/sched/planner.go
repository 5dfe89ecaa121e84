package sched

import "github.com/tinybar/tinybar/internal/model"

// SleepSeconds computes the scheduler's fixed sleep quantum: the
// greatest common divisor of all nonzero block intervals. The GCD is
// the largest quantum that still wakes the loop on every block's
// interval boundary. When no block has a usable interval the quantum
// falls back to model.DefaultSleepSeconds.
func SleepSeconds(blocks []model.Block) int64 {
	var quantum int64
	for i := range blocks {
		if iv := blocks[i].Interval; iv > 0 {
			quantum = gcd(quantum, iv)
		}
	}
	if quantum <= 0 {
		return model.DefaultSleepSeconds
	}
	return quantum
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
