package sched

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// Signals the scheduler reacts to. Blocks may be configured with either
// refresh signal; SIGIO is the kernel's "stdin readable" notification
// and is never assigned to a block.
const (
	SigRefresh1 = int64(syscall.SIGUSR1)
	SigRefresh2 = int64(syscall.SIGUSR2)
	sigInput    = int64(syscall.SIGIO)
)

// WakeSource owns the process-wide wake-reason state: the numeric
// signal that most recently interrupted the loop, or 0 for none.
//
// The only state shared between the asynchronous delivery path and the
// loop is the single atomic word; the pump goroutine stores the signal
// number and pings the wake channel, nothing else.
type WakeSource struct {
	reason atomic.Int64
	sigCh  chan os.Signal
	wakeCh chan struct{}
}

// NewWakeSource returns a WakeSource with nothing installed yet.
func NewWakeSource() *WakeSource {
	return &WakeSource{
		sigCh:  make(chan os.Signal, 8),
		wakeCh: make(chan struct{}, 1),
	}
}

// Install registers the refresh signal handlers and, when clicks is
// true, wires stdin for asynchronous readability notification. Any
// failure here is fatal to startup: the caller must not enter the loop.
func (w *WakeSource) Install(clicks bool) error {
	sigs := []os.Signal{syscall.SIGUSR1, syscall.SIGUSR2}
	if clicks {
		sigs = append(sigs, syscall.SIGIO)
	}
	// The runtime registers these with SA_RESTART, so interrupted
	// syscalls resume rather than fail with EINTR.
	signal.Notify(w.sigCh, sigs...)
	go w.pump()

	if clicks {
		if err := ownStdin(); err != nil {
			return fmt.Errorf("sched: wiring stdin for click events: %w", err)
		}
	}
	return nil
}

// Stop unregisters the handlers and ends the pump goroutine.
func (w *WakeSource) Stop() {
	signal.Stop(w.sigCh)
	close(w.sigCh)
}

func (w *WakeSource) pump() {
	for s := range w.sigCh {
		num, ok := s.(syscall.Signal)
		if !ok {
			continue
		}
		w.reason.Store(int64(num))
		select {
		case w.wakeCh <- struct{}{}:
		default:
		}
	}
}

// Reason returns the current wake-reason value. The loop reads it once
// per cycle so that every block in a pass sees the same snapshot.
func (w *WakeSource) Reason() int64 {
	return w.reason.Load()
}

// Consume resets the wake reason to none, but only if it still holds
// the snapshot this cycle decided against. A signal delivered mid-pass
// stays pending for the next cycle instead of being lost.
func (w *WakeSource) Consume(reason int64) {
	w.reason.CompareAndSwap(reason, 0)
}

// Wake returns the channel that ends the sleep step early. It is
// buffered with capacity one; coalescing bursts is fine because the
// reason word already holds the latest signal.
func (w *WakeSource) Wake() <-chan struct{} {
	return w.wakeCh
}

// ownStdin marks this process as the receiver of "I/O possible"
// signals for stdin and switches the stream to asynchronous,
// non-blocking mode.
func ownStdin() error {
	fd := uintptr(os.Stdin.Fd())

	if _, err := unix.FcntlInt(fd, unix.F_SETOWN, unix.Getpid()); err != nil {
		return fmt.Errorf("F_SETOWN: %w", err)
	}

	flags, err := unix.FcntlInt(fd, unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("F_GETFL: %w", err)
	}
	if _, err := unix.FcntlInt(fd, unix.F_SETFL, flags|unix.O_ASYNC|unix.O_NONBLOCK); err != nil {
		return fmt.Errorf("F_SETFL: %w", err)
	}
	return nil
}
