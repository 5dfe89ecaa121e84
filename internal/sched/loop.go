package sched

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/tinybar/tinybar/internal/click"
	"github.com/tinybar/tinybar/internal/model"
)

// clickBufSize bounds a single click notification read. The bar sends
// one short line per click; anything longer is truncated and parsed as
// far as it goes.
const clickBufSize = 1023

// Updater executes a block's command and fills in its output fields
// and LastUpdate. It must return control on command failure rather
// than take down the process.
type Updater interface {
	Update(*model.Block) error
}

// Renderer serializes the full status line once per cycle, static
// blocks included.
type Renderer interface {
	Render(*model.StatusLine) error
}

// Waker exposes the wake-reason state to the loop. *WakeSource is the
// production implementation.
type Waker interface {
	Reason() int64
	Consume(reason int64)
	Wake() <-chan struct{}
}

// Scheduler drives the refresh cycle: decide which blocks need an
// update, dispatch them, render, then sleep for the fixed quantum,
// waking early on signal delivery or stdin readability.
type Scheduler struct {
	status   *model.StatusLine
	updater  Updater
	renderer Renderer
	waker    Waker

	input   io.Reader
	verbose bool

	now      now
	newTimer newTimer
}

// Option tailors a Scheduler.
type Option func(*Scheduler)

// WithVerbose enables per-cycle decision tracing.
func WithVerbose(v bool) Option {
	return func(s *Scheduler) { s.verbose = v }
}

// WithInput overrides the stream click notifications are read from.
// The default is stdin.
func WithInput(r io.Reader) Option {
	return func(s *Scheduler) { s.input = r }
}

// New constructs a Scheduler over the given status line and
// collaborators.
func New(status *model.StatusLine, updater Updater, renderer Renderer, waker Waker, opts ...Option) *Scheduler {
	s := &Scheduler{
		status:   status,
		updater:  updater,
		renderer: renderer,
		waker:    waker,
		input:    os.Stdin,
		now:      time.Now,
		newTimer: defaultNewTimer,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes refresh cycles until ctx is cancelled. The sleep
// quantum is computed once; block intervals never change at runtime.
func (s *Scheduler) Run(ctx context.Context) error {
	sleep := time.Duration(SleepSeconds(s.status.Configs)) * time.Second
	if s.verbose {
		log.Printf("sched: starting loop with sleep quantum %s", sleep)
	}

	for {
		s.cycle()

		timeCh, stop := s.newTimer(sleep)
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()

		case <-timeCh:

		case <-s.waker.Wake():
			stop()
			if s.waker.Reason() == sigInput {
				s.readClick()
			}
		}
	}
}

// cycle runs one deciding+dispatching pass over all blocks and renders
// the result. Decisions are made against a single snapshot of the wake
// reason, taken before the pass and consumed after it, so one signal
// delivery is applied to the whole pass exactly once.
func (s *Scheduler) cycle() {
	reason := s.waker.Reason()
	nowSec := s.now().Unix()

	for i := range s.status.Blocks {
		cfg := &s.status.Configs[i]
		run := &s.status.Blocks[i]

		// Static blocks are rendered but never executed. Their click
		// payload is still dropped so it cannot leak into later cycles.
		if cfg.Static() {
			run.Click = model.Click{}
			continue
		}

		if needsUpdate(run, nowSec, reason, s.verbose) {
			// Run against canonical config values, keeping only the
			// pending click across the reset.
			pending := run.Click
			*run = *cfg
			run.Click = pending

			if err := s.updater.Update(run); err != nil {
				log.Printf("sched: updating block %s[%s]: %v", run.Name, run.Instance, err)
			}
		}

		run.Click = model.Click{}
	}

	s.waker.Consume(reason)

	if err := s.renderer.Render(s.status); err != nil {
		log.Printf("sched: rendering status line: %v", err)
	}
}

// readClick drains one click notification from the input stream and
// attributes it to the matching block. Unreadable or unmatchable
// notifications are dropped; the loop carries on either way.
func (s *Scheduler) readClick() {
	buf := make([]byte, clickBufSize)
	n, err := s.input.Read(buf)
	if err != nil && n == 0 {
		if s.verbose {
			log.Printf("sched: reading click notification: %v", err)
		}
		return
	}

	ev := click.Parse(buf[:n])
	if s.verbose {
		log.Printf("sched: got a click: name=%s instance=%s button=%s x=%s y=%s",
			ev.Name, ev.Instance, ev.Click.Button, ev.Click.X, ev.Click.Y)
	}
	click.Correlate(s.status, ev)
}
