package sched

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/chronon"

	"github.com/tinybar/tinybar/internal/model"
)

// fakeWaker implements Waker without touching process signals.
type fakeWaker struct {
	reason atomic.Int64
	ch     chan struct{}
}

func newFakeWaker() *fakeWaker {
	return &fakeWaker{ch: make(chan struct{}, 1)}
}

func (f *fakeWaker) Reason() int64 { return f.reason.Load() }

func (f *fakeWaker) Consume(reason int64) { f.reason.CompareAndSwap(reason, 0) }

func (f *fakeWaker) Wake() <-chan struct{} { return f.ch }

// deliver mimics an asynchronous signal arrival.
func (f *fakeWaker) deliver(sig int64) {
	f.reason.Store(sig)
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// fakeUpdater records dispatches and advances LastUpdate from the
// test clock, like a successful command run would.
type fakeUpdater struct {
	mu         sync.Mutex
	now        func() time.Time
	dispatched []string
	failing    map[string]bool
}

func (u *fakeUpdater) Update(b *model.Block) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.dispatched = append(u.dispatched, b.Name)
	if u.failing[b.Name] {
		return errors.New("command failed")
	}
	b.FullText = b.Name + " output"
	b.LastUpdate = u.now().Unix()
	return nil
}

func (u *fakeUpdater) names() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.dispatched...)
}

// fakeRenderer snapshots the status line once per cycle.
type fakeRenderer struct {
	frames chan []model.Block
}

func (r *fakeRenderer) Render(status *model.StatusLine) error {
	snap := make([]model.Block, len(status.Blocks))
	copy(snap, status.Blocks)
	r.frames <- snap
	return nil
}

type SchedulerSuite struct {
	suite.Suite

	start time.Time
	clock *chronon.FakeClock

	status   *model.StatusLine
	updater  *fakeUpdater
	renderer *fakeRenderer
	waker    *fakeWaker
	sched    *Scheduler

	armed chan time.Duration
	done  chan error

	cancel context.CancelFunc
}

func (s *SchedulerSuite) SetupTest() {
	s.start = time.Unix(1000, 0)
	s.clock = chronon.NewFakeClock(s.start)

	s.status = model.NewStatusLine([]model.Block{
		{Name: "four", Command: "four-cmd", Interval: 4},
		{Name: "six", Command: "six-cmd", Interval: 6},
		{Name: "sig", Command: "sig-cmd", Signal: SigRefresh1},
		{Name: "divider"}, // static
	})

	s.updater = &fakeUpdater{now: s.clock.Now, failing: map[string]bool{}}
	s.renderer = &fakeRenderer{frames: make(chan []model.Block, 64)}
	s.waker = newFakeWaker()
	s.armed = make(chan time.Duration, 64)
	s.done = make(chan error, 1)

	s.sched = New(s.status, s.updater, s.renderer, s.waker)
	s.sched.now = s.clock.Now
	s.sched.newTimer = func(d time.Duration) (<-chan time.Time, func() bool) {
		t := s.clock.NewTimer(d)
		s.armed <- d
		return t.C(), t.Stop
	}
}

func (s *SchedulerSuite) TearDownTest() {
	s.cancel()
	select {
	case err := <-s.done:
		s.Require().ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		s.FailNow("scheduler did not stop")
	}
}

func (s *SchedulerSuite) startLoop() {
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go func() { s.done <- s.sched.Run(ctx) }()
}

// frame waits for the next rendered snapshot.
func (s *SchedulerSuite) frame() []model.Block {
	select {
	case f := <-s.renderer.frames:
		return f
	case <-time.After(5 * time.Second):
		s.FailNow("timed out waiting for a render")
		return nil
	}
}

// sleeping waits until the loop has armed its sleep timer and returns
// the requested duration.
func (s *SchedulerSuite) sleeping() time.Duration {
	select {
	case d := <-s.armed:
		return d
	case <-time.After(5 * time.Second):
		s.FailNow("timed out waiting for the loop to sleep")
		return 0
	}
}

func (s *SchedulerSuite) TestFirstCycleRefreshesEverythingOnce() {
	s.startLoop()

	frame := s.frame()
	s.Equal([]string{"four", "six", "sig"}, s.updater.names(),
		"every command block is first-time on cycle one; the static block never runs")

	s.Len(frame, 4, "static blocks are rendered")
	s.Equal("divider", frame[3].Name)
	s.Equal(int64(1000), frame[0].LastUpdate)

	s.Equal(2*time.Second, s.sleeping(), "gcd(4, 6) with the signal block excluded")
}

func (s *SchedulerSuite) TestIntervalBoundaries() {
	s.startLoop()
	s.frame()
	s.sleeping()

	// t=1002: nothing due.
	s.clock.Add(2 * time.Second)
	s.frame()
	s.Equal([]string{"four", "six", "sig"}, s.updater.names())
	s.sleeping()

	// t=1004: the 4s block crosses its boundary exactly.
	s.clock.Add(2 * time.Second)
	s.frame()
	s.Equal([]string{"four", "six", "sig", "four"}, s.updater.names())
	s.sleeping()

	// t=1006: only the 6s block is due; the 4s block updated at 1004.
	s.clock.Add(2 * time.Second)
	s.frame()
	s.Equal([]string{"four", "six", "sig", "four", "six"}, s.updater.names())
}

func (s *SchedulerSuite) TestSignalWakesAndRefreshesMatchingBlock() {
	s.startLoop()
	s.frame()
	s.sleeping()

	s.waker.deliver(SigRefresh1)
	s.frame()

	s.Equal([]string{"four", "six", "sig", "sig"}, s.updater.names(),
		"a delivered SIGUSR1 refreshes only the block configured with it")
	s.Zero(s.waker.Reason(), "the signal is consumed after the deciding pass")
}

func (s *SchedulerSuite) TestInputWakeRoutesClickBeforeNextCycle() {
	s.sched.input = strings.NewReader(`,{"name":"sig","instance":"","button":"1","x":"10","y":"20"}`)
	s.startLoop()
	s.frame()
	s.sleeping()

	s.waker.deliver(sigInput)
	frame := s.frame()

	s.Equal([]string{"four", "six", "sig", "sig"}, s.updater.names(),
		"the clicked block is refreshed on the cycle after the click")
	s.False(frame[2].Click.Pending(), "the click is cleared once dispatched")
	s.Zero(s.waker.Reason())
}

func (s *SchedulerSuite) TestFailedUpdateLeavesBlockDue() {
	s.updater.failing["four"] = true
	s.startLoop()
	frame := s.frame()

	s.Zero(frame[0].LastUpdate, "failed update must not advance LastUpdate")
	s.sleeping()

	// The block is still first-time next cycle and is retried.
	s.clock.Add(2 * time.Second)
	s.frame()
	s.Equal([]string{"four", "six", "sig", "four"}, s.updater.names())
}

func (s *SchedulerSuite) TestStaleClickOnStaticBlockIsDropped() {
	s.status.Blocks[3].Click = model.Click{Button: "1", X: "0", Y: "0"}
	s.startLoop()
	frame := s.frame()

	s.False(frame[3].Click.Pending(), "static block clicks are dropped, never dispatched")
	s.NotContains(s.updater.names(), "divider")
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}
