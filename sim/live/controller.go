// Package live drives a sim.Simulator in real time. A Controller owns the
// simulator inside one goroutine; every mutation is a command executed there,
// and readers only ever see immutable snapshots.
package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wastewise-india/sortline/sim"
)

var (
	// ErrControllerClosed is returned by commands issued after Run has exited.
	ErrControllerClosed = errors.New("live: controller closed")
	// ErrRunning is returned by StepFrame while the line is running.
	ErrRunning = errors.New("live: line is running")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("live: Run already called")
)

// Options configures a Controller.
type Options struct {
	// Speed is simulated ms per wall-clock ms. Zero means 1.
	Speed float64
}

type command struct {
	apply func(*sim.Simulator) error
	reply chan result
}

type result struct {
	before sim.Snapshot
	after  sim.Snapshot
	err    error
}

// Controller is the single exclusive-access boundary around a Simulator.
type Controller struct {
	sim   *sim.Simulator
	speed float64

	cmds    chan command
	done    chan struct{}
	started atomic.Bool

	snap atomic.Pointer[sim.Snapshot]

	mu     sync.Mutex
	subs   map[chan sim.Snapshot]struct{}
	closed bool

	carry float64 // sub-millisecond remainder between ticks
}

// New wraps s. The caller must not touch s after this call.
func New(s *sim.Simulator, opts Options) *Controller {
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	c := &Controller{
		sim:   s,
		speed: speed,
		cmds:  make(chan command),
		done:  make(chan struct{}),
		subs:  make(map[chan sim.Snapshot]struct{}),
	}
	snap := s.Snapshot()
	c.snap.Store(&snap)
	return c
}

// Speed returns the wall-clock multiplier.
func (c *Controller) Speed() float64 {
	return c.speed
}

// Seed returns the master seed of the owned simulator.
func (c *Controller) Seed() int64 {
	return c.sim.Seed
}

// Snapshot returns the most recently published snapshot.
func (c *Controller) Snapshot() sim.Snapshot {
	return *c.snap.Load()
}

// Subscribe returns a channel that receives every published snapshot.
// Slow readers only see the latest one. The channel is closed when Run exits
// or the returned cancel func is called.
func (c *Controller) Subscribe() (<-chan sim.Snapshot, func()) {
	ch := make(chan sim.Snapshot, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- c.Snapshot()
	c.subs[ch] = struct{}{}
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

// Start starts the line. Starting a running line is a no-op.
func (c *Controller) Start(ctx context.Context) (sim.Snapshot, error) {
	r, err := c.do(ctx, func(s *sim.Simulator) error {
		s.Start()
		return nil
	})
	return r.after, err
}

// Stop pauses the line. Stopping a stopped line is a no-op.
func (c *Controller) Stop(ctx context.Context) (sim.Snapshot, error) {
	r, err := c.do(ctx, func(s *sim.Simulator) error {
		s.Stop()
		return nil
	})
	return r.after, err
}

// Reset ends the current session and starts a fresh, stopped one.
// It returns the final state of the ended session and the fresh state.
// ctx only bounds the wait for the loop to accept the command; once accepted,
// Reset returns the ended session even if ctx is cancelled meanwhile.
func (c *Controller) Reset(ctx context.Context) (ended, fresh sim.Snapshot, err error) {
	r, err := c.do(ctx, func(s *sim.Simulator) error {
		s.Reset()
		return nil
	})
	return r.before, r.after, err
}

// StepFrame runs one frame of a stopped line.
func (c *Controller) StepFrame(ctx context.Context) (sim.Snapshot, error) {
	r, err := c.do(ctx, func(s *sim.Simulator) error {
		if !s.StepFrame() {
			return ErrRunning
		}
		return nil
	})
	return r.after, err
}

func (c *Controller) do(ctx context.Context, apply func(*sim.Simulator) error) (result, error) {
	cmd := command{apply: apply, reply: make(chan result, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return result{}, ErrControllerClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	// an accepted command has already been applied or is about to be;
	// the loop replies without blocking, so its outcome is always reported
	r := <-cmd.reply
	return r, r.err
}

// Run executes commands and advances the simulator until ctx is cancelled.
// It returns nil on cancellation.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)
	defer c.closeSubscribers()

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
		last   time.Time
	)
	startTicker := func() {
		if ticker != nil {
			return
		}
		ticker = time.NewTicker(c.tickInterval())
		tickC = ticker.C
		last = time.Now()
		c.carry = 0
	}
	stopTicker := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker, tickC = nil, nil
	}
	defer stopTicker()

	if c.sim.Running() {
		startTicker()
	}
	logrus.Infof("Live controller started (speed %.2fx, session %s)", c.speed, c.sim.SessionID)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Live controller stopped at sim clock %d ms", c.sim.Clock)
			return nil
		case cmd := <-c.cmds:
			before := c.Snapshot()
			err := cmd.apply(c.sim)
			if c.sim.Running() {
				startTicker()
			} else {
				stopTicker()
			}
			after := c.publish()
			cmd.reply <- result{before: before, after: after, err: err}
		case now := <-tickC:
			c.advance(now.Sub(last))
			last = now
			c.publish()
		}
	}
}

func (c *Controller) tickInterval() time.Duration {
	frame := time.Duration(c.sim.Config.Timing.FrameIntervalMs) * time.Millisecond
	return max(time.Duration(float64(frame)/c.speed), time.Millisecond)
}

// advance moves the simulator forward by elapsed wall time scaled by speed.
func (c *Controller) advance(elapsed time.Duration) {
	c.carry += float64(elapsed) / float64(time.Millisecond) * c.speed
	step := int64(c.carry)
	if step <= 0 {
		return
	}
	c.carry -= float64(step)
	c.sim.Advance(c.sim.Clock + step)
}

// publish stores a fresh snapshot and hands it to every subscriber without blocking.
func (c *Controller) publish() sim.Snapshot {
	snap := c.sim.Snapshot()
	c.snap.Store(&snap)

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale one
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (c *Controller) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for ch := range c.subs {
		close(ch)
	}
	clear(c.subs)
}
