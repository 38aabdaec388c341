package actions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thesyncim/shiftclick/pkg/actions/internal"
)

// Transport delivers input to a remote browsing context. It is provided by
// the remote automation client; see package rodinput for a CDP version.
type Transport interface {
	// PerformActions dispatches one tick and returns once the remote side
	// has acknowledged it.
	PerformActions(ctx context.Context, tick Tick) error

	// ReleaseActions releases every key and button in held, undoing the
	// effects of earlier ticks on the remote side.
	ReleaseActions(ctx context.Context, held DeviceState) error
}

// Result describes a successfully dispatched batch.
type Result struct {
	// Ticks is the number of ticks acknowledged by the remote side.
	Ticks int

	// Released is set when held state was released after the batch.
	Released bool

	// State is the tracked state after the batch.
	State DeviceState

	// Elapsed is the wall time spent dispatching.
	Elapsed time.Duration
}

// Coordinator sends batches in order and owns the state tracker. Send is
// safe for concurrent use; calls are serialized.
type Coordinator struct {
	transport Transport
	tracker   *StateTracker
	clock     internal.Clock
	logger    *slog.Logger

	mu sync.Mutex
}

// NewCoordinator creates a coordinator with a Neutral tracker. If clock is
// nil the system clock is used; if logger is nil logs are discarded.
func NewCoordinator(t Transport, clock internal.Clock, logger *slog.Logger) *Coordinator {
	if clock == nil {
		clock = internal.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		transport: t,
		tracker:   NewStateTracker(),
		clock:     clock,
		logger:    logger,
	}
}

// Send dispatches batch tick by tick.
//
// The batch is validated before anything is sent. On a remote failure the
// remaining ticks are abandoned, the tracker keeps the effects of every
// acknowledged tick and a *DispatchError names the failed tick. Nothing is
// rolled back: key-downs already delivered cannot be un-sent. When the batch
// has ReleaseAfter set and every tick succeeds, held state is released and
// the tracker is cleared.
func (c *Coordinator) Send(ctx context.Context, batch *Batch) (Result, error) {
	if err := batch.Validate(); err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.clock.Now()
	for i, tick := range batch.Ticks {
		if err := ctx.Err(); err != nil {
			return c.fail(i, tick, err)
		}

		next := c.tracker.clone()
		stamped := make(Tick, len(tick))
		for j, a := range tick {
			next.applyAction(a.Intent)
			a.Modifiers = next.Modifiers()
			if batch.isolated && a.Device == Pointer {
				a.Modifiers = 0
			}
			stamped[j] = a
		}

		if err := c.transport.PerformActions(ctx, stamped); err != nil {
			return c.fail(i, tick, err)
		}
		*c.tracker = *next

		c.logger.Debug("tick dispatched",
			"tick", i,
			"actions", len(stamped),
			"modifiers", next.Modifiers().String(),
			"state", next.Kind().String())
	}

	res := Result{Ticks: len(batch.Ticks)}
	if batch.ReleaseAfter {
		held := c.tracker.Snapshot()
		if err := c.transport.ReleaseActions(ctx, held); err != nil {
			c.logger.Warn("release failed", "ticks", len(batch.Ticks), "error", err)
			return Result{Ticks: len(batch.Ticks), State: held}, &DispatchError{
				Tick:    len(batch.Ticks),
				Device:  Keyboard,
				Release: true,
				Err:     err,
			}
		}
		c.tracker.Clear()
		res.Released = true
	}
	res.State = c.tracker.Snapshot()
	res.Elapsed = c.clock.Now().Sub(start)
	return res, nil
}

func (c *Coordinator) fail(i int, tick Tick, err error) (Result, error) {
	dev := Keyboard
	if len(tick) > 0 {
		dev = tick[0].Device
	}
	c.logger.Warn("dispatch failed",
		"tick", i,
		"device", dev.String(),
		"error", err)
	return Result{Ticks: i, State: c.tracker.Snapshot()}, &DispatchError{Tick: i, Device: dev, Err: err}
}

// Snapshot returns the tracked state. It waits for an in-flight Send.
func (c *Coordinator) Snapshot() DeviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Snapshot()
}

// Release releases all held state on the remote side and clears the tracker.
func (c *Coordinator) Release(ctx context.Context) (Result, error) {
	return c.Send(ctx, &Batch{ReleaseAfter: true})
}
