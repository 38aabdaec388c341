package actions

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thesyncim/shiftclick/pkg/actions/internal"
)

// fakeTransport records dispatched ticks and plays the page under test: a
// pointer press followed by a release is a click, classified by whether the
// release carried Shift.
type fakeTransport struct {
	mu       sync.Mutex
	ticks    []Tick
	releases []DeviceState
	calls    int

	// failAt makes the Nth PerformActions call (1-based) return failErr.
	failAt     int
	failErr    error
	releaseErr error

	// clock, when set, is advanced by step on every call.
	clock *internal.ManualClock
	step  time.Duration

	// delay holds each call open to expose overlapping sends.
	delay    time.Duration
	inFlight atomic.Int32
	overlap  atomic.Bool

	pressed  bool
	observed Observed
	clicks   int
}

func (f *fakeTransport) PerformActions(ctx context.Context, tick Tick) error {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.clock != nil {
		f.clock.Advance(f.step)
	}
	if f.failAt > 0 && f.calls == f.failAt {
		return f.failErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.ticks = append(f.ticks, append(Tick(nil), tick...))
	for _, a := range tick {
		switch a.Kind {
		case PointerDown:
			f.pressed = true
		case PointerUp:
			if !f.pressed {
				continue
			}
			f.pressed = false
			f.clicks++
			if a.Modifiers.Has(ModifierShift) {
				f.observed = observedShiftClick
			} else {
				f.observed = observedNormalClick
			}
		}
	}
	return nil
}

func (f *fakeTransport) ReleaseActions(ctx context.Context, held DeviceState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.releases = append(f.releases, held)
	if held.Buttons != 0 {
		f.pressed = false
	}
	return nil
}

func (f *fakeTransport) sent() []Tick {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Tick(nil), f.ticks...)
}

func (f *fakeTransport) page() Observed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.observed
}

// modifiersOf returns the modifiers stamped on every sent action, in order.
func modifiersOf(ticks []Tick) []Modifiers {
	var out []Modifiers
	for _, t := range ticks {
		for _, a := range t {
			out = append(out, a.Modifiers)
		}
	}
	return out
}
