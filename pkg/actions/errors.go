package actions

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEngine is returned when no bare-click policy is known for an
	// engine identifier.
	ErrUnknownEngine = errors.New("unknown browser engine")

	// ErrSessionClosed is returned by a session after Close.
	ErrSessionClosed = errors.New("session closed")
)

// InvalidIntentError reports a malformed or conflicting intent. It is a
// local precondition failure: nothing was sent.
type InvalidIntentError struct {
	// Tick is the index of the offending tick, or -1 when the intent was
	// rejected before being placed in a tick.
	Tick   int
	Device Device
	Reason string
}

func (e *InvalidIntentError) Error() string {
	if e.Tick < 0 {
		return fmt.Sprintf("invalid %v intent: %s", e.Device, e.Reason)
	}
	return fmt.Sprintf("invalid %v intent in tick %d: %s", e.Device, e.Tick, e.Reason)
}

// DispatchError reports a remote failure while sending a batch. Ticks before
// Tick were acknowledged and their effects are reflected in the state
// tracker; Tick itself may or may not have reached the browser.
type DispatchError struct {
	// Tick is the index of the tick that failed. For release failures it is
	// the number of ticks in the batch.
	Tick int

	// Device is the first device with an action in the failed tick.
	Device Device

	// Release is set when every tick succeeded but releasing held state failed.
	Release bool

	Err error
}

// LastApplied returns the index of the last acknowledged tick, or -1.
func (e *DispatchError) LastApplied() int {
	return e.Tick - 1
}

func (e *DispatchError) Error() string {
	if e.Release {
		return fmt.Sprintf("failed to release input state after %d ticks: %v", e.Tick, e.Err)
	}
	return fmt.Sprintf("failed to dispatch tick %d (%v): %v", e.Tick, e.Device, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// PolicyMismatchError reports an observed click classification that differs
// from what the active policy predicts. It fails the check that produced it,
// not the session.
type PolicyMismatchError struct {
	Engine   string
	Policy   Policy
	Style    ClickStyle
	Held     Modifiers
	Expected Observed
	Observed Observed
}

func (e *PolicyMismatchError) Error() string {
	engine := e.Engine
	if engine == "" {
		engine = "unset"
	}
	return fmt.Sprintf("%v with %v held under %v policy (engine %s): expected %s, observed %s",
		e.Style, e.Held, e.Policy, engine, e.Expected, e.Observed)
}
