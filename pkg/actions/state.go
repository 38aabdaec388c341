package actions

import "slices"

// StateKind is the coarse state of the device tracker.
type StateKind int

const (
	// Neutral means no keys are held and no buttons are pressed.
	Neutral StateKind = iota
	// Held means at least one key or button is down.
	Held
)

// String returns a string representation of the StateKind.
func (s StateKind) String() string {
	switch s {
	case Neutral:
		return "Neutral"
	case Held:
		return "Held"
	default:
		return "Unknown"
	}
}

// DeviceState is a snapshot of persistent input state.
type DeviceState struct {
	// Keys are the held keys in press order.
	Keys []Key

	// Buttons is the pressed pointer button mask.
	Buttons ButtonMask

	// Position is the last pointer coordinate.
	Position Point
}

// Kind returns Neutral or Held.
func (s DeviceState) Kind() StateKind {
	if len(s.Keys) == 0 && s.Buttons == 0 {
		return Neutral
	}
	return Held
}

// Modifiers returns the modifier bits for the held keys.
func (s DeviceState) Modifiers() Modifiers {
	var m Modifiers
	for _, k := range s.Keys {
		m |= ModifierFor(k)
	}
	return m
}

// Holds reports whether k is held.
func (s DeviceState) Holds(k Key) bool {
	return slices.Contains(s.Keys, k)
}

// StateTracker holds keyboard and pointer state across dispatches.
//
// StateTracker is not safe for concurrent use; the coordinator serializes
// access to it.
type StateTracker struct {
	keys     []Key
	buttons  ButtonMask
	position Point
}

// NewStateTracker creates a tracker in the Neutral state.
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Apply updates the tracked state with every action in tick.
func (t *StateTracker) Apply(tick Tick) {
	for _, a := range tick {
		t.applyAction(a.Intent)
	}
}

func (t *StateTracker) applyAction(in Intent) {
	switch in.Kind {
	case KeyDown:
		if !slices.Contains(t.keys, in.Key) {
			t.keys = append(t.keys, in.Key)
		}
	case KeyUp:
		// Releasing a key that is not held is permitted and changes nothing.
		if i := slices.Index(t.keys, in.Key); i >= 0 {
			t.keys = slices.Delete(t.keys, i, i+1)
		}
	case PointerMove:
		t.position = in.Point
	case PointerDown:
		t.position = in.Point
		t.buttons = t.buttons.with(in.Button)
	case PointerUp:
		t.position = in.Point
		t.buttons = t.buttons.without(in.Button)
	}
}

func (t *StateTracker) clone() *StateTracker {
	return &StateTracker{
		keys:     slices.Clone(t.keys),
		buttons:  t.buttons,
		position: t.position,
	}
}

// Snapshot returns a copy of the current state.
func (t *StateTracker) Snapshot() DeviceState {
	var keys []Key
	if len(t.keys) > 0 {
		keys = slices.Clone(t.keys)
	}
	return DeviceState{
		Keys:     keys,
		Buttons:  t.buttons,
		Position: t.position,
	}
}

// Kind returns the current coarse state.
func (t *StateTracker) Kind() StateKind {
	if len(t.keys) == 0 && t.buttons == 0 {
		return Neutral
	}
	return Held
}

// Modifiers returns the modifier bits for the currently held keys.
func (t *StateTracker) Modifiers() Modifiers {
	var m Modifiers
	for _, k := range t.keys {
		m |= ModifierFor(k)
	}
	return m
}

// Clear resets all devices to the Neutral state. The pointer keeps its
// position; only pressed buttons are dropped.
func (t *StateTracker) Clear() {
	t.keys = nil
	t.buttons = 0
}
