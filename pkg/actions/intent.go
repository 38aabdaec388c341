package actions

import "fmt"

// Intent is one atomic input request. Intents are values; once built they
// are not modified by the builder or the coordinator.
type Intent struct {
	Device Device
	Kind   IntentKind

	// Key is the WebDriver key value for KeyDown and KeyUp.
	Key Key

	// Button is the pointer button for PointerDown and PointerUp.
	Button Button

	// Point is the target coordinate for pointer intents.
	Point Point
}

// KeyDownIntent returns an intent that presses k.
func KeyDownIntent(k Key) Intent {
	return Intent{Device: Keyboard, Kind: KeyDown, Key: k}
}

// KeyUpIntent returns an intent that releases k.
func KeyUpIntent(k Key) Intent {
	return Intent{Device: Keyboard, Kind: KeyUp, Key: k}
}

// PointerMoveIntent returns an intent that moves the pointer to p.
func PointerMoveIntent(p Point) Intent {
	return Intent{Device: Pointer, Kind: PointerMove, Point: p}
}

// PointerDownIntent returns an intent that presses b at p.
func PointerDownIntent(p Point, b Button) Intent {
	return Intent{Device: Pointer, Kind: PointerDown, Button: b, Point: p}
}

// PointerUpIntent returns an intent that releases b at p.
func PointerUpIntent(p Point, b Button) Intent {
	return Intent{Device: Pointer, Kind: PointerUp, Button: b, Point: p}
}

// Validate checks that the intent is well formed.
func (in Intent) Validate() error {
	dev, ok := in.Kind.device()
	if !ok {
		return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("unknown intent kind %v", in.Kind)}
	}
	if dev != in.Device {
		return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("%v is not a %v action", in.Kind, in.Device)}
	}
	switch in.Kind {
	case KeyDown, KeyUp:
		if in.Key == "" {
			return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("%v requires a key", in.Kind)}
		}
		if len([]rune(string(in.Key))) != 1 {
			return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("key %q must be a single code point", string(in.Key))}
		}
	case PointerDown, PointerUp:
		if !in.Button.valid() {
			return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("unknown pointer button %v", in.Button)}
		}
	}
	if in.Device == Pointer && (in.Point.X < 0 || in.Point.Y < 0) {
		return &InvalidIntentError{Tick: -1, Device: in.Device, Reason: fmt.Sprintf("pointer target (%g, %g) is outside the viewport", in.Point.X, in.Point.Y)}
	}
	return nil
}

// String returns a compact description such as "keyDown(Shift)".
func (in Intent) String() string {
	switch in.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%v(%v)", in.Kind, in.Key)
	case PointerDown, PointerUp:
		return fmt.Sprintf("%v(%v@%g,%g)", in.Kind, in.Button, in.Point.X, in.Point.Y)
	default:
		return fmt.Sprintf("%v(%g,%g)", in.Kind, in.Point.X, in.Point.Y)
	}
}

// Action is an intent scheduled in a tick.
type Action struct {
	Intent

	// Modifiers are the modifier keys held when the action is dispatched.
	// The coordinator fills this in from the state tracker.
	Modifiers Modifiers
}

// Tick is one synchronized instant across input sources. It holds at most
// one action per device, keyboard first.
type Tick []Action

// For returns the action for device d, if the tick has one.
func (t Tick) For(d Device) (Action, bool) {
	for _, a := range t {
		if a.Device == d {
			return a, true
		}
	}
	return Action{}, false
}

// validate checks the per-tick invariants. index is used for error reporting.
func (t Tick) validate(index int) error {
	if len(t) == 0 {
		return &InvalidIntentError{Tick: index, Device: Keyboard, Reason: "empty tick"}
	}
	var seen [numDevices]bool
	for _, a := range t {
		if err := a.Validate(); err != nil {
			ie := err.(*InvalidIntentError)
			ie.Tick = index
			return ie
		}
		if seen[a.Device] {
			return &InvalidIntentError{Tick: index, Device: a.Device, Reason: fmt.Sprintf("more than one %v action in one tick", a.Device)}
		}
		seen[a.Device] = true
	}
	return nil
}

// Batch is an ordered sequence of ticks dispatched together.
type Batch struct {
	Ticks []Tick

	// ReleaseAfter releases all held keys and buttons once every tick has
	// been acknowledged. It has no default: leaving it false keeps state
	// alive for the next batch.
	ReleaseAfter bool

	// isolated marks a bare click translated under the Strict policy. Its
	// actions carry no modifiers regardless of held state.
	isolated bool
}

// Validate checks every tick in the batch.
func (b *Batch) Validate() error {
	for i, t := range b.Ticks {
		if err := t.validate(i); err != nil {
			return err
		}
	}
	return nil
}
