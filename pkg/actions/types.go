// Package actions implements a synthetic input action state machine for
// remote browser automation.
//
// Callers queue keyboard and pointer intents, group them into ticks, and
// dispatch the resulting batch to a remote browsing context through a
// Transport. Held keys and pressed buttons persist across dispatches until a
// batch is sent with ReleaseAfter set, which mirrors the WebDriver input state
// model and makes "hold Shift, then click" sequences possible.
package actions

import "fmt"

// Device identifies a logical input source.
type Device int

const (
	// Keyboard is the key input source.
	Keyboard Device = iota
	// Pointer is the mouse input source.
	Pointer

	numDevices
)

// String returns a string representation of the Device.
func (d Device) String() string {
	switch d {
	case Keyboard:
		return "keyboard"
	case Pointer:
		return "pointer"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// IntentKind is the kind of a single input action.
type IntentKind int

const (
	KeyDown IntentKind = iota
	KeyUp
	PointerMove
	PointerDown
	PointerUp
)

// String returns a string representation of the IntentKind.
func (k IntentKind) String() string {
	switch k {
	case KeyDown:
		return "keyDown"
	case KeyUp:
		return "keyUp"
	case PointerMove:
		return "pointerMove"
	case PointerDown:
		return "pointerDown"
	case PointerUp:
		return "pointerUp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// device returns the input source an action of this kind belongs to.
func (k IntentKind) device() (Device, bool) {
	switch k {
	case KeyDown, KeyUp:
		return Keyboard, true
	case PointerMove, PointerDown, PointerUp:
		return Pointer, true
	default:
		return 0, false
	}
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// String returns the CDP name of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

func (b Button) valid() bool {
	return b >= ButtonLeft && b <= ButtonRight
}

// ButtonMask is the set of currently pressed pointer buttons.
type ButtonMask uint8

// Has reports whether b is pressed.
func (m ButtonMask) Has(b Button) bool {
	return m&(1<<uint(b)) != 0
}

func (m ButtonMask) with(b Button) ButtonMask {
	return m | 1<<uint(b)
}

func (m ButtonMask) without(b Button) ButtonMask {
	return m &^ (1 << uint(b))
}

// Buttons returns the pressed buttons in ascending order.
func (m ButtonMask) Buttons() []Button {
	var out []Button
	for b := ButtonLeft; b <= ButtonRight; b++ {
		if m.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// Point is a viewport coordinate in CSS pixels.
type Point struct {
	X float64
	Y float64
}

// Key is a WebDriver key value: either a printable character or one of the
// code points in the U+E000 private use range defined for special keys.
type Key string

// WebDriver code points for the keys the modifier model cares about.
const (
	KeyNull      Key = "\uE000"
	KeyShift     Key = "\uE008"
	KeyControl   Key = "\uE009"
	KeyAlt       Key = "\uE00A"
	KeyMeta      Key = "\uE03D"
	KeyEnter     Key = "\uE007"
	KeyEscape    Key = "\uE00C"
	KeyTab       Key = "\uE004"
	KeyBackspace Key = "\uE003"

	KeyRightShift   Key = "\uE050"
	KeyRightControl Key = "\uE051"
	KeyRightAlt     Key = "\uE052"
	KeyRightMeta    Key = "\uE053"
)

var keyNames = map[Key]string{
	KeyNull:         "Null",
	KeyShift:        "Shift",
	KeyControl:      "Control",
	KeyAlt:          "Alt",
	KeyMeta:         "Meta",
	KeyEnter:        "Enter",
	KeyEscape:       "Escape",
	KeyTab:          "Tab",
	KeyBackspace:    "Backspace",
	KeyRightShift:   "Shift",
	KeyRightControl: "Control",
	KeyRightAlt:     "Alt",
	KeyRightMeta:    "Meta",
}

// String returns the DOM key name, quoting printable keys.
func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return fmt.Sprintf("%q", string(k))
}

// Modifiers is a bit set of held modifier keys. Bit values match the
// Chrome DevTools Protocol Input domain.
type Modifiers int

const (
	ModifierAlt     Modifiers = 1
	ModifierControl Modifiers = 2
	ModifierMeta    Modifiers = 4
	ModifierShift   Modifiers = 8
)

// Has reports whether all bits of m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// String lists the set modifiers joined with "+", or "none".
func (m Modifiers) String() string {
	if m == 0 {
		return "none"
	}
	var s string
	for _, p := range []struct {
		bit  Modifiers
		name string
	}{
		{ModifierAlt, "Alt"},
		{ModifierControl, "Control"},
		{ModifierMeta, "Meta"},
		{ModifierShift, "Shift"},
	} {
		if m.Has(p.bit) {
			if s != "" {
				s += "+"
			}
			s += p.name
		}
	}
	return s
}

// ModifierFor returns the modifier bit for k, or 0 if k is not a modifier.
func ModifierFor(k Key) Modifiers {
	switch k {
	case KeyShift, KeyRightShift:
		return ModifierShift
	case KeyControl, KeyRightControl:
		return ModifierControl
	case KeyAlt, KeyRightAlt:
		return ModifierAlt
	case KeyMeta, KeyRightMeta:
		return ModifierMeta
	default:
		return 0
	}
}
