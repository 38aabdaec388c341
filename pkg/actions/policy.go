package actions

import (
	"fmt"
	"strings"
)

// Policy selects how a bare click treats modifier keys held from earlier
// dispatches.
type Policy int

const (
	// Strict translates a bare click into an isolated pointer down/up pair
	// with no modifiers, regardless of held keys.
	Strict Policy = iota
	// Contextual folds held modifier keys into the synthesized click.
	Contextual
)

// String returns a string representation of the Policy.
func (p Policy) String() string {
	switch p {
	case Strict:
		return "Strict"
	case Contextual:
		return "Contextual"
	default:
		return "Unknown"
	}
}

// ParsePolicy parses "strict" or "contextual", ignoring case.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "contextual":
		return Contextual, nil
	default:
		return 0, fmt.Errorf("unknown click policy %q", s)
	}
}

// Engine identifiers with a documented bare-click behavior.
const (
	EngineChrome   = "chrome"
	EngineChromium = "chromium"
	EngineEdge     = "msedge"
	EngineFirefox  = "firefox"
)

// enginePolicies records how each driver treats an element click issued
// while keys are held by an earlier action chain. Chromium-based drivers
// dispatch the click through the same input state; geckodriver does not.
var enginePolicies = map[string]Policy{
	EngineChrome:            Contextual,
	EngineChromium:          Contextual,
	"chrome-headless-shell": Contextual,
	EngineEdge:              Contextual,
	"edge":                  Contextual,
	EngineFirefox:           Strict,
}

// PolicyFor returns the bare-click policy for engine. Unknown engines yield
// ErrUnknownEngine rather than a guess.
func PolicyFor(engine string) (Policy, error) {
	p, ok := enginePolicies[strings.ToLower(strings.TrimSpace(engine))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	return p, nil
}

// ClickStyle distinguishes explicit pointer ticks from the high-level click
// convenience gesture.
type ClickStyle int

const (
	// ExplicitClick is a pointer down/up pair routed through the tick builder.
	ExplicitClick ClickStyle = iota
	// BareClick is Session.Click.
	BareClick
)

// String returns a string representation of the ClickStyle.
func (c ClickStyle) String() string {
	switch c {
	case ExplicitClick:
		return "explicit click"
	case BareClick:
		return "bare click"
	default:
		return "unknown click"
	}
}

// Click classifications reported by the page under test.
const (
	ClassShiftClick  = "shift-click"
	ClassNormalClick = "normal-click"

	TextShiftClick  = "Shift+Click detected!"
	TextNormalClick = "Normal click detected"
)

// Observed is what the page under test reports after a click.
type Observed struct {
	Classification string
	Text           string
}

// String returns "classification (text)".
func (o Observed) String() string {
	return fmt.Sprintf("%s (%q)", o.Classification, o.Text)
}

var (
	observedShiftClick  = Observed{Classification: ClassShiftClick, Text: TextShiftClick}
	observedNormalClick = Observed{Classification: ClassNormalClick, Text: TextNormalClick}
)

// EffectiveModifiers returns the modifiers a click of the given style carries
// when held is the tracked state.
func EffectiveModifiers(p Policy, held DeviceState, style ClickStyle) Modifiers {
	if style == BareClick && p == Strict {
		return 0
	}
	return held.Modifiers()
}

// Expect returns the classification the page should report for a click of
// the given style while held is the tracked state.
func Expect(p Policy, held DeviceState, style ClickStyle) Observed {
	if EffectiveModifiers(p, held, style).Has(ModifierShift) {
		return observedShiftClick
	}
	return observedNormalClick
}

// Verify compares observed against the expected outcome and returns a
// *PolicyMismatchError when they differ.
func Verify(engine string, p Policy, held DeviceState, style ClickStyle, observed Observed) error {
	expected := Expect(p, held, style)
	if observed == expected {
		return nil
	}
	return &PolicyMismatchError{
		Engine:   engine,
		Policy:   p,
		Style:    style,
		Held:     held.Modifiers(),
		Expected: expected,
		Observed: observed,
	}
}
