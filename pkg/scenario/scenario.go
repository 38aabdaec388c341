// Package scenario loads click scenarios from YAML and runs them against an
// actions.Session.
//
// A scenario file looks like:
//
//	name: shift-click
//	steps:
//	  - action: keyDown
//	    key: shift
//	  - action: flush
//	    release: false
//	  - action: pointerDown
//	    target: "#testButton"
//	  - action: pointerUp
//	    target: "#testButton"
//	  - action: flush
//	    release: false
//	  - action: keyUp
//	    key: shift
//	  - action: flush
//	    release: true
//	  - action: expect
//	    classification: shift-click
//	    text: Shift+Click detected!
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// Step kinds.
const (
	StepKeyDown     = "keyDown"
	StepKeyUp       = "keyUp"
	StepPointerMove = "pointerMove"
	StepPointerDown = "pointerDown"
	StepPointerUp   = "pointerUp"
	StepSync        = "sync"
	StepFlush       = "flush"
	StepClick       = "click"
	StepRelease     = "release"
	StepExpect      = "expect"
	StepReset       = "reset"
)

// Scenario is a named sequence of steps.
type Scenario struct {
	Name string `yaml:"name"`

	// Engine selects the bare-click policy. Empty uses the runner's engine.
	Engine string `yaml:"engine,omitempty"`

	// Policy forces "strict" or "contextual" regardless of engine.
	Policy string `yaml:"policy,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is one scenario instruction.
type Step struct {
	Action string `yaml:"action"`

	// Key for keyDown/keyUp: shift, control, alt, meta or a single character.
	Key string `yaml:"key,omitempty"`

	// Target is a CSS selector for pointer steps and click.
	Target string `yaml:"target,omitempty"`

	// Button for pointer steps and click: left (default), middle or right.
	Button string `yaml:"button,omitempty"`

	// Release is required for flush.
	Release *bool `yaml:"release,omitempty"`

	// Steps are the intents of a sync step, dispatched in one tick.
	Steps []Step `yaml:"steps,omitempty"`

	// Classification and Text are the expected outcome of an expect step.
	// Derive computes the outcome from the session policy instead.
	Classification string `yaml:"classification,omitempty"`
	Text           string `yaml:"text,omitempty"`
	Derive         bool   `yaml:"derive,omitempty"`
}

// Load reads and parses a scenario file. A file may hold one scenario or a
// list of them.
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes one scenario or a list of scenarios and validates them.
func Parse(data []byte) ([]Scenario, error) {
	var list []Scenario
	if err := yaml.Unmarshal(data, &list); err != nil {
		var single Scenario
		if err2 := yaml.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("failed to parse scenario file: %w", err)
		}
		list = []Scenario{single}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("scenario file has no scenarios")
	}
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Validate checks the scenario without resolving targets.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if s.Policy != "" {
		if _, err := actions.ParsePolicy(s.Policy); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	if s.Engine != "" {
		if _, err := actions.PolicyFor(s.Engine); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s has no steps", s.Name)
	}
	for i, st := range s.Steps {
		if err := st.validate(false); err != nil {
			return fmt.Errorf("scenario %s step %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func (st Step) validate(inSync bool) error {
	switch st.Action {
	case StepKeyDown, StepKeyUp:
		if _, err := ParseKey(st.Key); err != nil {
			return err
		}
	case StepPointerMove, StepPointerDown, StepPointerUp:
		if st.Target == "" {
			return fmt.Errorf("%s requires a target", st.Action)
		}
		if _, err := ParseButton(st.Button); err != nil {
			return err
		}
	case StepSync:
		if inSync {
			return fmt.Errorf("sync steps cannot nest")
		}
		if len(st.Steps) == 0 {
			return fmt.Errorf("sync requires steps")
		}
		for _, sub := range st.Steps {
			if err := sub.validate(true); err != nil {
				return err
			}
		}
		return nil
	case StepFlush:
		if st.Release == nil {
			return fmt.Errorf("flush requires an explicit release value")
		}
	case StepClick:
		if st.Target == "" {
			return fmt.Errorf("click requires a target")
		}
		if _, err := ParseButton(st.Button); err != nil {
			return err
		}
	case StepRelease, StepReset:
	case StepExpect:
		if !st.Derive && st.Classification == "" {
			return fmt.Errorf("expect requires a classification or derive: true")
		}
	default:
		return fmt.Errorf("unknown step action %q", st.Action)
	}
	if inSync {
		switch st.Action {
		case StepKeyDown, StepKeyUp, StepPointerMove, StepPointerDown, StepPointerUp:
		default:
			return fmt.Errorf("%s cannot appear inside sync", st.Action)
		}
	}
	return nil
}

// SessionConfig returns the session configuration for s. engine is used
// when the scenario names neither an engine nor a policy.
func (s *Scenario) SessionConfig(engine string) (actions.SessionConfig, error) {
	if s.Policy != "" {
		p, err := actions.ParsePolicy(s.Policy)
		if err != nil {
			return actions.SessionConfig{}, err
		}
		return actions.SessionConfig{Policy: p}, nil
	}
	if s.Engine != "" {
		engine = s.Engine
	}
	return actions.SessionConfig{Engine: engine}, nil
}

var keyAliases = map[string]actions.Key{
	"shift":      actions.KeyShift,
	"rightshift": actions.KeyRightShift,
	"control":    actions.KeyControl,
	"ctrl":       actions.KeyControl,
	"alt":        actions.KeyAlt,
	"meta":       actions.KeyMeta,
	"enter":      actions.KeyEnter,
	"escape":     actions.KeyEscape,
	"tab":        actions.KeyTab,
	"backspace":  actions.KeyBackspace,
}

// ParseKey maps a key name or single character to a WebDriver key.
// Single WebDriver code points such as U+E008 are accepted as is.
func ParseKey(s string) (actions.Key, error) {
	if k, ok := keyAliases[strings.ToLower(s)]; ok {
		return k, nil
	}
	if len([]rune(s)) == 1 {
		return actions.Key(s), nil
	}
	return "", fmt.Errorf("unknown key %q", s)
}

// ParseButton maps a button name to a pointer button. Empty means left.
func ParseButton(s string) (actions.Button, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return actions.ButtonLeft, nil
	case "middle":
		return actions.ButtonMiddle, nil
	case "right":
		return actions.ButtonRight, nil
	default:
		return 0, fmt.Errorf("unknown button %q", s)
	}
}
