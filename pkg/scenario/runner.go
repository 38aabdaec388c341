package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// Environment connects a scenario to the page under test.
type Environment interface {
	// Target resolves a CSS selector to a pointer coordinate.
	Target(ctx context.Context, selector string) (actions.Point, error)

	// Observe reads the page's click classification.
	Observe(ctx context.Context) (actions.Observed, error)

	// ResetObserved clears the page's classification.
	ResetObserved(ctx context.Context) error
}

// Report summarizes one scenario run.
type Report struct {
	Name     string
	Engine   string
	Policy   actions.Policy
	Steps    int // steps completed
	Observed []actions.Observed
	Elapsed  time.Duration
	Err      error
}

// Passed reports whether every step completed and every expectation held.
func (r Report) Passed() bool {
	return r.Err == nil
}

// Run executes s on sess. It stops at the first failing step and returns
// the error, which is also recorded in the report. Held state is left as
// the failing step found it; callers close the session to release it.
func Run(ctx context.Context, s Scenario, sess *actions.Session, env Environment) (Report, error) {
	r := &runner{sess: sess, env: env}
	rep := Report{
		Name:   s.Name,
		Engine: sess.Engine(),
		Policy: sess.Policy(),
	}
	start := time.Now()
	for i, st := range s.Steps {
		if err := r.step(ctx, st); err != nil {
			rep.Err = fmt.Errorf("step %d (%s): %w", i, st.Action, err)
			break
		}
		rep.Steps++
	}
	rep.Observed = r.observed
	rep.Elapsed = time.Since(start)
	return rep, rep.Err
}

type runner struct {
	sess *actions.Session
	env  Environment

	// State held when the most recent click began, for derived expectations.
	lastHeld  actions.DeviceState
	lastStyle actions.ClickStyle
	clicked   bool

	pendingPointerDown bool
	observed           []actions.Observed
}

func (r *runner) step(ctx context.Context, st Step) error {
	switch st.Action {
	case StepKeyDown, StepKeyUp, StepPointerMove, StepPointerDown, StepPointerUp:
		in, err := r.intent(ctx, st)
		if err != nil {
			return err
		}
		return r.sess.QueueIntent(in)

	case StepSync:
		intents := make([]actions.Intent, 0, len(st.Steps))
		for _, sub := range st.Steps {
			in, err := r.intent(ctx, sub)
			if err != nil {
				return err
			}
			intents = append(intents, in)
		}
		return r.sess.QueueSync(intents...)

	case StepFlush:
		if st.Release == nil {
			return errors.New("flush requires an explicit release value")
		}
		if r.pendingPointerDown {
			r.lastHeld = r.sess.SnapshotState()
			r.lastStyle = actions.ExplicitClick
			r.clicked = true
			r.pendingPointerDown = false
		}
		_, err := r.sess.Flush(ctx, *st.Release)
		return err

	case StepClick:
		p, err := r.env.Target(ctx, st.Target)
		if err != nil {
			return err
		}
		b, err := ParseButton(st.Button)
		if err != nil {
			return err
		}
		r.lastHeld = r.sess.SnapshotState()
		r.lastStyle = actions.BareClick
		r.clicked = true
		_, err = r.sess.Click(ctx, p, b)
		return err

	case StepRelease:
		_, err := r.sess.Release(ctx)
		return err

	case StepReset:
		return r.env.ResetObserved(ctx)

	case StepExpect:
		return r.expect(ctx, st)

	default:
		return fmt.Errorf("unknown step action %q", st.Action)
	}
}

func (r *runner) intent(ctx context.Context, st Step) (actions.Intent, error) {
	switch st.Action {
	case StepKeyDown, StepKeyUp:
		k, err := ParseKey(st.Key)
		if err != nil {
			return actions.Intent{}, err
		}
		if st.Action == StepKeyDown {
			return actions.KeyDownIntent(k), nil
		}
		return actions.KeyUpIntent(k), nil
	}

	p, err := r.env.Target(ctx, st.Target)
	if err != nil {
		return actions.Intent{}, err
	}
	b, err := ParseButton(st.Button)
	if err != nil {
		return actions.Intent{}, err
	}
	switch st.Action {
	case StepPointerMove:
		return actions.PointerMoveIntent(p), nil
	case StepPointerDown:
		r.pendingPointerDown = true
		return actions.PointerDownIntent(p, b), nil
	case StepPointerUp:
		return actions.PointerUpIntent(p, b), nil
	default:
		return actions.Intent{}, fmt.Errorf("%s is not an input intent", st.Action)
	}
}

func (r *runner) expect(ctx context.Context, st Step) error {
	obs, err := r.env.Observe(ctx)
	if err != nil {
		return err
	}
	r.observed = append(r.observed, obs)

	if st.Derive {
		if !r.clicked {
			return errors.New("derived expectation without a preceding click")
		}
		return r.sess.VerifyClick(r.lastHeld, r.lastStyle, obs)
	}

	expected := actions.Observed{Classification: st.Classification, Text: st.Text}
	if expected.Text == "" {
		// Only the classification was given.
		expected.Text = obs.Text
	}
	if obs == expected {
		return nil
	}
	return &actions.PolicyMismatchError{
		Engine:   r.sess.Engine(),
		Policy:   r.sess.Policy(),
		Style:    r.lastStyle,
		Held:     r.lastHeld.Modifiers(),
		Expected: expected,
		Observed: obs,
	}
}
