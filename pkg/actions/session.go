package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/thesyncim/shiftclick/pkg/actions/internal"
)

// SessionConfig holds configuration for a Session.
type SessionConfig struct {
	// Engine is the remote browser engine. When set, Policy is derived from
	// it and an unknown engine is an error.
	Engine string

	// Policy is the bare-click policy used when Engine is empty.
	Policy Policy
}

// DefaultSessionConfig returns a configuration for Chrome.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Engine: EngineChrome,
		Policy: Contextual,
	}
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*Session)

// WithLogger sets the logger. Ticks are logged at debug level.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock sets the clock used to time dispatches.
func WithClock(c internal.Clock) SessionOption {
	return func(s *Session) {
		s.clock = c
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// Session is one automation session against a single browsing context. It
// owns a tick builder, a state tracker (through its coordinator) and the
// active bare-click policy.
//
// All methods are safe for concurrent use. Flush and Click hold the session
// for the whole dispatch, so at most one batch is in flight at a time.
type Session struct {
	id     string
	logger *slog.Logger
	clock  internal.Clock

	coord *Coordinator

	mu      sync.Mutex
	builder *TickBuilder
	engine  string
	policy  Policy
	closed  bool
}

// NewSession creates a session that dispatches through t.
func NewSession(t Transport, cfg SessionConfig, opts ...SessionOption) (*Session, error) {
	if t == nil {
		return nil, errors.New("transport is required")
	}

	s := &Session{
		builder: NewTickBuilder(),
		policy:  cfg.Policy,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With("session", s.id)

	if cfg.Engine != "" {
		p, err := PolicyFor(cfg.Engine)
		if err != nil {
			return nil, fmt.Errorf("failed to configure session: %w", err)
		}
		s.engine = cfg.Engine
		s.policy = p
	} else if cfg.Policy != Strict && cfg.Policy != Contextual {
		return nil, fmt.Errorf("failed to configure session: invalid policy %d", int(cfg.Policy))
	}

	s.coord = NewCoordinator(t, s.clock, s.logger)
	s.logger.Debug("session created", "engine", s.engine, "policy", s.policy.String())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Engine returns the configured engine, or "" if the policy was set directly.
func (s *Session) Engine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Policy returns the active bare-click policy.
func (s *Session) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// ConfigurePolicy switches the session to the policy documented for engine.
// On error the current policy is kept.
func (s *Session) ConfigurePolicy(engine string) (Policy, error) {
	p, err := PolicyFor(engine)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
	s.policy = p
	s.logger.Debug("policy configured", "engine", engine, "policy", p.String())
	return p, nil
}

// QueueIntent queues intent as its own tick.
func (s *Session) QueueIntent(intent Intent) error {
	return s.QueueSync(intent)
}

// QueueSync queues intents as one synchronized tick.
func (s *Session) QueueSync(intents ...Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.builder.QueueSync(intents...)
}

// Flush dispatches every queued tick. releaseAfter must be chosen
// explicitly: false keeps held keys down for later calls.
func (s *Session) Flush(ctx context.Context, releaseAfter bool) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrSessionClosed
	}
	batch := s.builder.Build(releaseAfter)
	return s.coord.Send(ctx, batch)
}

// Click performs a bare click at p. Under Strict the click is isolated from
// held keys; under Contextual it carries their modifiers. Held state is not
// released either way.
func (s *Session) Click(ctx context.Context, p Point, b Button) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrSessionClosed
	}

	down := PointerDownIntent(p, b)
	up := PointerUpIntent(p, b)
	batch := &Batch{
		Ticks: []Tick{
			{{Intent: PointerMoveIntent(p)}},
			{{Intent: down}},
			{{Intent: up}},
		},
		isolated: s.policy == Strict,
	}
	s.logger.Debug("bare click",
		"x", p.X,
		"y", p.Y,
		"button", b.String(),
		"policy", s.policy.String())
	return s.coord.Send(ctx, batch)
}

// Release releases all held keys and buttons and returns to Neutral.
func (s *Session) Release(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, ErrSessionClosed
	}
	return s.coord.Release(ctx)
}

// SnapshotState returns the tracked device state.
func (s *Session) SnapshotState() DeviceState {
	return s.coord.Snapshot()
}

// Pending returns the number of queued, unflushed ticks.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Len()
}

// ExpectClick returns the classification the page should report for a click
// of the given style in the current state.
func (s *Session) ExpectClick(style ClickStyle) Observed {
	held := s.SnapshotState()
	return Expect(s.Policy(), held, style)
}

// VerifyClick checks observed against the outcome predicted for held, the
// state that was in effect when the click was dispatched.
func (s *Session) VerifyClick(held DeviceState, style ClickStyle, observed Observed) error {
	s.mu.Lock()
	engine, policy := s.engine, s.policy
	s.mu.Unlock()
	return Verify(engine, policy, held, style, observed)
}

// Close releases held state and marks the session closed. Queued ticks are
// discarded.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.builder.Reset()
	if s.coord.Snapshot().Kind() == Neutral {
		return nil
	}
	_, err := s.coord.Release(ctx)
	return err
}
