package actions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thesyncim/shiftclick/pkg/actions/internal"
)

func newTestSession(t *testing.T, ft *fakeTransport, engine string) *Session {
	t.Helper()
	s, err := NewSession(ft, SessionConfig{Engine: engine})
	require.NoError(t, err)
	return s
}

func TestNewSession(t *testing.T) {
	_, err := NewSession(nil, DefaultSessionConfig())
	assert.Error(t, err)

	_, err = NewSession(&fakeTransport{}, SessionConfig{Engine: "safari"})
	assert.True(t, errors.Is(err, ErrUnknownEngine))

	_, err = NewSession(&fakeTransport{}, SessionConfig{Policy: Policy(5)})
	assert.Error(t, err)

	s, err := NewSession(&fakeTransport{}, DefaultSessionConfig())
	require.NoError(t, err)
	assert.Equal(t, EngineChrome, s.Engine())
	assert.Equal(t, Contextual, s.Policy())
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, Neutral, s.SnapshotState().Kind())

	// A policy without an engine is taken as is
	s, err = NewSession(&fakeTransport{}, SessionConfig{Policy: Strict})
	require.NoError(t, err)
	assert.Equal(t, "", s.Engine())
	assert.Equal(t, Strict, s.Policy())

	// Engine wins over an explicit policy
	s, err = NewSession(&fakeTransport{}, SessionConfig{Engine: EngineFirefox, Policy: Contextual})
	require.NoError(t, err)
	assert.Equal(t, Strict, s.Policy())
}

func TestNewSession_IDs(t *testing.T) {
	a := newTestSession(t, &fakeTransport{}, EngineChrome)
	b := newTestSession(t, &fakeTransport{}, EngineChrome)
	assert.NotEqual(t, a.ID(), b.ID())

	s, err := NewSession(&fakeTransport{}, DefaultSessionConfig(), WithSessionID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", s.ID())
}

func TestSession_WithClock(t *testing.T) {
	clock := internal.NewManualClock(time.Time{})
	ft := &fakeTransport{clock: clock, step: 5 * time.Millisecond}
	s, err := NewSession(ft, DefaultSessionConfig(), WithClock(clock))
	require.NoError(t, err)

	res, err := s.Click(context.Background(), Point{X: 1, Y: 1}, ButtonLeft)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Millisecond, res.Elapsed)
}

// Keys held in one flush are still held for a click built and flushed
// separately, and released only by the final flush.
func TestSession_ShiftClickAcrossFlushes(t *testing.T) {
	for _, engine := range []string{EngineChrome, EngineFirefox} {
		t.Run(engine, func(t *testing.T) {
			ft := &fakeTransport{}
			s := newTestSession(t, ft, engine)
			ctx := context.Background()
			p := Point{X: 50, Y: 20}

			require.NoError(t, s.QueueIntent(KeyDownIntent(KeyShift)))
			_, err := s.Flush(ctx, false)
			require.NoError(t, err)
			assert.True(t, s.SnapshotState().Holds(KeyShift))

			require.NoError(t, s.QueueIntent(PointerDownIntent(p, ButtonLeft)))
			require.NoError(t, s.QueueIntent(PointerUpIntent(p, ButtonLeft)))
			_, err = s.Flush(ctx, false)
			require.NoError(t, err)
			assert.True(t, s.SnapshotState().Holds(KeyShift))

			require.NoError(t, s.QueueIntent(KeyUpIntent(KeyShift)))
			res, err := s.Flush(ctx, true)
			require.NoError(t, err)
			assert.True(t, res.Released)

			assert.Equal(t, observedShiftClick, ft.page())
			assert.Equal(t, 1, ft.clicks)
			assert.Equal(t, Neutral, s.SnapshotState().Kind())
			assert.Equal(t, 0, s.Pending())
		})
	}
}

func TestSession_NormalClick(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, ft, EngineChrome)
	ctx := context.Background()
	p := Point{X: 50, Y: 20}

	require.NoError(t, s.QueueIntent(PointerDownIntent(p, ButtonLeft)))
	require.NoError(t, s.QueueIntent(PointerUpIntent(p, ButtonLeft)))
	_, err := s.Flush(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, observedNormalClick, ft.page())
	assert.Equal(t, Neutral, s.SnapshotState().Kind())
}

func TestSession_BareClickFollowsPolicy(t *testing.T) {
	tests := []struct {
		engine string
		want   Observed
	}{
		{EngineChrome, observedShiftClick},
		{EngineChromium, observedShiftClick},
		{EngineEdge, observedShiftClick},
		{EngineFirefox, observedNormalClick},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			ft := &fakeTransport{}
			s := newTestSession(t, ft, tt.engine)
			ctx := context.Background()
			p := Point{X: 7, Y: 8}

			require.NoError(t, s.QueueIntent(KeyDownIntent(KeyShift)))
			_, err := s.Flush(ctx, false)
			require.NoError(t, err)

			held := s.SnapshotState()
			assert.Equal(t, tt.want, s.ExpectClick(BareClick))

			res, err := s.Click(ctx, p, ButtonLeft)
			require.NoError(t, err)
			assert.False(t, res.Released, "a bare click never releases")
			assert.Equal(t, 3, res.Ticks)

			assert.Equal(t, tt.want, ft.page())
			assert.NoError(t, s.VerifyClick(held, BareClick, ft.page()))

			// Shift is still held after the click under either policy
			assert.True(t, s.SnapshotState().Holds(KeyShift))
			assert.Equal(t, p, s.SnapshotState().Position)

			_, err = s.Release(ctx)
			require.NoError(t, err)
			assert.Equal(t, Neutral, s.SnapshotState().Kind())
		})
	}
}

func TestSession_VerifyClickMismatch(t *testing.T) {
	s := newTestSession(t, &fakeTransport{}, EngineFirefox)
	held := DeviceState{Keys: []Key{KeyShift}}

	err := s.VerifyClick(held, BareClick, observedShiftClick)
	var pm *PolicyMismatchError
	require.True(t, errors.As(err, &pm))
	assert.Equal(t, EngineFirefox, pm.Engine)
	assert.Equal(t, observedNormalClick, pm.Expected)

	// The session remains usable
	require.NoError(t, s.QueueIntent(KeyUpIntent(KeyShift)))
	_, err = s.Flush(context.Background(), true)
	assert.NoError(t, err)
}

func TestSession_ConflictingSyncIsRejected(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, ft, EngineChrome)

	err := s.QueueSync(KeyDownIntent(KeyShift), KeyDownIntent("a"))
	var ie *InvalidIntentError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 0, s.Pending())

	_, err = s.Flush(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, ft.calls)
	assert.Equal(t, Neutral, s.SnapshotState().Kind())
}

func TestSession_SyncTick(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, ft, EngineChrome)
	p := Point{X: 4, Y: 4}

	require.NoError(t, s.QueueSync(PointerDownIntent(p, ButtonLeft), KeyDownIntent(KeyShift)))
	require.NoError(t, s.QueueSync(PointerUpIntent(p, ButtonLeft), KeyUpIntent(KeyShift)))
	_, err := s.Flush(context.Background(), true)
	require.NoError(t, err)

	sent := ft.sent()
	require.Len(t, sent, 2)
	// Keyboard goes first, so the pointer actions carry Shift
	assert.Equal(t, []Modifiers{ModifierShift, ModifierShift, 0, 0}, modifiersOf(sent))
	assert.Equal(t, observedNormalClick, ft.page())
}

func TestSession_ConfigurePolicy(t *testing.T) {
	s := newTestSession(t, &fakeTransport{}, EngineChrome)

	p, err := s.ConfigurePolicy("Firefox")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)
	assert.Equal(t, Strict, s.Policy())

	_, err = s.ConfigurePolicy("lynx")
	assert.True(t, errors.Is(err, ErrUnknownEngine))
	assert.Equal(t, Strict, s.Policy(), "failed configuration keeps the policy")
	assert.Equal(t, "Firefox", s.Engine())
}

func TestSession_Close(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, ft, EngineChrome)
	ctx := context.Background()

	require.NoError(t, s.QueueIntent(KeyDownIntent(KeyShift)))
	_, err := s.Flush(ctx, false)
	require.NoError(t, err)
	require.NoError(t, s.QueueIntent(KeyDownIntent("a")))

	require.NoError(t, s.Close(ctx))
	require.Len(t, ft.releases, 1)
	assert.Equal(t, []Key{KeyShift}, ft.releases[0].Keys)
	assert.Equal(t, Neutral, s.SnapshotState().Kind())
	assert.Equal(t, 0, s.Pending())

	assert.NoError(t, s.Close(ctx), "Close is idempotent")
	assert.Len(t, ft.releases, 1)

	assert.ErrorIs(t, s.QueueIntent(KeyDownIntent("b")), ErrSessionClosed)
	_, err = s.Flush(ctx, true)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Click(ctx, Point{}, ButtonLeft)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Release(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_CloseNeutralSendsNothing(t *testing.T) {
	ft := &fakeTransport{}
	s := newTestSession(t, ft, EngineChrome)
	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, ft.releases)
}

func TestSession_ConcurrentClicksAreSerialized(t *testing.T) {
	defer goleak.VerifyNone(t)

	ft := &fakeTransport{delay: time.Millisecond}
	s := newTestSession(t, ft, EngineChrome)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Click(ctx, Point{X: float64(i), Y: 1}, ButtonLeft)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.False(t, ft.overlap.Load(), "ticks from different batches overlapped")
	assert.Equal(t, workers, ft.clicks)
	assert.Len(t, ft.sent(), workers*3)

	// Each batch is contiguous: move, down, up
	sent := ft.sent()
	for i := 0; i < len(sent); i += 3 {
		assert.Equal(t, PointerMove, sent[i][0].Kind)
		assert.Equal(t, PointerDown, sent[i+1][0].Kind)
		assert.Equal(t, PointerUp, sent[i+2][0].Kind)
	}
}
