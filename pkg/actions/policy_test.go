package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		engine string
		want   Policy
	}{
		{"chrome", Contextual},
		{"Chrome", Contextual},
		{"chromium", Contextual},
		{"chrome-headless-shell", Contextual},
		{"msedge", Contextual},
		{"edge", Contextual},
		{" firefox ", Strict},
		{"FIREFOX", Strict},
	}
	for _, tt := range tests {
		got, err := PolicyFor(tt.engine)
		require.NoError(t, err, "engine %q", tt.engine)
		assert.Equal(t, tt.want, got, "engine %q", tt.engine)
	}
}

func TestPolicyFor_UnknownEngine(t *testing.T) {
	for _, engine := range []string{"", "safari", "netscape"} {
		_, err := PolicyFor(engine)
		assert.True(t, errors.Is(err, ErrUnknownEngine), "engine %q: %v", engine, err)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Strict")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	p, err = ParsePolicy(" contextual ")
	require.NoError(t, err)
	assert.Equal(t, Contextual, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)

	assert.Equal(t, "Strict", Strict.String())
	assert.Equal(t, "Contextual", Contextual.String())
	assert.Equal(t, "Unknown", Policy(7).String())
}

func TestExpect(t *testing.T) {
	shift := DeviceState{Keys: []Key{KeyShift}}
	ctrl := DeviceState{Keys: []Key{KeyControl}}
	none := DeviceState{}

	tests := []struct {
		name   string
		policy Policy
		held   DeviceState
		style  ClickStyle
		want   Observed
	}{
		{"contextual bare with shift", Contextual, shift, BareClick, observedShiftClick},
		{"strict bare with shift", Strict, shift, BareClick, observedNormalClick},
		{"strict explicit with shift", Strict, shift, ExplicitClick, observedShiftClick},
		{"contextual explicit with shift", Contextual, shift, ExplicitClick, observedShiftClick},
		{"contextual bare with control", Contextual, ctrl, BareClick, observedNormalClick},
		{"contextual bare nothing held", Contextual, none, BareClick, observedNormalClick},
		{"strict explicit nothing held", Strict, none, ExplicitClick, observedNormalClick},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expect(tt.policy, tt.held, tt.style))
		})
	}
}

func TestEffectiveModifiers(t *testing.T) {
	held := DeviceState{Keys: []Key{KeyShift, KeyAlt}}
	assert.Equal(t, Modifiers(0), EffectiveModifiers(Strict, held, BareClick))
	assert.Equal(t, ModifierShift|ModifierAlt, EffectiveModifiers(Contextual, held, BareClick))
	assert.Equal(t, ModifierShift|ModifierAlt, EffectiveModifiers(Strict, held, ExplicitClick))
}

func TestVerify(t *testing.T) {
	held := DeviceState{Keys: []Key{KeyShift}}

	err := Verify(EngineChrome, Contextual, held, BareClick, Observed{
		Classification: ClassShiftClick,
		Text:           TextShiftClick,
	})
	assert.NoError(t, err)

	err = Verify(EngineFirefox, Strict, held, BareClick, Observed{
		Classification: ClassShiftClick,
		Text:           TextShiftClick,
	})
	var pm *PolicyMismatchError
	require.True(t, errors.As(err, &pm))
	assert.Equal(t, EngineFirefox, pm.Engine)
	assert.Equal(t, Strict, pm.Policy)
	assert.Equal(t, BareClick, pm.Style)
	assert.Equal(t, ModifierShift, pm.Held)
	assert.Equal(t, ClassNormalClick, pm.Expected.Classification)
	assert.Equal(t, ClassShiftClick, pm.Observed.Classification)
	assert.Contains(t, err.Error(), "Strict policy")
	assert.Contains(t, err.Error(), "engine firefox")

	// Text is part of the contract, not only the classification.
	err = Verify("", Contextual, DeviceState{}, ExplicitClick, Observed{
		Classification: ClassNormalClick,
		Text:           "Normal click",
	})
	require.True(t, errors.As(err, &pm))
	assert.Contains(t, err.Error(), "engine unset")
}
