// Package rodinput dispatches actions ticks to Chrome through the DevTools
// Protocol Input domain using Rod.
//
// Usage:
//
//	page := browser.MustPage(url)
//	sess, err := actions.NewSession(rodinput.New(page), actions.DefaultSessionConfig())
package rodinput

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// Transport implements actions.Transport for a single Rod page.
type Transport struct {
	page *rod.Page
}

// New creates a transport for page.
func New(page *rod.Page) *Transport {
	return &Transport{page: page}
}

// PerformActions sends every action in tick, in order. The page is bound to
// ctx so cancellation and deadlines abort the CDP call.
func (t *Transport) PerformActions(ctx context.Context, tick actions.Tick) error {
	p := t.page.Context(ctx)
	for _, a := range tick {
		var err error
		switch a.Device {
		case actions.Keyboard:
			err = dispatchKey(p, a)
		case actions.Pointer:
			err = dispatchMouse(p, a)
		default:
			err = fmt.Errorf("unsupported device %v", a.Device)
		}
		if err != nil {
			return fmt.Errorf("failed to dispatch %v: %w", a.Intent, err)
		}
	}
	return nil
}

// ReleaseActions lifts pressed buttons, then releases held keys in reverse
// press order with the modifier set shrinking as each key goes up.
func (t *Transport) ReleaseActions(ctx context.Context, held actions.DeviceState) error {
	p := t.page.Context(ctx)
	mods := held.Modifiers()

	for _, b := range held.Buttons.Buttons() {
		a := actions.Action{
			Intent:    actions.PointerUpIntent(held.Position, b),
			Modifiers: mods,
		}
		if err := dispatchMouse(p, a); err != nil {
			return fmt.Errorf("failed to release %v button: %w", b, err)
		}
	}

	keys := slices.Clone(held.Keys)
	slices.Reverse(keys)
	for _, k := range keys {
		mods &^= actions.ModifierFor(k)
		a := actions.Action{Intent: actions.KeyUpIntent(k), Modifiers: mods}
		if err := dispatchKey(p, a); err != nil {
			return fmt.Errorf("failed to release key %v: %w", k, err)
		}
	}
	return nil
}

func dispatchKey(p *rod.Page, a actions.Action) error {
	info := lookupKey(a.Key)
	ev := proto.InputDispatchKeyEvent{
		Modifiers:             int(a.Modifiers),
		Key:                   info.key,
		Code:                  info.code,
		WindowsVirtualKeyCode: info.keyCode,
	}
	switch a.Kind {
	case actions.KeyDown:
		ev.Type = proto.InputDispatchKeyEventTypeKeyDown
		ev.Text = info.text
		if info.text == "" {
			ev.Type = proto.InputDispatchKeyEventTypeRawKeyDown
		}
	case actions.KeyUp:
		ev.Type = proto.InputDispatchKeyEventTypeKeyUp
	default:
		return fmt.Errorf("unsupported keyboard action %v", a.Kind)
	}
	return ev.Call(p)
}

func dispatchMouse(p *rod.Page, a actions.Action) error {
	ev := proto.InputDispatchMouseEvent{
		X:         a.Point.X,
		Y:         a.Point.Y,
		Modifiers: int(a.Modifiers),
	}
	switch a.Kind {
	case actions.PointerMove:
		ev.Type = proto.InputDispatchMouseEventTypeMouseMoved
	case actions.PointerDown:
		ev.Type = proto.InputDispatchMouseEventTypeMousePressed
		ev.Button = mouseButton(a.Button)
		ev.ClickCount = 1
	case actions.PointerUp:
		ev.Type = proto.InputDispatchMouseEventTypeMouseReleased
		ev.Button = mouseButton(a.Button)
		ev.ClickCount = 1
	default:
		return fmt.Errorf("unsupported pointer action %v", a.Kind)
	}
	return ev.Call(p)
}

func mouseButton(b actions.Button) proto.InputMouseButton {
	switch b {
	case actions.ButtonMiddle:
		return proto.InputMouseButtonMiddle
	case actions.ButtonRight:
		return proto.InputMouseButtonRight
	default:
		return proto.InputMouseButtonLeft
	}
}

// ElementPoint scrolls el into view and returns a point inside its content
// box, suitable as a pointer target.
func ElementPoint(el *rod.Element) (actions.Point, error) {
	if err := el.ScrollIntoView(); err != nil {
		return actions.Point{}, fmt.Errorf("failed to scroll element into view: %w", err)
	}
	shape, err := el.Shape()
	if err != nil {
		return actions.Point{}, fmt.Errorf("failed to get element shape: %w", err)
	}
	pt := shape.OnePointInside()
	if pt == nil {
		return actions.Point{}, errors.New("element has no visible area")
	}
	return actions.Point{X: pt.X, Y: pt.Y}, nil
}
