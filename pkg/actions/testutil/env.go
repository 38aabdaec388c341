package testutil

import (
	"context"
	"time"

	"github.com/go-rod/rod"

	"github.com/thesyncim/shiftclick/pkg/actions"
	"github.com/thesyncim/shiftclick/pkg/actions/rodinput"
)

// PageEnvironment resolves targets and reads results on a Rod page. It
// satisfies scenario.Environment.
type PageEnvironment struct {
	Page           *rod.Page
	ResultSelector string
	Timeout        time.Duration
}

// NewPageEnvironment returns an environment reading results from selector.
func NewPageEnvironment(page *rod.Page, selector string) *PageEnvironment {
	return &PageEnvironment{
		Page:           page,
		ResultSelector: selector,
		Timeout:        5 * time.Second,
	}
}

// Target returns a point inside the element matching selector.
func (e *PageEnvironment) Target(ctx context.Context, selector string) (actions.Point, error) {
	el, err := e.Page.Context(ctx).Element(selector)
	if err != nil {
		return actions.Point{}, err
	}
	return rodinput.ElementPoint(el)
}

// Observe waits for the result element to report a classification.
func (e *PageEnvironment) Observe(ctx context.Context) (actions.Observed, error) {
	return WaitObserved(e.Page.Context(ctx), e.ResultSelector, e.Timeout)
}

// ResetObserved clears the result element.
func (e *PageEnvironment) ResetObserved(ctx context.Context) error {
	return ResetObserved(e.Page.Context(ctx), e.ResultSelector)
}
