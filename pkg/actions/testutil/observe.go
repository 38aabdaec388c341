package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// ClickTypeAttr is the attribute the page under test sets on its result
// element.
const ClickTypeAttr = "data-click-type"

// ReadObserved reads the click classification and display text from the
// element matching selector.
func ReadObserved(page *rod.Page, selector string) (actions.Observed, error) {
	el, err := page.Element(selector)
	if err != nil {
		return actions.Observed{}, fmt.Errorf("failed to find %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return actions.Observed{}, fmt.Errorf("failed to read text of %s: %w", selector, err)
	}
	attr, err := el.Attribute(ClickTypeAttr)
	if err != nil {
		return actions.Observed{}, fmt.Errorf("failed to read %s of %s: %w", ClickTypeAttr, selector, err)
	}

	obs := actions.Observed{Text: strings.TrimSpace(text)}
	if attr != nil {
		obs.Classification = *attr
	}
	return obs, nil
}

// WaitObserved polls selector until it reports a classification or the
// timeout passes. Click handlers run asynchronously to the CDP acknowledgment,
// so a read straight after dispatch can see the previous value.
func WaitObserved(page *rod.Page, selector string, timeout time.Duration) (actions.Observed, error) {
	deadline := time.Now().Add(timeout)
	pollInterval := 50 * time.Millisecond

	for {
		obs, err := ReadObserved(page, selector)
		if err != nil {
			return obs, err
		}
		if obs.Classification != "" {
			return obs, nil
		}
		if time.Now().After(deadline) {
			return obs, fmt.Errorf("timeout waiting for %s on %s (waited %v)", ClickTypeAttr, selector, timeout)
		}
		time.Sleep(pollInterval)
	}
}

// ResetObserved clears the classification so the next click can be told
// apart from the previous one.
func ResetObserved(page *rod.Page, selector string) error {
	_, err := page.Eval(`(sel, attr) => {
		const el = document.querySelector(sel);
		if (el) {
			el.removeAttribute(attr);
			el.textContent = '';
		}
	}`, selector, ClickTypeAttr)
	if err != nil {
		return fmt.Errorf("failed to reset %s: %w", selector, err)
	}
	return nil
}
