// Package testutil provides browser helpers for exercising the actions
// packages against a real page.
//
// Rod speaks the Chrome DevTools Protocol, so every client launched here is
// a Chromium build and reports EngineChrome unless configured otherwise.
package testutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// BrowserConfig configures Chrome launch options.
type BrowserConfig struct {
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Default operation timeout (default: 30s)
	Bin      string        // Browser binary; empty lets Rod find or download one
	Engine   string        // Engine id reported to sessions (default: chrome)
}

// DefaultBrowserConfig returns sensible defaults for E2E testing.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless: true,
		Timeout:  30 * time.Second,
		Engine:   actions.EngineChrome,
	}
}

// BrowserClient wraps a Rod browser and its current page.
type BrowserClient struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	engine  string
}

// NewBrowserClient launches Chrome with flags suitable for containers.
func NewBrowserClient(cfg BrowserConfig) (*BrowserClient, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	engine := cfg.Engine
	if engine == "" {
		engine = actions.EngineChrome
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &BrowserClient{
		browser: browser,
		timeout: timeout,
		engine:  engine,
	}, nil
}

// Engine returns the engine id to configure sessions with.
func (c *BrowserClient) Engine() string {
	return c.engine
}

// Navigate opens a URL in a new page and waits for it to load.
func (c *BrowserClient) Navigate(url string) (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	c.page = page

	if err := page.Timeout(c.timeout).Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.Timeout(c.timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return page, nil
}

// Page returns the current page, or nil if none open.
func (c *BrowserClient) Page() *rod.Page {
	return c.page
}

// Element waits for selector on the current page.
func (c *BrowserClient) Element(selector string) (*rod.Element, error) {
	if c.page == nil {
		return nil, errors.New("no page open, call Navigate first")
	}
	el, err := c.page.Timeout(c.timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", selector, err)
	}
	// Detach the timeout so later calls on el are not bound by it.
	return el.CancelTimeout(), nil
}

// Eval executes JavaScript and returns the result.
// Requires Navigate() to have been called first.
func (c *BrowserClient) Eval(js string) (interface{}, error) {
	if c.page == nil {
		return nil, errors.New("no page open, call Navigate first")
	}
	result, err := c.page.Eval(js)
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return result.Value, nil
}

// WaitStable waits for the page to be stable (no DOM changes).
func (c *BrowserClient) WaitStable() error {
	if c.page == nil {
		return errors.New("no page open")
	}
	return c.page.WaitStable(c.timeout)
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (c *BrowserClient) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
