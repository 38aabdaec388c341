// Shift+click scenario runner.
//
// Starts the click page server, launches Chrome through Rod and runs click
// scenarios against the page, reporting PASS or FAIL for each.
//
// Usage:
//
//	go run ./cmd/shiftclick
//	go run ./cmd/shiftclick -scenario pkg/scenario/testdata/scenarios.yaml -log-level debug
//	go run ./cmd/shiftclick -run bare-click -headless=false
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thesyncim/shiftclick/cmd/click-page/server"
	"github.com/thesyncim/shiftclick/pkg/actions"
	"github.com/thesyncim/shiftclick/pkg/actions/rodinput"
	"github.com/thesyncim/shiftclick/pkg/actions/testutil"
	"github.com/thesyncim/shiftclick/pkg/logging"
	"github.com/thesyncim/shiftclick/pkg/scenario"
)

func main() {
	engine := flag.String("engine", actions.EngineChrome, "Engine id used to pick the bare-click policy")
	scenarioFile := flag.String("scenario", "", "YAML scenario file (default: built-in scenarios)")
	filter := flag.String("run", "", "Only run scenarios whose name contains this string")
	headless := flag.Bool("headless", true, "Run Chrome headless")
	bin := flag.String("bin", "", "Chrome binary (default: found or downloaded by Rod)")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-scenario timeout")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	logger, err := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging flags: %v\n", err)
		os.Exit(2)
	}

	scenarios, err := loadScenarios(*scenarioFile, *filter)
	if err != nil {
		logger.Error("failed to load scenarios", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	browserCfg := testutil.DefaultBrowserConfig()
	browserCfg.Headless = *headless
	browserCfg.Bin = *bin
	browserCfg.Engine = *engine
	browserCfg.Timeout = *timeout

	reports, err := runAll(ctx, logger, scenarios, browserCfg, *timeout)
	if err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}

	if printSummary(reports) {
		os.Exit(0)
	}
	os.Exit(1)
}

func loadScenarios(path, filter string) ([]scenario.Scenario, error) {
	var all []scenario.Scenario
	if path == "" {
		all = scenario.BuiltinScenarios()
	} else {
		loaded, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		all = loaded
	}

	var out []scenario.Scenario
	for _, s := range all {
		if filter == "" || strings.Contains(s.Name, filter) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenarios match %q", filter)
	}
	return out, nil
}

func runAll(ctx context.Context, logger *slog.Logger, scenarios []scenario.Scenario, browserCfg testutil.BrowserConfig, timeout time.Duration) ([]scenario.Report, error) {
	srv, err := server.NewServer(server.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	if _, err := srv.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", "error", err)
		}
	}()
	logger.Info("click page ready", "url", srv.URL())

	client, err := testutil.NewBrowserClient(browserCfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("browser close error", "error", err)
		}
	}()

	reports := make([]scenario.Report, 0, len(scenarios))
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep := runOne(ctx, logger, client, srv.URL(), s, timeout)
		reports = append(reports, rep)
	}
	return reports, nil
}

// runOne runs s on a fresh page so no input state leaks between scenarios.
func runOne(ctx context.Context, logger *slog.Logger, client *testutil.BrowserClient, url string, s scenario.Scenario, timeout time.Duration) scenario.Report {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := logger.With("scenario", s.Name)
	failed := func(err error) scenario.Report {
		log.Error("scenario failed", "error", err)
		return scenario.Report{Name: s.Name, Err: err}
	}

	page, err := client.Navigate(url)
	if err != nil {
		return failed(err)
	}
	defer page.Close()

	cfg, err := s.SessionConfig(client.Engine())
	if err != nil {
		return failed(err)
	}
	sess, err := actions.NewSession(rodinput.New(page), cfg, actions.WithLogger(log))
	if err != nil {
		return failed(err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			log.Warn("failed to release input state", "error", err)
		}
	}()

	env := testutil.NewPageEnvironment(page, scenario.ResultSelector)
	rep, err := scenario.Run(ctx, s, sess, env)
	if err != nil {
		var mismatch *actions.PolicyMismatchError
		var dispatch *actions.DispatchError
		switch {
		case errors.As(err, &mismatch):
			log.Error("classification mismatch",
				"expected", mismatch.Expected.Classification,
				"observed", mismatch.Observed.Classification,
				"policy", mismatch.Policy.String())
		case errors.As(err, &dispatch):
			log.Error("dispatch failed", "tick", dispatch.Tick, "device", dispatch.Device.String(), "error", dispatch.Err)
		default:
			log.Error("scenario failed", "error", err)
		}
		return rep
	}
	log.Info("scenario passed", "policy", rep.Policy.String(), "elapsed", rep.Elapsed)
	return rep
}

func printSummary(reports []scenario.Report) bool {
	pass := true
	fmt.Printf("\n")
	fmt.Printf("Shift+Click Scenarios\n")
	fmt.Printf("=====================\n")
	for _, r := range reports {
		status := checkMark(r.Passed())
		if !r.Passed() {
			pass = false
		}
		fmt.Printf("  %-24s %-11s %s\n", r.Name, r.Policy.String(), status)
		for _, obs := range r.Observed {
			fmt.Printf("    observed: %s\n", obs)
		}
		if r.Err != nil {
			fmt.Printf("    error:    %v\n", r.Err)
		}
	}
	fmt.Printf("\n")
	fmt.Printf("Status: %s\n", checkMark(pass))
	return pass
}

func checkMark(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
