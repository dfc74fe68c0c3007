// Command ls-lightcurve computes occultation light curves of spherical
// harmonic maps and explores them in a terminal UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-lightcurve/internal/config"
	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/logging"
	"github.com/litescript/ls-lightcurve/internal/state"
	"github.com/litescript/ls-lightcurve/internal/ui"
	"github.com/litescript/ls-lightcurve/internal/version"
)

// CLI flags for headless mode
var (
	summaryMode bool
	eventsMode  bool
	jsonPath    string
	csvPath     string
	savePath    string
	showVersion bool
)

func main() {
	scenarioFlags := config.Bind(flag.CommandLine)
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.BoolVar(&eventsMode, "events", false, "Print ingress and egress contacts")
	flag.StringVar(&jsonPath, "json", "", "Export the curve as JSON (use - for stdout)")
	flag.StringVar(&csvPath, "csv", "", "Export the curve as CSV (use - for stdout)")
	flag.StringVar(&savePath, "save-config", "", "Write the effective scenario to a YAML file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ls-lightcurve v%s\n", version.Version)
		return
	}

	cfg, err := config.Load(scenarioFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	level := logging.ParseLevel(cfg.Logging.Level)
	var logger *logging.Logger
	if cfg.Logging.LogFile != "" {
		logger = logging.NewWithFile(level, logging.DefaultFileConfig(cfg.Logging.LogFile))
	} else {
		logger = logging.New(level)
	}
	defer func() { _ = logger.Sync() }()

	if savePath != "" {
		if err := cfg.SaveTo(savePath); err != nil {
			logger.Error("Saving scenario failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Scenario written to %s", savePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stateMgr := state.NewManager(state.DefaultConfig())
	runner := config.NewRunner(cfg)

	// Headless mode: no TUI, also when stdout is not a terminal.
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := summaryMode || eventsMode || jsonPath != "" || csvPath != ""
	if headless || !isTTY {
		if !headless {
			summaryMode = true
		}
		if err := runHeadless(runner, stateMgr, logger); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	model := ui.New(stateMgr, runner, runner.Params())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	logger.SetOutput(nil)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless computes the scenario once and writes the requested outputs.
func runHeadless(runner *config.Runner, stateMgr *state.Manager, logger *logging.Logger) error {
	params := runner.Params()
	logger.Debug("Computing light curve: radius %.4f, impact %.4f, ld %v", params.Radius, params.Impact, params.LD)

	start := time.Now()
	curve, err := runner.Compute(params)
	took := time.Since(start)
	stateMgr.Update(curve, params, took, err)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	logger.Debug("Computed %d samples in %v", len(curve.Flux), took)

	snap := stateMgr.Snapshot()
	if jsonPath != "" {
		export := curve.Export(snap.LastCompute)
		if err := writeTo(jsonPath, export.WriteJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}
	if csvPath != "" {
		if err := writeTo(csvPath, curve.WriteCSV); err != nil {
			return fmt.Errorf("write CSV: %w", err)
		}
	}
	if summaryMode {
		lightcurve.WriteSummaryTable(os.Stdout, curve, snap.LastCompute, 60)
	}
	if eventsMode {
		if summaryMode {
			fmt.Println()
		}
		writeEvents(os.Stdout, snap.Events)
	}
	return nil
}

// writeTo opens path, or stdout for "-", and hands it to write.
func writeTo(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeEvents prints the contact log.
func writeEvents(w io.Writer, events []state.Event) {
	fmt.Fprintf(w, "Contacts (%d)\n", len(events))
	for _, e := range events {
		fmt.Fprintf(w, "  %-8s %-8s t=%.5f flux=%.8f\n", e.Type, e.Kind, e.Time, e.Flux)
	}
}
