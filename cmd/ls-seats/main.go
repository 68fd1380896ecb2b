// Command ls-seats is a terminal seat map for picking and booking venue seats.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-seats/internal/config"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/report"
	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/state"
	"github.com/litescript/ls-seats/internal/storage"
	"github.com/litescript/ls-seats/internal/ui"
	"github.com/litescript/ls-seats/internal/venue"
	"github.com/litescript/ls-seats/internal/version"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("ls-seats %s\n", version.Version)
		return
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize components
	backend, err := openStore(cfg, logger.Named("storage"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()
	logger.Debug("using %s store at %s", cfg.Store, cfg.StorePath)

	stateMgr := state.NewManager(state.DefaultConfig())
	sel := selection.NewStore(backend, selection.WithLogger(logger.Named("selection")))
	unsubscribe := sel.Subscribe(recordSelection(stateMgr, logger.Named("selection")))
	defer unsubscribe()

	fetcher := venue.NewFetcher(venue.WithSource(cfg.VenueSource))

	// Headless mode: no TUI
	if cfg.Headless() {
		if err := runHeadless(ctx, cfg, fetcher, stateMgr, sel, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: the seat map needs a terminal; use --summary or --export-layout for scripted use")
		os.Exit(1)
	}

	// Create TUI model
	model := ui.New(ui.Deps{
		State:     stateMgr,
		Fetcher:   fetcher,
		Selection: sel,
		Prefs:     backend,
		Tiers:     venue.DefaultTiers,
		Logger:    logger.Named("ui"),
	})

	// Create Bubble Tea program
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	logger.Info("session ended with %d seats selected", sel.Len())
}

// newLogger logs to --log-file when given. Otherwise headless runs log to
// stderr and the TUI discards logs, since it owns the terminal.
func newLogger(cfg config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		return logging.NewFile(level, cfg.LogFile)
	}
	if cfg.Headless() {
		return logging.New(level), nil
	}
	return logging.Discard(), nil
}

func openStore(cfg config.Config, logger *logging.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return storage.OpenSQLiteStore(cfg.StorePath)
	default:
		fs, err := storage.OpenFileStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		if aside := fs.Recovered(); aside != "" {
			logger.Warn("store file %s was corrupt, moved to %s", cfg.StorePath, aside)
		}
		return fs, nil
	}
}

// recordSelection mirrors selection changes into the session event log.
func recordSelection(stateMgr *state.Manager, logger *logging.Logger) func(selection.Change) {
	return func(c selection.Change) {
		stateMgr.RecordSelection(c)
		logger.Debug("%s %s (%d/%d)", c.Kind, c.SeatID, c.Count, c.Max)
	}
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(ctx context.Context, cfg config.Config, fetcher *venue.Fetcher, stateMgr *state.Manager, sel *selection.Store, out io.Writer) error {
	if cfg.ClearSelection {
		n := sel.Len()
		sel.Clear()
		fmt.Fprintf(out, "Cleared %d selected seats\n", n)
		if !cfg.Summary && cfg.ExportLayout == "" && cfg.ExportSVG == "" {
			return nil
		}
	}

	result := fetcher.Fetch(ctx)
	stateMgr.Update(result)
	if result.Error != nil {
		return result.Error
	}
	snap := stateMgr.Snapshot()
	now := time.Now()

	// Export JSON if requested
	if cfg.ExportLayout != "" {
		export := report.ExportLayout(snap.Layout, snap.Source, sel.IDs(), now)
		if err := writeOutput(cfg.ExportLayout, out, export.WriteJSON); err != nil {
			return fmt.Errorf("export layout: %w", err)
		}
	}

	if cfg.ExportSVG != "" {
		isTTY := cfg.ExportSVG == "-" && term.IsTerminal(int(os.Stdout.Fd()))
		if isTTY {
			return errors.New("refusing to write SVG to a terminal; pass a file path")
		}
		svg, err := report.NewSVGRenderer(report.SVGOptions{
			Selected: sel.IDs(),
			Tiers:    venue.DefaultTiers,
		}).Render(snap.Layout)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := writeOutput(cfg.ExportSVG, out, func(w io.Writer) error {
			_, err := io.WriteString(w, svg)
			return err
		}); err != nil {
			return fmt.Errorf("export svg: %w", err)
		}
	}

	// Print summary table if requested
	if cfg.Summary {
		report.WriteSummary(out, snap.Layout, sel.Ordered(snap.Layout), venue.DefaultTiers, snap.LastFetch)
	}
	return nil
}

// writeOutput sends write to stdout for "-" and to a new file otherwise.
func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
