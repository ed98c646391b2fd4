package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/compiler"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/eventbus"
	"git.home.luguber.info/inful/sitegen/internal/journal"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/outcome"
	"git.home.luguber.info/inful/sitegen/internal/relay"
	"git.home.luguber.info/inful/sitegen/internal/report"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/source"
	"git.home.luguber.info/inful/sitegen/internal/timing"
	prom "github.com/prometheus/client_golang/prometheus"
)

// CompileCmd implements the 'compile' command.
type CompileCmd struct {
	Force    bool `short:"f" help:"Recompile items even when their output is up to date"`
	All      bool `short:"a" hidden:"" help:"Deprecated alias for --force"`
	NoPages  bool `short:"P" name:"no-pages" help:"Do not compile pages"`
	NoAssets bool `short:"A" name:"no-assets" help:"Do not compile assets"`
	Watch    bool `short:"w" help:"Stay running and recompile when source files change"`

	Identifiers []string `arg:"" optional:"" name:"identifier" help:"Identifiers of items to compile (default: everything)"`
}

func (c *CompileCmd) Run(_ *Global, root *CLI) error {
	adapter := errors.NewCLIErrorAdapter(root.Verbose, nil)

	cfg, err := config.Load(root.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		return err
	}

	if c.All {
		slog.Warn("--all is deprecated and will be removed; use --force")
		c.Force = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, shutdownMetrics := c.setupMetrics(cfg)
	defer shutdownMetrics()

	err = c.runOnce(ctx, cfg, rec, adapter)
	if err != nil || !c.Watch {
		return err
	}
	return c.watch(ctx, cfg, rec, adapter)
}

// setupMetrics returns the recorder and a shutdown func. Prometheus is
// only exposed in watch mode with metrics.listen configured; one-shot runs
// use the noop recorder.
func (c *CompileCmd) setupMetrics(cfg *config.Config) (metrics.Recorder, func()) {
	if !c.Watch || cfg.Metrics == nil || cfg.Metrics.Listen == "" {
		return metrics.NoopRecorder{}, func() {}
	}
	reg := prom.NewRegistry()
	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: metrics.Handler(reg)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics endpoint failed", logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", "listen", cfg.Metrics.Listen)
	return metrics.NewPrometheusRecorder(reg), func() { _ = srv.Shutdown(context.Background()) }
}

// runOnce performs one full compilation run: load, compile, report.
func (c *CompileCmd) runOnce(ctx context.Context, cfg *config.Config, rec metrics.Recorder, adapter *errors.CLIErrorAdapter) error {
	runID := observability.NewRunID()
	ctx = observability.WithRunID(ctx, runID)
	started := time.Now()

	var src source.Source = source.NewFilesystem(cfg.ContentDir)
	if cfg.Git != nil && cfg.Git.URL != "" {
		src = source.NewGit(cfg.Git.URL, cfg.Git.Branch, cfg.ContentDir)
	}
	items, err := src.Load(ctx)
	if err != nil {
		if !errors.IsInterrupt(err) {
			fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		}
		return err
	}

	bus := eventbus.NewBus()
	if cfg.Journal != nil && cfg.Journal.Path != "" {
		if j, jerr := journal.Open(cfg.Journal.Path); jerr != nil {
			slog.Warn("Event journal disabled", logfields.Error(jerr))
		} else {
			defer j.Close()
			bus = eventbus.NewBusWithJournal(j, runID)
		}
	}
	if cfg.Events != nil && cfg.Events.NATSURL != "" {
		if r, rerr := relay.Connect(ctx, cfg.Events.NATSURL, cfg.Events.Subject, runID); rerr != nil {
			slog.Warn("Event relay unavailable", logfields.Error(rerr))
		} else {
			defer r.Close()
			r.Attach(bus)
		}
	}

	agg := timing.NewAggregator()
	agg.Attach(bus)

	engine := compiler.New(cfg, bus, items)
	if err := engine.Prepare(); err != nil {
		report.Diagnostic(os.Stderr, err, engine.Stack())
		adapter.LogError(err)
		return err
	}

	targets, err := c.resolveTargets(items)
	if err != nil {
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		return err
	}

	observability.InfoContext(ctx, "Compiling site",
		logfields.RunID(runID),
		slog.Int("items", len(targets)),
		slog.Bool("force", c.Force))

	if err := engine.Run(ctx, targets, c.Force); err != nil {
		if errors.IsInterrupt(err) {
			observability.InfoContext(ctx, "Compilation interrupted")
			rec.IncRunResult("canceled")
			return err
		}
		rec.IncRunResult("failed")
		report.Diagnostic(os.Stderr, err, engine.Stack())
		adapter.LogError(err)
		return err
	}

	if depth := agg.StackDepth(); depth != 0 {
		err := errors.Defect("filter timing stack depth %d at end of run", depth)
		rec.IncRunResult("failed")
		report.Diagnostic(os.Stderr, err, engine.Stack())
		return err
	}

	elapsed := time.Since(started)
	reps := repsOf(targets)
	report.Summary(os.Stdout, reps, elapsed)
	report.Profiling(os.Stdout, agg, reps)
	c.record(rec, agg, reps, elapsed)
	return nil
}

// resolveTargets maps positional identifiers to items and applies the
// page/asset exclusion flags. An unknown identifier fails the run.
func (c *CompileCmd) resolveTargets(items []*site.Item) ([]*site.Item, error) {
	byID := make(map[string]*site.Item, len(items))
	for _, item := range items {
		byID[item.Identifier] = item
	}

	var selected []*site.Item
	if len(c.Identifiers) == 0 {
		selected = items
	} else {
		for _, id := range c.Identifiers {
			item, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("unknown item identifier: %s", id)
			}
			selected = append(selected, item)
		}
	}

	// Always non-nil: an empty target set must compile nothing, not fall
	// back to the engine's "all items" default.
	targets := make([]*site.Item, 0, len(selected))
	for _, item := range selected {
		if c.NoPages && item.Kind == site.KindPage {
			continue
		}
		if c.NoAssets && item.Kind == site.KindAsset {
			continue
		}
		targets = append(targets, item)
	}
	return targets, nil
}

func repsOf(items []*site.Item) []*site.Rep {
	var reps []*site.Rep
	for _, item := range items {
		reps = append(reps, item.Reps...)
	}
	return reps
}

func (c *CompileCmd) record(rec metrics.Recorder, agg *timing.Aggregator, reps []*site.Rep, elapsed time.Duration) {
	rec.IncRunResult("success")
	rec.ObserveCompilationDuration(elapsed)
	for _, rep := range reps {
		rec.IncOutcome(string(outcome.Classify(rep)))
		if d, ok := agg.ElapsedFor(rep.Key()); ok {
			rec.ObserveRepDuration(d)
		}
	}
	for _, name := range agg.FilterNames() {
		for _, s := range agg.SamplesFor(name) {
			rec.ObserveFilterDuration(name, s)
		}
	}
}
