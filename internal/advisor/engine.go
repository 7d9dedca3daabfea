package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/synapsespectre/internal/synapse"
	"golang.org/x/sync/errgroup"
)

// Engine runs a fixed list of checks and routes their findings into a
// Collector in declared order, whatever order the checks complete in.
type Engine struct {
	checks      []Check
	concurrency int
	logger      *slog.Logger
}

// NewEngine creates an engine. concurrency <= 1 runs checks sequentially.
// A nil logger discards progress logs.
func NewEngine(checks []Check, concurrency int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{checks: checks, concurrency: concurrency, logger: logger}
}

// Checks returns the registered checks in run order.
func (e *Engine) Checks() []Check {
	return e.checks
}

// Run evaluates every check exactly once. On any error nothing is recorded:
// a partial run has no verdict.
func (e *Engine) Run(ctx context.Context, cfg *synapse.Config, db Reader, c *Collector) error {
	results := make([][]Finding, len(e.checks))

	if e.concurrency <= 1 {
		for i := range e.checks {
			fs, err := e.runOne(ctx, cfg, db, i)
			if err != nil {
				return err
			}
			results[i] = fs
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i := range e.checks {
			g.Go(func() error {
				fs, err := e.runOne(gctx, cfg, db, i)
				if err != nil {
					return err
				}
				results[i] = fs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	// Config-only checks never touch ctx, so an interrupt can go unnoticed above.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	for _, fs := range results {
		for _, f := range fs {
			c.Record(f)
		}
	}
	return nil
}

func (e *Engine) runOne(ctx context.Context, cfg *synapse.Config, db Reader, i int) ([]Finding, error) {
	check := e.checks[i]
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	start := time.Now()
	fs, err := check.Run(ctx, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", check.Name, err)
	}
	e.logger.Debug("check completed", "check", check.Name, "findings", len(fs), "duration", time.Since(start))
	return fs, nil
}
