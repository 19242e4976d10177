// cmd/tdsim/batch.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go-td-core/internal/config"
	"go-td-core/internal/defs"
	"go-td-core/internal/match"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type batchOutcome struct {
	result   match.Result
	timedOut bool
}

// Summary aggregates a batch of matches.
type Summary struct {
	Matches    int
	Wins       int
	Losses     int
	Timeouts   int
	AvgPassed  float64
	AvgElapsed float64
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		matches  int
		parallel int
		maxTime  float64
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Simulate many independent matches concurrently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if matches < 1 || parallel < 1 {
				return fmt.Errorf("--matches and --parallel must be >= 1")
			}
			if maxTime <= 0 {
				maxTime = a.settings.Sim.MaxMatchTime
			}
			outcomes, err := runBatch(cmd.Context(), a.settings, a.cat, a.logger, matches, parallel, maxTime)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summarize(outcomes))
			return nil
		},
	}
	cmd.Flags().IntVar(&matches, "matches", 10, "number of matches")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "matches simulated at once")
	cmd.Flags().Float64Var(&maxTime, "max-time", 0, "simulated seconds per match (default sim.max_match_time)")
	return cmd
}

// runBatch simulates n matches, at most parallel at a time. Each match is
// single-threaded and owns all of its state; only the read-only catalog and
// the logger are shared.
func runBatch(ctx context.Context, settings config.Settings, catalog *defs.Catalog, logger *zap.Logger, n, parallel int, maxTime float64) ([]batchOutcome, error) {
	base := settings.Sim.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	dt := 1 / float64(settings.Sim.TickRate)

	outcomes := make([]batchOutcome, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < n; i++ {
		s := settings
		s.Sim.Seed = base + int64(i)
		i := i // per-iteration copy: go.mod targets go 1.21 (pre-1.22 loop semantics)
		g.Go(func() error {
			m, err := match.New(s, catalog, logger)
			if err != nil {
				return err
			}
			defer m.Close()

			res, err := m.Run(ctx, dt, maxTime)
			if errors.Is(err, match.ErrTimeout) {
				outcomes[i] = batchOutcome{result: res, timedOut: true}
				return nil
			}
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			outcomes[i] = batchOutcome{result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func summarize(outcomes []batchOutcome) Summary {
	s := Summary{Matches: len(outcomes)}
	if len(outcomes) == 0 {
		return s
	}
	passed, elapsed := 0, 0.0
	for _, o := range outcomes {
		switch {
		case o.timedOut:
			s.Timeouts++
		case o.result.Won():
			s.Wins++
		default:
			s.Losses++
		}
		passed += o.result.EnemiesPassed
		elapsed += o.result.Elapsed
	}
	s.AvgPassed = float64(passed) / float64(len(outcomes))
	s.AvgElapsed = elapsed / float64(len(outcomes))
	return s
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "matches   %d\n", s.Matches)
	fmt.Fprintf(w, "wins      %d\n", s.Wins)
	fmt.Fprintf(w, "losses    %d\n", s.Losses)
	fmt.Fprintf(w, "timeouts  %d\n", s.Timeouts)
	fmt.Fprintf(w, "passed    %.2f avg\n", s.AvgPassed)
	fmt.Fprintf(w, "elapsed   %.2fs avg\n", s.AvgElapsed)
}
