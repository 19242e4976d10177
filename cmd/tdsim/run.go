// cmd/tdsim/run.go
package main

import (
	"errors"
	"fmt"
	"io"

	"go-td-core/internal/match"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		realtime bool
		tps      int
		maxTime  float64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one match and print the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tps <= 0 {
				tps = a.settings.Sim.TickRate
			}
			if maxTime <= 0 {
				maxTime = a.settings.Sim.MaxMatchTime
			}

			m, err := match.New(a.settings, a.cat, a.logger)
			if err != nil {
				return err
			}
			defer m.Close()

			var limiter *rate.Limiter
			if realtime {
				// один тик на такт, без накопления
				limiter = rate.NewLimiter(rate.Limit(tps), 1)
			}
			res, err := m.RunPaced(cmd.Context(), 1/float64(tps), maxTime, limiter)
			printResult(cmd.OutOrStdout(), res)
			if errors.Is(err, match.ErrTimeout) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks at wall-clock speed")
	cmd.Flags().IntVar(&tps, "tps", 0, "ticks per second (default sim.tick_rate)")
	cmd.Flags().Float64Var(&maxTime, "max-time", 0, "simulated seconds before giving up (default sim.max_match_time)")
	return cmd
}

func printResult(w io.Writer, r match.Result) {
	fmt.Fprintf(w, "match %s: %s\n", r.ID, r.Phase)
	fmt.Fprintf(w, "  waves      %d/%d\n", r.WavesCompleted, r.TotalWaves)
	fmt.Fprintf(w, "  spawned    %d\n", r.Spawned)
	fmt.Fprintf(w, "  destroyed  %d\n", r.Destroyed)
	fmt.Fprintf(w, "  passed     %d\n", r.EnemiesPassed)
	fmt.Fprintf(w, "  money      %d\n", r.Money)
	fmt.Fprintf(w, "  elapsed    %.2fs\n", r.Elapsed)
	fmt.Fprintf(w, "  seed       %d\n", r.Seed)
}
