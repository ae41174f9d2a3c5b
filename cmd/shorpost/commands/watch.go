package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/outcomes"
)

func newWatchCommand() *cobra.Command {
	var (
		problem  problemFlags
		noStore  bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Factor a counts file again every time it changes",
		Long: `Run factor on FILE, then keep watching it and re-run whenever it is
written. Useful next to a sampler that rewrites its counts file after each
job. Prometheus metrics are served on the configured listen address while
watching.`,
		Example: `  shorpost watch counts.json --n 15 --a 7`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			env, err := setup(ctx, !noStore)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			if err := env.tel.StartMetricsServer(ctx); err != nil {
				return err
			}
			if env.cfg.Telemetry.Metrics.Enabled {
				log.Info().
					Str("address", env.cfg.Telemetry.Metrics.ListenAddress).
					Str("path", env.cfg.Telemetry.Metrics.Path).
					Msg("Serving metrics")
			}

			r := env.runner()

			doc, err := outcomes.Load(path)
			if err != nil {
				return err
			}
			if err := factorOnce(ctx, r, &problem, path, doc); err != nil {
				log.Error().Err(err).Str("file", path).Msg("Initial run failed")
			}

			w := outcomes.NewWatcher(path, debounce, log.Logger)
			if err := w.Watch(ctx, func(doc *outcomes.Document) error {
				return factorOnce(ctx, r, &problem, path, doc)
			}); err != nil {
				return err
			}

			<-ctx.Done()
			log.Info().Msg("Stopping watcher")
			return w.Stop()
		},
	}

	problem.register(cmd)
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record runs in the history database")
	cmd.Flags().DurationVar(&debounce, "debounce", outcomes.DefaultDebounce, "wait this long after the last write before re-running")

	return cmd
}
