package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded factoring runs",
		Example: `  shorpost history --limit 10
  shorpost history show 3f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := historyStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(ctx, limit, offset)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(runs)
			}

			counts, err := store.CountRunsByStatus(ctx)
			if err != nil {
				return err
			}

			for _, run := range runs {
				fmt.Printf("%s  %s  N=%s a=%s t=%d  %-9s  %s  tried=%d/%d\n",
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.N, run.A, run.PhaseBits,
					run.Status,
					runVerdict(run),
					run.Tried, run.Available,
				)
			}
			fmt.Printf("\n%d factored, %d trivial, %d not found, %d failed\n",
				counts[stores.RunStatusFactored],
				counts[stores.RunStatusTrivial],
				counts[stores.RunStatusNotFound],
				counts[stores.RunStatusFailed],
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryDeleteCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a recorded run and its attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := historyStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			attempts, err := store.ListAttempts(ctx, run.ID)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(struct {
					Run      *stores.Run       `json:"run"`
					Attempts []*stores.Attempt `json:"attempts"`
				}{run, attempts})
			}

			fmt.Printf("run:      %s\n", run.ID)
			fmt.Printf("source:   %s\n", run.Source)
			fmt.Printf("problem:  N=%s a=%s t=%d\n", run.N, run.A, run.PhaseBits)
			fmt.Printf("status:   %s (%s)\n", run.Status, runVerdict(run))
			fmt.Printf("shots:    %d across %d outcomes, %d tried\n", run.Shots, run.Available, run.Tried)
			fmt.Printf("options:  %s\n", run.Options)
			if run.Error != nil {
				fmt.Printf("error:    %s\n", *run.Error)
			}
			for _, at := range attempts {
				order, result := "-", at.Reason
				if at.Order != nil {
					order = *at.Order
				}
				if at.Factors != nil {
					result = "factors " + *at.Factors
				}
				fmt.Printf("  #%d  value=%s  count=%d  phase=%s  order=%s  %s\n",
					at.Seq+1, at.Value, at.Count, at.Phase, order, result)
			}
			return nil
		},
	}
}

func newHistoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID...",
		Short: "Delete recorded runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := historyStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.DeleteRun(ctx, id); err != nil {
					return err
				}
				fmt.Printf("✓ Deleted run %s\n", id)
			}
			return nil
		},
	}
}

func historyStore(cmd *cobra.Command) (*stores.SQLiteStore, error) {
	env, err := setup(cmd.Context(), false)
	if err != nil {
		return nil, err
	}
	defer env.Close(cmd.Context())

	if !env.cfg.Store.Enabled {
		return nil, fmt.Errorf("run history is disabled in the config")
	}
	return openStore(cmd.Context(), env.cfg.Store.Path)
}

func runVerdict(run *stores.Run) string {
	switch {
	case run.Factor1 != nil && run.Factor2 != nil:
		return *run.Factor1 + " x " + *run.Factor2
	case run.Order != nil:
		return "order " + *run.Order
	case run.Error != nil:
		return "rejected"
	default:
		return "-"
	}
}
