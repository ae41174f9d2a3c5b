package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/outcomes"
	"github.com/qaclearn/shorpost/pkg/synth"
)

func newSynthCommand() *cobra.Command {
	var (
		n, a  int64
		bits  uint
		shots int
		seed  uint64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic counts file sampled from the ideal distribution",
		Long: `Sample phase-register readings from the ideal order-finding distribution
for small N and write them as a counts document (JSON or YAML, by extension).

The order is computed classically, so this is a test-data generator, not a
simulator. The same seed always produces the same file.`,
		Example: `  shorpost synth --n 15 --a 7 --bits 8 --shots 1024 --out counts.json
  shorpost synth --n 21 --a 2 --bits 9 --seed 7 --out counts.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shots <= 0 {
				return fmt.Errorf("--shots must be positive")
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			dist, err := synth.Ideal(n, a, bits)
			if err != nil {
				return err
			}
			doc := dist.Document(shots, seed)

			log.Info().
				Int64("n", n).
				Int64("a", a).
				Uint("bits", bits).
				Int64("order", dist.Order).
				Int("shots", shots).
				Uint64("seed", seed).
				Msg("Sampled synthetic counts")

			if err := outcomes.Write(out, doc); err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(struct {
					Path    string           `json:"path"`
					Order   int64            `json:"order"`
					Summary outcomes.Summary `json:"summary"`
				}{out, dist.Order, doc.Counts.Summarize()})
			}

			s := doc.Counts.Summarize()
			fmt.Printf("✓ Wrote %s (order %d, %d shots, %d distinct outcomes, mode %s at %.1f%%)\n",
				out, dist.Order, s.Shots, s.Distinct, s.Mode, 100*s.ModeShare)
			return nil
		},
	}

	cmd.Flags().Int64Var(&n, "n", 15, "modulus N")
	cmd.Flags().Int64Var(&a, "a", 7, "base a coprime to N")
	cmd.Flags().UintVar(&bits, "bits", 8, "phase register width t")
	cmd.Flags().IntVar(&shots, "shots", 1024, "number of samples")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.json, .yaml or .yml)")

	return cmd
}
