package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/engine"
)

func newOrderCommand() *cobra.Command {
	var problem problemFlags

	cmd := &cobra.Command{
		Use:   "order VALUE",
		Short: "Recover the order of a modulo N from a single outcome",
		Long: `Expand VALUE/2^t into continued-fraction convergents and report the
smallest denominator r with a^r ≡ 1 (mod N). When an order is found the
factor extraction step is run on it as well.`,
		Example: `  shorpost order 64 --n 15 --a 7 --bits 8
  shorpost order 0xc0 --n 15 --a 7 --bits 8 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseBig("n", problem.n)
			if err != nil {
				return err
			}
			a, err := parseBig("a", problem.a)
			if err != nil {
				return err
			}
			value, err := parseBig("value", args[0])
			if err != nil {
				return err
			}
			if problem.bits == 0 {
				return fmt.Errorf("--bits is required")
			}

			log.Debug().
				Str("n", n.String()).
				Str("a", a.String()).
				Uint("bits", problem.bits).
				Str("value", value.String()).
				Msg("Recovering order")

			p, err := engine.NewProblem(n, a, problem.bits)
			if err != nil {
				return err
			}
			res, err := p.RecoverOrder(engine.MeasurementOutcome{Value: value, Count: 1})
			if err != nil {
				return err
			}

			var factors *engine.FactorResult
			if res.Found {
				fr := p.RecoverFactors(res.Order)
				factors = &fr
			}

			if jsonOutput {
				return printJSON(struct {
					Order   engine.OrderResult   `json:"order"`
					Factors *engine.FactorResult `json:"factors,omitempty"`
				}{res, factors})
			}

			convergents := make([]string, len(res.Convergents))
			for i, c := range res.Convergents {
				convergents[i] = c.String()
			}
			fmt.Printf("phase:       %s = %.6f\n", res.Phase, res.Phase.Float())
			fmt.Printf("convergents: %s\n", strings.Join(convergents, ", "))
			if !res.Found {
				fmt.Printf("order:       not found (%s)\n", res.Reason)
				return nil
			}
			fmt.Printf("order:       %s\n", res.Order)
			if factors.Trivial {
				fmt.Printf("factors:     none (%s)\n", factors.Reason)
			} else {
				fmt.Printf("factors:     %s\n", factors.Pair)
			}
			return nil
		},
	}

	problem.register(cmd)
	return cmd
}

func newExpandCommand() *cobra.Command {
	var (
		bits   uint
		maxDen string
	)

	cmd := &cobra.Command{
		Use:   "expand VALUE",
		Short: "Print the continued-fraction convergents of VALUE/2^t",
		Long: `Print the convergents p/q of VALUE/2^t in order, stopping before the first
denominator above --max-den (default 2^t, i.e. the full expansion).`,
		Example: `  shorpost expand 85 --bits 8 --max-den 14`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bits == 0 {
				return fmt.Errorf("--bits is required")
			}
			value, err := parseBig("value", args[0])
			if err != nil {
				return err
			}

			phase := engine.EstimatePhase(engine.MeasurementOutcome{Value: value, Count: 1}, bits)
			bound := phase.Rat().Denom()
			if maxDen != "" {
				if bound, err = parseBig("max-den", maxDen); err != nil {
					return err
				}
			}

			convergents, err := engine.ContinuedFractionExpand(phase, bound)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(struct {
					Phase       engine.PhaseEstimate `json:"phase"`
					Convergents []engine.Convergent  `json:"convergents"`
				}{phase, convergents})
			}

			fmt.Printf("%s = %.9f\n", phase, phase.Float())
			for i, c := range convergents {
				fmt.Printf("  %d: %s\n", i, c)
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&bits, "bits", 0, "phase register width t")
	cmd.Flags().StringVar(&maxDen, "max-den", "", "largest denominator to keep")
	return cmd
}
