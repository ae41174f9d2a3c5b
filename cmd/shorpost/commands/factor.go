package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qaclearn/shorpost/pkg/engine"
	"github.com/qaclearn/shorpost/pkg/outcomes"
	"github.com/qaclearn/shorpost/pkg/runner"
)

// problemFlags are the run parameters a counts file may omit.
type problemFlags struct {
	n    string
	a    string
	bits uint
}

func (f *problemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.n, "n", "", "modulus N (overrides the counts file)")
	cmd.Flags().StringVar(&f.a, "a", "", "base a coprime to N (overrides the counts file)")
	cmd.Flags().UintVar(&f.bits, "bits", 0, "phase register width t (default: from the counts file)")
}

// buildJob resolves run parameters from flags first, then the document,
// and converts the histogram into engine outcomes.
func (f *problemFlags) buildJob(source string, doc *outcomes.Document) (runner.Job, error) {
	job := runner.Job{Source: source}

	var err error
	switch {
	case f.n != "":
		if job.N, err = parseBig("n", f.n); err != nil {
			return job, err
		}
	case doc.N != nil:
		job.N = doc.N
	default:
		return job, fmt.Errorf("%s: modulus unknown, pass --n", source)
	}

	switch {
	case f.a != "":
		if job.A, err = parseBig("a", f.a); err != nil {
			return job, err
		}
	case doc.A != nil:
		job.A = doc.A
	default:
		return job, fmt.Errorf("%s: base unknown, pass --a", source)
	}

	switch {
	case f.bits > 0:
		job.Bits = f.bits
	case doc.PhaseBits > 0:
		job.Bits = doc.PhaseBits
	default:
		if job.Bits, err = doc.Counts.InferBits(); err != nil {
			return job, fmt.Errorf("%s: %w, pass --bits", source, err)
		}
	}

	if job.Outcomes, err = doc.Counts.Outcomes(job.Bits); err != nil {
		return job, fmt.Errorf("%s: %w", source, err)
	}
	return job, nil
}

func newFactorCommand() *cobra.Command {
	var (
		problem        problemFlags
		reportPath     string
		noStore        bool
		maxOutcomes    int
		multipleSearch int
	)

	cmd := &cobra.Command{
		Use:   "factor FILE...",
		Short: "Recover the order and factors of N from measurement counts",
		Long: `Run the post-processing pipeline over one or more counts files.

A counts file is a JSON or YAML histogram of phase-register readings to shot
counts, keyed by bitstring ("01000000") or hex ("0x40"). It may instead be a
document with phase_bits, n, a and counts fields; flags override those.

Outcomes are tried most frequent first until one yields a non-trivial factor
pair. Several files are processed concurrently.`,
		Example: `  # Factor 15 from a bare Qiskit-style histogram
  shorpost factor counts.json --n 15 --a 7

  # Write a text report and skip the history database
  shorpost factor counts.yaml --report report.txt --no-store

  # Machine-readable output
  shorpost factor run1.json run2.json --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := setup(ctx, !noStore)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			if cmd.Flags().Changed("max-outcomes") {
				env.cfg.Engine.MaxOutcomes = maxOutcomes
			}
			if cmd.Flags().Changed("multiple-search") {
				env.cfg.Engine.MultipleSearch = multipleSearch
			}

			jobs := make([]runner.Job, 0, len(args))
			for _, path := range args {
				doc, err := outcomes.Load(path)
				if err != nil {
					return err
				}
				job, err := problem.buildJob(path, doc)
				if err != nil {
					return err
				}
				if verbose {
					s := doc.Counts.Summarize()
					log.Debug().
						Str("file", path).
						Uint64("shots", s.Shots).
						Int("distinct", s.Distinct).
						Str("mode", s.Mode).
						Float64("mode_share", s.ModeShare).
						Float64("entropy_bits", s.EntropyBits).
						Msg("Loaded counts")
				}
				jobs = append(jobs, job)
			}

			log.Info().
				Int("files", len(jobs)).
				Bool("store", env.store != nil).
				Msg("Factoring")

			results, err := env.runner().RunBatch(ctx, jobs)
			if err != nil {
				return err
			}
			return printResults(results, jobs, reportPath)
		},
	}

	problem.register(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "write a plain-text report to this file")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record runs in the history database")
	cmd.Flags().IntVar(&maxOutcomes, "max-outcomes", 0, "try at most this many outcomes (0 = all)")
	cmd.Flags().IntVar(&multipleSearch, "multiple-search", 0, "also try k·q for k up to this value")

	return cmd
}

// printResults prints each result and writes the combined report. It fails
// if any job was rejected.
func printResults(results []*runner.Result, jobs []runner.Job, reportPath string) error {
	failed := 0
	var reports bytes.Buffer

	if jsonOutput {
		type jsonResult struct {
			RunID  string         `json:"run_id"`
			Source string         `json:"source"`
			Report *engine.Report `json:"report,omitempty"`
			Error  string         `json:"error,omitempty"`
		}
		out := make([]jsonResult, len(results))
		for i, res := range results {
			out[i] = jsonResult{RunID: res.RunID, Source: jobs[i].Source, Report: res.Report}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
				failed++
			}
		}
		if err := printJSON(out); err != nil {
			return err
		}
	}

	for i, res := range results {
		if res.Err != nil {
			if !jsonOutput {
				fmt.Printf("✗ %s: %v\n", jobs[i].Source, res.Err)
				failed++
			}
			continue
		}
		if !jsonOutput {
			mark := "✓"
			if res.Report.Status != engine.StatusFactored {
				mark = "✗"
			}
			fmt.Printf("%s %s: %s\n", mark, jobs[i].Source, res.Report.Summary())
			if verbose {
				_ = runner.WriteReport(os.Stdout, res.Report)
			}
		}
		if reportPath != "" {
			fmt.Fprintf(&reports, "== %s (run %s)\n", jobs[i].Source, res.RunID)
			if err := runner.WriteReport(&reports, res.Report); err != nil {
				return err
			}
			reports.WriteString("\n")
		}
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, reports.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if !jsonOutput {
			fmt.Printf("Saved report: %s\n", reportPath)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs rejected", failed, len(results))
	}
	return nil
}

// factorOnce runs a single document through the runner. Used by watch.
func factorOnce(ctx context.Context, r *runner.Runner, problem *problemFlags, source string, doc *outcomes.Document) error {
	job, err := problem.buildJob(source, doc)
	if err != nil {
		return err
	}
	res, err := r.Run(ctx, job)
	if res == nil {
		return err
	}
	return printResults([]*runner.Result{res}, []runner.Job{job}, "")
}
