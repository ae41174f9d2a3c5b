package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qaclearn/shorpost/pkg/engine"
	"github.com/qaclearn/shorpost/pkg/stores"
	"github.com/qaclearn/shorpost/pkg/telemetry"
)

// Job is one run request.
type Job struct {
	// ID is used as the run ID. A UUID is generated when empty.
	ID string

	N        *big.Int
	A        *big.Int
	Bits     uint
	Outcomes []engine.MeasurementOutcome

	// Source names where the outcomes came from (file path, "synthetic").
	Source string
}

// Result is the outcome of one job.
type Result struct {
	RunID    string
	Report   *engine.Report
	Duration time.Duration

	// Err is set when the job was rejected. Report is nil in that case.
	Err error

	// Stored reports whether the run reached the history store.
	Stored bool
}

// Config configures a Runner.
type Config struct {
	Options engine.Options

	// Concurrency bounds RunBatch. Values below 1 mean 1.
	Concurrency int

	// Telemetry defaults to telemetry.NewNop().
	Telemetry *telemetry.Telemetry

	// Store is optional. Runs are not persisted when nil.
	Store stores.Store
}

// Runner executes jobs against the engine.
type Runner struct {
	opts        engine.Options
	concurrency int
	tel         *telemetry.Telemetry
	logger      *telemetry.Logger
	store       stores.Store
}

// New creates a Runner.
func New(cfg Config) *Runner {
	tel := cfg.Telemetry
	if tel == nil {
		tel = telemetry.NewNop()
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		opts:        cfg.Options,
		concurrency: concurrency,
		tel:         tel,
		logger:      tel.Logger.NewComponentLogger("runner"),
		store:       cfg.Store,
	}
}

// Run executes a single job. Configuration errors are returned as-is so
// engine.IsConfiguration works on them; the rejected run is still recorded.
// A failure to persist is logged and reflected in Result.Stored only.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := job.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	n, a := bigString(job.N), bigString(job.A)

	logger := r.logger.WithRunID(runID).WithProblem(n, a, job.Bits)
	if job.Source != "" {
		logger = logger.WithField("source", job.Source)
	}
	ctx, span := r.tel.Tracer.StartRunSpan(ctx, runID, n, a, job.Bits)
	defer span.End()

	r.tel.Metrics.RecordRunStarted()
	timer := telemetry.NewTimer()
	started := time.Now().UTC()

	report, err := engine.RunWithOptions(job.Outcomes, job.Bits, job.A, job.N, r.opts)
	res := &Result{RunID: runID, Report: report, Duration: timer.Duration()}

	if err != nil {
		res.Err = err
		r.tel.Metrics.RecordConfigurationError()
		telemetry.RecordError(span, err)
		logger.WithError(err).Error("Run rejected")
		res.Stored = r.persist(ctx, logger, failedRun(runID, job, started, err, r.opts), nil)
		return res, err
	}

	for _, at := range report.Attempts {
		order := ""
		if at.Order != nil {
			order = at.Order.String()
		}
		r.tel.Metrics.RecordAttempt(string(at.Reason))
		telemetry.AddAttemptEvent(span, at.Outcome.Value.String(), at.Outcome.Count, order, attemptResult(at))
		logger.WithFields(map[string]interface{}{
			"value":  at.Outcome.Value.String(),
			"count":  at.Outcome.Count,
			"order":  order,
			"result": attemptResult(at),
		}).Debug("Outcome examined")
	}

	r.tel.Metrics.RecordRunCompleted(string(report.Status), report.Tried, res.Duration)
	span.SetAttributes(
		telemetry.AttrRunStatus.String(string(report.Status)),
		telemetry.AttrOutcomesTried.Int(report.Tried),
	)
	telemetry.RecordSuccess(span)

	logger.WithFields(map[string]interface{}{
		"status":      report.Status,
		"tried":       report.Tried,
		"available":   report.Available,
		"duration_ms": res.Duration.Milliseconds(),
	}).Info(report.Summary())

	run, attempts := runRecord(runID, job, started, report, r.opts)
	res.Stored = r.persist(ctx, logger, run, attempts)
	return res, nil
}

// RunBatch runs jobs concurrently and returns results in job order. A
// rejected job does not stop the others; its Result carries the error. The
// returned error is non-nil only when ctx is cancelled.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.Run(gctx, job)
			if res == nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

func (r *Runner) persist(ctx context.Context, logger *telemetry.Logger, run *stores.Run, attempts []*stores.Attempt) bool {
	if r.store == nil {
		return false
	}
	// Still record the run if the caller's context is gone by now.
	ctx = context.WithoutCancel(ctx)
	if err := r.store.SaveRun(ctx, run, attempts); err != nil {
		r.tel.Metrics.RecordStoreError("save_run")
		logger.WithError(err).Warn("Failed to store run")
		return false
	}
	return true
}

func attemptResult(at engine.Attempt) string {
	if at.Factors != nil {
		return "factored"
	}
	return string(at.Reason)
}

func runRecord(runID string, job Job, started time.Time, report *engine.Report, opts engine.Options) (*stores.Run, []*stores.Attempt) {
	completed := time.Now().UTC()
	run := &stores.Run{
		ID:          runID,
		N:           report.N.String(),
		A:           report.A.String(),
		PhaseBits:   report.PhaseBits,
		Status:      stores.RunStatus(report.Status),
		Tried:       report.Tried,
		Available:   report.Available,
		Shots:       report.Shots,
		Source:      job.Source,
		Options:     encodeOptions(opts),
		StartedAt:   started,
		CompletedAt: &completed,
	}
	if report.Order != nil {
		run.Order = strPtr(report.Order.String())
	}
	if report.Factors != nil {
		run.Factor1 = strPtr(report.Factors.F1.String())
		run.Factor2 = strPtr(report.Factors.F2.String())
	}

	attempts := make([]*stores.Attempt, 0, len(report.Attempts))
	for i, at := range report.Attempts {
		rec := &stores.Attempt{
			RunID:  runID,
			Seq:    i,
			Value:  at.Outcome.Value.String(),
			Count:  at.Outcome.Count,
			Phase:  at.Phase.String(),
			Reason: string(at.Reason),
		}
		if at.Order != nil {
			rec.Order = strPtr(at.Order.String())
		}
		if at.Factors != nil {
			rec.Factors = strPtr(at.Factors.String())
		}
		attempts = append(attempts, rec)
	}
	return run, attempts
}

func failedRun(runID string, job Job, started time.Time, err error, opts engine.Options) *stores.Run {
	completed := time.Now().UTC()
	var shots uint64
	for _, o := range job.Outcomes {
		shots += o.Count
	}
	return &stores.Run{
		ID:          runID,
		N:           bigString(job.N),
		A:           bigString(job.A),
		PhaseBits:   job.Bits,
		Status:      stores.RunStatusFailed,
		Available:   len(job.Outcomes),
		Shots:       shots,
		Source:      job.Source,
		Options:     encodeOptions(opts),
		Error:       strPtr(err.Error()),
		StartedAt:   started,
		CompletedAt: &completed,
	}
}

func encodeOptions(opts engine.Options) string {
	data, err := json.Marshal(opts)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func strPtr(s string) *string { return &s }
