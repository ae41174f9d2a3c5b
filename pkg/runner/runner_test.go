package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/qaclearn/shorpost/pkg/engine"
	"github.com/qaclearn/shorpost/pkg/stores"
	"github.com/qaclearn/shorpost/pkg/telemetry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// batch15 is the N=15, a=7, t=8 histogram where the third most frequent
// outcome is the first to factor.
func batch15() []engine.MeasurementOutcome {
	return []engine.MeasurementOutcome{
		engine.NewOutcome(192, 100),
		engine.NewOutcome(128, 400),
		engine.NewOutcome(64, 300),
		engine.NewOutcome(0, 500),
	}
}

func job15(id string) Job {
	return Job{
		ID:       id,
		N:        big.NewInt(15),
		A:        big.NewInt(7),
		Bits:     8,
		Outcomes: batch15(),
		Source:   "test",
	}
}

func newTestTelemetry(t *testing.T) (*telemetry.Telemetry, *tracetest.SpanRecorder) {
	t.Helper()

	cfg := telemetry.DefaultConfig()
	metrics, err := telemetry.NewMetrics(cfg.Metrics)
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return &telemetry.Telemetry{
		Logger:  telemetry.NewNopLogger(),
		Tracer:  telemetry.NewTracerWithProvider(provider, "runner-test"),
		Metrics: metrics,
		Config:  cfg,
	}, recorder
}

func newTestStore(t *testing.T) *stores.SQLiteStore {
	t.Helper()

	store, err := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func scrape(t *testing.T, tel *telemetry.Telemetry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	tel.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestRunFactorsAndStores(t *testing.T) {
	tel, recorder := newTestTelemetry(t)
	store := newTestStore(t)
	r := New(Config{Telemetry: tel, Store: store})

	res, err := r.Run(context.Background(), job15("run-15"))
	require.NoError(t, err)
	require.NotNil(t, res.Report)

	assert.Equal(t, "run-15", res.RunID)
	assert.True(t, res.Stored)
	assert.Equal(t, engine.StatusFactored, res.Report.Status)
	assert.Equal(t, "3 x 5", res.Report.Factors.String())
	assert.Equal(t, 3, res.Report.Tried)

	run, err := store.GetRun(context.Background(), "run-15")
	require.NoError(t, err)
	assert.Equal(t, stores.RunStatusFactored, run.Status)
	require.NotNil(t, run.Order)
	assert.Equal(t, "4", *run.Order)
	assert.Equal(t, "test", run.Source)
	assert.Equal(t, uint64(1300), run.Shots)

	attempts, err := store.ListAttempts(context.Background(), "run-15")
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	assert.Equal(t, "0", attempts[0].Value)
	assert.Equal(t, "no_valid_convergent", attempts[0].Reason)
	require.NotNil(t, attempts[2].Factors)
	assert.Equal(t, "3 x 5", *attempts[2].Factors)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "orderfinding.run", spans[0].Name())
	assert.Len(t, spans[0].Events(), 3)

	body := scrape(t, tel)
	assert.Contains(t, body, `shorpost_runs_total{status="factored"} 1`)
	assert.Contains(t, body, `shorpost_attempts_total{result="no_valid_convergent"} 2`)
	assert.Contains(t, body, `shorpost_attempts_total{result="factored"} 1`)
	assert.Contains(t, body, `shorpost_active_runs 0`)
}

func TestRunLogsSource(t *testing.T) {
	tel, _ := newTestTelemetry(t)
	var buf bytes.Buffer
	tel.Logger = telemetry.NewLoggerWithWriter(&buf, telemetry.LoggingConfig{Level: "info", Format: "json"})
	r := New(Config{Telemetry: tel})

	job := job15("run-src")
	job.Source = "counts/run.json"
	_, err := r.Run(context.Background(), job)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Contains(t, line, `"source":"counts/run.json"`)
		assert.Contains(t, line, `"run_id":"run-src"`)
	}
}

func TestRunGeneratesID(t *testing.T) {
	r := New(Config{})
	job := job15("")

	first, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), job)
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.False(t, first.Stored)
}

func TestRunConfigurationError(t *testing.T) {
	tel, recorder := newTestTelemetry(t)
	store := newTestStore(t)
	r := New(Config{Telemetry: tel, Store: store})

	job := job15("bad-base")
	job.A = big.NewInt(5)

	res, err := r.Run(context.Background(), job)
	require.Error(t, err)
	assert.True(t, engine.IsConfiguration(err))
	require.NotNil(t, res)
	assert.Nil(t, res.Report)
	assert.Equal(t, err, res.Err)
	assert.True(t, res.Stored)

	run, err := store.GetRun(context.Background(), "bad-base")
	require.NoError(t, err)
	assert.Equal(t, stores.RunStatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "coprime")

	assert.Contains(t, scrape(t, tel), "shorpost_configuration_errors_total 1")
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "Error", recorder.Ended()[0].Status().Code.String())
}

func TestRunCancelledContext(t *testing.T) {
	r := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx, job15("cancelled"))
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct {
	stores.Store
}

func (failingStore) SaveRun(context.Context, *stores.Run, []*stores.Attempt) error {
	return errors.New("disk full")
}

func TestRunStoreFailureKeepsReport(t *testing.T) {
	tel, _ := newTestTelemetry(t)
	r := New(Config{Telemetry: tel, Store: failingStore{}})

	res, err := r.Run(context.Background(), job15("unsaved"))
	require.NoError(t, err)
	assert.False(t, res.Stored)
	assert.Equal(t, engine.StatusFactored, res.Report.Status)
	assert.Contains(t, scrape(t, tel), `shorpost_store_errors_total{operation="save_run"} 1`)
}

func TestRunBatchPreservesOrder(t *testing.T) {
	tel, _ := newTestTelemetry(t)
	store := newTestStore(t)
	r := New(Config{Telemetry: tel, Store: store, Concurrency: 3})

	var jobs []Job
	for i := 0; i < 8; i++ {
		job := job15(fmt.Sprintf("batch-%d", i))
		if i%3 == 2 {
			job.A = big.NewInt(3)
		}
		jobs = append(jobs, job)
	}

	results, err := r.RunBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		require.NotNil(t, res, "result %d", i)
		assert.Equal(t, jobs[i].ID, res.RunID)
		if i%3 == 2 {
			assert.True(t, engine.IsConfiguration(res.Err))
			continue
		}
		require.NoError(t, res.Err)
		assert.Equal(t, engine.StatusFactored, res.Report.Status)
	}

	runs, err := store.ListRuns(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Len(t, runs, len(jobs))

	counts, err := store.CountRunsByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts[stores.RunStatusFailed])
	assert.Equal(t, 6, counts[stores.RunStatusFactored])
}

func TestRunBatchCancelled(t *testing.T) {
	r := New(Config{Concurrency: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RunBatch(ctx, []Job{job15("a"), job15("b")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteReport(t *testing.T) {
	report, err := engine.Run(batch15(), 8, big.NewInt(7), big.NewInt(15))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "N=15  a=7  phase_bits=8  shots=1300  distinct=4")
	assert.Contains(t, out, "status=factored  order=4  factors=3 x 5  tried=3/4  PASS=true")
	assert.Contains(t, out, "#1  value=0  count=500  phase=0/2^8 (0.000000)  order=-  no_valid_convergent")
	assert.Contains(t, out, "#3  value=64  count=300  phase=64/2^8 (0.250000)  order=4  factors 3 x 5")
	assert.Contains(t, out, "failures: no_valid_convergent=2")
	assert.Equal(t, 3, strings.Count(out, "\n#"))
}
