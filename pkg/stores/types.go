package stores

import (
	"context"
	"database/sql"
	"time"
)

// RunStatus mirrors the engine's aggregate status, plus failed for runs
// rejected before any outcome was examined.
type RunStatus string

const (
	RunStatusFactored RunStatus = "factored"
	RunStatusTrivial  RunStatus = "trivial"
	RunStatusNotFound RunStatus = "not_found"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one post-processing run over a batch of measurement outcomes.
// Integers are stored as decimal strings since N may exceed 64 bits.
type Run struct {
	ID          string     `json:"id"`
	N           string     `json:"n"`
	A           string     `json:"a"`
	PhaseBits   uint       `json:"phase_bits"`
	Status      RunStatus  `json:"status"`
	Order       *string    `json:"order,omitempty"`
	Factor1     *string    `json:"factor_1,omitempty"`
	Factor2     *string    `json:"factor_2,omitempty"`
	Tried       int        `json:"tried"`
	Available   int        `json:"available"`
	Shots       uint64     `json:"shots"`
	Source      string     `json:"source"`
	Options     string     `json:"options"` // JSON blob
	Error       *string    `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Attempt records how one outcome fared within a run.
type Attempt struct {
	RunID   string  `json:"run_id"`
	Seq     int     `json:"seq"`
	Value   string  `json:"value"`
	Count   uint64  `json:"count"`
	Phase   string  `json:"phase"`
	Order   *string `json:"order,omitempty"`
	Factors *string `json:"factors,omitempty"`
	Reason  string  `json:"reason"`
}

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Run operations
	CreateRun(ctx context.Context, run *Run) error
	SaveRun(ctx context.Context, run *Run, attempts []*Attempt) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	CountRunsByStatus(ctx context.Context) (map[RunStatus]int, error)
	DeleteRun(ctx context.Context, id string) error

	// Attempt operations
	ListAttempts(ctx context.Context, runID string) ([]*Attempt, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
