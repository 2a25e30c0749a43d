// Package jobs orchestrates one solve cycle: build the requested model
// encoding, call the solver, interpret the result and materialize the
// schedule. At most one solve runs at a time; submitting a new one
// supersedes the previous in-flight job.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dwave-examples/employee-scheduling/internal/metrics"
	"github.com/dwave-examples/employee-scheduling/pkg/model"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
	"github.com/dwave-examples/employee-scheduling/pkg/schedule"
	"github.com/dwave-examples/employee-scheduling/pkg/solver"
	"github.com/dwave-examples/employee-scheduling/pkg/validate"
)

// Encoding selects which model variant is built and submitted.
type Encoding string

const (
	// EncodingQuadratic uses the labeled constraint model; the solver
	// reports per-constraint satisfaction.
	EncodingQuadratic Encoding = "cqm"
	// EncodingMatrix uses the vectorized model; violations are
	// re-derived locally from the solved matrix.
	EncodingMatrix Encoding = "matrix"
)

// ParseEncoding validates an encoding name, defaulting to quadratic.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingQuadratic:
		return EncodingQuadratic, nil
	case EncodingMatrix:
		return EncodingMatrix, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", s)
	}
}

// Outcome is the full result of one solve cycle. Infeasibility is not an
// error: a best-effort schedule is always materialized and Violations
// explains what it breaks.
type Outcome struct {
	JobID      string          `json:"job_id"`
	Encoding   Encoding        `json:"encoding"`
	Feasible   bool            `json:"feasible"`
	Violations validate.Report `json:"violations,omitempty"`
	Grid       schedule.Grid   `json:"schedule"`
	Energy     float64         `json:"energy"`
	Elapsed    time.Duration   `json:"elapsed"`
}

// Runner owns the single-active-solve policy.
type Runner struct {
	solver solver.Solver
	log    *zap.SugaredLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	current string
}

// NewRunner builds a Runner on the given solver. A nil logger is
// replaced with a no-op one.
func NewRunner(s solver.Solver, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{solver: s, log: log}
}

// begin registers a new job, canceling any in-flight one.
func (r *Runner) begin(ctx context.Context) (context.Context, string, context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.log.Infow("superseding in-flight solve", "job_id", r.current)
		r.cancel()
	}
	jobCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	r.cancel = cancel
	r.current = id
	return jobCtx, id, cancel
}

func (r *Runner) finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == id {
		r.cancel = nil
		r.current = ""
	}
}

// Cancel aborts the in-flight solve, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.log.Infow("canceling solve", "job_id", r.current)
		r.cancel()
	}
}

// Solve runs one full cycle for the problem snapshot. Input-shape errors
// and solver failures return an error; infeasibility returns a populated
// Outcome with Feasible false.
func (r *Runner) Solve(ctx context.Context, p *models.Problem, encoding Encoding) (*Outcome, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid problem: %w", err)
	}

	jobCtx, id, cancel := r.begin(ctx)
	defer cancel()
	defer r.finish(id)

	start := time.Now()
	log := r.log.With("job_id", id, "encoding", string(encoding))
	log.Infow("solve started",
		"employees", p.NumEmployees(),
		"shifts", p.NumShifts(),
	)

	var (
		assignment models.Assignment
		report     validate.Report
		energy     float64
		err        error
	)
	switch encoding {
	case EncodingMatrix:
		assignment, report, energy, err = r.solveMatrix(jobCtx, p)
	default:
		assignment, report, energy, err = r.solveQuadratic(jobCtx, p)
	}
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
		metrics.SolvesTotal.WithLabelValues(string(encoding), outcome).Inc()
		log.Warnw("solve failed", "error", err, "elapsed", elapsed)
		return nil, err
	}

	feasible := report.Feasible()
	outcome := "feasible"
	if !feasible {
		outcome = "infeasible"
	}
	metrics.SolvesTotal.WithLabelValues(string(encoding), outcome).Inc()
	metrics.SolveDuration.WithLabelValues(string(encoding)).Observe(elapsed.Seconds())
	metrics.LastViolations.Set(float64(report.Count()))
	log.Infow("solve finished", "feasible", feasible, "violations", report.Count(), "elapsed", elapsed)

	return &Outcome{
		JobID:      id,
		Encoding:   encoding,
		Feasible:   feasible,
		Violations: report,
		Grid:       schedule.Materialize(p, assignment),
		Energy:     energy,
		Elapsed:    elapsed,
	}, nil
}

// solveQuadratic takes the labeled path: the solver's satisfaction
// vector maps straight back to violation categories. A solver that
// returns no usable vector falls back to local re-validation.
func (r *Runner) solveQuadratic(ctx context.Context, p *models.Problem) (models.Assignment, validate.Report, float64, error) {
	m, err := model.BuildQuadratic(p)
	if err != nil {
		return models.Assignment{}, nil, 0, err
	}
	metrics.ModelConstraints.Set(float64(len(m.Constraints)))

	res, err := r.solver.SolveQuadratic(ctx, m)
	if err != nil {
		return models.Assignment{}, nil, 0, err
	}
	if err := checkShape(p, res.Assignment); err != nil {
		return models.Assignment{}, nil, 0, &solver.TransportError{Op: "response", Err: err}
	}

	report := validate.FromSatisfaction(p, m, res.Satisfied)
	if report == nil {
		report = validate.CheckAssignment(p, res.Assignment)
	}
	return res.Assignment, report, res.Energy, nil
}

// solveMatrix takes the unlabeled path: every rule is re-checked against
// the raw solved matrix.
func (r *Runner) solveMatrix(ctx context.Context, p *models.Problem) (models.Assignment, validate.Report, float64, error) {
	m, err := model.BuildMatrix(p)
	if err != nil {
		return models.Assignment{}, nil, 0, err
	}

	res, err := r.solver.SolveMatrix(ctx, m)
	if err != nil {
		return models.Assignment{}, nil, 0, err
	}
	if err := checkShape(p, res.Assignment); err != nil {
		return models.Assignment{}, nil, 0, &solver.TransportError{Op: "response", Err: err}
	}

	return res.Assignment, validate.CheckAssignment(p, res.Assignment), res.Energy, nil
}

// checkShape guards against a solver returning a matrix that does not
// match the submitted problem.
func checkShape(p *models.Problem, a models.Assignment) error {
	if len(a.Rows) != p.NumEmployees() {
		return fmt.Errorf("assignment has %d rows, want %d", len(a.Rows), p.NumEmployees())
	}
	for i, row := range a.Rows {
		if len(row) != p.NumShifts() {
			return fmt.Errorf("assignment row %d has %d cells, want %d", i, len(row), p.NumShifts())
		}
	}
	return nil
}
