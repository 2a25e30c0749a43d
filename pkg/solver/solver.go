// Package solver defines the boundary to the external optimization
// service and a local best-effort fallback. The core never assumes a
// transport; anything satisfying Solver can back a solve.
package solver

import (
	"context"
	"fmt"

	"github.com/dwave-examples/employee-scheduling/pkg/model"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// Result is a solver's answer: the best assignment it found plus, for
// the labeled quadratic encoding only, a per-constraint satisfaction
// vector aligned with the model's constraint order. Satisfied is nil on
// the matrix path, which forces local re-validation.
type Result struct {
	Assignment models.Assignment `json:"assignment"`
	Satisfied  []bool            `json:"satisfied,omitempty"`
	Energy     float64           `json:"energy"`
}

// Solver is the injected capability the core calls. Both methods block
// until the solver answers or ctx is done; a canceled context aborts the
// call without touching the input model.
type Solver interface {
	SolveQuadratic(ctx context.Context, m *model.QuadraticModel) (*Result, error)
	SolveMatrix(ctx context.Context, m *model.MatrixModel) (*Result, error)
}

// TransportError marks a solver-side failure: timeout, connection loss,
// HTTP error status or an unreadable response. It is a distinct failure
// kind and never conflated with an infeasible result.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
