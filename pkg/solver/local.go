package solver

import (
	"context"
	"math/rand"
	"time"

	"github.com/dwave-examples/employee-scheduling/pkg/model"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// Local is the fallback solver used when no remote service is
// configured: randomized restarts with greedy bit-flip improvement,
// keeping the best candidate found before the time limit. Strictly
// best-effort; the violation count dominates the score so it converges
// toward feasibility first and schedule quality second.
type Local struct {
	TimeLimit time.Duration
	Restarts  int
	Seed      int64
}

// NewLocal builds a local solver with the given time budget. Seed fixes
// the random stream for reproducible runs; zero seeds from the clock.
func NewLocal(timeLimit time.Duration, seed int64) *Local {
	if timeLimit <= 0 {
		timeLimit = 5 * time.Second
	}
	return &Local{TimeLimit: timeLimit, Restarts: 20, Seed: seed}
}

// score orders candidates: fewer violations always wins, the objective
// breaks ties.
type score struct {
	violations int
	energy     float64
}

func (s score) better(than score) bool {
	if s.violations != than.violations {
		return s.violations < than.violations
	}
	return s.energy < than.energy
}

// SolveQuadratic searches the labeled encoding and reports the
// satisfaction vector of the best candidate.
func (l *Local) SolveQuadratic(ctx context.Context, m *model.QuadraticModel) (*Result, error) {
	scorer := func(a models.Assignment) score {
		return score{violations: len(m.UnsatisfiedLabels(a)), energy: m.Energy(a)}
	}
	best, err := l.search(ctx, m.NumEmployees, m.NumShifts, scorer)
	if err != nil {
		return nil, err
	}
	return &Result{
		Assignment: best,
		Satisfied:  m.SatisfactionVector(best),
		Energy:     m.Energy(best),
	}, nil
}

// SolveMatrix searches the vectorized encoding. No satisfaction vector
// is produced; the caller re-validates the matrix.
func (l *Local) SolveMatrix(ctx context.Context, m *model.MatrixModel) (*Result, error) {
	scorer := func(a models.Assignment) score {
		return score{violations: m.CountViolations(a), energy: m.Energy(a)}
	}
	best, err := l.search(ctx, m.NumEmployees, m.NumShifts, scorer)
	if err != nil {
		return nil, err
	}
	return &Result{Assignment: best, Energy: m.Energy(best)}, nil
}

// search runs restart passes until the deadline, each pass greedily
// flipping single cells while the score improves. The all-zero matrix is
// always one of the starting points, so the result never scores worse
// than assigning nobody.
func (l *Local) search(ctx context.Context, numEmployees, numShifts int, scorer func(models.Assignment) score) (models.Assignment, error) {
	seed := l.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	deadline := time.Now().Add(l.TimeLimit)
	best := models.NewAssignment(numEmployees, numShifts)
	bestScore := scorer(best)

	for pass := 0; pass < l.Restarts; pass++ {
		if err := ctx.Err(); err != nil {
			return models.Assignment{}, err
		}
		if pass > 0 && time.Now().After(deadline) {
			break
		}

		candidate := best.Clone()
		if pass > 0 {
			// Later passes restart from a perturbed copy of the best
			// so far rather than from scratch.
			for i := 0; i < numEmployees*numShifts/4+1; i++ {
				e, s := rng.Intn(numEmployees), rng.Intn(numShifts)
				candidate.Rows[e][s] = !candidate.Rows[e][s]
			}
		}
		current := l.climb(ctx, candidate, scorer, deadline, rng)
		if sc := scorer(current); sc.better(bestScore) {
			best, bestScore = current, sc
		}
		if bestScore.violations == 0 && pass > 0 {
			break
		}
	}
	return best, nil
}

// climb flips single cells greedily until no flip improves the score or
// the deadline passes.
func (l *Local) climb(ctx context.Context, a models.Assignment, scorer func(models.Assignment) score, deadline time.Time, rng *rand.Rand) models.Assignment {
	numEmployees := len(a.Rows)
	numShifts := a.NumShifts()
	cells := make([][2]int, 0, numEmployees*numShifts)
	for e := 0; e < numEmployees; e++ {
		for s := 0; s < numShifts; s++ {
			cells = append(cells, [2]int{e, s})
		}
	}

	current := scorer(a)
	improved := true
	for improved && ctx.Err() == nil && time.Now().Before(deadline) {
		improved = false
		rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
		for _, cell := range cells {
			e, s := cell[0], cell[1]
			a.Rows[e][s] = !a.Rows[e][s]
			if next := scorer(a); next.better(current) {
				current = next
				improved = true
			} else {
				a.Rows[e][s] = !a.Rows[e][s]
			}
		}
	}
	return a
}
