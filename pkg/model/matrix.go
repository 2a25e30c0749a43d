package model

import "github.com/dwave-examples/employee-scheduling/pkg/models"

// MatrixModel is the vectorized encoding: the full assignment matrix as a
// single 2-D symbol with row/column bounds, a forbidden mask and sliding
// windows. It carries no constraint labels, so infeasibility must be
// re-derived from the solved matrix by the validator.
type MatrixModel struct {
	NumEmployees int `json:"num_employees"`
	NumShifts    int `json:"num_shifts"`

	// Forbidden marks (employee, shift) cells pinned to zero.
	Forbidden [][]bool `json:"forbidden"`
	// RowMin/RowMax bound each employee's total shift count. Full-time
	// employees have RowMin == RowMax.
	RowMin []int `json:"row_min"`
	RowMax []int `json:"row_max"`
	// ColMin/ColMax bound each shift's headcount; exact forecasts have
	// ColMin == ColMax.
	ColMin []int `json:"col_min"`
	ColMax []int `json:"col_max"`

	// ManagerRows lists roster positions whose column sum must be >= 1
	// on every shift when RequireManager is set.
	RequireManager bool  `json:"require_manager"`
	ManagerRows    []int `json:"manager_rows,omitempty"`

	// NoIsolatedDaysOff applies the 101 sliding window of length 3 to
	// every row, plus the one-sided boundary patterns.
	NoIsolatedDaysOff bool `json:"no_isolated_days_off"`

	// MaxRun caps assignments in every sliding window of MaxRun+1
	// shifts. Zero means the schedule is shorter than any window.
	MaxRun int `json:"max_run"`

	// Pairs holds trainee <= trainer row inequalities.
	Pairs []models.TraineePair `json:"pairs,omitempty"`

	// Objective data: -1 per assignment on a preferred cell plus squared
	// deviation of each row sum from RowTargets.
	Preferred  [][]bool  `json:"preferred"`
	RowTargets []float64 `json:"row_targets"`
}

// BuildMatrix compiles the problem into the vectorized encoding. The same
// rule pass drives it as the quadratic encoding.
func BuildMatrix(p *models.Problem) (*MatrixModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	numEmployees, numShifts := p.NumEmployees(), p.NumShifts()
	m := &MatrixModel{
		NumEmployees: numEmployees,
		NumShifts:    numShifts,
		Forbidden:    boolGrid(numEmployees, numShifts),
		RowMin:       make([]int, numEmployees),
		RowMax:       make([]int, numEmployees),
		ColMin:       make([]int, numShifts),
		ColMax:       make([]int, numShifts),
		Preferred:    boolGrid(numEmployees, numShifts),
		RowTargets:   make([]float64, numEmployees),
	}
	for e, row := range p.Availability {
		for s, avail := range row {
			if avail == models.Preferred {
				m.Preferred[e][s] = true
			}
		}
	}
	for e := range p.Employees {
		m.RowTargets[e] = countTarget(p, e)
	}
	emitRules(p, &matrixBuilder{m: m})
	return m, nil
}

func boolGrid(rows, cols int) [][]bool {
	out := make([][]bool, rows)
	for i := range out {
		out[i] = make([]bool, cols)
	}
	return out
}

// matrixBuilder folds the per-instance rule calls back into the
// vectorized blocks of a MatrixModel.
type matrixBuilder struct {
	m *MatrixModel
}

func (b *matrixBuilder) forbidUnavailable(e, s int) { b.m.Forbidden[e][s] = true }

func (b *matrixBuilder) boundEmployeeCounts(e, lo, hi int) {
	b.m.RowMin[e] = lo
	b.m.RowMax[e] = hi
}

func (b *matrixBuilder) boundShiftStaffing(s, lo, hi int) {
	b.m.ColMin[s] = lo
	b.m.ColMax[s] = hi
}

func (b *matrixBuilder) forbidIsolated(int, int)   { b.m.NoIsolatedDaysOff = true }
func (b *matrixBuilder) forbidIsolatedStart(int)   { b.m.NoIsolatedDaysOff = true }
func (b *matrixBuilder) forbidIsolatedEnd(int)     { b.m.NoIsolatedDaysOff = true }
func (b *matrixBuilder) capConsecutive(_, _, maxRun int) { b.m.MaxRun = maxRun }

func (b *matrixBuilder) requireManagerCoverage(_ int, managers []int) {
	b.m.RequireManager = true
	b.m.ManagerRows = managers
}

func (b *matrixBuilder) pairTrainee(pair models.TraineePair, s int) {
	if s == 0 {
		b.m.Pairs = append(b.m.Pairs, pair)
	}
}

// CountViolations tallies how many vectorized constraint instances a
// candidate assignment breaks. The matrix encoding cannot report this
// per constraint from the solver side, so local search and validation
// both re-derive it here.
func (m *MatrixModel) CountViolations(a models.Assignment) int {
	n := 0
	for e := 0; e < m.NumEmployees; e++ {
		for s := 0; s < m.NumShifts; s++ {
			if m.Forbidden[e][s] && a.Rows[e][s] {
				n++
			}
		}
		total := a.ShiftCount(e)
		if total < m.RowMin[e] || total > m.RowMax[e] {
			n++
		}
	}
	for s := 0; s < m.NumShifts; s++ {
		staffed := a.Staffed(s)
		if staffed < m.ColMin[s] || staffed > m.ColMax[s] {
			n++
		}
	}
	if m.RequireManager {
		for s := 0; s < m.NumShifts; s++ {
			covered := false
			for _, row := range m.ManagerRows {
				if a.Rows[row][s] {
					covered = true
					break
				}
			}
			if !covered {
				n++
			}
		}
	}
	if m.NoIsolatedDaysOff {
		for e := 0; e < m.NumEmployees; e++ {
			row := a.Rows[e]
			for s := 1; s < m.NumShifts-1; s++ {
				if row[s-1] && !row[s] && row[s+1] {
					n++
				}
			}
			if m.NumShifts >= 2 {
				if !row[0] && row[1] {
					n++
				}
				if row[m.NumShifts-2] && !row[m.NumShifts-1] {
					n++
				}
			}
		}
	}
	if m.MaxRun > 0 {
		for e := 0; e < m.NumEmployees; e++ {
			for s := 0; s+m.MaxRun < m.NumShifts; s++ {
				run := 0
				for i := 0; i <= m.MaxRun; i++ {
					if a.Rows[e][s+i] {
						run++
					}
				}
				if run > m.MaxRun {
					n++
				}
			}
		}
	}
	for _, pair := range m.Pairs {
		for s := 0; s < m.NumShifts; s++ {
			if a.Rows[pair.Trainee][s] && !a.Rows[pair.Trainer][s] {
				n++
			}
		}
	}
	return n
}

// Energy evaluates the shared objective for an assignment.
func (m *MatrixModel) Energy(a models.Assignment) float64 {
	total := 0.0
	for e := range m.Preferred {
		for s, preferred := range m.Preferred[e] {
			if preferred && a.Rows[e][s] {
				total--
			}
		}
	}
	for e, target := range m.RowTargets {
		diff := float64(a.ShiftCount(e)) - target
		total += diff * diff
	}
	return total
}
