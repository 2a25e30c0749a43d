// Package model compiles a scheduling problem into one of two
// constraint-model encodings: a labeled quadratic model whose solver can
// report per-constraint satisfaction, and a vectorized matrix model that
// cannot and must be re-validated locally. Both encodings are produced
// from the single rule pass in this file so they cannot drift apart.
package model

import "github.com/dwave-examples/employee-scheduling/pkg/models"

// constraintSink receives the rule set. Each backend interprets the same
// calls into its own constraint representation.
type constraintSink interface {
	// forbidUnavailable pins assignment (e, s) to zero.
	forbidUnavailable(e, s int)
	// boundEmployeeCounts bounds employee e's total shifts to [lo, hi].
	boundEmployeeCounts(e, lo, hi int)
	// boundShiftStaffing bounds shift s's headcount to [lo, hi].
	boundShiftStaffing(s, lo, hi int)
	// forbidIsolated forbids the worked/off/worked pattern over shifts
	// (s-1, s, s+1); s is the interior off day.
	forbidIsolated(e, s int)
	// forbidIsolatedStart forbids off-then-on at the first two shifts.
	forbidIsolatedStart(e int)
	// forbidIsolatedEnd forbids on-then-off at the last two shifts.
	forbidIsolatedEnd(e int)
	// requireManagerCoverage requires at least one of managers on shift s.
	requireManagerCoverage(s int, managers []int)
	// capConsecutive caps the window of maxRun+1 shifts starting at start
	// to at most maxRun assignments for employee e.
	capConsecutive(e, start, maxRun int)
	// pairTrainee forbids the trainee working shift s without the trainer.
	pairTrainee(pair models.TraineePair, s int)
}

// countBounds returns the shift-count band for employee e: the part-time
// [min, max] band, or the exact full-time count.
func countBounds(p *models.Problem, e int) (int, int) {
	if p.Employees[e].IsFullTime {
		return p.Params.FullTimeShifts, p.Params.FullTimeShifts
	}
	return p.Params.MinShifts, p.Params.MaxShifts
}

// countTarget is the objective target for employee e's total shifts: the
// band midpoint for part-time, the fixed count for full-time. The squared
// deviation from it gives the solver a gradient toward a usable
// best-effort answer when no feasible one exists.
func countTarget(p *models.Problem, e int) float64 {
	lo, hi := countBounds(p, e)
	return float64(lo+hi) / 2
}

// emitRules walks the problem once and streams every rule into the sink.
func emitRules(p *models.Problem, sink constraintSink) {
	numShifts := p.NumShifts()

	// Rule: never schedule an unavailable employee.
	for e, row := range p.Availability {
		for s, avail := range row {
			if avail == models.Unavailable {
				sink.forbidUnavailable(e, s)
			}
		}
	}

	// Rule: per-employee shift-count bounds.
	for e := range p.Employees {
		lo, hi := countBounds(p, e)
		sink.boundEmployeeCounts(e, lo, hi)
	}

	// Rule: staffing per shift, band or exact forecast.
	for s := 0; s < numShifts; s++ {
		lo, hi := p.Staffing.Bounds(s)
		sink.boundShiftStaffing(s, lo, hi)
	}

	// Rule: days off must be consecutive.
	if !p.Params.AllowIsolatedDaysOff {
		for e := range p.Employees {
			for s := 1; s < numShifts-1; s++ {
				sink.forbidIsolated(e, s)
			}
			if numShifts >= 2 {
				sink.forbidIsolatedStart(e)
				sink.forbidIsolatedEnd(e)
			}
		}
	}

	// Rule: a manager on every shift.
	if p.Params.RequiresManager {
		managers := p.ManagerIndexes()
		for s := 0; s < numShifts; s++ {
			sink.requireManagerCoverage(s, managers)
		}
	}

	// Rule: no more than MaxConsecutiveShifts in a row. Each window of
	// maxRun+1 shifts may hold at most maxRun assignments.
	maxRun := p.Params.MaxConsecutiveShifts
	for e := range p.Employees {
		for s := 0; s+maxRun < numShifts; s++ {
			sink.capConsecutive(e, s, maxRun)
		}
	}

	// Rule: trainees only work alongside their trainer.
	for _, pair := range p.TraineePairs() {
		for s := 0; s < numShifts; s++ {
			sink.pairTrainee(pair, s)
		}
	}
}
