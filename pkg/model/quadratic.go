package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// Sense is a constraint comparison direction.
type Sense int

const (
	SenseLE Sense = iota
	SenseGE
	SenseEQ
)

// VarRef identifies the boolean variable for (employee, shift).
type VarRef struct {
	E int `json:"e"`
	S int `json:"s"`
}

// LinTerm is coef * x.
type LinTerm struct {
	Var  VarRef  `json:"var"`
	Coef float64 `json:"coef"`
}

// QuadTerm is coef * x * y.
type QuadTerm struct {
	A    VarRef  `json:"a"`
	B    VarRef  `json:"b"`
	Coef float64 `json:"coef"`
}

// Constraint is a labeled (in)equality over the assignment variables.
// The label lets a solver's per-constraint satisfaction report be mapped
// back to a violation category and subject.
type Constraint struct {
	Label string     `json:"label"`
	Lin   []LinTerm  `json:"lin,omitempty"`
	Quad  []QuadTerm `json:"quad,omitempty"`
	Sense Sense      `json:"sense"`
	RHS   float64    `json:"rhs"`
}

// Objective is a minimization target over the same variables.
type Objective struct {
	Lin    []LinTerm  `json:"lin,omitempty"`
	Quad   []QuadTerm `json:"quad,omitempty"`
	Offset float64    `json:"offset"`
}

// QuadraticModel is the labeled constraint encoding: one boolean variable
// per (employee, shift) pair and one individually labeled constraint per
// rule instance.
type QuadraticModel struct {
	NumEmployees int          `json:"num_employees"`
	NumShifts    int          `json:"num_shifts"`
	Constraints  []Constraint `json:"constraints"`
	Objective    Objective    `json:"objective"`
}

// NumVariables returns the decision-variable count.
func (m *QuadraticModel) NumVariables() int { return m.NumEmployees * m.NumShifts }

// Label renders the "category,employee,shift" constraint label. Employee
// is an ID or empty; shift is a 1-based ordinal or empty.
func Label(cat models.Category, employeeID string, shift int) string {
	day := ""
	if shift > 0 {
		day = strconv.Itoa(shift)
	}
	return fmt.Sprintf("%s,%s,%s", cat, employeeID, day)
}

// ParseLabel splits a constraint label back into its category, employee
// ID and 1-based shift ordinal (0 when absent). Unknown categories are
// rejected so stray solver output cannot leak into the report.
func ParseLabel(label string) (models.Category, string, int, error) {
	parts := strings.SplitN(label, ",", 3)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("malformed constraint label %q", label)
	}
	cat := models.Category(parts[0])
	known := false
	for _, c := range models.Categories {
		if c == cat {
			known = true
			break
		}
	}
	if !known {
		return "", "", 0, fmt.Errorf("unknown constraint category %q", parts[0])
	}
	shift := 0
	if parts[2] != "" {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return "", "", 0, fmt.Errorf("bad shift ordinal in label %q", label)
		}
		shift = n
	}
	return cat, parts[1], shift, nil
}

// BuildQuadratic compiles the problem into the labeled quadratic
// encoding. Input shape errors are rejected before any constraint is
// produced.
func BuildQuadratic(p *models.Problem) (*QuadraticModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := &quadraticBuilder{
		p: p,
		m: &QuadraticModel{
			NumEmployees: p.NumEmployees(),
			NumShifts:    p.NumShifts(),
		},
	}
	emitRules(p, b)
	b.buildObjective()
	return b.m, nil
}

type quadraticBuilder struct {
	p *models.Problem
	m *QuadraticModel
}

func (b *quadraticBuilder) employeeID(e int) string { return b.p.Employees[e].ID }

// rowSum returns the linear terms for employee e's total shift count.
func (b *quadraticBuilder) rowSum(e int) []LinTerm {
	terms := make([]LinTerm, b.m.NumShifts)
	for s := range terms {
		terms[s] = LinTerm{Var: VarRef{E: e, S: s}, Coef: 1}
	}
	return terms
}

func (b *quadraticBuilder) add(c Constraint) {
	b.m.Constraints = append(b.m.Constraints, c)
}

func (b *quadraticBuilder) forbidUnavailable(e, s int) {
	b.add(Constraint{
		Label: Label(models.CatUnavailable, b.employeeID(e), s+1),
		Lin:   []LinTerm{{Var: VarRef{E: e, S: s}, Coef: 1}},
		Sense: SenseEQ,
	})
}

func (b *quadraticBuilder) boundEmployeeCounts(e, lo, hi int) {
	b.add(Constraint{
		Label: Label(models.CatOvertime, b.employeeID(e), 0),
		Lin:   b.rowSum(e),
		Sense: SenseLE,
		RHS:   float64(hi),
	})
	b.add(Constraint{
		Label: Label(models.CatInsufficient, b.employeeID(e), 0),
		Lin:   b.rowSum(e),
		Sense: SenseGE,
		RHS:   float64(lo),
	})
}

func (b *quadraticBuilder) boundShiftStaffing(s, lo, hi int) {
	col := make([]LinTerm, b.m.NumEmployees)
	for e := range col {
		col[e] = LinTerm{Var: VarRef{E: e, S: s}, Coef: 1}
	}
	b.add(Constraint{
		Label: Label(models.CatUnderstaffed, "", s+1),
		Lin:   col,
		Sense: SenseGE,
		RHS:   float64(lo),
	})
	b.add(Constraint{
		Label: Label(models.CatOverstaffed, "", s+1),
		Lin:   col,
		Sense: SenseLE,
		RHS:   float64(hi),
	})
}

// forbidIsolated encodes "not (on, off, on)" over (s-1, s, s+1) as
// -3*x2 + x1*x2 + x2*x3 + x1*x3 <= 0, which is positive exactly on the
// forbidden 101 pattern.
func (b *quadraticBuilder) forbidIsolated(e, s int) {
	x1 := VarRef{E: e, S: s - 1}
	x2 := VarRef{E: e, S: s}
	x3 := VarRef{E: e, S: s + 1}
	b.add(Constraint{
		Label: Label(models.CatIsolated, b.employeeID(e), s+1),
		Lin:   []LinTerm{{Var: x2, Coef: -3}},
		Quad: []QuadTerm{
			{A: x1, B: x2, Coef: 1},
			{A: x2, B: x3, Coef: 1},
			{A: x1, B: x3, Coef: 1},
		},
		Sense: SenseLE,
	})
}

// forbidIsolatedStart encodes "not (off, on)" at the head of the
// schedule: x2 - x1*x2 <= 0.
func (b *quadraticBuilder) forbidIsolatedStart(e int) {
	x1 := VarRef{E: e, S: 0}
	x2 := VarRef{E: e, S: 1}
	b.add(Constraint{
		Label: Label(models.CatIsolated, b.employeeID(e), 1),
		Lin:   []LinTerm{{Var: x2, Coef: 1}},
		Quad:  []QuadTerm{{A: x1, B: x2, Coef: -1}},
		Sense: SenseLE,
	})
}

// forbidIsolatedEnd encodes "not (on, off)" at the tail of the schedule.
func (b *quadraticBuilder) forbidIsolatedEnd(e int) {
	n := b.m.NumShifts
	x1 := VarRef{E: e, S: n - 2}
	x2 := VarRef{E: e, S: n - 1}
	b.add(Constraint{
		Label: Label(models.CatIsolated, b.employeeID(e), n),
		Lin:   []LinTerm{{Var: x1, Coef: 1}},
		Quad:  []QuadTerm{{A: x1, B: x2, Coef: -1}},
		Sense: SenseLE,
	})
}

func (b *quadraticBuilder) requireManagerCoverage(s int, managers []int) {
	terms := make([]LinTerm, 0, len(managers))
	for _, m := range managers {
		terms = append(terms, LinTerm{Var: VarRef{E: m, S: s}, Coef: 1})
	}
	b.add(Constraint{
		Label: Label(models.CatManagerIssue, "", s+1),
		Lin:   terms,
		Sense: SenseGE,
		RHS:   1,
	})
}

func (b *quadraticBuilder) capConsecutive(e, start, maxRun int) {
	terms := make([]LinTerm, 0, maxRun+1)
	for i := 0; i <= maxRun; i++ {
		terms = append(terms, LinTerm{Var: VarRef{E: e, S: start + i}, Coef: 1})
	}
	b.add(Constraint{
		Label: Label(models.CatTooManyConsecutive, b.employeeID(e), start+1),
		Lin:   terms,
		Sense: SenseLE,
		RHS:   float64(maxRun),
	})
}

// pairTrainee encodes trainee <= trainer per shift in quadratic form:
// x_t - x_t*x_T == 0.
func (b *quadraticBuilder) pairTrainee(pair models.TraineePair, s int) {
	xt := VarRef{E: pair.Trainee, S: s}
	xT := VarRef{E: pair.Trainer, S: s}
	b.add(Constraint{
		Label: Label(models.CatTraineeIssue, "", s+1),
		Lin:   []LinTerm{{Var: xt, Coef: 1}},
		Quad:  []QuadTerm{{A: xt, B: xT, Coef: -1}},
		Sense: SenseEQ,
	})
}

// buildObjective assembles the minimization target: -1 per assignment on
// a preferred cell, plus per employee the expanded square of (total
// shifts - target).
func (b *quadraticBuilder) buildObjective() {
	obj := &b.m.Objective
	for e, row := range b.p.Availability {
		for s, avail := range row {
			if avail == models.Preferred {
				obj.Lin = append(obj.Lin, LinTerm{Var: VarRef{E: e, S: s}, Coef: -1})
			}
		}
	}
	// (sum_s x - t)^2 with x boolean: x_i^2 = x_i, so the linear
	// coefficient is 1 - 2t and pairs contribute 2*x_i*x_j.
	for e := range b.p.Employees {
		t := countTarget(b.p, e)
		for s := 0; s < b.m.NumShifts; s++ {
			obj.Lin = append(obj.Lin, LinTerm{Var: VarRef{E: e, S: s}, Coef: 1 - 2*t})
			for s2 := s + 1; s2 < b.m.NumShifts; s2++ {
				obj.Quad = append(obj.Quad, QuadTerm{A: VarRef{E: e, S: s}, B: VarRef{E: e, S: s2}, Coef: 2})
			}
		}
		obj.Offset += t * t
	}
}

func value(a models.Assignment, v VarRef) float64 {
	if a.Rows[v.E][v.S] {
		return 1
	}
	return 0
}

// LHS evaluates the constraint's left-hand side for an assignment.
func (c Constraint) LHS(a models.Assignment) float64 {
	total := 0.0
	for _, t := range c.Lin {
		total += t.Coef * value(a, t.Var)
	}
	for _, t := range c.Quad {
		total += t.Coef * value(a, t.A) * value(a, t.B)
	}
	return total
}

// Satisfied reports whether the assignment meets the constraint.
func (c Constraint) Satisfied(a models.Assignment) bool {
	lhs := c.LHS(a)
	switch c.Sense {
	case SenseLE:
		return lhs <= c.RHS
	case SenseGE:
		return lhs >= c.RHS
	default:
		return lhs == c.RHS
	}
}

// SatisfactionVector evaluates every constraint against a candidate
// assignment, in constraint order. This mirrors what a labeled-constraint
// solver reports remotely and lets any candidate be checked locally.
func (m *QuadraticModel) SatisfactionVector(a models.Assignment) []bool {
	out := make([]bool, len(m.Constraints))
	for i, c := range m.Constraints {
		out[i] = c.Satisfied(a)
	}
	return out
}

// CheckFeasible reports whether every constraint holds.
func (m *QuadraticModel) CheckFeasible(a models.Assignment) bool {
	for _, c := range m.Constraints {
		if !c.Satisfied(a) {
			return false
		}
	}
	return true
}

// UnsatisfiedLabels returns the labels of all violated constraints.
func (m *QuadraticModel) UnsatisfiedLabels(a models.Assignment) []string {
	var out []string
	for _, c := range m.Constraints {
		if !c.Satisfied(a) {
			out = append(out, c.Label)
		}
	}
	return out
}

// Energy evaluates the objective for an assignment.
func (m *QuadraticModel) Energy(a models.Assignment) float64 {
	total := m.Objective.Offset
	for _, t := range m.Objective.Lin {
		total += t.Coef * value(a, t.Var)
	}
	for _, t := range m.Objective.Quad {
		total += t.Coef * value(a, t.A) * value(a, t.B)
	}
	return total
}
