// Package validate turns solver output into the categorized violation
// report. Two paths produce the same contract: parsing the per-constraint
// satisfaction labels a quadratic solver returns, and independently
// re-checking every rule against a raw solved matrix when no labels
// exist.
package validate

import (
	"strings"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// Report maps a violation category to its rendered messages, in
// detection order. An empty report means the schedule is feasible.
type Report map[models.Category][]string

// Feasible reports whether no violations were recorded.
func (r Report) Feasible() bool {
	for _, msgs := range r {
		if len(msgs) > 0 {
			return false
		}
	}
	return true
}

// Count returns the total number of recorded violations.
func (r Report) Count() int {
	n := 0
	for _, msgs := range r {
		n += len(msgs)
	}
	return n
}

func (r Report) add(cat models.Category, employee, day string) {
	r[cat] = append(r[cat], renderMessage(cat, employee, day))
}

// Headings are the presentation titles for each category.
var Headings = map[models.Category]string{
	models.CatUnavailable:        "Employees scheduled when unavailable",
	models.CatOvertime:           "Employees with scheduled overtime",
	models.CatInsufficient:       "Employees with not enough scheduled time",
	models.CatUnderstaffed:       "Understaffed shifts",
	models.CatOverstaffed:        "Overstaffed shifts",
	models.CatIsolated:           "Isolated shifts",
	models.CatManagerIssue:       "Shifts with no manager",
	models.CatTooManyConsecutive: "Employees with too many consecutive shifts",
	models.CatTraineeIssue:       "Shifts with trainee scheduling issues",
}

// templates render one violation; {employee} and {day} are the only
// placeholders.
var templates = map[models.Category]string{
	models.CatUnavailable:        "{employee} on {day}",
	models.CatOvertime:           "{employee}",
	models.CatInsufficient:       "{employee}",
	models.CatUnderstaffed:       "{day} is understaffed",
	models.CatOverstaffed:        "{day} is overstaffed",
	models.CatIsolated:           "{day} is an isolated day off for {employee}",
	models.CatManagerIssue:       "No manager scheduled on {day}",
	models.CatTooManyConsecutive: "{employee} starting with {day}",
	models.CatTraineeIssue:       "Trainee scheduling issue on {day}",
}

func renderMessage(cat models.Category, employee, day string) string {
	msg := templates[cat]
	msg = strings.ReplaceAll(msg, "{employee}", employee)
	msg = strings.ReplaceAll(msg, "{day}", day)
	return msg
}

// dayLabel translates a 0-based shift position into its weekday and
// calendar label. Raw indexes never reach a rendered message.
func dayLabel(p *models.Problem, s int) string {
	return p.Shifts[s].Label
}

// CheckAssignment re-derives every rule violation from a raw solved
// matrix. This is the no-labels path: the detection mechanics differ
// completely from the labeled path but the categories and message shapes
// are identical. An all-zero matrix is a legitimate input and simply
// fails the staffing and minimum-count rules.
func CheckAssignment(p *models.Problem, a models.Assignment) Report {
	r := Report{}
	checkAvailability(p, a, r)
	checkShiftsPerEmployee(p, a, r)
	checkEmployeesPerShift(p, a, r)
	checkMaxConsecutive(p, a, r)
	checkTraineeShifts(p, a, r)
	if p.Params.RequiresManager {
		checkRequiresManager(p, a, r)
	}
	if !p.Params.AllowIsolatedDaysOff {
		checkIsolatedDaysOff(p, a, r)
	}
	return r
}

func checkAvailability(p *models.Problem, a models.Assignment, r Report) {
	for e, emp := range p.Employees {
		for s := range p.Shifts {
			if a.Rows[e][s] && p.Availability[e][s] == models.Unavailable {
				r.add(models.CatUnavailable, emp.Name, dayLabel(p, s))
			}
		}
	}
}

func checkShiftsPerEmployee(p *models.Problem, a models.Assignment, r Report) {
	for e, emp := range p.Employees {
		lo, hi := p.Params.MinShifts, p.Params.MaxShifts
		if emp.IsFullTime {
			lo, hi = p.Params.FullTimeShifts, p.Params.FullTimeShifts
		}
		n := a.ShiftCount(e)
		if n < lo {
			r.add(models.CatInsufficient, emp.Name, "")
		} else if n > hi {
			r.add(models.CatOvertime, emp.Name, "")
		}
	}
}

func checkEmployeesPerShift(p *models.Problem, a models.Assignment, r Report) {
	for s := range p.Shifts {
		lo, hi := p.Staffing.Bounds(s)
		n := a.Staffed(s)
		if n < lo {
			r.add(models.CatUnderstaffed, "", dayLabel(p, s))
		} else if n > hi {
			r.add(models.CatOverstaffed, "", dayLabel(p, s))
		}
	}
}

func checkRequiresManager(p *models.Problem, a models.Assignment, r Report) {
	managers := p.ManagerIndexes()
	for s := range p.Shifts {
		covered := false
		for _, m := range managers {
			if a.Rows[m][s] {
				covered = true
				break
			}
		}
		if !covered {
			r.add(models.CatManagerIssue, "", dayLabel(p, s))
		}
	}
}

func checkIsolatedDaysOff(p *models.Problem, a models.Assignment, r Report) {
	numShifts := p.NumShifts()
	for e, emp := range p.Employees {
		row := a.Rows[e]
		for s := 1; s < numShifts-1; s++ {
			if row[s-1] && !row[s] && row[s+1] {
				r.add(models.CatIsolated, emp.Name, dayLabel(p, s))
			}
		}
		if numShifts < 2 {
			continue
		}
		// Boundary patterns: a lone day off at either end of the
		// schedule counts as isolated.
		if !row[0] && row[1] {
			r.add(models.CatIsolated, emp.Name, dayLabel(p, 0))
		}
		if row[numShifts-2] && !row[numShifts-1] {
			r.add(models.CatIsolated, emp.Name, dayLabel(p, numShifts-1))
		}
	}
}

func checkMaxConsecutive(p *models.Problem, a models.Assignment, r Report) {
	maxRun := p.Params.MaxConsecutiveShifts
	numShifts := p.NumShifts()
	for e, emp := range p.Employees {
		for s := 0; s+maxRun < numShifts; s++ {
			total := 0
			for i := 0; i <= maxRun; i++ {
				if a.Rows[e][s+i] {
					total++
				}
			}
			if total > maxRun {
				r.add(models.CatTooManyConsecutive, emp.Name, dayLabel(p, s))
			}
		}
	}
}

func checkTraineeShifts(p *models.Problem, a models.Assignment, r Report) {
	for _, pair := range p.TraineePairs() {
		for s := range p.Shifts {
			if a.Rows[pair.Trainee][s] && !a.Rows[pair.Trainer][s] {
				r.add(models.CatTraineeIssue, "", dayLabel(p, s))
			}
		}
	}
}
