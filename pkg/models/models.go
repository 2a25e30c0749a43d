package models

import (
	"fmt"
	"time"
)

// Availability describes one employee's state for a single shift.
type Availability int

const (
	Unavailable Availability = 0
	Available   Availability = 1
	Preferred   Availability = 2
)

// Employee represents a person on the roster. Role information is carried
// on explicit fields; display names are never parsed for meaning.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsManager  bool   `json:"is_manager"`
	IsTrainee  bool   `json:"is_trainee"`
	IsFullTime bool   `json:"is_full_time"`
	// TrainerID references the employee this trainee must be paired with.
	// Required when IsTrainee is set, empty otherwise.
	TrainerID string `json:"trainer_id,omitempty"`
}

// Shift is one position in the schedule. Shifts are contiguous and
// totally ordered; Index is 1-based.
type Shift struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// MakeShifts builds the ordered shift sequence 1..n labeled with weekday
// and day-of-month starting from start.
func MakeShifts(n int, start time.Time) []Shift {
	shifts := make([]Shift, n)
	for i := range shifts {
		shifts[i] = Shift{
			Index: i + 1,
			Label: start.AddDate(0, 0, i).Format("Mon 2"),
		}
	}
	return shifts
}

// DefaultStartDate mirrors the demo convention: the schedule begins two
// Sundays after the upcoming Sunday.
func DefaultStartDate(now time.Time) time.Time {
	daysToSunday := (7 - int(now.Weekday())) % 7
	return now.AddDate(0, 0, daysToSunday+14)
}

// StaffingTarget sets the required headcount per shift. When Forecast is
// non-empty it takes precedence and pins each shift to an exact count;
// otherwise every shift must fall within [ShiftMin, ShiftMax].
type StaffingTarget struct {
	ShiftMin int   `json:"shift_min"`
	ShiftMax int   `json:"shift_max"`
	Forecast []int `json:"forecast,omitempty"`
}

// Bounds returns the (min, max) headcount for shift s (0-based).
func (t StaffingTarget) Bounds(s int) (int, int) {
	if len(t.Forecast) > 0 {
		return t.Forecast[s], t.Forecast[s]
	}
	return t.ShiftMin, t.ShiftMax
}

// PolicyParams are the tunable scheduling rules for a single solve.
type PolicyParams struct {
	MinShifts            int  `json:"min_shifts"`
	MaxShifts            int  `json:"max_shifts"`
	FullTimeShifts       int  `json:"full_time_shifts"`
	MaxConsecutiveShifts int  `json:"max_consecutive_shifts"`
	AllowIsolatedDaysOff bool `json:"allow_isolated_days_off"`
	RequiresManager      bool `json:"requires_manager"`
}

// Problem is the immutable input snapshot for one solve request: the
// roster, the shift sequence, the availability grid (one row per
// employee, one cell per shift) and the policy knobs.
type Problem struct {
	Employees    []Employee       `json:"employees"`
	Shifts       []Shift          `json:"shifts"`
	Availability [][]Availability `json:"availability"`
	Params       PolicyParams     `json:"params"`
	Staffing     StaffingTarget   `json:"staffing"`
}

// NumEmployees returns the roster size.
func (p *Problem) NumEmployees() int { return len(p.Employees) }

// NumShifts returns the schedule length.
func (p *Problem) NumShifts() int { return len(p.Shifts) }

// ManagerIndexes returns roster positions of all managers.
func (p *Problem) ManagerIndexes() []int {
	var out []int
	for i, e := range p.Employees {
		if e.IsManager {
			out = append(out, i)
		}
	}
	return out
}

// TraineePair links a trainee's roster position to its trainer's.
type TraineePair struct {
	Trainee int
	Trainer int
}

// TraineePairs resolves every trainee to its trainer's roster position.
// Validate guarantees resolution succeeds; unresolved pairs are skipped.
func (p *Problem) TraineePairs() []TraineePair {
	byID := make(map[string]int, len(p.Employees))
	for i, e := range p.Employees {
		byID[e.ID] = i
	}
	var out []TraineePair
	for i, e := range p.Employees {
		if !e.IsTrainee {
			continue
		}
		if t, ok := byID[e.TrainerID]; ok {
			out = append(out, TraineePair{Trainee: i, Trainer: t})
		}
	}
	return out
}

// Validate rejects malformed input before any model is built. It checks
// shape only; feasibility is the solver's problem.
func (p *Problem) Validate() error {
	if len(p.Employees) == 0 {
		return fmt.Errorf("roster is empty")
	}
	if len(p.Shifts) == 0 {
		return fmt.Errorf("no shifts to schedule")
	}
	if len(p.Availability) != len(p.Employees) {
		return fmt.Errorf("availability has %d rows for %d employees", len(p.Availability), len(p.Employees))
	}

	byID := make(map[string]*Employee, len(p.Employees))
	for i := range p.Employees {
		e := &p.Employees[i]
		if e.ID == "" {
			return fmt.Errorf("employee %q has no id", e.Name)
		}
		if _, dup := byID[e.ID]; dup {
			return fmt.Errorf("duplicate employee id %q", e.ID)
		}
		byID[e.ID] = e
	}

	for i, row := range p.Availability {
		if len(row) != len(p.Shifts) {
			return fmt.Errorf("availability row for %s has %d entries, want %d", p.Employees[i].ID, len(row), len(p.Shifts))
		}
		for s, a := range row {
			if a < Unavailable || a > Preferred {
				return fmt.Errorf("availability[%d][%d] = %d is not a valid state", i, s, a)
			}
		}
	}

	for _, e := range p.Employees {
		if !e.IsTrainee {
			continue
		}
		trainer, ok := byID[e.TrainerID]
		if !ok {
			return fmt.Errorf("trainee %s has no resolvable trainer %q", e.ID, e.TrainerID)
		}
		if trainer.ID == e.ID {
			return fmt.Errorf("trainee %s is paired with itself", e.ID)
		}
		if trainer.IsTrainee {
			return fmt.Errorf("trainee %s is paired with trainer %s who is also a trainee", e.ID, trainer.ID)
		}
	}

	if p.Params.MinShifts > p.Params.MaxShifts {
		return fmt.Errorf("min shifts %d exceeds max shifts %d", p.Params.MinShifts, p.Params.MaxShifts)
	}
	if p.Params.MaxConsecutiveShifts < 1 {
		return fmt.Errorf("max consecutive shifts must be positive, got %d", p.Params.MaxConsecutiveShifts)
	}
	if len(p.Staffing.Forecast) > 0 {
		if len(p.Staffing.Forecast) != len(p.Shifts) {
			return fmt.Errorf("staffing forecast has %d entries for %d shifts", len(p.Staffing.Forecast), len(p.Shifts))
		}
	} else if p.Staffing.ShiftMin > p.Staffing.ShiftMax {
		return fmt.Errorf("shift min %d exceeds shift max %d", p.Staffing.ShiftMin, p.Staffing.ShiftMax)
	}
	return nil
}

// Assignment is the solved decision variable: Rows[e][s] is true when
// employee e works shift s.
type Assignment struct {
	Rows [][]bool `json:"rows"`
}

// NewAssignment returns an all-false employees x shifts matrix.
func NewAssignment(numEmployees, numShifts int) Assignment {
	rows := make([][]bool, numEmployees)
	for i := range rows {
		rows[i] = make([]bool, numShifts)
	}
	return Assignment{Rows: rows}
}

// Clone deep-copies the matrix.
func (a Assignment) Clone() Assignment {
	out := NewAssignment(len(a.Rows), a.NumShifts())
	for i, row := range a.Rows {
		copy(out.Rows[i], row)
	}
	return out
}

// NumShifts returns the number of columns.
func (a Assignment) NumShifts() int {
	if len(a.Rows) == 0 {
		return 0
	}
	return len(a.Rows[0])
}

// ShiftCount returns the number of shifts assigned to employee e.
func (a Assignment) ShiftCount(e int) int {
	n := 0
	for _, on := range a.Rows[e] {
		if on {
			n++
		}
	}
	return n
}

// Staffed returns the number of employees working shift s.
func (a Assignment) Staffed(s int) int {
	n := 0
	for e := range a.Rows {
		if a.Rows[e][s] {
			n++
		}
	}
	return n
}

// Category identifies one of the nine stable violation kinds reported
// when a schedule breaks a rule.
type Category string

const (
	CatUnavailable        Category = "unavailable"
	CatOvertime           Category = "overtime"
	CatInsufficient       Category = "insufficient"
	CatUnderstaffed       Category = "understaffed"
	CatOverstaffed        Category = "overstaffed"
	CatIsolated           Category = "isolated"
	CatManagerIssue       Category = "manager_issue"
	CatTooManyConsecutive Category = "too_many_consecutive"
	CatTraineeIssue       Category = "trainee_issue"
)

// Categories lists every violation kind in report order.
var Categories = []Category{
	CatUnavailable,
	CatOvertime,
	CatInsufficient,
	CatUnderstaffed,
	CatOverstaffed,
	CatIsolated,
	CatManagerIssue,
	CatTooManyConsecutive,
	CatTraineeIssue,
}
