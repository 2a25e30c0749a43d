// Package schedule turns a solved assignment into a presentation-ready
// employee-by-shift grid merged with availability annotations. It does no
// validation; best-effort and even all-zero assignments materialize the
// same way.
package schedule

import (
	"fmt"
	"strings"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// CellState is the display state of one (employee, shift) cell.
type CellState string

const (
	// CellAssigned: working, availability was plain Available.
	CellAssigned CellState = "assigned"
	// CellAssignedPreferred: working a shift the employee asked for.
	CellAssignedPreferred CellState = "assigned_preferred"
	// CellOpen: not working, was available.
	CellOpen CellState = "open"
	// CellPreferredUnassigned: asked for the shift but not scheduled.
	CellPreferredUnassigned CellState = "preferred_unassigned"
	// CellUnavailable: not working, was unavailable.
	CellUnavailable CellState = "unavailable"
	// CellAssignedUnavailable: scheduled despite being unavailable.
	// Only reachable through best-effort solver output.
	CellAssignedUnavailable CellState = "assigned_unavailable"
)

// Assigned reports whether the cell state encodes a worked shift.
func (c CellState) Assigned() bool {
	switch c {
	case CellAssigned, CellAssignedPreferred, CellAssignedUnavailable:
		return true
	}
	return false
}

// Row is one employee's rendered schedule.
type Row struct {
	EmployeeID string      `json:"employee_id"`
	Employee   string      `json:"employee"`
	Cells      []CellState `json:"cells"`
}

// Grid is the full rendered schedule.
type Grid struct {
	Shifts []models.Shift `json:"shifts"`
	Rows   []Row          `json:"rows"`
}

// Materialize merges the assignment matrix with the availability grid
// into display states. It is a pure function of its inputs: calling it
// twice yields identical output.
func Materialize(p *models.Problem, a models.Assignment) Grid {
	grid := Grid{
		Shifts: append([]models.Shift(nil), p.Shifts...),
		Rows:   make([]Row, len(p.Employees)),
	}
	for e, emp := range p.Employees {
		row := Row{
			EmployeeID: emp.ID,
			Employee:   emp.Name,
			Cells:      make([]CellState, p.NumShifts()),
		}
		for s := range p.Shifts {
			row.Cells[s] = cellState(a.Rows[e][s], p.Availability[e][s])
		}
		grid.Rows[e] = row
	}
	return grid
}

func cellState(assigned bool, avail models.Availability) CellState {
	switch {
	case assigned && avail == models.Preferred:
		return CellAssignedPreferred
	case assigned && avail == models.Unavailable:
		return CellAssignedUnavailable
	case assigned:
		return CellAssigned
	case avail == models.Preferred:
		return CellPreferredUnassigned
	case avail == models.Unavailable:
		return CellUnavailable
	default:
		return CellOpen
	}
}

// AssignmentFromGrid recovers the boolean matrix from a grid's display
// states. Materialize followed by AssignmentFromGrid is the identity on
// the assignment.
func AssignmentFromGrid(g Grid) models.Assignment {
	a := models.NewAssignment(len(g.Rows), len(g.Shifts))
	for e, row := range g.Rows {
		for s, cell := range row.Cells {
			a.Rows[e][s] = cell.Assigned()
		}
	}
	return a
}

// markers are the single-character cell renderings for text output.
var markers = map[CellState]string{
	CellAssigned:            "*",
	CellAssignedPreferred:   "@",
	CellOpen:                "",
	CellPreferredUnassigned: "/",
	CellUnavailable:         "x",
	CellAssignedUnavailable: "E",
}

// Legend describes the text markers for CLI output.
func Legend() string {
	var b strings.Builder
	b.WriteString("* = shift assigned\n")
	b.WriteString("@ = preferred shift assigned\n")
	b.WriteString("/ = preferred shift not assigned\n")
	b.WriteString("x = unavailable\n")
	b.WriteString("E = unavailable shift assigned\n")
	return b.String()
}

// RenderText draws the grid as a fixed-width table for terminal output.
func RenderText(g Grid) string {
	nameWidth := len("Employee")
	for _, row := range g.Rows {
		if len(row.Employee) > nameWidth {
			nameWidth = len(row.Employee)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", nameWidth, "Employee")
	for _, shift := range g.Shifts {
		fmt.Fprintf(&b, " | %6s", shift.Label)
	}
	b.WriteString("\n")
	for _, row := range g.Rows {
		fmt.Fprintf(&b, "%-*s", nameWidth, row.Employee)
		for _, cell := range row.Cells {
			fmt.Fprintf(&b, " | %6s", markers[cell])
		}
		b.WriteString("\n")
	}
	return b.String()
}
