package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

func gridProblem() *models.Problem {
	return &models.Problem{
		Employees: []models.Employee{
			{ID: "a", Name: "Anna", IsManager: true},
			{ID: "b", Name: "Bo"},
		},
		Shifts: models.MakeShifts(3, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)),
		Availability: [][]models.Availability{
			{models.Available, models.Preferred, models.Unavailable},
			{models.Preferred, models.Unavailable, models.Available},
		},
		Params:   models.PolicyParams{MinShifts: 0, MaxShifts: 3, MaxConsecutiveShifts: 3},
		Staffing: models.StaffingTarget{ShiftMin: 0, ShiftMax: 2},
	}
}

func TestMaterialize(t *testing.T) {
	p := gridProblem()
	a := models.Assignment{Rows: [][]bool{
		{true, true, true},
		{false, false, false},
	}}

	g := Materialize(p, a)
	assert.Equal(t, p.Shifts, g.Shifts)
	assert.Equal(t, "a", g.Rows[0].EmployeeID)
	assert.Equal(t, "Anna", g.Rows[0].Employee)
	assert.Equal(t, []CellState{CellAssigned, CellAssignedPreferred, CellAssignedUnavailable}, g.Rows[0].Cells)
	assert.Equal(t, []CellState{CellPreferredUnassigned, CellUnavailable, CellOpen}, g.Rows[1].Cells)

	assert.Equal(t, g, Materialize(p, a), "materialization is deterministic")
}

func TestMaterializeAllZero(t *testing.T) {
	p := gridProblem()
	g := Materialize(p, models.NewAssignment(2, 3))

	for _, row := range g.Rows {
		for _, cell := range row.Cells {
			assert.False(t, cell.Assigned())
		}
	}
}

func TestAssignmentRoundTrip(t *testing.T) {
	p := gridProblem()
	a := models.Assignment{Rows: [][]bool{
		{true, false, true},
		{false, true, false},
	}}

	assert.Equal(t, a, AssignmentFromGrid(Materialize(p, a)))
}

func TestRenderText(t *testing.T) {
	p := gridProblem()
	a := models.Assignment{Rows: [][]bool{
		{true, true, false},
		{false, false, true},
	}}

	out := RenderText(Materialize(p, a))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Employee"))
	assert.Contains(t, lines[0], "Sun 13")
	assert.True(t, strings.HasPrefix(lines[1], "Anna"))
	assert.Contains(t, lines[1], "*")
	assert.Contains(t, lines[1], "@")

	for _, marker := range []string{"*", "@", "/", "x", "E"} {
		assert.Contains(t, Legend(), marker)
	}
}
