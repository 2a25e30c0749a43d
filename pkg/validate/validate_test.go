package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwave-examples/employee-scheduling/pkg/model"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

func testProblem() *models.Problem {
	employees := []models.Employee{
		{ID: "a", Name: "A-Mgr", IsManager: true},
		{ID: "b", Name: "B-Mgr", IsManager: true},
		{ID: "c", Name: "C"},
		{ID: "d", Name: "D"},
		{ID: "e", Name: "E"},
		{ID: "e-tr", Name: "E-Tr", IsTrainee: true, TrainerID: "e"},
	}
	availability := make([][]models.Availability, len(employees))
	for i := range availability {
		availability[i] = []models.Availability{
			models.Available, models.Available, models.Available,
			models.Available, models.Available,
		}
	}
	return &models.Problem{
		Employees: employees,
		// 2026-09-13 is a Sunday, so the labels run Sun 13 .. Thu 17.
		Shifts:       models.MakeShifts(5, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)),
		Availability: availability,
		Params: models.PolicyParams{
			MinShifts:            1,
			MaxShifts:            6,
			MaxConsecutiveShifts: 6,
			RequiresManager:      true,
		},
		Staffing: models.StaffingTarget{ShiftMin: 3, ShiftMax: 6},
	}
}

func fullAssignment(p *models.Problem) models.Assignment {
	a := models.NewAssignment(p.NumEmployees(), p.NumShifts())
	for e := range a.Rows {
		for s := range a.Rows[e] {
			a.Rows[e][s] = true
		}
	}
	return a
}

func TestCheckAssignmentFeasible(t *testing.T) {
	p := testProblem()
	a := fullAssignment(p)
	a.Rows[0] = []bool{false, false, true, true, true}
	a.Rows[1] = []bool{true, true, false, false, false}

	r := CheckAssignment(p, a)
	assert.True(t, r.Feasible())
	assert.Zero(t, r.Count())
}

func TestCheckAssignmentManagerGap(t *testing.T) {
	p := testProblem()
	a := fullAssignment(p)
	a.Rows[0] = []bool{true, true, false, false, false}
	a.Rows[1] = []bool{true, true, false, false, false}

	r := CheckAssignment(p, a)
	assert.False(t, r.Feasible())
	assert.Equal(t, []string{
		"No manager scheduled on Tue 15",
		"No manager scheduled on Wed 16",
		"No manager scheduled on Thu 17",
	}, r[models.CatManagerIssue])
}

func TestCheckAssignmentMessages(t *testing.T) {
	p := testProblem()
	p.Availability[2][0] = models.Unavailable

	a := fullAssignment(p)
	a.Rows[3] = []bool{true, false, true, true, true}  // D has Mon 14 isolated off
	a.Rows[4] = []bool{false, true, true, true, true}  // trainer E misses Sun 13
	a.Rows[1] = []bool{true, true, true, true, false}  // B-Mgr ends on a lone day off

	r := CheckAssignment(p, a)
	assert.Equal(t, []string{"C on Sun 13"}, r[models.CatUnavailable])
	assert.Equal(t, []string{"Trainee scheduling issue on Sun 13"}, r[models.CatTraineeIssue])
	assert.ElementsMatch(t, []string{
		"Mon 14 is an isolated day off for D",
		"Sun 13 is an isolated day off for E",
		"Thu 17 is an isolated day off for B-Mgr",
	}, r[models.CatIsolated])
}

func TestCheckAssignmentAllZero(t *testing.T) {
	p := testProblem()
	r := CheckAssignment(p, models.NewAssignment(p.NumEmployees(), p.NumShifts()))

	assert.False(t, r.Feasible())
	assert.Len(t, r[models.CatInsufficient], 6)
	assert.Len(t, r[models.CatUnderstaffed], 5)
	assert.Len(t, r[models.CatManagerIssue], 5)
	assert.Empty(t, r[models.CatIsolated])
	assert.Equal(t, 16, r.Count())
}

func TestCheckAssignmentFullTime(t *testing.T) {
	p := testProblem()
	p.Employees[2].IsFullTime = true
	p.Params.FullTimeShifts = 4
	p.Params.AllowIsolatedDaysOff = true

	a := fullAssignment(p) // C works five shifts, one over the pinned count
	r := CheckAssignment(p, a)
	assert.Equal(t, []string{"C"}, r[models.CatOvertime])
	assert.Equal(t, 1, r.Count())

	a.Rows[2] = []bool{true, true, true, false, false}
	r = CheckAssignment(p, a)
	assert.Equal(t, []string{"C"}, r[models.CatInsufficient])
	assert.Equal(t, 1, r.Count())
}

func TestCheckAssignmentConsecutive(t *testing.T) {
	p := testProblem()
	p.Params.MaxConsecutiveShifts = 3
	p.Params.AllowIsolatedDaysOff = true
	p.Params.RequiresManager = false

	a := fullAssignment(p)
	a.Rows[1] = []bool{true, true, true, false, false}
	a.Rows[2] = []bool{false, true, true, true, false}

	r := CheckAssignment(p, a)
	// A window of four shifts with four assignments is reported at its
	// first day; an all-on row trips both windows.
	assert.Equal(t, []string{
		"A-Mgr starting with Sun 13", "A-Mgr starting with Mon 14",
		"D starting with Sun 13", "D starting with Mon 14",
		"E starting with Sun 13", "E starting with Mon 14",
		"E-Tr starting with Sun 13", "E-Tr starting with Mon 14",
	}, r[models.CatTooManyConsecutive])
}

func TestFromLabels(t *testing.T) {
	p := testProblem()
	r := FromLabels(p, []string{
		"manager_issue,,3",
		"isolated,e-tr,2",
		"overtime,c,",
		"unintelligible garbage",
		"not_a_category,a,1",
	})

	assert.Equal(t, []string{"No manager scheduled on Tue 15"}, r[models.CatManagerIssue])
	assert.Equal(t, []string{"Mon 14 is an isolated day off for E-Tr"}, r[models.CatIsolated])
	assert.Equal(t, []string{"C"}, r[models.CatOvertime])
	assert.Equal(t, 3, r.Count(), "unparseable labels are dropped")
}

func TestFromSatisfaction(t *testing.T) {
	p := testProblem()
	m, err := model.BuildQuadratic(p)
	require.NoError(t, err)

	a := fullAssignment(p)
	a.Rows[0] = []bool{true, true, false, false, false}
	a.Rows[1] = []bool{true, true, false, false, false}

	r := FromSatisfaction(p, m, m.SatisfactionVector(a))
	require.NotNil(t, r)
	assert.Equal(t, []string{
		"No manager scheduled on Tue 15",
		"No manager scheduled on Wed 16",
		"No manager scheduled on Thu 17",
	}, r[models.CatManagerIssue])

	assert.Nil(t, FromSatisfaction(p, m, make([]bool, 3)), "wrong-length vector is rejected")
}

// The labeled path and the matrix re-check describe any assignment
// identically: same categories, same messages, same order.
func TestPathsConverge(t *testing.T) {
	p := testProblem()
	p.Availability[3][2] = models.Unavailable
	m, err := model.BuildQuadratic(p)
	require.NoError(t, err)

	candidates := []models.Assignment{
		fullAssignment(p),
		models.NewAssignment(p.NumEmployees(), p.NumShifts()),
	}
	split := fullAssignment(p)
	split.Rows[0] = []bool{false, false, true, true, true}
	split.Rows[1] = []bool{true, true, false, false, false}
	ragged := fullAssignment(p)
	ragged.Rows[2] = []bool{true, false, true, false, true}
	ragged.Rows[5] = []bool{false, true, true, true, false}
	candidates = append(candidates, split, ragged)

	for _, a := range candidates {
		fromLabels := FromSatisfaction(p, m, m.SatisfactionVector(a))
		require.NotNil(t, fromLabels)
		assert.Equal(t, CheckAssignment(p, a), fromLabels)
	}
}
