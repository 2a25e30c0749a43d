package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

func TestDefaultScenarios(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"small", "medium", "large"} {
		sc, err := f.Get(name)
		require.NoError(t, err, name)
		assert.Positive(t, sc.NumEmployees, name)
		assert.Positive(t, sc.NumShifts, name)
		assert.GreaterOrEqual(t, sc.NumManagers, 2, name)
	}

	_, err = f.Get("gigantic")
	assert.Error(t, err)
}

func TestLoadScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  tiny:
    num_employees: 4
    num_managers: 2
    num_shifts: 5
    min_shifts: 1
    max_shifts: 5
    max_consecutive_shifts: 3
    requires_manager: true
    shift_min: 1
    shift_max: 3
`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	sc, err := f.Get("tiny")
	require.NoError(t, err)
	assert.Equal(t, 4, sc.NumEmployees)
	assert.Equal(t, 3, sc.ShiftMax)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios: {}\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestScenarioProblem(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	sc, err := f.Get("small")
	require.NoError(t, err)

	start := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	p, err := sc.Problem(1, start)
	require.NoError(t, err)

	assert.Len(t, p.Employees, sc.NumEmployees)
	assert.Len(t, p.Shifts, sc.NumShifts)
	assert.Len(t, p.ManagerIndexes(), sc.NumManagers)

	// The roster ends with a trainee paired to the first manager, and
	// the trainee is always fully available.
	trainee := p.Employees[len(p.Employees)-1]
	assert.True(t, trainee.IsTrainee)
	assert.Equal(t, p.Employees[0].ID, trainee.TrainerID)
	for s := range p.Shifts {
		assert.Equal(t, models.Available, p.Availability[len(p.Employees)-1][s])
	}

	fullTime := 0
	for _, e := range p.Employees {
		if e.IsFullTime {
			fullTime++
		}
	}
	assert.Equal(t, sc.NumFullTime, fullTime)
}

func TestScenarioProblemDeterministic(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	sc, err := f.Get("medium")
	require.NoError(t, err)

	start := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	first, err := sc.Problem(42, start)
	require.NoError(t, err)
	second, err := sc.Problem(42, start)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := sc.Problem(43, start)
	require.NoError(t, err)
	assert.NotEqual(t, first.Availability, other.Availability)
}

func TestScenarioProblemRejectsBadShape(t *testing.T) {
	sc := Scenario{NumEmployees: 1, NumShifts: 5}
	_, err := sc.Problem(1, time.Now())
	assert.Error(t, err)

	sc = Scenario{NumEmployees: 5, NumShifts: 0}
	_, err = sc.Problem(1, time.Now())
	assert.Error(t, err)
}
