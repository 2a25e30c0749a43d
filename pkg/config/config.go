// Package config loads scenario presets and generates the roster and
// availability snapshots a scenario describes.
package config

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

//go:embed scenarios.yaml
var defaultScenarios []byte

// Scenario describes one preset: roster shape plus policy knobs.
type Scenario struct {
	NumEmployees         int  `yaml:"num_employees"`
	NumManagers          int  `yaml:"num_managers"`
	NumFullTime          int  `yaml:"num_full_time"`
	NumShifts            int  `yaml:"num_shifts"`
	MinShifts            int  `yaml:"min_shifts"`
	MaxShifts            int  `yaml:"max_shifts"`
	FullTimeShifts       int  `yaml:"full_time_shifts"`
	MaxConsecutiveShifts int  `yaml:"max_consecutive_shifts"`
	AllowIsolatedDaysOff bool `yaml:"allow_isolated_days_off"`
	RequiresManager      bool `yaml:"requires_manager"`
	ShiftMin             int  `yaml:"shift_min"`
	ShiftMax             int  `yaml:"shift_max"`
	Forecast             []int `yaml:"forecast,omitempty"`
}

// File is a parsed scenario file.
type File struct {
	Scenarios map[string]Scenario `yaml:"scenarios"`
}

// Default returns the built-in presets.
func Default() (*File, error) {
	return parse(defaultScenarios)
}

// Load reads a scenario file from disk; an empty path loads the built-in
// presets.
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}
	return &f, nil
}

// Get looks up a scenario by name.
func (f *File) Get(name string) (Scenario, error) {
	sc, ok := f.Scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q", name)
	}
	return sc, nil
}

// firstNames seeds generated rosters; a letter suffix keeps generated
// names unique for larger scenarios.
var firstNames = []string{
	"Marcus", "Robert", "Jonathan", "Thomas", "Herbert", "Donna",
	"Karen", "Seth", "Stephanie", "Casey", "Mike", "Laura", "Priya",
	"Diego", "Yuki", "Amara", "Felix", "Nadia", "Owen", "Greta",
}

// Problem expands the scenario into a full solve snapshot. The first
// NumManagers employees are managers, the first NumFullTime are
// full-time, and the last employee is a trainee paired with the first
// manager. Availability is drawn per cell (10% unavailable, 10%
// preferred) from the seed; the trainee is fully available, matching the
// demo's generated schedules.
func (s Scenario) Problem(seed int64, start time.Time) (*models.Problem, error) {
	if s.NumEmployees < 2 {
		return nil, fmt.Errorf("scenario needs at least 2 employees, got %d", s.NumEmployees)
	}
	if s.NumShifts < 1 {
		return nil, fmt.Errorf("scenario needs at least 1 shift, got %d", s.NumShifts)
	}
	rng := rand.New(rand.NewSource(seed))

	employees := make([]models.Employee, s.NumEmployees)
	for i := range employees {
		name := fmt.Sprintf("%s %c", firstNames[i%len(firstNames)], 'A'+rune(i/len(firstNames))%26)
		employees[i] = models.Employee{
			ID:         fmt.Sprintf("emp-%02d", i+1),
			Name:       name,
			IsManager:  i < s.NumManagers,
			IsFullTime: i < s.NumFullTime,
		}
	}
	trainee := &employees[s.NumEmployees-1]
	trainee.IsTrainee = true
	trainee.IsFullTime = false
	trainee.TrainerID = employees[0].ID

	availability := make([][]models.Availability, s.NumEmployees)
	for e := range availability {
		row := make([]models.Availability, s.NumShifts)
		for i := range row {
			switch {
			case employees[e].IsTrainee:
				row[i] = models.Available
			default:
				switch roll := rng.Float64(); {
				case roll < 0.1:
					row[i] = models.Unavailable
				case roll > 0.9:
					row[i] = models.Preferred
				default:
					row[i] = models.Available
				}
			}
		}
		availability[e] = row
	}

	p := &models.Problem{
		Employees:    employees,
		Shifts:       models.MakeShifts(s.NumShifts, start),
		Availability: availability,
		Params: models.PolicyParams{
			MinShifts:            s.MinShifts,
			MaxShifts:            s.MaxShifts,
			FullTimeShifts:       s.FullTimeShifts,
			MaxConsecutiveShifts: s.MaxConsecutiveShifts,
			AllowIsolatedDaysOff: s.AllowIsolatedDaysOff,
			RequiresManager:      s.RequiresManager,
		},
		Staffing: models.StaffingTarget{
			ShiftMin: s.ShiftMin,
			ShiftMax: s.ShiftMax,
			Forecast: s.Forecast,
		},
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scenario expands to invalid problem: %w", err)
	}
	return p, nil
}
