package models

import (
	"testing"
	"time"
)

func validProblem() *Problem {
	employees := []Employee{
		{ID: "a", Name: "A", IsManager: true},
		{ID: "b", Name: "B"},
		{ID: "b-tr", Name: "B Jr", IsTrainee: true, TrainerID: "b"},
	}
	availability := [][]Availability{
		{Available, Available, Preferred},
		{Available, Unavailable, Available},
		{Available, Available, Available},
	}
	return &Problem{
		Employees:    employees,
		Shifts:       MakeShifts(3, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)),
		Availability: availability,
		Params: PolicyParams{
			MinShifts:            1,
			MaxShifts:            3,
			FullTimeShifts:       3,
			MaxConsecutiveShifts: 2,
		},
		Staffing: StaffingTarget{ShiftMin: 1, ShiftMax: 3},
	}
}

func TestValidate(t *testing.T) {
	if err := validProblem().Validate(); err != nil {
		t.Fatalf("expected valid problem, got %v", err)
	}
}

func TestValidate_RowLengthMismatch(t *testing.T) {
	p := validProblem()
	p.Availability[1] = p.Availability[1][:2]
	if err := p.Validate(); err == nil {
		t.Error("expected error for short availability row")
	}
}

func TestValidate_UnresolvableTrainer(t *testing.T) {
	p := validProblem()
	p.Employees[2].TrainerID = "nobody"
	if err := p.Validate(); err == nil {
		t.Error("expected error for missing trainer")
	}
}

func TestValidate_TrainerIsTrainee(t *testing.T) {
	p := validProblem()
	p.Employees[1].IsTrainee = true
	p.Employees[1].TrainerID = "a"
	p.Employees[2].TrainerID = "b"
	if err := p.Validate(); err == nil {
		t.Error("expected error when the trainer is itself a trainee")
	}
}

func TestValidate_MinAboveMax(t *testing.T) {
	p := validProblem()
	p.Params.MinShifts = 5
	p.Params.MaxShifts = 2
	if err := p.Validate(); err == nil {
		t.Error("expected error for min > max")
	}

	p = validProblem()
	p.Staffing.ShiftMin = 4
	p.Staffing.ShiftMax = 1
	if err := p.Validate(); err == nil {
		t.Error("expected error for shift min > shift max")
	}
}

func TestValidate_ForecastLengthMismatch(t *testing.T) {
	p := validProblem()
	p.Staffing.Forecast = []int{2, 2}
	if err := p.Validate(); err == nil {
		t.Error("expected error for forecast shorter than schedule")
	}

	p = validProblem()
	p.Staffing.Forecast = []int{2, 2, 2, 2}
	if err := p.Validate(); err == nil {
		t.Error("expected error for forecast longer than schedule")
	}

	p = validProblem()
	p.Staffing.Forecast = []int{2, 2, 2}
	if err := p.Validate(); err != nil {
		t.Errorf("expected exact-length forecast to be accepted, got %v", err)
	}
}

func TestMakeShifts(t *testing.T) {
	// 2026-09-13 is a Sunday.
	shifts := MakeShifts(3, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC))

	want := []string{"Sun 13", "Mon 14", "Tue 15"}
	for i, shift := range shifts {
		if shift.Index != i+1 {
			t.Errorf("shift %d has index %d", i, shift.Index)
		}
		if shift.Label != want[i] {
			t.Errorf("shift %d labeled %q, want %q", i, shift.Label, want[i])
		}
	}
}

func TestDefaultStartDate(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) // a Wednesday
	start := DefaultStartDate(now)
	if start.Weekday() != time.Sunday {
		t.Errorf("start date %v is not a Sunday", start)
	}
	if days := int(start.Sub(now).Hours() / 24); days < 14 || days > 21 {
		t.Errorf("start date %v is %d days out, want two to three weeks", start, days)
	}
}

func TestStaffingBounds(t *testing.T) {
	band := StaffingTarget{ShiftMin: 3, ShiftMax: 6}
	if lo, hi := band.Bounds(0); lo != 3 || hi != 6 {
		t.Errorf("band bounds = (%d, %d), want (3, 6)", lo, hi)
	}

	forecast := StaffingTarget{ShiftMin: 3, ShiftMax: 6, Forecast: []int{4, 5}}
	if lo, hi := forecast.Bounds(1); lo != 5 || hi != 5 {
		t.Errorf("forecast bounds = (%d, %d), want (5, 5)", lo, hi)
	}
}

func TestAssignmentCounts(t *testing.T) {
	a := NewAssignment(2, 3)
	a.Rows[0][0] = true
	a.Rows[0][2] = true
	a.Rows[1][0] = true

	if n := a.ShiftCount(0); n != 2 {
		t.Errorf("ShiftCount(0) = %d, want 2", n)
	}
	if n := a.Staffed(0); n != 2 {
		t.Errorf("Staffed(0) = %d, want 2", n)
	}
	if n := a.Staffed(1); n != 0 {
		t.Errorf("Staffed(1) = %d, want 0", n)
	}

	clone := a.Clone()
	clone.Rows[0][0] = false
	if !a.Rows[0][0] {
		t.Error("Clone shares storage with the original")
	}
}
