package validate

import (
	"github.com/dwave-examples/employee-scheduling/pkg/model"
	"github.com/dwave-examples/employee-scheduling/pkg/models"
)

// FromLabels builds the violation report from the labels of unsatisfied
// constraints, as returned by a solver that reports per-constraint
// satisfaction. Labels that fail to parse are skipped so a solver
// speaking a newer constraint vocabulary cannot break the report.
func FromLabels(p *models.Problem, labels []string) Report {
	byID := make(map[string]string, len(p.Employees))
	for _, e := range p.Employees {
		byID[e.ID] = e.Name
	}

	r := Report{}
	for _, label := range labels {
		cat, employeeID, shift, err := model.ParseLabel(label)
		if err != nil {
			continue
		}
		employee := byID[employeeID]
		day := ""
		if shift >= 1 && shift <= p.NumShifts() {
			day = dayLabel(p, shift-1)
		}
		r.add(cat, employee, day)
	}
	return r
}

// FromSatisfaction projects a solver's per-constraint satisfaction
// vector through the model's labels. A vector of the wrong length is
// treated as absent and triggers the matrix-style local re-check by the
// caller returning nil here.
func FromSatisfaction(p *models.Problem, m *model.QuadraticModel, satisfied []bool) Report {
	if len(satisfied) != len(m.Constraints) {
		return nil
	}
	var labels []string
	for i, ok := range satisfied {
		if !ok {
			labels = append(labels, m.Constraints[i].Label)
		}
	}
	return FromLabels(p, labels)
}
