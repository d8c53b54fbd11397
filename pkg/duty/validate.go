package duty

import (
	"errors"
	"fmt"

	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/arnavshah/dutyboard-api-go/pkg/shiftwindow"
)

// Problem describes one structural issue in a day snapshot
type Problem struct {
	Index      int    `json:"index"`
	EmployeeID string `json:"employee_id"`
	Message    string `json:"message"`
}

// Validate checks records for issues the store should have prevented:
// duplicate employee/date pairs, bad dates, unknown kinds, shifts without a
// type and window text that does not parse. Records with such problems are
// still accepted by Aggregate; this is a diagnostic for the caller.
func Validate(records []models.AssignmentRecord) []Problem {
	var problems []Problem
	add := func(i int, r models.AssignmentRecord, format string, args ...any) {
		problems = append(problems, Problem{Index: i, EmployeeID: r.EmployeeID, Message: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]int)
	for i, r := range records {
		if r.EmployeeID == "" {
			add(i, r, "employee_id is required")
		}
		if _, err := r.Day(); err != nil {
			add(i, r, "invalid date %q", r.Date)
		}
		if !r.Kind.Valid() {
			add(i, r, "unknown kind %q", r.Kind)
		}

		key := r.EmployeeID + "|" + r.Date
		if first, dup := seen[key]; dup {
			add(i, r, "duplicate assignment for %s on %s (first at %d)", r.EmployeeID, r.Date, first)
		} else {
			seen[key] = i
		}

		if r.Kind != models.KindShift {
			continue
		}
		if r.ShiftTypeID == "" && r.SpecialID == "" {
			add(i, r, "shift has neither shift_type_id nor special_id")
		}
		if raw := r.Window.Raw(); raw != "" && !r.Window.Defined() {
			_, err := shiftwindow.Parse(raw)
			switch {
			case errors.Is(err, shiftwindow.ErrZeroLengthWindow):
				add(i, r, "window %q has zero length", raw)
			default:
				add(i, r, "window %q is not HH:MM-HH:MM", raw)
			}
		}
	}
	return problems
}
