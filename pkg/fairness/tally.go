package fairness

import (
	"fmt"
	"sort"
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/models"
)

// NightStartMinute is the earliest start (20:00) that makes a shift a night shift
const NightStartMinute = 20 * 60

// HolidaySet is a set of public holiday dates in models.DateLayout
type HolidaySet map[string]struct{}

// NewHolidaySet validates and collects holiday dates
func NewHolidaySet(dates []string) (HolidaySet, error) {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", d, err)
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// Contains reports whether date is a holiday
func (h HolidaySet) Contains(date string) bool {
	_, ok := h[date]
	return ok
}

// Tally derives per-employee shift totals from assignment records.
// Only shift records count. When roster is non-empty it defines the
// employees, including those without shifts, and records for anyone else are
// ignored; otherwise employees are taken from the records.
func Tally(records []models.AssignmentRecord, roster []models.Employee, holidays HolidaySet) []models.EmployeeShiftTotals {
	byID := make(map[string]*models.EmployeeShiftTotals)
	for _, e := range roster {
		byID[e.ID] = &models.EmployeeShiftTotals{EmployeeID: e.ID, EmployeeName: e.Name, Group: e.Group}
	}
	fixedRoster := len(roster) > 0

	for _, r := range records {
		if r.Kind != models.KindShift {
			continue
		}
		t, ok := byID[r.EmployeeID]
		if !ok {
			if fixedRoster {
				continue
			}
			t = &models.EmployeeShiftTotals{EmployeeID: r.EmployeeID, EmployeeName: r.EmployeeName, Group: r.Group}
			byID[r.EmployeeID] = t
		}

		t.TotalShifts++
		if day, err := r.Day(); err == nil {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.WeekendShifts++
			}
		}
		if r.Window.StartsAtOrAfter(NightStartMinute) {
			t.NightShifts++
		}
		if holidays.Contains(r.Date) {
			t.HolidayShifts++
		}
	}

	out := make([]models.EmployeeShiftTotals, 0, len(byID))
	for _, t := range byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}
