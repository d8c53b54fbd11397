package models

import (
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/shiftwindow"
)

// DateLayout is the calendar date format used by assignment records
const DateLayout = "2006-01-02"

// AssignmentKind tags what an employee does on a given day
type AssignmentKind string

const (
	KindShift   AssignmentKind = "shift"
	KindAbsence AssignmentKind = "absence"
	KindFree    AssignmentKind = "free"
)

// Valid reports whether k is one of the known kinds
func (k AssignmentKind) Valid() bool {
	switch k {
	case KindShift, KindAbsence, KindFree:
		return true
	}
	return false
}

// Employee is a roster entry
type Employee struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// AssignmentRecord is one employee's assignment for one calendar day
type AssignmentRecord struct {
	EmployeeID   string             `json:"employee_id" binding:"required"`
	EmployeeName string             `json:"employee_name,omitempty"`
	Group        string             `json:"group,omitempty"`
	Date         string             `json:"date"`
	Kind         AssignmentKind     `json:"kind" binding:"required"`
	ShiftTypeID  string             `json:"shift_type_id,omitempty"`
	ShiftName    string             `json:"shift_name,omitempty"`
	SpecialID    string             `json:"special_id,omitempty"` // set for one-off shifts outside the roster
	Window       shiftwindow.Window `json:"window"`
	AbsenceType  string             `json:"absence_type,omitempty"`
}

// Day parses the record's date
func (r AssignmentRecord) Day() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

// IsSpecial reports whether the record is an ad-hoc shift
func (r AssignmentRecord) IsSpecial() bool {
	return r.Kind == KindShift && r.SpecialID != ""
}

// EmployeeShiftTotals are the shift counts of one employee over a period
type EmployeeShiftTotals struct {
	EmployeeID    string `json:"employee_id" binding:"required"`
	EmployeeName  string `json:"employee_name,omitempty"`
	Group         string `json:"group,omitempty"`
	TotalShifts   int    `json:"total_shifts"`
	WeekendShifts int    `json:"weekend_shifts"`
	NightShifts   int    `json:"night_shifts"`
	HolidayShifts int    `json:"holiday_shifts"`
}

// CategoryScore is the fairness of one shift category
type CategoryScore struct {
	Score float64 `json:"score"`
	Mean  float64 `json:"mean"`
}

// FairnessMetrics summarises how evenly shifts are spread across employees
type FairnessMetrics struct {
	Weekend   CategoryScore `json:"weekend"`
	Night     CategoryScore `json:"night"`
	Holiday   CategoryScore `json:"holiday"`
	Total     CategoryScore `json:"total"`
	Overall   float64       `json:"overall"`
	Employees int           `json:"employees"`
}

// StatusRequest asks for the live state of one shift window
type StatusRequest struct {
	Window shiftwindow.Window `json:"window"`
	Now    time.Time          `json:"now" binding:"required"`
}

// BoardRequest is a day snapshot for the duty board
type BoardRequest struct {
	Now     time.Time          `json:"now" binding:"required"`
	Records []AssignmentRecord `json:"records" binding:"dive"`
}

// BoardSection is one shift group on the board
type BoardSection struct {
	Key         string             `json:"key"`
	Special     bool               `json:"special"`
	ShiftName   string             `json:"shift_name"`
	Window      string             `json:"window,omitempty"`
	ActiveCount int                `json:"active_count"`
	Records     []AssignmentRecord `json:"records"`
}

// BoardResponse is the rendered duty board
type BoardResponse struct {
	Now              time.Time          `json:"now"`
	Sections         []BoardSection     `json:"sections"`
	Absent           []AssignmentRecord `json:"absent"`
	Free             []AssignmentRecord `json:"free"`
	ActiveNow        []AssignmentRecord `json:"active_now"`
	OnDutyCount      int                `json:"on_duty_count"`
	AbsenceCount     int                `json:"absence_count"`
	ActiveCount      int                `json:"active_count"`
	AbsenceBreakdown map[string]int     `json:"absence_breakdown"`
}

// FairnessRequest carries either precomputed totals or raw records to tally
type FairnessRequest struct {
	Group    string                `json:"group,omitempty"`
	Totals   []EmployeeShiftTotals `json:"totals,omitempty" binding:"dive"`
	Records  []AssignmentRecord    `json:"records,omitempty" binding:"dive"`
	Roster   []Employee            `json:"roster,omitempty" binding:"dive"`
	Holidays []string              `json:"holidays,omitempty"`
}

// FairnessResponse is the fairness report for a period
type FairnessResponse struct {
	Metrics FairnessMetrics       `json:"metrics"`
	Rating  string                `json:"rating"`
	Totals  []EmployeeShiftTotals `json:"totals"`
}

// TrendsRequest holds one 12-month series per tracked metric
type TrendsRequest struct {
	Year   int                  `json:"year"`
	Series map[string][]float64 `json:"series" binding:"required"`
}
