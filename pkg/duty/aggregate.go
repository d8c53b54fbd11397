package duty

import (
	"sort"
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/models"
)

// ShiftKey identifies a shift group on the board. Ad-hoc shifts are keyed by
// their own id so they never merge with a roster shift of the same name.
type ShiftKey struct {
	Special bool
	ID      string
}

func (k ShiftKey) String() string {
	if k.Special {
		return "special:" + k.ID
	}
	return "shift:" + k.ID
}

// KeyOf returns the group key of a shift record
func KeyOf(r models.AssignmentRecord) ShiftKey {
	if r.IsSpecial() {
		return ShiftKey{Special: true, ID: r.SpecialID}
	}
	return ShiftKey{ID: r.ShiftTypeID}
}

// Board is the aggregated view of one day
type Board struct {
	Now          time.Time
	Groups       map[ShiftKey][]models.AssignmentRecord
	Absent       []models.AssignmentRecord
	Free         []models.AssignmentRecord
	ActiveNow    []models.AssignmentRecord
	OnDutyCount  int
	AbsenceCount int
}

// Aggregate groups a day's records by shift and evaluates which shifts are running at now.
// Employees with no record are not represented at all.
func Aggregate(records []models.AssignmentRecord, now time.Time) Board {
	b := Board{
		Now:    now,
		Groups: make(map[ShiftKey][]models.AssignmentRecord),
	}

	for _, r := range records {
		switch r.Kind {
		case models.KindShift:
			key := KeyOf(r)
			b.Groups[key] = append(b.Groups[key], r)
			b.OnDutyCount++
			if r.Window.IsActive(now) {
				b.ActiveNow = append(b.ActiveNow, r)
			}
		case models.KindAbsence:
			b.Absent = append(b.Absent, r)
			b.AbsenceCount++
		case models.KindFree:
			b.Free = append(b.Free, r)
		}
	}

	return b
}

// Section is a shift group ready for display
type Section struct {
	Key         ShiftKey
	ShiftName   string
	ActiveCount int
	Records     []models.AssignmentRecord
}

// Sections returns the shift groups ordered by start time, then name
func (b Board) Sections() []Section {
	sections := make([]Section, 0, len(b.Groups))
	for key, recs := range b.Groups {
		s := Section{Key: key, Records: recs}
		for _, r := range recs {
			if s.ShiftName == "" {
				s.ShiftName = r.ShiftName
			}
			if r.Window.IsActive(b.Now) {
				s.ActiveCount++
			}
		}
		sections = append(sections, s)
	}

	sort.Slice(sections, func(i, j int) bool {
		a, c := sections[i], sections[j]
		as, cs := startOf(a), startOf(c)
		if as != cs {
			return as < cs
		}
		if a.ShiftName != c.ShiftName {
			return a.ShiftName < c.ShiftName
		}
		return a.Key.String() < c.Key.String()
	})
	return sections
}

// startOf sorts sections without a window after every timed section
func startOf(s Section) int {
	for _, r := range s.Records {
		if r.Window.Defined() {
			return r.Window.Start()
		}
	}
	return 24 * 60
}

// AbsenceBreakdown counts absences per leave type
func (b Board) AbsenceBreakdown() map[string]int {
	out := make(map[string]int)
	for _, r := range b.Absent {
		kind := r.AbsenceType
		if kind == "" {
			kind = "unspecified"
		}
		out[kind]++
	}
	return out
}
