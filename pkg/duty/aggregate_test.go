package duty

import (
	"testing"
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/arnavshah/dutyboard-api-go/pkg/shiftwindow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shift(emp, typeID, name, window string) models.AssignmentRecord {
	return models.AssignmentRecord{
		EmployeeID:  emp,
		Date:        "2024-03-01",
		Kind:        models.KindShift,
		ShiftTypeID: typeID,
		ShiftName:   name,
		Window:      shiftwindow.FromText(window),
	}
}

func dayRecords() []models.AssignmentRecord {
	special := shift("e5", "", "Early", "06:00-10:00")
	special.SpecialID = "sp-17"

	return []models.AssignmentRecord{
		shift("e1", "early", "Early", "06:00-14:00"),
		shift("e2", "early", "Early", "06:00-14:00"),
		shift("e3", "late", "Late", "14:00-22:00"),
		shift("e4", "night", "Night", "22:00-06:00"),
		special,
		{EmployeeID: "e6", Date: "2024-03-01", Kind: models.KindAbsence, AbsenceType: "vacation"},
		{EmployeeID: "e7", Date: "2024-03-01", Kind: models.KindAbsence, AbsenceType: "sick_leave"},
		{EmployeeID: "e8", Date: "2024-03-01", Kind: models.KindAbsence},
		{EmployeeID: "e9", Date: "2024-03-01", Kind: models.KindFree},
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	b := Aggregate(dayRecords(), now)

	assert.Equal(t, 5, b.OnDutyCount)
	assert.Equal(t, 3, b.AbsenceCount)
	require.Len(t, b.Free, 1)
	assert.Equal(t, "e9", b.Free[0].EmployeeID)

	assert.Len(t, b.Groups[ShiftKey{ID: "early"}], 2)
	assert.Len(t, b.Groups[ShiftKey{Special: true, ID: "sp-17"}], 1, "special shifts keep their own group")
	assert.Len(t, b.Groups, 4)

	var active []string
	for _, r := range b.ActiveNow {
		active = append(active, r.EmployeeID)
	}
	assert.ElementsMatch(t, []string{"e1", "e2", "e5"}, active)
}

func TestAggregate_OvernightAfterMidnight(t *testing.T) {
	now := time.Date(2024, time.March, 2, 3, 0, 0, 0, time.UTC)
	b := Aggregate(dayRecords(), now)

	require.Len(t, b.ActiveNow, 1)
	assert.Equal(t, "e4", b.ActiveNow[0].EmployeeID)
}

func TestAggregate_AbsentAndFreeNeverActive(t *testing.T) {
	rec := models.AssignmentRecord{EmployeeID: "x", Kind: models.KindAbsence, Window: shiftwindow.FromText("00:00-23:59")}
	free := models.AssignmentRecord{EmployeeID: "y", Kind: models.KindFree, Window: shiftwindow.FromText("00:00-23:59")}
	b := Aggregate([]models.AssignmentRecord{rec, free}, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	assert.Empty(t, b.ActiveNow)
	assert.Zero(t, b.OnDutyCount)
	assert.Equal(t, 1, b.AbsenceCount)
}

func TestAggregate_IgnoresUnknownKinds(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	records := append(dayRecords(),
		models.AssignmentRecord{EmployeeID: "x1", Date: "2024-03-01", Kind: "training", ShiftTypeID: "early", Window: shiftwindow.FromText("06:00-14:00")},
		models.AssignmentRecord{EmployeeID: "x2", Date: "2024-03-01"},
	)

	b := Aggregate(records, now)
	want := Aggregate(dayRecords(), now)

	assert.Equal(t, want.OnDutyCount, b.OnDutyCount)
	assert.Equal(t, want.AbsenceCount, b.AbsenceCount)
	assert.Len(t, b.Groups, len(want.Groups))
	assert.Len(t, b.Groups[ShiftKey{ID: "early"}], 2)
	for _, set := range [][]models.AssignmentRecord{b.ActiveNow, b.Absent, b.Free} {
		for _, r := range set {
			assert.NotContains(t, []string{"x1", "x2"}, r.EmployeeID)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	b := Aggregate(nil, time.Now())
	assert.Empty(t, b.Groups)
	assert.Empty(t, b.Sections())
	assert.Zero(t, b.OnDutyCount)
}

func TestSections(t *testing.T) {
	now := time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)
	b := Aggregate(dayRecords(), now)
	sections := b.Sections()

	var keys []string
	for _, s := range sections {
		keys = append(keys, s.Key.String())
	}
	assert.Equal(t, []string{"shift:early", "special:sp-17", "shift:late", "shift:night"}, keys)
	assert.Equal(t, 1, sections[2].ActiveCount)
	assert.Equal(t, "Late", sections[2].ShiftName)
}

func TestAbsenceBreakdown(t *testing.T) {
	b := Aggregate(dayRecords(), time.Now())
	assert.Equal(t, map[string]int{"vacation": 1, "sick_leave": 1, "unspecified": 1}, b.AbsenceBreakdown())
}
