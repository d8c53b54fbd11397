package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/arnavshah/dutyboard-api-go/pkg/shiftwindow"
)

// readRecordsCSV parses a day snapshot. Required columns are employee_id and
// kind; employee_name, group, date, shift_type_id, shift_name, special_id,
// window and absence_type are optional.
func readRecordsCSV(r io.Reader) ([]models.AssignmentRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read records header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"employee_id", "kind"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("records file is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var records []models.AssignmentRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, models.AssignmentRecord{
			EmployeeID:   field(record, "employee_id"),
			EmployeeName: field(record, "employee_name"),
			Group:        field(record, "group"),
			Date:         field(record, "date"),
			Kind:         models.AssignmentKind(strings.ToLower(field(record, "kind"))),
			ShiftTypeID:  field(record, "shift_type_id"),
			ShiftName:    field(record, "shift_name"),
			SpecialID:    field(record, "special_id"),
			Window:       shiftwindow.FromText(field(record, "window")),
			AbsenceType:  field(record, "absence_type"),
		})
	}
	return records, nil
}
