package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// engineRouter mounts the engine handlers without API key middleware
func engineRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.POST("/shift/status", h.ShiftStatus)
	r.POST("/duty/board", h.DutyBoard)
	r.POST("/duty/board/csv", h.DutyBoardCSV)
	r.POST("/fairness", h.Fairness)
	r.POST("/trends/anomalies", h.TrendAnomalies)
	r.POST("/validate", h.ValidateInput)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func TestShiftStatus(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/shift/status", `{"window":"22:00-06:00","now":"2024-03-02T02:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)

	status := out["status"].(map[string]any)
	assert.Equal(t, true, status["active"])
	assert.InDelta(t, 50.0, status["progress"], 1e-9)
	assert.Equal(t, 240.0, status["minutes_remaining"])
}

func TestShiftStatus_MalformedWindowIsInactive(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/shift/status", `{"window":"nights","now":"2024-03-02T02:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["defined"])
	assert.Equal(t, false, out["status"].(map[string]any)["active"])
}

func TestShiftStatus_RequiresNow(t *testing.T) {
	r := engineRouter(&Handler{})
	w, _ := postJSON(t, r, "/shift/status", `{"window":"08:00-16:00"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const dayJSON = `{
	"now": "2024-03-01T09:00:00Z",
	"records": [
		{"employee_id":"e1","date":"2024-03-01","kind":"shift","shift_type_id":"early","shift_name":"Early","window":"06:00-14:00"},
		{"employee_id":"e2","date":"2024-03-01","kind":"shift","shift_type_id":"late","shift_name":"Late","window":"14:00-22:00"},
		{"employee_id":"e3","date":"2024-03-01","kind":"shift","special_id":"sp-1","shift_name":"Early","window":"07:00-11:00"},
		{"employee_id":"e4","date":"2024-03-01","kind":"absence","absence_type":"vacation"},
		{"employee_id":"e5","date":"2024-03-01","kind":"free"}
	]
}`

func TestDutyBoard(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/duty/board", dayJSON)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 3.0, out["on_duty_count"])
	assert.Equal(t, 1.0, out["absence_count"])
	assert.Equal(t, 2.0, out["active_count"])
	assert.Len(t, out["free"], 1)

	sections := out["sections"].([]any)
	require.Len(t, sections, 3)
	first := sections[0].(map[string]any)
	assert.Equal(t, "shift:early", first["key"])
	assert.Equal(t, "06:00-14:00", first["window"])
	assert.Equal(t, "special:sp-1", sections[1].(map[string]any)["key"])
	assert.Equal(t, map[string]any{"vacation": 1.0}, out["absence_breakdown"])
}

func TestDutyBoard_EmptyDay(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/duty/board", `{"now":"2024-03-01T09:00:00Z","records":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, out["sections"])
	assert.Equal(t, []any{}, out["active_now"])
}

func TestDutyBoardCSV(t *testing.T) {
	r := engineRouter(&Handler{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("now", "2024-03-01T23:00:00Z"))
	fw, err := mw.CreateFormFile("records_file", "day.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("employee_id,kind,date,shift_type_id,shift_name,window,absence_type\n" +
		"e1,shift,2024-03-01,night,Night,22:00-06:00,\n" +
		"e2,shift,2024-03-01,early,Early,06:00-14:00,\n" +
		"e3,absence,2024-03-01,,,,sick_leave\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/duty/board/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2.0, out["on_duty_count"])
	assert.Equal(t, 1.0, out["active_count"])
	assert.Equal(t, map[string]any{"sick_leave": 1.0}, out["absence_breakdown"])
}

func TestDutyBoardCSV_MissingFile(t *testing.T) {
	r := engineRouter(&Handler{})
	w, out := postJSON(t, r, "/duty/board/csv", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "records_file is required", out["error"])
}

func TestFairness_Totals(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/fairness", `{"totals":[
		{"employee_id":"a","total_shifts":10,"weekend_shifts":4},
		{"employee_id":"b","total_shifts":10,"weekend_shifts":4},
		{"employee_id":"c","total_shifts":10,"weekend_shifts":4}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)

	m := out["metrics"].(map[string]any)
	assert.Equal(t, 100.0, m["overall"])
	assert.Equal(t, 4.0, m["weekend"].(map[string]any)["mean"])
	assert.Equal(t, "excellent", out["rating"])
}

func TestFairness_FromRecords(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/fairness", `{
		"group": "ICU",
		"roster": [{"id":"a","group":"ICU"},{"id":"b","group":"ICU"},{"id":"c","group":"ER"}],
		"records": [
			{"employee_id":"a","date":"2024-03-02","kind":"shift","shift_type_id":"n","window":"22:00-06:00"},
			{"employee_id":"c","date":"2024-03-02","kind":"shift","shift_type_id":"n","window":"22:00-06:00"}
		],
		"holidays": ["2024-03-02"]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	m := out["metrics"].(map[string]any)
	assert.Equal(t, 2.0, m["employees"])
	assert.Equal(t, 0.0, m["overall"])
	assert.Equal(t, "poor", out["rating"])
	assert.Len(t, out["totals"], 3)
}

func TestFairness_BadHoliday(t *testing.T) {
	r := engineRouter(&Handler{})
	w, _ := postJSON(t, r, "/fairness", `{"records":[{"employee_id":"a","date":"2024-03-02","kind":"shift"}],"holidays":["soon"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendAnomalies(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/trends/anomalies", `{"year":2024,"series":{
		"sick_days":[1,2,1,2,1,2,1,1,9,1,2,1],
		"overtime_hours":[10,10,10,10,10,10,10,10,10,10,10,10]
	}}`)
	require.Equal(t, http.StatusOK, w.Code)

	reports := out["reports"].([]any)
	require.Len(t, reports, 2)
	overtime := reports[0].(map[string]any)
	sick := reports[1].(map[string]any)
	assert.Equal(t, "overtime_hours", overtime["metric"])
	assert.Equal(t, []any{}, overtime["anomalous_months"])
	assert.Equal(t, []any{9.0}, sick["anomalous_months"])
	assert.Equal(t, 1.0, out["flagged"])
}

func TestTrendAnomalies_WrongLength(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/trends/anomalies", `{"series":{"sick_days":[1,2,3]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, out["error"], "12 monthly values")
}

func TestValidateInput(t *testing.T) {
	r := engineRouter(&Handler{})

	w, out := postJSON(t, r, "/validate", dayJSON)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, 3.0, out["stats"].(map[string]any)["shift_count"])

	w, out = postJSON(t, r, "/validate", `{"records":[
		{"employee_id":"a","date":"2024-03-01","kind":"shift","shift_type_id":"x","window":"late"},
		{"employee_id":"a","date":"2024-03-01","kind":"free"}
	]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["valid"])
	assert.Len(t, out["problems"], 2)
}

func TestDutyBoard_NonStringWindowKeepsDay(t *testing.T) {
	r := engineRouter(&Handler{})
	body := `{"now":"2024-03-01T09:00:00Z","records":[
		{"employee_id":"e1","date":"2024-03-01","kind":"shift","shift_type_id":"early","window":"06:00-14:00"},
		{"employee_id":"e2","date":"2024-03-01","kind":"shift","shift_type_id":"early","window":830}
	]}`

	w, out := postJSON(t, r, "/duty/board", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2.0, out["on_duty_count"])
	assert.Equal(t, 1.0, out["active_count"])
	active := out["active_now"].([]any)
	require.Len(t, active, 1)
	assert.Equal(t, "e1", active[0].(map[string]any)["employee_id"])

	w, out = postJSON(t, r, "/validate", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["valid"])
	problems := out["problems"].([]any)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].(map[string]any)["message"], `"830"`)
}
