package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
)

func TestMarkRecordsFlattensSheet(t *testing.T) {
	m, err := review.Get(4)
	if err != nil {
		t.Fatalf("milestone: %v", err)
	}

	sheet := &model.MarksSheet{
		GroupID:      "BIA-01",
		ReviewNumber: 4,
		Marks: map[string]map[string]string{
			"testing_coverage": {"21BIA002": "10", "21BIA001": "7.5"},
			"test_cases":       {"21BIA001": "3.5"},
		},
		Totals: map[string]string{
			"21BIA002": "10.0",
			"21BIA001": "11.0",
		},
	}

	records := markRecords(sheet, m)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	// Rows come back sorted by roll number.
	if records[0]["roll_no"] != "21BIA001" || records[1]["roll_no"] != "21BIA002" {
		t.Fatalf("roll order = %q, %q", records[0]["roll_no"], records[1]["roll_no"])
	}

	first := records[0]
	if first["group_id"] != "BIA-01" {
		t.Errorf("group_id = %q", first["group_id"])
	}
	if first["testing_coverage"] != "7.5" {
		t.Errorf("testing_coverage = %q, want 7.5", first["testing_coverage"])
	}
	if first["total"] != "11.0" {
		t.Errorf("total = %q, want 11.0", first["total"])
	}

	// A cell never saved still appears as an empty string, so every record
	// carries the full criteria set.
	if v, ok := records[1]["test_cases"]; !ok || v != "" {
		t.Errorf("missing cell = %q (present=%v), want empty", v, ok)
	}

	// roll_no, group_id and total plus one key per criterion, nothing else.
	if want := len(m.Criteria) + 3; len(first) != want {
		t.Errorf("record keys = %d, want %d", len(first), want)
	}
}

func bindJSON(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return validator.Bind(c, dst)
}

func TestSaveResponsesBindingAcceptsNumericValues(t *testing.T) {
	body := `{"group_id":"BIA-01","responses":[
		{"question_code":"que_1.1.1","response_value":"5"},
		{"question_code":"que_1.1.2","response_value":"Y"}
	]}`
	var req model.SaveResponsesRequest
	if fields := bindJSON(t, body, &req); fields != nil {
		t.Fatalf("numeric answer rejected at binding: %v", fields)
	}
	if req.Responses[0].ResponseValue != "5" {
		t.Fatalf("response_value = %q, want 5", req.Responses[0].ResponseValue)
	}
}

func TestSaveResponsesBindingStillRequiresValue(t *testing.T) {
	body := `{"group_id":"BIA-01","responses":[{"question_code":"que_1.1.1","response_value":""}]}`
	var req model.SaveResponsesRequest
	if fields := bindJSON(t, body, &req); fields == nil {
		t.Fatal("empty response_value should fail binding")
	}
}
