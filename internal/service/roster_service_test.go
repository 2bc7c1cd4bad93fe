package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Group ID", "group_id"},
		{"  Roll No ", "roll_no"},
		{"PROJECT   TITLE", "project_title"},
		{"name", "name"},
		{"Guide Name", "guide_name"},
	}
	for _, tc := range cases {
		if got := normalizeHeader(tc.raw); got != tc.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeGroupID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"bia-01", "BIA-01"},
		{" BIA - 01 ", "BIA-01"},
		{"cse12", "CSE12"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeGroupID(tc.raw); got != tc.want {
			t.Errorf("normalizeGroupID(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestMapHeader(t *testing.T) {
	cols, err := mapHeader([]string{"Group ID", "Roll No", "Name", "Project Title", "Domain"})
	if err != nil {
		t.Fatalf("mapHeader: %v", err)
	}
	if cols["group_id"] != 0 || cols["project_title"] != 3 || cols["domain"] != 4 {
		t.Fatalf("unexpected column mapping: %v", cols)
	}

	_, err = mapHeader([]string{"Group ID", "Name"})
	if !errors.Is(err, ErrRosterBadHeader) {
		t.Fatalf("missing columns error = %v, want ErrRosterBadHeader", err)
	}
}

func TestCellAt(t *testing.T) {
	row := []string{"a", "b"}
	if got := cellAt(row, 1); got != "b" {
		t.Fatalf("cellAt = %q", got)
	}
	// Excel trims trailing empty cells, short rows must read as blank.
	if got := cellAt(row, 5); got != "" {
		t.Fatalf("out of range cellAt = %q, want empty", got)
	}
}

// buildWorkbook writes rows into a fresh sheet and returns the xlsx bytes.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportRejectsEmptyWorkbook(t *testing.T) {
	svc := &RosterService{}
	r := buildWorkbook(t, [][]interface{}{
		{"Group ID", "Roll No", "Name", "Project Title"},
	})
	_, err := svc.Import(context.Background(), r)
	if !errors.Is(err, ErrRosterEmpty) {
		t.Fatalf("err = %v, want ErrRosterEmpty", err)
	}
}

func TestImportRejectsBadHeader(t *testing.T) {
	svc := &RosterService{}
	r := buildWorkbook(t, [][]interface{}{
		{"Group", "Roll", "Name"},
		{"BIA-01", "21BIA001", "Student"},
	})
	_, err := svc.Import(context.Background(), r)
	if !errors.Is(err, ErrRosterBadHeader) {
		t.Fatalf("err = %v, want ErrRosterBadHeader", err)
	}
}

func TestImportRejectsBadRow(t *testing.T) {
	svc := &RosterService{}
	r := buildWorkbook(t, [][]interface{}{
		{"Group ID", "Roll No", "Name", "Project Title"},
		{"BIA!!01", "21BIA001", "Student One", "Tracker"},
	})
	_, err := svc.Import(context.Background(), r)
	if !errors.Is(err, ErrRosterBadRow) {
		t.Fatalf("err = %v, want ErrRosterBadRow", err)
	}
}
