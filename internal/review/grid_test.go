package review

import "testing"

func TestValidateNumeric(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		max  float64
		want string
	}{
		{"clamps above max", "12", 10, "10"},
		{"rounds to half step", "3.3", 7, "3.5"},
		{"rounds down to half step", "3.2", 7, "3"},
		{"negative clamps to zero", "-2", 10, "0"},
		{"exact value kept", "7.5", 10, "7.5"},
		{"whitespace trimmed", " 4 ", 10, "4"},
		{"empty stays empty", "", 10, ""},
		{"garbage clears", "abc", 10, ""},
		{"partial number clears", "3..5", 10, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateNumeric(tc.raw, tc.max)
			if got != tc.want {
				t.Fatalf("ValidateNumeric(%q, %v) = %q, want %q", tc.raw, tc.max, got, tc.want)
			}
			// Normalization must be idempotent.
			if again := ValidateNumeric(got, tc.max); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	if got := ValidateText("y"); got != "Y" {
		t.Fatalf("got %q, want Y", got)
	}
	if got := ValidateText("  no "); got != "N" {
		t.Fatalf("got %q, want N", got)
	}
	if got := ValidateText("3"); got != "" {
		t.Fatalf("digit should clear, got %q", got)
	}
}

func testGrid(t *testing.T) *Grid {
	t.Helper()
	m, err := Get(4)
	if err != nil {
		t.Fatal(err)
	}
	return NewGrid(m, []Student{
		{RollNo: "21BIA001", Name: "Asha", Present: true},
		{RollNo: "21BIA002", Name: "Ravi", Present: true},
	})
}

func TestGridClampAndTotal(t *testing.T) {
	g := testGrid(t)

	// Entering 12 against a max of 10 silently clamps.
	if err := g.SetCell("testing_coverage", "21BIA001", "12"); err != nil {
		t.Fatal(err)
	}
	v, _, err := g.Cell("testing_coverage", "21BIA001")
	if err != nil {
		t.Fatal(err)
	}
	if v != "10" {
		t.Fatalf("cell = %q, want 10", v)
	}

	// 3.3 rounds to 3.5; total becomes 13.5.
	if err := g.SetCell("test_cases", "21BIA001", "3.3"); err != nil {
		t.Fatal(err)
	}
	total, err := g.Total("21BIA001")
	if err != nil {
		t.Fatal(err)
	}
	if total != "13.5" {
		t.Fatalf("total = %q, want 13.5", total)
	}

	// The untouched student still totals zero.
	if total, _ := g.Total("21BIA002"); total != "0.0" {
		t.Fatalf("untouched total = %q, want 0.0", total)
	}
}

func TestGridUnknownCell(t *testing.T) {
	g := testGrid(t)
	if err := g.SetCell("no_such_criteria", "21BIA001", "5"); err != ErrUnknownCell {
		t.Fatalf("err = %v, want ErrUnknownCell", err)
	}
	if err := g.SetCell("testing_coverage", "99XXX999", "5"); err != ErrUnknownRoll {
		t.Fatalf("err = %v, want ErrUnknownRoll", err)
	}
}

func TestGridAbsence(t *testing.T) {
	g := testGrid(t)
	if err := g.SetCell("testing_coverage", "21BIA001", "8"); err != nil {
		t.Fatal(err)
	}

	if err := g.SetAttendance("21BIA001", false); err != nil {
		t.Fatal(err)
	}
	v, locked, _ := g.Cell("testing_coverage", "21BIA001")
	if v != AbsentNumeric || !locked {
		t.Fatalf("numeric cell after absence = (%q, locked=%v), want (0, true)", v, locked)
	}
	tv, _, _ := g.Cell("test_report_submitted", "21BIA001")
	if tv != AbsentText {
		t.Fatalf("text cell after absence = %q, want N", tv)
	}
	if total, _ := g.Total("21BIA001"); total != "0.0" {
		t.Fatalf("absent total = %q, want 0.0", total)
	}

	// Locked cells reject input.
	if err := g.SetCell("testing_coverage", "21BIA001", "5"); err != ErrCellLocked {
		t.Fatalf("err = %v, want ErrCellLocked", err)
	}

	// Toggling back to present clears cells instead of restoring the 8.
	if err := g.SetAttendance("21BIA001", true); err != nil {
		t.Fatal(err)
	}
	v, locked, _ = g.Cell("testing_coverage", "21BIA001")
	if v != "" || locked {
		t.Fatalf("cell after return = (%q, locked=%v), want empty unlocked", v, locked)
	}
}

func TestGridOverride(t *testing.T) {
	g := testGrid(t)
	if err := g.SetAttendance("21BIA002", false); err != nil {
		t.Fatal(err)
	}
	if err := g.Override("testing_coverage", "21BIA002"); err != nil {
		t.Fatal(err)
	}
	if err := g.SetCell("testing_coverage", "21BIA002", "6"); err != nil {
		t.Fatal(err)
	}
	v, locked, _ := g.Cell("testing_coverage", "21BIA002")
	if v != "6" || locked {
		t.Fatalf("overridden cell = (%q, locked=%v), want (6, false)", v, locked)
	}
	// The sibling cell without an override stays locked.
	if err := g.SetCell("test_cases", "21BIA002", "3"); err != ErrCellLocked {
		t.Fatalf("err = %v, want ErrCellLocked", err)
	}
}

func TestGridLoadGeneration(t *testing.T) {
	g := testGrid(t)

	first := g.BeginLoad()
	second := g.BeginLoad()

	// The superseded load is discarded.
	stale := map[string]map[string]string{
		"testing_coverage": {"21BIA001": "4"},
	}
	if err := g.ApplyLoad(first, stale); err != ErrStaleLoad {
		t.Fatalf("err = %v, want ErrStaleLoad", err)
	}
	if v, _, _ := g.Cell("testing_coverage", "21BIA001"); v != "" {
		t.Fatalf("stale load mutated grid: %q", v)
	}

	// The current load lands, normalizing stored values on the way in.
	fresh := map[string]map[string]string{
		"testing_coverage": {"21BIA001": "11"},
		"test_cases":       {"21BIA001": "2.2"},
	}
	if err := g.ApplyLoad(second, fresh); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := g.Cell("testing_coverage", "21BIA001"); v != "10" {
		t.Fatalf("loaded cell = %q, want 10", v)
	}
	if total, _ := g.Total("21BIA001"); total != "12.0" {
		t.Fatalf("total after load = %q, want 12.0", total)
	}
}

func TestGridMarksExport(t *testing.T) {
	g := testGrid(t)
	g.SetCell("testing_coverage", "21BIA001", "9")
	g.SetCell("test_report_submitted", "21BIA001", "y")

	marks := g.Marks()
	if marks["testing_coverage"]["21BIA001"] != "9" {
		t.Fatalf("export missing numeric cell: %v", marks)
	}
	if marks["test_report_submitted"]["21BIA001"] != "Y" {
		t.Fatalf("export missing text cell: %v", marks)
	}
	if _, ok := marks["test_cases"]; ok {
		t.Fatalf("empty cells must be omitted: %v", marks)
	}
}
