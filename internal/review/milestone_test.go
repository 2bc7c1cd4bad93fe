package review

import "testing"

func TestMilestoneTotalsAreUniform(t *testing.T) {
	for _, m := range All() {
		if got := m.TotalMax(); got != 25 {
			t.Errorf("review %d: total max = %v, want 25", m.Number, got)
		}
	}
}

func TestMilestoneSequence(t *testing.T) {
	for n := FirstReview; n <= LastReview; n++ {
		m, err := Get(n)
		if err != nil {
			t.Fatalf("Get(%d): %v", n, err)
		}
		if m.Number != n {
			t.Fatalf("Get(%d) returned review %d", n, m.Number)
		}
	}
	if _, err := Get(7); err == nil {
		t.Fatal("Get(7) should fail")
	}

	m0, _ := Get(0)
	if m0.Prev() != -1 || m0.Next() != 1 {
		t.Fatalf("mock review navigation = (%d, %d)", m0.Prev(), m0.Next())
	}
	m4, _ := Get(4)
	if m4.Prev() != 3 || m4.Next() != -1 {
		t.Fatalf("review IV navigation = (%d, %d)", m4.Prev(), m4.Next())
	}
}

func TestMilestoneCriteriaLookup(t *testing.T) {
	m, _ := Get(4)
	c, ok := m.Criterion("testing_coverage")
	if !ok || c.Max != 10 || c.Kind != KindNumeric {
		t.Fatalf("testing_coverage = %+v, ok=%v", c, ok)
	}
	c, ok = m.Criterion("test_report_submitted")
	if !ok || c.Kind != KindText || c.Max != 0 {
		t.Fatalf("test_report_submitted = %+v, ok=%v", c, ok)
	}
	if _, ok := m.Criterion("nope"); ok {
		t.Fatal("unknown criterion should not resolve")
	}
}

func TestMilestoneQuestionCodesAreUnique(t *testing.T) {
	for _, m := range All() {
		seen := make(map[string]bool)
		for _, q := range m.Questions {
			if seen[q.Code] {
				t.Errorf("review %d: duplicate question code %s", m.Number, q.Code)
			}
			seen[q.Code] = true
		}
	}
}

func TestIdentifierValidation(t *testing.T) {
	if !ValidGroupID("BIA-01") || ValidGroupID("BIA 01") || ValidGroupID("") {
		t.Fatal("group ID validation broken")
	}
	if !ValidRollNo("21BIA001") || ValidRollNo("21/BIA") {
		t.Fatal("roll number validation broken")
	}
	if !ValidCriteriaID("testing_coverage") || ValidCriteriaID("Testing-Coverage") {
		t.Fatal("criteria ID validation broken")
	}
}

func TestRoman(t *testing.T) {
	if Roman(0) != "Mock" || Roman(3) != "III" || Roman(5) != "V" {
		t.Fatal("roman labels broken")
	}
	if Roman(9) != "9" {
		t.Fatal("out of range roman should fall back to digits")
	}
}

func TestValidNumber(t *testing.T) {
	if !ValidNumber(0) || !ValidNumber(4) || ValidNumber(5) || ValidNumber(-1) {
		t.Fatal("ValidNumber bounds broken")
	}
}

func TestValidResponseValue(t *testing.T) {
	for _, v := range []string{"Y", "N", "NA", "NC", "5", "3.5", "0"} {
		if !ValidResponseValue(v) {
			t.Errorf("ValidResponseValue(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "maybe", "Yes", "na", "5x"} {
		if ValidResponseValue(v) {
			t.Errorf("ValidResponseValue(%q) = true, want false", v)
		}
	}
}
