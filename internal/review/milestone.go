package review

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind distinguishes scored numeric criteria from single-letter text criteria.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Criterion is a single rubric line item for a milestone.
// Max is 0 for text-kind (non-scored) criteria.
type Criterion struct {
	ID    string  `json:"criteria_id"`
	Label string  `json:"criteria_text"`
	Max   float64 `json:"max_marks"`
	Kind  Kind    `json:"input_kind"`
}

// Question is one checklist question answered Y/N/NA/NC (or a number).
type Question struct {
	Code    string `json:"question_code"`
	Section string `json:"section"`
	Text    string `json:"question_text"`
}

// Milestone is one parameterized review definition. All five reviews share
// this shape; the per-review duplication of the legacy sheets collapses here.
type Milestone struct {
	Number         int        `json:"review_number"`
	Roman          string     `json:"roman"`
	Title          string     `json:"title"`
	ChecklistTitle string     `json:"checklist_title"`
	Criteria       []Criterion `json:"criteria"`
	Questions      []Question  `json:"questions"`
	Deliverables   []string    `json:"deliverables"`
}

// TotalMax returns the maximum achievable total, summing numeric criteria only.
func (m Milestone) TotalMax() float64 {
	var sum float64
	for _, c := range m.Criteria {
		if c.Kind == KindNumeric {
			sum += c.Max
		}
	}
	return sum
}

// Criterion looks up a rubric line by ID.
func (m Milestone) Criterion(id string) (Criterion, bool) {
	for _, c := range m.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Prev returns the preceding review number, or -1 at the start of the sequence.
// The mock review (0) sits before review 1.
func (m Milestone) Prev() int {
	if m.Number <= 0 {
		return -1
	}
	return m.Number - 1
}

// Next returns the following review number, or -1 after the last review.
func (m Milestone) Next() int {
	if m.Number >= LastReview {
		return -1
	}
	return m.Number + 1
}

const (
	// FirstReview..LastReview bound the milestone sequence (0 is the mock review).
	FirstReview = 0
	LastReview  = 4
	// FinalSheetNumber is the pseudo review number used for the consolidated
	// summary sheet ("review 5" in the PDF endpoint).
	FinalSheetNumber = 5
)

// ValidNumber reports whether n names a real milestone (0-4).
func ValidNumber(n int) bool {
	return n >= FirstReview && n <= LastReview
}

// Get returns the milestone definition for a review number.
func Get(n int) (Milestone, error) {
	for _, m := range milestones {
		if m.Number == n {
			return m, nil
		}
	}
	return Milestone{}, fmt.Errorf("unknown review number %d", n)
}

// All returns every milestone definition in sequence order.
func All() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// Roman numeral labels used in sheet headers and PDF titles.
var romans = map[int]string{0: "Mock", 1: "I", 2: "II", 3: "III", 4: "IV", 5: "V"}

// Roman returns the display numeral for a review number.
func Roman(n int) string {
	if r, ok := romans[n]; ok {
		return r
	}
	return fmt.Sprintf("%d", n)
}

var (
	groupIDPattern  = regexp.MustCompile(`^[A-Za-z0-9\-]{1,20}$`)
	rollNoPattern   = regexp.MustCompile(`^[A-Za-z0-9]{1,15}$`)
	criteriaPattern = regexp.MustCompile(`^[a-z_]{1,50}$`)
)

// ValidGroupID reports whether the group identifier matches the expected
// format (alphanumeric plus hyphens, e.g. "BIA-01").
func ValidGroupID(id string) bool {
	return groupIDPattern.MatchString(id)
}

// ValidRollNo reports whether a roll number is well formed.
func ValidRollNo(roll string) bool {
	return rollNoPattern.MatchString(roll)
}

// ValidCriteriaID reports whether a criteria identifier is well formed.
func ValidCriteriaID(id string) bool {
	return criteriaPattern.MatchString(id)
}

// ValidResponseValue reports whether v is an acceptable questionnaire
// answer: one of the choice letters or a plain number.
func ValidResponseValue(v string) bool {
	switch v {
	case "Y", "N", "NA", "NC":
		return true
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// presentationQuality and teamContribution recur across rubrics.
func presentationQuality(max float64) Criterion {
	return Criterion{ID: "presentation_quality", Label: "Presentation quality and communication", Max: max, Kind: KindNumeric}
}

func teamContribution(max float64) Criterion {
	return Criterion{ID: "team_contribution", Label: "Individual contribution and participation", Max: max, Kind: KindNumeric}
}

func designCriteria() []Criterion {
	return []Criterion{
		{ID: "architecture_design", Label: "System architecture design", Max: 6, Kind: KindNumeric},
		{ID: "module_design", Label: "Module level design and interfaces", Max: 5, Kind: KindNumeric},
		{ID: "database_design", Label: "Database / data model design", Max: 4, Kind: KindNumeric},
		{ID: "ui_design", Label: "UI wireframes and user flow", Max: 4, Kind: KindNumeric},
		presentationQuality(3),
		teamContribution(3),
		{ID: "design_doc_submitted", Label: "Design document submitted (Y/N)", Max: 0, Kind: KindText},
	}
}

func designQuestions() []Question {
	return []Question{
		{Code: "que_2.1.1", Section: "Architecture", Text: "Is the overall system architecture documented and agreed by the guide?"},
		{Code: "que_2.1.2", Section: "Architecture", Text: "Are external interfaces and dependencies identified?"},
		{Code: "que_2.2.1", Section: "Detailed Design", Text: "Are all modules decomposed with clear responsibilities?"},
		{Code: "que_2.2.2", Section: "Detailed Design", Text: "Is the database schema normalized and reviewed?"},
		{Code: "que_2.3.1", Section: "Planning", Text: "Is the implementation plan updated per the finalized design?"},
	}
}

// milestones is the static rubric configuration for the portal. Marks
// validation, grids, PDFs and the catalog endpoint all derive from it.
var milestones = []Milestone{
	{
		Number:         0,
		Roman:          "Mock",
		Title:          "Mock Review",
		ChecklistTitle: "REVIEW – Mock CHECKLIST : DESIGN",
		Criteria:       designCriteria(),
		Questions:      designQuestions(),
		Deliverables: []string{
			"Draft design document",
			"Mock presentation slides",
		},
	},
	{
		Number:         1,
		Roman:          "I",
		Title:          "Review I",
		ChecklistTitle: "REVIEW – I CHECKLIST : FINALIZATION OF SCOPE",
		Criteria: []Criterion{
			{ID: "problem_identification", Label: "Problem identification and motivation", Max: 4, Kind: KindNumeric},
			{ID: "literature_review", Label: "Literature review and study of prior work", Max: 4, Kind: KindNumeric},
			{ID: "scope_objectives", Label: "Clarity of scope and objectives", Max: 6, Kind: KindNumeric},
			{ID: "feasibility_analysis", Label: "Feasibility and resource analysis", Max: 4, Kind: KindNumeric},
			presentationQuality(4),
			teamContribution(3),
			{ID: "ppt_submitted", Label: "Presentation slides submitted (Y/N)", Max: 0, Kind: KindText},
		},
		Questions: []Question{
			{Code: "que_1.1.1", Section: "Scope", Text: "Is the problem statement finalized and signed off by the guide?"},
			{Code: "que_1.1.2", Section: "Scope", Text: "Are the project objectives measurable?"},
			{Code: "que_1.2.1", Section: "Literature", Text: "Has existing work in the selected domain been surveyed?"},
			{Code: "que_1.2.2", Section: "Literature", Text: "Are references and citations recorded?"},
			{Code: "que_1.3.1", Section: "Planning", Text: "Is a milestone-wise project plan prepared?"},
			{Code: "que_1.3.2", Section: "Planning", Text: "Is the sponsor/mentor (if any) identified with contact details?"},
		},
		Deliverables: []string{
			"Finalized project scope document",
			"Presentation slides",
			"Project plan with milestone dates",
		},
	},
	{
		Number:         2,
		Roman:          "II",
		Title:          "Review II",
		ChecklistTitle: "REVIEW – II CHECKLIST : DESIGN",
		Criteria:       designCriteria(),
		Questions:      designQuestions(),
		Deliverables: []string{
			"High level and detailed design document",
			"Database schema diagram",
			"UI wireframes",
		},
	},
	{
		Number:         3,
		Roman:          "III",
		Title:          "Review III",
		ChecklistTitle: "REVIEW – III CHECKLIST : IMPLEMENTATION",
		Criteria: []Criterion{
			{ID: "implementation_progress", Label: "Implementation progress against plan", Max: 8, Kind: KindNumeric},
			{ID: "code_quality", Label: "Code quality and repository hygiene", Max: 5, Kind: KindNumeric},
			{ID: "module_integration", Label: "Integration of completed modules", Max: 4, Kind: KindNumeric},
			{ID: "working_demo", Label: "Working demonstration of completed features", Max: 4, Kind: KindNumeric},
			teamContribution(4),
			{ID: "repo_shared", Label: "Repository link shared (Y/N)", Max: 0, Kind: KindText},
		},
		Questions: []Question{
			{Code: "que_3.1.1", Section: "Implementation", Text: "Are the modules planned for this review implemented?"},
			{Code: "que_3.1.2", Section: "Implementation", Text: "Is the source repository up to date with meaningful history?"},
			{Code: "que_3.2.1", Section: "Integration", Text: "Do the implemented modules work together end to end?"},
			{Code: "que_3.3.1", Section: "Demonstration", Text: "Was a live demonstration shown during the review?"},
		},
		Deliverables: []string{
			"Working build of implemented modules",
			"Source repository access for the panel",
			"Updated project plan with remaining work",
		},
	},
	{
		Number:         4,
		Roman:          "IV",
		Title:          "Review IV",
		ChecklistTitle: "REVIEW – IV CHECKLIST : TESTING",
		Criteria: []Criterion{
			{ID: "testing_coverage", Label: "Testing coverage of implemented modules", Max: 10, Kind: KindNumeric},
			{ID: "test_cases", Label: "Quality of test cases and recorded results", Max: 7, Kind: KindNumeric},
			{ID: "defect_resolution", Label: "Defect tracking and resolution", Max: 4, Kind: KindNumeric},
			{ID: "final_demo", Label: "Final demonstration", Max: 4, Kind: KindNumeric},
			{ID: "test_report_submitted", Label: "Test report submitted (Y/N)", Max: 0, Kind: KindText},
		},
		Questions: []Question{
			{Code: "que_4.1.1", Section: "Testing", Text: "Is there a documented test plan covering all modules?"},
			{Code: "que_4.1.2", Section: "Testing", Text: "Are test results recorded with pass/fail status?"},
			{Code: "que_4.2.1", Section: "Defects", Text: "Are reported defects tracked to closure?"},
			{Code: "que_4.3.1", Section: "Completion", Text: "Is the project ready for final submission?"},
		},
		Deliverables: []string{
			"Test plan and test case document",
			"Defect log with resolution status",
			"Final project report draft",
		},
	},
}
