package review

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrUnknownCell  = errors.New("unknown grid cell")
	ErrCellLocked   = errors.New("cell is locked for an absent student")
	ErrUnknownRoll  = errors.New("roll number not in grid")
	ErrStaleLoad    = errors.New("stale load generation")
)

// AbsentNumeric and AbsentText are the values forced into cells when a
// student is marked absent.
const (
	AbsentNumeric = "0"
	AbsentText    = "N"
)

// ValidateNumeric normalizes a raw mark input against a criterion maximum:
// the value is rounded to the nearest 0.5, clamped to [0, max], and returned
// in canonical string form. Malformed input normalizes to the empty string.
// The function is idempotent: feeding its output back in returns it unchanged.
func ValidateNumeric(raw string, max float64) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	v = math.Round(v*2) / 2
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidateText normalizes a text-kind cell to a single upper-cased letter.
func ValidateText(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	r := []rune(s)[0]
	if !unicode.IsLetter(r) {
		return ""
	}
	return strings.ToUpper(string(r))
}

// FormatTotal renders a computed total with one decimal place.
func FormatTotal(t float64) string {
	return strconv.FormatFloat(t, 'f', 1, 64)
}

// Student is one column of a marks grid.
type Student struct {
	RollNo  string
	Name    string
	Present bool
}

type cell struct {
	value      string
	locked     bool
	overridden bool
}

// Grid holds the in-memory state of one review marks sheet: cell values,
// absence locks, per-student totals and the load generation counter. All
// mutations flow through it so clamping and recomputation cannot be skipped.
// Grid is not safe for concurrent use.
type Grid struct {
	milestone  Milestone
	students   []Student
	cells      map[string]map[string]*cell // criteria ID -> roll no
	totals     map[string]string
	generation uint64
}

// NewGrid builds an empty grid for a milestone. Students flagged absent get
// their cells forced and locked immediately.
func NewGrid(m Milestone, students []Student) *Grid {
	g := &Grid{
		milestone: m,
		students:  append([]Student(nil), students...),
		cells:     make(map[string]map[string]*cell, len(m.Criteria)),
		totals:    make(map[string]string, len(students)),
	}
	for _, c := range m.Criteria {
		row := make(map[string]*cell, len(students))
		for _, s := range students {
			row[s.RollNo] = &cell{}
		}
		g.cells[c.ID] = row
	}
	for _, s := range students {
		if !s.Present {
			g.forceAbsent(s.RollNo)
		}
	}
	g.recompute()
	return g
}

// Milestone returns the rubric this grid is bound to.
func (g *Grid) Milestone() Milestone { return g.milestone }

// Students returns the grid columns in order.
func (g *Grid) Students() []Student {
	return append([]Student(nil), g.students...)
}

// Cell returns the current value of a cell and whether it is locked.
func (g *Grid) Cell(criteriaID, rollNo string) (value string, locked bool, err error) {
	c, err := g.cell(criteriaID, rollNo)
	if err != nil {
		return "", false, err
	}
	return c.value, c.locked && !c.overridden, nil
}

// SetCell applies evaluator input to a cell. Numeric input is rounded and
// clamped against the criterion maximum; text input is normalized to one
// upper-cased letter. Cells locked by absence reject input until Override.
func (g *Grid) SetCell(criteriaID, rollNo, raw string) error {
	crit, ok := g.milestone.Criterion(criteriaID)
	if !ok {
		return ErrUnknownCell
	}
	c, err := g.cell(criteriaID, rollNo)
	if err != nil {
		return err
	}
	if c.locked && !c.overridden {
		return ErrCellLocked
	}
	if crit.Kind == KindNumeric {
		c.value = ValidateNumeric(raw, crit.Max)
	} else {
		c.value = ValidateText(raw)
	}
	g.recompute()
	return nil
}

// Override unlocks one absence-locked cell so an evaluator can enter a value
// for an absent student. The unlock is session-local state: it is not
// persisted and a fresh grid reapplies the lock.
func (g *Grid) Override(criteriaID, rollNo string) error {
	c, err := g.cell(criteriaID, rollNo)
	if err != nil {
		return err
	}
	if c.locked {
		c.overridden = true
	}
	return nil
}

// SetAttendance toggles a student's presence. Marking absent forces every
// cell to its absence value and locks it; marking present again clears the
// cells back to empty editable state rather than restoring prior values.
func (g *Grid) SetAttendance(rollNo string, present bool) error {
	idx := -1
	for i, s := range g.students {
		if s.RollNo == rollNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownRoll
	}
	if g.students[idx].Present == present {
		return nil
	}
	g.students[idx].Present = present
	if present {
		for _, row := range g.cells {
			c := row[rollNo]
			c.value = ""
			c.locked = false
			c.overridden = false
		}
	} else {
		g.forceAbsent(rollNo)
	}
	g.recompute()
	return nil
}

// Total returns the current computed total for a student.
func (g *Grid) Total(rollNo string) (string, error) {
	t, ok := g.totals[rollNo]
	if !ok {
		return "", ErrUnknownRoll
	}
	return t, nil
}

// Totals returns the computed totals keyed by roll number.
func (g *Grid) Totals() map[string]string {
	out := make(map[string]string, len(g.totals))
	for k, v := range g.totals {
		out[k] = v
	}
	return out
}

// BeginLoad starts an asynchronous marks load and returns a generation
// token. An ApplyLoad carrying a stale token is discarded, so responses from
// superseded group switches can never overwrite the current grid.
func (g *Grid) BeginLoad() uint64 {
	g.generation++
	return g.generation
}

// ApplyLoad populates the grid with stored marks fetched under the given
// generation token. Stored values pass through the same normalization as
// live input. Locked cells of absent students keep their forced values
// unless the stored row explicitly carries one.
func (g *Grid) ApplyLoad(token uint64, marks map[string]map[string]string) error {
	if token != g.generation {
		return ErrStaleLoad
	}
	for criteriaID, byRoll := range marks {
		crit, ok := g.milestone.Criterion(criteriaID)
		if !ok {
			continue
		}
		row, ok := g.cells[criteriaID]
		if !ok {
			continue
		}
		for rollNo, raw := range byRoll {
			c, ok := row[rollNo]
			if !ok {
				continue
			}
			if crit.Kind == KindNumeric {
				c.value = ValidateNumeric(raw, crit.Max)
			} else {
				c.value = ValidateText(raw)
			}
		}
	}
	g.recompute()
	return nil
}

// Marks exports the current cell values keyed by criteria ID then roll
// number. Empty cells are omitted.
func (g *Grid) Marks() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for criteriaID, row := range g.cells {
		for rollNo, c := range row {
			if c.value == "" {
				continue
			}
			if out[criteriaID] == nil {
				out[criteriaID] = make(map[string]string)
			}
			out[criteriaID][rollNo] = c.value
		}
	}
	return out
}

func (g *Grid) cell(criteriaID, rollNo string) (*cell, error) {
	row, ok := g.cells[criteriaID]
	if !ok {
		return nil, ErrUnknownCell
	}
	c, ok := row[rollNo]
	if !ok {
		return nil, ErrUnknownRoll
	}
	return c, nil
}

func (g *Grid) forceAbsent(rollNo string) {
	for criteriaID, row := range g.cells {
		crit, _ := g.milestone.Criterion(criteriaID)
		c := row[rollNo]
		if crit.Kind == KindNumeric {
			c.value = AbsentNumeric
		} else {
			c.value = AbsentText
		}
		c.locked = true
		c.overridden = false
	}
}

// recompute rebuilds every student total from scratch. Totals sum numeric
// cells only; unparsable or empty cells contribute nothing.
func (g *Grid) recompute() {
	for _, s := range g.students {
		var sum float64
		for _, crit := range g.milestone.Criteria {
			if crit.Kind != KindNumeric {
				continue
			}
			c := g.cells[crit.ID][s.RollNo]
			if c.value == "" {
				continue
			}
			if v, err := strconv.ParseFloat(c.value, 64); err == nil {
				sum += v
			}
		}
		g.totals[s.RollNo] = FormatTotal(sum)
	}
}
