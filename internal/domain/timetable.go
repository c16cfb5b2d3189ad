package domain

import (
	"fmt"
	"strings"

	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

// MinVisibleRows is the number of period rows always shown.
const MinVisibleRows = 7

// Key addresses one grid cell, e.g. 월3.
type Key struct {
	Day    timeslot.Weekday
	Period int
}

func (k Key) String() string {
	return fmt.Sprintf("%s%d", k.Day, k.Period)
}

// CellKind tells what occupies a cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	// CellHead holds the course and spans RowSpan periods downwards.
	CellHead
	// CellCovered is hidden under a head cell above it.
	CellCovered
)

// Cell is the state of one grid position.
type Cell struct {
	Kind     CellKind
	CourseID string
	RowSpan  int
}

// CellLabel is the text drawn in a head cell.
type CellLabel struct {
	Title     string
	Meta      string
	Places    []string
	PlaceText string
}

// LabelFor builds the head cell text for a course.
func LabelFor(c *models.Course) CellLabel {
	places := helpers.NormalizePlaces(c.Place)
	return CellLabel{
		Title:     c.Name,
		Meta:      c.ID + "·" + c.ProfessorLabel(),
		Places:    places,
		PlaceText: helpers.PlaceText(places),
	}
}

// ExtraLabel is the full-width row text for an off-grid course.
func ExtraLabel(c *models.Course) string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ProfessorLabel())
}

// ConflictError is returned when a course overlaps courses already placed.
type ConflictError struct {
	Course      models.Course
	Cells       []Key
	Conflicting []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("[%s] 과목은 다른 과목이랑 시간이 겹쳐요!\n\n[%s] 에 추가할 수 없어요!", e.Course.Name, e.Course.Time)
}

func (e *ConflictError) Unwrap() error {
	return apperrors.ErrTimeConflict
}

// Timetable is a weekly grid of selected courses. The zero value is not
// usable; call NewTimetable.
type Timetable struct {
	cells    map[Key]Cell
	selected []models.Course
	extras   []models.Course
	credits  int
}

// NewTimetable returns an empty grid.
func NewTimetable() *Timetable {
	return &Timetable{cells: make(map[Key]Cell)}
}

// Add places a course. The grid is left untouched on any error.
func (t *Timetable) Add(course models.Course) error {
	if t.Has(course.ID) {
		return apperrors.ErrAlreadySelected
	}

	sched, err := timeslot.Parse(course.Time)
	if err != nil {
		return err
	}

	if sched.OffGrid {
		t.selected = append(t.selected, course)
		t.extras = append(t.extras, course)
		t.credits += course.Credits.Value
		return nil
	}

	var blocked []Key
	var owners []string
	claimed := make(map[Key]bool)
	for _, slot := range sched.Slots {
		for p := slot.Start; p <= slot.End; p++ {
			k := Key{Day: slot.Day, Period: p}
			if claimed[k] {
				return fmt.Errorf("%w: %s repeats %s", apperrors.ErrInvalidTimeSlot, course.Time, k)
			}
			claimed[k] = true
			if cell := t.cells[k]; cell.Kind != CellEmpty {
				blocked = append(blocked, k)
				owners = appendUnique(owners, cell.CourseID)
			}
		}
	}
	if len(blocked) > 0 {
		return &ConflictError{Course: course, Cells: blocked, Conflicting: owners}
	}

	for _, slot := range sched.Slots {
		t.cells[Key{Day: slot.Day, Period: slot.Start}] = Cell{Kind: CellHead, CourseID: course.ID, RowSpan: slot.Span()}
		for p := slot.Start + 1; p <= slot.End; p++ {
			t.cells[Key{Day: slot.Day, Period: p}] = Cell{Kind: CellCovered, CourseID: course.ID}
		}
	}
	t.selected = append(t.selected, course)
	t.credits += course.Credits.Value
	return nil
}

// Remove takes a course off the grid and frees its cells.
func (t *Timetable) Remove(id string) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return apperrors.ErrNotSelected
	}
	course := t.selected[idx]

	for k, cell := range t.cells {
		if cell.CourseID == id {
			delete(t.cells, k)
		}
	}
	for i := range t.extras {
		if t.extras[i].ID == id {
			t.extras = append(t.extras[:i], t.extras[i+1:]...)
			break
		}
	}
	t.selected = append(t.selected[:idx], t.selected[idx+1:]...)
	t.credits -= course.Credits.Value
	return nil
}

// Has reports whether the course is selected.
func (t *Timetable) Has(id string) bool {
	return t.indexOf(id) >= 0
}

func (t *Timetable) indexOf(id string) int {
	for i := range t.selected {
		if t.selected[i].ID == id {
			return i
		}
	}
	return -1
}

// Course returns a selected course by ID.
func (t *Timetable) Course(id string) (models.Course, bool) {
	if i := t.indexOf(id); i >= 0 {
		return t.selected[i], true
	}
	return models.Course{}, false
}

// Cell returns the state at a grid position.
func (t *Timetable) Cell(k Key) Cell {
	return t.cells[k]
}

// Selected returns the selected courses in insertion order.
func (t *Timetable) Selected() []models.Course {
	out := make([]models.Course, len(t.selected))
	copy(out, t.selected)
	return out
}

// Extras returns off-grid courses in insertion order.
func (t *Timetable) Extras() []models.Course {
	out := make([]models.Course, len(t.extras))
	copy(out, t.extras)
	return out
}

// IDs returns the selected course IDs in insertion order.
func (t *Timetable) IDs() []string {
	ids := make([]string, len(t.selected))
	for i := range t.selected {
		ids[i] = t.selected[i].ID
	}
	return ids
}

// Credits is the sum of credits over all selected courses.
func (t *Timetable) Credits() int {
	return t.credits
}

// Len is the number of selected courses.
func (t *Timetable) Len() int {
	return len(t.selected)
}

// VisibleRows is the number of period rows to draw: trailing empty rows
// past MinVisibleRows are hidden.
func (t *Timetable) VisibleRows() int {
	rows := MinVisibleRows
	for k := range t.cells {
		if k.Period > rows {
			rows = k.Period
		}
	}
	return rows
}

// Skipped is a course that could not be restored.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// RestoreReport lists what a Restore call did.
type RestoreReport struct {
	Added   []string  `json:"added"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Restore adds courses by ID in order, skipping unknown, duplicate and
// conflicting ones.
func (t *Timetable) Restore(ids []string, lookup func(id string) (models.Course, bool)) RestoreReport {
	report := RestoreReport{Added: []string{}}
	for _, id := range ids {
		course, ok := lookup(id)
		if !ok {
			report.Skipped = append(report.Skipped, Skipped{ID: id, Reason: apperrors.ErrCourseNotFound.Error()})
			continue
		}
		if err := t.Add(course); err != nil {
			report.Skipped = append(report.Skipped, Skipped{ID: id, Reason: strings.TrimSpace(err.Error())})
			continue
		}
		report.Added = append(report.Added, id)
	}
	return report
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
