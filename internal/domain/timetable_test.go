package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

func course(id, name, time string, credits int) models.Course {
	return models.Course{ID: id, Name: name, Time: time, Credits: models.CreditsOf(credits), Professor: "김교수"}
}

func TestTimetable_AddPlacesHeadAndCoveredCells(t *testing.T) {
	tt := NewTimetable()
	require.NoError(t, tt.Add(course("A", "자료구조", "월1~3,수4", 3)))

	head := tt.Cell(Key{Day: timeslot.Monday, Period: 1})
	assert.Equal(t, CellHead, head.Kind)
	assert.Equal(t, 3, head.RowSpan)
	assert.Equal(t, "A", head.CourseID)

	assert.Equal(t, CellCovered, tt.Cell(Key{Day: timeslot.Monday, Period: 2}).Kind)
	assert.Equal(t, CellCovered, tt.Cell(Key{Day: timeslot.Monday, Period: 3}).Kind)
	assert.Equal(t, CellEmpty, tt.Cell(Key{Day: timeslot.Monday, Period: 4}).Kind)

	single := tt.Cell(Key{Day: timeslot.Wednesday, Period: 4})
	assert.Equal(t, CellHead, single.Kind)
	assert.Equal(t, 1, single.RowSpan)

	assert.Equal(t, 3, tt.Credits())
	assert.Equal(t, []string{"A"}, tt.IDs())
}

func TestTimetable_AddRejectsDuplicate(t *testing.T) {
	tt := NewTimetable()
	require.NoError(t, tt.Add(course("A", "자료구조", "월1", 3)))

	err := tt.Add(course("A", "자료구조", "월1", 3))
	assert.ErrorIs(t, err, apperrors.ErrAlreadySelected)
	assert.Equal(t, "이미 선택한 과목이에요!", err.Error())
	assert.Equal(t, 3, tt.Credits())
}

func TestTimetable_AddDetectsConflict(t *testing.T) {
	tt := NewTimetable()
	require.NoError(t, tt.Add(course("A", "자료구조", "월1~3", 3)))

	t.Run("overlap with covered cell", func(t *testing.T) {
		err := tt.Add(course("B", "운영체제", "화1,월3~4", 3))
		require.Error(t, err)

		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.ErrorIs(t, err, apperrors.ErrTimeConflict)
		assert.Equal(t, []string{"A"}, conflict.Conflicting)
		assert.Equal(t, []Key{{Day: timeslot.Monday, Period: 3}}, conflict.Cells)
		assert.Equal(t, "[운영체제] 과목은 다른 과목이랑 시간이 겹쳐요!\n\n[화1,월3~4] 에 추가할 수 없어요!", err.Error())

		// nothing from the rejected course was placed
		assert.Equal(t, CellEmpty, tt.Cell(Key{Day: timeslot.Tuesday, Period: 1}).Kind)
		assert.False(t, tt.Has("B"))
		assert.Equal(t, 3, tt.Credits())
	})

	t.Run("adjacent is fine", func(t *testing.T) {
		require.NoError(t, tt.Add(course("C", "알고리즘", "월4~5", 2)))
		assert.Equal(t, 5, tt.Credits())
	})
}

func TestTimetable_AddRejectsSelfOverlapAndBadSlots(t *testing.T) {
	tt := NewTimetable()
	assert.ErrorIs(t, tt.Add(course("A", "x", "월1~3,월2", 3)), apperrors.ErrInvalidTimeSlot)
	assert.ErrorIs(t, tt.Add(course("B", "y", "토1", 3)), apperrors.ErrInvalidTimeSlot)
	assert.Equal(t, 0, tt.Len())
}

func TestTimetable_OffGridCourses(t *testing.T) {
	tt := NewTimetable()
	require.NoError(t, tt.Add(course("S", "봉사", "일1~8", 1)))
	require.NoError(t, tt.Add(course("O", "온라인", "", 2)))

	assert.Len(t, tt.Extras(), 2)
	assert.Equal(t, 3, tt.Credits())
	assert.Equal(t, MinVisibleRows, tt.VisibleRows())

	require.NoError(t, tt.Remove("S"))
	assert.Len(t, tt.Extras(), 1)
	assert.Equal(t, 2, tt.Credits())
}

func TestTimetable_RemoveFreesCells(t *testing.T) {
	tt := NewTimetable()
	require.NoError(t, tt.Add(course("A", "자료구조", "월1~3,금10~12", 3)))
	assert.Equal(t, 12, tt.VisibleRows())

	require.NoError(t, tt.Remove("A"))
	for p := 1; p <= 3; p++ {
		assert.Equal(t, CellEmpty, tt.Cell(Key{Day: timeslot.Monday, Period: p}).Kind)
	}
	assert.Equal(t, 0, tt.Credits())
	assert.Equal(t, MinVisibleRows, tt.VisibleRows())

	assert.ErrorIs(t, tt.Remove("A"), apperrors.ErrNotSelected)

	// the freed slot accepts a new course
	require.NoError(t, tt.Add(course("B", "운영체제", "월2", 3)))
}

func TestTimetable_Restore(t *testing.T) {
	catalog := map[string]models.Course{
		"A": course("A", "자료구조", "월1~2", 3),
		"B": course("B", "운영체제", "월2", 3),
		"C": course("C", "알고리즘", "화1", 2),
	}
	lookup := func(id string) (models.Course, bool) {
		c, ok := catalog[id]
		return c, ok
	}

	tt := NewTimetable()
	report := tt.Restore([]string{"A", "B", "missing", "C", "A"}, lookup)

	assert.Equal(t, []string{"A", "C"}, report.Added)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, "B", report.Skipped[0].ID)
	assert.Equal(t, "missing", report.Skipped[1].ID)
	assert.Equal(t, apperrors.ErrCourseNotFound.Error(), report.Skipped[1].Reason)
	assert.Equal(t, "A", report.Skipped[2].ID)
	assert.Equal(t, 5, tt.Credits())
}

func TestLabels(t *testing.T) {
	c := models.Course{ID: "A1", Name: "자료구조", Professor: "", Place: "공학관 301호 강의실, 미지정"}
	label := LabelFor(&c)
	assert.Equal(t, "자료구조", label.Title)
	assert.Equal(t, "A1·미지정", label.Meta)
	assert.Equal(t, []string{"공학관 301호", "미지정"}, label.Places)
	assert.Equal(t, "공학관 301호, 미지정", label.PlaceText)

	unassigned := models.Course{Place: "미지정"}
	assert.Equal(t, "", LabelFor(&unassigned).PlaceText)

	assert.Equal(t, "자료구조 (미지정)", ExtraLabel(&c))
	assert.Equal(t, "월3", Key{Day: timeslot.Monday, Period: 3}.String())
}
