package controllers

import (
	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
	"github.com/yigit/lecturetable/internal/pkg/timeslot"
)

// timetableResponse flattens a selection into grid rows. Cells hidden under
// a multi-period course are left out, so every row lists only the cells a
// table renderer has to emit.
func timetableResponse(sel *services.Selection, shareLink string) *dto.TimetableResponse {
	t := sel.Timetable

	resp := &dto.TimetableResponse{
		CourseIDs: t.IDs(),
		Courses:   []dto.CourseResponse{},
		Rows:      []dto.GridRow{},
		Extras:    []dto.ExtraRow{},
		Credits:   t.Credits(),
		ShareCode: sel.ShareCode(),
		ShareLink: shareLink,
	}

	for _, c := range t.Selected() {
		course := c
		resp.Courses = append(resp.Courses, dto.FromCourse(&course, helpers.NormalizePlaces(course.Place)))
	}

	for period := timeslot.MinPeriod; period <= t.VisibleRows(); period++ {
		row := dto.GridRow{Period: period, Cells: []dto.GridCell{}}
		for _, day := range timeslot.Days {
			key := domain.Key{Day: day, Period: period}
			cell := t.Cell(key)
			switch cell.Kind {
			case domain.CellCovered:
				continue
			case domain.CellEmpty:
				row.Cells = append(row.Cells, dto.GridCell{Day: day.String(), Period: period, Empty: true})
			case domain.CellHead:
				course, _ := t.Course(cell.CourseID)
				label := domain.LabelFor(&course)
				row.Cells = append(row.Cells, dto.GridCell{
					Day:       day.String(),
					Period:    period,
					CourseID:  course.ID,
					RowSpan:   cell.RowSpan,
					Title:     label.Title,
					Meta:      label.Meta,
					Places:    label.Places,
					PlaceText: label.PlaceText,
					Color:     course.Color.String(),
				})
			}
		}
		resp.Rows = append(resp.Rows, row)
	}

	for _, c := range t.Extras() {
		course := c
		resp.Extras = append(resp.Extras, dto.ExtraRow{
			CourseID: course.ID,
			Label:    domain.ExtraLabel(&course),
			Color:    course.Color.String(),
		})
	}

	for _, s := range sel.Report.Skipped {
		resp.Skipped = append(resp.Skipped, dto.SkippedCourse{ID: s.ID, Reason: s.Reason})
	}

	return resp
}
