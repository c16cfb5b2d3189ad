package dto

import "time"

// AddCourseRequest selects one course.
type AddCourseRequest struct {
	CourseID string `json:"courseId" validate:"required,max=64"`
}

// SaveTimetableRequest stores a selection under a new ID.
type SaveTimetableRequest struct {
	CourseIDs []string `json:"courseIds" validate:"required,min=1,max=64,dive,required,max=64"`
}

// GridCell is one visible cell. Covered cells are omitted from rows.
type GridCell struct {
	Day       string   `json:"day" example:"월"`
	Period    int      `json:"period" example:"1"`
	Empty     bool     `json:"empty,omitempty"`
	CourseID  string   `json:"courseId,omitempty"`
	RowSpan   int      `json:"rowSpan,omitempty"`
	Title     string   `json:"title,omitempty"`
	Meta      string   `json:"meta,omitempty"`
	Places    []string `json:"places,omitempty"`
	PlaceText string   `json:"placeText,omitempty"`
	Color     string   `json:"color,omitempty"`
}

// GridRow is one period across the weekdays.
type GridRow struct {
	Period int        `json:"period"`
	Cells  []GridCell `json:"cells"`
}

// ExtraRow is a full-width row for a course without a weekday slot.
type ExtraRow struct {
	CourseID string `json:"courseId"`
	Label    string `json:"label" example:"현장실습 (미지정)"`
	Color    string `json:"color"`
}

// SkippedCourse is a course a restore could not place.
type SkippedCourse struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// TimetableResponse is the full rendered state of a selection.
type TimetableResponse struct {
	CourseIDs []string         `json:"courseIds"`
	Courses   []CourseResponse `json:"courses"`
	Rows      []GridRow        `json:"rows"`
	Extras    []ExtraRow       `json:"extras"`
	Credits   int              `json:"credits" example:"18"`
	ShareCode string           `json:"shareCode" example:"WyIwMDAxIl0="`
	ShareLink string           `json:"shareLink"`
	Skipped   []SkippedCourse  `json:"skipped,omitempty"`
}

// ShareResponse carries the share code of a selection.
type ShareResponse struct {
	Code string `json:"code"`
	Link string `json:"link"`
}

// ExportResponse points at a stored timetable image.
type ExportResponse struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// SavedTimetableResponse is a stored selection.
type SavedTimetableResponse struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Timetable *TimetableResponse `json:"timetable"`
}
