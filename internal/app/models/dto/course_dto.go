package dto

import "github.com/yigit/lecturetable/internal/app/models"

// CourseResponse is one row of the course browser.
type CourseResponse struct {
	ID         string   `json:"id" example:"20231-0001"`
	Name       string   `json:"name" example:"자료구조"`
	Department string   `json:"department" example:"컴퓨터공학부"`
	Grade      int      `json:"grade" example:"2"`
	Time       string   `json:"time" example:"월1~3"`
	Credits    int      `json:"credits" example:"3"`
	Professor  string   `json:"professor" example:"홍길동"`
	Notice     string   `json:"notice,omitempty"`
	Type       string   `json:"type,omitempty" example:"전공필수"`
	Places     []string `json:"places,omitempty"`
	Color      string   `json:"color" example:"hsl(210, 93%, 93%)"`
}

// CourseListResponse is a page of matching courses.
type CourseListResponse struct {
	Items      []CourseResponse `json:"items"`
	Pagination PaginationInfo   `json:"pagination"`
	Query      string           `json:"query,omitempty"`
	// Message is the empty-result notice, set only when nothing matched.
	Message string `json:"message,omitempty"`
}

// CatalogInfoResponse describes the loaded catalog.
type CatalogInfoResponse struct {
	FetchedAt   string `json:"fetchedAt" example:"2025-03-01 09:00"`
	CourseCount int    `json:"courseCount" example:"1830"`
	Departments int    `json:"departments" example:"42"`
	FromCache   bool   `json:"fromCache"`
}

// CourseSearchQuery binds the course browser filters. Multi-valued
// filters accept repeated parameters.
type CourseSearchQuery struct {
	Department string   `form:"department"`
	Grades     []string `form:"grade" validate:"max=8"`
	Types      []string `form:"type" validate:"max=10"`
	Days       []string `form:"day" validate:"max=6,dive,oneof=월 화 수 목 금 토 일"`
	Credits    []string `form:"credit" validate:"max=10"`
	Query      string   `form:"q" validate:"max=100"`
}

// FromCourse converts a catalog course to its response form.
func FromCourse(c *models.Course, places []string) CourseResponse {
	return CourseResponse{
		ID:         c.ID,
		Name:       c.Name,
		Department: c.Department,
		Grade:      int(c.Grade),
		Time:       c.Time,
		Credits:    c.Credits.Value,
		Professor:  c.ProfessorLabel(),
		Notice:     c.Notice,
		Type:       c.Type,
		Places:     places,
		Color:      c.Color.String(),
	}
}
