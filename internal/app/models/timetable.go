package models

import "time"

// SavedTimetable is a selection of course IDs stored under a UUID.
type SavedTimetable struct {
	ID        string    `json:"id" db:"id"`
	CourseIDs []string  `json:"courseIds" db:"course_ids"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CatalogSnapshot is a persisted copy of an upstream fetch.
type CatalogSnapshot struct {
	ID       int64     `db:"id"`
	Catalog  Catalog   `db:"payload"`
	StoredAt time.Time `db:"stored_at"`
}
