package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("lecture api unavailable")
	ErrCatalogEmpty        = errors.New("course catalog not loaded")
)

// Course errors
var (
	ErrCourseNotFound = errors.New("course not found")
)

// Timetable errors
var (
	ErrAlreadySelected   = errors.New("이미 선택한 과목이에요!")
	ErrNotSelected       = errors.New("course is not in the timetable")
	ErrTimeConflict      = errors.New("time conflict")
	ErrInvalidTimeSlot   = errors.New("invalid time slot")
	ErrInvalidShareCode  = errors.New("invalid share code")
	ErrTimetableNotFound = errors.New("saved timetable not found")
)

// Export errors
var (
	ErrExportFailed = errors.New("이미지 변환에 실패했어요. 잠시 후 다시 시도해 주세요.")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
