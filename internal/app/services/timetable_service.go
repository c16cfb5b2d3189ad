package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/app/repositories"
	"github.com/yigit/lecturetable/internal/domain"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/filestorage"
	"github.com/yigit/lecturetable/internal/pkg/render"
	"github.com/yigit/lecturetable/internal/pkg/sharecode"
)

// CourseLookup resolves course IDs against the catalog.
type CourseLookup interface {
	Lookup(id string) (models.Course, bool)
	Loaded() bool
}

// Selection is a timetable rebuilt from a list of course IDs.
type Selection struct {
	Timetable *domain.Timetable
	Report    domain.RestoreReport
}

// ShareCode encodes the selection's course IDs.
func (s *Selection) ShareCode() string {
	return sharecode.Encode(s.Timetable.IDs())
}

// TimetableService builds, edits and exports course selections. The
// selection itself lives with the client as a share code, so every call
// starts by rebuilding it.
type TimetableService struct {
	catalog      CourseLookup
	saved        repositories.SavedTimetableRepository
	storage      filestorage.FileStorage
	shareBaseURL string
	logger       zerolog.Logger

	renderMu sync.Mutex
	renderer *render.Renderer
}

// NewTimetableService creates a new timetable service instance
func NewTimetableService(
	catalog CourseLookup,
	saved repositories.SavedTimetableRepository,
	storage filestorage.FileStorage,
	renderer *render.Renderer,
	shareBaseURL string,
	logger zerolog.Logger,
) *TimetableService {
	return &TimetableService{
		catalog:      catalog,
		saved:        saved,
		storage:      storage,
		renderer:     renderer,
		shareBaseURL: shareBaseURL,
		logger:       logger,
	}
}

// Build places the given courses in order. Unknown, duplicate and
// conflicting IDs are skipped and reported.
func (s *TimetableService) Build(ids []string) (*Selection, error) {
	if len(ids) > 0 && !s.catalog.Loaded() {
		return nil, apperrors.ErrCatalogEmpty
	}
	t := domain.NewTimetable()
	report := t.Restore(ids, s.catalog.Lookup)
	for _, skip := range report.Skipped {
		s.logger.Debug().Str("courseId", skip.ID).Str("reason", skip.Reason).Msg("Skipped course while restoring timetable")
	}
	return &Selection{Timetable: t, Report: report}, nil
}

// Restore decodes a share code and rebuilds its timetable. An empty code
// or the encoded empty list yields an empty timetable.
func (s *TimetableService) Restore(code string) (*Selection, error) {
	if strings.TrimSpace(code) == "" || sharecode.IsEmpty(code) {
		return s.Build(nil)
	}
	ids, err := sharecode.Decode(code)
	if err != nil {
		return nil, err
	}
	return s.Build(ids)
}

// Add rebuilds the selection and adds one more course to it. Errors from
// placing the new course are returned as is; the rebuilt selection is
// still returned alongside so callers can show the unchanged grid.
func (s *TimetableService) Add(ids []string, courseID string) (*Selection, error) {
	sel, err := s.Build(ids)
	if err != nil {
		return nil, err
	}

	course, ok := s.catalog.Lookup(courseID)
	if !ok {
		if !s.catalog.Loaded() {
			return sel, apperrors.ErrCatalogEmpty
		}
		return sel, apperrors.ErrCourseNotFound
	}

	if err := sel.Timetable.Add(course); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info().Str("courseId", courseID).Strs("conflicting", conflict.Conflicting).Msg("Course rejected by time conflict")
		}
		return sel, err
	}
	return sel, nil
}

// Remove rebuilds the selection without one course.
func (s *TimetableService) Remove(ids []string, courseID string) (*Selection, error) {
	sel, err := s.Build(ids)
	if err != nil {
		return nil, err
	}
	if err := sel.Timetable.Remove(courseID); err != nil {
		return sel, err
	}
	return sel, nil
}

// ShareLink builds the public link that restores the selection.
func (s *TimetableService) ShareLink(t *domain.Timetable) string {
	return sharecode.Link(s.shareBaseURL, t.IDs())
}

// RenderPNG draws the timetable. Failures are reported as ErrExportFailed.
func (s *TimetableService) RenderPNG(t *domain.Timetable) ([]byte, error) {
	var buf bytes.Buffer

	s.renderMu.Lock()
	err := s.renderer.WritePNG(&buf, t)
	s.renderMu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render timetable image")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

// RenderXLSX writes the timetable as a spreadsheet.
func (s *TimetableService) RenderXLSX(t *domain.Timetable) ([]byte, error) {
	var buf bytes.Buffer
	if err := render.WriteXLSX(&buf, t); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render timetable spreadsheet")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

// StoreExport renders the PNG and keeps it in export storage.
func (s *TimetableService) StoreExport(t *domain.Timetable) (*filestorage.FileInfo, error) {
	data, err := s.RenderPNG(t)
	if err != nil {
		return nil, err
	}
	info, err := s.storage.Save(data, ".png", "image/png")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to store timetable image")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}
	s.logger.Info().Str("file", info.Name).Int64("size", info.FileSize).Msg("Timetable image stored")
	return info, nil
}

// OpenExport opens a stored export. The caller closes the reader.
func (s *TimetableService) OpenExport(name string) (io.ReadCloser, error) {
	if s.storage == nil {
		return nil, apperrors.NewResourceNotFoundError("export not found")
	}
	return s.storage.Open(name)
}

// DeleteExport removes a stored export.
func (s *TimetableService) DeleteExport(name string) error {
	if s.storage == nil {
		return apperrors.NewResourceNotFoundError("export not found")
	}
	if err := s.storage.Delete(name); err != nil {
		return err
	}
	s.logger.Info().Str("file", name).Msg("Timetable image deleted")
	return nil
}

// Save stores a selection under a new ID. Only courses that can actually be
// placed are kept.
func (s *TimetableService) Save(ctx context.Context, ids []string) (*models.SavedTimetable, *Selection, error) {
	sel, err := s.Build(ids)
	if err != nil {
		return nil, nil, err
	}
	if sel.Timetable.Len() == 0 {
		return nil, sel, apperrors.NewBadRequestError("no known courses to save")
	}

	saved := &models.SavedTimetable{
		ID:        uuid.NewString(),
		CourseIDs: sel.Timetable.IDs(),
	}
	if err := s.saved.Create(ctx, saved); err != nil {
		return nil, sel, fmt.Errorf("error saving timetable: %w", err)
	}
	return saved, sel, nil
}

// Get loads a saved selection and rebuilds it.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.SavedTimetable, *Selection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, apperrors.ErrTimetableNotFound
	}
	saved, err := s.saved.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sel, err := s.Build(saved.CourseIDs)
	if err != nil {
		return nil, nil, err
	}
	return saved, sel, nil
}
