package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
)

// MemoryCatalogSnapshotRepository keeps the latest snapshot in memory.
type MemoryCatalogSnapshotRepository struct {
	mu     sync.RWMutex
	latest *models.Catalog
}

func NewMemoryCatalogSnapshotRepository() *MemoryCatalogSnapshotRepository {
	return &MemoryCatalogSnapshotRepository{}
}

func (r *MemoryCatalogSnapshotRepository) Save(_ context.Context, catalog *models.Catalog) error {
	cp := *catalog
	cp.Courses = append([]models.Course(nil), catalog.Courses...)

	r.mu.Lock()
	r.latest = &cp
	r.mu.Unlock()
	return nil
}

func (r *MemoryCatalogSnapshotRepository) Latest(_ context.Context) (*models.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return nil, apperrors.ErrCatalogEmpty
	}
	cp := *r.latest
	cp.Courses = append([]models.Course(nil), r.latest.Courses...)
	return &cp, nil
}

// MemorySavedTimetableRepository keeps saved timetables in a map.
type MemorySavedTimetableRepository struct {
	mu    sync.RWMutex
	items map[string]models.SavedTimetable
}

func NewMemorySavedTimetableRepository() *MemorySavedTimetableRepository {
	return &MemorySavedTimetableRepository{items: make(map[string]models.SavedTimetable)}
}

func (r *MemorySavedTimetableRepository) Create(_ context.Context, t *models.SavedTimetable) error {
	t.CreatedAt = time.Now().UTC()
	stored := *t
	stored.CourseIDs = append([]string(nil), t.CourseIDs...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[t.ID]; exists {
		return apperrors.NewConflictError("saved timetable already exists")
	}
	r.items[t.ID] = stored
	return nil
}

func (r *MemorySavedTimetableRepository) GetByID(_ context.Context, id string) (*models.SavedTimetable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrTimetableNotFound
	}
	t.CourseIDs = append([]string(nil), t.CourseIDs...)
	return &t, nil
}
