package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lecturetable/internal/app/models"
)

// CatalogSnapshotRepository persists upstream catalog fetches for fallback.
type CatalogSnapshotRepository interface {
	Save(ctx context.Context, catalog *models.Catalog) error
	Latest(ctx context.Context) (*models.Catalog, error)
}

// SavedTimetableRepository stores course selections under an ID.
type SavedTimetableRepository interface {
	Create(ctx context.Context, timetable *models.SavedTimetable) error
	GetByID(ctx context.Context, id string) (*models.SavedTimetable, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	CatalogSnapshotRepository CatalogSnapshotRepository
	SavedTimetableRepository  SavedTimetableRepository
}

// NewRepositories initializes the Postgres-backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CatalogSnapshotRepository: NewCatalogSnapshotRepository(db),
		SavedTimetableRepository:  NewSavedTimetableRepository(db),
	}
}

// NewMemoryRepositories initializes in-process repositories, used when no
// database is configured.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		CatalogSnapshotRepository: NewMemoryCatalogSnapshotRepository(),
		SavedTimetableRepository:  NewMemorySavedTimetableRepository(),
	}
}
