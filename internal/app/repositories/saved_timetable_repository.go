package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/dberrors"
	"github.com/yigit/lecturetable/internal/pkg/logger"
)

const savedTimetablesPKey = "saved_timetables_pkey"

// PostgresSavedTimetableRepository handles database operations for saved timetables.
type PostgresSavedTimetableRepository struct {
	DB *pgxpool.Pool
}

// NewSavedTimetableRepository creates a new instance of PostgresSavedTimetableRepository.
func NewSavedTimetableRepository(db *pgxpool.Pool) *PostgresSavedTimetableRepository {
	return &PostgresSavedTimetableRepository{DB: db}
}

func insertTimetableSQL(t *models.SavedTimetable) (string, []interface{}, error) {
	ids, err := json.Marshal(t.CourseIDs)
	if err != nil {
		return "", nil, fmt.Errorf("marshal course ids: %w", err)
	}
	return squirrel.Insert("saved_timetables").
		Columns("id", "course_ids").
		Values(t.ID, ids).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func selectTimetableSQL(id string) (string, []interface{}, error) {
	return squirrel.Select("id", "course_ids", "created_at").
		From("saved_timetables").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Create inserts a saved timetable and fills CreatedAt.
func (r *PostgresSavedTimetableRepository) Create(ctx context.Context, t *models.SavedTimetable) error {
	sql, args, err := insertTimetableSQL(t)
	if err != nil {
		logger.Error().Err(err).Msg("Error building create timetable SQL")
		return err
	}
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&t.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, savedTimetablesPKey) {
			return apperrors.NewConflictError("saved timetable already exists")
		}
		logger.Error().Err(err).Msg("Error executing create timetable query")
		return fmt.Errorf("insert saved timetable: %w", err)
	}
	return nil
}

// GetByID loads a saved timetable.
func (r *PostgresSavedTimetableRepository) GetByID(ctx context.Context, id string) (*models.SavedTimetable, error) {
	sql, args, err := selectTimetableSQL(id)
	if err != nil {
		logger.Error().Err(err).Msg("Error building get timetable SQL")
		return nil, err
	}

	var (
		t   models.SavedTimetable
		raw []byte
		at  time.Time
	)
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&t.ID, &raw, &at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTimetableNotFound
		}
		return nil, fmt.Errorf("query saved timetable: %w", err)
	}
	if err := json.Unmarshal(raw, &t.CourseIDs); err != nil {
		return nil, fmt.Errorf("decode course ids: %w", err)
	}
	t.CreatedAt = at
	return &t, nil
}
