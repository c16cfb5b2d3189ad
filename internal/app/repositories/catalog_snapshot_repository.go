package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/lecturetable/internal/app/models"
	"github.com/yigit/lecturetable/internal/pkg/apperrors"
	"github.com/yigit/lecturetable/internal/pkg/logger"
)

// PostgresCatalogSnapshotRepository stores snapshots as JSONB rows.
type PostgresCatalogSnapshotRepository struct {
	DB *pgxpool.Pool
}

// NewCatalogSnapshotRepository creates a new instance of PostgresCatalogSnapshotRepository.
func NewCatalogSnapshotRepository(db *pgxpool.Pool) *PostgresCatalogSnapshotRepository {
	return &PostgresCatalogSnapshotRepository{DB: db}
}

func insertSnapshotSQL(catalog *models.Catalog) (string, []interface{}, error) {
	payload, err := json.Marshal(catalog)
	if err != nil {
		return "", nil, fmt.Errorf("marshal catalog: %w", err)
	}
	return squirrel.Insert("catalog_snapshots").
		Columns("fetched_label", "course_count", "payload").
		Values(catalog.FetchedAt, len(catalog.Courses), payload).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// pruneSnapshotsSQL drops every snapshot older than keepID.
func pruneSnapshotsSQL(keepID int64) (string, []interface{}, error) {
	return squirrel.Delete("catalog_snapshots").
		Where(squirrel.Lt{"id": keepID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func latestSnapshotSQL() (string, []interface{}, error) {
	return squirrel.Select("payload").
		From("catalog_snapshots").
		OrderBy("stored_at DESC", "id DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// Save stores a snapshot and drops the older ones in the same transaction;
// only the latest is ever read back.
func (r *PostgresCatalogSnapshotRepository) Save(ctx context.Context, catalog *models.Catalog) error {
	insertSQL, insertArgs, err := insertSnapshotSQL(catalog)
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert snapshot SQL")
		return err
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing insert snapshot query")
		return fmt.Errorf("insert catalog snapshot: %w", err)
	}

	pruneSQL, pruneArgs, err := pruneSnapshotsSQL(id)
	if err != nil {
		logger.Error().Err(err).Msg("Error building prune snapshot SQL")
		return err
	}
	tag, err := tx.Exec(ctx, pruneSQL, pruneArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing prune snapshot query")
		return fmt.Errorf("prune catalog snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog snapshot: %w", err)
	}
	logger.Debug().Int64("id", id).Int64("pruned", tag.RowsAffected()).Msg("Catalog snapshot stored")
	return nil
}

// Latest returns the most recently stored snapshot.
func (r *PostgresCatalogSnapshotRepository) Latest(ctx context.Context) (*models.Catalog, error) {
	sql, args, err := latestSnapshotSQL()
	if err != nil {
		logger.Error().Err(err).Msg("Error building latest snapshot SQL")
		return nil, err
	}

	var payload []byte
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCatalogEmpty
		}
		return nil, fmt.Errorf("query catalog snapshot: %w", err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(payload, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return &catalog, nil
}
