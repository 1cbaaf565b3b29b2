package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Collection, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	UpdateDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (*models.Collection, error)
	UserCanEdit(ctx context.Context, collectionID, userID uuid.UUID) (bool, error)

	GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	DeleteLocation(ctx context.Context, id uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const collectionColumns = `id, user_id, name, is_public, start_date, end_date, created_at, updated_at`

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM collections
        WHERE user_id = $1
           OR id IN (SELECT collection_id FROM collection_shared_users WHERE user_id = $1)
        ORDER BY created_at DESC
    `, collectionColumns)
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.IsPublic, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM collections WHERE id = $1`, collectionColumns)
	var c models.Collection
	err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.IsPublic, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	query := `
        INSERT INTO collections (user_id, name, is_public, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	created := *collection
	err := r.pgpool.QueryRow(ctx, query,
		collection.UserID, collection.Name, collection.IsPublic, collection.StartDate, collection.EndDate,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}
	return &created, nil
}

func (r *RepositoryImpl) UpdateDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (*models.Collection, error) {
	query := fmt.Sprintf(`
        UPDATE collections SET start_date = $1, end_date = $2, updated_at = now()
        WHERE id = $3
        RETURNING %s
    `, collectionColumns)
	var c models.Collection
	err := r.pgpool.QueryRow(ctx, query, start, end, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.IsPublic, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update collection dates: %w", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) UserCanEdit(ctx context.Context, collectionID, userID uuid.UUID) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM collections c
            LEFT JOIN collection_shared_users s
                ON s.collection_id = c.id AND s.user_id = $2
            WHERE c.id = $1 AND (c.user_id = $2 OR s.user_id IS NOT NULL)
        )
    `
	var ok bool
	if err := r.pgpool.QueryRow(ctx, query, collectionID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check collection access: %w", err)
	}
	return ok, nil
}

func (r *RepositoryImpl) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	query := `SELECT id, user_id, name, latitude, longitude, region_id, city_id FROM locations WHERE id = $1`
	var loc models.Location
	err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.UserID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.RegionID, &loc.CityID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: location %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query location: %w", err)
	}
	return &loc, nil
}

// DeleteLocation removes the location; its visits and collection links go
// with it via foreign-key cascade. Itinerary items referencing it are the
// itinerary service's responsibility.
func (r *RepositoryImpl) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: location %s", models.ErrNotFound, id)
	}
	return nil
}
