package worldtravel

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Querier is the pgxpool.Pool subset the repository needs. pgxmock pools
// satisfy it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// Repository is the read/write surface over the administrative hierarchy and
// per-user visited records.
type Repository interface {
	GetRegionByID(ctx context.Context, id string) (*models.Region, error)
	GetRegionByName(ctx context.Context, name, countryCode string) (*models.Region, error)
	ListCitiesByRegion(ctx context.Context, regionID string) ([]models.City, error)

	IsRegionVisited(ctx context.Context, userID uuid.UUID, regionID string) (bool, error)
	IsCityVisited(ctx context.Context, userID, cityID uuid.UUID) (bool, error)

	ListVisitedLocationRefs(ctx context.Context, userID uuid.UUID) ([]models.Location, error)
	MarkRegionsVisited(ctx context.Context, userID uuid.UUID, regionIDs []string) ([]models.Region, error)
	MarkCitiesVisited(ctx context.Context, userID uuid.UUID, cityIDs []uuid.UUID) ([]models.City, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool Querier
}

func NewRepository(pgpool Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) GetRegionByID(ctx context.Context, id string) (*models.Region, error) {
	query := `
        SELECT r.id, r.name, r.country_code, c.name
        FROM regions r
        JOIN countries c ON c.country_code = r.country_code
        WHERE r.id = $1
    `
	var region models.Region
	if err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&region.ID, &region.Name, &region.CountryCode, &region.CountryName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query region: %w", err)
	}
	return &region, nil
}

func (r *RepositoryImpl) GetRegionByName(ctx context.Context, name, countryCode string) (*models.Region, error) {
	builder := sq.Select("r.id", "r.name", "r.country_code", "c.name").
		From("regions r").
		Join("countries c ON c.country_code = r.country_code").
		Where(sq.Expr("lower(r.name) = lower(?)", name)).
		PlaceholderFormat(sq.Dollar)
	if countryCode != "" {
		builder = builder.Where(sq.Expr("lower(r.country_code) = lower(?)", countryCode))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build region query: %w", err)
	}

	var region models.Region
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(
		&region.ID, &region.Name, &region.CountryCode, &region.CountryName,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query region by name: %w", err)
	}
	return &region, nil
}

func (r *RepositoryImpl) ListCitiesByRegion(ctx context.Context, regionID string) ([]models.City, error) {
	query := `SELECT id, name, region_id FROM cities WHERE region_id = $1 ORDER BY name`
	rows, err := r.pgpool.Query(ctx, query, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.ID, &city.Name, &city.RegionID); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func (r *RepositoryImpl) IsRegionVisited(ctx context.Context, userID uuid.UUID, regionID string) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM visited_regions WHERE user_id = $1 AND region_id = $2)`,
		userID, regionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check visited region: %w", err)
	}
	return exists, nil
}

func (r *RepositoryImpl) IsCityVisited(ctx context.Context, userID, cityID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pgpool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM visited_cities WHERE user_id = $1 AND city_id = $2)`,
		userID, cityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check visited city: %w", err)
	}
	return exists, nil
}

// ListVisitedLocationRefs returns the user's locations that carry at least one
// visit, with their resolved region/city references.
func (r *RepositoryImpl) ListVisitedLocationRefs(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	query := `
        SELECT DISTINCT l.id, l.user_id, l.name, l.latitude, l.longitude, l.region_id, l.city_id
        FROM locations l
        JOIN visits v ON v.location_id = l.id
        WHERE l.user_id = $1 AND v.start_date <= now()
    `
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visited locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.RegionID, &loc.CityID); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// MarkRegionsVisited inserts missing VisitedRegion records and returns the
// regions that were newly marked. Conflicts with concurrent syncs are ignored.
func (r *RepositoryImpl) MarkRegionsVisited(ctx context.Context, userID uuid.UUID, regionIDs []string) ([]models.Region, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}

	builder := sq.Insert("visited_regions").Columns("user_id", "region_id").
		Suffix("ON CONFLICT DO NOTHING RETURNING region_id").
		PlaceholderFormat(sq.Dollar)
	for _, id := range regionIDs {
		builder = builder.Values(userID, id)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build visited regions insert: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visited regions: %w", err)
	}
	defer rows.Close()

	var created []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan visited region: %w", err)
		}
		created = append(created, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, nil
	}

	return r.regionsByIDs(ctx, created)
}

// MarkCitiesVisited inserts missing VisitedCity records and returns the
// cities that were newly marked.
func (r *RepositoryImpl) MarkCitiesVisited(ctx context.Context, userID uuid.UUID, cityIDs []uuid.UUID) ([]models.City, error) {
	if len(cityIDs) == 0 {
		return nil, nil
	}

	builder := sq.Insert("visited_cities").Columns("user_id", "city_id").
		Suffix("ON CONFLICT DO NOTHING RETURNING city_id").
		PlaceholderFormat(sq.Dollar)
	for _, id := range cityIDs {
		builder = builder.Values(userID, id)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build visited cities insert: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visited cities: %w", err)
	}
	defer rows.Close()

	var created []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan visited city: %w", err)
		}
		created = append(created, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, nil
	}

	return r.citiesByIDs(ctx, created)
}

func (r *RepositoryImpl) regionsByIDs(ctx context.Context, ids []string) ([]models.Region, error) {
	query, args, err := sq.Select("r.id", "r.name", "r.country_code", "c.name").
		From("regions r").
		Join("countries c ON c.country_code = r.country_code").
		Where(sq.Eq{"r.id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build regions query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.ID, &region.Name, &region.CountryCode, &region.CountryName); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (r *RepositoryImpl) citiesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.City, error) {
	query, args, err := sq.Select("id", "name", "region_id").
		From("cities").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cities query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.ID, &city.Name, &city.RegionID); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}
