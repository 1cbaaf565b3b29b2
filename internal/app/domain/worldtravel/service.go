package worldtravel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// SyncResult reports what a visited-sync pass changed.
type SyncResult struct {
	NewRegions []models.Region `json:"new_regions"`
	NewCities  []models.City   `json:"new_cities"`
}

type Service interface {
	// SyncVisited walks the user's visited locations and backfills missing
	// VisitedRegion / VisitedCity records.
	SyncVisited(ctx context.Context, userID uuid.UUID) (*SyncResult, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger.With(zap.String("service", "WorldTravelService")),
		repo:   repo,
	}
}

func (s *ServiceImpl) SyncVisited(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	ctx, span := otel.Tracer("WorldTravelService").Start(ctx, "SyncVisited")
	defer span.End()

	l := s.logger.With(zap.String("method", "SyncVisited"), zap.String("user_id", userID.String()))

	locations, err := s.repo.ListVisitedLocationRefs(ctx, userID)
	if err != nil {
		l.Error("failed to list visited locations", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing visited locations failed")
		return nil, fmt.Errorf("failed to list visited locations: %w", err)
	}

	regionSet := make(map[string]struct{})
	citySet := make(map[uuid.UUID]struct{})
	for _, loc := range locations {
		if loc.RegionID != nil && *loc.RegionID != "" {
			regionSet[*loc.RegionID] = struct{}{}
		}
		if loc.CityID != nil {
			citySet[*loc.CityID] = struct{}{}
		}
	}

	regionIDs := make([]string, 0, len(regionSet))
	for id := range regionSet {
		regionIDs = append(regionIDs, id)
	}
	cityIDs := make([]uuid.UUID, 0, len(citySet))
	for id := range citySet {
		cityIDs = append(cityIDs, id)
	}

	newRegions, err := s.repo.MarkRegionsVisited(ctx, userID, regionIDs)
	if err != nil {
		l.Error("failed to mark visited regions", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "marking visited regions failed")
		return nil, fmt.Errorf("failed to mark visited regions: %w", err)
	}

	newCities, err := s.repo.MarkCitiesVisited(ctx, userID, cityIDs)
	if err != nil {
		l.Error("failed to mark visited cities", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "marking visited cities failed")
		return nil, fmt.Errorf("failed to mark visited cities: %w", err)
	}

	span.SetAttributes(
		attribute.Int("sync.new_regions", len(newRegions)),
		attribute.Int("sync.new_cities", len(newCities)),
	)
	l.Info("visited sync completed",
		zap.Int("new_regions", len(newRegions)),
		zap.Int("new_cities", len(newCities)))

	return &SyncResult{NewRegions: newRegions, NewCities: newCities}, nil
}
