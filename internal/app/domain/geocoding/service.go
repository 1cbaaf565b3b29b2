package geocoding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
	"github.com/imdeafyo/AdventureLog/internal/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// ReverseGeocode resolves coordinates to a place in the administrative
	// hierarchy, with visited flags when userID is set.
	ReverseGeocode(ctx context.Context, lat, lon float64, userID uuid.UUID) (*models.ResolvedPlace, error)
	// Search resolves a free-text query to ranked place hits.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	client   Client
	resolver *Resolver
}

func NewService(client Client, resolver *Resolver, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger.With(zap.String("service", "GeocodingService")),
		client:   client,
		resolver: resolver,
	}
}

func (s *ServiceImpl) ReverseGeocode(ctx context.Context, lat, lon float64, userID uuid.UUID) (*models.ResolvedPlace, error) {
	ctx, span := otel.Tracer("GeocodingService").Start(ctx, "ReverseGeocode")
	defer span.End()
	span.SetAttributes(attribute.Float64("geo.lat", lat), attribute.Float64("geo.lon", lon))
	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "reverse")))

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", models.ErrValidation)
	}

	comps, err := s.client.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.logger.Error("reverse geocode provider call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		return nil, err
	}

	place, err := s.resolver.Resolve(ctx, comps, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Expected for places outside the known hierarchy.
			return nil, err
		}
		s.logger.Error("region resolution failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return nil, fmt.Errorf("failed to resolve place: %w", err)
	}

	return place, nil
}

func (s *ServiceImpl) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	ctx, span := otel.Tracer("GeocodingService").Start(ctx, "Search")
	defer span.End()
	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "search")))

	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", models.ErrValidation)
	}

	results, err := s.client.Search(ctx, query)
	if err != nil {
		s.logger.Error("place search provider call failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results, nil
}
