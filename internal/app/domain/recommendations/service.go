package recommendations

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// Provider is one nearby-POI source.
type Provider interface {
	Nearby(ctx context.Context, lat, lon, radius float64, category string) ([]models.Recommendation, error)
}

type Service interface {
	// Nearby aggregates POI suggestions from all configured providers,
	// returning partial results when only some of them answer.
	Nearby(ctx context.Context, lat, lon, radius float64, category string) ([]models.Recommendation, error)
}

type ServiceImpl struct {
	logger    *zap.Logger
	providers []Provider
}

func NewService(providers []Provider, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger.With(zap.String("service", "RecommendationsService")),
		providers: providers,
	}
}

func (s *ServiceImpl) Nearby(ctx context.Context, lat, lon, radius float64, category string) ([]models.Recommendation, error) {
	ctx, span := otel.Tracer("RecommendationsService").Start(ctx, "Nearby")
	defer span.End()

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", models.ErrValidation)
	}
	if _, ok := categoryTagFilters[category]; !ok {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}

	var mu sync.Mutex
	byProvider := make([][]models.Recommendation, len(s.providers))
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range s.providers {
		i, p := i, provider
		g.Go(func() error {
			recs, err := p.Nearby(gctx, lat, lon, radius, category)
			if err != nil {
				// Best effort: one provider failing must not sink the other's
				// results.
				s.logger.Warn("recommendation provider failed", zap.Error(err))
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}
			byProvider[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failures == len(s.providers) {
		span.SetStatus(codes.Error, "all providers failed")
		return nil, fmt.Errorf("%w: all recommendation providers failed", models.ErrUpstreamUnavailable)
	}

	var merged []models.Recommendation
	for _, recs := range byProvider {
		merged = append(merged, recs...)
	}
	results := dedupe(merged)
	for i := range results {
		d := haversineKm(lat, lon, results[i].Latitude, results[i].Longitude)
		results[i].DistanceKm = &d
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceKm < *results[j].DistanceKm
	})

	span.SetAttributes(attribute.Int("recommendations.count", len(results)))
	return results, nil
}

// dedupe drops later entries whose name already appeared, case-insensitively.
// Providers merge in registration order, so an earlier provider's entry wins.
func dedupe(recs []models.Recommendation) []models.Recommendation {
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0]
	for _, rec := range recs {
		key := strings.ToLower(strings.TrimSpace(rec.Name))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}
