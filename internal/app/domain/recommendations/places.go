package recommendations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var categoryPlaceTypes = map[string][]string{
	"tourism": {"tourist_attraction", "museum", "art_gallery", "zoo", "amusement_park"},
	"lodging": {"lodging"},
	"food":    {"restaurant", "cafe", "bar", "bakery"},
}

// PlacesClient queries the Google Places nearby-search API.
type PlacesClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

func NewPlacesClient(apiKey string, httpClient *http.Client, logger *zap.Logger) *PlacesClient {
	return &PlacesClient{
		apiKey:   apiKey,
		endpoint: "https://places.googleapis.com/v1/places:searchNearby",
		http:     httpClient,
		logger:   logger.With(zap.String("component", "PlacesClient")),
	}
}

type placesNearbyResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		PrimaryType      string `json:"primaryType"`
		EditorialSummary struct {
			Text string `json:"text"`
		} `json:"editorialSummary"`
	} `json:"places"`
}

func (c *PlacesClient) Nearby(ctx context.Context, lat, lon, radius float64, category string) ([]models.Recommendation, error) {
	types, ok := categoryPlaceTypes[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}

	body, err := json.Marshal(map[string]any{
		"includedTypes": types,
		"locationRestriction": map[string]any{
			"circle": map[string]any{
				"center": map[string]float64{"latitude": lat, "longitude": lon},
				"radius": radius,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode nearby request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build nearby request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.id,places.displayName,places.formattedAddress,places.location,places.primaryType,places.editorialSummary")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: places request failed", models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("places returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: places status %d", models.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload placesNearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed places response", models.ErrUpstreamUnavailable)
	}

	recs := make([]models.Recommendation, 0, len(payload.Places))
	for _, p := range payload.Places {
		if p.DisplayName.Text == "" {
			continue
		}
		recs = append(recs, models.Recommendation{
			ID:          p.ID,
			Type:        category,
			Name:        p.DisplayName.Text,
			Description: p.EditorialSummary.Text,
			Latitude:    p.Location.Latitude,
			Longitude:   p.Location.Longitude,
			Address:     p.FormattedAddress,
			Tag:         p.PrimaryType,
			PoweredBy:   "google",
		})
	}
	return recs, nil
}
