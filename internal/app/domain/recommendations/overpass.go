package recommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

// categoryTagFilters maps a recommendation category to the OSM tag predicates
// an Overpass query expands to.
var categoryTagFilters = map[string][]string{
	"tourism": {
		`["tourism"~"attraction|museum|gallery|viewpoint|zoo|theme_park|aquarium|artwork"]`,
	},
	"lodging": {
		`["tourism"~"hotel|hostel|guest_house|motel|camp_site|chalet|apartment"]`,
	},
	"food": {
		`["amenity"~"restaurant|cafe|fast_food|bar|pub|food_court|ice_cream"]`,
	},
}

// OverpassClient queries the community Overpass QL endpoint for nearby POIs.
type OverpassClient struct {
	endpoint  string
	maxRadius float64
	http      *http.Client
	logger    *zap.Logger
}

func NewOverpassClient(endpoint string, maxRadius float64, httpClient *http.Client, logger *zap.Logger) *OverpassClient {
	return &OverpassClient{
		endpoint:  endpoint,
		maxRadius: maxRadius,
		http:      httpClient,
		logger:    logger.With(zap.String("component", "OverpassClient")),
	}
}

type overpassResponse struct {
	Elements []struct {
		ID     int64   `json:"id"`
		Type   string  `json:"type"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearby returns named POIs of the category within radius meters, capped at
// the configured maximum to keep the public endpoint from timing out.
func (c *OverpassClient) Nearby(ctx context.Context, lat, lon, radius float64, category string) ([]models.Recommendation, error) {
	filters, ok := categoryTagFilters[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", models.ErrValidation, category)
	}
	if radius <= 0 || radius > c.maxRadius {
		radius = c.maxRadius
	}

	var clauses strings.Builder
	for _, filter := range filters {
		for _, element := range []string{"node", "way"} {
			fmt.Fprintf(&clauses, "%s%s(around:%.0f,%.6f,%.6f);", element, filter, radius, lat, lon)
		}
	}
	query := fmt.Sprintf("[out:json][timeout:10];(%s);out center;", clauses.String())

	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: overpass request failed", models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("overpass returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: overpass status %d", models.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed overpass response", models.ErrUpstreamUnavailable)
	}

	recs := make([]models.Recommendation, 0, len(payload.Elements))
	for _, el := range payload.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		elLat, elLon := el.Lat, el.Lon
		if el.Center != nil {
			elLat, elLon = el.Center.Lat, el.Center.Lon
		}
		tag := el.Tags["tourism"]
		if tag == "" {
			tag = el.Tags["amenity"]
		}
		recs = append(recs, models.Recommendation{
			ID:        el.Type + "/" + strconv.FormatInt(el.ID, 10),
			Type:      category,
			Name:      name,
			Latitude:  elLat,
			Longitude: elLon,
			Address:   overpassAddress(el.Tags),
			Tag:       tag,
			PoweredBy: "osm",
		})
	}
	return recs, nil
}

func overpassAddress(tags map[string]string) string {
	parts := make([]string, 0, 3)
	if v := tags["addr:street"]; v != "" {
		if n := tags["addr:housenumber"]; n != "" {
			v = v + " " + n
		}
		parts = append(parts, v)
	}
	if v := tags["addr:city"]; v != "" {
		parts = append(parts, v)
	}
	if v := tags["addr:postcode"]; v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}
