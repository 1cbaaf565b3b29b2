package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
	"github.com/imdeafyo/AdventureLog/internal/observability/metrics"
	"github.com/imdeafyo/AdventureLog/internal/pkg/config"
)

var _ Client = (*HTTPClient)(nil)

// Client talks to the external geocoding providers. Implementations hide which
// provider answered; callers only see the normalized schema.
type Client interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.AddressComponents, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// HTTPClient is the Google-primary, Nominatim-fallback geocoding adapter.
// When no Google API key is configured Nominatim is queried directly.
type HTTPClient struct {
	cfg      config.GeocodingConfig
	http     *http.Client
	resolver *net.Resolver
	cache    *cache.Cache
	logger   *zap.Logger

	googleGeocodeURL string
	googleSearchURL  string
	nominatimBaseURL string
}

func NewHTTPClient(cfg config.GeocodingConfig, logger *zap.Logger) *HTTPClient {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &HTTPClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
		},
		resolver:         net.DefaultResolver,
		cache:            cache.New(15*time.Minute, 30*time.Minute),
		logger:           logger.With(zap.String("component", "GeocodingClient")),
		googleGeocodeURL: "https://maps.googleapis.com/maps/api/geocode/json",
		googleSearchURL:  "https://places.googleapis.com/v1/places:searchText",
		nominatimBaseURL: "https://" + cfg.NominatimHost,
	}
}

// ReverseGeocode resolves coordinates to address components, trying Google
// first when configured and falling back to Nominatim on any provider error.
func (c *HTTPClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.AddressComponents, error) {
	key := fmt.Sprintf("reverse:%.6f:%.6f:%s", lat, lon, c.cfg.Language)
	if cached, found := c.cache.Get(key); found {
		comps := cached.(models.AddressComponents)
		return &comps, nil
	}

	var comps *models.AddressComponents
	var err error

	if c.cfg.GoogleAPIKey != "" {
		comps, err = c.googleReverse(ctx, lat, lon)
		if err != nil {
			c.logger.Warn("google reverse geocode failed, falling back to nominatim", zap.Error(err))
			metrics.Get().GeocodeFallbacksTotal.Add(ctx, 1)
			comps, err = c.nominatimReverse(ctx, lat, lon)
		}
	} else {
		comps, err = c.nominatimReverse(ctx, lat, lon)
	}
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, *comps, cache.DefaultExpiration)
	return comps, nil
}

// Search resolves a free-text query to ranked place hits, Google first when
// configured, Nominatim otherwise or on failure.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	key := "search:" + c.cfg.Language + ":" + query
	if cached, found := c.cache.Get(key); found {
		return cached.([]models.SearchResult), nil
	}

	var results []models.SearchResult
	var err error

	if c.cfg.GoogleAPIKey != "" {
		results, err = c.googleSearch(ctx, query)
		if err != nil {
			c.logger.Warn("google place search failed, falling back to nominatim", zap.Error(err))
			metrics.Get().GeocodeFallbacksTotal.Add(ctx, 1)
			results, err = c.nominatimSearch(ctx, query)
		}
	} else {
		results, err = c.nominatimSearch(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		var a, b float64
		if results[i].Importance != nil {
			a = *results[i].Importance
		}
		if results[j].Importance != nil {
			b = *results[j].Importance
		}
		return a > b
	})

	c.cache.Set(key, results, cache.DefaultExpiration)
	return results, nil
}

// checkDNS fails fast when the provider host does not resolve, so a dead
// self-hosted Nominatim does not eat the full read timeout.
func (c *HTTPClient) checkDNS(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid provider url", models.ErrUpstreamUnavailable)
	}
	lookupCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	if _, err := c.resolver.LookupHost(lookupCtx, u.Hostname()); err != nil {
		return fmt.Errorf("%w: host %s does not resolve", models.ErrUpstreamUnavailable, u.Hostname())
	}
	return nil
}

func (c *HTTPClient) doJSON(req *http.Request, out any) error {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed", models.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("geocoding provider returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: provider status %d", models.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed provider response", models.ErrUpstreamUnavailable)
	}
	return nil
}

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (c *HTTPClient) googleReverse(ctx context.Context, lat, lon float64) (*models.AddressComponents, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("key", c.cfg.GoogleAPIKey)
	params.Set("language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.googleGeocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build google request: %w", err)
	}

	var payload googleGeocodeResponse
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" || len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: google status %s", models.ErrUpstreamUnavailable, payload.Status)
	}

	comps := &models.AddressComponents{
		Name:      payload.Results[0].FormattedAddress,
		ISO3166_2: make(map[string]string),
	}
	for _, ac := range payload.Results[0].AddressComponents {
		for _, t := range ac.Types {
			switch t {
			case "country":
				comps.Country = ac.LongName
				comps.CountryCode = strings.ToLower(ac.ShortName)
			case "administrative_area_level_1":
				comps.State = ac.LongName
			case "administrative_area_level_2":
				comps.County = ac.LongName
			case "locality", "postal_town":
				comps.City = ac.LongName
			case "sublocality", "sublocality_level_1":
				comps.Town = ac.LongName
			case "neighborhood":
				comps.Neighbourhood = ac.LongName
			}
		}
	}
	// Google does not report ISO-3166-2 codes directly; synthesize the lvl1
	// candidate from the country and first-level area short names.
	for _, ac := range payload.Results[0].AddressComponents {
		for _, t := range ac.Types {
			if t == "administrative_area_level_1" && comps.CountryCode != "" {
				comps.ISO3166_2["lvl1"] = strings.ToUpper(comps.CountryCode) + "-" + ac.ShortName
			}
		}
	}
	return comps, nil
}

type nominatimReverseResponse struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func (c *HTTPClient) nominatimReverse(ctx context.Context, lat, lon float64) (*models.AddressComponents, error) {
	if err := c.checkDNS(ctx, c.nominatimBaseURL); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("accept-language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nominatimBaseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nominatim request: %w", err)
	}

	var payload nominatimReverseResponse
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Address) == 0 {
		return nil, fmt.Errorf("%w: empty nominatim response", models.ErrUpstreamUnavailable)
	}

	comps := &models.AddressComponents{
		Name:      payload.Name,
		ISO3166_2: make(map[string]string),
	}
	if comps.Name == "" {
		comps.Name = payload.DisplayName
	}
	for k, v := range payload.Address {
		switch {
		case strings.HasPrefix(k, "ISO3166-2-lvl"):
			comps.ISO3166_2["lvl"+strings.TrimPrefix(k, "ISO3166-2-lvl")] = v
		case k == "ISO3166-2":
			comps.ISO3166_2[""] = v
		case k == "country":
			comps.Country = v
		case k == "country_code":
			comps.CountryCode = strings.ToLower(v)
		case k == "state":
			comps.State = v
		case k == "county":
			comps.County = v
		case k == "city":
			comps.City = v
		case k == "city_district":
			comps.CityDistrict = v
		case k == "town":
			comps.Town = v
		case k == "village":
			comps.Village = v
		case k == "hamlet":
			comps.Hamlet = v
		case k == "suburb":
			comps.Suburb = v
		case k == "neighbourhood":
			comps.Neighbourhood = v
		case k == "locality":
			comps.Locality = v
		case k == "municipality":
			comps.Municipality = v
		}
	}
	return comps, nil
}

type googleSearchResponse struct {
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
		Rating          float64  `json:"rating"`
		UserRatingCount int      `json:"userRatingCount"`
		Types           []string `json:"types"`
		PrimaryType     string   `json:"primaryType"`
	} `json:"places"`
}

func (c *HTTPClient) googleSearch(ctx context.Context, query string) ([]models.SearchResult, error) {
	body, err := json.Marshal(map[string]string{
		"textQuery":    query,
		"languageCode": c.cfg.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.googleSearchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build google search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.GoogleAPIKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.id,places.displayName,places.formattedAddress,places.location,places.rating,places.userRatingCount,places.types,places.primaryType")

	var payload googleSearchResponse
	if err := c.doJSON(req, &payload); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(payload.Places))
	for _, p := range payload.Places {
		translated := p.DisplayName.Text
		// Rating-weighted popularity stands in for Nominatim's importance
		// score so mixed-provider results rank comparably.
		importance := math.Round(p.Rating*float64(p.UserRatingCount)) / 100
		category := p.PrimaryType
		if category == "" && len(p.Types) > 0 {
			category = p.Types[0]
		}
		results = append(results, models.SearchResult{
			Latitude:       p.Location.Latitude,
			Longitude:      p.Location.Longitude,
			Name:           combineNames("", translated),
			NameTranslated: translated,
			DisplayName:    p.FormattedAddress,
			Type:           category,
			Category:       category,
			Importance:     &importance,
			AddressType:    category,
			PoweredBy:      "google",
		})
	}
	return results, nil
}

type nominatimSearchItem struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	Importance  *float64          `json:"importance"`
	AddressType string            `json:"addresstype"`
	NameDetails map[string]string `json:"namedetails"`
}

func (c *HTTPClient) nominatimSearch(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := c.checkDNS(ctx, c.nominatimBaseURL); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("namedetails", "1")
	params.Set("accept-language", c.cfg.Language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nominatimBaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nominatim search request: %w", err)
	}

	var items []nominatimSearchItem
	if err := c.doJSON(req, &items); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(items))
	for _, item := range items {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lon, lonErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		local := item.NameDetails["name"]
		if local == "" {
			local = item.Name
		}
		translated := item.NameDetails["name:"+c.cfg.Language]
		if translated == "" {
			translated = item.Name
		}
		results = append(results, models.SearchResult{
			Latitude:       lat,
			Longitude:      lon,
			Name:           combineNames(local, translated),
			NameLocal:      local,
			NameTranslated: translated,
			DisplayName:    item.DisplayName,
			Type:           item.Type,
			Category:       item.Category,
			Importance:     item.Importance,
			AddressType:    item.AddressType,
			PoweredBy:      "nominatim",
		})
	}
	return results, nil
}

// combineNames renders "local (translated)" when the two differ, otherwise
// whichever is set.
func combineNames(local, translated string) string {
	switch {
	case local != "" && translated != "" && !strings.EqualFold(local, translated):
		return fmt.Sprintf("%s (%s)", local, translated)
	case local != "":
		return local
	default:
		return translated
	}
}
