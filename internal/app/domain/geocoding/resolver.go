package geocoding

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

// LocalityKeyPriority orders the address keys consulted when matching a city,
// from most to least specific. County sits last and is never matched by
// substring, only exactly, because county names routinely contain city names.
var LocalityKeyPriority = []string{
	"suburb",
	"neighbourhood",
	"city",
	"city_district",
	"town",
	"village",
	"hamlet",
	"locality",
	"municipality",
	"county",
}

// RegionStore is the slice of the world-travel repository the resolver needs.
type RegionStore interface {
	GetRegionByID(ctx context.Context, id string) (*models.Region, error)
	GetRegionByName(ctx context.Context, name, countryCode string) (*models.Region, error)
	ListCitiesByRegion(ctx context.Context, regionID string) ([]models.City, error)
	IsRegionVisited(ctx context.Context, userID uuid.UUID, regionID string) (bool, error)
	IsCityVisited(ctx context.Context, userID, cityID uuid.UUID) (bool, error)
}

// Resolver matches provider address components against the administrative
// hierarchy.
type Resolver struct {
	store  RegionStore
	logger *zap.Logger
}

func NewResolver(store RegionStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With(zap.String("component", "GeocodeResolver")),
	}
}

// Resolve finds the region, and if possible the city, that the address
// components describe. A models.ErrNotFound return means no region matched;
// that is an expected outcome for coordinates outside the known hierarchy.
func (r *Resolver) Resolve(ctx context.Context, comps *models.AddressComponents, userID uuid.UUID) (*models.ResolvedPlace, error) {
	candidates := r.candidateRegions(ctx, comps)

	if len(candidates) == 0 {
		// Name fallback: some providers omit ISO codes entirely.
		if comps.State != "" {
			region, err := r.store.GetRegionByName(ctx, comps.State, comps.CountryCode)
			if err != nil {
				return nil, err
			}
			if region != nil {
				candidates = append(candidates, *region)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, models.ErrNotFound
	}

	region := candidates[0]
	var city *models.City

	// A less-preferred candidate region that yields a city match wins over a
	// more-preferred one that does not.
	for _, cand := range candidates {
		match, err := r.matchCity(ctx, cand.ID, comps)
		if err != nil {
			return nil, err
		}
		if match != nil {
			region = cand
			city = match
			break
		}
	}

	resolved := &models.ResolvedPlace{
		RegionID:     region.ID,
		RegionName:   region.Name,
		CountryName:  region.CountryName,
		CountryCode:  region.CountryCode,
		LocationName: comps.Name,
	}
	if city != nil {
		resolved.CityID = &city.ID
		resolved.CityName = city.Name
		resolved.DisplayName = city.Name + ", " + region.Name + ", " + region.CountryCode
	} else {
		resolved.DisplayName = region.Name + ", " + region.CountryCode
	}

	if userID != uuid.Nil {
		visited, err := r.store.IsRegionVisited(ctx, userID, region.ID)
		if err != nil {
			return nil, err
		}
		resolved.RegionVisited = visited
		if city != nil {
			cityVisited, err := r.store.IsCityVisited(ctx, userID, city.ID)
			if err != nil {
				return nil, err
			}
			resolved.CityVisited = cityVisited
		}
	}

	return resolved, nil
}

// candidateRegions collects the regions matching the components' ISO-3166-2
// codes, ordered most-specific first.
func (r *Resolver) candidateRegions(ctx context.Context, comps *models.AddressComponents) []models.Region {
	if len(comps.ISO3166_2) == 0 {
		return nil
	}

	var candidates []models.Region
	seen := make(map[string]struct{})
	for _, key := range isoLevelOrder(comps.CountryCode) {
		code := comps.ISO3166_2[key]
		if code == "" {
			continue
		}
		// A bare country code is not a subdivision.
		if len(code) == 2 {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		region, err := r.store.GetRegionByID(ctx, code)
		if err != nil {
			r.logger.Warn("region lookup failed", zap.String("code", code), zap.Error(err))
			continue
		}
		if region != nil {
			candidates = append(candidates, *region)
		}
	}
	return candidates
}

// isoLevelOrder returns the candidate ISO level keys most-specific first.
// France reports departments at lvl6 and the metropolitan regions users
// actually track at lvl4, so lvl4 is promoted there.
func isoLevelOrder(countryCode string) []string {
	if strings.EqualFold(countryCode, "fr") {
		return []string{"lvl10", "lvl9", "lvl8", "lvl7", "lvl4", "lvl6", "lvl5", "lvl3", "lvl2", "lvl1", ""}
	}
	return []string{"lvl10", "lvl9", "lvl8", "lvl7", "lvl6", "lvl5", "lvl4", "lvl3", "lvl2", "lvl1", ""}
}

// matchCity looks for a city of the region named by any locality component,
// trying exact, diacritic-folded, then substring matching per key.
func (r *Resolver) matchCity(ctx context.Context, regionID string, comps *models.AddressComponents) (*models.City, error) {
	cities, err := r.store.ListCitiesByRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return nil, nil
	}

	for _, key := range LocalityKeyPriority {
		value := comps.LocalityField(key)
		if value == "" {
			continue
		}
		valueLower := strings.ToLower(value)
		valueFolded := foldName(value)

		for i := range cities {
			if strings.ToLower(cities[i].Name) == valueLower {
				return &cities[i], nil
			}
		}
		for i := range cities {
			if foldName(cities[i].Name) == valueFolded {
				return &cities[i], nil
			}
		}
		if key == "county" {
			continue
		}
		for i := range cities {
			name := strings.ToLower(cities[i].Name)
			if strings.Contains(name, valueLower) || strings.Contains(valueLower, name) {
				return &cities[i], nil
			}
		}
	}
	return nil, nil
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases, strips diacritics, and drops non-alphanumerics so
// "Tromsø" matches "tromso" and "Saint Denis" matches "Saint-Denis".
func foldName(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch r {
		case 'ø':
			b.WriteRune('o')
		case 'æ':
			b.WriteString("ae")
		case 'ß':
			b.WriteString("ss")
		case 'đ':
			b.WriteRune('d')
		case 'ł':
			b.WriteRune('l')
		default:
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
