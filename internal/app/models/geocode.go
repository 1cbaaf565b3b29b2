package models

import "github.com/google/uuid"

// AddressComponents is the provider-normalized address schema produced by the
// geocoding client adapter. Providers report differing granularity, so at most
// a few of the locality fields are populated per response.
type AddressComponents struct {
	Name        string `json:"name,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"` // ISO-3166-1 alpha-2

	// ISO3166_2 maps a specificity level ("lvl1".."lvl10", or "" for the bare
	// ISO3166-2 key) to a candidate subdivision code.
	ISO3166_2 map[string]string `json:"iso3166_2,omitempty"`

	State string `json:"state,omitempty"`

	Suburb        string `json:"suburb,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	City          string `json:"city,omitempty"`
	CityDistrict  string `json:"city_district,omitempty"`
	Town          string `json:"town,omitempty"`
	Village       string `json:"village,omitempty"`
	Hamlet        string `json:"hamlet,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Municipality  string `json:"municipality,omitempty"`
	County        string `json:"county,omitempty"`
}

// LocalityField returns the value of one locality key, empty when unset.
func (a *AddressComponents) LocalityField(key string) string {
	switch key {
	case "suburb":
		return a.Suburb
	case "neighbourhood", "neighborhood":
		return a.Neighbourhood
	case "city":
		return a.City
	case "city_district":
		return a.CityDistrict
	case "town":
		return a.Town
	case "village":
		return a.Village
	case "hamlet":
		return a.Hamlet
	case "locality":
		return a.Locality
	case "municipality":
		return a.Municipality
	case "county":
		return a.County
	}
	return ""
}

// SearchResult is one ranked hit from the place-search endpoint.
type SearchResult struct {
	Latitude       float64  `json:"lat"`
	Longitude      float64  `json:"lon"`
	Name           string   `json:"name"`
	NameLocal      string   `json:"name_local,omitempty"`
	NameTranslated string   `json:"name_translated,omitempty"`
	DisplayName    string   `json:"display_name,omitempty"`
	Type           string   `json:"type,omitempty"`
	Category       string   `json:"category,omitempty"`
	Importance     *float64 `json:"importance,omitempty"`
	AddressType    string   `json:"addresstype,omitempty"`
	PoweredBy      string   `json:"powered_by"`
}

// ResolvedPlace is the outcome of matching address components against the
// administrative hierarchy.
type ResolvedPlace struct {
	RegionID      string     `json:"region_id"`
	RegionName    string     `json:"region"`
	CountryName   string     `json:"country"`
	CountryCode   string     `json:"country_id"`
	CityID        *uuid.UUID `json:"city_id,omitempty"`
	CityName      string     `json:"city,omitempty"`
	RegionVisited bool       `json:"region_visited"`
	CityVisited   bool       `json:"city_visited"`
	DisplayName   string     `json:"display_name"`
	LocationName  string     `json:"location_name,omitempty"`
}

// Recommendation is one POI suggestion from the nearby-search providers.
type Recommendation struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Address     string   `json:"address,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	PoweredBy   string   `json:"powered_by,omitempty"`
}
