package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection groups travel-plan entities into a trip with an optional
// inclusive [StartDate, EndDate] range. When both bounds are set, every dated
// itinerary item must fall inside them.
type Collection struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	IsPublic  bool       `json:"is_public"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Location is a place the user has been to or plans to go to.
type Location struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	RegionID  *string    `json:"region_id,omitempty"`
	CityID    *uuid.UUID `json:"city_id,omitempty"`
}

// Visit is a dated stay at a Location. Timezone is an IANA name used when
// bucketing the visit into calendar days.
type Visit struct {
	ID         uuid.UUID  `json:"id"`
	LocationID uuid.UUID  `json:"location_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Timezone   string     `json:"timezone,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type Lodging struct {
	ID           uuid.UUID  `json:"id"`
	CollectionID uuid.UUID  `json:"collection_id"`
	Name         string     `json:"name"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	Timezone     string     `json:"timezone,omitempty"`
}

type Transportation struct {
	ID            uuid.UUID  `json:"id"`
	CollectionID  uuid.UUID  `json:"collection_id"`
	Name          string     `json:"name"`
	Date          *time.Time `json:"date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	StartTimezone string     `json:"start_timezone,omitempty"`
}

// Note and Checklist carry a plain date with no timezone field; their dates
// are bucketed in UTC.
type Note struct {
	ID           uuid.UUID  `json:"id"`
	CollectionID uuid.UUID  `json:"collection_id"`
	Name         string     `json:"name"`
	Date         *time.Time `json:"date,omitempty"`
}

type Checklist struct {
	ID           uuid.UUID  `json:"id"`
	CollectionID uuid.UUID  `json:"collection_id"`
	Name         string     `json:"name"`
	Date         *time.Time `json:"date,omitempty"`
}

// Region is an administrative subdivision keyed by an ISO-3166-2-like code
// (e.g. "US-ME").
type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
}

type City struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	RegionID string    `json:"region_id"`
}

// VisitedRegion / VisitedCity are existence records: presence means the user
// has visited.
type VisitedRegion struct {
	UserID   uuid.UUID `json:"user_id"`
	RegionID string    `json:"region_id"`
}

type VisitedCity struct {
	UserID uuid.UUID `json:"user_id"`
	CityID uuid.UUID `json:"city_id"`
}
