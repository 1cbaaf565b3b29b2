package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryItem is a single day-slot (or global) reference to one travel-plan
// entity. Exactly one of Date / IsGlobal holds: a dated item has Date set and
// IsGlobal false, a global item has IsGlobal true and no Date. Order is unique
// within (collection, date) for dated items and (collection, global) for
// global ones; uniqueness is enforced by application logic, not the database.
type ItineraryItem struct {
	ID           uuid.UUID   `json:"id"`
	CollectionID uuid.UUID   `json:"collection_id"`
	Content      ContentRef  `json:"content"`
	Date         *time.Time  `json:"date,omitempty"`
	IsGlobal     bool        `json:"is_global"`
	Order        int         `json:"order"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ItineraryDay holds optional metadata for one day of a collection.
type ItineraryDay struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Date         time.Time `json:"date"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
}

// ItemUpdate is one entry of a bulk reorder request.
type ItemUpdate struct {
	ID       uuid.UUID  `json:"id"`
	Date     *time.Time `json:"date,omitempty"`
	IsGlobal *bool      `json:"is_global,omitempty"`
	Order    *int       `json:"order,omitempty"`
}

// CreateItemRequest is the single-item creation payload. ContentType is the
// string-typed kind tag; SyncContentDate pushes the slot date into the
// referenced entity.
type CreateItemRequest struct {
	CollectionID    uuid.UUID  `json:"collection_id"`
	ContentType     string     `json:"content_type"`
	ObjectID        uuid.UUID  `json:"object_id"`
	Date            *time.Time `json:"date,omitempty"`
	IsGlobal        bool       `json:"is_global"`
	Order           int        `json:"order"`
	SyncContentDate bool       `json:"update_item_date"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	SourceVisitID   *uuid.UUID `json:"source_visit_id,omitempty"`
}
