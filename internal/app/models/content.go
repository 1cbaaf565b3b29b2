package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ContentKind tags the entity type an itinerary item points at. The set is
// closed; resolution to the concrete entity is a lookup dispatched on the tag.
type ContentKind string

const (
	ContentLocation       ContentKind = "location"
	ContentLodging        ContentKind = "lodging"
	ContentTransportation ContentKind = "transportation"
	ContentNote           ContentKind = "note"
	ContentChecklist      ContentKind = "checklist"
	ContentVisit          ContentKind = "visit"
)

// ParseContentKind resolves a string-typed content tag sent by clients.
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case ContentLocation, ContentLodging, ContentTransportation, ContentNote, ContentChecklist, ContentVisit:
		return ContentKind(s), nil
	}
	return "", fmt.Errorf("%w: invalid content_type %q", ErrValidation, s)
}

// ContentRef is a polymorphic reference to one travel-plan entity.
type ContentRef struct {
	Kind ContentKind `json:"content_type"`
	ID   uuid.UUID   `json:"object_id"`
}
