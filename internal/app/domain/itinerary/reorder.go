package itinerary

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

// tempOrderOffset pushes phase-one orders far above any realistic existing
// value so the intermediate state cannot collide with untouched rows.
const tempOrderOffset = 1_000_000

// bucketKey identifies one (collection, date-or-global) ordering scope.
type bucketKey struct {
	collection uuid.UUID
	day        time.Time
	global     bool
}

func bucketOf(item *models.ItineraryItem) bucketKey {
	key := bucketKey{collection: item.CollectionID, global: item.IsGlobal}
	if item.Date != nil {
		key.day = bucketDay(*item.Date, "")
	}
	return key
}

// applyUpdate produces the post-reorder state of one item. Fields left nil in
// the update keep their current value; setting is_global clears the date.
func applyUpdate(current models.ItineraryItem, update models.ItemUpdate, collection *models.Collection) (models.ItineraryItem, error) {
	final := current

	if update.IsGlobal != nil && *update.IsGlobal && update.Date != nil {
		return final, fmt.Errorf("%w: item %s sets both date and is_global", models.ErrValidation, update.ID)
	}

	if update.IsGlobal != nil {
		final.IsGlobal = *update.IsGlobal
		if final.IsGlobal {
			final.Date = nil
		}
	}
	if update.Date != nil {
		day := bucketDay(*update.Date, "")
		final.Date = &day
		final.IsGlobal = false
	}
	if update.Order != nil {
		if *update.Order < 0 {
			return final, fmt.Errorf("%w: item %s has negative order", models.ErrValidation, update.ID)
		}
		final.Order = *update.Order
	}

	if final.Date == nil && !final.IsGlobal {
		return final, fmt.Errorf("%w: item %s is neither dated nor global", models.ErrValidation, update.ID)
	}
	if final.Date != nil && final.IsGlobal {
		return final, fmt.Errorf("%w: item %s is both dated and global", models.ErrValidation, update.ID)
	}

	if final.Date != nil {
		if collection.StartDate != nil && final.Date.Before(bucketDay(*collection.StartDate, "")) {
			return final, fmt.Errorf("%w: item %s date before collection start", models.ErrValidation, update.ID)
		}
		if collection.EndDate != nil && final.Date.After(bucketDay(*collection.EndDate, "")) {
			return final, fmt.Errorf("%w: item %s date after collection end", models.ErrValidation, update.ID)
		}
	}

	return final, nil
}

// assignTempOrders builds the phase-one order assignments: current collection
// max, plus the offset, plus the item's position in the batch.
func assignTempOrders(finals []models.ItineraryItem, maxByCollection map[uuid.UUID]int) []OrderAssignment {
	temp := make([]OrderAssignment, 0, len(finals))
	for i, item := range finals {
		temp = append(temp, OrderAssignment{
			ID:    item.ID,
			Order: maxByCollection[item.CollectionID] + tempOrderOffset + i,
		})
	}
	return temp
}

// resolveOrderCollisions bumps any requested order that is already taken in
// its target bucket, by a row outside the batch or by an earlier entry of the
// batch itself, to the next free slot above the bucket maximum.
func resolveOrderCollisions(finals []models.ItineraryItem, existing map[bucketKey]map[uuid.UUID]int) {
	inBatch := make(map[uuid.UUID]struct{}, len(finals))
	for _, f := range finals {
		inBatch[f.ID] = struct{}{}
	}

	used := make(map[bucketKey]map[int]struct{})
	maxOrder := make(map[bucketKey]int)
	touch := func(key bucketKey) {
		if used[key] == nil {
			used[key] = make(map[int]struct{})
			maxOrder[key] = -1
		}
	}

	for key, rows := range existing {
		for id, order := range rows {
			if _, ok := inBatch[id]; ok {
				continue
			}
			touch(key)
			used[key][order] = struct{}{}
			if order > maxOrder[key] {
				maxOrder[key] = order
			}
		}
	}

	for i := range finals {
		key := bucketOf(&finals[i])
		touch(key)
		order := finals[i].Order
		if _, taken := used[key][order]; taken {
			order = maxOrder[key] + 1
		}
		used[key][order] = struct{}{}
		if order > maxOrder[key] {
			maxOrder[key] = order
		}
		finals[i].Order = order
	}
}
