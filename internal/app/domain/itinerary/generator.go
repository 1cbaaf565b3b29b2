package itinerary

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

// Within one day, entities sort by kind before input order.
var kindPriority = map[models.ContentKind]int{
	models.ContentLodging:        1,
	models.ContentLocation:       2,
	models.ContentTransportation: 3,
	models.ContentNote:           4,
	models.ContentChecklist:      5,
}

// collectionContent gathers the dated child entities the generator scans.
type collectionContent struct {
	Visits         []models.Visit
	Lodging        []models.Lodging
	Transportation []models.Transportation
	Notes          []models.Note
	Checklists     []models.Checklist
}

type dayEntry struct {
	content  models.ContentRef
	priority int
	seq      int
}

// bucketDay maps a timestamp to the calendar day it belongs to. A timestamp
// that is exactly midnight UTC is treated as date-only and never converted,
// even though it could be a genuine midnight moment in another zone; otherwise
// the entity's own timezone decides the day, falling back to UTC.
func bucketDay(t time.Time, tz string) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	}
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			local := t.In(loc)
			return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// buildItinerary assigns every dated child entity of the collection to a day
// within [start, end] and orders each day by kind priority, ties by input
// order. Visits contribute one item per day they span, referencing their
// Location; lodging contributes its check-in day, transportation its
// departure day, notes and checklists their own date.
func buildItinerary(collectionID uuid.UUID, start, end time.Time, content collectionContent) []models.ItineraryItem {
	start = bucketDay(start, "")
	end = bucketDay(end, "")

	buckets := make(map[time.Time][]dayEntry)
	seq := 0
	add := func(day time.Time, ref models.ContentRef) {
		if day.Before(start) || day.After(end) {
			return
		}
		buckets[day] = append(buckets[day], dayEntry{content: ref, priority: kindPriority[ref.Kind], seq: seq})
		seq++
	}

	for _, v := range content.Visits {
		first := bucketDay(v.StartDate, v.Timezone)
		last := first
		if v.EndDate != nil {
			last = bucketDay(*v.EndDate, v.Timezone)
		}
		if first.Before(start) {
			first = start
		}
		if last.After(end) {
			last = end
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			add(day, models.ContentRef{Kind: models.ContentLocation, ID: v.LocationID})
		}
	}
	for _, l := range content.Lodging {
		if l.CheckIn == nil {
			continue
		}
		add(bucketDay(*l.CheckIn, l.Timezone), models.ContentRef{Kind: models.ContentLodging, ID: l.ID})
	}
	for _, t := range content.Transportation {
		if t.Date == nil {
			continue
		}
		add(bucketDay(*t.Date, t.StartTimezone), models.ContentRef{Kind: models.ContentTransportation, ID: t.ID})
	}
	for _, n := range content.Notes {
		if n.Date == nil {
			continue
		}
		add(bucketDay(*n.Date, ""), models.ContentRef{Kind: models.ContentNote, ID: n.ID})
	}
	for _, c := range content.Checklists {
		if c.Date == nil {
			continue
		}
		add(bucketDay(*c.Date, ""), models.ContentRef{Kind: models.ContentChecklist, ID: c.ID})
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var items []models.ItineraryItem
	for _, day := range days {
		entries := buckets[day]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].priority != entries[j].priority {
				return entries[i].priority < entries[j].priority
			}
			return entries[i].seq < entries[j].seq
		})
		d := day
		for order, entry := range entries {
			items = append(items, models.ItineraryItem{
				CollectionID: collectionID,
				Content:      entry.content,
				Date:         &d,
				Order:        order,
			})
		}
	}
	return items
}
