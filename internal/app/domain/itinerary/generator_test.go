package itinerary

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func TestBuildItinerary_ThreeDayScenario(t *testing.T) {
	collectionID := uuid.New()
	locationID := uuid.New()
	lodgingID := uuid.New()
	transportID := uuid.New()

	content := collectionContent{
		Visits: []models.Visit{
			{ID: uuid.New(), LocationID: locationID, StartDate: day(2024, 6, 1), EndDate: dayPtr(2024, 6, 2)},
		},
		Lodging: []models.Lodging{
			{ID: lodgingID, CheckIn: dayPtr(2024, 6, 1)},
		},
		Transportation: []models.Transportation{
			{ID: transportID, Date: dayPtr(2024, 6, 3)},
		},
	}

	items := buildItinerary(collectionID, day(2024, 6, 1), day(2024, 6, 3), content)
	require.Len(t, items, 4)

	// Day 1: lodging before the visit's location.
	assert.Equal(t, day(2024, 6, 1), *items[0].Date)
	assert.Equal(t, models.ContentLodging, items[0].Content.Kind)
	assert.Equal(t, 0, items[0].Order)
	assert.Equal(t, day(2024, 6, 1), *items[1].Date)
	assert.Equal(t, models.ContentLocation, items[1].Content.Kind)
	assert.Equal(t, locationID, items[1].Content.ID)
	assert.Equal(t, 1, items[1].Order)

	// Day 2: the visit's second day, order restarts at zero.
	assert.Equal(t, day(2024, 6, 2), *items[2].Date)
	assert.Equal(t, models.ContentLocation, items[2].Content.Kind)
	assert.Equal(t, 0, items[2].Order)

	// Day 3: transportation only.
	assert.Equal(t, day(2024, 6, 3), *items[3].Date)
	assert.Equal(t, models.ContentTransportation, items[3].Content.Kind)
	assert.Equal(t, 0, items[3].Order)

	for _, item := range items {
		assert.Equal(t, collectionID, item.CollectionID)
		assert.False(t, item.IsGlobal)
	}
}

func TestBuildItinerary_ClipsToCollectionRange(t *testing.T) {
	collectionID := uuid.New()
	locationID := uuid.New()

	content := collectionContent{
		Visits: []models.Visit{
			// Spans well past the collection end.
			{ID: uuid.New(), LocationID: locationID, StartDate: day(2024, 5, 30), EndDate: dayPtr(2024, 6, 10)},
		},
		Notes: []models.Note{
			{ID: uuid.New(), Date: dayPtr(2024, 7, 1)},
		},
	}

	items := buildItinerary(collectionID, day(2024, 6, 1), day(2024, 6, 2), content)
	require.Len(t, items, 2)
	assert.Equal(t, day(2024, 6, 1), *items[0].Date)
	assert.Equal(t, day(2024, 6, 2), *items[1].Date)
}

func TestBuildItinerary_KindPriorityWithinDay(t *testing.T) {
	collectionID := uuid.New()
	d := dayPtr(2024, 6, 1)

	content := collectionContent{
		Checklists:     []models.Checklist{{ID: uuid.New(), Date: d}},
		Notes:          []models.Note{{ID: uuid.New(), Date: d}},
		Transportation: []models.Transportation{{ID: uuid.New(), Date: d}},
		Visits:         []models.Visit{{ID: uuid.New(), LocationID: uuid.New(), StartDate: *d}},
		Lodging:        []models.Lodging{{ID: uuid.New(), CheckIn: d}},
	}

	items := buildItinerary(collectionID, day(2024, 6, 1), day(2024, 6, 1), content)
	require.Len(t, items, 5)

	kinds := make([]models.ContentKind, 0, len(items))
	for i, item := range items {
		assert.Equal(t, i, item.Order)
		kinds = append(kinds, item.Content.Kind)
	}
	assert.Equal(t, []models.ContentKind{
		models.ContentLodging,
		models.ContentLocation,
		models.ContentTransportation,
		models.ContentNote,
		models.ContentChecklist,
	}, kinds)
}

func TestBuildItinerary_StableOrderWithinKind(t *testing.T) {
	collectionID := uuid.New()
	d := dayPtr(2024, 6, 1)
	first := uuid.New()
	second := uuid.New()

	content := collectionContent{
		Notes: []models.Note{
			{ID: first, Date: d},
			{ID: second, Date: d},
		},
	}

	items := buildItinerary(collectionID, day(2024, 6, 1), day(2024, 6, 1), content)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].Content.ID)
	assert.Equal(t, second, items[1].Content.ID)
}

func TestBucketDay_UTCMidnightIsDateOnly(t *testing.T) {
	// Exactly midnight UTC never gets converted, even with a timezone set.
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, 6, 1), bucketDay(ts, "America/New_York"))
}

func TestBucketDay_ConvertsUsingTimezone(t *testing.T) {
	// 02:00 UTC on June 2 is still June 1 in New York.
	ts := time.Date(2024, 6, 2, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, 6, 1), bucketDay(ts, "America/New_York"))
}

func TestBucketDay_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	ts := time.Date(2024, 6, 2, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, 6, 2), bucketDay(ts, "Not/AZone"))
}
