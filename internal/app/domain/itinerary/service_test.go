package itinerary

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockRepository) UserCanEdit(ctx context.Context, collectionID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, collectionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListItems(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryItem, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.ItineraryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) GetItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ItineraryItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) CountItems(ctx context.Context, collectionID uuid.UUID) (int, error) {
	args := m.Called(ctx, collectionID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) MaxOrderInBucket(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (int, error) {
	args := m.Called(ctx, collectionID, date, isGlobal)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) MaxOrderInCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	args := m.Called(ctx, collectionID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) BucketOrders(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, collectionID, date, isGlobal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockRepository) CreateItem(ctx context.Context, item *models.ItineraryItem) (*models.ItineraryItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) BulkCreateItems(ctx context.Context, items []models.ItineraryItem) ([]models.ItineraryItem, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryItem), args.Error(1)
}

func (m *MockRepository) ApplyReorder(ctx context.Context, temp []OrderAssignment, finals []models.ItineraryItem) error {
	args := m.Called(ctx, temp, finals)
	return args.Error(0)
}

func (m *MockRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteItemsForContent(ctx context.Context, kind models.ContentKind, objectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, kind, objectID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) PurgeOutsideRange(ctx context.Context, collectionID uuid.UUID, start, end *time.Time) (int64, int64, error) {
	args := m.Called(ctx, collectionID, start, end)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpsertDay(ctx context.Context, day *models.ItineraryDay) (*models.ItineraryDay, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItineraryDay), args.Error(1)
}

func (m *MockRepository) ListDays(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryDay, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItineraryDay), args.Error(1)
}

func (m *MockRepository) DeleteDay(ctx context.Context, collectionID uuid.UUID, date time.Time) error {
	args := m.Called(ctx, collectionID, date)
	return args.Error(0)
}

func (m *MockRepository) ListVisits(ctx context.Context, collectionID uuid.UUID) ([]models.Visit, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Visit), args.Error(1)
}

func (m *MockRepository) ListLodging(ctx context.Context, collectionID uuid.UUID) ([]models.Lodging, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lodging), args.Error(1)
}

func (m *MockRepository) ListTransportation(ctx context.Context, collectionID uuid.UUID) ([]models.Transportation, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transportation), args.Error(1)
}

func (m *MockRepository) ListNotes(ctx context.Context, collectionID uuid.UUID) ([]models.Note, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockRepository) ListChecklists(ctx context.Context, collectionID uuid.UUID) ([]models.Checklist, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Checklist), args.Error(1)
}

func (m *MockRepository) ContentExists(ctx context.Context, kind models.ContentKind, objectID, collectionID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, objectID, collectionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetVisit(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockRepository) FindVisitCovering(ctx context.Context, locationID uuid.UUID, day time.Time) (*models.Visit, error) {
	args := m.Called(ctx, locationID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockRepository) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	args := m.Called(ctx, visit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Visit), args.Error(1)
}

func (m *MockRepository) UpdateVisitDates(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
	args := m.Called(ctx, id, start, end)
	return args.Error(0)
}

func (m *MockRepository) DeleteVisitsOnDay(ctx context.Context, locationID uuid.UUID, day time.Time) (int64, error) {
	args := m.Called(ctx, locationID, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetLodging(ctx context.Context, id uuid.UUID) (*models.Lodging, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lodging), args.Error(1)
}

func (m *MockRepository) UpdateLodgingDates(ctx context.Context, id uuid.UUID, checkIn, checkOut *time.Time) error {
	args := m.Called(ctx, id, checkIn, checkOut)
	return args.Error(0)
}

func (m *MockRepository) GetTransportation(ctx context.Context, id uuid.UUID) (*models.Transportation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transportation), args.Error(1)
}

func (m *MockRepository) UpdateTransportationDates(ctx context.Context, id uuid.UUID, date, endDate *time.Time) error {
	args := m.Called(ctx, id, date, endDate)
	return args.Error(0)
}

func (m *MockRepository) SetContentDate(ctx context.Context, kind models.ContentKind, id uuid.UUID, date *time.Time) error {
	args := m.Called(ctx, kind, id, date)
	return args.Error(0)
}

func newTestService(repo Repository) *ServiceImpl {
	return NewService(repo, zap.NewNop())
}

func TestAutoGenerate_RejectsExistingItems(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("CountItems", mock.Anything, collection.ID).Return(3, nil)

	_, err := newTestService(repo).AutoGenerate(context.Background(), userID, collection.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
	repo.AssertNotCalled(t, "BulkCreateItems", mock.Anything, mock.Anything)
}

func TestAutoGenerate_RejectsWithoutDateRange(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := &models.Collection{ID: uuid.New(), UserID: userID}

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)

	_, err := newTestService(repo).AutoGenerate(context.Background(), userID, collection.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAutoGenerate_RejectsWhenNothingDated(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("CountItems", mock.Anything, collection.ID).Return(0, nil)
	repo.On("ListVisits", mock.Anything, collection.ID).Return([]models.Visit{}, nil)
	repo.On("ListLodging", mock.Anything, collection.ID).Return([]models.Lodging{}, nil)
	repo.On("ListTransportation", mock.Anything, collection.ID).Return([]models.Transportation{}, nil)
	repo.On("ListNotes", mock.Anything, collection.ID).Return([]models.Note{}, nil)
	repo.On("ListChecklists", mock.Anything, collection.ID).Return([]models.Checklist{}, nil)

	_, err := newTestService(repo).AutoGenerate(context.Background(), userID, collection.ID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAutoGenerate_CreatesFullItinerary(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	locationID := uuid.New()

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("CountItems", mock.Anything, collection.ID).Return(0, nil)
	repo.On("ListVisits", mock.Anything, collection.ID).Return([]models.Visit{
		{ID: uuid.New(), LocationID: locationID, StartDate: day(2024, 6, 1), EndDate: dayPtr(2024, 6, 2)},
	}, nil)
	repo.On("ListLodging", mock.Anything, collection.ID).Return([]models.Lodging{
		{ID: uuid.New(), CheckIn: dayPtr(2024, 6, 1)},
	}, nil)
	repo.On("ListTransportation", mock.Anything, collection.ID).Return([]models.Transportation{
		{ID: uuid.New(), Date: dayPtr(2024, 6, 3)},
	}, nil)
	repo.On("ListNotes", mock.Anything, collection.ID).Return([]models.Note{}, nil)
	repo.On("ListChecklists", mock.Anything, collection.ID).Return([]models.Checklist{}, nil)
	repo.On("BulkCreateItems", mock.Anything, mock.MatchedBy(func(items []models.ItineraryItem) bool {
		return len(items) == 4
	})).Return([]models.ItineraryItem{{}, {}, {}, {}}, nil)

	items, err := newTestService(repo).AutoGenerate(context.Background(), userID, collection.ID)
	require.NoError(t, err)
	assert.Len(t, items, 4)
	repo.AssertExpectations(t)
}

func TestReorder_RejectsEmptyBatch(t *testing.T) {
	repo := new(MockRepository)
	_, err := newTestService(repo).Reorder(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReorder_RejectsUnknownItem(t *testing.T) {
	repo := new(MockRepository)
	unknown := uuid.New()
	repo.On("GetItemsByIDs", mock.Anything, []uuid.UUID{unknown}).Return([]models.ItineraryItem{}, nil)

	_, err := newTestService(repo).Reorder(context.Background(), uuid.New(), []models.ItemUpdate{{ID: unknown}})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReorder_RejectsWithoutCollectionAccess(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	item := datedItem(collection.ID, day(2024, 6, 1), 0)

	repo.On("GetItemsByIDs", mock.Anything, []uuid.UUID{item.ID}).Return([]models.ItineraryItem{item}, nil)
	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(false, nil)

	_, err := newTestService(repo).Reorder(context.Background(), userID, []models.ItemUpdate{{ID: item.ID}})
	assert.ErrorIs(t, err, models.ErrForbidden)
	repo.AssertNotCalled(t, "ApplyReorder", mock.Anything, mock.Anything, mock.Anything)
}

func TestReorder_ResolvesCollisionWithOccupant(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID

	itemA := datedItem(collection.ID, day(2024, 6, 1), 0)
	occupantB := uuid.New()
	target := day(2024, 6, 2)

	repo.On("GetItemsByIDs", mock.Anything, []uuid.UUID{itemA.ID}).Return([]models.ItineraryItem{itemA}, nil).Once()
	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("BucketOrders", mock.Anything, collection.ID, &target, false).Return(map[uuid.UUID]int{occupantB: 0}, nil)
	repo.On("MaxOrderInCollection", mock.Anything, collection.ID).Return(3, nil)
	repo.On("ApplyReorder", mock.Anything,
		mock.MatchedBy(func(temp []OrderAssignment) bool {
			return len(temp) == 1 && temp[0].Order == 3+tempOrderOffset
		}),
		mock.MatchedBy(func(finals []models.ItineraryItem) bool {
			// B keeps order 0, so A must land on order 1.
			return len(finals) == 1 && finals[0].Order == 1 && finals[0].Date.Equal(target)
		}),
	).Return(nil)
	moved := itemA
	moved.Date = &target
	moved.Order = 1
	repo.On("GetItemsByIDs", mock.Anything, []uuid.UUID{itemA.ID}).Return([]models.ItineraryItem{moved}, nil)

	items, err := newTestService(repo).Reorder(context.Background(), userID, []models.ItemUpdate{
		{ID: itemA.ID, Date: &target, Order: intPtr(0)},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Order)
	repo.AssertExpectations(t)
}

func TestCreateItem_ReassignsConflictingOrder(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	noteID := uuid.New()
	target := day(2024, 6, 2)

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("ContentExists", mock.Anything, models.ContentNote, noteID, collection.ID, userID).Return(true, nil)
	repo.On("MaxOrderInBucket", mock.Anything, collection.ID, &target, false).Return(4, nil)
	repo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *models.ItineraryItem) bool {
		return item.Order == 5
	})).Return(&models.ItineraryItem{ID: uuid.New(), Order: 5}, nil)

	item, err := newTestService(repo).CreateItem(context.Background(), userID, &models.CreateItemRequest{
		CollectionID: collection.ID,
		ContentType:  "note",
		ObjectID:     noteID,
		Date:         &target,
		Order:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, item.Order)
}

func TestCreateItem_RejectsDatedAndGlobal(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	target := day(2024, 6, 2)

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)

	_, err := newTestService(repo).CreateItem(context.Background(), userID, &models.CreateItemRequest{
		CollectionID: collection.ID,
		ContentType:  "note",
		ObjectID:     uuid.New(),
		Date:         &target,
		IsGlobal:     true,
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateItem_SyncsNoteDate(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	noteID := uuid.New()
	target := day(2024, 6, 2)

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("ContentExists", mock.Anything, models.ContentNote, noteID, collection.ID, userID).Return(true, nil)
	repo.On("MaxOrderInBucket", mock.Anything, collection.ID, &target, false).Return(-1, nil)
	repo.On("CreateItem", mock.Anything, mock.Anything).Return(&models.ItineraryItem{ID: uuid.New()}, nil)
	repo.On("SetContentDate", mock.Anything, models.ContentNote, noteID, &target).Return(nil)

	_, err := newTestService(repo).CreateItem(context.Background(), userID, &models.CreateItemRequest{
		CollectionID:    collection.ID,
		ContentType:     "note",
		ObjectID:        noteID,
		Date:            &target,
		SyncContentDate: true,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateItem_SyncCreatesVisitWhenNoneCovers(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	locationID := uuid.New()
	target := day(2024, 6, 2)

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("ContentExists", mock.Anything, models.ContentLocation, locationID, collection.ID, userID).Return(true, nil)
	repo.On("MaxOrderInBucket", mock.Anything, collection.ID, &target, false).Return(-1, nil)
	repo.On("CreateItem", mock.Anything, mock.Anything).Return(&models.ItineraryItem{ID: uuid.New()}, nil)
	repo.On("FindVisitCovering", mock.Anything, locationID, target).Return(nil, nil)
	repo.On("CreateVisit", mock.Anything, mock.MatchedBy(func(v *models.Visit) bool {
		return v.LocationID == locationID && v.StartDate.Equal(target)
	})).Return(&models.Visit{ID: uuid.New()}, nil)

	_, err := newTestService(repo).CreateItem(context.Background(), userID, &models.CreateItemRequest{
		CollectionID:    collection.ID,
		ContentType:     "location",
		ObjectID:        locationID,
		Date:            &target,
		SyncContentDate: true,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateItem_SyncShiftsLodgingPreservingDuration(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 10))
	collection.UserID = userID
	lodgingID := uuid.New()
	target := day(2024, 6, 5)

	checkIn := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)

	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("ContentExists", mock.Anything, models.ContentLodging, lodgingID, collection.ID, userID).Return(true, nil)
	repo.On("MaxOrderInBucket", mock.Anything, collection.ID, &target, false).Return(-1, nil)
	repo.On("CreateItem", mock.Anything, mock.Anything).Return(&models.ItineraryItem{ID: uuid.New()}, nil)
	repo.On("GetLodging", mock.Anything, lodgingID).Return(&models.Lodging{
		ID: lodgingID, CollectionID: collection.ID, CheckIn: &checkIn, CheckOut: &checkOut,
	}, nil)
	repo.On("UpdateLodgingDates", mock.Anything, lodgingID,
		mock.MatchedBy(func(in *time.Time) bool {
			return in.Equal(time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC))
		}),
		mock.MatchedBy(func(out *time.Time) bool {
			// Check-out keeps the original 2-night duration and time of day.
			return out.Equal(time.Date(2024, 6, 7, 11, 0, 0, 0, time.UTC))
		}),
	).Return(nil)

	_, err := newTestService(repo).CreateItem(context.Background(), userID, &models.CreateItemRequest{
		CollectionID:    collection.ID,
		ContentType:     "lodging",
		ObjectID:        lodgingID,
		Date:            &target,
		SyncContentDate: true,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteItem_RemovesSameDayVisit(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	locationID := uuid.New()
	d := day(2024, 6, 2)
	item := &models.ItineraryItem{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		Content:      models.ContentRef{Kind: models.ContentLocation, ID: locationID},
		Date:         &d,
	}

	repo.On("GetItem", mock.Anything, item.ID).Return(item, nil)
	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("DeleteItem", mock.Anything, item.ID).Return(nil)
	repo.On("DeleteVisitsOnDay", mock.Anything, locationID, d).Return(int64(1), nil)

	err := newTestService(repo).DeleteItem(context.Background(), userID, item.ID, false)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteItem_PreserveVisitsSkipsVisitDeletion(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	collection := boundedCollection(day(2024, 6, 1), day(2024, 6, 3))
	collection.UserID = userID
	d := day(2024, 6, 2)
	item := &models.ItineraryItem{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		Content:      models.ContentRef{Kind: models.ContentLocation, ID: uuid.New()},
		Date:         &d,
	}

	repo.On("GetItem", mock.Anything, item.ID).Return(item, nil)
	repo.On("GetCollection", mock.Anything, collection.ID).Return(collection, nil)
	repo.On("UserCanEdit", mock.Anything, collection.ID, userID).Return(true, nil)
	repo.On("DeleteItem", mock.Anything, item.ID).Return(nil)

	err := newTestService(repo).DeleteItem(context.Background(), userID, item.ID, true)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "DeleteVisitsOnDay", mock.Anything, mock.Anything, mock.Anything)
}
