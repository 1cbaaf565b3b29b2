package itinerary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
	"github.com/imdeafyo/AdventureLog/internal/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

// Itinerary is a collection's full schedule: items plus day metadata.
type Itinerary struct {
	Items []models.ItineraryItem `json:"items"`
	Days  []models.ItineraryDay  `json:"days"`
}

type Service interface {
	// AutoGenerate builds the initial itinerary for a collection in one bulk
	// create. Fails when the collection already has items, lacks a date range,
	// or no child entity yields a dated record.
	AutoGenerate(ctx context.Context, userID, collectionID uuid.UUID) ([]models.ItineraryItem, error)
	// Reorder applies a batch of day/order moves atomically.
	Reorder(ctx context.Context, userID uuid.UUID, updates []models.ItemUpdate) ([]models.ItineraryItem, error)
	CreateItem(ctx context.Context, userID uuid.UUID, req *models.CreateItemRequest) (*models.ItineraryItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID, preserveVisits bool) error
	GetItinerary(ctx context.Context, userID, collectionID uuid.UUID) (*Itinerary, error)

	UpsertDay(ctx context.Context, userID uuid.UUID, day *models.ItineraryDay) (*models.ItineraryDay, error)
	DeleteDay(ctx context.Context, userID, collectionID uuid.UUID, date time.Time) error

	// ContentDeleted removes every itinerary item referencing a deleted
	// entity. Called from the entity deletion paths.
	ContentDeleted(ctx context.Context, kind models.ContentKind, objectID uuid.UUID) (int64, error)
	// PurgeOutsideRange drops items and day metadata outside the given bounds.
	// Called when a collection's date range shrinks.
	PurgeOutsideRange(ctx context.Context, collectionID uuid.UUID, start, end *time.Time) (int64, int64, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repository
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger.With(zap.String("service", "ItineraryService")),
		repo:   repo,
	}
}

func (s *ServiceImpl) requireEdit(ctx context.Context, collectionID, userID uuid.UUID) (*models.Collection, error) {
	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	canEdit, err := s.repo.UserCanEdit(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, fmt.Errorf("%w: no access to collection %s", models.ErrForbidden, collectionID)
	}
	return collection, nil
}

func (s *ServiceImpl) AutoGenerate(ctx context.Context, userID, collectionID uuid.UUID) ([]models.ItineraryItem, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "AutoGenerate")
	defer span.End()
	l := s.logger.With(zap.String("method", "AutoGenerate"), zap.String("collection_id", collectionID.String()))

	collection, err := s.requireEdit(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}
	if collection.StartDate == nil || collection.EndDate == nil {
		return nil, fmt.Errorf("%w: collection has no date range", models.ErrValidation)
	}

	count, err := s.repo.CountItems(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: collection already has itinerary items", models.ErrValidation)
	}

	content, err := s.loadContent(ctx, collectionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "loading collection content failed")
		return nil, err
	}

	items := buildItinerary(collectionID, *collection.StartDate, *collection.EndDate, content)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no dated entities to generate from", models.ErrValidation)
	}

	created, err := s.repo.BulkCreateItems(ctx, items)
	if err != nil {
		l.Error("bulk create failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk create failed")
		return nil, fmt.Errorf("failed to create itinerary items: %w", err)
	}

	metrics.Get().ItineraryItemsGenerated.Add(ctx, int64(len(created)))
	span.SetAttributes(attribute.Int("itinerary.generated", len(created)))
	l.Info("itinerary generated", zap.Int("items", len(created)))
	return created, nil
}

func (s *ServiceImpl) loadContent(ctx context.Context, collectionID uuid.UUID) (collectionContent, error) {
	var content collectionContent
	var err error
	if content.Visits, err = s.repo.ListVisits(ctx, collectionID); err != nil {
		return content, err
	}
	if content.Lodging, err = s.repo.ListLodging(ctx, collectionID); err != nil {
		return content, err
	}
	if content.Transportation, err = s.repo.ListTransportation(ctx, collectionID); err != nil {
		return content, err
	}
	if content.Notes, err = s.repo.ListNotes(ctx, collectionID); err != nil {
		return content, err
	}
	if content.Checklists, err = s.repo.ListChecklists(ctx, collectionID); err != nil {
		return content, err
	}
	return content, nil
}

func (s *ServiceImpl) Reorder(ctx context.Context, userID uuid.UUID, updates []models.ItemUpdate) ([]models.ItineraryItem, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Reorder")
	defer span.End()
	l := s.logger.With(zap.String("method", "Reorder"), zap.Int("batch_size", len(updates)))

	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: empty reorder batch", models.ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ID)
	}
	items, err := s.repo.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.ItineraryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	collections := make(map[uuid.UUID]*models.Collection)
	for _, u := range updates {
		item, ok := byID[u.ID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown itinerary item %s", models.ErrValidation, u.ID)
		}
		if _, seen := collections[item.CollectionID]; !seen {
			collection, err := s.requireEdit(ctx, item.CollectionID, userID)
			if err != nil {
				return nil, err
			}
			collections[item.CollectionID] = collection
		}
	}

	finals := make([]models.ItineraryItem, 0, len(updates))
	for _, u := range updates {
		final, err := applyUpdate(byID[u.ID], u, collections[byID[u.ID].CollectionID])
		if err != nil {
			return nil, err
		}
		finals = append(finals, final)
	}

	existing := make(map[bucketKey]map[uuid.UUID]int)
	for i := range finals {
		key := bucketOf(&finals[i])
		if _, done := existing[key]; done {
			continue
		}
		orders, err := s.repo.BucketOrders(ctx, key.collection, finals[i].Date, finals[i].IsGlobal)
		if err != nil {
			return nil, err
		}
		existing[key] = orders
	}
	resolveOrderCollisions(finals, existing)

	maxByCollection := make(map[uuid.UUID]int, len(collections))
	for id := range collections {
		max, err := s.repo.MaxOrderInCollection(ctx, id)
		if err != nil {
			return nil, err
		}
		maxByCollection[id] = max
	}

	if err := s.repo.ApplyReorder(ctx, assignTempOrders(finals, maxByCollection), finals); err != nil {
		l.Error("reorder failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "reorder failed")
		return nil, fmt.Errorf("failed to apply reorder: %w", err)
	}

	metrics.Get().ReorderBatchesTotal.Add(ctx, 1)
	updated, err := s.repo.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	l.Info("reorder applied")
	return updated, nil
}

func (s *ServiceImpl) CreateItem(ctx context.Context, userID uuid.UUID, req *models.CreateItemRequest) (*models.ItineraryItem, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateItem")
	defer span.End()
	l := s.logger.With(zap.String("method", "CreateItem"), zap.String("collection_id", req.CollectionID.String()))

	kind, err := models.ParseContentKind(req.ContentType)
	if err != nil {
		return nil, err
	}

	collection, err := s.requireEdit(ctx, req.CollectionID, userID)
	if err != nil {
		return nil, err
	}

	if req.IsGlobal && req.Date != nil {
		return nil, fmt.Errorf("%w: item cannot be both dated and global", models.ErrValidation)
	}
	if !req.IsGlobal && req.Date == nil {
		return nil, fmt.Errorf("%w: item must be dated or global", models.ErrValidation)
	}

	var date *time.Time
	if req.Date != nil {
		day := bucketDay(*req.Date, "")
		if collection.StartDate != nil && day.Before(bucketDay(*collection.StartDate, "")) {
			return nil, fmt.Errorf("%w: date before collection start", models.ErrValidation)
		}
		if collection.EndDate != nil && day.After(bucketDay(*collection.EndDate, "")) {
			return nil, fmt.Errorf("%w: date after collection end", models.ErrValidation)
		}
		date = &day
	}

	exists, err := s.repo.ContentExists(ctx, kind, req.ObjectID, req.CollectionID, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, req.ObjectID)
	}

	max, err := s.repo.MaxOrderInBucket(ctx, req.CollectionID, date, req.IsGlobal)
	if err != nil {
		return nil, err
	}
	order := req.Order
	if order <= max {
		// Silent reassignment keeps the bucket invariant without failing the
		// request.
		order = max + 1
	}

	created, err := s.repo.CreateItem(ctx, &models.ItineraryItem{
		CollectionID: req.CollectionID,
		Content:      models.ContentRef{Kind: kind, ID: req.ObjectID},
		Date:         date,
		IsGlobal:     req.IsGlobal,
		Order:        order,
	})
	if err != nil {
		l.Error("item create failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "item create failed")
		return nil, err
	}

	if req.SyncContentDate && date != nil {
		if err := s.syncContentDate(ctx, kind, req, *date); err != nil {
			l.Warn("content date sync failed", zap.Error(err))
			span.RecordError(err)
			return nil, fmt.Errorf("failed to sync content date: %w", err)
		}
	}

	return created, nil
}

// syncContentDate pushes the itinerary slot date into the referenced entity.
func (s *ServiceImpl) syncContentDate(ctx context.Context, kind models.ContentKind, req *models.CreateItemRequest, day time.Time) error {
	switch kind {
	case models.ContentLocation:
		return s.syncVisitForLocation(ctx, req, day)
	case models.ContentVisit:
		visit, err := s.repo.GetVisit(ctx, req.ObjectID)
		if err != nil {
			return err
		}
		return s.extendVisit(ctx, visit, day)
	case models.ContentTransportation:
		t, err := s.repo.GetTransportation(ctx, req.ObjectID)
		if err != nil {
			return err
		}
		if t.Date == nil {
			return s.repo.UpdateTransportationDates(ctx, t.ID, &day, nil)
		}
		start := shiftToDay(*t.Date, day)
		var end *time.Time
		if t.EndDate != nil {
			shifted := start.Add(t.EndDate.Sub(*t.Date))
			end = &shifted
		}
		return s.repo.UpdateTransportationDates(ctx, t.ID, &start, end)
	case models.ContentLodging:
		lodging, err := s.repo.GetLodging(ctx, req.ObjectID)
		if err != nil {
			return err
		}
		if lodging.CheckIn == nil {
			// No prior stay: default to one night starting on the slot day.
			checkOut := day.AddDate(0, 0, 1)
			return s.repo.UpdateLodgingDates(ctx, lodging.ID, &day, &checkOut)
		}
		checkIn := shiftToDay(*lodging.CheckIn, day)
		var checkOut *time.Time
		if lodging.CheckOut != nil {
			shifted := checkIn.Add(lodging.CheckOut.Sub(*lodging.CheckIn))
			checkOut = &shifted
		}
		return s.repo.UpdateLodgingDates(ctx, lodging.ID, &checkIn, checkOut)
	case models.ContentNote, models.ContentChecklist:
		return s.repo.SetContentDate(ctx, kind, req.ObjectID, &day)
	}
	return nil
}

// syncVisitForLocation ensures a visit at the location covers the slot day:
// a caller-specified source visit is extended, an already-covering visit is
// left alone, otherwise a new visit is created.
func (s *ServiceImpl) syncVisitForLocation(ctx context.Context, req *models.CreateItemRequest, day time.Time) error {
	if req.SourceVisitID != nil {
		visit, err := s.repo.GetVisit(ctx, *req.SourceVisitID)
		if err != nil {
			return err
		}
		return s.extendVisit(ctx, visit, day)
	}

	covering, err := s.repo.FindVisitCovering(ctx, req.ObjectID, day)
	if err != nil {
		return err
	}
	if covering != nil {
		return nil
	}

	visit := &models.Visit{LocationID: req.ObjectID, StartDate: day}
	if req.StartDate != nil {
		visit.StartDate = *req.StartDate
		visit.EndDate = req.EndDate
	}
	_, err = s.repo.CreateVisit(ctx, visit)
	return err
}

// extendVisit widens the visit's range just enough to include day.
func (s *ServiceImpl) extendVisit(ctx context.Context, visit *models.Visit, day time.Time) error {
	start := visit.StartDate
	end := visit.EndDate

	if day.Before(bucketDay(start, visit.Timezone)) {
		start = day
	}
	lastDay := bucketDay(start, visit.Timezone)
	if end != nil {
		lastDay = bucketDay(*end, visit.Timezone)
	}
	if day.After(lastDay) {
		end = &day
	}

	if start.Equal(visit.StartDate) && equalTimePtr(end, visit.EndDate) {
		return nil
	}
	return s.repo.UpdateVisitDates(ctx, visit.ID, start, end)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// shiftToDay moves a timestamp onto another calendar day, keeping the
// original UTC time of day.
func shiftToDay(t, day time.Time) time.Time {
	u := t.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), time.UTC)
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, userID, itemID uuid.UUID, preserveVisits bool) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteItem")
	defer span.End()
	l := s.logger.With(zap.String("method", "DeleteItem"), zap.String("item_id", itemID.String()))

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.requireEdit(ctx, item.CollectionID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "item delete failed")
		return err
	}

	// A dated location slot normally takes its same-day visit with it;
	// preserveVisits is set when the item is being moved to the global bucket.
	if item.Content.Kind == models.ContentLocation && item.Date != nil && !preserveVisits {
		deleted, err := s.repo.DeleteVisitsOnDay(ctx, item.Content.ID, *item.Date)
		if err != nil {
			return fmt.Errorf("failed to delete same-day visits: %w", err)
		}
		l.Info("item deleted", zap.Int64("visits_deleted", deleted))
		return nil
	}

	l.Info("item deleted")
	return nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, collectionID uuid.UUID) (*Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary")
	defer span.End()

	collection, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !collection.IsPublic {
		canEdit, err := s.repo.UserCanEdit(ctx, collectionID, userID)
		if err != nil {
			return nil, err
		}
		if !canEdit {
			return nil, fmt.Errorf("%w: no access to collection %s", models.ErrForbidden, collectionID)
		}
	}

	items, err := s.repo.ListItems(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	days, err := s.repo.ListDays(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return &Itinerary{Items: items, Days: days}, nil
}

func (s *ServiceImpl) UpsertDay(ctx context.Context, userID uuid.UUID, day *models.ItineraryDay) (*models.ItineraryDay, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "UpsertDay")
	defer span.End()

	collection, err := s.requireEdit(ctx, day.CollectionID, userID)
	if err != nil {
		return nil, err
	}

	date := bucketDay(day.Date, "")
	if collection.StartDate != nil && date.Before(bucketDay(*collection.StartDate, "")) {
		return nil, fmt.Errorf("%w: day before collection start", models.ErrValidation)
	}
	if collection.EndDate != nil && date.After(bucketDay(*collection.EndDate, "")) {
		return nil, fmt.Errorf("%w: day after collection end", models.ErrValidation)
	}
	day.Date = date

	return s.repo.UpsertDay(ctx, day)
}

func (s *ServiceImpl) DeleteDay(ctx context.Context, userID, collectionID uuid.UUID, date time.Time) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteDay")
	defer span.End()

	if _, err := s.requireEdit(ctx, collectionID, userID); err != nil {
		return err
	}
	return s.repo.DeleteDay(ctx, collectionID, bucketDay(date, ""))
}

func (s *ServiceImpl) ContentDeleted(ctx context.Context, kind models.ContentKind, objectID uuid.UUID) (int64, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ContentDeleted")
	defer span.End()
	return s.repo.DeleteItemsForContent(ctx, kind, objectID)
}

func (s *ServiceImpl) PurgeOutsideRange(ctx context.Context, collectionID uuid.UUID, start, end *time.Time) (int64, int64, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "PurgeOutsideRange")
	defer span.End()

	items, days, err := s.repo.PurgeOutsideRange(ctx, collectionID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "purge failed")
		return 0, 0, err
	}
	if items > 0 || days > 0 {
		s.logger.Info("purged out-of-range itinerary records",
			zap.String("collection_id", collectionID.String()),
			zap.Int64("items", items),
			zap.Int64("days", days))
	}
	return items, days, nil
}
