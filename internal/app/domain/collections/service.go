package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/domain/itinerary"
	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

// CollectionDetail is a collection with its itinerary inlined.
type CollectionDetail struct {
	models.Collection
	Itinerary *itinerary.Itinerary `json:"itinerary"`
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Collection, error)
	Get(ctx context.Context, userID, collectionID uuid.UUID) (*CollectionDetail, error)
	Create(ctx context.Context, userID uuid.UUID, collection *models.Collection) (*models.Collection, error)
	// UpdateDates changes the collection's date range and purges itinerary
	// records that fall outside the new bounds.
	UpdateDates(ctx context.Context, userID, collectionID uuid.UUID, start, end *time.Time) (*models.Collection, error)
	// DeleteLocation removes a location the user owns, cascading to its
	// itinerary items.
	DeleteLocation(ctx context.Context, userID, locationID uuid.UUID) error
}

type ServiceImpl struct {
	logger    *zap.Logger
	repo      Repository
	itinerary itinerary.Service
}

func NewService(repo Repository, itinerarySvc itinerary.Service, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger.With(zap.String("service", "CollectionsService")),
		repo:      repo,
		itinerary: itinerarySvc,
	}
}

func (s *ServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]models.Collection, error) {
	ctx, span := otel.Tracer("CollectionsService").Start(ctx, "List")
	defer span.End()

	collections, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing collections failed")
		return nil, err
	}
	return collections, nil
}

func (s *ServiceImpl) Get(ctx context.Context, userID, collectionID uuid.UUID) (*CollectionDetail, error) {
	ctx, span := otel.Tracer("CollectionsService").Start(ctx, "Get")
	defer span.End()

	collection, err := s.repo.GetByID(ctx, collectionID)
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

	schedule, err := s.itinerary.GetItinerary(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	return &CollectionDetail{Collection: *collection, Itinerary: schedule}, nil
}

func (s *ServiceImpl) Create(ctx context.Context, userID uuid.UUID, collection *models.Collection) (*models.Collection, error) {
	ctx, span := otel.Tracer("CollectionsService").Start(ctx, "Create")
	defer span.End()

	if collection.Name == "" {
		return nil, fmt.Errorf("%w: collection name is required", models.ErrValidation)
	}
	if collection.StartDate != nil && collection.EndDate != nil && collection.EndDate.Before(*collection.StartDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", models.ErrValidation)
	}

	collection.UserID = userID
	created, err := s.repo.Create(ctx, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection create failed")
		return nil, err
	}
	return created, nil
}

func (s *ServiceImpl) UpdateDates(ctx context.Context, userID, collectionID uuid.UUID, start, end *time.Time) (*models.Collection, error) {
	ctx, span := otel.Tracer("CollectionsService").Start(ctx, "UpdateDates")
	defer span.End()
	l := s.logger.With(zap.String("method", "UpdateDates"), zap.String("collection_id", collectionID.String()))

	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end_date before start_date", models.ErrValidation)
	}

	canEdit, err := s.repo.UserCanEdit(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, fmt.Errorf("%w: no access to collection %s", models.ErrForbidden, collectionID)
	}

	updated, err := s.repo.UpdateDates(ctx, collectionID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "date update failed")
		return nil, err
	}

	items, days, err := s.itinerary.PurgeOutsideRange(ctx, collectionID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to purge out-of-range itinerary records: %w", err)
	}
	span.SetAttributes(attribute.Int64("purged.items", items), attribute.Int64("purged.days", days))
	if items > 0 || days > 0 {
		l.Info("date shrink purged itinerary records", zap.Int64("items", items), zap.Int64("days", days))
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteLocation(ctx context.Context, userID, locationID uuid.UUID) error {
	ctx, span := otel.Tracer("CollectionsService").Start(ctx, "DeleteLocation")
	defer span.End()

	location, err := s.repo.GetLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if location.UserID != userID {
		return fmt.Errorf("%w: location %s", models.ErrForbidden, locationID)
	}

	if err := s.repo.DeleteLocation(ctx, locationID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location delete failed")
		return err
	}

	// Explicit cascade: itinerary items reference content by kind+id, with no
	// foreign key to cascade through.
	if _, err := s.itinerary.ContentDeleted(ctx, models.ContentLocation, locationID); err != nil {
		return fmt.Errorf("failed to cascade location delete: %w", err)
	}
	return nil
}
