package itinerary

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Querier is the pgxpool.Pool subset the repository needs. pgxmock pools
// satisfy it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// OrderAssignment is one (item, order) pair of the temporary phase of a bulk
// reorder.
type OrderAssignment struct {
	ID    uuid.UUID
	Order int
}

// Repository persists itinerary items and day metadata, and reads the dated
// child entities the generator and the date-sync paths work on. Order
// uniqueness within a bucket is the caller's responsibility.
type Repository interface {
	GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
	UserCanEdit(ctx context.Context, collectionID, userID uuid.UUID) (bool, error)

	ListItems(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.ItineraryItem, error)
	GetItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ItineraryItem, error)
	CountItems(ctx context.Context, collectionID uuid.UUID) (int, error)
	MaxOrderInBucket(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (int, error)
	MaxOrderInCollection(ctx context.Context, collectionID uuid.UUID) (int, error)
	BucketOrders(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (map[uuid.UUID]int, error)
	CreateItem(ctx context.Context, item *models.ItineraryItem) (*models.ItineraryItem, error)
	BulkCreateItems(ctx context.Context, items []models.ItineraryItem) ([]models.ItineraryItem, error)
	ApplyReorder(ctx context.Context, temp []OrderAssignment, finals []models.ItineraryItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemsForContent(ctx context.Context, kind models.ContentKind, objectID uuid.UUID) (int64, error)
	PurgeOutsideRange(ctx context.Context, collectionID uuid.UUID, start, end *time.Time) (int64, int64, error)

	UpsertDay(ctx context.Context, day *models.ItineraryDay) (*models.ItineraryDay, error)
	ListDays(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryDay, error)
	DeleteDay(ctx context.Context, collectionID uuid.UUID, date time.Time) error

	ListVisits(ctx context.Context, collectionID uuid.UUID) ([]models.Visit, error)
	ListLodging(ctx context.Context, collectionID uuid.UUID) ([]models.Lodging, error)
	ListTransportation(ctx context.Context, collectionID uuid.UUID) ([]models.Transportation, error)
	ListNotes(ctx context.Context, collectionID uuid.UUID) ([]models.Note, error)
	ListChecklists(ctx context.Context, collectionID uuid.UUID) ([]models.Checklist, error)

	ContentExists(ctx context.Context, kind models.ContentKind, objectID, collectionID, userID uuid.UUID) (bool, error)
	GetVisit(ctx context.Context, id uuid.UUID) (*models.Visit, error)
	FindVisitCovering(ctx context.Context, locationID uuid.UUID, day time.Time) (*models.Visit, error)
	CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error)
	UpdateVisitDates(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error
	DeleteVisitsOnDay(ctx context.Context, locationID uuid.UUID, day time.Time) (int64, error)
	GetLodging(ctx context.Context, id uuid.UUID) (*models.Lodging, error)
	UpdateLodgingDates(ctx context.Context, id uuid.UUID, checkIn, checkOut *time.Time) error
	GetTransportation(ctx context.Context, id uuid.UUID) (*models.Transportation, error)
	UpdateTransportationDates(ctx context.Context, id uuid.UUID, date, endDate *time.Time) error
	SetContentDate(ctx context.Context, kind models.ContentKind, id uuid.UUID, date *time.Time) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool Querier
}

func NewRepository(pgpool Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) GetCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	query := `
        SELECT id, user_id, name, is_public, start_date, end_date, created_at, updated_at
        FROM collections WHERE id = $1
    `
	var c models.Collection
	err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.IsPublic, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) UserCanEdit(ctx context.Context, collectionID, userID uuid.UUID) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM collections c
            LEFT JOIN collection_shared_users s
                ON s.collection_id = c.id AND s.user_id = $2
            WHERE c.id = $1 AND (c.user_id = $2 OR s.user_id IS NOT NULL)
        )
    `
	var ok bool
	if err := r.pgpool.QueryRow(ctx, query, collectionID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check collection access: %w", err)
	}
	return ok, nil
}

const itemColumns = `id, collection_id, content_type, object_id, date, is_global, item_order, created_at, updated_at`

func scanItem(row pgx.Row) (*models.ItineraryItem, error) {
	var item models.ItineraryItem
	var kind string
	err := row.Scan(
		&item.ID, &item.CollectionID, &kind, &item.Content.ID,
		&item.Date, &item.IsGlobal, &item.Order, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Content.Kind = models.ContentKind(kind)
	return &item, nil
}

func (r *RepositoryImpl) ListItems(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryItem, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM itinerary_items
        WHERE collection_id = $1
        ORDER BY is_global, date NULLS LAST, item_order
    `, itemColumns)
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()

	var items []models.ItineraryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) GetItem(ctx context.Context, id uuid.UUID) (*models.ItineraryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM itinerary_items WHERE id = $1`, itemColumns)
	item, err := scanItem(r.pgpool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: itinerary item %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query itinerary item: %w", err)
	}
	return item, nil
}

func (r *RepositoryImpl) GetItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ItineraryItem, error) {
	query, args, err := sq.Select(itemColumns).
		From("itinerary_items").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()

	var items []models.ItineraryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) CountItems(ctx context.Context, collectionID uuid.UUID) (int, error) {
	var count int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM itinerary_items WHERE collection_id = $1`, collectionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count itinerary items: %w", err)
	}
	return count, nil
}

// MaxOrderInBucket returns -1 when the bucket is empty.
func (r *RepositoryImpl) MaxOrderInBucket(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (int, error) {
	query, args, err := sq.Select("COALESCE(MAX(item_order), -1)").
		From("itinerary_items").
		Where(sq.Eq{"collection_id": collectionID, "date": date, "is_global": isGlobal}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build max order query: %w", err)
	}

	var max int
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to query max order: %w", err)
	}
	return max, nil
}

// MaxOrderInCollection returns -1 when the collection has no items.
func (r *RepositoryImpl) MaxOrderInCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	var max int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COALESCE(MAX(item_order), -1) FROM itinerary_items WHERE collection_id = $1`,
		collectionID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query collection max order: %w", err)
	}
	return max, nil
}

func (r *RepositoryImpl) BucketOrders(ctx context.Context, collectionID uuid.UUID, date *time.Time, isGlobal bool) (map[uuid.UUID]int, error) {
	query, args, err := sq.Select("id", "item_order").
		From("itinerary_items").
		Where(sq.Eq{"collection_id": collectionID, "date": date, "is_global": isGlobal}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bucket orders query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket orders: %w", err)
	}
	defer rows.Close()

	orders := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var order int
		if err := rows.Scan(&id, &order); err != nil {
			return nil, fmt.Errorf("failed to scan bucket order: %w", err)
		}
		orders[id] = order
	}
	return orders, rows.Err()
}

func (r *RepositoryImpl) CreateItem(ctx context.Context, item *models.ItineraryItem) (*models.ItineraryItem, error) {
	query := `
        INSERT INTO itinerary_items (collection_id, content_type, object_id, date, is_global, item_order)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	created := *item
	err := r.pgpool.QueryRow(ctx, query,
		item.CollectionID, string(item.Content.Kind), item.Content.ID,
		item.Date, item.IsGlobal, item.Order,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert itinerary item: %w", err)
	}
	return &created, nil
}

// BulkCreateItems inserts all items in one transaction; either the full batch
// persists or none of it does.
func (r *RepositoryImpl) BulkCreateItems(ctx context.Context, items []models.ItineraryItem) ([]models.ItineraryItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO itinerary_items (collection_id, content_type, object_id, date, is_global, item_order)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	created := make([]models.ItineraryItem, 0, len(items))
	for _, item := range items {
		row := item
		err := tx.QueryRow(ctx, query,
			item.CollectionID, string(item.Content.Kind), item.Content.ID,
			item.Date, item.IsGlobal, item.Order,
		).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert itinerary item: %w", err)
		}
		created = append(created, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bulk create: %w", err)
	}
	return created, nil
}

// ApplyReorder writes the temporary orders, then the final values, inside one
// transaction. A failure in either phase rolls the whole batch back.
func (r *RepositoryImpl) ApplyReorder(ctx context.Context, temp []OrderAssignment, finals []models.ItineraryItem) error {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tempBatch := &pgx.Batch{}
	for _, t := range temp {
		tempBatch.Queue(`UPDATE itinerary_items SET item_order = $1 WHERE id = $2`, t.Order, t.ID)
	}
	if err := execBatch(ctx, tx, tempBatch); err != nil {
		return fmt.Errorf("failed to apply temporary orders: %w", err)
	}

	finalBatch := &pgx.Batch{}
	for _, item := range finals {
		finalBatch.Queue(
			`UPDATE itinerary_items SET date = $1, is_global = $2, item_order = $3, updated_at = now() WHERE id = $4`,
			item.Date, item.IsGlobal, item.Order, item.ID,
		)
	}
	if err := execBatch(ctx, tx, finalBatch); err != nil {
		return fmt.Errorf("failed to apply final orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM itinerary_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: itinerary item %s", models.ErrNotFound, id)
	}
	return nil
}

func (r *RepositoryImpl) DeleteItemsForContent(ctx context.Context, kind models.ContentKind, objectID uuid.UUID) (int64, error) {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM itinerary_items WHERE content_type = $1 AND object_id = $2`,
		string(kind), objectID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cascade delete itinerary items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeOutsideRange removes dated items and day metadata falling outside the
// collection's (possibly half-open) date range.
func (r *RepositoryImpl) PurgeOutsideRange(ctx context.Context, collectionID uuid.UUID, start, end *time.Time) (int64, int64, error) {
	bounds := sq.Or{}
	if start != nil {
		bounds = append(bounds, sq.Lt{"date": *start})
	}
	if end != nil {
		bounds = append(bounds, sq.Gt{"date": *end})
	}
	if len(bounds) == 0 {
		return 0, 0, nil
	}

	itemQuery, itemArgs, err := sq.Delete("itinerary_items").
		Where(sq.Eq{"collection_id": collectionID}).
		Where(sq.NotEq{"date": nil}).
		Where(bounds).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build purge query: %w", err)
	}
	dayQuery, dayArgs, err := sq.Delete("itinerary_days").
		Where(sq.Eq{"collection_id": collectionID}).
		Where(bounds).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build day purge query: %w", err)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	itemTag, err := tx.Exec(ctx, itemQuery, itemArgs...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge itinerary items: %w", err)
	}
	dayTag, err := tx.Exec(ctx, dayQuery, dayArgs...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge itinerary days: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return itemTag.RowsAffected(), dayTag.RowsAffected(), nil
}

func (r *RepositoryImpl) UpsertDay(ctx context.Context, day *models.ItineraryDay) (*models.ItineraryDay, error) {
	query := `
        INSERT INTO itinerary_days (collection_id, date, name, description)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (collection_id, date)
        DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
        RETURNING id
    `
	saved := *day
	err := r.pgpool.QueryRow(ctx, query, day.CollectionID, day.Date, day.Name, day.Description).Scan(&saved.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert itinerary day: %w", err)
	}
	return &saved, nil
}

func (r *RepositoryImpl) ListDays(ctx context.Context, collectionID uuid.UUID) ([]models.ItineraryDay, error) {
	query := `
        SELECT id, collection_id, date, name, description
        FROM itinerary_days WHERE collection_id = $1 ORDER BY date
    `
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary days: %w", err)
	}
	defer rows.Close()

	var days []models.ItineraryDay
	for rows.Next() {
		var day models.ItineraryDay
		if err := rows.Scan(&day.ID, &day.CollectionID, &day.Date, &day.Name, &day.Description); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (r *RepositoryImpl) DeleteDay(ctx context.Context, collectionID uuid.UUID, date time.Time) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM itinerary_days WHERE collection_id = $1 AND date = $2`, collectionID, date)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: itinerary day", models.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) ListVisits(ctx context.Context, collectionID uuid.UUID) ([]models.Visit, error) {
	query := `
        SELECT v.id, v.location_id, v.start_date, v.end_date, v.timezone, v.notes
        FROM visits v
        JOIN collection_locations cl ON cl.location_id = v.location_id
        WHERE cl.collection_id = $1
        ORDER BY v.start_date, v.id
    `
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.LocationID, &v.StartDate, &v.EndDate, &v.Timezone, &v.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *RepositoryImpl) ListLodging(ctx context.Context, collectionID uuid.UUID) ([]models.Lodging, error) {
	query := `
        SELECT id, collection_id, name, check_in, check_out, timezone
        FROM lodging WHERE collection_id = $1 ORDER BY check_in, id
    `
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lodging: %w", err)
	}
	defer rows.Close()

	var lodging []models.Lodging
	for rows.Next() {
		var l models.Lodging
		if err := rows.Scan(&l.ID, &l.CollectionID, &l.Name, &l.CheckIn, &l.CheckOut, &l.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan lodging: %w", err)
		}
		lodging = append(lodging, l)
	}
	return lodging, rows.Err()
}

func (r *RepositoryImpl) ListTransportation(ctx context.Context, collectionID uuid.UUID) ([]models.Transportation, error) {
	query := `
        SELECT id, collection_id, name, date, end_date, start_timezone
        FROM transportation WHERE collection_id = $1 ORDER BY date, id
    `
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transportation: %w", err)
	}
	defer rows.Close()

	var transports []models.Transportation
	for rows.Next() {
		var t models.Transportation
		if err := rows.Scan(&t.ID, &t.CollectionID, &t.Name, &t.Date, &t.EndDate, &t.StartTimezone); err != nil {
			return nil, fmt.Errorf("failed to scan transportation: %w", err)
		}
		transports = append(transports, t)
	}
	return transports, rows.Err()
}

func (r *RepositoryImpl) ListNotes(ctx context.Context, collectionID uuid.UUID) ([]models.Note, error) {
	query := `SELECT id, collection_id, name, date FROM notes WHERE collection_id = $1 ORDER BY date, id`
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.CollectionID, &n.Name, &n.Date); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *RepositoryImpl) ListChecklists(ctx context.Context, collectionID uuid.UUID) ([]models.Checklist, error) {
	query := `SELECT id, collection_id, name, date FROM checklists WHERE collection_id = $1 ORDER BY date, id`
	rows, err := r.pgpool.Query(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklists: %w", err)
	}
	defer rows.Close()

	var checklists []models.Checklist
	for rows.Next() {
		var c models.Checklist
		if err := rows.Scan(&c.ID, &c.CollectionID, &c.Name, &c.Date); err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}
		checklists = append(checklists, c)
	}
	return checklists, rows.Err()
}

// ContentExists verifies the referenced entity exists and is reachable from
// the collection (or owned by the user, for locations and visits).
func (r *RepositoryImpl) ContentExists(ctx context.Context, kind models.ContentKind, objectID, collectionID, userID uuid.UUID) (bool, error) {
	var query string
	args := []any{objectID, collectionID}
	switch kind {
	case models.ContentLocation:
		query = `
            SELECT EXISTS(
                SELECT 1 FROM locations l
                LEFT JOIN collection_locations cl
                    ON cl.location_id = l.id AND cl.collection_id = $2
                WHERE l.id = $1 AND (l.user_id = $3 OR cl.collection_id IS NOT NULL)
            )
        `
		args = append(args, userID)
	case models.ContentVisit:
		query = `
            SELECT EXISTS(
                SELECT 1 FROM visits v
                JOIN locations l ON l.id = v.location_id
                LEFT JOIN collection_locations cl
                    ON cl.location_id = l.id AND cl.collection_id = $2
                WHERE v.id = $1 AND (l.user_id = $3 OR cl.collection_id IS NOT NULL)
            )
        `
		args = append(args, userID)
	case models.ContentLodging:
		query = `SELECT EXISTS(SELECT 1 FROM lodging WHERE id = $1 AND collection_id = $2)`
	case models.ContentTransportation:
		query = `SELECT EXISTS(SELECT 1 FROM transportation WHERE id = $1 AND collection_id = $2)`
	case models.ContentNote:
		query = `SELECT EXISTS(SELECT 1 FROM notes WHERE id = $1 AND collection_id = $2)`
	case models.ContentChecklist:
		query = `SELECT EXISTS(SELECT 1 FROM checklists WHERE id = $1 AND collection_id = $2)`
	default:
		return false, fmt.Errorf("%w: unknown content kind %q", models.ErrValidation, kind)
	}

	var exists bool
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check content existence: %w", err)
	}
	return exists, nil
}

func (r *RepositoryImpl) GetVisit(ctx context.Context, id uuid.UUID) (*models.Visit, error) {
	query := `SELECT id, location_id, start_date, end_date, timezone, notes FROM visits WHERE id = $1`
	var v models.Visit
	err := r.pgpool.QueryRow(ctx, query, id).Scan(&v.ID, &v.LocationID, &v.StartDate, &v.EndDate, &v.Timezone, &v.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: visit %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query visit: %w", err)
	}
	return &v, nil
}

func (r *RepositoryImpl) FindVisitCovering(ctx context.Context, locationID uuid.UUID, day time.Time) (*models.Visit, error) {
	query := `
        SELECT id, location_id, start_date, end_date, timezone, notes
        FROM visits
        WHERE location_id = $1
          AND start_date::date <= $2::date
          AND COALESCE(end_date, start_date)::date >= $2::date
        ORDER BY start_date
        LIMIT 1
    `
	var v models.Visit
	err := r.pgpool.QueryRow(ctx, query, locationID, day).Scan(&v.ID, &v.LocationID, &v.StartDate, &v.EndDate, &v.Timezone, &v.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query covering visit: %w", err)
	}
	return &v, nil
}

func (r *RepositoryImpl) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	query := `
        INSERT INTO visits (location_id, start_date, end_date, timezone, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	created := *visit
	err := r.pgpool.QueryRow(ctx, query,
		visit.LocationID, visit.StartDate, visit.EndDate, visit.Timezone, visit.Notes,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	return &created, nil
}

func (r *RepositoryImpl) UpdateVisitDates(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE visits SET start_date = $1, end_date = $2 WHERE id = $3`, start, end, id)
	if err != nil {
		return fmt.Errorf("failed to update visit dates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: visit %s", models.ErrNotFound, id)
	}
	return nil
}

// DeleteVisitsOnDay removes visits starting on the given day. Visits merely
// spanning the day stay, so removing one mid-span slot does not orphan the
// slots generated for the visit's other days.
func (r *RepositoryImpl) DeleteVisitsOnDay(ctx context.Context, locationID uuid.UUID, day time.Time) (int64, error) {
	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM visits
        WHERE location_id = $1
          AND start_date::date = $2::date
    `, locationID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to delete visits: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RepositoryImpl) GetLodging(ctx context.Context, id uuid.UUID) (*models.Lodging, error) {
	query := `SELECT id, collection_id, name, check_in, check_out, timezone FROM lodging WHERE id = $1`
	var l models.Lodging
	err := r.pgpool.QueryRow(ctx, query, id).Scan(&l.ID, &l.CollectionID, &l.Name, &l.CheckIn, &l.CheckOut, &l.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lodging %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query lodging: %w", err)
	}
	return &l, nil
}

func (r *RepositoryImpl) UpdateLodgingDates(ctx context.Context, id uuid.UUID, checkIn, checkOut *time.Time) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE lodging SET check_in = $1, check_out = $2 WHERE id = $3`, checkIn, checkOut, id)
	if err != nil {
		return fmt.Errorf("failed to update lodging dates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lodging %s", models.ErrNotFound, id)
	}
	return nil
}

func (r *RepositoryImpl) GetTransportation(ctx context.Context, id uuid.UUID) (*models.Transportation, error) {
	query := `SELECT id, collection_id, name, date, end_date, start_timezone FROM transportation WHERE id = $1`
	var t models.Transportation
	err := r.pgpool.QueryRow(ctx, query, id).Scan(&t.ID, &t.CollectionID, &t.Name, &t.Date, &t.EndDate, &t.StartTimezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transportation %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query transportation: %w", err)
	}
	return &t, nil
}

func (r *RepositoryImpl) UpdateTransportationDates(ctx context.Context, id uuid.UUID, date, endDate *time.Time) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE transportation SET date = $1, end_date = $2 WHERE id = $3`, date, endDate, id)
	if err != nil {
		return fmt.Errorf("failed to update transportation dates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transportation %s", models.ErrNotFound, id)
	}
	return nil
}

// SetContentDate overwrites the plain date field of a note or checklist.
func (r *RepositoryImpl) SetContentDate(ctx context.Context, kind models.ContentKind, id uuid.UUID, date *time.Time) error {
	var table string
	switch kind {
	case models.ContentNote:
		table = "notes"
	case models.ContentChecklist:
		table = "checklists"
	default:
		return fmt.Errorf("%w: content kind %q has no plain date field", models.ErrValidation, kind)
	}

	tag, err := r.pgpool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET date = $1 WHERE id = $2`, table), date, id)
	if err != nil {
		return fmt.Errorf("failed to update %s date: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
	}
	return nil
}
