package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusconnect/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `e.id, e.title, e.description, e.category, e.sub_categories,
       e.event_date, e.event_time, e.location, e.host_name, e.contact, e.email,
       e.status, e.created_by, e.created_at, e.updated_at`

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.EventRequest, error) {
	if r.tx != nil {
		return r.createInTx(ctx, r.tx, params)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event, err := r.createInTx(ctx, tx, params)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return event, nil
}

// createInTx inserts the event row and its image rows in one
// transaction so a partially created event is never visible to listing
// queries.
func (r *EventRepository) createInTx(ctx context.Context, tx pgx.Tx, params events.CreateParams) (*events.EventRequest, error) {
	var date pgtype.Date
	if params.Date != nil {
		date = pgtype.Date{Time: *params.Date, Valid: true}
	}

	row := tx.QueryRow(ctx, `
INSERT INTO event_requests
       (title, description, category, sub_categories, event_date, event_time,
        location, host_name, contact, email, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, created_at, updated_at
`,
		params.Title,
		params.Description,
		params.Category,
		params.SubCategories,
		date,
		params.Time,
		params.Location,
		params.HostName,
		params.Contact,
		params.Email,
		string(params.Status),
		params.CreatedByID,
	)

	var (
		id        int64
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	images := make([]events.EventImage, 0, len(params.ImageURLs))
	for position, imageURL := range params.ImageURLs {
		var imageID int64
		err := tx.QueryRow(ctx, `
INSERT INTO event_images (event_id, url, position)
VALUES ($1, $2, $3)
RETURNING id
`, id, imageURL, position).Scan(&imageID)
		if err != nil {
			return nil, fmt.Errorf("insert event image: %w", err)
		}
		images = append(images, events.EventImage{ID: imageID, URL: imageURL, Position: position})
	}

	event := &events.EventRequest{
		ID:            id,
		Title:         params.Title,
		Description:   params.Description,
		Category:      params.Category,
		SubCategories: params.SubCategories,
		Date:          params.Date,
		Time:          params.Time,
		Location:      params.Location,
		HostName:      params.HostName,
		Contact:       params.Contact,
		Email:         params.Email,
		Status:        params.Status,
		CreatedByID:   params.CreatedByID,
		Images:        images,
	}
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		event.UpdatedAt = updatedAt.Time
	}
	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.EventRequest, error) {
	q := r.queryer()

	row := q.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE e.id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := r.attachImages(ctx, []*events.EventRequest{event}); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status events.Status) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE event_requests
   SET status = $2, updated_at = now()
 WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM event_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// publicOrderBy maps a public sort key onto an ORDER BY clause. Every
// clause ends on e.id so pagination stays stable across equal keys.
func publicOrderBy(sort events.PublicSort) string {
	switch sort {
	case events.SortLocation:
		return "e.location ASC, e.id DESC"
	case events.SortDate:
		return "e.event_date ASC NULLS LAST, e.id ASC"
	default:
		return "e.id DESC"
	}
}

// adminOrderBy maps an admin sort key onto an ORDER BY clause. Sort key
// selection never implies filtering: upcoming/past order by date but
// keep past and future events alike in the result.
func adminOrderBy(sort events.AdminSort) string {
	switch sort {
	case events.AdminSortOldest:
		return "e.id ASC"
	case events.AdminSortUpcoming:
		return "e.event_date ASC NULLS LAST, e.id ASC"
	case events.AdminSortPast:
		return "e.event_date DESC NULLS LAST, e.id DESC"
	case events.AdminSortAZ:
		return "e.title ASC, e.id ASC"
	default:
		return "e.id DESC"
	}
}

func (r *EventRepository) ListPublic(ctx context.Context, filters events.PublicFilters, page events.Page) (events.PublicResult, error) {
	q := r.queryer()

	rows, err := q.Query(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE e.status = 'APPROVED'
   AND ($1 = '' OR e.category = $1)
 ORDER BY `+publicOrderBy(filters.Sort)+`
 LIMIT $2 OFFSET $3
`, filters.Category, page.Size, page.Offset())
	if err != nil {
		return events.PublicResult{}, fmt.Errorf("list public events: %w", err)
	}
	items, err := collectEvents(rows)
	if err != nil {
		return events.PublicResult{}, err
	}
	if err := r.attachImages(ctx, items); err != nil {
		return events.PublicResult{}, err
	}

	var total int
	err = q.QueryRow(ctx, `
SELECT count(*)
  FROM event_requests e
 WHERE e.status = 'APPROVED'
   AND ($1 = '' OR e.category = $1)
`, filters.Category).Scan(&total)
	if err != nil {
		return events.PublicResult{}, fmt.Errorf("count public events: %w", err)
	}

	categories, err := r.approvedCategories(ctx)
	if err != nil {
		return events.PublicResult{}, err
	}

	return events.PublicResult{
		Events:     derefEvents(items),
		Categories: categories,
		Total:      total,
	}, nil
}

func (r *EventRepository) ListByOwner(ctx context.Context, ownerID int64) ([]events.EventRequest, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE e.created_by = $1
 ORDER BY e.id ASC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner events: %w", err)
	}
	items, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return derefEvents(items), nil
}

func (r *EventRepository) ListAdmin(ctx context.Context, filters events.AdminFilters, page events.Page) (events.AdminResult, error) {
	q := r.queryer()

	search := escapeLike(filters.Search)

	rows, err := q.Query(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE ($1 = '' OR e.status = $1)
   AND ($2 = '' OR e.title ILIKE '%' || $2 || '%' ESCAPE '\' OR e.location ILIKE '%' || $2 || '%' ESCAPE '\')
 ORDER BY `+adminOrderBy(filters.Sort)+`
 LIMIT $3 OFFSET $4
`, string(filters.Status), search, page.Size, page.Offset())
	if err != nil {
		return events.AdminResult{}, fmt.Errorf("list admin events: %w", err)
	}
	items, err := collectEvents(rows)
	if err != nil {
		return events.AdminResult{}, err
	}
	if err := r.attachImages(ctx, items); err != nil {
		return events.AdminResult{}, err
	}

	var total int
	err = q.QueryRow(ctx, `
SELECT count(*)
  FROM event_requests e
 WHERE ($1 = '' OR e.status = $1)
   AND ($2 = '' OR e.title ILIKE '%' || $2 || '%' ESCAPE '\' OR e.location ILIKE '%' || $2 || '%' ESCAPE '\')
`, string(filters.Status), search).Scan(&total)
	if err != nil {
		return events.AdminResult{}, fmt.Errorf("count admin events: %w", err)
	}

	return events.AdminResult{Events: derefEvents(items), Total: total}, nil
}

func (r *EventRepository) ListApproved(ctx context.Context) ([]events.EventRequest, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE e.status = 'APPROVED'
 ORDER BY e.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list approved events: %w", err)
	}
	items, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return derefEvents(items), nil
}

func (r *EventRepository) Search(ctx context.Context, query string, limit int) ([]events.EventRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	search := escapeLike(query)

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM event_requests e
 WHERE e.status = 'APPROVED'
   AND (e.title ILIKE '%' || $1 || '%' ESCAPE '\'
     OR e.location ILIKE '%' || $1 || '%' ESCAPE '\'
     OR e.description ILIKE '%' || $1 || '%' ESCAPE '\')
 ORDER BY e.id DESC
 LIMIT $2
`, search, limit)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	items, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, items); err != nil {
		return nil, err
	}
	return derefEvents(items), nil
}

func (r *EventRepository) approvedCategories(ctx context.Context) ([]string, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT DISTINCT category
  FROM event_requests
 WHERE status = 'APPROVED'
 ORDER BY category ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// attachImages loads image rows for the given events in submission
// order with one query.
func (r *EventRepository) attachImages(ctx context.Context, items []*events.EventRequest) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	byID := make(map[int64]*events.EventRequest, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		byID[item.ID] = item
	}

	rows, err := r.queryer().Query(ctx, `
SELECT id, event_id, url, position
  FROM event_images
 WHERE event_id = ANY($1)
 ORDER BY event_id ASC, position ASC
`, ids)
	if err != nil {
		return fmt.Errorf("list event images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			imageID  int64
			eventID  int64
			imageURL string
			position int
		)
		if err := rows.Scan(&imageID, &eventID, &imageURL, &position); err != nil {
			return fmt.Errorf("scan event image: %w", err)
		}
		if event, ok := byID[eventID]; ok {
			event.Images = append(event.Images, events.EventImage{ID: imageID, URL: imageURL, Position: position})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate event images: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.EventRequest, error) {
	var (
		event     events.EventRequest
		status    string
		date      pgtype.Date
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.SubCategories,
		&date,
		&event.Time,
		&event.Location,
		&event.HostName,
		&event.Contact,
		&event.Email,
		&status,
		&event.CreatedByID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = events.Status(status)
	if date.Valid {
		value := date.Time
		event.Date = &value
	}
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		event.UpdatedAt = updatedAt.Time
	}
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]*events.EventRequest, error) {
	defer rows.Close()

	items := []*events.EventRequest{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

func derefEvents(items []*events.EventRequest) []events.EventRequest {
	out := make([]events.EventRequest, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
