package events

import (
	"context"
	"strings"

	"github.com/campusconnect/server/internal/auth"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role auth.Role
}

// CanModerate reports whether the actor may change moderation status.
func (a Actor) CanModerate() bool {
	return a.Role == auth.RoleAdmin
}

// CanDelete reports whether the actor may delete the given event:
// admins always, owners their own events in any status.
func (a Actor) CanDelete(e *EventRequest) bool {
	if a.Role == auth.RoleAdmin {
		return true
	}
	return e != nil && e.CreatedByID == a.ID
}

// ImageRemover destroys hosted image assets. Cleanup is best effort;
// deletion of the event record never fails on a remover error.
type ImageRemover interface {
	Destroy(ctx context.Context, imageURL string) error
}

// Service governs the event request lifecycle: creation with
// validation, admin status transitions, and deletion under ownership
// rules. Listing is delegated to the repository with parsed filters.
type Service struct {
	repo    Repository
	remover ImageRemover
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetImageRemover enables hosted-image cleanup on delete. Without it
// deleted events leave their assets behind.
func (s *Service) SetImageRemover(remover ImageRemover) {
	s.remover = remover
}

// Create validates the submission and persists it as PENDING owned by
// the actor. All field violations are reported together as
// ValidationErrors.
func (s *Service) Create(ctx context.Context, input CreateInput, actor Actor) (*EventRequest, error) {
	input = input.normalized()
	if errs := input.Validate(); len(errs) > 0 {
		return nil, errs
	}

	date, err := input.date()
	if err != nil {
		return nil, ValidationErrors{"date": "Enter date as YYYY-MM-DD"}
	}

	return s.repo.Create(ctx, CreateParams{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		SubCategories: input.SubCategories,
		Date:          date,
		Time:          input.Time,
		Location:      input.Location,
		HostName:      input.HostName,
		Contact:       input.Contact,
		Email:         input.Email,
		Status:        StatusPending,
		CreatedByID:   actor.ID,
		ImageURLs:     input.Images,
	})
}

// TransitionStatus sets an event's moderation status. Only admins may
// call it, and only APPROVED or REJECTED can be assigned; moderation is
// idempotent reassignment, not a forward-only pipeline. Authorization
// is checked before anything touches the store.
func (s *Service) TransitionStatus(ctx context.Context, id int64, newStatus string, actor Actor) (*EventRequest, error) {
	if !actor.CanModerate() {
		return nil, ErrForbidden
	}

	status := Status(strings.ToUpper(strings.TrimSpace(newStatus)))
	if status != StatusApproved && status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an event and its images. Owners may delete their own
// events regardless of status; admins may delete any event.
func (s *Service) Delete(ctx context.Context, id int64, actor Actor) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanDelete(event) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.remover != nil {
		for _, image := range event.Images {
			// Externally hosted URLs fail here; that is fine.
			_ = s.remover.Destroy(ctx, image.URL)
		}
	}
	return nil
}

// Get fetches a single event. Approved events are visible to anyone;
// pending and rejected ones only to their owner or an admin, and look
// absent to everybody else.
func (s *Service) Get(ctx context.Context, id int64, actor *Actor) (*EventRequest, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == StatusApproved {
		return event, nil
	}
	if actor != nil && (actor.Role == auth.RoleAdmin || actor.ID == event.CreatedByID) {
		return event, nil
	}
	return nil, ErrNotFound
}

func (s *Service) PublicList(ctx context.Context, filters PublicFilters, page Page) (PublicResult, error) {
	return s.repo.ListPublic(ctx, filters, page)
}

// OwnerList returns every event the actor created, any status, ordered
// by creation. Bounded by "my events" cardinality, so unpaginated.
func (s *Service) OwnerList(ctx context.Context, actor Actor) ([]EventRequest, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

func (s *Service) AdminList(ctx context.Context, filters AdminFilters, page Page) (AdminResult, error) {
	return s.repo.ListAdmin(ctx, filters, page)
}

// Home returns the full approved set ordered ascending by id, for the
// unauthenticated home feed.
func (s *Service) Home(ctx context.Context) ([]EventRequest, error) {
	return s.repo.ListApproved(ctx)
}

// SearchLimit caps public search results; search has no pagination
// contract.
const SearchLimit = 50

func (s *Service) SearchPublic(ctx context.Context, query string) ([]EventRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []EventRequest{}, nil
	}
	return s.repo.Search(ctx, query, SearchLimit)
}
