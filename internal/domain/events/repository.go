package events

import (
	"context"
	"time"
)

// Status is the moderation state of an event request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

type EventRequest struct {
	ID            int64
	Title         string
	Description   string
	Category      string
	SubCategories []string
	Date          *time.Time
	Time          string
	Location      string
	HostName      string
	Contact       string
	Email         string
	Status        Status
	CreatedByID   int64
	Images        []EventImage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventImage is an image owned by an event request. Position preserves
// the order the URLs were submitted in.
type EventImage struct {
	ID       int64
	URL      string
	Position int
}

type CreateParams struct {
	Title         string
	Description   string
	Category      string
	SubCategories []string
	Date          *time.Time
	Time          string
	Location      string
	HostName      string
	Contact       string
	Email         string
	Status        Status
	CreatedByID   int64
	ImageURLs     []string
}

type PublicSort string

const (
	SortRecent   PublicSort = "recent"
	SortLocation PublicSort = "location"
	SortDate     PublicSort = "date"
)

type AdminSort string

const (
	AdminSortRecent   AdminSort = "recent"
	AdminSortOldest   AdminSort = "oldest"
	AdminSortUpcoming AdminSort = "upcoming"
	AdminSortPast     AdminSort = "past"
	AdminSortAZ       AdminSort = "az"
)

// PublicFilters narrows the approved-only public listing. An empty
// Category means no category filter.
type PublicFilters struct {
	Category string
	Sort     PublicSort
}

// AdminFilters narrows the admin listing. An empty Status means all
// statuses. Search matches title and location, case-insensitive.
type AdminFilters struct {
	Search string
	Status Status
	Sort   AdminSort
}

// Page is 1-indexed offset pagination.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type PublicResult struct {
	Events     []EventRequest
	Categories []string
	Total      int
}

type AdminResult struct {
	Events []EventRequest
	Total  int
}

type Repository interface {
	// Create persists the event request and its images atomically.
	Create(ctx context.Context, params CreateParams) (*EventRequest, error)
	GetByID(ctx context.Context, id int64) (*EventRequest, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// Delete removes the event request; image rows cascade.
	Delete(ctx context.Context, id int64) error

	ListPublic(ctx context.Context, filters PublicFilters, page Page) (PublicResult, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]EventRequest, error)
	ListAdmin(ctx context.Context, filters AdminFilters, page Page) (AdminResult, error)
	// ListApproved returns every approved event ordered by id ascending.
	ListApproved(ctx context.Context) ([]EventRequest, error)
	Search(ctx context.Context, query string, limit int) ([]EventRequest, error)
}
