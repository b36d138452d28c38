package events

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParsePublicQuery builds public listing filters from query parameters.
// Listing endpoints never reject adversarial input; unknown sorts fall
// back to recent and malformed pagination is coerced to safe defaults.
func ParsePublicQuery(values url.Values) (PublicFilters, Page) {
	filters := PublicFilters{Sort: SortRecent}

	category := strings.TrimSpace(values.Get("category"))
	if category != "" && !strings.EqualFold(category, "all") {
		filters.Category = category
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("sort"))) {
	case string(SortLocation):
		filters.Sort = SortLocation
	case string(SortDate):
		filters.Sort = SortDate
	}

	return filters, parsePage(values.Get("page"), values.Get("limit"))
}

// ParseAdminQuery builds admin listing filters. An absent, "all", or
// unrecognized status means no status filter.
func ParseAdminQuery(values url.Values) (AdminFilters, Page) {
	filters := AdminFilters{Sort: AdminSortRecent}

	filters.Search = strings.TrimSpace(values.Get("search"))

	status := Status(strings.ToUpper(strings.TrimSpace(values.Get("status"))))
	if status.Valid() {
		filters.Status = status
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("sortBy"))) {
	case string(AdminSortOldest):
		filters.Sort = AdminSortOldest
	case string(AdminSortUpcoming):
		filters.Sort = AdminSortUpcoming
	case string(AdminSortPast):
		filters.Sort = AdminSortPast
	case string(AdminSortAZ):
		filters.Sort = AdminSortAZ
	}

	return filters, parsePage(values.Get("pageNumber"), values.Get("pageSize"))
}

func parsePage(rawPage, rawSize string) Page {
	page := Page{Number: 1, Size: DefaultPageSize}

	if parsed, err := strconv.Atoi(strings.TrimSpace(rawPage)); err == nil && parsed > 0 {
		page.Number = parsed
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(rawSize)); err == nil && parsed > 0 {
		page.Size = parsed
		if page.Size > MaxPageSize {
			page.Size = MaxPageSize
		}
	}
	return page
}
