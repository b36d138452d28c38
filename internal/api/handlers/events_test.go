package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/server/internal/api/middleware"
	"github.com/campusconnect/server/internal/auth"
	"github.com/campusconnect/server/internal/domain/events"
)

// fakeRepo is an in-memory events.Repository for handler tests.
type fakeRepo struct {
	nextID int64
	events map[int64]*events.EventRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, events: map[int64]*events.EventRequest{}}
}

func (f *fakeRepo) Create(_ context.Context, params events.CreateParams) (*events.EventRequest, error) {
	event := &events.EventRequest{
		ID:          f.nextID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Date:        params.Date,
		Time:        params.Time,
		Location:    params.Location,
		HostName:    params.HostName,
		Contact:     params.Contact,
		Email:       params.Email,
		Status:      params.Status,
		CreatedByID: params.CreatedByID,
		CreatedAt:   time.Now(),
	}
	for i, url := range params.ImageURLs {
		event.Images = append(event.Images, events.EventImage{ID: int64(i + 1), URL: url, Position: i})
	}
	f.events[event.ID] = event
	f.nextID++
	return event, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*events.EventRequest, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status events.Status) error {
	event, ok := f.events[id]
	if !ok {
		return events.ErrNotFound
	}
	event.Status = status
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) ListPublic(_ context.Context, filters events.PublicFilters, page events.Page) (events.PublicResult, error) {
	var approved []events.EventRequest
	categories := map[string]bool{}
	for _, e := range f.events {
		if e.Status != events.StatusApproved {
			continue
		}
		categories[e.Category] = true
		if filters.Category != "" && e.Category != filters.Category {
			continue
		}
		approved = append(approved, *e)
	}
	sort.Slice(approved, func(i, j int) bool { return approved[i].ID > approved[j].ID })

	result := events.PublicResult{Total: len(approved)}
	for name := range categories {
		result.Categories = append(result.Categories, name)
	}
	sort.Strings(result.Categories)

	offset := page.Offset()
	for i := offset; i < len(approved) && i < offset+page.Size; i++ {
		result.Events = append(result.Events, approved[i])
	}
	return result, nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, ownerID int64) ([]events.EventRequest, error) {
	var out []events.EventRequest
	for _, e := range f.events {
		if e.CreatedByID == ownerID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListAdmin(_ context.Context, filters events.AdminFilters, page events.Page) (events.AdminResult, error) {
	var matched []events.EventRequest
	for _, e := range f.events {
		if filters.Status != "" && e.Status != filters.Status {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filters.Search)) {
			continue
		}
		matched = append(matched, *e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	result := events.AdminResult{Total: len(matched)}
	offset := page.Offset()
	for i := offset; i < len(matched) && i < offset+page.Size; i++ {
		result.Events = append(result.Events, matched[i])
	}
	return result, nil
}

func (f *fakeRepo) ListApproved(_ context.Context) ([]events.EventRequest, error) {
	var out []events.EventRequest
	for _, e := range f.events {
		if e.Status == events.StatusApproved {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) Search(_ context.Context, query string, limit int) ([]events.EventRequest, error) {
	var out []events.EventRequest
	for _, e := range f.events {
		if e.Status != events.StatusApproved {
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testEnv struct {
	repo    *fakeRepo
	manager *auth.JWTManager
	mux     *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeRepo()
	svc := events.NewService(repo)
	manager := auth.NewJWTManager("test-secret", time.Hour, "campus-connect")

	eventsHandler := NewEventsHandler(svc, "test")
	adminHandler := NewAdminEventsHandler(svc, "test")

	requireUser := middleware.Authenticate(manager, "test")
	requireAdmin := func(next http.Handler) http.Handler {
		return requireUser(middleware.RequireAdmin("test")(next))
	}
	optionalAuth := middleware.OptionalAuth(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", eventsHandler.List)
	mux.HandleFunc("GET /events/home", eventsHandler.Home)
	mux.HandleFunc("GET /events/search", eventsHandler.Search)
	mux.Handle("GET /events/{id}", optionalAuth(http.HandlerFunc(eventsHandler.Get)))
	mux.Handle("POST /events/request", requireUser(http.HandlerFunc(eventsHandler.Create)))
	mux.Handle("GET /events/me", requireUser(http.HandlerFunc(eventsHandler.MyEvents)))
	mux.Handle("DELETE /events/me/{id}", requireUser(http.HandlerFunc(eventsHandler.DeleteMine)))
	mux.Handle("GET /events/admin", requireAdmin(http.HandlerFunc(adminHandler.List)))
	mux.Handle("PATCH /events/admin/{id}/status", requireAdmin(http.HandlerFunc(adminHandler.UpdateStatus)))
	mux.Handle("DELETE /events/admin/{id}", requireAdmin(http.HandlerFunc(adminHandler.Delete)))

	return &testEnv{repo: repo, manager: manager, mux: mux}
}

func (env *testEnv) token(t *testing.T, userID int64, role auth.Role) string {
	t.Helper()
	token, err := env.manager.Generate(userID, role)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func submission() map[string]any {
	return map[string]any{
		"title":       "Spring Fest",
		"description": "Annual open-air festival on the main lawn.",
		"category":    "Music",
		"date":        "2026-04-18",
		"time":        "18:00",
		"location":    "Main Lawn",
		"hostName":    "Music Society",
		"email":       "society@campus.edu",
		"images": []string{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.jpg",
			"https://cdn.example.com/c.jpg",
			"https://cdn.example.com/d.jpg",
		},
	}
}

func (env *testEnv) seedApproved(t *testing.T, ownerID int64, titles ...string) []int64 {
	t.Helper()
	token := env.token(t, ownerID, auth.RoleUser)
	adminToken := env.token(t, 1, auth.RoleAdmin)

	var ids []int64
	for _, title := range titles {
		body := submission()
		body["title"] = title
		rec := env.do(t, http.MethodPost, "/events/request", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = env.do(t, http.MethodPatch, "/events/admin/"+strconv.FormatInt(created.ID, 10)+"/status", adminToken, map[string]string{"status": "APPROVED"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ids = append(ids, created.ID)
	}
	return ids
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 7, auth.RoleUser)

	rec := env.do(t, http.MethodPost, "/events/request", token, submission())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID        int64    `json:"id"`
		Status    string   `json:"status"`
		CreatedBy int64    `json:"createdBy"`
		Images    []string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "PENDING", created.Status)
	assert.Equal(t, int64(7), created.CreatedBy)
	assert.Len(t, created.Images, 4)
}

func TestCreateEventValidationProblem(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 7, auth.RoleUser)

	body := submission()
	body["title"] = ""
	body["email"] = "not-an-email"
	body["images"] = []string{"https://cdn.example.com/a.jpg"}

	rec := env.do(t, http.MethodPost, "/events/request", token, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var details struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Title is required", details.Errors["title"])
	assert.Equal(t, "Enter valid email", details.Errors["email"])
	assert.Equal(t, "At least 4 images are required", details.Errors["images"])
}

func TestCreateEventRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/events/request", "", submission())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicListNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.seedApproved(t, 7, "First", "Second", "Third")

	rec := env.do(t, http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Events []struct {
			ID int64 `json:"id"`
		} `json:"events"`
		Categories []string `json:"categories"`
		Total      int      `json:"total"`
		Page       int      `json:"page"`
		PageSize   int      `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))

	require.Len(t, listing.Events, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{listing.Events[0].ID, listing.Events[1].ID, listing.Events[2].ID})
	assert.Equal(t, 3, listing.Total)
	assert.Equal(t, 1, listing.Page)
	assert.Equal(t, 10, listing.PageSize)
	assert.Equal(t, []string{"Music"}, listing.Categories)
}

func TestPublicListExcludesPending(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 7, auth.RoleUser)

	rec := env.do(t, http.MethodPost, "/events/request", token, submission())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 0, listing.Total)
}

func TestGetVisibility(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.token(t, 7, auth.RoleUser)
	otherToken := env.token(t, 8, auth.RoleUser)
	adminToken := env.token(t, 1, auth.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/events/request", ownerToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code)

	// Pending: 404 for anonymous and other users, 200 for owner and admin.
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/events/1", "", nil).Code)
	require.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/events/1", otherToken, nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/events/1", ownerToken, nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/events/1", adminToken, nil).Code)

	rec = env.do(t, http.MethodPatch, "/events/admin/1/status", adminToken, map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/events/1", "", nil).Code)
}

func TestGetMalformedID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/events/abc", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.seedApproved(t, 7, "Jazz Night", "Career Fair")

	rec := env.do(t, http.MethodGet, "/events/search?q=jazz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Events []struct {
			Title string `json:"title"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Jazz Night", result.Events[0].Title)

	// Blank query returns an empty set, not an error.
	rec = env.do(t, http.MethodGet, "/events/search?q=++", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Events)
}

func TestMyEvents(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.token(t, 7, auth.RoleUser)
	otherToken := env.token(t, 8, auth.RoleUser)

	rec := env.do(t, http.MethodPost, "/events/request", ownerToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code)

	var mine struct {
		Events []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"events"`
	}

	rec = env.do(t, http.MethodGet, "/events/me", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine.Events, 1)
	assert.Equal(t, "PENDING", mine.Events[0].Status)

	rec = env.do(t, http.MethodGet, "/events/me", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine.Events = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Empty(t, mine.Events)
}

func TestDeleteMine(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.token(t, 7, auth.RoleUser)
	otherToken := env.token(t, 8, auth.RoleUser)

	rec := env.do(t, http.MethodPost, "/events/request", ownerToken, submission())
	require.Equal(t, http.StatusCreated, rec.Code)

	// Non-owner cannot delete.
	rec = env.do(t, http.MethodDelete, "/events/me/1", otherToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/events/me/1", ownerToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/events/me/1", ownerToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	env.seedApproved(t, 7, "First", "Second")

	rec := env.do(t, http.MethodGet, "/events/home", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Events []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Events, 2)
	assert.Equal(t, int64(1), result.Events[0].ID)
	assert.Equal(t, int64(2), result.Events[1].ID)
}
