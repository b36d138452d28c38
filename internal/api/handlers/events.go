package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campusconnect/server/internal/api/problem"
	"github.com/campusconnect/server/internal/domain/events"
	"github.com/campusconnect/server/internal/metrics"
)

// EventsHandler serves the public and owner-facing event endpoints.
type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	SubCategories []string `json:"subCategories,omitempty"`
	Date          *string  `json:"date"`
	Time          string   `json:"time"`
	Location      string   `json:"location"`
	HostName      string   `json:"hostName"`
	Contact       string   `json:"contact,omitempty"`
	Email         string   `json:"email"`
	Status        string   `json:"status"`
	CreatedBy     int64    `json:"createdBy"`
	Images        []string `json:"images"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

type publicListResponse struct {
	Events     []eventResponse `json:"events"`
	Categories []string        `json:"categories"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

type homeEventResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        *string  `json:"date"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

func toEventResponse(event events.EventRequest) eventResponse {
	resp := eventResponse{
		ID:            event.ID,
		Title:         event.Title,
		Description:   event.Description,
		Category:      event.Category,
		SubCategories: event.SubCategories,
		Date:          formatDate(event.Date),
		Time:          event.Time,
		Location:      event.Location,
		HostName:      event.HostName,
		Contact:       event.Contact,
		Email:         event.Email,
		Status:        string(event.Status),
		CreatedBy:     event.CreatedByID,
		Images:        imageURLs(event.Images),
	}
	if !event.CreatedAt.IsZero() {
		resp.CreatedAt = event.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func toEventResponses(items []events.EventRequest) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toEventResponse(item))
	}
	return out
}

func imageURLs(images []events.EventImage) []string {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		urls = append(urls, image.URL)
	}
	return urls
}

func formatDate(date *time.Time) *string {
	if date == nil {
		return nil
	}
	value := date.Format("2006-01-02")
	return &value
}

// Create handles POST /events/request.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, h.Env)
		return
	}

	var input events.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), input, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.EventSubmissions.Inc()
	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

// List handles GET /events, the paginated approved-only listing.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page := events.ParsePublicQuery(r.URL.Query())

	result, err := h.Service.PublicList(r.Context(), filters, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, publicListResponse{
		Events:     toEventResponses(result.Events),
		Categories: result.Categories,
		Total:      result.Total,
		Page:       page.Number,
		PageSize:   page.Size,
	})
}

// Home handles GET /events/home: the full approved set with a minimal
// projection, ordered ascending by id, no pagination.
func (h *EventsHandler) Home(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Home(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]homeEventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, homeEventResponse{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Date:        formatDate(item.Date),
			Category:    item.Category,
			Images:      imageURLs(item.Images),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

// Get handles GET /events/{id}. Pending and rejected events are only
// visible to their owner or an admin; everyone else sees 404.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", events.ErrNotFound, h.Env)
		return
	}

	var actor *events.Actor
	if a, ok := actorFromRequest(r); ok {
		actor = &a
	}

	event, err := h.Service.Get(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

// Search handles GET /events/search?q=.
func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.SearchPublic(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": toEventResponses(items)})
}

// MyEvents handles GET /events/me: everything the caller created, any
// status, ordered by creation.
func (h *EventsHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, h.Env)
		return
	}

	items, err := h.Service.OwnerList(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": toEventResponses(items)})
}

// DeleteMine handles DELETE /events/me/{id}, the owner delete path.
func (h *EventsHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", problem.ErrUnauthorized, h.Env)
		return
	}

	id, err := pathID(r)
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", events.ErrNotFound, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), id, actor); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors onto problem responses.
func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs events.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, h.Env,
			problem.WithErrors(validationErrorMap(validationErrs)))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Not authorized", err, h.Env)
	case errors.Is(err, events.ErrInvalidStatus):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid status", err, h.Env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
	}
}

func validationErrorMap(errs events.ValidationErrors) map[string]interface{} {
	out := make(map[string]interface{}, len(errs))
	for field, message := range errs {
		out[field] = message
	}
	return out
}
