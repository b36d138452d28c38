package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusconnect/server/internal/api/problem"
	"github.com/campusconnect/server/internal/domain/events"
	"github.com/campusconnect/server/internal/metrics"
)

// AdminEventsHandler serves the moderation endpoints. Routes are gated
// on the ADMIN role by middleware; handlers still pass the actor down
// so the service enforces authorization itself.
type AdminEventsHandler struct {
	Service *events.Service
	Env     string
}

func NewAdminEventsHandler(service *events.Service, env string) *AdminEventsHandler {
	return &AdminEventsHandler{Service: service, Env: env}
}

type adminListResponse struct {
	Events   []eventResponse `json:"events"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// List handles GET /events/admin with search, status filter, and the
// admin sort keys.
func (h *AdminEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page := events.ParseAdminQuery(r.URL.Query())

	result, err := h.Service.AdminList(r.Context(), filters, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, adminListResponse{
		Events:   toEventResponses(result.Events),
		Total:    result.Total,
		Page:     page.Number,
		PageSize: page.Size,
	})
}

// UpdateStatus handles PATCH /events/admin/{id}/status.
func (h *AdminEventsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var body statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	event, err := h.Service.TransitionStatus(r.Context(), id, body.Status, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.ModerationActions.WithLabelValues(string(event.Status)).Inc()
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

// Delete handles DELETE /events/admin/{id}.
func (h *AdminEventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminEventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	(&EventsHandler{Service: h.Service, Env: h.Env}).writeError(w, r, err)
}
