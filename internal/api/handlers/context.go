package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusconnect/server/internal/api/middleware"
	"github.com/campusconnect/server/internal/auth"
	"github.com/campusconnect/server/internal/domain/events"
)

// actorFromRequest builds the acting identity from the token claims the
// auth middleware put in context. ok is false on unauthenticated
// requests.
func actorFromRequest(r *http.Request) (events.Actor, bool) {
	claims := middleware.Claims(r)
	if claims == nil {
		return events.Actor{}, false
	}
	id, err := claims.UserID()
	if err != nil {
		return events.Actor{}, false
	}
	return events.Actor{ID: id, Role: auth.NormalizeRole(claims.Role)}, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	return strconv.ParseInt(raw, 10, 64)
}
