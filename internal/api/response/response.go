package response

import (
	"encoding/json"
	"net/http"

	"github.com/edvin/crm/internal/core"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

var kindStatus = map[core.ErrKind]int{
	core.KindNotFound:        http.StatusNotFound,
	core.KindUnauthorized:    http.StatusUnauthorized,
	core.KindForbidden:       http.StatusForbidden,
	core.KindPaymentRequired: http.StatusPaymentRequired,
	core.KindConflict:        http.StatusConflict,
	core.KindLimitExceeded:   http.StatusPaymentRequired,
	core.KindInternal:        http.StatusInternalServerError,
}

// WriteServiceError maps a service error to its HTTP status. Internal errors
// are masked with a generic message; everything else carries the service
// message through.
func WriteServiceError(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if kind == core.KindInternal {
		WriteError(w, status, "internal server error")
		return
	}
	WriteError(w, status, err.Error())
}

// PaginatedResponse wraps a list with pagination metadata.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// WritePaginated writes a paginated JSON response.
func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
