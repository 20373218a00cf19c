// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

const pageSize = 50

// ServeGroupEvents handles GET /audit/groups/{groupID}?limit=N and returns
// the group's most recent audit events, newest first. Only the group's
// mentors may read them.
func (h *Handler) ServeGroupEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := grouppolicy.RequireAuthenticated(r.Context(), h.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	groupID := chi.URLParam(r, "groupID")
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	limit := pageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 10*pageSize {
			h.ErrLog.Write(w, r, apperr.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.FromStore(err, "group"))
		return
	}
	if err := grouppolicy.RequireMentor(g, userID, "read the audit log"); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	events, err := h.Audit.ByGroup(ctx, groupID, int64(limit))
	if err != nil {
		h.ErrLog.Write(w, r, apperr.FromStore(err, "audit event"))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, events)
}
