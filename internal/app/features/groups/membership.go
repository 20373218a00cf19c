package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

type joinRequest struct {
	Role string `json:"role"`
}

type requestJoinRequest struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

type reviewRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// HandleJoin handles POST /groups/join/{groupID} with {"role"}.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	res, err := h.Membership.JoinDirect(ctx, chi.URLParam(r, "groupID"), req.Role)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, res)
}

// HandleRequestJoin handles POST /groups/request/{groupID} with
// {"role", "reason"}.
func (h *Handler) HandleRequestJoin(w http.ResponseWriter, r *http.Request) {
	var req requestJoinRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	jr, err := h.Membership.RequestJoin(ctx, chi.URLParam(r, "groupID"), req.Role, req.Reason)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, jr)
}

// ServeRequests handles POST /groups/viewrequests/{groupID}.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	out, err := h.Membership.ListRequests(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleReview handles POST /groups/requests/review/{groupID}/{requestID}
// with {"approve": bool}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	jr, err := h.Membership.ReviewRequest(ctx, chi.URLParam(r, "groupID"), chi.URLParam(r, "requestID"), *req.Approve)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, jr)
}
