package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

type setPinRequest struct {
	Unpin bool `json:"unpin"`
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// HandleSetPin handles POST /groups/setPin/{groupID}/{messageID} with an
// optional {"unpin": true}.
func (h *Handler) HandleSetPin(w http.ResponseWriter, r *http.Request) {
	var req setPinRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	m, err := h.Moderation.SetPin(ctx, chi.URLParam(r, "groupID"), chi.URLParam(r, "messageID"), req.Unpin)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, m)
}

// HandleReport handles POST /groups/reportMessage/{groupID}/{messageID}
// with an optional {"reason"}.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	res, err := h.Moderation.ReportMessage(ctx, chi.URLParam(r, "groupID"), chi.URLParam(r, "messageID"), req.Reason)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, res)
}
