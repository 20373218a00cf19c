package groups

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

type createRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type batchRequest struct {
	GroupIDs []string `json:"groupIDs" validate:"required,min=1"`
}

// ServeGroup handles GET /groups/{groupID}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Catalog.Get(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

// ServeSearch handles GET /groups/search?query=...&maxResults=...
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	maxResults, err := maxResultsParam(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	out, err := h.Catalog.Search(ctx, r.URL.Query().Get("query"), maxResults)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// ServeList handles GET /groups/list.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	out, err := h.Catalog.List(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleBatch handles GET or POST /groups/batch with {"groupIDs": [...]}.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	out, err := h.Catalog.ListByIDs(ctx, req.GroupIDs)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /groups/create with {"title", "description"}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Catalog.Create(ctx, req.Title, req.Description)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

// maxResultsParam reads ?maxResults. Absent means 0, which services treat
// as the configured default.
func maxResultsParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("maxResults")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("maxResults must be an integer")
	}
	return n, nil
}
