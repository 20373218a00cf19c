package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

// ServeChatHistory handles POST /groups/chatHistory/{groupID}?maxResults=...
func (h *Handler) ServeChatHistory(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, false)
}

// ServePinnedHistory handles POST /groups/pinnedHistory/{groupID}?maxResults=...
func (h *Handler) ServePinnedHistory(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r, true)
}

func (h *Handler) serveHistory(w http.ResponseWriter, r *http.Request, pinned bool) {
	maxResults, err := maxResultsParam(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	fetch := h.Chat.History
	if pinned {
		fetch = h.Chat.PinnedHistory
	}
	out, err := fetch(ctx, chi.URLParam(r, "groupID"), maxResults)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}
