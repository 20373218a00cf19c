// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns the /groups subrouter. Paths keep the names existing
// clients already call.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// CATALOG
	r.Get("/search", h.ServeSearch)
	r.Get("/list", h.ServeList)
	r.Get("/batch", h.HandleBatch)
	r.Post("/batch", h.HandleBatch)
	r.Post("/create", h.HandleCreate)
	r.Get("/{groupID}", h.ServeGroup)

	// CHAT HISTORY
	r.Post("/chatHistory/{groupID}", h.ServeChatHistory)
	r.Post("/pinnedHistory/{groupID}", h.ServePinnedHistory)

	// MEMBERSHIP
	r.Post("/join/{groupID}", h.HandleJoin)
	r.Post("/request/{groupID}", h.HandleRequestJoin)
	r.Post("/viewrequests/{groupID}", h.ServeRequests)
	r.Post("/requests/review/{groupID}/{requestID}", h.HandleReview)

	// MODERATION
	r.Post("/setPin/{groupID}/{messageID}", h.HandleSetPin)
	r.Post("/reportMessage/{groupID}/{messageID}", h.HandleReport)

	return r
}
