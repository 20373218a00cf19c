// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes returns the /users subrouter. No auth middleware is required
// because the handlers resolve the principal themselves.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.ServeMe)
	r.Post("/me", h.HandleCreateMe)
	return r
}
