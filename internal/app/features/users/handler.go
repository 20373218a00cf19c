// internal/app/features/users/handler.go
package users

import (
	"net/http"

	"go.uber.org/zap"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	userstore "github.com/dalemusser/socraticos/internal/app/store/users"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/timeouts"
)

// Handler serves the caller's own user record.
type Handler struct {
	Users  *userstore.Store
	ID     auth.Identity
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new users handler.
func NewHandler(ds docstore.Store, id auth.Identity, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(ds),
		ID:     id,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeMe handles GET /users/me.
//
// Response format:
//
//	{ "userID": "...", "enrollments": [groupID...], "mentorships": [groupID...] }
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	userID, err := grouppolicy.RequireAuthenticated(r.Context(), h.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.FromStore(err, "user"))
		return
	}
	u.Normalize()
	uierrors.WriteJSON(w, http.StatusOK, u)
}

// HandleCreateMe handles POST /users/me. It creates an empty record for
// the caller (201) or returns the existing one unchanged (200).
func (h *Handler) HandleCreateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := grouppolicy.RequireAuthenticated(r.Context(), h.ID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, created, err := h.Users.Ensure(ctx, userID)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.FromStore(err, "user"))
		return
	}

	status := http.StatusOK
	if created {
		h.Log.Info("user record created", zap.String("user_id", userID))
		status = http.StatusCreated
	}
	u.Normalize()
	uierrors.WriteJSON(w, status, u)
}
