// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
)

// Handler implements trust login: the caller names a user ID and is signed
// in as that user with no credential check. Identity issuance belongs to
// an upstream provider; this exists for development and integration
// environments and is only mounted when trust_login is enabled.
type Handler struct {
	SessionMgr *auth.SessionManager
	Tokens     *auth.TokenVerifier
	TokenTTL   time.Duration
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, tokens *auth.TokenVerifier, tokenTTL time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		TokenTTL:   tokenTTL,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginRequest struct {
	UserID string `json:"userID" validate:"required"`
}

type loginResponse struct {
	UserID    string    `json:"userID"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// HandleLogin handles POST /login with {"userID"}. It sets the session
// cookie and, when a token signer is configured, also returns a bearer
// token for non-browser clients.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		h.ErrLog.Write(w, r, apperr.Validation("userID is required"))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, userID); err != nil {
		h.ErrLog.Write(w, r, apperr.Internal(err))
		return
	}

	resp := loginResponse{UserID: userID}
	if h.Tokens != nil {
		tok, err := h.Tokens.Issue(userID, h.TokenTTL)
		if err != nil {
			h.ErrLog.Write(w, r, apperr.Internal(err))
			return
		}
		resp.Token = tok
		resp.ExpiresAt = time.Now().Add(h.TokenTTL).UTC().Truncate(time.Second)
	}

	h.Log.Info("trust login", zap.String("user_id", userID))
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
