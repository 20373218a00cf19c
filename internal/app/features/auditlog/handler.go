// internal/app/features/auditlog/handler.go
package auditlog

import (
	"go.uber.org/zap"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/store/audit"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
)

type Handler struct {
	Audit  *audit.Store
	Groups *groupstore.Store
	ID     auth.Identity
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an audit log feature handler over the store the
// audit events are written to.
func NewHandler(ds docstore.Store, id auth.Identity, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  audit.New(ds),
		Groups: groupstore.New(ds),
		ID:     id,
		Log:    logger,
		ErrLog: errLog,
	}
}
