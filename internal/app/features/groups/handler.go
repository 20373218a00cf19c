// internal/app/features/groups/handler.go
package groups

import (
	"go.uber.org/zap"

	uierrors "github.com/dalemusser/socraticos/internal/app/features/errors"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	"github.com/dalemusser/socraticos/internal/app/services/chataccess"
	"github.com/dalemusser/socraticos/internal/app/services/membership"
	"github.com/dalemusser/socraticos/internal/app/services/moderation"
)

// Handler is the shared dependency container for the groups feature.
// Each route delegates to one service operation and maps its error kind
// to a status code through ErrLog.
type Handler struct {
	Catalog    *catalog.Service
	Membership *membership.Service
	Chat       *chataccess.Service
	Moderation *moderation.Service
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function once the services exist.
func NewHandler(cat *catalog.Service, mem *membership.Service, chat *chataccess.Service, mod *moderation.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog:    cat,
		Membership: mem,
		Chat:       chat,
		Moderation: mod,
		ErrLog:     errLog,
		Log:        logger,
	}
}
