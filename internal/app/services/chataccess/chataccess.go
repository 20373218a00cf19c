// Package chataccess serves a group's chat history to its members.
package chataccess

import (
	"context"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	messagestore "github.com/dalemusser/socraticos/internal/app/store/messages"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

type Service struct {
	groups   *groupstore.Store
	messages *messagestore.Store
	id       auth.Identity
	results  limits.Results
	log      *zap.Logger
}

func New(ds docstore.Store, id auth.Identity, results limits.Results, logger *zap.Logger) *Service {
	return &Service{
		groups:   groupstore.New(ds),
		messages: messagestore.New(ds),
		id:       id,
		results:  results,
		log:      logger,
	}
}

// History returns the group's newest messages, newest first.
func (s *Service) History(ctx context.Context, groupID string, maxResults int) (out []models.Message, err error) {
	defer func() { metrics.ObserveOperation("chat_history", err) }()
	return s.recent(ctx, groupID, maxResults, false)
}

// PinnedHistory is History restricted to pinned messages.
func (s *Service) PinnedHistory(ctx context.Context, groupID string, maxResults int) (out []models.Message, err error) {
	defer func() { metrics.ObserveOperation("pinned_history", err) }()
	return s.recent(ctx, groupID, maxResults, true)
}

func (s *Service) recent(ctx context.Context, groupID string, maxResults int, pinnedOnly bool) ([]models.Message, error) {
	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return nil, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return nil, err
	}
	if maxResults < 0 {
		return nil, apperr.Validation("maxResults must not be negative")
	}

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.FromStore(err, "group")
	}
	if err := grouppolicy.RequireMember(g, userID, "view chat history"); err != nil {
		s.log.Debug("chat history refused", zap.String("group_id", groupID), zap.String("user_id", userID))
		return nil, err
	}

	msgs, err := s.messages.Recent(ctx, groupID, s.results.Clamp(maxResults), pinnedOnly)
	if err != nil {
		s.log.Error("load chat history failed", zap.Error(err), zap.String("group_id", groupID))
		return nil, apperr.FromStore(err, "message")
	}
	return msgs, nil
}
