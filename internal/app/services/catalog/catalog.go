// Package catalog creates, looks up and searches groups.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/htmlsanitize"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

type Service struct {
	groups  *groupstore.Store
	id      auth.Identity
	audit   *auditlog.Logger
	results limits.Results
	log     *zap.Logger
}

func New(ds docstore.Store, id auth.Identity, audit *auditlog.Logger, results limits.Results, logger *zap.Logger) *Service {
	return &Service{
		groups:  groupstore.New(ds),
		id:      id,
		audit:   audit,
		results: results,
		log:     logger,
	}
}

// Create stores a new group with empty rosters. Title and description are
// reduced to plain text first; either one ending up empty is a validation
// failure. Anonymous callers may create groups.
func (s *Service) Create(ctx context.Context, title, description string) (g models.Group, err error) {
	defer func() { metrics.ObserveOperation("create_group", err) }()

	title = htmlsanitize.PlainText(title)
	description = htmlsanitize.PlainText(description)
	if title == "" || description == "" {
		return models.Group{}, apperr.Validation("group needs title and description")
	}

	g, err = s.groups.Create(ctx, title, description)
	if err != nil {
		s.log.Error("create group failed", zap.Error(err))
		return models.Group{}, apperr.FromStore(err, "group")
	}

	actorID, _ := s.id.CurrentUserID(ctx)
	s.audit.GroupCreated(ctx, actorID, g.ID, g.Title)
	return g, nil
}

// Get loads one group.
func (s *Service) Get(ctx context.Context, groupID string) (g models.Group, err error) {
	defer func() { metrics.ObserveOperation("get_group", err) }()

	if err := ValidateID(groupID, "groupID"); err != nil {
		return models.Group{}, err
	}
	g, err = s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, apperr.FromStore(err, "group")
	}
	return g, nil
}

// Search returns groups whose tags share at least one token with query.
// maxResults of 0 means the configured default; larger values are capped.
func (s *Service) Search(ctx context.Context, query string, maxResults int) (out []models.Group, err error) {
	defer func() { metrics.ObserveOperation("search_groups", err) }()

	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil, apperr.Validation("request must include query (group name)")
	}
	if maxResults < 0 {
		return nil, apperr.Validation("maxResults must not be negative")
	}

	out, err = s.groups.Search(ctx, tokens, s.results.Clamp(maxResults))
	if err != nil {
		return nil, apperr.FromStore(err, "group")
	}
	return out, nil
}

// List returns every group, ordered by title.
func (s *Service) List(ctx context.Context) (out []models.Group, err error) {
	defer func() { metrics.ObserveOperation("list_groups", err) }()

	out, err = s.groups.List(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "group")
	}
	return out, nil
}

// ListByIDs returns the groups in the order given, failing on the first ID
// that does not exist. Reads are independent; a group created or changed
// while the batch runs may or may not be reflected.
func (s *Service) ListByIDs(ctx context.Context, ids []string) (out []models.Group, err error) {
	defer func() { metrics.ObserveOperation("batch_groups", err) }()

	if len(ids) == 0 {
		return nil, apperr.Validation("request must include a non-empty groupIDs array")
	}
	if len(ids) > limits.MaxBatchIDs {
		return nil, apperr.Validation("too many groupIDs in one batch")
	}
	for _, id := range ids {
		if err := ValidateID(id, "groupID"); err != nil {
			return nil, err
		}
	}

	out = make([]models.Group, 0, len(ids))
	for _, id := range ids {
		g, err := s.groups.GetByID(ctx, id)
		if err != nil {
			return nil, apperr.FromStore(err, "group")
		}
		out = append(out, g)
	}
	return out, nil
}

// Tokens lower-cases query and splits it on whitespace, dropping repeats.
func Tokens(query string) []string {
	return lo.Uniq(strings.Fields(strings.ToLower(query)))
}

// ValidateID rejects ids that are not UUIDs, naming field in the message.
func ValidateID(id, field string) error {
	if id == "" {
		return apperr.Validation(field + " is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation(field + " must be a UUID")
	}
	return nil
}
