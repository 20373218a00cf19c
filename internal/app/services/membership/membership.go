// Package membership admits users to groups, directly or through join
// requests reviewed by the group's mentors.
//
// Every roster change runs as one atomic unit over the group and the user,
// so the group's rosters and the user's enrollments/mentorships never
// disagree and a user never ends up holding both roles.
package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	requeststore "github.com/dalemusser/socraticos/internal/app/store/requests"
	userstore "github.com/dalemusser/socraticos/internal/app/store/users"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/htmlsanitize"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
	"github.com/dalemusser/socraticos/internal/app/system/txn"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// Config toggles the behaviors that differ between deployments.
type Config struct {
	// AutoEnrollOnApprove applies the requested role when a request is
	// approved. When false, approval only records the judgment.
	AutoEnrollOnApprove bool
	// MentorOnlyRequestListing restricts ListRequests to the group's mentors.
	MentorOnlyRequestListing bool
}

// DefaultConfig is the production default.
var DefaultConfig = Config{AutoEnrollOnApprove: true}

// Joined via values recorded in the audit log.
const (
	viaDirect   = "direct"
	viaApproval = "approval"
)

// JoinResult is returned by a successful direct join.
type JoinResult struct {
	Success bool        `json:"success"`
	GroupID string      `json:"groupID"`
	Role    models.Role `json:"role"`
}

type Service struct {
	runner   *txn.Runner
	groups   *groupstore.Store
	users    *userstore.Store
	requests *requeststore.Store
	id       auth.Identity
	audit    *auditlog.Logger
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

func New(runner *txn.Runner, id auth.Identity, audit *auditlog.Logger, cfg Config, logger *zap.Logger) *Service {
	ds := runner.Store()
	return &Service{
		runner:   runner,
		groups:   groupstore.New(ds),
		users:    userstore.New(ds),
		requests: requeststore.New(ds),
		id:       id,
		audit:    audit,
		cfg:      cfg,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// JoinDirect puts the caller on the group's roster for role without review.
// Joining a group the caller already belongs to is a Conflict, whatever
// role is asked for.
func (s *Service) JoinDirect(ctx context.Context, groupID, role string) (res JoinResult, err error) {
	defer func() { metrics.ObserveOperation("join_direct", err) }()

	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return JoinResult{}, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return JoinResult{}, err
	}

	var r models.Role
	keys := []string{txn.GroupKey(groupID), txn.UserKey(userID)}
	err = s.runner.Run(ctx, keys, func(ctx context.Context, tx docstore.Tx) error {
		g, err := s.groups.Load(ctx, tx, groupID)
		if err != nil {
			return apperr.FromStore(err, "group")
		}
		if grouppolicy.IsMember(g, userID) {
			return apperr.Conflict("cannot join group twice")
		}
		r, err = models.ParseRole(role)
		if err != nil {
			return apperr.Validation(err.Error())
		}
		return s.enroll(ctx, tx, g, userID, r)
	})
	if err != nil {
		s.logFailure("join direct failed", err, groupID, userID)
		return JoinResult{}, apperr.FromStore(err, "group")
	}

	s.audit.MemberJoined(ctx, userID, userID, groupID, r.String(), viaDirect)
	return JoinResult{Success: true, GroupID: groupID, Role: r}, nil
}

// enroll adds userID to g under role and mirrors it on the user record.
// Both writes are version-checked against what the unit read.
func (s *Service) enroll(ctx context.Context, tx docstore.Tx, g models.Group, userID string, role models.Role) error {
	u, err := s.users.Load(ctx, tx, userID)
	if err != nil {
		return apperr.FromStore(err, "user")
	}
	g.AddToRoster(userID, role)
	u.AddMembership(g.ID, role)
	if err := s.groups.Save(tx, g); err != nil {
		return err
	}
	return s.users.Save(tx, u)
}

// RequestJoin files a pending request for the caller to join in role.
// reason defaults to "N/A".
func (s *Service) RequestJoin(ctx context.Context, groupID, role, reason string) (req models.JoinRequest, err error) {
	defer func() { metrics.ObserveOperation("request_join", err) }()

	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return models.JoinRequest{}, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return models.JoinRequest{}, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return models.JoinRequest{}, apperr.Validation(err.Error())
	}
	reason = htmlsanitize.PlainText(reason)
	if reason == "" {
		reason = models.DefaultReason
	}

	err = s.runner.Run(ctx, []string{txn.GroupKey(groupID)}, func(ctx context.Context, tx docstore.Tx) error {
		g, err := s.groups.Load(ctx, tx, groupID)
		if err != nil {
			return apperr.FromStore(err, "group")
		}
		if grouppolicy.IsMember(g, userID) {
			return apperr.Conflict("already a member of the group")
		}
		req = models.JoinRequest{
			ID:        uuid.NewString(),
			GroupID:   groupID,
			UserID:    userID,
			Role:      r,
			Reason:    reason,
			CreatedAt: s.now().Truncate(time.Millisecond),
		}
		return s.requests.Insert(tx, req)
	})
	if err != nil {
		s.logFailure("request join failed", err, groupID, userID)
		return models.JoinRequest{}, apperr.FromStore(err, "request")
	}

	req.Version = 1
	s.audit.JoinRequested(ctx, userID, groupID, req.ID, r.String())
	return req, nil
}

// ListRequests returns every request filed for the group, pending and
// judged, oldest first.
func (s *Service) ListRequests(ctx context.Context, groupID string) (out []models.JoinRequest, err error) {
	defer func() { metrics.ObserveOperation("list_requests", err) }()

	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return nil, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return nil, err
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.FromStore(err, "group")
	}
	if s.cfg.MentorOnlyRequestListing {
		if err := grouppolicy.RequireMentor(g, userID, "view join requests"); err != nil {
			return nil, err
		}
	}

	out, err = s.requests.List(ctx, groupID)
	if err != nil {
		return nil, apperr.FromStore(err, "request")
	}
	return out, nil
}

// ReviewRequest records a mentor's judgment on a pending request. With
// AutoEnrollOnApprove, an approval also enrolls the requester in the same
// atomic unit; if that is impossible nothing is written.
func (s *Service) ReviewRequest(ctx context.Context, groupID, requestID string, approve bool) (req models.JoinRequest, err error) {
	defer func() { metrics.ObserveOperation("review_request", err) }()

	reviewerID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return models.JoinRequest{}, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return models.JoinRequest{}, err
	}
	if err := catalog.ValidateID(requestID, "requestID"); err != nil {
		return models.JoinRequest{}, err
	}

	keys := []string{txn.GroupKey(groupID)}
	enrolling := approve && s.cfg.AutoEnrollOnApprove
	if enrolling {
		// The requester is needed up front to lock their record. A request
		// never changes hands, so the unit only has to confirm it.
		if peek, err := s.requests.GetByID(ctx, groupID, requestID); err == nil {
			keys = append(keys, txn.UserKey(peek.UserID))
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return models.JoinRequest{}, apperr.FromStore(err, "request")
		}
	}

	err = s.runner.Run(ctx, keys, func(ctx context.Context, tx docstore.Tx) error {
		g, err := s.groups.Load(ctx, tx, groupID)
		if err != nil {
			return apperr.FromStore(err, "group")
		}
		if err := grouppolicy.RequireMentor(g, reviewerID, "review join requests"); err != nil {
			return err
		}
		req, err = s.requests.Load(ctx, tx, groupID, requestID)
		if err != nil {
			return apperr.FromStore(err, "request")
		}
		if !req.Pending() {
			return apperr.Conflict("request has already been reviewed")
		}

		at := s.now().Truncate(time.Millisecond)
		req.Approved = &approve
		req.JudgedBy = reviewerID
		req.JudgedAt = &at
		if err := s.requests.Save(tx, req); err != nil {
			return err
		}

		if !enrolling {
			return nil
		}
		if grouppolicy.IsMember(g, req.UserID) {
			return apperr.Conflict("user is already a member of the group")
		}
		return s.enroll(ctx, tx, g, req.UserID, req.Role)
	})
	if err != nil {
		s.logFailure("review request failed", err, groupID, reviewerID)
		return models.JoinRequest{}, apperr.FromStore(err, "request")
	}

	req.Version++
	s.audit.RequestReviewed(ctx, reviewerID, groupID, requestID, approve)
	if enrolling {
		s.audit.MemberJoined(ctx, reviewerID, req.UserID, groupID, req.Role.String(), viaApproval)
	}
	return req, nil
}

// logFailure logs infrastructure failures loudly and business outcomes
// quietly.
func (s *Service) logFailure(msg string, err error, groupID, userID string) {
	fields := []zap.Field{zap.Error(err), zap.String("group_id", groupID), zap.String("user_id", userID)}
	switch apperr.KindOf(apperr.FromStore(err, "")) {
	case apperr.KindStoreUnavailable, apperr.KindCorruptRecord, apperr.KindInternal:
		s.log.Error(msg, fields...)
	default:
		s.log.Debug(msg, fields...)
	}
}
