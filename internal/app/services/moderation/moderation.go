// Package moderation pins chat messages and records reports against them.
package moderation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	messagestore "github.com/dalemusser/socraticos/internal/app/store/messages"
	reportstore "github.com/dalemusser/socraticos/internal/app/store/reports"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/htmlsanitize"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
	"github.com/dalemusser/socraticos/internal/app/system/txn"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// ReportResult is returned by a successful report.
type ReportResult struct {
	Success bool `json:"success"`
}

type Service struct {
	runner   *txn.Runner
	groups   *groupstore.Store
	messages *messagestore.Store
	reports  *reportstore.Store
	id       auth.Identity
	audit    *auditlog.Logger
	log      *zap.Logger
	now      func() time.Time
}

func New(runner *txn.Runner, id auth.Identity, audit *auditlog.Logger, logger *zap.Logger) *Service {
	ds := runner.Store()
	return &Service{
		runner:   runner,
		groups:   groupstore.New(ds),
		messages: messagestore.New(ds),
		reports:  reportstore.New(ds),
		id:       id,
		audit:    audit,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetPin pins the message, or unpins it when unpin is set. Only the group's
// mentors may do either. Setting the flag it already has writes nothing.
func (s *Service) SetPin(ctx context.Context, groupID, messageID string, unpin bool) (m models.Message, err error) {
	defer func() { metrics.ObserveOperation("set_pin", err) }()

	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return models.Message{}, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return models.Message{}, err
	}
	if messageID == "" {
		return models.Message{}, apperr.Validation("messageID is required")
	}

	var changed bool
	err = s.runner.Run(ctx, []string{txn.GroupKey(groupID)}, func(ctx context.Context, tx docstore.Tx) error {
		g, err := s.groups.Load(ctx, tx, groupID)
		if err != nil {
			return apperr.FromStore(err, "group")
		}
		m, err = s.messages.Load(ctx, tx, groupID, messageID)
		if err != nil {
			return apperr.FromStore(err, "message")
		}
		if err := grouppolicy.RequireMentor(g, userID, "pin messages"); err != nil {
			return err
		}
		changed = m.Pinned == unpin
		if !changed {
			return nil
		}
		m.Pinned = !unpin
		return s.messages.Save(tx, m)
	})
	if err != nil {
		s.log.Debug("set pin failed", zap.Error(err),
			zap.String("group_id", groupID), zap.String("message_id", messageID))
		return models.Message{}, apperr.FromStore(err, "message")
	}

	if changed {
		m.Version++
		s.audit.MessagePinned(ctx, userID, groupID, messageID, m.Pinned)
	}
	return m, nil
}

// ReportMessage stores a snapshot of the message as reported by the caller.
// A later report of the same message replaces this one. reason defaults to
// "N/A".
func (s *Service) ReportMessage(ctx context.Context, groupID, messageID, reason string) (res ReportResult, err error) {
	defer func() { metrics.ObserveOperation("report_message", err) }()

	userID, err := grouppolicy.RequireAuthenticated(ctx, s.id)
	if err != nil {
		return ReportResult{}, err
	}
	if err := catalog.ValidateID(groupID, "groupID"); err != nil {
		return ReportResult{}, err
	}
	if messageID == "" {
		return ReportResult{}, apperr.Validation("messageID is required")
	}
	reason = htmlsanitize.PlainText(reason)
	if reason == "" {
		reason = models.DefaultReason
	}

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return ReportResult{}, apperr.FromStore(err, "group")
	}
	m, err := s.messages.GetByID(ctx, groupID, messageID)
	if err != nil {
		return ReportResult{}, apperr.FromStore(err, "message")
	}

	r := models.Report{
		ID:         m.ID,
		GroupID:    groupID,
		Message:    m,
		ReportedBy: userID,
		ReportedAt: s.now().Truncate(time.Millisecond),
		Reason:     reason,
	}
	if err := s.reports.Put(ctx, r); err != nil {
		s.log.Error("store report failed", zap.Error(err),
			zap.String("group_id", groupID), zap.String("message_id", messageID))
		return ReportResult{}, apperr.FromStore(err, "report")
	}

	s.audit.MessageReported(ctx, userID, groupID, messageID, reason)
	return ReportResult{Success: true}, nil
}
