// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/store/audit"
)

// Destination modes for a category.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// ValidMode reports whether s is a known destination mode.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration, one mode per category.
type Config struct {
	Membership string
	Moderation string
}

// Logger records membership and moderation events to the audit store
// and/or structured logs.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when no mode writes to it.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
	}
	if event.GroupID != "" {
		fields = append(fields, zap.String("group_id", event.GroupID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Info("audit event", fields...)
}

// Log records an audit event according to its category's mode.
// A nil Logger is a no-op so tests can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var mode string
	switch event.Category {
	case audit.CategoryMembership:
		mode = l.config.Membership
	case audit.CategoryModeration:
		mode = l.config.Moderation
	}
	if mode == "" {
		mode = ModeAll
	}
	if mode == ModeOff {
		return
	}

	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.store != nil {
		// The action already happened; a lost audit row is logged, not returned.
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Membership Events ---

func (l *Logger) GroupCreated(ctx context.Context, actorID, groupID, title string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventGroupCreated,
		GroupID:   groupID,
		ActorID:   actorID,
		Details:   map[string]string{"title": title},
	})
}

// MemberJoined logs a roster change. via is "direct" or "approval".
func (l *Logger) MemberJoined(ctx context.Context, actorID, userID, groupID, role, via string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventMemberJoined,
		GroupID:   groupID,
		ActorID:   actorID,
		TargetID:  userID,
		Details:   map[string]string{"role": role, "via": via},
	})
}

func (l *Logger) JoinRequested(ctx context.Context, userID, groupID, requestID, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventJoinRequested,
		GroupID:   groupID,
		ActorID:   userID,
		TargetID:  requestID,
		Details:   map[string]string{"role": role},
	})
}

func (l *Logger) RequestReviewed(ctx context.Context, reviewerID, groupID, requestID string, approved bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: audit.EventRequestReviewed,
		GroupID:   groupID,
		ActorID:   reviewerID,
		TargetID:  requestID,
		Details:   map[string]string{"approved": strconv.FormatBool(approved)},
	})
}

// --- Moderation Events ---

func (l *Logger) MessagePinned(ctx context.Context, actorID, groupID, messageID string, pinned bool) {
	typ := audit.EventMessagePinned
	if !pinned {
		typ = audit.EventMessageUnpinned
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: typ,
		GroupID:   groupID,
		ActorID:   actorID,
		TargetID:  messageID,
	})
}

func (l *Logger) MessageReported(ctx context.Context, reporterID, groupID, messageID, reason string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryModeration,
		EventType: audit.EventMessageReported,
		GroupID:   groupID,
		ActorID:   reporterID,
		TargetID:  messageID,
		Details:   map[string]string{"reason": reason},
	})
}
