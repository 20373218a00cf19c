// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
)

// Event categories
const (
	CategoryMembership = "membership"
	CategoryModeration = "moderation"
)

// Membership event types
const (
	EventGroupCreated    = "group_created"
	EventMemberJoined    = "member_joined"
	EventJoinRequested   = "join_requested"
	EventRequestReviewed = "request_reviewed"
)

// Moderation event types
const (
	EventMessagePinned   = "message_pinned"
	EventMessageUnpinned = "message_unpinned"
	EventMessageReported = "message_reported"
)

// Event represents an audit event.
type Event struct {
	ID        string    `bson:"_id" json:"eventID"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"eventType"`

	GroupID  string `bson:"group_id,omitempty" json:"groupID,omitempty"`
	ActorID  string `bson:"actor_id,omitempty" json:"actorID,omitempty"`   // who performed the action
	TargetID string `bson:"target_id,omitempty" json:"targetID,omitempty"` // affected user, request or message

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

var Collection = docstore.Root("audit_events")

// Store manages audit event records.
type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Log records an audit event, filling in ID and timestamp when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return s.ds.Set(ctx, Collection, event.ID, event)
}

// ByGroup returns the most recent events of a group, newest first.
func (s *Store) ByGroup(ctx context.Context, groupID string, limit int64) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	raws, err := s.ds.Query(ctx, Collection, docstore.Query{
		Filters:    []docstore.Filter{{Field: "group_id", Op: docstore.Eq, Value: groupID}},
		OrderBy:    "timestamp",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[Event](raws)
}
