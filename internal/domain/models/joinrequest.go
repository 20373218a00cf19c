// internal/domain/models/joinrequest.go
package models

import "time"

// JoinRequest asks a group's mentors to admit a user in a given role.
//
// A request is pending while Approved is nil and becomes terminal exactly
// once, when a mentor records a judgment.
type JoinRequest struct {
	ID        string     `bson:"_id" json:"requestID" validate:"required"`
	GroupID   string     `bson:"group_id" json:"groupID"`
	UserID    string     `bson:"user_id" json:"userID" validate:"required"`
	Role      Role       `bson:"role" json:"role" validate:"oneof=student mentor"`
	Reason    string     `bson:"reason" json:"reason"`
	Approved  *bool      `bson:"approved,omitempty" json:"approved,omitempty"`
	JudgedBy  string     `bson:"judged_by,omitempty" json:"judgedBy,omitempty"`
	JudgedAt  *time.Time `bson:"judged_at,omitempty" json:"judgedAt,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`

	Version int64 `bson:"version" json:"-"`
}

// Pending reports whether no judgment has been recorded yet.
func (r JoinRequest) Pending() bool {
	return r.Approved == nil
}
