// internal/domain/models/report.go
package models

import "time"

// DefaultReason is recorded when a requester or reporter gives no reason.
const DefaultReason = "N/A"

// Report is a snapshot of a reported message, keyed by the message ID.
// A later report of the same message replaces the earlier one.
type Report struct {
	ID         string    `bson:"_id" json:"reportID" validate:"required"`
	GroupID    string    `bson:"group_id" json:"groupID"`
	Message    Message   `bson:"message" json:"messageSnapshot"`
	ReportedBy string    `bson:"reported_by" json:"reportedBy" validate:"required"`
	ReportedAt time.Time `bson:"reported_at" json:"reportedAt"`
	Reason     string    `bson:"reason" json:"reason"`
}
