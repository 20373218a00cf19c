// internal/domain/models/message.go
package models

import "time"

// Message is a chat message stored under its group's chatHistory.
// Messages are written by the chat transport; only Pinned is changed here.
type Message struct {
	ID        string    `bson:"_id" json:"messageID" validate:"required"`
	GroupID   string    `bson:"group_id" json:"groupID" validate:"required"`
	AuthorID  string    `bson:"author_id" json:"authorID"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Pinned    bool      `bson:"pinned" json:"pinned"`

	Version int64 `bson:"version" json:"-"`
}
