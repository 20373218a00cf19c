// internal/domain/models/group.go
package models

import (
	"strings"

	"github.com/samber/lo"
)

// Group is a topic-scoped community with a roster of students and mentors.
//
// NOTE:
//   - Students and Mentors are disjoint; a user holds at most one role per group.
//   - Tags are derived from the title at creation time and never change.
//   - Chat history and join requests live in sub-collections under the group.
type Group struct {
	ID          string   `bson:"_id" json:"groupID" validate:"required"`
	Title       string   `bson:"title" json:"title" validate:"required"`
	TitleCI     string   `bson:"title_ci" json:"-"`
	Description string   `bson:"description" json:"description"`
	Tags        []string `bson:"tags" json:"tags"`
	Students    []string `bson:"students" json:"students"`
	Mentors     []string `bson:"mentors" json:"mentors"`

	Version int64 `bson:"version" json:"-"`
}

// DeriveTags splits title on whitespace and lower-cases every token.
// Duplicate tokens collapse to one.
func DeriveTags(title string) []string {
	return lo.Uniq(strings.Fields(strings.ToLower(title)))
}

// HasStudent reports whether userID is on the student roster.
func (g Group) HasStudent(userID string) bool {
	return lo.Contains(g.Students, userID)
}

// HasMentor reports whether userID is on the mentor roster.
func (g Group) HasMentor(userID string) bool {
	return lo.Contains(g.Mentors, userID)
}

// AddToRoster places userID on the roster for role. It does not check the
// other roster; callers enforce exclusivity before calling.
func (g *Group) AddToRoster(userID string, role Role) {
	switch role {
	case RoleStudent:
		g.Students = lo.Uniq(append(g.Students, userID))
	case RoleMentor:
		g.Mentors = lo.Uniq(append(g.Mentors, userID))
	}
}

// Normalize replaces nil slices so the JSON form always carries arrays.
func (g *Group) Normalize() {
	if g.Tags == nil {
		g.Tags = []string{}
	}
	if g.Students == nil {
		g.Students = []string{}
	}
	if g.Mentors == nil {
		g.Mentors = []string{}
	}
}
