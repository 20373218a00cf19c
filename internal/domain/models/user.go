// internal/domain/models/user.go
package models

import "github.com/samber/lo"

// User mirrors group membership from the user's side.
//
// Enrollments holds the groups where the user is a student; Mentorships the
// groups where the user is a mentor. Both must agree with the matching
// Group roster, so they are only written alongside it.
type User struct {
	ID          string   `bson:"_id" json:"userID" validate:"required"`
	Enrollments []string `bson:"enrollments" json:"enrollments"`
	Mentorships []string `bson:"mentorships" json:"mentorships"`

	Version int64 `bson:"version" json:"-"`
}

// AddMembership records groupID under the set that matches role.
func (u *User) AddMembership(groupID string, role Role) {
	switch role {
	case RoleStudent:
		u.Enrollments = lo.Uniq(append(u.Enrollments, groupID))
	case RoleMentor:
		u.Mentorships = lo.Uniq(append(u.Mentorships, groupID))
	}
}

// Normalize replaces nil slices so the JSON form always carries arrays.
func (u *User) Normalize() {
	if u.Enrollments == nil {
		u.Enrollments = []string{}
	}
	if u.Mentorships == nil {
		u.Mentorships = []string{}
	}
}
