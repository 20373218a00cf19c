// internal/domain/models/role.go
package models

import (
	"errors"
	"strings"
)

// Role is the position a user holds inside a single group.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

var ErrBadRole = errors.New(`role must be "student" or "mentor"`)

// ParseRole normalizes s (trimmed, lower-cased) and reports ErrBadRole
// for anything other than student or mentor.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleMentor:
		return r, nil
	default:
		return "", ErrBadRole
	}
}

func (r Role) String() string { return string(r) }
