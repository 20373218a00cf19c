// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"context"

	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// RequireAuthenticated returns the acting user's ID, or an Unauthenticated
// error when the call carries no principal.
func RequireAuthenticated(ctx context.Context, id auth.Identity) (string, error) {
	userID, ok := id.CurrentUserID(ctx)
	if !ok {
		return "", apperr.Unauthenticated("must be logged in")
	}
	return userID, nil
}

// IsMember reports whether userID holds either role in g.
func IsMember(g models.Group, userID string) bool {
	return IsStudent(g, userID) || IsMentor(g, userID)
}

func IsMentor(g models.Group, userID string) bool {
	return g.HasMentor(userID)
}

func IsStudent(g models.Group, userID string) bool {
	return g.HasStudent(userID)
}

// RequireMember fails with Forbidden unless userID belongs to g.
func RequireMember(g models.Group, userID, action string) error {
	if !IsMember(g, userID) {
		return apperr.Forbidden("must be a student or mentor in the group to " + action)
	}
	return nil
}

// RequireMentor fails with Forbidden unless userID mentors g.
func RequireMentor(g models.Group, userID, action string) error {
	if !IsMentor(g, userID) {
		return apperr.Forbidden("must be a mentor in the group to " + action)
	}
	return nil
}
