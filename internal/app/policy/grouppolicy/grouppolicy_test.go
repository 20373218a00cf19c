package grouppolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/socraticos/internal/app/policy/grouppolicy"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

var group = models.Group{
	ID:       "g1",
	Title:    "Physics",
	Students: []string{"stu"},
	Mentors:  []string{"men"},
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		user                    string
		member, mentor, student bool
	}{
		{"stu", true, false, true},
		{"men", true, true, false},
		{"stranger", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := grouppolicy.IsMember(group, tt.user); got != tt.member {
				t.Errorf("IsMember = %v, want %v", got, tt.member)
			}
			if got := grouppolicy.IsMentor(group, tt.user); got != tt.mentor {
				t.Errorf("IsMentor = %v, want %v", got, tt.mentor)
			}
			if got := grouppolicy.IsStudent(group, tt.user); got != tt.student {
				t.Errorf("IsStudent = %v, want %v", got, tt.student)
			}
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	id := auth.ContextIdentity{}

	if _, err := grouppolicy.RequireAuthenticated(context.Background(), id); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anonymous err = %v, want Unauthenticated", err)
	}

	ctx := auth.WithUserID(context.Background(), "u1")
	got, err := grouppolicy.RequireAuthenticated(ctx, id)
	if err != nil || got != "u1" {
		t.Errorf("got %q, %v; want u1", got, err)
	}
}

func TestRequireMemberAndMentor(t *testing.T) {
	if err := grouppolicy.RequireMember(group, "stu", "view chat history"); err != nil {
		t.Errorf("student denied: %v", err)
	}
	if err := grouppolicy.RequireMember(group, "stranger", "view chat history"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("stranger err = %v, want Forbidden", err)
	}
	if err := grouppolicy.RequireMentor(group, "stu", "pin messages"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("student pin err = %v, want Forbidden", err)
	}
	if err := grouppolicy.RequireMentor(group, "men", "pin messages"); err != nil {
		t.Errorf("mentor denied: %v", err)
	}
}
