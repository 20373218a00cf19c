package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/system/auth"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// echoPrincipal writes the principal seen by the handler, or "anonymous".
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.ContextIdentity{}.CurrentUserID(r.Context())
		if !ok {
			id = "anonymous"
		}
		_, _ = w.Write([]byte(id))
	})
}

func serve(h http.Handler, req *http.Request) string {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestLoadPrincipal_Anonymous(t *testing.T) {
	h := auth.LoadPrincipal(newTestSessionManager(t), auth.NewTokenVerifier("secret"), zap.NewNop())(echoPrincipal())
	if got := serve(h, httptest.NewRequest("GET", "/", nil)); got != "anonymous" {
		t.Errorf("got %q, want anonymous", got)
	}
}

func TestLoadPrincipal_SessionCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	// Sign in to obtain a cookie.
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, httptest.NewRequest("POST", "/login", nil), "user-1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	h := auth.LoadPrincipal(sm, nil, zap.NewNop())(echoPrincipal())
	if got := serve(h, req); got != "user-1" {
		t.Errorf("got %q, want user-1", got)
	}
}

func TestLoadPrincipal_TamperedCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-signed-value"})

	h := auth.LoadPrincipal(sm, nil, zap.NewNop())(echoPrincipal())
	if got := serve(h, req); got != "anonymous" {
		t.Errorf("got %q, want anonymous", got)
	}
}

func TestLoadPrincipal_BearerToken(t *testing.T) {
	tv := auth.NewTokenVerifier("jwt-secret")
	tok, err := tv.Issue("user-2", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer " + tok, "user-2"},
		{"lower-case scheme", "bearer " + tok, "user-2"},
		{"garbage", "Bearer abc.def.ghi", "anonymous"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "anonymous"},
	}
	h := auth.LoadPrincipal(nil, tv, zap.NewNop())(echoPrincipal())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", tt.header)
			if got := serve(h, req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenVerifier_RejectsOtherSecretAndExpired(t *testing.T) {
	tv := auth.NewTokenVerifier("one")
	other := auth.NewTokenVerifier("two")

	tok, _ := other.Issue("user-3", time.Hour)
	if _, err := tv.Verify(tok); err != auth.ErrInvalidToken {
		t.Errorf("foreign token err = %v, want ErrInvalidToken", err)
	}

	expired, _ := tv.Issue("user-3", -time.Minute)
	if _, err := tv.Verify(expired); err != auth.ErrInvalidToken {
		t.Errorf("expired token err = %v, want ErrInvalidToken", err)
	}
}

func TestWithUserID(t *testing.T) {
	ctx := auth.WithUserID(context.Background(), "u")
	if id, ok := auth.UserIDFrom(ctx); !ok || id != "u" {
		t.Errorf("UserIDFrom = %q, %v", id, ok)
	}
	if _, ok := auth.UserIDFrom(auth.WithUserID(context.Background(), "")); ok {
		t.Error("empty user id should not count as a principal")
	}
}
