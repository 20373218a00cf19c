package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/features/health"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/testutil"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return docstore.ErrUnavailable }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Error    string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec.Code, resp
}

func TestServe_StoreConnected(t *testing.T) {
	code, resp := serve(t, health.NewHandler(testutil.NewStore(), "memory", zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.Backend != "memory" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestServe_StoreDown(t *testing.T) {
	code, resp := serve(t, health.NewHandler(downStore{}, "mongo", zap.NewNop()))

	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
	if resp.Status != "error" || resp.Database != "disconnected" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Error == "" {
		t.Errorf("error detail missing: %+v", resp)
	}
}

func TestServe_Mongo(t *testing.T) {
	store := testutil.SetupMongoStore(t)
	code, resp := serve(t, health.NewHandler(store, "mongo", zap.NewNop()))
	if code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("got %d %+v", code, resp)
	}
}
