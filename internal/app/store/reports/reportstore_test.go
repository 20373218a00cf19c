package reportstore_test

import (
	"context"
	"testing"
	"time"

	reportstore "github.com/dalemusser/socraticos/internal/app/store/reports"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

func TestStore_PutOverwritesByMessage(t *testing.T) {
	ctx := context.Background()
	store := reportstore.New(docstore.NewMemStore())
	msg := models.Message{ID: "m1", GroupID: "g1", Text: "rude"}

	first := models.Report{ID: msg.ID, GroupID: "g1", Message: msg, ReportedBy: "u1", ReportedAt: time.Now(), Reason: "spam"}
	second := models.Report{ID: msg.ID, GroupID: "g1", Message: msg, ReportedBy: "u2", ReportedAt: time.Now(), Reason: "abuse"}

	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put first: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put second: %v", err)
	}

	got, err := store.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ReportedBy != "u2" || got.Reason != "abuse" {
		t.Errorf("got %+v, want the second report", got)
	}
	if got.Message.Text != "rude" {
		t.Errorf("snapshot text = %q", got.Message.Text)
	}
}
