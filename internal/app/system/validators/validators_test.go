package validators_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	requeststore "github.com/dalemusser/socraticos/internal/app/store/requests"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/validators"
	"github.com/dalemusser/socraticos/internal/domain/models"
	"github.com/dalemusser/socraticos/internal/testutil"
)

func setup(t *testing.T) *docstore.MongoStore {
	t.Helper()
	store := testutil.SetupMongoStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, store.Database(), zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return store
}

func TestEnsureAll_Idempotent(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, store.Database(), zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	names, err := store.Database().ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	got := map[string]bool{}
	for _, n := range names {
		got[n] = true
	}
	for _, want := range []string{"groups", "users", "groups.chatHistory", "groups.requests", "reports", "audit_events"} {
		if !got[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestGroupsValidator(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	valid := models.Group{ID: "g-valid", Title: "Rust", TitleCI: "rust", Tags: []string{"rust"}}
	if err := store.Set(ctx, groupstore.Collection, valid.ID, valid); err != nil {
		t.Fatalf("valid group rejected: %v", err)
	}

	blank := models.Group{ID: "g-blank", Title: "   ", TitleCI: "   "}
	if err := store.Set(ctx, groupstore.Collection, blank.ID, blank); err == nil {
		t.Fatal("expected blank title to be rejected")
	}
}

func TestRequestsValidator_Role(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := requeststore.Collection("g1")
	ok := models.JoinRequest{ID: "r1", GroupID: "g1", UserID: "u1", Role: models.RoleMentor, CreatedAt: time.Now().UTC()}
	if err := store.Set(ctx, coll, ok.ID, ok); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := ok
	bad.ID = "r2"
	bad.Role = models.Role("admin")
	if err := store.Set(ctx, coll, bad.ID, bad); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}
