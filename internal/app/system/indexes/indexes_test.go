package indexes_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/system/indexes"
	"github.com/dalemusser/socraticos/internal/testutil"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	store := testutil.SetupMongoStore(t)
	db := store.Database()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("groups.chatHistory").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	defer cur.Close(ctx)

	names := map[string]bool{}
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	for _, want := range []string{"idx_chat_parent_ts", "idx_chat_parent_pinned_ts"} {
		if !names[want] {
			t.Errorf("missing index %s (have %v)", want, names)
		}
	}
}
