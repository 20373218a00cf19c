package testutil

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	messagestore "github.com/dalemusser/socraticos/internal/app/store/messages"
	userstore "github.com/dalemusser/socraticos/internal/app/store/users"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// TestContext returns a context with a generous timeout for tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// NewStore returns an empty in-memory document store.
func NewStore() *docstore.MemStore {
	return docstore.NewMemStore()
}

// SetupMongoStore returns a MongoStore on a throwaway database, or skips the
// test when SOCRATICOS_TEST_MONGO_URI is not set.
func SetupMongoStore(t *testing.T) *docstore.MongoStore {
	t.Helper()
	uri := os.Getenv("SOCRATICOS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SOCRATICOS_TEST_MONGO_URI not set; skipping MongoDB test")
	}
	ctx, cancel := TestContext()
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test MongoDB: %v", err)
	}
	db := client.Database("socraticos_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return docstore.NewMongoStore(db, zap.NewNop())
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	ds docstore.Store
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, ds docstore.Store) *Fixtures {
	t.Helper()
	return &Fixtures{ds: ds, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() docstore.Store {
	return f.ds
}

// CreateUser stores a user with no memberships.
func (f *Fixtures) CreateUser(ctx context.Context, id string) models.User {
	f.t.Helper()
	u := models.User{ID: id}
	u.Normalize()
	if err := f.ds.Set(ctx, userstore.Collection, id, u); err != nil {
		f.t.Fatalf("create user %s: %v", id, err)
	}
	return u
}

// CreateGroup stores a group with the given title and empty rosters.
func (f *Fixtures) CreateGroup(ctx context.Context, title string) models.Group {
	f.t.Helper()
	g := models.Group{
		ID:          uuid.NewString(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: title + " description",
		Tags:        models.DeriveTags(title),
	}
	g.Normalize()
	if err := f.ds.Set(ctx, groupstore.Collection, g.ID, g); err != nil {
		f.t.Fatalf("create group %q: %v", title, err)
	}
	return g
}

// AddMember puts userID in the group's roster and the group in the user's
// matching set, creating the user if needed.
func (f *Fixtures) AddMember(ctx context.Context, groupID, userID string, role models.Role) {
	f.t.Helper()
	groups, users := groupstore.New(f.ds), userstore.New(f.ds)
	if _, _, err := users.Ensure(ctx, userID); err != nil {
		f.t.Fatalf("ensure user %s: %v", userID, err)
	}
	err := f.ds.RunAtomic(ctx, func(ctx context.Context, tx docstore.Tx) error {
		g, err := groups.Load(ctx, tx, groupID)
		if err != nil {
			return err
		}
		u, err := users.Load(ctx, tx, userID)
		if err != nil {
			return err
		}
		g.AddToRoster(userID, role)
		u.AddMembership(groupID, role)
		if err := groups.Save(tx, g); err != nil {
			return err
		}
		return users.Save(tx, u)
	})
	if err != nil {
		f.t.Fatalf("add %s to %s: %v", userID, groupID, err)
	}
}

// CreateMessage stores a chat message in the group's history.
func (f *Fixtures) CreateMessage(ctx context.Context, groupID, authorID, body string, at time.Time, pinned bool) models.Message {
	f.t.Helper()
	m := models.Message{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		AuthorID:  authorID,
		Text:      body,
		Timestamp: at.UTC().Truncate(time.Millisecond),
		Pinned:    pinned,
	}
	if err := f.ds.Set(ctx, messagestore.Collection(groupID), m.ID, m); err != nil {
		f.t.Fatalf("create message: %v", err)
	}
	return m
}
