package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dalemusser/socraticos/internal/app/services/catalog"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auditlog"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/socraticos/internal/testutil"
)

func newService(t *testing.T) (*catalog.Service, *testutil.Fixtures) {
	t.Helper()
	ds := testutil.NewStore()
	svc := catalog.New(ds, auth.ContextIdentity{}, nil, limits.DefaultResults, zap.NewNop())
	return svc, testutil.NewFixtures(t, ds)
}

func TestCreate_DerivesTags(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, _ := newService(t)

	g, err := svc.Create(ctx, "Intro To Rust", "systems programming")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"intro", "to", "rust"}, g.Tags)
	require.Empty(t, g.Students)
	require.Empty(t, g.Mentors)
	_, err = uuid.Parse(g.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, g.Title, got.Title)
	require.Equal(t, g.Tags, got.Tags)
}

func TestCreate_Validation(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, _ := newService(t)

	cases := []struct {
		name        string
		title, desc string
	}{
		{"empty title", "", "d"},
		{"empty description", "t", ""},
		{"whitespace title", "   ", "d"},
		{"markup only title", "<script>alert(1)</script>", "d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.title, tc.desc)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCreate_StripsMarkup(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, _ := newService(t)

	g, err := svc.Create(ctx, "<b>Linear</b> Algebra", "vectors & <i>matrices</i>")
	require.NoError(t, err)
	require.Equal(t, "Linear Algebra", g.Title)
	require.Equal(t, "vectors & matrices", g.Description)
	require.Equal(t, []string{"linear", "algebra"}, g.Tags)
}

func TestCreate_AuditsActor(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	core, logs := observer.New(zapcore.InfoLevel)
	audit := auditlog.New(nil, zap.New(core), auditlog.Config{Membership: auditlog.ModeLog})
	svc := catalog.New(testutil.NewStore(), auth.ContextIdentity{}, audit, limits.DefaultResults, zap.NewNop())

	g, err := svc.Create(auth.WithUserID(ctx, "alice"), "Chess", "openings")
	require.NoError(t, err)

	entries := logs.FilterField(zap.String("group_id", g.ID)).All()
	require.Len(t, entries, 1)
	require.Equal(t, "alice", entries[0].ContextMap()["actor_id"])
}

func TestGet_Errors(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, _ := newService(t)

	_, err := svc.Get(ctx, uuid.NewString())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(ctx, "not-a-uuid")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearch_TokenIntersection(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, fx := newService(t)

	calc := fx.CreateGroup(ctx, "Algebra Calculus")
	fx.CreateGroup(ctx, "Poetry")
	geo := fx.CreateGroup(ctx, "Geometry")

	got, err := svc.Search(ctx, "calculus geometry", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, calc.ID, got[0].ID)
	require.Equal(t, geo.ID, got[1].ID)

	got, err = svc.Search(ctx, "  CALCULUS ", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, calc.ID, got[0].ID)

	got, err = svc.Search(ctx, "calculus geometry", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = svc.Search(ctx, "history", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearch_Validation(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, _ := newService(t)

	_, err := svc.Search(ctx, "   ", 10)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Search(ctx, "algebra", -1)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestList_TitleOrder(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, fx := newService(t)

	fx.CreateGroup(ctx, "zoology")
	fx.CreateGroup(ctx, "Art")
	fx.CreateGroup(ctx, "biology")

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "Art", got[0].Title)
	require.Equal(t, "biology", got[1].Title)
	require.Equal(t, "zoology", got[2].Title)
}

func TestListByIDs(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc, fx := newService(t)

	a := fx.CreateGroup(ctx, "A")
	b := fx.CreateGroup(ctx, "B")

	got, err := svc.ListByIDs(ctx, []string{b.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, b.ID, got[0].ID)
	require.Equal(t, a.ID, got[1].ID)

	_, err = svc.ListByIDs(ctx, []string{a.ID, uuid.NewString()})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ListByIDs(ctx, nil)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.ListByIDs(ctx, []string{a.ID, "bogus"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTokens(t *testing.T) {
	require.Equal(t, []string{"intro", "to", "rust"}, catalog.Tokens(" Intro  to RUST rust "))
	require.Empty(t, catalog.Tokens("\t \n"))
}
