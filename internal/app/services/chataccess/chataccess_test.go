package chataccess_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/services/chataccess"
	"github.com/dalemusser/socraticos/internal/app/system/apperr"
	"github.com/dalemusser/socraticos/internal/app/system/auth"
	"github.com/dalemusser/socraticos/internal/app/system/limits"
	"github.com/dalemusser/socraticos/internal/domain/models"
	"github.com/dalemusser/socraticos/internal/testutil"
)

func TestHistory(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ds := testutil.NewStore()
	fx := testutil.NewFixtures(t, ds)
	svc := chataccess.New(ds, auth.ContextIdentity{}, limits.Results{Default: 2, Cap: 3}, zap.NewNop())

	g := fx.CreateGroup(ctx, "Chess Club")
	other := fx.CreateGroup(ctx, "Go Club")
	fx.AddMember(ctx, g.ID, "sam", models.RoleStudent)
	fx.AddMember(ctx, g.ID, "mia", models.RoleMentor)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fx.CreateMessage(ctx, g.ID, "sam", "first", base, false)
	m2 := fx.CreateMessage(ctx, g.ID, "mia", "second", base.Add(time.Minute), true)
	m3 := fx.CreateMessage(ctx, g.ID, "sam", "third", base.Add(2*time.Minute), false)
	m4 := fx.CreateMessage(ctx, g.ID, "mia", "fourth", base.Add(3*time.Minute), true)
	fx.CreateMessage(ctx, other.ID, "x", "elsewhere", base.Add(time.Hour), true)

	got, err := svc.History(auth.WithUserID(ctx, "sam"), g.ID, 0)
	require.NoError(t, err)
	require.Equal(t, []string{m4.ID, m3.ID}, ids(got))

	got, err = svc.History(auth.WithUserID(ctx, "mia"), g.ID, 50)
	require.NoError(t, err)
	require.Equal(t, []string{m4.ID, m3.ID, m2.ID}, ids(got))

	got, err = svc.PinnedHistory(auth.WithUserID(ctx, "sam"), g.ID, 10)
	require.NoError(t, err)
	require.Equal(t, []string{m4.ID, m2.ID}, ids(got))
	for _, m := range got {
		require.True(t, m.Pinned)
	}
}

func TestHistory_Gating(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ds := testutil.NewStore()
	fx := testutil.NewFixtures(t, ds)
	svc := chataccess.New(ds, auth.ContextIdentity{}, limits.DefaultResults, zap.NewNop())

	g := fx.CreateGroup(ctx, "Chess Club")
	fx.AddMember(ctx, g.ID, "sam", models.RoleStudent)
	fx.CreateMessage(ctx, g.ID, "sam", "secret", time.Now(), true)

	got, err := svc.History(auth.WithUserID(ctx, "eve"), g.ID, 10)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.Nil(t, got)

	got, err = svc.PinnedHistory(auth.WithUserID(ctx, "eve"), g.ID, 10)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.Nil(t, got)

	_, err = svc.History(ctx, g.ID, 10)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.History(auth.WithUserID(ctx, "sam"), uuid.NewString(), 10)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.History(auth.WithUserID(ctx, "sam"), g.ID, -1)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
