package groupstore_test

import (
	"context"
	"errors"
	"testing"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
)

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := groupstore.New(docstore.NewMemStore())

	created, err := store.Create(ctx, "Intro to Calculus", "limits and derivatives")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.TitleCI == "" {
		t.Error("expected TitleCI to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Intro to Calculus" || got.Description != "limits and derivatives" {
		t.Errorf("got %+v", got)
	}
	want := []string{"intro", "to", "calculus"}
	if len(got.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", got.Tags, want)
	}
	for i := range want {
		if got.Tags[i] != want[i] {
			t.Errorf("Tags = %v, want %v", got.Tags, want)
		}
	}
	if got.Students == nil || got.Mentors == nil || len(got.Students)+len(got.Mentors) != 0 {
		t.Errorf("expected empty rosters, got %v / %v", got.Students, got.Mentors)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := groupstore.New(docstore.NewMemStore())
	if _, err := store.GetByID(context.Background(), "nope"); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_SearchAndList(t *testing.T) {
	ctx := context.Background()
	store := groupstore.New(docstore.NewMemStore())
	for _, title := range []string{"Organic Chemistry", "Linear Algebra", "abstract algebra", "Poetry"} {
		if _, err := store.Create(ctx, title, "d"); err != nil {
			t.Fatalf("Create(%q): %v", title, err)
		}
	}

	found, err := store.Search(ctx, []string{"algebra", "poetry"}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	titles := make([]string, 0, len(found))
	for _, g := range found {
		titles = append(titles, g.Title)
	}
	want := []string{"abstract algebra", "Linear Algebra", "Poetry"}
	if len(titles) != len(want) {
		t.Fatalf("Search titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("Search titles = %v, want %v", titles, want)
		}
	}

	limited, err := store.Search(ctx, []string{"algebra"}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d results", len(limited))
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("List returned %d groups, want 4", len(all))
	}
}
