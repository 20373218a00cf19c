// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// Collection holds every group document.
var Collection = docstore.Root("groups")

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Group, error) {
	raw, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.Group{}, err
	}
	return docstore.Decode[models.Group](raw)
}

// Create assigns a fresh ID, derives tags and the folded title, and
// inserts the group with empty rosters.
func (s *Store) Create(ctx context.Context, title, description string) (models.Group, error) {
	g := models.Group{
		ID:          uuid.NewString(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: description,
		Tags:        models.DeriveTags(title),
	}
	g.Normalize()
	err := s.ds.RunAtomic(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return tx.Insert(Collection, g.ID, g)
	})
	if err != nil {
		return models.Group{}, err
	}
	g.Version = 1
	return g, nil
}

// Search returns groups carrying any of tokens as a tag, in title order.
func (s *Store) Search(ctx context.Context, tokens []string, limit int) ([]models.Group, error) {
	raws, err := s.ds.Query(ctx, Collection, docstore.Query{
		Filters: []docstore.Filter{{Field: "tags", Op: docstore.ContainsAny, Value: tokens}},
		OrderBy: "title_ci",
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.Group](raws)
}

// List returns every group in title order.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	raws, err := s.ds.Query(ctx, Collection, docstore.Query{OrderBy: "title_ci"})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.Group](raws)
}

// Load reads a group inside an atomic unit.
func (s *Store) Load(ctx context.Context, tx docstore.Tx, id string) (models.Group, error) {
	raw, err := tx.Get(ctx, Collection, id)
	if err != nil {
		return models.Group{}, err
	}
	return docstore.Decode[models.Group](raw)
}

// Save writes g back, provided nobody changed it since Load.
func (s *Store) Save(tx docstore.Tx, g models.Group) error {
	return tx.Put(Collection, g.ID, g, g.Version)
}
