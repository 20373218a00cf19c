package reportstore

import (
	"context"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// Collection holds one report per reported message, keyed by message ID.
var Collection = docstore.Root("reports")

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Put writes r under its message ID, replacing any earlier report of the
// same message.
func (s *Store) Put(ctx context.Context, r models.Report) error {
	return s.ds.Set(ctx, Collection, r.ID, r)
}

func (s *Store) GetByID(ctx context.Context, messageID string) (models.Report, error) {
	raw, err := s.ds.Get(ctx, Collection, messageID)
	if err != nil {
		return models.Report{}, err
	}
	return docstore.Decode[models.Report](raw)
}
