// Package requeststore keeps join requests in the requests sub-collection
// of their group.
package requeststore

import (
	"context"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// Collection addresses the join requests of groupID.
func Collection(groupID string) docstore.Collection {
	return docstore.Sub(groupstore.Collection.Name, groupID, "requests")
}

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// List returns every request of the group, pending and judged, oldest first.
func (s *Store) List(ctx context.Context, groupID string) ([]models.JoinRequest, error) {
	raws, err := s.ds.Query(ctx, Collection(groupID), docstore.Query{OrderBy: "created_at"})
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.JoinRequest](raws)
}

func (s *Store) GetByID(ctx context.Context, groupID, id string) (models.JoinRequest, error) {
	raw, err := s.ds.Get(ctx, Collection(groupID), id)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return docstore.Decode[models.JoinRequest](raw)
}

// Insert adds a new request inside an atomic unit.
func (s *Store) Insert(tx docstore.Tx, r models.JoinRequest) error {
	return tx.Insert(Collection(r.GroupID), r.ID, r)
}

// Load reads a request inside an atomic unit.
func (s *Store) Load(ctx context.Context, tx docstore.Tx, groupID, id string) (models.JoinRequest, error) {
	raw, err := tx.Get(ctx, Collection(groupID), id)
	if err != nil {
		return models.JoinRequest{}, err
	}
	return docstore.Decode[models.JoinRequest](raw)
}

// Save writes r back, provided nobody changed it since Load.
func (s *Store) Save(tx docstore.Tx, r models.JoinRequest) error {
	return tx.Put(Collection(r.GroupID), r.ID, r, r.Version)
}
