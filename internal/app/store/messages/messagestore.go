// Package messagestore reads and updates chat messages, which live in the
// chatHistory sub-collection of their group.
package messagestore

import (
	"context"

	groupstore "github.com/dalemusser/socraticos/internal/app/store/groups"
	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

// Collection addresses the chat history of groupID.
func Collection(groupID string) docstore.Collection {
	return docstore.Sub(groupstore.Collection.Name, groupID, "chatHistory")
}

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Recent returns up to limit messages of the group, newest first. With
// pinnedOnly set, only pinned messages are considered.
func (s *Store) Recent(ctx context.Context, groupID string, limit int, pinnedOnly bool) ([]models.Message, error) {
	q := docstore.Query{OrderBy: "timestamp", Descending: true, Limit: int64(limit)}
	if pinnedOnly {
		q.Filters = []docstore.Filter{{Field: "pinned", Op: docstore.Eq, Value: true}}
	}
	raws, err := s.ds.Query(ctx, Collection(groupID), q)
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.Message](raws)
}

func (s *Store) GetByID(ctx context.Context, groupID, id string) (models.Message, error) {
	raw, err := s.ds.Get(ctx, Collection(groupID), id)
	if err != nil {
		return models.Message{}, err
	}
	return docstore.Decode[models.Message](raw)
}

// Load reads a message inside an atomic unit.
func (s *Store) Load(ctx context.Context, tx docstore.Tx, groupID, id string) (models.Message, error) {
	raw, err := tx.Get(ctx, Collection(groupID), id)
	if err != nil {
		return models.Message{}, err
	}
	return docstore.Decode[models.Message](raw)
}

// Save writes m back, provided nobody changed it since Load.
func (s *Store) Save(tx docstore.Tx, m models.Message) error {
	return tx.Put(Collection(m.GroupID), m.ID, m, m.Version)
}
