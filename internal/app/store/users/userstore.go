package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/domain/models"
)

var Collection = docstore.Root("users")

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// GetByID loads a user by ID.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	raw, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.User{}, err
	}
	return docstore.Decode[models.User](raw)
}

// Ensure returns the user record for id, creating an empty one if none
// exists. created reports whether this call made it.
func (s *Store) Ensure(ctx context.Context, id string) (u models.User, created bool, err error) {
	err = s.ds.RunAtomic(ctx, func(ctx context.Context, tx docstore.Tx) error {
		u, created = models.User{}, false
		existing, err := s.Load(ctx, tx, id)
		switch {
		case err == nil:
			u = existing
			return nil
		case !errors.Is(err, docstore.ErrNotFound):
			return err
		}
		u = models.User{ID: id}
		u.Normalize()
		created = true
		return tx.Insert(Collection, id, u)
	})
	if err != nil {
		return models.User{}, false, err
	}
	if created {
		u.Version = 1
	}
	return u, created, nil
}

// Load reads a user inside an atomic unit.
func (s *Store) Load(ctx context.Context, tx docstore.Tx, id string) (models.User, error) {
	raw, err := tx.Get(ctx, Collection, id)
	if err != nil {
		return models.User{}, err
	}
	return docstore.Decode[models.User](raw)
}

// Save writes u back, provided nobody changed it since Load.
func (s *Store) Save(tx docstore.Tx, u models.User) error {
	return tx.Put(Collection, u.ID, u, u.Version)
}
