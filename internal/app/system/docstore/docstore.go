// Package docstore is the document persistence contract the services are
// written against, with a MongoDB implementation for production and an
// in-memory implementation for tests and local development.
//
// Documents live in collections; a collection may be nested under a parent
// document (groups/{groupID}/chatHistory). Reads return raw BSON that the
// typed stores turn into models through Decode, which also validates shape.
//
// Multi-document consistency is provided by RunAtomic. Writes issued through
// a Tx are compare-and-swap on the document's "version" field and are applied
// all together or not at all.
package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound        = errors.New("docstore: document not found")
	ErrVersionConflict = errors.New("docstore: version conflict")
	ErrUnavailable     = errors.New("docstore: store unavailable")
	ErrCorruptRecord   = errors.New("docstore: corrupt record")
)

// Collection addresses a top-level collection or a sub-collection of one
// parent document.
type Collection struct {
	Parent   string // parent collection name; empty for top-level
	ParentID string
	Name     string
}

// Root addresses a top-level collection.
func Root(name string) Collection {
	return Collection{Name: name}
}

// Sub addresses the sub-collection name under parent/parentID.
func Sub(parent, parentID, name string) Collection {
	return Collection{Parent: parent, ParentID: parentID, Name: name}
}

// Path renders the collection as "name" or "parent/parentID/name".
func (c Collection) Path() string {
	if c.Parent == "" {
		return c.Name
	}
	return c.Parent + "/" + c.ParentID + "/" + c.Name
}

// Physical is the backing MongoDB collection name, shared by every parent
// of a sub-collection.
func (c Collection) Physical() string {
	if c.Parent == "" {
		return c.Name
	}
	return c.Parent + "." + c.Name
}

// Op is a filter operator.
type Op int

const (
	// Eq matches when the field equals Value (string, bool or integer).
	Eq Op = iota
	// ContainsAny matches when the array field shares at least one element
	// with Value ([]string).
	ContainsAny
)

// Filter is one predicate of a Query. All filters of a query must match.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query selects, orders and limits documents of one collection.
// A zero Limit means unbounded.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int64
}

// Store is the document store contract.
type Store interface {
	// Get returns the document or an error wrapping ErrNotFound.
	Get(ctx context.Context, c Collection, id string) (bson.Raw, error)
	// Set overwrites (or creates) the document. Last writer wins.
	Set(ctx context.Context, c Collection, id string, doc any) error
	Query(ctx context.Context, c Collection, q Query) ([]bson.Raw, error)
	// RunAtomic runs fn and commits the writes it buffered on tx as a unit.
	// fn may be called more than once; it must re-read everything it needs.
	RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the view of the store inside an atomic unit.
type Tx interface {
	Get(ctx context.Context, c Collection, id string) (bson.Raw, error)
	// Insert creates the document; it conflicts if the id already exists.
	Insert(c Collection, id string, doc any) error
	// Put replaces the document if its stored version still equals version
	// (the value observed when it was read) and bumps the version.
	Put(c Collection, id string, doc any, version int64) error
}
