package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemStore is an in-process Store. Atomic units are optimistic: reads see
// committed data, writes are checked and applied together under one lock.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]bson.Raw // collection path -> id -> document
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]map[string]bson.Raw)}
}

func (s *MemStore) Get(ctx context.Context, c Collection, id string) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[c.Path()][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", c.Path(), id, ErrNotFound)
	}
	return raw, nil
}

func (s *MemStore) Set(ctx context.Context, c Collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d, err := encode(c, id, doc, -1)
	if err != nil {
		return err
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(c.Path(), id, raw)
	return nil
}

func (s *MemStore) Query(ctx context.Context, c Collection, q Query) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []bson.Raw
	for _, raw := range s.docs[c.Path()] {
		if matchesAll(raw, q.Filters) {
			out = append(out, raw)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderBy != "" {
			if n := compareValues(out[i].Lookup(q.OrderBy), out[j].Lookup(q.OrderBy)); n != 0 {
				if q.Descending {
					return n > 0
				}
				return n < 0
			}
		}
		return idOf(out[i]) < idOf(out[j])
	})
	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

func (s *MemStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemStore) put(path, id string, raw bson.Raw) {
	coll, ok := s.docs[path]
	if !ok {
		coll = make(map[string]bson.Raw)
		s.docs[path] = coll
	}
	coll[id] = raw
}

type memWrite struct {
	c       Collection
	id      string
	raw     bson.Raw
	insert  bool
	version int64 // expected stored version for replaces
}

type memTx struct {
	s      *MemStore
	writes []memWrite
}

func (t *memTx) Get(ctx context.Context, c Collection, id string) (bson.Raw, error) {
	return t.s.Get(ctx, c, id)
}

func (t *memTx) Insert(c Collection, id string, doc any) error {
	return t.buffer(c, id, doc, true, 0)
}

func (t *memTx) Put(c Collection, id string, doc any, version int64) error {
	return t.buffer(c, id, doc, false, version)
}

func (t *memTx) buffer(c Collection, id string, doc any, insert bool, version int64) error {
	next := version + 1
	if insert {
		next = 1
	}
	d, err := encode(c, id, doc, next)
	if err != nil {
		return err
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	t.writes = append(t.writes, memWrite{c: c, id: id, raw: raw, insert: insert, version: version})
	return nil
}

func (t *memTx) commit(ctx context.Context) error {
	if len(t.writes) == 0 {
		return nil
	}
	// Cancellation is honoured up to here; past this point the unit is applied whole.
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, w := range t.writes {
		cur, exists := t.s.docs[w.c.Path()][w.id]
		switch {
		case w.insert && exists:
			return fmt.Errorf("%s/%s already exists: %w", w.c.Path(), w.id, ErrVersionConflict)
		case !w.insert && !exists:
			return fmt.Errorf("%s/%s vanished: %w", w.c.Path(), w.id, ErrVersionConflict)
		case !w.insert && versionOf(cur) != w.version:
			return fmt.Errorf("%s/%s at version %d, expected %d: %w",
				w.c.Path(), w.id, versionOf(cur), w.version, ErrVersionConflict)
		}
	}
	for _, w := range t.writes {
		t.s.put(w.c.Path(), w.id, w.raw)
	}
	return nil
}

func matchesAll(raw bson.Raw, filters []Filter) bool {
	for _, f := range filters {
		if !matches(raw, f) {
			return false
		}
	}
	return true
}

func matches(raw bson.Raw, f Filter) bool {
	rv := raw.Lookup(f.Field)
	switch f.Op {
	case Eq:
		switch want := f.Value.(type) {
		case bool:
			got, ok := rv.BooleanOK()
			return ok && got == want
		case string:
			got, ok := rv.StringValueOK()
			return ok && got == want
		case int:
			got, ok := rv.AsInt64OK()
			return ok && got == int64(want)
		case int64:
			got, ok := rv.AsInt64OK()
			return ok && got == want
		}
		return false
	case ContainsAny:
		want, _ := f.Value.([]string)
		arr, ok := rv.ArrayOK()
		if !ok {
			return false
		}
		vals, err := arr.Values()
		if err != nil {
			return false
		}
		for _, v := range vals {
			s, ok := v.StringValueOK()
			if !ok {
				continue
			}
			for _, w := range want {
				if s == w {
					return true
				}
			}
		}
		return false
	}
	return false
}

// compareValues orders two field values of the same BSON type.
func compareValues(a, b bson.RawValue) int {
	if at, ok := a.DateTimeOK(); ok {
		bt, _ := b.DateTimeOK()
		return cmpInt(at, bt)
	}
	if as, ok := a.StringValueOK(); ok {
		bs, _ := b.StringValueOK()
		return strings.Compare(as, bs)
	}
	if an, ok := a.AsInt64OK(); ok {
		bn, _ := b.AsInt64OK()
		return cmpInt(an, bn)
	}
	if ab, ok := a.BooleanOK(); ok {
		bb, _ := b.BooleanOK()
		switch {
		case ab == bb:
			return 0
		case bb:
			return -1
		default:
			return 1
		}
	}
	if _, ok := b.DateTimeOK(); ok {
		return -1
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
