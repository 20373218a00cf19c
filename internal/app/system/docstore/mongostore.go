package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	db  *mongo.Database
	log *zap.Logger

	// noTxn is set once the deployment has refused a transaction; later
	// units go straight to the compensating path.
	noTxn atomic.Bool
}

// NewMongoStore wraps db.
func NewMongoStore(db *mongo.Database, logger *zap.Logger) *MongoStore {
	return &MongoStore{db: db, log: logger}
}

// Database exposes the underlying database for schema setup.
func (s *MongoStore) Database() *mongo.Database { return s.db }

func (s *MongoStore) coll(c Collection) *mongo.Collection {
	return s.db.Collection(c.Physical())
}

func scope(c Collection, id string) bson.D {
	f := bson.D{{Key: idField, Value: id}}
	if c.Parent != "" {
		f = append(f, bson.E{Key: ParentField, Value: c.ParentID})
	}
	return f
}

func (s *MongoStore) Get(ctx context.Context, c Collection, id string) (bson.Raw, error) {
	raw, err := s.coll(c).FindOne(ctx, scope(c, id)).Raw()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", c.Path(), id, mapErr(err))
	}
	return raw, nil
}

func (s *MongoStore) Set(ctx context.Context, c Collection, id string, doc any) error {
	d, err := encode(c, id, doc, -1)
	if err != nil {
		return err
	}
	_, err = s.coll(c).ReplaceOne(ctx, scope(c, id), d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", c.Path(), id, mapErr(err))
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, c Collection, q Query) ([]bson.Raw, error) {
	filter := bson.D{}
	if c.Parent != "" {
		filter = append(filter, bson.E{Key: ParentField, Value: c.ParentID})
	}
	for _, f := range q.Filters {
		switch f.Op {
		case Eq:
			filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
		case ContainsAny:
			filter = append(filter, bson.E{Key: f.Field, Value: bson.M{"$in": f.Value}})
		default:
			return nil, fmt.Errorf("query %s: unknown operator %d", c.Path(), f.Op)
		}
	}

	dir := 1
	if q.Descending {
		dir = -1
	}
	sort := bson.D{}
	if q.OrderBy != "" {
		sort = append(sort, bson.E{Key: q.OrderBy, Value: dir})
	}
	sort = append(sort, bson.E{Key: idField, Value: 1})

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := s.coll(c).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.Path(), mapErr(err))
	}
	defer cur.Close(ctx)

	var out []bson.Raw
	for cur.Next(ctx) {
		out = append(out, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", c.Path(), mapErr(err))
	}
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return mapErr(err)
	}
	return nil
}

// RunAtomic runs fn inside a multi-document transaction. Deployments
// without transaction support (standalone servers) get ordered CAS writes
// with compensation instead.
func (s *MongoStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if s.noTxn.Load() {
		return s.runCompensating(ctx, fn)
	}

	sess, err := s.db.Client().StartSession()
	if err != nil {
		return mapErr(err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		tx := &mongoTx{s: s}
		if err := fn(sc, tx); err != nil {
			return nil, err
		}
		return nil, tx.apply(sc)
	})
	if err == nil {
		return nil
	}
	if IsNotSupported(err) {
		s.noTxn.Store(true)
		s.log.Warn("transactions not supported; using compensating writes", zap.Error(err))
		return s.runCompensating(ctx, fn)
	}
	return mapErr(err)
}

func (s *MongoStore) runCompensating(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &mongoTx{s: s, prior: make(map[string]bson.Raw)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// The write sequence must not be cut short by the caller once it starts.
	return tx.apply(context.WithoutCancel(ctx))
}

type mongoWrite struct {
	c       Collection
	id      string
	doc     bson.D
	insert  bool
	version int64
}

type mongoTx struct {
	s      *MongoStore
	writes []mongoWrite
	// prior holds the image read for each document; only kept on the
	// compensating path.
	prior map[string]bson.Raw
}

func (t *mongoTx) Get(ctx context.Context, c Collection, id string) (bson.Raw, error) {
	raw, err := t.s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if t.prior != nil {
		t.prior[c.Path()+"/"+id] = raw
	}
	return raw, nil
}

func (t *mongoTx) Insert(c Collection, id string, doc any) error {
	d, err := encode(c, id, doc, 1)
	if err != nil {
		return err
	}
	t.writes = append(t.writes, mongoWrite{c: c, id: id, doc: d, insert: true})
	return nil
}

func (t *mongoTx) Put(c Collection, id string, doc any, version int64) error {
	d, err := encode(c, id, doc, version+1)
	if err != nil {
		return err
	}
	t.writes = append(t.writes, mongoWrite{c: c, id: id, doc: d, version: version})
	return nil
}

// apply performs the buffered writes in order. Outside a transaction a
// failure restores the documents already written.
func (t *mongoTx) apply(ctx context.Context) error {
	for i, w := range t.writes {
		if err := t.write(ctx, w); err != nil {
			if t.prior != nil {
				t.compensate(ctx, t.writes[:i])
			}
			return err
		}
	}
	return nil
}

func (t *mongoTx) write(ctx context.Context, w mongoWrite) error {
	coll := t.s.coll(w.c)
	if w.insert {
		if _, err := coll.InsertOne(ctx, w.doc); err != nil {
			if wafflemongo.IsDup(err) {
				return fmt.Errorf("%s/%s already exists: %w", w.c.Path(), w.id, ErrVersionConflict)
			}
			return fmt.Errorf("insert %s/%s: %w", w.c.Path(), w.id, mapErr(err))
		}
		return nil
	}

	filter := append(scope(w.c, w.id), versionFilter(w.version))
	res, err := coll.ReplaceOne(ctx, filter, w.doc)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", w.c.Path(), w.id, mapErr(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s changed since read at version %d: %w",
			w.c.Path(), w.id, w.version, ErrVersionConflict)
	}
	return nil
}

func (t *mongoTx) compensate(ctx context.Context, done []mongoWrite) {
	for i := len(done) - 1; i >= 0; i-- {
		w := done[i]
		coll := t.s.coll(w.c)
		var err error
		if w.insert {
			_, err = coll.DeleteOne(ctx, append(scope(w.c, w.id), versionFilter(1)))
		} else if prior, ok := t.prior[w.c.Path()+"/"+w.id]; ok {
			_, err = coll.ReplaceOne(ctx, append(scope(w.c, w.id), versionFilter(w.version+1)), prior)
		} else {
			t.s.log.Error("no prior image to restore", zap.String("path", w.c.Path()), zap.String("id", w.id))
			continue
		}
		if err != nil {
			t.s.log.Error("compensating write failed",
				zap.String("path", w.c.Path()), zap.String("id", w.id), zap.Error(err))
		}
	}
}

// versionFilter matches a stored version; version 0 also matches documents
// that never had the field.
func versionFilter(v int64) bson.E {
	if v == 0 {
		return bson.E{Key: versionField, Value: bson.M{"$in": bson.A{0, nil}}}
	}
	return bson.E{Key: versionField, Value: v}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnavailable), errors.Is(err, ErrCorruptRecord):
		return err
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions: a standalone server answers with
// IllegalOperation (code 20) and replica-set wording. The answer is sticky
// on the store, so nothing looser qualifies.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 20 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set")
}
