package txn

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/locks"
)

type counter struct {
	ID      string `bson:"_id" validate:"required"`
	N       int    `bson:"n"`
	Version int64  `bson:"version"`
}

var counters = docstore.Root("counters")

func increment(ctx context.Context, tx docstore.Tx) error {
	raw, err := tx.Get(ctx, counters, "c")
	if err != nil {
		return err
	}
	c, err := docstore.Decode[counter](raw)
	if err != nil {
		return err
	}
	c.N++
	return tx.Put(counters, c.ID, c, c.Version)
}

func readN(t *testing.T, s docstore.Store) int {
	t.Helper()
	raw, err := s.Get(context.Background(), counters, "c")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	c, err := docstore.Decode[counter](raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return c.N
}

func TestRun_ConcurrentIncrementsAreNotLost(t *testing.T) {
	lockers := map[string]locks.Locker{
		"local locks": locks.NewLocal(),
		"no locks":    locks.Noop{},
	}
	for name, l := range lockers {
		t.Run(name, func(t *testing.T) {
			s := docstore.NewMemStore()
			if err := s.Set(context.Background(), counters, "c", counter{}); err != nil {
				t.Fatalf("Set: %v", err)
			}
			r := New(s, l, zap.NewNop())
			r.attempts = 1000

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := r.Run(context.Background(), []string{"counter:c"}, increment); err != nil {
						t.Errorf("Run: %v", err)
					}
				}()
			}
			wg.Wait()

			if n := readN(t, s); n != 20 {
				t.Errorf("n = %d, want 20", n)
			}
		})
	}
}

// flakyStore reports a version conflict for the first failures commits.
type flakyStore struct {
	*docstore.MemStore
	failures int32
	calls    atomic.Int32
}

func (f *flakyStore) RunAtomic(ctx context.Context, fn func(context.Context, docstore.Tx) error) error {
	if f.calls.Add(1) <= f.failures {
		return docstore.ErrVersionConflict
	}
	return f.MemStore.RunAtomic(ctx, fn)
}

func TestRun_RetriesThenSucceeds(t *testing.T) {
	s := &flakyStore{MemStore: docstore.NewMemStore(), failures: 2}
	_ = s.Set(context.Background(), counters, "c", counter{})
	r := New(s, nil, zap.NewNop())

	if err := r.Run(context.Background(), nil, increment); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if n := readN(t, s); n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}

func TestRun_GivesUpAfterAttempts(t *testing.T) {
	s := &flakyStore{MemStore: docstore.NewMemStore(), failures: 100}
	r := New(s, nil, zap.NewNop())

	err := r.Run(context.Background(), nil, increment)
	if !errors.Is(err, docstore.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if got := s.calls.Load(); got != DefaultAttempts {
		t.Errorf("calls = %d, want %d", got, DefaultAttempts)
	}
}

func TestRun_BusinessErrorIsNotRetried(t *testing.T) {
	s := &flakyStore{MemStore: docstore.NewMemStore()}
	r := New(s, nil, zap.NewNop())
	boom := errors.New("already a member")

	err := r.Run(context.Background(), nil, func(context.Context, docstore.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := s.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

type downLocker struct{}

func (downLocker) Lock(context.Context, string) (func(), error) {
	return nil, locks.ErrUnavailable
}

func TestRun_LockBackendDownIsUnavailable(t *testing.T) {
	r := New(docstore.NewMemStore(), downLocker{}, zap.NewNop())
	err := r.Run(context.Background(), []string{"group:1"}, func(context.Context, docstore.Tx) error {
		t.Fatal("unit ran without its lock")
		return nil
	})
	if !errors.Is(err, docstore.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
