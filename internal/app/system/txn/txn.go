// Package txn runs atomic units: read-check-write sequences over one or
// more aggregates that must apply entirely or not at all.
//
// A unit first takes the aggregate locks named by its keys, then runs in
// docstore.RunAtomic. Locks keep instances sharing a lock backend from
// racing; the store's version checks catch everything else, and a unit
// that loses a version race is re-run from its reads.
package txn

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/socraticos/internal/app/system/docstore"
	"github.com/dalemusser/socraticos/internal/app/system/locks"
	"github.com/dalemusser/socraticos/internal/app/system/metrics"
)

const (
	DefaultAttempts = 5
	baseBackoff     = 5 * time.Millisecond
)

// Runner executes atomic units against one store.
type Runner struct {
	store    docstore.Store
	locker   locks.Locker
	log      *zap.Logger
	attempts int
}

// New returns a Runner. A nil locker means no aggregate locking.
func New(store docstore.Store, locker locks.Locker, logger *zap.Logger) *Runner {
	if locker == nil {
		locker = locks.Noop{}
	}
	return &Runner{store: store, locker: locker, log: logger, attempts: DefaultAttempts}
}

// Store returns the store units run against.
func (r *Runner) Store() docstore.Store { return r.store }

// GroupKey and UserKey name the lock of an aggregate.
func GroupKey(groupID string) string { return "group:" + groupID }
func UserKey(userID string) string   { return "user:" + userID }

// Run takes the locks for keys and runs fn atomically, re-running it when
// a concurrent writer changed something it read. fn must be safe to call
// more than once. A conflict that survives every attempt says nothing about
// the unit's own checks, so it is returned wrapping docstore.ErrUnavailable
// and the caller may retry.
func (r *Runner) Run(ctx context.Context, keys []string, fn func(ctx context.Context, tx docstore.Tx) error) error {
	start := time.Now()
	release, err := locks.LockAll(ctx, r.locker, keys)
	if err != nil {
		if errors.Is(err, locks.ErrUnavailable) {
			return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
		}
		return err
	}
	defer release()
	metrics.ObserveLockWait(time.Since(start))

	for attempt := 1; ; attempt++ {
		err = r.store.RunAtomic(ctx, fn)
		if !errors.Is(err, docstore.ErrVersionConflict) || attempt >= r.attempts {
			break
		}
		metrics.ObserveAtomicRetry()
		r.log.Debug("atomic unit conflicted, retrying",
			zap.Strings("keys", keys), zap.Int("attempt", attempt), zap.Error(err))

		wait := time.Duration(attempt)*baseBackoff + rand.N(baseBackoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if errors.Is(err, docstore.ErrVersionConflict) {
		r.log.Warn("atomic unit gave up after repeated conflicts",
			zap.Strings("keys", keys), zap.Int("attempts", r.attempts))
		return fmt.Errorf("%w: gave up after %d attempts: %w", docstore.ErrUnavailable, r.attempts, err)
	}
	return err
}
