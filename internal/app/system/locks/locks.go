// Package locks serializes work on the same aggregate. Keys are opaque
// strings such as "group:<id>"; callers that need several keys take them
// through LockAll so acquisition order is always the same.
package locks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// ErrUnavailable is returned when the lock backend cannot be reached.
var ErrUnavailable = errors.New("locks: lock service unavailable")

// Locker acquires one key at a time. Lock blocks until the key is free or
// ctx is done; the returned func releases it and is safe to call twice.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LockAll takes every key in sorted order and returns a func releasing
// them in reverse. On failure nothing stays held.
func LockAll(ctx context.Context, l Locker, keys []string) (func(), error) {
	keys = lo.Uniq(keys)
	sort.Strings(keys)

	held := make([]func(), 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, k := range keys {
		unlock, err := l.Lock(ctx, k)
		if err != nil {
			release()
			return nil, err
		}
		held = append(held, unlock)
	}
	return release, nil
}

// Local is an in-process Locker for single-instance deployments.
type Local struct {
	mu   sync.Mutex
	keys map[string]*localKey
}

type localKey struct {
	sem  chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{keys: make(map[string]*localKey)}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &localKey{sem: make(chan struct{}, 1)}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, k)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.sem
			l.release(key, k)
		})
	}, nil
}

func (l *Local) release(key string, k *localKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.keys, key)
	}
}

// held reports how many keys currently have holders or waiters.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Noop grants every lock immediately. With it, atomic units rely on the
// store's version checks alone.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
