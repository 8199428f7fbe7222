package favorites

import (
	"context"
	"sync"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

// keyLocks serializes work per (user, event). Entries are dropped once nobody holds or waits.
type keyLocks struct {
	mu sync.Mutex
	m  map[domain.RelationKey]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[domain.RelationKey]*keyLock)}
}

// acquire blocks until the key is free or ctx is done.
func (l *keyLocks) acquire(ctx context.Context, key domain.RelationKey) (func(), error) {
	l.mu.Lock()
	e, ok := l.m[key]
	if !ok {
		e = &keyLock{sem: make(chan struct{}, 1)}
		l.m[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				l.unref(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}
}

func (l *keyLocks) unref(key domain.RelationKey, e *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.m, key)
	}
}

func (l *keyLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
