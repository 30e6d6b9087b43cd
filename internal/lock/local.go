package lock

import (
	"context"
	"sync"
)

// Local is an in-process keyed mutex. Entries are dropped once nobody holds or waits on them.
type Local[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewLocal[K comparable]() *Local[K] {
	return &Local[K]{entries: make(map[K]*entry)}
}

func (l *Local[K]) Lock(ctx context.Context, key K) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.unref(key, e)
		})
	}, nil
}

func (l *Local[K]) unref(key K, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Local[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
