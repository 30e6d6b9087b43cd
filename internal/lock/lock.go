// Package lock serializes work per key, in process or across instances via redis.
package lock

import "context"

// Locker acquires an exclusive lock on key. The returned release func is safe to call more than once.
type Locker[K any] interface {
	Lock(ctx context.Context, key K) (release func(), err error)
}

// Chain acquires each locker in order and releases them in reverse.
type Chain[K any] []Locker[K]

func (c Chain[K]) Lock(ctx context.Context, key K) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, l := range c {
		release, err := l.Lock(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}
