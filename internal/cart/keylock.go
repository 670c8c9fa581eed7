package cart

import (
	"context"
	"sync"
)

// keyLocks serializes operations per product id. Entries are dropped once
// nobody holds or waits for them.
type keyLocks struct {
	mu sync.Mutex
	m  map[int64]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[int64]*keyLock)}
}

func (k *keyLocks) lock(ctx context.Context, id int64) (unlock func(), err error) {
	k.mu.Lock()
	l, ok := k.m[id]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.m[id] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			k.release(id, l)
		}, nil
	case <-ctx.Done():
		k.release(id, l)
		return nil, ctx.Err()
	}
}

func (k *keyLocks) release(id int64, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(k.m, id)
	}
}

func (k *keyLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}
