package application

import (
	"slices"
	"sync"
)

// AssetLocker serializes mutating operations on the same asset id.
// Different ids never block each other.
type AssetLocker struct {
	mu    sync.Mutex
	locks map[int64]*assetLock
}

type assetLock struct {
	mu   sync.Mutex
	refs int
}

// NewAssetLocker creates an empty locker
func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locks: make(map[int64]*assetLock)}
}

// Lock blocks until the asset is free and returns the matching unlock func
func (l *AssetLocker) Lock(id int64) func() {
	l.mu.Lock()
	al, ok := l.locks[id]
	if !ok {
		al = &assetLock{}
		l.locks[id] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()

		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// LockAll locks several assets in ascending id order
func (l *AssetLocker) LockAll(ids []int64) func() {
	sorted := append([]int64(nil), ids...)
	slices.Sort(sorted)

	var unlocks []func()
	var last int64
	for i, id := range sorted {
		if i > 0 && id == last {
			continue
		}
		unlocks = append(unlocks, l.Lock(id))
		last = id
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}
