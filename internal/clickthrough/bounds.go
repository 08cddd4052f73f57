package clickthrough

import "sync"

// BoundsStore holds the single current HitRegion shared between the
// bounds reporter and the watcher loop.
type BoundsStore struct {
	mu     sync.Mutex
	region HitRegion
}

// NewBoundsStore creates a store holding DefaultRegion.
func NewBoundsStore() *BoundsStore {
	return &BoundsStore{region: DefaultRegion()}
}

// NewBoundsStoreWith creates a store holding the given initial region.
func NewBoundsStoreWith(initial HitRegion) *BoundsStore {
	return &BoundsStore{region: initial}
}

// Update replaces the stored region. Values are not validated.
func (b *BoundsStore) Update(x, y, width, height float64) {
	b.Set(HitRegion{X: x, Y: y, Width: width, Height: height})
}

// Set replaces the stored region wholesale.
func (b *BoundsStore) Set(r HitRegion) {
	b.mu.Lock()
	b.region = r
	b.mu.Unlock()
}

// Snapshot returns a copy of the current region.
func (b *BoundsStore) Snapshot() HitRegion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.region
}
