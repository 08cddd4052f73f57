package clickthrough

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsStore_StartsWithDefault(t *testing.T) {
	store := NewBoundsStore()
	assert.Equal(t, DefaultRegion(), store.Snapshot())
}

func TestBoundsStore_LastWriteWins(t *testing.T) {
	store := NewBoundsStore()
	store.Update(1, 2, 3, 4)
	store.Update(500, 500, 64, 64)

	assert.Equal(t, HitRegion{X: 500, Y: 500, Width: 64, Height: 64}, store.Snapshot())
}

func TestBoundsStore_AcceptsNegativeExtents(t *testing.T) {
	store := NewBoundsStore()
	store.Update(10, 10, -5, -5)
	assert.Equal(t, HitRegion{X: 10, Y: 10, Width: -5, Height: -5}, store.Snapshot())
}

func TestBoundsStore_SnapshotIsACopy(t *testing.T) {
	store := NewBoundsStore()
	snap := store.Snapshot()
	snap.X = 999

	assert.Equal(t, float64(0), store.Snapshot().X)
}

func TestBoundsStore_SnapshotNeverTorn(t *testing.T) {
	store := NewBoundsStoreWith(HitRegion{X: 0, Y: 0, Width: 0, Height: 0})

	const writers = 4
	const writes = 2000

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				v := float64(seed*writes + i)
				store.Update(v, v, v, v)
			}
		}(w)
	}

	done := make(chan struct{})
	torn := make(chan HitRegion, 1)
	go func() {
		defer close(done)
		for i := 0; i < writers*writes; i++ {
			s := store.Snapshot()
			if s.X != s.Y || s.X != s.Width || s.X != s.Height {
				select {
				case torn <- s:
				default:
				}
				return
			}
		}
	}()

	wg.Wait()
	<-done

	select {
	case s := <-torn:
		t.Fatalf("observed torn region %+v", s)
	default:
	}
}
