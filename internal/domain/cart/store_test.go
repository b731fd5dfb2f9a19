package cart

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stylesync-backend/internal/domain/catalog"
)

func product(id string, price float64, tags ...string) catalog.Product {
	return catalog.Product{ID: id, Name: id, Price: price, Category: catalog.CategoryTops, Tags: tags}
}

func TestStore_AddRemoveUpdate(t *testing.T) {
	a := product("A", 10, "office")
	b := product("B", 20, "office")

	s := New()
	s.AddItem(a)
	s.AddItem(b)
	s.AddItem(a)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "B", lines[1].ProductID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, 40.0, s.Total())
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 2, s.Len())

	s.UpdateQuantity("B", 5)
	assert.Equal(t, 120.0, s.Total())
	assert.Equal(t, 7, s.Count())

	s.RemoveItem("A")
	assert.Equal(t, 100.0, s.Total())
	assert.Equal(t, []string{"B"}, s.ProductIDs())

	s.RemoveItem("B")
	assert.Zero(t, s.Total())
	assert.Zero(t, s.Count())
}

func TestStore_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		s := New()
		s.AddItem(product("A", 10))
		s.AddItem(product("B", 1))

		s.UpdateQuantity("A", q)

		removed := New()
		removed.AddItem(product("A", 10))
		removed.AddItem(product("B", 1))
		removed.RemoveItem("A")

		assert.Equal(t, removed.Lines(), s.Lines(), "quantity %d", q)
	}
}

func TestStore_UnknownIDsAreNoOps(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))
	before := s.Snapshot()

	s.RemoveItem("missing")
	s.UpdateQuantity("missing", 4)
	s.UpdateQuantity("missing", 0)

	assert.Equal(t, before, s.Snapshot())
}

func TestStore_LineWithoutProductContributesZero(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))
	s.mu.Lock()
	s.lines = append(s.lines, Line{ProductID: "ghost", Quantity: 3})
	s.mu.Unlock()

	assert.Equal(t, 10.0, s.Total())
	assert.Equal(t, 4, s.Count())
}

func TestStore_RefreshReplacesSnapshotsOnly(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))
	s.AddItem(product("B", 20))

	s.Refresh([]catalog.Product{product("A", 12), product("Z", 99)})

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 12.0, lines[0].Product.Price)
	assert.Equal(t, 20.0, lines[1].Product.Price)
	assert.Equal(t, 32.0, s.Total())
}

func TestStore_LinesAreCopies(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))

	lines := s.Lines()
	lines[0].Quantity = 99
	lines[0].Product.Price = 1000

	assert.Equal(t, 10.0, s.Total())
	assert.Equal(t, 1, s.Count())
}

func TestStore_Clear(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))
	s.AddItem(product("B", 20))

	s.Clear()

	assert.Empty(t, s.Lines())
	assert.Zero(t, s.Total())
}

func TestStore_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"A", "B", "C", "D"}
	prices := map[string]float64{"A": 10, "B": 20, "C": 5, "D": 2.5}

	s := New()
	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			s.AddItem(product(id, prices[id]))
		case 1:
			s.RemoveItem(id)
		case 2:
			s.UpdateQuantity(id, rng.Intn(7)-3)
		}

		seen := map[string]bool{}
		var total float64
		var count int
		for _, l := range s.Lines() {
			require.False(t, seen[l.ProductID], "duplicate line %s", l.ProductID)
			seen[l.ProductID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			total += float64(l.Quantity) * prices[l.ProductID]
			count += l.Quantity
		}
		require.InDelta(t, total, s.Total(), 1e-9)
		require.Equal(t, count, s.Count())
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := New()
	a := product("A", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.AddItem(a)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1000, s.Count())
	assert.Equal(t, 1000.0, s.Total())
}

func TestStore_SubscribersSeeMutationOrder(t *testing.T) {
	s := New()

	var mu sync.Mutex
	var versions []uint64
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		versions = append(versions, snap.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.AddItem(product("A", 1))
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	require.Len(t, versions, 500)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	s.AddItem(product("B", 1))
	mu.Lock()
	assert.Len(t, versions, 500)
	mu.Unlock()
}

func TestStore_NoOpsDoNotNotify(t *testing.T) {
	s := New()
	s.AddItem(product("A", 10))

	var calls int
	s.Subscribe(func(Snapshot) { calls++ })

	s.RemoveItem("missing")
	s.UpdateQuantity("A", 1)
	s.Refresh(nil)
	New().Clear()
	assert.Zero(t, calls)

	s.UpdateQuantity("A", 2)
	assert.Equal(t, 1, calls)
}

func TestStore_SnapshotCarriesTotals(t *testing.T) {
	s := New()
	var last Snapshot
	s.Subscribe(func(snap Snapshot) { last = snap })

	s.AddItem(product("A", 10))
	s.AddItem(product("B", 20))
	s.AddItem(product("A", 10))

	assert.Equal(t, 40.0, last.Total)
	assert.Equal(t, 3, last.Count)
	assert.Len(t, last.Lines, 2)
	assert.Equal(t, s.Snapshot(), last)
}
