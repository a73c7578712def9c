package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/cache"
	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	"github.com/imonsheikh/women-three-piece-server/internal/cart/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository mimics the store's per-document atomicity: every operation
// runs under one lock, so the quantity guard and the update are indivisible.
type mockRepository struct {
	mu     sync.Mutex
	lines  []*domain.CartLine
	nextID int
	err    error
}

func (m *mockRepository) AddLine(_ context.Context, line domain.CartLine) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	for _, l := range m.lines {
		if l.UserEmail == line.UserEmail && l.ProductID == line.ProductID {
			return "", repository.ErrDuplicateItem
		}
	}
	m.nextID++
	line.ID = fmt.Sprintf("line-%d", m.nextID)
	m.lines = append(m.lines, &line)
	return line.ID, nil
}

func (m *mockRepository) AdjustQuantity(_ context.Context, lineID string, delta int64) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, l := range m.lines {
		if l.ID == lineID {
			if l.Quantity+delta < 1 {
				return nil, repository.ErrQuantityTooLow
			}
			l.Quantity += delta
			l.LineTotal = l.UnitPrice * float64(l.Quantity)
			copied := *l
			return &copied, nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *mockRepository) RemoveLine(_ context.Context, lineID string) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i, l := range m.lines {
		if l.ID == lineID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return l, nil
		}
	}
	return nil, nil
}

func (m *mockRepository) ClearCart(_ context.Context, userEmail string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var kept []*domain.CartLine
	var removed int64
	for _, l := range m.lines {
		if l.UserEmail == userEmail {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	m.lines = kept
	return removed, nil
}

func (m *mockRepository) ListCart(_ context.Context, userEmail string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.CartLine
	for _, l := range m.lines {
		if l.UserEmail == userEmail {
			out = append(out, *l)
		}
	}
	return out, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]domain.CartLine
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]domain.CartLine)}
}

func (m *mockCache) Get(_ context.Context, userEmail string) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.entries[userEmail]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return lines, nil
}

func (m *mockCache) Set(_ context.Context, userEmail string, lines []domain.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userEmail] = lines
	return nil
}

func (m *mockCache) Delete(_ context.Context, userEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userEmail)
	m.deletes++
	return nil
}

func newTestService(repo *mockRepository, c cache.CartCache) *CartService {
	return NewCartService(repo, c, slog.Default())
}

func TestAddItemComputesLineTotal(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockCache())

	_, err := svc.AddItem(context.Background(), "a@b.com", "p1", "Kurti", 12.5, 3)
	require.NoError(t, err)

	lines, err := repo.ListCart(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 37.5, lines[0].LineTotal)
	assert.Equal(t, int64(3), lines[0].Quantity)
}

func TestAddItemRejectsDuplicate(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockCache())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 1)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 1)
	assert.ErrorIs(t, err, repository.ErrDuplicateItem)

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Len(t, lines, 1, "failed add must not leave a second line")
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache())

	_, err := svc.AddItem(context.Background(), "a@b.com", "p1", "Kurti", 10, 0)
	assert.ErrorIs(t, err, repository.ErrQuantityTooLow)
}

func TestAdjustQuantityRejectsBadDelta(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache())

	_, err := svc.AdjustQuantity(context.Background(), "line-1", 2)
	assert.ErrorIs(t, err, ErrInvalidDelta)
}

func TestAdjustQuantityNotFound(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache())

	_, err := svc.AdjustQuantity(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, repository.ErrLineNotFound)
}

func TestAdjustQuantityConcurrentInvariant(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockCache())
	ctx := context.Background()

	lineID, err := svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 5)
	require.NoError(t, err)

	const increases, decreases = 25, 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	okInc, okDec := 0, 0

	for i := 0; i < increases; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AdjustQuantity(ctx, lineID, 1); err == nil {
				mu.Lock()
				okInc++
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < decreases; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AdjustQuantity(ctx, lineID, -1); err == nil {
				mu.Lock()
				okDec++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	final := lines[0].Quantity
	assert.Equal(t, int64(5+okInc-okDec), final, "no lost updates")
	assert.GreaterOrEqual(t, final, int64(1))
	assert.Equal(t, lines[0].UnitPrice*float64(final), lines[0].LineTotal)
}

func TestAdjustQuantityNeverBelowOne(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, newMockCache())
	ctx := context.Background()

	lineID, err := svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AdjustQuantity(ctx, lineID, -1)
			assert.ErrorIs(t, err, repository.ErrQuantityTooLow)
		}()
	}
	wg.Wait()

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Quantity)
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache())

	removed, err := svc.RemoveItem(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestClearCartEmptyIsNoop(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache())

	removed, err := svc.ClearCart(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestListCartPrefersCache(t *testing.T) {
	repo := &mockRepository{err: fmt.Errorf("store down")}
	c := newMockCache()
	cached := []domain.CartLine{{ID: "line-1", UserEmail: "a@b.com", ProductID: "p1", Quantity: 2}}
	require.NoError(t, c.Set(context.Background(), "a@b.com", cached))

	svc := newTestService(repo, c)
	lines, err := svc.ListCart(context.Background(), "a@b.com")
	require.NoError(t, err, "cache hit must not touch the store")
	assert.Equal(t, cached, lines)
}

func TestListCartFillsCacheOnMiss(t *testing.T) {
	repo := &mockRepository{}
	c := newMockCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 2)
	require.NoError(t, err)

	lines, err := svc.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	// The cache fill is async.
	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "a@b.com")
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestMutationsInvalidateCache(t *testing.T) {
	repo := &mockRepository{}
	c := newMockCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	lineID, err := svc.AddItem(ctx, "a@b.com", "p1", "Kurti", 10, 2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a@b.com", []domain.CartLine{}))
	_, err = svc.AdjustQuantity(ctx, lineID, 1)
	require.NoError(t, err)

	_, err = c.Get(ctx, "a@b.com")
	assert.ErrorIs(t, err, cache.ErrCacheMiss, "adjust must drop the cached cart")
}
