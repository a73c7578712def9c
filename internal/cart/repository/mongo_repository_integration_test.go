//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	"github.com/imonsheikh/women-three-piece-server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
)

func setupRepository(t *testing.T) (CartRepository, *mongo.Database, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := storage.ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, db))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return NewMongoRepository(db), db, cleanup
}

func testLine(email, productID string, qty int64) domain.CartLine {
	return domain.CartLine{
		UserEmail:   email,
		ProductID:   productID,
		ProductName: "Three Piece Set",
		UnitPrice:   12.5,
		Quantity:    qty,
		LineTotal:   12.5 * float64(qty),
	}
}

func TestAddLineRejectsDuplicate(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	_, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 1))
	require.NoError(t, err)

	_, err = repo.AddLine(ctx, testLine("a@b.com", "p1", 3))
	assert.ErrorIs(t, err, ErrDuplicateItem)

	// Same product for another user is fine.
	_, err = repo.AddLine(ctx, testLine("c@d.com", "p1", 1))
	assert.NoError(t, err)
}

func TestConcurrentAddLineOnlyOneWins(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "unique index lets exactly one insert through")

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAdjustQuantityRecomputesLineTotal(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	lineID, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 2))
	require.NoError(t, err)

	line, err := repo.AdjustQuantity(ctx, lineID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), line.Quantity)
	assert.Equal(t, 37.5, line.LineTotal)

	line, err = repo.AdjustQuantity(ctx, lineID, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Equal(t, 25.0, line.LineTotal)
}

func TestAdjustQuantityRefusesBelowOne(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	lineID, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 1))
	require.NoError(t, err)

	_, err = repo.AdjustQuantity(ctx, lineID, -1)
	assert.ErrorIs(t, err, ErrQuantityTooLow)

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Quantity)
}

func TestConcurrentDecreasesStopAtOne(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	lineID, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 4))
	require.NoError(t, err)

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.AdjustQuantity(ctx, lineID, -1)
		}()
	}
	wg.Wait()

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Quantity, "guard keeps the floor under contention")
	assert.Equal(t, 12.5, lines[0].LineTotal)
}

func TestRemoveLineIdempotent(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	lineID, err := repo.AddLine(ctx, testLine("a@b.com", "p1", 1))
	require.NoError(t, err)

	line, err := repo.RemoveLine(ctx, lineID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "p1", line.ProductID)

	line, err = repo.RemoveLine(ctx, lineID)
	require.NoError(t, err)
	assert.Nil(t, line)

	line, err = repo.RemoveLine(ctx, "not-an-object-id")
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestClearCartScopedToUser(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	for _, p := range []string{"p1", "p2", "p3"} {
		_, err := repo.AddLine(ctx, testLine("a@b.com", p, 1))
		require.NoError(t, err)
	}
	_, err := repo.AddLine(ctx, testLine("c@d.com", "p1", 1))
	require.NoError(t, err)

	removed, err := repo.ClearCart(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	removed, err = repo.ClearCart(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	other, err := repo.ListCart(ctx, "c@d.com")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestListCartInsertionOrder(t *testing.T) {
	repo, _, cleanup := setupRepository(t)
	defer cleanup()
	ctx := context.Background()

	for _, p := range []string{"p3", "p1", "p2"} {
		_, err := repo.AddLine(ctx, testLine("a@b.com", p, 1))
		require.NoError(t, err)
	}

	lines, err := repo.ListCart(ctx, "a@b.com")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "p3", lines[0].ProductID)
	assert.Equal(t, "p1", lines[1].ProductID)
	assert.Equal(t, "p2", lines[2].ProductID)
}
