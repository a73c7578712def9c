package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imonsheikh/women-three-piece-server/internal/cart/cache"
	"github.com/imonsheikh/women-three-piece-server/internal/cart/domain"
	"github.com/imonsheikh/women-three-piece-server/internal/cart/repository"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidDelta = errors.New("delta must be +1 or -1")

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	logger *slog.Logger
	sfg    singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// AddItem creates the cart line for (userEmail, productId). The line total is
// fixed here from the unit price that was current at add time.
func (s *CartService) AddItem(ctx context.Context, userEmail, productID, productName string, unitPrice float64, quantity int64) (string, error) {
	if quantity < 1 {
		return "", repository.ErrQuantityTooLow
	}

	line := domain.CartLine{
		UserEmail:   userEmail,
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice * float64(quantity),
	}

	id, err := s.repo.AddLine(ctx, line)
	if err != nil {
		return "", err
	}

	s.invalidateCache(userEmail)
	return id, nil
}

func (s *CartService) AdjustQuantity(ctx context.Context, lineID string, delta int64) (*domain.CartLine, error) {
	if delta != 1 && delta != -1 {
		return nil, ErrInvalidDelta
	}

	line, err := s.repo.AdjustQuantity(ctx, lineID, delta)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(line.UserEmail)
	return line, nil
}

// RemoveItem deletes one line and reports how many documents went away.
// Removing an id that matches nothing is a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, lineID string) (int64, error) {
	line, err := s.repo.RemoveLine(ctx, lineID)
	if err != nil {
		return 0, err
	}
	if line == nil {
		return 0, nil
	}

	s.invalidateCache(line.UserEmail)
	return 1, nil
}

func (s *CartService) ClearCart(ctx context.Context, userEmail string) (int64, error) {
	removed, err := s.repo.ClearCart(ctx, userEmail)
	if err != nil {
		return 0, err
	}

	s.invalidateCache(userEmail)
	return removed, nil
}

func (s *CartService) ListCart(ctx context.Context, userEmail string) ([]domain.CartLine, error) {
	v, err, _ := s.sfg.Do(userEmail, func() (interface{}, error) {
		lines, err := s.cache.Get(ctx, userEmail)
		if err == nil {
			return lines, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", "error", err)
		}

		lines, err = s.repo.ListCart(ctx, userEmail)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, userEmail, lines); err != nil {
				s.logger.Warn("cart cache set failed", "error", err)
			}
		}()

		return lines, nil
	})
	if err != nil {
		return nil, err
	}

	lines, ok := v.([]domain.CartLine)
	if !ok {
		return nil, fmt.Errorf("unexpected singleflight value %T", v)
	}
	return lines, nil
}

func (s *CartService) invalidateCache(userEmail string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userEmail); err != nil {
		s.logger.Warn("cart cache invalidate failed", "userEmail", userEmail, "error", err)
	}
}
