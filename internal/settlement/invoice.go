package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	invoicePrefix      = "INV-"
	invoiceDigits      = 100_000_000 // 8-digit space
	maxInvoiceAttempts = 10
)

// ErrInvoiceExhausted means repeated draws kept colliding with existing
// orders. With an 8-digit space this only happens when the collection is
// pathologically full.
var ErrInvoiceExhausted = errors.New("could not generate a unique invoice number")

// newInvoiceNo draws random 8-digit numbers until one is unused. Invoice
// numbers travel in external correspondence, so uniqueness is verified
// against the store before commit rather than assumed from randomness.
func (s *Service) newInvoiceNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxInvoiceAttempts; attempt++ {
		invoiceNo := fmt.Sprintf("%s%08d", invoicePrefix, rand.IntN(invoiceDigits))

		exists, err := s.orders.InvoiceExists(ctx, invoiceNo)
		if err != nil {
			return "", fmt.Errorf("failed to verify invoice number: %w", err)
		}
		if !exists {
			return invoiceNo, nil
		}
	}
	return "", ErrInvoiceExhausted
}
