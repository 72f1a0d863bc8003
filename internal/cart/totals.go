package cart

import (
	"time"

	"github.com/angelmondragon/storefront-engine/pkg/types"
)

// Derived accessors. All are pure functions of the current item list,
// recomputed on every read; nothing here is cached.

// TotalItems returns the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// SubtotalCents returns the sum of price times quantity over all lines.
func (s *Store) SubtotalCents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// TaxCents returns sales tax on the subtotal at the configured rate,
// rounded to the cent.
func (s *Store) TaxCents() int {
	return types.TaxCents(s.SubtotalCents(), s.cfg.TaxRate)
}

// TotalCents returns subtotal plus tax.
func (s *Store) TotalCents() int {
	subtotal := s.SubtotalCents()
	return subtotal + types.TaxCents(subtotal, s.cfg.TaxRate)
}

// TaxRate exposes the configured rate for display.
func (s *Store) TaxRate() float64 {
	return s.cfg.TaxRate
}

// Items returns a copy of the ordered line items.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// IsSyncing reports whether a backend sync is in flight.
func (s *Store) IsSyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// IsLoading reports whether any validation round-trip is in flight. The
// count matters: two overlapping validations must not read as idle when
// the first returns.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// LastError returns the most recent background sync failure, empty after
// a successful sync. Process-local, never persisted.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// LastValidated returns when the cart last passed bulk validation.
func (s *Store) LastValidated() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastValidated
}

// LastSynced returns when the cart last reached the backend of record.
func (s *Store) LastSynced() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

func (s *Store) subtotalLocked() int {
	subtotal := 0
	for _, item := range s.items {
		subtotal += item.PriceCents * item.Quantity
	}
	return subtotal
}
