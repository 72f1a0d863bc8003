package checkout

import (
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
	"github.com/angelmondragon/storefront-engine/pkg/types"
)

// PromoDiscountCents mirrors the upstream client-side promo simulation: a
// flat percentage off the subtotal for any non-blank code, with no server
// round-trip. The real contract (server-validated discount codes) is
// undefined upstream, so this stays a stub behind a config flag and does
// not invent a settlement algorithm.
func (m *Machine) PromoDiscountCents(code string, subtotalCents int) (int, error) {
	if !m.promo.StubEnabled {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "promo codes are not available")
	}
	if strings.TrimSpace(code) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	return types.DiscountCents(subtotalCents, m.promo.StubPercent), nil
}
