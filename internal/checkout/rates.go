package checkout

// ShippingRate is one entry of the rate catalog.
type ShippingRate struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PriceCents    int    `json:"price_cents"`
	EstimatedDays int    `json:"estimated_days"`
}

var defaultRateCatalog = []ShippingRate{
	{ID: "standard", Name: "Standard Shipping", Description: "5-7 business days", PriceCents: 599, EstimatedDays: 7},
	{ID: "express", Name: "Express Shipping", Description: "2-3 business days", PriceCents: 1299, EstimatedDays: 3},
	{ID: "overnight", Name: "Overnight Shipping", Description: "Next business day", PriceCents: 2499, EstimatedDays: 1},
}

// Rates returns the catalog for display, with the standard rate
// promotionally zeroed once the subtotal clears the free-shipping
// threshold. The zeroing is a presentation transform over copies; the
// canonical catalog price is never mutated or persisted as zero.
func (m *Machine) Rates(subtotalCents int) []ShippingRate {
	rates := make([]ShippingRate, len(m.rates))
	copy(rates, m.rates)

	threshold := m.cfg.FreeShippingThresholdCents
	if threshold > 0 && subtotalCents >= threshold {
		for i := range rates {
			if rates[i].ID == "standard" {
				rates[i].PriceCents = 0
			}
		}
	}
	return rates
}

// RateByID resolves a catalog entry, applying the same free-shipping
// transform so the selected rate matches what was displayed.
func (m *Machine) RateByID(id string, subtotalCents int) (ShippingRate, bool) {
	for _, rate := range m.Rates(subtotalCents) {
		if rate.ID == id {
			return rate, true
		}
	}
	return ShippingRate{}, false
}
