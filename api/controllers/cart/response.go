package cart

import (
	"time"

	cartstore "github.com/angelmondragon/storefront-engine/internal/cart"
	"github.com/angelmondragon/storefront-engine/pkg/authority"
)

type cartResponse struct {
	Items         []cartstore.Item `json:"items"`
	TotalItems    int              `json:"total_items"`
	SubtotalCents int              `json:"subtotal_cents"`
	TaxCents      int              `json:"tax_cents"`
	TotalCents    int              `json:"total_cents"`
	TaxRate       float64          `json:"tax_rate"`
	IsSyncing     bool             `json:"is_syncing"`
	IsLoading     bool             `json:"is_loading"`
	LastError     string           `json:"last_error,omitempty"`
	LastValidated *time.Time       `json:"last_validated,omitempty"`
	LastSynced    *time.Time       `json:"last_synced,omitempty"`
}

type validationResponse struct {
	IsValid bool                  `json:"is_valid"`
	Errors  []authority.ItemIssue `json:"errors,omitempty"`
	Cart    cartResponse          `json:"cart"`
}

// newCartResponse reads each derived value under the store's lock; the
// snapshot is consistent enough for display, which is all it serves.
func newCartResponse(store *cartstore.Store) cartResponse {
	return cartResponse{
		Items:         store.Items(),
		TotalItems:    store.TotalItems(),
		SubtotalCents: store.SubtotalCents(),
		TaxCents:      store.TaxCents(),
		TotalCents:    store.TotalCents(),
		TaxRate:       store.TaxRate(),
		IsSyncing:     store.IsSyncing(),
		IsLoading:     store.IsLoading(),
		LastError:     store.LastError(),
		LastValidated: store.LastValidated(),
		LastSynced:    store.LastSynced(),
	}
}
