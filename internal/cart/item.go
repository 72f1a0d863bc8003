package cart

import (
	"time"

	"github.com/angelmondragon/storefront-engine/pkg/authority"
	"github.com/angelmondragon/storefront-engine/pkg/enums"
)

// Key identifies a cart line. Product plus optional variant is unique
// within a cart.
type Key struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
}

// Attribute is one ordered display attribute (size, color).
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Item is one cart line. Quantity is always positive; a line that would
// drop to zero is removed instead. StockStatus and MaxQuantity come from
// the authority, never from the client's guess.
type Item struct {
	ProductID          string            `json:"product_id"`
	VariantID          string            `json:"variant_id,omitempty"`
	Name               string            `json:"name"`
	Image              string            `json:"image,omitempty"`
	Quantity           int               `json:"quantity"`
	PriceCents         int               `json:"price_cents"`
	OriginalPriceCents *int              `json:"original_price_cents,omitempty"`
	Attributes         []Attribute       `json:"attributes,omitempty"`
	StockStatus        enums.StockStatus `json:"stock_status"`
	MaxQuantity        int               `json:"max_quantity"`
}

// ItemKey returns the line's identity.
func (i Item) ItemKey() Key {
	return Key{ProductID: i.ProductID, VariantID: i.VariantID}
}

// Snapshot is the persisted subset of cart state. Transient flags
// (loading, syncing, last error) are process-local and never serialized.
type Snapshot struct {
	Items         []Item     `json:"items"`
	LastValidated *time.Time `json:"last_validated,omitempty"`
	LastSynced    *time.Time `json:"last_synced,omitempty"`
}

func toWireItem(item Item) authority.Item {
	attrs := make([]authority.Attribute, 0, len(item.Attributes))
	for _, attr := range item.Attributes {
		attrs = append(attrs, authority.Attribute{Key: attr.Key, Value: attr.Value})
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return authority.Item{
		ProductID:          item.ProductID,
		VariantID:          item.VariantID,
		Name:               item.Name,
		Image:              item.Image,
		Quantity:           item.Quantity,
		PriceCents:         item.PriceCents,
		OriginalPriceCents: item.OriginalPriceCents,
		Attributes:         attrs,
		StockStatus:        item.StockStatus,
		MaxQuantity:        item.MaxQuantity,
	}
}

func fromWireItem(wire authority.Item) Item {
	attrs := make([]Attribute, 0, len(wire.Attributes))
	for _, attr := range wire.Attributes {
		attrs = append(attrs, Attribute{Key: attr.Key, Value: attr.Value})
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return Item{
		ProductID:          wire.ProductID,
		VariantID:          wire.VariantID,
		Name:               wire.Name,
		Image:              wire.Image,
		Quantity:           wire.Quantity,
		PriceCents:         wire.PriceCents,
		OriginalPriceCents: wire.OriginalPriceCents,
		Attributes:         attrs,
		StockStatus:        wire.StockStatus,
		MaxQuantity:        wire.MaxQuantity,
	}
}
