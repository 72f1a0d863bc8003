package cart

import (
	cartstore "github.com/angelmondragon/storefront-engine/internal/cart"
	"github.com/angelmondragon/storefront-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

type addItemRequest struct {
	ProductID          string             `json:"product_id" validate:"required"`
	VariantID          string             `json:"variant_id"`
	Name               string             `json:"name" validate:"required"`
	Image              string             `json:"image"`
	Quantity           int                `json:"quantity" validate:"required,min=1"`
	PriceCents         int                `json:"price_cents" validate:"min=0"`
	OriginalPriceCents *int               `json:"original_price_cents"`
	Attributes         []attributePayload `json:"attributes" validate:"dive"`
	StockStatus        string             `json:"stock_status"`
	MaxQuantity        int                `json:"max_quantity"`
}

type attributePayload struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func (r addItemRequest) toItem() (cartstore.Item, error) {
	status := enums.StockStatusInStock
	if r.StockStatus != "" {
		parsed, err := enums.ParseStockStatus(r.StockStatus)
		if err != nil {
			return cartstore.Item{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock status")
		}
		status = parsed
	}

	attrs := make([]cartstore.Attribute, len(r.Attributes))
	for i, attr := range r.Attributes {
		attrs[i] = cartstore.Attribute{Key: attr.Key, Value: attr.Value}
	}

	return cartstore.Item{
		ProductID:          r.ProductID,
		VariantID:          r.VariantID,
		Name:               r.Name,
		Image:              r.Image,
		Quantity:           r.Quantity,
		PriceCents:         r.PriceCents,
		OriginalPriceCents: r.OriginalPriceCents,
		Attributes:         attrs,
		StockStatus:        status,
		MaxQuantity:        r.MaxQuantity,
	}, nil
}

type updateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}
