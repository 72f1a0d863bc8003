package authority

import "github.com/angelmondragon/storefront-engine/pkg/enums"

// Attribute is one ordered display attribute of a cart line (size, color).
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Item is the wire shape of a cart line exchanged with the backend of
// record. Prices are minor-unit integers.
type Item struct {
	ProductID          string            `json:"productId"`
	VariantID          string            `json:"variantId,omitempty"`
	Name               string            `json:"name,omitempty"`
	Image              string            `json:"image,omitempty"`
	Quantity           int               `json:"quantity"`
	PriceCents         int               `json:"price"`
	OriginalPriceCents *int              `json:"originalPrice,omitempty"`
	Attributes         []Attribute       `json:"attributes,omitempty"`
	StockStatus        enums.StockStatus `json:"stockStatus,omitempty"`
	MaxQuantity        int               `json:"maxQuantity,omitempty"`
}

// ItemCheck asks the authority whether a single quantity is admissible.
type ItemCheck struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`
}

// ItemValidation is the authority's verdict on a single item. StockStatus
// and MaxQuantity are authoritative; the client never trusts its own guess.
type ItemValidation struct {
	StockStatus enums.StockStatus `json:"stockStatus"`
	MaxQuantity int               `json:"maxQuantity"`
}

// ItemIssue flags one offending line in a bulk validation.
type ItemIssue struct {
	ProductID         string `json:"productId"`
	VariantID         string `json:"variantId,omitempty"`
	Message           string `json:"message"`
	SuggestedQuantity *int   `json:"suggestedQuantity,omitempty"`
}

// CartValidation is the result of a bulk cart validation.
type CartValidation struct {
	IsValid bool        `json:"isValid"`
	Errors  []ItemIssue `json:"errors"`
}

// Address is the wire shape submitted for checkout address validation.
type Address struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Company    string `json:"company,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}
