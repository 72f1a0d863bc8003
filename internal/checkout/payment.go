package checkout

import (
	"github.com/angelmondragon/storefront-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

// CardDetails carries masked card data only. Full PANs and CVVs never
// enter checkout state, persisted snapshots, or logs; tokenization happens
// upstream at the payment processor.
type CardDetails struct {
	Brand      string `json:"brand,omitempty"`
	Last4      string `json:"last4" validate:"required,len=4,numeric"`
	ExpMonth   int    `json:"exp_month" validate:"required,min=1,max=12"`
	ExpYear    int    `json:"exp_year" validate:"required,min=2020"`
	HolderName string `json:"holder_name,omitempty"`
	SaveCard   bool   `json:"save_card,omitempty"`
}

// PaymentMethod is a tagged union over the supported payment kinds. Card
// is the only variant with a payload.
type PaymentMethod struct {
	Type enums.PaymentMethodType `json:"type"`
	Card *CardDetails            `json:"card,omitempty"`
}

// Validate checks the union's shape.
func (p PaymentMethod) Validate() error {
	if !p.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method type")
	}
	if p.Type == enums.PaymentMethodTypeCard {
		if p.Card == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "card details are required")
		}
		if err := validate.Struct(*p.Card); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "card details invalid")
		}
		return nil
	}
	if p.Card != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card details only apply to card payments")
	}
	return nil
}
