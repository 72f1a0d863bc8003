package checkout

import (
	checkoutsvc "github.com/angelmondragon/storefront-engine/internal/checkout"
)

type stateResponse struct {
	checkoutsvc.State
	CanProceedToNext bool `json:"can_proceed_to_next"`
}

type ratesResponse struct {
	Rates []checkoutsvc.ShippingRate `json:"rates"`
}

type promoResponse struct {
	Code          string `json:"code"`
	DiscountCents int    `json:"discount_cents"`
}

func newStateResponse(machine *checkoutsvc.Machine) stateResponse {
	return stateResponse{
		State:            machine.State(),
		CanProceedToNext: machine.CanProceedToNext(),
	}
}
