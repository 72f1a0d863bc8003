package checkout

type selectRateRequest struct {
	RateID string `json:"rate_id" validate:"required"`
}

type navigateRequest struct {
	Step string `json:"step" validate:"required"`
}

type promoRequest struct {
	Code string `json:"code" validate:"required"`
}
