package types

// SuccessEnvelope wraps every successful storefront response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Code mirrors the internal error
// taxonomy; Details is only populated for codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed storefront response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
