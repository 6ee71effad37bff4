package types

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// CheckoutResponse is returned once the provider has opened a hosted payment page.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// WebhookAck acknowledges a verified provider event.
type WebhookAck struct {
	Received bool `json:"received"`
}
