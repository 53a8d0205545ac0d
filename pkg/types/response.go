package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-visible part of a failure.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
