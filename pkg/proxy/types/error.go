package types

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	// Detail is a human-readable error message.
	Detail string `json:"detail"`
}

// NewErrorResponse creates an error response with the given detail.
func NewErrorResponse(detail string) *ErrorResponse {
	return &ErrorResponse{Detail: detail}
}
